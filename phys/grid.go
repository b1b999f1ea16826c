package phys

import (
	"fmt"
	"math"

	"github.com/snyderdan/WallTiles/state"
)

// InnerRadius is the distance from a tile's centre to the middle of an edge.
func InnerRadius(radius float64) float64 {
	return radius * math.Sqrt(3) / 2
}

// Center is the pixel centre of a flat-top hex at pos, with the grid origin at (0, 0).
func Center(pos state.HexCoord, radius float64) (float64, float64) {
	x := radius * 1.5 * float64(pos.Q)
	y := 2 * InnerRadius(radius) * (float64(pos.R) + float64(pos.Q)/2)
	return x, y
}

// NeighbourCenter is the centre of the tile adjacent to (x, y) through slot.
func NeighbourCenter(x, y float64, slot state.Slot, radius float64) (float64, float64) {
	dist := 2 * InnerRadius(radius)
	angle := math.Pi/6 + float64(slot)*math.Pi/3
	return x + dist*math.Cos(angle), y + dist*math.Sin(angle)
}

// Build creates one tile per entry in the topology and links them. clock is
// called once per tile; it may be nil to use wall clocks.
func Build(cfg *state.TopologyCfg, clock func(id state.NodeId) Clock) ([]*Tile, error) {
	adj, err := cfg.Adjacency()
	if err != nil {
		return nil, err
	}
	tiles := make([]*Tile, 0, len(cfg.Tiles))
	byId := make(map[state.NodeId]*Tile, len(cfg.Tiles))
	for _, tc := range cfg.Tiles {
		var c Clock
		if clock != nil {
			c = clock(tc.Id)
		}
		tile := NewTile(tc.Id, c)
		tile.Pos = tc.Pos
		tile.SetRoot(tc.Id == cfg.Root)
		tiles = append(tiles, tile)
		byId[tc.Id] = tile
	}
	for _, tile := range tiles {
		for slot, other := range adj[tile.Id] {
			if other == "" {
				continue
			}
			peer, ok := byId[other]
			if !ok {
				return nil, fmt.Errorf("tile %s not defined", other)
			}
			tile.Neighbours[slot] = peer
		}
	}
	return tiles, nil
}

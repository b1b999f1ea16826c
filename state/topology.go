package state

import (
	"fmt"
	"math/rand/v2"
)

func tileName(idx int) NodeId {
	return NodeId(fmt.Sprintf("t%d", idx))
}

// HexagonTopology builds a filled hexagon of the given radius around a root at (0, 0).
func HexagonTopology(radius int) TopologyCfg {
	cfg := TopologyCfg{Root: tileName(0)}
	centre := HexCoord{}
	idx := 0
	// centre first so the root is always t0
	cfg.Tiles = append(cfg.Tiles, TileCfg{Id: tileName(idx), Pos: &HexCoord{}})
	idx++
	for q := -radius; q <= radius; q++ {
		for r := -radius; r <= radius; r++ {
			pos := HexCoord{q, r}
			if pos == centre || pos.Distance(centre) > radius {
				continue
			}
			cfg.Tiles = append(cfg.Tiles, TileCfg{Id: tileName(idx), Pos: &pos})
			idx++
		}
	}
	return cfg
}

// StarTopology links the root to six peers that are not linked to each other.
func StarTopology() TopologyCfg {
	cfg := TopologyCfg{Root: tileName(0)}
	cfg.Tiles = append(cfg.Tiles, TileCfg{Id: tileName(0)})
	for _, slot := range Slots() {
		peer := tileName(int(slot) + 1)
		cfg.Tiles = append(cfg.Tiles, TileCfg{Id: peer})
		cfg.Links = append(cfg.Links, LinkCfg{From: tileName(0), Slot: slot, To: peer})
	}
	return cfg
}

// LineTopology places n tiles in a straight line, rooted at one end.
func LineTopology(n int) TopologyCfg {
	cfg := TopologyCfg{Root: tileName(0)}
	for i := range n {
		cfg.Tiles = append(cfg.Tiles, TileCfg{Id: tileName(i), Pos: &HexCoord{Q: i}})
	}
	return cfg
}

// RandomTopology grows a connected blob of n tiles from the root, deterministically for a seed.
func RandomTopology(n int, seed uint64) TopologyCfg {
	rng := rand.New(rand.NewPCG(seed, seed^0x5deece66d))
	cfg := TopologyCfg{Root: tileName(0)}
	if n <= 0 {
		return cfg
	}
	placed := []HexCoord{{}}
	taken := map[HexCoord]bool{{}: true}
	for len(placed) < n {
		from := placed[rng.IntN(len(placed))]
		next := from.Neighbour(Slot(rng.IntN(NumSlots)))
		if taken[next] {
			continue
		}
		taken[next] = true
		placed = append(placed, next)
	}
	for i, pos := range placed {
		cfg.Tiles = append(cfg.Tiles, TileCfg{Id: tileName(i), Pos: &pos})
	}
	return cfg
}

package state

import (
	"fmt"
	"os"
	"slices"

	"github.com/goccy/go-yaml"
)

// HexCoord is an axial coordinate on a flat-top hexagonal grid.
type HexCoord struct {
	Q int `yaml:"q"`
	R int `yaml:"r"`
}

// hexDirections are the axial offsets of each slot. Slot i sits at an angle of
// 30° + 60°·i (clockwise, screen coordinates), so Slot.Opposite is always the
// negated offset.
var hexDirections = [NumSlots]HexCoord{
	{1, 0},
	{0, 1},
	{-1, 1},
	{-1, 0},
	{0, -1},
	{1, -1},
}

// Neighbour returns the coordinate adjacent to c through slot.
func (c HexCoord) Neighbour(slot Slot) HexCoord {
	d := hexDirections[slot]
	return HexCoord{c.Q + d.Q, c.R + d.R}
}

// Distance is the number of grid steps between a and b.
func (c HexCoord) Distance(o HexCoord) int {
	dq := c.Q - o.Q
	dr := c.R - o.R
	return (abs(dq) + abs(dr) + abs(dq+dr)) / 2
}

func (c HexCoord) String() string {
	return fmt.Sprintf("(%d, %d)", c.Q, c.R)
}

type TileCfg struct {
	Id NodeId `yaml:"id"`
	// Pos places the tile on the grid; it is then linked to every positioned tile next to it.
	Pos *HexCoord `yaml:"pos,omitempty"`
}

// LinkCfg connects From's slot to To's opposite slot.
type LinkCfg struct {
	From NodeId `yaml:"from"`
	Slot Slot   `yaml:"slot"`
	To   NodeId `yaml:"to"`
}

// TopologyCfg describes the tiles of a simulation, how they are connected,
// and which one is the root.
type TopologyCfg struct {
	Root  NodeId    `yaml:"root"`
	Tiles []TileCfg `yaml:"tiles"`
	Links []LinkCfg `yaml:"links,omitempty"`
}

// SimCfg holds the runtime options of a simulation.
type SimCfg struct {
	App            string        `yaml:"app,omitempty"` // "wave" (default), "countdown" or "none"
	Countdown      *CountdownCfg `yaml:"countdown,omitempty"`
	MaxTicks       int           `yaml:"max_ticks,omitempty"`
	StopOnConverge bool          `yaml:"stop_on_converge,omitempty"`
	Linger         int           `yaml:"linger,omitempty"` // ticks to keep running after convergence
	LogPath        string        `yaml:"log_path,omitempty"`
	// Trace logs every network event of every tile.
	Trace bool `yaml:"trace,omitempty"`
}

// CountdownCfg configures the point to point countdown application.
type CountdownCfg struct {
	From  NodeId `yaml:"from"`
	To    NodeId `yaml:"to"`
	Start int    `yaml:"start"`
}

const (
	AppWave      = "wave"
	AppCountdown = "countdown"
	AppNone      = "none"
)

func (c *SimCfg) ApplyDefaults() {
	if c.App == "" {
		c.App = AppWave
	}
	if c.MaxTicks == 0 {
		c.MaxTicks = DefaultMaxTicks
	}
	if c.Linger == 0 && c.App != AppNone {
		c.Linger = DefaultLinger
	}
}

func (t *TopologyCfg) GetTile(id NodeId) *TileCfg {
	idx := slices.IndexFunc(t.Tiles, func(cfg TileCfg) bool {
		return cfg.Id == id
	})
	if idx == -1 {
		return nil
	}
	return &t.Tiles[idx]
}

func (t *TopologyCfg) TileIds() []NodeId {
	ids := make([]NodeId, 0, len(t.Tiles))
	for _, tile := range t.Tiles {
		ids = append(ids, tile.Id)
	}
	return ids
}

// Adjacency resolves grid placement and explicit links into a per-tile slot table.
func (t *TopologyCfg) Adjacency() (map[NodeId]*[NumSlots]NodeId, error) {
	adj := make(map[NodeId]*[NumSlots]NodeId, len(t.Tiles))
	byPos := make(map[HexCoord]NodeId)
	for _, tile := range t.Tiles {
		adj[tile.Id] = &[NumSlots]NodeId{}
		if tile.Pos != nil {
			byPos[*tile.Pos] = tile.Id
		}
	}
	link := func(from NodeId, slot Slot, to NodeId) error {
		if !slot.Valid() {
			return fmt.Errorf("link %s -> %s: %w: %d", from, to, ErrInvalidSlot, slot)
		}
		a, ok := adj[from]
		if !ok {
			return fmt.Errorf("tile %s not defined", from)
		}
		b, ok := adj[to]
		if !ok {
			return fmt.Errorf("tile %s not defined", to)
		}
		if from == to {
			return fmt.Errorf("tile %s cannot link to itself", from)
		}
		opp := slot.Opposite()
		if a[slot] == to && b[opp] == from {
			return nil
		}
		if a[slot] != "" {
			return fmt.Errorf("link %s -> %s: %w: %s slot %d is linked to %s", from, to, ErrSlotTaken, from, slot, a[slot])
		}
		if b[opp] != "" {
			return fmt.Errorf("link %s -> %s: %w: %s slot %d is linked to %s", from, to, ErrSlotTaken, to, opp, b[opp])
		}
		a[slot] = to
		b[opp] = from
		return nil
	}
	for _, tile := range t.Tiles {
		if tile.Pos == nil {
			continue
		}
		for _, slot := range Slots() {
			if other, ok := byPos[tile.Pos.Neighbour(slot)]; ok {
				if err := link(tile.Id, slot, other); err != nil {
					return nil, err
				}
			}
		}
	}
	for _, l := range t.Links {
		if err := link(l.From, l.Slot, l.To); err != nil {
			return nil, err
		}
	}
	return adj, nil
}

// Edges lists every pair of linked tiles once, sorted.
func (t *TopologyCfg) Edges() ([]Pair[NodeId, NodeId], error) {
	adj, err := t.Adjacency()
	if err != nil {
		return nil, err
	}
	seen := make(map[Pair[NodeId, NodeId]]struct{})
	edges := make([]Pair[NodeId, NodeId], 0)
	for id, slots := range adj {
		for _, other := range slots {
			if other == "" {
				continue
			}
			p := MakeSortedPair(id, other)
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			edges = append(edges, p)
		}
	}
	SortPairs(edges)
	return edges, nil
}

func ReadTopology(path string) (*TopologyCfg, error) {
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseTopology(file)
}

func ParseTopology(data []byte) (*TopologyCfg, error) {
	var cfg TopologyCfg
	err := yaml.Unmarshal(data, &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse topology: %w", err)
	}
	return &cfg, nil
}

func MarshalTopology(cfg *TopologyCfg) ([]byte, error) {
	return yaml.Marshal(cfg)
}

func abs(a int) int {
	if a < 0 {
		return -a
	}
	return a
}

func ReadSimConfig(path string) (*SimCfg, error) {
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg SimCfg
	err = yaml.Unmarshal(file, &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse simulation config: %w", err)
	}
	return &cfg, nil
}

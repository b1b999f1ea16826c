package sim

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/snyderdan/WallTiles/phys"
	"github.com/snyderdan/WallTiles/state"
)

type Snapshot struct {
	Ticks     int64          `yaml:"ticks"`
	Converged bool           `yaml:"converged"`
	Tiles     []NodeSnapshot `yaml:"tiles"`
}

type NodeSnapshot struct {
	Id         state.NodeId                `yaml:"id"`
	Address    state.Address               `yaml:"address"`
	Parent     string                      `yaml:"parent"`
	Phase      string                      `yaml:"phase"`
	Colour     string                      `yaml:"colour"`
	Neighbours map[state.Slot]state.Address `yaml:"neighbours,omitempty"`
	Routes     map[state.Address]state.Slot `yaml:"routes,omitempty"`
	// Center is the pixel centre of a positioned tile, only filled in by
	// SnapshotLayout.
	Center     *[2]float64                  `yaml:"center,omitempty,flow"`
}

func (s *Simulation) Snapshot() Snapshot {
	snap := Snapshot{
		Ticks:     s.Ticks,
		Converged: s.Converged(),
		Tiles:     make([]NodeSnapshot, 0, len(s.Nodes)),
	}
	for _, node := range s.Nodes {
		snap.Tiles = append(snap.Tiles, node.Snapshot())
	}
	return snap
}

// SnapshotLayout is Snapshot with pixel centres for tiles of the given radius.
func (s *Simulation) SnapshotLayout(radius float64) Snapshot {
	snap := s.Snapshot()
	for i, node := range s.Nodes {
		if node.Tile.Pos == nil {
			continue
		}
		x, y := phys.Center(*node.Tile.Pos, radius)
		snap.Tiles[i].Center = &[2]float64{x, y}
	}
	return snap
}

func (n *Node) Snapshot() NodeSnapshot {
	c := n.Tile.Color()
	ns := NodeSnapshot{
		Id:      n.Tile.Id,
		Address: n.Net.Address,
		Parent:  n.Net.Parent.String(),
		Phase:   n.Net.Phase.String(),
		Colour:  fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B),
	}
	for _, slot := range state.Slots() {
		if addr := n.Net.NeighbourAddrs[slot]; addr.Assigned() {
			if ns.Neighbours == nil {
				ns.Neighbours = make(map[state.Slot]state.Address)
			}
			ns.Neighbours[slot] = addr
		}
	}
	if len(n.Net.Routes) > 0 {
		ns.Routes = maps.Clone(n.Net.Routes)
	}
	return ns
}

// Report renders the state of every tile for humans.
func (s *Simulation) Report() string {
	sb := strings.Builder{}
	status := "converging"
	if s.Converged() {
		status = "converged"
	}
	sb.WriteString(fmt.Sprintf("Tick %d, %s\n", s.Ticks, status))
	for _, node := range s.Nodes {
		sb.WriteString("\n")
		sb.WriteString(node.Report())
	}
	return sb.String()
}

func (n *Node) Report() string {
	sb := strings.Builder{}
	net := n.Net
	sb.WriteString(fmt.Sprintf("Tile %s\n", n.Tile.Id))
	sb.WriteString(fmt.Sprintf("  Address: %s\n", net.Address))
	sb.WriteString(fmt.Sprintf("  Parent: %s\n", net.Parent))
	sb.WriteString(fmt.Sprintf("  Phase: %s\n", net.Phase))

	sb.WriteString("  Neighbours:\n")
	rt := make([]string, 0)
	for _, slot := range state.Slots() {
		if !n.Tile.HasNeighbour(slot) {
			continue
		}
		rt = append(rt, fmt.Sprintf("   - slot %s: %s (%s)", slot, net.NeighbourAddrs[slot], n.Tile.Neighbours[slot].Id))
	}
	if len(rt) == 0 {
		rt = append(rt, "   (none)")
	}
	sb.WriteString(strings.Join(rt, "\n") + "\n")

	sb.WriteString("  Route Table:\n")
	rt = make([]string, 0)
	for _, addr := range slices.Sorted(maps.Keys(net.Routes)) {
		rt = append(rt, fmt.Sprintf("   - %s via %s", addr, net.Routes[addr]))
	}
	if len(rt) == 0 {
		rt = append(rt, "   (none)")
	}
	sb.WriteString(strings.Join(rt, "\n") + "\n")
	return sb.String()
}

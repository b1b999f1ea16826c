package sim

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/snyderdan/WallTiles/core"
	"github.com/snyderdan/WallTiles/perf"
	"github.com/snyderdan/WallTiles/phys"
	"github.com/snyderdan/WallTiles/state"
)

// Node is a tile together with the layers running on it.
type Node struct {
	Tile *phys.Tile
	Net  *core.NetworkNode
	App  core.Application
}

// Simulation steps a grid of tiles in lock step. Every packet transmitted
// during a tick is delivered at the start of the next one, and every tile's
// clock reads Ticks × TickInterval.
type Simulation struct {
	Topology *state.TopologyCfg
	Cfg      state.SimCfg
	Nodes    []*Node
	Log      *slog.Logger
	Ticks    int64
	// ConvergedAt is the tick the network first converged on, -1 before that.
	ConvergedAt int64
	// Observer receives the events of every node.
	Observer core.Observer

	byId map[state.NodeId]*Node
}

func New(topo *state.TopologyCfg, cfg state.SimCfg, log *slog.Logger) (*Simulation, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	err := state.TopologyValidator(topo)
	if err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	err = state.SimConfigValidator(&cfg, topo)
	if err != nil {
		return nil, err
	}

	s := &Simulation{
		Topology:    topo,
		Cfg:         cfg,
		Log:         log,
		ConvergedAt: -1,
		byId:        make(map[state.NodeId]*Node, len(topo.Tiles)),
	}
	tiles, err := phys.Build(topo, func(state.NodeId) phys.Clock {
		return s.Millis
	})
	if err != nil {
		return nil, err
	}
	for _, tile := range tiles {
		net := core.NewNetworkNode(tile.Id, tile, log)
		net.Observer = s.observe
		node := &Node{Tile: tile, Net: net}
		s.Nodes = append(s.Nodes, node)
		s.byId[tile.Id] = node
	}
	for _, node := range s.Nodes {
		node.App = s.newApp(node)
	}
	return s, nil
}

func (s *Simulation) newApp(node *Node) core.Application {
	switch s.Cfg.App {
	case state.AppWave:
		return core.NewWaveApp(node.Net)
	case state.AppCountdown:
		app := core.NewCountdownApp(node.Net)
		cd := s.Cfg.Countdown
		if node.Tile.Id == cd.From {
			peer := s.byId[cd.To]
			app.Start = cd.Start
			// the peer is only resolved once every route is in place
			app.Peer = func() state.Address {
				if s.ConvergedAt == -1 {
					return state.NoAddress
				}
				return peer.Net.Address
			}
		}
		app.OnReceive = func(c core.Countdown, source state.Address) {
			s.Log.Info("countdown", "tile", node.Tile.Id, "value", c.Value, "from", source)
		}
		return app
	default:
		return nil
	}
}

func (s *Simulation) observe(tr core.Trace) {
	if s.Observer != nil {
		s.Observer(tr)
	}
}

// Millis is the virtual clock shared by every tile.
func (s *Simulation) Millis() int64 {
	return s.Ticks * state.TickInterval.Milliseconds()
}

func (s *Simulation) Node(id state.NodeId) *Node {
	return s.byId[id]
}

// NodeByAddress finds the tile holding addr.
func (s *Simulation) NodeByAddress(addr state.Address) *Node {
	for _, node := range s.Nodes {
		if node.Net.Address == addr {
			return node
		}
	}
	return nil
}

func (s *Simulation) Root() *Node {
	return s.byId[s.Topology.Root]
}

// Tick advances the whole grid by one step.
func (s *Simulation) Tick() {
	start := time.Now()
	for _, node := range s.Nodes {
		perf.PacketsDelivered.Add(float64(node.Tile.Deliver()))
	}
	for _, node := range s.Nodes {
		node.Net.Step()
		if node.App != nil {
			node.App.Process()
		}
	}
	s.Ticks++
	if s.ConvergedAt == -1 && s.Converged() {
		s.ConvergedAt = s.Ticks
		s.Log.Info("network converged", "ticks", s.Ticks, "tiles", len(s.Nodes))
	}
	perf.TicksPerSecond.Add(1)
	perf.TickLatency.Add(float64(time.Since(start).Microseconds()))
}

// Converged reports whether every tile is Ready and no assignment traffic is
// left in flight. Application traffic may still be moving.
func (s *Simulation) Converged() bool {
	for _, node := range s.Nodes {
		if !node.Net.IsReady() || node.Tile.Queued(isAssignment) > 0 {
			return false
		}
	}
	return true
}

func isAssignment(msg state.Message) bool {
	_, ok := msg.(state.Route)
	return !ok
}

// RunUntilConverged ticks until the network converges or maxTicks have run.
// It returns the number of ticks it took.
func (s *Simulation) RunUntilConverged(maxTicks int) (int, error) {
	for i := 0; i < maxTicks; i++ {
		if s.Converged() {
			return i, nil
		}
		s.Tick()
	}
	if s.Converged() {
		return maxTicks, nil
	}
	return maxTicks, fmt.Errorf("after %d ticks: %w", maxTicks, state.ErrNotConverged)
}

// Run ticks n more times.
func (s *Simulation) Run(n int) {
	for range n {
		s.Tick()
	}
}

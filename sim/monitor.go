package sim

import (
	"github.com/snyderdan/WallTiles/state"
)

// Monitor periodically logs progress and collects garbage on every tile.
type Monitor struct {
	lastTicks int64
}

func (m *Monitor) Init(s *state.State) error {
	s.RepeatTask(m.report, state.ReportDelay)
	s.RepeatTask(gc, state.GcDelay)
	return nil
}

func (m *Monitor) Cleanup(s *state.State) error {
	return nil
}

func (m *Monitor) report(s *state.State) error {
	sim := Get[*Driver](s).Sim
	ready := 0
	for _, node := range sim.Nodes {
		if node.Net.IsReady() {
			ready++
		}
	}
	s.Log.Info("progress",
		"ticks", sim.Ticks,
		"ticks/report", sim.Ticks-m.lastTicks,
		"ready", ready,
		"tiles", len(sim.Nodes),
		"converged", sim.ConvergedAt != -1,
	)
	m.lastTicks = sim.Ticks
	return nil
}

func gc(s *state.State) error {
	for _, node := range Get[*Driver](s).Sim.Nodes {
		node.Net.GC()
	}
	return nil
}

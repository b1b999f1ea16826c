package sim

import (
	"fmt"

	"github.com/snyderdan/WallTiles/state"
)

// Driver owns the simulation and ticks it every TickInterval.
type Driver struct {
	Sim *Simulation
}

func (d *Driver) Init(s *state.State) error {
	sim, err := New(&s.Topology, s.SimCfg, s.Log)
	if err != nil {
		return err
	}
	d.Sim = sim
	s.Log.Info("simulation ready", "tiles", len(sim.Nodes), "root", s.Topology.Root, "app", sim.Cfg.App)
	s.RepeatTask(d.tick, state.TickInterval)
	return nil
}

func (d *Driver) Cleanup(s *state.State) error {
	return nil
}

func (d *Driver) tick(s *state.State) error {
	if s.Context.Err() != nil {
		return nil
	}
	d.Sim.Tick()
	if d.Sim.ConvergedAt == -1 {
		if d.Sim.Ticks >= int64(d.Sim.Cfg.MaxTicks) {
			return fmt.Errorf("after %d ticks: %w", d.Sim.Ticks, state.ErrNotConverged)
		}
		return nil
	}
	if d.Sim.Cfg.StopOnConverge && d.Sim.Ticks-d.Sim.ConvergedAt >= int64(d.Sim.Cfg.Linger) {
		s.Cancel(fmt.Errorf("at tick %d: %w", d.Sim.ConvergedAt, state.ErrConverged))
	}
	return nil
}

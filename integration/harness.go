//go:build integration

package integration

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/snyderdan/WallTiles/sim"
	"github.com/snyderdan/WallTiles/state"
)

type Signal chan bool

func NewSignal() Signal {
	return make(chan bool)
}
func (s Signal) Trigger() {
	select {
	case <-s:
	default:
		close(s)
	}
}
func (s Signal) Triggered() bool {
	select {
	case <-s:
		return true
	default:
		return false
	}
}
func (s Signal) Wait() {
	<-s
}

// VirtualHarness runs a simulation on its own dispatch loop, the way the
// CLI does, and lets tests query it while it runs.
type VirtualHarness struct {
	Topology state.TopologyCfg
	Cfg      state.SimCfg
	Log      *slog.Logger
	Context  context.Context
	Cancel   context.CancelCauseFunc
	State    *state.State
	done     chan struct{}
}

func (v *VirtualHarness) Start() chan error {
	ctx, cancel := context.WithCancelCause(context.Background())
	v.Context = ctx
	v.Cancel = cancel
	v.done = make(chan struct{})
	errChan := make(chan error, 128) // a large number so we dont get blocked
	go func() {
		defer close(v.done)
		err := sim.Start(ctx, v.Topology, v.Cfg, v.Log, &v.State)
		if err != nil {
			errChan <- err
		}
	}()
	// wait for the main loop to start
	for v.State == nil || !v.State.Started.Load() {
		select {
		case <-ctx.Done():
			return errChan
		case <-time.After(time.Millisecond * 10):
		case err := <-errChan:
			errChan <- err
			return errChan
		}
	}
	return errChan
}

// Query runs fun against the live simulation on its dispatch loop.
func (v *VirtualHarness) Query(fun func(s *sim.Simulation) any) (any, error) {
	return v.State.DispatchWait(func(s *state.State) (any, error) {
		return fun(sim.Get[*sim.Driver](s).Sim), nil
	})
}

// WaitFor polls cond until it holds or timeout passes.
func (v *VirtualHarness) WaitFor(cond func(s *sim.Simulation) bool, timeout time.Duration) error {
	deadline := time.After(timeout)
	for {
		ok, err := v.Query(func(s *sim.Simulation) any {
			return cond(s)
		})
		if err != nil {
			return err
		}
		if ok.(bool) {
			return nil
		}
		select {
		case <-deadline:
			return fmt.Errorf("condition not met after %s", timeout)
		case <-time.After(time.Millisecond * 20):
		}
	}
}

func (v *VirtualHarness) Stop() {
	v.Cancel(fmt.Errorf("stopping harness"))
	if v.State != nil {
		sim.Stop(v.State)
	}
	<-v.done
}

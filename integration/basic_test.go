//go:build integration

package integration

import (
	"testing"
	"time"

	"github.com/snyderdan/WallTiles/core"
	"github.com/snyderdan/WallTiles/sim"
	"github.com/snyderdan/WallTiles/state"
	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestStartStop(t *testing.T) {
	defer goleak.VerifyNone(t)
	vh := &VirtualHarness{
		Topology: state.HexagonTopology(1),
		Log:      state.NewTestLogger(t),
	}
	errs := vh.Start()
	select {
	case <-time.After(500 * time.Millisecond):
	case err := <-errs:
		t.Error(err)
	}
	vh.Stop()
}

func TestConvergesWhileRunning(t *testing.T) {
	defer goleak.VerifyNone(t)
	vh := &VirtualHarness{
		Topology: state.HexagonTopology(2),
		Cfg:      state.SimCfg{App: state.AppNone},
		Log:      state.NewTestLogger(t),
	}
	errs := vh.Start()

	err := vh.WaitFor(func(s *sim.Simulation) bool {
		return s.Converged()
	}, 30*time.Second)
	assert.NoError(t, err)

	res, err := vh.Query(func(s *sim.Simulation) any {
		return s.Root().Net.Routes
	})
	assert.NoError(t, err)
	assert.Len(t, res, 18)

	select {
	case err := <-errs:
		t.Error(err)
	default:
	}
	vh.Stop()
}

func TestWaveReachesEveryTile(t *testing.T) {
	defer goleak.VerifyNone(t)
	vh := &VirtualHarness{
		Topology: state.HexagonTopology(1),
		Cfg:      state.SimCfg{App: state.AppWave},
		Log:      state.NewTestLogger(t),
	}
	errs := vh.Start()

	err := vh.WaitFor(func(s *sim.Simulation) bool {
		for _, node := range s.Nodes {
			if node.App.(*core.WaveApp).Highest() < 3 {
				return false
			}
		}
		return true
	}, 30*time.Second)
	assert.NoError(t, err)

	select {
	case err := <-errs:
		t.Error(err)
	default:
	}
	vh.Stop()
}

func TestStopsOnConvergence(t *testing.T) {
	defer goleak.VerifyNone(t)
	vh := &VirtualHarness{
		Topology: state.StarTopology(),
		Cfg:      state.SimCfg{App: state.AppNone, StopOnConverge: true},
		Log:      state.NewTestLogger(t),
	}
	errs := vh.Start()
	select {
	case <-vh.done:
	case err := <-errs:
		t.Error(err)
	case <-time.After(30 * time.Second):
		t.Error("simulation did not stop")
	}
	vh.Stop()
}

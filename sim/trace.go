package sim

import (
	"github.com/dustin/go-broadcast"
	"github.com/snyderdan/WallTiles/core"
	"github.com/snyderdan/WallTiles/state"
)

// Trace broadcasts the events of every tile to registered listeners. With
// Trace enabled in the config, it logs them as well.
type Trace struct {
	broadcast.Broadcaster
	log chan any
}

func (t *Trace) Init(s *state.State) error {
	t.Broadcaster = broadcast.NewBroadcaster(1024)
	Get[*Driver](s).Sim.Observer = func(tr core.Trace) {
		t.TrySubmit(tr)
	}
	if s.SimCfg.Trace {
		t.log = make(chan any, 1024)
		t.Register(t.log)
		s.RepeatTask(t.drain, state.TickInterval)
	}
	return nil
}

func (t *Trace) Cleanup(s *state.State) error {
	return t.Broadcaster.Close()
}

func (t *Trace) drain(s *state.State) error {
	for {
		select {
		case e := <-t.log:
			tr := e.(core.Trace)
			s.Log.Info("trace", "tile", tr.Tile, "event", tr.Event, "desc", tr.Desc, "addr", tr.Address, "phase", tr.Phase, "slot", tr.Slot)
		default:
			return nil
		}
	}
}

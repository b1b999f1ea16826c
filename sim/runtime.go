package sim

import (
	"context"
	"errors"
	"log/slog"
	"reflect"
	"runtime"
	"time"

	"github.com/snyderdan/WallTiles/perf"
	"github.com/snyderdan/WallTiles/state"
)

// Start runs a simulation on the dispatch loop until ctx is done, the network
// converges (when StopOnConverge is set), or MaxTicks run out first.
// initState, if not nil, receives the state before any module starts.
func Start(ctx context.Context, topo state.TopologyCfg, cfg state.SimCfg, logger *slog.Logger, initState **state.State) error {
	ctx, cancel := context.WithCancelCause(ctx)

	dispatch := make(chan func(*state.State) error, 128)

	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	cfg.ApplyDefaults()

	s := state.State{
		Modules: make(map[string]state.NyModule),
		Env: &state.Env{
			Context:         ctx,
			Cancel:          cancel,
			DispatchChannel: dispatch,
			Topology:        topo,
			SimCfg:          cfg,
			Log:             logger,
		},
	}
	if initState != nil {
		*initState = &s
	}

	s.Log.Info("init modules")
	err := initModules(&s)
	if err != nil {
		s.Cancel(err)
		return err
	}
	s.Log.Info("init modules complete")

	err = MainLoop(&s, dispatch)
	if err != nil {
		return err
	}
	cause := context.Cause(ctx)
	if errors.Is(cause, state.ErrConverged) || errors.Is(cause, context.Canceled) || errors.Is(cause, context.DeadlineExceeded) {
		return nil
	}
	return cause
}

// Stop ends a running simulation.
func Stop(s *state.State) {
	s.Cancel(context.Canceled)
}

func initModules(s *state.State) error {
	var modules []state.NyModule
	modules = append(modules, &Driver{})
	modules = append(modules, &Monitor{})
	modules = append(modules, &Trace{})

	for _, module := range modules {
		s.Modules[reflect.TypeOf(module).String()] = module
		if err := module.Init(s); err != nil {
			return err
		}
	}
	return nil
}

func MainLoop(s *state.State, dispatch <-chan func(*state.State) error) error {
	s.Log.Debug("started main loop")
	s.Started.Store(true)
	for {
		select {
		case fun := <-dispatch:
			if fun == nil {
				goto endLoop
			}
			start := time.Now()
			err := fun(s)
			if err != nil {
				s.Log.Error("error occurred during dispatch: ", "error", err)
				s.Cancel(err)
			}
			elapsed := time.Since(start)
			perf.DispatchLatency.Add(float64(elapsed.Microseconds()))
			if elapsed > state.TickInterval {
				s.Log.Warn("dispatch took a long time!", "fun", runtime.FuncForPC(reflect.ValueOf(fun).Pointer()).Name(), "elapsed", elapsed, "len", len(dispatch))
			}
		case <-s.Context.Done():
			goto endLoop
		}
	}
endLoop:
	s.Log.Info("stopped main loop", "reason", context.Cause(s.Context).Error())
	cleanup(s)
	return nil
}

func cleanup(s *state.State) {
	s.Log.Info("cleaning up modules")
	for moduleName, module := range s.Modules {
		err := module.Cleanup(s)
		if err != nil {
			s.Log.Error("error occurred during cleanup: ", "module", moduleName, "error", err)
		}
	}
	s.Cancel(context.Canceled)
}

func Get[T state.NyModule](s *state.State) T {
	t := reflect.TypeFor[T]()
	return s.Modules[t.String()].(T)
}

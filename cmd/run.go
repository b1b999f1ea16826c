package cmd

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/snyderdan/WallTiles/sim"
	"github.com/snyderdan/WallTiles/state"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	runSimCfgPath  string
	runCfg         state.SimCfg
	countdownFrom  string
	countdownTo    string
	countdownStart int
	runDebugAddr   string
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a simulation in real time",
	Long: `Runs the topology one tick every 10ms until interrupted.
The root starts a colour wave once every tile has an address, unless another app is selected.`,
	Run: func(cmd *cobra.Command, args []string) {
		topo := loadTopology()

		cfg := runCfg
		if runSimCfgPath != "" {
			fileCfg, err := state.ReadSimConfig(runSimCfgPath)
			if err != nil {
				panic(err)
			}
			cfg = *fileCfg
			// flags given explicitly win over the file
			cmd.Flags().Visit(func(f *pflag.Flag) {
				applyRunFlag(&cfg, f.Name)
			})
		}
		if cfg.App == state.AppCountdown && cfg.Countdown == nil {
			cfg.Countdown = &state.CountdownCfg{
				From:  state.NodeId(countdownFrom),
				To:    state.NodeId(countdownTo),
				Start: countdownStart,
			}
		}
		cfg.ApplyDefaults()
		err := state.SimConfigValidator(&cfg, topo)
		if err != nil {
			panic(err)
		}

		level := slog.LevelInfo
		if ok, _ := cmd.Flags().GetBool("verbose"); ok {
			level = slog.LevelDebug
		}
		logger, err := sim.NewLogger(level, cfg.LogPath)
		if err != nil {
			panic(err)
		}

		if runDebugAddr != "" {
			go func() {
				log.Println(http.ListenAndServe(runDebugAddr, nil))
			}()
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		logger.Info("WallTiles has been initialized. To gracefully exit, send SIGINT or Ctrl+C.")

		err = sim.Start(ctx, *topo, cfg, logger, nil)
		if err != nil {
			logger.Error("simulation failed", "error", err)
			stop()
			os.Exit(1)
		}
	},
	GroupID: "sim",
}

func applyRunFlag(cfg *state.SimCfg, name string) {
	switch name {
	case "app":
		cfg.App = runCfg.App
	case "max-ticks":
		cfg.MaxTicks = runCfg.MaxTicks
	case "stop":
		cfg.StopOnConverge = runCfg.StopOnConverge
	case "linger":
		cfg.Linger = runCfg.Linger
	case "log":
		cfg.LogPath = runCfg.LogPath
	case "trace":
		cfg.Trace = runCfg.Trace
	}
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolP("verbose", "v", false, "Verbose output")
	runCmd.Flags().StringVarP(&runSimCfgPath, "config", "c", "", "simulation options as yaml, flags override it")
	runCmd.Flags().StringVarP(&runCfg.App, "app", "a", state.AppWave, "application to run on every tile: wave, countdown or none")
	runCmd.Flags().IntVar(&runCfg.MaxTicks, "max-ticks", state.DefaultMaxTicks, "give up when the network has not converged after this many ticks")
	runCmd.Flags().BoolVarP(&runCfg.StopOnConverge, "stop", "s", false, "stop once the network has converged")
	runCmd.Flags().IntVar(&runCfg.Linger, "linger", state.DefaultLinger, "ticks to keep running after convergence when --stop is set")
	runCmd.Flags().StringVarP(&runCfg.LogPath, "log", "l", "", "also append logs to this file")
	runCmd.Flags().BoolVarP(&runCfg.Trace, "trace", "r", false, "log every network event")
	runCmd.Flags().StringVar(&countdownFrom, "countdown-from", "", "countdown initiator tile")
	runCmd.Flags().StringVar(&countdownTo, "countdown-to", "", "countdown peer tile")
	runCmd.Flags().IntVar(&countdownStart, "countdown-start", 10, "countdown start value")
	runCmd.Flags().StringVar(&runDebugAddr, "debug", "", "serve /debug/metrics and /debug/vars on this address")
}

package cmd

import (
	"fmt"
	"os"

	"github.com/snyderdan/WallTiles/sim"
	"github.com/snyderdan/WallTiles/state"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	inspectYaml     bool
	inspectLayout   float64
	inspectMaxTicks int
	inspectExtra    int
)

var inspectCmd = &cobra.Command{
	Use:     "inspect",
	Aliases: []string{"i"},
	Short:   "Converges the topology headless and prints every tile's state",
	Run: func(cmd *cobra.Command, args []string) {
		topo := loadTopology()
		s, err := sim.New(topo, state.SimCfg{App: state.AppNone}, nil)
		if err != nil {
			panic(err)
		}
		ticks, err := s.RunUntilConverged(inspectMaxTicks)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err.Error())
		} else {
			fmt.Fprintf(os.Stderr, "converged after %d ticks\n", ticks)
		}
		s.Run(inspectExtra)

		if !inspectYaml {
			fmt.Print(s.Report())
			return
		}
		snap := s.Snapshot()
		if inspectLayout > 0 {
			snap = s.SnapshotLayout(inspectLayout)
		}
		out, err := yaml.Marshal(&snap)
		if err != nil {
			panic(err)
		}
		fmt.Print(string(out))
	},
	GroupID: "sim",
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().BoolVarP(&inspectYaml, "yaml", "y", false, "print a yaml snapshot instead of the report")
	inspectCmd.Flags().Float64Var(&inspectLayout, "layout", 0, "add pixel centres for tiles of this radius to the yaml snapshot")
	inspectCmd.Flags().IntVar(&inspectMaxTicks, "max-ticks", state.DefaultMaxTicks, "give up after this many ticks")
	inspectCmd.Flags().IntVar(&inspectExtra, "ticks", 0, "extra ticks to run after convergence")
}

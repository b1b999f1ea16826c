package cmd

import (
	"fmt"

	"github.com/snyderdan/WallTiles/state"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	newOutput string
	newSize   int
	newSeed   uint64
)

var newCmd = &cobra.Command{
	Use:       "new <hexagon|star|line|random>",
	Short:     "Generates a topology",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"hexagon", "star", "line", "random"},
	Run: func(cmd *cobra.Command, args []string) {
		var topo state.TopologyCfg
		switch args[0] {
		case "hexagon":
			topo = state.HexagonTopology(newSize)
		case "star":
			topo = state.StarTopology()
		case "line":
			topo = state.LineTopology(newSize)
		case "random":
			topo = state.RandomTopology(newSize, newSeed)
		default:
			panic(fmt.Sprintf("unknown topology %q", args[0]))
		}
		err := state.TopologyValidator(&topo)
		if err != nil {
			panic(err)
		}
		out, err := yaml.Marshal(&topo)
		if err != nil {
			panic(err)
		}
		writeOutput(newOutput, out)
	},
	GroupID: "cfg",
}

func init() {
	rootCmd.AddCommand(newCmd)
	newCmd.Flags().StringVarP(&newOutput, "output", "o", "-", "where to write the topology, - for stdout")
	newCmd.Flags().IntVarP(&newSize, "size", "n", 2, "hexagon radius, or number of tiles for line and random")
	newCmd.Flags().Uint64Var(&newSeed, "seed", 1, "seed for random topologies")
}

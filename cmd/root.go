package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var topologyPath string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "walltiles",
	Short: "Wall tile network simulator",
	Long: `WallTiles simulates a wall of hexagonal tiles that only talk to the tiles next to them.
The tiles assign themselves addresses along a spanning tree grown from a root tile, then route messages along that tree.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddGroup(&cobra.Group{
		ID:    "sim",
		Title: "Simulation",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "cfg",
		Title: "Topology",
	})
	rootCmd.PersistentFlags().StringVarP(&topologyPath, "topology", "t", "topology.yaml", "topology to simulate")
}

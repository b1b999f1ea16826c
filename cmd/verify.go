package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var verifyLinks bool

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Checks that the topology is valid",
	Run: func(cmd *cobra.Command, args []string) {
		topo := loadTopology()
		edges, err := topo.Edges()
		if err != nil {
			panic(err)
		}
		fmt.Println("Topology is valid")
		fmt.Printf("tiles: %d, links: %d, root: %s\n", len(topo.Tiles), len(edges), topo.Root)
		if verifyLinks {
			for _, e := range edges {
				fmt.Printf(" - %s <-> %s\n", e.V1, e.V2)
			}
		}
	},
	GroupID: "cfg",
}

func init() {
	rootCmd.AddCommand(verifyCmd)
	verifyCmd.Flags().BoolVarP(&verifyLinks, "links", "l", false, "list every link")
}

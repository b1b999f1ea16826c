package cmd

import (
	"fmt"
	"os"

	"github.com/snyderdan/WallTiles/state"
)

func loadTopology() *state.TopologyCfg {
	topo, err := state.ReadTopology(topologyPath)
	if err != nil {
		panic(err)
	}
	err = state.TopologyValidator(topo)
	if err != nil {
		panic(err)
	}
	return topo
}

// writeOutput writes data to path, or to stdout when path is "-".
func writeOutput(path string, data []byte) {
	if path == "-" {
		fmt.Print(string(data))
		return
	}
	err := os.WriteFile(path, data, 0600)
	if err != nil {
		panic(err)
	}
	fmt.Fprintf(os.Stderr, "wrote %s\n", path)
}

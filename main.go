package main

import "github.com/snyderdan/WallTiles/cmd"

func main() {
	cmd.Execute()
}

package state

import (
	"fmt"
	"regexp"
	"slices"
)

var namePattern, _ = regexp.Compile("^[0-9a-z._-]+$")

func NameValidator(s string) error {
	if !namePattern.MatchString(s) {
		return fmt.Errorf("%s is not a valid name, must match pattern %s", s, namePattern.String())
	}
	if len(s) > 100 {
		return fmt.Errorf("len(\"%s\") = %d > 100 is too long", s, len(s))
	}
	return nil
}

func TopologyValidator(cfg *TopologyCfg) error {
	if len(cfg.Tiles) == 0 {
		return fmt.Errorf("topology has no tiles")
	}
	if len(cfg.Tiles) > int(MaxAddress) {
		return fmt.Errorf("topology has %d tiles: %w", len(cfg.Tiles), ErrAddressSpaceExhausted)
	}
	ids := make(map[NodeId]struct{})
	positions := make(map[HexCoord]NodeId)
	for _, tile := range cfg.Tiles {
		err := NameValidator(string(tile.Id))
		if err != nil {
			return err
		}
		if _, ok := ids[tile.Id]; ok {
			return fmt.Errorf("duplicate tile: %s", tile.Id)
		}
		ids[tile.Id] = struct{}{}
		if tile.Pos != nil {
			if other, ok := positions[*tile.Pos]; ok {
				return fmt.Errorf("tiles %s and %s share position %s", other, tile.Id, *tile.Pos)
			}
			positions[*tile.Pos] = tile.Id
		}
	}
	if cfg.Root == "" {
		return fmt.Errorf("no root tile defined")
	}
	if _, ok := ids[cfg.Root]; !ok {
		return fmt.Errorf("root %s is not a tile", cfg.Root)
	}
	adj, err := cfg.Adjacency()
	if err != nil {
		return err
	}

	// every tile must be reachable from the root, otherwise it never gets an address
	seen := map[NodeId]bool{cfg.Root: true}
	queue := []NodeId{cfg.Root}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, n := range adj[cur] {
			if n != "" && !seen[n] {
				seen[n] = true
				queue = append(queue, n)
			}
		}
	}
	for _, tile := range cfg.Tiles {
		if !seen[tile.Id] {
			return fmt.Errorf("tile %s is not reachable from root %s", tile.Id, cfg.Root)
		}
	}
	return nil
}

func SimConfigValidator(cfg *SimCfg, topo *TopologyCfg) error {
	if !slices.Contains([]string{AppWave, AppCountdown, AppNone, ""}, cfg.App) {
		return fmt.Errorf("unknown app %q", cfg.App)
	}
	if cfg.MaxTicks < 0 {
		return fmt.Errorf("max_ticks must not be negative")
	}
	if cfg.Linger < 0 {
		return fmt.Errorf("linger must not be negative")
	}
	if cfg.App == AppCountdown {
		cd := cfg.Countdown
		if cd == nil {
			return fmt.Errorf("countdown app requires a countdown section")
		}
		if topo.GetTile(cd.From) == nil {
			return fmt.Errorf("countdown tile %s not defined", cd.From)
		}
		if topo.GetTile(cd.To) == nil {
			return fmt.Errorf("countdown tile %s not defined", cd.To)
		}
		if cd.From == cd.To {
			return fmt.Errorf("countdown tiles must differ")
		}
		if cd.Start <= 0 {
			return fmt.Errorf("countdown start must be positive")
		}
	}
	return nil
}

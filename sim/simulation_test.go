package sim

import (
	"fmt"
	"log/slog"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/snyderdan/WallTiles/core"
	"github.com/snyderdan/WallTiles/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var quiet = slog.New(slog.DiscardHandler)

func newSim(t *testing.T, topo state.TopologyCfg, app string) *Simulation {
	t.Helper()
	s, err := New(&topo, state.SimCfg{App: app}, quiet)
	require.NoError(t, err)
	return s
}

func converge(t *testing.T, s *Simulation) {
	t.Helper()
	_, err := s.RunUntilConverged(state.DefaultMaxTicks)
	require.NoError(t, err)
}

func assertContiguous(t *testing.T, s *Simulation) {
	t.Helper()
	addrs := make([]state.Address, 0, len(s.Nodes))
	want := make([]state.Address, 0, len(s.Nodes))
	for i, node := range s.Nodes {
		addrs = append(addrs, node.Net.Address)
		want = append(want, state.Address(i+1))
	}
	if diff := cmp.Diff(want, addrs, cmpopts.SortSlices(func(a, b state.Address) bool { return a < b })); diff != "" {
		t.Errorf("addresses are not contiguous (-want +got):\n%s", diff)
	}
	assert.Equal(t, state.Address(1), s.Root().Net.Address)
}

func TestConvergence(t *testing.T) {
	tests := []struct {
		name string
		topo state.TopologyCfg
	}{
		{"single", state.LineTopology(1)},
		{"pair", state.LineTopology(2)},
		{"line", state.LineTopology(12)},
		{"hexagon", state.HexagonTopology(1)},
		{"hexagon3", state.HexagonTopology(3)},
		{"star", state.StarTopology()},
	}
	for seed := range uint64(5) {
		tests = append(tests, struct {
			name string
			topo state.TopologyCfg
		}{fmt.Sprintf("random%d", seed), state.RandomTopology(40, seed)})
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSim(t, tt.topo, state.AppNone)
			converge(t, s)
			assertContiguous(t, s)
			for _, node := range s.Nodes {
				assert.Equal(t, state.Ready, node.Net.Phase, "tile %s", node.Tile.Id)
				// nobody routes to itself
				_, ok := node.Net.Routes[node.Net.Address]
				assert.False(t, ok, "tile %s routes to itself", node.Tile.Id)
				if node.Tile.IsRoot() {
					assert.True(t, node.Net.Parent.IsLocal())
					assert.Len(t, node.Net.Routes, len(s.Nodes)-1)
				} else {
					assert.True(t, node.Tile.HasNeighbour(node.Net.Parent.Slot))
				}
			}
		})
	}
}

func TestStar(t *testing.T) {
	s := newSim(t, state.StarTopology(), state.AppNone)
	converge(t, s)
	assertContiguous(t, s)

	root := s.Root()
	assert.Len(t, root.Net.Routes, 6)
	for _, slot := range state.Slots() {
		peer := root.Tile.Neighbours[slot]
		node := s.Node(peer.Id)
		// peers are offered in slot order
		assert.Equal(t, state.Address(slot+2), node.Net.Address)
		assert.Equal(t, slot, root.Net.Routes[node.Net.Address])
		assert.Equal(t, slot.Opposite(), node.Net.Parent.Slot)
		assert.Empty(t, node.Net.Routes)
		assert.Equal(t, node.Net.Address, root.Net.NeighbourAddrs[slot])
	}
}

func TestHexagonDownstreamCoversSubtree(t *testing.T) {
	s := newSim(t, state.HexagonTopology(2), state.AppNone)
	converge(t, s)

	// every route leads towards a tile whose subtree holds the address
	for _, node := range s.Nodes {
		for addr, slot := range node.Net.Routes {
			next := s.Node(node.Tile.Neighbours[slot].Id)
			assert.Equal(t, slot.Opposite(), next.Net.Parent.Slot, "route %s of %s leaves the tree", addr, node.Tile.Id)
			if next.Net.Address != addr {
				_, ok := next.Net.Routes[addr]
				assert.True(t, ok, "%s has no route to %s", next.Tile.Id, addr)
			}
		}
	}
}

func TestParentNeverChanges(t *testing.T) {
	s := newSim(t, state.RandomTopology(30, 7), state.AppNone)
	adopted := make(map[state.NodeId][]state.Slot)
	rejected := 0
	s.Observer = func(tr core.Trace) {
		switch tr.Event {
		case core.AddressAdopted:
			adopted[tr.Tile] = append(adopted[tr.Tile], tr.Slot)
		case core.OfferRejected:
			rejected++
		case core.ProtocolViolation, core.Unroutable:
			t.Errorf("unexpected %s on %s: %s", tr.Event, tr.Tile, tr.Desc)
		}
	}
	converge(t, s)

	assert.Greater(t, rejected, 0)
	for _, node := range s.Nodes {
		slots := adopted[node.Tile.Id]
		assert.Len(t, slots, 1, "tile %s", node.Tile.Id)
		assert.Equal(t, slots[0], node.Net.Parent.Slot)
	}
}

func TestCursorIncreasesWithinRound(t *testing.T) {
	s := newSim(t, state.HexagonTopology(2), state.AppNone)
	offered := make(map[state.NodeId][]state.Slot)
	replied := make(map[state.NodeId][]state.Slot)
	s.Observer = func(tr core.Trace) {
		switch tr.Event {
		case core.PoolGranted:
			// new round
			offered[tr.Tile] = nil
			replied[tr.Tile] = nil
		case core.OfferSent:
			o := offered[tr.Tile]
			if len(o) > 0 && o[len(o)-1] >= tr.Slot {
				t.Errorf("%s offered slot %s after %s in one round", tr.Tile, tr.Slot, o[len(o)-1])
			}
			offered[tr.Tile] = append(o, tr.Slot)
		case core.ReplyAccepted:
			r := replied[tr.Tile]
			if len(r) > 0 && r[len(r)-1] >= tr.Slot {
				t.Errorf("%s accepted a reply from slot %s after %s in one round", tr.Tile, tr.Slot, r[len(r)-1])
			}
			replied[tr.Tile] = append(r, tr.Slot)
			assert.Greater(t, tr.Cursor, tr.Slot)
		}
	}
	converge(t, s)
}

func TestRoundTrip(t *testing.T) {
	s := newSim(t, state.RandomTopology(25, 3), state.AppNone)
	converge(t, s)

	for _, pair := range [][2]int{{0, 24}, {24, 0}, {5, 17}, {17, 5}, {3, 3}} {
		from := s.Nodes[pair[0]]
		to := s.Nodes[pair[1]]
		payload := fmt.Sprintf("%s to %s", from.Tile.Id, to.Tile.Id)
		err := from.Net.Send(to.Net.Address, payload)
		assert.NoError(t, err)

		for range len(s.Nodes) * 2 {
			if to.Net.HasDelivery() {
				break
			}
			s.Tick()
		}
		if !assert.True(t, to.Net.HasDelivery(), payload) {
			continue
		}
		msg := to.Net.TakeDelivery()
		assert.Equal(t, state.Route{Target: to.Net.Address, Source: from.Net.Address, Payload: payload}, msg)
		assert.False(t, to.Net.HasDelivery())
	}
}

func TestNeighbourAddressesKnown(t *testing.T) {
	s := newSim(t, state.HexagonTopology(2), state.AppNone)
	converge(t, s)

	for _, node := range s.Nodes {
		for _, slot := range state.Slots() {
			peer := node.Tile.Neighbours[slot]
			if peer == nil {
				continue
			}
			assert.Equal(t, s.Node(peer.Id).Net.Address, node.Net.NeighbourAddrs[slot], "tile %s slot %s", node.Tile.Id, slot)
		}
	}
}

func TestWaveFlood(t *testing.T) {
	s := newSim(t, state.HexagonTopology(2), state.AppWave)
	applied := make(map[state.NodeId][]uint64)
	for _, node := range s.Nodes {
		id := node.Tile.Id
		node.App.(*core.WaveApp).OnApply = func(p core.WavePayload) {
			applied[id] = append(applied[id], p.Seq)
		}
	}
	converge(t, s)
	s.Run(300)

	root := s.Root().App.(*core.WaveApp)
	assert.Greater(t, root.Highest(), uint64(5))
	for _, node := range s.Nodes {
		seqs := applied[node.Tile.Id]
		assert.NotEmpty(t, seqs, "tile %s never applied a frame", node.Tile.Id)
		for i := 1; i < len(seqs); i++ {
			assert.Greater(t, seqs[i], seqs[i-1], "tile %s", node.Tile.Id)
		}
	}
	// every tile has been painted by the wave
	for _, node := range s.Nodes {
		c := node.Tile.Color()
		assert.Equal(t, uint8(0), c.B, "tile %s", node.Tile.Id)
	}
}

func TestCountdown(t *testing.T) {
	topo := state.HexagonTopology(2)
	s, err := New(&topo, state.SimCfg{
		App:       state.AppCountdown,
		Countdown: &state.CountdownCfg{From: "t1", To: "t18", Start: 4},
	}, quiet)
	require.NoError(t, err)
	got := make(map[state.NodeId][]int)
	for _, id := range []state.NodeId{"t1", "t18"} {
		app := s.Node(id).App.(*core.CountdownApp)
		app.OnReceive = func(c core.Countdown, source state.Address) {
			got[id] = append(got[id], c.Value)
		}
	}
	converge(t, s)
	s.Run(200)

	assert.Equal(t, []int{4, 2, 0}, got["t18"])
	assert.Equal(t, []int{3, 1}, got["t1"])
}

func TestVirtualClock(t *testing.T) {
	s := newSim(t, state.LineTopology(3), state.AppNone)
	assert.Equal(t, int64(0), s.Millis())
	s.Run(5)
	assert.Equal(t, 5*state.TickInterval.Milliseconds(), s.Millis())
	assert.Equal(t, s.Millis(), s.Root().Tile.Millis())
}

func TestNotConverged(t *testing.T) {
	s := newSim(t, state.HexagonTopology(2), state.AppNone)
	ticks, err := s.RunUntilConverged(3)
	assert.Equal(t, 3, ticks)
	assert.ErrorIs(t, err, state.ErrNotConverged)
	assert.False(t, s.Converged())
	assert.Equal(t, int64(-1), s.ConvergedAt)
}

func TestInvalidTopology(t *testing.T) {
	topo := state.LineTopology(3)
	topo.Root = "nope"
	_, err := New(&topo, state.SimCfg{}, quiet)
	assert.Error(t, err)

	topo = state.LineTopology(3)
	_, err = New(&topo, state.SimCfg{App: "paint"}, quiet)
	assert.Error(t, err)
}

func TestSnapshot(t *testing.T) {
	s := newSim(t, state.LineTopology(3), state.AppNone)
	converge(t, s)

	snap := s.SnapshotLayout(state.TileRadius)
	assert.True(t, snap.Converged)
	assert.Len(t, snap.Tiles, 3)
	mid := snap.Tiles[1]
	assert.Equal(t, state.NodeId("t1"), mid.Id)
	assert.Equal(t, state.Address(2), mid.Address)
	assert.Equal(t, "3", mid.Parent)
	assert.Equal(t, "ready", mid.Phase)
	assert.Equal(t, map[state.Slot]state.Address{0: 3, 3: 1}, mid.Neighbours)
	assert.Equal(t, map[state.Address]state.Slot{3: 0}, mid.Routes)
	assert.NotNil(t, mid.Center)

	report := s.Report()
	assert.Contains(t, report, "Tile t1\n  Address: 2\n  Parent: 3\n  Phase: ready\n")
	assert.Contains(t, report, "   - 3 via 0\n")
}

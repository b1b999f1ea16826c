package core

import (
	"fmt"
	"slices"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/snyderdan/WallTiles/state"
)

type HarnessEvent struct {
	Message string
	Args    []any
}

func MakeEvent(msg string, args ...any) HarnessEvent {
	return HarnessEvent{
		Message: msg,
		Args:    args,
	}
}

// PhysHarness is a Physical that records everything the node does to it.
type PhysHarness struct {
	neighbours [state.NumSlots]bool
	root       bool
	millis     int64
	inbox      []state.Packet
	actions    []HarnessEvent
}

func NewPhysHarness(root bool, slots ...state.Slot) *PhysHarness {
	h := &PhysHarness{root: root}
	for _, slot := range slots {
		h.neighbours[slot] = true
	}
	return h
}

func (h *PhysHarness) HasNeighbour(slot state.Slot) bool {
	return slot.Valid() && h.neighbours[slot]
}

func (h *PhysHarness) Transmit(slot state.Slot, msg state.Message) {
	h.actions = append(h.actions, MakeEvent("TRANSMIT", slot, msg))
}

func (h *PhysHarness) HasPacket() bool {
	return len(h.inbox) > 0
}

func (h *PhysHarness) GetPacket() state.Packet {
	pkt := h.inbox[0]
	h.inbox = h.inbox[1:]
	return pkt
}

func (h *PhysHarness) Millis() int64 {
	return h.millis
}

func (h *PhysHarness) IsRoot() bool {
	return h.root
}

func (h *PhysHarness) SetColor(r, g, b uint8) {
	h.actions = append(h.actions, MakeEvent("COLOR", r, g, b))
}

// Receive queues msg as if it arrived on slot.
func (h *PhysHarness) Receive(slot state.Slot, msg state.Message) {
	h.inbox = append(h.inbox, state.Packet{From: slot, Msg: msg})
}

func (h *PhysHarness) GetActions() HarnessEvents {
	x := h.actions
	h.actions = make([]HarnessEvent, 0)
	return x
}

type HarnessEvents []HarnessEvent

func (h HarnessEvents) String() string {
	out := make([]string, 0)
	for _, action := range h {
		cur := action.Message
		for _, arg := range action.Args {
			cur += " " + fmt.Sprint(arg)
		}
		out = append(out, cur)
	}
	slices.Sort(out)
	return strings.Join(out, "\n")
}

func (e HarnessEvents) contains(msg string, args ...any) bool {
	for _, event := range e {
		if event.Message != msg || len(event.Args) < len(args) {
			continue
		}
		match := true
		for i, arg := range args {
			if !cmp.Equal(event.Args[i], arg) {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

func (e HarnessEvents) AssertContains(t *testing.T, msg string, args ...any) {
	t.Helper()
	if e.contains(msg, args...) {
		return
	}
	t.Fatal("Expected event not found: ", msg, " with args: ", args, " in ", e)
}

func (e HarnessEvents) AssertNotContains(t *testing.T, msg string, args ...any) {
	t.Helper()
	if e.contains(msg, args...) {
		t.Fatal("Unexpected event found: ", msg, " with args: ", args, " in ", e)
	}
}

// TraceRecorder collects the events a node reports to its Observer.
type TraceRecorder struct {
	traces []Trace
}

func (r *TraceRecorder) Observe(tr Trace) {
	r.traces = append(r.traces, tr)
}

func (r *TraceRecorder) Count(ev NetworkEvent) int {
	cnt := 0
	for _, tr := range r.traces {
		if tr.Event == ev {
			cnt++
		}
	}
	return cnt
}

func newTestNode(t *testing.T, id state.NodeId, phys *PhysHarness) (*NetworkNode, *TraceRecorder) {
	rec := &TraceRecorder{}
	n := NewNetworkNode(id, phys, state.NewTestLogger(t))
	n.Observer = rec.Observe
	return n, rec
}

// readyRoot drives a root with a single neighbour in slot 0 (address 2)
// through two rounds until it is Ready.
func readyRoot(t *testing.T) (*NetworkNode, *PhysHarness) {
	h := NewPhysHarness(true, 0)
	n, _ := newTestNode(t, "root", h)
	n.Step() // adopt
	n.Step() // begin round
	n.Step() // offer
	h.Receive(0, state.Ack{NextAddress: 3, Downstream: []state.Address{2}, FromAddress: 2})
	n.Step() // reply, finish round
	n.Step() // begin round
	n.Step() // offer
	h.Receive(0, state.Ack{NextAddress: 3, Downstream: []state.Address{2}, FromAddress: 2})
	n.Step()
	if !n.IsReady() {
		t.Fatalf("root not ready, phase %s", n.Phase)
	}
	h.GetActions()
	return n, h
}

// adoptedChild returns a node that adopted addr from slot 3 and has a second
// neighbour in slot 1.
func adoptedChild(t *testing.T, addr state.Address) (*NetworkNode, *PhysHarness, *TraceRecorder) {
	h := NewPhysHarness(false, 1, 3)
	n, rec := newTestNode(t, "child", h)
	h.Receive(3, state.Offer{Address: addr})
	n.Step()
	if n.Address != addr {
		t.Fatalf("child did not adopt %s, got %s", addr, n.Address)
	}
	h.GetActions()
	return n, h, rec
}

package core

import (
	"fmt"

	"github.com/snyderdan/WallTiles/perf"
	"github.com/snyderdan/WallTiles/state"
)

func (n *NetworkNode) handleRoute(from state.Slot, msg state.Route) {
	if !n.Address.Assigned() {
		n.violation(ProtocolViolation, from, "route before address assignment", "msg", msg)
		return
	}
	n.route(msg)
}

// route delivers msg locally or passes it one hop towards its target.
func (n *NetworkNode) route(msg state.Route) bool {
	if msg.Target == n.Address {
		perf.RoutesDelivered.Add(1)
		n.delivered = append(n.delivered, msg)
		n.event(MessageDelivered, state.LocalSlot, "delivered", "msg", msg)
		return true
	}
	slot, ok := n.NextHop(msg.Target)
	if !ok {
		perf.RoutesUnroutable.Add(1)
		n.violation(Unroutable, state.LocalSlot, "no route", "target", msg.Target)
		return false
	}
	perf.RoutesForwarded.Add(1)
	n.Phys.Transmit(slot, msg)
	n.event(MessageForwarded, slot, "forwarded", "msg", msg)
	return true
}

// NextHop is the slot a message for target leaves through: the subtree
// holding target if there is one, otherwise the parent.
func (n *NetworkNode) NextHop(target state.Address) (state.Slot, bool) {
	if !target.Assigned() || target > state.MaxAddress {
		return state.LocalSlot, false
	}
	return n.ForwardTable.Lookup(target.Addr())
}

// Send originates a message to target.
func (n *NetworkNode) Send(target state.Address, payload any) error {
	if !n.Address.Assigned() {
		return state.ErrNoAddress
	}
	if !n.route(state.Route{Target: target, Source: n.Address, Payload: payload}) {
		return fmt.Errorf("send to %s: %w", target, state.ErrUnroutable)
	}
	return nil
}

// SendToNeighbour originates a message to the neighbour behind slot.
func (n *NetworkNode) SendToNeighbour(slot state.Slot, payload any) error {
	if !slot.Valid() {
		return fmt.Errorf("%w: %d", state.ErrInvalidSlot, slot)
	}
	if !n.Phys.HasNeighbour(slot) {
		return fmt.Errorf("slot %s: %w", slot, state.ErrNoNeighbour)
	}
	addr := n.NeighbourAddrs[slot]
	if !addr.Assigned() {
		return fmt.Errorf("slot %s: %w", slot, state.ErrUnknownNeighbourAddr)
	}
	return n.Send(addr, payload)
}

package core

import (
	"github.com/snyderdan/WallTiles/perf"
	"github.com/snyderdan/WallTiles/state"
)

func (n *NetworkNode) processState() {
	switch n.Phase {
	case state.Unassigned, state.Assigned:
		if n.Phys.IsRoot() {
			n.bootstrapRoot()
		}
	case state.Assigning:
		n.performAssignment()
	}
}

// bootstrapRoot stands in for the offers a root never receives: the first
// call adopts the root address, later calls grant the root a new round.
func (n *NetworkNode) bootstrapRoot() {
	switch n.Phase {
	case state.Unassigned:
		n.adopt(n.NextAddress, state.LocalSlot)
	case state.Assigned:
		n.beginRound(n.NextAddress)
	}
}

func (n *NetworkNode) handleOffer(from state.Slot, offer state.Offer) {
	switch {
	case n.Phase == state.Unassigned:
		n.adopt(offer.Address, from)
	case n.Phase == state.Assigned && n.Parent.Set && n.Parent.Slot == from:
		n.beginRound(offer.Address)
	default:
		perf.NacksSent.Add(1)
		n.Phys.Transmit(from, state.Nack{FromAddress: n.Address})
		n.event(OfferRejected, from, "rejected offer", "offered", offer.Address, "phase", n.Phase)
	}
}

// adopt takes addr as this node's address and parent as the slot it came
// through, then reports the remaining pool upstream.
func (n *NetworkNode) adopt(addr state.Address, parent state.Slot) {
	if !addr.Assigned() || addr > state.MaxAddress {
		n.violation(ProtocolViolation, parent, "offer carries unusable address", "addr", addr)
		return
	}
	n.Address = addr
	n.NextAddress = addr + 1
	n.Parent = state.Parent{Slot: parent, Set: true}
	n.Phase = state.Assigned
	if parent != state.LocalSlot {
		n.ForwardTable.Insert(state.DefaultRoute, parent)
	}
	perf.AssignmentsIssued.Add(1)
	n.event(AddressAdopted, parent, "adopted address", "addr", addr, "parent", n.Parent)
	n.sendAck()
}

// beginRound starts offering addresses from pool to every neighbour in slot order.
func (n *NetworkNode) beginRound(pool state.Address) {
	n.NextAddress = pool
	n.Cursor = 0
	n.TableChanged = false
	n.Phase = state.Assigning
	n.event(PoolGranted, n.Parent.Slot, "pool granted", "pool", pool)
}

func (n *NetworkNode) performAssignment() {
	slot, ok := n.nextNeighbourSlot()
	if !ok {
		n.finishRound()
		return
	}
	if n.NextAddress > state.MaxAddress {
		n.violation(ProtocolViolation, slot, "address space exhausted", "next", n.NextAddress)
		n.finishRound()
		return
	}
	n.Cursor = slot
	n.Phase = state.AwaitingReply
	perf.OffersSent.Add(1)
	n.Phys.Transmit(slot, state.Offer{Address: n.NextAddress})
	n.event(OfferSent, slot, "offer sent", "addr", n.NextAddress)
}

func (n *NetworkNode) nextNeighbourSlot() (state.Slot, bool) {
	for slot := n.Cursor; slot < state.NumSlots; slot++ {
		if n.Phys.HasNeighbour(slot) {
			return slot, true
		}
	}
	return state.LocalSlot, false
}

// finishRound reports the round's outcome upstream. A round that grew the
// subtree is followed by another one once the parent grants a fresh pool.
func (n *NetworkNode) finishRound() {
	n.sendAck()
	if n.TableChanged {
		n.Phase = state.Assigned
	} else {
		n.Phase = state.Ready
	}
	n.event(RoundFinished, n.Parent.Slot, "round finished", "changed", n.TableChanged, "next", n.NextAddress)
}

func (n *NetworkNode) sendAck() {
	if !n.Parent.Set || n.Parent.IsLocal() {
		return
	}
	perf.AcksSent.Add(1)
	n.Phys.Transmit(n.Parent.Slot, state.Ack{
		NextAddress: n.NextAddress,
		Downstream:  n.Downstream(),
		FromAddress: n.Address,
	})
}

func (n *NetworkNode) handleReply(from state.Slot, msg state.Message) {
	if n.Phase != state.AwaitingReply || from != n.Cursor {
		n.violation(ProtocolViolation, from, "unexpected reply", "msg", msg, "phase", n.Phase, "cursor", n.Cursor)
		return
	}
	switch m := msg.(type) {
	case state.Nack:
		n.recordNeighbour(from, m.FromAddress)
	case state.Ack:
		n.recordNeighbour(from, m.FromAddress)
		n.addRoute(m.FromAddress, from)
		for _, addr := range m.Downstream {
			n.addRoute(addr, from)
		}
		if m.NextAddress != n.NextAddress {
			n.TableChanged = true
		}
		if m.NextAddress > n.NextAddress {
			n.NextAddress = m.NextAddress
		} else if m.NextAddress < n.NextAddress {
			n.violation(ProtocolViolation, from, "reported pool moved backwards", "reported", m.NextAddress, "next", n.NextAddress)
		}
	}
	n.Cursor++
	n.Phase = state.Assigning
	n.event(ReplyAccepted, from, "reply accepted", "msg", msg)
}

func (n *NetworkNode) recordNeighbour(slot state.Slot, addr state.Address) {
	if !addr.Assigned() || n.NeighbourAddrs[slot].Assigned() {
		return
	}
	n.NeighbourAddrs[slot] = addr
}

func (n *NetworkNode) addRoute(addr state.Address, via state.Slot) {
	if !addr.Assigned() {
		return
	}
	if addr == n.Address {
		n.violation(ProtocolViolation, via, "downstream contains own address")
		return
	}
	if _, ok := n.Routes[addr]; ok {
		return
	}
	n.Routes[addr] = via
	n.ForwardTable.Insert(addr.Prefix(), via)
	n.event(RouteAdded, via, "route added", "addr", addr)
}

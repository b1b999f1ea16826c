package state

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// NetworkState is the node-local view of the assignment protocol and the
// routing tables built from it.
type NetworkState struct {
	Id      NodeId
	Address Address
	// Parent is the slot our address arrived through, LocalSlot for the root.
	Parent Parent
	// NextAddress is the first unused address of the pool this node may hand out.
	NextAddress Address
	// Routes maps a remote address to the next hop slot towards it.
	Routes map[Address]Slot
	// NeighbourAddrs maps a slot to the address of the neighbour behind it.
	NeighbourAddrs [NumSlots]Address
	Cursor         Slot
	TableChanged   bool
	Phase          Phase
}

// Parent wraps the parent slot so that "not yet known" and "local" are distinct.
type Parent struct {
	Slot Slot
	Set  bool
}

func (p Parent) IsLocal() bool {
	return p.Set && p.Slot == LocalSlot
}

func (p Parent) String() string {
	if !p.Set {
		return "-"
	}
	return p.Slot.String()
}

func NewNetworkState(id NodeId) *NetworkState {
	return &NetworkState{
		Id:          id,
		Address:     NoAddress,
		NextAddress: 1,
		Routes:      make(map[Address]Slot),
		Phase:       Unassigned,
	}
}

// Downstream is every address reachable through this node, itself included.
func (s *NetworkState) Downstream() []Address {
	out := slices.Collect(maps.Keys(s.Routes))
	if s.Address.Assigned() {
		out = append(out, s.Address)
	}
	return SortedAddresses(out)
}

// NeighbourSlot finds the slot whose neighbour holds addr.
func (s *NetworkState) NeighbourSlot(addr Address) (Slot, bool) {
	if !addr.Assigned() {
		return LocalSlot, false
	}
	idx := slices.Index(s.NeighbourAddrs[:], addr)
	if idx == -1 {
		return LocalSlot, false
	}
	return Slot(idx), true
}

func (s *NetworkState) StringRoutes() string {
	rt := make([]string, 0, len(s.Routes))
	for _, addr := range slices.Sorted(maps.Keys(s.Routes)) {
		rt = append(rt, fmt.Sprintf("%s via %s", addr, s.Routes[addr]))
	}
	return strings.Join(rt, "\n")
}

package state

import (
	"fmt"
	"net/netip"
)

// NodeId names a tile in the topology. It carries no protocol meaning, the
// protocol only ever speaks in Address and Slot.
type NodeId string

// Address is the tree address handed out by the assignment protocol.
// Addresses start at 1; NoAddress marks an unassigned node.
type Address uint32

const (
	NoAddress Address = 0
	// MaxAddress is the largest address that still fits in AddressSpace.
	MaxAddress Address = 1<<24 - 1
)

// AddressSpace is the IPv4 block addresses are mapped into for longest-prefix lookups.
var AddressSpace = netip.MustParsePrefix("10.0.0.0/8")

// DefaultRoute matches every address.
var DefaultRoute = netip.MustParsePrefix("0.0.0.0/0")

func (a Address) Assigned() bool {
	return a != NoAddress
}

// Addr maps the address onto a host inside AddressSpace.
func (a Address) Addr() netip.Addr {
	base := AddressSpace.Addr().As4()
	return netip.AddrFrom4([4]byte{base[0], byte(a >> 16), byte(a >> 8), byte(a)})
}

// Prefix is the host prefix (/32) of the address.
func (a Address) Prefix() netip.Prefix {
	return netip.PrefixFrom(a.Addr(), 32)
}

func (a Address) String() string {
	if a == NoAddress {
		return "-"
	}
	return fmt.Sprintf("%d", uint32(a))
}

// Slot is one of the NumSlots directional neighbour positions of a tile.
type Slot int

const NumSlots = 6

// LocalSlot is the parent of the root: the address came from the node itself
// rather than from any neighbour.
const LocalSlot Slot = -1

func (s Slot) Valid() bool {
	return s >= 0 && s < NumSlots
}

// Opposite is the slot a neighbour sees us through.
func (s Slot) Opposite() Slot {
	return (s + NumSlots/2) % NumSlots
}

func (s Slot) String() string {
	if s == LocalSlot {
		return "local"
	}
	return fmt.Sprintf("%d", int(s))
}

// Slots iterates over every slot in ascending order.
func Slots() [NumSlots]Slot {
	return [NumSlots]Slot{0, 1, 2, 3, 4, 5}
}

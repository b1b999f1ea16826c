package state

import (
	"fmt"
	"slices"
	"strings"
)

// Message is the closed set of messages exchanged between tiles: Offer, Ack,
// Nack and Route.
type Message interface {
	isMessage()
	String() string
}

// Offer proposes Address to a neighbour. Sent to a child that already holds
// an address, it grants the child a pool starting at Address instead.
type Offer struct {
	Address Address
}

// Ack accepts an offer, or closes a round, reporting the next free address
// and every address reachable through the sender.
type Ack struct {
	NextAddress Address
	Downstream  []Address
	FromAddress Address
}

// Nack rejects an offer. FromAddress is the address of the rejecting node.
type Nack struct {
	FromAddress Address
}

// Route is an addressed message forwarded hop by hop along the tree.
type Route struct {
	Target  Address
	Source  Address
	Payload any
}

// Packet is a message as seen by the receiver. From is the receiver's own
// inbound slot.
type Packet struct {
	From Slot
	Msg  Message
}

func (Offer) isMessage() {}
func (Ack) isMessage()   {}
func (Nack) isMessage()  {}
func (Route) isMessage() {}

func (o Offer) String() string {
	return fmt.Sprintf("offer(addr: %s)", o.Address)
}

func (a Ack) String() string {
	ds := make([]string, 0, len(a.Downstream))
	for _, d := range a.Downstream {
		ds = append(ds, d.String())
	}
	return fmt.Sprintf("ack(from: %s, next: %s, downstream: [%s])", a.FromAddress, a.NextAddress, strings.Join(ds, " "))
}

func (n Nack) String() string {
	return fmt.Sprintf("nack(from: %s)", n.FromAddress)
}

func (r Route) String() string {
	return fmt.Sprintf("route(%s -> %s, payload: %v)", r.Source, r.Target, r.Payload)
}

func (p Packet) String() string {
	return fmt.Sprintf("%s via %s", p.Msg, p.From)
}

// SortedAddresses returns the addresses in ascending order.
func SortedAddresses(addrs []Address) []Address {
	out := slices.Clone(addrs)
	slices.Sort(out)
	return slices.Compact(out)
}

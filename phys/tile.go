package phys

import (
	"image/color"
	"math/rand/v2"
	"time"

	"github.com/snyderdan/WallTiles/state"
)

// Clock returns the milliseconds elapsed since a tile was created.
type Clock func() int64

// WallClock measures real time from the moment it is created.
func WallClock() Clock {
	start := time.Now()
	return func() int64 {
		return time.Since(start).Milliseconds()
	}
}

// Tile is the physical layer of one grid position: six neighbour slots, a
// clock, a colour and an inbound packet queue.
//
// Transmitted packets are held in the receiver's pending queue until Deliver
// is called, so a packet sent during a tick is only visible on the receiver's
// next tick.
type Tile struct {
	Id         state.NodeId
	Pos        *state.HexCoord
	Neighbours [state.NumSlots]*Tile

	root    bool
	clock   Clock
	colour  color.RGBA
	inbox   []state.Packet
	pending []state.Packet
	sent    uint64
}

func NewTile(id state.NodeId, clock Clock) *Tile {
	if clock == nil {
		clock = WallClock()
	}
	return &Tile{
		Id:    id,
		clock: clock,
		colour: color.RGBA{
			R: uint8(rand.IntN(256)),
			G: uint8(rand.IntN(256)),
			B: uint8(rand.IntN(256)),
			A: 255,
		},
	}
}

func (t *Tile) HasNeighbour(slot state.Slot) bool {
	return slot.Valid() && t.Neighbours[slot] != nil
}

// Transmit sends msg to the neighbour in slot, stamped with the slot the
// neighbour receives it on. It does nothing when the slot is empty.
func (t *Tile) Transmit(slot state.Slot, msg state.Message) {
	if !t.HasNeighbour(slot) {
		return
	}
	t.sent++
	t.Neighbours[slot].receive(state.Packet{
		From: slot.Opposite(),
		Msg:  msg,
	})
}

func (t *Tile) receive(pkt state.Packet) {
	t.pending = append(t.pending, pkt)
}

// Deliver makes every packet received since the last call visible to HasPacket.
func (t *Tile) Deliver() int {
	n := len(t.pending)
	t.inbox = append(t.inbox, t.pending...)
	t.pending = t.pending[:0]
	return n
}

func (t *Tile) HasPacket() bool {
	return len(t.inbox) > 0
}

func (t *Tile) GetPacket() state.Packet {
	pkt := t.inbox[0]
	t.inbox[0] = state.Packet{}
	t.inbox = t.inbox[1:]
	return pkt
}

// InFlight is the number of packets queued on this tile, delivered or not.
func (t *Tile) InFlight() int {
	return len(t.inbox) + len(t.pending)
}

// Sent is the number of packets this tile has transmitted.
func (t *Tile) Sent() uint64 {
	return t.sent
}

func (t *Tile) Millis() int64 {
	return t.clock()
}

func (t *Tile) IsRoot() bool {
	return t.root
}

func (t *Tile) SetRoot(root bool) {
	t.root = root
}

func (t *Tile) SetColor(r, g, b uint8) {
	t.colour = color.RGBA{R: r, G: g, B: b, A: 255}
}

func (t *Tile) Color() color.RGBA {
	return t.colour
}

// Link connects a's slot to b's opposite slot.
func Link(a *Tile, slot state.Slot, b *Tile) {
	a.Neighbours[slot] = b
	b.Neighbours[slot.Opposite()] = a
}

// Queued counts the packets queued on this tile, delivered or not, whose
// message satisfies match.
func (t *Tile) Queued(match func(state.Message) bool) int {
	cnt := 0
	for _, q := range [][]state.Packet{t.inbox, t.pending} {
		for _, pkt := range q {
			if match(pkt.Msg) {
				cnt++
			}
		}
	}
	return cnt
}

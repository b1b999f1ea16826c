package core

import "github.com/snyderdan/WallTiles/state"

// Physical is the link layer a NetworkNode runs on top of.
type Physical interface {
	HasNeighbour(slot state.Slot) bool
	// Transmit sends msg to the neighbour in slot; it is a no-op for an empty slot.
	Transmit(slot state.Slot, msg state.Message)
	HasPacket() bool
	GetPacket() state.Packet
	Millis() int64
	IsRoot() bool
	SetColor(r, g, b uint8)
}

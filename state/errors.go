package state

import "errors"

var (
	ErrNoAddress             = errors.New("node has no address yet")
	ErrNoNeighbour           = errors.New("no neighbour in slot")
	ErrUnknownNeighbourAddr  = errors.New("neighbour address is not known yet")
	ErrUnroutable            = errors.New("no route to target")
	ErrNotConverged          = errors.New("simulation did not converge")
	ErrConverged             = errors.New("simulation converged")
	ErrInvalidSlot           = errors.New("slot out of range")
	ErrSlotTaken             = errors.New("slot is already linked")
	ErrAddressSpaceExhausted = errors.New("address space exhausted")
)

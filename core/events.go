package core

import "github.com/snyderdan/WallTiles/state"

type NetworkEvent int

// trace events

const (
	AddressAdopted NetworkEvent = iota
	PoolGranted
	OfferSent
	ReplyAccepted
	RoundFinished
	OfferRejected
	RouteAdded
	MessageDelivered
	MessageForwarded
)

// warn events

const (
	ProtocolViolation NetworkEvent = iota + 1000
	Unroutable
)

func (e NetworkEvent) String() string {
	switch e {
	case AddressAdopted:
		return "AddressAdopted"
	case PoolGranted:
		return "PoolGranted"
	case OfferSent:
		return "OfferSent"
	case ReplyAccepted:
		return "ReplyAccepted"
	case RoundFinished:
		return "RoundFinished"
	case RouteAdded:
		return "RouteAdded"
	case MessageDelivered:
		return "MessageDelivered"
	case MessageForwarded:
		return "MessageForwarded"
	case ProtocolViolation:
		return "ProtocolViolation"
	case OfferRejected:
		return "OfferRejected"
	case Unroutable:
		return "Unroutable"
	default:
		return "Unknown"
	}
}

// Trace is a snapshot of a node taken right after an event.
type Trace struct {
	Tile    state.NodeId
	Event   NetworkEvent
	Desc    string
	Address state.Address
	Phase   state.Phase
	Cursor  state.Slot
	Slot    state.Slot
}

// Observer receives every event of a node. It is called on the node's goroutine.
type Observer func(Trace)

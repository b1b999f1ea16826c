package state

// Phase is the position of a node in the address assignment sub-protocol.
type Phase int

const (
	// Unassigned nodes have not yet received an address.
	Unassigned Phase = iota
	// Assigned nodes hold an address and wait for a pool from their parent.
	Assigned
	// Assigning nodes are looking for the next neighbour slot to offer an address to.
	Assigning
	// AwaitingReply nodes have offered an address and wait on the cursor slot.
	AwaitingReply
	// Ready nodes finished a pass without any change; no further rounds will run.
	Ready
)

func (p Phase) String() string {
	switch p {
	case Unassigned:
		return "unassigned"
	case Assigned:
		return "assigned"
	case Assigning:
		return "assigning"
	case AwaitingReply:
		return "awaiting-reply"
	case Ready:
		return "ready"
	default:
		return "unknown"
	}
}

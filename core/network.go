package core

import (
	"fmt"
	"log/slog"

	"github.com/gaissmai/bart"
	"github.com/jellydator/ttlcache/v3"
	"github.com/snyderdan/WallTiles/perf"
	"github.com/snyderdan/WallTiles/state"
)

// NetworkNode is the network layer of one tile. It assigns tree addresses
// together with its neighbours and forwards addressed messages along the
// resulting tree.
//
// A NetworkNode is not safe for concurrent use; the simulation steps every
// node from a single goroutine.
type NetworkNode struct {
	*state.NetworkState
	Phys     Physical
	Log      *slog.Logger
	Observer Observer
	// ForwardTable holds a host route for every downstream address and, once
	// the parent is known, a default route towards it.
	ForwardTable bart.Table[state.Slot]

	delivered    []state.Route
	violationLog *ttlcache.Cache[violationKey, struct{}]
}

type violationKey struct {
	Event NetworkEvent
	Slot  state.Slot
	Desc  string
}

func NewNetworkNode(id state.NodeId, phys Physical, log *slog.Logger) *NetworkNode {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &NetworkNode{
		NetworkState: state.NewNetworkState(id),
		Phys:         phys,
		Log:          log.With("tile", id),
		violationLog: ttlcache.New[violationKey, struct{}](
			ttlcache.WithTTL[violationKey, struct{}](state.ViolationLogTTL),
			ttlcache.WithDisableTouchOnHit[violationKey, struct{}](),
		),
	}
}

// Step runs one tick: the inbound queue is drained first, then the
// assignment state machine advances by at most one transition.
func (n *NetworkNode) Step() {
	for n.Phys.HasPacket() {
		n.handlePacket(n.Phys.GetPacket())
	}
	n.processState()
}

func (n *NetworkNode) handlePacket(pkt state.Packet) {
	switch msg := pkt.Msg.(type) {
	case state.Offer:
		n.handleOffer(pkt.From, msg)
	case state.Ack:
		n.handleReply(pkt.From, msg)
	case state.Nack:
		n.handleReply(pkt.From, msg)
	case state.Route:
		n.handleRoute(pkt.From, msg)
	default:
		n.violation(ProtocolViolation, pkt.From, "bad message", "msg", pkt.Msg)
	}
}

func (n *NetworkNode) IsReady() bool {
	return n.Phase == state.Ready
}

func (n *NetworkNode) HasDelivery() bool {
	return len(n.delivered) > 0
}

// TakeDelivery pops the oldest message addressed to this node.
func (n *NetworkNode) TakeDelivery() state.Route {
	msg := n.delivered[0]
	n.delivered[0] = state.Route{}
	n.delivered = n.delivered[1:]
	return msg
}

// GC drops expired entries from the violation log.
func (n *NetworkNode) GC() {
	n.violationLog.DeleteExpired()
}

func (n *NetworkNode) event(ev NetworkEvent, slot state.Slot, desc string, args ...any) {
	n.Log.Debug(fmt.Sprintf("%s %s", ev.String(), desc), args...)
	n.notify(ev, slot, desc)
}

// violation logs a warning at most once per ViolationLogTTL for the same
// event, slot and description; repeats are logged at debug level.
func (n *NetworkNode) violation(ev NetworkEvent, slot state.Slot, desc string, args ...any) {
	perf.Violations.Add(1)
	key := violationKey{ev, slot, desc}
	msg := fmt.Sprintf("%s %s", ev.String(), desc)
	if n.violationLog.Get(key) == nil {
		n.violationLog.Set(key, struct{}{}, ttlcache.DefaultTTL)
		n.Log.Warn(msg, append(args, "slot", slot)...)
	} else {
		n.Log.Debug(msg, append(args, "slot", slot)...)
	}
	n.notify(ev, slot, desc)
}

func (n *NetworkNode) notify(ev NetworkEvent, slot state.Slot, desc string) {
	if n.Observer == nil {
		return
	}
	n.Observer(Trace{
		Tile:    n.Id,
		Event:   ev,
		Desc:    desc,
		Address: n.Address,
		Phase:   n.Phase,
		Cursor:  n.Cursor,
		Slot:    slot,
	})
}

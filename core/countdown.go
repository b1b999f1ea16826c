package core

import (
	"fmt"

	"github.com/snyderdan/WallTiles/state"
)

type Countdown struct {
	Value int
}

func (c Countdown) String() string {
	return fmt.Sprintf("countdown(%d)", c.Value)
}

// CountdownApp plays ping-pong between two tiles. The initiator sends Start to
// its peer once its network is ready; every receiver answers the source with
// the value decremented until it reaches zero.
type CountdownApp struct {
	Net *NetworkNode
	// Peer resolves the initiator's target. It is polled until it returns an
	// assigned address. Nil on tiles that only answer.
	Peer  func() state.Address
	Start int
	// OnReceive is called with every countdown delivered to this tile.
	OnReceive func(c Countdown, source state.Address)

	sent bool
}

func NewCountdownApp(net *NetworkNode) *CountdownApp {
	return &CountdownApp{Net: net}
}

func (a *CountdownApp) Process() {
	if a.Peer != nil && !a.sent && a.Net.IsReady() {
		if target := a.Peer(); target.Assigned() {
			a.sent = true
			a.send(target, Countdown{Value: a.Start})
		}
	}
	for a.Net.HasDelivery() {
		msg := a.Net.TakeDelivery()
		c, ok := msg.Payload.(Countdown)
		if !ok {
			a.Net.Log.Debug("ignoring delivery", "payload", msg.Payload, "source", msg.Source)
			continue
		}
		if a.OnReceive != nil {
			a.OnReceive(c, msg.Source)
		}
		if c.Value > 0 {
			a.send(msg.Source, Countdown{Value: c.Value - 1})
		}
	}
}

func (a *CountdownApp) send(target state.Address, c Countdown) {
	if err := a.Net.Send(target, c); err != nil {
		a.Net.Log.Warn("countdown not sent", "target", target, "value", c.Value, "err", err)
	}
}

package core

import (
	"fmt"
	"math"

	"github.com/snyderdan/WallTiles/state"
)

// Application runs on top of a NetworkNode and is processed once per tick,
// after the node has stepped.
type Application interface {
	Process()
}

// WavePayload is one frame of the colour wave.
type WavePayload struct {
	Seq   uint64
	Value float64
}

func (p WavePayload) String() string {
	return fmt.Sprintf("wave(seq: %d, value: %.3f)", p.Seq, p.Value)
}

// WaveApp floods a sine wave from the root. Every tile applies a frame at most
// once, the first time it sees a sequence number higher than any before, and
// passes it on to its neighbours.
type WaveApp struct {
	Net *NetworkNode
	// OnApply is called with every frame the tile applies.
	OnApply func(WavePayload)

	highest   uint64
	seq       uint64
	lastFrame int64
}

func NewWaveApp(net *NetworkNode) *WaveApp {
	return &WaveApp{Net: net}
}

func (a *WaveApp) Process() {
	phys := a.Net.Phys
	if phys.IsRoot() && a.Net.IsReady() {
		now := phys.Millis()
		if now > a.lastFrame+state.WaveInterval.Milliseconds() {
			a.lastFrame = now
			a.seq++
			a.apply(WavePayload{
				Seq:   a.seq,
				Value: math.Sin(float64(now) / state.WavePeriod),
			}, state.NoAddress)
		}
	}
	for a.Net.HasDelivery() {
		msg := a.Net.TakeDelivery()
		p, ok := msg.Payload.(WavePayload)
		if !ok {
			a.Net.Log.Debug("ignoring delivery", "payload", msg.Payload, "source", msg.Source)
			continue
		}
		a.apply(p, msg.Source)
	}
}

// Highest is the highest sequence number applied so far.
func (a *WaveApp) Highest() uint64 {
	return a.highest
}

func (a *WaveApp) apply(p WavePayload, source state.Address) {
	if p.Seq <= a.highest {
		return
	}
	a.highest = p.Seq
	a.Net.Phys.SetColor(WaveColor(p.Value))
	if a.OnApply != nil {
		a.OnApply(p)
	}
	for _, slot := range state.Slots() {
		if !a.Net.Phys.HasNeighbour(slot) {
			continue
		}
		if source.Assigned() && a.Net.NeighbourAddrs[slot] == source {
			continue
		}
		if err := a.Net.SendToNeighbour(slot, p); err != nil {
			a.Net.Log.Debug("wave not sent", "slot", slot, "err", err)
		}
	}
}

// WaveColor maps v in [-1, 1] onto a red, yellow, green gradient.
func WaveColor(v float64) (r, g, b uint8) {
	v = max(-1, min(1, v))
	if v < 0 {
		return uint8(255 * (1 + v)), 255, 0
	}
	return 255, uint8(255 * (1 - v)), 0
}

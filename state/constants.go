package state

import "time"

var (
	// TickInterval is the wall time between two simulation ticks, and the
	// amount the virtual clock advances per tick.
	TickInterval = time.Millisecond * 10
	// WaveInterval is how often the root originates a new wave value.
	WaveInterval = time.Millisecond * 20
	// WavePeriod scales the clock into the wave's sine argument.
	WavePeriod = 200.0

	ViolationLogTTL = time.Second * 5
	ReportDelay     = time.Second * 1
	GcDelay         = time.Second * 1

	DefaultMaxTicks = 100_000
	// DefaultLinger is the number of ticks a converged simulation keeps running
	// so applications can exchange traffic before the runtime stops.
	DefaultLinger = 500

	// tile geometry, in pixels
	TileRadius = 20.0
)

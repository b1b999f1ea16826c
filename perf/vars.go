package perf

import (
	"expvar"
	"net/http"

	"github.com/encodeous/metric"
)

var (
	DispatchLatency   = metric.NewHistogram("1m1s")
	TickLatency       = metric.NewHistogram("1m1s")
	TicksPerSecond    = metric.NewCounter("10s1s")
	OffersSent        = metric.NewCounter("1m1s")
	AcksSent          = metric.NewCounter("1m1s")
	NacksSent         = metric.NewCounter("1m1s")
	Violations        = metric.NewCounter("1m1s")
	RoutesForwarded   = metric.NewCounter("10s1s")
	RoutesDelivered   = metric.NewCounter("10s1s")
	RoutesUnroutable  = metric.NewCounter("1m1s")
	PacketsDelivered  = metric.NewCounter("10s1s")
	AssignmentsIssued = metric.NewCounter("1m1s")
)

func init() {
	http.Handle("/debug/metrics", metric.Handler(metric.Exposed))
	expvar.Publish("walltiles:DispatchLatency (µs)", DispatchLatency)
	expvar.Publish("walltiles:TickLatency (µs)", TickLatency)
	expvar.Publish("walltiles:Ticks/s", TicksPerSecond)
	expvar.Publish("walltiles:OffersSent", OffersSent)
	expvar.Publish("walltiles:AcksSent", AcksSent)
	expvar.Publish("walltiles:NacksSent", NacksSent)
	expvar.Publish("walltiles:Violations", Violations)
	expvar.Publish("walltiles:RoutesForwarded/s", RoutesForwarded)
	expvar.Publish("walltiles:RoutesDelivered/s", RoutesDelivered)
	expvar.Publish("walltiles:RoutesUnroutable", RoutesUnroutable)
	expvar.Publish("walltiles:PacketsDelivered/s", PacketsDelivered)
	expvar.Publish("walltiles:AssignmentsIssued", AssignmentsIssued)
}

// Package metrics defines the prometheus collectors exported by the board server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace is the namespace every collector is registered under.
const Namespace = "syncboard"

func newCounter(name, subsystem, help string) prometheus.Counter {
	return promauto.NewCounter(prometheus.CounterOpts{Namespace: Namespace, Subsystem: subsystem, Name: name, Help: help})
}

func newCounterVec(name, subsystem, help string, labels []string) *prometheus.CounterVec {
	return promauto.NewCounterVec(prometheus.CounterOpts{Namespace: Namespace, Subsystem: subsystem, Name: name, Help: help}, labels)
}

func newGauge(name, subsystem, help string) prometheus.Gauge {
	return promauto.NewGauge(prometheus.GaugeOpts{Namespace: Namespace, Subsystem: subsystem, Name: name, Help: help})
}

var (
	// Accepted counts commands appended to the session log.
	Accepted = newCounter("accepted_total", "router", "Draw commands appended to the board")
	// Rejected counts dropped commands, labeled by reason.
	Rejected = newCounterVec("rejected_total", "router", "Draw commands dropped before reaching the board", []string{"reason"})
	// Clears counts board resets.
	Clears = newCounter("clears_total", "router", "Board clears")
	// Participants tracks currently connected participants.
	Participants = newGauge("participants", "connections", "Connected participants")
	// Dropped counts peers closed because their outbound queue overflowed.
	Dropped = newCounter("dropped_peers_total", "connections", "Peers disconnected for falling behind")
)

// Reject reasons.
const (
	ReasonMalformed   = "malformed"
	ReasonStaleEpoch  = "stale_epoch"
	ReasonRateLimited = "rate_limited"
)

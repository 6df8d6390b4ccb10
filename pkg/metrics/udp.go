// Package metrics exposes Prometheus instrumentation for the UDP wire
// layer. Collectors register on the default registry at init time; serving
// the exposition endpoint is the embedding program's concern.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PacketsSent counts outbound datagrams, labeled by packet name.
	PacketsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gridlink",
		Subsystem: "udp",
		Name:      "packets_sent_total",
		Help:      "Outbound datagrams by packet type.",
	}, []string{"packet"})

	// PacketsReceived counts inbound datagrams, labeled by packet name.
	PacketsReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gridlink",
		Subsystem: "udp",
		Name:      "packets_received_total",
		Help:      "Inbound datagrams by packet type.",
	}, []string{"packet"})

	// PacketsResent counts reliable retransmissions.
	PacketsResent = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "gridlink",
		Subsystem: "udp",
		Name:      "packets_resent_total",
		Help:      "Reliable datagrams retransmitted after ack timeout.",
	})

	// PacketsDropped counts inbound datagrams dropped before dispatch,
	// labeled by reason (malformed, duplicate).
	PacketsDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gridlink",
		Subsystem: "udp",
		Name:      "packets_dropped_total",
		Help:      "Inbound datagrams dropped before dispatch, by reason.",
	}, []string{"reason"})

	// AcksSent counts acknowledgements delivered to the peer, labeled by
	// channel (piggyback, explicit).
	AcksSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gridlink",
		Subsystem: "udp",
		Name:      "acks_sent_total",
		Help:      "Sequence acknowledgements sent, by delivery channel.",
	}, []string{"channel"})

	// AcksReceived counts acknowledgements from the peer.
	AcksReceived = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "gridlink",
		Subsystem: "udp",
		Name:      "acks_received_total",
		Help:      "Sequence acknowledgements received from the peer.",
	})

	// PingRTT tracks the measured circuit round-trip time.
	PingRTT = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "gridlink",
		Subsystem: "udp",
		Name:      "ping_rtt_seconds",
		Help:      "Round-trip time measured by the ping probes.",
		Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
	})

	// ConnectedCircuits gauges the circuits currently in the Connected
	// state.
	ConnectedCircuits = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "gridlink",
		Subsystem: "udp",
		Name:      "connected_circuits",
		Help:      "Circuits currently connected.",
	})
)

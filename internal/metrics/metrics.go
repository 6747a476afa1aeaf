// Package metrics holds the prometheus collectors for the radio link.
// The registry is in-process only; exposing it over HTTP is up to the
// embedding application.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics wraps the prometheus collectors for a radio link
type Metrics struct {
	registry *prometheus.Registry

	framesReceived *prometheus.CounterVec
	framesDropped  *prometheus.CounterVec
	framesIgnored  prometheus.Counter
	heartbeatsSent prometheus.Counter
	timesyncsSent  prometheus.Counter
	sendErrors     prometheus.Counter
	commandsTotal  *prometheus.CounterVec
	vehiclesKnown  prometheus.Gauge
	linkState      prometheus.Gauge
}

// Global is the shared metrics instance
var Global *Metrics

func init() {
	Global = New()
}

// New creates a metrics set on its own registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		framesReceived: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "groundlink",
				Name:      "frames_received_total",
				Help:      "Frames received from the radio, by message name",
			},
			[]string{"message"},
		),

		framesDropped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "groundlink",
				Name:      "frames_dropped_total",
				Help:      "Frames dropped because a controller queue was full",
			},
			[]string{"message"},
		),

		framesIgnored: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "groundlink",
				Name:      "frames_ignored_total",
				Help:      "Frames from system ids not in the vehicle registry",
			},
		),

		heartbeatsSent: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "groundlink",
				Name:      "heartbeats_sent_total",
				Help:      "GCS heartbeats emitted on the link",
			},
		),

		timesyncsSent: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "groundlink",
				Name:      "timesync_replies_total",
				Help:      "TIMESYNC replies sent by the router",
			},
		),

		sendErrors: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "groundlink",
				Name:      "send_errors_total",
				Help:      "Frame send failures on the link",
			},
		),

		commandsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "groundlink",
				Name:      "commands_total",
				Help:      "Command executions, by command and outcome",
			},
			[]string{"command", "outcome"},
		),

		vehiclesKnown: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "groundlink",
				Name:      "vehicles_known",
				Help:      "Vehicles currently in the registry",
			},
		),

		linkState: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "groundlink",
				Name:      "link_state",
				Help:      "Link state (0 opening, 1 discovering, 2 running, 3 closing, 4 closed)",
			},
		),
	}

	m.registry.MustRegister(
		m.framesReceived,
		m.framesDropped,
		m.framesIgnored,
		m.heartbeatsSent,
		m.timesyncsSent,
		m.sendErrors,
		m.commandsTotal,
		m.vehiclesKnown,
		m.linkState,
	)

	return m
}

// Registry returns the underlying prometheus registry for exposition
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) IncReceived(message string) {
	m.framesReceived.WithLabelValues(message).Inc()
}

func (m *Metrics) IncDropped(message string) {
	m.framesDropped.WithLabelValues(message).Inc()
}

func (m *Metrics) IncIgnored() {
	m.framesIgnored.Inc()
}

func (m *Metrics) IncHeartbeatSent() {
	m.heartbeatsSent.Inc()
}

func (m *Metrics) IncTimesyncSent() {
	m.timesyncsSent.Inc()
}

func (m *Metrics) IncSendError() {
	m.sendErrors.Inc()
}

func (m *Metrics) IncCommand(command string, success bool) {
	outcome := "failure"
	if success {
		outcome = "success"
	}
	m.commandsTotal.WithLabelValues(command, outcome).Inc()
}

func (m *Metrics) SetVehiclesKnown(n int) {
	m.vehiclesKnown.Set(float64(n))
}

func (m *Metrics) SetLinkState(s int) {
	m.linkState.Set(float64(s))
}

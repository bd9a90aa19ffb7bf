package rf

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/robotalks/rflight/pkg/rf/frame"
)

// Metrics counts link activity. A nil *Metrics records nothing.
type Metrics struct {
	FramesReceived  prometheus.Counter
	FrameErrors     *prometheus.CounterVec
	CommandsSent    *prometheus.CounterVec
	CommandTimeouts *prometheus.CounterVec
	RadioResets     prometheus.Counter
	LinkResends     prometheus.Counter
}

// NewMetrics creates Metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		FramesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rflight",
			Subsystem: "link",
			Name:      "frames_received_total",
			Help:      "Valid frames received from the radio.",
		}),
		FrameErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rflight",
			Subsystem: "link",
			Name:      "frame_errors_total",
			Help:      "Frames rejected by reason.",
		}, []string{"reason"}),
		CommandsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rflight",
			Subsystem: "link",
			Name:      "commands_sent_total",
			Help:      "Frames transmitted by command.",
		}, []string{"command"}),
		CommandTimeouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rflight",
			Subsystem: "link",
			Name:      "command_timeouts_total",
			Help:      "Commands not acknowledged after all attempts.",
		}, []string{"command"}),
		RadioResets: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rflight",
			Subsystem: "link",
			Name:      "radio_resets_total",
			Help:      "Hardware resets of the radio.",
		}),
		LinkResends: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rflight",
			Subsystem: "link",
			Name:      "link_resends_total",
			Help:      "Link selections resent after repeated mismatches.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.FramesReceived, m.FrameErrors, m.CommandsSent,
			m.CommandTimeouts, m.RadioResets, m.LinkResends)
	}
	return m
}

func (m *Metrics) received() {
	if m != nil {
		m.FramesReceived.Inc()
	}
}

func (m *Metrics) frameError(err error) {
	if m == nil {
		return
	}
	reason := "other"
	switch {
	case errors.Is(err, frame.ErrChecksumMismatch):
		reason = "checksum"
	case errors.Is(err, frame.ErrLengthMismatch):
		reason = "length"
	case errors.Is(err, frame.ErrShortFrame):
		reason = "truncated"
	}
	m.FrameErrors.WithLabelValues(reason).Inc()
}

func (m *Metrics) sent(cmd Command) {
	if m != nil {
		m.CommandsSent.WithLabelValues(cmd.String()).Inc()
	}
}

func (m *Metrics) timeout(cmd Command) {
	if m != nil {
		m.CommandTimeouts.WithLabelValues(cmd.String()).Inc()
	}
}

func (m *Metrics) reset() {
	if m != nil {
		m.RadioResets.Inc()
	}
}

func (m *Metrics) resend() {
	if m != nil {
		m.LinkResends.Inc()
	}
}

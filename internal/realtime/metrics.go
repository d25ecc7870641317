package realtime

import "github.com/prometheus/client_golang/prometheus"

var (
	// sessionsActive gauges live local connections, replaced ones included.
	sessionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "realtime_sessions_active",
			Help: "Current number of live realtime connections on this instance.",
		},
	)

	// pushes counts push attempts by target (user, chat) and outcome.
	pushes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "realtime_pushes_total",
			Help: "Total number of realtime push attempts.",
		},
		[]string{"target", "result"},
	)

	// framesDropped counts frames discarded because a send queue was full.
	framesDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "realtime_frames_dropped_total",
			Help: "Total number of frames dropped on full send queues.",
		},
	)
)

func init() {
	prometheus.MustRegister(sessionsActive, pushes, framesDropped)
}

func observePush(target string, delivered bool) {
	result := "missed"
	if delivered {
		result = "delivered"
	}
	pushes.WithLabelValues(target, result).Inc()
}

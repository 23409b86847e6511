package conversation

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	messagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vkinder",
		Subsystem: "bot",
		Name:      "messages_total",
		Help:      "Handled incoming messages by outcome.",
	}, []string{"result"})

	messageDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "vkinder",
		Subsystem: "bot",
		Name:      "message_duration_seconds",
		Help:      "Time spent handling one incoming message, replies included.",
		Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
	})

	transitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vkinder",
		Subsystem: "bot",
		Name:      "state_transitions_total",
		Help:      "Persisted conversation state changes by target state.",
	}, []string{"state"})
)

func observeMessage(result string, start time.Time) {
	messagesTotal.WithLabelValues(result).Inc()
	messageDuration.Observe(time.Since(start).Seconds())
}

package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// Dispatch outcomes by channel
	NotificationsSent = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notifications_sent_total",
		Help: "Total notifications successfully dispatched",
	}, []string{"channel"})

	NotificationsFailed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notifications_failed_total",
		Help: "Total notification dispatch failures",
	}, []string{"channel"})

	// Duration of the per-minute scheduled-notification sweep
	SweepDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "notification_sweep_duration_seconds",
		Help:    "Duration of the scheduled notification sweep",
		Buckets: prometheus.DefBuckets,
	})

	// Entries moved to the dead-letter set after exhausting retries
	DeadLetteredNotifications = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "notifications_dead_lettered_total",
		Help: "Total notifications moved to the dead-letter set",
	})
)

func Init() {
	prometheus.MustRegister(
		NotificationsSent,
		NotificationsFailed,
		SweepDuration,
		DeadLetteredNotifications,
	)
}

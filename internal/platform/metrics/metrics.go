// File: internal/platform/metrics/metrics.go
package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Dispatch outcomes.
const (
	OutcomeSent   = "sent"
	OutcomeFailed = "failed"

	ChannelEmail = "email"
	ChannelPush  = "push"
	ChannelAudit = "audit"
)

var (
	UploadsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fisheries_uploads_created_total",
		Help: "Uploads stored, by initial status.",
	}, []string{"status"})

	UploadTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fisheries_upload_transitions_total",
		Help: "Upload review transitions, by target status.",
	}, []string{"status"})

	Dispatches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fisheries_dispatch_total",
		Help: "Side-effect dispatches, by channel and outcome.",
	}, []string{"channel", "outcome"})

	FanoutRecipients = promauto.NewSummary(prometheus.SummaryOpts{
		Name: "fisheries_fanout_recipients",
		Help: "Recipients resolved per notification broadcast.",
	})

	Downloads = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fisheries_report_downloads_total",
		Help: "Report downloads logged.",
	})
)

// RecordDispatch counts one email, push or audit attempt.
func RecordDispatch(channel string, err error) {
	outcome := OutcomeSent
	if err != nil {
		outcome = OutcomeFailed
	}
	Dispatches.WithLabelValues(channel, outcome).Inc()
}

// Handler exposes the default registry.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}

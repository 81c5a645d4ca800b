package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Business metrics
	EnrollmentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mindmeld_enrollments_total",
		Help: "Enrollments created, by source",
	}, []string{"source"})

	CourseCompletionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mindmeld_course_completions_total",
		Help: "Enrollments that transitioned to completed",
	})

	MessagesSentTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mindmeld_messages_sent_total",
		Help: "Direct messages sent",
	})

	SlugRetriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mindmeld_slug_retries_total",
		Help: "Product writes retried after a slug unique violation",
	})

	// Infrastructure metrics
	ActivityLogFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mindmeld_activity_log_failures_total",
		Help: "Activity records that could not be written",
	})

	EmailsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mindmeld_emails_total",
		Help: "Outbound emails, by provider and status",
	}, []string{"provider", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "mindmeld_http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

// Middleware records request latency per matched route
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		HTTPRequestDuration.
			WithLabelValues(c.Method(), c.Route().Path, strconv.Itoa(status)).
			Observe(time.Since(start).Seconds())
		return err
	}
}

package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ErrorsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobboard_errors_total",
			Help: "Total number of logged warnings and errors.",
		},
		[]string{"type", "level"},
	)
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobboard_http_requests_total",
			Help: "Total number of handled HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "jobboard_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "route"},
	)
	JobViews = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "jobboard_job_views_total",
			Help: "Total number of job detail views.",
		},
	)
	InterviewsScheduled = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "jobboard_interviews_scheduled_total",
			Help: "Total number of scheduled interviews.",
		},
	)
	NotificationsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobboard_notifications_created_total",
			Help: "Total number of stored notifications.",
		},
		[]string{"type"},
	)
	ExpiredJobs = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "jobboard_jobs_expired_total",
			Help: "Total number of jobs deactivated after their deadline.",
		},
	)
)

var registerOnce sync.Once

func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(ErrorsCounter)
		prometheus.MustRegister(HTTPRequests)
		prometheus.MustRegister(HTTPDuration)
		prometheus.MustRegister(JobViews)
		prometheus.MustRegister(InterviewsScheduled)
		prometheus.MustRegister(NotificationsCreated)
		prometheus.MustRegister(ExpiredJobs)
	})
}

func Handler() http.Handler {
	return promhttp.Handler()
}

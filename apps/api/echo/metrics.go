package echoapi

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "lms"

type metrics struct {
	// RED metrics
	reqs *prometheus.CounterVec
	durs *prometheus.HistogramVec

	enrollments *prometheus.CounterVec
	toggles     *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		reqs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Number of HTTP requests served",
		}, []string{"method", "path", "code"}),
		durs: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
		enrollments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "enrollments_total",
			Help:      "Number of enroll calls, by whether a new enrollment was created",
		}, []string{"result"}),
		toggles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "completion_toggles_total",
			Help:      "Number of completion toggles, by resulting state",
		}, []string{"state"}),
	}
	if reg != nil {
		reg.MustRegister(m.reqs, m.durs, m.enrollments, m.toggles)
	}
	return m
}

// middleware records every request under its route template, after the error handler ran.
func (m *metrics) middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		start := time.Now()
		if err := next(ctx); err != nil {
			ctx.Error(err)
		}

		req := ctx.Request()
		path := ctx.Path()
		if path == "" {
			path = "unmatched"
		}
		m.reqs.WithLabelValues(req.Method, path, strconv.Itoa(ctx.Response().Status)).Inc()
		m.durs.WithLabelValues(req.Method, path).Observe(time.Since(start).Seconds())
		return nil
	}
}

func (m *metrics) enrolled(created bool) {
	result := "existing"
	if created {
		result = "created"
	}
	m.enrollments.WithLabelValues(result).Inc()
}

func (m *metrics) toggled(completed bool) {
	state := "incomplete"
	if completed {
		state = "completed"
	}
	m.toggles.WithLabelValues(state).Inc()
}

// Package telemetry exposes Prometheus metrics for the API: request counts
// and latencies per route, login outcomes and database pool occupancy.
package telemetry

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "eldercare"

// Login outcomes reported through RecordLogin.
const (
	LoginSuccess         = "success"
	LoginUnknownUser     = "unknown_user"
	LoginInvalidPassword = "invalid_password"
	LoginError           = "error"
)

// Metrics owns a private registry so that several instances (one per test)
// never collide on registration.
type Metrics struct {
	registry  *prometheus.Registry
	requests  *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	logins    *prometheus.CounterVec
	poolConns *prometheus.GaugeVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		logins: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "login_attempts_total",
				Help:      "Login attempts by outcome",
			},
			[]string{"result"},
		),
		poolConns: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "db_pool_connections",
				Help:      "Database pool connections by state",
			},
			[]string{"state"},
		),
	}

	m.registry.MustRegister(
		m.requests,
		m.duration,
		m.logins,
		m.poolConns,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Middleware records one request sample per handled request. The route label
// is the registered path template so ids do not explode cardinality.
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Path() == "/metrics" {
				return next(c)
			}
			start := time.Now()

			err := next(c)

			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok && !c.Response().Committed {
				status = he.Code
			} else if err != nil && !c.Response().Committed {
				status = http.StatusInternalServerError
			}

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			method := c.Request().Method
			m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
			m.duration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())

			return err
		}
	}
}

// Handler serves the Prometheus exposition format.
func (m *Metrics) Handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}

// RecordLogin counts a login attempt under result.
func (m *Metrics) RecordLogin(result string) {
	m.logins.WithLabelValues(result).Inc()
}

// SetPoolConnections publishes a pool snapshot.
func (m *Metrics) SetPoolConnections(acquired, idle, total int32) {
	m.poolConns.WithLabelValues("acquired").Set(float64(acquired))
	m.poolConns.WithLabelValues("idle").Set(float64(idle))
	m.poolConns.WithLabelValues("total").Set(float64(total))
}

// PoolSnapshot reports the current pool occupancy.
type PoolSnapshot func() (acquired, idle, total int32)

// WatchPool samples snapshot every interval until ctx is done.
func (m *Metrics) WatchPool(ctx context.Context, interval time.Duration, snapshot PoolSnapshot) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		m.SetPoolConnections(snapshot())
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

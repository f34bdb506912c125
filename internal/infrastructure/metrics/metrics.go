package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CacheMetrics records ttlcache events as a labelled counter.
type CacheMetrics struct {
	events *prometheus.CounterVec
}

// NewCacheMetrics creates and registers the cache event counter.
func NewCacheMetrics(reg prometheus.Registerer) *CacheMetrics {
	m := &CacheMetrics{
		events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ttl_cache_events_total",
				Help: "Cache events by cache name and event (hit, miss, coalesced, expire, eviction, fetch_error)",
			},
			[]string{"cache", "event"},
		),
	}
	reg.MustRegister(m.events)
	return m
}

func (m *CacheMetrics) Hit(cache string)        { m.events.WithLabelValues(cache, "hit").Inc() }
func (m *CacheMetrics) Miss(cache string)       { m.events.WithLabelValues(cache, "miss").Inc() }
func (m *CacheMetrics) Coalesced(cache string)  { m.events.WithLabelValues(cache, "coalesced").Inc() }
func (m *CacheMetrics) Expire(cache string)     { m.events.WithLabelValues(cache, "expire").Inc() }
func (m *CacheMetrics) Eviction(cache string)   { m.events.WithLabelValues(cache, "eviction").Inc() }
func (m *CacheMetrics) FetchError(cache string) { m.events.WithLabelValues(cache, "fetch_error").Inc() }

// Events exposes the underlying counter, mainly for tests.
func (m *CacheMetrics) Events() *prometheus.CounterVec { return m.events }

// DiscordMetrics records outbound Discord API calls.
type DiscordMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewDiscordMetrics creates and registers the Discord request metrics.
func NewDiscordMetrics(reg prometheus.Registerer) *DiscordMetrics {
	m := &DiscordMetrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "discord_requests_total",
				Help: "Discord API requests by method, route and status (0 = transport failure)",
			},
			[]string{"method", "route", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "discord_request_duration_seconds",
				Help: "Discord API request latencies in seconds",
			},
			[]string{"method", "route"},
		),
	}
	reg.MustRegister(m.requests, m.duration)
	return m
}

// ObserveRequest implements discord.RequestObserver.
func (m *DiscordMetrics) ObserveRequest(method, route string, status int, duration time.Duration) {
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// Requests exposes the request counter, mainly for tests.
func (m *DiscordMetrics) Requests() *prometheus.CounterVec { return m.requests }

// HTTPMetrics records inbound API requests.
type HTTPMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewHTTPMetrics creates and registers the HTTP request metrics.
func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	m := &HTTPMetrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "The total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "http_request_duration_seconds",
				Help: "The HTTP request latencies in seconds",
			},
			[]string{"method", "endpoint"},
		),
	}
	reg.MustRegister(m.requests, m.duration)
	return m
}

// ObserveRequest records one served request.
func (m *HTTPMetrics) ObserveRequest(method, endpoint string, status int, duration time.Duration) {
	m.requests.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// Requests exposes the request counter, mainly for tests.
func (m *HTTPMetrics) Requests() *prometheus.CounterVec { return m.requests }

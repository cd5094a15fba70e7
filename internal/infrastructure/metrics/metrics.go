package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/iho/barter/internal/domain"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Trade metrics
	TradesCommitted  prometheus.Counter
	TradesRejected   *prometheus.CounterVec
	TradesFailed     *prometheus.CounterVec
	TradeDuration    prometheus.Histogram
	ItemsTransferred prometheus.Counter

	// Presence metrics
	Heartbeats        prometheus.Counter
	AccountsOnline    prometheus.Gauge
	PresenceEvictions prometheus.Counter

	// Trade feed metrics
	FeedPublished prometheus.Counter
	FeedErrors    prometheus.Counter

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Rate limiting metrics
	RateLimitHits *prometheus.CounterVec
}

// New creates all Prometheus metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		TradesCommitted: factory.NewCounter(prometheus.CounterOpts{
			Name: "barter_trades_committed_total",
			Help: "Total number of committed trades",
		}),
		TradesRejected: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "barter_trades_rejected_total",
				Help: "Total number of rejected trades by reason",
			},
			[]string{"reason"},
		),
		TradesFailed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "barter_trades_failed_total",
				Help: "Total number of trades aborted by storage failure or inconsistency",
			},
			[]string{"code"},
		),
		TradeDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "barter_trade_duration_seconds",
			Help:    "Duration of committed trades",
			Buckets: prometheus.DefBuckets,
		}),
		ItemsTransferred: factory.NewCounter(prometheus.CounterOpts{
			Name: "barter_items_transferred_total",
			Help: "Total number of items moved by committed trades",
		}),

		Heartbeats: factory.NewCounter(prometheus.CounterOpts{
			Name: "barter_presence_heartbeats_total",
			Help: "Total number of heartbeats received",
		}),
		AccountsOnline: factory.NewGauge(prometheus.GaugeOpts{
			Name: "barter_presence_online_accounts",
			Help: "Accounts online at the last listing",
		}),
		PresenceEvictions: factory.NewCounter(prometheus.CounterOpts{
			Name: "barter_presence_evictions_total",
			Help: "Total number of stale presence entries evicted",
		}),

		FeedPublished: factory.NewCounter(prometheus.CounterOpts{
			Name: "barter_trade_feed_published_total",
			Help: "Total number of trade events published",
		}),
		FeedErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "barter_trade_feed_errors_total",
			Help: "Total number of failed trade feed publish attempts",
		}),

		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "barter_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "barter_http_request_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		RateLimitHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "barter_rate_limit_hits_total",
				Help: "Total number of requests rejected by the rate limiter",
			},
			[]string{"path"},
		),
	}
}

// TradeCommitted implements usecase.Metrics.
func (m *Metrics) TradeCommitted(items int, duration time.Duration) {
	m.TradesCommitted.Inc()
	m.ItemsTransferred.Add(float64(items))
	m.TradeDuration.Observe(duration.Seconds())
}

// TradeRejected implements usecase.Metrics.
func (m *Metrics) TradeRejected(reason domain.ErrorCode) {
	m.TradesRejected.WithLabelValues(string(reason)).Inc()
}

// TradeFailed implements usecase.Metrics.
func (m *Metrics) TradeFailed(code domain.ErrorCode) {
	m.TradesFailed.WithLabelValues(string(code)).Inc()
}

// Heartbeat implements usecase.Metrics.
func (m *Metrics) Heartbeat() {
	m.Heartbeats.Inc()
}

// OnlineAccounts implements usecase.Metrics.
func (m *Metrics) OnlineAccounts(n int) {
	m.AccountsOnline.Set(float64(n))
}

// PresenceEvicted implements usecase.Metrics.
func (m *Metrics) PresenceEvicted(n int) {
	m.PresenceEvictions.Add(float64(n))
}

// Published counts trade events handed to the feed publisher.
func (m *Metrics) Published(n int) {
	m.FeedPublished.Add(float64(n))
}

// PublishFailed counts failed feed publish attempts.
func (m *Metrics) PublishFailed() {
	m.FeedErrors.Inc()
}

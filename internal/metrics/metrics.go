package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/web3guy0/goldsniper/core"
	"github.com/web3guy0/goldsniper/types"
)

// Collector exports tick reports as Prometheus metrics. It owns its registry
// so several collectors can coexist in one process.
type Collector struct {
	registry *prometheus.Registry
	filter   core.TransitionFilter

	ticks       *prometheus.CounterVec
	failures    *prometheus.CounterVec
	transitions *prometheus.CounterVec
	price       prometheus.Gauge
	status      prometheus.Gauge
	lastTick    prometheus.Gauge
	feedDown    prometheus.Gauge
}

// NewCollector creates and registers the sniper metrics
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		ticks: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "goldsniper_ticks_total", Help: "Ticks processed"},
			[]string{"source"},
		),
		failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "goldsniper_price_unavailable_total", Help: "Ticks without a usable price"},
			[]string{"source"},
		),
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "goldsniper_status_transitions_total", Help: "Status changes by new kind"},
			[]string{"kind"},
		),
		price: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "goldsniper_price",
			Help: "Last usable spot XAU/USD price",
		}),
		status: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "goldsniper_status_severity",
			Help: "0 neutral, 1 watch, 2 inside zone, 3 signal",
		}),
		lastTick: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "goldsniper_last_tick_timestamp_seconds",
			Help: "Unix time of the last tick",
		}),
		feedDown: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "goldsniper_feed_down",
			Help: "1 while the feed breaker is tripped",
		}),
	}
	c.registry.MustRegister(c.ticks, c.failures, c.transitions, c.price, c.status, c.lastTick, c.feedDown)
	return c
}

// Name implements core.Sink
func (c *Collector) Name() string { return "metrics" }

// OnReport updates counters and gauges
func (c *Collector) OnReport(r *types.Report) {
	c.ticks.WithLabelValues(r.Source).Inc()
	c.lastTick.Set(float64(r.Time.Unix()))

	switch r.Health {
	case types.FeedDown:
		c.feedDown.Set(1)
	case types.FeedRestored:
		c.feedDown.Set(0)
	}

	if !r.Available {
		c.failures.WithLabelValues(r.Source).Inc()
		return
	}

	c.price.Set(r.Price.InexactFloat64())
	st := r.Status()
	c.status.Set(float64(st.Severity()))
	if c.filter.Changed(r) {
		c.transitions.WithLabelValues(st.Kind.String()).Inc()
	}
}

// Registry exposes the collector's registry
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus text format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr in the background
func (c *Collector) Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Str("addr", addr).Msg("Metrics server failed")
		}
	}()
	log.Info().Str("addr", addr).Msg("📈 Metrics server listening")
	return srv
}

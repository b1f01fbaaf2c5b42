// Package metrics exposes Prometheus counters for every analytics call the tracker makes.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Labels stay low-cardinality: no session or asset names.
type Metrics struct {
	// Calls counts analytics calls by scope (client, video, ad) and method.
	Calls *prometheus.CounterVec

	// Failures counts analytics calls that returned an error.
	Failures *prometheus.CounterVec

	// States counts reported player states, by stream and state.
	States *prometheus.CounterVec

	// ActiveSessions is the number of open content sessions.
	ActiveSessions prometheus.Gauge

	// AdBreaks counts ad breaks by ad type.
	AdBreaks *prometheus.CounterVec
}

// New registers the collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		Calls: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "playtrack_analytics_calls_total",
			Help: "Total number of analytics calls, by scope and method.",
		}, []string{"scope", "method"}),
		Failures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "playtrack_analytics_failures_total",
			Help: "Total number of failed analytics calls, by scope and method.",
		}, []string{"scope", "method"}),
		States: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "playtrack_player_states_total",
			Help: "Total number of reported player states, by stream and state.",
		}, []string{"stream", "state"}),
		ActiveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "playtrack_active_sessions",
			Help: "Current number of open content sessions.",
		}),
		AdBreaks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "playtrack_ad_breaks_total",
			Help: "Total number of ad breaks, by ad type.",
		}, []string{"type"}),
	}
}

func (m *Metrics) observe(scope, method string, err error) error {
	m.Calls.WithLabelValues(scope, method).Inc()
	if err != nil {
		m.Failures.WithLabelValues(scope, method).Inc()
	}
	return err
}

// Serve exposes the registry on addr under /metrics until ctx is done.
func Serve(ctx context.Context, addr string, gatherer prometheus.Gatherer) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		errs <- server.ListenAndServe()
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdown); err != nil {
			return err
		}

		if err := <-errs; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

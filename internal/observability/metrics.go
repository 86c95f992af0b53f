package observability

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

const (
	RoleResponder = "responder"
	RoleInitiator = "initiator"
)

var (
	registerOnce sync.Once

	exchanges = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tcpsum",
			Subsystem: "exchange",
			Name:      "total",
			Help:      "Completed or rejected exchanges by outcome.",
		},
		[]string{"role", "outcome"},
	)
	exchangeDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "tcpsum",
			Subsystem: "exchange",
			Name:      "duration_seconds",
			Help:      "Time from accept or dial until the connection closed.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"role", "outcome"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(exchanges, exchangeDuration)
	})
}

func RecordExchange(role, outcome string, duration time.Duration) {
	RegisterMetrics()
	exchanges.WithLabelValues(role, outcome).Inc()
	exchangeDuration.WithLabelValues(role, outcome).Observe(duration.Seconds())
}

// ExchangeCount returns the counter for one role/outcome pair.
func ExchangeCount(role, outcome string) prometheus.Counter {
	RegisterMetrics()
	return exchanges.WithLabelValues(role, outcome)
}

// ServeMetrics exposes /metrics on addr until ctx is done. An empty addr is a no-op.
func ServeMetrics(ctx context.Context, addr string) error {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil
	}
	RegisterMetrics()
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info().Str("addr", ln.Addr().String()).Msg("metrics listening")
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Warn().Err(err).Msg("metrics server stopped")
		}
	}()
	return nil
}

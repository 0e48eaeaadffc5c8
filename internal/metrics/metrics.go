package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

var (
	FeedRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "feed_requests_total",
		Help: "Feed requests by sort mode and outcome",
	}, []string{"sort", "outcome"})

	FeedQueryDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "feed_query_duration_seconds",
		Help:    "Time to rank, page and project one feed request",
		Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
	}, []string{"sort"})

	FeedPageItems = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "feed_page_items",
		Help:    "Number of posts returned per feed page",
		Buckets: []float64{0, 1, 5, 10, 20, 50, 100},
	})

	FeedCacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "feed_cache_lookups_total",
		Help: "Anonymous feed cache lookups by result",
	}, []string{"result"})
)

// Outcome labels for FeedRequests.
const (
	OutcomeOK          = "ok"
	OutcomeInvalid     = "invalid"
	OutcomeUnavailable = "unavailable"
	OutcomeCanceled    = "canceled"
)

// MustRegister registers the feed metrics.
func MustRegister(registerer prometheus.Registerer) {
	registerer.MustRegister(
		FeedRequests,
		FeedQueryDuration,
		FeedPageItems,
		FeedCacheLookups,
	)
}

// ObserveFeed records one finished feed request.
func ObserveFeed(sort, outcome string, start time.Time, items int) {
	if sort == "" {
		sort = "unknown"
	}
	FeedRequests.WithLabelValues(sort, outcome).Inc()
	FeedQueryDuration.WithLabelValues(sort).Observe(time.Since(start).Seconds())
	if outcome == OutcomeOK {
		FeedPageItems.Observe(float64(items))
	}
}

// ObserveCacheLookup records a cache hit, miss or error.
func ObserveCacheLookup(result string) {
	FeedCacheLookups.WithLabelValues(result).Inc()
}

// StartServer serves /metrics on addr until ctx is done.
func StartServer(ctx context.Context, logger zerolog.Logger, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics: graceful shutdown failed")
		}
	}()

	go func() {
		logger.Info().Str("addr", addr).Msg("metrics: server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics: server stopped")
		}
	}()
}

package observability

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

var (
	moderationActionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moderation_actions_total",
			Help: "Total number of moderation actions taken",
		},
		[]string{"action"},
	)

	floodTripsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "flood_trips_total",
			Help: "Total number of flood-limit trips",
		},
	)

	registerOnce sync.Once
)

func register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(moderationActionsTotal, floodTripsTotal)
	})
}

// RecordAction counts a completed moderation action by kind.
func RecordAction(action string) {
	moderationActionsTotal.WithLabelValues(action).Inc()
}

// RecordFloodTrip counts a tripped flood limit.
func RecordFloodTrip() {
	floodTripsTotal.Inc()
}

// Server exposes /metrics; a lifecycle component.
type Server struct {
	addr string
	srv  *http.Server
}

func NewServer(addr string) *Server {
	return &Server{addr: addr}
}

func (s *Server) Start(ctx context.Context) error {
	register()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	s.srv = &http.Server{Addr: s.addr, Handler: mux}

	go func() {
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("metrics server failed")
		}
	}()
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.srv.Shutdown(shutdownCtx)
}

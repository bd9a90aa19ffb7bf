package keyboard

import (
	"context"
	"net/http"

	"github.com/golang/glog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	fx "github.com/robotalks/rflight/pkg/framework"
)

// HTTPServer serves /metrics and, when LEDs is set, the LED preview on
// /leds.
type HTTPServer struct {
	Addr     string
	Gatherer prometheus.Gatherer
	LEDs     http.Handler
}

// Handler builds the routes.
func (s *HTTPServer) Handler() http.Handler {
	mux := http.NewServeMux()
	g := s.Gatherer
	if g == nil {
		g = prometheus.DefaultGatherer
	}
	mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	if s.LEDs != nil {
		mux.Handle("/leds", s.LEDs)
	}
	return mux
}

// Run implements Runnable.
func (s *HTTPServer) Run(ctx context.Context) error {
	srv := &http.Server{Addr: s.Addr, Handler: s.Handler()}
	glog.Infof("serving http on %s", s.Addr)
	err := fx.RunWithContextCloser(ctx, srv, srv.ListenAndServe)
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

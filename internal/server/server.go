package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"hkm-site/internal/pages"
	"hkm-site/internal/pagesync"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

const (
	readHeaderTimeout = 10 * time.Second
	maxPageBytes      = 5 << 20
)

type Options struct {
	SiteDir   string
	StaticDir string
	BaseURL   string
}

type Server struct {
	logger *zap.SugaredLogger
	sync   *pagesync.Synchronizer
	graph  pages.SiteGraph
	saver  *pages.Saver
	opts   Options

	upgrader websocket.Upgrader
	now      func() time.Time
}

func NewServer(logger *zap.SugaredLogger, sync *pagesync.Synchronizer, graph pages.SiteGraph, saver *pages.Saver, opts Options) *Server {
	return &Server{
		logger: logger,
		sync:   sync,
		graph:  graph,
		saver:  saver,
		opts:   opts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		now: time.Now,
	}
}

func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()

	r.Handle("/", otelhttp.NewHandler(http.HandlerFunc(s.handlePage), "page")).Methods(http.MethodGet)
	r.Handle("/{page:"+pageNamePattern+"}.html", otelhttp.NewHandler(http.HandlerFunc(s.handlePage), "page")).Methods(http.MethodGet)
	r.HandleFunc("/live/{page:"+pageNamePattern+"}", s.handleLive).Methods(http.MethodGet)
	r.Handle("/sitemap.xml", otelhttp.NewHandler(http.HandlerFunc(s.handleSitemap), "sitemap")).Methods(http.MethodGet)

	r.Handle(liveScriptRoute, http.HandlerFunc(serveLiveScript)).Methods(http.MethodGet)
	if s.opts.StaticDir != "" {
		r.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.Dir(s.opts.StaticDir))))
	}

	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down within shutdownTimeout.
func (s *Server) ListenAndServe(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Infow("Site server listening", "addr", addr, "dir", s.opts.SiteDir)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("failed to serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}

	return nil
}

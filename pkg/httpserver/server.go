package httpserver

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/nextlite/nextlite/pkg/dispatch"
	"github.com/nextlite/nextlite/pkg/hmr"
)

// Server is the HTTP front door: a chi router in front of a Dispatcher,
// plus the HMR websocket upgrade endpoint.
type Server struct {
	Addr       string
	Dispatcher *dispatch.Dispatcher
	Broadcaster *hmr.WebSocketBroadcaster

	httpServer *http.Server
	logger     *slog.Logger
}

// New constructs a Server bound to addr.
func New(addr string, d *dispatch.Dispatcher, broadcaster *hmr.WebSocketBroadcaster) *Server {
	return &Server{
		Addr:        addr,
		Dispatcher:  d,
		Broadcaster: broadcaster,
		logger:      slog.Default().With("component", "httpserver"),
	}
}

func (s *Server) router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)

	r.Get("/_hmr/ws", s.Broadcaster.HandleUpgrade)
	r.NotFound(s.dispatch)
	r.MethodNotAllowed(s.dispatch)
	r.HandleFunc("/*", s.dispatch)

	return r
}

// ListenAndServe blocks serving HTTP until ctx is canceled, then shuts
// down gracefully with a five second grace period.
func (s *Server) ListenAndServe(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:    s.Addr,
		Handler: s.router(),
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// dispatch translates an http.Request into a dispatch.Request, streams
// the response via dispatch.HandleStreamingRequest so that legacy
// handlers can flush chunks incrementally, and writes the result back
// onto w.
func (s *Server) dispatch(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "failed to read request body", http.StatusBadRequest)
		return
	}

	req := dispatch.Request{
		Method:  r.Method,
		URL:     r.URL.RequestURI(),
		Headers: flattenHeaders(r.Header),
		Body:    body,
	}

	started := false
	cb := dispatch.StreamCallbacks{
		OnStart: func(status int, headers map[string]string) {
			started = true
			for k, v := range headers {
				w.Header().Set(k, v)
			}
			w.WriteHeader(status)
		},
		OnChunk: func(chunk []byte) {
			if !started {
				w.WriteHeader(200)
				started = true
			}
			w.Write(chunk)
			if f, ok := w.(http.Flusher); ok {
				f.Flush()
			}
		},
		OnEnd: func() {},
	}

	s.Dispatcher.HandleStreamingRequest(r.Context(), req, cb)
}

func flattenHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k := range h {
		out[k] = h.Get(k)
	}
	return out
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.Debug("request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
		})
	}
}

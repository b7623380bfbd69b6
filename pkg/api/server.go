package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/flowmodel/pkg/errors"
	"github.com/matzehuels/flowmodel/pkg/model"
	"github.com/matzehuels/flowmodel/pkg/observability"
	"github.com/matzehuels/flowmodel/pkg/pipeline"
	"github.com/matzehuels/flowmodel/pkg/store"
)

// Options configures a Server.
type Options struct {
	// Graph is the served graph. Required.
	Graph *model.Graph
	// Runner renders artifacts. Defaults to an uncached runner.
	Runner *pipeline.Runner
	// Store enables the /snapshots routes when set.
	Store store.Store
	// Logger receives request logs. Defaults to log.Default().
	Logger *log.Logger
}

// Server is the HTTP API over one graph.
type Server struct {
	mu     sync.Mutex
	graph  *model.Graph
	runner *pipeline.Runner
	store  store.Store
	logger *log.Logger
	router chi.Router
}

// New creates a server and registers its routes.
func New(opts Options) *Server {
	s := &Server{
		graph:  opts.Graph,
		runner: opts.Runner,
		store:  opts.Store,
		logger: opts.Logger,
	}
	if s.graph == nil {
		s.graph = model.New(model.Options{})
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	if s.runner == nil {
		s.runner = pipeline.NewRunner(nil, nil, s.logger)
	}
	s.routes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// Graph returns the served graph. Callers must not use it while the
// server is handling requests.
func (s *Server) Graph() *model.Graph { return s.graph }

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/graph", func(r chi.Router) {
		r.Get("/", s.getGraph)
		r.Put("/", s.putGraph)
		r.Delete("/", s.clearGraph)
	})

	r.Route("/nodes", func(r chi.Router) {
		r.Post("/", s.addNode)
		r.Post("/move", s.moveNodes)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.getNode)
			r.Delete("/", s.deleteNode)
			r.Post("/move", s.moveNode)
			r.Post("/move-to", s.moveNodeTo)
		})
	})

	r.Route("/edges", func(r chi.Router) {
		r.Post("/", s.addEdge)
		r.Get("/{id}", s.getEdge)
		r.Delete("/{id}", s.deleteEdge)
	})

	r.Get("/selection", s.getSelection)
	r.Delete("/selection", s.clearSelection)

	r.Route("/elements/{id}", func(r chi.Router) {
		r.Post("/select", s.selectElement)
		r.Post("/to-front", s.toFront)
		r.Put("/z-index", s.setZIndex)
		r.Put("/state", s.setState)
		r.Patch("/properties", s.setProperties)
		r.Put("/text", s.updateText)
	})

	r.Post("/script", s.applyScript)
	r.Get("/render", s.render)
	r.Get("/events", s.events)

	r.Route("/snapshots", func(r chi.Router) {
		r.Get("/", s.listSnapshots)
		r.Put("/{name}", s.saveSnapshot)
		r.Post("/{name}/load", s.loadSnapshot)
		r.Delete("/{name}", s.deleteSnapshot)
	})

	s.router = r
}

// logRequests logs each request and reports it to the HTTP hooks.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		hooks := observability.HTTP()

		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		hooks.OnRequest(r.Context(), r.Method, route)
		hooks.OnResponse(r.Context(), r.Method, route, status, time.Since(start))
		s.logger.Debug("request",
			"method", r.Method,
			"route", route,
			"status", status,
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.logger.Info("serving graph", "addr", addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

// ===== Responses =====

type errorBody struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	if status >= 500 {
		s.logger.Error("request failed", "path", r.URL.Path, "err", err)
	}
	observability.HTTP().OnError(r.Context(), r.Method, r.URL.Path, err)
	writeJSON(w, status, errorBody{Code: code, Message: errors.UserMessage(err)})
}

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request body")
	}
	return nil
}

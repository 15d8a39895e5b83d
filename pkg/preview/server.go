package preview

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/weave"
	"github.com/vango-dev/weave/pkg/binding"
	"github.com/vango-dev/weave/pkg/component"
	"github.com/vango-dev/weave/pkg/dom"
	"github.com/vango-dev/weave/pkg/frame"
)

const defaultTracerName = "weave/preview"

var (
	// ErrSchedulerMismatch is returned by New when the runtime does not
	// schedule frames on the server's loop.
	ErrSchedulerMismatch = errors.New("weave: runtime scheduler must be the preview loop")

	// ErrDuplicateID is returned by Add for an id that is already mounted.
	ErrDuplicateID = errors.New("weave: component id already mounted")

	// ErrUnknownID is returned for an id that is not mounted.
	ErrUnknownID = errors.New("weave: unknown component id")
)

// Config configures a preview Server.
type Config struct {
	// Runtime builds the served components. Its scheduler must be Loop.
	Runtime *weave.Runtime

	// Loop runs every tree mutation. The caller runs it.
	Loop *frame.Loop

	// Title is the document title (default: "weave").
	Title string

	// Gatherer, if set, is exposed at /metrics.
	Gatherer prometheus.Gatherer

	// TracerName is the OpenTelemetry tracer name (default: "weave/preview").
	TracerName string

	// Logger is the server logger. If nil, the runtime logger is used.
	Logger *slog.Logger
}

// Server serves one live document.
type Server struct {
	rt     *weave.Runtime
	loop   *frame.Loop
	doc    *dom.Node
	body   *dom.Node
	hub    *Hub
	router chi.Router
	tracer trace.Tracer
	logger *slog.Logger

	// Loop goroutine only.
	components map[string]*component.Component
	order      []string

	snapMu sync.RWMutex
	snap   Snapshot
	ready  bool
}

// New creates a server and registers its after-frame snapshot hook on the
// loop.
func New(cfg Config) (*Server, error) {
	if cfg.Runtime == nil || cfg.Loop == nil {
		return nil, errors.New("weave: preview requires a runtime and a loop")
	}
	if cfg.Runtime.Scheduler() != frame.Scheduler(cfg.Loop) {
		return nil, ErrSchedulerMismatch
	}
	if cfg.Title == "" {
		cfg.Title = "weave"
	}
	if cfg.TracerName == "" {
		cfg.TracerName = defaultTracerName
	}
	if cfg.Logger == nil {
		cfg.Logger = cfg.Runtime.Logger()
	}

	s := &Server{
		rt:         cfg.Runtime,
		loop:       cfg.Loop,
		tracer:     otel.Tracer(cfg.TracerName),
		logger:     cfg.Logger.With("component", "preview"),
		components: make(map[string]*component.Component),
	}
	s.doc, s.body = newDocument(cfg.Title)
	s.hub = NewHub(s.logger, s.Snapshot)
	s.router = s.routes(cfg.Gatherer)

	cfg.Loop.AfterFrame(s.publish)
	return s, nil
}

func newDocument(title string) (doc, body *dom.Node) {
	doc = dom.NewElement("html")
	head := dom.NewElement("head")
	t := dom.NewElement("title")
	dom.SetText(t, title)
	dom.AppendChild(head, t)
	body = dom.NewElement("body")
	dom.AppendChild(doc, head)
	dom.AppendChild(doc, body)
	return doc, body
}

func (s *Server) routes(gatherer prometheus.Gatherer) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/", s.handleDocument)
	r.Get("/ws", s.hub.ServeHTTP)
	r.Route("/components", func(r chi.Router) {
		r.Get("/", s.handleList)
		r.Post("/{id}/update", s.handleUpdate)
		r.Delete("/{id}", s.handleDelete)
	})
	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// Hub returns the snapshot hub.
func (s *Server) Hub() *Hub { return s.hub }

// Body returns the document body. Only touch it on the loop goroutine.
func (s *Server) Body() *dom.Node { return s.body }

// Add mounts c into the document body under id.
func (s *Server) Add(ctx context.Context, id string, c *component.Component) error {
	return s.loop.Do(ctx, func() error {
		if _, ok := s.components[id]; ok {
			return fmt.Errorf("%w: %q", ErrDuplicateID, id)
		}
		if err := c.Mount(s.body); err != nil {
			return err
		}
		s.components[id] = c
		s.order = append(s.order, id)
		return nil
	})
}

// Update applies diff to the component mounted under id.
func (s *Server) Update(ctx context.Context, id string, diff map[string]any) error {
	ctx, span := s.tracer.Start(ctx, "preview.update",
		trace.WithAttributes(
			attribute.String("weave.component_id", id),
			attribute.Int("weave.keys", len(diff)),
		),
	)
	defer span.End()

	err := s.loop.Do(ctx, func() error {
		c, ok := s.components[id]
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownID, id)
		}
		span.SetAttributes(attribute.String("weave.component", c.Name()))
		return c.Update(diff)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

// Remove unmounts and forgets the component mounted under id.
func (s *Server) Remove(ctx context.Context, id string) error {
	ctx, span := s.tracer.Start(ctx, "preview.remove",
		trace.WithAttributes(attribute.String("weave.component_id", id)),
	)
	defer span.End()

	err := s.loop.Do(ctx, func() error {
		c, ok := s.components[id]
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownID, id)
		}
		c.Unmount()
		delete(s.components, id)
		s.order = slices.DeleteFunc(s.order, func(o string) bool { return o == id })
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

// Render renders the document on the loop goroutine.
func (s *Server) Render(ctx context.Context) (string, error) {
	var out string
	err := s.loop.Do(ctx, func() error {
		var err error
		out, err = s.render()
		return err
	})
	return out, err
}

func (s *Server) render() (string, error) {
	html, err := dom.Render(s.doc)
	if err != nil {
		return "", err
	}
	return "<!DOCTYPE html>" + html, nil
}

// Snapshot returns the last published snapshot and whether one exists.
func (s *Server) Snapshot() (Snapshot, bool) {
	s.snapMu.RLock()
	defer s.snapMu.RUnlock()
	return s.snap, s.ready
}

// publish runs after every dirty frame on the loop goroutine.
func (s *Server) publish() {
	html, err := s.render()
	if err != nil {
		s.logger.Error("render document", "error", err)
		return
	}

	s.snapMu.Lock()
	if s.ready && s.snap.HTML == html {
		s.snapMu.Unlock()
		return
	}
	s.snap = Snapshot{Revision: s.snap.Revision + 1, HTML: html}
	s.ready = true
	snap := s.snap
	s.snapMu.Unlock()

	s.hub.Broadcast(snap)
}

// ListenAndServe serves HTTP on addr until ctx is done, then shuts down
// gracefully. The loop must be running.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("preview server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.hub.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

// =============================================================================
// Handlers
// =============================================================================

type componentInfo struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Status string         `json:"status"`
	Ready  bool           `json:"ready"`
	State  map[string]any `json:"state"`
}

func (s *Server) handleDocument(w http.ResponseWriter, r *http.Request) {
	html, err := s.Render(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(html))
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	var list []componentInfo
	err := s.loop.Do(r.Context(), func() error {
		list = make([]componentInfo, 0, len(s.order))
		for _, id := range s.order {
			c := s.components[id]
			list = append(list, componentInfo{
				ID:     id,
				Name:   c.Name(),
				Status: c.Status().String(),
				Ready:  c.Ready(),
				State:  c.State().Snapshot(),
			})
		}
		return nil
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var diff map[string]any
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&diff); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body: " + err.Error()})
		return
	}

	if err := s.Update(r.Context(), id, diff); err != nil {
		writeJSON(w, statusFor(err), map[string]string{"error": err.Error()})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.Remove(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeJSON(w, statusFor(err), map[string]string{"error": err.Error()})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrUnknownID):
		return http.StatusNotFound
	case errors.Is(err, binding.ErrInvalidValue):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

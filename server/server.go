package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"push_to_gdoc/filler"
	"push_to_gdoc/values"
)

const maxBodyBytes = 32 << 20

// Filler is what the server needs from *filler.Filler.
type Filler interface {
	Replace(ctx context.Context, documentID string, mapping map[string]filler.Value) error
	Markers(ctx context.Context, documentID string) ([]filler.Occurrence, error)
}

type Server struct {
	filler Filler
	loader values.Loader
	logger *log.Logger
}

// New creates a Server. writer may be nil, in which case prompt values are rejected.
func New(f Filler, writer values.Writer, logger *log.Logger) (*Server, error) {
	if f == nil {
		return nil, errors.New("filler required")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		filler: f,
		// no BaseDir: request bodies may not reference server files
		loader: values.Loader{Writer: writer},
		logger: logger,
	}, nil
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.logMiddleware)
	r.Route("/api/documents/{id}", func(r chi.Router) {
		r.Get("/markers", s.handleMarkers)
		r.Post("/fill", s.handleFill)
	})
	return r
}

// --- Handlers ---

type markersResp struct {
	DocumentID string              `json:"document_id"`
	Markers    []filler.Occurrence `json:"markers"`
}

func (s *Server) handleMarkers(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()
	occs, err := s.filler.Markers(ctx, id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	if occs == nil {
		occs = []filler.Occurrence{}
	}
	writeJSON(w, markersResp{DocumentID: id, Markers: occs})
}

func (s *Server) handleFill(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		http.Error(w, err.Error(), http.StatusRequestEntityTooLarge)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 120*time.Second)
	defer cancel()
	mapping, err := s.loader.Decode(ctx, body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := s.filler.Replace(ctx, id, mapping); err != nil {
		code := http.StatusBadGateway
		if errors.Is(err, filler.ErrEmptyValue) {
			code = http.StatusBadRequest
		}
		http.Error(w, err.Error(), code)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Printf("[http] %s %s %d %s", r.Method, r.URL.Path, ww.Status(), time.Since(start).Round(time.Millisecond))
	})
}

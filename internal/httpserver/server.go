// Package httpserver exposes the store's read-only query surface over HTTP
// for dashboards and exporters. It never writes telemetry.
package httpserver

import (
	"net/http"

	"github.com/CAFxX/httpcompression"
	"github.com/getsentry/sentry-go"
	gojson "github.com/goccy/go-json"
	"github.com/julienschmidt/httprouter"

	"github.com/calvingit/performance-tracker/internal/event"
	"github.com/calvingit/performance-tracker/internal/eventstore"
	"github.com/calvingit/performance-tracker/internal/export"
	"github.com/calvingit/performance-tracker/internal/frames"
	"github.com/calvingit/performance-tracker/internal/stats"
)

type Server struct {
	store     *eventstore.Store
	collector *frames.Collector
}

func New(store *eventstore.Store, collector *frames.Collector) *Server {
	return &Server{store: store, collector: collector}
}

func (s *Server) NewRouter() (*httprouter.Router, error) {
	compress, err := httpcompression.DefaultAdapter()
	if err != nil {
		return nil, err
	}

	routes := []struct {
		method  string
		path    string
		handler http.HandlerFunc
	}{
		{http.MethodGet, "/health", s.getHealth},
		{http.MethodGet, "/records", s.getRecords},
		{http.MethodGet, "/stats", s.getStats},
		{http.MethodGet, "/frames/current", s.getFrameStats},
		{http.MethodGet, "/export", s.getExport},
	}

	router := httprouter.New()
	for _, route := range routes {
		router.Handler(route.method, route.path, compress(route.handler))
	}
	return router, nil
}

func (s *Server) getHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

// getRecords returns the log in insertion order, optionally narrowed by
// ?type= or ?name=.
func (s *Server) getRecords(w http.ResponseWriter, r *http.Request) {
	records, ok := s.filteredRecords(w, r)
	if !ok {
		return
	}
	if records == nil {
		records = []event.Record{}
	}
	writeJSON(w, r, records)
}

func (s *Server) getStats(w http.ResponseWriter, r *http.Request) {
	records, ok := s.filteredRecords(w, r)
	if !ok {
		return
	}
	writeJSON(w, r, stats.Collect(records))
}

func (s *Server) getFrameStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, s.collector.CurrentStats())
}

func (s *Server) getExport(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, export.NewEnvelope(s.store.Snapshot()))
}

func (s *Server) filteredRecords(w http.ResponseWriter, r *http.Request) ([]event.Record, bool) {
	query := r.URL.Query()
	if rawKind := query.Get("type"); rawKind != "" {
		kind := event.Kind(rawKind)
		if !kind.Valid() {
			http.Error(w, "unknown record type", http.StatusBadRequest)
			return nil, false
		}
		return s.store.ByKind(kind), true
	}
	if name := query.Get("name"); name != "" {
		return s.store.ByName(name), true
	}
	return s.store.Snapshot(), true
}

func writeJSON(w http.ResponseWriter, r *http.Request, v interface{}) {
	b, err := gojson.Marshal(v)
	if err != nil {
		if hub := sentry.GetHubFromContext(r.Context()); hub != nil {
			hub.CaptureException(err)
		}
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

package graph

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// LivenessHandler returns an HTTP handler for liveness probes.
// This is a simple check that the service is running.
func LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}
}

// ReadinessHandler returns an HTTP handler for readiness probes, answering
// from the cached report's overall status. It never triggers recomputation;
// pair the graph with a Poller or host-driven refreshes. An all-unknown
// graph (no pass yet) reports unavailable.
func ReadinessHandler(g *Graph) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report := g.Report()

		w.Header().Set("Content-Type", "text/plain")
		switch report.OverallStatus {
		case StatusHealthy:
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("OK"))
		case StatusDegraded:
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("DEGRADED"))
		case StatusUnhealthy:
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("UNHEALTHY"))
		default:
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("UNKNOWN"))
		}
	}
}

// ReportHandler returns an HTTP handler serving the full cached report as
// JSON: 200 while the graph is healthy or degraded, 503 otherwise.
func ReportHandler(g *Graph) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report := g.Report()

		w.Header().Set("Content-Type", "application/json")
		switch report.OverallStatus {
		case StatusHealthy, StatusDegraded:
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(report)
	}
}

// NodeHandler returns an HTTP handler serving a single node's cached entry
// as JSON, selected by the name query parameter. Unknown names yield 404.
func NodeHandler(g *Graph) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Query().Get("name")
		entry, ok := g.Report().Get(name)

		w.Header().Set("Content-Type", "application/json")
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"error": fmt.Sprintf("%s: %q", ErrNodeNotFound, name),
			})
			return
		}

		switch entry.Status {
		case StatusHealthy, StatusDegraded:
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(entry)
	}
}

// RegisterHandlers registers the health endpoints on the given mux.
func RegisterHandlers(mux *http.ServeMux, g *Graph) {
	mux.HandleFunc("/healthz", LivenessHandler())
	mux.HandleFunc("/readyz", ReadinessHandler(g))
	mux.HandleFunc("/health", ReportHandler(g))
	mux.HandleFunc("/health/node", NodeHandler(g))
}

// Package monitor exposes the HTTP interface for observing a scanning
// session: health checks, the current hypothesis snapshot, and session
// counters.
package monitor

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/banshee-data/roomscan/internal/scan/hypothesis"
	"github.com/banshee-data/roomscan/internal/scan/pipeline"
)

// Server handles the HTTP monitoring interface for one session.
type Server struct {
	address string
	session *pipeline.Session
	server  *http.Server
}

// NewServer creates a monitor server for the given session.
func NewServer(address string, session *pipeline.Session) *Server {
	s := &Server{
		address: address,
		session: session,
	}
	s.server = &http.Server{
		Addr:    s.address,
		Handler: s.setupRoutes(),
	}
	return s
}

// Start begins the HTTP server in a goroutine and shuts it down when
// the context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	go func() {
		log.Printf("Starting monitor server on %s", s.address)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to start monitor server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down monitor server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		log.Printf("monitor server shutdown error: %v", err)
		if err := s.server.Close(); err != nil {
			log.Printf("monitor server force close error: %v", err)
		}
	}
	return nil
}

func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/hypotheses", s.handleHypotheses)
	mux.HandleFunc("/api/stats", s.handleStats)
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{
		"status":  "ok",
		"session": s.session.ID(),
		"state":   string(s.session.State()),
	})
}

// hypothesisView is the wire shape for one accepted hypothesis.
type hypothesisView struct {
	ID           string     `json:"id"`
	Class        string     `json:"class"`
	Position     [3]float64 `json:"position"`
	Dimensions   [3]float64 `json:"dimensions"`
	Confidence   float64    `json:"confidence"`
	SourceMeshID string     `json:"source_mesh_id"`
	AcceptedAt   time.Time  `json:"accepted_at"`
}

func (s *Server) handleHypotheses(w http.ResponseWriter, r *http.Request) {
	snapshot := s.session.Tracker().Hypotheses()
	views := make([]hypothesisView, 0, len(snapshot))
	for _, h := range snapshot {
		views = append(views, viewOf(h))
	}
	writeJSON(w, map[string]interface{}{
		"session":    s.session.ID(),
		"count":      len(views),
		"hypotheses": views,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]interface{}{
		"session": s.session.ID(),
		"state":   string(s.session.State()),
		"counts":  s.session.Stats().Snapshot(),
		"tracker": s.session.Tracker().Counts(),
	})
}

func viewOf(h hypothesis.Hypothesis) hypothesisView {
	return hypothesisView{
		ID:           h.ID,
		Class:        string(h.Class),
		Position:     [3]float64{h.Position.X, h.Position.Y, h.Position.Z},
		Dimensions:   [3]float64{h.Dimensions.X, h.Dimensions.Y, h.Dimensions.Z},
		Confidence:   h.Confidence,
		SourceMeshID: h.SourceMeshID,
		AcceptedAt:   h.AcceptedAt,
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("monitor: encode response: %v", err)
	}
}

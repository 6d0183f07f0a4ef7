package telemetry

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"
)

// WebServer exposes the stream counters as JSON over HTTP.
type WebServer struct {
	srv   *http.Server
	stats *StreamStats
}

// NewWebServer builds an HTTP server with a /api/stats endpoint.
func NewWebServer(addr string, stats *StreamStats) *WebServer {
	w := &WebServer{stats: stats}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/stats", w.handleStats)
	w.srv = &http.Server{Addr: addr, Handler: mux}
	return w
}

func (w *WebServer) handleStats(rw http.ResponseWriter, _ *http.Request) {
	rw.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(rw).Encode(w.stats.Snapshot()); err != nil {
		http.Error(rw, err.Error(), http.StatusInternalServerError)
	}
}

// Start begins listening and shuts down when the context is canceled.
func (w *WebServer) Start(ctx context.Context) {
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := w.srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("telemetry shutdown: %v", err)
		}
	}()

	if err := w.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Printf("telemetry server error: %v", err)
	}
}

package panel

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	// DefaultPort is where the tablet panel is served.
	DefaultPort = 8765

	keepAliveInterval = 15 * time.Second

	// slowClientTimeout is the per-write deadline; a client that cannot
	// drain its buffer within it is dropped.
	slowClientTimeout = 2 * time.Second
)

// NewServer constructor.
func NewServer(port int, broadcaster *Broadcaster, metrics *Metrics) *Server {
	if port == 0 {
		port = DefaultPort
	}
	return &Server{port: port, broadcaster: broadcaster, metrics: metrics}
}

// Server is the HTTP+SSE panel server.
type Server struct {
	port        int
	broadcaster *Broadcaster
	metrics     *Metrics

	httpServer *http.Server
}

// Run serves until ctx is cancelled, then closes all SSE connections.
func (s *Server) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/stream", s.handleStream)
	mux.HandleFunc("/state", s.handleState)
	if s.metrics != nil {
		mux.Handle("/metrics", s.metrics.Handler())
	}

	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.port),
		Handler: mux,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = s.httpServer.Shutdown(shutdownCtx)
	}()

	logrus.Infof("Panel server listening on http://0.0.0.0:%d", s.port)
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(panelHTML))
}

// handleState returns a one-shot snapshot of all twelve lamps.
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	snapshot := s.broadcaster.Snapshot()
	lamps := make([]Event, len(snapshot))
	for i, lit := range snapshot {
		st := 0
		if lit {
			st = 1
		}
		lamps[i] = Event{Lamp: i + 1, State: st}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"lamps": lamps})
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	id, events := s.broadcaster.Subscribe()
	defer s.broadcaster.Unsubscribe(id)
	if s.metrics != nil {
		s.metrics.SSEClients.Inc()
		defer s.metrics.SSEClients.Dec()
	}
	logrus.Debugf("sse client %d connected from %s", id, r.RemoteAddr)

	rc := http.NewResponseController(w)
	writeEvent := func(ev Event) bool {
		payload, _ := json.Marshal(ev)
		_ = rc.SetWriteDeadline(time.Now().Add(slowClientTimeout))
		if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
			return false
		}
		flusher.Flush()
		return true
	}

	// initial snapshot so a fresh client shows the current panel at once
	for i, lit := range s.broadcaster.Snapshot() {
		st := 0
		if lit {
			st = 1
		}
		if !writeEvent(Event{Lamp: i + 1, State: st}) {
			return
		}
	}

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			logrus.Debugf("sse client %d disconnected", id)
			return
		case ev := <-events:
			if !writeEvent(ev) {
				logrus.Debugf("sse client %d dropped (slow)", id)
				return
			}
		case <-keepAlive.C:
			_ = rc.SetWriteDeadline(time.Now().Add(slowClientTimeout))
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

package web

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/corey/lor/internal/adapters/socket"
	"github.com/corey/lor/internal/logging"
	"github.com/corey/lor/internal/ports"
)

// Server serves the lookup page and JSON API over HTTP.
type Server struct {
	queries  socket.AppQueries
	gatherer prometheus.Gatherer
	log      logging.Logger
	listener net.Listener
	httpSrv  *http.Server
	port     int
	started  time.Time
	stopOnce sync.Once

	portFilePath string // .lor/run/http.port
}

// NewServer creates an HTTP server. The portFilePath is where the bound
// port is written for discovery. gatherer may be nil to disable /metrics.
func NewServer(queries socket.AppQueries, gatherer prometheus.Gatherer, portFilePath string, log logging.Logger) *Server {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Server{
		queries:      queries,
		gatherer:     gatherer,
		log:          log,
		portFilePath: portFilePath,
		started:      time.Now(),
	}
}

// DefaultPort computes a project-specific port: 19000 + (hash(abs_path) % 1000).
func DefaultPort(projectRoot string) int {
	abs, err := filepath.Abs(projectRoot)
	if err != nil {
		abs = projectRoot
	}
	h := sha256.Sum256([]byte(abs))
	// Use first 4 bytes as uint32
	n := uint32(h[0])<<24 | uint32(h[1])<<16 | uint32(h[2])<<8 | uint32(h[3])
	return 19000 + int(n%1000)
}

// Handler returns the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /", http.FileServerFS(staticFS))
	mux.HandleFunc("GET /api/lookup", s.handleLookup)
	mux.HandleFunc("GET /api/autocomplete", s.handleAutocomplete)
	mux.HandleFunc("GET /api/disambiguation/{id}", s.handleDisambiguation)
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("POST /api/reindex", s.handleReindex)
	if s.gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return mux
}

// Start begins listening on the preferred port. Writes the port to the port file.
func (s *Server) Start(preferredPort int) error {
	addr := fmt.Sprintf("127.0.0.1:%d", preferredPort)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	s.listener = ln
	s.port = ln.Addr().(*net.TCPAddr).Port
	s.started = time.Now()

	s.httpSrv = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	if s.portFilePath != "" {
		if err := os.WriteFile(s.portFilePath, []byte(strconv.Itoa(s.port)), 0644); err != nil {
			s.log.Warn("write port file", logging.F("path", s.portFilePath), logging.Err(err))
		}
	}

	go func() {
		if err := s.httpSrv.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.log.Error("http serve", logging.Err(err))
		}
	}()
	return nil
}

// Stop gracefully shuts down the HTTP server. Idempotent.
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		if s.httpSrv != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			s.httpSrv.Shutdown(ctx)
		}
		if s.portFilePath != "" {
			os.Remove(s.portFilePath)
		}
	})
}

// Port returns the bound port number.
func (s *Server) Port() int {
	return s.port
}

// URL returns the page URL.
func (s *Server) URL() string {
	return fmt.Sprintf("http://localhost:%d", s.port)
}

func (s *Server) handleLookup(w http.ResponseWriter, r *http.Request) {
	svc := s.queries.Service()
	if svc == nil {
		writeError(w, http.StatusServiceUnavailable, socket.ErrNotReady)
		return
	}
	q := r.URL.Query()
	if q.Get("q") == "" {
		writeError(w, http.StatusBadRequest, "missing q")
		return
	}
	start := time.Now()
	a, err := svc.Answer(q.Get("q"), ports.FromClientLocale(q.Get("locale")))
	if err != nil {
		s.log.Error("lookup failed", logging.F("query", q.Get("q")), logging.Err(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	out, err := socket.NewLookupResult(a)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	out.Elapsed = time.Since(start).String()
	writeJSON(w, out)
}

func (s *Server) handleAutocomplete(w http.ResponseWriter, r *http.Request) {
	svc := s.queries.Service()
	if svc == nil {
		writeError(w, http.StatusServiceUnavailable, socket.ErrNotReady)
		return
	}
	q := r.URL.Query()
	limit := s.queries.AutocompleteLimit()
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		if n > 0 {
			limit = n
		}
	}
	entries := svc.AutocompleteN(q.Get("q"), limit)
	if entries == nil {
		entries = []string{}
	}
	writeJSON(w, socket.AutocompleteResult{Entries: entries})
}

func (s *Server) handleDisambiguation(w http.ResponseWriter, r *http.Request) {
	svc := s.queries.Service()
	if svc == nil {
		writeError(w, http.StatusServiceUnavailable, socket.ErrNotReady)
		return
	}
	set, err := svc.Disambiguation(r.PathValue("id"))
	if err != nil {
		writeJSON(w, socket.DisambiguationResult{Found: false})
		return
	}
	writeJSON(w, socket.DisambiguationResult{Found: true, Set: set})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	res := socket.HealthResult{
		Status: "building",
		Uptime: time.Since(s.started).Round(time.Second).String(),
	}
	if svc := s.queries.Service(); svc != nil {
		st := svc.Stats()
		res.Status = "ok"
		res.Keys = st.Keys
		res.Entities = st.Entities
		res.Disambiguations = st.Disambiguations
		if !st.CreatedAt.IsZero() {
			res.BuiltAt = st.CreatedAt.Format(time.RFC3339)
		}
	}
	writeJSON(w, res)
}

func (s *Server) handleReindex(w http.ResponseWriter, r *http.Request) {
	res, err := s.queries.Reindex(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, res)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

package socket

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"sync"
	"time"

	"github.com/corey/lor/internal/domain/lookup"
	"github.com/corey/lor/internal/logging"
	"github.com/corey/lor/internal/ports"
)

// AppQueries provides access to app state for server handlers.
// Thread safety is the implementor's responsibility.
type AppQueries interface {
	// Service returns the service for the current snapshot, or nil before
	// the first successful build.
	Service() *lookup.Service
	Reindex(ctx context.Context) (ReindexResult, error)
	AutocompleteLimit() int
}

// ErrNotReady is reported while no snapshot has been published.
const ErrNotReady = "index not ready"

// Server is the daemon that listens on a Unix socket and serves lookup requests.
type Server struct {
	queries  AppQueries
	log      logging.Logger
	listener net.Listener
	sockPath string
	started  time.Time

	done         chan struct{}
	shutdownCh   chan struct{} // closed when a remote shutdown request is received
	shutdownOnce sync.Once
	stopOnce     sync.Once
	wg           sync.WaitGroup
}

// NewServer creates a daemon server. log may be nil.
func NewServer(queries AppQueries, sockPath string, log logging.Logger) *Server {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Server{
		queries:    queries,
		log:        log,
		sockPath:   sockPath,
		done:       make(chan struct{}),
		shutdownCh: make(chan struct{}),
	}
}

// Start begins listening on the Unix socket. It handles stale sockets by
// attempting a connection first. If the connection fails, the stale socket
// is removed before binding.
func (s *Server) Start() error {
	if _, err := os.Stat(s.sockPath); err == nil {
		conn, err := net.DialTimeout("unix", s.sockPath, 500*time.Millisecond)
		if err == nil {
			conn.Close()
			return fmt.Errorf("daemon already running at %s", s.sockPath)
		}
		os.Remove(s.sockPath)
	}

	ln, err := net.Listen("unix", s.sockPath)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	s.listener = ln
	s.started = time.Now()

	s.wg.Add(1)
	go s.acceptLoop()

	return nil
}

// Stop closes the listener, waits for open connections and removes the
// socket file. Idempotent.
func (s *Server) Stop() error {
	s.stopOnce.Do(func() {
		close(s.done)
		if s.listener != nil {
			s.listener.Close()
		}
		s.wg.Wait()
		os.Remove(s.sockPath)
	})
	return nil
}

// ShutdownCh returns a channel that is closed when a remote shutdown request
// is received. The daemon's main goroutine should select on this alongside
// OS signals so the process actually exits after a remote stop.
func (s *Server) ShutdownCh() <-chan struct{} {
	return s.shutdownCh
}

// Addr returns the socket path the server is listening on.
func (s *Server) Addr() string {
	return s.sockPath
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.done:
				return
			default:
				continue
			}
		}
		s.wg.Add(1)
		go s.handleConn(conn)
	}
}

func (s *Server) handleConn(conn net.Conn) {
	defer s.wg.Done()
	defer conn.Close()

	// Unblock the scanner when the server stops.
	finished := make(chan struct{})
	defer close(finished)
	go func() {
		select {
		case <-s.done:
			conn.Close()
		case <-finished:
		}
	}()

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024) // 1MB max message

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			s.writeResponse(conn, Response{Error: "invalid request JSON"})
			continue
		}

		resp := s.handleRequest(req)
		s.writeResponse(conn, resp)

		if req.Method == MethodShutdown {
			s.shutdownOnce.Do(func() { close(s.shutdownCh) })
			return
		}
	}
}

func (s *Server) handleRequest(req Request) Response {
	switch req.Method {
	case MethodLookup:
		return s.handleLookup(req)
	case MethodAutocomplete:
		return s.handleAutocomplete(req)
	case MethodDisambiguation:
		return s.handleDisambiguation(req)
	case MethodHealth:
		return s.handleHealth(req)
	case MethodReindex:
		return s.handleReindex(req)
	case MethodShutdown:
		return Response{ID: req.ID, Result: struct{}{}}
	default:
		return Response{ID: req.ID, Error: fmt.Sprintf("unknown method: %s", req.Method)}
	}
}

func (s *Server) handleLookup(req Request) Response {
	var params LookupParams
	if err := decodeParams(req.Params, &params); err != nil {
		return Response{ID: req.ID, Error: "invalid lookup params"}
	}
	svc := s.queries.Service()
	if svc == nil {
		return Response{ID: req.ID, Error: ErrNotReady}
	}

	start := time.Now()
	a, err := svc.Answer(params.Query, ports.FromClientLocale(params.Locale))
	if err != nil {
		s.log.Error("lookup failed", logging.F("query", params.Query), logging.Err(err))
		return Response{ID: req.ID, Error: err.Error()}
	}
	out, err := NewLookupResult(a)
	if err != nil {
		return Response{ID: req.ID, Error: err.Error()}
	}
	out.Elapsed = time.Since(start).String()
	return Response{ID: req.ID, Result: out}
}

func (s *Server) handleAutocomplete(req Request) Response {
	var params AutocompleteParams
	if err := decodeParams(req.Params, &params); err != nil {
		return Response{ID: req.ID, Error: "invalid autocomplete params"}
	}
	svc := s.queries.Service()
	if svc == nil {
		return Response{ID: req.ID, Error: ErrNotReady}
	}
	limit := params.Limit
	if limit <= 0 {
		limit = s.queries.AutocompleteLimit()
	}
	return Response{ID: req.ID, Result: AutocompleteResult{Entries: svc.AutocompleteN(params.Prefix, limit)}}
}

func (s *Server) handleDisambiguation(req Request) Response {
	var params DisambiguationParams
	if err := decodeParams(req.Params, &params); err != nil {
		return Response{ID: req.ID, Error: "invalid disambiguation params"}
	}
	svc := s.queries.Service()
	if svc == nil {
		return Response{ID: req.ID, Error: ErrNotReady}
	}
	set, err := svc.Disambiguation(params.ID)
	if err != nil {
		return Response{ID: req.ID, Result: DisambiguationResult{Found: false}}
	}
	return Response{ID: req.ID, Result: DisambiguationResult{Found: true, Set: set}}
}

func (s *Server) handleHealth(req Request) Response {
	res := HealthResult{
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
	return Response{ID: req.ID, Result: res}
}

func (s *Server) handleReindex(req Request) Response {
	result, err := s.queries.Reindex(context.Background())
	if err != nil {
		return Response{ID: req.ID, Error: err.Error()}
	}
	return Response{ID: req.ID, Result: result}
}

func (s *Server) writeResponse(conn net.Conn, resp Response) {
	data, err := json.Marshal(resp)
	if err != nil {
		s.log.Error("marshal response", logging.Err(err))
		return
	}
	data = append(data, '\n')
	conn.Write(data)
}

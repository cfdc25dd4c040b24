package fixture

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/wagmiprojects/shopify-api-js/pkg/catalog"
	"github.com/wagmiprojects/shopify-api-js/pkg/logging"
	"github.com/wagmiprojects/shopify-api-js/pkg/requestlog"
	"github.com/wagmiprojects/shopify-api-js/pkg/scenario"
)

// DefaultPort is the port used when none is configured.
const DefaultPort = 3000

// Errors returned by Server lifecycle methods.
var (
	ErrAlreadyRunning = errors.New("server is already running")
	ErrNotRunning     = errors.New("server is not running")
)

// Config holds listener settings.
type Config struct {
	// Host to bind. Empty binds all interfaces.
	Host string

	// Port to bind. Zero picks a free port.
	Port int

	// ReadHeaderTimeout bounds how long a client may take to send headers.
	ReadHeaderTimeout time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the operational logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Server) {
		if log != nil {
			s.log = log
		}
	}
}

// WithCatalog replaces the built-in catalog.
func WithCatalog(cat *catalog.Catalog) Option {
	return func(s *Server) {
		if cat != nil {
			s.engine = scenario.NewEngine(cat)
		}
	}
}

// WithJournal records every served request in store.
func WithJournal(store requestlog.Store) Option {
	return func(s *Server) {
		if store != nil {
			s.journal = store
		}
	}
}

// Server is the fixture HTTP responder.
type Server struct {
	cfg     Config
	engine  *scenario.Engine
	journal requestlog.Store
	log     *slog.Logger

	mu         sync.Mutex
	httpServer *http.Server
	listener   net.Listener
	serveErr   chan error

	done     chan struct{}
	doneOnce sync.Once
}

// New creates a Server. It does not listen until Start is called.
func New(cfg Config, opts ...Option) *Server {
	if cfg.ReadHeaderTimeout <= 0 {
		cfg.ReadHeaderTimeout = 10 * time.Second
	}
	s := &Server{
		cfg:     cfg,
		engine:  scenario.NewEngine(nil),
		journal: requestlog.NewMemoryStore(0),
		log:     logging.Nop(),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Engine returns the scenario engine, mainly so harnesses can Reset it.
func (s *Server) Engine() *scenario.Engine {
	return s.engine
}

// Journal returns the request journal.
func (s *Server) Journal() requestlog.Store {
	return s.journal
}

// Done is closed once an endtest request has been answered.
func (s *Server) Done() <-chan struct{} {
	return s.done
}

// ServeHTTP answers one request.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := scenario.ExtractKey(r.URL.Path)
	d := s.engine.Respond(key)

	writeErr := writeResponse(w, r, d.Response)
	reset := s.engine.Settle(key)

	entry := &requestlog.Entry{
		Method:         r.Method,
		Path:           r.URL.Path,
		RemoteAddr:     r.RemoteAddr,
		UserAgent:      r.UserAgent(),
		Key:            string(key),
		Family:         d.Family.String(),
		ResponseStatus: d.Response.StatusCode,
		CounterBefore:  d.CounterBefore,
		CounterAfter:   d.CounterAfter,
		CounterReset:   reset,
	}
	if writeErr != nil {
		entry.Error = writeErr.Error()
		s.log.Warn("response write failed", "key", key, "error", writeErr)
	}
	s.journal.Log(entry)

	s.log.Debug("served",
		"method", r.Method,
		"path", r.URL.Path,
		"key", key,
		"family", d.Family.String(),
		"status", d.Response.StatusCode,
		"counter_before", d.CounterBefore,
		"counter_after", d.CounterAfter,
	)
	if reset {
		s.log.Debug("retry counter reset", "key", key)
	}

	if d.Family == scenario.FamilyEndTest {
		s.log.Info("end of test requested")
		s.doneOnce.Do(func() { close(s.done) })
	}
}

// Start binds the listener and serves in the background. Bind errors, such
// as a port already in use, are returned.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.httpServer != nil {
		return ErrAlreadyRunning
	}

	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	srv := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: s.cfg.ReadHeaderTimeout,
	}
	s.httpServer = srv
	s.listener = ln
	s.serveErr = make(chan error, 1)

	go func(errCh chan<- error) {
		err := srv.Serve(ln)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		if err != nil {
			s.log.Error("HTTP server error", "error", err)
		}
		errCh <- err
	}(s.serveErr)

	s.log.Info("listening", "addr", ln.Addr().String())
	return nil
}

// Stop shuts the server down, waiting for in-flight requests until ctx
// expires.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	srv, errCh := s.httpServer, s.serveErr
	s.httpServer, s.listener, s.serveErr = nil, nil, nil
	s.mu.Unlock()

	if srv == nil {
		return ErrNotRunning
	}

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	if err := <-errCh; err != nil {
		return err
	}
	s.log.Info("stopped")
	return nil
}

// Addr returns the bound address, or "" when not running.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Port returns the bound port, or 0 when not running.
func (s *Server) Port() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return 0
	}
	if tcp, ok := s.listener.Addr().(*net.TCPAddr); ok {
		return tcp.Port
	}
	return 0
}

// URL returns the URL that selects key on the running server.
func (s *Server) URL(key catalog.Key) string {
	return "http://" + hostForURL(s.Addr()) + scenario.Path(key)
}

// hostForURL rewrites wildcard bind addresses to loopback.
func hostForURL(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	if ip := net.ParseIP(host); host == "" || (ip != nil && ip.IsUnspecified()) {
		host = "127.0.0.1"
	}
	return net.JoinHostPort(host, port)
}

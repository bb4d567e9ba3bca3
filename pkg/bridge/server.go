package bridge

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/uciwire/uciwire/pkg/config"
	"github.com/uciwire/uciwire/pkg/hub"
	"github.com/uciwire/uciwire/pkg/uci"
)

// Version is the service version reported on the status endpoints. Set at
// build time via -ldflags.
var Version = "dev"

const (
	// pollIdleDelay is how long the poll loop sleeps when no engine had
	// output this cycle.
	pollIdleDelay = 10 * time.Millisecond
	// drainBatch caps how many lines one engine may emit per poll cycle so
	// a chatty engine cannot starve the others.
	drainBatch = 100
	// connReportInterval is how often the connection-count sink fires on
	// its own, independent of register/unregister events.
	connReportInterval = 5 * time.Second
)

// Sinks are optional observer callbacks. All fields are nil-safe and must
// not block; they are invoked from the server's internal goroutines.
type Sinks struct {
	// Line fires for every engine output line, after it was broadcast.
	Line func(line string)
	// Connections fires when the client count changes and periodically.
	Connections func(n int)
}

// Server is the UCI bridge service.
type Server struct {
	log   *slog.Logger
	sinks Sinks

	hub *hub.Hub
	set *uci.Set

	cfgMu sync.RWMutex
	cfg   *config.Config

	httpServer *http.Server
	listener   net.Listener
	cancel     context.CancelFunc
	wg         sync.WaitGroup

	mu        sync.Mutex
	running   bool
	startTime time.Time
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

// WithSinks sets the observer callbacks.
func WithSinks(sinks Sinks) Option {
	return func(s *Server) {
		s.sinks = sinks
	}
}

// NewServer creates a Server from the given configuration.
func NewServer(cfg *config.Config, opts ...Option) *Server {
	s := &Server{
		log: slog.Default(),
		cfg: cfg.Clone(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.hub = hub.New(s.log)
	s.set = uci.NewSet(s.log)
	return s
}

// Start binds the listen address, launches the configured engines, and
// begins serving. It returns once the server is accepting connections.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return fmt.Errorf("server already running")
	}

	s.cfgMu.RLock()
	listen := s.cfg.Listen
	engines := append([]config.EngineConfig(nil), s.cfg.Engines...)
	s.cfgMu.RUnlock()

	if len(engines) > 0 {
		if err := s.set.ReplaceAll(engines); err != nil {
			return fmt.Errorf("failed to launch engines: %w", err)
		}
	}

	listener, err := net.Listen("tcp", listen)
	if err != nil {
		s.set.Close()
		return fmt.Errorf("failed to listen on %s: %w", listen, err)
	}
	s.listener = listener

	s.httpServer = &http.Server{
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.wg.Add(2)
	go s.pollLoop(ctx)
	go s.reportLoop(ctx)

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.log.Error("http server stopped", "error", err)
		}
	}()

	s.running = true
	s.startTime = time.Now()
	s.log.Info("bridge started", "addr", listener.Addr().String(), "engines", len(s.set.Engines()))
	return nil
}

// Addr returns the bound listen address, or empty before Start.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop shuts the service down: no new connections, clients closed, engines
// quit. The context bounds the HTTP drain.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.mu.Unlock()

	s.cancel()

	err := s.httpServer.Shutdown(ctx)
	s.hub.CloseAll()
	s.set.Close()
	s.wg.Wait()

	s.log.Info("bridge stopped")
	return err
}

// pollLoop drains engine output and broadcasts it to clients. Each cycle
// visits every engine in the current roster once; an idle cycle sleeps so
// quiet periods do not spin the CPU.
func (s *Server) pollLoop(ctx context.Context) {
	defer s.wg.Done()
	for {
		total := 0
		for _, eng := range s.set.Engines() {
			for _, line := range eng.Pump(drainBatch) {
				total++
				s.hub.Broadcast(ctx, line)
				if s.sinks.Line != nil {
					s.sinks.Line(line)
				}
			}
		}
		if ctx.Err() != nil {
			return
		}
		if total > 0 {
			continue
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(pollIdleDelay):
		}
	}
}

// reportLoop fires the connection-count sink periodically.
func (s *Server) reportLoop(ctx context.Context) {
	defer s.wg.Done()
	ticker := time.NewTicker(connReportInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n := s.hub.Count()
			s.log.Debug("connection report", "clients", n)
			if s.sinks.Connections != nil {
				s.sinks.Connections(n)
			}
		}
	}
}

// reportConnections fires the connection sink with the current count.
func (s *Server) reportConnections() {
	if s.sinks.Connections != nil {
		s.sinks.Connections(s.hub.Count())
	}
}

// Uptime returns how long the server has been running.
func (s *Server) Uptime() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.startTime.IsZero() {
		return 0
	}
	return time.Since(s.startTime)
}

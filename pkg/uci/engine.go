package uci

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/uciwire/uciwire/pkg/config"
)

// State tracks an engine's progress through the UCI startup handshake.
type State int

const (
	// Uninitialized means no handshake has been sent yet. Commands queue.
	Uninitialized State = iota
	// HandshakeSent means "uci"/"isready" went out and the engine has not
	// confirmed readiness yet. Commands still queue.
	HandshakeSent
	// Ready means the engine answered readyok (or the handshake deadline
	// passed). Commands flow through directly.
	Ready
)

// String returns a readable state name for logs and health output.
func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case HandshakeSent:
		return "handshake-sent"
	case Ready:
		return "ready"
	default:
		return "unknown"
	}
}

// Startup timing knobs. Package-level so tests can shorten them.
var (
	// handshakeTimeout bounds how long an engine may sit in HandshakeSent
	// before it is promoted to Ready anyway. Engines that never print
	// readyok (or print it interleaved oddly) still become usable.
	handshakeTimeout = 5 * time.Second
	// QuitTimeout is how long Quit waits after "quit" before killing.
	QuitTimeout = 2 * time.Second
)

// defaultNodesPerSecond is the throttle applied to a throttled-nn engine when
// the configuration leaves NodesPerSecond at zero. Maia networks play at
// human strength only when searching a single node, so the limit is kept far
// below one node per millisecond.
const defaultNodesPerSecond = 0.001

// minSearchNodes is the node count forced onto unbounded "go" commands for
// throttled engines. One node is the Maia calibration point.
const minSearchNodes = 1

// Option names that engines use for opening books. All are set when a book
// file is configured so the bridge works across engine families.
var bookOptions = []string{"Book", "OwnBook", "UseBook"}

// Option names that engines use for endgame tablebase paths.
var tablebaseOptions = []string{"SyzygyPath", "TablebasePath", "Tablebase", "TbPath"}

// Engine is a Process plus UCI startup handling and a command queue.
//
// Until the startup handshake completes, Enqueue buffers commands instead of
// writing them; Pump flushes the buffer once the engine is Ready. A dead
// engine accepts and discards everything.
type Engine struct {
	name string
	cfg  config.EngineConfig
	proc *Process
	log  *slog.Logger

	mu       sync.Mutex
	state    State
	queue    []string
	deadline time.Time
}

// NewEngine spawns the configured executable and wraps it. The handshake is
// not sent until Init is called.
func NewEngine(cfg config.EngineConfig, log *slog.Logger) (*Engine, error) {
	proc, err := Spawn(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("engine %s: %w", cfg.Name, err)
	}
	return &Engine{
		name: cfg.Name,
		cfg:  cfg,
		proc: proc,
		log:  log.With("engine", cfg.Name),
	}, nil
}

// Name returns the engine's configured display name.
func (e *Engine) Name() string {
	return e.name
}

// Kind returns the engine's configured kind.
func (e *Engine) Kind() config.Kind {
	return e.cfg.Kind
}

// Alive reports whether the underlying process is still running.
func (e *Engine) Alive() bool {
	return e.proc.Alive()
}

// State returns the engine's current handshake state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Init sends the UCI startup handshake. It is idempotent: only the first
// call on an Uninitialized engine does anything. Handshake lines bypass the
// command queue and go straight to the process.
func (e *Engine) Init() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != Uninitialized {
		return
	}
	e.state = HandshakeSent
	e.deadline = time.Now().Add(handshakeTimeout)

	e.send("uci")
	if e.cfg.Kind == config.KindThrottledNN {
		e.sendThrottleOptions()
	}
	e.sendSharedOptions()
	e.send("isready")

	e.log.Debug("handshake sent", "kind", e.cfg.Kind)
}

// sendThrottleOptions configures a neural-network engine to play at human
// speed. Caller holds e.mu.
func (e *Engine) sendThrottleOptions() {
	if e.cfg.WeightsFile != "" {
		e.setOption("WeightsFile", e.cfg.WeightsFile)
	}
	e.setOption("Threads", "1")
	e.setOption("MinibatchSize", "1")
	e.setOption("MaxPrefetch", "0")

	nps := e.cfg.NodesPerSecond
	if nps == 0 {
		nps = defaultNodesPerSecond
	}
	e.setOption("NodesPerSecondLimit", formatFloat(nps))

	if e.cfg.DisableSlowMover {
		e.setOption("SlowMover", "0")
	}
}

// sendSharedOptions configures book and tablebase paths for any engine kind.
// Unknown option names are harmless; UCI engines ignore options they do not
// declare. Caller holds e.mu.
func (e *Engine) sendSharedOptions() {
	if e.cfg.BookFile != "" {
		for _, name := range bookOptions {
			e.setOption(name, "true")
		}
		e.setOption("BookFile", e.cfg.BookFile)
	}
	if e.cfg.TablebasePath != "" {
		for _, name := range tablebaseOptions {
			e.setOption(name, e.cfg.TablebasePath)
		}
	}
}

func (e *Engine) setOption(name, value string) {
	e.send(fmt.Sprintf("setoption name %s value %s", name, value))
}

// send writes directly to the process, logging but tolerating failures.
// Caller holds e.mu.
func (e *Engine) send(line string) {
	if err := e.proc.Write(line); err != nil {
		e.log.Warn("engine write failed", "line", line, "error", err)
	}
}

// Enqueue submits one command line to the engine. Before the engine is
// Ready the command is buffered in order; afterwards it is written
// immediately. Dead engines swallow commands silently.
//
// For throttled engines, "go" commands without an explicit node count are
// rewritten to search the minimum node count. An unbounded search would let
// the engine think at full strength, defeating the throttle.
func (e *Engine) Enqueue(cmd string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	cmd = e.rewrite(cmd)

	if e.state != Ready {
		e.queue = append(e.queue, cmd)
		return
	}
	e.send(cmd)
}

// rewrite applies kind-specific command fixups. Caller holds e.mu.
func (e *Engine) rewrite(cmd string) string {
	if e.cfg.Kind != config.KindThrottledNN {
		return cmd
	}
	fields := strings.Fields(cmd)
	if len(fields) == 0 || fields[0] != "go" {
		return cmd
	}
	for _, f := range fields[1:] {
		if f == "nodes" {
			return cmd
		}
	}
	return fmt.Sprintf("go nodes %d", minSearchNodes)
}

// Pump advances the engine state machine and drains up to max buffered
// output lines. It must be called regularly; it never blocks.
//
// While the handshake is pending, Pump watches for readyok and promotes the
// engine to Ready (or gives up when the deadline passes), then flushes the
// queued commands in order.
func (e *Engine) Pump(max int) []string {
	var out []string
	for i := 0; i < max; i++ {
		line, ok := e.proc.TryReadLine()
		if !ok {
			break
		}
		out = append(out, line)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == HandshakeSent {
		ready := false
		for _, line := range out {
			if strings.TrimSpace(line) == "readyok" {
				ready = true
				break
			}
		}
		if !ready && time.Now().After(e.deadline) {
			e.log.Warn("handshake timed out, promoting to ready")
			ready = true
		}
		if ready {
			e.state = Ready
			e.flushQueue()
		}
	}

	return out
}

// flushQueue writes all buffered commands. Caller holds e.mu.
func (e *Engine) flushQueue() {
	for _, cmd := range e.queue {
		e.send(cmd)
	}
	e.queue = nil
}

// Quit shuts the engine down, waiting up to QuitTimeout before killing it.
func (e *Engine) Quit() {
	e.proc.Shutdown(QuitTimeout)
}

// formatFloat renders a throttle value without exponent notation so engines
// with naive option parsers accept it.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

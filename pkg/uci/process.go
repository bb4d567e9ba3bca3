package uci

import (
	"bufio"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"sync/atomic"
	"time"
)

// Process wraps a single engine subprocess with line-oriented access.
//
// Stdout and stderr are merged into one stream: engines print diagnostics on
// stderr that clients want to see alongside regular protocol output. A reader
// goroutine buffers complete lines so TryReadLine never blocks the caller.
type Process struct {
	cmd  *exec.Cmd
	path string

	stdin   *os.File
	stdinMu sync.Mutex

	linesMu sync.Mutex
	lines   []string

	alive   atomic.Bool
	crashed atomic.Bool
	done    chan struct{}
}

// Spawn starts the executable at path and begins reading its output.
func Spawn(path string) (*Process, error) {
	cmd := exec.Command(path)

	inR, inW, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stdin pipe: %w", err)
	}
	outR, outW, err := os.Pipe()
	if err != nil {
		_ = inR.Close()
		_ = inW.Close()
		return nil, fmt.Errorf("failed to create output pipe: %w", err)
	}

	cmd.Stdin = inR
	cmd.Stdout = outW
	cmd.Stderr = outW

	if err := cmd.Start(); err != nil {
		_ = inR.Close()
		_ = inW.Close()
		_ = outR.Close()
		_ = outW.Close()
		return nil, fmt.Errorf("failed to start %s: %w", path, err)
	}

	// The child holds its own copies of the pipe ends now. Closing ours
	// ensures the reader sees EOF when the child exits.
	_ = inR.Close()
	_ = outW.Close()

	p := &Process{
		cmd:   cmd,
		path:  path,
		stdin: inW,
		done:  make(chan struct{}),
	}
	p.alive.Store(true)

	go p.readLoop(outR)

	return p, nil
}

// readLoop buffers output lines until the merged stream closes, then reaps
// the child.
func (p *Process) readLoop(out *os.File) {
	scanner := bufio.NewScanner(out)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		p.linesMu.Lock()
		p.lines = append(p.lines, scanner.Text())
		p.linesMu.Unlock()
	}
	_ = out.Close()

	err := p.cmd.Wait()
	p.alive.Store(false)
	if err != nil {
		p.crashed.Store(true)
	}
	close(p.done)
}

// TryReadLine returns one buffered output line without blocking. The second
// return value is false when no line is available.
func (p *Process) TryReadLine() (string, bool) {
	p.linesMu.Lock()
	defer p.linesMu.Unlock()
	if len(p.lines) == 0 {
		return "", false
	}
	line := p.lines[0]
	p.lines = p.lines[1:]
	return line, true
}

// Write sends one line to the engine's stdin, appending the newline.
func (p *Process) Write(line string) error {
	if !p.alive.Load() {
		return fmt.Errorf("%w: %s", ErrProcessUnavailable, p.path)
	}
	p.stdinMu.Lock()
	defer p.stdinMu.Unlock()
	if _, err := p.stdin.WriteString(line + "\n"); err != nil {
		p.alive.Store(false)
		return fmt.Errorf("%w: %v", ErrProcessUnavailable, err)
	}
	return nil
}

// Alive reports whether the subprocess is still running.
func (p *Process) Alive() bool {
	return p.alive.Load()
}

// Crashed reports whether the subprocess exited with a failure. It stays
// true for the life of the Process.
func (p *Process) Crashed() bool {
	return p.crashed.Load()
}

// Path returns the executable path the process was spawned from.
func (p *Process) Path() string {
	return p.path
}

// Shutdown asks the engine to quit and waits up to timeout for it to exit.
// If the engine does not exit in time it is killed. Safe to call more than
// once.
func (p *Process) Shutdown(timeout time.Duration) {
	if p.alive.Load() {
		_ = p.Write("quit")
	}
	p.stdinMu.Lock()
	_ = p.stdin.Close()
	p.stdinMu.Unlock()

	select {
	case <-p.done:
	case <-time.After(timeout):
		_ = p.cmd.Process.Kill()
		<-p.done
	}
}

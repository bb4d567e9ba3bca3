package uci

import (
	"log/slog"
	"sync/atomic"

	"github.com/uciwire/uciwire/pkg/config"
)

// generation is one immutable roster of engines. Swapping the whole value
// atomically lets readers take a consistent snapshot without locking.
type generation struct {
	seq     uint64
	engines []*Engine
}

// Set is the live roster of engines, replaceable as a unit at runtime.
//
// Readers call Engines for a snapshot; a concurrent ReplaceAll never mutates
// a snapshot a reader already holds. Engines from a retired generation are
// quit in the background.
type Set struct {
	log *slog.Logger
	cur atomic.Pointer[generation]
	seq atomic.Uint64
}

// NewSet returns an empty Set.
func NewSet(log *slog.Logger) *Set {
	s := &Set{log: log}
	s.cur.Store(&generation{})
	return s
}

// Engines returns the current roster snapshot. The returned slice must not
// be modified.
func (s *Set) Engines() []*Engine {
	return s.cur.Load().engines
}

// Generation returns the sequence number of the current roster. It increases
// by one on every successful ReplaceAll.
func (s *Set) Generation() uint64 {
	return s.cur.Load().seq
}

// ReplaceAll spawns engines for the given configurations, starts their
// handshakes, and swaps them in as the new roster. Engines that fail to
// spawn are skipped with a log entry. If every spawn fails the old roster
// stays active and ErrNoUsableEngines is returned. The retired roster is
// quit in the background.
func (s *Set) ReplaceAll(cfgs []config.EngineConfig) error {
	engines := make([]*Engine, 0, len(cfgs))
	for _, cfg := range cfgs {
		eng, err := NewEngine(cfg, s.log)
		if err != nil {
			s.log.Error("engine spawn failed, skipping", "engine", cfg.Name, "path", cfg.Path, "error", err)
			continue
		}
		eng.Init()
		engines = append(engines, eng)
	}
	if len(cfgs) > 0 && len(engines) == 0 {
		return ErrNoUsableEngines
	}

	next := &generation{seq: s.seq.Add(1), engines: engines}
	old := s.cur.Swap(next)

	s.log.Info("engine roster replaced",
		"generation", next.seq,
		"engines", len(engines),
		"retired", len(old.engines))

	if len(old.engines) > 0 {
		go quitAll(old.engines)
	}
	return nil
}

// Close quits every engine in the current roster and leaves the Set empty.
func (s *Set) Close() {
	old := s.cur.Swap(&generation{seq: s.seq.Add(1)})
	quitAll(old.engines)
}

func quitAll(engines []*Engine) {
	for _, eng := range engines {
		eng.Quit()
	}
}

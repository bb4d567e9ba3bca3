package uci

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeEngineScript is a minimal UCI engine for tests. It answers the
// handshake and echoes everything else back prefixed with "recv ".
const fakeEngineScript = `#!/bin/sh
while read line; do
  case "$line" in
    uci) echo "id name fakeengine"; echo "uciok" ;;
    isready) echo "readyok" ;;
    quit) exit 0 ;;
    *) echo "recv $line" ;;
  esac
done
`

// crashEngineScript exits with a failure as soon as it starts.
const crashEngineScript = `#!/bin/sh
echo "dying"
exit 1
`

// silentEngineScript accepts input but never answers the handshake.
const silentEngineScript = `#!/bin/sh
while read line; do
  case "$line" in
    quit) exit 0 ;;
  esac
done
`

func writeScript(t *testing.T, script string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "engine.sh")
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// waitFor polls cond until it returns true or the timeout passes.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

// pumpUntil pumps the engine until cond is satisfied, collecting output.
func pumpUntil(t *testing.T, e *Engine, timeout time.Duration, cond func(lines []string) bool) []string {
	t.Helper()
	var all []string
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		all = append(all, e.Pump(100)...)
		if cond(all) {
			return all
		}
		time.Sleep(5 * time.Millisecond)
	}
	return all
}

func contains(lines []string, want string) bool {
	for _, l := range lines {
		if l == want {
			return true
		}
	}
	return false
}

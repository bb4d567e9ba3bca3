package uci

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpawn_MissingExecutable(t *testing.T) {
	_, err := Spawn("/nonexistent/engine")
	require.Error(t, err)
}

func TestProcess_WriteAndRead(t *testing.T) {
	proc, err := Spawn(writeScript(t, fakeEngineScript))
	require.NoError(t, err)
	defer proc.Shutdown(time.Second)

	require.NoError(t, proc.Write("hello"))

	ok := waitFor(t, 2*time.Second, func() bool {
		line, ok := proc.TryReadLine()
		return ok && line == "recv hello"
	})
	assert.True(t, ok, "expected echoed line")
}

func TestProcess_TryReadLineEmpty(t *testing.T) {
	proc, err := Spawn(writeScript(t, fakeEngineScript))
	require.NoError(t, err)
	defer proc.Shutdown(time.Second)

	_, ok := proc.TryReadLine()
	assert.False(t, ok)
}

func TestProcess_MergedStderr(t *testing.T) {
	script := `#!/bin/sh
echo "on stdout"
echo "on stderr" >&2
read line
`
	proc, err := Spawn(writeScript(t, script))
	require.NoError(t, err)
	defer proc.Shutdown(time.Second)

	var lines []string
	waitFor(t, 2*time.Second, func() bool {
		for {
			line, ok := proc.TryReadLine()
			if !ok {
				break
			}
			lines = append(lines, line)
		}
		return len(lines) >= 2
	})
	assert.Contains(t, lines, "on stdout")
	assert.Contains(t, lines, "on stderr")
}

func TestProcess_CrashDetection(t *testing.T) {
	proc, err := Spawn(writeScript(t, crashEngineScript))
	require.NoError(t, err)

	ok := waitFor(t, 2*time.Second, func() bool { return !proc.Alive() })
	require.True(t, ok, "process should be reaped")
	assert.True(t, proc.Crashed())

	err = proc.Write("uci")
	assert.ErrorIs(t, err, ErrProcessUnavailable)
}

func TestProcess_ShutdownOnQuit(t *testing.T) {
	proc, err := Spawn(writeScript(t, fakeEngineScript))
	require.NoError(t, err)

	start := time.Now()
	proc.Shutdown(5 * time.Second)
	assert.Less(t, time.Since(start), 2*time.Second, "quit should exit promptly")
	assert.False(t, proc.Alive())
	assert.False(t, proc.Crashed(), "clean quit is not a crash")
}

func TestProcess_ShutdownKillsStuckProcess(t *testing.T) {
	script := `#!/bin/sh
trap "" TERM
while true; do sleep 1; done
`
	proc, err := Spawn(writeScript(t, script))
	require.NoError(t, err)

	proc.Shutdown(200 * time.Millisecond)
	assert.False(t, proc.Alive())
}

func TestProcess_ShutdownIdempotent(t *testing.T) {
	proc, err := Spawn(writeScript(t, fakeEngineScript))
	require.NoError(t, err)

	proc.Shutdown(time.Second)
	proc.Shutdown(time.Second)
	assert.False(t, proc.Alive())
}

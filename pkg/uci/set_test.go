package uci

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uciwire/uciwire/pkg/config"
)

func TestSet_Empty(t *testing.T) {
	s := NewSet(testLogger())
	assert.Empty(t, s.Engines())
	assert.Equal(t, uint64(0), s.Generation())
}

func TestSet_ReplaceAll(t *testing.T) {
	s := NewSet(testLogger())
	path := writeScript(t, fakeEngineScript)

	err := s.ReplaceAll([]config.EngineConfig{
		{Name: "a", Path: path, Kind: config.KindStandard},
		{Name: "b", Path: path, Kind: config.KindStandard},
	})
	require.NoError(t, err)
	defer s.Close()

	engines := s.Engines()
	require.Len(t, engines, 2)
	assert.Equal(t, "a", engines[0].Name())
	assert.Equal(t, "b", engines[1].Name())
	assert.Equal(t, uint64(1), s.Generation())
}

func TestSet_ReplaceAllSkipsBrokenEngines(t *testing.T) {
	s := NewSet(testLogger())
	path := writeScript(t, fakeEngineScript)

	err := s.ReplaceAll([]config.EngineConfig{
		{Name: "good", Path: path},
		{Name: "bad", Path: "/nonexistent/engine"},
	})
	require.NoError(t, err)
	defer s.Close()

	engines := s.Engines()
	require.Len(t, engines, 1)
	assert.Equal(t, "good", engines[0].Name())
}

func TestSet_ReplaceAllKeepsOldRosterOnTotalFailure(t *testing.T) {
	s := NewSet(testLogger())
	path := writeScript(t, fakeEngineScript)

	require.NoError(t, s.ReplaceAll([]config.EngineConfig{{Name: "a", Path: path}}))
	defer s.Close()
	gen := s.Generation()

	err := s.ReplaceAll([]config.EngineConfig{{Name: "bad", Path: "/nonexistent/engine"}})
	require.ErrorIs(t, err, ErrNoUsableEngines)

	engines := s.Engines()
	require.Len(t, engines, 1)
	assert.Equal(t, "a", engines[0].Name())
	assert.True(t, engines[0].Alive())
	assert.Equal(t, gen, s.Generation())
}

func TestSet_ReplaceAllRetiresOldGeneration(t *testing.T) {
	s := NewSet(testLogger())
	path := writeScript(t, fakeEngineScript)

	require.NoError(t, s.ReplaceAll([]config.EngineConfig{{Name: "old", Path: path}}))
	old := s.Engines()[0]

	require.NoError(t, s.ReplaceAll([]config.EngineConfig{{Name: "new", Path: path}}))
	defer s.Close()

	assert.Equal(t, "new", s.Engines()[0].Name())
	ok := waitFor(t, 3*time.Second, func() bool { return !old.Alive() })
	assert.True(t, ok, "retired engine should quit")
}

func TestSet_ReplaceAllEmpty(t *testing.T) {
	s := NewSet(testLogger())
	path := writeScript(t, fakeEngineScript)

	require.NoError(t, s.ReplaceAll([]config.EngineConfig{{Name: "a", Path: path}}))
	require.NoError(t, s.ReplaceAll(nil))
	assert.Empty(t, s.Engines())
}

func TestSet_Close(t *testing.T) {
	s := NewSet(testLogger())
	path := writeScript(t, fakeEngineScript)

	require.NoError(t, s.ReplaceAll([]config.EngineConfig{{Name: "a", Path: path}}))
	eng := s.Engines()[0]

	s.Close()
	assert.Empty(t, s.Engines())
	assert.False(t, eng.Alive())
}

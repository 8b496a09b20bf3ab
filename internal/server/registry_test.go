package server

import (
	"fmt"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jerynmathew/thurup/internal/game"
	"github.com/jerynmathew/thurup/internal/randutil"
	"github.com/jerynmathew/thurup/internal/shortcode"
)

func testLogger() *log.Logger {
	return log.New(io.Discard)
}

func newRegistrySession(t *testing.T, id, code string) *game.Session {
	t.Helper()
	s, err := game.NewSession(id, code, game.DefaultConfig(), testLogger())
	require.NoError(t, err)
	return s
}

func TestRegistryResolve(t *testing.T) {
	r := NewRegistry(randutil.New(1))
	s := newRegistrySession(t, "g1", "brave-otter-42")
	r.Add(s)

	got, ok := r.Get("g1")
	require.True(t, ok)
	assert.Same(t, s, got)

	got, ok = r.Resolve("g1")
	require.True(t, ok)
	assert.Same(t, s, got)

	got, ok = r.Resolve("brave-otter-42")
	require.True(t, ok)
	assert.Same(t, s, got)

	// Short code lookup is case- and whitespace-insensitive.
	got, ok = r.Resolve("  Brave-Otter-42 ")
	require.True(t, ok)
	assert.Same(t, s, got)

	_, ok = r.Resolve("calm-lynx-77")
	assert.False(t, ok)
}

func TestRegistryRemoveFreesShortCode(t *testing.T) {
	r := NewRegistry(randutil.New(1))
	r.Add(newRegistrySession(t, "g1", "brave-otter-42"))
	r.Remove("g1")

	_, ok := r.Resolve("brave-otter-42")
	assert.False(t, ok)
	assert.Equal(t, 0, r.Len())
}

func TestRegistryNewShortCodeAvoidsCollisions(t *testing.T) {
	r := NewRegistry(randutil.New(7))
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code := r.NewShortCode()
		require.False(t, seen[code], "code %q issued twice", code)
		seen[code] = true
		require.True(t, shortcode.Valid(code) || len(code) == 8)
		r.Add(newRegistrySession(t, fmt.Sprintf("g%d", i), code))
	}
}

func TestRegistryList(t *testing.T) {
	r := NewRegistry(randutil.New(1))
	for i := 0; i < 3; i++ {
		r.Add(newRegistrySession(t, fmt.Sprintf("g%d", i), ""))
	}
	assert.Len(t, r.List(), 3)
	assert.Equal(t, 3, r.Len())
}

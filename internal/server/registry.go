package server

import (
	"fmt"
	rand "math/rand/v2"
	"sync"

	"github.com/jerynmathew/thurup/internal/game"
	"github.com/jerynmathew/thurup/internal/shortcode"
)

// shortCodeAttempts bounds the search for an unclaimed word code before
// falling back to a UUID-derived one.
const shortCodeAttempts = 16

// Registry holds the live sessions and the short code index. It is the
// in-memory source of truth; the store only matters across restarts.
type Registry struct {
	mu     sync.RWMutex
	games  map[string]*game.Session
	byCode map[string]string
	rng    *rand.Rand
}

// NewRegistry creates an empty registry using rng for code generation.
func NewRegistry(rng *rand.Rand) *Registry {
	return &Registry{
		games:  make(map[string]*game.Session),
		byCode: make(map[string]string),
		rng:    rng,
	}
}

// NewShortCode reserves a code not yet held by any registered game.
func (r *Registry) NewShortCode() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := 0; i < shortCodeAttempts; i++ {
		code := shortcode.Generate(r.rng)
		if _, taken := r.byCode[code]; !taken {
			return code
		}
	}
	return shortcode.Fallback()
}

// Add registers a session under its id and short code.
func (r *Registry) Add(s *game.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.games[s.ID()] = s
	if code := s.ShortCode(); code != "" {
		r.byCode[code] = s.ID()
	}
}

// Get returns the session with the exact id.
func (r *Registry) Get(id string) (*game.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.games[id]
	return s, ok
}

// Resolve looks a session up by id or short code.
func (r *Registry) Resolve(idOrCode string) (*game.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if s, ok := r.games[idOrCode]; ok {
		return s, true
	}
	if id, ok := r.byCode[shortcode.Normalize(idOrCode)]; ok {
		return r.games[id], true
	}
	return nil, false
}

// Remove drops a session and frees its short code.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.games[id]
	if !ok {
		return
	}
	delete(r.games, id)
	if code := s.ShortCode(); code != "" {
		delete(r.byCode, code)
	}
}

// List returns all registered sessions in unspecified order.
func (r *Registry) List() []*game.Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*game.Session, 0, len(r.games))
	for _, s := range r.games {
		out = append(out, s)
	}
	return out
}

// Len returns the number of registered sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.games)
}

// String implements fmt.Stringer for log output.
func (r *Registry) String() string {
	return fmt.Sprintf("Registry(%d games)", r.Len())
}

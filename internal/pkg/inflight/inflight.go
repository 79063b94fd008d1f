// Package inflight guards logical actions against duplicate concurrent
// submission. A second Acquire for a held key fails instead of queueing.
package inflight

import (
	"fmt"
	"sync"

	"github.com/wordsanctuary/training-portal/internal/domain"
	"github.com/wordsanctuary/training-portal/internal/pkg/id"
)

type Guard struct {
	mu   sync.Mutex
	held map[string]string
}

func New() *Guard {
	return &Guard{held: make(map[string]string)}
}

// Ticket is one successful acquisition. Release is idempotent and never
// frees a key that a later ticket has since taken.
type Ticket struct {
	Key   string
	Token string
	g     *Guard
}

// Acquire takes key or returns an error wrapping domain.ErrInFlight.
func (g *Guard) Acquire(key string) (*Ticket, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if tok, ok := g.held[key]; ok {
		return nil, fmt.Errorf("%s held by %s: %w", key, tok, domain.ErrInFlight)
	}
	t := &Ticket{Key: key, Token: id.New(), g: g}
	g.held[key] = t.Token
	return t, nil
}

func (t *Ticket) Release() {
	if t == nil || t.g == nil {
		return
	}
	t.g.mu.Lock()
	defer t.g.mu.Unlock()
	if t.g.held[t.Key] == t.Token {
		delete(t.g.held, t.Key)
	}
}

// Held reports whether key is currently acquired.
func (g *Guard) Held(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.held[key]
	return ok
}

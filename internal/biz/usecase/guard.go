package usecase

import "sync"

// EventGuard tracks event identifiers that already triggered a
// side-effecting workflow. Entries are never evicted: the set only has
// to cover the transport's retry window, and a process restart clears
// it naturally.
type EventGuard struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewEventGuard creates an empty guard
func NewEventGuard() *EventGuard {
	return &EventGuard{seen: make(map[string]struct{})}
}

// CheckAndMark records the identifier and reports whether this is the
// first time it was seen. Check and insert are a single locked step so
// interleaved handlers cannot both proceed for the same event.
func (g *EventGuard) CheckAndMark(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.seen[id]; ok {
		return false
	}
	g.seen[id] = struct{}{}
	return true
}

// Seen reports whether the identifier was already marked
func (g *EventGuard) Seen(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.seen[id]
	return ok
}

// Len returns the number of marked identifiers
func (g *EventGuard) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.seen)
}

package client

import "sync"

// Ticket identifies one in-flight request for a view.
type Ticket struct {
	key string
	seq uint64
}

// Guard decides whether a completed request may still update the view that
// issued it. A newer request for the same key, or closing the view, makes
// older tickets stale.
type Guard struct {
	mu     sync.Mutex
	seq    map[string]uint64
	closed map[string]bool
}

func NewGuard() *Guard {
	return &Guard{
		seq:    make(map[string]uint64),
		closed: make(map[string]bool),
	}
}

func (g *Guard) Begin(key string) Ticket {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq[key]++
	delete(g.closed, key)
	return Ticket{key: key, seq: g.seq[key]}
}

// Current reports whether t is the latest ticket of an open view.
func (g *Guard) Current(t Ticket) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return !g.closed[t.key] && g.seq[t.key] == t.seq
}

func (g *Guard) Close(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.closed[key] = true
}

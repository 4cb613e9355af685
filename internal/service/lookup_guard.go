package service

import "sync"

type guardEntry struct {
	token uint64
	value string
}

// LookupGuard tracks the newest lookup started per key so that a slower
// lookup for a replaced value cannot overwrite the result of a newer one.
type LookupGuard struct {
	mu      sync.Mutex
	seq     uint64
	entries map[string]guardEntry
}

func NewLookupGuard() *LookupGuard {
	return &LookupGuard{entries: make(map[string]guardEntry)}
}

func (g *LookupGuard) Begin(key, value string, record func() error) (uint64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if record != nil {
		if err := record(); err != nil {
			return 0, err
		}
	}
	g.seq++
	g.entries[key] = guardEntry{token: g.seq, value: value}
	return g.seq, nil
}

// Current reports whether a lookup for value may still be applied: it is
// the newest lookup for key, or the newest one asked for the same value.
// Once the newest lookup has finished the guard no longer knows, and the
// store's own check decides.
func (g *LookupGuard) Current(key string, token uint64, value string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	e, ok := g.entries[key]
	return !ok || e.token == token || e.value == value
}

func (g *LookupGuard) Done(key string, token uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.entries[key].token == token {
		delete(g.entries, key)
	}
}

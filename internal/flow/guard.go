package flow

import "sync"

// Guard tracks in-flight submissions by key across requests.
// Keys are a create form's submission token or DeleteKey(id).
type Guard struct {
	mu       sync.Mutex
	inflight map[string]struct{}
}

// NewGuard creates an empty guard.
func NewGuard() *Guard {
	return &Guard{inflight: make(map[string]struct{})}
}

// DeleteKey is the guard key for deleting one record.
func DeleteKey(id string) string {
	return "delete:" + id
}

// InFlight reports whether key is currently held.
func (g *Guard) InFlight(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.inflight[key]
	return ok
}

func (g *Guard) acquire(key string) bool {
	if key == "" {
		return true
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.inflight[key]; ok {
		return false
	}
	g.inflight[key] = struct{}{}
	return true
}

func (g *Guard) release(key string) {
	if key == "" {
		return
	}
	g.mu.Lock()
	delete(g.inflight, key)
	g.mu.Unlock()
}

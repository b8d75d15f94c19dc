package partition

import (
	"sync"

	"github.com/driftlake/driftlake/pkg/types"
)

// Router derives partition paths for streams of rows using a single scratch
// key, and tracks per-path row counts for writer fanout decisions.
//
// Like a Key, a Router is scratch state for one routing goroutine; only
// Stats may be called from other goroutines while routing is in flight.
type Router struct {
	key *Key

	mu    sync.Mutex
	stats map[string]int64
}

// NewRouter returns a router for the given spec.
func NewRouter(spec *Spec) (*Router, error) {
	key, err := NewKey(spec)
	if err != nil {
		return nil, err
	}
	return &Router{key: key, stats: make(map[string]int64)}, nil
}

// Route evaluates row and returns its partition path. The scratch key is
// reused, so the path is rendered before the next call invalidates the
// tuple.
func (r *Router) Route(row types.Row) string {
	r.key.Partition(row)
	path := r.key.ToPath()

	r.mu.Lock()
	r.stats[path]++
	r.mu.Unlock()

	return path
}

// GroupRows fans rows out by partition path.
func (r *Router) GroupRows(rows []types.Row) map[string][]types.Row {
	groups := make(map[string][]types.Row)
	for _, row := range rows {
		path := r.Route(row)
		groups[path] = append(groups[path], row)
	}
	return groups
}

// Stats returns a snapshot of per-path row counts routed so far.
func (r *Router) Stats() map[string]int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	snapshot := make(map[string]int64, len(r.stats))
	for path, count := range r.stats {
		snapshot[path] = count
	}
	return snapshot
}

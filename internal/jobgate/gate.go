// Package jobgate bounds how many long-running jobs may execute at once.
//
// A Gate owns its registry of active job identifiers; every operation takes
// the same mutex, so a TryStart that is rejected never mutates state and the
// active count can never exceed capacity.
package jobgate

import (
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// DefaultCapacity serializes whole-video jobs.
const DefaultCapacity = 1

// Status is a point-in-time snapshot of the gate.
type Status struct {
	ActiveCount       int      `json:"activeCount"`
	ActiveIDs         []string `json:"activeIds"`
	CapacityRemaining int      `json:"capacityRemaining"`
	MaxConcurrent     int      `json:"maxConcurrent"`
}

// Gate admits at most capacity concurrent job identifiers.
type Gate struct {
	mu       sync.Mutex
	capacity int
	active   map[string]struct{}
}

// New constructs a gate. Capacities below one are raised to one.
func New(capacity int) *Gate {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	return &Gate{capacity: capacity, active: make(map[string]struct{})}
}

// TryStart registers id when capacity allows. It returns false when the gate is
// saturated or id is already running.
func (g *Gate) TryStart(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, running := g.active[id]; running {
		return false
	}
	if len(g.active) >= g.capacity {
		return false
	}
	g.active[id] = struct{}{}
	return true
}

// Finish removes id. Unknown ids are ignored.
func (g *Gate) Finish(id string) {
	g.mu.Lock()
	delete(g.active, id)
	g.mu.Unlock()
}

// Acquire is TryStart with a scoped release. The release func is safe to call
// more than once.
func (g *Gate) Acquire(id string) (release func(), ok bool) {
	if !g.TryStart(id) {
		return func() {}, false
	}
	var once sync.Once
	return func() { once.Do(func() { g.Finish(id) }) }, true
}

// IsRunning reports whether id currently holds a slot.
func (g *Gate) IsRunning(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.active[id]
	return ok
}

// Clear drops every registration. Used to recover from leaked slots.
func (g *Gate) Clear() {
	g.mu.Lock()
	clear(g.active)
	g.mu.Unlock()
}

// Status returns the current registry snapshot.
func (g *Gate) Status() Status {
	g.mu.Lock()
	defer g.mu.Unlock()
	ids := make([]string, 0, len(g.active))
	for id := range g.active {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return Status{
		ActiveCount:       len(ids),
		ActiveIDs:         ids,
		CapacityRemaining: g.capacity - len(ids),
		MaxConcurrent:     g.capacity,
	}
}

// NewJobID builds a unique job identifier scoped to a user and video.
func NewJobID(userID, videoID string) string {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		userID = "anonymous"
	}
	return userID + "_" + strings.TrimSpace(videoID) + "_" + uuid.NewString()
}

// Package registry is the coordinator's in-memory storage-node registry
// (spec.md §3/§4.1): node identity, liveness, load for placement. Unlike
// pkg/catalog, nothing here is persisted — a coordinator restart starts
// with an empty registry and storage nodes must re-register (spec.md §9).
package registry

import (
	"sync"
	"time"

	"github.com/netdoc/netdoc/pkg/protoerr"
)

// StorageNode is one entry in the coordinator's registry (spec.md §3).
type StorageNode struct {
	ID            uint64
	Address       string
	Alive         bool
	LastHeartbeat time.Time
	FileCount     int
}

// Registry tracks every storage node that has ever registered with this
// coordinator process, grounded on the teacher's pkg/registry.Registry
// (a single sync.RWMutex guarding a set of maps, one exported method per
// operation rather than exposing the maps directly).
type Registry struct {
	mu       sync.RWMutex
	nodes    map[uint64]*StorageNode
	order    []uint64 // insertion order, ascending by id; ids are never reused
	nextID   uint64
	capacity int
}

// New returns an empty registry that refuses registrations past capacity
// nodes (spec.md §5's "fixed upper bound... for live storage nodes").
func New(capacity int) *Registry {
	return &Registry{
		nodes:    make(map[uint64]*StorageNode),
		capacity: capacity,
	}
}

// Register assigns the next monotonically increasing id to address and
// inserts it alive with file_count=0 (spec.md §4.1's REGISTER_SS contract).
// Fails with protoerr.StorageUnavailable once the registry is at capacity.
func (r *Registry) Register(address string) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.capacity > 0 && len(r.nodes) >= r.capacity {
		return 0, protoerr.New(protoerr.StorageUnavailable, "storage-node registry is at capacity")
	}

	r.nextID++
	id := r.nextID
	r.nodes[id] = &StorageNode{
		ID:            id,
		Address:       address,
		Alive:         true,
		LastHeartbeat: time.Now().UTC(),
		FileCount:     0,
	}
	r.order = append(r.order, id)
	return id, nil
}

// Get returns a copy of the node with the given id.
func (r *Registry) Get(id uint64) (*StorageNode, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n, ok := r.nodes[id]
	if !ok {
		return nil, false
	}
	cp := *n
	return &cp, true
}

// SetAlive flips a node's liveness bit (spec.md §4.1: "alive is a field,
// not a process" in the scoped core; any operational channel may call
// this — a heartbeat handler, an admin command, or a failed dial).
func (r *Registry) SetAlive(id uint64, alive bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.nodes[id]
	if !ok {
		return protoerr.New(protoerr.StorageUnavailable, "unknown storage node")
	}
	n.Alive = alive
	if alive {
		n.LastHeartbeat = time.Now().UTC()
	}
	return nil
}

// Heartbeat marks a node alive and refreshes its last-heartbeat timestamp.
func (r *Registry) Heartbeat(id uint64) error {
	return r.SetAlive(id, true)
}

// IncrementFileCount bumps a node's advisory placement counter. Called
// only on the primary at CREATE/CREATEFOLDER time (spec.md §4.1).
func (r *Registry) IncrementFileCount(id uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.nodes[id]
	if !ok {
		return protoerr.New(protoerr.StorageUnavailable, "unknown storage node")
	}
	n.FileCount++
	return nil
}

// DecrementFileCount undoes IncrementFileCount at DELETE time. Never goes
// below zero, since the count is advisory and may already have drifted
// (spec.md §3: "may drift").
func (r *Registry) DecrementFileCount(id uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.nodes[id]
	if !ok {
		return protoerr.New(protoerr.StorageUnavailable, "unknown storage node")
	}
	if n.FileCount > 0 {
		n.FileCount--
	}
	return nil
}

// List returns every registered node (alive or not), in registration order.
func (r *Registry) List() []*StorageNode {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*StorageNode, 0, len(r.order))
	for _, id := range r.order {
		cp := *r.nodes[id]
		out = append(out, &cp)
	}
	return out
}

// PlacePrimary implements spec.md §4.1's placement policy: the alive node
// with the smallest file_count, ties broken by smallest id.
func (r *Registry) PlacePrimary() (*StorageNode, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var best *StorageNode
	for _, id := range r.order {
		n := r.nodes[id]
		if !n.Alive {
			continue
		}
		if best == nil || n.FileCount < best.FileCount || (n.FileCount == best.FileCount && n.ID < best.ID) {
			best = n
		}
	}
	if best == nil {
		return nil, protoerr.NoLiveNode()
	}
	cp := *best
	return &cp, nil
}

// PlaceReplica returns the first alive node other than primaryID in id
// order, or (nil, false) if none exists (spec.md §4.1: only when ≥2 alive
// nodes exist).
func (r *Registry) PlaceReplica(primaryID uint64) (*StorageNode, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, id := range r.order {
		n := r.nodes[id]
		if n.Alive && n.ID != primaryID {
			cp := *n
			return &cp, true
		}
	}
	return nil, false
}

// AliveCount reports the number of currently alive nodes, used by metrics.
func (r *Registry) AliveCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, n := range r.nodes {
		if n.Alive {
			count++
		}
	}
	return count
}

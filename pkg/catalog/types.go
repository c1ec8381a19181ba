// Package catalog holds the coordinator's authoritative metadata: files,
// access grants, pending access requests, and checkpoints (spec.md §3).
// The storage-node registry and sentence lock table are separate
// packages (pkg/registry, pkg/lock) because, unlike the catalog, they
// are never persisted (spec.md §5/§9).
package catalog

import "time"

// FileEntry is the authoritative record the coordinator holds for one
// file or folder (spec.md §3).
type FileEntry struct {
	Name          string
	Owner         string
	PrimaryNodeID uint64
	ReplicaNodeID *uint64 // nil when no replica was assigned
	IsFolder      bool
	CreatedAt     time.Time
	ModifiedAt    time.Time
	AccessedAt    time.Time

	// Advisory counters, authoritative on the storage node (spec.md §3).
	WordCount     int
	CharCount     int
	SentenceCount int
}

// HasReplica reports whether a replica node was assigned at creation.
func (f *FileEntry) HasReplica() bool {
	return f.ReplicaNodeID != nil
}

// AccessGrant records that a non-owner user has read, write, or both
// rights to a file (spec.md §3). The owner never appears as a grant.
type AccessGrant struct {
	FileName string
	Grantee  string
	Perms    Perm
}

// Perm mirrors wire.Perm without importing pkg/wire, keeping the catalog
// package free of wire-framing concerns per spec.md §3's ownership split
// ("neither side reads the other's private state directly").
type Perm int

const (
	PermRead      Perm = 1
	PermWrite     Perm = 2
	PermReadWrite Perm = PermRead | PermWrite
)

// Satisfies reports whether the grant is sufficient for required.
func (p Perm) Satisfies(required Perm) bool {
	return p&required == required
}

// RequestStatus is the lifecycle state of an AccessRequest.
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
)

// AccessRequest is a pending permission request (spec.md §3).
type AccessRequest struct {
	ID            string
	FileName      string
	Requester     string
	RequestedPerm Perm
	Status        RequestStatus
	RequestedAt   time.Time
}

// Checkpoint records that a named snapshot of a file's bytes was taken
// on the storage node at blob_locator (spec.md §3). The blob itself
// lives off-core; the coordinator only tracks that it exists.
type Checkpoint struct {
	FileName    string
	Tag         string
	BlobLocator string
	CreatedAt   time.Time
}

// User is a flat registered-user record. Authentication is explicitly
// out of scope (spec.md §1 Non-goals); REGISTER_CLIENT just reserves a
// name so ADDACCESS/REQUESTACCESS can validate a grantee exists.
type User struct {
	Name         string
	RegisteredAt time.Time
}

package catalog

import "context"

// Store is the coordinator's persistent catalog backend (spec.md §3/§6).
// Both implementations in this repository (store/memory, store/postgres)
// satisfy the shared conformance suite in pkg/catalog/storetest.
//
// Every method returns a *protoerr.CodedError on failure so handlers in
// pkg/coordinator can forward it to the wire layer unchanged; any
// non-CodedError database failure is wrapped as protoerr.Internal by the
// implementation before it is returned, per spec.md §7 ("database
// errors collapse to server_error").
type Store interface {
	// ----- Files -----

	// CreateFile inserts entry. Fails with protoerr.AlreadyExists if a
	// file with the same name exists.
	CreateFile(ctx context.Context, entry *FileEntry) error

	// GetFile returns the file, or protoerr.NotFound.
	GetFile(ctx context.Context, name string) (*FileEntry, error)

	// ListFiles returns every FileEntry, for VIEW("all") (spec.md §4.1).
	ListFiles(ctx context.Context) ([]*FileEntry, error)

	// TouchAccessed updates modified/accessed timestamps and, for
	// modified, the advisory counters. Passing nil leaves a field
	// unchanged.
	TouchAccessed(ctx context.Context, name string) error
	TouchModified(ctx context.Context, name string, counters *Counters) error

	// DeleteFile removes entry plus every AccessGrant, AccessRequest,
	// and Checkpoint row referencing it (spec.md §4.1), atomically.
	// Fails with protoerr.NotFound if the file does not exist.
	DeleteFile(ctx context.Context, name string) error

	// ----- Users -----

	// RegisterUser inserts name if absent; registering an
	// already-registered user is a no-op success (reconnects are
	// expected, spec.md does not define a distinct error for this case).
	RegisterUser(ctx context.Context, name string) error

	// UserExists reports whether name has been registered.
	UserExists(ctx context.Context, name string) (bool, error)

	// ----- Access grants -----

	// UpsertGrant inserts or replaces the single grant for
	// (grant.FileName, grant.Grantee) (spec.md §8's ADDACCESS law).
	UpsertGrant(ctx context.Context, grant *AccessGrant) error

	// RemoveGrant deletes the grant if present; absent is not an error.
	RemoveGrant(ctx context.Context, file, grantee string) error

	// GetGrant returns the grant and true, or (nil, false, nil) if absent.
	GetGrant(ctx context.Context, file, grantee string) (*AccessGrant, bool, error)

	// ListGrantsForUser returns every grant naming user as grantee, used
	// by VIEW() to find files the user can see beyond ownership.
	ListGrantsForUser(ctx context.Context, user string) ([]*AccessGrant, error)

	// ----- Access requests -----

	CreateAccessRequest(ctx context.Context, req *AccessRequest) error

	// ListPendingRequestsForOwner returns pending requests against every
	// file owned by owner (VIEWREQUESTS, spec.md §4.4).
	ListPendingRequestsForOwner(ctx context.Context, owner string) ([]*AccessRequest, error)

	// ----- Checkpoints -----

	CreateCheckpoint(ctx context.Context, cp *Checkpoint) error
	ListCheckpoints(ctx context.Context, file string) ([]*Checkpoint, error)
	GetCheckpoint(ctx context.Context, file, tag string) (*Checkpoint, bool, error)

	// Close releases any resources (DB connections) held by the store.
	Close() error
}

// Counters is the advisory per-file counter set cached on FileEntry
// (spec.md §3), supplied by the client/storage node after a write.
type Counters struct {
	Words     int
	Chars     int
	Sentences int
}

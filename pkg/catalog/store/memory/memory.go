// Package memory is an in-memory catalog.Store, backed by maps guarded by
// a single sync.RWMutex (grounded on the teacher's
// pkg/metadata/store/memory.MemoryMetadataStore). It is the default store
// for single-process deployments and for tests; pkg/catalog/store/postgres
// is the persistent alternative.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/netdoc/netdoc/pkg/catalog"
	"github.com/netdoc/netdoc/pkg/protoerr"
)

// Store is a catalog.Store backed entirely by maps in memory. Nothing
// here is durable across a process restart.
type Store struct {
	mu sync.RWMutex

	files    map[string]*catalog.FileEntry
	users    map[string]*catalog.User
	grants   map[grantKey]*catalog.AccessGrant
	requests map[string]*catalog.AccessRequest
	checkpts map[checkpointKey]*catalog.Checkpoint
}

type grantKey struct {
	file    string
	grantee string
}

type checkpointKey struct {
	file string
	tag  string
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		files:    make(map[string]*catalog.FileEntry),
		users:    make(map[string]*catalog.User),
		grants:   make(map[grantKey]*catalog.AccessGrant),
		requests: make(map[string]*catalog.AccessRequest),
		checkpts: make(map[checkpointKey]*catalog.Checkpoint),
	}
}

var _ catalog.Store = (*Store)(nil)

// ----- Files -----

func (s *Store) CreateFile(ctx context.Context, entry *catalog.FileEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.files[entry.Name]; exists {
		return protoerr.AlreadyExists(entry.Name)
	}

	cp := *entry
	s.files[entry.Name] = &cp
	return nil
}

func (s *Store) GetFile(ctx context.Context, name string) (*catalog.FileEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	f, ok := s.files[name]
	if !ok {
		return nil, protoerr.NotFound(name)
	}
	cp := *f
	return &cp, nil
}

func (s *Store) ListFiles(ctx context.Context) ([]*catalog.FileEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*catalog.FileEntry, 0, len(s.files))
	for _, f := range s.files {
		cp := *f
		out = append(out, &cp)
	}
	return out, nil
}

func (s *Store) TouchAccessed(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.files[name]
	if !ok {
		return protoerr.NotFound(name)
	}
	f.AccessedAt = time.Now().UTC()
	return nil
}

func (s *Store) TouchModified(ctx context.Context, name string, counters *catalog.Counters) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.files[name]
	if !ok {
		return protoerr.NotFound(name)
	}
	now := time.Now().UTC()
	f.ModifiedAt = now
	f.AccessedAt = now
	if counters != nil {
		f.WordCount = counters.Words
		f.CharCount = counters.Chars
		f.SentenceCount = counters.Sentences
	}
	return nil
}

func (s *Store) DeleteFile(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.files[name]; !ok {
		return protoerr.NotFound(name)
	}
	delete(s.files, name)

	for k := range s.grants {
		if k.file == name {
			delete(s.grants, k)
		}
	}
	for id, r := range s.requests {
		if r.FileName == name {
			delete(s.requests, id)
		}
	}
	for k := range s.checkpts {
		if k.file == name {
			delete(s.checkpts, k)
		}
	}
	return nil
}

// ----- Users -----

func (s *Store) RegisterUser(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[name]; ok {
		return nil
	}
	s.users[name] = &catalog.User{Name: name, RegisteredAt: time.Now().UTC()}
	return nil
}

func (s *Store) UserExists(ctx context.Context, name string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.users[name]
	return ok, nil
}

// ----- Access grants -----

func (s *Store) UpsertGrant(ctx context.Context, grant *catalog.AccessGrant) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *grant
	s.grants[grantKey{file: grant.FileName, grantee: grant.Grantee}] = &cp
	return nil
}

func (s *Store) RemoveGrant(ctx context.Context, file, grantee string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.grants, grantKey{file: file, grantee: grantee})
	return nil
}

func (s *Store) GetGrant(ctx context.Context, file, grantee string) (*catalog.AccessGrant, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.grants[grantKey{file: file, grantee: grantee}]
	if !ok {
		return nil, false, nil
	}
	cp := *g
	return &cp, true, nil
}

func (s *Store) ListGrantsForUser(ctx context.Context, user string) ([]*catalog.AccessGrant, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*catalog.AccessGrant
	for k, g := range s.grants {
		if k.grantee == user {
			cp := *g
			out = append(out, &cp)
		}
	}
	return out, nil
}

// ----- Access requests -----

func (s *Store) CreateAccessRequest(ctx context.Context, req *catalog.AccessRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *req
	s.requests[req.ID] = &cp
	return nil
}

func (s *Store) ListPendingRequestsForOwner(ctx context.Context, owner string) ([]*catalog.AccessRequest, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*catalog.AccessRequest
	for _, r := range s.requests {
		if r.Status != catalog.RequestPending {
			continue
		}
		f, ok := s.files[r.FileName]
		if !ok || f.Owner != owner {
			continue
		}
		cp := *r
		out = append(out, &cp)
	}
	return out, nil
}

// ----- Checkpoints -----

func (s *Store) CreateCheckpoint(ctx context.Context, cp *catalog.Checkpoint) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := *cp
	s.checkpts[checkpointKey{file: cp.FileName, tag: cp.Tag}] = &c
	return nil
}

func (s *Store) ListCheckpoints(ctx context.Context, file string) ([]*catalog.Checkpoint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*catalog.Checkpoint
	for k, c := range s.checkpts {
		if k.file == file {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *Store) GetCheckpoint(ctx context.Context, file, tag string) (*catalog.Checkpoint, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.checkpts[checkpointKey{file: file, tag: tag}]
	if !ok {
		return nil, false, nil
	}
	cp := *c
	return &cp, true, nil
}

func (s *Store) Close() error { return nil }

// Package lock is the coordinator's in-memory sentence lock table
// (spec.md §3/§4.3). It is deliberately far simpler than the teacher's
// pkg/metadata/lock package (no byte ranges, oplocks, or grace periods):
// one exclusive lock per (file, sentence_index), owned by a session, with
// a single automatic release path — the owning session ending.
package lock

import (
	"sync"
	"time"

	"github.com/netdoc/netdoc/pkg/protoerr"
)

// SentenceLock is one held lock (spec.md §3).
type SentenceLock struct {
	FileName      string
	SentenceIndex int
	HolderSession string
	HolderUser    string
	AcquiredAt    time.Time
}

type key struct {
	file  string
	index int
}

// Table is the coordinator-wide sentence lock table, grounded on the
// teacher's pkg/metadata/lock manager's map+mutex shape but reduced to the
// single exclusive-lock-per-key model spec.md §4.3 requires.
type Table struct {
	mu       sync.Mutex
	locks    map[key]*SentenceLock
	bySess   map[string]map[key]struct{} // session -> set of keys it holds
	capacity int
}

// New returns an empty lock table that refuses new locks past capacity
// entries (spec.md §5's "fixed upper bound... for outstanding sentence
// locks"); 0 means unbounded.
func New(capacity int) *Table {
	return &Table{
		locks:    make(map[key]*SentenceLock),
		bySess:   make(map[string]map[key]struct{}),
		capacity: capacity,
	}
}

// Acquire implements spec.md §4.3's WRITE_LOCK step 2: no existing lock
// inserts one; a lock already held by session is an idempotent re-acquire;
// a lock held by a different session fails with protoerr.Locked naming the
// current holder's user.
func (t *Table) Acquire(file string, sentenceIndex int, user, session string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	k := key{file: file, index: sentenceIndex}
	if existing, ok := t.locks[k]; ok {
		if existing.HolderSession == session {
			return nil
		}
		return protoerr.LockedBy(file, sentenceIndex, existing.HolderUser)
	}

	if t.capacity > 0 && len(t.locks) >= t.capacity {
		return protoerr.New(protoerr.ServerError, "lock table is full")
	}

	t.locks[k] = &SentenceLock{
		FileName:      file,
		SentenceIndex: sentenceIndex,
		HolderSession: session,
		HolderUser:    user,
		AcquiredAt:    time.Now().UTC(),
	}
	if t.bySess[session] == nil {
		t.bySess[session] = make(map[key]struct{})
	}
	t.bySess[session][k] = struct{}{}
	return nil
}

// Release implements WRITE_COMMIT's release step (spec.md §4.3): matches on
// all four of file, sentence, user, and session; releasing a lock not held
// (by this exact tuple) is a silent no-op, since a commit may legitimately
// arrive after the session already closed.
func (t *Table) Release(file string, sentenceIndex int, user, session string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	k := key{file: file, index: sentenceIndex}
	existing, ok := t.locks[k]
	if !ok || existing.HolderSession != session || existing.HolderUser != user {
		return
	}
	delete(t.locks, k)
	delete(t.bySess[session], k)
	if len(t.bySess[session]) == 0 {
		delete(t.bySess, session)
	}
}

// ReleaseSession is the lock reaper's only automatic release path
// (spec.md §4.3): releases every lock held by session, typically called
// when that session's transport connection closes.
func (t *Table) ReleaseSession(session string) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	keys := t.bySess[session]
	n := len(keys)
	for k := range keys {
		delete(t.locks, k)
	}
	delete(t.bySess, session)
	return n
}

// HolderOf returns the current holder of (file, sentenceIndex), if locked.
func (t *Table) HolderOf(file string, sentenceIndex int) (*SentenceLock, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	l, ok := t.locks[key{file: file, index: sentenceIndex}]
	if !ok {
		return nil, false
	}
	cp := *l
	return &cp, true
}

// Count returns the number of locks currently outstanding, used by metrics.
func (t *Table) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.locks)
}

// Package badger implements blobstore.Store on an embedded
// dgraph-io/badger/v4 key-value store, the default storage-node content
// backend for a single-process deployment.
package badger

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"

	bdg "github.com/dgraph-io/badger/v4"

	"github.com/netdoc/netdoc/pkg/storagenode/blobstore"
)

// Store wraps a *badger.DB behind the blobstore.Store interface. Keys
// are namespaced by a short string prefix so the five logical regions
// (content, undo entries, undo sequence counter, checkpoints, checkpoint
// tag index) never collide inside Badger's flat keyspace.
type Store struct {
	db *bdg.DB
}

const (
	prefixContent    = "c:"
	prefixUndo       = "u:"
	prefixUndoSeq    = "us:"
	prefixCheckpoint = "k:"
	prefixCPIndex    = "ki:"
)

// Open opens (creating if absent) a Badger database at dir.
func Open(dir string) (*Store, error) {
	opts := bdg.DefaultOptions(dir).WithLogger(nil)
	db, err := bdg.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger store at %q: %w", dir, err)
	}
	return &Store{db: db}, nil
}

var _ blobstore.Store = (*Store)(nil)

func contentKey(name string) []byte { return []byte(prefixContent + name) }
func undoSeqKey(name string) []byte { return []byte(prefixUndoSeq + name) }
func cpIndexKey(name string) []byte { return []byte(prefixCPIndex + name) }

func undoKey(name string, seq uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], seq)
	return append([]byte(prefixUndo+name+"\x00"), b[:]...)
}

func checkpointKey(name, tag string) []byte {
	return []byte(prefixCheckpoint + name + "\x00" + tag)
}

// Put implements blobstore.Store: the previous current content, if
// any, is pushed onto name's undo stack before being overwritten.
func (s *Store) Put(_ context.Context, name string, content []byte) error {
	return s.db.Update(func(txn *bdg.Txn) error {
		if prev, err := getItem(txn, contentKey(name)); err == nil {
			if err := pushUndo(txn, name, prev); err != nil {
				return err
			}
		} else if !errors.Is(err, bdg.ErrKeyNotFound) {
			return err
		}
		return txn.Set(contentKey(name), content)
	})
}

func (s *Store) Get(_ context.Context, name string) ([]byte, error) {
	var out []byte
	err := s.db.View(func(txn *bdg.Txn) error {
		v, err := getItem(txn, contentKey(name))
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	return out, translateErr(err)
}

func (s *Store) Delete(_ context.Context, name string) error {
	return s.db.Update(func(txn *bdg.Txn) error {
		if _, err := getItem(txn, contentKey(name)); err != nil {
			return translateErr(err)
		}
		if err := txn.Delete(contentKey(name)); err != nil {
			return err
		}
		if err := deletePrefix(txn, []byte(prefixUndo+name+"\x00")); err != nil {
			return err
		}
		if err := deletePrefix(txn, []byte(prefixCheckpoint+name+"\x00")); err != nil {
			return err
		}
		_ = txn.Delete(undoSeqKey(name))
		_ = txn.Delete(cpIndexKey(name))
		return nil
	})
}

func (s *Store) Undo(_ context.Context, name string) ([]byte, error) {
	var restored []byte
	err := s.db.Update(func(txn *bdg.Txn) error {
		seq, err := readUndoSeq(txn, name)
		if err != nil {
			return err
		}
		if seq == 0 {
			return blobstore.ErrNotFound
		}
		key := undoKey(name, seq)
		v, err := getItem(txn, key)
		if err != nil {
			return translateErr(err)
		}
		if err := txn.Delete(key); err != nil {
			return err
		}
		if err := writeUndoSeq(txn, name, seq-1); err != nil {
			return err
		}
		restored = v
		return txn.Set(contentKey(name), v)
	})
	return restored, err
}

func (s *Store) Checkpoint(_ context.Context, name, tag string) error {
	return s.db.Update(func(txn *bdg.Txn) error {
		content, err := getItem(txn, contentKey(name))
		if err != nil {
			return translateErr(err)
		}
		if err := txn.Set(checkpointKey(name, tag), content); err != nil {
			return err
		}
		return appendTagIndex(txn, name, tag)
	})
}

func (s *Store) ListCheckpoints(_ context.Context, name string) ([]string, error) {
	var tags []string
	err := s.db.View(func(txn *bdg.Txn) error {
		v, err := getItem(txn, cpIndexKey(name))
		if errors.Is(err, bdg.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return json.Unmarshal(v, &tags)
	})
	return tags, err
}

func (s *Store) Revert(_ context.Context, name, tag string) ([]byte, error) {
	var restored []byte
	err := s.db.Update(func(txn *bdg.Txn) error {
		content, err := getItem(txn, checkpointKey(name, tag))
		if err != nil {
			return translateErr(err)
		}
		if prev, err := getItem(txn, contentKey(name)); err == nil {
			if err := pushUndo(txn, name, prev); err != nil {
				return err
			}
		} else if !errors.Is(err, bdg.ErrKeyNotFound) {
			return err
		}
		restored = content
		return txn.Set(contentKey(name), content)
	})
	return restored, err
}

func (s *Store) List(_ context.Context) ([]string, error) {
	var names []string
	err := s.db.View(func(txn *bdg.Txn) error {
		it := txn.NewIterator(bdg.DefaultIteratorOptions)
		defer it.Close()
		prefix := []byte(prefixContent)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			names = append(names, string(it.Item().Key()[len(prefix):]))
		}
		return nil
	})
	return names, err
}

func (s *Store) Close() error { return s.db.Close() }

func getItem(txn *bdg.Txn, key []byte) ([]byte, error) {
	item, err := txn.Get(key)
	if err != nil {
		return nil, err
	}
	return item.ValueCopy(nil)
}

func deletePrefix(txn *bdg.Txn, prefix []byte) error {
	it := txn.NewIterator(bdg.DefaultIteratorOptions)
	defer it.Close()
	var keys [][]byte
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		keys = append(keys, it.Item().KeyCopy(nil))
	}
	for _, k := range keys {
		if err := txn.Delete(k); err != nil {
			return err
		}
	}
	return nil
}

func readUndoSeq(txn *bdg.Txn, name string) (uint64, error) {
	v, err := getItem(txn, undoSeqKey(name))
	if errors.Is(err, bdg.ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(v), nil
}

func writeUndoSeq(txn *bdg.Txn, name string, seq uint64) error {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], seq)
	return txn.Set(undoSeqKey(name), b[:])
}

func pushUndo(txn *bdg.Txn, name string, content []byte) error {
	seq, err := readUndoSeq(txn, name)
	if err != nil {
		return err
	}
	seq++
	if err := txn.Set(undoKey(name, seq), content); err != nil {
		return err
	}
	return writeUndoSeq(txn, name, seq)
}

func appendTagIndex(txn *bdg.Txn, name, tag string) error {
	var tags []string
	v, err := getItem(txn, cpIndexKey(name))
	if err == nil {
		if jerr := json.Unmarshal(v, &tags); jerr != nil {
			return jerr
		}
	} else if !errors.Is(err, bdg.ErrKeyNotFound) {
		return err
	}
	for _, t := range tags {
		if t == tag {
			return nil
		}
	}
	tags = append(tags, tag)
	encoded, err := json.Marshal(tags)
	if err != nil {
		return err
	}
	return txn.Set(cpIndexKey(name), encoded)
}

func translateErr(err error) error {
	if errors.Is(err, bdg.ErrKeyNotFound) {
		return blobstore.ErrNotFound
	}
	return err
}

// Package blobstore defines the storage node's local content backend:
// file bytes, an append-only per-file undo stack, and named checkpoint
// snapshots (SPEC_FULL.md §3's UndoEntry, spec.md §4.5's Checkpoint).
// Two implementations live alongside it: blobstore/badger (default,
// embedded) and blobstore/s3 (optional, for durable/shared deployments).
package blobstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a requested file, undo entry, or
// checkpoint does not exist in this store.
var ErrNotFound = errors.New("blobstore: not found")

// Store is the storage node's content backend.
type Store interface {
	// Put writes content as the current bytes for name, pushing the
	// previous content (if any) onto name's undo stack first.
	Put(ctx context.Context, name string, content []byte) error

	// Get returns the current bytes for name, or ErrNotFound.
	Get(ctx context.Context, name string) ([]byte, error)

	// Delete removes name's current content, undo stack, and
	// checkpoints entirely.
	Delete(ctx context.Context, name string) error

	// Undo pops the most recent entry off name's undo stack and makes
	// it the current content, returning the restored bytes. Fails with
	// ErrNotFound if the stack is empty.
	Undo(ctx context.Context, name string) ([]byte, error)

	// Checkpoint snapshots name's current content under tag, replacing
	// any existing checkpoint with the same tag.
	Checkpoint(ctx context.Context, name, tag string) error

	// ListCheckpoints returns every tag recorded for name. The badger
	// backend returns them in creation order; the s3 backend returns them
	// in S3's key listing order (lexicographic), not creation order.
	ListCheckpoints(ctx context.Context, name string) ([]string, error)

	// Revert makes the checkpoint under tag the current content
	// (pushing the prior current content onto the undo stack first, so
	// a revert can itself be undone). Fails with ErrNotFound if tag
	// does not exist for name.
	Revert(ctx context.Context, name, tag string) ([]byte, error)

	// List returns every file name currently held by this store.
	List(ctx context.Context) ([]string, error)

	Close() error
}

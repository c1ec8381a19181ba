// Package storetest is a conformance suite shared by every
// blobstore.Store implementation, mirroring pkg/catalog/storetest's
// pattern of one Run(t, factory) entry point driving subtests.
package storetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netdoc/netdoc/pkg/storagenode/blobstore"
)

// Factory constructs a fresh, empty Store for one subtest.
type Factory func(t *testing.T) blobstore.Store

// Run exercises every Store method against the store factory returns.
func Run(t *testing.T, factory Factory) {
	t.Run("PutAndGet", func(t *testing.T) {
		s := factory(t)
		ctx := context.Background()
		require.NoError(t, s.Put(ctx, "doc.txt", []byte("hello")))
		got, err := s.Get(ctx, "doc.txt")
		require.NoError(t, err)
		assert.Equal(t, []byte("hello"), got)
	})

	t.Run("GetMissingFails", func(t *testing.T) {
		s := factory(t)
		_, err := s.Get(context.Background(), "nope")
		assert.ErrorIs(t, err, blobstore.ErrNotFound)
	})

	t.Run("PutPushesPreviousContentToUndo", func(t *testing.T) {
		s := factory(t)
		ctx := context.Background()
		require.NoError(t, s.Put(ctx, "doc.txt", []byte("v1")))
		require.NoError(t, s.Put(ctx, "doc.txt", []byte("v2")))

		restored, err := s.Undo(ctx, "doc.txt")
		require.NoError(t, err)
		assert.Equal(t, []byte("v1"), restored)

		got, err := s.Get(ctx, "doc.txt")
		require.NoError(t, err)
		assert.Equal(t, []byte("v1"), got)
	})

	t.Run("UndoOnEmptyStackFails", func(t *testing.T) {
		s := factory(t)
		ctx := context.Background()
		require.NoError(t, s.Put(ctx, "doc.txt", []byte("only")))
		_, err := s.Undo(ctx, "doc.txt")
		assert.ErrorIs(t, err, blobstore.ErrNotFound)
	})

	t.Run("UndoIsMultiLevel", func(t *testing.T) {
		s := factory(t)
		ctx := context.Background()
		require.NoError(t, s.Put(ctx, "doc.txt", []byte("v1")))
		require.NoError(t, s.Put(ctx, "doc.txt", []byte("v2")))
		require.NoError(t, s.Put(ctx, "doc.txt", []byte("v3")))

		restored, err := s.Undo(ctx, "doc.txt")
		require.NoError(t, err)
		assert.Equal(t, []byte("v2"), restored)

		restored, err = s.Undo(ctx, "doc.txt")
		require.NoError(t, err)
		assert.Equal(t, []byte("v1"), restored)

		_, err = s.Undo(ctx, "doc.txt")
		assert.ErrorIs(t, err, blobstore.ErrNotFound)
	})

	t.Run("CheckpointAndRevert", func(t *testing.T) {
		s := factory(t)
		ctx := context.Background()
		require.NoError(t, s.Put(ctx, "doc.txt", []byte("v1")))
		require.NoError(t, s.Checkpoint(ctx, "doc.txt", "before-edit"))
		require.NoError(t, s.Put(ctx, "doc.txt", []byte("v2")))

		restored, err := s.Revert(ctx, "doc.txt", "before-edit")
		require.NoError(t, err)
		assert.Equal(t, []byte("v1"), restored)

		got, err := s.Get(ctx, "doc.txt")
		require.NoError(t, err)
		assert.Equal(t, []byte("v1"), got)
	})

	t.Run("RevertIsItselfUndoable", func(t *testing.T) {
		s := factory(t)
		ctx := context.Background()
		require.NoError(t, s.Put(ctx, "doc.txt", []byte("v1")))
		require.NoError(t, s.Checkpoint(ctx, "doc.txt", "tag"))
		require.NoError(t, s.Put(ctx, "doc.txt", []byte("v2")))
		_, err := s.Revert(ctx, "doc.txt", "tag")
		require.NoError(t, err)

		restored, err := s.Undo(ctx, "doc.txt")
		require.NoError(t, err)
		assert.Equal(t, []byte("v2"), restored)
	})

	t.Run("RevertMissingTagFails", func(t *testing.T) {
		s := factory(t)
		ctx := context.Background()
		require.NoError(t, s.Put(ctx, "doc.txt", []byte("v1")))
		_, err := s.Revert(ctx, "doc.txt", "nope")
		assert.ErrorIs(t, err, blobstore.ErrNotFound)
	})

	t.Run("ListCheckpointsReflectsAllTags", func(t *testing.T) {
		s := factory(t)
		ctx := context.Background()
		require.NoError(t, s.Put(ctx, "doc.txt", []byte("v1")))
		require.NoError(t, s.Checkpoint(ctx, "doc.txt", "a"))
		require.NoError(t, s.Checkpoint(ctx, "doc.txt", "b"))

		tags, err := s.ListCheckpoints(ctx, "doc.txt")
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"a", "b"}, tags)
	})

	t.Run("DeleteRemovesContentUndoAndCheckpoints", func(t *testing.T) {
		s := factory(t)
		ctx := context.Background()
		require.NoError(t, s.Put(ctx, "doc.txt", []byte("v1")))
		require.NoError(t, s.Put(ctx, "doc.txt", []byte("v2")))
		require.NoError(t, s.Checkpoint(ctx, "doc.txt", "tag"))

		require.NoError(t, s.Delete(ctx, "doc.txt"))

		_, err := s.Get(ctx, "doc.txt")
		assert.ErrorIs(t, err, blobstore.ErrNotFound)

		require.NoError(t, s.Put(ctx, "doc.txt", []byte("fresh")))
		_, err = s.Undo(ctx, "doc.txt")
		assert.ErrorIs(t, err, blobstore.ErrNotFound, "undo stack must not survive delete")

		tags, err := s.ListCheckpoints(ctx, "doc.txt")
		require.NoError(t, err)
		assert.Empty(t, tags, "checkpoints must not survive delete")
	})

	t.Run("List", func(t *testing.T) {
		s := factory(t)
		ctx := context.Background()
		require.NoError(t, s.Put(ctx, "a.txt", []byte("a")))
		require.NoError(t, s.Put(ctx, "b.txt", []byte("b")))

		names, err := s.List(ctx)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"a.txt", "b.txt"}, names)
	})
}

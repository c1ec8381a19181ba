package storagenode

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/netdoc/netdoc/pkg/protoerr"
	"github.com/netdoc/netdoc/pkg/sentence"
	"github.com/netdoc/netdoc/pkg/storagenode/blobstore"
	"github.com/netdoc/netdoc/pkg/wire"
)

// translate maps a blobstore error to the protoerr code a client
// expects, per spec.md §7's error-code table (blobstore.ErrNotFound is
// this node's equivalent of a missing file/checkpoint/undo entry).
func translate(name string, err error) error {
	if errors.Is(err, blobstore.ErrNotFound) {
		return protoerr.NotFound(name)
	}
	return protoerr.Internal(err)
}

// handleRead implements READ: return the file's current bytes and bump
// BytesRead. Counters are not computed here — INFO is the dedicated op
// for that, matching spec.md §4.1's note that accessed_at is a
// coordinator-side concern bumped by the client's own LOOKUP/READ
// bookkeeping, not recomputed by the storage node on every read.
func handleRead(ctx context.Context, s *Server, req *wire.Message) *wire.Message {
	content, err := s.store.Get(ctx, req.FileName)
	if err != nil {
		return wire.FromError(req.Type, translate(req.FileName, err))
	}
	s.metrics.BytesRead.Add(float64(len(content)))
	return wire.Ok(req.Type, content)
}

// handleStream implements STREAM as a simplified non-chunked full-content
// read, identical to READ. spec.md names STREAM as a wire tag but never
// specifies a chunking protocol for it; splitting one response into
// multiple frames would need a new framing rule this repository's fixed-
// layout envelope does not have, so STREAM is scoped down to READ's
// semantics until a real chunked transfer is specified.
func handleStream(ctx context.Context, s *Server, req *wire.Message) *wire.Message {
	return handleRead(ctx, s, req)
}

// handleWrite implements WRITE: the client has already negotiated a
// WRITE_LOCK with the coordinator and sends the complete new content
// here (spec.md §4.3: "the client reads the file, constructs new
// content, and sends it to the primary storage node"). The response
// payload carries the freshly computed "words,chars,sentences" counters
// so the client can report them back to the coordinator's WRITE_COMMIT.
func handleWrite(ctx context.Context, s *Server, req *wire.Message) *wire.Message {
	if err := s.store.Put(ctx, req.FileName, req.Payload); err != nil {
		return wire.FromError(req.Type, translate(req.FileName, err))
	}
	s.metrics.BytesWritten.Add(float64(len(req.Payload)))

	words, chars, sentences := sentence.Counts(string(req.Payload))
	counters := fmt.Sprintf("%d,%d,%d", words, chars, sentences)
	return wire.Ok(req.Type, []byte(counters))
}

// handleDelete implements the storage-node side of DELETE: the
// coordinator has already authorized the caller as owner and returned
// this node's endpoint; the client is responsible for issuing DELETE to
// every endpoint it was given (spec.md §4.1).
func handleDelete(ctx context.Context, s *Server, req *wire.Message) *wire.Message {
	if err := s.store.Delete(ctx, req.FileName); err != nil {
		return wire.FromError(req.Type, translate(req.FileName, err))
	}
	return wire.Ok(req.Type, nil)
}

// handleUndo implements UNDO: pop the most recent undo entry, returning
// the restored content.
func handleUndo(ctx context.Context, s *Server, req *wire.Message) *wire.Message {
	content, err := s.store.Undo(ctx, req.FileName)
	if err != nil {
		return wire.FromError(req.Type, translate(req.FileName, err))
	}
	return wire.Ok(req.Type, content)
}

// handleCheckpoint implements CHECKPOINT: req.Payload carries the tag
// the coordinator already assigned (via its redirect's CMD field).
func handleCheckpoint(ctx context.Context, s *Server, req *wire.Message) *wire.Message {
	tag := strings.TrimSpace(string(req.Payload))
	if tag == "" {
		return wire.FromError(req.Type, protoerr.BadParam("missing checkpoint tag"))
	}
	if err := s.store.Checkpoint(ctx, req.FileName, tag); err != nil {
		return wire.FromError(req.Type, translate(req.FileName, err))
	}
	return wire.Ok(req.Type, nil)
}

// handleListCheckpoints implements LISTCHECKPOINTS: a newline-joined tag
// listing.
func handleListCheckpoints(ctx context.Context, s *Server, req *wire.Message) *wire.Message {
	tags, err := s.store.ListCheckpoints(ctx, req.FileName)
	if err != nil {
		return wire.FromError(req.Type, translate(req.FileName, err))
	}
	return wire.Ok(req.Type, []byte(strings.Join(tags, "\n")))
}

// handleRevert implements REVERT: req.Payload carries the tag to
// restore, returning the restored content.
func handleRevert(ctx context.Context, s *Server, req *wire.Message) *wire.Message {
	tag := strings.TrimSpace(string(req.Payload))
	if tag == "" {
		return wire.FromError(req.Type, protoerr.BadParam("missing checkpoint tag"))
	}
	content, err := s.store.Revert(ctx, req.FileName, tag)
	if err != nil {
		return wire.FromError(req.Type, translate(req.FileName, err))
	}
	return wire.Ok(req.Type, content)
}

// handleInfo implements INFO: compute word/char/sentence counters over
// the current content and return them as "words,chars,sentences".
func handleInfo(ctx context.Context, s *Server, req *wire.Message) *wire.Message {
	content, err := s.store.Get(ctx, req.FileName)
	if err != nil {
		return wire.FromError(req.Type, translate(req.FileName, err))
	}
	words, chars, sentences := sentence.Counts(string(content))
	payload := fmt.Sprintf("%d,%d,%d", words, chars, sentences)
	return wire.Ok(req.Type, []byte(payload))
}

// handleList implements LIST: every file name currently held by this
// node, newline-joined. Used for disaster recovery — reconstructing
// which files a node holds without consulting the coordinator's catalog.
func handleList(ctx context.Context, s *Server, req *wire.Message) *wire.Message {
	names, err := s.store.List(ctx)
	if err != nil {
		return wire.FromError(req.Type, protoerr.Internal(err))
	}
	return wire.Ok(req.Type, []byte(strings.Join(names, "\n")))
}

package coordinator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/netdoc/netdoc/pkg/catalog"
	"github.com/netdoc/netdoc/pkg/protoerr"
	"github.com/netdoc/netdoc/pkg/wire"
)

// handleCheckpoint implements spec.md §4.5's CHECKPOINT: read-permission
// check, a recorded Checkpoints row, and endpoints plus the CMD
// sub-command so the client can drive the storage node. The payload
// carries the checkpoint tag the client chose.
func handleCheckpoint(ctx context.Context, s *Server, _ string, req *wire.Message) *wire.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	tag := strings.TrimSpace(string(req.Payload))
	if tag == "" {
		return wire.FromError(req.Type, protoerr.BadParam("CHECKPOINT requires a tag"))
	}

	entry, err := s.store.GetFile(ctx, req.FileName)
	if err != nil {
		return wire.FromError(req.Type, err)
	}
	if err := s.authorize(ctx, entry, req.Username, catalog.PermRead); err != nil {
		return wire.FromError(req.Type, err)
	}

	cp := &catalog.Checkpoint{FileName: req.FileName, Tag: tag, CreatedAt: time.Now().UTC()}
	if err := s.store.CreateCheckpoint(ctx, cp); err != nil {
		return wire.FromError(req.Type, err)
	}

	return s.redirectWithCmd(req, entry, "CHECKPOINT:"+tag)
}

// handleListCheckpoints implements LISTCHECKPOINTS: a textual listing,
// requiring only read permission.
func handleListCheckpoints(ctx context.Context, s *Server, _ string, req *wire.Message) *wire.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, err := s.store.GetFile(ctx, req.FileName)
	if err != nil {
		return wire.FromError(req.Type, err)
	}
	if err := s.authorize(ctx, entry, req.Username, catalog.PermRead); err != nil {
		return wire.FromError(req.Type, err)
	}

	cps, err := s.store.ListCheckpoints(ctx, req.FileName)
	if err != nil {
		return wire.FromError(req.Type, err)
	}

	var b strings.Builder
	for _, cp := range cps {
		fmt.Fprintf(&b, "%s\t%s\n", cp.Tag, cp.CreatedAt.Format(time.RFC3339))
	}
	return wire.Ok(req.Type, []byte(b.String()))
}

// handleRevert implements REVERT: write permission required (it
// overwrites current content), checkpoint must exist, then endpoints
// plus CMD so the client can drive the storage-node revert.
func handleRevert(ctx context.Context, s *Server, _ string, req *wire.Message) *wire.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	tag := strings.TrimSpace(string(req.Payload))
	if tag == "" {
		return wire.FromError(req.Type, protoerr.BadParam("REVERT requires a checkpoint tag"))
	}

	entry, err := s.store.GetFile(ctx, req.FileName)
	if err != nil {
		return wire.FromError(req.Type, err)
	}
	if err := s.authorize(ctx, entry, req.Username, catalog.PermWrite); err != nil {
		return wire.FromError(req.Type, err)
	}
	if _, ok, err := s.store.GetCheckpoint(ctx, req.FileName, tag); err != nil {
		return wire.FromError(req.Type, err)
	} else if !ok {
		return wire.FromError(req.Type, protoerr.CheckpointMissing(req.FileName, tag))
	}

	return s.redirectWithCmd(req, entry, "REVERT:"+tag)
}

// handleUndo implements UNDO: analogous to REVERT, requires write
// permission, but operates on the storage node's undo snapshot rather
// than a named checkpoint (spec.md §4.5 — "UNDO is analogous and
// requires write permission").
func handleUndo(ctx context.Context, s *Server, _ string, req *wire.Message) *wire.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, err := s.store.GetFile(ctx, req.FileName)
	if err != nil {
		return wire.FromError(req.Type, err)
	}
	if err := s.authorize(ctx, entry, req.Username, catalog.PermWrite); err != nil {
		return wire.FromError(req.Type, err)
	}

	return s.redirectWithCmd(req, entry, "UNDO")
}

// redirectWithCmd resolves entry's placement endpoints and encodes them
// alongside a CMD sub-command, the shared response shape for the
// checkpoint/undo operation family (spec.md §4.5).
func (s *Server) redirectWithCmd(req *wire.Message, entry *catalog.FileEntry, cmd string) *wire.Message {
	primaryEp, replicaEp, err := s.placementEndpoints(entry)
	if err != nil {
		return wire.FromError(req.Type, err)
	}
	payload := wire.RedirectPayload{Primary: *primaryEp, Replica: replicaEp, Cmd: cmd}
	return wire.Ok(req.Type, payload.Encode())
}

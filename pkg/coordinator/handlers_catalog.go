package coordinator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/netdoc/netdoc/internal/logger"
	"github.com/netdoc/netdoc/pkg/catalog"
	"github.com/netdoc/netdoc/pkg/protoerr"
	"github.com/netdoc/netdoc/pkg/wire"
)

// handleCreate implements spec.md §4.1's CREATE: placement, catalog
// insert, primary file_count increment, and a redirect payload naming
// the assigned endpoints.
func handleCreate(ctx context.Context, s *Server, _ string, req *wire.Message) *wire.Message {
	return createFile(ctx, s, req, false)
}

// handleCreateFolder implements CREATEFOLDER: same placement rule, no
// replica, and the stored entry is flagged IsFolder.
func handleCreateFolder(ctx context.Context, s *Server, _ string, req *wire.Message) *wire.Message {
	return createFile(ctx, s, req, true)
}

func createFile(ctx context.Context, s *Server, req *wire.Message, isFolder bool) *wire.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Name validity is checked in dispatch before the handler runs
	// (see nameBearingTypes in session.go); CREATE/CREATEFOLDER rely
	// on that same central check rather than repeating it here.
	if req.Username == "" {
		return wire.FromError(req.Type, protoerr.BadParam("CREATE requires a username"))
	}

	if _, err := s.store.GetFile(ctx, req.FileName); err == nil {
		return wire.FromError(req.Type, protoerr.AlreadyExists(req.FileName))
	}

	primary, err := s.registry.PlacePrimary()
	if err != nil {
		return wire.FromError(req.Type, err)
	}

	entry := &catalog.FileEntry{
		Name:          req.FileName,
		Owner:         req.Username,
		PrimaryNodeID: primary.ID,
		IsFolder:      isFolder,
		CreatedAt:     time.Now().UTC(),
		ModifiedAt:    time.Now().UTC(),
		AccessedAt:    time.Now().UTC(),
	}

	var replicaEp *wire.Endpoint
	if !isFolder {
		if replica, ok := s.registry.PlaceReplica(primary.ID); ok {
			id := replica.ID
			entry.ReplicaNodeID = &id
			ep, err := endpointOf(replica)
			if err != nil {
				return wire.FromError(req.Type, err)
			}
			replicaEp = &ep
		}
	}

	if err := s.store.CreateFile(ctx, entry); err != nil {
		return wire.FromError(req.Type, err)
	}
	if err := s.registry.IncrementFileCount(primary.ID); err != nil {
		// The file row is already committed; a registry-side failure
		// here is a metrics-only inconsistency (file_count is
		// advisory, spec.md §3), not grounds to roll back the create.
		logger.WarnCtx(ctx, "file_count increment failed after create", "error", err)
	}
	s.metrics.CatalogSize.Inc()

	primaryEp, err := endpointOf(primary)
	if err != nil {
		return wire.FromError(req.Type, err)
	}
	payload := wire.RedirectPayload{Primary: primaryEp, Replica: replicaEp}
	return wire.Ok(req.Type, payload.Encode())
}

// handleLookup implements LOOKUP(name, user, perm): authorization check
// then placement-endpoint resolution, per spec.md §4.1/§4.2. The
// requested permission rides in req.Payload as "read" or "write"
// (ASCII), the simplest encoding for a single-field request.
func handleLookup(ctx context.Context, s *Server, _ string, req *wire.Message) *wire.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	required, err := parsePerm(req.Payload)
	if err != nil {
		return wire.FromError(req.Type, err)
	}

	entry, err := s.store.GetFile(ctx, req.FileName)
	if err != nil {
		return wire.FromError(req.Type, err)
	}
	if err := s.authorize(ctx, entry, req.Username, required); err != nil {
		return wire.FromError(req.Type, err)
	}

	primaryEp, replicaEp, err := s.placementEndpoints(entry)
	if err != nil {
		return wire.FromError(req.Type, err)
	}
	if err := s.store.TouchAccessed(ctx, req.FileName); err != nil {
		return wire.FromError(req.Type, err)
	}

	payload := wire.RedirectPayload{Primary: *primaryEp}
	if replicaEp != nil {
		payload.Replica = replicaEp
	}
	return wire.Ok(req.Type, payload.Encode())
}

// handleDelete implements DELETE(name, user): owner-only, cascading
// removal of grants/requests/checkpoints, file_count decrement, and a
// redirect payload so the client can tell the storage node(s) to free
// the bytes (spec.md §4.1 — the coordinator does not drive that itself).
func handleDelete(ctx context.Context, s *Server, _ string, req *wire.Message) *wire.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, err := s.store.GetFile(ctx, req.FileName)
	if err != nil {
		return wire.FromError(req.Type, err)
	}
	if entry.Owner != req.Username {
		return wire.FromError(req.Type, protoerr.NotFileOwner(req.FileName, req.Username))
	}

	var primaryEp *wire.Endpoint
	if n, ok := s.registry.Get(entry.PrimaryNodeID); ok {
		if ep, err := endpointOf(n); err == nil {
			primaryEp = &ep
		}
	}
	var replicaEp *wire.Endpoint
	if entry.ReplicaNodeID != nil {
		if n, ok := s.registry.Get(*entry.ReplicaNodeID); ok {
			if ep, err := endpointOf(n); err == nil {
				replicaEp = &ep
			}
		}
	}

	if err := s.store.DeleteFile(ctx, req.FileName); err != nil {
		return wire.FromError(req.Type, err)
	}
	if derr := s.registry.DecrementFileCount(entry.PrimaryNodeID); derr != nil {
		logger.WarnCtx(ctx, "file_count decrement failed after delete", "error", derr)
	}
	s.metrics.CatalogSize.Dec()

	if primaryEp == nil {
		// Primary node deregistered since creation; the catalog row is
		// gone regardless, so report success with no endpoint rather
		// than failing a delete that already happened.
		return wire.Ok(req.Type, nil)
	}
	payload := wire.RedirectPayload{Primary: *primaryEp, Replica: replicaEp}
	return wire.Ok(req.Type, payload.Encode())
}

// handleView implements VIEW(user, flags): "all" lists every FileEntry,
// otherwise only files the caller owns or has a grant for (spec.md
// §4.1's law VIEW("all") ⊇ VIEW()).
func handleView(ctx context.Context, s *Server, _ string, req *wire.Message) *wire.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	flags := strings.Fields(string(req.Payload))
	all := containsFlag(flags, "all")
	long := containsFlag(flags, "long")

	files, err := s.store.ListFiles(ctx)
	if err != nil {
		return wire.FromError(req.Type, err)
	}

	var visible []*catalog.FileEntry
	if all {
		visible = files
	} else {
		grants, err := s.store.ListGrantsForUser(ctx, req.Username)
		if err != nil {
			return wire.FromError(req.Type, err)
		}
		granted := make(map[string]struct{}, len(grants))
		for _, g := range grants {
			granted[g.FileName] = struct{}{}
		}
		for _, f := range files {
			if f.Owner == req.Username {
				visible = append(visible, f)
				continue
			}
			if _, ok := granted[f.Name]; ok {
				visible = append(visible, f)
			}
		}
	}

	return wire.Ok(req.Type, []byte(renderListing(visible, long)))
}

func containsFlag(flags []string, want string) bool {
	for _, f := range flags {
		if f == want {
			return true
		}
	}
	return false
}

func renderListing(files []*catalog.FileEntry, long bool) string {
	var b strings.Builder
	for _, f := range files {
		if long {
			fmt.Fprintf(&b, "%s\t%s\t%d\t%s\n", f.Name, f.Owner, f.WordCount, f.ModifiedAt.Format(time.RFC3339))
		} else {
			fmt.Fprintf(&b, "%s\n", f.Name)
		}
	}
	return b.String()
}

// parsePerm decodes LOOKUP's requested-permission payload: the ASCII
// strings "read" or "write" (spec.md §4.1 lists perm∈{read, write}).
func parsePerm(payload []byte) (catalog.Perm, error) {
	switch strings.TrimSpace(string(payload)) {
	case "read":
		return catalog.PermRead, nil
	case "write":
		return catalog.PermWrite, nil
	default:
		return 0, protoerr.BadParam("perm must be \"read\" or \"write\": " + string(payload))
	}
}

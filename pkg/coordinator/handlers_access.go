package coordinator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/netdoc/netdoc/pkg/catalog"
	"github.com/netdoc/netdoc/pkg/protoerr"
	"github.com/netdoc/netdoc/pkg/wire"
)

// handleAddAccess implements ADDACCESS (spec.md §4.4): owner-only,
// target must be registered, upsert leaves exactly one grant per
// (file, user) regardless of how many times it is called (spec.md §8's
// law).
func handleAddAccess(ctx context.Context, s *Server, _ string, req *wire.Message) *wire.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	ap, err := wire.ParseAccessPayload(req.Payload)
	if err != nil {
		return wire.FromError(req.Type, err)
	}

	entry, err := s.store.GetFile(ctx, req.FileName)
	if err != nil {
		return wire.FromError(req.Type, err)
	}
	if entry.Owner != req.Username {
		return wire.FromError(req.Type, protoerr.NotFileOwner(req.FileName, req.Username))
	}
	if ap.TargetUser == entry.Owner {
		return wire.FromError(req.Type, protoerr.BadParam("cannot grant access to the file's own owner"))
	}

	known, err := s.store.UserExists(ctx, ap.TargetUser)
	if err != nil {
		return wire.FromError(req.Type, err)
	}
	if !known {
		return wire.FromError(req.Type, protoerr.UnknownUser(ap.TargetUser))
	}

	grant := &catalog.AccessGrant{FileName: req.FileName, Grantee: ap.TargetUser, Perms: catalog.Perm(ap.Perms)}
	if err := s.store.UpsertGrant(ctx, grant); err != nil {
		return wire.FromError(req.Type, err)
	}
	return wire.Ok(req.Type, nil)
}

// handleRemAccess implements REMACCESS: owner-only; removing an absent
// grant is not an error.
func handleRemAccess(ctx context.Context, s *Server, _ string, req *wire.Message) *wire.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	targetUser := strings.TrimSpace(string(req.Payload))
	if targetUser == "" {
		return wire.FromError(req.Type, protoerr.BadParam("REMACCESS requires a target user"))
	}

	entry, err := s.store.GetFile(ctx, req.FileName)
	if err != nil {
		return wire.FromError(req.Type, err)
	}
	if entry.Owner != req.Username {
		return wire.FromError(req.Type, protoerr.NotFileOwner(req.FileName, req.Username))
	}

	if err := s.store.RemoveGrant(ctx, req.FileName, targetUser); err != nil {
		return wire.FromError(req.Type, err)
	}
	return wire.Ok(req.Type, nil)
}

// handleRequestAccess implements REQUESTACCESS(user, file, perm): files
// a pending AccessRequest. The requested permission rides in req.Payload
// as "read" or "write", the same encoding LOOKUP uses.
func handleRequestAccess(ctx context.Context, s *Server, _ string, req *wire.Message) *wire.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	perm, err := parsePerm(req.Payload)
	if err != nil {
		return wire.FromError(req.Type, err)
	}
	if _, err := s.store.GetFile(ctx, req.FileName); err != nil {
		return wire.FromError(req.Type, err)
	}

	areq := &catalog.AccessRequest{
		ID:            uuid.NewString(),
		FileName:      req.FileName,
		Requester:     req.Username,
		RequestedPerm: perm,
		Status:        catalog.RequestPending,
		RequestedAt:   time.Now().UTC(),
	}
	if err := s.store.CreateAccessRequest(ctx, areq); err != nil {
		return wire.FromError(req.Type, err)
	}
	return wire.Ok(req.Type, nil)
}

// handleViewRequests implements VIEWREQUESTS(owner): every pending
// request against a file the caller owns (spec.md §4.4). Approval and
// rejection endpoints have no effect on the AccessGrant table in the
// scoped core (spec.md §9) — this is the sole read surface.
func handleViewRequests(ctx context.Context, s *Server, _ string, req *wire.Message) *wire.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	reqs, err := s.store.ListPendingRequestsForOwner(ctx, req.Username)
	if err != nil {
		return wire.FromError(req.Type, err)
	}

	var b strings.Builder
	for _, r := range reqs {
		fmt.Fprintf(&b, "%s\t%s\t%d\t%s\n", r.FileName, r.Requester, r.RequestedPerm, r.RequestedAt.Format(time.RFC3339))
	}
	return wire.Ok(req.Type, []byte(b.String()))
}

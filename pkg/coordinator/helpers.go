package coordinator

import (
	"context"
	"net"
	"strconv"

	"github.com/netdoc/netdoc/pkg/catalog"
	"github.com/netdoc/netdoc/pkg/protoerr"
	"github.com/netdoc/netdoc/pkg/registry"
	"github.com/netdoc/netdoc/pkg/wire"
)

// endpointOf turns a registered node's "host:port" address into a wire
// endpoint. REGISTER_SS accepts any non-empty address (see
// handleRegisterSS), so the registry may hold an address that does not
// parse as "host:port" — reported here as server_error rather than
// panicking.
func endpointOf(n *registry.StorageNode) (wire.Endpoint, error) {
	host, portStr, err := net.SplitHostPort(n.Address)
	if err != nil {
		return wire.Endpoint{}, protoerr.New(protoerr.ServerError, "registry holds malformed node address: "+n.Address)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return wire.Endpoint{}, protoerr.New(protoerr.ServerError, "registry holds malformed node port: "+n.Address)
	}
	return wire.Endpoint{Host: host, Port: port}, nil
}

// placementEndpoints resolves a file's primary (and, if assigned and
// alive, replica) endpoints for a LOOKUP/WRITE_LOCK/CHECKPOINT-family
// response. Fails with protoerr.Unavailable if the primary is dead and
// no alive replica exists (spec.md §4.2/§4.6).
func (s *Server) placementEndpoints(entry *catalog.FileEntry) (*wire.Endpoint, *wire.Endpoint, error) {
	primary, ok := s.registry.Get(entry.PrimaryNodeID)
	primaryAlive := ok && primary.Alive

	var replica *registry.StorageNode
	replicaAlive := false
	if entry.ReplicaNodeID != nil {
		if r, ok := s.registry.Get(*entry.ReplicaNodeID); ok {
			replica = r
			replicaAlive = r.Alive
		}
	}

	switch {
	case primaryAlive:
		pep, err := endpointOf(primary)
		if err != nil {
			return nil, nil, err
		}
		if replicaAlive {
			rep, err := endpointOf(replica)
			if err != nil {
				return nil, nil, err
			}
			return &pep, &rep, nil
		}
		return &pep, nil, nil
	case replicaAlive:
		// Primary dead, replica alive: spec.md §4.2 — "if a file's
		// primary is not alive, LOOKUP returns the replica endpoint if
		// its node is alive". Returned as the primary slot of the
		// redirect payload since it is now the only reachable copy.
		rep, err := endpointOf(replica)
		if err != nil {
			return nil, nil, err
		}
		return &rep, nil, nil
	default:
		return nil, nil, protoerr.Unavailable(entry.Name)
	}
}

// authorize enforces spec.md §4.1's authorization model: the owner has
// full permissions implicitly; anyone else needs a grant whose bitmask
// satisfies required.
func (s *Server) authorize(ctx context.Context, entry *catalog.FileEntry, user string, required catalog.Perm) error {
	if entry.Owner == user {
		return nil
	}
	grant, ok, err := s.store.GetGrant(ctx, entry.Name, user)
	if err != nil {
		return protoerr.Internal(err)
	}
	if !ok || !grant.Perms.Satisfies(required) {
		return protoerr.Forbidden("access", entry.Name)
	}
	return nil
}

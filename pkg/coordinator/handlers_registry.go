package coordinator

import (
	"context"
	"fmt"

	"github.com/netdoc/netdoc/pkg/protoerr"
	"github.com/netdoc/netdoc/pkg/wire"
)

// handleRegisterSS implements spec.md §4.2's REGISTER_NODE: the
// request's FileName field carries the node's advertised "host:port"
// address (there is no dedicated address field in the envelope, so the
// storage node daemon places it there — the same convention CHECKPOINT
// uses FileName for the file it concerns).
func handleRegisterSS(_ context.Context, s *Server, _ string, req *wire.Message) *wire.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	address := req.FileName
	if address == "" {
		return wire.FromError(req.Type, protoerr.BadParam("REGISTER_SS requires a node address"))
	}

	id, err := s.registry.Register(address)
	if err != nil {
		return wire.FromError(req.Type, err)
	}
	s.metrics.NodesAlive.Set(float64(s.registry.AliveCount()))
	return wire.Ok(req.Type, []byte(fmt.Sprintf("%d", id)))
}

// handleHeartbeat implements spec.md §9's recommended liveness channel:
// the payload carries the decimal node id; a successful heartbeat marks
// it alive and refreshes last_heartbeat.
func handleHeartbeat(_ context.Context, s *Server, _ string, req *wire.Message) *wire.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := parseNodeID(req.Payload)
	if err != nil {
		return wire.FromError(req.Type, err)
	}
	if err := s.registry.Heartbeat(id); err != nil {
		return wire.FromError(req.Type, err)
	}
	s.metrics.NodesAlive.Set(float64(s.registry.AliveCount()))
	return wire.Ok(req.Type, nil)
}

// handleRegisterClient implements REGISTER_CLIENT (spec.md §4.1's
// authorization model depends on a known user set; scenario 6 requires
// registering an unregistered user succeeds). Idempotent: registering an
// already-known user is a no-op success.
func handleRegisterClient(ctx context.Context, s *Server, _ string, req *wire.Message) *wire.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	if req.Username == "" {
		return wire.FromError(req.Type, protoerr.BadParam("REGISTER_CLIENT requires a username"))
	}
	if err := s.store.RegisterUser(ctx, req.Username); err != nil {
		return wire.FromError(req.Type, err)
	}
	return wire.Ok(req.Type, nil)
}

// handleReplicate is a stub: spec.md §9 treats replica consistency as
// an open question and does not require a replication protocol. A
// client sending REPLICATE gets an explicit server_error rather than
// the connection silently dropping the message, so the failure is
// visible instead of mysterious.
func handleReplicate(_ context.Context, _ *Server, _ string, req *wire.Message) *wire.Message {
	return wire.FromError(req.Type, protoerr.New(protoerr.ServerError, "REPLICATE is not implemented: replica consistency is an open question (spec.md §9)"))
}

func parseNodeID(payload []byte) (uint64, error) {
	var id uint64
	_, err := fmt.Sscanf(string(payload), "%d", &id)
	if err != nil || id == 0 {
		return 0, protoerr.BadParam("malformed node id: " + string(payload))
	}
	return id, nil
}

package coordinator

import (
	"context"
	"time"

	"github.com/netdoc/netdoc/internal/logger"
)

// runHeartbeatReaper concretizes spec.md §9's liveness note: every
// HeartbeatInterval, scan the registry and flip alive=false for any
// node whose last heartbeat is older than HeartbeatTimeout. alive
// remains a plain field any channel may toggle (spec.md §4.2) — this
// reaper is merely the one this repository ships.
func (s *Server) runHeartbeatReaper(ctx context.Context) {
	interval := s.limits.HeartbeatInterval
	timeout := s.limits.HeartbeatTimeout
	if interval <= 0 || timeout <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.shutdown:
			return
		case <-ticker.C:
			s.reapDeadNodes(timeout)
		}
	}
}

func (s *Server) reapDeadNodes(timeout time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().UTC().Add(-timeout)
	for _, n := range s.registry.List() {
		if n.Alive && n.LastHeartbeat.Before(cutoff) {
			if err := s.registry.SetAlive(n.ID, false); err != nil {
				logger.Warn("failed to mark dead node unalive", "node_id", n.ID, "error", err)
				continue
			}
			logger.Info("storage node marked dead by heartbeat reaper", "node_id", n.ID, "address", n.Address)
		}
	}
	s.metrics.NodesAlive.Set(float64(s.registry.AliveCount()))
}

// Run starts the heartbeat reaper alongside Serve and blocks until ctx
// is cancelled or Serve returns, whichever happens first.
func (s *Server) Run(ctx context.Context) error {
	go s.runHeartbeatReaper(ctx)
	return s.Serve(ctx)
}

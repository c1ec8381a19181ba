// Package coordinator implements the coordinator process described in
// spec.md: it owns the catalog, the storage-node registry, and the
// sentence lock table, and serves clients and storage nodes over the
// wire protocol in pkg/wire.
//
// Grounded on the teacher's pkg/adapter/smb.SMBAdapter: a net.Listen
// accept loop bounded by a connection semaphore, a sync.WaitGroup
// tracking active connections, and context-cancellation-triggered
// graceful shutdown. Session/credit/lease bookkeeping in the teacher's
// adapter has no equivalent here — spec.md §5 asks for one independent
// worker per connection processing a framed message stream in order,
// nothing more.
package coordinator

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/netdoc/netdoc/internal/logger"
	"github.com/netdoc/netdoc/pkg/catalog"
	"github.com/netdoc/netdoc/pkg/config"
	"github.com/netdoc/netdoc/pkg/lock"
	"github.com/netdoc/netdoc/pkg/metrics"
	"github.com/netdoc/netdoc/pkg/registry"
)

// Server is the coordinator process's in-memory state plus its network
// front end. Every write to store, registry, or locks happens under mu,
// held for the duration of a message handler (spec.md §5).
type Server struct {
	cfg      *config.ServerConfig
	limits   config.LimitsConfig
	store    catalog.Store
	registry *registry.Registry
	locks    *lock.Table
	metrics  *metrics.Coordinator

	// mu is the single coordinator-wide mutex spec.md §5 requires.
	// Handlers acquire it at entry and release it on every exit path.
	mu sync.Mutex

	listener      net.Listener
	listenerMu    sync.RWMutex
	listenerReady chan struct{}

	connSemaphore chan struct{}
	activeConns   sync.WaitGroup
	shutdownOnce  sync.Once
	shutdown      chan struct{}
}

// New builds a Server. The registry and lock table are sized from
// limits (spec.md §5's resource caps); store is the already-opened
// catalog backend (memory or postgres).
func New(cfg *config.ServerConfig, limits config.LimitsConfig, store catalog.Store, reg prometheus.Registerer) *Server {
	return &Server{
		cfg:           cfg,
		limits:        limits,
		store:         store,
		registry:      registry.New(limits.MaxStorageNodes),
		locks:         lock.New(limits.MaxLocks),
		metrics:       metrics.NewCoordinator(reg),
		listenerReady: make(chan struct{}),
		connSemaphore: make(chan struct{}, maxConn(limits.MaxConnections)),
		shutdown:      make(chan struct{}),
	}
}

func maxConn(n int) int {
	if n <= 0 {
		return 1024
	}
	return n
}

// Serve accepts connections on cfg.ListenAddress until ctx is cancelled,
// grounded on the teacher's SMBAdapter.Serve: start the listener,
// publish it for Addr/Close to use, watch ctx in a goroutine to
// trigger shutdown, then loop accept/dispatch bounded by connSemaphore.
func (s *Server) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.ListenAddress)
	if err != nil {
		return err
	}

	s.listenerMu.Lock()
	s.listener = ln
	s.listenerMu.Unlock()
	close(s.listenerReady)

	go func() {
		<-ctx.Done()
		s.initiateShutdown()
	}()

	logger.Info("coordinator listening", "address", ln.Addr().String())

	for {
		select {
		case s.connSemaphore <- struct{}{}:
		case <-s.shutdown:
			s.activeConns.Wait()
			return nil
		}

		conn, err := ln.Accept()
		if err != nil {
			<-s.connSemaphore
			select {
			case <-s.shutdown:
				s.activeConns.Wait()
				return nil
			default:
				if errors.Is(err, net.ErrClosed) {
					s.activeConns.Wait()
					return nil
				}
				logger.Error("accept failed", "error", err)
				continue
			}
		}

		if tc, ok := conn.(*net.TCPConn); ok {
			_ = tc.SetNoDelay(true)
		}

		s.activeConns.Add(1)
		go func() {
			defer s.activeConns.Done()
			defer func() { <-s.connSemaphore }()
			s.handleConnection(ctx, conn)
		}()
	}
}

// initiateShutdown closes the listener and signals the accept loop to
// stop, exactly once regardless of how many callers invoke it.
func (s *Server) initiateShutdown() {
	s.shutdownOnce.Do(func() {
		close(s.shutdown)
		s.listenerMu.RLock()
		ln := s.listener
		s.listenerMu.RUnlock()
		if ln != nil {
			_ = ln.Close()
		}
	})
}

// Close triggers shutdown and waits up to timeout for in-flight
// connections to finish, grounded on cfg's ShutdownTimeout.
func (s *Server) Close(timeout time.Duration) error {
	s.initiateShutdown()

	done := make(chan struct{})
	go func() {
		s.activeConns.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return errShutdownTimeout
	}
}

// Addr blocks until the listener is bound and returns its address; used
// by tests that bind to ":0" and need the actual ephemeral port.
func (s *Server) Addr() net.Addr {
	<-s.listenerReady
	s.listenerMu.RLock()
	defer s.listenerMu.RUnlock()
	return s.listener.Addr()
}

// newSessionToken mints an opaque per-connection identity (spec.md §9:
// "a portable reimplementation should introduce an opaque session token
// allocated at accept time"), replacing the original's raw socket fd.
func newSessionToken() string {
	return uuid.NewString()
}

var errShutdownTimeout = errors.New("coordinator: shutdown timed out waiting for active connections")

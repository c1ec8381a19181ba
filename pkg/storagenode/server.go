// Package storagenode implements the storage-node process described in
// SPEC_FULL.md §4.5: it holds file bytes, undo snapshots, and named
// checkpoints behind a blobstore.Store, and serves the storage-node-facing
// wire tags (READ, WRITE, DELETE, UNDO, CHECKPOINT, LISTCHECKPOINTS,
// REVERT, INFO, LIST, STREAM) directly to clients that were redirected
// here by the coordinator.
//
// The accept loop is the same shape as pkg/coordinator's (grounded on
// the teacher's pkg/adapter/smb.SMBAdapter), since both are one
// goroutine per connection reading a framed message stream in order.
// Unlike the coordinator there is no server-wide mutex: blobstore.Store
// implementations serialize their own per-key mutations (a Badger
// transaction, an S3 object PUT/GET), so concurrent requests for
// different files never contend and concurrent requests for the same
// file are already made safe by the two-phase write protocol's lock
// table living on the coordinator.
package storagenode

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/netdoc/netdoc/internal/logger"
	"github.com/netdoc/netdoc/pkg/config"
	"github.com/netdoc/netdoc/pkg/metrics"
	"github.com/netdoc/netdoc/pkg/storagenode/blobstore"
)

// Server is the storage node's network front end over a blobstore.Store.
type Server struct {
	cfg     *config.ServerConfig
	store   blobstore.Store
	metrics *metrics.StorageNode

	listener      net.Listener
	listenerMu    sync.RWMutex
	listenerReady chan struct{}

	connSemaphore chan struct{}
	activeConns   sync.WaitGroup
	shutdownOnce  sync.Once
	shutdown      chan struct{}
}

// New builds a Server over an already-opened blob store.
func New(cfg *config.ServerConfig, limits config.LimitsConfig, store blobstore.Store, reg prometheus.Registerer) *Server {
	return &Server{
		cfg:           cfg,
		store:         store,
		metrics:       metrics.NewStorageNode(reg),
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

// Serve accepts connections on cfg.ListenAddress until ctx is cancelled.
// See pkg/coordinator.Server.Serve for the pattern this mirrors.
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

	logger.Info("storage node listening", "address", ln.Addr().String())

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
// connections to finish.
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

// Addr blocks until the listener is bound and returns its address.
func (s *Server) Addr() net.Addr {
	<-s.listenerReady
	s.listenerMu.RLock()
	defer s.listenerMu.RUnlock()
	return s.listener.Addr()
}

var errShutdownTimeout = errors.New("storagenode: shutdown timed out waiting for active connections")

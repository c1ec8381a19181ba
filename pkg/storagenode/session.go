package storagenode

import (
	"context"
	"errors"
	"io"
	"net"
	"time"

	"github.com/netdoc/netdoc/internal/logger"
	"github.com/netdoc/netdoc/pkg/wire"
)

// handleConnection reads framed requests off conn in order and
// dispatches each to its handler until the connection closes. There is
// no session-scoped state to clean up here (locks live on the
// coordinator, not the storage node).
func (s *Server) handleConnection(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	log := logger.With("remote", conn.RemoteAddr().String())
	log.Info("connection accepted")

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		req, err := wire.Read(conn)
		if err != nil {
			if errors.Is(err, io.EOF) {
				log.Info("connection closed by peer")
				return
			}
			log.Warn("frame read failed, closing connection", "error", err)
			return
		}

		resp := s.dispatch(ctx, req)

		if err := wire.Write(conn, resp); err != nil {
			log.Warn("frame write failed, closing connection", "error", err)
			return
		}
	}
}

// dispatch routes one request to its handler, recovering from handler
// panics the same way pkg/coordinator does.
func (s *Server) dispatch(ctx context.Context, req *wire.Message) (resp *wire.Message) {
	start := time.Now()
	lc := logger.NewLogContext("").WithRequest(string(req.Type)).WithUser(req.Username).WithFile(req.FileName)
	ctx = logger.WithContext(ctx, lc)

	defer func() {
		if r := recover(); r != nil {
			logger.ErrorCtx(ctx, "handler panicked", "panic", r)
			resp = wire.FromError(req.Type, errHandlerPanic)
		}
		s.metrics.RequestsTotal.WithLabelValues(string(req.Type), resultLabel(resp)).Inc()
	}()

	handler, ok := handlers[req.Type]
	if !ok {
		logger.WarnCtx(ctx, "unrecognized request type")
		return wire.FromError(req.Type, errUnknownType(req.Type))
	}

	resp = handler(ctx, s, req)
	if resp.IsError() {
		logger.WarnCtx(ctx, "request failed", "error_code", int(resp.ErrorCode), "error_message", resp.ErrorMessage)
	} else {
		logger.InfoCtx(ctx, "request handled", "duration_ms", logger.Duration(start))
	}
	return resp
}

func resultLabel(m *wire.Message) string {
	if m == nil || m.IsError() {
		return "error"
	}
	return "success"
}

type handlerFunc func(ctx context.Context, s *Server, req *wire.Message) *wire.Message

var handlers = map[wire.Type]handlerFunc{
	wire.TypeRead:            handleRead,
	wire.TypeWrite:           handleWrite,
	wire.TypeDelete:          handleDelete,
	wire.TypeUndo:            handleUndo,
	wire.TypeCheckpoint:      handleCheckpoint,
	wire.TypeListCheckpoints: handleListCheckpoints,
	wire.TypeRevert:          handleRevert,
	wire.TypeInfo:            handleInfo,
	wire.TypeList:            handleList,
	wire.TypeStream:          handleStream,
}

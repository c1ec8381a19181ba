package coordinator

import (
	"context"
	"errors"
	"io"
	"net"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/netdoc/netdoc/internal/logger"
	"github.com/netdoc/netdoc/internal/telemetry"
	"github.com/netdoc/netdoc/pkg/protoerr"
	"github.com/netdoc/netdoc/pkg/wire"
)

// handleConnection runs one client/storage-node session: reads framed
// messages in order and dispatches each to its handler, until the
// connection closes. Per spec.md §5, a single connection is a single
// reader — requests on it are processed strictly in submission order.
//
// A closing connection, for any reason, must release every lock the
// session holds (spec.md §4.3's only automatic release path); that
// happens in the deferred cleanup regardless of how the loop exits.
func (s *Server) handleConnection(ctx context.Context, conn net.Conn) {
	session := newSessionToken()
	defer conn.Close()
	defer func() {
		s.mu.Lock()
		released := s.locks.ReleaseSession(session)
		s.mu.Unlock()
		if released > 0 {
			logger.Info("session closed, released locks", "session", session, "count", released)
		}
	}()

	log := logger.With("session", session, "remote", conn.RemoteAddr().String())
	log.Info("session accepted")

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		req, err := wire.Read(conn)
		if err != nil {
			if errors.Is(err, io.EOF) {
				log.Info("session closed by peer")
				return
			}
			log.Warn("frame read failed, closing session", "error", err)
			return
		}

		resp := s.dispatch(ctx, session, req)

		if err := wire.Write(conn, resp); err != nil {
			log.Warn("frame write failed, closing session", "error", err)
			return
		}
	}
}

// dispatch routes one request to its handler, recovers from handler
// panics (a bug in one handler must degrade to a server_error response,
// not take the whole session down), and records metrics/duration.
func (s *Server) dispatch(ctx context.Context, session string, req *wire.Message) (resp *wire.Message) {
	start := time.Now()
	lc := logger.NewLogContext(session).WithRequest(string(req.Type)).WithUser(req.Username).WithFile(req.FileName)
	ctx = logger.WithContext(ctx, lc)

	ctx, span := telemetry.StartSpan(ctx, telemetry.SpanCoordinatorDispatch,
		trace.WithAttributes(
			telemetry.RequestType(string(req.Type)),
			telemetry.Username(req.Username),
			telemetry.FileName(req.FileName),
			telemetry.Session(session),
		))
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			logger.ErrorCtx(ctx, "handler panicked", "panic", r)
			resp = wire.FromError(req.Type, errHandlerPanic)
		}
		s.metrics.RequestsTotal.WithLabelValues(string(req.Type), resultLabel(resp)).Inc()
		s.metrics.RequestDuration.WithLabelValues(string(req.Type)).Observe(time.Since(start).Seconds())
	}()

	handler, ok := handlers[req.Type]
	if !ok {
		logger.WarnCtx(ctx, "unrecognized request type")
		return wire.FromError(req.Type, errUnknownType(req.Type))
	}

	if nameBearingTypes[req.Type] {
		if err := validateName(req.FileName, s.limits.MaxNameLength); err != nil {
			logger.WarnCtx(ctx, "request failed", "error_code", int(protoerr.CodeOf(err)), "error_message", err.Error())
			return wire.FromError(req.Type, err)
		}
	}

	resp = handler(ctx, s, session, req)
	if resp.IsError() {
		logger.WarnCtx(ctx, "request failed", "error_code", int(resp.ErrorCode), "error_message", resp.ErrorMessage)
		telemetry.RecordError(ctx, protoerr.New(resp.ErrorCode, resp.ErrorMessage))
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

// handlerFunc is the signature every coordinator operation implements.
// Handlers acquire s.mu themselves (spec.md §5: "handlers acquire the
// mutex at entry and release it on every exit path") so that read-only
// handlers (LOOKUP, VIEW) are free to use it the same way write handlers
// do, keeping the locking discipline uniform rather than split across
// a read/write distinction the spec does not ask for.
type handlerFunc func(ctx context.Context, s *Server, session string, req *wire.Message) *wire.Message

var handlers = map[wire.Type]handlerFunc{
	wire.TypeRegisterSS:      handleRegisterSS,
	wire.TypeRegisterClient:  handleRegisterClient,
	wire.TypeHeartbeat:       handleHeartbeat,
	wire.TypeCreate:          handleCreate,
	wire.TypeCreateFolder:    handleCreateFolder,
	wire.TypeLookup:          handleLookup,
	wire.TypeDelete:          handleDelete,
	wire.TypeView:            handleView,
	wire.TypeWriteLock:       handleWriteLock,
	wire.TypeCommit:          handleWriteCommit,
	wire.TypeAddAccess:       handleAddAccess,
	wire.TypeRemAccess:       handleRemAccess,
	wire.TypeRequestAccess:   handleRequestAccess,
	wire.TypeViewRequests:    handleViewRequests,
	wire.TypeCheckpoint:      handleCheckpoint,
	wire.TypeListCheckpoints: handleListCheckpoints,
	wire.TypeRevert:          handleRevert,
	wire.TypeUndo:            handleUndo,
	wire.TypeReplicate:       handleReplicate,
}

// nameBearingTypes lists every request type whose FileName field
// names a file/folder the op acts on (spec.md §4.1/§7: name validation
// applies to every name-bearing op, not just CREATE). Checked once in
// dispatch before the handler runs, so a malformed name can never reach
// a handler's s.store.GetFile lookup and surface as the wrong error
// code (file_not_found instead of invalid_param).
//
// REGISTER_SS, REGISTER_CLIENT, HEARTBEAT, VIEW, VIEWREQUESTS, and
// REPLICATE are deliberately excluded: REGISTER_SS repurposes FileName
// to carry the node's address (handlers_registry.go), and the rest
// don't take a file name at all.
var nameBearingTypes = map[wire.Type]bool{
	wire.TypeCreate:          true,
	wire.TypeCreateFolder:    true,
	wire.TypeLookup:          true,
	wire.TypeDelete:          true,
	wire.TypeWriteLock:       true,
	wire.TypeCommit:          true,
	wire.TypeAddAccess:       true,
	wire.TypeRemAccess:       true,
	wire.TypeRequestAccess:   true,
	wire.TypeCheckpoint:      true,
	wire.TypeListCheckpoints: true,
	wire.TypeRevert:          true,
	wire.TypeUndo:            true,
}

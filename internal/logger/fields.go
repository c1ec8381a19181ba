package logger

import (
	"fmt"
	"log/slog"
)

// Standard field keys for structured logging across the coordinator,
// storage node, and client. Use these keys consistently so log lines
// can be queried/aggregated the same way regardless of which process
// emitted them.
const (
	// ========================================================================
	// Request identification
	// ========================================================================
	KeyRequestType = "request_type" // wire type tag: CREATE, WRITE_LOCK, ETIRW, ...
	KeyErrorCode   = "error_code"   // numeric protocol error code
	KeyDurationMs  = "duration_ms" // handler duration in milliseconds

	// ========================================================================
	// Identity
	// ========================================================================
	KeyUsername = "username"
	KeySession  = "session" // opaque per-connection session token

	// ========================================================================
	// Catalog
	// ========================================================================
	KeyFileName  = "file_name"
	KeyOwner     = "owner"
	KeyIsFolder  = "is_folder"
	KeyPrimary   = "primary_node"
	KeyReplica   = "replica_node"
	KeyGrantee   = "grantee"
	KeyPerms     = "perms"

	// ========================================================================
	// Storage-node registry
	// ========================================================================
	KeyNodeID   = "node_id"
	KeyAddress  = "address"
	KeyAlive    = "alive"
	KeyFileCount = "file_count"

	// ========================================================================
	// Locking
	// ========================================================================
	KeySentenceIndex = "sentence_index"
	KeyLockHolder    = "lock_holder"

	// ========================================================================
	// Checkpoints
	// ========================================================================
	KeyTag     = "tag"
	KeyLocator = "blob_locator"
)

// RequestType returns a slog.Attr for the wire request type tag.
func RequestType(t string) slog.Attr { return slog.String(KeyRequestType, t) }

// ErrorCode returns a slog.Attr for a numeric protocol error code.
func ErrorCode(code int) slog.Attr { return slog.Int(KeyErrorCode, code) }

// Username returns a slog.Attr for a username.
func Username(u string) slog.Attr { return slog.String(KeyUsername, u) }

// Session returns a slog.Attr for an opaque session token.
func Session(s string) slog.Attr { return slog.String(KeySession, s) }

// FileName returns a slog.Attr for a catalog file name.
func FileName(name string) slog.Attr { return slog.String(KeyFileName, name) }

// NodeID returns a slog.Attr for a storage-node id.
func NodeID(id uint64) slog.Attr { return slog.Uint64(KeyNodeID, id) }

// SentenceIndex returns a slog.Attr for a sentence index.
func SentenceIndex(idx int) slog.Attr { return slog.Int(KeySentenceIndex, idx) }

// Err returns a slog.Attr wrapping a Go error, nil-safe.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.String("error", err.Error())
}

// Fmt is a convenience for building a one-off string attr with printf
// semantics, useful for values with no dedicated constructor above.
func Fmt(key, format string, args ...any) slog.Attr {
	return slog.String(key, fmt.Sprintf(format, args...))
}

package logger

import (
	"context"
	"time"
)

// contextKey is a private type for context keys to avoid collisions
type contextKey struct{}

// logContextKey is the key for LogContext in context.Context
var logContextKey = contextKey{}

// LogContext holds request-scoped logging fields for one coordinator request.
type LogContext struct {
	RequestType string    // wire type tag being handled (CREATE, WRITE_LOCK, ...)
	Username    string    // requesting user
	FileName    string    // file the request concerns, if any
	Session     string    // opaque session token of the client connection
	StartTime   time.Time // for duration calculation
}

// WithContext returns a new context with the given LogContext
func WithContext(ctx context.Context, lc *LogContext) context.Context {
	return context.WithValue(ctx, logContextKey, lc)
}

// FromContext retrieves the LogContext from context, or nil if not present
func FromContext(ctx context.Context) *LogContext {
	if ctx == nil {
		return nil
	}
	lc, _ := ctx.Value(logContextKey).(*LogContext)
	return lc
}

// NewLogContext creates a new LogContext for a request arriving on session.
func NewLogContext(session string) *LogContext {
	return &LogContext{
		Session:   session,
		StartTime: time.Now(),
	}
}

// Clone creates a copy of the LogContext
func (lc *LogContext) Clone() *LogContext {
	if lc == nil {
		return nil
	}
	clone := *lc
	return &clone
}

// WithRequest returns a copy with the request type tag set.
func (lc *LogContext) WithRequest(requestType string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.RequestType = requestType
	}
	return clone
}

// WithFile returns a copy with the file name set.
func (lc *LogContext) WithFile(name string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.FileName = name
	}
	return clone
}

// WithUser returns a copy with the username set.
func (lc *LogContext) WithUser(username string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.Username = username
	}
	return clone
}

// DurationMs returns the duration since StartTime in milliseconds
func (lc *LogContext) DurationMs() float64 {
	if lc == nil || lc.StartTime.IsZero() {
		return 0
	}
	return float64(time.Since(lc.StartTime).Microseconds()) / 1000.0
}

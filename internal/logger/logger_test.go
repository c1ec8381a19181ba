package logger

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

// captureOutput redirects logger output to a buffer for testing.
func captureOutput() (*bytes.Buffer, func()) {
	buf := new(bytes.Buffer)

	mu.Lock()
	originalOutput := output
	originalColor := useColor
	output = buf
	useColor = false
	mu.Unlock()

	reconfigure()

	cleanup := func() {
		mu.Lock()
		output = originalOutput
		useColor = originalColor
		mu.Unlock()
		reconfigure()
	}

	return buf, cleanup
}

func TestLevelFiltering(t *testing.T) {
	buf, cleanup := captureOutput()
	defer cleanup()

	SetLevel("WARN")
	Debug("should not appear")
	Info("also hidden")
	Warn("lock conflict", "file_name", "doc.txt")

	out := buf.String()
	assert.NotContains(t, out, "should not appear")
	assert.NotContains(t, out, "also hidden")
	assert.Contains(t, out, "lock conflict")
}

func TestAppendContextFieldsIncludesRequestAndSession(t *testing.T) {
	buf, cleanup := captureOutput()
	defer cleanup()
	SetLevel("DEBUG")

	lc := NewLogContext("sess-42").WithRequest("WRITE_LOCK").WithUser("alice").WithFile("doc.txt")
	ctx := WithContext(context.Background(), lc)

	InfoCtx(ctx, "handling request")

	out := buf.String()
	assert.Contains(t, out, "WRITE_LOCK")
	assert.Contains(t, out, "alice")
	assert.Contains(t, out, "doc.txt")
	assert.Contains(t, out, "sess-42")
}

func TestLogContextClone(t *testing.T) {
	lc := NewLogContext("sess-1")
	clone := lc.WithUser("bob")

	assert.Equal(t, "sess-1", clone.Session)
	assert.Equal(t, "bob", clone.Username)
	assert.Empty(t, lc.Username, "original context must not be mutated")
}

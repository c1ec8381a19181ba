package wire

import (
	"bytes"
	"testing"

	"github.com/netdoc/netdoc/pkg/protoerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	msg := &Message{
		Type:     TypeCreate,
		Username: "alice",
		FileName: "doc.txt",
		Payload:  []byte("hello world"),
	}

	frame, err := Encode(msg)
	require.NoError(t, err)

	got, err := Read(bytes.NewReader(frame))
	require.NoError(t, err)
	assert.Equal(t, msg.Type, got.Type)
	assert.Equal(t, msg.Username, got.Username)
	assert.Equal(t, msg.FileName, got.FileName)
	assert.Equal(t, msg.Payload, got.Payload)
	assert.Equal(t, protoerr.Success, got.ErrorCode)
}

func TestEncodeDecodeErrorResponse(t *testing.T) {
	msg := FromError(TypeLookup, protoerr.LockedBy("doc.txt", 0, "bob"))
	frame, err := Encode(msg)
	require.NoError(t, err)

	got, err := Read(bytes.NewReader(frame))
	require.NoError(t, err)
	assert.Equal(t, protoerr.Locked, got.ErrorCode)
	assert.Contains(t, got.ErrorMessage, "bob")
}

func TestReadStreamOfMessages(t *testing.T) {
	var buf bytes.Buffer
	msgs := []*Message{
		NewRequest(TypeCreate, "alice", "a.txt", nil),
		NewRequest(TypeDelete, "alice", "a.txt", nil),
	}
	for _, m := range msgs {
		require.NoError(t, Write(&buf, m))
	}

	for _, want := range msgs {
		got, err := Read(&buf)
		require.NoError(t, err)
		assert.Equal(t, want.Type, got.Type)
		assert.Equal(t, want.FileName, got.FileName)
	}
}

func TestReadEOFOnEmptyStream(t *testing.T) {
	_, err := Read(bytes.NewReader(nil))
	require.Error(t, err)
}

func TestRedirectPayloadRoundTrip(t *testing.T) {
	sentence := 3
	p := RedirectPayload{
		Primary:  Endpoint{Host: "127.0.0.1", Port: 9001},
		Replica:  &Endpoint{Host: "127.0.0.1", Port: 9002},
		Sentence: &sentence,
	}
	encoded := p.Encode()
	assert.Equal(t, "SS:127.0.0.1:9001|REPLICA:127.0.0.1:9002|SENTENCE:3", string(encoded))

	got, err := ParseRedirectPayload(encoded)
	require.NoError(t, err)
	assert.Equal(t, p.Primary, got.Primary)
	require.NotNil(t, got.Replica)
	assert.Equal(t, *p.Replica, *got.Replica)
	require.NotNil(t, got.Sentence)
	assert.Equal(t, 3, *got.Sentence)
}

func TestRedirectPayloadNoReplica(t *testing.T) {
	p := RedirectPayload{Primary: Endpoint{Host: "10.0.0.1", Port: 1}}
	got, err := ParseRedirectPayload(p.Encode())
	require.NoError(t, err)
	assert.Nil(t, got.Replica)
	assert.Nil(t, got.Sentence)
}

func TestAccessPayloadRoundTrip(t *testing.T) {
	a := AccessPayload{TargetUser: "bob", Perms: PermReadWrite}
	got, err := ParseAccessPayload(a.Encode())
	require.NoError(t, err)
	assert.Equal(t, "bob", got.TargetUser)
	assert.Equal(t, PermReadWrite, got.Perms)
}

func TestAccessPayloadMalformed(t *testing.T) {
	_, err := ParseAccessPayload([]byte("nopipehere"))
	require.Error(t, err)

	_, err = ParseAccessPayload([]byte("bob|99"))
	require.Error(t, err)
}

func TestPermSatisfies(t *testing.T) {
	assert.True(t, PermReadWrite.Satisfies(PermRead))
	assert.True(t, PermReadWrite.Satisfies(PermWrite))
	assert.False(t, PermRead.Satisfies(PermWrite))
}

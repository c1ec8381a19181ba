// Package wire implements the fixed-layout wire envelope shared by the
// coordinator, storage nodes, and clients (spec.md §6). It is
// deliberately the only package that knows the byte layout; everything
// else in this repository works with a decoded *Message.
package wire

import "github.com/netdoc/netdoc/pkg/protoerr"

// Type is one of the short ASCII type tags from spec.md §6.
type Type string

const (
	TypeRegisterSS      Type = "REGISTER_SS"
	TypeRegisterClient  Type = "REGISTER_CLIENT"
	TypeCreate          Type = "CREATE"
	TypeCreateFolder    Type = "CREATEFOLDER"
	TypeLookup          Type = "LOOKUP"
	TypeRead            Type = "READ"
	TypeWriteLock       Type = "WRITE_LOCK"
	TypeWrite           Type = "WRITE"
	TypeCommit          Type = "ETIRW" // WRITE_COMMIT, named per spec.md §6
	TypeDelete          Type = "DELETE"
	TypeView            Type = "VIEW"
	TypeList            Type = "LIST"
	TypeInfo            Type = "INFO"
	TypeStream          Type = "STREAM"
	TypeUndo            Type = "UNDO"
	TypeAddAccess       Type = "ADDACCESS"
	TypeRemAccess       Type = "REMACCESS"
	TypeRequestAccess   Type = "REQUESTACCESS"
	TypeViewRequests    Type = "VIEWREQUESTS"
	TypeCheckpoint      Type = "CHECKPOINT"
	TypeListCheckpoints Type = "LISTCHECKPOINTS"
	TypeRevert          Type = "REVERT"
	TypeReplicate       Type = "REPLICATE"
	TypeHeartbeat       Type = "HEARTBEAT"
)

// Message is the decoded form of the wire envelope: a type tag, the
// requesting username, the file name the request concerns (may be
// empty), an opaque payload, and a result code/message pair used on
// responses (zero-valued on requests).
type Message struct {
	Type         Type
	Username     string
	FileName     string
	Payload      []byte
	ErrorCode    protoerr.Code
	ErrorMessage string
}

// NewRequest builds a request envelope with no error set.
func NewRequest(t Type, username, fileName string, payload []byte) *Message {
	return &Message{Type: t, Username: username, FileName: fileName, Payload: payload}
}

// Ok builds a success response carrying payload, echoing the request's
// type tag so clients can match responses to requests on a pipelined
// connection without a separate sequence number.
func Ok(t Type, payload []byte) *Message {
	return &Message{Type: t, Payload: payload, ErrorCode: protoerr.Success}
}

// FromError builds a response envelope carrying a CodedError, collapsing
// any error that is not a *protoerr.CodedError to ServerError so a
// handler bug never produces an envelope with an undocumented code.
func FromError(t Type, err error) *Message {
	if ce, ok := protoerr.As(err); ok {
		return &Message{Type: t, ErrorCode: ce.Code, ErrorMessage: ce.Message}
	}
	return &Message{Type: t, ErrorCode: protoerr.ServerError, ErrorMessage: err.Error()}
}

// IsError reports whether the message carries a non-success error code.
func (m *Message) IsError() bool {
	return m.ErrorCode != protoerr.Success
}

// Err converts a response message's error fields back into a Go error,
// or nil if the message signals success.
func (m *Message) Err() error {
	if !m.IsError() {
		return nil
	}
	return protoerr.New(m.ErrorCode, m.ErrorMessage)
}

package wire

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/netdoc/netdoc/pkg/protoerr"
)

// MaxFrameSize bounds a single record's total encoded size, preventing a
// corrupt or hostile length prefix from driving an unbounded allocation.
// Grounded on the teacher's MaxFragmentSize guard in its RPC record
// framing (internal/adapter/nfs/connection.go).
const MaxFrameSize = 8 << 20 // 8MiB: generous for a whole-file payload

// Encode serializes m into the wire envelope described in spec.md §6:
// a 4-byte big-endian length prefix followed by the record body.
func Encode(m *Message) ([]byte, error) {
	var body bytes.Buffer

	if len(m.Type) > 255 {
		return nil, fmt.Errorf("wire: type tag too long: %d bytes", len(m.Type))
	}
	body.WriteByte(byte(len(m.Type)))
	body.WriteString(string(m.Type))

	if err := writeShortString(&body, m.Username); err != nil {
		return nil, err
	}
	if err := writeShortString(&body, m.FileName); err != nil {
		return nil, err
	}
	if err := writeLongBytes(&body, m.Payload); err != nil {
		return nil, err
	}

	var codeBuf [4]byte
	binary.BigEndian.PutUint32(codeBuf[:], uint32(int32(m.ErrorCode)))
	body.Write(codeBuf[:])

	if err := writeShortString(&body, m.ErrorMessage); err != nil {
		return nil, err
	}

	if body.Len() > MaxFrameSize {
		return nil, fmt.Errorf("wire: encoded frame too large: %d bytes", body.Len())
	}

	frame := make([]byte, 4+body.Len())
	binary.BigEndian.PutUint32(frame[:4], uint32(body.Len()))
	copy(frame[4:], body.Bytes())
	return frame, nil
}

// Write encodes m and writes the full frame to w.
func Write(w io.Writer, m *Message) error {
	frame, err := Encode(m)
	if err != nil {
		return err
	}
	_, err = w.Write(frame)
	return err
}

// Read reads one framed record from r and decodes it into a Message.
// EOF is returned unwrapped so callers can distinguish a clean
// disconnect (spec.md §7: "a client disconnection mid-session is not
// an error") from a genuine framing error.
func Read(r io.Reader) (*Message, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, err
	}
	length := binary.BigEndian.Uint32(lenBuf[:])
	if length > MaxFrameSize {
		return nil, fmt.Errorf("wire: frame too large: %d bytes", length)
	}

	body := make([]byte, length)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, fmt.Errorf("wire: read body: %w", err)
	}
	return decode(body)
}

func decode(body []byte) (*Message, error) {
	buf := bytes.NewReader(body)

	typeLen, err := buf.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("wire: read type length: %w", err)
	}
	typeBytes := make([]byte, typeLen)
	if _, err := io.ReadFull(buf, typeBytes); err != nil {
		return nil, fmt.Errorf("wire: read type: %w", err)
	}

	username, err := readShortString(buf)
	if err != nil {
		return nil, fmt.Errorf("wire: read username: %w", err)
	}
	fileName, err := readShortString(buf)
	if err != nil {
		return nil, fmt.Errorf("wire: read filename: %w", err)
	}
	payload, err := readLongBytes(buf)
	if err != nil {
		return nil, fmt.Errorf("wire: read payload: %w", err)
	}

	var codeBuf [4]byte
	if _, err := io.ReadFull(buf, codeBuf[:]); err != nil {
		return nil, fmt.Errorf("wire: read error code: %w", err)
	}
	code := protoerr.Code(int32(binary.BigEndian.Uint32(codeBuf[:])))

	errMsg, err := readShortString(buf)
	if err != nil {
		return nil, fmt.Errorf("wire: read error message: %w", err)
	}

	return &Message{
		Type:         Type(typeBytes),
		Username:     username,
		FileName:     fileName,
		Payload:      payload,
		ErrorCode:    code,
		ErrorMessage: errMsg,
	}, nil
}

// writeShortString writes a length-prefixed (uint16) string.
func writeShortString(buf *bytes.Buffer, s string) error {
	if len(s) > 1<<16-1 {
		return fmt.Errorf("wire: string field too long: %d bytes", len(s))
	}
	var lenBuf [2]byte
	binary.BigEndian.PutUint16(lenBuf[:], uint16(len(s)))
	buf.Write(lenBuf[:])
	buf.WriteString(s)
	return nil
}

func readShortString(r io.Reader) (string, error) {
	var lenBuf [2]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return "", err
	}
	n := binary.BigEndian.Uint16(lenBuf[:])
	if n == 0 {
		return "", nil
	}
	data := make([]byte, n)
	if _, err := io.ReadFull(r, data); err != nil {
		return "", err
	}
	return string(data), nil
}

// writeLongBytes writes a length-prefixed (uint32) byte slice, used for
// the payload field which may carry a whole file's content.
func writeLongBytes(buf *bytes.Buffer, b []byte) error {
	if len(b) > MaxFrameSize {
		return fmt.Errorf("wire: payload too large: %d bytes", len(b))
	}
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(b)))
	buf.Write(lenBuf[:])
	buf.Write(b)
	return nil
}

func readLongBytes(r io.Reader) ([]byte, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, err
	}
	n := binary.BigEndian.Uint32(lenBuf[:])
	if n == 0 {
		return nil, nil
	}
	if n > MaxFrameSize {
		return nil, fmt.Errorf("wire: payload field too large: %d bytes", n)
	}
	data := make([]byte, n)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, err
	}
	return data, nil
}

// Package client implements the thin client library used by netdocctl
// and by the coordinator/storage-node integration tests: it holds one
// persistent connection to the coordinator and opens (and caches) a
// connection to whichever storage-node endpoint a coordinator response
// names, driving the full two-phase write protocol end to end.
package client

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"

	"go.opentelemetry.io/otel/trace"

	"github.com/netdoc/netdoc/internal/telemetry"
	"github.com/netdoc/netdoc/pkg/protoerr"
	"github.com/netdoc/netdoc/pkg/sentence"
	"github.com/netdoc/netdoc/pkg/wire"
)

// Client is a single user's session against one coordinator. It is not
// safe for concurrent use by multiple goroutines — spec.md §5 models one
// reader per connection, and this type is that reader.
type Client struct {
	username string
	coord    net.Conn

	ssMu    sync.Mutex
	ssConns map[string]net.Conn // storage-node address -> connection
}

// Dial connects to the coordinator at addr as username. REGISTER_CLIENT
// is not sent automatically — call Register explicitly, matching the
// protocol's separate REGISTER_CLIENT op (spec.md §4.2/§6).
func Dial(addr, username string) (*Client, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial coordinator %s: %w", addr, err)
	}
	return &Client{username: username, coord: conn, ssConns: make(map[string]net.Conn)}, nil
}

// Close closes the coordinator connection and every cached storage-node
// connection.
func (c *Client) Close() error {
	c.ssMu.Lock()
	for _, conn := range c.ssConns {
		_ = conn.Close()
	}
	c.ssMu.Unlock()
	return c.coord.Close()
}

func (c *Client) callCoordinator(ctx context.Context, req *wire.Message) (*wire.Message, error) {
	ctx, span := telemetry.StartSpan(ctx, telemetry.SpanClientCoordinator,
		trace.WithAttributes(
			telemetry.RequestType(string(req.Type)),
			telemetry.Username(req.Username),
			telemetry.FileName(req.FileName),
		))
	defer span.End()

	if err := wire.Write(c.coord, req); err != nil {
		err = fmt.Errorf("write to coordinator: %w", err)
		telemetry.RecordError(ctx, err)
		return nil, err
	}
	resp, err := wire.Read(c.coord)
	if err != nil {
		err = fmt.Errorf("read from coordinator: %w", err)
		telemetry.RecordError(ctx, err)
		return nil, err
	}
	if resp.IsError() {
		telemetry.RecordError(ctx, resp.Err())
	}
	return resp, nil
}

// storageConn returns a cached connection to addr, dialing one if this
// is the first request to that endpoint this session.
func (c *Client) storageConn(addr string) (net.Conn, error) {
	c.ssMu.Lock()
	defer c.ssMu.Unlock()

	if conn, ok := c.ssConns[addr]; ok {
		return conn, nil
	}
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial storage node %s: %w", addr, err)
	}
	c.ssConns[addr] = conn
	return conn, nil
}

func (c *Client) callStorage(ctx context.Context, addr string, req *wire.Message) (*wire.Message, error) {
	ctx, span := telemetry.StartSpan(ctx, telemetry.SpanClientStorage,
		trace.WithAttributes(
			telemetry.RequestType(string(req.Type)),
			telemetry.Username(req.Username),
			telemetry.FileName(req.FileName),
			telemetry.NodeAddress(addr),
		))
	defer span.End()

	conn, err := c.storageConn(addr)
	if err != nil {
		telemetry.RecordError(ctx, err)
		return nil, err
	}
	if err := wire.Write(conn, req); err != nil {
		err = fmt.Errorf("write to storage node %s: %w", addr, err)
		telemetry.RecordError(ctx, err)
		return nil, err
	}
	resp, err := wire.Read(conn)
	if err != nil {
		err = fmt.Errorf("read from storage node %s: %w", addr, err)
		telemetry.RecordError(ctx, err)
		return nil, err
	}
	if resp.IsError() {
		telemetry.RecordError(ctx, resp.Err())
	}
	return resp, nil
}

// Register implements REGISTER_CLIENT: reserves the client's username.
func (c *Client) Register(ctx context.Context) error {
	resp, err := c.callCoordinator(ctx, wire.NewRequest(wire.TypeRegisterClient, c.username, "", nil))
	if err != nil {
		return err
	}
	return resp.Err()
}

// Endpoints is the redirect information returned by CREATE/CREATEFOLDER/
// LOOKUP/DELETE: the primary (and, where applicable, replica) storage
// node to contact for content I/O.
type Endpoints struct {
	Primary wire.Endpoint
	Replica *wire.Endpoint
}

// Create implements CREATE(name, user).
func (c *Client) Create(ctx context.Context, name string) (*Endpoints, error) {
	return c.create(ctx, wire.TypeCreate, name)
}

// CreateFolder implements CREATEFOLDER(name, user).
func (c *Client) CreateFolder(ctx context.Context, name string) error {
	_, err := c.create(ctx, wire.TypeCreateFolder, name)
	return err
}

func (c *Client) create(ctx context.Context, t wire.Type, name string) (*Endpoints, error) {
	resp, err := c.callCoordinator(ctx, wire.NewRequest(t, c.username, name, nil))
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, resp.Err()
	}
	rp, err := wire.ParseRedirectPayload(resp.Payload)
	if err != nil {
		return nil, err
	}
	return &Endpoints{Primary: rp.Primary, Replica: rp.Replica}, nil
}

// Lookup implements LOOKUP(name, user, perm). perm must be "read" or
// "write".
func (c *Client) Lookup(ctx context.Context, name, perm string) (*Endpoints, error) {
	resp, err := c.callCoordinator(ctx, wire.NewRequest(wire.TypeLookup, c.username, name, []byte(perm)))
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, resp.Err()
	}
	rp, err := wire.ParseRedirectPayload(resp.Payload)
	if err != nil {
		return nil, err
	}
	return &Endpoints{Primary: rp.Primary, Replica: rp.Replica}, nil
}

// Delete implements DELETE(name, user): the coordinator drops the
// catalog row and returns the storage endpoints holding the file's
// bytes; the caller (this method) is responsible for telling each one
// to free them, per spec.md §4.1.
func (c *Client) Delete(ctx context.Context, name string) error {
	resp, err := c.callCoordinator(ctx, wire.NewRequest(wire.TypeDelete, c.username, name, nil))
	if err != nil {
		return err
	}
	if resp.IsError() {
		return resp.Err()
	}
	if len(resp.Payload) == 0 {
		return nil
	}
	rp, err := wire.ParseRedirectPayload(resp.Payload)
	if err != nil {
		return err
	}
	if _, err := c.callStorage(ctx, rp.Primary.String(), wire.NewRequest(wire.TypeDelete, c.username, name, nil)); err != nil {
		return err
	}
	if rp.Replica != nil {
		if _, err := c.callStorage(ctx, rp.Replica.String(), wire.NewRequest(wire.TypeDelete, c.username, name, nil)); err != nil {
			return err
		}
	}
	return nil
}

// View implements VIEW(user, flags). flags is passed through verbatim
// ("all", "long", both, or neither).
func (c *Client) View(ctx context.Context, flags ...string) (string, error) {
	resp, err := c.callCoordinator(ctx, wire.NewRequest(wire.TypeView, c.username, "", []byte(strings.Join(flags, " "))))
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		return "", resp.Err()
	}
	return string(resp.Payload), nil
}

// Read fetches name's current full content from its primary storage
// node.
func (c *Client) Read(ctx context.Context, name string, ep Endpoints) ([]byte, error) {
	resp, err := c.callStorage(ctx, ep.Primary.String(), wire.NewRequest(wire.TypeRead, c.username, name, nil))
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, resp.Err()
	}
	return resp.Payload, nil
}

// EditSentence runs the full two-phase write protocol for replacing one
// sentence of name's content (spec.md §4.3):
//  1. WRITE_LOCK(name, sentenceIndex) against the coordinator.
//  2. READ the current content from the primary storage node, split it
//     into sentences, and replace the one at sentenceIndex.
//  3. WRITE the reassembled content back to the primary storage node.
//  4. WRITE_COMMIT(name, sentenceIndex), forwarding the counters the
//     storage node's WRITE response reported.
func (c *Client) EditSentence(ctx context.Context, name string, sentenceIndex int, replacement string) error {
	lockResp, err := c.callCoordinator(ctx, wire.NewRequest(wire.TypeWriteLock, c.username, name, []byte(strconv.Itoa(sentenceIndex))))
	if err != nil {
		return err
	}
	if lockResp.IsError() {
		return lockResp.Err()
	}
	rp, err := wire.ParseRedirectPayload(lockResp.Payload)
	if err != nil {
		return err
	}

	content, err := c.Read(ctx, name, Endpoints{Primary: rp.Primary})
	if err != nil && protoerr.CodeOf(err) != protoerr.FileNotFound {
		return err
	}
	// A brand-new file has no bytes on the storage node yet (CREATE only
	// inserts the catalog row); its first edit establishes sentence 0.
	sentences := sentence.Split(string(content))
	if err != nil && len(sentences) == 0 && sentenceIndex == 0 {
		sentences = []string{replacement}
	} else {
		sentences, err = sentence.Replace(sentences, sentenceIndex, replacement)
		if err != nil {
			return err
		}
	}
	newContent := []byte(sentence.Join(sentences))

	writeResp, err := c.callStorage(ctx, rp.Primary.String(), wire.NewRequest(wire.TypeWrite, c.username, name, newContent))
	if err != nil {
		return err
	}
	if writeResp.IsError() {
		return writeResp.Err()
	}

	commitPayload := fmt.Sprintf("%d|%s", sentenceIndex, string(writeResp.Payload))
	commitResp, err := c.callCoordinator(ctx, wire.NewRequest(wire.TypeCommit, c.username, name, []byte(commitPayload)))
	if err != nil {
		return err
	}
	return commitResp.Err()
}

package client

import (
	"context"
	"fmt"
	"strconv"

	"github.com/netdoc/netdoc/pkg/wire"
)

// RegisterStorageNode implements REGISTER_SS: announces a storage node's
// advertised "host:port" address to the coordinator and returns its
// assigned id. Used by the netdoc-storaged daemon at startup, over the
// same Client connection type clients use — the wire protocol does not
// distinguish peer kinds beyond the message type tag.
func (c *Client) RegisterStorageNode(ctx context.Context, address string) (uint64, error) {
	resp, err := c.callCoordinator(ctx, wire.NewRequest(wire.TypeRegisterSS, "", address, nil))
	if err != nil {
		return 0, err
	}
	if resp.IsError() {
		return 0, resp.Err()
	}
	id, err := strconv.ParseUint(string(resp.Payload), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed REGISTER_SS response %q: %w", resp.Payload, err)
	}
	return id, nil
}

// Heartbeat implements HEARTBEAT(nodeID): refreshes the coordinator's
// liveness timestamp for this node.
func (c *Client) Heartbeat(ctx context.Context, nodeID uint64) error {
	resp, err := c.callCoordinator(ctx, wire.NewRequest(wire.TypeHeartbeat, "", "", []byte(strconv.FormatUint(nodeID, 10))))
	if err != nil {
		return err
	}
	return resp.Err()
}

package client

import (
	"context"

	"github.com/netdoc/netdoc/pkg/wire"
)

// Checkpoint implements CHECKPOINT(name, user, tag): the coordinator
// authorizes and records the checkpoint row, then this method drives the
// storage node to actually snapshot the bytes (spec.md §4.5).
func (c *Client) Checkpoint(ctx context.Context, name, tag string) error {
	resp, err := c.callCoordinator(ctx, wire.NewRequest(wire.TypeCheckpoint, c.username, name, []byte(tag)))
	if err != nil {
		return err
	}
	if resp.IsError() {
		return resp.Err()
	}
	rp, err := wire.ParseRedirectPayload(resp.Payload)
	if err != nil {
		return err
	}
	ssResp, err := c.callStorage(ctx, rp.Primary.String(), wire.NewRequest(wire.TypeCheckpoint, c.username, name, []byte(tag)))
	if err != nil {
		return err
	}
	return ssResp.Err()
}

// ListCheckpoints implements LISTCHECKPOINTS(name, user): a tab-separated
// listing served entirely from the coordinator's catalog, no storage-node
// round trip required.
func (c *Client) ListCheckpoints(ctx context.Context, name string) (string, error) {
	resp, err := c.callCoordinator(ctx, wire.NewRequest(wire.TypeListCheckpoints, c.username, name, nil))
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		return "", resp.Err()
	}
	return string(resp.Payload), nil
}

// Revert implements REVERT(name, user, tag): authorize against the
// coordinator, then tell the storage node to restore the checkpoint.
func (c *Client) Revert(ctx context.Context, name, tag string) error {
	resp, err := c.callCoordinator(ctx, wire.NewRequest(wire.TypeRevert, c.username, name, []byte(tag)))
	if err != nil {
		return err
	}
	if resp.IsError() {
		return resp.Err()
	}
	rp, err := wire.ParseRedirectPayload(resp.Payload)
	if err != nil {
		return err
	}
	ssResp, err := c.callStorage(ctx, rp.Primary.String(), wire.NewRequest(wire.TypeRevert, c.username, name, []byte(tag)))
	if err != nil {
		return err
	}
	return ssResp.Err()
}

// Undo implements UNDO(name, user): authorize against the coordinator,
// then tell the storage node to pop its most recent undo entry.
func (c *Client) Undo(ctx context.Context, name string) error {
	resp, err := c.callCoordinator(ctx, wire.NewRequest(wire.TypeUndo, c.username, name, nil))
	if err != nil {
		return err
	}
	if resp.IsError() {
		return resp.Err()
	}
	rp, err := wire.ParseRedirectPayload(resp.Payload)
	if err != nil {
		return err
	}
	ssResp, err := c.callStorage(ctx, rp.Primary.String(), wire.NewRequest(wire.TypeUndo, c.username, name, nil))
	if err != nil {
		return err
	}
	return ssResp.Err()
}

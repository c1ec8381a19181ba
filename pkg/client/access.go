package client

import (
	"context"

	"github.com/netdoc/netdoc/pkg/wire"
)

// AddAccess implements ADDACCESS(file, owner, targetUser, perms). perm
// must be wire.PermRead, wire.PermWrite, or wire.PermReadWrite.
func (c *Client) AddAccess(ctx context.Context, name, targetUser string, perm wire.Perm) error {
	payload := wire.AccessPayload{TargetUser: targetUser, Perms: perm}
	resp, err := c.callCoordinator(ctx, wire.NewRequest(wire.TypeAddAccess, c.username, name, payload.Encode()))
	if err != nil {
		return err
	}
	return resp.Err()
}

// RemAccess implements REMACCESS(file, owner, targetUser).
func (c *Client) RemAccess(ctx context.Context, name, targetUser string) error {
	resp, err := c.callCoordinator(ctx, wire.NewRequest(wire.TypeRemAccess, c.username, name, []byte(targetUser)))
	if err != nil {
		return err
	}
	return resp.Err()
}

// RequestAccess implements REQUESTACCESS(name, user, perm). perm must be
// "read" or "write".
func (c *Client) RequestAccess(ctx context.Context, name, perm string) error {
	resp, err := c.callCoordinator(ctx, wire.NewRequest(wire.TypeRequestAccess, c.username, name, []byte(perm)))
	if err != nil {
		return err
	}
	return resp.Err()
}

// ViewRequests implements VIEWREQUESTS(owner): the pending access
// requests against every file the caller owns, as a tab-separated
// listing.
func (c *Client) ViewRequests(ctx context.Context) (string, error) {
	resp, err := c.callCoordinator(ctx, wire.NewRequest(wire.TypeViewRequests, c.username, "", nil))
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		return "", resp.Err()
	}
	return string(resp.Payload), nil
}

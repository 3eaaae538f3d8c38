package neynar

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
)

type followPayload struct {
	SignerUUID string  `json:"signer_uuid"`
	TargetFIDs []int64 `json:"target_fids"`
}

type apiError struct {
	Message string `json:"message"`
}

// FollowUser follows the target FID on behalf of the signer. A 400/409
// response saying the relationship already exists counts as success, so
// re-running a replay is safe. Failures are logged and reported as false
// rather than returned as errors; the caller moves on to the next entry.
func (c *Client) FollowUser(ctx context.Context, targetFID int64, dryRun bool) bool {
	if dryRun {
		c.logger.Info("[dry run] would follow user", "fid", targetFID)
		return true
	}
	return c.mutateFollow(ctx, "POST", targetFID, []string{"already following", "already followed"})
}

// UnfollowUser removes the follow of the target FID. A 400/409 response
// saying the relationship doesn't exist counts as success.
func (c *Client) UnfollowUser(ctx context.Context, targetFID int64, dryRun bool) bool {
	if dryRun {
		c.logger.Info("[dry run] would unfollow user", "fid", targetFID)
		return true
	}
	return c.mutateFollow(ctx, "DELETE", targetFID, []string{"not following", "not followed"})
}

func (c *Client) mutateFollow(ctx context.Context, method string, targetFID int64, benign []string) bool {
	b, err := json.Marshal(followPayload{
		SignerUUID: c.signerUUID,
		TargetFIDs: []int64{targetFID},
	})
	if err != nil {
		c.logger.Error("error marshaling follow payload", "fid", targetFID, "error", err)
		return false
	}

	req, err := c.newRequest(ctx, method, "/user/follow", bytes.NewReader(b))
	if err != nil {
		c.logger.Error("error creating follow request", "fid", targetFID, "error", err)
		return false
	}

	resp, err := c.cli.Do(req)
	if err != nil {
		c.logger.Error("error mutating follow", "method", method, "fid", targetFID, "error", err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		io.Copy(io.Discard, resp.Body)
		return true
	}

	if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusConflict {
		var apiErr apiError
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil {
			msg := strings.ToLower(apiErr.Message)
			for _, phrase := range benign {
				if strings.Contains(msg, phrase) {
					c.logger.Info("relationship already in desired state", "fid", targetFID, "message", apiErr.Message)
					return true
				}
			}
		}
		c.logger.Error("follow mutation rejected", "method", method, "fid", targetFID, "status", resp.StatusCode)
		return false
	}

	io.Copy(io.Discard, resp.Body)
	c.logger.Error("follow mutation returned non-200 response code", "method", method, "fid", targetFID, "status", resp.StatusCode)
	return false
}

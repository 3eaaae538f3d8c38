package neynar

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
)

// User is one account in a following relationship. Username and
// DisplayName may be empty when the remote omits them.
type User struct {
	FID            int64  `json:"fid"`
	Username       string `json:"username"`
	DisplayName    string `json:"display_name"`
	PfpURL         string `json:"pfp_url"`
	CustodyAddress string `json:"custody_address"`
}

type followingResponse struct {
	Users []followingItem `json:"users"`
	Next  struct {
		Cursor string `json:"cursor"`
	} `json:"next"`
}

type followingItem struct {
	User *User `json:"user"`
}

// GetFollowing returns every account the given FID follows, in the order
// the API pages them out. Any transport or non-200 failure aborts the
// whole fetch; a partial list is never returned.
func (c *Client) GetFollowing(ctx context.Context, fid int64) ([]User, error) {
	var users []User
	var cursor string
	pages := 0

	for {
		c.pageLimiter.Take()

		params := url.Values{}
		params.Set("fid", strconv.FormatInt(fid, 10))
		params.Set("limit", "100")
		if cursor != "" {
			params.Set("cursor", cursor)
		}

		req, err := c.newRequest(ctx, "GET", "/following/?"+params.Encode(), nil)
		if err != nil {
			return nil, err
		}

		resp, err := c.cli.Do(req)
		if err != nil {
			return nil, fmt.Errorf("error fetching following list: %w", err)
		}

		if resp.StatusCode != http.StatusOK {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			return nil, fmt.Errorf("following list returned non-200 response code: %d", resp.StatusCode)
		}

		var page followingResponse
		if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
			resp.Body.Close()
			return nil, fmt.Errorf("error decoding following response: %w", err)
		}
		resp.Body.Close()

		for _, item := range page.Users {
			if item.User == nil {
				continue
			}
			users = append(users, *item.User)
		}

		pages++
		c.logger.Info("fetched following page", "page", pages, "users", len(page.Users))

		if page.Next.Cursor == "" {
			break
		}
		cursor = page.Next.Cursor
	}

	c.logger.Info("fetched full following list", "fid", fid, "total", len(users))

	return users, nil
}

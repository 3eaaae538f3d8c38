package castsweep

import (
	"context"
	"fmt"
	"io"
	"os"
)

// RunCheck verifies the configured credentials end to end: it resolves
// the caller's own FID and samples the following list.
func (c *Castsweep) RunCheck(ctx context.Context, out io.Writer) error {
	if out == nil {
		out = os.Stdout
	}

	fmt.Fprintln(out, "Testing Neynar API connection...")

	myFID, err := c.client.GetMyFID(ctx)
	if err != nil {
		return fmt.Errorf("could not retrieve your fid: %w", err)
	}
	fmt.Fprintf(out, "Successfully retrieved your FID: %d\n", myFID)

	following, err := c.client.GetFollowing(ctx, myFID)
	if err != nil {
		fmt.Fprintf(out, "Warning: could not retrieve following list: %v\n", err)
		return nil
	}
	fmt.Fprintf(out, "Successfully retrieved following list (%d users)\n", len(following))

	if len(following) > 0 {
		fmt.Fprintln(out, "Sample users you're following:")
		for i := 0; i < len(following) && i < 3; i++ {
			u := following[i]
			fmt.Fprintf(out, "  - @%s (%s) - FID: %d\n", u.Username, u.DisplayName, u.FID)
		}
	}

	fmt.Fprintln(out, "All checks passed, your api credentials are working")

	return nil
}

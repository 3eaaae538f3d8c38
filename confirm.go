package castsweep

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// confirmAction prompts for a y/n answer and keeps asking until it gets
// one. EOF on the input counts as a decline.
func confirmAction(in io.Reader, out io.Writer, message string) bool {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprintf(out, "%s (y/n): ", message)
		if !scanner.Scan() {
			return false
		}
		switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
		case "y", "yes":
			return true
		case "n", "no":
			return false
		default:
			fmt.Fprintln(out, "Please enter 'y' or 'n'")
		}
	}
}

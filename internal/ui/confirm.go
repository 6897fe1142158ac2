package ui

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Confirm shows a warning box and asks a yes/no question on out, reading
// the answer from in. Anything other than "y" or "yes" is a no.
func Confirm(in io.Reader, out io.Writer, title, question string, details ...Detail) bool {
	box := NewWarningResult(title, details...).Render()
	_, _ = fmt.Fprintln(out, box)
	_, _ = fmt.Fprintf(out, "%s [y/N]: ", question)

	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && answer == "" {
		_, _ = fmt.Fprintln(out)
		return false
	}

	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

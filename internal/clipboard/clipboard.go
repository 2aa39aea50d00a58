// Package clipboard defines the clipboard used to copy image URLs.
package clipboard

import (
	"errors"
	"io"
	"strings"
)

// ErrUnsupported is returned when no clipboard backend is available.
var ErrUnsupported = errors.New("clipboard not supported on this system")

// Clipboard receives text written by the TUI and the CLI.
type Clipboard interface {
	// Write replaces the clipboard contents with everything read from r.
	Write(r io.Reader) error

	// IsSupported reports whether Write can succeed on this system.
	IsSupported() bool
}

// WriteText copies s to c.
func WriteText(c Clipboard, s string) error {
	if !c.IsSupported() {
		return ErrUnsupported
	}
	return c.Write(strings.NewReader(s))
}

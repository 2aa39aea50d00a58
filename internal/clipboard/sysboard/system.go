// Package sysboard writes to the system clipboard. It uses the native
// clipboard through golang.design/x/clipboard and falls back to pbcopy, xclip
// or xsel when the native backend cannot be initialised (for example in a
// build without cgo).
package sysboard

import (
	"fmt"
	"io"
	"os/exec"
	"runtime"
	"sync"

	"golang.design/x/clipboard"
)

// SystemClipboard implements clipboard.Clipboard for the host system
type SystemClipboard struct {
	once    sync.Once
	initErr error
}

// New creates a new SystemClipboard instance
func New() *SystemClipboard {
	return &SystemClipboard{}
}

func (s *SystemClipboard) native() bool {
	s.once.Do(func() {
		s.initErr = clipboard.Init()
	})
	return s.initErr == nil
}

// IsSupported returns true if clipboard writes are possible on this system
func (s *SystemClipboard) IsSupported() bool {
	if s.native() {
		return true
	}
	_, _, ok := fallbackCommand()
	return ok
}

// Write copies everything read from r to the clipboard
func (s *SystemClipboard) Write(r io.Reader) error {
	if s.native() {
		data, err := io.ReadAll(r)
		if err != nil {
			return fmt.Errorf("failed to read clipboard content: %w", err)
		}
		clipboard.Write(clipboard.FmtText, data)
		return nil
	}

	name, args, ok := fallbackCommand()
	if !ok {
		return fmt.Errorf("clipboard operations not supported on %s: %w", runtime.GOOS, s.initErr)
	}

	cmd := exec.Command(name, args...)
	cmd.Stdin = r
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to run %s: %w", name, err)
	}
	return nil
}

// fallbackCommand picks the first available clipboard command
func fallbackCommand() (string, []string, bool) {
	var candidates [][]string
	switch runtime.GOOS {
	case "darwin":
		candidates = [][]string{{"pbcopy"}}
	case "linux", "freebsd", "openbsd":
		candidates = [][]string{
			{"xclip", "-selection", "clipboard"},
			{"xsel", "--clipboard", "--input"},
			{"wl-copy"},
		}
	}

	for _, c := range candidates {
		if _, err := exec.LookPath(c[0]); err == nil {
			return c[0], c[1:], true
		}
	}
	return "", nil, false
}

// Package mockboard provides a mock clipboard implementation for testing.
package mockboard

import (
	"io"
	"sync"
)

// MockClipboard implements clipboard.Clipboard in memory
type MockClipboard struct {
	// Fail, when set, is returned by Write instead of storing anything.
	Fail error

	mu   sync.Mutex
	data []byte
}

// New creates a new MockClipboard instance
func New() *MockClipboard {
	return &MockClipboard{}
}

// Write stores everything read from r
func (m *MockClipboard) Write(r io.Reader) error {
	if m.Fail != nil {
		return m.Fail
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.data = data
	m.mu.Unlock()
	return nil
}

// Data returns the current clipboard contents
func (m *MockClipboard) Data() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data
}

// IsSupported always returns true for the mock clipboard
func (m *MockClipboard) IsSupported() bool {
	return true
}

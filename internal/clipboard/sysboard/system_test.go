package sysboard

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFallbackCommand(t *testing.T) {
	name, args, ok := fallbackCommand()
	if !ok {
		assert.Empty(t, name)
		assert.Nil(t, args)
		return
	}

	switch runtime.GOOS {
	case "darwin":
		assert.Equal(t, "pbcopy", name)
	default:
		assert.Contains(t, []string{"xclip", "xsel", "wl-copy"}, name)
	}
}

func TestIsSupportedIsStable(t *testing.T) {
	board := New()
	assert.Equal(t, board.IsSupported(), board.IsSupported())
}

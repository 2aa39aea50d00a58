package clipboard_test

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yiblet/pix/internal/clipboard"
	"github.com/yiblet/pix/internal/clipboard/mockboard"
)

type unsupported struct{}

func (unsupported) Write(io.Reader) error { return nil }
func (unsupported) IsSupported() bool    { return false }

func TestWriteText(t *testing.T) {
	board := mockboard.New()

	require.NoError(t, clipboard.WriteText(board, "https://pixabay.com/get/1_1280.jpg"))
	assert.Equal(t, "https://pixabay.com/get/1_1280.jpg", string(board.Data()))
}

func TestWriteTextOverwrites(t *testing.T) {
	board := mockboard.New()

	require.NoError(t, clipboard.WriteText(board, "first"))
	require.NoError(t, clipboard.WriteText(board, "second"))
	assert.Equal(t, "second", string(board.Data()))
}

func TestWriteTextUnsupported(t *testing.T) {
	err := clipboard.WriteText(unsupported{}, "x")
	assert.ErrorIs(t, err, clipboard.ErrUnsupported)
}

func TestMockFailure(t *testing.T) {
	board := mockboard.New()
	board.Fail = assert.AnError

	err := clipboard.WriteText(board, "x")
	assert.ErrorIs(t, err, assert.AnError)
	assert.Empty(t, board.Data())
}

package clipboard

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubClipboard(t *testing.T, unsupported bool, write func(string) error) {
	t.Helper()
	oldWrite, oldUnsupported := clipboardWriteAll, clipboardUnsupported
	t.Cleanup(func() {
		clipboardWriteAll, clipboardUnsupported = oldWrite, oldUnsupported
	})

	clipboardWriteAll = write
	clipboardUnsupported = func() bool { return unsupported }
}

func TestSystem_WriteAll(t *testing.T) {
	var got string
	stubClipboard(t, false, func(s string) error {
		got = s
		return nil
	})

	require.NoError(t, System{}.WriteAll("Dear Sam"))
	assert.Equal(t, "Dear Sam", got)
	assert.True(t, Available())
}

func TestSystem_Unsupported(t *testing.T) {
	called := false
	stubClipboard(t, true, func(string) error {
		called = true
		return nil
	})

	err := System{}.WriteAll("Dear Sam")
	assert.ErrorIs(t, err, ErrUnsupported)
	assert.False(t, called, "utility should not be invoked")

	assert.False(t, Available())
}

func TestSystem_WriteError(t *testing.T) {
	boom := errors.New("exec: xclip: not found")
	stubClipboard(t, false, func(string) error { return boom })

	assert.ErrorIs(t, System{}.WriteAll("x"), boom)
}

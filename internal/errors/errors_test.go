package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapPreservesSentinel(t *testing.T) {
	err := Wrapf(ErrRecursionDepth, "template %q", "Loop")

	assert.Contains(t, err.Error(), "Loop")
	assert.Contains(t, err.Error(), "expansion depth exceeded")
	assert.True(t, IsRecursionDepth(err))
	assert.False(t, IsRecursionDepth(nil))
	assert.False(t, IsRecursionDepth(New("other")))
}

func TestHintsSurviveWrapping(t *testing.T) {
	base := WithHint(ErrRecursionDepth, "raise [conversion].max_depth")
	wrapped := Wrap(base, "expanding attributes")

	hints := GetAllHints(wrapped)
	require.Len(t, hints, 1)
	assert.Equal(t, "raise [conversion].max_depth", hints[0])
}

func TestNewInvalidConfigError(t *testing.T) {
	err := NewInvalidConfigError("%s: missing [conversion]", "mwconv.toml")
	require.Error(t, err)
	assert.True(t, Is(err, ErrInvalidConfig))
	assert.Contains(t, err.Error(), "mwconv.toml: missing [conversion]")
}

func TestStdlibWrappingInterop(t *testing.T) {
	err := fmt.Errorf("outer: %w", ErrUnknownFormat)
	assert.True(t, Is(err, ErrUnknownFormat))
}

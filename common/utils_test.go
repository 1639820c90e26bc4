package common

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafeSubtract(t *testing.T) {
	assert.Equal(t, uint64(35), SafeSubtract(uint64(85), uint64(50), uint64(200)))
	assert.Equal(t, uint64(0), SafeSubtract(uint64(85), uint64(85), uint64(200)))
	assert.Equal(t, uint64(200), SafeSubtract(uint64(185), uint64(385), uint64(200)))
	assert.Equal(t, uint64(0), SafeSubtract(uint64(893), uint64(17833), uint64(0)))
}

func TestIsValidURL(t *testing.T) {
	assert.True(t, IsValidURL("http://localhost:8545"))
	assert.True(t, IsValidURL("tcp://127.0.0.1:26657"))
	assert.False(t, IsValidURL("localhost"))
	assert.False(t, IsValidURL(""))
}

func TestDecodeHex(t *testing.T) {
	bytes, err := DecodeHex("0x0aff")
	require.NoError(t, err)
	require.Equal(t, []byte{0x0a, 0xff}, bytes)

	bytes, err = DecodeHex("0AFF")
	require.NoError(t, err)
	require.Equal(t, []byte{0x0a, 0xff}, bytes)

	_, err = DecodeHex("0xzz")
	require.Error(t, err)
}

func TestIsContextDoneErr(t *testing.T) {
	require.True(t, IsContextDoneErr(context.Canceled))
	require.True(t, IsContextDoneErr(fmt.Errorf("wrapped: %w", context.DeadlineExceeded)))
	require.False(t, IsContextDoneErr(errors.New("other")))
}

func TestSplitToChunks(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		require.Empty(t, SplitToChunks([]int{}, 3))
	})

	t.Run("uneven", func(t *testing.T) {
		chunks := SplitToChunks([]int{1, 2, 3, 4, 5, 6, 7}, 3)

		require.Equal(t, [][]int{{1, 2, 3}, {4, 5, 6}, {7}}, chunks)
	})

	t.Run("non positive size returns single chunk", func(t *testing.T) {
		chunks := SplitToChunks([]int{1, 2}, 0)

		require.Equal(t, [][]int{{1, 2}}, chunks)
	})
}

package options

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type readerConfig struct {
	windowSize int
	byteOrder  string
	calls      []string
}

func withWindowSize(n int) Option[*readerConfig] {
	return New(func(c *readerConfig) error {
		if n <= 0 {
			return errors.New("window size must be positive")
		}
		c.windowSize = n
		c.calls = append(c.calls, "window")

		return nil
	})
}

func withByteOrder(order string) Option[*readerConfig] {
	return NoError(func(c *readerConfig) {
		c.byteOrder = order
		c.calls = append(c.calls, "order")
	})
}

func TestApply(t *testing.T) {
	t.Run("applies options in order", func(t *testing.T) {
		cfg := &readerConfig{}
		err := Apply(cfg, withByteOrder("big"), withWindowSize(64))
		require.NoError(t, err)
		require.Equal(t, 64, cfg.windowSize)
		require.Equal(t, "big", cfg.byteOrder)
		require.Equal(t, []string{"order", "window"}, cfg.calls)
	})

	t.Run("stops at first error", func(t *testing.T) {
		cfg := &readerConfig{}
		err := Apply(cfg, withWindowSize(8), withWindowSize(-1), withByteOrder("little"))
		require.Error(t, err)
		require.Equal(t, 8, cfg.windowSize)
		require.Empty(t, cfg.byteOrder)
	})

	t.Run("skips nil options", func(t *testing.T) {
		cfg := &readerConfig{}
		require.NoError(t, Apply(cfg, nil, withByteOrder("little")))
		require.Equal(t, "little", cfg.byteOrder)
	})

	t.Run("no options", func(t *testing.T) {
		cfg := &readerConfig{}
		require.NoError(t, Apply(cfg))
		require.Zero(t, cfg.windowSize)
	})
}

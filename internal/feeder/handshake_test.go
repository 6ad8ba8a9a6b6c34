package feeder

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestHandshakeArriveCountsDown(t *testing.T) {
	h, err := NewHandshake("test-run-handshake")
	require.NoError(t, err)
	defer h.Close()

	require.NoError(t, h.Init(3))
	remaining, err := h.Remaining()
	require.NoError(t, err)
	require.Equal(t, uint64(3), remaining)

	require.NoError(t, h.Arrive())
	require.NoError(t, h.Arrive())
	remaining, err = h.Remaining()
	require.NoError(t, err)
	require.Equal(t, uint64(1), remaining)

	require.NoError(t, h.Arrive())
	remaining, err = h.Remaining()
	require.NoError(t, err)
	require.Equal(t, uint64(0), remaining)

	// arriving past zero does not underflow
	require.NoError(t, h.Arrive())
	remaining, err = h.Remaining()
	require.NoError(t, err)
	require.Equal(t, uint64(0), remaining)
}

func TestHandshakeWaitReturnsOnceCountdownHitsZero(t *testing.T) {
	h, err := NewHandshake("test-run-handshake-wait")
	require.NoError(t, err)
	defer h.Close()
	require.NoError(t, h.Init(1))

	go func() {
		time.Sleep(10 * time.Millisecond)
		_ = h.Arrive()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, h.Wait(ctx))
}

func TestHandshakeWaitRespectsContextCancellation(t *testing.T) {
	h, err := NewHandshake("test-run-handshake-wait-timeout")
	require.NoError(t, err)
	defer h.Close()
	require.NoError(t, h.Init(1))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	require.Error(t, h.Wait(ctx))
}

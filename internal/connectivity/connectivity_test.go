package connectivity_test

import (
	"context"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"codeberg.org/mutker/wattwatch/internal/connectivity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetNotifiesOnTransitionOnly(t *testing.T) {
	m := connectivity.New(true)

	var changes []bool
	m.OnChange(func(online bool) { changes = append(changes, online) })

	m.Set(true)
	m.Set(false)
	m.Set(false)
	m.Set(true)

	assert.Equal(t, []bool{false, true}, changes)
	assert.True(t, m.Online())
}

func TestCheck(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	m := connectivity.New(false)
	assert.True(t, m.Check(context.Background(), ln.Addr().String()))
	assert.True(t, m.Online())

	closed, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := closed.Addr().String()
	require.NoError(t, closed.Close())

	assert.False(t, m.Check(context.Background(), addr))
	assert.False(t, m.Online())
}

func TestProbeFollowsTarget(t *testing.T) {
	var up atomic.Bool
	dial := func(_ context.Context, _, address string) (net.Conn, error) {
		if !up.Load() {
			return nil, &net.OpError{Op: "dial", Net: "tcp", Err: assert.AnError}
		}
		client, server := net.Pipe()
		_ = server.Close()
		return client, nil
	}

	m := connectivity.New(true, connectivity.WithDialer(dial))
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- m.Probe(ctx, func() string { return "https://meter.example/api" }, 5*time.Millisecond)
	}()

	assert.Eventually(t, func() bool { return !m.Online() }, time.Second, 5*time.Millisecond)
	up.Store(true)
	assert.Eventually(t, m.Online, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("probe did not stop")
	}
}

func TestProbeRejectsNonPositiveInterval(t *testing.T) {
	err := connectivity.New(true).Probe(context.Background(), func() string { return "http://x" }, 0)
	assert.Error(t, err)
}

func TestHostPort(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://meter.example/api/EnergyMeter", "meter.example:443"},
		{"http://meter.example/api", "meter.example:80"},
		{"http://127.0.0.1:8080/api", "127.0.0.1:8080"},
	}
	for _, tt := range tests {
		got, err := connectivity.HostPort(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := connectivity.HostPort("/relative/only")
	assert.Error(t, err)
}

func TestStatic(t *testing.T) {
	assert.True(t, connectivity.Static(true).Online())
	assert.False(t, connectivity.Static(false).Online())
}

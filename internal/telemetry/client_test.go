package telemetry_test

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"codeberg.org/mutker/wattwatch/internal/connectivity"
	"codeberg.org/mutker/wattwatch/internal/errors"
	"codeberg.org/mutker/wattwatch/internal/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, h http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchLatest(t *testing.T) {
	var gotPath, gotQuery, gotAccept string
	srv := serve(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query().Get("deviceId")
		gotAccept = r.Header.Get("Accept")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"voltage":230.5,"current":"1.25","power":287.9,"frequency":50.01,"powerFactor":null,"timestamp":"2025-01-01T10:00:00Z"}`))
	})

	c := telemetry.NewClient(telemetry.StaticURL(srv.URL + "/api/EnergyMeter/"))
	r, err := c.FetchLatest(context.Background(), "ESP 01&x")
	require.NoError(t, err)

	assert.Equal(t, "/api/EnergyMeter/readings/latest", gotPath)
	assert.Equal(t, "ESP 01&x", gotQuery)
	assert.Equal(t, "application/json", gotAccept)

	v, ok := r.Voltage.Get()
	assert.True(t, ok)
	assert.InDelta(t, 230.5, v, 1e-9)
	assert.InDelta(t, 1.25, r.Current.Float(), 1e-9)
	assert.InDelta(t, 287.9, r.Power.Float(), 1e-9)
	assert.False(t, r.PowerFactor.Available())
	assert.Equal(t, time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC), r.Timestamp.UTC())
}

func TestFetchLatestReadsBaseURLPerCall(t *testing.T) {
	var hitsA, hitsB atomic.Int32
	a := serve(t, func(w http.ResponseWriter, _ *http.Request) {
		hitsA.Add(1)
		_, _ = w.Write([]byte(`{}`))
	})
	b := serve(t, func(w http.ResponseWriter, _ *http.Request) {
		hitsB.Add(1)
		_, _ = w.Write([]byte(`{}`))
	})

	var base atomic.Value
	base.Store(a.URL)
	c := telemetry.NewClient(urlFunc(func() string { return base.Load().(string) }))

	_, err := c.FetchLatest(context.Background(), "dev")
	require.NoError(t, err)
	base.Store(b.URL)
	_, err = c.FetchLatest(context.Background(), "dev")
	require.NoError(t, err)

	assert.Equal(t, int32(1), hitsA.Load())
	assert.Equal(t, int32(1), hitsB.Load())
}

type urlFunc func() string

func (f urlFunc) APIBaseURL() string { return f() }

func TestFetchLatestHTTPError(t *testing.T) {
	srv := serve(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	})

	_, err := telemetry.NewClient(telemetry.StaticURL(srv.URL)).FetchLatest(context.Background(), "dev")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, telemetry.ErrHTTP))

	status, ok := telemetry.HTTPStatus(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.True(t, telemetry.IsTransient(err))
}

func TestFetchLatestTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := serve(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	c := telemetry.NewClient(telemetry.StaticURL(srv.URL), telemetry.WithTimeout(20*time.Millisecond))
	_, err := c.FetchLatest(context.Background(), "dev")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, telemetry.ErrTimeout))
	assert.True(t, telemetry.IsTransient(err))
}

func TestFetchLatestCanceled(t *testing.T) {
	srv := serve(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := telemetry.NewClient(telemetry.StaticURL(srv.URL)).FetchLatest(ctx, "dev")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, telemetry.ErrCanceled))
	assert.False(t, telemetry.IsTransient(err))
}

func TestFetchLatestOfflineSkipsNetwork(t *testing.T) {
	var hits atomic.Int32
	srv := serve(t, func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
	})

	c := telemetry.NewClient(telemetry.StaticURL(srv.URL), telemetry.WithSignal(connectivity.Static(false)))
	_, err := c.FetchLatest(context.Background(), "dev")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, telemetry.ErrOffline))
	assert.Zero(t, hits.Load())
}

func TestFetchLatestNetworkError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	_, err = telemetry.NewClient(telemetry.StaticURL("http://"+addr)).FetchLatest(context.Background(), "dev")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, telemetry.ErrNetwork))
	assert.True(t, telemetry.IsTransient(err))
}

func TestFetchLatestInvalidPayload(t *testing.T) {
	tests := map[string]string{
		"array":     `[1,2,3]`,
		"malformed": `{"voltage":`,
		"scalar":    `42`,
		"empty":     ``,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			srv := serve(t, func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(body))
			})
			_, err := telemetry.NewClient(telemetry.StaticURL(srv.URL)).FetchLatest(context.Background(), "dev")
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, telemetry.ErrInvalidPayload))
			assert.False(t, telemetry.IsTransient(err))
		})
	}
}

func TestFetchLatestOversizedBody(t *testing.T) {
	srv := serve(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"note":"` + strings.Repeat("x", telemetry.MaxBodySize) + `"}`))
	})

	_, err := telemetry.NewClient(telemetry.StaticURL(srv.URL)).FetchLatest(context.Background(), "dev")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, telemetry.ErrInvalidPayload))
}

func TestEndpoint(t *testing.T) {
	got, err := telemetry.Endpoint("https://meter.example/api/EnergyMeter", "ESP8266_01")
	require.NoError(t, err)
	assert.Equal(t, "https://meter.example/api/EnergyMeter/readings/latest?deviceId=ESP8266_01", got)

	_, err = telemetry.Endpoint("meter.example", "x")
	assert.True(t, errors.HasCode(err, telemetry.ErrInvalidEndpoint))
}

package smartthings

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taoyao-code/zwave-configurator/internal/httpclient"
	"github.com/taoyao-code/zwave-configurator/internal/metrics"
	"github.com/taoyao-code/zwave-configurator/internal/zwave"
)

const statusPath = "/devices/dev-1/components/main/capabilities/benchlocket65304.zwaveConfiguration/status"

func newTestClient(t *testing.T, handler http.HandlerFunc, m *metrics.AppMetrics) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, "token-1", httpclient.New(time.Second, 0, nil), NewRateLimiter(100, 10), nil, m)
}

func TestClient_DeviceState(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer token-1", r.Header.Get("Authorization"))
		if r.URL.Path != statusPath {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{
			"manufacturer": {"value": {"manufacturerId": 134, "productTypeId": 3, "productId": 96}},
			"currentConfigurations": {"value": {"3": [11]}, "timestamp": "2024-01-01T00:00:00Z"}
		}`))
	}, nil)

	state, err := c.DeviceState(context.Background(), "dev-1", "")
	require.NoError(t, err)
	assert.Equal(t, "dev-1", state.DeviceID)

	cur, err := state.CurrentConfigurations()
	require.NoError(t, err)
	assert.Equal(t, 11, cur[3])

	m, err := state.Manufacturer()
	require.NoError(t, err)
	assert.Equal(t, 134, m.ManufacturerID)

	_, err = c.DeviceState(context.Background(), "missing", "main")
	assert.ErrorIs(t, err, ErrDeviceNotFound)
}

func TestClient_ExecuteCommand(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewAppMetrics(reg)

	var got commandsRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/devices/dev-1/commands", r.URL.Path)
		_, err := uuid.Parse(r.Header.Get(RequestIDHeader))
		assert.NoError(t, err)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"results":[{"id":"x","status":"ACCEPTED"}]}`))
	}, m)

	cmd := zwave.UpdateConfiguration(3, []byte{0x0A}, false)
	require.NoError(t, c.ExecuteCommand(context.Background(), "dev-1", "main", cmd))

	require.Len(t, got.Commands, 1)
	assert.Equal(t, zwave.CapabilityID, got.Commands[0].Capability)
	assert.Equal(t, zwave.CommandUpdateConfiguration, got.Commands[0].Command)
	assert.Equal(t, []any{float64(3), []any{float64(10)}, float64(0)}, got.Commands[0].Arguments)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.CommandDispatchTotal.WithLabelValues(zwave.CommandUpdateConfiguration, metrics.ResultOK)))
	assert.Equal(t, int64(1), c.Limiter().Stats().AllowedTotal)
}

func TestClient_ExecuteCommandRejected(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results":[{"id":"x","status":"FAILED"}]}`))
	}, nil)

	err := c.ExecuteCommand(context.Background(), "dev-1", "main", zwave.RefreshManufacturer())
	assert.ErrorIs(t, err, ErrCommandRejected)
}

func TestRateLimiter_ContextCancel(t *testing.T) {
	l := NewRateLimiter(0.001, 1)
	ctx := context.Background()
	require.NoError(t, l.Wait(ctx))

	ctx, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
	defer cancel()
	assert.Error(t, l.Wait(ctx))
	assert.Equal(t, int64(1), l.Stats().FailedTotal)
}

package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/palchat-server/internal/core"
	"github.com/vovakirdan/palchat-server/internal/store"
	"github.com/vovakirdan/palchat-server/internal/store/sqlite"
)

func getJSON(t *testing.T, ts *httptest.Server, path string, out any) int {
	t.Helper()

	resp, err := ts.Client().Get(ts.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

// seedHub connects two sessions and has the first one create a channel.
func seedHub(t *testing.T, hub *core.Hub) {
	t.Helper()

	ctx := context.Background()
	owner := hub.NewSession()
	require.NoError(t, hub.Register(ctx, owner))
	guest := hub.NewSession()
	require.NoError(t, hub.Register(ctx, guest))
	require.NoError(t, hub.Submit(ctx, owner, core.NewCreateCommand(0, "general", true)))

	require.Eventually(t, func() bool {
		return len(hub.Model().Channels()) == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestUsersAndStatsEndpoints(t *testing.T) {
	ts, hub := startTestServer(t, Deps{})
	seedHub(t, hub)

	var users UsersResponse
	assert.Equal(t, http.StatusOK, getJSON(t, ts, "/api/users", &users))
	assert.Equal(t, []string{"User0", "User1"}, users.Users)

	var stats StatsResponse
	assert.Equal(t, http.StatusOK, getJSON(t, ts, "/api/stats", &stats))
	assert.Equal(t, StatsResponse{Clients: 2, Channels: 1}, stats)
}

func TestChannelEndpoints(t *testing.T) {
	ts, hub := startTestServer(t, Deps{})
	seedHub(t, hub)

	var channels []ChannelResponse
	assert.Equal(t, http.StatusOK, getJSON(t, ts, "/api/channels", &channels))
	require.Len(t, channels, 1)
	assert.Equal(t, "general", channels[0].Name)
	assert.Equal(t, "User0", channels[0].Owner)
	assert.True(t, channels[0].Private)
	assert.Equal(t, 1, channels[0].Members)

	var detail ChannelDetailResponse
	assert.Equal(t, http.StatusOK, getJSON(t, ts, "/api/channels/general", &detail))
	assert.Equal(t, []string{"User0"}, detail.Members)

	var errResp ErrorResponse
	assert.Equal(t, http.StatusNotFound, getJSON(t, ts, "/api/channels/missing", &errResp))
	assert.Equal(t, "channel not found", errResp.Error)
}

func TestAuditEndpoint(t *testing.T) {
	st, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, st.SaveEntries(context.Background(), []*store.AuditEntry{
		{ID: "a", ConnKey: "k1", Event: "okay", Command: "create", Actor: "User0", Channel: "general", Recipients: 1, CreatedAt: base},
		{ID: "b", ConnKey: "k2", Event: "error", Command: "join", Actor: "User1", Channel: "general", Code: "join_private_channel", CreatedAt: base.Add(time.Second)},
		{ID: "c", ConnKey: "k1", Event: "okay", Command: "create", Actor: "User0", Channel: "random", Recipients: 1, CreatedAt: base.Add(2 * time.Second)},
	}))

	ts, _ := startTestServer(t, Deps{Audit: st})

	var entries []AuditEntryResponse
	assert.Equal(t, http.StatusOK, getJSON(t, ts, "/api/audit", &entries))
	require.Len(t, entries, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{entries[0].ID, entries[1].ID, entries[2].ID})

	entries = nil
	assert.Equal(t, http.StatusOK, getJSON(t, ts, "/api/audit?channel=general&limit=1", &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "b", entries[0].ID)
	assert.Equal(t, "join_private_channel", entries[0].Code)

	entries = nil
	assert.Equal(t, http.StatusOK, getJSON(t, ts, "/api/audit?actor=User0", &entries))
	assert.Len(t, entries, 2)

	assert.Equal(t, http.StatusBadRequest, getJSON(t, ts, "/api/audit?limit=-3", nil))
	assert.Equal(t, http.StatusBadRequest, getJSON(t, ts, "/api/audit?limit=many", nil))
}

func TestAuditEndpointDisabled(t *testing.T) {
	ts, _ := startTestServer(t, Deps{})

	var errResp ErrorResponse
	assert.Equal(t, http.StatusNotFound, getJSON(t, ts, "/api/audit", &errResp))
	assert.Equal(t, "audit journal is disabled", errResp.Error)
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	probe := prometheus.NewCounter(prometheus.CounterOpts{Name: "palchat_test_probe_total", Help: "probe"})
	reg.MustRegister(probe)
	probe.Inc()

	ts, _ := startTestServer(t, Deps{Gatherer: reg})

	resp, err := ts.Client().Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "palchat_test_probe_total 1")
}

func TestMetricsEndpointDisabled(t *testing.T) {
	ts, _ := startTestServer(t, Deps{})

	resp, err := ts.Client().Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/palchat-server/internal/core"
)

func TestHubObserver(t *testing.T) {
	reg := prometheus.NewRegistry()
	h, err := NewHub(reg)
	require.NoError(t, err)

	m := core.NewModel()
	connected, err := m.Connect(1)
	require.NoError(t, err)
	h.BroadcastProduced(&connected)

	bad, err := m.Handle(core.NewJoinCommand(1, "nope"))
	require.NoError(t, err)
	h.BroadcastProduced(&bad)
	h.BroadcastProduced(&bad)

	h.EventDropped()
	h.StateChanged(core.Stats{Clients: 3, Channels: 2}, 3)

	assert.Equal(t, 1.0, testutil.ToFloat64(h.broadcasts.WithLabelValues("-", "connected", "")))
	assert.Equal(t, 2.0, testutil.ToFloat64(h.broadcasts.WithLabelValues("join", "error", "no_such_channel")))
	assert.Equal(t, 1.0, testutil.ToFloat64(h.dropped))
	assert.Equal(t, 3.0, testutil.ToFloat64(h.clients))
	assert.Equal(t, 2.0, testutil.ToFloat64(h.channels))
}

func TestNewHubRejectsDoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewHub(reg)
	require.NoError(t, err)

	_, err = NewHub(reg)
	assert.Error(t, err)
}

package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/homehub-dev/homehub/internal/config"
	"github.com/homehub-dev/homehub/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedHook struct {
	mu     sync.Mutex
	bodies [][]byte
	status int
}

func (c *capturedHook) server(t *testing.T) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var raw json.RawMessage
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		c.mu.Lock()
		c.bodies = append(c.bodies, raw)
		status := c.status
		c.mu.Unlock()

		if status == 0 {
			status = http.StatusNoContent
		}
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)

	return srv
}

func alarmHub() models.Hub {
	temp := 23.5
	return models.Hub{
		ID:            "h1",
		Name:          "Hallway",
		UserID:        "u1",
		LastHeartbeat: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		Temperature:   &temp,
		AlarmState:    true,
	}
}

func TestNotifier_Disabled(t *testing.T) {
	n := NewNotifier(config.NotifyConfig{Timeout: time.Second})

	assert.False(t, n.Enabled())
	assert.NoError(t, n.NotifyAlarm(context.Background(), alarmHub()))
	assert.NoError(t, n.NotifyOffline(context.Background(), alarmHub()))

	var nilNotifier *Notifier
	assert.NoError(t, nilNotifier.NotifyAlarm(context.Background(), alarmHub()))
}

func TestNotifier_AlarmPostsToBothHooks(t *testing.T) {
	discord := &capturedHook{}
	slack := &capturedHook{}

	n := NewNotifier(config.NotifyConfig{
		DiscordWebhook: discord.server(t).URL,
		SlackWebhook:   slack.server(t).URL,
		Timeout:        time.Second,
	})

	require.NoError(t, n.NotifyAlarm(context.Background(), alarmHub()))

	require.Len(t, discord.bodies, 1)
	var d DiscordWebhookRequest
	require.NoError(t, json.Unmarshal(discord.bodies[0], &d))
	require.Len(t, d.Embeds, 1)
	assert.Equal(t, ColorRed, d.Embeds[0].Color)
	assert.Contains(t, d.Embeds[0].Description, "Hallway")
	assert.Len(t, d.Embeds[0].Fields, 2)

	require.Len(t, slack.bodies, 1)
	var s SlackWebhookRequest
	require.NoError(t, json.Unmarshal(slack.bodies[0], &s))
	require.Len(t, s.Attachments, 1)
	assert.Equal(t, "danger", s.Attachments[0].Color)
}

func TestNotifier_ReportsHookFailures(t *testing.T) {
	discord := &capturedHook{status: http.StatusInternalServerError}

	n := NewNotifier(config.NotifyConfig{DiscordWebhook: discord.server(t).URL, Timeout: time.Second})

	err := n.NotifyOffline(context.Background(), alarmHub())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "discord")
	assert.Contains(t, err.Error(), "500")
}

package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/homehub-dev/homehub/internal/config"
	"github.com/homehub-dev/homehub/internal/models"
)

type DiscordWebhookField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type DiscordEmbed struct {
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Color       int                   `json:"color"`
	Fields      []DiscordWebhookField `json:"fields"`
	Footer      *DiscordFooter        `json:"footer,omitempty"`
	Timestamp   string                `json:"timestamp"`
}

type DiscordFooter struct {
	Text string `json:"text"`
}

type DiscordWebhookRequest struct {
	Username string         `json:"username"`
	Embeds   []DiscordEmbed `json:"embeds"`
}

type SlackField struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}

type SlackAttachment struct {
	Color     string       `json:"color"`
	Title     string       `json:"title"`
	Text      string       `json:"text"`
	Fields    []SlackField `json:"fields"`
	Footer    string       `json:"footer"`
	Timestamp int64        `json:"ts"`
}

type SlackWebhookRequest struct {
	Username    string            `json:"username"`
	IconEmoji   string            `json:"icon_emoji,omitempty"`
	Text        string            `json:"text"`
	Attachments []SlackAttachment `json:"attachments"`
}

const (
	ColorRed    = 16711680 // #FF0000 alarm raised
	ColorOrange = 16753920 // #FFA500 hub offline

	Username = "Homehub"

	timeLayout = "2006-01-02 15:04:05 UTC"
)

// Notifier posts hub alarms and offline transitions to chat webhooks.
// A Notifier without webhooks is a no-op.
type Notifier struct {
	discordURL string
	slackURL   string
	client     *http.Client
}

func NewNotifier(cfg config.NotifyConfig) *Notifier {
	return &Notifier{
		discordURL: cfg.DiscordWebhook,
		slackURL:   cfg.SlackWebhook,
		client:     &http.Client{Timeout: cfg.Timeout},
	}
}

func (n *Notifier) Enabled() bool {
	return n != nil && (n.discordURL != "" || n.slackURL != "")
}

// NotifyAlarm reports that hub raised its alarm.
func (n *Notifier) NotifyAlarm(ctx context.Context, hub models.Hub) error {
	if !n.Enabled() {
		return nil
	}

	at := hub.LastHeartbeat.UTC()

	discord := DiscordWebhookRequest{
		Username: Username,
		Embeds: []DiscordEmbed{
			{
				Title:       "🚨 **ALARM RAISED**",
				Description: fmt.Sprintf("**%s** reported an active alarm.", hub.Name),
				Color:       ColorRed,
				Fields:      discordReadings(hub),
				Footer:      &DiscordFooter{Text: "Hub " + hub.ID},
				Timestamp:   at.Format(time.RFC3339),
			},
		},
	}

	slack := SlackWebhookRequest{
		Username:  Username,
		IconEmoji: ":rotating_light:",
		Text:      ":rotating_light: *ALARM RAISED*",
		Attachments: []SlackAttachment{
			{
				Color:     "danger",
				Title:     fmt.Sprintf("Hub '%s' reported an active alarm", hub.Name),
				Fields:    slackReadings(hub),
				Footer:    "Hub " + hub.ID,
				Timestamp: at.Unix(),
			},
		},
	}

	return n.send(ctx, discord, slack)
}

// NotifyOffline reports that hub stopped sending heartbeats.
func (n *Notifier) NotifyOffline(ctx context.Context, hub models.Hub) error {
	if !n.Enabled() {
		return nil
	}

	lastSeen := hub.LastHeartbeat.UTC()

	discord := DiscordWebhookRequest{
		Username: Username,
		Embeds: []DiscordEmbed{
			{
				Title:       "📴 **HUB OFFLINE**",
				Description: fmt.Sprintf("**%s** stopped sending heartbeats.", hub.Name),
				Color:       ColorOrange,
				Fields: []DiscordWebhookField{
					{Name: "⏰ Last Seen", Value: lastSeen.Format(timeLayout), Inline: true},
				},
				Footer:    &DiscordFooter{Text: "Hub " + hub.ID},
				Timestamp: time.Now().UTC().Format(time.RFC3339),
			},
		},
	}

	slack := SlackWebhookRequest{
		Username:  Username,
		IconEmoji: ":warning:",
		Text:      ":warning: *HUB OFFLINE*",
		Attachments: []SlackAttachment{
			{
				Color: "warning",
				Title: fmt.Sprintf("Hub '%s' stopped sending heartbeats", hub.Name),
				Fields: []SlackField{
					{Title: "Last Seen", Value: lastSeen.Format(timeLayout), Short: true},
				},
				Footer:    "Hub " + hub.ID,
				Timestamp: time.Now().Unix(),
			},
		},
	}

	return n.send(ctx, discord, slack)
}

func (n *Notifier) send(ctx context.Context, discord DiscordWebhookRequest, slack SlackWebhookRequest) error {
	var errs []error

	if n.discordURL != "" {
		if err := n.post(ctx, n.discordURL, discord); err != nil {
			errs = append(errs, fmt.Errorf("discord: %w", err))
		}
	}

	if n.slackURL != "" {
		if err := n.post(ctx, n.slackURL, slack); err != nil {
			errs = append(errs, fmt.Errorf("slack: %w", err))
		}
	}

	return errors.Join(errs...)
}

func (n *Notifier) post(ctx context.Context, webhookURL string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return nil
}

func discordReadings(hub models.Hub) []DiscordWebhookField {
	fields := []DiscordWebhookField{
		{Name: "⏰ Reported At", Value: hub.LastHeartbeat.UTC().Format(timeLayout), Inline: true},
	}

	if hub.Temperature != nil {
		fields = append(fields, DiscordWebhookField{Name: "🌡️ Temperature", Value: fmt.Sprintf("%.1f °C", *hub.Temperature), Inline: true})
	}

	if hub.Humidity != nil {
		fields = append(fields, DiscordWebhookField{Name: "💧 Humidity", Value: fmt.Sprintf("%.0f%%", *hub.Humidity), Inline: true})
	}

	return fields
}

func slackReadings(hub models.Hub) []SlackField {
	fields := []SlackField{
		{Title: "Reported At", Value: hub.LastHeartbeat.UTC().Format(timeLayout), Short: true},
	}

	if hub.Temperature != nil {
		fields = append(fields, SlackField{Title: "Temperature", Value: fmt.Sprintf("%.1f °C", *hub.Temperature), Short: true})
	}

	if hub.Humidity != nil {
		fields = append(fields, SlackField{Title: "Humidity", Value: fmt.Sprintf("%.0f%%", *hub.Humidity), Short: true})
	}

	return fields
}

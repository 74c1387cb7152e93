package messenger

import (
	"context"
	"strings"
)

// MessageID is the platform's handle for a posted message.
type MessageID string

// Severity marks how loudly an alert should be rendered.
type Severity string

const (
	SeverityInfo   Severity = "info"
	SeverityUrgent Severity = "urgent"
)

// AlertField is one labelled line of an alert.
type AlertField struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Alert is a structured message posted to the office's staff channel.
type Alert struct {
	Title    string       `json:"title"`
	Body     string       `json:"body,omitempty"`
	Severity Severity     `json:"severity,omitempty"`
	Fields   []AlertField `json:"fields,omitempty"`
}

// Urgent reports whether the alert needs immediate attention.
func (a Alert) Urgent() bool { return a.Severity == SeverityUrgent }

// Text renders the alert as plain text, one line per part.
func (a Alert) Text() string {
	var b strings.Builder
	if a.Urgent() {
		b.WriteString("[URGENTE] ")
	}
	b.WriteString(a.Title)
	if a.Body != "" {
		b.WriteString("\n" + a.Body)
	}
	for _, f := range a.Fields {
		b.WriteString("\n" + f.Label + ": " + f.Value)
	}
	return b.String()
}

// Messenger posts office notices to a chat platform.
type Messenger interface {
	SendMessage(ctx context.Context, channelID, text string) (MessageID, error)
	SendAlert(ctx context.Context, channelID string, alert Alert) (MessageID, error)
	// Platform names the chat platform, e.g. "slack". The registry keys on it.
	Platform() string
}

package slack

import (
	"context"
	"fmt"

	slacklib "github.com/slack-go/slack"

	"github.com/gosuda/gabinete/internal/messenger"
)

// Poster is the part of the Slack client the messenger needs.
type Poster interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slacklib.MsgOption) (string, string, error)
}

// Messenger posts office alerts to Slack channels.
type Messenger struct {
	api Poster
}

var _ messenger.Messenger = (*Messenger)(nil)

func New(api Poster) *Messenger {
	return &Messenger{api: api}
}

// NewFromToken builds a messenger backed by a bot token.
func NewFromToken(token string) *Messenger {
	return New(slacklib.New(token))
}

// SendMessage posts plain text. The returned ID is the message timestamp.
func (m *Messenger) SendMessage(ctx context.Context, channelID, text string) (messenger.MessageID, error) {
	return m.post(ctx, "slack.Messenger.SendMessage", channelID, slacklib.MsgOptionText(text, false))
}

// SendAlert posts the alert as Block Kit blocks with a plain-text fallback
// for notifications and clients that cannot render blocks.
func (m *Messenger) SendAlert(ctx context.Context, channelID string, alert messenger.Alert) (messenger.MessageID, error) {
	return m.post(ctx, "slack.Messenger.SendAlert", channelID,
		slacklib.MsgOptionText(alert.Text(), false),
		slacklib.MsgOptionBlocks(BuildAlertBlocks(alert)...),
	)
}

func (m *Messenger) Platform() string { return "slack" }

func (m *Messenger) post(ctx context.Context, op, channelID string, opts ...slacklib.MsgOption) (messenger.MessageID, error) {
	_, ts, err := m.api.PostMessageContext(ctx, channelID, opts...)
	if err != nil {
		return "", fmt.Errorf("%s: channel %s: %w", op, channelID, err)
	}
	return messenger.MessageID(ts), nil
}

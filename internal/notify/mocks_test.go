package notify_test

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/gosuda/gabinete/internal/domain"
	"github.com/gosuda/gabinete/internal/messenger"
)

type mockNotificationRepo struct {
	createFunc            func(ctx context.Context, n *domain.Notification) error
	createBulkFunc        func(ctx context.Context, tmpl *domain.Notification, recipients []uuid.UUID) ([]*domain.Notification, error)
	listFunc              func(ctx context.Context, f domain.NotificationFilter) ([]*domain.Notification, error)
	listUnreadFunc        func(ctx context.Context, tenantID, recipientID uuid.UUID) ([]*domain.Notification, error)
	markReadFunc          func(ctx context.Context, tenantID, recipientID, id uuid.UUID) (*domain.Notification, error)
	markUnreadFunc        func(ctx context.Context, tenantID, recipientID, id uuid.UUID) (*domain.Notification, error)
	markAllReadFunc       func(ctx context.Context, tenantID, recipientID uuid.UUID) ([]uuid.UUID, error)
	citizenRecipientsFunc func(ctx context.Context, tenantID, exclude uuid.UUID) ([]uuid.UUID, error)
}

func (m *mockNotificationRepo) Create(ctx context.Context, n *domain.Notification) error {
	return m.createFunc(ctx, n)
}

func (m *mockNotificationRepo) CreateBulk(ctx context.Context, tmpl *domain.Notification, recipients []uuid.UUID) ([]*domain.Notification, error) {
	return m.createBulkFunc(ctx, tmpl, recipients)
}

func (m *mockNotificationRepo) List(ctx context.Context, f domain.NotificationFilter) ([]*domain.Notification, error) {
	return m.listFunc(ctx, f)
}

func (m *mockNotificationRepo) ListUnread(ctx context.Context, tenantID, recipientID uuid.UUID) ([]*domain.Notification, error) {
	return m.listUnreadFunc(ctx, tenantID, recipientID)
}

func (m *mockNotificationRepo) MarkRead(ctx context.Context, tenantID, recipientID, id uuid.UUID) (*domain.Notification, error) {
	return m.markReadFunc(ctx, tenantID, recipientID, id)
}

func (m *mockNotificationRepo) MarkUnread(ctx context.Context, tenantID, recipientID, id uuid.UUID) (*domain.Notification, error) {
	return m.markUnreadFunc(ctx, tenantID, recipientID, id)
}

func (m *mockNotificationRepo) MarkAllRead(ctx context.Context, tenantID, recipientID uuid.UUID) ([]uuid.UUID, error) {
	return m.markAllReadFunc(ctx, tenantID, recipientID)
}

func (m *mockNotificationRepo) CitizenRecipients(ctx context.Context, tenantID, exclude uuid.UUID) ([]uuid.UUID, error) {
	return m.citizenRecipientsFunc(ctx, tenantID, exclude)
}

type recordingPublisher struct {
	mu       sync.Mutex
	channels []string
	err      error
}

func (p *recordingPublisher) Publish(_ context.Context, channel string, _ []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.channels = append(p.channels, channel)
	return p.err
}

type mockMessenger struct {
	platform string
	alerts   []messenger.Alert
	messages []string
	channels []string
	err      error
}

func (m *mockMessenger) SendMessage(_ context.Context, channelID, text string) (messenger.MessageID, error) {
	if m.err != nil {
		return "", m.err
	}
	m.channels = append(m.channels, channelID)
	m.messages = append(m.messages, text)
	return "1", nil
}

func (m *mockMessenger) SendAlert(_ context.Context, channelID string, a messenger.Alert) (messenger.MessageID, error) {
	if m.err != nil {
		return "", m.err
	}
	m.channels = append(m.channels, channelID)
	m.alerts = append(m.alerts, a)
	return "1", nil
}

func (m *mockMessenger) Platform() string { return m.platform }

func unread(tenantID, recipientID uuid.UUID, n int) []*domain.Notification {
	out := make([]*domain.Notification, n)
	for i := range out {
		out[i] = &domain.Notification{
			ID:          uuid.New(),
			TenantID:    tenantID,
			RecipientID: recipientID,
			Title:       "Aviso",
			Type:        domain.NotificationSystem,
		}
	}
	return out
}

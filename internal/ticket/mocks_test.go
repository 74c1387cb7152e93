package ticket_test

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/gosuda/gabinete/internal/domain"
	"github.com/gosuda/gabinete/internal/events"
)

type mockTicketRepo struct {
	createFunc         func(ctx context.Context, t *domain.Ticket) error
	getByIDFunc        func(ctx context.Context, tenantID, id uuid.UUID) (*domain.TicketView, error)
	listFunc           func(ctx context.Context, f domain.TicketFilter) ([]*domain.TicketView, error)
	countFunc          func(ctx context.Context, f domain.TicketFilter) (int64, error)
	updateStatusFunc   func(ctx context.Context, tenantID, id uuid.UUID, status domain.TicketStatus) error
	updateAssigneeFunc func(ctx context.Context, tenantID, id uuid.UUID, assigneeID *uuid.UUID) error
	addPhotosFunc      func(ctx context.Context, tenantID, id uuid.UUID, paths []string) error
	nextNumberFunc     func(ctx context.Context, tenantID uuid.UUID) (int64, error)
}

func (m *mockTicketRepo) Create(ctx context.Context, t *domain.Ticket) error {
	return m.createFunc(ctx, t)
}

func (m *mockTicketRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*domain.TicketView, error) {
	return m.getByIDFunc(ctx, tenantID, id)
}

func (m *mockTicketRepo) List(ctx context.Context, f domain.TicketFilter) ([]*domain.TicketView, error) {
	return m.listFunc(ctx, f)
}

func (m *mockTicketRepo) Count(ctx context.Context, f domain.TicketFilter) (int64, error) {
	if m.countFunc == nil {
		items, err := m.listFunc(ctx, f)
		return int64(len(items)), err
	}
	return m.countFunc(ctx, f)
}

func (m *mockTicketRepo) UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status domain.TicketStatus) error {
	return m.updateStatusFunc(ctx, tenantID, id, status)
}

func (m *mockTicketRepo) UpdateAssignee(ctx context.Context, tenantID, id uuid.UUID, assigneeID *uuid.UUID) error {
	return m.updateAssigneeFunc(ctx, tenantID, id, assigneeID)
}

func (m *mockTicketRepo) AddPhotos(ctx context.Context, tenantID, id uuid.UUID, paths []string) error {
	return m.addPhotosFunc(ctx, tenantID, id, paths)
}

func (m *mockTicketRepo) NextNumber(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	return m.nextNumberFunc(ctx, tenantID)
}

// memTickets filters an in-memory slice the way the row-store query does.
func memTickets(rows ...*domain.TicketView) func(context.Context, domain.TicketFilter) ([]*domain.TicketView, error) {
	return func(_ context.Context, f domain.TicketFilter) ([]*domain.TicketView, error) {
		var out []*domain.TicketView
		for _, t := range rows {
			if t.TenantID != f.TenantID {
				continue
			}
			if f.ReporterID != nil && t.ReporterID != *f.ReporterID {
				continue
			}
			if len(f.Statuses) > 0 && !containsStatus(f.Statuses, t.Status) {
				continue
			}
			cp := *t
			out = append(out, &cp)
		}
		return out, nil
	}
}

func containsStatus(list []domain.TicketStatus, s domain.TicketStatus) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}

type mockProfileRepo struct {
	getByIDFunc func(ctx context.Context, id uuid.UUID) (*domain.Profile, error)
}

func (m *mockProfileRepo) Create(context.Context, *domain.Profile) error { return nil }

func (m *mockProfileRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockProfileRepo) GetByEmail(context.Context, string) (*domain.Profile, error) {
	return nil, domain.ErrNotFound
}

func (m *mockProfileRepo) Update(context.Context, *domain.Profile) error { return nil }

func (m *mockProfileRepo) UpdateRole(context.Context, uuid.UUID, uuid.UUID, domain.Role) error {
	return nil
}

func (m *mockProfileRepo) Deactivate(context.Context, uuid.UUID, uuid.UUID) error { return nil }

func (m *mockProfileRepo) ListByTenant(context.Context, uuid.UUID, domain.Role) ([]*domain.Profile, error) {
	return nil, nil
}

type mockCategoryRepo struct {
	getByIDFunc func(ctx context.Context, tenantID, id uuid.UUID) (*domain.Category, error)
}

func (m *mockCategoryRepo) Create(context.Context, *domain.Category) error { return nil }

func (m *mockCategoryRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*domain.Category, error) {
	return m.getByIDFunc(ctx, tenantID, id)
}

func (m *mockCategoryRepo) List(context.Context, uuid.UUID, bool) ([]*domain.Category, error) {
	return nil, nil
}

func (m *mockCategoryRepo) Update(context.Context, *domain.Category) error { return nil }

func (m *mockCategoryRepo) Delete(context.Context, uuid.UUID, uuid.UUID) error { return nil }

type mockCommentRepo struct {
	createFunc       func(ctx context.Context, c *domain.Comment) error
	listByTicketFunc func(ctx context.Context, tenantID, ticketID uuid.UUID) ([]*domain.Comment, error)
}

func (m *mockCommentRepo) Create(ctx context.Context, c *domain.Comment) error {
	return m.createFunc(ctx, c)
}

func (m *mockCommentRepo) ListByTicket(ctx context.Context, tenantID, ticketID uuid.UUID) ([]*domain.Comment, error) {
	return m.listByTicketFunc(ctx, tenantID, ticketID)
}

type mockAuditRepo struct {
	mu      sync.Mutex
	entries []*domain.AuditEntry
}

func (m *mockAuditRepo) Record(_ context.Context, e *domain.AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, e)
	return nil
}

func (m *mockAuditRepo) ListByResource(_ context.Context, _ uuid.UUID, _ string, id uuid.UUID) ([]*domain.AuditEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.AuditEntry
	for _, e := range m.entries {
		if e.ResourceID == id {
			out = append(out, e)
		}
	}
	return out, nil
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

type recordingEvents struct {
	mu     sync.Mutex
	events []events.TicketEvent
}

func (r *recordingEvents) Publish(_ context.Context, e events.TicketEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []*domain.Notification
	err  error
}

func (n *recordingNotifier) Send(_ context.Context, notif *domain.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notif)
	return n.err
}

type recordingAlerts struct {
	created []*domain.TicketView
}

func (a *recordingAlerts) TicketCreated(_ context.Context, t *domain.TicketView) {
	a.created = append(a.created, t)
}

func citizen(tenantID, userID uuid.UUID) domain.Actor {
	return domain.Actor{TenantID: tenantID, UserID: userID, Role: domain.RoleCitizen}
}

func aide(tenantID, userID uuid.UUID) domain.Actor {
	return domain.Actor{TenantID: tenantID, UserID: userID, Role: domain.RoleAide}
}

func newView(tenantID, reporterID uuid.UUID, number int64, status domain.TicketStatus) *domain.TicketView {
	return &domain.TicketView{Ticket: domain.Ticket{
		ID:          uuid.New(),
		TenantID:    tenantID,
		ReporterID:  reporterID,
		Number:      number,
		Title:       "Buraco na rua",
		Description: "Cratera em frente ao número 10",
		Status:      status,
		Priority:    domain.TicketPriorityMedium,
		Photos:      []string{},
	}}
}

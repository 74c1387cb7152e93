package v1

import (
	"context"
	"io"

	"github.com/google/uuid"

	"github.com/gosuda/gabinete/internal/auth"
	"github.com/gosuda/gabinete/internal/domain"
	"github.com/gosuda/gabinete/internal/notify"
	"github.com/gosuda/gabinete/internal/ticket"
)

// DataStore abstracts the repository accessor pattern for handler testing.
// *postgres.Store satisfies this interface.
type DataStore interface {
	Tenants() domain.TenantRepository
	Profiles() domain.ProfileRepository
	Categories() domain.CategoryRepository
	Events() domain.EventRepository
}

// AuthService abstracts authentication operations for handler testing.
// *auth.Service satisfies this interface.
type AuthService interface {
	Register(ctx context.Context, tenantSlug, email, password, name string) (*domain.Profile, error)
	Login(ctx context.Context, email, password string) (*auth.Tokens, *domain.Profile, error)
	RefreshToken(ctx context.Context, refreshToken string) (string, error)
}

// TicketQuery is the ticket read path. *ticket.Query satisfies it.
type TicketQuery interface {
	List(ctx context.Context, actor domain.Actor, f ticket.Filter) (*ticket.Page, error)
	Get(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.TicketView, error)
	Board(ctx context.Context, actor domain.Actor) (map[domain.TicketStatus][]*domain.TicketView, error)
}

// TicketLifecycle changes status and assignee. *ticket.Lifecycle satisfies it.
type TicketLifecycle interface {
	ChangeStatus(ctx context.Context, actor domain.Actor, id uuid.UUID, to domain.TicketStatus) (*domain.TicketView, error)
	Assign(ctx context.Context, actor domain.Actor, id, assigneeID uuid.UUID) (*domain.TicketView, error)
	AssignToSelf(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.TicketView, error)
	Unassign(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.TicketView, error)
}

// TicketService files tickets and manages comments. *ticket.Service satisfies it.
type TicketService interface {
	Create(ctx context.Context, actor domain.Actor, in ticket.NewTicket) (*domain.TicketView, error)
	AddComment(ctx context.Context, actor domain.Actor, id uuid.UUID, in ticket.NewComment) (*domain.Comment, error)
	ListComments(ctx context.Context, actor domain.Actor, id uuid.UUID) ([]*domain.Comment, error)
	AddPhotos(ctx context.Context, actor domain.Actor, id uuid.UUID, paths []string) (*domain.TicketView, error)
	History(ctx context.Context, actor domain.Actor, id uuid.UUID) ([]*domain.AuditEntry, error)
}

// Tickets groups the ticket collaborators the handlers need.
type Tickets struct {
	Query     TicketQuery
	Lifecycle TicketLifecycle
	Service   TicketService
}

// NotificationService is the notification read and write path.
// *notify.Service satisfies it.
type NotificationService interface {
	List(ctx context.Context, actor domain.Actor, f notify.ListFilter) ([]*domain.Notification, error)
	MarkRead(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Notification, error)
	MarkUnread(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Notification, error)
	MarkAllRead(ctx context.Context, actor domain.Actor) ([]uuid.UUID, error)
	Broadcast(ctx context.Context, actor domain.Actor, in notify.Broadcast) ([]*domain.Notification, error)
}

// Uploader stores tenant files. *storage.S3Store satisfies it.
type Uploader interface {
	Upload(ctx context.Context, bucket, objectPath, contentType string, body io.ReadSeeker) (string, error)
	PublicURL(bucket, objectPath string) string
	Remove(ctx context.Context, bucket string, paths []string) error
}

// PreferenceStore keeps per-user UI preferences. *prefs.Store satisfies it.
type PreferenceStore interface {
	Get(ctx context.Context, userID uuid.UUID) (map[string]bool, error)
	Toggle(ctx context.Context, userID uuid.UUID, key string) (bool, error)
}

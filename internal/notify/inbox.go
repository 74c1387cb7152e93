package notify

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/gosuda/gabinete/internal/domain"
	"github.com/gosuda/gabinete/internal/optimistic"
)

// ReadStore is the side of the notification service an Inbox drives.
type ReadStore interface {
	List(ctx context.Context, actor domain.Actor, f ListFilter) ([]*domain.Notification, error)
	MarkRead(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Notification, error)
	MarkAllRead(ctx context.Context, actor domain.Actor) ([]uuid.UUID, error)
}

// Inbox is the bell state of one viewer: the fetched unread notifications
// of the selected audience. The count is always the length of that set.
type Inbox struct {
	store    ReadStore
	actor    domain.Actor
	audience domain.Audience
	unread   *optimistic.Value[[]*domain.Notification]
	pending  *optimistic.Pending[uuid.UUID]
}

// InboxOption configures an Inbox.
type InboxOption func(*Inbox)

// WithInFlight makes the Inbox share the per-notification guard p, so
// inboxes built per request still refuse a concurrent mark for the same id.
func WithInFlight(p *optimistic.Pending[uuid.UUID]) InboxOption {
	return func(in *Inbox) {
		in.pending = p
	}
}

func NewInbox(store ReadStore, actor domain.Actor, audience domain.Audience, opts ...InboxOption) *Inbox {
	if audience == "" {
		audience = domain.AudienceSelf
	}
	in := &Inbox{
		store:    store,
		actor:    actor,
		audience: audience,
		unread:   optimistic.NewValue([]*domain.Notification{}),
		pending:  optimistic.NewPending[uuid.UUID](),
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Refresh refetches the unread set.
func (in *Inbox) Refresh(ctx context.Context) error {
	items, err := in.store.List(ctx, in.actor, ListFilter{
		Audience:  in.audience,
		ReadState: domain.ReadStateUnread,
		Limit:     MaxLimit,
	})
	if err != nil {
		return fmt.Errorf("notify.Inbox.Refresh: %w", err)
	}
	in.unread.Set(items)
	return nil
}

// Items returns the unread set as currently displayed.
func (in *Inbox) Items() []*domain.Notification {
	return in.unread.Get()
}

// Count is the number of unread notifications displayed.
func (in *Inbox) Count() int {
	return len(in.unread.Get())
}

// MarkRead hides the notification at once and marks it read. On failure
// the notification reappears. A second call for the same id while the first
// is running returns optimistic.ErrInFlight. The stored notification is
// returned on success.
func (in *Inbox) MarkRead(ctx context.Context, id uuid.UUID) (*domain.Notification, error) {
	done, err := in.pending.Begin(id)
	if err != nil {
		return nil, fmt.Errorf("notify.Inbox.MarkRead: %w", err)
	}
	defer done()

	var marked *domain.Notification
	next := without(in.unread.Get(), map[uuid.UUID]struct{}{id: {}})
	_, err = in.unread.Apply(ctx, next, func(ctx context.Context) ([]*domain.Notification, error) {
		n, err := in.store.MarkRead(ctx, in.actor, id)
		if err != nil {
			return nil, err
		}
		marked = n
		return without(in.unread.Get(), map[uuid.UUID]struct{}{id: {}}), nil
	})
	if err != nil {
		return nil, fmt.Errorf("notify.Inbox.MarkRead: %w", err)
	}
	return marked, nil
}

// MarkAllRead issues one bulk update and removes exactly the IDs it
// reports from the unread set.
func (in *Inbox) MarkAllRead(ctx context.Context) ([]uuid.UUID, error) {
	ids, err := in.store.MarkAllRead(ctx, in.actor)
	if err != nil {
		return nil, fmt.Errorf("notify.Inbox.MarkAllRead: %w", err)
	}

	drop := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	in.unread.Update(func(cur []*domain.Notification) []*domain.Notification {
		return without(cur, drop)
	})

	return ids, nil
}

func without(items []*domain.Notification, drop map[uuid.UUID]struct{}) []*domain.Notification {
	out := make([]*domain.Notification, 0, len(items))
	for _, n := range items {
		if _, ok := drop[n.ID]; !ok {
			out = append(out, n)
		}
	}
	return out
}

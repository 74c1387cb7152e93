package ticket_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/gabinete/internal/domain"
	"github.com/gosuda/gabinete/internal/ticket"
)

func TestQuery_CitizenSeesOnlyOwnTickets(t *testing.T) {
	t.Parallel()

	tenantA := uuid.New()
	tenantB := uuid.New()
	u1 := uuid.New()
	u2 := uuid.New()

	t1 := newView(tenantA, u1, 1, domain.TicketStatusNew)
	t2 := newView(tenantA, u1, 2, domain.TicketStatusResolved)
	t3 := newView(tenantA, u2, 3, domain.TicketStatusNew)
	t4 := newView(tenantB, u1, 1, domain.TicketStatusNew)

	repo := &mockTicketRepo{listFunc: memTickets(t1, t2, t3, t4)}
	q := ticket.NewQuery(repo)

	// The caller asks for u2's tickets; the citizen scope overrides it.
	page, err := q.List(context.Background(), citizen(tenantA, u1), ticket.Filter{ReporterID: &u2})
	require.NoError(t, err)

	ids := make([]uuid.UUID, 0, len(page.Items))
	for _, it := range page.Items {
		ids = append(ids, it.ID)
	}
	assert.ElementsMatch(t, []uuid.UUID{t1.ID, t2.ID}, ids)
	assert.Equal(t, int64(2), page.Total)
}

func TestQuery_StaffSeesWholeTenant(t *testing.T) {
	t.Parallel()

	tenantA := uuid.New()
	rows := []*domain.TicketView{
		newView(tenantA, uuid.New(), 1, domain.TicketStatusNew),
		newView(tenantA, uuid.New(), 2, domain.TicketStatusClosed),
		newView(uuid.New(), uuid.New(), 1, domain.TicketStatusNew),
	}
	q := ticket.NewQuery(&mockTicketRepo{listFunc: memTickets(rows...)})

	page, err := q.List(context.Background(), aide(tenantA, uuid.New()), ticket.Filter{})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	for _, it := range page.Items {
		assert.Equal(t, tenantA, it.TenantID)
	}
}

func TestQuery_DropsForeignTenantRows(t *testing.T) {
	t.Parallel()

	tenantA := uuid.New()
	leaked := newView(uuid.New(), uuid.New(), 9, domain.TicketStatusNew)
	own := newView(tenantA, uuid.New(), 1, domain.TicketStatusNew)

	q := ticket.NewQuery(&mockTicketRepo{
		listFunc: func(context.Context, domain.TicketFilter) ([]*domain.TicketView, error) {
			return []*domain.TicketView{own, leaked}, nil
		},
		countFunc: func(context.Context, domain.TicketFilter) (int64, error) { return 1, nil },
	})

	page, err := q.List(context.Background(), aide(tenantA, uuid.New()), ticket.Filter{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, own.ID, page.Items[0].ID)
}

func TestQuery_FilterTranslation(t *testing.T) {
	t.Parallel()

	tenantID := uuid.New()
	actor := aide(tenantID, uuid.New())

	tests := []struct {
		name    string
		filter  ticket.Filter
		wantErr string
		check   func(t *testing.T, f domain.TicketFilter)
	}{
		{
			name:   "defaults",
			filter: ticket.Filter{},
			check: func(t *testing.T, f domain.TicketFilter) {
				t.Helper()
				assert.Equal(t, tenantID, f.TenantID)
				assert.Equal(t, domain.TicketSortCreatedAt, f.Sort)
				assert.True(t, f.Descending)
				assert.Equal(t, ticket.DefaultLimit, f.Limit)
				assert.Nil(t, f.ReporterID)
			},
		},
		{
			name:   "limit clamped",
			filter: ticket.Filter{Limit: 5000, Offset: -3, Order: "asc", Sort: domain.TicketSortPriority},
			check: func(t *testing.T, f domain.TicketFilter) {
				t.Helper()
				assert.Equal(t, ticket.MaxLimit, f.Limit)
				assert.Equal(t, 0, f.Offset)
				assert.False(t, f.Descending)
				assert.Equal(t, domain.TicketSortPriority, f.Sort)
			},
		},
		{name: "invalid status", filter: ticket.Filter{Statuses: []domain.TicketStatus{"archived"}}, wantErr: "invalid_status"},
		{name: "invalid sort", filter: ticket.Filter{Sort: "title"}, wantErr: "invalid_sort"},
		{name: "invalid order", filter: ticket.Filter{Order: "sideways"}, wantErr: "invalid_order"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var got domain.TicketFilter
			q := ticket.NewQuery(&mockTicketRepo{
				listFunc: func(_ context.Context, f domain.TicketFilter) ([]*domain.TicketView, error) {
					got = f
					return nil, nil
				},
				countFunc: func(context.Context, domain.TicketFilter) (int64, error) { return 0, nil },
			})

			page, err := q.List(context.Background(), actor, tt.filter)
			if tt.wantErr != "" {
				require.ErrorIs(t, err, domain.ErrValidation)
				var fe *domain.FieldError
				require.ErrorAs(t, err, &fe)
				assert.Equal(t, tt.wantErr, fe.Code)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, page.Items)
			tt.check(t, got)
		})
	}
}

func TestQuery_MissingTenant(t *testing.T) {
	t.Parallel()

	q := ticket.NewQuery(&mockTicketRepo{})
	_, err := q.List(context.Background(), domain.Actor{UserID: uuid.New(), Role: domain.RoleAdmin}, ticket.Filter{})
	require.ErrorIs(t, err, domain.ErrForbidden)
}

func TestQuery_Get(t *testing.T) {
	t.Parallel()

	tenantID := uuid.New()
	owner := uuid.New()
	tk := newView(tenantID, owner, 1, domain.TicketStatusNew)

	q := ticket.NewQuery(&mockTicketRepo{
		getByIDFunc: func(_ context.Context, tid, id uuid.UUID) (*domain.TicketView, error) {
			if tid != tenantID || id != tk.ID {
				return nil, domain.ErrNotFound
			}
			return tk, nil
		},
	})

	got, err := q.Get(context.Background(), citizen(tenantID, owner), tk.ID)
	require.NoError(t, err)
	assert.Equal(t, tk.ID, got.ID)

	_, err = q.Get(context.Background(), citizen(tenantID, uuid.New()), tk.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, err = q.Get(context.Background(), aide(tenantID, uuid.New()), tk.ID)
	require.NoError(t, err)

	_, err = q.Get(context.Background(), aide(uuid.New(), uuid.New()), tk.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestQuery_Board(t *testing.T) {
	t.Parallel()

	tenantID := uuid.New()
	rows := []*domain.TicketView{
		newView(tenantID, uuid.New(), 1, domain.TicketStatusNew),
		newView(tenantID, uuid.New(), 2, domain.TicketStatusInProgress),
		newView(tenantID, uuid.New(), 3, domain.TicketStatusInProgress),
		newView(tenantID, uuid.New(), 4, domain.TicketStatusClosed),
	}

	var limit int
	list := memTickets(rows...)
	q := ticket.NewQuery(&mockTicketRepo{
		listFunc: func(ctx context.Context, f domain.TicketFilter) ([]*domain.TicketView, error) {
			limit = f.Limit
			return list(ctx, f)
		},
	})

	cols, err := q.Board(context.Background(), aide(tenantID, uuid.New()))
	require.NoError(t, err)
	assert.Equal(t, ticket.BoardLimit, limit)
	assert.Len(t, cols, 4)
	assert.Len(t, cols[domain.TicketStatusNew], 1)
	assert.Len(t, cols[domain.TicketStatusInProgress], 2)
	assert.Empty(t, cols[domain.TicketStatusUnderReview])
	assert.NotNil(t, cols[domain.TicketStatusResolved])
	_, hasClosed := cols[domain.TicketStatusClosed]
	assert.False(t, hasClosed)
}

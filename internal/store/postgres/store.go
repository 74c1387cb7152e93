package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gosuda/gabinete/internal/domain"
)

type Store struct {
	pool          *pgxpool.Pool
	tenants       *TenantRepo
	profiles      *ProfileRepo
	categories    *CategoryRepo
	tickets       *TicketRepo
	comments      *CommentRepo
	events        *EventRepo
	notifications *NotificationRepo
	audit         *AuditRepo
}

func New(ctx context.Context, dsn string, maxConns int32) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: parse config: %w", err)
	}

	cfg.MaxConns = maxConns

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: connect: %w", err)
	}

	err = pool.Ping(ctx)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres.New: ping: %w", err)
	}

	return &Store{
		pool:          pool,
		tenants:       NewTenantRepo(pool),
		profiles:      NewProfileRepo(pool),
		categories:    NewCategoryRepo(pool),
		tickets:       NewTicketRepo(pool),
		comments:      NewCommentRepo(pool),
		events:        NewEventRepo(pool),
		notifications: NewNotificationRepo(pool),
		audit:         NewAuditRepo(pool),
	}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

// Ping checks that a pooled connection still answers.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("postgres.Store.Ping: %w", err)
	}
	return nil
}

func (s *Store) Tenants() domain.TenantRepository             { return s.tenants }
func (s *Store) Profiles() domain.ProfileRepository           { return s.profiles }
func (s *Store) Categories() domain.CategoryRepository        { return s.categories }
func (s *Store) Tickets() domain.TicketRepository             { return s.tickets }
func (s *Store) Comments() domain.CommentRepository           { return s.comments }
func (s *Store) Events() domain.EventRepository               { return s.events }
func (s *Store) Notifications() domain.NotificationRepository { return s.notifications }
func (s *Store) Audit() domain.AuditRepository                { return s.audit }

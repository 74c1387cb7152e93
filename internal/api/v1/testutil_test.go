package v1_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/gabinete/internal/auth"
	"github.com/gosuda/gabinete/internal/domain"
	"github.com/gosuda/gabinete/internal/notify"
	"github.com/gosuda/gabinete/internal/server/middleware"
	"github.com/gosuda/gabinete/internal/ticket"
)

// ---------------------------------------------------------------------------
// Context helpers: inject the caller into context for DoCtx
// ---------------------------------------------------------------------------

func actorCtx(a domain.Actor) context.Context {
	return middleware.WithActor(context.Background(), a)
}

// tenantCtx is a citizen of tenantID.
func tenantCtx(tenantID uuid.UUID) context.Context {
	return actorCtx(domain.Actor{TenantID: tenantID, UserID: uuid.New(), Role: domain.RoleCitizen})
}

func aideCtx(tenantID uuid.UUID) context.Context {
	return actorCtx(domain.Actor{TenantID: tenantID, UserID: uuid.New(), Role: domain.RoleAide})
}

func adminCtx(tenantID uuid.UUID) context.Context {
	return actorCtx(domain.Actor{TenantID: tenantID, UserID: uuid.New(), Role: domain.RoleAdmin})
}

// problemBody is the error model huma writes.
type problemBody struct {
	Status int    `json:"status"`
	Detail string `json:"detail"`
	Errors []struct {
		Message  string `json:"message"`
		Location string `json:"location"`
	} `json:"errors"`
}

func decodeProblem(t *testing.T, resp *httptest.ResponseRecorder) problemBody {
	t.Helper()
	var p problemBody
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&p))
	return p
}

// errorCode returns the machine code carried by an error response.
func errorCode(t *testing.T, resp *httptest.ResponseRecorder) string {
	t.Helper()
	p := decodeProblem(t, resp)
	require.NotEmpty(t, p.Errors, "error response must carry a code")
	return p.Errors[0].Message
}

// ---------------------------------------------------------------------------
// Mock DataStore
// ---------------------------------------------------------------------------

type mockDataStore struct {
	tenants    domain.TenantRepository
	profiles   domain.ProfileRepository
	categories domain.CategoryRepository
	events     domain.EventRepository
}

func (m *mockDataStore) Tenants() domain.TenantRepository      { return m.tenants }
func (m *mockDataStore) Profiles() domain.ProfileRepository    { return m.profiles }
func (m *mockDataStore) Categories() domain.CategoryRepository { return m.categories }
func (m *mockDataStore) Events() domain.EventRepository        { return m.events }

// ---------------------------------------------------------------------------
// Mock TenantRepository
// ---------------------------------------------------------------------------

type mockTenantRepo struct {
	getByIDFunc   func(ctx context.Context, id uuid.UUID) (*domain.Tenant, error)
	getBySlugFunc func(ctx context.Context, slug string) (*domain.Tenant, error)
	updateFunc    func(ctx context.Context, t *domain.Tenant) error
	listFunc      func(ctx context.Context) ([]*domain.Tenant, error)
}

func (m *mockTenantRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Tenant, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockTenantRepo) GetBySlug(ctx context.Context, slug string) (*domain.Tenant, error) {
	return m.getBySlugFunc(ctx, slug)
}

func (m *mockTenantRepo) Update(ctx context.Context, t *domain.Tenant) error {
	return m.updateFunc(ctx, t)
}

func (m *mockTenantRepo) List(ctx context.Context) ([]*domain.Tenant, error) {
	return m.listFunc(ctx)
}

// ---------------------------------------------------------------------------
// Mock ProfileRepository
// ---------------------------------------------------------------------------

type mockProfileRepo struct {
	createFunc       func(ctx context.Context, p *domain.Profile) error
	getByIDFunc      func(ctx context.Context, id uuid.UUID) (*domain.Profile, error)
	getByEmailFunc   func(ctx context.Context, email string) (*domain.Profile, error)
	updateFunc       func(ctx context.Context, p *domain.Profile) error
	updateRoleFunc   func(ctx context.Context, tenantID, id uuid.UUID, role domain.Role) error
	deactivateFunc   func(ctx context.Context, tenantID, id uuid.UUID) error
	listByTenantFunc func(ctx context.Context, tenantID uuid.UUID, role domain.Role) ([]*domain.Profile, error)
}

func (m *mockProfileRepo) Create(ctx context.Context, p *domain.Profile) error {
	return m.createFunc(ctx, p)
}

func (m *mockProfileRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockProfileRepo) GetByEmail(ctx context.Context, email string) (*domain.Profile, error) {
	return m.getByEmailFunc(ctx, email)
}

func (m *mockProfileRepo) Update(ctx context.Context, p *domain.Profile) error {
	return m.updateFunc(ctx, p)
}

func (m *mockProfileRepo) UpdateRole(ctx context.Context, tenantID, id uuid.UUID, role domain.Role) error {
	return m.updateRoleFunc(ctx, tenantID, id, role)
}

func (m *mockProfileRepo) Deactivate(ctx context.Context, tenantID, id uuid.UUID) error {
	return m.deactivateFunc(ctx, tenantID, id)
}

func (m *mockProfileRepo) ListByTenant(ctx context.Context, tenantID uuid.UUID, role domain.Role) ([]*domain.Profile, error) {
	return m.listByTenantFunc(ctx, tenantID, role)
}

// ---------------------------------------------------------------------------
// Mock CategoryRepository
// ---------------------------------------------------------------------------

type mockCategoryRepo struct {
	createFunc  func(ctx context.Context, c *domain.Category) error
	getByIDFunc func(ctx context.Context, tenantID, id uuid.UUID) (*domain.Category, error)
	listFunc    func(ctx context.Context, tenantID uuid.UUID, activeOnly bool) ([]*domain.Category, error)
	updateFunc  func(ctx context.Context, c *domain.Category) error
	deleteFunc  func(ctx context.Context, tenantID, id uuid.UUID) error
}

func (m *mockCategoryRepo) Create(ctx context.Context, c *domain.Category) error {
	return m.createFunc(ctx, c)
}

func (m *mockCategoryRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*domain.Category, error) {
	return m.getByIDFunc(ctx, tenantID, id)
}

func (m *mockCategoryRepo) List(ctx context.Context, tenantID uuid.UUID, activeOnly bool) ([]*domain.Category, error) {
	return m.listFunc(ctx, tenantID, activeOnly)
}

func (m *mockCategoryRepo) Update(ctx context.Context, c *domain.Category) error {
	return m.updateFunc(ctx, c)
}

func (m *mockCategoryRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return m.deleteFunc(ctx, tenantID, id)
}

// ---------------------------------------------------------------------------
// Mock EventRepository
// ---------------------------------------------------------------------------

type mockEventRepo struct {
	createFunc  func(ctx context.Context, e *domain.Event) error
	getByIDFunc func(ctx context.Context, tenantID, id uuid.UUID) (*domain.Event, error)
	listFunc    func(ctx context.Context, f domain.EventFilter) ([]*domain.Event, error)
	updateFunc  func(ctx context.Context, e *domain.Event) error
	deleteFunc  func(ctx context.Context, tenantID, id uuid.UUID) error
}

func (m *mockEventRepo) Create(ctx context.Context, e *domain.Event) error {
	return m.createFunc(ctx, e)
}

func (m *mockEventRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*domain.Event, error) {
	return m.getByIDFunc(ctx, tenantID, id)
}

func (m *mockEventRepo) List(ctx context.Context, f domain.EventFilter) ([]*domain.Event, error) {
	return m.listFunc(ctx, f)
}

func (m *mockEventRepo) Update(ctx context.Context, e *domain.Event) error {
	return m.updateFunc(ctx, e)
}

func (m *mockEventRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return m.deleteFunc(ctx, tenantID, id)
}

// ---------------------------------------------------------------------------
// Mock AuthService
// ---------------------------------------------------------------------------

type mockAuthService struct {
	registerFunc func(ctx context.Context, tenantSlug, email, password, name string) (*domain.Profile, error)
	loginFunc    func(ctx context.Context, email, password string) (*auth.Tokens, *domain.Profile, error)
	refreshFunc  func(ctx context.Context, refreshToken string) (string, error)
}

func (m *mockAuthService) Register(ctx context.Context, tenantSlug, email, password, name string) (*domain.Profile, error) {
	return m.registerFunc(ctx, tenantSlug, email, password, name)
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (*auth.Tokens, *domain.Profile, error) {
	return m.loginFunc(ctx, email, password)
}

func (m *mockAuthService) RefreshToken(ctx context.Context, refreshToken string) (string, error) {
	return m.refreshFunc(ctx, refreshToken)
}

// ---------------------------------------------------------------------------
// Mock ticket collaborators
// ---------------------------------------------------------------------------

type mockTicketQuery struct {
	listFunc  func(ctx context.Context, actor domain.Actor, f ticket.Filter) (*ticket.Page, error)
	getFunc   func(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.TicketView, error)
	boardFunc func(ctx context.Context, actor domain.Actor) (map[domain.TicketStatus][]*domain.TicketView, error)
}

func (m *mockTicketQuery) List(ctx context.Context, actor domain.Actor, f ticket.Filter) (*ticket.Page, error) {
	return m.listFunc(ctx, actor, f)
}

func (m *mockTicketQuery) Get(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.TicketView, error) {
	return m.getFunc(ctx, actor, id)
}

func (m *mockTicketQuery) Board(ctx context.Context, actor domain.Actor) (map[domain.TicketStatus][]*domain.TicketView, error) {
	return m.boardFunc(ctx, actor)
}

type mockLifecycle struct {
	changeStatusFunc func(ctx context.Context, actor domain.Actor, id uuid.UUID, to domain.TicketStatus) (*domain.TicketView, error)
	assignFunc       func(ctx context.Context, actor domain.Actor, id, assigneeID uuid.UUID) (*domain.TicketView, error)
	assignSelfFunc   func(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.TicketView, error)
	unassignFunc     func(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.TicketView, error)
}

func (m *mockLifecycle) ChangeStatus(ctx context.Context, actor domain.Actor, id uuid.UUID, to domain.TicketStatus) (*domain.TicketView, error) {
	return m.changeStatusFunc(ctx, actor, id, to)
}

func (m *mockLifecycle) Assign(ctx context.Context, actor domain.Actor, id, assigneeID uuid.UUID) (*domain.TicketView, error) {
	return m.assignFunc(ctx, actor, id, assigneeID)
}

func (m *mockLifecycle) AssignToSelf(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.TicketView, error) {
	return m.assignSelfFunc(ctx, actor, id)
}

func (m *mockLifecycle) Unassign(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.TicketView, error) {
	return m.unassignFunc(ctx, actor, id)
}

type mockTicketService struct {
	createFunc       func(ctx context.Context, actor domain.Actor, in ticket.NewTicket) (*domain.TicketView, error)
	addCommentFunc   func(ctx context.Context, actor domain.Actor, id uuid.UUID, in ticket.NewComment) (*domain.Comment, error)
	listCommentsFunc func(ctx context.Context, actor domain.Actor, id uuid.UUID) ([]*domain.Comment, error)
	addPhotosFunc    func(ctx context.Context, actor domain.Actor, id uuid.UUID, paths []string) (*domain.TicketView, error)
	historyFunc      func(ctx context.Context, actor domain.Actor, id uuid.UUID) ([]*domain.AuditEntry, error)
}

func (m *mockTicketService) Create(ctx context.Context, actor domain.Actor, in ticket.NewTicket) (*domain.TicketView, error) {
	return m.createFunc(ctx, actor, in)
}

func (m *mockTicketService) AddComment(ctx context.Context, actor domain.Actor, id uuid.UUID, in ticket.NewComment) (*domain.Comment, error) {
	return m.addCommentFunc(ctx, actor, id, in)
}

func (m *mockTicketService) ListComments(ctx context.Context, actor domain.Actor, id uuid.UUID) ([]*domain.Comment, error) {
	return m.listCommentsFunc(ctx, actor, id)
}

func (m *mockTicketService) AddPhotos(ctx context.Context, actor domain.Actor, id uuid.UUID, paths []string) (*domain.TicketView, error) {
	return m.addPhotosFunc(ctx, actor, id, paths)
}

func (m *mockTicketService) History(ctx context.Context, actor domain.Actor, id uuid.UUID) ([]*domain.AuditEntry, error) {
	return m.historyFunc(ctx, actor, id)
}

// ---------------------------------------------------------------------------
// Mock NotificationService
// ---------------------------------------------------------------------------

type mockNotificationService struct {
	listFunc        func(ctx context.Context, actor domain.Actor, f notify.ListFilter) ([]*domain.Notification, error)
	markReadFunc    func(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Notification, error)
	markUnreadFunc  func(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Notification, error)
	markAllReadFunc func(ctx context.Context, actor domain.Actor) ([]uuid.UUID, error)
	broadcastFunc   func(ctx context.Context, actor domain.Actor, in notify.Broadcast) ([]*domain.Notification, error)
}

func (m *mockNotificationService) List(ctx context.Context, actor domain.Actor, f notify.ListFilter) ([]*domain.Notification, error) {
	return m.listFunc(ctx, actor, f)
}

func (m *mockNotificationService) MarkRead(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Notification, error) {
	return m.markReadFunc(ctx, actor, id)
}

func (m *mockNotificationService) MarkUnread(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Notification, error) {
	return m.markUnreadFunc(ctx, actor, id)
}

func (m *mockNotificationService) MarkAllRead(ctx context.Context, actor domain.Actor) ([]uuid.UUID, error) {
	return m.markAllReadFunc(ctx, actor)
}

func (m *mockNotificationService) Broadcast(ctx context.Context, actor domain.Actor, in notify.Broadcast) ([]*domain.Notification, error) {
	return m.broadcastFunc(ctx, actor, in)
}

// ---------------------------------------------------------------------------
// Mock Uploader and PreferenceStore
// ---------------------------------------------------------------------------

type mockUploader struct {
	uploadFunc func(ctx context.Context, bucket, objectPath, contentType string, body io.ReadSeeker) (string, error)
	removeFunc func(ctx context.Context, bucket string, paths []string) error
}

func (m *mockUploader) Upload(ctx context.Context, bucket, objectPath, contentType string, body io.ReadSeeker) (string, error) {
	return m.uploadFunc(ctx, bucket, objectPath, contentType, body)
}

func (m *mockUploader) PublicURL(bucket, objectPath string) string {
	return "https://cdn.example.com/" + bucket + "/" + objectPath
}

func (m *mockUploader) Remove(ctx context.Context, bucket string, paths []string) error {
	return m.removeFunc(ctx, bucket, paths)
}

type mockPreferenceStore struct {
	getFunc    func(ctx context.Context, userID uuid.UUID) (map[string]bool, error)
	toggleFunc func(ctx context.Context, userID uuid.UUID, key string) (bool, error)
}

func (m *mockPreferenceStore) Get(ctx context.Context, userID uuid.UUID) (map[string]bool, error) {
	return m.getFunc(ctx, userID)
}

func (m *mockPreferenceStore) Toggle(ctx context.Context, userID uuid.UUID, key string) (bool, error) {
	return m.toggleFunc(ctx, userID, key)
}

package service

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shalom-church/portal/internal/domain"
	"github.com/shalom-church/portal/internal/repository"
)

type memRoleRepo struct {
	mu           sync.Mutex
	rows         map[string]domain.RoleAssignment
	inserts      int
	GetFunc      func(userID string) error
	BeforeInsert func(userID string)
	InsertErr    error
	UpsertErr    error
}

func newMemRoleRepo() *memRoleRepo {
	return &memRoleRepo{rows: map[string]domain.RoleAssignment{}}
}

func (r *memRoleRepo) GetByUserID(_ context.Context, userID string) (*domain.RoleAssignment, error) {
	if r.GetFunc != nil {
		if err := r.GetFunc(userID); err != nil {
			return nil, err
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &row, nil
}

func (r *memRoleRepo) Insert(_ context.Context, userID string, role domain.Role) (*domain.RoleAssignment, error) {
	if r.BeforeInsert != nil {
		r.BeforeInsert(userID)
	}
	if r.InsertErr != nil {
		return nil, r.InsertErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[userID]; ok {
		return nil, repository.ErrDuplicate
	}
	r.inserts++
	row := domain.RoleAssignment{ID: uuid.NewString(), UserID: userID, Role: role, CreatedAt: time.Now()}
	r.rows[userID] = row
	return &row, nil
}

func (r *memRoleRepo) Upsert(_ context.Context, userID string, role domain.Role) (*domain.RoleAssignment, error) {
	if r.UpsertErr != nil {
		return nil, r.UpsertErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[userID]
	if !ok {
		row = domain.RoleAssignment{ID: uuid.NewString(), UserID: userID, CreatedAt: time.Now()}
	}
	row.Role = role
	r.rows[userID] = row
	return &row, nil
}

func (r *memRoleRepo) List(_ context.Context) ([]domain.RoleAssignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.RoleAssignment, 0, len(r.rows))
	for _, row := range r.rows {
		out = append(out, row)
	}
	return out, nil
}

func (r *memRoleRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows)
}

type memRoleCache struct {
	mu   sync.Mutex
	data map[string]domain.Role
	err  error
}

func newMemRoleCache() *memRoleCache {
	return &memRoleCache{data: map[string]domain.Role{}}
}

func (c *memRoleCache) Get(_ context.Context, userID string) (domain.Role, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return domain.RoleNone, false, c.err
	}
	role, ok := c.data[userID]
	return role, ok, nil
}

func (c *memRoleCache) Set(_ context.Context, userID string, role domain.Role) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.data[userID] = role
	return nil
}

func (c *memRoleCache) Delete(_ context.Context, userID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, userID)
	return nil
}

type fakeDirectory struct {
	principals []domain.Principal
	err        error
}

func (d *fakeDirectory) ListUsers(context.Context) ([]domain.Principal, error) {
	return d.principals, d.err
}

type memUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
	err   error
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[string]*domain.User{}}
}

func (r *memUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	for _, u := range r.users {
		if u.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	user.ID = uuid.NewString()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memUserRepo) List(_ context.Context) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	out := make([]domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, nil
}

type fakeSender struct {
	mu       sync.Mutex
	SendFunc func(email domain.Email) (string, error)
	sent     []domain.Email
	calls    int
}

func (s *fakeSender) Send(_ context.Context, email domain.Email) (string, error) {
	s.mu.Lock()
	s.calls++
	n := s.calls
	s.mu.Unlock()

	if s.SendFunc != nil {
		id, err := s.SendFunc(email)
		if err != nil {
			return "", err
		}
		s.record(email)
		return id, nil
	}
	s.record(email)
	return "email-" + strconv.Itoa(n), nil
}

func (s *fakeSender) record(email domain.Email) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, email)
}

func (s *fakeSender) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type fakePreferences struct {
	mu           sync.Mutex
	prefs        map[string]domain.SubscriberPreference
	ListFunc     func(contentType domain.ContentType) ([]string, error)
	lastListType domain.ContentType
}

func (p *fakePreferences) Get(_ context.Context, userID string) (*domain.SubscriberPreference, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	pref, ok := p.prefs[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &pref, nil
}

func (p *fakePreferences) Upsert(_ context.Context, pref *domain.SubscriberPreference) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.prefs == nil {
		p.prefs = map[string]domain.SubscriberPreference{}
	}
	p.prefs[pref.UserID] = *pref
	return nil
}

func (p *fakePreferences) ListSubscriberIDs(_ context.Context, contentType domain.ContentType) ([]string, error) {
	p.mu.Lock()
	p.lastListType = contentType
	p.mu.Unlock()
	if p.ListFunc != nil {
		return p.ListFunc(contentType)
	}
	return nil, nil
}

type fakeProvider struct {
	mu            sync.Mutex
	customerCalls int
	sessionCalls  int
	lastInput     domain.CheckoutSessionInput
	CustomerErr   error
	SessionErr    error
}

func (p *fakeProvider) FindOrCreateCustomer(_ context.Context, email, _ string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.customerCalls++
	if p.CustomerErr != nil {
		return "", p.CustomerErr
	}
	return "cus_" + email, nil
}

func (p *fakeProvider) CreateCheckoutSession(_ context.Context, input domain.CheckoutSessionInput) (*domain.CheckoutSession, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sessionCalls++
	p.lastInput = input
	if p.SessionErr != nil {
		return nil, p.SessionErr
	}
	return &domain.CheckoutSession{ID: "cs_1", URL: "https://checkout.example/cs_1"}, nil
}

func (p *fakeProvider) calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.customerCalls + p.sessionCalls
}

type staticRoles map[string]domain.Role

func (r staticRoles) ResolveRole(_ context.Context, principal *domain.Principal) (domain.Role, error) {
	if role, ok := r[principal.ID]; ok {
		return role, nil
	}
	return domain.RoleUser, nil
}

type memContentRepo struct {
	mu         sync.Mutex
	events     []domain.Event
	sermons    []domain.Sermon
	ministries []domain.Ministry
	posts      []domain.BlogPost
	err        error
	lastLimit  int
	viewsErr   error
	relatedErr error
}

func (r *memContentRepo) CreateEvent(_ context.Context, e *domain.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	e.ID = uuid.NewString()
	r.events = append(r.events, *e)
	return nil
}

func (r *memContentRepo) ListEvents(_ context.Context, limit int) ([]domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastLimit = limit
	return r.events, r.err
}

func (r *memContentRepo) CreateSermon(_ context.Context, s *domain.Sermon) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	s.ID = uuid.NewString()
	r.sermons = append(r.sermons, *s)
	return nil
}

func (r *memContentRepo) ListSermons(_ context.Context, limit int) ([]domain.Sermon, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastLimit = limit
	return r.sermons, r.err
}

func (r *memContentRepo) CreateMinistry(_ context.Context, m *domain.Ministry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	m.ID = uuid.NewString()
	r.ministries = append(r.ministries, *m)
	return nil
}

func (r *memContentRepo) ListMinistries(_ context.Context, limit int) ([]domain.Ministry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastLimit = limit
	return r.ministries, r.err
}

func (r *memContentRepo) CreateBlogPost(_ context.Context, p *domain.BlogPost) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	for _, existing := range r.posts {
		if existing.Slug == p.Slug {
			return repository.ErrDuplicate
		}
	}
	p.ID = uuid.NewString()
	r.posts = append(r.posts, *p)
	return nil
}

func (r *memContentRepo) ListBlogPosts(_ context.Context, limit int) ([]domain.BlogPost, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastLimit = limit
	return r.posts, r.err
}

func (r *memContentRepo) UpdateEvent(_ context.Context, e *domain.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.events {
		if r.events[i].ID == e.ID {
			e.CreatedBy, e.CreatedAt = r.events[i].CreatedBy, r.events[i].CreatedAt
			r.events[i] = *e
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *memContentRepo) UpdateSermon(_ context.Context, s *domain.Sermon) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.sermons {
		if r.sermons[i].ID == s.ID {
			s.CreatedBy, s.CreatedAt = r.sermons[i].CreatedBy, r.sermons[i].CreatedAt
			r.sermons[i] = *s
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *memContentRepo) UpdateMinistry(_ context.Context, m *domain.Ministry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.ministries {
		if r.ministries[i].ID == m.ID {
			m.CreatedBy, m.CreatedAt = r.ministries[i].CreatedBy, r.ministries[i].CreatedAt
			r.ministries[i] = *m
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *memContentRepo) GetBlogPostBySlug(_ context.Context, slug string) (*domain.BlogPost, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	for _, p := range r.posts {
		if p.Slug == slug {
			return &p, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memContentRepo) IncrementBlogViews(_ context.Context, id string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.viewsErr != nil {
		return 0, r.viewsErr
	}
	for i := range r.posts {
		if r.posts[i].ID == id {
			r.posts[i].ViewCount++
			return r.posts[i].ViewCount, nil
		}
	}
	return 0, repository.ErrNotFound
}

func (r *memContentRepo) ListRelatedBlogPosts(_ context.Context, category, excludeID string, limit int) ([]domain.BlogPost, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.relatedErr != nil {
		return nil, r.relatedErr
	}
	var out []domain.BlogPost
	for _, p := range r.posts {
		if p.Category == category && p.ID != excludeID && len(out) < limit {
			out = append(out, p)
		}
	}
	return out, nil
}

type participationKey struct{ userID, targetID string }

// memParticipationRepo rejects unknown events and ministries the way the
// foreign keys do.
type memParticipationRepo struct {
	mu            sync.Mutex
	events        map[string]bool
	ministries    map[string]bool
	registrations map[participationKey]domain.EventRegistration
	memberships   map[participationKey]domain.MinistryMembership
	getErr        error
}

func newMemParticipationRepo(eventIDs, ministryIDs []string) *memParticipationRepo {
	r := &memParticipationRepo{
		events:        map[string]bool{},
		ministries:    map[string]bool{},
		registrations: map[participationKey]domain.EventRegistration{},
		memberships:   map[participationKey]domain.MinistryMembership{},
	}
	for _, id := range eventIDs {
		r.events[id] = true
	}
	for _, id := range ministryIDs {
		r.ministries[id] = true
	}
	return r
}

func (r *memParticipationRepo) UpsertRegistration(_ context.Context, reg *domain.EventRegistration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.events[reg.EventID] {
		return repository.ErrNotFound
	}
	key := participationKey{reg.UserID, reg.EventID}
	if existing, ok := r.registrations[key]; ok {
		reg.ID = existing.ID
	} else {
		reg.ID = uuid.NewString()
	}
	reg.RegisteredAt = time.Now()
	r.registrations[key] = *reg
	return nil
}

func (r *memParticipationRepo) SetRegistrationStatus(_ context.Context, userID, eventID string, status domain.RegistrationStatus) (*domain.EventRegistration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := participationKey{userID, eventID}
	reg, ok := r.registrations[key]
	if !ok {
		return nil, repository.ErrNotFound
	}
	reg.Status = status
	r.registrations[key] = reg
	return &reg, nil
}

func (r *memParticipationRepo) GetRegistration(_ context.Context, userID, eventID string) (*domain.EventRegistration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	reg, ok := r.registrations[participationKey{userID, eventID}]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &reg, nil
}

func (r *memParticipationRepo) UpsertMembership(_ context.Context, m *domain.MinistryMembership) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.ministries[m.MinistryID] {
		return repository.ErrNotFound
	}
	key := participationKey{m.UserID, m.MinistryID}
	if existing, ok := r.memberships[key]; ok {
		m.ID, m.Role = existing.ID, existing.Role
	} else {
		m.ID = uuid.NewString()
	}
	m.JoinedAt = time.Now()
	r.memberships[key] = *m
	return nil
}

func (r *memParticipationRepo) SetMembershipStatus(_ context.Context, userID, ministryID string, status domain.MembershipStatus) (*domain.MinistryMembership, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := participationKey{userID, ministryID}
	m, ok := r.memberships[key]
	if !ok {
		return nil, repository.ErrNotFound
	}
	m.Status = status
	r.memberships[key] = m
	return &m, nil
}

func (r *memParticipationRepo) GetMembership(_ context.Context, userID, ministryID string) (*domain.MinistryMembership, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	m, ok := r.memberships[participationKey{userID, ministryID}]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &m, nil
}

type memContactRepo struct {
	mu    sync.Mutex
	saved []domain.ContactMessage
	err   error
}

func (r *memContactRepo) Create(_ context.Context, msg *domain.ContactMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	msg.ID = uuid.NewString()
	r.saved = append(r.saved, *msg)
	return nil
}

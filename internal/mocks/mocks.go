package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/avatarctic/ping-notifier/internal/core/domain/auth"
	"github.com/avatarctic/ping-notifier/internal/core/domain/discord"
	"github.com/avatarctic/ping-notifier/internal/core/domain/ping"
	"github.com/avatarctic/ping-notifier/internal/core/ports"
)

// ChannelClientMock is a lightweight mock for ports.ChannelClient.
type ChannelClientMock struct {
	ListChannelsFn   func(ctx context.Context) ([]discord.ChannelSummary, error)
	GetChannelNameFn func(ctx context.Context, channelID string) (string, error)
	PostMessageFn    func(ctx context.Context, channelID, content string) (string, error)
	DeleteMessageFn  func(ctx context.Context, channelID, messageID string) error

	mu       sync.Mutex
	Posted   []string
	Deleted  []string
	Resolved []string
}

func (m *ChannelClientMock) ListChannels(ctx context.Context) ([]discord.ChannelSummary, error) {
	if m.ListChannelsFn != nil {
		return m.ListChannelsFn(ctx)
	}
	return []discord.ChannelSummary{}, nil
}
func (m *ChannelClientMock) GetChannelName(ctx context.Context, channelID string) (string, error) {
	m.mu.Lock()
	m.Resolved = append(m.Resolved, channelID)
	m.mu.Unlock()
	if m.GetChannelNameFn != nil {
		return m.GetChannelNameFn(ctx, channelID)
	}
	return "channel-" + channelID, nil
}
func (m *ChannelClientMock) PostMessage(ctx context.Context, channelID, content string) (string, error) {
	m.mu.Lock()
	m.Posted = append(m.Posted, channelID)
	m.mu.Unlock()
	if m.PostMessageFn != nil {
		return m.PostMessageFn(ctx, channelID, content)
	}
	return "m-" + channelID, nil
}
func (m *ChannelClientMock) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	m.mu.Lock()
	m.Deleted = append(m.Deleted, channelID+"/"+messageID)
	m.mu.Unlock()
	if m.DeleteMessageFn != nil {
		return m.DeleteMessageFn(ctx, channelID, messageID)
	}
	return nil
}

// PingTemplateRepositoryMock keeps templates in a map unless an Fn overrides a call.
type PingTemplateRepositoryMock struct {
	CreateFn  func(ctx context.Context, t *ping.Template) error
	GetByIDFn func(ctx context.Context, id uuid.UUID) (*ping.Template, error)
	ListFn    func(ctx context.Context) ([]*ping.Template, error)
	UpdateFn  func(ctx context.Context, t *ping.Template) error
	DeleteFn  func(ctx context.Context, id uuid.UUID) error

	mu        sync.Mutex
	Templates map[uuid.UUID]*ping.Template
	Calls     map[string]int
}

func (m *PingTemplateRepositoryMock) record(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Calls == nil {
		m.Calls = map[string]int{}
	}
	m.Calls[name]++
}

func (m *PingTemplateRepositoryMock) store() map[uuid.UUID]*ping.Template {
	if m.Templates == nil {
		m.Templates = map[uuid.UUID]*ping.Template{}
	}
	return m.Templates
}

func (m *PingTemplateRepositoryMock) Create(ctx context.Context, t *ping.Template) error {
	m.record("Create")
	if m.CreateFn != nil {
		return m.CreateFn(ctx, t)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	t.CreatedAt, t.UpdatedAt = now, now
	cp := *t
	m.store()[t.ID] = &cp
	return nil
}
func (m *PingTemplateRepositoryMock) GetByID(ctx context.Context, id uuid.UUID) (*ping.Template, error) {
	m.record("GetByID")
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.store()[id]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, ping.ErrTemplateNotFound
}
func (m *PingTemplateRepositoryMock) List(ctx context.Context) ([]*ping.Template, error) {
	m.record("List")
	if m.ListFn != nil {
		return m.ListFn(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*ping.Template, 0, len(m.store()))
	for _, t := range m.store() {
		cp := *t
		out = append(out, &cp)
	}
	return out, nil
}
func (m *PingTemplateRepositoryMock) Update(ctx context.Context, t *ping.Template) error {
	m.record("Update")
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, t)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store()[t.ID]; !ok {
		return ping.ErrTemplateNotFound
	}
	t.UpdatedAt = time.Now()
	cp := *t
	m.store()[t.ID] = &cp
	return nil
}
func (m *PingTemplateRepositoryMock) Delete(ctx context.Context, id uuid.UUID) error {
	m.record("Delete")
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store()[id]; !ok {
		return ping.ErrTemplateNotFound
	}
	delete(m.store(), id)
	return nil
}

// PingRepositoryMock keeps pings in insertion order unless an Fn overrides a call.
type PingRepositoryMock struct {
	CreateFn  func(ctx context.Context, p *ping.Ping) error
	GetByIDFn func(ctx context.Context, id uuid.UUID) (*ping.Ping, error)
	DeleteFn  func(ctx context.Context, id uuid.UUID) error

	mu    sync.Mutex
	Pings []*ping.Ping
}

func (m *PingRepositoryMock) Create(ctx context.Context, p *ping.Ping) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, p)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p.CreatedAt = time.Now()
	cp := *p
	m.Pings = append(m.Pings, &cp)
	return nil
}
func (m *PingRepositoryMock) GetByID(ctx context.Context, id uuid.UUID) (*ping.Ping, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.Pings {
		if p.ID == id {
			cp := *p
			return &cp, nil
		}
	}
	return nil, ping.ErrPingNotFound
}
func (m *PingRepositoryMock) List(ctx context.Context, limit, offset int) ([]*ping.Ping, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if offset >= len(m.Pings) {
		return []*ping.Ping{}, nil
	}
	end := offset + limit
	if end > len(m.Pings) {
		end = len(m.Pings)
	}
	return append([]*ping.Ping(nil), m.Pings[offset:end]...), nil
}
func (m *PingRepositoryMock) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Pings), nil
}
func (m *PingRepositoryMock) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, p := range m.Pings {
		if p.ID == id {
			m.Pings = append(m.Pings[:i], m.Pings[i+1:]...)
			return nil
		}
	}
	return ping.ErrPingNotFound
}

// RateLimiterMock allows everything unless AllowFn says otherwise.
type RateLimiterMock struct {
	AllowFn func(ctx context.Context, subject string) (bool, int, int, time.Time, error)
}

func (m *RateLimiterMock) Allow(ctx context.Context, subject string) (bool, int, int, time.Time, error) {
	if m.AllowFn != nil {
		return m.AllowFn(ctx, subject)
	}
	return true, 1, 1, time.Now().Add(time.Minute), nil
}

// RateLimitRepositoryMock is a lightweight mock for ports.RateLimitRepository.
type RateLimitRepositoryMock struct {
	IncrementWindowFn func(ctx context.Context, subject string, window time.Duration, keyPrefix string, ttl time.Duration) (int, time.Time, error)
}

func (m *RateLimitRepositoryMock) IncrementWindow(ctx context.Context, subject string, window time.Duration, keyPrefix string, ttl time.Duration) (int, time.Time, error) {
	if m.IncrementWindowFn != nil {
		return m.IncrementWindowFn(ctx, subject, window, keyPrefix, ttl)
	}
	return 1, time.Now().Truncate(window), nil
}

// MemoryCache is an in-memory ports.Cache. TTLs are ignored.
type MemoryCache struct {
	mu     sync.Mutex
	Data   map[string][]byte
	Gets   int
	Sets   int
	GetErr error
}

func NewMemoryCache() *MemoryCache { return &MemoryCache{Data: map[string][]byte{}} }

func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Gets++
	if c.GetErr != nil {
		return nil, false, c.GetErr
	}
	v, ok := c.Data[key]
	return v, ok, nil
}
func (c *MemoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Sets++
	c.Data[key] = value
	return nil
}
func (c *MemoryCache) Delete(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.Data, k)
	}
	return nil
}
func (c *MemoryCache) Has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.Data[key]
	return ok
}

// PingTemplateServiceMock is a lightweight mock for ports.PingTemplateService.
type PingTemplateServiceMock struct {
	CreateTemplateFn func(ctx context.Context, actor string, in *ping.TemplateInput) (*ping.Template, error)
	UpdateTemplateFn func(ctx context.Context, actor string, id uuid.UUID, in *ping.TemplateInput) (*ping.Template, error)
	GetTemplateFn    func(ctx context.Context, id uuid.UUID) (*ping.Template, error)
	ListTemplatesFn  func(ctx context.Context) ([]*ping.Template, error)
	DeleteTemplateFn func(ctx context.Context, id uuid.UUID) error
}

func (m *PingTemplateServiceMock) CreateTemplate(ctx context.Context, actor string, in *ping.TemplateInput) (*ping.Template, error) {
	if m.CreateTemplateFn != nil {
		return m.CreateTemplateFn(ctx, actor, in)
	}
	return &ping.Template{ID: uuid.New(), Name: in.Name, UpdatedBy: actor}, nil
}
func (m *PingTemplateServiceMock) UpdateTemplate(ctx context.Context, actor string, id uuid.UUID, in *ping.TemplateInput) (*ping.Template, error) {
	if m.UpdateTemplateFn != nil {
		return m.UpdateTemplateFn(ctx, actor, id, in)
	}
	return &ping.Template{ID: id, Name: in.Name, UpdatedBy: actor}, nil
}
func (m *PingTemplateServiceMock) GetTemplate(ctx context.Context, id uuid.UUID) (*ping.Template, error) {
	if m.GetTemplateFn != nil {
		return m.GetTemplateFn(ctx, id)
	}
	return nil, ping.ErrTemplateNotFound
}
func (m *PingTemplateServiceMock) ListTemplates(ctx context.Context) ([]*ping.Template, error) {
	if m.ListTemplatesFn != nil {
		return m.ListTemplatesFn(ctx)
	}
	return []*ping.Template{}, nil
}
func (m *PingTemplateServiceMock) DeleteTemplate(ctx context.Context, id uuid.UUID) error {
	if m.DeleteTemplateFn != nil {
		return m.DeleteTemplateFn(ctx, id)
	}
	return nil
}

// PingServiceMock is a lightweight mock for ports.PingService.
type PingServiceMock struct {
	SendPingFn   func(ctx context.Context, actor string, groups []string, req *ping.SendPingRequest) (*ping.Ping, error)
	GetPingFn    func(ctx context.Context, id uuid.UUID) (*ping.Ping, error)
	ListPingsFn  func(ctx context.Context, limit, offset int) ([]*ping.Ping, int, error)
	DeletePingFn func(ctx context.Context, id uuid.UUID) error
}

func (m *PingServiceMock) SendPing(ctx context.Context, actor string, groups []string, req *ping.SendPingRequest) (*ping.Ping, error) {
	if m.SendPingFn != nil {
		return m.SendPingFn(ctx, actor, groups, req)
	}
	return &ping.Ping{ID: uuid.New(), Text: req.Text, SentBy: actor}, nil
}
func (m *PingServiceMock) GetPing(ctx context.Context, id uuid.UUID) (*ping.Ping, error) {
	if m.GetPingFn != nil {
		return m.GetPingFn(ctx, id)
	}
	return nil, ping.ErrPingNotFound
}
func (m *PingServiceMock) ListPings(ctx context.Context, limit, offset int) ([]*ping.Ping, int, error) {
	if m.ListPingsFn != nil {
		return m.ListPingsFn(ctx, limit, offset)
	}
	return []*ping.Ping{}, 0, nil
}
func (m *PingServiceMock) DeletePing(ctx context.Context, id uuid.UUID) error {
	if m.DeletePingFn != nil {
		return m.DeletePingFn(ctx, id)
	}
	return nil
}

// HealthCheckerMock reports Err from Check.
type HealthCheckerMock struct {
	NameValue string
	Err       error
}

func (m *HealthCheckerMock) Name() string                    { return m.NameValue }
func (m *HealthCheckerMock) Check(ctx context.Context) error { return m.Err }

// TokenVerifierMock accepts tokens listed in Actors, keyed by token string.
// Groups optionally sets the groups claim per token.
type TokenVerifierMock struct {
	Actors map[string]string
	Groups map[string][]string
}

func (m *TokenVerifierMock) ValidateToken(ctx context.Context, token string) (*auth.Claims, error) {
	if actor, ok := m.Actors[token]; ok {
		return &auth.Claims{Name: actor, Groups: m.Groups[token]}, nil
	}
	return nil, auth.ErrInvalidToken
}

var (
	_ ports.TokenVerifier          = (*TokenVerifierMock)(nil)
	_ ports.ChannelClient          = (*ChannelClientMock)(nil)
	_ ports.PingTemplateRepository = (*PingTemplateRepositoryMock)(nil)
	_ ports.PingRepository         = (*PingRepositoryMock)(nil)
	_ ports.RateLimiterService     = (*RateLimiterMock)(nil)
	_ ports.RateLimitRepository    = (*RateLimitRepositoryMock)(nil)
	_ ports.Cache                  = (*MemoryCache)(nil)
	_ ports.PingTemplateService    = (*PingTemplateServiceMock)(nil)
	_ ports.PingService            = (*PingServiceMock)(nil)
	_ ports.HealthChecker          = (*HealthCheckerMock)(nil)
)

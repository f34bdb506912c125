package ports

import (
	"context"

	"github.com/avatarctic/ping-notifier/internal/core/domain/ping"
	"github.com/google/uuid"
)

// PingTemplateRepository defines persistence for ping templates.
type PingTemplateRepository interface {
	Create(ctx context.Context, t *ping.Template) error
	GetByID(ctx context.Context, id uuid.UUID) (*ping.Template, error)
	List(ctx context.Context) ([]*ping.Template, error)
	Update(ctx context.Context, t *ping.Template) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// PingRepository defines persistence for sent pings.
type PingRepository interface {
	Create(ctx context.Context, p *ping.Ping) error
	GetByID(ctx context.Context, id uuid.UUID) (*ping.Ping, error)
	List(ctx context.Context, limit, offset int) ([]*ping.Ping, error)
	Count(ctx context.Context) (int, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// PingTemplateService defines template management.
type PingTemplateService interface {
	CreateTemplate(ctx context.Context, actor string, in *ping.TemplateInput) (*ping.Template, error)
	UpdateTemplate(ctx context.Context, actor string, id uuid.UUID, in *ping.TemplateInput) (*ping.Template, error)
	GetTemplate(ctx context.Context, id uuid.UUID) (*ping.Template, error)
	ListTemplates(ctx context.Context) ([]*ping.Template, error)
	DeleteTemplate(ctx context.Context, id uuid.UUID) error
}

// PingService defines sending and retracting pings.
type PingService interface {
	SendPing(ctx context.Context, actor string, groups []string, req *ping.SendPingRequest) (*ping.Ping, error)
	GetPing(ctx context.Context, id uuid.UUID) (*ping.Ping, error)
	ListPings(ctx context.Context, limit, offset int) ([]*ping.Ping, int, error)
	DeletePing(ctx context.Context, id uuid.UUID) error
}

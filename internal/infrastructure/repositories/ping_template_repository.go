package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/avatarctic/ping-notifier/internal/core/domain/ping"
	"github.com/avatarctic/ping-notifier/internal/core/ports"
	"github.com/avatarctic/ping-notifier/internal/infrastructure/db"
)

const pingTemplateColumns = `id, name, slack_channel_id, slack_channel_name, discord_channel_id, template,
		allowed_neucore_groups, allow_scheduling, updated_by, created_at, updated_at`

// pingTemplateRow mirrors the ping_templates table; the group list is a
// Postgres text array.
type pingTemplateRow struct {
	ID                   uuid.UUID      `db:"id"`
	Name                 string         `db:"name"`
	SlackChannelID       string         `db:"slack_channel_id"`
	SlackChannelName     string         `db:"slack_channel_name"`
	DiscordChannelID     sql.NullString `db:"discord_channel_id"`
	Template             string         `db:"template"`
	AllowedNeucoreGroups pq.StringArray `db:"allowed_neucore_groups"`
	AllowScheduling      bool           `db:"allow_scheduling"`
	UpdatedBy            string         `db:"updated_by"`
	CreatedAt            time.Time      `db:"created_at"`
	UpdatedAt            time.Time      `db:"updated_at"`
}

func (r *pingTemplateRow) toDomain() *ping.Template {
	t := &ping.Template{
		ID:                   r.ID,
		Name:                 r.Name,
		SlackChannelID:       r.SlackChannelID,
		SlackChannelName:     r.SlackChannelName,
		Template:             r.Template,
		AllowedNeucoreGroups: []string(r.AllowedNeucoreGroups),
		AllowScheduling:      r.AllowScheduling,
		UpdatedBy:            r.UpdatedBy,
		CreatedAt:            r.CreatedAt,
		UpdatedAt:            r.UpdatedAt,
	}
	if t.AllowedNeucoreGroups == nil {
		t.AllowedNeucoreGroups = []string{}
	}
	if r.DiscordChannelID.Valid {
		id := r.DiscordChannelID.String
		t.DiscordChannelID = &id
	}
	return t
}

func groupsArray(groups []string) pq.StringArray {
	if groups == nil {
		return pq.StringArray{}
	}
	return pq.StringArray(groups)
}

// PingTemplateRepository stores ping templates in Postgres.
type PingTemplateRepository struct {
	db *db.Database
}

// NewPingTemplateRepository creates a new ping template repository.
func NewPingTemplateRepository(database *db.Database) ports.PingTemplateRepository {
	return &PingTemplateRepository{db: database}
}

// Create inserts t. CreatedAt and UpdatedAt are filled from the database.
func (r *PingTemplateRepository) Create(ctx context.Context, t *ping.Template) error {
	query := `
		INSERT INTO ping_templates (id, name, slack_channel_id, slack_channel_name, discord_channel_id,
			template, allowed_neucore_groups, allow_scheduling, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`

	err := r.db.DB.QueryRowxContext(ctx, query,
		t.ID, t.Name, t.SlackChannelID, t.SlackChannelName, t.DiscordChannelID,
		t.Template, groupsArray(t.AllowedNeucoreGroups), t.AllowScheduling, t.UpdatedBy,
	).Scan(&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create ping template: %w", err)
	}
	return nil
}

// GetByID retrieves a template by ID.
func (r *PingTemplateRepository) GetByID(ctx context.Context, id uuid.UUID) (*ping.Template, error) {
	var row pingTemplateRow
	query := `SELECT ` + pingTemplateColumns + ` FROM ping_templates WHERE id = $1`

	if err := r.db.DB.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("ping template %s: %w", id, ping.ErrTemplateNotFound)
		}
		return nil, fmt.Errorf("failed to get ping template by ID: %w", err)
	}
	return row.toDomain(), nil
}

// List returns all templates ordered by name.
func (r *PingTemplateRepository) List(ctx context.Context) ([]*ping.Template, error) {
	var rows []pingTemplateRow
	query := `SELECT ` + pingTemplateColumns + ` FROM ping_templates ORDER BY name ASC, id ASC`

	if err := r.db.DB.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to list ping templates: %w", err)
	}
	out := make([]*ping.Template, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDomain())
	}
	return out, nil
}

// Update overwrites every mutable column and refreshes t.UpdatedAt.
func (r *PingTemplateRepository) Update(ctx context.Context, t *ping.Template) error {
	query := `
		UPDATE ping_templates
		SET name = $2, slack_channel_id = $3, slack_channel_name = $4, discord_channel_id = $5,
		    template = $6, allowed_neucore_groups = $7, allow_scheduling = $8, updated_by = $9,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.DB.QueryRowxContext(ctx, query,
		t.ID, t.Name, t.SlackChannelID, t.SlackChannelName, t.DiscordChannelID,
		t.Template, groupsArray(t.AllowedNeucoreGroups), t.AllowScheduling, t.UpdatedBy,
	).Scan(&t.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("ping template %s: %w", t.ID, ping.ErrTemplateNotFound)
		}
		return fmt.Errorf("failed to update ping template: %w", err)
	}
	return nil
}

// Delete removes a template. Pings sent from it keep their row with a NULL template_id.
func (r *PingTemplateRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.DB.ExecContext(ctx, `DELETE FROM ping_templates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete ping template: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("ping template %s: %w", id, ping.ErrTemplateNotFound)
	}
	return nil
}

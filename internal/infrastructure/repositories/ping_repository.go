package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/avatarctic/ping-notifier/internal/core/domain/ping"
	"github.com/avatarctic/ping-notifier/internal/core/ports"
	"github.com/avatarctic/ping-notifier/internal/infrastructure/db"
)

const pingColumns = `id, template_id, text, sent_by, slack_channel_id, slack_channel_name,
		discord_channel_id, discord_channel_name, discord_message_id, created_at`

// PingRepository stores sent pings in Postgres.
type PingRepository struct {
	db *db.Database
}

// NewPingRepository creates a new ping repository.
func NewPingRepository(database *db.Database) ports.PingRepository {
	return &PingRepository{db: database}
}

// Create inserts p and fills CreatedAt.
func (r *PingRepository) Create(ctx context.Context, p *ping.Ping) error {
	query := `
		INSERT INTO pings (id, template_id, text, sent_by, slack_channel_id, slack_channel_name,
			discord_channel_id, discord_channel_name, discord_message_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at`

	err := r.db.DB.QueryRowxContext(ctx, query,
		p.ID, p.TemplateID, p.Text, p.SentBy, p.SlackChannelID, p.SlackChannelName,
		p.DiscordChannelID, p.DiscordChannelName, p.DiscordMessageID,
	).Scan(&p.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create ping: %w", err)
	}
	return nil
}

// GetByID retrieves a ping by ID.
func (r *PingRepository) GetByID(ctx context.Context, id uuid.UUID) (*ping.Ping, error) {
	var p ping.Ping
	query := `SELECT ` + pingColumns + ` FROM pings WHERE id = $1`

	if err := r.db.DB.GetContext(ctx, &p, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("ping %s: %w", id, ping.ErrPingNotFound)
		}
		return nil, fmt.Errorf("failed to get ping by ID: %w", err)
	}
	return &p, nil
}

// List returns pings newest first.
func (r *PingRepository) List(ctx context.Context, limit, offset int) ([]*ping.Ping, error) {
	var pings []*ping.Ping
	query := `SELECT ` + pingColumns + ` FROM pings ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2`

	if err := r.db.DB.SelectContext(ctx, &pings, query, limit, offset); err != nil {
		return nil, fmt.Errorf("failed to list pings: %w", err)
	}
	if pings == nil {
		pings = []*ping.Ping{}
	}
	return pings, nil
}

// Count returns the total number of pings.
func (r *PingRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.DB.GetContext(ctx, &count, `SELECT COUNT(*) FROM pings`); err != nil {
		return 0, fmt.Errorf("failed to count pings: %w", err)
	}
	return count, nil
}

// Delete removes a ping row.
func (r *PingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.DB.ExecContext(ctx, `DELETE FROM pings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete ping: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("ping %s: %w", id, ping.ErrPingNotFound)
	}
	return nil
}

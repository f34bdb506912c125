package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/avatarctic/ping-notifier/internal/core/domain/discord"
	"github.com/avatarctic/ping-notifier/internal/core/domain/ping"
	"github.com/avatarctic/ping-notifier/internal/core/ports"
)

type PingTemplateService struct {
	repo     ports.PingTemplateRepository
	channels ports.ChannelClient
	logger   *logrus.Logger
}

func NewPingTemplateService(repo ports.PingTemplateRepository, channels ports.ChannelClient, logger *logrus.Logger) ports.PingTemplateService {
	return &PingTemplateService{repo: repo, channels: channels, logger: logger}
}

// checkDiscordChannel confirms that a bound Discord channel exists. An id that
// does not resolve, or that Discord answers with 404, is a bad input rather
// than a remote failure.
func (s *PingTemplateService) checkDiscordChannel(ctx context.Context, channelID *string) error {
	if channelID == nil {
		return nil
	}
	if _, err := s.channels.GetChannelName(ctx, *channelID); err != nil {
		if errors.Is(err, discord.ErrInvalidChannel) || discord.IsNotFound(err) {
			return fmt.Errorf("%w: %w", ping.ErrInvalidTemplate, err)
		}
		return fmt.Errorf("failed to resolve discord channel: %w", err)
	}
	return nil
}

func (s *PingTemplateService) CreateTemplate(ctx context.Context, actor string, in *ping.TemplateInput) (*ping.Template, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkDiscordChannel(ctx, in.DiscordChannelID); err != nil {
		return nil, err
	}

	t := &ping.Template{
		ID:                   uuid.New(),
		Name:                 in.Name,
		SlackChannelID:       in.SlackChannelID,
		SlackChannelName:     in.SlackChannelName,
		DiscordChannelID:     in.DiscordChannelID,
		Template:             in.Template,
		AllowedNeucoreGroups: in.AllowedNeucoreGroups,
		AllowScheduling:      in.AllowScheduling != nil && *in.AllowScheduling,
		UpdatedBy:            actor,
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to create ping template: %w", err)
	}

	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{"template_id": t.ID, "actor": actor}).Info("ping template created")
	}
	return t, nil
}

// UpdateTemplate replaces the template's fields. AllowScheduling keeps its
// current value when omitted; a nil DiscordChannelID clears the binding.
func (s *PingTemplateService) UpdateTemplate(ctx context.Context, actor string, id uuid.UUID, in *ping.TemplateInput) (*ping.Template, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	channelChanged := in.DiscordChannelID != nil &&
		(t.DiscordChannelID == nil || *t.DiscordChannelID != *in.DiscordChannelID)
	if channelChanged {
		if err := s.checkDiscordChannel(ctx, in.DiscordChannelID); err != nil {
			return nil, err
		}
	}

	t.Name = in.Name
	t.SlackChannelID = in.SlackChannelID
	t.SlackChannelName = in.SlackChannelName
	t.DiscordChannelID = in.DiscordChannelID
	t.Template = in.Template
	t.AllowedNeucoreGroups = in.AllowedNeucoreGroups
	if in.AllowScheduling != nil {
		t.AllowScheduling = *in.AllowScheduling
	}
	t.UpdatedBy = actor

	if err := s.repo.Update(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to update ping template: %w", err)
	}
	return t, nil
}

func (s *PingTemplateService) GetTemplate(ctx context.Context, id uuid.UUID) (*ping.Template, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *PingTemplateService) ListTemplates(ctx context.Context) ([]*ping.Template, error) {
	return s.repo.List(ctx)
}

func (s *PingTemplateService) DeleteTemplate(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if s.logger != nil {
		s.logger.WithField("template_id", id).Info("ping template deleted")
	}
	return nil
}

package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/avatarctic/ping-notifier/internal/core/domain/discord"
	"github.com/avatarctic/ping-notifier/internal/core/domain/ping"
	"github.com/avatarctic/ping-notifier/internal/core/ports"
)

const (
	defaultPingPageSize = 50
	maxPingPageSize     = 200
)

type PingService struct {
	pings     ports.PingRepository
	templates ports.PingTemplateRepository
	channels  ports.ChannelClient
	limiter   ports.RateLimiterService
	logger    *logrus.Logger
}

// NewPingService wires the ping use cases. limiter may be nil to disable rate limiting.
func NewPingService(pings ports.PingRepository, templates ports.PingTemplateRepository, channels ports.ChannelClient, limiter ports.RateLimiterService, logger *logrus.Logger) ports.PingService {
	return &PingService{pings: pings, templates: templates, channels: channels, limiter: limiter, logger: logger}
}

func (s *PingService) allow(ctx context.Context, actor string) error {
	if s.limiter == nil {
		return nil
	}
	allowed, _, _, _, err := s.limiter.Allow(ctx, actor)
	if err != nil {
		// Fail open
		return nil
	}
	if !allowed {
		return ping.ErrRateLimited
	}
	return nil
}

// SendPing posts the ping to Discord when a channel applies and records it.
// The request's channel takes precedence over the template's. A template with
// allowed groups may only be sent by a member of one of them.
func (s *PingService) SendPing(ctx context.Context, actor string, groups []string, req *ping.SendPingRequest) (*ping.Ping, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	p := &ping.Ping{
		ID:     uuid.New(),
		Text:   req.Text,
		SentBy: actor,
	}

	var channelID *string
	if req.TemplateID != nil {
		t, err := s.templates.GetByID(ctx, *req.TemplateID)
		if err != nil {
			return nil, err
		}
		if !t.AllowsGroups(groups) {
			if s.logger != nil {
				s.logger.WithFields(logrus.Fields{"template_id": t.ID, "actor": actor, "groups": groups}).Warn("ping rejected: sender not in allowed groups")
			}
			return nil, ping.ErrForbidden
		}
		p.TemplateID = &t.ID
		p.SlackChannelID = &t.SlackChannelID
		p.SlackChannelName = &t.SlackChannelName
		channelID = t.DiscordChannelID
	}
	if req.DiscordChannelID != nil {
		if id := strings.TrimSpace(*req.DiscordChannelID); id != "" {
			channelID = &id
		}
	}

	if err := s.allow(ctx, actor); err != nil {
		return nil, err
	}

	if channelID != nil {
		name, err := s.channels.GetChannelName(ctx, *channelID)
		if err != nil {
			if errors.Is(err, discord.ErrInvalidChannel) || discord.IsNotFound(err) {
				return nil, fmt.Errorf("%w: %w", ping.ErrInvalidPing, err)
			}
			return nil, err
		}
		messageID, err := s.channels.PostMessage(ctx, *channelID, req.Text)
		if err != nil {
			return nil, err
		}
		p.DiscordChannelID = channelID
		p.DiscordChannelName = &name
		p.DiscordMessageID = &messageID
	}

	if err := s.pings.Create(ctx, p); err != nil {
		if p.HasDiscordMessage() {
			s.retract(ctx, p)
		}
		return nil, fmt.Errorf("failed to record ping: %w", err)
	}

	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{
			"ping_id":            p.ID,
			"actor":              actor,
			"discord_channel_id": deref(p.DiscordChannelID),
			"discord_message_id": deref(p.DiscordMessageID),
		}).Info("ping sent")
	}
	return p, nil
}

// retract removes a posted message whose ping could not be recorded, so that
// no untracked message is left behind.
func (s *PingService) retract(ctx context.Context, p *ping.Ping) {
	err := s.channels.DeleteMessage(context.WithoutCancel(ctx), *p.DiscordChannelID, *p.DiscordMessageID)
	if err != nil && s.logger != nil {
		s.logger.WithFields(logrus.Fields{
			"discord_channel_id": *p.DiscordChannelID,
			"discord_message_id": *p.DiscordMessageID,
		}).WithError(err).Warn("failed to retract discord message of unrecorded ping")
	}
}

func (s *PingService) GetPing(ctx context.Context, id uuid.UUID) (*ping.Ping, error) {
	return s.pings.GetByID(ctx, id)
}

// ListPings returns a page of pings, newest first, and the total count.
func (s *PingService) ListPings(ctx context.Context, limit, offset int) ([]*ping.Ping, int, error) {
	if limit <= 0 {
		limit = defaultPingPageSize
	}
	if limit > maxPingPageSize {
		limit = maxPingPageSize
	}
	if offset < 0 {
		offset = 0
	}
	pings, err := s.pings.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.pings.Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	return pings, total, nil
}

// DeletePing deletes the Discord message before the record. A message that
// Discord no longer knows is treated as already deleted.
func (s *PingService) DeletePing(ctx context.Context, id uuid.UUID) error {
	p, err := s.pings.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if p.HasDiscordMessage() {
		err := s.channels.DeleteMessage(ctx, *p.DiscordChannelID, *p.DiscordMessageID)
		if err != nil && !discord.IsNotFound(err) {
			return err
		}
	}
	return s.pings.Delete(ctx, id)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

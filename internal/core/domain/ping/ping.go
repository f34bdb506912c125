package ping

import (
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrTemplateNotFound = errors.New("ping template not found")
	ErrPingNotFound     = errors.New("ping not found")
	ErrInvalidTemplate  = errors.New("invalid ping template")
	ErrInvalidPing      = errors.New("invalid ping")
	ErrRateLimited      = errors.New("too many pings, try again later")
	ErrForbidden        = errors.New("not a member of a group allowed to send this template")
)

// Template is a reusable ping definition. A template always targets a Slack
// channel and may additionally target a Discord channel.
type Template struct {
	ID                   uuid.UUID `json:"id" db:"id"`
	Name                 string    `json:"name" db:"name"`
	SlackChannelID       string    `json:"slack_channel_id" db:"slack_channel_id"`
	SlackChannelName     string    `json:"slack_channel_name" db:"slack_channel_name"`
	DiscordChannelID     *string   `json:"discord_channel_id" db:"discord_channel_id"`
	Template             string    `json:"template" db:"template"`
	AllowedNeucoreGroups []string  `json:"allowed_neucore_groups" db:"-"`
	AllowScheduling      bool      `json:"allow_scheduling" db:"allow_scheduling"`
	UpdatedBy            string    `json:"updated_by" db:"updated_by"`
	CreatedAt            time.Time `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time `json:"updated_at" db:"updated_at"`
}

// AllowsGroups reports whether a sender in groups may use the template. A
// template without allowed groups is open to everyone.
func (t *Template) AllowsGroups(groups []string) bool {
	if len(t.AllowedNeucoreGroups) == 0 {
		return true
	}
	return slices.ContainsFunc(groups, func(g string) bool {
		return slices.Contains(t.AllowedNeucoreGroups, g)
	})
}

// TemplateInput is the create/update payload for a template.
type TemplateInput struct {
	Name                 string   `json:"name"`
	SlackChannelID       string   `json:"slack_channel_id"`
	SlackChannelName     string   `json:"slack_channel_name"`
	DiscordChannelID     *string  `json:"discord_channel_id,omitempty"`
	Template             string   `json:"template"`
	AllowedNeucoreGroups []string `json:"allowed_neucore_groups"`
	AllowScheduling      *bool    `json:"allow_scheduling,omitempty"`
}

// Normalize trims the input and turns an empty Discord channel id into nil,
// which clears the Discord binding.
func (in *TemplateInput) Normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.SlackChannelID = strings.TrimSpace(in.SlackChannelID)
	if in.DiscordChannelID != nil {
		id := strings.TrimSpace(*in.DiscordChannelID)
		if id == "" {
			in.DiscordChannelID = nil
		} else {
			in.DiscordChannelID = &id
		}
	}
	if in.AllowedNeucoreGroups == nil {
		in.AllowedNeucoreGroups = []string{}
	}
}

// Validate checks required fields. Call Normalize first.
func (in *TemplateInput) Validate() error {
	switch {
	case in.Name == "":
		return errors.Join(ErrInvalidTemplate, errors.New("name is required"))
	case in.SlackChannelID == "":
		return errors.Join(ErrInvalidTemplate, errors.New("slack_channel_id is required"))
	case strings.TrimSpace(in.Template) == "":
		return errors.Join(ErrInvalidTemplate, errors.New("template is required"))
	}
	return nil
}

// Ping is a message that was sent, with the Discord identifiers recorded so it
// can be deleted later.
type Ping struct {
	ID                 uuid.UUID  `json:"id" db:"id"`
	TemplateID         *uuid.UUID `json:"template_id" db:"template_id"`
	Text               string     `json:"text" db:"text"`
	SentBy             string     `json:"sent_by" db:"sent_by"`
	SlackChannelID     *string    `json:"slack_channel_id" db:"slack_channel_id"`
	SlackChannelName   *string    `json:"slack_channel_name" db:"slack_channel_name"`
	DiscordChannelID   *string    `json:"discord_channel_id" db:"discord_channel_id"`
	DiscordChannelName *string    `json:"discord_channel_name" db:"discord_channel_name"`
	DiscordMessageID   *string    `json:"discord_message_id" db:"discord_message_id"`
	CreatedAt          time.Time  `json:"created_at" db:"created_at"`
}

// HasDiscordMessage reports whether the ping was posted to Discord.
func (p *Ping) HasDiscordMessage() bool {
	return p.DiscordChannelID != nil && p.DiscordMessageID != nil
}

// SendPingRequest is the payload for sending a ping. DiscordChannelID
// overrides the template's Discord channel when set.
type SendPingRequest struct {
	TemplateID       *uuid.UUID `json:"template_id,omitempty"`
	Text             string     `json:"text"`
	DiscordChannelID *string    `json:"discord_channel_id,omitempty"`
}

// Validate checks the ping request.
func (r *SendPingRequest) Validate() error {
	if strings.TrimSpace(r.Text) == "" {
		return errors.Join(ErrInvalidPing, errors.New("text is required"))
	}
	return nil
}

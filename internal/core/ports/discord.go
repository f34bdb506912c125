package ports

import (
	"context"

	"github.com/avatarctic/ping-notifier/internal/core/domain/discord"
)

// ChannelClient is the Discord surface used by the application. Implementations
// cache channel lookups and return *discord.Error for remote failures.
type ChannelClient interface {
	// ListChannels returns the postable, named channels of the configured guild
	// sorted by name. Without a configured guild it returns an empty list.
	ListChannels(ctx context.Context) ([]discord.ChannelSummary, error)
	// GetChannelName resolves a channel id; unknown or nameless channels fail with discord.ErrInvalidChannel.
	GetChannelName(ctx context.Context, channelID string) (string, error)
	// PostMessage posts content and returns the new message id.
	PostMessage(ctx context.Context, channelID, content string) (string, error)
	DeleteMessage(ctx context.Context, channelID, messageID string) error
}

package discord

import (
	"context"
	"net/http"
	"net/url"
	"slices"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/avatarctic/ping-notifier/internal/core/domain/discord"
	"github.com/avatarctic/ping-notifier/internal/core/ports"
	"github.com/avatarctic/ping-notifier/internal/infrastructure/ttlcache"
)

const (
	defaultCacheTTL             = 30 * time.Minute
	defaultChannelNameCacheSize = 1000
)

// Config holds Discord client settings.
type Config struct {
	Token      string
	GuildID    string
	APIBaseURL string

	RequestTimeout             time.Duration
	ChannelCacheTTL            time.Duration
	ChannelNameCacheTTL        time.Duration
	ChannelNameCacheMaxEntries int
	FetchTimeout               time.Duration

	// HTTPClient overrides the default client built from RequestTimeout.
	HTTPClient *http.Client
}

// Client implements ports.ChannelClient over the Discord REST API.
type Client struct {
	requester    *Requester
	guildID      string
	channels     *ttlcache.Cache[ttlcache.Unit, []discord.Channel]
	channelNames *ttlcache.Cache[string, string]
	logger       *logrus.Logger
}

var _ ports.ChannelClient = (*Client)(nil)

// NewClient creates a Discord client. cacheMetrics and requestObserver may be nil.
func NewClient(cfg *Config, logger *logrus.Logger, cacheMetrics ttlcache.Metrics, requestObserver RequestObserver) *Client {
	channelTTL := cfg.ChannelCacheTTL
	if channelTTL <= 0 {
		channelTTL = defaultCacheTTL
	}
	nameTTL := cfg.ChannelNameCacheTTL
	if nameTTL <= 0 {
		nameTTL = defaultCacheTTL
	}
	nameCacheSize := cfg.ChannelNameCacheMaxEntries
	if nameCacheSize <= 0 {
		nameCacheSize = defaultChannelNameCacheSize
	}

	requester := NewRequester(cfg.APIBaseURL, cfg.Token, cfg.HTTPClient, cfg.RequestTimeout, requestObserver, logger)

	return &Client{
		requester: requester,
		guildID:   cfg.GuildID,
		channels: ttlcache.New[ttlcache.Unit, []discord.Channel](
			&guildChannelsFetcher{requester: requester, guildID: cfg.GuildID},
			ttlcache.Options{
				Name:         "discord_guild_channels",
				TTL:          channelTTL,
				FetchTimeout: cfg.FetchTimeout,
				Metrics:      cacheMetrics,
				Logger:       logger,
			},
		),
		channelNames: ttlcache.New[string, string](
			&channelNameFetcher{requester: requester},
			ttlcache.Options{
				Name:         "discord_channel_names",
				TTL:          nameTTL,
				MaxEntries:   nameCacheSize,
				FetchTimeout: cfg.FetchTimeout,
				Metrics:      cacheMetrics,
				Logger:       logger,
			},
		),
		logger: logger,
	}
}

// ListChannels implements ports.ChannelClient.
func (c *Client) ListChannels(ctx context.Context) ([]discord.ChannelSummary, error) {
	if c.guildID == "" {
		return []discord.ChannelSummary{}, nil
	}
	channels, err := c.channels.Get(ctx, ttlcache.Unit{})
	if err != nil {
		return nil, err
	}
	out := make([]discord.ChannelSummary, 0, len(channels))
	for _, ch := range channels {
		if ch.Name == nil {
			continue
		}
		out = append(out, discord.ChannelSummary{ID: ch.ID, Name: *ch.Name})
	}
	return out, nil
}

// GetChannelName implements ports.ChannelClient.
func (c *Client) GetChannelName(ctx context.Context, channelID string) (string, error) {
	if channelID == "" {
		return "", &discord.Error{Kind: discord.KindInvalidChannel, ChannelID: channelID}
	}
	return c.channelNames.Get(ctx, channelID)
}

// PostMessage implements ports.ChannelClient.
func (c *Client) PostMessage(ctx context.Context, channelID, content string) (string, error) {
	msg, err := do[discord.Message](ctx, c.requester, call{
		method: http.MethodPost,
		route:  "/channels/{channel_id}/messages",
		path:   "/channels/" + url.PathEscape(channelID) + "/messages",
		body:   discord.CreateMessageRequest{Content: content},
	})
	if err != nil {
		c.forgetIfGone(channelID, err)
		return "", err
	}
	// Without an id the message cannot be told apart from one never sent.
	if msg == nil || msg.ID == nil || *msg.ID == "" {
		return "", &discord.Error{Kind: discord.KindMalformedResponse, ChannelID: channelID}
	}
	if c.logger != nil {
		c.logger.WithFields(logrus.Fields{"channel_id": channelID, "message_id": *msg.ID}).Debug("discord: message posted")
	}
	return *msg.ID, nil
}

// DeleteMessage implements ports.ChannelClient.
func (c *Client) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	_, err := do[struct{}](ctx, c.requester, call{
		method: http.MethodDelete,
		route:  "/channels/{channel_id}/messages/{message_id}",
		path:   "/channels/" + url.PathEscape(channelID) + "/messages/" + url.PathEscape(messageID),
	})
	if err != nil {
		c.forgetIfGone(channelID, err)
	}
	return err
}

// forgetIfGone drops cached data for a channel Discord reports as unknown, so
// its name and list entry are not served until the TTL runs out.
func (c *Client) forgetIfGone(channelID string, err error) {
	if !discord.IsUnknownChannel(err) {
		return
	}
	c.channelNames.Invalidate(channelID)
	c.channels.Invalidate(ttlcache.Unit{})
	if c.logger != nil {
		c.logger.WithField("channel_id", channelID).Info("discord: channel is gone, dropped cached entries")
	}
}

// guildChannelsFetcher loads the guild's postable channels sorted by name.
type guildChannelsFetcher struct {
	requester *Requester
	guildID   string
}

func (f *guildChannelsFetcher) Fetch(ctx context.Context, _ ttlcache.Unit) ([]discord.Channel, error) {
	channels, err := do[[]discord.Channel](ctx, f.requester, call{
		method: http.MethodGet,
		route:  "/guilds/{guild_id}/channels",
		path:   "/guilds/" + url.PathEscape(f.guildID) + "/channels",
	})
	if err != nil {
		return nil, err
	}
	if channels == nil {
		return []discord.Channel{}, nil
	}

	postable := make([]discord.Channel, 0, len(*channels))
	for _, ch := range *channels {
		if ch.IsPostable() {
			postable = append(postable, ch)
		}
	}
	sortByName(postable)
	return postable, nil
}

// sortByName orders channels by name with locale-aware collation; a missing
// name sorts as the empty string.
func sortByName(channels []discord.Channel) {
	// Collators keep internal buffers, so each sort gets its own.
	col := collate.New(language.Und)
	slices.SortStableFunc(channels, func(a, b discord.Channel) int {
		return col.CompareString(nameOf(a), nameOf(b))
	})
}

func nameOf(ch discord.Channel) string {
	if ch.Name == nil {
		return ""
	}
	return *ch.Name
}

// channelNameFetcher resolves one channel id to its name.
type channelNameFetcher struct {
	requester *Requester
}

func (f *channelNameFetcher) Fetch(ctx context.Context, channelID string) (string, error) {
	channel, err := do[discord.Channel](ctx, f.requester, call{
		method: http.MethodGet,
		route:  "/channels/{channel_id}",
		path:   "/channels/" + url.PathEscape(channelID),
	})
	if err != nil {
		return "", err
	}
	if channel == nil || channel.Name == nil {
		return "", &discord.Error{Kind: discord.KindInvalidChannel, ChannelID: channelID}
	}
	return *channel.Name, nil
}

package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	impl "github.com/avatarctic/ping-notifier/internal/application/services"
	"github.com/avatarctic/ping-notifier/internal/core/domain/discord"
	"github.com/avatarctic/ping-notifier/internal/core/domain/ping"
	"github.com/avatarctic/ping-notifier/internal/mocks"
)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func validInput() *ping.TemplateInput {
	return &ping.TemplateInput{
		Name:             " Fleet op ",
		SlackChannelID:   "C123",
		SlackChannelName: "fleet",
		Template:         "Form up in {system}",
	}
}

func TestCreateTemplate_WithoutDiscordChannel(t *testing.T) {
	repo := &mocks.PingTemplateRepositoryMock{}
	client := &mocks.ChannelClientMock{}
	svc := impl.NewPingTemplateService(repo, client, nil)

	tpl, err := svc.CreateTemplate(context.Background(), "alice", validInput())
	require.NoError(t, err)

	assert.Equal(t, "Fleet op", tpl.Name)
	assert.Equal(t, "alice", tpl.UpdatedBy)
	assert.Nil(t, tpl.DiscordChannelID)
	assert.False(t, tpl.AllowScheduling)
	assert.Equal(t, []string{}, tpl.AllowedNeucoreGroups)
	assert.Empty(t, client.Resolved, "no channel lookup without a discord binding")
	assert.Equal(t, 1, repo.Calls["Create"])
}

func TestCreateTemplate_EmptyDiscordChannelClearsBinding(t *testing.T) {
	repo := &mocks.PingTemplateRepositoryMock{}
	client := &mocks.ChannelClientMock{}
	svc := impl.NewPingTemplateService(repo, client, nil)

	in := validInput()
	in.DiscordChannelID = strPtr("  ")
	tpl, err := svc.CreateTemplate(context.Background(), "alice", in)
	require.NoError(t, err)
	assert.Nil(t, tpl.DiscordChannelID)
	assert.Empty(t, client.Resolved)
}

func TestCreateTemplate_ValidatesDiscordChannel(t *testing.T) {
	repo := &mocks.PingTemplateRepositoryMock{}
	client := &mocks.ChannelClientMock{}
	svc := impl.NewPingTemplateService(repo, client, nil)

	in := validInput()
	in.DiscordChannelID = strPtr("987")
	in.AllowScheduling = boolPtr(true)
	tpl, err := svc.CreateTemplate(context.Background(), "alice", in)
	require.NoError(t, err)

	require.NotNil(t, tpl.DiscordChannelID)
	assert.Equal(t, "987", *tpl.DiscordChannelID)
	assert.True(t, tpl.AllowScheduling)
	assert.Equal(t, []string{"987"}, client.Resolved)
}

func TestCreateTemplate_InvalidDiscordChannel(t *testing.T) {
	repo := &mocks.PingTemplateRepositoryMock{}
	client := &mocks.ChannelClientMock{GetChannelNameFn: func(ctx context.Context, id string) (string, error) {
		return "", &discord.Error{Kind: discord.KindInvalidChannel, ChannelID: id}
	}}
	svc := impl.NewPingTemplateService(repo, client, nil)

	in := validInput()
	in.DiscordChannelID = strPtr("nope")
	_, err := svc.CreateTemplate(context.Background(), "alice", in)

	require.Error(t, err)
	assert.ErrorIs(t, err, ping.ErrInvalidTemplate)
	assert.ErrorIs(t, err, discord.ErrInvalidChannel)
	assert.Zero(t, repo.Calls["Create"])
}

func unknownChannel(ctx context.Context, id string) (string, error) {
	return "", &discord.Error{
		Kind:       discord.KindRequestFailed,
		StatusCode: 404,
		Status:     "Not Found",
		Body:       `{"message": "Unknown Channel", "code": 10003}`,
		Code:       discord.CodeUnknownChannel,
	}
}

func TestCreateTemplate_UnknownDiscordChannelIsInvalid(t *testing.T) {
	repo := &mocks.PingTemplateRepositoryMock{}
	client := &mocks.ChannelClientMock{GetChannelNameFn: unknownChannel}
	svc := impl.NewPingTemplateService(repo, client, nil)

	in := validInput()
	in.DiscordChannelID = strPtr("404404")
	_, err := svc.CreateTemplate(context.Background(), "alice", in)

	require.Error(t, err)
	assert.ErrorIs(t, err, ping.ErrInvalidTemplate)
	assert.True(t, discord.IsNotFound(err))
	assert.Zero(t, repo.Calls["Create"])
}

func TestUpdateTemplate_UnknownDiscordChannelIsInvalid(t *testing.T) {
	repo := &mocks.PingTemplateRepositoryMock{}
	client := &mocks.ChannelClientMock{}
	svc := impl.NewPingTemplateService(repo, client, nil)
	created, err := svc.CreateTemplate(context.Background(), "alice", validInput())
	require.NoError(t, err)

	client.GetChannelNameFn = unknownChannel
	upd := validInput()
	upd.DiscordChannelID = strPtr("404404")
	_, err = svc.UpdateTemplate(context.Background(), "bob", created.ID, upd)

	assert.ErrorIs(t, err, ping.ErrInvalidTemplate)
	assert.Zero(t, repo.Calls["Update"])
}

func TestCreateTemplate_DiscordOutagePropagates(t *testing.T) {
	repo := &mocks.PingTemplateRepositoryMock{}
	client := &mocks.ChannelClientMock{GetChannelNameFn: func(ctx context.Context, id string) (string, error) {
		return "", &discord.Error{Kind: discord.KindRequestFailed, StatusCode: 503, Status: "Service Unavailable"}
	}}
	svc := impl.NewPingTemplateService(repo, client, nil)

	in := validInput()
	in.DiscordChannelID = strPtr("987")
	_, err := svc.CreateTemplate(context.Background(), "alice", in)

	require.Error(t, err)
	assert.ErrorIs(t, err, discord.ErrRequestFailed)
	assert.NotErrorIs(t, err, ping.ErrInvalidTemplate)
}

func TestCreateTemplate_MissingFields(t *testing.T) {
	svc := impl.NewPingTemplateService(&mocks.PingTemplateRepositoryMock{}, &mocks.ChannelClientMock{}, nil)

	for name, mutate := range map[string]func(*ping.TemplateInput){
		"name":     func(in *ping.TemplateInput) { in.Name = " " },
		"slack":    func(in *ping.TemplateInput) { in.SlackChannelID = "" },
		"template": func(in *ping.TemplateInput) { in.Template = "\n" },
	} {
		t.Run(name, func(t *testing.T) {
			in := validInput()
			mutate(in)
			_, err := svc.CreateTemplate(context.Background(), "alice", in)
			assert.ErrorIs(t, err, ping.ErrInvalidTemplate)
		})
	}
}

func TestUpdateTemplate_SkipsLookupForUnchangedChannel(t *testing.T) {
	repo := &mocks.PingTemplateRepositoryMock{}
	client := &mocks.ChannelClientMock{}
	svc := impl.NewPingTemplateService(repo, client, nil)

	in := validInput()
	in.DiscordChannelID = strPtr("987")
	in.AllowScheduling = boolPtr(true)
	created, err := svc.CreateTemplate(context.Background(), "alice", in)
	require.NoError(t, err)

	upd := validInput()
	upd.Name = "Renamed"
	upd.DiscordChannelID = strPtr("987")
	updated, err := svc.UpdateTemplate(context.Background(), "bob", created.ID, upd)
	require.NoError(t, err)

	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, "bob", updated.UpdatedBy)
	assert.True(t, updated.AllowScheduling, "omitted allow_scheduling keeps the stored value")
	assert.Len(t, client.Resolved, 1)
}

func TestUpdateTemplate_ClearsDiscordChannel(t *testing.T) {
	repo := &mocks.PingTemplateRepositoryMock{}
	svc := impl.NewPingTemplateService(repo, &mocks.ChannelClientMock{}, nil)

	in := validInput()
	in.DiscordChannelID = strPtr("987")
	created, err := svc.CreateTemplate(context.Background(), "alice", in)
	require.NoError(t, err)

	upd := validInput()
	upd.DiscordChannelID = strPtr("")
	updated, err := svc.UpdateTemplate(context.Background(), "alice", created.ID, upd)
	require.NoError(t, err)
	assert.Nil(t, updated.DiscordChannelID)

	stored, err := svc.GetTemplate(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.DiscordChannelID)
}

func TestUpdateTemplate_NotFound(t *testing.T) {
	svc := impl.NewPingTemplateService(&mocks.PingTemplateRepositoryMock{}, &mocks.ChannelClientMock{}, nil)
	_, err := svc.UpdateTemplate(context.Background(), "alice", uuid.New(), validInput())
	assert.ErrorIs(t, err, ping.ErrTemplateNotFound)
}

func TestDeleteTemplate_PropagatesRepoError(t *testing.T) {
	boom := errors.New("boom")
	repo := &mocks.PingTemplateRepositoryMock{DeleteFn: func(ctx context.Context, id uuid.UUID) error { return boom }}
	svc := impl.NewPingTemplateService(repo, &mocks.ChannelClientMock{}, nil)
	assert.ErrorIs(t, svc.DeleteTemplate(context.Background(), uuid.New()), boom)
}

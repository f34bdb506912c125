package httpserver_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avatarctic/ping-notifier/internal/application/services"
	"github.com/avatarctic/ping-notifier/internal/core/domain/discord"
	"github.com/avatarctic/ping-notifier/internal/core/domain/ping"
	"github.com/avatarctic/ping-notifier/internal/core/ports"
	"github.com/avatarctic/ping-notifier/internal/infrastructure/httpserver"
	"github.com/avatarctic/ping-notifier/internal/infrastructure/metrics"
	"github.com/avatarctic/ping-notifier/internal/mocks"
)

type testServer struct {
	server    *httpserver.Server
	channels  *mocks.ChannelClientMock
	templates *mocks.PingTemplateServiceMock
	pings     *mocks.PingServiceMock
	checkers  []ports.HealthChecker
}

func newTestServer(t *testing.T, checkers ...ports.HealthChecker) *testServer {
	t.Helper()
	return newTestServerWith(t, nil, checkers...)
}

// newTestServerWith serves templateSvc when it is non-nil and the template
// service mock otherwise.
func newTestServerWith(t *testing.T, templateSvc ports.PingTemplateService, checkers ...ports.HealthChecker) *testServer {
	t.Helper()
	reg := prometheus.NewRegistry()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	ts := &testServer{
		channels:  &mocks.ChannelClientMock{},
		templates: &mocks.PingTemplateServiceMock{},
		pings:     &mocks.PingServiceMock{},
		checkers:  checkers,
	}
	if templateSvc == nil {
		templateSvc = ts.templates
	}
	ts.server = httpserver.NewServer(&httpserver.ServerConfig{Version: "test"}, logger, httpserver.ServerDeps{
		TemplateService: templateSvc,
		PingService:     ts.pings,
		ChannelClient:   ts.channels,
		TokenVerifier: &mocks.TokenVerifierMock{
			Actors: map[string]string{"good": "alice"},
			Groups: map[string][]string{"good": {"fc", "members"}},
		},
		HealthCheckers:  checkers,
		HTTPMetrics:     metrics.NewHTTPMetrics(reg),
		Gatherer:        reg,
	})
	return ts
}

func (ts *testServer) do(method, path, body string, authed bool) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		req.Header.Set("Authorization", "Bearer good")
	}
	rec := httptest.NewRecorder()
	ts.server.Echo().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, &mocks.HealthCheckerMock{NameValue: "database"}, &mocks.HealthCheckerMock{NameValue: "discord"})

	rec := ts.do(http.MethodGet, "/health", "", false)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "test", body["version"])
}

func TestHealth_Degraded(t *testing.T) {
	ts := newTestServer(t,
		&mocks.HealthCheckerMock{NameValue: "database"},
		&mocks.HealthCheckerMock{NameValue: "discord", Err: errors.New("401 Unauthorized")},
	)

	rec := ts.do(http.MethodGet, "/health", "", false)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "degraded", body["status"])
	deps := body["dependencies"].(map[string]any)
	assert.Equal(t, "healthy", deps["database"])
	assert.Equal(t, "unhealthy", deps["discord"])
}

func TestAPI_RequiresBearerToken(t *testing.T) {
	ts := newTestServer(t)

	assert.Equal(t, http.StatusUnauthorized, ts.do(http.MethodGet, "/api/v1/discord/channels", "", false).Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/pings", nil)
	req.Header.Set("Authorization", "Bearer forged")
	rec := httptest.NewRecorder()
	ts.server.Echo().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestListDiscordChannels(t *testing.T) {
	ts := newTestServer(t)
	ts.channels.ListChannelsFn = func(ctx context.Context) ([]discord.ChannelSummary, error) {
		return []discord.ChannelSummary{{ID: "2", Name: "announcements"}, {ID: "1", Name: "general"}}, nil
	}

	rec := ts.do(http.MethodGet, "/api/v1/discord/channels", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"channels":[{"id":"2","name":"announcements"},{"id":"1","name":"general"}]}`, rec.Body.String())
}

func TestGetDiscordChannel_ErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"invalid channel", &discord.Error{Kind: discord.KindInvalidChannel, ChannelID: "x"}, http.StatusBadRequest},
		{"discord 404", &discord.Error{Kind: discord.KindRequestFailed, StatusCode: 404, Status: "Not Found"}, http.StatusNotFound},
		{"discord 503", &discord.Error{Kind: discord.KindRequestFailed, StatusCode: 503, Status: "Service Unavailable"}, http.StatusBadGateway},
		{"malformed", &discord.Error{Kind: discord.KindMalformedResponse}, http.StatusBadGateway},
		{"unclassified", errors.New("invalid character '<'"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ts := newTestServer(t)
			ts.channels.GetChannelNameFn = func(ctx context.Context, id string) (string, error) { return "", tc.err }
			rec := ts.do(http.MethodGet, "/api/v1/discord/channels/x", "", true)
			assert.Equal(t, tc.code, rec.Code)
		})
	}
}

func TestGetDiscordChannel(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(http.MethodGet, "/api/v1/discord/channels/123", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":"123","name":"channel-123"}`, rec.Body.String())
}

func TestCreateTemplate_PassesActor(t *testing.T) {
	ts := newTestServer(t)
	var gotActor string
	var gotInput *ping.TemplateInput
	ts.templates.CreateTemplateFn = func(ctx context.Context, actor string, in *ping.TemplateInput) (*ping.Template, error) {
		gotActor, gotInput = actor, in
		return &ping.Template{ID: uuid.New(), Name: in.Name, UpdatedBy: actor}, nil
	}

	rec := ts.do(http.MethodPost, "/api/v1/templates",
		`{"name":"ops","slack_channel_id":"C1","template":"x","discord_channel_id":"55","allowed_neucore_groups":["a"]}`, true)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "alice", gotActor)
	require.NotNil(t, gotInput.DiscordChannelID)
	assert.Equal(t, "55", *gotInput.DiscordChannelID)
	assert.Equal(t, []string{"a"}, gotInput.AllowedNeucoreGroups)
	assert.Equal(t, "alice", decode(t, rec)["updated_by"])
}

func TestCreateTemplate_ValidationErrors(t *testing.T) {
	ts := newTestServer(t)
	ts.templates.CreateTemplateFn = func(ctx context.Context, actor string, in *ping.TemplateInput) (*ping.Template, error) {
		return nil, errors.Join(ping.ErrInvalidTemplate, errors.New("name is required"))
	}

	assert.Equal(t, http.StatusBadRequest, ts.do(http.MethodPost, "/api/v1/templates", `{"name":`, true).Code)
	assert.Equal(t, http.StatusBadRequest, ts.do(http.MethodPost, "/api/v1/templates", `{"name":""}`, true).Code)
}

func TestTemplateWrites_UnknownDiscordChannelIs400(t *testing.T) {
	channels := &mocks.ChannelClientMock{GetChannelNameFn: func(ctx context.Context, id string) (string, error) {
		return "", &discord.Error{
			Kind:       discord.KindRequestFailed,
			StatusCode: http.StatusNotFound,
			Status:     "Not Found",
			Body:       `{"message": "Unknown Channel", "code": 10003}`,
			Code:       discord.CodeUnknownChannel,
		}
	}}
	repo := &mocks.PingTemplateRepositoryMock{}
	ts := newTestServerWith(t, services.NewPingTemplateService(repo, channels, nil))

	existing := &ping.Template{ID: uuid.New(), Name: "ops", SlackChannelID: "C1", Template: "x"}
	require.NoError(t, repo.Create(context.Background(), existing))

	body := `{"name":"ops","slack_channel_id":"C1","template":"x","discord_channel_id":"404404"}`
	rec := ts.do(http.MethodPost, "/api/v1/templates", body, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

	rec = ts.do(http.MethodPut, "/api/v1/templates/"+existing.ID.String(), body, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
}

func TestSendPing_GroupRestrictedTemplate(t *testing.T) {
	templates := &mocks.PingTemplateRepositoryMock{}
	restricted := &ping.Template{ID: uuid.New(), Name: "caps", SlackChannelID: "C1", Template: "x", AllowedNeucoreGroups: []string{"directors"}}
	fcOnly := &ping.Template{ID: uuid.New(), Name: "ops", SlackChannelID: "C1", Template: "x", AllowedNeucoreGroups: []string{"fc"}}
	require.NoError(t, templates.Create(context.Background(), restricted))
	require.NoError(t, templates.Create(context.Background(), fcOnly))

	ts := newTestServer(t)
	svc := services.NewPingService(&mocks.PingRepositoryMock{}, templates, ts.channels, nil, nil)
	ts.pings.SendPingFn = svc.SendPing

	rec := ts.do(http.MethodPost, "/api/v1/pings", `{"text":"x","template_id":"`+restricted.ID.String()+`"}`, true)
	assert.Equal(t, http.StatusForbidden, rec.Code, rec.Body.String())

	rec = ts.do(http.MethodPost, "/api/v1/pings", `{"text":"x","template_id":"`+fcOnly.ID.String()+`"}`, true)
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestTemplateByID(t *testing.T) {
	ts := newTestServer(t)
	id := uuid.New()
	ts.templates.GetTemplateFn = func(ctx context.Context, got uuid.UUID) (*ping.Template, error) {
		if got == id {
			return &ping.Template{ID: id, Name: "ops"}, nil
		}
		return nil, ping.ErrTemplateNotFound
	}

	assert.Equal(t, http.StatusOK, ts.do(http.MethodGet, "/api/v1/templates/"+id.String(), "", true).Code)
	assert.Equal(t, http.StatusNotFound, ts.do(http.MethodGet, "/api/v1/templates/"+uuid.NewString(), "", true).Code)
	assert.Equal(t, http.StatusBadRequest, ts.do(http.MethodGet, "/api/v1/templates/not-a-uuid", "", true).Code)
	assert.Equal(t, http.StatusNoContent, ts.do(http.MethodDelete, "/api/v1/templates/"+id.String(), "", true).Code)
}

func TestListTemplates(t *testing.T) {
	ts := newTestServer(t)
	ts.templates.ListTemplatesFn = func(ctx context.Context) ([]*ping.Template, error) {
		return []*ping.Template{{ID: uuid.New(), Name: "ops"}}, nil
	}

	rec := ts.do(http.MethodGet, "/api/v1/templates", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["templates"], 1)
}

func TestSendPing(t *testing.T) {
	ts := newTestServer(t)
	ts.pings.SendPingFn = func(ctx context.Context, actor string, groups []string, req *ping.SendPingRequest) (*ping.Ping, error) {
		assert.Equal(t, "alice", actor)
		assert.Equal(t, []string{"fc", "members"}, groups)
		ch, msg := "9", "m1"
		return &ping.Ping{ID: uuid.New(), Text: req.Text, SentBy: actor, DiscordChannelID: &ch, DiscordMessageID: &msg}, nil
	}

	rec := ts.do(http.MethodPost, "/api/v1/pings", `{"text":"form up"}`, true)
	require.Equal(t, http.StatusCreated, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "m1", body["discord_message_id"])
}

func TestSendPing_ErrorMapping(t *testing.T) {
	cases := map[error]int{
		ping.ErrRateLimited:      http.StatusTooManyRequests,
		ping.ErrForbidden:        http.StatusForbidden,
		ping.ErrTemplateNotFound: http.StatusNotFound,
		ping.ErrInvalidPing:      http.StatusBadRequest,
		&discord.Error{Kind: discord.KindMalformedResponse}: http.StatusBadGateway,
	}
	for err, code := range cases {
		ts := newTestServer(t)
		ts.pings.SendPingFn = func(ctx context.Context, actor string, groups []string, req *ping.SendPingRequest) (*ping.Ping, error) {
			return nil, err
		}
		assert.Equal(t, code, ts.do(http.MethodPost, "/api/v1/pings", `{"text":"x"}`, true).Code, err.Error())
	}
}

func TestListPings_Paging(t *testing.T) {
	ts := newTestServer(t)
	ts.pings.ListPingsFn = func(ctx context.Context, limit, offset int) ([]*ping.Ping, int, error) {
		assert.Equal(t, 10, limit)
		assert.Equal(t, 20, offset)
		return []*ping.Ping{}, 42, nil
	}

	rec := ts.do(http.MethodGet, "/api/v1/pings?limit=10&offset=20", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(42), decode(t, rec)["total"])
}

func TestDeletePing(t *testing.T) {
	ts := newTestServer(t)
	id := uuid.New()
	ts.pings.DeletePingFn = func(ctx context.Context, got uuid.UUID) error {
		if got != id {
			return ping.ErrPingNotFound
		}
		return nil
	}

	assert.Equal(t, http.StatusNoContent, ts.do(http.MethodDelete, "/api/v1/pings/"+id.String(), "", true).Code)
	assert.Equal(t, http.StatusNotFound, ts.do(http.MethodDelete, "/api/v1/pings/"+uuid.NewString(), "", true).Code)
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)
	ts.do(http.MethodGet, "/api/v1/pings", "", true)

	rec := ts.do(http.MethodGet, "/metrics", "", false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `http_requests_total{endpoint="/api/v1/pings",method="GET",status="200"} 1`)
}

package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/avatarctic/ping-notifier/internal/core/domain/discord"
)

// DefaultAPIBaseURL is the versioned Discord REST endpoint.
const DefaultAPIBaseURL = "https://discord.com/api/v10"

// maxErrorBody caps how much of a failed response is kept for diagnostics.
const maxErrorBody = 64 << 10

// RequestObserver records one finished Discord API call. status is 0 when the
// transport failed before a response arrived.
type RequestObserver interface {
	ObserveRequest(method, route string, status int, duration time.Duration)
}

type noopObserver struct{}

func (noopObserver) ObserveRequest(string, string, int, time.Duration) {}

// Requester performs authenticated calls against the Discord REST API.
type Requester struct {
	baseURL    string
	token      string
	httpClient *http.Client
	observer   RequestObserver
	logger     *logrus.Logger
}

// NewRequester creates a Requester. An empty baseURL selects DefaultAPIBaseURL;
// a nil httpClient gets one with the given timeout.
func NewRequester(baseURL, token string, httpClient *http.Client, timeout time.Duration, observer RequestObserver, logger *logrus.Logger) *Requester {
	if baseURL == "" {
		baseURL = DefaultAPIBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	if observer == nil {
		observer = noopObserver{}
	}
	return &Requester{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: httpClient,
		observer:   observer,
		logger:     logger,
	}
}

// call describes one request. route is the path template used as a metrics label.
type call struct {
	method string
	route  string
	path   string
	body   any
}

// do executes c and decodes a JSON response into T. A 204 response yields a
// nil result without decoding. Non-2xx responses and transport failures are
// returned as *discord.Error of KindRequestFailed; decode failures are returned
// as they are.
func do[T any](ctx context.Context, r *Requester, c call) (*T, error) {
	var body io.Reader
	if c.body != nil {
		b, err := json.Marshal(c.body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode discord request body: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, c.method, r.baseURL+c.path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build discord request: %w", err)
	}
	req.Header.Set("Authorization", "Bot "+r.token)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := r.httpClient.Do(req)
	if err != nil {
		r.observer.ObserveRequest(c.method, c.route, 0, time.Since(start))
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"method": c.method, "route": c.route}).WithError(err).Warn("discord: transport failure")
		}
		return nil, &discord.Error{Kind: discord.KindRequestFailed, Err: err}
	}
	defer resp.Body.Close()
	r.observer.ObserveRequest(c.method, c.route, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		derr := &discord.Error{
			Kind:       discord.KindRequestFailed,
			StatusCode: resp.StatusCode,
			Status:     reasonPhrase(resp),
		}
		// Best effort: a body that cannot be read leaves Body empty.
		if text, rerr := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody)); rerr == nil {
			derr.Body = strings.TrimSpace(string(text))
			derr.Code = errorCode(text)
		}
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"method": c.method, "route": c.route, "status": resp.StatusCode}).Warn("discord: request rejected")
		}
		return nil, derr
	}

	// Discord answers some writes and most deletes with 204 and no body.
	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}

	var out T
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode discord response for %s %s: %w", c.method, c.route, err)
	}
	if r.logger != nil {
		r.logger.WithFields(logrus.Fields{"method": c.method, "route": c.route, "status": resp.StatusCode, "duration": time.Since(start)}).Debug("discord: request completed")
	}
	return &out, nil
}

// errorCode extracts the "code" field of a Discord error body, or 0.
func errorCode(body []byte) int {
	var payload struct {
		Code int `json:"code"`
	}
	if json.Unmarshal(body, &payload) != nil {
		return 0
	}
	return payload.Code
}

// reasonPhrase returns the status text sent by the server, falling back to the
// standard text for the code.
func reasonPhrase(resp *http.Response) string {
	if text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode))); text != "" {
		return text
	}
	return http.StatusText(resp.StatusCode)
}

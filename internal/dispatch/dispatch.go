package dispatch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v66/github"
)

// ErrNoToken is returned when no GitHub token is configured.
var ErrNoToken = errors.New("Server Error: Token not found.")

// Config names the repository whose workflow gets triggered.
type Config struct {
	Owner     string `mapstructure:"owner" default:"Ch4Angelia"`
	Repo      string `mapstructure:"repo" default:"computerscience"`
	EventType string `mapstructure:"event_type" default:"trigger_update"`
	// BaseURL overrides the GitHub API endpoint, e.g. for GitHub Enterprise.
	BaseURL string `mapstructure:"base_url" default:""`
	// Token is resolved from GITHUB_TOKEN or MY_GITHUB_TOKEN by the cli package.
	Token string `mapstructure:"token" default:""`
}

// UpstreamError is a non-success answer from the GitHub API.
type UpstreamError struct {
	StatusCode int
	Details    string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("GitHub API Error: %d %s", e.StatusCode, e.Details)
}

// Dispatcher sends repository_dispatch events.
type Dispatcher struct {
	client    *github.Client
	owner     string
	repo      string
	eventType string
	hasToken  bool
}

// New creates a Dispatcher. httpClient may be nil.
func New(cfg Config, httpClient *http.Client) (*Dispatcher, error) {
	client := github.NewClient(httpClient)
	if cfg.Token != "" {
		client = client.WithAuthToken(cfg.Token)
	}

	if cfg.BaseURL != "" {
		base := cfg.BaseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		u, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("invalid GitHub base URL: %w", err)
		}
		client.BaseURL = u
	}

	eventType := cfg.EventType
	if eventType == "" {
		eventType = "trigger_update"
	}

	return &Dispatcher{
		client:    client,
		owner:     cfg.Owner,
		repo:      cfg.Repo,
		eventType: eventType,
		hasToken:  cfg.Token != "",
	}, nil
}

// Repository returns owner/repo.
func (d *Dispatcher) Repository() string {
	return d.owner + "/" + d.repo
}

// EventType returns the dispatched event type.
func (d *Dispatcher) EventType() string {
	return d.eventType
}

// Trigger sends one dispatch event.
func (d *Dispatcher) Trigger(ctx context.Context) error {
	if !d.hasToken {
		return ErrNoToken
	}
	if d.owner == "" || d.repo == "" {
		return fmt.Errorf("dispatch repository not configured")
	}

	_, _, err := d.client.Repositories.Dispatch(ctx, d.owner, d.repo, github.DispatchRequestOptions{
		EventType: d.eventType,
	})
	if err == nil {
		return nil
	}

	if upstream := upstreamError(err); upstream != nil {
		return upstream
	}
	return fmt.Errorf("failed to dispatch %s: %w", d.eventType, err)
}

// upstreamError extracts GitHub's status from the go-github error types that
// carry a response. Rate limit errors are distinct from ErrorResponse.
func upstreamError(err error) *UpstreamError {
	var (
		ghErr    *github.ErrorResponse
		rateErr  *github.RateLimitError
		abuseErr *github.AbuseRateLimitError
	)

	switch {
	case errors.As(err, &ghErr) && ghErr.Response != nil:
		return &UpstreamError{StatusCode: ghErr.Response.StatusCode, Details: ghErr.Message}
	case errors.As(err, &rateErr) && rateErr.Response != nil:
		return &UpstreamError{StatusCode: rateErr.Response.StatusCode, Details: rateErr.Message}
	case errors.As(err, &abuseErr) && abuseErr.Response != nil:
		return &UpstreamError{StatusCode: abuseErr.Response.StatusCode, Details: abuseErr.Message}
	}
	return nil
}

// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package auth

//go:generate mockgen -copyright_file=../.github/license-header.txt -source=auth.go -destination=mocks/mock_auth.go -package=mocks TokenSource,Exporter

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/stacklok/registry-oidc-auth/httpclient"
	"github.com/stacklok/registry-oidc-auth/httperr"
	"github.com/stacklok/registry-oidc-auth/oauth"
	"github.com/stacklok/registry-oidc-auth/retry"
	validation "github.com/stacklok/registry-oidc-auth/validation/http"
	"github.com/stacklok/registry-oidc-auth/validation/slug"
)

const (
	// DefaultRetryAttempts is the attempt budget for each network phase.
	DefaultRetryAttempts = 3

	// DefaultRetryDelay is the base delay between attempts.
	DefaultRetryDelay = 5 * time.Second

	// DefaultRequestTimeout bounds each individual HTTP request.
	DefaultRequestTimeout = 30 * time.Second
)

// TokenSource supplies OIDC identity tokens from the CI platform.
type TokenSource interface {
	IDToken(ctx context.Context, audience string) (string, error)
}

// Exporter makes an issued credential available to later CI steps.
type Exporter interface {
	ExportCredential(credential oauth.Credential) error
}

// Config holds the parameters of one authentication run.
type Config struct {
	// Organization is the registry namespace the service account belongs to.
	Organization string
	// ServiceAccountSlug identifies the service account to authenticate as.
	ServiceAccountSlug string
	// APIHost overrides the registry API host. A value with a scheme is used
	// as the base URL verbatim.
	APIHost string
	// RetryAttempts is the attempt budget of each network phase, clamped to [0, 10].
	RetryAttempts int
	// Validate enables the "who am I" check after the exchange.
	Validate bool
	// Audience is passed to the token source as is, including when empty.
	Audience       string
	RetryDelay     time.Duration
	RequestTimeout time.Duration
}

// DefaultConfig returns a Config with the default retry, timeout and
// validation settings.
func DefaultConfig() Config {
	return Config{
		RetryAttempts:  DefaultRetryAttempts,
		Validate:       true,
		RetryDelay:     DefaultRetryDelay,
		RequestTimeout: DefaultRequestTimeout,
	}
}

// BaseURL returns the registry API base URL without a trailing slash.
func (c Config) BaseURL() (string, error) {
	host := strings.TrimSpace(c.APIHost)
	if host == "" {
		host = oauth.DefaultAPIHost
	}
	base := host
	if !strings.Contains(host, "://") {
		base = "https://" + host
	}
	base = strings.TrimRight(base, "/")
	if err := validation.ValidateBaseURL(base); err != nil {
		return "", fmt.Errorf("%w: api host: %w", ErrInvalidConfig, err)
	}
	return base, nil
}

func (c Config) policy() retry.Policy {
	return retry.NewPolicy(retry.ClampAttempts(c.RetryAttempts), c.RetryDelay)
}

// Result is the outcome of a successful run.
type Result struct {
	Credential oauth.Credential
	// Subject is nil when validation is disabled.
	Subject *oauth.Subject
	State   State
}

// Authenticator runs the OIDC exchange protocol. It holds no per-run state
// and is safe for concurrent use.
type Authenticator struct {
	tokens   TokenSource
	exporter Exporter
	client   *httpclient.Client
	logger   *zap.Logger
}

// Option configures an Authenticator.
type Option func(*Authenticator)

// WithLogger sets the logger for progress and per-attempt diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(a *Authenticator) {
		a.logger = l
	}
}

// WithClient sets the HTTP client used for registry calls.
func WithClient(c *httpclient.Client) Option {
	return func(a *Authenticator) {
		a.client = c
	}
}

// New returns an Authenticator using tokens for identity tokens and exporter
// to publish the issued credential.
func New(tokens TokenSource, exporter Exporter, opts ...Option) *Authenticator {
	a := &Authenticator{
		tokens:   tokens,
		exporter: exporter,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = zap.L()
	}
	if a.client == nil {
		a.client = httpclient.New(context.Background())
	}
	return a
}

// session carries the state of a single run from one transition to the next.
type session struct {
	cfg        Config
	state      State
	baseURL    string
	assertion  string
	request    *oauth.ExchangeRequest
	credential oauth.Credential
	subject    *oauth.Subject
}

// Authenticate obtains an identity token, exchanges it for a registry API key,
// exports the key and, when cfg.Validate is set, confirms it with the "who am
// I" endpoint.
//
// The credential is exported as soon as the exchange succeeds, so it stays
// exported even when validation later fails. Any failure is returned as a
// *PhaseError naming the phase it belongs to.
func (a *Authenticator) Authenticate(ctx context.Context, cfg Config) (*Result, error) {
	s := &session{cfg: cfg, state: StateStart}

	if err := a.prepare(s); err != nil {
		return nil, s.fail(PhaseOIDCAuthentication, err)
	}

	a.logger.Info(fmt.Sprintf("Attempting OIDC authentication with %d retry attempts...", cfg.policy().MaxAttempts),
		zap.String("organization", cfg.Organization),
		zap.String("service_slug", cfg.ServiceAccountSlug),
		zap.String("base_url", s.baseURL),
	)

	if err := a.acquireAssertion(ctx, s); err != nil {
		return nil, s.fail(PhaseOIDCAuthentication, err)
	}
	if err := a.exchange(ctx, s); err != nil {
		return nil, s.fail(PhaseOIDCAuthentication, err)
	}
	if cfg.Validate {
		if err := a.validate(ctx, s); err != nil {
			return nil, s.fail(PhaseTokenValidation, err)
		}
	}

	return &Result{Credential: s.credential, Subject: s.subject, State: s.state}, nil
}

func (*Authenticator) prepare(s *session) error {
	if err := slug.Validate("organization", s.cfg.Organization); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := slug.Validate("service account slug", s.cfg.ServiceAccountSlug); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	baseURL, err := s.cfg.BaseURL()
	if err != nil {
		return err
	}
	s.baseURL = baseURL
	return nil
}

// acquireAssertion moves Start to AssertionAcquired. It is not retried.
func (a *Authenticator) acquireAssertion(ctx context.Context, s *session) error {
	token, err := a.tokens.IDToken(ctx, s.cfg.Audience)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrAssertion, err)
	}
	if strings.TrimSpace(token) == "" {
		return fmt.Errorf("%w: token source returned an empty token", ErrAssertion)
	}
	s.assertion = token
	s.request = &oauth.ExchangeRequest{
		Organization: s.cfg.Organization,
		OIDCToken:    token,
		ServiceSlug:  s.cfg.ServiceAccountSlug,
	}
	s.state = StateAssertionAcquired
	return nil
}

// exchange moves AssertionAcquired to Exchanged and exports the credential.
func (a *Authenticator) exchange(ctx context.Context, s *session) error {
	credential, err := retry.Do(ctx, s.cfg.policy(), string(PhaseOIDCAuthentication),
		func(ctx context.Context) (oauth.Credential, error) {
			return a.exchangeOnce(ctx, s)
		},
		retry.WithLogger(a.logger),
		retry.WithAssertion(s.assertion),
	)
	if err != nil {
		return err
	}

	if err := a.exporter.ExportCredential(credential); err != nil {
		return fmt.Errorf("%w: %w", ErrExport, err)
	}
	s.credential = credential
	s.state = StateExchanged
	a.logger.Info(fmt.Sprintf("Authenticated successfully with OIDC and saved the API key to `%s`.", oauth.CredentialEnvVar))
	return nil
}

func (a *Authenticator) exchangeOnce(ctx context.Context, s *session) (oauth.Credential, error) {
	resp, err := a.client.Do(ctx, &httpclient.Request{
		Method:  http.MethodPost,
		URL:     s.baseURL + s.request.Path(),
		Header:  map[string]string{oauth.HeaderAccept: oauth.MediaTypeJSON},
		Body:    s.request,
		Timeout: s.cfg.RequestTimeout,
	})
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", httperr.WithResponse(
			fmt.Errorf("%w: %d %s", oauth.ErrUnexpectedExchangeStatus, resp.StatusCode, resp.StatusText), resp)
	}
	credential, err := oauth.CredentialFromBody(resp.Body)
	if err != nil {
		return "", httperr.WithResponse(err, resp)
	}
	return credential, nil
}

// validate moves Exchanged to Validated.
func (a *Authenticator) validate(ctx context.Context, s *session) error {
	subject, err := retry.Do(ctx, s.cfg.policy(), string(PhaseTokenValidation),
		func(ctx context.Context) (*oauth.Subject, error) {
			resp, err := a.client.Do(ctx, &httpclient.Request{
				Method: http.MethodGet,
				URL:    s.baseURL + oauth.UserSelfPath,
				Header: map[string]string{
					oauth.HeaderAccept: oauth.MediaTypeJSON,
					oauth.HeaderAPIKey: s.credential.Value(),
				},
				Timeout: s.cfg.RequestTimeout,
			})
			if err != nil {
				return nil, err
			}
			subject, err := oauth.SubjectFromBody(resp.Body)
			if err != nil {
				return nil, httperr.WithResponse(err, resp)
			}
			return subject, nil
		},
		retry.WithLogger(a.logger),
		retry.WithAssertion(s.assertion),
	)
	if err != nil {
		return err
	}

	s.subject = subject
	s.state = StateValidated
	a.logger.Info(fmt.Sprintf("User has successfully authenticated as %s.", subject.Name),
		zap.String("slug", subject.Slug),
	)
	return nil
}

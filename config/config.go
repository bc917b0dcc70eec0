// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/providers/confmap"
	envprovider "github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/v2"

	"github.com/stacklok/registry-oidc-auth/auth"
	"github.com/stacklok/registry-oidc-auth/retry"
)

// InputPrefix is the prefix the runner puts on action inputs in the environment.
const InputPrefix = "INPUT_"

// ErrInvalidConfig indicates the action inputs failed validation.
var ErrInvalidConfig = errors.New("invalid configuration")

// Mode selects how the job obtains its registry credential.
type Mode int

const (
	// ModeOIDC exchanges an identity token for an API key.
	ModeOIDC Mode = iota
	// ModeAPIKey exports a preconfigured API key unchanged.
	ModeAPIKey
)

func (m Mode) String() string {
	if m == ModeAPIKey {
		return "api-key"
	}
	return "oidc"
}

// Config holds the action inputs.
type Config struct {
	Namespace      string        `koanf:"oidc-namespace" validate:"required_without=APIKey"`
	ServiceSlug    string        `koanf:"oidc-service-slug" validate:"required_without=APIKey"`
	APIKey         string        `koanf:"api-key"`
	APIHost        string        `koanf:"api-host" validate:"omitempty,hostname_port|hostname|url"`
	RetryAttempts  int           `koanf:"oidc-auth-retry"`
	Validate       bool          `koanf:"oidc-validate"`
	Audience       string        `koanf:"oidc-audience"`
	RetryDelay     time.Duration `koanf:"oidc-retry-delay" validate:"gt=0"`
	RequestTimeout time.Duration `koanf:"oidc-request-timeout" validate:"gt=0"`
}

// Mode reports ModeOIDC when both the namespace and the service slug are set.
func (c *Config) Mode() Mode {
	if c.Namespace != "" && c.ServiceSlug != "" {
		return ModeOIDC
	}
	return ModeAPIKey
}

// Auth returns the parameters of an authentication run.
func (c *Config) Auth() auth.Config {
	return auth.Config{
		Organization:       c.Namespace,
		ServiceAccountSlug: c.ServiceSlug,
		APIHost:            c.APIHost,
		RetryAttempts:      c.RetryAttempts,
		Validate:           c.Validate,
		Audience:           c.Audience,
		RetryDelay:         c.RetryDelay,
		RequestTimeout:     c.RequestTimeout,
	}
}

type loadOptions struct {
	environ func() []string
}

// Option configures Load.
type Option func(*loadOptions)

// WithEnviron replaces os.Environ as the source of inputs.
func WithEnviron(fn func() []string) Option {
	return func(o *loadOptions) {
		o.environ = fn
	}
}

// Load reads the action inputs with defaults applied, then validates them.
func Load(opts ...Option) (*Config, error) {
	o := &loadOptions{environ: os.Environ}
	for _, opt := range opts {
		opt(o)
	}

	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if err := k.Load(envprovider.Provider(".", envprovider.Opt{
		Prefix:        InputPrefix,
		TransformFunc: inputKey,
		EnvironFunc:   o.environ,
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load inputs: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	cfg.RetryAttempts = retry.ClampAttempts(cfg.RetryAttempts)

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func defaults() map[string]any {
	return map[string]any{
		"oidc-auth-retry":      auth.DefaultRetryAttempts,
		"oidc-validate":        true,
		"oidc-audience":        "",
		"oidc-retry-delay":     auth.DefaultRetryDelay.String(),
		"oidc-request-timeout": auth.DefaultRequestTimeout.String(),
	}
}

// inputKey maps INPUT_OIDC-NAMESPACE to oidc-namespace. Blank inputs are
// dropped so the defaults stay in effect.
func inputKey(key, value string) (string, any) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", nil
	}
	name := strings.ToLower(strings.TrimPrefix(key, InputPrefix))
	return strings.ReplaceAll(name, "_", "-"), value
}

func validate(cfg *Config) error {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return fld.Tag.Get("koanf")
	})

	err := v.Struct(cfg)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		messages = append(messages, fieldMessage(fe))
	}
	return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(messages, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required_without":
		return fmt.Sprintf("%s is required unless api-key is set", fe.Field())
	case "gt":
		return fmt.Sprintf("%s must be positive", fe.Field())
	case "hostname_port|hostname|url":
		return fmt.Sprintf("%s must be a host name, host:port or URL", fe.Field())
	default:
		return fmt.Sprintf("%s failed validation (%s)", fe.Field(), fe.Tag())
	}
}

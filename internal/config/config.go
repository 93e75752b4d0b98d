// Package config loads reviewfang configuration from file, environment, and
// defaults.
package config

import (
	"errors"
	"time"
)

// Defaults for review settings.
const (
	DefaultEndpoint       = "https://api.openai.com/v1"
	DefaultAPIKeyEnv      = "REVIEWFANG_API_KEY"
	DefaultTimeout        = 60 * time.Second
	DefaultMaxRegionBytes = 32 * 1024
)

// DefaultBlockTypes are the syntax categories treated as block-like units
// for enclosing-block lookup.
var DefaultBlockTypes = []string{"block", "function_declaration", "method_declaration"}

// ErrNoModel is returned when no review model is configured. It is surfaced
// to the user; an analysis cycle aborts before calling the service.
var ErrNoModel = errors.New("no review model configured (set review.model)")

// Validation sentinel errors.
var (
	errInvalidTimeout   = errors.New("review.timeout must be positive")
	errInvalidRegionCap = errors.New("review.max_region_bytes must be positive")
)

// Config is the root configuration.
type Config struct {
	Review ReviewConfig `mapstructure:"review"`
	Syntax SyntaxConfig `mapstructure:"syntax"`
}

// ReviewConfig controls the findings service.
type ReviewConfig struct {
	// Model is the findings model identifier. Required before any review
	// request is issued.
	Model string `mapstructure:"model"`
	// Endpoint is the OpenAI-compatible API base URL.
	Endpoint string `mapstructure:"endpoint"`
	// APIKeyEnv names the environment variable holding the API key.
	APIKeyEnv string `mapstructure:"api_key_env"`
	// Timeout bounds one findings request.
	Timeout time.Duration `mapstructure:"timeout"`
	// MaxRegionBytes caps the size of a code region sent for review.
	MaxRegionBytes int `mapstructure:"max_region_bytes"`
	// GrabParent widens an enclosing-block hit to its parent declaration.
	GrabParent bool `mapstructure:"grab_parent"`
}

// SyntaxConfig controls syntax-tree interpretation.
type SyntaxConfig struct {
	// BlockTypes are the block-like syntax categories.
	BlockTypes []string `mapstructure:"block_types"`
}

// Validate checks invariants that hold regardless of which command runs.
// Model presence is checked at review time via RequireModel, so non-review
// commands work unconfigured.
func (c *Config) Validate() error {
	if c.Review.Timeout <= 0 {
		return errInvalidTimeout
	}

	if c.Review.MaxRegionBytes <= 0 {
		return errInvalidRegionCap
	}

	return nil
}

// RequireModel returns ErrNoModel when no model is configured.
func (c *Config) RequireModel() error {
	if c.Review.Model == "" {
		return ErrNoModel
	}

	return nil
}

// BlockTypeSet returns the configured block categories as a lookup set.
func (c *Config) BlockTypeSet() map[string]bool {
	types := c.Syntax.BlockTypes
	if len(types) == 0 {
		types = DefaultBlockTypes
	}

	set := make(map[string]bool, len(types))
	for _, t := range types {
		set[t] = true
	}

	return set
}

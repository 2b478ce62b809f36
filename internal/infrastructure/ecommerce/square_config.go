package ecommerce

import (
	"errors"
	"strings"
	"time"

	"github.com/stockwise/backend/internal/infrastructure/fetch"
)

// SquareConfig holds configuration for the Square API integration
type SquareConfig struct {
	// BaseURL is the API root, without the /v2 suffix
	BaseURL string
	// AccessToken is the bearer credential
	AccessToken string
	// APIVersion is sent in the Square-Version header
	APIVersion string
	// Timeout bounds a single HTTP attempt
	Timeout time.Duration
	// Retry configures backoff for transient failures
	Retry fetch.RetryPolicy
	// PageLimit is the page size requested from paginated endpoints
	PageLimit int
}

const (
	// SquareProductionURL is the production API endpoint
	SquareProductionURL = "https://connect.squareup.com"
	// SquareSandboxURL is the sandbox API endpoint
	SquareSandboxURL = "https://connect.squareupsandbox.com"
	// DefaultSquareAPIVersion is the API version the adapter was written against
	DefaultSquareAPIVersion = "2024-01-18"
)

// Errors for Square configuration
var (
	ErrSquareConfigMissingToken   = errors.New("square: access token is required")
	ErrSquareConfigMissingBaseURL = errors.New("square: base url is required")
)

// NewSquareConfig creates a Square configuration with defaults
func NewSquareConfig(accessToken string) *SquareConfig {
	return &SquareConfig{
		BaseURL:     SquareProductionURL,
		AccessToken: accessToken,
		APIVersion:  DefaultSquareAPIVersion,
		Timeout:     30 * time.Second,
		Retry:       fetch.DefaultRetryPolicy(),
		PageLimit:   100,
	}
}

// Validate validates the configuration and fills optional defaults
func (c *SquareConfig) Validate() error {
	if c.AccessToken == "" {
		return ErrSquareConfigMissingToken
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.BaseURL == "" {
		return ErrSquareConfigMissingBaseURL
	}
	if c.APIVersion == "" {
		c.APIVersion = DefaultSquareAPIVersion
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.PageLimit <= 0 {
		c.PageLimit = 100
	}
	return nil
}

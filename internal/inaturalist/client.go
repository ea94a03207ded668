// Package inaturalist resolves species photos through the iNaturalist taxa API.
package inaturalist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/sony/gobreaker"
)

// DefaultBaseURL is the public iNaturalist API host.
const DefaultBaseURL = "https://api.inaturalist.org"

// Config configures a Client.
type Config struct {
	BaseURL  string
	Timeout  time.Duration // 0 keeps the transport default
	CacheTTL time.Duration // 0 disables caching

	// Breaker trips after FailureThreshold consecutive failures and stays
	// open for OpenTimeout.
	FailureThreshold uint32
	OpenTimeout      time.Duration
}

// DefaultConfig returns the settings used when none are configured.
func DefaultConfig() Config {
	return Config{
		BaseURL:          DefaultBaseURL,
		CacheTTL:         24 * time.Hour,
		FailureThreshold: 5,
		OpenTimeout:      30 * time.Second,
	}
}

type taxaResponse struct {
	Results []struct {
		DefaultPhoto *struct {
			MediumURL string `json:"medium_url"`
		} `json:"default_photo"`
	} `json:"results"`
}

// Client looks up medium-resolution photo URLs by scientific name.
type Client struct {
	baseURL string
	http    *http.Client
	cache   *cache.Cache
	breaker *gobreaker.CircuitBreaker
	logger  *slog.Logger
}

// New creates a Client.
func New(cfg Config, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	if logger == nil {
		logger = slog.Default()
	}

	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: cfg.Timeout},
		logger:  logger,
	}
	if cfg.CacheTTL > 0 {
		c.cache = cache.New(cfg.CacheTTL, 2*cfg.CacheTTL)
	}

	threshold := cfg.FailureThreshold
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "inaturalist",
		Timeout: cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("photo lookup breaker state changed",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
		},
	})
	return c
}

// LookupPhoto returns the first taxon's medium photo URL, or "" when the
// search has no result with a photo.
func (c *Client) LookupPhoto(ctx context.Context, scientificName string) (string, error) {
	key := strings.ToLower(strings.TrimSpace(scientificName))
	if c.cache != nil {
		if v, ok := c.cache.Get(key); ok {
			return v.(string), nil
		}
	}

	res, err := c.breaker.Execute(func() (interface{}, error) {
		return c.fetch(ctx, scientificName)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", fmt.Errorf("inaturalist: %w", err)
		}
		return "", err
	}

	photo := res.(string)
	if c.cache != nil {
		c.cache.Set(key, photo, cache.DefaultExpiration)
	}
	return photo, nil
}

func (c *Client) fetch(ctx context.Context, scientificName string) (string, error) {
	endpoint := c.baseURL + "/v1/taxa?q=" + url.QueryEscape(scientificName)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("inaturalist: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("inaturalist: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("inaturalist: unexpected status %d", resp.StatusCode)
	}

	var body taxaResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("inaturalist: decode: %w", err)
	}
	if len(body.Results) == 0 || body.Results[0].DefaultPhoto == nil {
		c.logger.Debug("no photo found", slog.String("scientific_name", scientificName))
		return "", nil
	}
	return body.Results[0].DefaultPhoto.MediumURL, nil
}

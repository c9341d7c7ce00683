// Package nasa implements apod.Upstream against the NASA APOD API
// (GET /planetary/apod?api_key=...&date=YYYY-MM-DD).
package nasa

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/apod-api/internal/apod"
)

const (
	DefaultBaseURL = "https://api.nasa.gov"
	apodPath       = "/planetary/apod"
)

// Client fetches single-day records from the APOD API.
type Client struct {
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

// NewClient creates a Client. An empty baseURL means DefaultBaseURL.
func NewClient(client *http.Client, baseURL, apiKey string, maxRetries int) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if maxRetries < 0 {
		maxRetries = 0
	}

	return &Client{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpCfg: HTTPClientConfig{
			Client: client,
			Backoff: BackoffConfig{
				MaxRetries:      maxRetries,
				InitialInterval: 500 * time.Millisecond,
				MaxInterval:     5 * time.Second,
			},
		},
		circuit: newBreaker("nasa-apod"),
	}
}

// wireRecord is the upstream JSON body.
type wireRecord struct {
	Copyright   string `json:"copyright"`
	Date        string `json:"date"`
	Explanation string `json:"explanation"`
	HDURL       string `json:"hdurl"`
	MediaType   string `json:"media_type"`
	Title       string `json:"title"`
	URL         string `json:"url"`
}

// Fetch returns the record for date. A zero date asks the API for its own
// notion of today. Every error wraps apod.ErrUpstream.
func (c *Client) Fetch(ctx context.Context, date time.Time) (apod.Record, error) {
	if c.apiKey == "" {
		return apod.Record{}, fmt.Errorf("%w: api key is not configured", apod.ErrUpstream)
	}

	buildRequest := func(ctx context.Context) (*http.Request, error) {
		values := url.Values{}
		values.Set("api_key", c.apiKey)
		if !date.IsZero() {
			values.Set("date", apod.FormatDate(date))
		}

		u := fmt.Sprintf("%s%s?%s", c.baseURL, apodPath, values.Encode())
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		return req, nil
	}

	resp, err := doRequestWithResilience(ctx, c.httpCfg, c.circuit, buildRequest)
	if err != nil {
		return apod.Record{}, fmt.Errorf("%w: %w", apod.ErrUpstream, err)
	}
	defer resp.Body.Close()

	var payload wireRecord
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return apod.Record{}, fmt.Errorf("%w: decode response: %w", apod.ErrUpstream, err)
	}

	return apod.Record{
		Copyright:   payload.Copyright,
		Date:        payload.Date,
		Explanation: payload.Explanation,
		HDURL:       payload.HDURL,
		MediaType:   payload.MediaType,
		Title:       payload.Title,
		URL:         payload.URL,
	}, nil
}

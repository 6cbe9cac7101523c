// Package weather talks to the OpenWeatherMap "current weather" endpoint for
// one fixed location and turns its reply into a dated snapshot.
package weather

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/weatherdiary/internal/common"
	"github.com/dmitrijs2005/weatherdiary/internal/logging"
)

// Client issues a single GET per call. It never retries.
type Client struct {
	httpClient *http.Client
	baseURL    string
	location   string
	apiKey     string
	logger     logging.Logger
}

// NewClient builds a Client. A zero timeout leaves the http.Client default
// (no deadline) in place.
func NewClient(baseURL, location, apiKey string, timeout time.Duration, l logging.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		location:   location,
		apiKey:     apiKey,
		logger:     l.With("module", "weather_client"),
	}
}

func (c *Client) endpoint() string {
	values := url.Values{}
	values.Set("q", c.location)
	values.Set("appid", c.apiKey)
	return c.baseURL + "/weather?" + values.Encode()
}

// FetchCurrent returns the raw body of a 2xx reply. Transport failures and
// any other status are reported as common.ErrWeatherUnavailable.
func (c *Client) FetchCurrent(ctx context.Context) ([]byte, error) {
	c.logger.Info(ctx, "getting data from api", "location", c.location)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrWeatherUnavailable, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error(ctx, "api error", "error", err)
		return nil, fmt.Errorf("%w: %v", common.ErrWeatherUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Error(ctx, "api error", "error", err)
		return nil, fmt.Errorf("%w: reading body: %v", common.ErrWeatherUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Error(ctx, "api error", "status", resp.StatusCode, "body", string(body))
		return nil, fmt.Errorf("%w: status %d: %s", common.ErrWeatherUnavailable, resp.StatusCode, body)
	}

	c.logger.Debug(ctx, "api payload", "status", resp.StatusCode, "bytes", len(body), "payload", payloadPrefix(body))
	c.logger.Info(ctx, "get api data complete", "bytes", len(body))
	return body, nil
}

const maxLoggedPayload = 256

// payloadPrefix returns at most maxLoggedPayload bytes of body for logging.
func payloadPrefix(body []byte) string {
	if len(body) > maxLoggedPayload {
		return string(body[:maxLoggedPayload]) + "..."
	}
	return string(body)
}

package valuation

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"oselia/server/internal/models"
)

// Client talks to the remote valuation service.
type Client struct {
	baseURL string
	http    *retryablehttp.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryWaitMin = 200 * time.Millisecond
	rc.RetryWaitMax = 2 * time.Second
	rc.RetryMax = 2
	rc.HTTPClient.Timeout = timeout
	rc.Logger = nil

	return &Client{
		baseURL: baseURL,
		http:    rc,
	}
}

// GetValuation fetches the remote model's valuation for a property. Any
// transport error or non-2xx status is an error; the caller decides whether
// to fall back.
func (c *Client) GetValuation(ctx context.Context, propertyID string) (*models.Valuation, error) {
	u := fmt.Sprintf("%s/properties/%s/valuation", c.baseURL, url.PathEscape(propertyID))

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create valuation request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("valuation request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("valuation service returned status %d", resp.StatusCode)
	}

	var valuation models.Valuation
	if err := json.NewDecoder(resp.Body).Decode(&valuation); err != nil {
		return nil, fmt.Errorf("failed to decode valuation response: %w", err)
	}

	return &valuation, nil
}

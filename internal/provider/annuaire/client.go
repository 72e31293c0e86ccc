package annuaire

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/ThomasAyr/carte-scolaire/internal/metrics"
	"github.com/ThomasAyr/carte-scolaire/internal/provider"
)

const (
	// Dataset is the education directory dataset on the explore API.
	Dataset = "fr-en-annuaire-education"

	// PageLimit is the number of records requested per lookup.
	PageLimit = 20

	name = "annuaire"
)

// Client is an HTTP client for the explore v2.1 records endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option { return func(c *Client) { c.httpClient = hc } }

// WithRateLimit caps outgoing requests per second. Zero disables the limit.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// NewClient creates a directory client rooted at baseURL
// (e.g. https://data.occitanie.education.gouv.fr/api/explore/v2.1).
func NewClient(baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) recordsURL(params url.Values) string {
	return fmt.Sprintf("%s/catalog/datasets/%s/records?%s", c.baseURL, Dataset, params.Encode())
}

// FetchByID returns every record whose identifier equals id.
func (c *Client) FetchByID(ctx context.Context, id string) ([]Record, error) {
	params := url.Values{}
	params.Set("refine", "identifiant_de_l_etablissement:"+id)
	params.Set("limit", strconv.Itoa(PageLimit))

	body, err := c.get(ctx, params)
	if err != nil {
		return nil, err
	}
	return body.Results, nil
}

// HealthCheck verifies the dataset answers a minimal query.
func (c *Client) HealthCheck(ctx context.Context) error {
	params := url.Values{}
	params.Set("limit", "1")
	_, err := c.get(ctx, params)
	return err
}

func (c *Client) get(ctx context.Context, params url.Values) (*recordsResponse, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	fullURL := c.recordsURL(params)
	start := time.Now()
	provider.LogRequest(name, http.MethodGet, fullURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	metrics.UpstreamDurationMs.WithLabelValues(name).Observe(float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(name, "error").Inc()
		provider.LogError(name, "fetch", err)
		return nil, fmt.Errorf("annuaire request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.UpstreamRequestsTotal.WithLabelValues(name, "error").Inc()
		err := fmt.Errorf("annuaire status %d", resp.StatusCode)
		provider.LogError(name, "fetch", err)
		return nil, err
	}

	var body recordsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(name, "error").Inc()
		return nil, fmt.Errorf("decode annuaire response: %w", err)
	}
	metrics.UpstreamRequestsTotal.WithLabelValues(name, "ok").Inc()
	provider.LogResponse(name, resp.StatusCode, time.Since(start), len(body.Results))
	return &body, nil
}

package geocoding

import (
	"context"
	"encoding/json"
	"errors"
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

const name = "api-adresse"

var (
	ErrNoResults  = errors.New("geocoder returned no results")
	ErrEmptyQuery = errors.New("empty geocoding query")
)

// Query is a free-text search, optionally narrowed to a result type
// ("street", "municipality") and an INSEE city code.
type Query struct {
	Text     string
	Type     string
	CityCode string
	Limit    int
}

// Feature is one candidate returned by the geocoder.
type Feature struct {
	Label    string  `json:"label"`
	Type     string  `json:"type"`
	Score    float64 `json:"score"`
	City     string  `json:"city"`
	CityCode string  `json:"citycode"`
	Street   string  `json:"street"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
}

// Client wraps the Base Adresse Nationale search API.
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

type searchResponse struct {
	Features []struct {
		Geometry struct {
			// GeoJSON order: [lon, lat]
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
		Properties struct {
			Label    string  `json:"label"`
			Type     string  `json:"type"`
			Score    float64 `json:"score"`
			City     string  `json:"city"`
			CityCode string  `json:"citycode"`
			Street   string  `json:"street"`
		} `json:"properties"`
	} `json:"features"`
}

func (c *Client) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}

// Search runs a /search/ query. A well-formed answer with no features returns
// ErrNoResults.
func (c *Client) Search(ctx context.Context, q Query) ([]Feature, error) {
	text := strings.TrimSpace(q.Text)
	if text == "" {
		return nil, ErrEmptyQuery
	}
	params := url.Values{}
	params.Set("q", text)
	if q.Type != "" {
		params.Set("type", q.Type)
	}
	if q.CityCode != "" {
		params.Set("citycode", q.CityCode)
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}

	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	u := c.baseURL + "/search/?" + params.Encode()
	start := time.Now()
	provider.LogRequest(name, http.MethodGet, u)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	metrics.UpstreamDurationMs.WithLabelValues(name).Observe(float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(name, "error").Inc()
		return nil, fmt.Errorf("geocoding request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.UpstreamRequestsTotal.WithLabelValues(name, "error").Inc()
		return nil, fmt.Errorf("geocoder returned HTTP %d", resp.StatusCode)
	}

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(name, "error").Inc()
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	out := make([]Feature, 0, len(body.Features))
	for _, f := range body.Features {
		if len(f.Geometry.Coordinates) < 2 {
			continue
		}
		out = append(out, Feature{
			Label:    f.Properties.Label,
			Type:     f.Properties.Type,
			Score:    f.Properties.Score,
			City:     f.Properties.City,
			CityCode: f.Properties.CityCode,
			Street:   f.Properties.Street,
			Lon:      f.Geometry.Coordinates[0],
			Lat:      f.Geometry.Coordinates[1],
		})
	}
	provider.LogResponse(name, resp.StatusCode, time.Since(start), len(out))
	if len(out) == 0 {
		metrics.UpstreamRequestsTotal.WithLabelValues(name, "empty").Inc()
		return nil, ErrNoResults
	}
	metrics.UpstreamRequestsTotal.WithLabelValues(name, "ok").Inc()
	return out, nil
}

package annuaire

import (
	"context"
	"strings"

	"github.com/ThomasAyr/carte-scolaire/internal/provider"
)

// Provider adapts Client to provider.Directory.
type Provider struct {
	client *Client
}

var _ provider.Directory = (*Provider)(nil)

func init() {
	provider.RegisterProvider(provider.ProviderAPI, func(cfg provider.Config) (provider.Directory, error) {
		return New(NewClient(cfg.DirectoryURL, cfg.Timeout, WithRateLimit(cfg.DirectoryRateLimit))), nil
	})
}

func New(client *Client) *Provider { return &Provider{client: client} }

func (p *Provider) Name() string { return name }

func (p *Provider) Lookup(ctx context.Context, establishmentID string) ([]provider.Establishment, error) {
	recs, err := p.client.FetchByID(ctx, strings.ToUpper(strings.TrimSpace(establishmentID)))
	if err != nil {
		return nil, err
	}
	return Transform(name, recs), nil
}

func (p *Provider) HealthCheck(ctx context.Context) error { return p.client.HealthCheck(ctx) }

// Package fmp implements the Financial Modeling Prep (FMP) statement source.
// It loads a company profile plus annual and quarterly income, balance sheet
// and cash flow statements, and assembles them into the period model.
//
// Free tier: 250 requests/day. One company load costs seven requests.
// Docs: https://financialmodelingprep.com/developer/docs
package fmp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/seenimoa/getvalue/internal/infra"
	"github.com/seenimoa/getvalue/internal/provider"
	"github.com/seenimoa/getvalue/pkg/models"
)

const (
	providerName   = "fmp"
	DefaultBaseURL = "https://financialmodelingprep.com/api/v3"
	CredAPIKey     = "api_key"
	userAgent      = "getvalue/1.0"
)

// ErrCompanyNotFound is returned when the profile lookup yields nothing.
var ErrCompanyNotFound = errors.New("company not found")

// Options tunes the HTTP behaviour of the provider.
type Options struct {
	BaseURL           string
	Timeout           time.Duration
	RateLimit         time.Duration // minimum spacing between requests
	QuarterlyPeriods  int
	ConcurrentFetches int
}

// DefaultOptions returns the settings used when none are configured.
func DefaultOptions() Options {
	return Options{
		BaseURL:           DefaultBaseURL,
		Timeout:           15 * time.Second,
		RateLimit:         300 * time.Millisecond,
		QuarterlyPeriods:  8,
		ConcurrentFetches: 3,
	}
}

// Provider implements provider.CompanySource for FMP.
type Provider struct {
	provider.BaseProvider
	opts     Options
	client   *resty.Client
	throttle *infra.Throttle
	now      func() time.Time
}

// New creates a new FMP provider. Zero-valued options fall back to
// DefaultOptions.
func New(opts Options) *Provider {
	def := DefaultOptions()
	if opts.BaseURL == "" {
		opts.BaseURL = def.BaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = def.Timeout
	}
	if opts.QuarterlyPeriods <= 0 {
		opts.QuarterlyPeriods = def.QuarterlyPeriods
	}
	if opts.ConcurrentFetches <= 0 {
		opts.ConcurrentFetches = 1
	}

	p := &Provider{
		BaseProvider: provider.NewBaseProvider(
			providerName,
			"Financial Modeling Prep - company financial statements",
			"https://financialmodelingprep.com",
			[]provider.ProviderCredential{
				{
					Name:        CredAPIKey,
					Description: "FMP API key from financialmodelingprep.com",
					Required:    true,
					EnvVar:      "FMP_API_KEY",
				},
			},
		),
		opts:     opts,
		throttle: infra.NewThrottle(opts.RateLimit),
		now:      time.Now,
	}
	p.client = infra.NewRESTClient(infra.RESTOptions{
		BaseURL:   strings.TrimRight(opts.BaseURL, "/"),
		Timeout:   opts.Timeout,
		UserAgent: userAgent,
	})
	return p
}

// Init stores the API key.
func (p *Provider) Init(credentials map[string]string) error {
	if err := p.BaseProvider.Init(credentials); err != nil {
		return err
	}
	p.client.SetQueryParam("apikey", p.APIKey())
	return nil
}

// APIKey returns the stored API key.
func (p *Provider) APIKey() string {
	return p.Credential(CredAPIKey)
}

// Ping checks connectivity to FMP.
func (p *Provider) Ping(ctx context.Context) error {
	if err := p.requireKey(); err != nil {
		return err
	}
	if _, err := p.fetchArray(ctx, fmt.Sprintf(pathQuote, "AAPL"), nil); err != nil {
		return fmt.Errorf("fmp ping: %w", err)
	}
	return nil
}

func (p *Provider) requireKey() error {
	if p.APIKey() == "" {
		return &provider.ErrInvalidCredentials{Provider: providerName, Detail: "missing required credential: " + CredAPIKey}
	}
	return nil
}

// FetchCompany loads symbol and returns at most periods annual periods.
// A failed or empty profile lookup returns ErrCompanyNotFound; failed
// statement lookups only leave the matching periods empty.
func (p *Provider) FetchCompany(ctx context.Context, symbol string, periods int) (*models.CompanyFinancials, error) {
	if err := p.requireKey(); err != nil {
		return nil, err
	}
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if err := provider.ValidateParams(provider.QueryParams{provider.ParamSymbol: symbol}, []string{provider.ParamSymbol}); err != nil {
		return nil, err
	}
	logger := zerolog.Ctx(ctx).With().Str("Ticker", symbol).Logger()

	profile, err := p.fetchArray(ctx, fmt.Sprintf(pathProfile, symbol), nil)
	if err != nil {
		logger.Warn().Err(err).Msg("profile lookup failed")
		return nil, fmt.Errorf("fmp profile %s: %w: %w", symbol, ErrCompanyNotFound, err)
	}
	if len(profile) == 0 {
		return nil, fmt.Errorf("fmp profile %s: %w", symbol, ErrCompanyNotFound)
	}

	set := p.fetchStatements(ctx, symbol, periods)
	c := buildCompany(symbol, profile[0], set, periods, p.now())

	logger.Info().
		Int("Annual", len(c.Annual)).
		Int("Quarterly", len(c.Quarterly)).
		Bool("TTM", c.TTM != nil).
		Msg("loaded company from FMP")
	return c, nil
}

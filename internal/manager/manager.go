// Package manager is the entry point for loading companies. It decides
// which ingestion path an input takes, runs it, and keeps the result in a
// store keyed by ticker.
package manager

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/seenimoa/getvalue/internal/datasource"
	"github.com/seenimoa/getvalue/internal/provider"
	"github.com/seenimoa/getvalue/internal/store"
	"github.com/seenimoa/getvalue/pkg/models"
	"github.com/seenimoa/getvalue/pkg/utils"
)

var (
	// ErrUnrecognizedSource is returned for input that is neither a ticker
	// nor pasted statement text.
	ErrUnrecognizedSource = errors.New("unrecognized source: expected a ticker or pasted statement text")

	// ErrAPIUnavailable is returned for a ticker when no remote source is
	// configured.
	ErrAPIUnavailable = errors.New("no API source configured")
)

// SourceKind is the ingestion path an input takes.
type SourceKind int

const (
	SourceUnknown SourceKind = iota
	SourceTicker
	SourceHTML
	SourcePaste
)

func (k SourceKind) String() string {
	switch k {
	case SourceTicker:
		return "ticker"
	case SourceHTML:
		return "html"
	case SourcePaste:
		return "paste"
	default:
		return "unknown"
	}
}

// pasteMinNewlines is exceeded by any multi-row paste without tabs.
const pasteMinNewlines = 3

// DetectSource classifies raw input. Short alphabetic input is a ticker;
// input with an HTML table is an HTML paste; input with a tab or more than
// three newlines is a text paste.
func DetectSource(source string) SourceKind {
	switch {
	case utils.IsTickerLike(source):
		return SourceTicker
	case datasource.LooksLikeHTML(source):
		return SourceHTML
	case strings.Contains(source, "\t") || strings.Count(source, "\n") > pasteMinNewlines:
		return SourcePaste
	default:
		return SourceUnknown
	}
}

// Options configures a Manager.
type Options struct {
	AnnualPeriods int    // annual periods kept from API loads
	DefaultTicker string // ticker for pastes loaded without one
}

// Manager loads companies and owns the company store.
type Manager struct {
	source provider.CompanySource
	store  store.Store
	opts   Options
}

// New returns a manager. source may be nil, in which case only pasted
// input can be loaded.
func New(source provider.CompanySource, st store.Store, opts Options) *Manager {
	if opts.AnnualPeriods <= 0 {
		opts.AnnualPeriods = 10
	}
	if opts.DefaultTicker == "" {
		opts.DefaultTicker = "UNKNOWN"
	}
	return &Manager{source: source, store: st, opts: opts}
}

// LoadCompany ingests source and stores the result under its ticker,
// replacing any earlier load. ticker labels pasted input and is ignored for
// ticker input.
func (m *Manager) LoadCompany(ctx context.Context, source, ticker string) (*models.CompanyFinancials, error) {
	kind := DetectSource(source)
	logger := zerolog.Ctx(ctx).With().Str("Source", kind.String()).Logger()

	var (
		c   *models.CompanyFinancials
		err error
	)
	switch kind {
	case SourceTicker:
		c, err = m.fetch(ctx, utils.NormalizeTicker(source))
	case SourceHTML:
		c, err = datasource.ParseHTML(source, m.pasteTicker(ticker))
	case SourcePaste:
		c = datasource.ParseText(source, m.pasteTicker(ticker))
	default:
		logger.Warn().Int("Length", len(source)).Msg("input not recognized")
		return nil, ErrUnrecognizedSource
	}
	if err != nil {
		return nil, err
	}

	m.store.Put(c)
	logger.Info().
		Str("Ticker", c.Ticker).
		Int("Annual", len(c.Annual)).
		Int("Quarterly", len(c.Quarterly)).
		Bool("Partial", c.IsPartial()).
		Msg("company loaded")
	return c, nil
}

// Company returns the stored company for ticker, loading it from the API
// when it is absent or refresh is set.
func (m *Manager) Company(ctx context.Context, ticker string, refresh bool) (*models.CompanyFinancials, error) {
	ticker = utils.NormalizeTicker(ticker)
	if !refresh {
		if c, err := m.store.Get(ticker); err == nil {
			return c, nil
		}
	}
	c, err := m.fetch(ctx, ticker)
	if err != nil {
		return nil, err
	}
	m.store.Put(c)
	return c, nil
}

// Cached returns the stored company for ticker without loading.
func (m *Manager) Cached(ticker string) (*models.CompanyFinancials, error) {
	return m.store.Get(utils.NormalizeTicker(ticker))
}

// Evict drops the stored company for ticker.
func (m *Manager) Evict(ticker string) error {
	return m.store.Evict(utils.NormalizeTicker(ticker))
}

// Tickers lists the stored companies.
func (m *Manager) Tickers() []string {
	return m.store.Tickers()
}

func (m *Manager) fetch(ctx context.Context, ticker string) (*models.CompanyFinancials, error) {
	if m.source == nil {
		return nil, ErrAPIUnavailable
	}
	c, err := m.source.FetchCompany(ctx, ticker, m.opts.AnnualPeriods)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", ticker, err)
	}
	return c, nil
}

func (m *Manager) pasteTicker(ticker string) string {
	if t := utils.NormalizeTicker(ticker); t != "" {
		return t
	}
	return m.opts.DefaultTicker
}

package fmp

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/getvalue/internal/provider"
)

// Statement endpoints, parameterized by symbol.
const (
	pathProfile  = "/profile/%s"
	pathIncome   = "/income-statement/%s"
	pathBalance  = "/balance-sheet-statement/%s"
	pathCashFlow = "/cash-flow-statement/%s"
	pathQuote    = "/quote/%s"
)

// fetchArray GETs an FMP endpoint and returns the elements of its top-level
// JSON array. Transport failures, non-2xx statuses and non-array bodies are
// errors.
func (p *Provider) fetchArray(ctx context.Context, path string, params provider.QueryParams) ([]record, error) {
	if err := p.throttle.Wait(ctx); err != nil {
		return nil, err
	}

	resp, err := p.client.R().
		SetContext(ctx).
		SetQueryParams(params).
		Get(path)
	if err != nil {
		return nil, fmt.Errorf("fmp GET %s: %w", path, err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("fmp GET %s: %w", path, &StatusError{Code: resp.StatusCode()})
	}

	rows, err := decodeArray(resp.Body())
	if err != nil {
		return nil, fmt.Errorf("fmp GET %s: %w", path, err)
	}
	return rows, nil
}

// decodeArray returns the object elements of a top-level JSON array.
func decodeArray(body []byte) ([]record, error) {
	if !gjson.ValidBytes(body) {
		return nil, errors.New("invalid JSON")
	}
	parsed := gjson.ParseBytes(body)
	if !parsed.IsArray() {
		return nil, fmt.Errorf("expected array, got %s", parsed.Type)
	}

	items := parsed.Array()
	rows := make([]record, 0, len(items))
	for _, it := range items {
		if it.IsObject() {
			rows = append(rows, record{it})
		}
	}
	return rows, nil
}

// fetchStatement loads one statement series. Failures are logged and yield
// an empty series so the rest of the load can proceed.
func (p *Provider) fetchStatement(ctx context.Context, pathFmt, symbol, period string, limit int) []record {
	path := fmt.Sprintf(pathFmt, symbol)
	params := provider.QueryParams{
		provider.ParamPeriod: period,
		provider.ParamLimit:  strconv.Itoa(limit),
	}
	rows, err := p.fetchArray(ctx, path, params)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).
			Str("Ticker", symbol).
			Str("Endpoint", path).
			Str("Period", period).
			Msg("statement fetch failed, continuing without it")
		return nil
	}
	zerolog.Ctx(ctx).Debug().
		Str("Ticker", symbol).
		Str("Endpoint", path).
		Str("Period", period).
		Int("Rows", len(rows)).
		Msg("fetched statement")
	return rows
}

// fetchStatements loads annual and quarterly income, balance sheet and cash
// flow series concurrently. Annual series request annual+1 rows so the
// oldest kept year can be averaged.
func (p *Provider) fetchStatements(ctx context.Context, symbol string, annual int) *statementSet {
	set := &statementSet{}
	quarters := p.opts.QuarterlyPeriods

	jobs := []struct {
		dst    *[]record
		path   string
		period string
		limit  int
	}{
		{&set.annualIncome, pathIncome, provider.PeriodAnnual, annual + 1},
		{&set.annualBalance, pathBalance, provider.PeriodAnnual, annual + 1},
		{&set.annualCashFlow, pathCashFlow, provider.PeriodAnnual, annual + 1},
		{&set.quarterlyIncome, pathIncome, provider.PeriodQuarter, quarters},
		{&set.quarterlyBalance, pathBalance, provider.PeriodQuarter, quarters},
		{&set.quarterlyCashFlow, pathCashFlow, provider.PeriodQuarter, quarters},
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.ConcurrentFetches)
	for _, j := range jobs {
		j := j
		g.Go(func() error {
			*j.dst = p.fetchStatement(gctx, j.path, symbol, j.period, j.limit)
			return nil
		})
	}
	_ = g.Wait()
	return set
}

// StatusError reports a non-2xx response from FMP.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.Code)
}

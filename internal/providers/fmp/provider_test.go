package fmp

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/guregu/null/v5"

	"github.com/seenimoa/getvalue/internal/provider"
)

const profileJSON = `[{"symbol":"ACME","companyName":"Acme Corp","currency":"EUR","price":50,"mktCap":5000000000}]`

// Annual rows deliberately include one more year than requested.
const annualIncomeJSON = `[
 {"date":"2024-12-31","calendarYear":"2024","revenue":1000000000,"grossProfit":400000000,"operatingIncome":200000000,"netIncome":150000000,"incomeTaxExpense":50000000,"interestExpense":20000000,"epsdiluted":1.5,"eps":1.6,"weightedAverageShsOutDil":100000000},
 {"date":"2023-12-31","calendarYear":"2023","revenue":800000000,"netIncome":"n/a","epsdiluted":0,"eps":1.2,"weightedAverageShsOut":90000000},
 {"date":"2022-12-31","revenue":700000000}
]`

const annualBalanceJSON = `[
 {"date":"2024-12-31","totalStockholdersEquity":600000000,"totalAssets":2000000000,"totalDebt":300000000,"cashAndCashEquivalents":100000000,"commonStock":0},
 {"date":"2023-12-31","totalStockholdersEquity":400000000,"totalAssets":1800000000,"netDebt":55000000},
 {"date":"2022-12-31","totalStockholdersEquity":200000000}
]`

const annualCashFlowJSON = `[
 {"date":"2024-12-31","operatingCashFlow":300000000,"capitalExpenditure":-100000000,"stockBasedCompensation":20000000}
]`

const quarterlyIncomeJSON = `[
 {"date":"2024-12-31","calendarYear":"2024","period":"Q4","revenue":300000000,"weightedAverageShsOutDil":101000000},
 {"date":"2024-09-30","calendarYear":"2024","period":"Q3","revenue":null},
 {"date":"2024-06-30","calendarYear":"2024","period":"Q2","revenue":250000000},
 {"date":"2024-03-31","calendarYear":"2024","period":"Q1","revenue":200000000},
 {"date":"2023-12-31","calendarYear":"2023","period":"Q4","revenue":900000000}
]`

const quarterlyBalanceJSON = `[
 {"date":"2024-12-31","totalStockholdersEquity":610000000,"totalDebt":310000000}
]`

type fakeFMP struct {
	mu       sync.Mutex
	requests []string
	keys     []string
	routes   map[string]string // "path?period" → body
	status   map[string]int
}

func (f *fakeFMP) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	key := r.URL.Path + "?" + r.URL.Query().Get("period")
	f.requests = append(f.requests, key+"&limit="+r.URL.Query().Get("limit"))
	f.keys = append(f.keys, r.URL.Query().Get("apikey"))
	body, ok := f.routes[key]
	code := f.status[key]
	f.mu.Unlock()

	if code != 0 {
		w.WriteHeader(code)
		return
	}
	if !ok {
		body = `[]`
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(body))
}

func (f *fakeFMP) setStatus(key string, code int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status[key] = code
}

func (f *fakeFMP) seen() ([]string, []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...), append([]string(nil), f.keys...)
}

func newFakeFMP() *fakeFMP {
	return &fakeFMP{
		routes: map[string]string{
			"/profile/ACME?":                        profileJSON,
			"/income-statement/ACME?annual":        annualIncomeJSON,
			"/balance-sheet-statement/ACME?annual":  annualBalanceJSON,
			"/cash-flow-statement/ACME?annual":      annualCashFlowJSON,
			"/income-statement/ACME?quarter":       quarterlyIncomeJSON,
			"/balance-sheet-statement/ACME?quarter": quarterlyBalanceJSON,
			"/cash-flow-statement/ACME?quarter":     `{"Error Message":"Limit Reach"}`,
			"/quote/AAPL?":                          `[{"symbol":"AAPL"}]`,
		},
		status: map[string]int{},
	}
}

func newTestProvider(t *testing.T, fake *fakeFMP) *Provider {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	p := New(Options{BaseURL: srv.URL, Timeout: 2 * time.Second, ConcurrentFetches: 3})
	if err := p.Init(map[string]string{"api_key": "test_key_123"}); err != nil {
		t.Fatalf("Init: %v", err)
	}
	p.now = func() time.Time { return time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC) }
	return p
}

func near(v null.Float, want float64) bool {
	return v.Valid && math.Abs(v.Float64-want) < 1e-9
}

// --- Provider metadata ---

func TestProviderInfo(t *testing.T) {
	p := New(Options{})
	info := p.Info()
	if info.Name != "fmp" {
		t.Errorf("expected name fmp, got %s", info.Name)
	}
	if len(info.Credentials) != 1 || info.Credentials[0].Name != "api_key" || !info.Credentials[0].Required {
		t.Errorf("unexpected credentials: %+v", info.Credentials)
	}
	if p.opts.BaseURL != DefaultBaseURL {
		t.Errorf("BaseURL = %q, want default", p.opts.BaseURL)
	}
}

func TestProviderInitMissingKey(t *testing.T) {
	p := New(Options{})
	if err := p.Init(map[string]string{}); err == nil {
		t.Error("expected error for missing api_key")
	}
	if p.APIKey() != "" {
		t.Errorf("APIKey after failed Init = %q", p.APIKey())
	}
	_, err := p.FetchCompany(context.Background(), "ACME", 2)
	var ic *provider.ErrInvalidCredentials
	if !errors.As(err, &ic) {
		t.Errorf("FetchCompany without key: got %v, want ErrInvalidCredentials", err)
	}
}

func TestPing(t *testing.T) {
	fake := newFakeFMP()
	p := newTestProvider(t, fake)
	if err := p.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	fake.setStatus("/quote/AAPL?", http.StatusUnauthorized)
	err := p.Ping(context.Background())
	var se *StatusError
	if !errors.As(err, &se) || se.Code != http.StatusUnauthorized {
		t.Errorf("Ping with 401: got %v", err)
	}
}

// --- Company load ---

func TestFetchCompany(t *testing.T) {
	fake := newFakeFMP()
	p := newTestProvider(t, fake)

	c, err := p.FetchCompany(context.Background(), " acme ", 2)
	if err != nil {
		t.Fatalf("FetchCompany: %v", err)
	}
	if c.Ticker != "ACME" || c.CompanyName != "Acme Corp" || c.Currency != "EUR" {
		t.Errorf("company header = %q %q %q", c.Ticker, c.CompanyName, c.Currency)
	}

	t.Run("requests", func(t *testing.T) {
		requests, keys := fake.seen()
		joined := strings.Join(requests, " ")
		for _, want := range []string{
			"/income-statement/ACME?annual&limit=3",
			"/cash-flow-statement/ACME?quarter&limit=8",
			"/profile/ACME?&limit=",
		} {
			if !strings.Contains(joined, want) {
				t.Errorf("missing request %s in %s", want, joined)
			}
		}
		for _, k := range keys {
			if k != "test_key_123" {
				t.Errorf("request sent apikey %q", k)
			}
		}
	})

	t.Run("annual", func(t *testing.T) {
		if len(c.Annual) != 2 {
			t.Fatalf("annual periods = %d, want 2 after trim", len(c.Annual))
		}
		a := c.Annual[0]
		if a.Name != "2024" || !a.EndDate.Valid || a.EndDate.Time.Year() != 2024 {
			t.Errorf("period name/date = %q %v", a.Name, a.EndDate)
		}
		if !near(a.Income.Revenues, 1000) || !near(a.Income.EPS, 1.5) || !near(a.Income.SharesOutstanding, 100) {
			t.Errorf("income = %+v", a.Income)
		}
		// commonStock 0 falls back to diluted weighted shares.
		if !near(a.Balance.SharesOutstanding, 100) {
			t.Errorf("balance shares = %v, want 100", a.Balance.SharesOutstanding)
		}
		if !near(a.Debt.NetDebt, 200) {
			t.Errorf("net debt = %v, want 200", a.Debt.NetDebt)
		}
		if !near(a.CashFlow.FreeCashFlow, 200) || !near(a.CashFlow.AdjustedFCF, 180) {
			t.Errorf("fcf = %v adjusted = %v", a.CashFlow.FreeCashFlow, a.CashFlow.AdjustedFCF)
		}
		if !near(a.Balance.AvgEquity, 500) {
			t.Errorf("avg equity = %v, want 500", a.Balance.AvgEquity)
		}

		b := c.Annual[1]
		if b.Income.NetIncome.Valid {
			t.Errorf("non-numeric net income = %v, want null", b.Income.NetIncome)
		}
		if !near(b.Income.EPS, 1.2) || !near(b.Income.SharesOutstanding, 90) {
			t.Errorf("fallback eps/shares = %v %v", b.Income.EPS, b.Income.SharesOutstanding)
		}
		// The trimmed 2022 row still feeds the 2023 average.
		if !near(b.Balance.AvgEquity, 300) {
			t.Errorf("2023 avg equity = %v, want 300", b.Balance.AvgEquity)
		}
		if !near(b.Debt.NetDebt, 55) {
			t.Errorf("reported net debt = %v, want 55", b.Debt.NetDebt)
		}
		// No cash flow row for 2023: empty record, not a dropped period.
		if b.CashFlow.CashFlowFromOperations.Valid {
			t.Errorf("unmatched cash flow = %+v", b.CashFlow)
		}
	})

	t.Run("quarterly and ttm", func(t *testing.T) {
		if len(c.Quarterly) != 5 {
			t.Fatalf("quarterly periods = %d, want 5", len(c.Quarterly))
		}
		if c.Quarterly[0].Name != "2024 Q4" {
			t.Errorf("quarter name = %q", c.Quarterly[0].Name)
		}
		if c.TTM == nil {
			t.Fatal("TTM not derived")
		}
		if !near(c.TTM.Income.Revenues, 750) {
			t.Errorf("TTM revenues = %v, want 750", c.TTM.Income.Revenues)
		}
		if !near(c.TTM.Income.SharesOutstanding, 101) {
			t.Errorf("TTM shares = %v, want 101", c.TTM.Income.SharesOutstanding)
		}
		if c.TTM.Balance != c.Quarterly[0].Balance {
			t.Error("TTM balance sheet should be the newest quarter's")
		}
		if c.TTM.Market == nil || !near(c.TTM.Market.MarketCap, 5000) || !near(c.TTM.Market.SharesOutstanding, 100) {
			t.Errorf("TTM market = %+v", c.TTM.Market)
		}
	})
}

func TestFetchCompanyNotFound(t *testing.T) {
	fake := newFakeFMP()
	p := newTestProvider(t, fake)

	_, err := p.FetchCompany(context.Background(), "NOPE", 5)
	if !errors.Is(err, ErrCompanyNotFound) {
		t.Errorf("empty profile: got %v, want ErrCompanyNotFound", err)
	}

	fake.setStatus("/profile/ACME?", http.StatusInternalServerError)
	_, err = p.FetchCompany(context.Background(), "ACME", 5)
	if !errors.Is(err, ErrCompanyNotFound) {
		t.Errorf("failed profile: got %v, want ErrCompanyNotFound", err)
	}
}

func TestFetchCompanyBlankSymbol(t *testing.T) {
	fake := newFakeFMP()
	p := newTestProvider(t, fake)

	_, err := p.FetchCompany(context.Background(), "   ", 5)
	var mp *provider.ErrMissingParam
	if !errors.As(err, &mp) || mp.Param != provider.ParamSymbol {
		t.Fatalf("blank symbol: got %v, want missing %q", err, provider.ParamSymbol)
	}
	if reqs, _ := fake.seen(); len(reqs) != 0 {
		t.Errorf("blank symbol sent requests: %v", reqs)
	}
}

func TestFetchCompanyStatementFailures(t *testing.T) {
	fake := newFakeFMP()
	fake.status["/income-statement/ACME?quarter"] = http.StatusTooManyRequests
	fake.routes["/income-statement/ACME?annual"] = `not json`
	p := newTestProvider(t, fake)

	c, err := p.FetchCompany(context.Background(), "ACME", 5)
	if err != nil {
		t.Fatalf("statement failures must not abort the load: %v", err)
	}
	if len(c.Annual) != 0 || len(c.Quarterly) != 0 || c.TTM != nil {
		t.Errorf("expected empty periods, got %d annual %d quarterly", len(c.Annual), len(c.Quarterly))
	}
	if !c.IsPartial() {
		t.Error("company should be partial")
	}
}

// --- Field decoding ---

func TestRecordNumbers(t *testing.T) {
	r := record{}
	if r.millions("revenue").Valid {
		t.Error("empty record should yield null")
	}

	rows, _ := decodeArray([]byte(`[{"a":2500000,"b":"1,000","c":"3000000","d":null,"e":0,"f":7}]`))
	r = rows[0]
	tests := []struct {
		name string
		got  null.Float
		want null.Float
	}{
		{"number", r.millions("a"), null.FloatFrom(2.5)},
		{"comma string", r.millions("b"), null.Float{}},
		{"numeric string", r.millions("c"), null.FloatFrom(3)},
		{"null", r.millions("d"), null.Float{}},
		{"missing", r.millions("zz"), null.Float{}},
		{"first set skips zero", r.firstSet("e", "f"), null.FloatFrom(7)},
		{"first set keeps zero", r.firstSet("e", "zz"), null.FloatFrom(0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}
}

func TestPeriodNames(t *testing.T) {
	rows, _ := decodeArray([]byte(`[
		{"date":"2024-09-28","calendarYear":"2024","period":"Q4"},
		{"date":"2024-06-29","fiscalYear":"2024","period":"Q3"},
		{"date":"2024-03-30"},
		{"date":"2023-09-30","calendarYear":2023}
	]`))
	if got := quarterName(rows[0]); got != "2024 Q4" {
		t.Errorf("quarterName = %q", got)
	}
	if got := quarterName(rows[1]); got != "2024 Q3" {
		t.Errorf("quarterName with fiscalYear = %q", got)
	}
	if got := quarterName(rows[2]); got != "2024-03" {
		t.Errorf("quarterName without period = %q", got)
	}
	if got := annualName(rows[2]); got != "2024" {
		t.Errorf("annualName from date = %q", got)
	}
	if got := annualName(rows[3]); got != "2023" {
		t.Errorf("annualName numeric year = %q", got)
	}
}

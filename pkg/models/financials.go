// Package models defines the period-based financial data model shared by the
// ingestion adapters, the period reconciler, the ratio calculator and the
// presentation layer.
//
// Monetary values are in millions of the reporting currency unless a field
// says otherwise. Every value is a null.Float: an invalid (null) value means
// "not reported" and is distinct from zero.
package models

import (
	"time"

	"github.com/guregu/null/v5"
)

// PeriodType classifies a reporting period.
type PeriodType string

const (
	PeriodTTM       PeriodType = "TTM"
	PeriodQuarterly PeriodType = "QUARTERLY"
	PeriodAnnual    PeriodType = "ANNUAL"
	PeriodUnknown   PeriodType = ""
)

// DefaultCurrency is used when a source does not report one.
const DefaultCurrency = "USD"

// IncomeStatement holds one period of income statement data.
type IncomeStatement struct {
	Revenues          null.Float `json:"revenues"`
	GrossProfit       null.Float `json:"gross_profit"`
	OperatingIncome   null.Float `json:"operating_income"`
	EBITDA            null.Float `json:"ebitda"`
	InterestExpense   null.Float `json:"interest_expense"`
	IncomeTax         null.Float `json:"income_tax"`
	NetIncome         null.Float `json:"net_income"`
	EPS               null.Float `json:"eps"`                // per share, not scaled
	SharesOutstanding null.Float `json:"shares_outstanding"` // millions of shares
}

// CashFlow holds one period of cash flow data. Capital expenditures follow the
// source convention of a negative outflow.
type CashFlow struct {
	CashFlowFromOperations   null.Float `json:"cash_flow_from_operations"`
	CapitalExpenditures      null.Float `json:"capital_expenditures"`
	FreeCashFlow             null.Float `json:"free_cash_flow"`
	StockBasedCompensation   null.Float `json:"stock_based_compensation"`
	AdjustedFCF              null.Float `json:"adjusted_fcf"`
	DepreciationAmortization null.Float `json:"depreciation_amortization"`
	ChangeInWorkingCapital   null.Float `json:"change_in_working_capital"`
	DividendPaid             null.Float `json:"dividend_paid"`
	RepurchaseOfCommonStock  null.Float `json:"repurchase_of_common_stock"`
}

// CalculateFCF returns free cash flow, deriving it as operating cash flow plus
// capital expenditures when it is not set. The derived value is stored, so
// later calls return it unchanged.
func (cf *CashFlow) CalculateFCF() null.Float {
	if cf.FreeCashFlow.Valid {
		return cf.FreeCashFlow
	}
	if cf.CashFlowFromOperations.Valid && cf.CapitalExpenditures.Valid {
		cf.FreeCashFlow = null.FloatFrom(cf.CashFlowFromOperations.Float64 + cf.CapitalExpenditures.Float64)
	}
	return cf.FreeCashFlow
}

// CalculateAdjustedFCF returns free cash flow less stock based compensation.
// The result is null when either operand is unavailable.
func (cf *CashFlow) CalculateAdjustedFCF() null.Float {
	if cf.AdjustedFCF.Valid {
		return cf.AdjustedFCF
	}
	fcf := cf.CalculateFCF()
	if fcf.Valid && cf.StockBasedCompensation.Valid {
		cf.AdjustedFCF = null.FloatFrom(fcf.Float64 - cf.StockBasedCompensation.Float64)
	}
	return cf.AdjustedFCF
}

// BalanceSheet holds a point-in-time balance sheet. AvgEquity and AvgAssets
// are only filled in for annual periods by the period reconciler.
type BalanceSheet struct {
	CashAndEquivalents null.Float `json:"cash_and_equivalents"`
	CurrentAssets      null.Float `json:"current_assets"`
	TotalAssets        null.Float `json:"total_assets"`
	CurrentLiabilities null.Float `json:"current_liabilities"`
	TotalDebt          null.Float `json:"total_debt"`
	EquityValue        null.Float `json:"equity_value"`
	SharesOutstanding  null.Float `json:"shares_outstanding"`
	MinorityInterest   null.Float `json:"minority_interest"`
	PreferredStock     null.Float `json:"preferred_stock"`
	AvgEquity          null.Float `json:"avg_equity"`
	AvgAssets          null.Float `json:"avg_assets"`
}

// DebtBreakdown splits total debt into its components.
type DebtBreakdown struct {
	CurrentPortionLongTermDebt  null.Float `json:"current_portion_long_term_debt"`
	CurrentPortionCapitalLeases null.Float `json:"current_portion_capital_leases"`
	LongTermDebt                null.Float `json:"long_term_debt"`
	CapitalLeases               null.Float `json:"capital_leases"`
	TotalDebt                   null.Float `json:"total_debt"`
	CashAndEquivalents          null.Float `json:"cash_and_equivalents"`
	NetDebt                     null.Float `json:"net_debt"`
}

// CalculateNetDebt returns net debt, deriving it as total debt minus cash when
// it is not set.
func (d *DebtBreakdown) CalculateNetDebt() null.Float {
	if d.NetDebt.Valid {
		return d.NetDebt
	}
	if d.TotalDebt.Valid && d.CashAndEquivalents.Valid {
		d.NetDebt = null.FloatFrom(d.TotalDebt.Float64 - d.CashAndEquivalents.Float64)
	}
	return d.NetDebt
}

// MarketData is a market snapshot attached to a period.
type MarketData struct {
	Date              null.Time  `json:"date"`
	Price             null.Float `json:"price"`
	MarketCap         null.Float `json:"market_cap"`
	SharesOutstanding null.Float `json:"shares_outstanding"`
}

// FinancialPeriod is one reporting interval. The TTM period shares its
// Balance, Debt and Market records with the most recent quarter.
type FinancialPeriod struct {
	Type     PeriodType       `json:"period_type"`
	Name     string           `json:"period_name"`
	EndDate  null.Time        `json:"period_end_date"`
	Income   *IncomeStatement `json:"income_statement"`
	CashFlow *CashFlow        `json:"cash_flow"`
	Balance  *BalanceSheet    `json:"balance_sheet"`
	Debt     *DebtBreakdown   `json:"debt_breakdown"`
	Market   *MarketData      `json:"market_data,omitempty"`
}

// NewPeriod returns a period with empty statement records.
func NewPeriod(kind PeriodType, name string) *FinancialPeriod {
	return &FinancialPeriod{
		Type:     kind,
		Name:     name,
		Income:   &IncomeStatement{},
		CashFlow: &CashFlow{},
		Balance:  &BalanceSheet{},
		Debt:     &DebtBreakdown{},
	}
}

// Derive runs the lazy derivations of a freshly ingested period.
func (p *FinancialPeriod) Derive() {
	p.CashFlow.CalculateFCF()
	p.CashFlow.CalculateAdjustedFCF()
	p.Debt.CalculateNetDebt()
}

// EnsureMarket returns the period's market data, creating it if needed.
func (p *FinancialPeriod) EnsureMarket() *MarketData {
	if p.Market == nil {
		p.Market = &MarketData{}
	}
	return p.Market
}

// CompanyFinancials is the full result of one load. Quarterly and Annual keep
// the order the source delivered: newest first from the API, column order
// for pasted text.
type CompanyFinancials struct {
	Ticker      string             `json:"ticker"`
	CompanyName string             `json:"company_name"`
	Currency    string             `json:"currency"`
	LastUpdated time.Time          `json:"last_updated"`
	TTM         *FinancialPeriod   `json:"ttm"`
	Quarterly   []*FinancialPeriod `json:"quarterly_data"`
	Annual      []*FinancialPeriod `json:"annual_data"`
}

// NewCompany returns an empty company record for ticker.
func NewCompany(ticker, name string) *CompanyFinancials {
	return &CompanyFinancials{
		Ticker:      ticker,
		CompanyName: name,
		Currency:    DefaultCurrency,
		LastUpdated: time.Now(),
	}
}

// IsEmpty reports whether no period of any kind was ingested.
func (c *CompanyFinancials) IsEmpty() bool {
	return c.TTM == nil && len(c.Quarterly) == 0 && len(c.Annual) == 0
}

// IsPartial reports whether the company lacks TTM or annual data.
func (c *CompanyFinancials) IsPartial() bool {
	return c.TTM == nil || len(c.Annual) == 0
}

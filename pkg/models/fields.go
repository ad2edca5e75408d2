package models

import "github.com/guregu/null/v5"

// Section names the statement a field belongs to.
type Section string

const (
	SectionIncome   Section = "income_statement"
	SectionCashFlow Section = "cash_flow"
	SectionBalance  Section = "balance_sheet"
	SectionDebt     Section = "debt_breakdown"
	SectionMarket   Section = "market_data"
)

// Unit says how a field value is rendered.
type Unit int

const (
	UnitMillions Unit = iota
	UnitPerShare
	UnitShares
)

// Field binds one model field to its display label and accessors.
//
// Label is the exact row label recognized in pasted spreadsheet text; an
// empty Label means the field is never parsed from text. Set is nil for
// fields that only the reconciler may fill in. Additive fields are summed
// when quarters are aggregated into TTM.
type Field struct {
	Key      string
	Label    string
	Section  Section
	Unit     Unit
	Additive bool
	Get      func(p *FinancialPeriod) null.Float
	Set      func(p *FinancialPeriod, v null.Float)
}

// Fields is the closed set of model fields in display order.
var Fields = []Field{
	// Income statement
	{Key: "revenues", Label: "Revenues", Section: SectionIncome, Additive: true,
		Get: func(p *FinancialPeriod) null.Float { return p.Income.Revenues },
		Set: func(p *FinancialPeriod, v null.Float) { p.Income.Revenues = v }},
	{Key: "gross_profit", Label: "Gross profit", Section: SectionIncome, Additive: true,
		Get: func(p *FinancialPeriod) null.Float { return p.Income.GrossProfit },
		Set: func(p *FinancialPeriod, v null.Float) { p.Income.GrossProfit = v }},
	{Key: "operating_income", Label: "Operating income", Section: SectionIncome, Additive: true,
		Get: func(p *FinancialPeriod) null.Float { return p.Income.OperatingIncome },
		Set: func(p *FinancialPeriod, v null.Float) { p.Income.OperatingIncome = v }},
	{Key: "ebitda", Label: "EBITDA", Section: SectionIncome, Additive: true,
		Get: func(p *FinancialPeriod) null.Float { return p.Income.EBITDA },
		Set: func(p *FinancialPeriod, v null.Float) { p.Income.EBITDA = v }},
	{Key: "interest_expense", Label: "Interest Expense", Section: SectionIncome, Additive: true,
		Get: func(p *FinancialPeriod) null.Float { return p.Income.InterestExpense },
		Set: func(p *FinancialPeriod, v null.Float) { p.Income.InterestExpense = v }},
	{Key: "income_tax", Label: "Income Tax", Section: SectionIncome, Additive: true,
		Get: func(p *FinancialPeriod) null.Float { return p.Income.IncomeTax },
		Set: func(p *FinancialPeriod, v null.Float) { p.Income.IncomeTax = v }},
	{Key: "net_income", Label: "Net Income", Section: SectionIncome, Additive: true,
		Get: func(p *FinancialPeriod) null.Float { return p.Income.NetIncome },
		Set: func(p *FinancialPeriod, v null.Float) { p.Income.NetIncome = v }},
	{Key: "eps", Label: "EPS", Section: SectionIncome, Unit: UnitPerShare, Additive: true,
		Get: func(p *FinancialPeriod) null.Float { return p.Income.EPS },
		Set: func(p *FinancialPeriod, v null.Float) { p.Income.EPS = v }},
	{Key: "shares_outstanding", Label: "Shares Outstanding", Section: SectionIncome, Unit: UnitShares,
		Get: func(p *FinancialPeriod) null.Float { return p.Income.SharesOutstanding },
		Set: func(p *FinancialPeriod, v null.Float) { p.Income.SharesOutstanding = v }},

	// Cash flow
	{Key: "cash_flow_from_operations", Label: "Cash flow from operations", Section: SectionCashFlow, Additive: true,
		Get: func(p *FinancialPeriod) null.Float { return p.CashFlow.CashFlowFromOperations },
		Set: func(p *FinancialPeriod, v null.Float) { p.CashFlow.CashFlowFromOperations = v }},
	{Key: "capital_expenditures", Label: "Capital expenditures", Section: SectionCashFlow, Additive: true,
		Get: func(p *FinancialPeriod) null.Float { return p.CashFlow.CapitalExpenditures },
		Set: func(p *FinancialPeriod, v null.Float) { p.CashFlow.CapitalExpenditures = v }},
	{Key: "free_cash_flow", Label: "Free Cash flow", Section: SectionCashFlow, Additive: true,
		Get: func(p *FinancialPeriod) null.Float { return p.CashFlow.FreeCashFlow },
		Set: func(p *FinancialPeriod, v null.Float) { p.CashFlow.FreeCashFlow = v }},
	{Key: "stock_based_compensation", Label: "Stock based compensation", Section: SectionCashFlow, Additive: true,
		Get: func(p *FinancialPeriod) null.Float { return p.CashFlow.StockBasedCompensation },
		Set: func(p *FinancialPeriod, v null.Float) { p.CashFlow.StockBasedCompensation = v }},
	{Key: "adjusted_fcf", Label: "Adjusted FCF", Section: SectionCashFlow,
		Get: func(p *FinancialPeriod) null.Float { return p.CashFlow.AdjustedFCF },
		Set: func(p *FinancialPeriod, v null.Float) { p.CashFlow.AdjustedFCF = v }},
	{Key: "depreciation_amortization", Label: "Depreciation & Amortization", Section: SectionCashFlow, Additive: true,
		Get: func(p *FinancialPeriod) null.Float { return p.CashFlow.DepreciationAmortization },
		Set: func(p *FinancialPeriod, v null.Float) { p.CashFlow.DepreciationAmortization = v }},
	{Key: "change_in_working_capital", Label: "Change in Working Capital", Section: SectionCashFlow, Additive: true,
		Get: func(p *FinancialPeriod) null.Float { return p.CashFlow.ChangeInWorkingCapital },
		Set: func(p *FinancialPeriod, v null.Float) { p.CashFlow.ChangeInWorkingCapital = v }},
	{Key: "dividend_paid", Label: "Dividend paid", Section: SectionCashFlow, Additive: true,
		Get: func(p *FinancialPeriod) null.Float { return p.CashFlow.DividendPaid },
		Set: func(p *FinancialPeriod, v null.Float) { p.CashFlow.DividendPaid = v }},
	{Key: "repurchase_of_common_stock", Label: "Repurchase of Common Stock", Section: SectionCashFlow, Additive: true,
		Get: func(p *FinancialPeriod) null.Float { return p.CashFlow.RepurchaseOfCommonStock },
		Set: func(p *FinancialPeriod, v null.Float) { p.CashFlow.RepurchaseOfCommonStock = v }},

	// Balance sheet. Cash and total debt rows fill the debt breakdown too.
	{Key: "cash_and_equivalents", Label: "Cash & Equivalents", Section: SectionBalance,
		Get: func(p *FinancialPeriod) null.Float { return p.Balance.CashAndEquivalents },
		Set: func(p *FinancialPeriod, v null.Float) {
			p.Balance.CashAndEquivalents = v
			p.Debt.CashAndEquivalents = v
		}},
	{Key: "current_assets", Label: "Current Assets", Section: SectionBalance,
		Get: func(p *FinancialPeriod) null.Float { return p.Balance.CurrentAssets },
		Set: func(p *FinancialPeriod, v null.Float) { p.Balance.CurrentAssets = v }},
	{Key: "total_assets", Label: "Total Assets", Section: SectionBalance,
		Get: func(p *FinancialPeriod) null.Float { return p.Balance.TotalAssets },
		Set: func(p *FinancialPeriod, v null.Float) { p.Balance.TotalAssets = v }},
	{Key: "current_liabilities", Label: "Current Liabilities", Section: SectionBalance,
		Get: func(p *FinancialPeriod) null.Float { return p.Balance.CurrentLiabilities },
		Set: func(p *FinancialPeriod, v null.Float) { p.Balance.CurrentLiabilities = v }},
	{Key: "total_debt", Label: "Total Debt", Section: SectionBalance,
		Get: func(p *FinancialPeriod) null.Float { return p.Balance.TotalDebt },
		Set: func(p *FinancialPeriod, v null.Float) {
			p.Balance.TotalDebt = v
			p.Debt.TotalDebt = v
		}},
	{Key: "equity_value", Label: "Equity", Section: SectionBalance,
		Get: func(p *FinancialPeriod) null.Float { return p.Balance.EquityValue },
		Set: func(p *FinancialPeriod, v null.Float) { p.Balance.EquityValue = v }},
	{Key: "balance_shares_outstanding", Section: SectionBalance, Unit: UnitShares,
		Get: func(p *FinancialPeriod) null.Float { return p.Balance.SharesOutstanding },
		Set: func(p *FinancialPeriod, v null.Float) { p.Balance.SharesOutstanding = v }},
	{Key: "minority_interest", Label: "Minority Interest", Section: SectionBalance,
		Get: func(p *FinancialPeriod) null.Float { return p.Balance.MinorityInterest },
		Set: func(p *FinancialPeriod, v null.Float) { p.Balance.MinorityInterest = v }},
	{Key: "preferred_stock", Label: "Preferred Stock", Section: SectionBalance,
		Get: func(p *FinancialPeriod) null.Float { return p.Balance.PreferredStock },
		Set: func(p *FinancialPeriod, v null.Float) { p.Balance.PreferredStock = v }},
	{Key: "avg_equity", Section: SectionBalance,
		Get: func(p *FinancialPeriod) null.Float { return p.Balance.AvgEquity }},
	{Key: "avg_assets", Section: SectionBalance,
		Get: func(p *FinancialPeriod) null.Float { return p.Balance.AvgAssets }},

	// Debt breakdown
	{Key: "current_portion_long_term_debt", Label: "Current Portion of LTD", Section: SectionDebt,
		Get: func(p *FinancialPeriod) null.Float { return p.Debt.CurrentPortionLongTermDebt },
		Set: func(p *FinancialPeriod, v null.Float) { p.Debt.CurrentPortionLongTermDebt = v }},
	{Key: "current_portion_capital_leases", Label: "Current Portion of Capital Leases", Section: SectionDebt,
		Get: func(p *FinancialPeriod) null.Float { return p.Debt.CurrentPortionCapitalLeases },
		Set: func(p *FinancialPeriod, v null.Float) { p.Debt.CurrentPortionCapitalLeases = v }},
	{Key: "long_term_debt", Label: "Long Term Debt", Section: SectionDebt,
		Get: func(p *FinancialPeriod) null.Float { return p.Debt.LongTermDebt },
		Set: func(p *FinancialPeriod, v null.Float) { p.Debt.LongTermDebt = v }},
	{Key: "capital_leases", Label: "Capital Leases", Section: SectionDebt,
		Get: func(p *FinancialPeriod) null.Float { return p.Debt.CapitalLeases },
		Set: func(p *FinancialPeriod, v null.Float) { p.Debt.CapitalLeases = v }},
	{Key: "net_debt", Label: "Net Debt", Section: SectionDebt,
		Get: func(p *FinancialPeriod) null.Float { return p.Debt.NetDebt },
		Set: func(p *FinancialPeriod, v null.Float) { p.Debt.NetDebt = v }},

	// Market data
	{Key: "price", Label: "Price", Section: SectionMarket, Unit: UnitPerShare,
		Get: func(p *FinancialPeriod) null.Float {
			if p.Market == nil {
				return null.Float{}
			}
			return p.Market.Price
		},
		Set: func(p *FinancialPeriod, v null.Float) { p.EnsureMarket().Price = v }},
	{Key: "market_cap", Label: "Market Cap", Section: SectionMarket,
		Get: func(p *FinancialPeriod) null.Float {
			if p.Market == nil {
				return null.Float{}
			}
			return p.Market.MarketCap
		},
		Set: func(p *FinancialPeriod, v null.Float) { p.EnsureMarket().MarketCap = v }},
}

var fieldsByLabel = func() map[string]Field {
	m := make(map[string]Field, len(Fields))
	for _, f := range Fields {
		if f.Label != "" && f.Set != nil {
			m[f.Label] = f
		}
	}
	return m
}()

var fieldsByKey = func() map[string]Field {
	m := make(map[string]Field, len(Fields))
	for _, f := range Fields {
		m[f.Key] = f
	}
	return m
}()

// FieldByLabel looks up a parseable field by its exact row label.
func FieldByLabel(label string) (Field, bool) {
	f, ok := fieldsByLabel[label]
	return f, ok
}

// FieldByKey looks up a field by its key.
func FieldByKey(key string) (Field, bool) {
	f, ok := fieldsByKey[key]
	return f, ok
}

// FieldsIn returns the fields of one section in display order.
func FieldsIn(s Section) []Field {
	var out []Field
	for _, f := range Fields {
		if f.Section == s {
			out = append(out, f)
		}
	}
	return out
}

// DisplayLabel returns Label, falling back to Key for internal fields.
func (f Field) DisplayLabel() string {
	if f.Label != "" {
		return f.Label
	}
	return f.Key
}

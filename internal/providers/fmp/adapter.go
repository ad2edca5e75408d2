package fmp

import (
	"time"

	"github.com/guregu/null/v5"

	"github.com/seenimoa/getvalue/internal/analysis/fundamental"
	"github.com/seenimoa/getvalue/pkg/models"
)

const dateLayout = "2006-01-02"

// buildCompany assembles a reconciled company from a profile row and the
// raw statement series. annual caps the number of annual periods kept.
func buildCompany(symbol string, profile record, set *statementSet, annual int, now time.Time) *models.CompanyFinancials {
	name := profile.str("companyName")
	if name == "" {
		name = symbol
	}
	c := models.NewCompany(symbol, name)
	c.LastUpdated = now
	if cur := profile.str("currency"); cur != "" {
		c.Currency = cur
	}

	balance, cashflow := byDate(set.annualBalance), byDate(set.annualCashFlow)
	for _, inc := range set.annualIncome {
		p := buildPeriod(models.PeriodAnnual, annualName(inc), inc, balance, cashflow)
		if v := p.Balance.SharesOutstanding; !v.Valid || v.Float64 == 0 {
			if alt := inc.millions("weightedAverageShsOutDil"); alt.Valid {
				p.Balance.SharesOutstanding = alt
			}
		}
		c.Annual = append(c.Annual, p)
	}

	balance, cashflow = byDate(set.quarterlyBalance), byDate(set.quarterlyCashFlow)
	for _, inc := range set.quarterlyIncome {
		c.Quarterly = append(c.Quarterly, buildPeriod(models.PeriodQuarterly, quarterName(inc), inc, balance, cashflow))
	}

	attachMarket(c, profile, now)

	fundamental.Reconcile(c)

	if annual >= 0 && len(c.Annual) > annual {
		c.Annual = c.Annual[:annual]
	}
	return c
}

func buildPeriod(kind models.PeriodType, name string, inc record, balances, cashflows map[string]record) *models.FinancialPeriod {
	date := inc.str("date")
	p := models.NewPeriod(kind, name)
	if t, err := time.Parse(dateLayout, date); err == nil {
		p.EndDate = null.TimeFrom(t)
	}

	*p.Income = models.IncomeStatement{
		Revenues:          inc.millions("revenue"),
		GrossProfit:       inc.millions("grossProfit"),
		OperatingIncome:   inc.millions("operatingIncome"),
		EBITDA:            inc.millions("ebitda"),
		InterestExpense:   inc.millions("interestExpense"),
		IncomeTax:         inc.millions("incomeTaxExpense"),
		NetIncome:         inc.millions("netIncome"),
		EPS:               inc.firstSet("epsdiluted", "eps"),
		SharesOutstanding: inc.firstSetMillions("weightedAverageShsOutDil", "weightedAverageShsOut"),
	}

	bs, ok := balances[date]
	if !ok {
		bs = emptyRecord
	}
	*p.Balance = models.BalanceSheet{
		CashAndEquivalents: bs.millions("cashAndCashEquivalents"),
		CurrentAssets:      bs.millions("totalCurrentAssets"),
		TotalAssets:        bs.millions("totalAssets"),
		CurrentLiabilities: bs.millions("totalCurrentLiabilities"),
		TotalDebt:          bs.millions("totalDebt"),
		EquityValue:        bs.millions("totalStockholdersEquity"),
		SharesOutstanding:  bs.firstSetMillions("commonStock"),
		MinorityInterest:   bs.millions("minorityInterest"),
		PreferredStock:     bs.millions("preferredStock"),
	}
	*p.Debt = models.DebtBreakdown{
		CurrentPortionLongTermDebt:  bs.millions("shortTermDebt"),
		CurrentPortionCapitalLeases: bs.millions("capitalLeaseObligations"),
		LongTermDebt:                bs.millions("longTermDebt"),
		CapitalLeases:               bs.millions("capitalLeaseObligations"),
		TotalDebt:                   bs.millions("totalDebt"),
		CashAndEquivalents:          bs.millions("cashAndCashEquivalents"),
		NetDebt:                     bs.millions("netDebt"),
	}

	cf, ok := cashflows[date]
	if !ok {
		cf = emptyRecord
	}
	*p.CashFlow = models.CashFlow{
		CashFlowFromOperations:   cf.millions("operatingCashFlow"),
		CapitalExpenditures:      cf.millions("capitalExpenditure"),
		FreeCashFlow:             cf.millions("freeCashFlow"),
		StockBasedCompensation:   cf.millions("stockBasedCompensation"),
		DepreciationAmortization: cf.millions("depreciationAndAmortization"),
		ChangeInWorkingCapital:   cf.millions("changeInWorkingCapital"),
		DividendPaid:             cf.millions("dividendsPaid"),
		RepurchaseOfCommonStock:  cf.millions("commonStockRepurchased"),
	}
	return p
}

func fiscalYear(inc record) string {
	if y := inc.str("calendarYear"); y != "" {
		return y
	}
	return inc.str("fiscalYear")
}

// annualName is the fiscal year, or the year part of the statement date.
func annualName(inc record) string {
	if y := fiscalYear(inc); y != "" {
		return y
	}
	return prefix(inc.str("date"), 4)
}

// quarterName is "YYYY Qn", or the year-month part of the statement date.
func quarterName(inc record) string {
	q := inc.str("period")
	if q == "" {
		return prefix(inc.str("date"), 7)
	}
	y := fiscalYear(inc)
	if y == "" {
		y = prefix(inc.str("date"), 4)
	}
	return y + " " + q
}

func prefix(s string, n int) string {
	if len(s) < n {
		return s
	}
	return s[:n]
}

// attachMarket puts the profile's price and market cap on the newest
// quarter, or the newest annual period when there are no quarters.
func attachMarket(c *models.CompanyFinancials, profile record, now time.Time) {
	var target *models.FinancialPeriod
	switch {
	case len(c.Quarterly) > 0:
		target = fundamental.SortPeriods(c.Quarterly)[0]
	case len(c.Annual) > 0:
		target = fundamental.SortPeriods(c.Annual)[0]
	default:
		return
	}

	price := profile.number("price")
	mcap := profile.firstSet("mktCap", "marketCap")
	if !price.Valid && !mcap.Valid {
		return
	}

	m := target.EnsureMarket()
	m.Date = null.TimeFrom(now)
	m.Price = price
	if mcap.Valid {
		m.MarketCap = null.FloatFrom(mcap.Float64 / unitScale)
		if price.Valid && price.Float64 != 0 {
			m.SharesOutstanding = null.FloatFrom(mcap.Float64 / price.Float64 / unitScale)
		}
	}
}

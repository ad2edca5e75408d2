package fundamental

import (
	"math"

	"github.com/guregu/null/v5"

	"github.com/seenimoa/getvalue/pkg/models"
)

// Ratio keys returned by FinancialRatios.CalculateAll.
const (
	RatioPE               = "pe_ratio"
	RatioPS               = "ps_ratio"
	RatioGrossMargin      = "gross_margin"
	RatioOperatingMargin  = "operating_margin"
	RatioNetMargin        = "net_margin"
	RatioROE              = "roe"
	RatioROIC             = "roic"
	RatioInterestCoverage = "interest_coverage"
)

// RatioKeys lists the ratio keys in display order.
var RatioKeys = []string{
	RatioPE, RatioPS, RatioGrossMargin, RatioOperatingMargin,
	RatioNetMargin, RatioROE, RatioROIC, RatioInterestCoverage,
}

// FinancialRatios computes ratios for one period. Every ratio is null when a
// required operand is null or a denominator is zero.
type FinancialRatios struct {
	period   *models.FinancialPeriod
	previous *models.FinancialPeriod
}

// NewFinancialRatios returns a calculator for period. previous is the
// chronologically prior period and may be nil; only ROE needs it.
func NewFinancialRatios(period, previous *models.FinancialPeriod) *FinancialRatios {
	return &FinancialRatios{period: period, previous: previous}
}

func divide(num, den null.Float) null.Float {
	if !num.Valid || !den.Valid || den.Float64 == 0 {
		return null.Float{}
	}
	return null.FloatFrom(num.Float64 / den.Float64)
}

func abs(v null.Float) null.Float {
	if !v.Valid {
		return v
	}
	return null.FloatFrom(math.Abs(v.Float64))
}

func (r *FinancialRatios) marketCap() null.Float {
	if r.period.Market == nil {
		return null.Float{}
	}
	return r.period.Market.MarketCap
}

// PERatio is market cap over net income.
func (r *FinancialRatios) PERatio() null.Float {
	return divide(r.marketCap(), r.period.Income.NetIncome)
}

// PSRatio is market cap over revenues.
func (r *FinancialRatios) PSRatio() null.Float {
	return divide(r.marketCap(), r.period.Income.Revenues)
}

func (r *FinancialRatios) GrossMargin() null.Float {
	return divide(r.period.Income.GrossProfit, r.period.Income.Revenues)
}

func (r *FinancialRatios) OperatingMargin() null.Float {
	return divide(r.period.Income.OperatingIncome, r.period.Income.Revenues)
}

func (r *FinancialRatios) NetMargin() null.Float {
	return divide(r.period.Income.NetIncome, r.period.Income.Revenues)
}

// ROE is net income over the mean of this and the previous period's equity.
func (r *FinancialRatios) ROE() null.Float {
	if r.previous == nil {
		return null.Float{}
	}
	avg := mean(r.period.Balance.EquityValue, r.previous.Balance.EquityValue)
	return divide(r.period.Income.NetIncome, avg)
}

// ROIC is NOPAT over invested capital (|total debt| + equity). A null
// taxRate is replaced by the effective rate |income tax| / |operating income|.
// Missing debt or equity count as zero in invested capital.
func (r *FinancialRatios) ROIC(taxRate null.Float) null.Float {
	inc := r.period.Income
	if !inc.OperatingIncome.Valid {
		return null.Float{}
	}
	if !taxRate.Valid {
		taxRate = divide(abs(inc.IncomeTax), abs(inc.OperatingIncome))
		if !taxRate.Valid {
			return null.Float{}
		}
	}
	nopat := inc.OperatingIncome.Float64 * (1 - taxRate.Float64)

	debt := r.period.Debt.TotalDebt
	if !debt.Valid {
		debt = r.period.Balance.TotalDebt
	}
	invested := math.Abs(debt.Float64) + r.period.Balance.EquityValue.Float64
	return divide(null.FloatFrom(nopat), null.FloatFrom(invested))
}

// InterestCoverage is operating income over |interest expense|.
func (r *FinancialRatios) InterestCoverage() null.Float {
	return divide(r.period.Income.OperatingIncome, abs(r.period.Income.InterestExpense))
}

// CalculateAll returns every ratio keyed by name.
func (r *FinancialRatios) CalculateAll() map[string]null.Float {
	return map[string]null.Float{
		RatioPE:               r.PERatio(),
		RatioPS:               r.PSRatio(),
		RatioGrossMargin:      r.GrossMargin(),
		RatioOperatingMargin:  r.OperatingMargin(),
		RatioNetMargin:        r.NetMargin(),
		RatioROE:              r.ROE(),
		RatioROIC:             r.ROIC(null.Float{}),
		RatioInterestCoverage: r.InterestCoverage(),
	}
}

// PeriodRatios is the ratio set of one named period.
type PeriodRatios struct {
	Period string                `json:"period"`
	Type   models.PeriodType     `json:"period_type"`
	Ratios map[string]null.Float `json:"ratios"`
}

// RatioSeries computes ratios for the TTM period and for every annual period
// newest first. Each annual period is paired with the next older one for ROE;
// TTM has no prior period.
func RatioSeries(c *models.CompanyFinancials) []PeriodRatios {
	var out []PeriodRatios
	if c.TTM != nil {
		out = append(out, PeriodRatios{
			Period: c.TTM.Name,
			Type:   c.TTM.Type,
			Ratios: NewFinancialRatios(c.TTM, nil).CalculateAll(),
		})
	}
	annual := SortPeriods(c.Annual)
	for i, p := range annual {
		var prev *models.FinancialPeriod
		if i+1 < len(annual) {
			prev = annual[i+1]
		}
		out = append(out, PeriodRatios{
			Period: p.Name,
			Type:   p.Type,
			Ratios: NewFinancialRatios(p, prev).CalculateAll(),
		})
	}
	return out
}

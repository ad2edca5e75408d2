package fundamental

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/guregu/null/v5"

	"github.com/seenimoa/getvalue/pkg/models"
)

// TTMQuarters is the number of quarters aggregated into a TTM period.
const TTMQuarters = 4

var (
	quarterNameRe = regexp.MustCompile(`^(\d{4})\s*Q(\d)`)
	yearNameRe    = regexp.MustCompile(`^(\d{4})$`)
)

// PeriodInfo is the parsed form of a period name.
type PeriodInfo struct {
	Kind       models.PeriodType
	Year       int
	Quarter    int
	HasQuarter bool
}

// ParsePeriodInfo classifies a period name such as "TTM", "2024 Q3" or "2024".
// Names matching none of these forms come back as PeriodUnknown with year 0.
func ParsePeriodInfo(name string) PeriodInfo {
	name = strings.TrimSpace(name)
	if strings.EqualFold(name, "TTM") {
		return PeriodInfo{Kind: models.PeriodTTM}
	}
	if m := quarterNameRe.FindStringSubmatch(name); m != nil {
		year, _ := strconv.Atoi(m[1])
		q, _ := strconv.Atoi(m[2])
		return PeriodInfo{Kind: models.PeriodQuarterly, Year: year, Quarter: q, HasQuarter: true}
	}
	if m := yearNameRe.FindStringSubmatch(name); m != nil {
		year, _ := strconv.Atoi(m[1])
		return PeriodInfo{Kind: models.PeriodAnnual, Year: year}
	}
	return PeriodInfo{Kind: models.PeriodUnknown}
}

// SortPeriods returns a copy of periods ordered newest first by year and
// quarter. Periods with equal keys keep their input order.
func SortPeriods(periods []*models.FinancialPeriod) []*models.FinancialPeriod {
	out := make([]*models.FinancialPeriod, len(periods))
	copy(out, periods)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := ParsePeriodInfo(out[i].Name), ParsePeriodInfo(out[j].Name)
		if a.Year != b.Year {
			return a.Year > b.Year
		}
		return a.Quarter > b.Quarter
	})
	return out
}

// CalculateTTM aggregates the four most recent quarters into a TTM period.
// It returns nil when fewer than four quarters are given.
//
// Additive income and cash flow fields are summed over the quarters that
// report them; a field no quarter reports stays null. Shares outstanding
// come from the newest quarter. Balance sheet, debt and market records are
// shared with the newest quarter, not copied.
func CalculateTTM(quarters []*models.FinancialPeriod) *models.FinancialPeriod {
	if len(quarters) < TTMQuarters {
		return nil
	}
	recent := SortPeriods(quarters)[:TTMQuarters]
	latest := recent[0]

	ttm := models.NewPeriod(models.PeriodTTM, "TTM")
	for _, f := range models.Fields {
		if !f.Additive || f.Set == nil {
			continue
		}
		if f.Section != models.SectionIncome && f.Section != models.SectionCashFlow {
			continue
		}
		f.Set(ttm, sumPresent(recent, f))
	}
	ttm.Income.SharesOutstanding = latest.Income.SharesOutstanding

	ttm.Balance = latest.Balance
	ttm.Debt = latest.Debt
	ttm.Market = latest.Market
	ttm.EndDate = latest.EndDate

	ttm.CashFlow.CalculateFCF()
	ttm.CashFlow.CalculateAdjustedFCF()
	return ttm
}

func sumPresent(periods []*models.FinancialPeriod, f models.Field) null.Float {
	var sum float64
	var n int
	for _, p := range periods {
		if v := f.Get(p); v.Valid {
			sum += v.Float64
			n++
		}
	}
	if n == 0 {
		return null.Float{}
	}
	return null.FloatFrom(sum)
}

// IdentifyLastFullYear returns the most recent fully reported fiscal year.
//
// With quarterly data, a newest quarter of Q4 means its year is complete;
// any other newest quarter means the prior year is the last complete one.
// Without quarterly data the newest annual period's year is used. The
// boolean is false when the company has neither.
func IdentifyLastFullYear(c *models.CompanyFinancials) (int, bool) {
	if len(c.Quarterly) > 0 {
		info := ParsePeriodInfo(SortPeriods(c.Quarterly)[0].Name)
		if info.HasQuarter && info.Quarter == 4 {
			return info.Year, true
		}
		// An unparseable newest quarter yields year 0 and so -1 here.
		return info.Year - 1, true
	}
	if len(c.Annual) > 0 {
		return ParsePeriodInfo(SortPeriods(c.Annual)[0].Name).Year, true
	}
	return 0, false
}

// ComputeTrailingAverages fills AvgEquity and AvgAssets on each annual
// period from its own value and that of the next older period. The oldest
// period gets no averages.
func ComputeTrailingAverages(annual []*models.FinancialPeriod) {
	sorted := SortPeriods(annual)
	for i := 0; i+1 < len(sorted); i++ {
		cur, prev := sorted[i].Balance, sorted[i+1].Balance
		cur.AvgEquity = mean(cur.EquityValue, prev.EquityValue)
		cur.AvgAssets = mean(cur.TotalAssets, prev.TotalAssets)
	}
}

func mean(a, b null.Float) null.Float {
	if !a.Valid || !b.Valid {
		return null.Float{}
	}
	return null.FloatFrom((a.Float64 + b.Float64) / 2)
}

// Reconcile runs the post-ingestion backfill shared by every adapter:
// per-period derivations, trailing averages on annual data, and a TTM
// period from quarters when the source supplied none.
func Reconcile(c *models.CompanyFinancials) {
	for _, p := range c.Quarterly {
		p.Derive()
	}
	for _, p := range c.Annual {
		p.Derive()
	}
	if c.TTM != nil {
		c.TTM.Derive()
	}
	ComputeTrailingAverages(c.Annual)
	if c.TTM == nil && len(c.Quarterly) >= TTMQuarters {
		c.TTM = CalculateTTM(c.Quarterly)
	}
}

// PeriodSummary is the subset of a company's periods a viewer usually needs.
type PeriodSummary struct {
	Ticker       string                    `json:"ticker"`
	TTM          *models.FinancialPeriod   `json:"ttm"`
	LastFullYear int                       `json:"last_full_year,omitempty"`
	LastAnnual   *models.FinancialPeriod   `json:"last_annual"`
	Quarterly    []*models.FinancialPeriod `json:"quarterly"`
	Annual       []*models.FinancialPeriod `json:"annual"`
	Partial      bool                      `json:"partial"`
}

// RelevantPeriods returns the TTM period, the last full year and its annual
// period (if present), and the quarterly and annual periods newest first.
func RelevantPeriods(c *models.CompanyFinancials) PeriodSummary {
	s := PeriodSummary{
		Ticker:    c.Ticker,
		TTM:       c.TTM,
		Quarterly: SortPeriods(c.Quarterly),
		Annual:    SortPeriods(c.Annual),
		Partial:   c.IsPartial(),
	}
	if year, ok := IdentifyLastFullYear(c); ok {
		s.LastFullYear = year
		for _, p := range s.Annual {
			if ParsePeriodInfo(p.Name).Year == year {
				s.LastAnnual = p
				break
			}
		}
	}
	return s
}

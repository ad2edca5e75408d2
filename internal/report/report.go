package report

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/seenimoa/getvalue/internal/analysis/fundamental"
	"github.com/seenimoa/getvalue/pkg/models"
)

// ════════════════════════════════════════════════════════════════════
// Dashboard Data
// ════════════════════════════════════════════════════════════════════

// DashboardData is the template model passed to DashboardTemplate.
type DashboardData struct {
	Title        string
	Ticker       string
	CompanyName  string
	Currency     string
	UpdatedAt    string
	GeneratedAt  string
	Source       string
	LastFullYear int
	Partial      bool
	HasTTM       bool

	Metrics    []Metric
	TrendChart template.HTML
	Tables     []Table
}

// Metric is one headline number of the TTM summary.
type Metric struct {
	Label string
	Value string
}

const timestampLayout = "02 Jan 2006, 15:04 MST"

var tmpl = template.Must(template.New("dashboard").Parse(DashboardTemplate))

// BuildDashboard flattens a company into template data. Statement tables
// show annual periods oldest left, then the ratio series.
func BuildDashboard(c *models.CompanyFinancials, now time.Time) DashboardData {
	summary := fundamental.RelevantPeriods(c)
	d := DashboardData{
		Title:       fmt.Sprintf("%s (%s) Financials", c.CompanyName, c.Ticker),
		Ticker:      c.Ticker,
		CompanyName: c.CompanyName,
		Currency:    c.Currency,
		UpdatedAt:   c.LastUpdated.Format(timestampLayout),
		GeneratedAt: now.Format(timestampLayout),
		Source:      "Financial Modeling Prep API or pasted statements",
		Partial:     summary.Partial,
		HasTTM:      c.TTM != nil,
		Metrics:     TTMMetrics(c.TTM),
	}
	if summary.LastFullYear > 0 {
		d.LastFullYear = summary.LastFullYear
	}

	if len(c.Annual) > 0 {
		d.TrendChart = template.HTML(TrendChart(c, "Annual trend ($M)", "revenues", "net_income", "free_cash_flow"))
		for _, s := range StatementSections() {
			d.Tables = append(d.Tables, BuildTable(s.Title, c.Annual, s.Fields, true))
		}
	}
	if series := fundamental.RatioSeries(c); len(series) > 0 {
		d.Tables = append(d.Tables, RatioTable(series))
	}
	return d
}

// TTMMetrics returns the headline TTM numbers that are present.
func TTMMetrics(ttm *models.FinancialPeriod) []Metric {
	if ttm == nil {
		return nil
	}
	candidates := []struct {
		label string
		value string
	}{
		{"Revenues", FormatMetric(ttm.Income.Revenues, false)},
		{"Net Income", FormatMetric(ttm.Income.NetIncome, false)},
		{"EPS", FormatMetric(ttm.Income.EPS, true)},
		{"Free Cash Flow", FormatMetric(ttm.CashFlow.FreeCashFlow, false)},
	}
	var out []Metric
	for _, m := range candidates {
		if m.value != "" {
			out = append(out, Metric{Label: m.label, Value: m.value})
		}
	}
	return out
}

// ════════════════════════════════════════════════════════════════════
// Generate
// ════════════════════════════════════════════════════════════════════

// GenerateHTML renders the company dashboard.
func GenerateHTML(c *models.CompanyFinancials, now time.Time) (string, error) {
	if c == nil {
		return "", errors.New("company is nil")
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, BuildDashboard(c, now)); err != nil {
		return "", fmt.Errorf("executing template: %w", err)
	}
	return buf.String(), nil
}

// WriteText writes a terminal report: the period summary, the TTM summary,
// income and cash flow tables and the ratio series.
func WriteText(w io.Writer, c *models.CompanyFinancials) error {
	if c == nil {
		return errors.New("company is nil")
	}
	line := strings.Repeat("═", 60)
	thin := strings.Repeat("─", 60)
	summary := fundamental.RelevantPeriods(c)

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n  %s (%s) · %s\n%s\n", line, c.CompanyName, c.Ticker, c.Currency, line)
	fmt.Fprintf(&sb, "  Annual periods:    %d\n", len(summary.Annual))
	fmt.Fprintf(&sb, "  Quarterly periods: %d\n", len(summary.Quarterly))
	if summary.TTM != nil {
		fmt.Fprintf(&sb, "  TTM:               yes\n")
	} else {
		fmt.Fprintf(&sb, "  TTM:               no\n")
	}
	if summary.LastFullYear > 0 {
		fmt.Fprintf(&sb, "  Last full year:    %d\n", summary.LastFullYear)
	}
	if summary.Partial {
		sb.WriteString("  Partial data: TTM or annual periods missing\n")
	}
	if metrics := TTMMetrics(c.TTM); len(metrics) > 0 {
		sb.WriteString(thin + "\n  TTM SUMMARY\n")
		for _, m := range metrics {
			fmt.Fprintf(&sb, "    %-16s %s\n", m.Label, m.Value)
		}
	}
	sb.WriteString(thin + "\n")
	if _, err := io.WriteString(w, sb.String()); err != nil {
		return err
	}

	if len(c.Annual) > 0 {
		for _, s := range StatementSections()[:2] {
			RenderTable(w, BuildTable(s.Title, c.Annual, s.Fields, true))
		}
	}
	if series := fundamental.RatioSeries(c); len(series) > 0 {
		RenderTable(w, RatioTable(series))
	}
	return nil
}

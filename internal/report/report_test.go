package report

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/guregu/null/v5"

	"github.com/seenimoa/getvalue/internal/analysis/fundamental"
	"github.com/seenimoa/getvalue/pkg/models"
)

// ════════════════════════════════════════════════════════════════════
// Test Helpers
// ════════════════════════════════════════════════════════════════════

func annualPeriod(name string, revenue, netIncome, equity float64) *models.FinancialPeriod {
	p := models.NewPeriod(models.PeriodAnnual, name)
	p.Income.Revenues = null.FloatFrom(revenue)
	p.Income.NetIncome = null.FloatFrom(netIncome)
	p.Income.EPS = null.FloatFrom(netIncome / 100)
	p.Balance.EquityValue = null.FloatFrom(equity)
	return p
}

func sampleCompany() *models.CompanyFinancials {
	c := models.NewCompany("ACME", "Acme <Corp>")
	c.LastUpdated = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	c.Annual = []*models.FinancialPeriod{
		annualPeriod("2024", 1250, 120, 600),
		annualPeriod("2023", 1100, 110, 500),
		annualPeriod("2022", 1000, 100, 400),
	}
	for i := 4; i >= 1; i-- {
		q := models.NewPeriod(models.PeriodQuarterly, "2024 Q"+string(rune('0'+i)))
		q.Income.Revenues = null.FloatFrom(300)
		q.Income.NetIncome = null.FloatFrom(30)
		q.CashFlow.CashFlowFromOperations = null.FloatFrom(50)
		q.CashFlow.CapitalExpenditures = null.FloatFrom(-10)
		c.Quarterly = append(c.Quarterly, q)
	}
	fundamental.Reconcile(c)
	return c
}

// ════════════════════════════════════════════════════════════════════
// Formatting
// ════════════════════════════════════════════════════════════════════

func TestFormatters(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"millions", FormatMillions(null.FloatFrom(1234567.4)), "1,234,567"},
		{"millions negative", FormatMillions(null.FloatFrom(-1500)), "-1,500"},
		{"millions rounds", FormatMillions(null.FloatFrom(999.6)), "1,000"},
		{"millions null", FormatMillions(null.Float{}), ""},
		{"millions beyond int64", FormatMillions(null.FloatFrom(1e19)), "10,000,000,000,000,000,000"},
		{"millions beyond int64 negative", FormatMillions(null.FloatFrom(-1e19)), "-10,000,000,000,000,000,000"},
		{"eps", FormatEPS(null.FloatFrom(1.256)), "1.26"},
		{"eps null", FormatEPS(null.Float{}), ""},
		{"percent", FormatPercent(null.FloatFrom(0.4567)), "45.7%"},
		{"percent null", FormatPercent(null.Float{}), ""},
		{"multiple", FormatMultiple(null.FloatFrom(21.04)), "21.0x"},
		{"metric", FormatMetric(null.FloatFrom(950), false), "$950M"},
		{"metric per share", FormatMetric(null.FloatFrom(1.5), true), "$1.50"},
		{"metric null", FormatMetric(null.Float{}, false), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestFormatFieldUsesUnit(t *testing.T) {
	eps, _ := models.FieldByKey("eps")
	rev, _ := models.FieldByKey("revenues")
	if got := FormatField(eps, null.FloatFrom(2)); got != "2.00" {
		t.Errorf("eps: got %q, want %q", got, "2.00")
	}
	if got := FormatField(rev, null.FloatFrom(2000)); got != "2,000" {
		t.Errorf("revenues: got %q, want %q", got, "2,000")
	}
}

// ════════════════════════════════════════════════════════════════════
// Tables
// ════════════════════════════════════════════════════════════════════

func TestBuildTableOldestLeft(t *testing.T) {
	c := sampleCompany()
	fields := models.FieldsIn(models.SectionIncome)

	tbl := BuildTable("Income Statement", c.Annual, fields, true)
	if strings.Join(tbl.Columns, ",") != "2022,2023,2024" {
		t.Errorf("columns: got %v", tbl.Columns)
	}
	if len(tbl.Rows) != len(fields) {
		t.Fatalf("rows: got %d, want %d", len(tbl.Rows), len(fields))
	}
	if tbl.Rows[0].Label != "Revenues" || tbl.Rows[0].Cells[2] != "1,250" {
		t.Errorf("first row: got %+v", tbl.Rows[0])
	}
	if tbl.Rows[1].Cells[0] != "" {
		t.Errorf("null gross profit should render empty, got %q", tbl.Rows[1].Cells[0])
	}

	asGiven := BuildTable("Income Statement", c.Annual, fields, false)
	if asGiven.Columns[0] != "2024" {
		t.Errorf("unsorted columns: got %v", asGiven.Columns)
	}
	if c.Annual[0].Name != "2024" {
		t.Error("BuildTable must not reorder the input slice")
	}
}

func TestRatioTable(t *testing.T) {
	c := sampleCompany()
	tbl := RatioTable(fundamental.RatioSeries(c))
	if tbl.Columns[0] != "TTM" || tbl.Columns[1] != "2024" {
		t.Errorf("columns: got %v", tbl.Columns)
	}
	if len(tbl.Rows) != len(fundamental.RatioKeys) {
		t.Fatalf("rows: got %d, want %d", len(tbl.Rows), len(fundamental.RatioKeys))
	}
	// 2024 net margin = 120 / 1250
	var netMargin Row
	for _, r := range tbl.Rows {
		if r.Label == "Net Margin" {
			netMargin = r
		}
	}
	if netMargin.Cells[1] != "9.6%" {
		t.Errorf("net margin 2024: got %q, want %q", netMargin.Cells[1], "9.6%")
	}
}

func TestRenderTable(t *testing.T) {
	var buf bytes.Buffer
	RenderTable(&buf, Table{
		Title:   "Cash Flow",
		Columns: []string{"2023", "2024"},
		Rows:    []Row{{Label: "Free Cash flow", Cells: []string{"1,000", ""}}},
	})
	out := buf.String()
	for _, want := range []string{"Cash Flow", "2023", "2024", "Free Cash flow", "1,000"} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered table missing %q:\n%s", want, out)
		}
	}
}

// ════════════════════════════════════════════════════════════════════
// CSV
// ════════════════════════════════════════════════════════════════════

func TestWriteCSV(t *testing.T) {
	c := sampleCompany()
	var buf bytes.Buffer
	if err := WriteCSV(&buf, c); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if lines[0] != "ticker,period,period_type,field,value" {
		t.Errorf("header: got %q", lines[0])
	}
	if lines[1] != "ACME,TTM,TTM,revenues,1200" {
		t.Errorf("first record: got %q", lines[1])
	}
	if !strings.Contains(buf.String(), "ACME,2022,ANNUAL,equity_value,400\n") {
		t.Errorf("missing 2022 equity record:\n%s", buf.String())
	}
	if strings.Contains(buf.String(), "gross_profit") {
		t.Error("null values should be omitted")
	}
}

func TestCSVRecordsOrder(t *testing.T) {
	records := CSVRecords(sampleCompany())
	if len(records) == 0 {
		t.Fatal("no records")
	}
	last := records[len(records)-1]
	if last.Period != "2022" {
		t.Errorf("last record period: got %q, want oldest annual", last.Period)
	}
}

// ════════════════════════════════════════════════════════════════════
// Charts
// ════════════════════════════════════════════════════════════════════

func TestLineChart_Basic(t *testing.T) {
	svg := LineChart([]LineChartSeries{
		{Name: "Revenues", Values: []float64{1, 2, 3}},
		{Name: "Net <Income>", Values: []float64{0.5, math.NaN(), 1}},
	}, []string{"2022", "2023", "2024"}, ChartConfig{})
	if !strings.HasPrefix(svg, "<svg") || !strings.HasSuffix(svg, "</svg>") {
		t.Fatal("not an SVG document")
	}
	if !strings.Contains(svg, "Net &lt;Income&gt;") {
		t.Error("series name should be escaped")
	}
	if !strings.Contains(svg, ">2023<") {
		t.Error("missing x-axis label")
	}
}

func TestLineChart_Empty(t *testing.T) {
	if svg := LineChart(nil, nil, ChartConfig{}); !strings.Contains(svg, "No data") {
		t.Error("empty chart should say no data")
	}
	allNaN := []LineChartSeries{{Name: "x", Values: []float64{math.NaN()}}}
	if svg := LineChart(allNaN, nil, ChartConfig{}); !strings.Contains(svg, "No data") {
		t.Error("all-NaN chart should say no data")
	}
}

func TestLineChart_SinglePoint(t *testing.T) {
	svg := LineChart([]LineChartSeries{{Name: "x", Values: []float64{5}}}, []string{"2024"}, ChartConfig{})
	if strings.Contains(svg, "NaN") || strings.Contains(svg, "Inf") {
		t.Errorf("single point produced invalid coordinates: %s", svg)
	}
}

func TestTrendChart(t *testing.T) {
	svg := TrendChart(sampleCompany(), "Trend", "revenues", "free_cash_flow", "unknown_key")
	if !strings.Contains(svg, "Revenues") || !strings.Contains(svg, "Free Cash flow") {
		t.Error("trend chart missing series legend")
	}
	if strings.Index(svg, ">2022<") > strings.Index(svg, ">2024<") {
		t.Error("oldest period should be on the left")
	}
}

func TestEscapeXML(t *testing.T) {
	if got := escapeXML(`a & "b" <c>`); got != "a &amp; &quot;b&quot; &lt;c&gt;" {
		t.Errorf("escapeXML: got %q", got)
	}
}

// ════════════════════════════════════════════════════════════════════
// Dashboard / Text
// ════════════════════════════════════════════════════════════════════

func TestGenerateHTML(t *testing.T) {
	html, err := GenerateHTML(sampleCompany(), time.Date(2025, 3, 2, 8, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("GenerateHTML: %v", err)
	}
	for _, want := range []string{
		"Acme &lt;Corp&gt;",
		"Income Statement", "Cash Flow", "Balance Sheet", "Debt", "Ratios",
		"TTM Summary", "$1,200M",
		"<svg",
		"Last full fiscal year 2024",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("dashboard missing %q", want)
		}
	}
	if strings.Contains(html, "Partial data") {
		t.Error("complete company should not be flagged partial")
	}
}

func TestGenerateHTML_Partial(t *testing.T) {
	c := models.NewCompany("ACME", "Acme")
	c.Annual = []*models.FinancialPeriod{annualPeriod("2024", 10, 1, 5)}

	html, err := GenerateHTML(c, time.Now())
	if err != nil {
		t.Fatalf("GenerateHTML: %v", err)
	}
	if !strings.Contains(html, "no TTM period could be derived") {
		t.Error("missing partial-data warning")
	}
	if strings.Contains(html, "TTM Summary") {
		t.Error("TTM summary should be hidden without TTM")
	}
}

func TestGenerateHTML_Nil(t *testing.T) {
	if _, err := GenerateHTML(nil, time.Now()); err == nil {
		t.Error("expected error for nil company")
	}
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteText(&buf, sampleCompany()); err != nil {
		t.Fatalf("WriteText: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"Acme <Corp> (ACME)",
		"Annual periods:    3",
		"Quarterly periods: 4",
		"Last full year:    2024",
		"TTM SUMMARY",
		"Income Statement",
		"Cash Flow",
		"Ratios",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("text report missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Balance Sheet") {
		t.Error("text report only shows income and cash flow tables")
	}
}

func TestWriteText_Nil(t *testing.T) {
	if err := WriteText(&bytes.Buffer{}, nil); err == nil {
		t.Error("expected error for nil company")
	}
}

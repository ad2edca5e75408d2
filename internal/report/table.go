package report

import (
	"io"

	"github.com/guregu/null/v5"
	"github.com/olekukonko/tablewriter"

	"github.com/seenimoa/getvalue/internal/analysis/fundamental"
	"github.com/seenimoa/getvalue/pkg/models"
)

// Table is a formatted grid of field rows over period columns.
type Table struct {
	Title   string
	Columns []string
	Rows    []Row
}

// Row is one labelled table row.
type Row struct {
	Label string
	Cells []string
}

// StatementSection is a titled group of fields shown as one table.
type StatementSection struct {
	Title   string
	Section models.Section
	Fields  []models.Field
}

// StatementSections lists the statement tables in display order.
func StatementSections() []StatementSection {
	return []StatementSection{
		{Title: "Income Statement", Section: models.SectionIncome, Fields: models.FieldsIn(models.SectionIncome)},
		{Title: "Cash Flow", Section: models.SectionCashFlow, Fields: models.FieldsIn(models.SectionCashFlow)},
		{Title: "Balance Sheet", Section: models.SectionBalance, Fields: models.FieldsIn(models.SectionBalance)},
		{Title: "Debt", Section: models.SectionDebt, Fields: models.FieldsIn(models.SectionDebt)},
	}
}

// BuildTable lays fields out over periods. Periods are taken in the given
// order; oldestLeft sorts them chronologically first.
func BuildTable(title string, periods []*models.FinancialPeriod, fields []models.Field, oldestLeft bool) Table {
	if oldestLeft {
		sorted := fundamental.SortPeriods(periods)
		periods = make([]*models.FinancialPeriod, len(sorted))
		for i, p := range sorted {
			periods[len(sorted)-1-i] = p
		}
	}

	t := Table{Title: title, Columns: make([]string, len(periods))}
	for i, p := range periods {
		t.Columns[i] = p.Name
	}
	for _, f := range fields {
		row := Row{Label: f.DisplayLabel(), Cells: make([]string, len(periods))}
		for i, p := range periods {
			row.Cells[i] = FormatField(f, f.Get(p))
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// RatioTable lays a ratio series out with one column per period.
func RatioTable(series []fundamental.PeriodRatios) Table {
	t := Table{Title: "Ratios", Columns: make([]string, len(series))}
	for i, pr := range series {
		t.Columns[i] = pr.Period
	}
	for _, key := range fundamental.RatioKeys {
		row := Row{Label: ratioLabels[key], Cells: make([]string, len(series))}
		for i, pr := range series {
			row.Cells[i] = formatRatio(key, pr.Ratios[key])
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

var ratioLabels = map[string]string{
	fundamental.RatioPE:               "P/E",
	fundamental.RatioPS:               "P/S",
	fundamental.RatioGrossMargin:      "Gross Margin",
	fundamental.RatioOperatingMargin:  "Operating Margin",
	fundamental.RatioNetMargin:        "Net Margin",
	fundamental.RatioROE:              "ROE",
	fundamental.RatioROIC:             "ROIC",
	fundamental.RatioInterestCoverage: "Interest Coverage",
}

func formatRatio(key string, v null.Float) string {
	switch key {
	case fundamental.RatioPE, fundamental.RatioPS, fundamental.RatioInterestCoverage:
		return FormatMultiple(v)
	default:
		return FormatPercent(v)
	}
}

// RenderTable writes t as a terminal table.
func RenderTable(w io.Writer, t Table) {
	tw := tablewriter.NewWriter(w)
	tw.SetHeader(append([]string{t.Title}, t.Columns...))
	tw.SetAutoFormatHeaders(false)
	tw.SetAutoWrapText(false)

	align := make([]int, len(t.Columns)+1)
	align[0] = tablewriter.ALIGN_LEFT
	for i := 1; i < len(align); i++ {
		align[i] = tablewriter.ALIGN_RIGHT
	}
	tw.SetColumnAlignment(align)

	for _, r := range t.Rows {
		tw.Append(append([]string{r.Label}, r.Cells...))
	}
	tw.Render()
}

package datasource

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/guregu/null/v5"

	"github.com/seenimoa/getvalue/internal/analysis/fundamental"
	"github.com/seenimoa/getvalue/pkg/models"
)

// HeaderMarker identifies the header row of a pasted statement block.
const HeaderMarker = "Income statement"

var cellSep = regexp.MustCompile(`\t+`)

// SplitRows splits pasted text into rows of cells. Runs of tabs count as one
// separator.
func SplitRows(text string) [][]string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	rows := make([][]string, 0, len(lines))
	for _, line := range lines {
		rows = append(rows, cellSep.Split(line, -1))
	}
	return rows
}

// ClassifyColumn types a header cell: TTM if it mentions TTM in any case,
// quarterly if it contains "Q", annual otherwise.
func ClassifyColumn(name string) models.PeriodType {
	switch {
	case strings.Contains(strings.ToUpper(name), "TTM"):
		return models.PeriodTTM
	case strings.Contains(name, "Q"):
		return models.PeriodQuarterly
	default:
		return models.PeriodAnnual
	}
}

// ParseNumber parses a spreadsheet cell. Thousands separators are dropped
// and an accounting negative "(1,234)" reads as -1234. Blank, NaN and
// infinite cells are not numbers.
func ParseNumber(cell string) (float64, bool) {
	s := strings.TrimSpace(strings.ReplaceAll(cell, ",", ""))
	neg := false
	if len(s) > 2 && strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		s = strings.TrimSpace(s[1 : len(s)-1])
		neg = true
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	if neg {
		v = -v
	}
	return v, true
}

// ParseText builds a company from a tab-delimited statement block.
//
// The header is the first row whose first cell contains HeaderMarker; its
// other cells name the periods. Each later row whose trimmed first cell is a
// known field label fills that field across the periods, column by column.
// Unknown labels and non-numeric cells are skipped. Without a header row the
// result has no periods. A trailing tab on the header row yields an annual
// period named "" that stays empty.
func ParseText(text, ticker string) *models.CompanyFinancials {
	company := models.NewCompany(ticker, ticker)
	rows := SplitRows(text)

	header := -1
	for i, row := range rows {
		if strings.Contains(row[0], HeaderMarker) {
			header = i
			break
		}
	}
	if header < 0 {
		return company
	}

	var periods []*models.FinancialPeriod
	for _, cell := range rows[header][1:] {
		name := strings.TrimSpace(cell)
		periods = append(periods, models.NewPeriod(ClassifyColumn(name), name))
	}

	for _, row := range rows[header+1:] {
		field, ok := models.FieldByLabel(strings.TrimSpace(row[0]))
		if !ok {
			continue
		}
		for ci := 1; ci < len(row) && ci <= len(periods); ci++ {
			if v, ok := ParseNumber(row[ci]); ok {
				field.Set(periods[ci-1], null.FloatFrom(v))
			}
		}
	}

	for _, p := range periods {
		switch p.Type {
		case models.PeriodTTM:
			company.TTM = p
		case models.PeriodQuarterly:
			company.Quarterly = append(company.Quarterly, p)
		default:
			company.Annual = append(company.Annual, p)
		}
	}

	fundamental.Reconcile(company)
	return company
}

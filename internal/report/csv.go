package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/gocarina/gocsv"

	"github.com/seenimoa/getvalue/internal/analysis/fundamental"
	"github.com/seenimoa/getvalue/pkg/models"
)

// CSVRecord is one field value of one period in long format.
type CSVRecord struct {
	Ticker string `csv:"ticker"`
	Period string `csv:"period"`
	Type   string `csv:"period_type"`
	Field  string `csv:"field"`
	Value  string `csv:"value"`
}

// CSVRecords flattens a company into long-format records: TTM first, then
// quarterly and annual periods newest first. Null values are left out.
func CSVRecords(c *models.CompanyFinancials) []*CSVRecord {
	var periods []*models.FinancialPeriod
	if c.TTM != nil {
		periods = append(periods, c.TTM)
	}
	periods = append(periods, fundamental.SortPeriods(c.Quarterly)...)
	periods = append(periods, fundamental.SortPeriods(c.Annual)...)

	var out []*CSVRecord
	for _, p := range periods {
		for _, f := range models.Fields {
			v := f.Get(p)
			if !v.Valid {
				continue
			}
			out = append(out, &CSVRecord{
				Ticker: c.Ticker,
				Period: p.Name,
				Type:   string(p.Type),
				Field:  f.Key,
				Value:  strconv.FormatFloat(v.Float64, 'f', -1, 64),
			})
		}
	}
	return out
}

// WriteCSV writes the company as long-format CSV with a header row.
func WriteCSV(w io.Writer, c *models.CompanyFinancials) error {
	records := CSVRecords(c)
	b, err := gocsv.MarshalBytes(&records)
	if err != nil {
		return fmt.Errorf("marshal csv: %w", err)
	}
	_, err = w.Write(b)
	return err
}

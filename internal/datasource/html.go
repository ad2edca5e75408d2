package datasource

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/seenimoa/getvalue/pkg/models"
)

// LooksLikeHTML reports whether text carries an HTML table, as spreadsheets
// put on the clipboard.
func LooksLikeHTML(text string) bool {
	return strings.Contains(strings.ToLower(text), "<table")
}

// HTMLToText flattens every table row in an HTML document to one
// tab-delimited line. Empty cells become "-" so columns stay aligned.
func HTMLToText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parse pasted HTML: %w", err)
	}

	var lines []string
	doc.Find("table tr").Each(func(_ int, row *goquery.Selection) {
		var cells []string
		row.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
			text := strings.Join(strings.Fields(cell.Text()), " ")
			if text == "" {
				text = "-"
			}
			cells = append(cells, text)
		})
		if len(cells) > 0 {
			lines = append(lines, strings.Join(cells, "\t"))
		}
	})
	return strings.Join(lines, "\n"), nil
}

// ParseHTML builds a company from an HTML table using the ParseText rules.
func ParseHTML(html, ticker string) (*models.CompanyFinancials, error) {
	text, err := HTMLToText(html)
	if err != nil {
		return nil, err
	}
	return ParseText(text, ticker), nil
}

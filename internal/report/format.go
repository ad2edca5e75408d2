package report

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"
	"github.com/guregu/null/v5"

	"github.com/seenimoa/getvalue/pkg/models"
)

// FormatMillions renders an amount in millions with thousands separators
// and no decimals. Null renders as an empty string.
func FormatMillions(v null.Float) string {
	if !v.Valid {
		return ""
	}
	r := math.Round(v.Float64)
	if math.Abs(r) >= maxComma {
		return humanize.Commaf(r)
	}
	return humanize.Comma(int64(r))
}

// maxComma is the first magnitude that no longer fits an int64.
const maxComma = 1 << 63

// FormatEPS renders a per-share amount with two decimals.
func FormatEPS(v null.Float) string {
	if !v.Valid {
		return ""
	}
	return fmt.Sprintf("%.2f", v.Float64)
}

// FormatPercent renders a fraction as a percentage with one decimal.
func FormatPercent(v null.Float) string {
	if !v.Valid {
		return ""
	}
	return fmt.Sprintf("%.1f%%", v.Float64*100)
}

// FormatMultiple renders a ratio such as P/E with one decimal.
func FormatMultiple(v null.Float) string {
	if !v.Valid {
		return ""
	}
	return fmt.Sprintf("%.1fx", v.Float64)
}

// FormatField renders v according to the field's unit.
func FormatField(f models.Field, v null.Float) string {
	if f.Unit == models.UnitPerShare {
		return FormatEPS(v)
	}
	return FormatMillions(v)
}

// FormatMetric renders a headline amount in millions, e.g. "$1,234M".
func FormatMetric(v null.Float, perShare bool) string {
	switch {
	case !v.Valid:
		return ""
	case perShare:
		return "$" + FormatEPS(v)
	default:
		return "$" + FormatMillions(v) + "M"
	}
}

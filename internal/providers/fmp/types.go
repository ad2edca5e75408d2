package fmp

import (
	"math"
	"strconv"
	"strings"

	"github.com/guregu/null/v5"
	"github.com/tidwall/gjson"
)

// FMP returns raw currency units; the model stores millions.
const unitScale = 1_000_000

// record is one JSON object from an FMP array response. Fields are read
// leniently: a missing, null or non-numeric value becomes a null number.
type record struct {
	gjson.Result
}

// emptyRecord stands in for a statement with no row for a date.
var emptyRecord = record{}

func (r record) str(key string) string {
	return strings.TrimSpace(r.Get(key).String())
}

// number returns the raw numeric value of key.
func (r record) number(key string) null.Float {
	return toFloat(r.Get(key))
}

// millions returns the value of key divided by one million.
func (r record) millions(key string) null.Float {
	v := r.number(key)
	if !v.Valid {
		return v
	}
	return null.FloatFrom(v.Float64 / unitScale)
}

// firstSet returns the first key whose value is a non-zero number. A zero is
// returned only when no key has a non-zero value.
func (r record) firstSet(keys ...string) null.Float {
	var zero null.Float
	for _, k := range keys {
		v := r.number(k)
		if v.Valid && v.Float64 != 0 {
			return v
		}
		if v.Valid && !zero.Valid {
			zero = v
		}
	}
	return zero
}

func (r record) firstSetMillions(keys ...string) null.Float {
	v := r.firstSet(keys...)
	if !v.Valid {
		return v
	}
	return null.FloatFrom(v.Float64 / unitScale)
}

func toFloat(v gjson.Result) null.Float {
	var f float64
	switch v.Type {
	case gjson.Number:
		f = v.Num
	case gjson.String:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v.Str), 64)
		if err != nil {
			return null.Float{}
		}
		f = parsed
	default:
		return null.Float{}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return null.Float{}
	}
	return null.FloatFrom(f)
}

// byDate indexes records on their exact "date" string.
func byDate(rows []record) map[string]record {
	m := make(map[string]record, len(rows))
	for _, r := range rows {
		m[r.str("date")] = r
	}
	return m
}

// statementSet is the raw response set of one company load.
type statementSet struct {
	annualIncome, annualBalance, annualCashFlow          []record
	quarterlyIncome, quarterlyBalance, quarterlyCashFlow []record
}

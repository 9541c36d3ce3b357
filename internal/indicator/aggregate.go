// File: internal/indicator/aggregate.go
package indicator

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"ecowas_fisheries_backend/internal/country"
)

// NotAvailable is shown for values with no numeric data.
const NotAvailable = "N/A"

// Fn is an aggregation applied to one indicator across rows.
type Fn string

const (
	Average     Fn = "average"
	Sum         Fn = "sum"
	PercentTrue Fn = "percent_true"
)

// ParseFn accepts the aggregation names in either snake or camel case.
func ParseFn(s string) (Fn, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "average", "avg", "mean":
		return Average, true
	case "sum", "total":
		return Sum, true
	case "percent_true", "percenttrue", "percent-true":
		return PercentTrue, true
	}
	return "", false
}

// Numeric converts v to a float. JSON numbers, Go numeric types and strings
// holding a number (thousands separators allowed) are numeric; nothing else is.
func Numeric(v interface{}) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint:
		f = float64(n)
	case uint32:
		f = float64(n)
	case uint64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(n), ",", "")
		if s == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Value returns the raw field for indicator, matching the key exactly first
// and case-insensitively second.
func (r *Record) Value(indicator string) (interface{}, bool) {
	if r == nil || r.Fields == nil {
		return nil, false
	}
	if v, ok := r.Fields[indicator]; ok {
		return v, true
	}
	for k, v := range r.Fields {
		if strings.EqualFold(k, indicator) {
			return v, true
		}
	}
	return nil, false
}

// NumericValue returns the indicator as a number, or nil.
func (r *Record) NumericValue(indicator string) *float64 {
	v, ok := r.Value(indicator)
	if !ok {
		return nil
	}
	f, ok := Numeric(v)
	if !ok {
		return nil
	}
	return &f
}

// matchesCountry compares by code and by source name.
func matchesCountry(r *Record, c string) bool {
	return country.Same(r.CountryCode, c) || country.Same(r.Country, c)
}

// FilterByCountryYear returns the record for country and year, or false.
func FilterByCountryYear(records []Record, c string, year int) (*Record, bool) {
	for i := range records {
		if records[i].Year == year && matchesCountry(&records[i], c) {
			rec := records[i]
			return &rec, true
		}
	}
	return nil, false
}

// SeriesForIndicator returns one point per year of the range, ascending.
// Years without a record or without a numeric value are gaps.
func SeriesForIndicator(records []Record, c, indicator string, yr YearRange) []SeriesPoint {
	yr = yr.Normalized()
	byYear := make(map[int]*Record)
	for i := range records {
		if yr.Contains(records[i].Year) && matchesCountry(&records[i], c) {
			byYear[records[i].Year] = &records[i]
		}
	}

	points := make([]SeriesPoint, 0, yr.To-yr.From+1)
	for year := yr.From; year <= yr.To; year++ {
		p := SeriesPoint{Year: year}
		if rec, ok := byYear[year]; ok {
			p.Value = rec.NumericValue(indicator)
		}
		points = append(points, p)
	}
	return points
}

// Aggregate applies fn to indicator over the rows of year.
func Aggregate(records []Record, year int, indicator string, fn Fn) float64 {
	var rows []*Record
	for i := range records {
		if records[i].Year == year {
			rows = append(rows, &records[i])
		}
	}

	switch fn {
	case Average:
		var total float64
		n := 0
		for _, r := range rows {
			if v := r.NumericValue(indicator); v != nil {
				total += *v
				n++
			}
		}
		if n == 0 {
			return 0
		}
		return total / float64(n)
	case Sum:
		var total float64
		for _, r := range rows {
			if v := r.NumericValue(indicator); v != nil {
				total += *v
			}
		}
		return total
	case PercentTrue:
		if len(rows) == 0 {
			return 0
		}
		yes := 0
		for _, r := range rows {
			v, ok := r.Value(indicator)
			if !ok {
				continue
			}
			if s, isString := v.(string); isString && strings.EqualFold(strings.TrimSpace(s), "yes") {
				yes++
			}
		}
		return float64(yes) / float64(len(rows))
	}
	return 0
}

// Select returns the rows of the given countries inside the range, ordered by country and year.
func Select(records []Record, countries []string, yr YearRange) []Record {
	var out []Record
	for i := range records {
		if !yr.Contains(records[i].Year) {
			continue
		}
		for _, c := range countries {
			if matchesCountry(&records[i], c) {
				out = append(out, records[i])
				break
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CountryCode != out[j].CountryCode {
			return out[i].CountryCode < out[j].CountryCode
		}
		return out[i].Year < out[j].Year
	})
	return out
}

// RegionalAverage averages each indicator over rows only. Rows is the
// current selection; callers narrow it with Select first.
func RegionalAverage(rows []Record, indicators []string) SummaryRow {
	summary := SummaryRow{
		Values:  make(map[string]*float64, len(indicators)),
		Display: make(map[string]string, len(indicators)),
		Rows:    len(rows),
	}
	seen := make(map[string]bool)
	for i := range rows {
		seen[rows[i].CountryCode] = true
	}
	summary.Countries = len(seen)

	for _, ind := range indicators {
		var total float64
		n := 0
		for i := range rows {
			if v := rows[i].NumericValue(ind); v != nil {
				total += *v
				n++
			}
		}
		if n == 0 {
			summary.Values[ind] = nil
		} else {
			mean := total / float64(n)
			summary.Values[ind] = &mean
		}
		summary.Display[ind] = FormatValue(summary.Values[ind])
	}
	return summary
}

// FormatValue renders v with at most two decimals, or N/A for nil.
func FormatValue(v *float64) string {
	if v == nil {
		return NotAvailable
	}
	return formatFloat(*v)
}

func formatFloat(f float64) string {
	rounded := math.Round(f*100) / 100
	if rounded == math.Trunc(rounded) {
		return strconv.FormatFloat(rounded, 'f', 0, 64)
	}
	return strconv.FormatFloat(rounded, 'f', -1, 64)
}

// FormatPercent renders a 0..1 fraction as a percentage.
func FormatPercent(fraction float64) string {
	return fmt.Sprintf("%s%%", formatFloat(fraction*100))
}

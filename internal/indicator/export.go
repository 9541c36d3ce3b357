// File: internal/indicator/export.go
package indicator

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
)

// SeriesCSV renders a series as year,value rows. Gaps are written as N/A.
func SeriesCSV(countryName, indicator string, points []SeriesPoint) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"country", "year", indicator}); err != nil {
		return nil, err
	}
	for _, p := range points {
		if err := w.Write([]string{countryName, strconv.Itoa(p.Year), FormatValue(p.Value)}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("write series csv: %w", err)
	}
	return buf.Bytes(), nil
}

// RegionalCSV renders the selected rows followed by their average row.
func RegionalCSV(rows []Record, indicators []string, summary SummaryRow) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := append([]string{"country", "year"}, indicators...)
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for i := range rows {
		line := []string{rows[i].Country, strconv.Itoa(rows[i].Year)}
		for _, ind := range indicators {
			line = append(line, FormatValue(rows[i].NumericValue(ind)))
		}
		if err := w.Write(line); err != nil {
			return nil, err
		}
	}

	avg := []string{"Regional average", ""}
	for _, ind := range indicators {
		avg = append(avg, FormatValue(summary.Values[ind]))
	}
	if err := w.Write(avg); err != nil {
		return nil, err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("write regional csv: %w", err)
	}
	return buf.Bytes(), nil
}

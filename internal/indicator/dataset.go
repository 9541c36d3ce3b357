// File: internal/indicator/dataset.go
package indicator

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"ecowas_fisheries_backend/internal/country"

	"gorm.io/datatypes"
)

// ErrInvalidDataset wraps every rejection of an uploaded dataset.
var ErrInvalidDataset = errors.New("invalid indicator dataset")

//go:embed data/indicators.json
var bundledDataset []byte

// BundledDataset returns the dataset shipped with the binary.
func BundledDataset() []byte {
	return bundledDataset
}

// ParseDataset reads a JSON array of flat rows. Each row names its country
// and year; every other key becomes an indicator field.
func ParseDataset(data []byte) ([]Record, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var rows []map[string]interface{}
	if err := dec.Decode(&rows); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDataset, err)
	}

	records := make([]Record, 0, len(rows))
	seen := make(map[string]int, len(rows))
	for i, row := range rows {
		rec := Record{Fields: datatypes.JSONMap{}}
		for k, v := range row {
			switch strings.ToLower(k) {
			case "country":
				name, _ := v.(string)
				c, ok := country.Lookup(name)
				if !ok {
					return nil, fmt.Errorf("%w: row %d: unknown country %q", ErrInvalidDataset, i, name)
				}
				rec.Country = strings.TrimSpace(name)
				rec.CountryCode = c.Code
			case "year":
				year, ok := Numeric(v)
				if !ok || year != float64(int(year)) {
					return nil, fmt.Errorf("%w: row %d: invalid year %v", ErrInvalidDataset, i, v)
				}
				rec.Year = int(year)
			default:
				if n, isNumber := v.(json.Number); isNumber {
					if f, err := n.Float64(); err == nil {
						v = f
					}
				}
				rec.Fields[k] = v
			}
		}
		if rec.CountryCode == "" || rec.Year == 0 {
			return nil, fmt.Errorf("%w: row %d: country and year are required", ErrInvalidDataset, i)
		}
		key := fmt.Sprintf("%s/%d", rec.CountryCode, rec.Year)
		if prev, dup := seen[key]; dup {
			return nil, fmt.Errorf("%w: row %d duplicates row %d (%s)", ErrInvalidDataset, i, prev, key)
		}
		seen[key] = i
		records = append(records, rec)
	}
	return records, nil
}

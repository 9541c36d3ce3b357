// File: internal/indicator/model.go
package indicator

import (
	"ecowas_fisheries_backend/internal/common"

	"gorm.io/datatypes"
)

// Record is one country's indicator values for one year.
// Fields holds the named indicators exactly as they appear in the source data.
type Record struct {
	common.BaseModel
	Country     string            `gorm:"type:varchar(100);not null" json:"country"`
	CountryCode string            `gorm:"type:varchar(8);not null;uniqueIndex:idx_indicator_country_year" json:"country_code"`
	Year        int               `gorm:"not null;uniqueIndex:idx_indicator_country_year" json:"year"`
	Fields      datatypes.JSONMap `json:"fields"`
}

// TableName specifies the table name for GORM.
func (Record) TableName() string {
	return "indicator_records"
}

// YearRange is an inclusive span of years.
type YearRange struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// Normalized returns the range with From <= To.
func (r YearRange) Normalized() YearRange {
	if r.From > r.To {
		return YearRange{From: r.To, To: r.From}
	}
	return r
}

// Contains reports whether year falls inside the range.
func (r YearRange) Contains(year int) bool {
	n := r.Normalized()
	return year >= n.From && year <= n.To
}

// SeriesPoint is one year of a series. A nil Value is a gap.
type SeriesPoint struct {
	Year  int      `json:"year"`
	Value *float64 `json:"value"`
}

// SummaryRow holds one value per indicator. Nil means no numeric data.
type SummaryRow struct {
	Values    map[string]*float64 `json:"values"`
	Display   map[string]string   `json:"display"`
	Countries int                 `json:"countries"`
	Rows      int                 `json:"rows"`
}

// --- DTOs ---

// SeriesResponse is the series endpoint payload.
type SeriesResponse struct {
	CountryCode string        `json:"country_code"`
	Indicator   string        `json:"indicator"`
	Range       YearRange     `json:"range"`
	Points      []SeriesPoint `json:"points"`
}

// RegionalResponse is the regional summary payload.
type RegionalResponse struct {
	Countries  []string   `json:"countries"`
	Indicators []string   `json:"indicators"`
	Range      YearRange  `json:"range"`
	Average    SummaryRow `json:"average"`
	Rows       []Record   `json:"rows"`
}

// AggregateResponse is the single-aggregate payload.
type AggregateResponse struct {
	Year      int     `json:"year"`
	Indicator string  `json:"indicator"`
	Fn        Fn      `json:"fn"`
	Value     float64 `json:"value"`
	Display   string  `json:"display"`
	Rows      int     `json:"rows"`
}

// SeedResult reports a bulk load.
type SeedResult struct {
	Loaded  int  `json:"loaded"`
	Replace bool `json:"replace"`
}

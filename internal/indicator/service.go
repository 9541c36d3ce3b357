// File: internal/indicator/service.go
package indicator

import (
	"context"
	"errors"
	"strings"

	"ecowas_fisheries_backend/internal/audit"
	"ecowas_fisheries_backend/internal/common"
	"ecowas_fisheries_backend/internal/country"

	"go.uber.org/zap"
)

// Service serves dashboard aggregates from stored indicator records.
// Aggregation itself is done by the pure functions of this package.
type Service interface {
	ForYear(ctx context.Context, countryCode string, year int) (*Record, bool, error)
	Series(ctx context.Context, countryCode, indicator string, yr *YearRange) (*SeriesResponse, error)
	KPIs(ctx context.Context, countryCode string, year int) (int, []KPIValue, error)
	Regional(ctx context.Context, countries, indicators []string, yr YearRange) (*RegionalResponse, error)
	Aggregate(ctx context.Context, countries []string, year int, indicator string, fn Fn) (*AggregateResponse, error)
	Seed(ctx context.Context, actor string, data []byte, replace bool) (*SeedResult, error)
}

type service struct {
	repo   Repository
	audit  audit.Service
	logger *zap.Logger
}

// NewService creates a new indicator service.
func NewService(repo Repository, auditService audit.Service, logger *zap.Logger) Service {
	return &service{repo: repo, audit: auditService, logger: logger.Named("IndicatorService")}
}

func latestYear(records []Record) int {
	year := 0
	for i := range records {
		if records[i].Year > year {
			year = records[i].Year
		}
	}
	return year
}

func yearSpan(records []Record) (YearRange, bool) {
	if len(records) == 0 {
		return YearRange{}, false
	}
	span := YearRange{From: records[0].Year, To: records[0].Year}
	for i := range records {
		if records[i].Year < span.From {
			span.From = records[i].Year
		}
		if records[i].Year > span.To {
			span.To = records[i].Year
		}
	}
	return span, true
}

// ForYear returns the country's record for year. A missing pair is not an error.
func (s *service) ForYear(ctx context.Context, countryCode string, year int) (*Record, bool, error) {
	records, err := s.repo.ListByCountry(ctx, countryCode)
	if err != nil {
		return nil, false, err
	}
	if year == 0 {
		year = latestYear(records)
	}
	rec, ok := FilterByCountryYear(records, countryCode, year)
	return rec, ok, nil
}

// Series builds the series over yr, or over the years on record when yr is nil.
func (s *service) Series(ctx context.Context, countryCode, indicator string, yr *YearRange) (*SeriesResponse, error) {
	records, err := s.repo.ListByCountry(ctx, countryCode)
	if err != nil {
		return nil, err
	}
	resp := &SeriesResponse{CountryCode: countryCode, Indicator: indicator, Points: []SeriesPoint{}}
	span := YearRange{}
	if yr != nil {
		span = yr.Normalized()
	} else if found, ok := yearSpan(records); ok {
		span = found
	} else {
		return resp, nil
	}
	resp.Range = span
	resp.Points = SeriesForIndicator(records, countryCode, indicator, span)
	return resp, nil
}

// KPIs computes the card catalog for one country. Year 0 means the latest on record.
func (s *service) KPIs(ctx context.Context, countryCode string, year int) (int, []KPIValue, error) {
	records, err := s.repo.ListByCountry(ctx, countryCode)
	if err != nil {
		return 0, nil, err
	}
	if year == 0 {
		year = latestYear(records)
	}
	return year, ComputeKPIs(records, year), nil
}

func defaultIndicators(indicators []string) []string {
	if len(indicators) > 0 {
		return indicators
	}
	out := make([]string, 0, len(KPIs))
	for _, k := range KPIs {
		out = append(out, k.Indicator)
	}
	return out
}

func defaultCountries(countries []string) []string {
	if len(countries) > 0 {
		return countries
	}
	return country.Codes()
}

// Regional averages indicators over the selected countries and years only.
func (s *service) Regional(ctx context.Context, countries, indicators []string, yr YearRange) (*RegionalResponse, error) {
	countries = defaultCountries(countries)
	indicators = defaultIndicators(indicators)
	yr = yr.Normalized()

	records, err := s.repo.List(ctx, countries, &yr)
	if err != nil {
		return nil, err
	}
	rows := Select(records, countries, yr)
	if rows == nil {
		rows = []Record{}
	}
	return &RegionalResponse{
		Countries:  countries,
		Indicators: indicators,
		Range:      yr,
		Average:    RegionalAverage(rows, indicators),
		Rows:       rows,
	}, nil
}

func (s *service) Aggregate(ctx context.Context, countries []string, year int, indicator string, fn Fn) (*AggregateResponse, error) {
	countries = defaultCountries(countries)
	records, err := s.repo.List(ctx, countries, &YearRange{From: year, To: year})
	if err != nil {
		return nil, err
	}
	value := Aggregate(records, year, indicator, fn)
	display := formatFloat(value)
	if fn == PercentTrue {
		display = FormatPercent(value)
	}
	return &AggregateResponse{
		Year:      year,
		Indicator: indicator,
		Fn:        fn,
		Value:     value,
		Display:   display,
		Rows:      len(records),
	}, nil
}

// Seed bulk-loads a dataset. With replace, the dataset swaps out every existing record.
func (s *service) Seed(ctx context.Context, actor string, data []byte, replace bool) (*SeedResult, error) {
	records, err := ParseDataset(data)
	if err != nil {
		if errors.Is(err, ErrInvalidDataset) {
			return nil, common.ErrBadRequest.WithDetails(err.Error())
		}
		return nil, err
	}
	if replace {
		removed, err := s.repo.Replace(ctx, records)
		if err != nil {
			return nil, err
		}
		s.logger.Info("Replaced indicator records", zap.Int64("removed", removed))
	} else if err := s.repo.Upsert(ctx, records); err != nil {
		return nil, err
	}

	if strings.TrimSpace(actor) == "" {
		actor = "system"
	}
	if _, err := s.audit.Record(ctx, actor, audit.ActionIndicatorsSeeded, "indicator dataset", nil); err != nil {
		s.logger.Warn("Failed to audit indicator seed", zap.Error(err))
	}
	s.logger.Info("Indicator dataset loaded", zap.Int("records", len(records)), zap.Bool("replace", replace))
	return &SeedResult{Loaded: len(records), Replace: replace}, nil
}

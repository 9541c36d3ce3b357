// File: internal/indicator/aggregate_test.go
package indicator

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func row(countryName, code string, year int, fields map[string]interface{}) Record {
	return Record{Country: countryName, CountryCode: code, Year: year, Fields: datatypes.JSONMap(fields)}
}

func ptr(f float64) *float64 { return &f }

func TestNumeric(t *testing.T) {
	cases := []struct {
		in   interface{}
		want float64
		ok   bool
	}{
		{float64(12.5), 12.5, true},
		{42, 42, true},
		{int64(7), 7, true},
		{json.Number("3.25"), 3.25, true},
		{" 1,250 ", 1250, true},
		{"-4", -4, true},
		{"n/a", 0, false},
		{"", 0, false},
		{true, 0, false},
		{nil, 0, false},
		{"NaN", 0, false},
	}
	for _, tc := range cases {
		got, ok := Numeric(tc.in)
		assert.Equal(t, tc.ok, ok, "%v", tc.in)
		if tc.ok {
			assert.InDelta(t, tc.want, got, 1e-9, "%v", tc.in)
		}
	}
}

func TestFilterByCountryYear(t *testing.T) {
	records := []Record{
		row("Ghana", "gh", 2020, map[string]interface{}{"Catch": 100}),
		row("Nigeria", "ng", 2020, map[string]interface{}{"Catch": 300}),
	}

	rec, ok := FilterByCountryYear(records, "Ghana", 2020)
	require.True(t, ok)
	assert.Equal(t, "gh", rec.CountryCode)

	rec, ok = FilterByCountryYear(records, "gh", 2020)
	require.True(t, ok)
	assert.Equal(t, 2020, rec.Year)

	rec, ok = FilterByCountryYear(records, "Ghana", 1999)
	assert.False(t, ok)
	assert.Nil(t, rec)

	_, ok = FilterByCountryYear(nil, "Ghana", 2020)
	assert.False(t, ok)
}

func TestSeriesForIndicator_GapsAreNil(t *testing.T) {
	records := []Record{
		row("Ghana", "gh", 2020, map[string]interface{}{"Catch": 100}),
		row("Ghana", "gh", 2021, map[string]interface{}{"Catch": 120}),
	}

	series := SeriesForIndicator(records, "Ghana", "Catch", YearRange{From: 2019, To: 2021})
	assert.Equal(t, []SeriesPoint{
		{Year: 2019, Value: nil},
		{Year: 2020, Value: ptr(100)},
		{Year: 2021, Value: ptr(120)},
	}, series)

	again := SeriesForIndicator(records, "Ghana", "Catch", YearRange{From: 2019, To: 2021})
	assert.Equal(t, series, again)
}

func TestSeriesForIndicator_NonNumericAndInvertedRange(t *testing.T) {
	records := []Record{
		row("Ghana", "gh", 2020, map[string]interface{}{"Catch": "unknown"}),
		row("Ghana", "gh", 2021, map[string]interface{}{"Catch": "1,500"}),
		row("Togo", "tg", 2021, map[string]interface{}{"Catch": 9}),
	}

	series := SeriesForIndicator(records, "gh", "catch", YearRange{From: 2021, To: 2020})
	require.Len(t, series, 2)
	assert.Equal(t, 2020, series[0].Year)
	assert.Nil(t, series[0].Value)
	require.NotNil(t, series[1].Value)
	assert.Equal(t, 1500.0, *series[1].Value)
}

func TestAggregate_AverageExcludesNonNumeric(t *testing.T) {
	records := []Record{
		row("Ghana", "gh", 2020, map[string]interface{}{"income": 100}),
		row("Togo", "tg", 2020, map[string]interface{}{"income": "n/a"}),
		row("Benin", "bj", 2020, map[string]interface{}{"income": 200}),
		row("Mali", "ml", 2020, map[string]interface{}{}),
		row("Benin", "bj", 2019, map[string]interface{}{"income": 1000}),
	}

	assert.Equal(t, 150.0, Aggregate(records, 2020, "income", Average))
	assert.Equal(t, 300.0, Aggregate(records, 2020, "income", Sum))
	assert.Equal(t, 0.0, Aggregate(records, 2021, "income", Average))
	assert.Equal(t, 0.0, Aggregate(records, 2021, "income", Sum))
}

func TestAggregate_PercentTrue(t *testing.T) {
	records := []Record{
		row("Ghana", "gh", 2020, map[string]interface{}{"plan": "Yes"}),
		row("Togo", "tg", 2020, map[string]interface{}{"plan": "no"}),
		row("Benin", "bj", 2020, map[string]interface{}{"plan": " YES "}),
		row("Mali", "ml", 2020, map[string]interface{}{"plan": true}),
	}

	assert.Equal(t, 0.5, Aggregate(records, 2020, "plan", PercentTrue))
	assert.Equal(t, 0.0, Aggregate(nil, 2020, "plan", PercentTrue))
	assert.Equal(t, 0.0, Aggregate(records, 1990, "plan", PercentTrue))
	assert.Equal(t, 0.0, Aggregate(records, 2020, "plan", Fn("median")))
}

func TestRegionalAverage_ScopedToSelection(t *testing.T) {
	universe := []Record{
		row("Ghana", "gh", 2020, map[string]interface{}{"catch": 100, "exports": "n/a"}),
		row("Togo", "tg", 2020, map[string]interface{}{"catch": 50}),
		row("Nigeria", "ng", 2020, map[string]interface{}{"catch": 900, "exports": 10}),
	}

	selection := Select(universe, []string{"gh", "Togo"}, YearRange{From: 2020, To: 2020})
	require.Len(t, selection, 2)

	summary := RegionalAverage(selection, []string{"catch", "exports"})
	require.NotNil(t, summary.Values["catch"])
	assert.Equal(t, 75.0, *summary.Values["catch"])
	assert.Nil(t, summary.Values["exports"])
	assert.Equal(t, NotAvailable, summary.Display["exports"])
	assert.Equal(t, 2, summary.Countries)

	empty := RegionalAverage(nil, []string{"catch"})
	assert.Nil(t, empty.Values["catch"])
}

func TestSelect_FiltersRangeAndOrders(t *testing.T) {
	records := []Record{
		row("Togo", "tg", 2021, nil),
		row("Ghana", "gh", 2021, nil),
		row("Ghana", "gh", 2019, nil),
		row("Ghana", "gh", 2015, nil),
	}
	selected := Select(records, []string{"tg", "gh"}, YearRange{From: 2022, To: 2019})
	require.Len(t, selected, 3)
	assert.Equal(t, "gh", selected[0].CountryCode)
	assert.Equal(t, 2019, selected[0].Year)
	assert.Equal(t, "tg", selected[2].CountryCode)

	assert.Empty(t, Select(records, nil, YearRange{From: 2019, To: 2021}))
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "N/A", FormatValue(nil))
	assert.Equal(t, "120", FormatValue(ptr(120)))
	assert.Equal(t, "3.14", FormatValue(ptr(3.14159)))
	assert.Equal(t, "50%", FormatPercent(0.5))
}

func TestParseFn(t *testing.T) {
	fn, ok := ParseFn("percentTrue")
	assert.True(t, ok)
	assert.Equal(t, PercentTrue, fn)
	fn, ok = ParseFn("AVG")
	assert.True(t, ok)
	assert.Equal(t, Average, fn)
	_, ok = ParseFn("median")
	assert.False(t, ok)
}

func TestComputeKPIs_UsesCatalogAggregation(t *testing.T) {
	records := []Record{
		row("Ghana", "gh", 2021, map[string]interface{}{
			"total_catch_tonnes":        "1,000",
			"avg_fisher_income_usd":     "n/a",
			"vessel_licensing_enforced": "Yes",
		}),
	}
	values := ComputeKPIs(records, 2021)
	require.Len(t, values, len(KPIs))

	byKey := make(map[string]KPIValue, len(values))
	for _, v := range values {
		byKey[v.Key] = v
	}
	assert.Equal(t, 1000.0, byKey["total_catch"].Value)
	assert.Equal(t, 0.0, byKey["fisher_income"].Value)
	assert.Equal(t, 1.0, byKey["licensing"].Value)
	assert.Equal(t, "100%", byKey["licensing"].Display)
}

func TestParseDataset(t *testing.T) {
	records, err := ParseDataset([]byte(`[
		{"Country":"Ghana","Year":2020,"Catch":100},
		{"country":"Côte d'Ivoire","year":2020,"Catch":"n/a","plan":"yes"}
	]`))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "gh", records[0].CountryCode)
	assert.Equal(t, 100.0, records[0].Fields["Catch"])
	assert.Equal(t, "ci", records[1].CountryCode)
	assert.Equal(t, "n/a", records[1].Fields["Catch"])

	_, err = ParseDataset([]byte(`[{"Country":"France","Year":2020}]`))
	assert.ErrorIs(t, err, ErrInvalidDataset)
	_, err = ParseDataset([]byte(`[{"Country":"Ghana","Year":2020},{"Country":"gh","Year":2020}]`))
	assert.ErrorIs(t, err, ErrInvalidDataset)
	_, err = ParseDataset([]byte(`{"Country":"Ghana"}`))
	assert.ErrorIs(t, err, ErrInvalidDataset)
}

func TestBundledDatasetParses(t *testing.T) {
	records, err := ParseDataset(BundledDataset())
	require.NoError(t, err)
	assert.Len(t, records, 75)
}

func TestSeriesCSV(t *testing.T) {
	body, err := SeriesCSV("Ghana", "Catch", []SeriesPoint{{Year: 2019}, {Year: 2020, Value: ptr(100)}})
	require.NoError(t, err)
	assert.Equal(t, "country,year,Catch\nGhana,2019,N/A\nGhana,2020,100\n", string(body))
}

func TestRegionalCSV(t *testing.T) {
	rows := []Record{
		row("Ghana", "gh", 2020, map[string]interface{}{"catch": 100}),
		row("Togo", "tg", 2020, map[string]interface{}{"catch": 50}),
	}
	summary := RegionalAverage(rows, []string{"catch"})
	body, err := RegionalCSV(rows, []string{"catch"}, summary)
	require.NoError(t, err)
	assert.Equal(t, "country,year,catch\nGhana,2020,100\nTogo,2020,50\nRegional average,,75\n", string(body))
}

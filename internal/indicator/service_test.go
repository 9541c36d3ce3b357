// File: internal/indicator/service_test.go
package indicator

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"ecowas_fisheries_backend/internal/audit"
	"ecowas_fisheries_backend/internal/common"
	"ecowas_fisheries_backend/internal/platform/database/dbtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type indicatorTestSuite struct {
	service Service
	repo    Repository
	audit   audit.Service
}

func setupIndicatorTestSuite(t *testing.T) *indicatorTestSuite {
	db := dbtest.New(t, &Record{}, &audit.Entry{})
	ts := &indicatorTestSuite{
		repo:  NewGORMRepository(db),
		audit: audit.NewService(audit.NewGORMRepository(db), zap.NewNop()),
	}
	ts.service = NewService(ts.repo, ts.audit, zap.NewNop())
	return ts
}

const ghanaDataset = `[
	{"Country":"Ghana","Year":2020,"Catch":100,"income":"2,000","plan":"yes"},
	{"Country":"Ghana","Year":2021,"Catch":120,"income":"n/a","plan":"no"},
	{"Country":"Togo","Year":2021,"Catch":40,"income":1000,"plan":"Yes"}
]`

func TestSeed_UpsertsAndAudits(t *testing.T) {
	ts := setupIndicatorTestSuite(t)
	ctx := context.Background()

	result, err := ts.service.Seed(ctx, "admin@ecowas.int", []byte(ghanaDataset), false)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Loaded)

	_, err = ts.service.Seed(ctx, "admin@ecowas.int", []byte(`[{"Country":"Ghana","Year":2021,"Catch":125}]`), false)
	require.NoError(t, err)

	records, err := ts.repo.ListByCountry(ctx, "gh")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, 125.0, *records[1].NumericValue("Catch"))

	entries, _, err := ts.audit.List(ctx, audit.ListFilter{Action: audit.ActionIndicatorsSeeded}, 1, 10)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestSeed_ReplaceAndInvalidDataset(t *testing.T) {
	ts := setupIndicatorTestSuite(t)
	ctx := context.Background()
	_, err := ts.service.Seed(ctx, "", []byte(ghanaDataset), false)
	require.NoError(t, err)

	_, err = ts.service.Seed(ctx, "", []byte(`[{"Country":"Senegal","Year":2022,"Catch":5}]`), true)
	require.NoError(t, err)
	all, err := ts.repo.List(ctx, nil, nil)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "sn", all[0].CountryCode)

	_, err = ts.service.Seed(ctx, "", []byte(`[{"Country":"Atlantis","Year":2022}]`), true)
	require.Error(t, err)
	apiErr, ok := common.IsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)

	all, err = ts.repo.List(ctx, nil, nil)
	require.NoError(t, err)
	assert.Len(t, all, 1, "a rejected dataset must not clear existing rows")
}

func TestSeed_ReplaceKeepsRowsWhenLoadFails(t *testing.T) {
	db := dbtest.New(t, &Record{}, &audit.Entry{})
	repo := NewGORMRepository(db)
	svc := NewService(repo, audit.NewService(audit.NewGORMRepository(db), zap.NewNop()), zap.NewNop())
	ctx := context.Background()
	_, err := svc.Seed(ctx, "", []byte(ghanaDataset), false)
	require.NoError(t, err)

	failWrites := func(tx *gorm.DB) {
		if tx.Statement.Table == "indicator_records" {
			tx.AddError(errors.New("db write failed"))
		}
	}
	require.NoError(t, db.Callback().Create().Before("gorm:create").Register("test:fail_indicator_writes", failWrites))

	_, err = svc.Seed(ctx, "", []byte(`[{"Country":"Senegal","Year":2022,"Catch":5}]`), true)
	require.Error(t, err)

	all, err := repo.List(ctx, nil, nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestSeed_BundledDataset(t *testing.T) {
	ts := setupIndicatorTestSuite(t)
	result, err := ts.service.Seed(context.Background(), "", BundledDataset(), true)
	require.NoError(t, err)
	assert.Equal(t, 75, result.Loaded)

	year, kpis, err := ts.service.KPIs(context.Background(), "gh", 0)
	require.NoError(t, err)
	assert.Equal(t, 2022, year)
	assert.Len(t, kpis, len(KPIs))
}

func TestService_GhanaSeriesScenario(t *testing.T) {
	ts := setupIndicatorTestSuite(t)
	ctx := context.Background()
	_, err := ts.service.Seed(ctx, "", []byte(ghanaDataset), false)
	require.NoError(t, err)

	resp, err := ts.service.Series(ctx, "gh", "Catch", &YearRange{From: 2019, To: 2021})
	require.NoError(t, err)
	require.Len(t, resp.Points, 3)
	assert.Nil(t, resp.Points[0].Value)
	assert.Equal(t, 100.0, *resp.Points[1].Value)
	assert.Equal(t, 120.0, *resp.Points[2].Value)

	resp, err = ts.service.Series(ctx, "gh", "Catch", nil)
	require.NoError(t, err)
	assert.Equal(t, YearRange{From: 2020, To: 2021}, resp.Range)
	assert.Len(t, resp.Points, 2)

	resp, err = ts.service.Series(ctx, "sn", "Catch", nil)
	require.NoError(t, err)
	assert.Empty(t, resp.Points)
}

func TestService_ForYear(t *testing.T) {
	ts := setupIndicatorTestSuite(t)
	ctx := context.Background()
	_, err := ts.service.Seed(ctx, "", []byte(ghanaDataset), false)
	require.NoError(t, err)

	rec, found, err := ts.service.ForYear(ctx, "gh", 2020)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 2020, rec.Year)

	_, found, err = ts.service.ForYear(ctx, "gh", 2005)
	require.NoError(t, err)
	assert.False(t, found)

	rec, found, err = ts.service.ForYear(ctx, "gh", 0)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 2021, rec.Year)
}

func TestService_RegionalAndAggregate(t *testing.T) {
	ts := setupIndicatorTestSuite(t)
	ctx := context.Background()
	_, err := ts.service.Seed(ctx, "", []byte(ghanaDataset), false)
	require.NoError(t, err)

	regional, err := ts.service.Regional(ctx, []string{"gh", "tg"}, []string{"Catch", "income"}, YearRange{From: 2021, To: 2021})
	require.NoError(t, err)
	assert.Len(t, regional.Rows, 2)
	assert.Equal(t, 80.0, *regional.Average.Values["Catch"])
	assert.Equal(t, 1000.0, *regional.Average.Values["income"])

	ghanaOnly, err := ts.service.Regional(ctx, []string{"gh"}, []string{"Catch"}, YearRange{From: 2020, To: 2021})
	require.NoError(t, err)
	assert.Equal(t, 110.0, *ghanaOnly.Average.Values["Catch"])

	agg, err := ts.service.Aggregate(ctx, nil, 2021, "plan", PercentTrue)
	require.NoError(t, err)
	assert.Equal(t, 0.5, agg.Value)
	assert.Equal(t, "50%", agg.Display)
	assert.Equal(t, 2, agg.Rows)

	agg, err = ts.service.Aggregate(ctx, []string{"gh"}, 2021, "income", Average)
	require.NoError(t, err)
	assert.Equal(t, 0.0, agg.Value)
}

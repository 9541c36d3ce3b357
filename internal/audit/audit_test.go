// File: internal/audit/audit_test.go
package audit

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ecowas_fisheries_backend/internal/common"
	"ecowas_fisheries_backend/internal/platform/database/dbtest"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRecordAndList_NewestFirst(t *testing.T) {
	db := dbtest.New(t, &Entry{})
	svc := NewService(NewGORMRepository(db), zap.NewNop()).(*service)
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	tick := 0
	svc.now = func() time.Time { tick++; return base.Add(time.Duration(tick) * time.Minute) }

	ctx := context.Background()
	id := uuid.New()
	_, err := svc.Record(ctx, "admin@ecowas.int", ActionUploadApproved, "Ghana Q1 landings", &id)
	require.NoError(t, err)
	_, err = svc.Record(ctx, "admin@ecowas.int", ActionUploadRejected, "Togo survey", nil)
	require.NoError(t, err)
	_, err = svc.Record(ctx, "other@ecowas.int", ActionNotificationSent, "Season opening", nil)
	require.NoError(t, err)

	entries, pagination, err := svc.List(ctx, ListFilter{Actor: "admin@ecowas.int"}, 1, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, int64(2), pagination.TotalItems)
	assert.Equal(t, "Togo survey", entries[0].TargetTitle)
	require.NotNil(t, entries[1].TargetID)
	assert.Equal(t, id, *entries[1].TargetID)

	approved, _, err := svc.List(ctx, ListFilter{Action: ActionUploadApproved}, 1, 10)
	require.NoError(t, err)
	assert.Len(t, approved, 1)
}

func TestAuditHandler_List(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := dbtest.New(t, &Entry{})
	svc := NewService(NewGORMRepository(db), zap.NewNop())
	_, err := svc.Record(context.Background(), "admin@ecowas.int", ActionReportPublished, "Regional bulletin", nil)
	require.NoError(t, err)

	r := gin.New()
	NewHandler(svc, zap.NewNop()).RegisterAdminRoutes(r.Group("/api/v1/admin"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/admin/audit?page=1&page_size=5", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body common.PaginatedResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, int64(1), body.Pagination.TotalItems)
	assert.Equal(t, 5, body.Pagination.PageSize)
}

// File: internal/jobs/pending_review_test.go
package jobs

import (
	"context"
	"errors"
	"net/mail"
	"testing"
	"time"

	"ecowas_fisheries_backend/internal/common"
	"ecowas_fisheries_backend/internal/config"
	"ecowas_fisheries_backend/internal/email"
	"ecowas_fisheries_backend/internal/upload"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockPendingSource struct {
	mock.Mock
}

func (m *MockPendingSource) PendingOlderThan(ctx context.Context, age time.Duration) ([]upload.Record, error) {
	args := m.Called(ctx, age)
	if r := args.Get(0); r != nil {
		return r.([]upload.Record), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockAdminDirectory struct {
	mock.Mock
}

func (m *MockAdminDirectory) AdminEmails(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if r := args.Get(0); r != nil {
		return r.([]string), args.Error(1)
	}
	return nil, args.Error(1)
}

func setupPendingJob(schedule string) (*PendingReviewJob, *MockPendingSource, *MockAdminDirectory, *email.ConsoleSender) {
	source := new(MockPendingSource)
	admins := new(MockAdminDirectory)
	mailer := email.NewConsoleSender(mail.Address{Address: "noreply@ecowas.int"}, zap.NewNop())
	cfg := &config.Config{
		PendingReviewJobSchedule: schedule,
		PendingReviewAge:         48 * time.Hour,
		EmailFallbackAddress:     "desk@ecowas.int",
	}
	return NewPendingReviewJob(source, admins, mailer, cfg, zap.NewNop()), source, admins, mailer
}

func pendingRecord(title, code, uploader string, created time.Time) upload.Record {
	return upload.Record{
		BaseModel:     common.BaseModel{CreatedAt: created},
		Title:         title,
		Country:       code,
		UploaderEmail: uploader,
		Status:        upload.StatusPending,
	}
}

func TestRunOnce_SendsOneDigestToAdmins(t *testing.T) {
	job, source, admins, mailer := setupPendingJob("@daily")
	now := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
	job.now = func() time.Time { return now }

	source.On("PendingOlderThan", mock.Anything, 48*time.Hour).Return([]upload.Record{
		pendingRecord("Q1 catch", "gh", "ama@example.gh", now.Add(-72*time.Hour)),
		pendingRecord("Legacy", "sn", "", now.Add(-30*time.Hour)),
	}, nil)
	admins.On("AdminEmails", mock.Anything).Return([]string{"b@ecowas.int", "a@ecowas.int"}, nil)

	n, err := job.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	sent := mailer.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, []string{"a@ecowas.int", "b@ecowas.int"}, sent[0].To)
	assert.Contains(t, sent[0].Text, "Q1 catch (Ghana) from ama@example.gh, waiting 3 days")
	assert.Contains(t, sent[0].Text, "Legacy (Senegal) from unknown uploader, waiting 1 day")
}

func TestRunOnce_NothingPending(t *testing.T) {
	job, source, admins, mailer := setupPendingJob("@daily")
	source.On("PendingOlderThan", mock.Anything, 48*time.Hour).Return([]upload.Record{}, nil)

	n, err := job.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, mailer.Sent())
	admins.AssertNotCalled(t, "AdminEmails", mock.Anything)
}

func TestRunOnce_FallbackWithoutAdmins(t *testing.T) {
	job, source, admins, mailer := setupPendingJob("@daily")
	source.On("PendingOlderThan", mock.Anything, 48*time.Hour).Return([]upload.Record{
		pendingRecord("Q1 catch", "gh", "ama@example.gh", time.Now().Add(-50*time.Hour)),
	}, nil)
	admins.On("AdminEmails", mock.Anything).Return(nil, errors.New("db down"))

	_, err := job.RunOnce(context.Background())
	require.NoError(t, err)
	require.Len(t, mailer.Sent(), 1)
	assert.Equal(t, []string{"desk@ecowas.int"}, mailer.Sent()[0].To)
}

func TestRunOnce_SourceError(t *testing.T) {
	job, source, _, _ := setupPendingJob("@daily")
	source.On("PendingOlderThan", mock.Anything, 48*time.Hour).Return(nil, errors.New("db down"))

	_, err := job.RunOnce(context.Background())
	assert.Error(t, err)
}

func TestSetupAndStart(t *testing.T) {
	job, _, _, _ := setupPendingJob("")
	assert.NoError(t, job.SetupAndStart())

	job, _, _, _ = setupPendingJob("not a schedule")
	assert.Error(t, job.SetupAndStart())

	job, _, _, _ = setupPendingJob("@hourly")
	require.NoError(t, job.SetupAndStart())
	job.Stop()
}

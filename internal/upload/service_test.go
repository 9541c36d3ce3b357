// File: internal/upload/service_test.go
package upload

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/mail"
	"strings"
	"sync"
	"testing"
	"time"

	"ecowas_fisheries_backend/internal/audit"
	"ecowas_fisheries_backend/internal/common"
	"ecowas_fisheries_backend/internal/email"
	"ecowas_fisheries_backend/internal/filestorage"
	"ecowas_fisheries_backend/internal/notification"
	"ecowas_fisheries_backend/internal/platform/database/dbtest"
	"ecowas_fisheries_backend/internal/push"
	"ecowas_fisheries_backend/internal/shared"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const fallbackAddress = "fisheries-desk@ecowas.int"

// MockDirectory is a mock type for shared.ProfileDirectory
type MockDirectory struct {
	mock.Mock
}

func (m *MockDirectory) Recipients(ctx context.Context, audience shared.Audience) ([]shared.Recipient, error) {
	args := m.Called(ctx, audience)
	if r := args.Get(0); r != nil {
		return r.([]shared.Recipient), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockDirectory) ContactByEmail(ctx context.Context, email string) (*shared.Contact, error) {
	args := m.Called(ctx, email)
	if c := args.Get(0); c != nil {
		return c.(*shared.Contact), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockDirectory) AdminEmails(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if e := args.Get(0); e != nil {
		return e.([]string), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockBroadcaster is a mock type for Broadcaster
type MockBroadcaster struct {
	mock.Mock
}

func (m *MockBroadcaster) Broadcast(ctx context.Context, actor string, req notification.BroadcastRequest) (*notification.BroadcastResult, error) {
	args := m.Called(ctx, actor, req)
	if r := args.Get(0); r != nil {
		return r.(*notification.BroadcastResult), args.Error(1)
	}
	return nil, args.Error(1)
}

type recordingPusher struct {
	mu   sync.Mutex
	sent []push.Message
	err  error
}

func (p *recordingPusher) Send(_ context.Context, msg push.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, msg)
	return p.err
}

type failingMailer struct{}

func (failingMailer) Send(context.Context, email.Message) error {
	return errors.New("smtp relay unavailable")
}

type uploadTestSuite struct {
	service     *service
	repo        Repository
	store       *filestorage.LocalStore
	directory   *MockDirectory
	broadcaster *MockBroadcaster
	pusher      *recordingPusher
	mailer      *email.ConsoleSender
	audit       audit.Service
}

func setupUploadTestSuite(t *testing.T) *uploadTestSuite {
	db := dbtest.New(t, &Record{}, &DownloadLogEntry{}, &audit.Entry{})
	store, err := filestorage.NewLocalStore(t.TempDir(), "http://localhost:8080/files", zap.NewNop())
	require.NoError(t, err)

	ts := &uploadTestSuite{
		repo:        NewGORMRepository(db),
		store:       store,
		directory:   new(MockDirectory),
		broadcaster: new(MockBroadcaster),
		pusher:      &recordingPusher{},
		mailer:      email.NewConsoleSender(mail.Address{Address: "noreply@ecowas.int"}, zap.NewNop()),
		audit:       audit.NewService(audit.NewGORMRepository(db), zap.NewNop()),
	}
	ts.service = NewService(ts.repo, ts.store, ts.directory, ts.pusher, ts.mailer, ts.audit,
		ts.broadcaster, nil, Options{FallbackEmail: fallbackAddress, MaxUploadBytes: 1 << 20}, zap.NewNop()).(*service)
	return ts
}

func multipartFile(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["file"][0]
}

func clientSession(email, code string) *shared.Session {
	return &shared.Session{UID: "uid-" + code, Email: email, Role: shared.RoleClient, CountryCode: code}
}

func (ts *uploadTestSuite) seed(t *testing.T, title, countryCode, uploader string, status Status) *Record {
	t.Helper()
	rec := &Record{
		Title:         title,
		Country:       countryCode,
		UploaderEmail: uploader,
		FileURL:       "http://localhost:8080/files/uploads/" + strings.ToLower(countryCode) + "/" + title + ".pdf",
		Status:        status,
		Period:        "2024-03",
	}
	require.NoError(t, ts.repo.Create(context.Background(), rec))
	return rec
}

func apiStatus(t *testing.T, err error) int {
	t.Helper()
	apiErr, ok := common.IsAPIError(err)
	require.True(t, ok, "expected an APIError, got %v", err)
	return apiErr.StatusCode
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(StatusPending, StatusApproved))
	assert.True(t, CanTransition(StatusPending, StatusRejected))
	assert.False(t, CanTransition(StatusApproved, StatusRejected))
	assert.False(t, CanTransition(StatusRejected, StatusApproved))
	assert.False(t, CanTransition(StatusApproved, StatusApproved))
	assert.False(t, CanTransition(StatusPending, StatusPending))
}

func TestCreate_StoresFileAndPendingRecord(t *testing.T) {
	ts := setupUploadTestSuite(t)
	session := clientSession("ama@example.com", "gh")

	rec, err := ts.service.Create(context.Background(), session,
		CreateRequest{Title: "March landings", Period: "2024-03"},
		multipartFile(t, "landings.pdf", []byte("%PDF-1.4")))
	require.NoError(t, err)

	assert.Equal(t, StatusPending, rec.Status)
	assert.Equal(t, "gh", rec.Country)
	assert.Equal(t, "ama@example.com", rec.UploaderEmail)
	assert.Equal(t, "application/pdf", rec.ContentType)
	assert.True(t, strings.HasPrefix(rec.ObjectKey, "uploads/gh/march-landings-"))
	assert.Equal(t, "http://localhost:8080/files/"+rec.ObjectKey, rec.FileURL)

	stored, err := ts.repo.FindByID(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, stored.Status)
}

func TestCreate_RejectsOtherCountryTarget(t *testing.T) {
	ts := setupUploadTestSuite(t)

	_, err := ts.service.Create(context.Background(), clientSession("ama@example.com", "gh"),
		CreateRequest{Title: "Nigeria data", Period: "2024-03", TargetCountry: "ng"},
		multipartFile(t, "data.csv", []byte("a,b")))
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, apiStatus(t, err))
}

func TestCreate_RejectsOversizeAndUnsupportedFiles(t *testing.T) {
	ts := setupUploadTestSuite(t)
	ts.service.opts.MaxUploadBytes = 4
	session := clientSession("ama@example.com", "gh")

	_, err := ts.service.Create(context.Background(), session,
		CreateRequest{Title: "Big", Period: "2024-03"}, multipartFile(t, "big.pdf", []byte("0123456789")))
	require.Error(t, err)
	assert.Equal(t, http.StatusRequestEntityTooLarge, apiStatus(t, err))

	ts.service.opts.MaxUploadBytes = 1 << 20
	_, err = ts.service.Create(context.Background(), session,
		CreateRequest{Title: "Script", Period: "2024-03"}, multipartFile(t, "run.sh", []byte("echo")))
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, apiStatus(t, err))
}

func TestTransition_ApprovedDispatchesEachSideEffectOnce(t *testing.T) {
	ts := setupUploadTestSuite(t)
	ctx := context.Background()
	rec := ts.seed(t, "Q1 catch", "gh", "ama@example.com", StatusPending)
	ts.directory.On("ContactByEmail", mock.Anything, "ama@example.com").
		Return(&shared.Contact{Email: "ama@example.com", CountryCode: "gh", PushToken: "tok-ama"}, nil)

	updated, err := ts.service.Transition(ctx, "admin@ecowas.int", rec.ID, StatusApproved)
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, updated.Status)
	assert.Equal(t, "admin@ecowas.int", updated.ReviewedBy)
	require.NotNil(t, updated.ReviewedAt)

	sent := ts.mailer.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, []string{"ama@example.com"}, sent[0].To)
	assert.Contains(t, sent[0].Subject, "approved")

	require.Len(t, ts.pusher.sent, 1)
	assert.Equal(t, "tok-ama", ts.pusher.sent[0].Token)
	assert.Empty(t, ts.pusher.sent[0].Topic)

	entries, _, err := ts.audit.List(ctx, audit.ListFilter{}, 1, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, audit.ActionUploadApproved, entries[0].Action)
	assert.Equal(t, "Q1 catch", entries[0].TargetTitle)
	assert.Equal(t, "admin@ecowas.int", entries[0].Actor)

	stored, err := ts.repo.FindByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, stored.Status)
}

func TestTransition_MissingUploaderEmailUsesFallbackAndTopic(t *testing.T) {
	ts := setupUploadTestSuite(t)
	rec := ts.seed(t, "Legacy file", "sn", "", StatusPending)

	_, err := ts.service.Transition(context.Background(), "admin@ecowas.int", rec.ID, StatusRejected)
	require.NoError(t, err)

	sent := ts.mailer.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, []string{fallbackAddress}, sent[0].To)

	require.Len(t, ts.pusher.sent, 1)
	assert.Equal(t, push.CountryTopic("sn"), ts.pusher.sent[0].Topic)
	assert.Empty(t, ts.pusher.sent[0].Token)

	entries, _, err := ts.audit.List(context.Background(), audit.ListFilter{}, 1, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, audit.ActionUploadRejected, entries[0].Action)
	ts.directory.AssertNotCalled(t, "ContactByEmail", mock.Anything, mock.Anything)
}

func TestTransition_UnknownProfileFallsBackToCountryTopic(t *testing.T) {
	ts := setupUploadTestSuite(t)
	rec := ts.seed(t, "Orphan", "lr", "gone@example.com", StatusPending)
	ts.directory.On("ContactByEmail", mock.Anything, "gone@example.com").Return(nil, common.ErrNotFound)

	_, err := ts.service.Transition(context.Background(), "admin@ecowas.int", rec.ID, StatusApproved)
	require.NoError(t, err)

	require.Len(t, ts.mailer.Sent(), 1)
	assert.Equal(t, []string{"gone@example.com"}, ts.mailer.Sent()[0].To)
	require.Len(t, ts.pusher.sent, 1)
	assert.Equal(t, push.CountryTopic("lr"), ts.pusher.sent[0].Topic)
}

func TestTransition_SideEffectFailuresDoNotBlock(t *testing.T) {
	ts := setupUploadTestSuite(t)
	ts.service.mailer = failingMailer{}
	ts.pusher.err = errors.New("fcm unavailable")
	rec := ts.seed(t, "Q2 catch", "gh", "ama@example.com", StatusPending)
	ts.directory.On("ContactByEmail", mock.Anything, "ama@example.com").
		Return(&shared.Contact{Email: "ama@example.com", CountryCode: "gh"}, nil)

	updated, err := ts.service.Transition(context.Background(), "admin@ecowas.int", rec.ID, StatusApproved)
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, updated.Status)

	entries, _, err := ts.audit.List(context.Background(), audit.ListFilter{}, 1, 10)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestTransition_TerminalStatesConflict(t *testing.T) {
	ts := setupUploadTestSuite(t)
	rec := ts.seed(t, "Once", "gh", "", StatusPending)

	_, err := ts.service.Transition(context.Background(), "admin@ecowas.int", rec.ID, StatusApproved)
	require.NoError(t, err)

	_, err = ts.service.Transition(context.Background(), "other@ecowas.int", rec.ID, StatusRejected)
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, apiStatus(t, err))

	entries, _, err := ts.audit.List(context.Background(), audit.ListFilter{}, 1, 10)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Len(t, ts.mailer.Sent(), 1)
}

func TestTransition_InvalidTargetAndMissingRecord(t *testing.T) {
	ts := setupUploadTestSuite(t)
	rec := ts.seed(t, "Pending", "gh", "", StatusPending)

	_, err := ts.service.Transition(context.Background(), "admin@ecowas.int", rec.ID, StatusPending)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, apiStatus(t, err))

	_, err = ts.service.Transition(context.Background(), "admin@ecowas.int", uuid.New(), StatusApproved)
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, apiStatus(t, err))
}

func TestRepositoryTransition_GuardsOnPending(t *testing.T) {
	ts := setupUploadTestSuite(t)
	rec := ts.seed(t, "Race", "gh", "", StatusPending)
	now := time.Now().UTC()

	require.NoError(t, ts.repo.Transition(context.Background(), rec.ID, StatusApproved, "first@ecowas.int", now))
	err := ts.repo.Transition(context.Background(), rec.ID, StatusRejected, "second@ecowas.int", now)
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, apiStatus(t, err))

	stored, err := ts.repo.FindByID(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, stored.Status)
	assert.Equal(t, "first@ecowas.int", stored.ReviewedBy)
}

func TestListVisible_OwnCountryAndAll(t *testing.T) {
	ts := setupUploadTestSuite(t)
	ts.seed(t, "gh-approved", "gh", "a@example.com", StatusApproved)
	ts.seed(t, "all-approved", "ALL", "admin@ecowas.int", StatusApproved)
	ts.seed(t, "gh-pending", "gh", "a@example.com", StatusPending)
	ts.seed(t, "ng-approved", "ng", "b@example.com", StatusApproved)

	records, err := ts.service.ListVisible(context.Background(), clientSession("a@example.com", "gh"))
	require.NoError(t, err)

	titles := make([]string, 0, len(records))
	for _, r := range records {
		titles = append(titles, r.Title)
	}
	assert.ElementsMatch(t, []string{"gh-approved", "all-approved"}, titles)
}

func TestListMine_OnlyCallerUploads(t *testing.T) {
	ts := setupUploadTestSuite(t)
	ts.seed(t, "mine-1", "gh", "a@example.com", StatusPending)
	ts.seed(t, "mine-2", "gh", "a@example.com", StatusRejected)
	ts.seed(t, "theirs", "gh", "b@example.com", StatusPending)

	records, err := ts.service.ListMine(context.Background(), clientSession("a@example.com", "gh"))
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestDownload_LogsVisibleReportsOnly(t *testing.T) {
	ts := setupUploadTestSuite(t)
	report := ts.seed(t, "Regional outlook", "ALL", "admin@ecowas.int", StatusApproved)
	pending := ts.seed(t, "Draft", "ng", "b@example.com", StatusPending)
	session := clientSession("b@example.com", "ng")

	resp, err := ts.service.Download(context.Background(), session, report.ID)
	require.NoError(t, err)
	assert.Equal(t, report.FileURL, resp.URL)

	_, err = ts.service.Download(context.Background(), session, pending.ID)
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, apiStatus(t, err))

	entries, pagination, err := ts.service.ListDownloads(context.Background(), "ng", 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, pagination.TotalItems)
	require.Len(t, entries, 1)
	assert.Equal(t, "b@example.com", entries[0].Email)
	assert.Equal(t, "Regional outlook", entries[0].Title)
	assert.Equal(t, "ng", entries[0].Country)
	assert.Equal(t, report.FileURL, entries[0].URL)
}

func TestDownload_ResolvesURLFromObjectKey(t *testing.T) {
	ts := setupUploadTestSuite(t)
	rec := &Record{
		Title:         "Regional outlook",
		Country:       "ALL",
		UploaderEmail: "admin@ecowas.int",
		ObjectKey:     "uploads/all/regional-outlook.pdf",
		FileURL:       "https://old-bucket.example.org/uploads/all/regional-outlook.pdf?X-Amz-Expires=604800",
		Status:        StatusApproved,
		Period:        "2024-03",
	}
	require.NoError(t, ts.repo.Create(context.Background(), rec))

	resp, err := ts.service.Download(context.Background(), clientSession("b@example.com", "ng"), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/files/uploads/all/regional-outlook.pdf", resp.URL)

	entries, _, err := ts.service.ListDownloads(context.Background(), "ng", 1, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, resp.URL, entries[0].URL)
}

func TestAdminList_FiltersAndPaginates(t *testing.T) {
	ts := setupUploadTestSuite(t)
	for i := 0; i < 3; i++ {
		ts.seed(t, "gh pending", "gh", "a@example.com", StatusPending)
	}
	ts.seed(t, "ng pending", "ng", "b@example.com", StatusPending)
	ts.seed(t, "gh approved", "gh", "a@example.com", StatusApproved)

	records, pagination, err := ts.service.AdminList(context.Background(), ListFilter{Status: StatusPending, Country: "gh"}, 1, 2)
	require.NoError(t, err)
	assert.Len(t, records, 2)
	assert.EqualValues(t, 3, pagination.TotalItems)
}

func TestPublish_StoresApprovedAndBroadcastsToCountry(t *testing.T) {
	ts := setupUploadTestSuite(t)
	ctx := context.Background()
	ts.broadcaster.On("Broadcast", mock.Anything, "admin@ecowas.int", mock.MatchedBy(func(req notification.BroadcastRequest) bool {
		return req.Audience == "country" && len(req.Countries) == 1 && req.Countries[0] == "gh" &&
			req.Title == "Stock assessment" && req.SendEmail
	})).Return(&notification.BroadcastResult{Recipients: 3, PushAttempted: 3, PushSucceeded: 3}, nil).Once()

	result, err := ts.service.Publish(ctx, "admin@ecowas.int",
		PublishRequest{Title: "Stock assessment", Country: "Ghana", SendEmail: true},
		multipartFile(t, "assessment.pdf", []byte("%PDF")))
	require.NoError(t, err)

	assert.Equal(t, StatusApproved, result.Record.Status)
	assert.Equal(t, "gh", result.Record.Country)
	require.NotNil(t, result.Broadcast)
	assert.Equal(t, 3, result.Broadcast.PushSucceeded)
	ts.broadcaster.AssertExpectations(t)

	entries, _, err := ts.audit.List(ctx, audit.ListFilter{Action: audit.ActionReportPublished}, 1, 10)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	visible, err := ts.service.ListVisible(ctx, clientSession("a@example.com", "gh"))
	require.NoError(t, err)
	assert.Len(t, visible, 1)
}

func TestPublish_AllCountriesAndBroadcastFailure(t *testing.T) {
	ts := setupUploadTestSuite(t)
	ts.broadcaster.On("Broadcast", mock.Anything, "admin@ecowas.int", mock.MatchedBy(func(req notification.BroadcastRequest) bool {
		return req.Audience == "all" && len(req.Countries) == 0
	})).Return(nil, errors.New("db down")).Once()

	result, err := ts.service.Publish(context.Background(), "admin@ecowas.int",
		PublishRequest{Title: "Regional bulletin", Country: "all"},
		multipartFile(t, "bulletin.pdf", []byte("%PDF")))
	require.NoError(t, err)
	assert.Equal(t, "ALL", result.Record.Country)
	assert.Nil(t, result.Broadcast)
}

func TestPublish_UnknownCountry(t *testing.T) {
	ts := setupUploadTestSuite(t)
	_, err := ts.service.Publish(context.Background(), "admin@ecowas.int",
		PublishRequest{Title: "x", Country: "Atlantis"}, multipartFile(t, "x.pdf", []byte("%PDF")))
	require.Error(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, apiStatus(t, err))
	ts.broadcaster.AssertNotCalled(t, "Broadcast", mock.Anything, mock.Anything, mock.Anything)
}

func TestSearch_DisabledWithoutIndexer(t *testing.T) {
	ts := setupUploadTestSuite(t)
	_, err := ts.service.Search(context.Background(), SearchQuery{Text: "catch"})
	require.Error(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, apiStatus(t, err))

	_, _, err = ts.service.Reindex(context.Background(), 10)
	assert.Error(t, err)
}

func TestPendingOlderThan(t *testing.T) {
	ts := setupUploadTestSuite(t)
	ts.seed(t, "fresh", "gh", "a@example.com", StatusPending)
	ts.service.now = func() time.Time { return time.Now().Add(72 * time.Hour) }

	stale, err := ts.service.PendingOlderThan(context.Background(), 48*time.Hour)
	require.NoError(t, err)
	assert.Len(t, stale, 1)

	ts.service.now = time.Now
	stale, err = ts.service.PendingOlderThan(context.Background(), 48*time.Hour)
	require.NoError(t, err)
	assert.Empty(t, stale)
}

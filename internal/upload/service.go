// File: internal/upload/service.go
package upload

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"
	"sync"
	"time"

	"ecowas_fisheries_backend/internal/audit"
	"ecowas_fisheries_backend/internal/common"
	"ecowas_fisheries_backend/internal/config"
	"ecowas_fisheries_backend/internal/country"
	"ecowas_fisheries_backend/internal/email"
	"ecowas_fisheries_backend/internal/filestorage"
	"ecowas_fisheries_backend/internal/notification"
	"ecowas_fisheries_backend/internal/platform/metrics"
	"ecowas_fisheries_backend/internal/push"
	"ecowas_fisheries_backend/internal/shared"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrPayloadTooLarge is returned for files above the configured limit.
var ErrPayloadTooLarge = common.NewAPIError(http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "The uploaded file is too large.")

// Broadcaster is the part of the notification service used for published reports.
type Broadcaster interface {
	Broadcast(ctx context.Context, actor string, req notification.BroadcastRequest) (*notification.BroadcastResult, error)
}

// Options are the upload settings read from configuration.
type Options struct {
	FallbackEmail  string
	MaxUploadBytes int64
}

// NewOptions reads Options from cfg.
func NewOptions(cfg *config.Config) Options {
	return Options{
		FallbackEmail:  cfg.EmailFallbackAddress,
		MaxUploadBytes: cfg.MaxUploadBytes(),
	}
}

// Service defines the upload and review workflow.
type Service interface {
	Create(ctx context.Context, session *shared.Session, req CreateRequest, file *multipart.FileHeader) (*Record, error)
	ListMine(ctx context.Context, session *shared.Session) ([]Record, error)
	ListVisible(ctx context.Context, session *shared.Session) ([]Record, error)
	Download(ctx context.Context, session *shared.Session, id uuid.UUID) (*DownloadResponse, error)

	Get(ctx context.Context, id uuid.UUID) (*Record, error)
	AdminList(ctx context.Context, filter ListFilter, page, pageSize int) ([]Record, *common.Pagination, error)
	Transition(ctx context.Context, actor string, id uuid.UUID, to Status) (*Record, error)
	Publish(ctx context.Context, actor string, req PublishRequest, file *multipart.FileHeader) (*PublishResult, error)
	ListDownloads(ctx context.Context, countryCode string, page, pageSize int) ([]DownloadLogEntry, *common.Pagination, error)
	Search(ctx context.Context, q SearchQuery) ([]Record, error)
	PendingOlderThan(ctx context.Context, age time.Duration) ([]Record, error)
	Reindex(ctx context.Context, batchSize int) (indexed, failed int, err error)
}

type service struct {
	repo        Repository
	store       filestorage.ObjectStore
	directory   shared.ProfileDirectory
	pusher      push.Sender
	mailer      email.Sender
	audit       audit.Service
	broadcaster Broadcaster
	indexer     Indexer
	opts        Options
	logger      *zap.Logger
	now         func() time.Time
}

// NewService creates a new upload service. indexer may be nil when search is disabled.
func NewService(
	repo Repository,
	store filestorage.ObjectStore,
	directory shared.ProfileDirectory,
	pusher push.Sender,
	mailer email.Sender,
	auditService audit.Service,
	broadcaster Broadcaster,
	indexer Indexer,
	opts Options,
	logger *zap.Logger,
) Service {
	return &service{
		repo:        repo,
		store:       store,
		directory:   directory,
		pusher:      pusher,
		mailer:      mailer,
		audit:       auditService,
		broadcaster: broadcaster,
		indexer:     indexer,
		opts:        opts,
		logger:      logger.Named("UploadService"),
		now:         time.Now,
	}
}

// storeFile writes the file under uploads/<country>/.
func (s *service) storeFile(ctx context.Context, countryCode, title string, file *multipart.FileHeader) (*filestorage.StoredObject, error) {
	if file == nil {
		return nil, common.NewValidationAPIError(map[string]string{"file": "The file field is required."})
	}
	if s.opts.MaxUploadBytes > 0 && file.Size > s.opts.MaxUploadBytes {
		return nil, ErrPayloadTooLarge.WithDetails(fmt.Sprintf("Files may be at most %d MB.", s.opts.MaxUploadBytes>>20))
	}
	prefix := "uploads/" + strings.ToLower(countryCode)
	obj, err := filestorage.SaveUploadedFile(ctx, s.store, file, prefix, title, filestorage.ReportTypes)
	if err != nil {
		if errors.Is(err, filestorage.ErrUnsupportedType) {
			return nil, common.ErrBadRequest.WithDetails("Unsupported file type. Upload a PDF, spreadsheet, document or image.")
		}
		return nil, fmt.Errorf("store upload file: %w", err)
	}
	return obj, nil
}

func (s *service) Create(ctx context.Context, session *shared.Session, req CreateRequest, file *multipart.FileHeader) (*Record, error) {
	if session == nil {
		return nil, common.ErrUnauthorized
	}
	target := session.CountryCode
	if req.TargetCountry != "" {
		if !country.Same(req.TargetCountry, session.CountryCode) {
			return nil, common.ErrForbidden.WithDetails("Clients may only upload for their own country.")
		}
		target = country.Normalize(req.TargetCountry)
	}

	title := strings.TrimSpace(req.Title)
	obj, err := s.storeFile(ctx, target, title, file)
	if err != nil {
		return nil, err
	}

	record := &Record{
		Title:         title,
		Country:       target,
		UploaderEmail: session.Email,
		UploaderUID:   session.UID,
		FileURL:       obj.URL,
		ObjectKey:     obj.Key,
		ContentType:   obj.ContentType,
		SizeBytes:     obj.Size,
		Period:        req.Period,
		Status:        StatusPending,
	}
	if err := s.repo.Create(ctx, record); err != nil {
		if delErr := s.store.Delete(ctx, obj.Key); delErr != nil {
			s.logger.Warn("Failed to remove orphaned upload object", zap.String("key", obj.Key), zap.Error(delErr))
		}
		return nil, err
	}
	metrics.UploadsCreated.WithLabelValues(string(StatusPending)).Inc()
	s.index(ctx, record)

	s.logger.Info("Upload submitted",
		zap.String("upload_id", record.ID.String()),
		zap.String("country", record.Country),
		zap.String("uploader", record.UploaderEmail),
	)
	return record, nil
}

func (s *service) ListMine(ctx context.Context, session *shared.Session) ([]Record, error) {
	return s.repo.ListByUploader(ctx, session.Email)
}

func (s *service) ListVisible(ctx context.Context, session *shared.Session) ([]Record, error) {
	return s.repo.ListApprovedFor(ctx, session.CountryCode)
}

// visibleTo reports whether a client of countryCode may see the record.
func visibleTo(r *Record, countryCode string) bool {
	if r.Status != StatusApproved {
		return false
	}
	return r.Country == country.AllCountries || country.Same(r.Country, countryCode)
}

// Download checks visibility and appends one download log entry.
func (s *service) Download(ctx context.Context, session *shared.Session, id uuid.UUID) (*DownloadResponse, error) {
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !visibleTo(record, session.CountryCode) {
		return nil, common.ErrNotFound.WithDetails("Report not found.")
	}

	url := s.fileURL(ctx, record)
	entry := &DownloadLogEntry{
		ID:        uuid.New(),
		UploadID:  record.ID,
		Email:     session.Email,
		Title:     record.Title,
		URL:       url,
		Country:   session.CountryCode,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.CreateDownload(ctx, entry); err != nil {
		return nil, err
	}
	metrics.Downloads.Inc()
	return &DownloadResponse{URL: url, Title: record.Title}, nil
}

// fileURL resolves the object's address from its key, so a moved bucket
// does not strand old records. Records without a key keep their stored URL.
func (s *service) fileURL(ctx context.Context, record *Record) string {
	if record.ObjectKey == "" {
		return record.FileURL
	}
	url, err := s.store.URL(ctx, record.ObjectKey)
	if err != nil {
		s.logger.Warn("Falling back to stored file URL", zap.String("upload_id", record.ID.String()), zap.Error(err))
		return record.FileURL
	}
	return url
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*Record, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) AdminList(ctx context.Context, filter ListFilter, page, pageSize int) ([]Record, *common.Pagination, error) {
	return s.repo.List(ctx, filter, page, pageSize)
}

// Transition reviews a pending upload. The status write happens first; email,
// push and audit are then dispatched concurrently and only logged on failure.
func (s *service) Transition(ctx context.Context, actor string, id uuid.UUID, to Status) (*Record, error) {
	if to != StatusApproved && to != StatusRejected {
		return nil, common.NewValidationAPIError(map[string]string{"status": "The status field must be one of: approved rejected."})
	}
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(record.Status, to) {
		return nil, common.ErrConflict.WithDetails(fmt.Sprintf("Upload is already %s.", record.Status))
	}

	at := s.now().UTC()
	if err := s.repo.Transition(ctx, id, to, actor, at); err != nil {
		return nil, err
	}
	record.Status = to
	record.ReviewedBy = actor
	record.ReviewedAt = &at
	record.UpdatedAt = at
	metrics.UploadTransitions.WithLabelValues(string(to)).Inc()

	contact := s.contactFor(ctx, record)

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		s.sendReviewEmail(ctx, record, contact)
	}()
	go func() {
		defer wg.Done()
		s.sendReviewPush(ctx, record, contact)
	}()
	go func() {
		defer wg.Done()
		action := audit.ActionUploadApproved
		if to == StatusRejected {
			action = audit.ActionUploadRejected
		}
		_, err := s.audit.Record(ctx, actor, action, record.Title, &record.ID)
		metrics.RecordDispatch(metrics.ChannelAudit, err)
	}()
	wg.Wait()

	s.index(ctx, record)
	s.logger.Info("Upload reviewed",
		zap.String("upload_id", record.ID.String()),
		zap.String("status", string(to)),
		zap.String("reviewer", actor),
	)
	return record, nil
}

// contactFor looks up the uploader profile. A missing profile still leaves
// the stored email and the record's country to fall back on.
func (s *service) contactFor(ctx context.Context, record *Record) shared.Contact {
	fallback := shared.Contact{Email: record.UploaderEmail, CountryCode: record.Country}
	if record.UploaderEmail == "" {
		return fallback
	}
	contact, err := s.directory.ContactByEmail(ctx, record.UploaderEmail)
	if err != nil || contact == nil {
		if err != nil {
			s.logger.Debug("Uploader profile lookup failed", zap.String("email", record.UploaderEmail), zap.Error(err))
		}
		return fallback
	}
	if contact.Email == "" {
		contact.Email = record.UploaderEmail
	}
	if contact.CountryCode == "" {
		contact.CountryCode = record.Country
	}
	return *contact
}

func (s *service) sendReviewEmail(ctx context.Context, record *Record, contact shared.Contact) {
	to := contact.Email
	if to == "" {
		to = s.opts.FallbackEmail
	}
	countryName := record.Country
	if c, ok := country.Lookup(record.Country); ok {
		countryName = c.Name
	}

	msg, err := email.ReviewMessage(to, email.UploadReview{
		Title:    record.Title,
		Country:  countryName,
		Status:   string(record.Status),
		Reviewer: record.ReviewedBy,
		FileURL:  record.FileURL,
	})
	if err == nil {
		err = s.mailer.Send(ctx, msg)
	}
	metrics.RecordDispatch(metrics.ChannelEmail, err)
	if err != nil {
		s.logger.Warn("Review email failed", zap.String("upload_id", record.ID.String()), zap.String("to", to), zap.Error(err))
	}
}

func (s *service) sendReviewPush(ctx context.Context, record *Record, contact shared.Contact) {
	msg := push.Message{
		Title: "Upload " + string(record.Status),
		Body:  fmt.Sprintf("Your upload %q has been %s.", record.Title, record.Status),
		Data: map[string]string{
			"upload_id": record.ID.String(),
			"status":    string(record.Status),
		},
	}
	if contact.PushToken != "" {
		msg.Token = contact.PushToken
	} else {
		msg.Topic = push.CountryTopic(contact.CountryCode)
	}
	err := s.pusher.Send(ctx, msg)
	metrics.RecordDispatch(metrics.ChannelPush, err)
	if err != nil {
		s.logger.Warn("Review push failed", zap.String("upload_id", record.ID.String()), zap.Error(err))
	}
}

// Publish stores an admin report as approved and broadcasts it to the target country or to everyone.
func (s *service) Publish(ctx context.Context, actor string, req PublishRequest, file *multipart.FileHeader) (*PublishResult, error) {
	target := country.AllCountries
	if !strings.EqualFold(strings.TrimSpace(req.Country), country.AllCountries) {
		target = country.Normalize(req.Country)
		if target == "" {
			return nil, common.NewValidationAPIError(map[string]string{"country": "Unknown country: " + req.Country})
		}
	}

	title := strings.TrimSpace(req.Title)
	obj, err := s.storeFile(ctx, target, title, file)
	if err != nil {
		return nil, err
	}

	at := s.now().UTC()
	record := &Record{
		Title:         title,
		Country:       target,
		UploaderEmail: actor,
		FileURL:       obj.URL,
		ObjectKey:     obj.Key,
		ContentType:   obj.ContentType,
		SizeBytes:     obj.Size,
		Period:        req.Period,
		Status:        StatusApproved,
		ReviewedBy:    actor,
		ReviewedAt:    &at,
	}
	if err := s.repo.Create(ctx, record); err != nil {
		if delErr := s.store.Delete(ctx, obj.Key); delErr != nil {
			s.logger.Warn("Failed to remove orphaned report object", zap.String("key", obj.Key), zap.Error(delErr))
		}
		return nil, err
	}
	metrics.UploadsCreated.WithLabelValues(string(StatusApproved)).Inc()
	s.index(ctx, record)

	_, auditErr := s.audit.Record(ctx, actor, audit.ActionReportPublished, record.Title, &record.ID)
	metrics.RecordDispatch(metrics.ChannelAudit, auditErr)

	message := strings.TrimSpace(req.Message)
	if message == "" {
		message = fmt.Sprintf("A new report is available: %s", record.Title)
	}
	broadcast := notification.BroadcastRequest{
		Title:     record.Title,
		Message:   message,
		Audience:  string(shared.AudienceAll),
		SendEmail: req.SendEmail,
	}
	if target != country.AllCountries {
		broadcast.Audience = string(shared.AudienceCountries)
		broadcast.Countries = []string{target}
	}

	result := &PublishResult{Record: record}
	sent, err := s.broadcaster.Broadcast(ctx, actor, broadcast)
	if err != nil {
		s.logger.Error("Report stored but broadcast failed", zap.String("upload_id", record.ID.String()), zap.Error(err))
		return result, nil
	}
	result.Broadcast = sent
	return result, nil
}

func (s *service) ListDownloads(ctx context.Context, countryCode string, page, pageSize int) ([]DownloadLogEntry, *common.Pagination, error) {
	return s.repo.ListDownloads(ctx, countryCode, page, pageSize)
}

// Search queries the index and loads the hits from the database in ranking order.
func (s *service) Search(ctx context.Context, q SearchQuery) ([]Record, error) {
	if s.indexer == nil {
		return nil, common.ErrServiceUnavailable.WithDetails("Report search is disabled.")
	}
	ids, err := s.indexer.Search(ctx, q)
	if err != nil {
		return nil, err
	}
	return s.repo.FindByIDs(ctx, ids)
}

func (s *service) PendingOlderThan(ctx context.Context, age time.Duration) ([]Record, error) {
	return s.repo.FindPendingBefore(ctx, s.now().Add(-age))
}

// Reindex pushes every stored record to the search index in batches.
func (s *service) Reindex(ctx context.Context, batchSize int) (int, int, error) {
	if s.indexer == nil {
		return 0, 0, errors.New("report search is disabled: ELASTICSEARCH_URL is not set")
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	var indexed, failed int
	for offset := 0; ; offset += batchSize {
		batch, err := s.repo.FindAllForSync(ctx, offset, batchSize)
		if err != nil {
			return indexed, failed, err
		}
		if len(batch) == 0 {
			break
		}
		ok, bad, err := s.indexer.BulkIndex(ctx, batch)
		indexed += ok
		failed += bad
		if err != nil {
			return indexed, failed, err
		}
		s.logger.Info("Reindexed upload batch", zap.Int("offset", offset), zap.Int("indexed", ok), zap.Int("failed", bad))
		if len(batch) < batchSize {
			break
		}
	}
	return indexed, failed, nil
}

func (s *service) index(ctx context.Context, record *Record) {
	if s.indexer == nil {
		return
	}
	if err := s.indexer.Index(ctx, record); err != nil {
		s.logger.Warn("Failed to index upload", zap.String("upload_id", record.ID.String()), zap.Error(err))
	}
}

// File: internal/jobs/pending_review.go
package jobs

import (
	"context"
	"fmt"
	"sort"
	"time"

	"ecowas_fisheries_backend/internal/config"
	"ecowas_fisheries_backend/internal/country"
	"ecowas_fisheries_backend/internal/email"
	"ecowas_fisheries_backend/internal/platform/metrics"
	"ecowas_fisheries_backend/internal/upload"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// PendingSource lists uploads still waiting for review.
// Implemented by upload.Service.
type PendingSource interface {
	PendingOlderThan(ctx context.Context, age time.Duration) ([]upload.Record, error)
}

// AdminDirectory resolves the reminder recipients.
// Implemented by user.ServiceImplementation.
type AdminDirectory interface {
	AdminEmails(ctx context.Context) ([]string, error)
}

// PendingReviewJob emails admins a digest of uploads left pending too long.
type PendingReviewJob struct {
	uploads       PendingSource
	admins        AdminDirectory
	mailer        email.Sender
	schedule      string
	age           time.Duration
	fallback      string
	logger        *zap.Logger
	cronScheduler *cron.Cron
	now           func() time.Time
}

// NewPendingReviewJob creates a new PendingReviewJob.
func NewPendingReviewJob(
	uploads PendingSource,
	admins AdminDirectory,
	mailer email.Sender,
	cfg *config.Config,
	logger *zap.Logger,
) *PendingReviewJob {
	scheduler := cron.New(cron.WithLogger(NewCronLogger(logger.Named("cron"))))

	return &PendingReviewJob{
		uploads:       uploads,
		admins:        admins,
		mailer:        mailer,
		schedule:      cfg.PendingReviewJobSchedule,
		age:           cfg.PendingReviewAge,
		fallback:      cfg.EmailFallbackAddress,
		logger:        logger.Named("PendingReviewJob"),
		cronScheduler: scheduler,
		now:           time.Now,
	}
}

// SetupAndStart schedules and starts the cron job.
func (j *PendingReviewJob) SetupAndStart() error {
	if j.schedule == "" {
		j.logger.Warn("Pending review job schedule not defined (PENDING_REVIEW_JOB_SCHEDULE). Job will not run.")
		return nil
	}

	jobID, err := j.cronScheduler.AddFunc(j.schedule, j.runJob)
	if err != nil {
		j.logger.Error("Failed to schedule pending review job", zap.String("schedule", j.schedule), zap.Error(err))
		return err
	}

	j.logger.Info("Pending review job scheduled", zap.String("schedule", j.schedule), zap.Duration("age", j.age), zap.Any("jobID", jobID))
	j.cronScheduler.Start()
	return nil
}

func (j *PendingReviewJob) runJob() {
	j.logger.Info("Starting pending review job run...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pending, err := j.RunOnce(ctx)
	if err != nil {
		j.logger.Error("Pending review job run failed", zap.Error(err))
		return
	}
	j.logger.Info("Pending review job run completed", zap.Int("uploads_pending", pending))
}

// RunOnce sends one digest when uploads are overdue and returns how many were listed.
func (j *PendingReviewJob) RunOnce(ctx context.Context) (int, error) {
	records, err := j.uploads.PendingOlderThan(ctx, j.age)
	if err != nil {
		return 0, fmt.Errorf("load pending uploads: %w", err)
	}
	if len(records) == 0 {
		return 0, nil
	}

	recipients, err := j.admins.AdminEmails(ctx)
	if err != nil {
		j.logger.Warn("Failed to list admins, using fallback address", zap.Error(err))
		recipients = nil
	}
	if len(recipients) == 0 {
		if j.fallback == "" {
			return len(records), fmt.Errorf("no admin recipients and EMAIL_FALLBACK_ADDRESS is empty")
		}
		recipients = []string{j.fallback}
	}
	sort.Strings(recipients)

	now := j.now()
	digest := email.PendingDigest{Items: make([]email.PendingItem, 0, len(records))}
	for _, r := range records {
		name := r.Country
		if c, ok := country.Lookup(r.Country); ok {
			name = c.Name
		}
		digest.Items = append(digest.Items, email.PendingItem{
			Title:    r.Title,
			Country:  name,
			Uploader: r.UploaderEmail,
			Waiting:  waiting(now.Sub(r.CreatedAt)),
		})
	}

	msg, err := email.PendingDigestMessage(recipients, digest)
	if err == nil {
		err = j.mailer.Send(ctx, msg)
	}
	metrics.RecordDispatch(metrics.ChannelEmail, err)
	if err != nil {
		return len(records), fmt.Errorf("send pending digest: %w", err)
	}
	return len(records), nil
}

func waiting(d time.Duration) string {
	days := int(d.Hours()) / 24
	if days >= 1 {
		if days == 1 {
			return "1 day"
		}
		return fmt.Sprintf("%d days", days)
	}
	return fmt.Sprintf("%d hours", int(d.Hours()))
}

// Stop gracefully stops the cron scheduler.
func (j *PendingReviewJob) Stop() {
	if j.cronScheduler != nil {
		j.logger.Info("Stopping pending review job scheduler...")
		stopCtx := j.cronScheduler.Stop()
		select {
		case <-stopCtx.Done():
			j.logger.Info("Pending review job scheduler stopped gracefully.")
		case <-time.After(10 * time.Second):
			j.logger.Warn("Pending review job scheduler stop timed out.")
		}
	}
}

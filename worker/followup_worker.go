package worker

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	"gorm.io/gorm"

	"renovision/models"
)

// FollowUpSender sends one of the three staged re-engagement emails.
// Implemented by utils.Mailer; an interface so the worker is testable
// without SMTP.
type FollowUpSender interface {
	SendFollowUp(stage int, lead *models.Lead, company *models.Company) error
}

// Stage age thresholds, measured from lead creation.
var stageThresholds = map[int]time.Duration{
	1: 3 * 24 * time.Hour,
	2: 7 * 24 * time.Hour,
	3: 14 * 24 * time.Hour,
}

// FollowUpWorker runs the daily follow-up sequence over un-converted leads.
type FollowUpWorker struct {
	DB     *gorm.DB
	Mailer FollowUpSender
	Logger *log.Logger
	Hour   int // local hour of day the run fires

	// Now is swappable in tests; defaults to time.Now.
	Now func() time.Time

	mu sync.Mutex
}

func NewFollowUpWorker(db *gorm.DB, mailer FollowUpSender, logger *log.Logger, hour int) *FollowUpWorker {
	return &FollowUpWorker{
		DB:     db,
		Mailer: mailer,
		Logger: logger,
		Hour:   hour,
		Now:    time.Now,
	}
}

// StageDue reports whether the given follow-up stage should fire for the
// lead at the given instant. A stage fires only while the lead is still
// "new", once its age threshold has passed, when the previous stage's flag
// is set and its own flag is not.
func StageDue(lead models.Lead, stage int, now time.Time) bool {
	if lead.Status != models.LeadStatusNew {
		return false
	}
	threshold, ok := stageThresholds[stage]
	if !ok || lead.Age(now) < threshold {
		return false
	}

	switch stage {
	case 1:
		return !lead.FollowUp1Sent
	case 2:
		return lead.FollowUp1Sent && !lead.FollowUp2Sent
	case 3:
		return lead.FollowUp2Sent && !lead.FollowUp3Sent
	}
	return false
}

// NextRunAt returns the next wall-clock instant at hour o'clock local time
// strictly after now.
func NextRunAt(now time.Time, hour int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// Start blocks until ctx is cancelled, firing one run per day at the
// configured hour.
func (w *FollowUpWorker) Start(ctx context.Context) {
	w.Logger.Printf("Follow-up worker started, firing daily at %02d:00", w.Hour)

	for {
		next := NextRunAt(w.Now(), w.Hour)
		timer := time.NewTimer(time.Until(next))

		select {
		case <-ctx.Done():
			timer.Stop()
			w.Logger.Println("Follow-up worker shutting down...")
			return
		case <-timer.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce evaluates all three stages over the lead population. Guarded so
// overlapping invocations cannot double-send a stage.
func (w *FollowUpWorker) RunOnce(ctx context.Context) {
	if !w.mu.TryLock() {
		w.Logger.Println("Previous follow-up run still in progress, skipping")
		return
	}
	defer w.mu.Unlock()

	started := w.Now()
	var sent int
	for stage := 1; stage <= 3; stage++ {
		sent += w.runStage(ctx, stage)
	}
	w.Logger.Printf("Follow-up run complete: %d email(s) sent in %s", sent, time.Since(started).Round(time.Millisecond))
}

// runStage processes one stage over all eligible leads in ascending age
// order. Individual send failures are logged and skipped; the flag stays
// false so the next day's run retries naturally.
func (w *FollowUpWorker) runStage(ctx context.Context, stage int) int {
	now := w.Now()
	cutoff := now.Add(-stageThresholds[stage])

	query := w.DB.WithContext(ctx).
		Where("status = ?", models.LeadStatusNew).
		Where("created_at <= ?", cutoff)

	switch stage {
	case 1:
		query = query.Where("follow_up_1_sent = ?", false)
	case 2:
		query = query.Where("follow_up_1_sent = ? AND follow_up_2_sent = ?", true, false)
	case 3:
		query = query.Where("follow_up_2_sent = ? AND follow_up_3_sent = ?", true, false)
	}

	var leads []models.Lead
	if err := query.Order("created_at ASC").Preload("Company").Find(&leads).Error; err != nil {
		w.Logger.Printf("Error fetching stage %d leads: %v", stage, err)
		return 0
	}

	sent := 0
	for i := range leads {
		lead := leads[i]

		// Re-check in memory; the DB predicate already guarantees this
		// for a single run, the check keeps overlap harmless.
		if !StageDue(lead, stage, now) {
			continue
		}

		if err := w.Mailer.SendFollowUp(stage, &lead, &lead.Company); err != nil {
			w.Logger.Printf("Failed to send stage %d follow-up for lead %s: %v", stage, lead.ID, err)
			sentry.CaptureException(err)
			continue
		}

		if err := w.markStageSent(ctx, lead.ID, stage); err != nil {
			w.Logger.Printf("Failed to record stage %d flag for lead %s: %v", stage, lead.ID, err)
			continue
		}
		sent++
	}
	return sent
}

// stageFlagColumns maps a stage to the flag it flips.
var stageFlagColumns = map[int]string{
	1: "follow_up_1_sent",
	2: "follow_up_2_sent",
	3: "follow_up_3_sent",
}

// stageUpdates computes the column set recorded after a confirmed send.
// The final stage also closes the lead, removing it from every future
// pass.
func stageUpdates(stage int, now time.Time) map[string]interface{} {
	updates := map[string]interface{}{
		"updated_at":            now,
		stageFlagColumns[stage]: true,
	}
	if stage == 3 {
		updates["status"] = models.LeadStatusClosed
	}
	return updates
}

// markStageSent flips the stage flag after a confirmed send. The WHERE
// re-asserts the flag is still false and the lead is still new, so a
// concurrent run is a no-op and a lead the dashboard moved on (won,
// contacted) between query and update is left alone.
func (w *FollowUpWorker) markStageSent(ctx context.Context, leadID string, stage int) error {
	return w.DB.WithContext(ctx).
		Model(&models.Lead{}).
		Where("id = ? AND status = ? AND "+stageFlagColumns[stage]+" = ?",
			leadID, models.LeadStatusNew, false).
		Updates(stageUpdates(stage, w.Now())).Error
}

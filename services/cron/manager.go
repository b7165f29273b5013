package cron

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dibyendu2004/BrightPath/model"
	"github.com/dibyendu2004/BrightPath/services"
	"github.com/dibyendu2004/BrightPath/utils/logger"
	"github.com/robfig/cron/v3"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	JobReconcileEnrollments   = "reconcile_enrollments"
	JobRefreshCompletionFlags = "refresh_completion_flags"

	jobTimeout = 10 * time.Minute
)

// EnrollmentReconciler repairs enrollment sets
type EnrollmentReconciler interface {
	ReconcileEnrollments(ctx context.Context) (*services.ReconcileReport, error)
}

// CompletionRefresher re-derives progress completion flags
type CompletionRefresher interface {
	RefreshCompletionFlags(ctx context.Context) (int, error)
}

// CronManager manages all scheduled cron jobs
type CronManager struct {
	cron       *cron.Cron
	db         *gorm.DB
	enrollment EnrollmentReconciler
	progress   CompletionRefresher
	log        *logger.Logger
}

// NewCronManager creates a new cron manager
func NewCronManager(db *gorm.DB, enrollment EnrollmentReconciler, progress CompletionRefresher, log *logger.Logger) *CronManager {
	return &CronManager{
		cron:       cron.New(cron.WithSeconds()),
		db:         db,
		enrollment: enrollment,
		progress:   progress,
		log:        log.With("component", "cron"),
	}
}

// Start registers the jobs and starts the scheduler
func (m *CronManager) Start() error {
	if err := m.registerJobs(); err != nil {
		return err
	}
	m.cron.Start()
	m.log.Info("Cron jobs started", "jobs", len(m.cron.Entries()))
	return nil
}

// Stop stops the scheduler and waits for running jobs
func (m *CronManager) Stop() {
	ctx := m.cron.Stop()
	<-ctx.Done()
	m.log.Info("Cron jobs stopped")
}

func (m *CronManager) registerJobs() error {
	// Every 30 minutes
	if _, err := m.cron.AddFunc("0 */30 * * * *", m.ReconcileEnrollments); err != nil {
		return err
	}
	// Every hour
	if _, err := m.cron.AddFunc("0 0 * * * *", m.RefreshCompletionFlags); err != nil {
		return err
	}
	return nil
}

// runJob executes fn with a timeout and records the run in cron_job_logs
func (m *CronManager) runJob(jobName string, fn func(ctx context.Context) (string, interface{}, error)) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	entry := m.logJobStart(jobName)
	message, metadata, err := fn(ctx)
	if err != nil {
		m.logJobError(entry, err)
		return
	}
	m.logJobComplete(entry, message, metadata)
}

func (m *CronManager) logJobStart(jobName string) *model.CronJobLog {
	m.log.Info("Starting job", "job", jobName)

	entry := &model.CronJobLog{
		JobName:   jobName,
		Status:    "running",
		StartedAt: time.Now(),
		Metadata:  datatypes.JSON("{}"),
	}
	if err := m.db.Create(entry).Error; err != nil {
		m.log.Warn("Failed to record job start", "job", jobName, "error", err)
	}
	return entry
}

func (m *CronManager) logJobComplete(entry *model.CronJobLog, message string, metadata interface{}) {
	now := time.Now()
	m.log.Info("Completed job", "job", entry.JobName, "message", message)

	updates := map[string]interface{}{
		"status":       "completed",
		"completed_at": now,
		"duration":     now.Sub(entry.StartedAt).Milliseconds(),
		"message":      message,
	}
	if metadata != nil {
		if raw, err := json.Marshal(metadata); err == nil {
			updates["metadata"] = datatypes.JSON(raw)
		}
	}
	m.updateEntry(entry, updates)
}

func (m *CronManager) logJobError(entry *model.CronJobLog, err error) {
	now := time.Now()
	m.log.Error("Job failed", "job", entry.JobName, "error", err)

	m.updateEntry(entry, map[string]interface{}{
		"status":       "failed",
		"completed_at": now,
		"duration":     now.Sub(entry.StartedAt).Milliseconds(),
		"error_msg":    err.Error(),
	})
}

func (m *CronManager) updateEntry(entry *model.CronJobLog, updates map[string]interface{}) {
	if entry.ID == 0 {
		return
	}
	if err := m.db.Model(&model.CronJobLog{}).Where("id = ?", entry.ID).Updates(updates).Error; err != nil {
		m.log.Warn("Failed to record job result", "job", entry.JobName, "error", err)
	}
}

package cron

import (
	"context"
	"errors"
	"testing"

	"github.com/dibyendu2004/BrightPath/database"
	"github.com/dibyendu2004/BrightPath/model"
	"github.com/dibyendu2004/BrightPath/services"
	"github.com/dibyendu2004/BrightPath/utils/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeReconciler struct {
	report *services.ReconcileReport
	err    error
}

func (f fakeReconciler) ReconcileEnrollments(context.Context) (*services.ReconcileReport, error) {
	return f.report, f.err
}

type fakeRefresher struct {
	updated int
	err     error
}

func (f fakeRefresher) RefreshCompletionFlags(context.Context) (int, error) {
	return f.updated, f.err
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	store, err := database.OpenInMemory(logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store.GetDB()
}

func lastLog(t *testing.T, db *gorm.DB, job string) model.CronJobLog {
	t.Helper()
	var entry model.CronJobLog
	require.NoError(t, db.Where("job_name = ?", job).Order("id DESC").First(&entry).Error)
	return entry
}

func TestJobsRecordCompletion(t *testing.T) {
	db := newTestDB(t)
	m := NewCronManager(db,
		fakeReconciler{report: &services.ReconcileReport{UsersRepaired: 1, CoursesRepaired: 2, MissingPurchases: 3}},
		fakeRefresher{updated: 4},
		logger.NewNop())

	m.ReconcileEnrollments()
	m.RefreshCompletionFlags()

	entry := lastLog(t, db, JobReconcileEnrollments)
	assert.Equal(t, "completed", entry.Status)
	assert.Equal(t, "Repaired 1 users and 2 courses, 3 enrollments without purchase", entry.Message)
	assert.NotNil(t, entry.CompletedAt)
	assert.JSONEq(t, `{"users_repaired":1,"courses_repaired":2,"missing_purchases":3}`, string(entry.Metadata))

	entry = lastLog(t, db, JobRefreshCompletionFlags)
	assert.Equal(t, "completed", entry.Status)
	assert.Equal(t, "Updated 4 progress records", entry.Message)
}

func TestJobsRecordFailure(t *testing.T) {
	db := newTestDB(t)
	m := NewCronManager(db, fakeReconciler{err: errors.New("db down")}, fakeRefresher{}, logger.NewNop())

	m.ReconcileEnrollments()

	entry := lastLog(t, db, JobReconcileEnrollments)
	assert.Equal(t, "failed", entry.Status)
	assert.Contains(t, entry.ErrorMsg, "db down")
}

func TestStartRegistersJobsAndStops(t *testing.T) {
	m := NewCronManager(newTestDB(t), fakeReconciler{}, fakeRefresher{}, logger.NewNop())

	require.NoError(t, m.Start())
	assert.Len(t, m.cron.Entries(), 2)
	m.Stop()
}

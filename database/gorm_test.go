package database

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/dibyendu2004/BrightPath/config"
	"github.com/dibyendu2004/BrightPath/model"
	"github.com/dibyendu2004/BrightPath/utils/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestOpenInMemoryMigrates(t *testing.T) {
	store, err := OpenInMemory(logger.NewNop())
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.HealthCheck())
	for _, table := range []interface{}{&model.User{}, &model.Course{}, &model.Purchase{}, &model.CourseProgress{}, &model.CronJobLog{}} {
		assert.True(t, store.GetDB().Migrator().HasTable(table))
	}
}

func TestPurchaseUniqueIndexIsDuplicateKey(t *testing.T) {
	store, err := OpenInMemory(logger.NewNop())
	require.NoError(t, err)
	defer store.Close()

	db := store.GetDB()
	require.NoError(t, db.Create(&model.Purchase{ID: "p1", UserID: "u1", CourseID: "c1", Status: model.PurchaseStatusCompleted}).Error)
	err = db.Create(&model.Purchase{ID: "p2", UserID: "u1", CourseID: "c1", Status: model.PurchaseStatusCompleted}).Error

	assert.True(t, IsDuplicateKey(err))
}

func TestIsDuplicateKey(t *testing.T) {
	assert.False(t, IsDuplicateKey(nil))
	assert.False(t, IsDuplicateKey(errors.New("connection reset")))
	assert.True(t, IsDuplicateKey(gorm.ErrDuplicatedKey))
}

func TestStartGORMRejectsUnknownDriver(t *testing.T) {
	_, err := StartGORM(&config.EnvironmentVariable{DB_DRIVER: "mongo"}, logger.NewNop())
	assert.Error(t, err)
}

type captureWriter struct {
	lines []string
}

func (w *captureWriter) Printf(format string, args ...interface{}) {
	w.lines = append(w.lines, fmt.Sprintf(format, args...))
}

func TestGormLoggerSkipsRecordNotFound(t *testing.T) {
	for _, production := range []bool{true, false} {
		w := &captureWriter{}
		l := newGormLogger(w, production)
		sql := func() (string, int64) { return "SELECT * FROM course_progress", 0 }

		l.Trace(context.Background(), time.Now(), sql, gorm.ErrRecordNotFound)
		for _, line := range w.lines {
			assert.NotContains(t, line, "record not found")
		}

		l.Trace(context.Background(), time.Now(), sql, errors.New("connection reset"))
		require.NotEmpty(t, w.lines)
		assert.Contains(t, w.lines[len(w.lines)-1], "connection reset")
	}
}

package database

import (
	"testing"

	"github.com/dibyendu2004/BrightPath/model"
	applog "github.com/dibyendu2004/BrightPath/utils/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunSeedsIsIdempotent(t *testing.T) {
	store, err := OpenInMemory(applog.NewNop())
	require.NoError(t, err)
	defer store.Close()

	db := store.GetDB()
	require.NoError(t, RunSeeds(db, applog.NewNop()))
	require.NoError(t, RunSeeds(db, applog.NewNop()))

	var users, courses int64
	require.NoError(t, db.Model(&model.User{}).Count(&users).Error)
	require.NoError(t, db.Model(&model.Course{}).Count(&courses).Error)
	assert.Equal(t, int64(2), users)
	assert.Equal(t, int64(2), courses)

	var course model.Course
	require.NoError(t, db.First(&course, "id = ?", "course_demo_go").Error)
	assert.Equal(t, 5, course.TotalLectures())
	assert.Equal(t, DemoEducatorID, course.EducatorID)
}

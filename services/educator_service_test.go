package services

import (
	"context"
	"testing"
	"time"

	"github.com/dibyendu2004/BrightPath/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardData(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.createUser(t, "edu", model.RoleEducator)
	env.createUser(t, "a", model.RoleStudent)
	env.createUser(t, "b", model.RoleStudent)
	env.createCourse(t, "c1", "edu", 10.10, 0)
	env.createCourse(t, "c2", "edu", 20.20, 0)
	env.createCourse(t, "other", "someone", 99, 0)

	_, err := env.enrollment.Purchase(ctx, "a", "c1")
	require.NoError(t, err)
	_, err = env.enrollment.Purchase(ctx, "b", "c2")
	require.NoError(t, err)
	_, err = env.enrollment.Purchase(ctx, "a", "other")
	require.NoError(t, err)
	// make the ordering deterministic
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, env.db.Model(&model.Purchase{}).Where("user_id = ? AND course_id = ?", "a", "c1").Update("created_at", base).Error)
	require.NoError(t, env.db.Model(&model.Purchase{}).Where("user_id = ? AND course_id = ?", "b", "c2").Update("created_at", base.Add(time.Hour)).Error)

	data, err := env.educator.DashboardData(ctx, "edu")
	require.NoError(t, err)

	assert.Equal(t, 30.30, data.TotalEarnings)
	assert.Equal(t, 2, data.TotalCourses)
	assert.Equal(t, 2, data.TotalStudents)
	require.Len(t, data.EnrolledStudentsData, 2)
	assert.Equal(t, "b", data.EnrolledStudentsData[0].Student.ID)
	assert.Equal(t, "Course c2", data.EnrolledStudentsData[0].CourseTitle)
	assert.Equal(t, "User a", data.EnrolledStudentsData[1].Student.Name)

	entries, err := env.educator.EnrolledStudents(ctx, "edu")
	require.NoError(t, err)
	assert.Equal(t, data.EnrolledStudentsData, entries)
}

func TestDashboardDataWithoutCourses(t *testing.T) {
	env := newTestEnv(t)

	data, err := env.educator.DashboardData(context.Background(), "nobody")
	require.NoError(t, err)

	assert.Zero(t, data.TotalEarnings)
	assert.Zero(t, data.TotalCourses)
	assert.Empty(t, data.EnrolledStudentsData)
}

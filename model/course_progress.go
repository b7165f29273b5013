package model

import (
	"time"

	"gorm.io/datatypes"
)

// CourseProgress records which lectures of a course a user has finished.
type CourseProgress struct {
	ID                string                      `gorm:"type:varchar(36);primaryKey" json:"_id"`
	UserID            string                      `gorm:"type:varchar(191);not null;uniqueIndex:idx_progress_user_course" json:"userId"`
	CourseID          string                      `gorm:"type:varchar(36);not null;uniqueIndex:idx_progress_user_course;index" json:"courseId"`
	CompletedLectures datatypes.JSONSlice[string] `json:"completedLectures"`
	IsCompleted       bool                        `gorm:"not null" json:"isCompleted"`
	CreatedAt         time.Time                   `json:"createdAt"`
	UpdatedAt         time.Time                   `json:"updatedAt"`
}

// TableName specifies the table name for CourseProgress
func (CourseProgress) TableName() string {
	return "course_progress"
}

func (p *CourseProgress) HasCompleted(lectureID string) bool {
	return containsString(p.CompletedLectures, lectureID)
}

// MarkCompleted adds lectureID to the completed set, reporting whether it was absent.
func (p *CourseProgress) MarkCompleted(lectureID string) bool {
	var added bool
	p.CompletedLectures, added = addUnique(p.CompletedLectures, lectureID)
	return added
}

// CompletionPercentage is floor(100 * done / total) where done counts only
// completed ids that are still lectures of the course. 0 when the course
// has no lectures or there is no progress.
func CompletionPercentage(course *Course, progress *CourseProgress) int {
	if course == nil {
		return 0
	}
	total := course.TotalLectures()
	if total == 0 || progress == nil {
		return 0
	}

	lectures := course.LectureIDs()
	done := 0
	seen := make(map[string]struct{}, len(progress.CompletedLectures))
	for _, id := range progress.CompletedLectures {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if _, ok := lectures[id]; ok {
			done++
		}
	}
	return done * 100 / total
}

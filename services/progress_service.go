package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dibyendu2004/BrightPath/database"
	"github.com/dibyendu2004/BrightPath/model"
	"github.com/dibyendu2004/BrightPath/utils/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProgressOutcome tells a successful completion apart from a repeat
type ProgressOutcome string

const (
	ProgressRecorded         ProgressOutcome = "recorded"
	ProgressAlreadyCompleted ProgressOutcome = "already_completed"
)

func (o ProgressOutcome) Message() string {
	if o == ProgressAlreadyCompleted {
		return "Lecture already completed"
	}
	return "Progress Updated"
}

// ProgressService tracks completed lectures per user and course
type ProgressService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProgressService(db *gorm.DB, log *logger.Logger) *ProgressService {
	return &ProgressService{db: db, log: log.With("service", "ProgressService")}
}

// MarkLectureCompleted adds lectureID to the user's completed set for the
// course, creating the progress record on first use. Completing a lecture
// twice is a success with ProgressAlreadyCompleted.
func (s *ProgressService) MarkLectureCompleted(ctx context.Context, userID, courseID, lectureID string) (ProgressOutcome, error) {
	course, err := findCourse(ctx, s.db, courseID)
	if err != nil {
		return "", err
	}
	if !course.HasLecture(lectureID) {
		return "", ErrLectureNotFound
	}

	outcome, err := s.markOnce(ctx, course, userID, lectureID)
	if database.IsDuplicateKey(err) {
		// lost the race to create the record; it exists now
		outcome, err = s.markOnce(ctx, course, userID, lectureID)
	}
	if err != nil {
		return "", upstreamError("Failed to update progress", err)
	}
	return outcome, nil
}

func (s *ProgressService) markOnce(ctx context.Context, course *model.Course, userID, lectureID string) (ProgressOutcome, error) {
	var outcome ProgressOutcome

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var progress model.CourseProgress
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ? AND course_id = ?", userID, course.ID).
			First(&progress).Error

		if errors.Is(err, gorm.ErrRecordNotFound) {
			progress = model.CourseProgress{
				ID:                uuid.New().String(),
				UserID:            userID,
				CourseID:          course.ID,
				CompletedLectures: []string{lectureID},
			}
			progress.IsCompleted = model.CompletionPercentage(course, &progress) == 100
			if err := tx.Create(&progress).Error; err != nil {
				return fmt.Errorf("failed to create progress: %w", err)
			}
			outcome = ProgressRecorded
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to load progress: %w", err)
		}

		if !progress.MarkCompleted(lectureID) {
			outcome = ProgressAlreadyCompleted
			return nil
		}
		err = tx.Model(&progress).Updates(map[string]interface{}{
			"completed_lectures": progress.CompletedLectures,
			"is_completed":       model.CompletionPercentage(course, &progress) == 100,
		}).Error
		if err != nil {
			return fmt.Errorf("failed to update progress: %w", err)
		}
		outcome = ProgressRecorded
		return nil
	})
	return outcome, err
}

// GetProgress returns the user's progress for the course, or nil when the
// user has not completed anything yet.
func (s *ProgressService) GetProgress(ctx context.Context, userID, courseID string) (*model.CourseProgress, error) {
	var progress model.CourseProgress
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		First(&progress).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, upstreamError("Failed to load progress", fmt.Errorf("failed to find progress: %w", err))
	}
	return &progress, nil
}

// RefreshCompletionFlags re-derives isCompleted for every progress record
// against the current course content and returns how many changed.
func (s *ProgressService) RefreshCompletionFlags(ctx context.Context) (int, error) {
	db := s.db.WithContext(ctx)

	var courses []model.Course
	if err := db.Select("id", "content").Find(&courses).Error; err != nil {
		return 0, fmt.Errorf("failed to load courses: %w", err)
	}
	byID := make(map[string]*model.Course, len(courses))
	for i := range courses {
		byID[courses[i].ID] = &courses[i]
	}

	type flagChange struct {
		id        string
		completed bool
	}
	var changes []flagChange

	var batch []model.CourseProgress
	err := db.Model(&model.CourseProgress{}).FindInBatches(&batch, 200, func(_ *gorm.DB, _ int) error {
		for i := range batch {
			p := &batch[i]
			completed := model.CompletionPercentage(byID[p.CourseID], p) == 100
			if completed != p.IsCompleted {
				changes = append(changes, flagChange{id: p.ID, completed: completed})
			}
		}
		return nil
	}).Error
	if err != nil {
		return 0, fmt.Errorf("failed to scan progress: %w", err)
	}

	for _, c := range changes {
		if err := db.Model(&model.CourseProgress{}).Where("id = ?", c.id).Update("is_completed", c.completed).Error; err != nil {
			return 0, fmt.Errorf("failed to update progress %s: %w", c.id, err)
		}
	}
	return len(changes), nil
}

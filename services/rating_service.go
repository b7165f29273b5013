package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dibyendu2004/BrightPath/model"
	"github.com/dibyendu2004/BrightPath/utils/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RatingService handles course ratings
type RatingService struct {
	db      *gorm.DB
	catalog *CatalogService
	log     *logger.Logger
}

func NewRatingService(db *gorm.DB, catalog *CatalogService, log *logger.Logger) *RatingService {
	return &RatingService{db: db, catalog: catalog, log: log.With("service", "RatingService")}
}

// Rate sets the user's rating for an enrolled course, replacing any earlier
// one, and mirrors it into the user's rating history.
func (s *RatingService) Rate(ctx context.Context, userID, courseID string, value int) error {
	if value < model.MinRating || value > model.MaxRating {
		return ErrInvalidRating
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := lockUser(tx, userID)
		if err != nil {
			return err
		}

		var course model.Course
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&course, "id = ?", courseID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCourseNotFound
			}
			return upstreamError("Failed to load course", fmt.Errorf("failed to lock course %s: %w", courseID, err))
		}

		// the course's student set is authoritative for rating rights
		if !course.HasStudent(userID) {
			return ErrNotEnrolled
		}

		course.UpsertRating(userID, value)
		if err := tx.Model(&course).Update("ratings", course.Ratings).Error; err != nil {
			return upstreamError("Failed to save rating", fmt.Errorf("failed to update course ratings: %w", err))
		}

		user.UpsertRatingHistory(courseID, value)
		if err := tx.Model(user).Update("course_ratings", user.CourseRatings).Error; err != nil {
			return upstreamError("Failed to save rating", fmt.Errorf("failed to update rating history: %w", err))
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.catalog.InvalidateCourse(ctx, courseID)
	return nil
}

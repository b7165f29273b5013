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

// EnrollmentService records purchases and keeps the user-side and
// course-side enrollment sets in step with the purchase ledger.
type EnrollmentService struct {
	db      *gorm.DB
	catalog *CatalogService
	log     *logger.Logger
}

func NewEnrollmentService(db *gorm.DB, catalog *CatalogService, log *logger.Logger) *EnrollmentService {
	return &EnrollmentService{
		db:      db,
		catalog: catalog,
		log:     log.With("service", "EnrollmentService"),
	}
}

// Purchase enrolls userID in a published course. The enrolled sets and the
// ledger entry are written in one transaction holding row locks on the user
// and the course.
func (s *EnrollmentService) Purchase(ctx context.Context, userID, courseID string) (*model.Purchase, error) {
	var purchase *model.Purchase

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := lockUser(tx, userID)
		if err != nil {
			return err
		}

		var course model.Course
		err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND is_published = ?", courseID, true).
			First(&course).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCourseNotFound
			}
			return upstreamError("Failed to load course", fmt.Errorf("failed to lock course %s: %w", courseID, err))
		}

		if user.IsEnrolled(courseID) {
			return ErrAlreadyEnrolled
		}
		if course.EducatorID == userID {
			return ErrSelfEnrollmentForbidden
		}

		user.AddEnrolledCourse(courseID)
		course.AddStudent(userID)

		if err := tx.Model(user).Update("enrolled_courses", user.EnrolledCourses).Error; err != nil {
			return upstreamError("Failed to record enrollment", fmt.Errorf("failed to update user enrollments: %w", err))
		}
		if err := tx.Model(&course).Update("enrolled_students", course.EnrolledStudents).Error; err != nil {
			return upstreamError("Failed to record enrollment", fmt.Errorf("failed to update course enrollments: %w", err))
		}

		purchase = &model.Purchase{
			ID:       uuid.New().String(),
			UserID:   userID,
			CourseID: courseID,
			Amount:   course.EffectivePrice(),
			Status:   model.PurchaseStatusCompleted,
		}
		if err := tx.Create(purchase).Error; err != nil {
			if database.IsDuplicateKey(err) {
				return ErrAlreadyEnrolled
			}
			return upstreamError("Failed to record purchase", fmt.Errorf("failed to create purchase: %w", err))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Course purchased", "user_id", userID, "course_id", courseID, "amount", purchase.Amount)
	s.catalog.InvalidateCourse(ctx, courseID)
	return purchase, nil
}

// ReconcileReport summarizes one ReconcileEnrollments run
type ReconcileReport struct {
	UsersRepaired    int `json:"users_repaired"`
	CoursesRepaired  int `json:"courses_repaired"`
	MissingPurchases int `json:"missing_purchases"`
}

type enrollmentPair struct {
	userID   string
	courseID string
}

// ReconcileEnrollments makes the user-side and course-side enrollment sets
// agree by adding whichever side is missing. Enrollments without a ledger
// entry are reported, never invented.
func (s *EnrollmentService) ReconcileEnrollments(ctx context.Context) (*ReconcileReport, error) {
	db := s.db.WithContext(ctx)

	var users []model.User
	if err := db.Select("id", "enrolled_courses").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}
	var courses []model.Course
	if err := db.Select("id", "enrolled_students").Find(&courses).Error; err != nil {
		return nil, fmt.Errorf("failed to load courses: %w", err)
	}
	var purchases []model.Purchase
	if err := db.Select("user_id", "course_id").Where("status = ?", model.PurchaseStatusCompleted).Find(&purchases).Error; err != nil {
		return nil, fmt.Errorf("failed to load purchases: %w", err)
	}

	userByID := make(map[string]*model.User, len(users))
	for i := range users {
		userByID[users[i].ID] = &users[i]
	}
	courseByID := make(map[string]*model.Course, len(courses))
	for i := range courses {
		courseByID[courses[i].ID] = &courses[i]
	}

	pairs := make(map[enrollmentPair]bool)
	missingOnCourse := make(map[string][]string)
	missingOnUser := make(map[string][]string)

	for _, u := range users {
		for _, courseID := range u.EnrolledCourses {
			pairs[enrollmentPair{u.ID, courseID}] = true
			if c, ok := courseByID[courseID]; ok && !c.HasStudent(u.ID) {
				missingOnCourse[courseID] = append(missingOnCourse[courseID], u.ID)
			}
		}
	}
	for _, c := range courses {
		for _, userID := range c.EnrolledStudents {
			pairs[enrollmentPair{userID, c.ID}] = true
			if u, ok := userByID[userID]; ok && !u.IsEnrolled(c.ID) {
				missingOnUser[userID] = append(missingOnUser[userID], c.ID)
			}
		}
	}

	report := &ReconcileReport{}
	for courseID, userIDs := range missingOnCourse {
		if err := s.addStudents(ctx, courseID, userIDs); err != nil {
			return report, err
		}
		report.CoursesRepaired++
	}
	for userID, courseIDs := range missingOnUser {
		if err := s.addCourses(ctx, userID, courseIDs); err != nil {
			return report, err
		}
		report.UsersRepaired++
	}

	purchased := make(map[enrollmentPair]bool, len(purchases))
	for _, p := range purchases {
		purchased[enrollmentPair{p.UserID, p.CourseID}] = true
	}
	for pair := range pairs {
		if !purchased[pair] {
			report.MissingPurchases++
			s.log.Warn("Enrollment has no purchase record", "user_id", pair.userID, "course_id", pair.courseID)
		}
	}

	for courseID := range missingOnCourse {
		s.catalog.InvalidateCourse(ctx, courseID)
	}
	return report, nil
}

func (s *EnrollmentService) addStudents(ctx context.Context, courseID string, userIDs []string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var course model.Course
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&course, "id = ?", courseID).Error; err != nil {
			return fmt.Errorf("failed to lock course %s: %w", courseID, err)
		}
		changed := false
		for _, id := range userIDs {
			changed = course.AddStudent(id) || changed
		}
		if !changed {
			return nil
		}
		return tx.Model(&course).Update("enrolled_students", course.EnrolledStudents).Error
	})
}

func (s *EnrollmentService) addCourses(ctx context.Context, userID string, courseIDs []string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := lockUser(tx, userID)
		if err != nil {
			return err
		}
		changed := false
		for _, id := range courseIDs {
			changed = user.AddEnrolledCourse(id) || changed
		}
		if !changed {
			return nil
		}
		return tx.Model(user).Update("enrolled_courses", user.EnrolledCourses).Error
	})
}

// lockUser loads a user row FOR UPDATE inside tx
func lockUser(tx *gorm.DB, userID string) (*model.User, error) {
	var user model.User
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, upstreamError("Failed to load user", fmt.Errorf("failed to lock user %s: %w", userID, err))
	}
	return &user, nil
}

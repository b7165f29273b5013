package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dibyendu2004/BrightPath/model"
	"github.com/dibyendu2004/BrightPath/utils/logger"
	"github.com/dibyendu2004/BrightPath/utils/validation"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Identity provider event types
const (
	EventUserCreated = "user.created"
	EventUserUpdated = "user.updated"
	EventUserDeleted = "user.deleted"
)

// SyncUserRequest is the profile a client sends on first login
type SyncUserRequest struct {
	ID       string `json:"_id" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,max=200"`
	ImageURL string `json:"imageUrl" validate:"omitempty,url"`
}

// IdentityEvent is a user lifecycle webhook from the identity provider
type IdentityEvent struct {
	Type string            `json:"type"`
	Data IdentityEventData `json:"data"`
}

type IdentityEventData struct {
	ID             string                 `json:"id"`
	EmailAddresses []IdentityEmailAddress `json:"email_addresses"`
	FirstName      string                 `json:"first_name"`
	LastName       string                 `json:"last_name"`
	ImageURL       string                 `json:"image_url"`
	PublicMetadata map[string]interface{} `json:"public_metadata"`
}

type IdentityEmailAddress struct {
	EmailAddress string `json:"email_address"`
}

// FullName joins the non-empty name parts
func (d IdentityEventData) FullName() string {
	parts := make([]string, 0, 2)
	for _, p := range []string{d.FirstName, d.LastName} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// Role returns the role carried in public metadata, or "" when absent
func (d IdentityEventData) Role() string {
	if role, ok := d.PublicMetadata["role"].(string); ok {
		switch role {
		case model.RoleEducator, model.RoleStudent:
			return role
		}
	}
	return ""
}

// EnrolledCourseView is an enrolled course with the student's metrics
type EnrolledCourseView struct {
	model.Course
	Educator             *EducatorSummary `json:"educator"`
	TotalLectures        int              `json:"totalLectures"`
	TotalDuration        int              `json:"totalDuration"`
	CompletionPercentage int              `json:"completionPercentage"`
	AverageRating        float64          `json:"averageRating"`
}

// UserService manages profiles mirrored from the identity provider
type UserService struct {
	db        *gorm.DB
	catalog   *CatalogService
	validator *validation.Validator
	log       *logger.Logger
}

func NewUserService(db *gorm.DB, catalog *CatalogService, log *logger.Logger) *UserService {
	return &UserService{
		db:        db,
		catalog:   catalog,
		validator: validation.NewValidator(),
		log:       log.With("service", "UserService"),
	}
}

// GetUser returns the stored profile
func (s *UserService) GetUser(ctx context.Context, userID string) (*model.User, error) {
	var user model.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, upstreamError("Failed to load user", fmt.Errorf("failed to find user %s: %w", userID, err))
	}
	return &user, nil
}

// SyncUser creates the authenticated user's profile or refreshes its
// name, email and image. The role of an existing user is never changed.
func (s *UserService) SyncUser(ctx context.Context, authUserID string, req SyncUserRequest) (*model.User, error) {
	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, validationError("%s", validation.Summary(err))
	}
	if req.ID != authUserID {
		return nil, ErrIdentityMismatch
	}

	profile := model.User{
		ID:       req.ID,
		Name:     validation.SanitizeString(req.Name),
		Email:    validation.SanitizeString(req.Email),
		ImageURL: req.ImageURL,
		Role:     model.RoleStudent,
	}
	if err := s.upsertProfile(ctx, &profile, false); err != nil {
		return nil, err
	}
	return s.GetUser(ctx, authUserID)
}

// EnrolledCourses returns the user's enrolled courses with progress metrics
func (s *UserService) EnrolledCourses(ctx context.Context, userID string) ([]EnrolledCourseView, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(user.EnrolledCourses) == 0 {
		return []EnrolledCourseView{}, nil
	}

	db := s.db.WithContext(ctx)
	var courses []model.Course
	if err := db.Where("id IN ?", []string(user.EnrolledCourses)).Find(&courses).Error; err != nil {
		return nil, upstreamError("Failed to load courses", fmt.Errorf("failed to load enrolled courses: %w", err))
	}
	var progress []model.CourseProgress
	if err := db.Where("user_id = ?", userID).Find(&progress).Error; err != nil {
		return nil, upstreamError("Failed to load progress", fmt.Errorf("failed to load progress: %w", err))
	}
	educators, err := s.catalog.loadEducators(ctx, courses)
	if err != nil {
		return nil, err
	}

	courseByID := make(map[string]*model.Course, len(courses))
	for i := range courses {
		courseByID[courses[i].ID] = &courses[i]
	}
	progressByCourse := make(map[string]*model.CourseProgress, len(progress))
	for i := range progress {
		progressByCourse[progress[i].CourseID] = &progress[i]
	}

	views := make([]EnrolledCourseView, 0, len(courses))
	for _, id := range user.EnrolledCourses {
		c, ok := courseByID[id]
		if !ok {
			continue
		}
		c.SortContent()
		view := EnrolledCourseView{
			Course:               *c,
			Educator:             educators[c.EducatorID],
			TotalLectures:        c.TotalLectures(),
			TotalDuration:        c.TotalDurationMinutes(),
			CompletionPercentage: model.CompletionPercentage(c, progressByCourse[id]),
			AverageRating:        c.AverageRating(),
		}
		view.EnrolledStudents = nil
		views = append(views, view)
	}
	return views, nil
}

// PromoteToEducator gives the user the educator role
func (s *UserService) PromoteToEducator(ctx context.Context, userID string) (*model.User, error) {
	result := s.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", userID).Update("role", model.RoleEducator)
	if result.Error != nil {
		return nil, upstreamError("Failed to update role", fmt.Errorf("failed to promote user %s: %w", userID, result.Error))
	}
	if result.RowsAffected == 0 {
		return nil, ErrUserNotFound
	}
	s.log.Info("User promoted to educator", "user_id", userID)
	return s.GetUser(ctx, userID)
}

// ApplyIdentityEvent mirrors a user lifecycle event into the profile store.
// Unknown event types are ignored.
func (s *UserService) ApplyIdentityEvent(ctx context.Context, event IdentityEvent) error {
	data := event.Data
	switch event.Type {
	case EventUserCreated, EventUserUpdated:
		if data.ID == "" {
			return validationError("event data has no user id")
		}
		email := ""
		if len(data.EmailAddresses) > 0 {
			email = data.EmailAddresses[0].EmailAddress
		}
		profile := model.User{
			ID:       data.ID,
			Name:     data.FullName(),
			Email:    email,
			ImageURL: data.ImageURL,
			Role:     data.Role(),
		}
		explicitRole := profile.Role != ""
		if !explicitRole {
			profile.Role = model.RoleStudent
		}
		if err := s.upsertProfile(ctx, &profile, explicitRole); err != nil {
			return err
		}
		s.log.Info("Identity event applied", "type", event.Type, "user_id", data.ID)

	case EventUserDeleted:
		if data.ID == "" {
			return validationError("event data has no user id")
		}
		if err := s.db.WithContext(ctx).Delete(&model.User{}, "id = ?", data.ID).Error; err != nil {
			return upstreamError("Failed to delete user", fmt.Errorf("failed to delete user %s: %w", data.ID, err))
		}
		s.log.Info("Identity event applied", "type", event.Type, "user_id", data.ID)

	default:
		s.log.Debug("Ignoring identity event", "type", event.Type)
	}
	return nil
}

// upsertProfile inserts the user or updates its profile fields. The role is
// only overwritten on conflict when overwriteRole is set.
func (s *UserService) upsertProfile(ctx context.Context, profile *model.User, overwriteRole bool) error {
	profile.EnrolledCourses = []string{}
	profile.CourseRatings = []model.UserCourseRating{}

	columns := []string{"name", "email", "image_url", "updated_at"}
	if overwriteRole {
		columns = append(columns, "role")
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns(columns),
	}).Create(profile).Error
	if err != nil {
		return upstreamError("Failed to save user", fmt.Errorf("failed to upsert user %s: %w", profile.ID, err))
	}
	return nil
}

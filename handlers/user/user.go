package user

import (
	"github.com/dibyendu2004/BrightPath/services"
	"github.com/dibyendu2004/BrightPath/utils/middleware"
	"github.com/dibyendu2004/BrightPath/utils/response"
	"github.com/dibyendu2004/BrightPath/utils/validation"
	"github.com/gofiber/fiber/v2"
)

// UserHandler handles the student side of the API
type UserHandler struct {
	users      *services.UserService
	enrollment *services.EnrollmentService
	progress   *services.ProgressService
	rating     *services.RatingService
	validator  *validation.Validator
}

// NewUserHandler creates a new user handler
func NewUserHandler(users *services.UserService, enrollment *services.EnrollmentService, progress *services.ProgressService, rating *services.RatingService) *UserHandler {
	return &UserHandler{
		users:      users,
		enrollment: enrollment,
		progress:   progress,
		rating:     rating,
		validator:  validation.NewValidator(),
	}
}

type PurchaseRequest struct {
	CourseID string `json:"courseId" validate:"required"`
}

type UpdateProgressRequest struct {
	CourseID  string `json:"courseId" validate:"required"`
	LectureID string `json:"lectureId" validate:"required"`
}

type RatingRequest struct {
	CourseID string `json:"courseId" validate:"required"`
	Rating   int    `json:"rating"`
}

// GetUserData handles GET /api/user/data
func (h *UserHandler) GetUserData(c *fiber.Ctx) error {
	user, err := h.users.GetUser(c.UserContext(), middleware.GetUserID(c))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, response.Payload{"user": user})
}

// SyncUser handles POST /api/user/sync
func (h *UserHandler) SyncUser(c *fiber.Ctx) error {
	var req services.SyncUserRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "")
	}

	user, err := h.users.SyncUser(c.UserContext(), middleware.GetUserID(c), req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, response.Payload{"user": user})
}

// EnrolledCourses handles GET /api/user/enrolled-courses
func (h *UserHandler) EnrolledCourses(c *fiber.Ctx) error {
	courses, err := h.users.EnrolledCourses(c.UserContext(), middleware.GetUserID(c))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, response.Payload{"enrolledCourses": courses})
}

// Purchase handles POST /api/user/purchase
func (h *UserHandler) Purchase(c *fiber.Ctx) error {
	var req PurchaseRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	purchase, err := h.enrollment.Purchase(c.UserContext(), middleware.GetUserID(c), req.CourseID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessWithMessage(c, "Course Purchased Successfully", response.Payload{"purchase": purchase})
}

// UpdateProgress handles POST /api/user/update-progress
func (h *UserHandler) UpdateProgress(c *fiber.Ctx) error {
	var req UpdateProgressRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	outcome, err := h.progress.MarkLectureCompleted(c.UserContext(), middleware.GetUserID(c), req.CourseID, req.LectureID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessWithMessage(c, outcome.Message(), nil)
}

// GetProgress handles GET /api/user/progress/:courseId
func (h *UserHandler) GetProgress(c *fiber.Ctx) error {
	progress, err := h.progress.GetProgress(c.UserContext(), middleware.GetUserID(c), c.Params("courseId"))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, response.Payload{"progress": progress})
}

// AddRating handles POST /api/user/rating
func (h *UserHandler) AddRating(c *fiber.Ctx) error {
	var req RatingRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.FromError(c, services.ErrInvalidRating)
	}

	if err := h.rating.Rate(c.UserContext(), middleware.GetUserID(c), req.CourseID, req.Rating); err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessWithMessage(c, "Rating added", nil)
}

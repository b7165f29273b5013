package educator

import (
	"encoding/json"
	"io"

	"github.com/dibyendu2004/BrightPath/services"
	"github.com/dibyendu2004/BrightPath/utils/middleware"
	"github.com/dibyendu2004/BrightPath/utils/response"
	"github.com/gofiber/fiber/v2"
)

const maxThumbnailBytes = 5 << 20

// EducatorHandler handles course authoring and sales reporting
type EducatorHandler struct {
	catalog  *services.CatalogService
	educator *services.EducatorService
	users    *services.UserService
}

// NewEducatorHandler creates a new educator handler
func NewEducatorHandler(catalog *services.CatalogService, educator *services.EducatorService, users *services.UserService) *EducatorHandler {
	return &EducatorHandler{catalog: catalog, educator: educator, users: users}
}

// UpdateRole handles POST /api/educator/update-role
func (h *EducatorHandler) UpdateRole(c *fiber.Ctx) error {
	if _, err := h.users.PromoteToEducator(c.UserContext(), middleware.GetUserID(c)); err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessWithMessage(c, "You can publish a course now", nil)
}

// AddCourse handles POST /api/educator/add-course (multipart: courseData, image)
func (h *EducatorHandler) AddCourse(c *fiber.Ctx) error {
	var thumbnail *services.Upload
	if file, err := c.FormFile("image"); err == nil {
		if file.Size > maxThumbnailBytes {
			return response.Failure(c, "Thumbnail must be 5MB or smaller", response.CodeValidation)
		}
		f, err := file.Open()
		if err != nil {
			return response.BadRequest(c, "Unable to read thumbnail")
		}
		data, err := io.ReadAll(io.LimitReader(f, maxThumbnailBytes+1))
		f.Close()
		if err != nil {
			return response.BadRequest(c, "Unable to read thumbnail")
		}
		thumbnail = &services.Upload{Filename: file.Filename, Data: data}
	}

	var input services.CourseInput
	if err := json.Unmarshal([]byte(c.FormValue("courseData")), &input); err != nil {
		if thumbnail == nil {
			return response.FromError(c, services.ErrThumbnailRequired)
		}
		return response.BadRequest(c, "courseData must be valid JSON")
	}

	if _, err := h.catalog.CreateCourse(c.UserContext(), middleware.GetUserID(c), input, thumbnail); err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessWithMessage(c, "Course Added", nil)
}

// ListCourses handles GET /api/educator/courses
func (h *EducatorHandler) ListCourses(c *fiber.Ctx) error {
	courses, err := h.catalog.ListByEducator(c.UserContext(), middleware.GetUserID(c))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, response.Payload{"courses": courses})
}

// DashboardData handles GET /api/educator/dashboard-data
func (h *EducatorHandler) DashboardData(c *fiber.Ctx) error {
	data, err := h.educator.DashboardData(c.UserContext(), middleware.GetUserID(c))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, response.Payload{"dashboardData": data})
}

// EnrolledStudents handles GET /api/educator/enrolled-students
func (h *EducatorHandler) EnrolledStudents(c *fiber.Ctx) error {
	entries, err := h.educator.EnrolledStudents(c.UserContext(), middleware.GetUserID(c))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, response.Payload{"enrolledStudents": entries})
}

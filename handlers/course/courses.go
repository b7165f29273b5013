package course

import (
	"github.com/dibyendu2004/BrightPath/services"
	"github.com/dibyendu2004/BrightPath/utils/response"
	"github.com/gofiber/fiber/v2"
)

// CourseHandler serves the public catalog
type CourseHandler struct {
	catalog *services.CatalogService
}

// NewCourseHandler creates a new course handler
func NewCourseHandler(catalog *services.CatalogService) *CourseHandler {
	return &CourseHandler{catalog: catalog}
}

// ListCourses handles GET /api/course/all
func (h *CourseHandler) ListCourses(c *fiber.Ctx) error {
	courses, err := h.catalog.ListPublished(c.UserContext())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, response.Payload{"courses": courses})
}

// GetCourse handles GET /api/course/:id
func (h *CourseHandler) GetCourse(c *fiber.Ctx) error {
	courseData, err := h.catalog.GetCourse(c.UserContext(), c.Params("id"))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, response.Payload{"courseData": courseData})
}

package router

import (
	"time"

	"github.com/dibyendu2004/BrightPath/database"
	"github.com/dibyendu2004/BrightPath/handlers"
	course_handlers "github.com/dibyendu2004/BrightPath/handlers/course"
	educator_handlers "github.com/dibyendu2004/BrightPath/handlers/educator"
	user_handlers "github.com/dibyendu2004/BrightPath/handlers/user"
	webhook_handlers "github.com/dibyendu2004/BrightPath/handlers/webhook"
	"github.com/dibyendu2004/BrightPath/services"
	"github.com/dibyendu2004/BrightPath/utils"
	"github.com/dibyendu2004/BrightPath/utils/auth"
	"github.com/dibyendu2004/BrightPath/utils/logger"
	"github.com/dibyendu2004/BrightPath/utils/middleware"
	"github.com/dibyendu2004/BrightPath/utils/webhook"
	"github.com/gofiber/fiber/v2"
)

// Config carries what the routes need besides the services
type Config struct {
	AuthMode          string
	JWTManager        *auth.JWTManager // jwt mode only
	WebhookVerifier   *webhook.Verifier
	AllowedOrigins    string
	RateLimitRequests int
	Log               *logger.Logger
}

func SetupRoutes(app *fiber.App, store database.Storage, svc *services.Services, cfg Config) {
	middleware.SetupSecurity(app, middleware.SecurityConfig{
		AllowedOrigins:    cfg.AllowedOrigins,
		RateLimitRequests: cfg.RateLimitRequests,
		RateLimitWindow:   time.Minute,
	}, cfg.Log)

	identity := middleware.NewIdentityMiddleware(cfg.AuthMode, cfg.JWTManager)

	courseHandler := course_handlers.NewCourseHandler(svc.Catalog)
	educatorHandler := educator_handlers.NewEducatorHandler(svc.Catalog, svc.Educator, svc.Users)
	userHandler := user_handlers.NewUserHandler(svc.Users, svc.Enrollment, svc.Progress, svc.Rating)
	clerkHandler := webhook_handlers.NewClerkHandler(cfg.WebhookVerifier, svc.Users, cfg.Log)

	app.Get("/", handlers.HandleRoot)
	app.Get("/ping", utils.MakeHTTPHandleFunc(handlers.HandleCheckHealth, store))

	api := app.Group("/api")

	// Public catalog
	course := api.Group("/course")
	course.Get("/all", courseHandler.ListCourses)
	course.Get("/:id", courseHandler.GetCourse)

	// Educator
	educator := api.Group("/educator", identity.Required())
	educator.Post("/update-role", educatorHandler.UpdateRole)
	educator.Post("/add-course", educatorHandler.AddCourse)
	educator.Get("/courses", educatorHandler.ListCourses)
	educator.Get("/dashboard-data", educatorHandler.DashboardData)
	educator.Get("/enrolled-students", educatorHandler.EnrolledStudents)

	// Student
	user := api.Group("/user", identity.Required())
	user.Get("/data", userHandler.GetUserData)
	user.Post("/sync", userHandler.SyncUser)
	user.Get("/enrolled-courses", userHandler.EnrolledCourses)
	user.Post("/purchase", userHandler.Purchase)
	user.Post("/update-progress", userHandler.UpdateProgress)
	user.Get("/progress/:courseId", userHandler.GetProgress)
	user.Post("/rating", userHandler.AddRating)

	// Identity provider webhooks (signature checked in the handler)
	api.Post("/webhooks/clerk", clerkHandler.HandleEvent)
}

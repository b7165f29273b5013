package api

import (
	"errors"
	"time"

	"github.com/dibyendu2004/BrightPath/utils/logger"
	"github.com/dibyendu2004/BrightPath/utils/response"
	"github.com/gofiber/fiber/v2"
)

const bodyLimit = 8 << 20 // multipart thumbnails

type APIServer struct {
	app           *fiber.App
	listenAddress string
	log           *logger.Logger
}

func NewAPIServer(listenAddress string, log *logger.Logger) *APIServer {
	app := fiber.New(fiber.Config{
		AppName:      "BrightPath API",
		BodyLimit:    bodyLimit,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		ErrorHandler: ErrorHandler(log),
	})
	return &APIServer{
		app:           app,
		listenAddress: listenAddress,
		log:           log,
	}
}

// ErrorHandler renders framework errors (unknown route, oversized body,
// recovered panics) with the standard envelope.
func ErrorHandler(log *logger.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			code := response.CodeBadRequest
			switch fe.Code {
			case fiber.StatusNotFound:
				code = response.CodeNotFound
			case fiber.StatusInternalServerError:
				code = response.CodeInternal
			}
			return response.Error(c, fe.Code, fe.Message, code)
		}

		log.Error("Unhandled error", "path", c.Path(), "error", err)
		return response.Error(c, fiber.StatusInternalServerError, "Internal server error", response.CodeInternal)
	}
}

func (s *APIServer) GetEngine() *fiber.App {
	return s.app
}

func (s *APIServer) Run() error {
	s.log.Info("Starting API Server", "address", s.listenAddress)
	return s.app.Listen(s.listenAddress)
}

// Shutdown stops accepting connections and waits for in-flight requests
func (s *APIServer) Shutdown(timeout time.Duration) error {
	return s.app.ShutdownWithTimeout(timeout)
}

package response

import (
	"errors"

	"github.com/dibyendu2004/BrightPath/utils/validation"
	"github.com/gofiber/fiber/v2"
)

// Error codes carried in the envelope's "code" field
const (
	CodeNotFound     = "NOT_FOUND"
	CodeValidation   = "VALIDATION_ERROR"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeBadRequest   = "BAD_REQUEST"
	CodeInternal     = "INTERNAL_ERROR"
)

// Payload holds the top-level keys merged into a response envelope
type Payload = fiber.Map

// CodedError is implemented by application errors that carry a client
// facing message and a machine-readable code.
type CodedError interface {
	error
	ErrorCode() string
	PublicMessage() string
}

// Envelope builds {success, message?, code?, ...payload}
func Envelope(success bool, message, code string, payload Payload) fiber.Map {
	body := fiber.Map{"success": success}
	for k, v := range payload {
		body[k] = v
	}
	if message != "" {
		body["message"] = message
	}
	if code != "" {
		body["code"] = code
	}
	return body
}

// Success returns a successful response with payload keys at the top level
func Success(c *fiber.Ctx, payload Payload) error {
	return c.Status(fiber.StatusOK).JSON(Envelope(true, "", "", payload))
}

// SuccessWithMessage returns a successful response with a message
func SuccessWithMessage(c *fiber.Ctx, message string, payload Payload) error {
	return c.Status(fiber.StatusOK).JSON(Envelope(true, message, "", payload))
}

// Error returns a failure envelope with an explicit HTTP status
func Error(c *fiber.Ctx, statusCode int, message string, code string) error {
	return c.Status(statusCode).JSON(Envelope(false, message, code, nil))
}

// Failure reports an application outcome. Application failures use HTTP 200
// and are distinguished by success=false and the code.
func Failure(c *fiber.Ctx, message string, code string) error {
	return Error(c, fiber.StatusOK, message, code)
}

// Unauthorized is returned when the identity boundary rejects the request
func Unauthorized(c *fiber.Ctx, message string) error {
	if message == "" {
		message = "Not Authorized"
	}
	return Failure(c, message, CodeUnauthorized)
}

// ValidationError reports malformed input with per-field details
func ValidationError(c *fiber.Ctx, err error) error {
	fields := validation.FormatValidationErrors(err)
	payload := Payload{}
	if len(fields) > 0 {
		payload["errors"] = fields
	}
	return c.Status(fiber.StatusOK).JSON(Envelope(false, validation.Summary(err), CodeValidation, payload))
}

// BadRequest is used for malformed bodies the handler cannot parse
func BadRequest(c *fiber.Ctx, message string) error {
	if message == "" {
		message = "Invalid request body"
	}
	return Failure(c, message, CodeValidation)
}

// InternalServerError hides the cause behind a generic message
func InternalServerError(c *fiber.Ctx, message string) error {
	if message == "" {
		message = "Internal server error"
	}
	return Failure(c, message, CodeInternal)
}

// FromError renders err. Coded application errors keep their message and
// code; anything else becomes INTERNAL_ERROR.
func FromError(c *fiber.Ctx, err error) error {
	var coded CodedError
	if errors.As(err, &coded) {
		return Failure(c, coded.PublicMessage(), coded.ErrorCode())
	}
	return InternalServerError(c, "")
}

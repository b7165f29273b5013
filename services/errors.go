package services

import "fmt"

// ErrorKind classifies a ServiceError. The value doubles as the
// machine-readable code sent to clients.
type ErrorKind string

const (
	KindNotFound      ErrorKind = "NOT_FOUND"
	KindAlreadyExists ErrorKind = "ALREADY_EXISTS"
	KindForbidden     ErrorKind = "FORBIDDEN"
	KindValidation    ErrorKind = "VALIDATION_ERROR"
	KindUpstream      ErrorKind = "UPSTREAM_FAILURE"
	KindUnauthorized  ErrorKind = "UNAUTHORIZED"
)

// ServiceError is the error type returned by every service operation that
// fails for a reason the caller can act on.
type ServiceError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// ErrorCode and PublicMessage let the response package render the error
// without importing services.
func (e *ServiceError) ErrorCode() string {
	return string(e.Kind)
}

func (e *ServiceError) PublicMessage() string {
	return e.Message
}

var (
	ErrCourseNotFound  = &ServiceError{Kind: KindNotFound, Message: "Course Not Found"}
	ErrUserNotFound    = &ServiceError{Kind: KindNotFound, Message: "User Profile not found in database. Please ensure Webhooks are set up or wait a moment."}
	ErrLectureNotFound = &ServiceError{Kind: KindNotFound, Message: "Lecture Not Found"}

	ErrAlreadyEnrolled         = &ServiceError{Kind: KindAlreadyExists, Message: "Course already purchased"}
	ErrSelfEnrollmentForbidden = &ServiceError{Kind: KindForbidden, Message: "Educators cannot purchase their own course"}
	ErrNotEnrolled             = &ServiceError{Kind: KindForbidden, Message: "User has not purchased this course."}
	ErrIdentityMismatch        = &ServiceError{Kind: KindForbidden, Message: "Profile id does not match the authenticated user"}

	ErrInvalidRating     = &ServiceError{Kind: KindValidation, Message: "Invalid Details"}
	ErrThumbnailRequired = &ServiceError{Kind: KindValidation, Message: "Thumbnail not attached"}

	ErrAssetStorageUnavailable = &ServiceError{Kind: KindUpstream, Message: "Asset storage is not configured"}
)

func validationError(format string, args ...interface{}) *ServiceError {
	return &ServiceError{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// upstreamError wraps a failure of the store or the asset host.
func upstreamError(message string, err error) *ServiceError {
	return &ServiceError{Kind: KindUpstream, Message: message, Err: err}
}

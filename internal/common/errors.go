package common

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Extraction and plan errors
var (
	ErrUserInputInvalid = errors.New("user input invalid")
	ErrCancelled        = errors.New("cancelled")
	ErrEmptyResponse    = errors.New("empty response")
	ErrNoJSONFound      = errors.New("no json object found")
	ErrMalformedJSON    = errors.New("malformed json")
	ErrTransport        = errors.New("transport error")
	ErrUnknownPlan      = errors.New("unknown plan")
	ErrNoActivePlan     = errors.New("no active plan")
	ErrSessionChanged   = errors.New("session changed")
)

// Server side errors
var (
	ErrNotFound     = errors.New("resource not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrConflict     = errors.New("conflict")
	ErrInternal     = errors.New("internal error")
	ErrDatabase     = errors.New("database error")
)

// Error codes
const (
	CodeInvalidInput = "INVALID_INPUT"
	CodeCancelled    = "CANCELLED"
	CodeEmpty        = "EMPTY_RESPONSE"
	CodeNoJSON       = "NO_JSON"
	CodeMalformed    = "MALFORMED_JSON"
	CodeTransport    = "TRANSPORT"
	CodeUnknownPlan  = "UNKNOWN_PLAN"
	CodeNoActive     = "NO_ACTIVE_PLAN"
	CodeSession      = "SESSION_CHANGED"
	CodeConfig       = "CONFIG_ERROR"
	CodeAuth         = "AUTH_ERROR"
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// InputError builds a UserInputInvalid error carrying a displayable message.
func InputError(message string) error {
	return NewAppError(CodeInvalidInput, message, ErrUserInputInvalid)
}

// TransportError wraps a network or provider failure with a displayable message.
func TransportError(message string, cause error) error {
	if cause == nil {
		return NewAppError(CodeTransport, message, ErrTransport)
	}
	return NewAppError(CodeTransport, message, fmt.Errorf("%w: %w", ErrTransport, cause))
}

// IsCancelled reports whether err is a cooperative cancellation.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled) || errors.Is(err, context.Canceled)
}

// DisplayMessage returns the text to show to a user for err.
// Cancellation is silent and yields "".
func DisplayMessage(err error) string {
	if err == nil || IsCancelled(err) {
		return ""
	}
	var ae *AppError
	if errors.As(err, &ae) && ae.Message != "" {
		return ae.Message
	}
	return err.Error()
}

// GRPCCode maps the error taxonomy onto gRPC status codes.
func GRPCCode(err error) codes.Code {
	if err == nil {
		return codes.OK
	}
	if s, ok := status.FromError(err); ok && s.Code() != codes.Unknown {
		return s.Code()
	}
	switch {
	case IsCancelled(err):
		return codes.Canceled
	case errors.Is(err, ErrUserInputInvalid), errors.Is(err, ErrNoJSONFound), errors.Is(err, ErrMalformedJSON):
		return codes.InvalidArgument
	case errors.Is(err, ErrUnknownPlan), errors.Is(err, ErrNotFound):
		return codes.NotFound
	case errors.Is(err, ErrNoActivePlan), errors.Is(err, ErrSessionChanged):
		return codes.FailedPrecondition
	case errors.Is(err, ErrUnauthorized):
		return codes.Unauthenticated
	case errors.Is(err, ErrConflict):
		return codes.AlreadyExists
	case errors.Is(err, ErrTransport), errors.Is(err, ErrEmptyResponse):
		return codes.Unavailable
	default:
		return codes.Internal
	}
}

// HTTPStatus maps the error taxonomy onto HTTP status codes.
func HTTPStatus(err error) int {
	switch GRPCCode(err) {
	case codes.OK:
		return http.StatusOK
	case codes.InvalidArgument:
		return http.StatusBadRequest
	case codes.NotFound:
		return http.StatusNotFound
	case codes.FailedPrecondition:
		return http.StatusConflict
	case codes.Unauthenticated:
		return http.StatusUnauthorized
	case codes.AlreadyExists:
		return http.StatusConflict
	case codes.Canceled:
		return 499
	case codes.Unavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// gRPC error helpers
func InvalidArgumentError(message string) error {
	return status.Error(codes.InvalidArgument, message)
}

func NotFoundError(message string) error {
	return status.Error(codes.NotFound, message)
}

func InternalError(message string) error {
	return status.Error(codes.Internal, message)
}

func InvalidArgumentErrorf(format string, args ...any) error {
	return InvalidArgumentError(fmt.Sprintf(format, args...))
}

package domain

import (
	"errors"
	"fmt"
)

type ErrorCode string

const (
	CodeInvalidInput        ErrorCode = "INVALID_INPUT"
	CodePayloadTooLarge     ErrorCode = "PAYLOAD_TOO_LARGE"
	CodeRouteConflict       ErrorCode = "ROUTE_CONFLICT"
	CodeHazmatConflict      ErrorCode = "HAZMAT_CONFLICT"
	CodeTimeWindowConflict  ErrorCode = "TIME_WINDOW_CONFLICT"
	CodeNoFeasibleSolution  ErrorCode = "NO_FEASIBLE_SOLUTION"
	CodeRateLimited         ErrorCode = "RATE_LIMITED"
	CodeInternalServerError ErrorCode = "INTERNAL_SERVER_ERROR"
)

var (
	ErrInvalidInput    = errors.New("invalid input data")
	ErrPayloadTooLarge = errors.New("too many orders")
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// CodeOf maps an error returned by this package to its wire code.
func CodeOf(err error) ErrorCode {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrPayloadTooLarge):
		return CodePayloadTooLarge
	case errors.Is(err, ErrInvalidInput):
		return CodeInvalidInput
	default:
		return CodeInternalServerError
	}
}

type ErrorResponse struct {
	Error   ErrorCode      `json:"error"`
	Message string         `json:"message"`
	Details map[string]any `json:"details"`
}

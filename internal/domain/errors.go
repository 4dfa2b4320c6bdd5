package domain

import (
	"fmt"
)

type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Err        error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) WithError(err error) *AppError {
	return &AppError{
		Code:       e.Code,
		Message:    e.Message,
		StatusCode: e.StatusCode,
		Err:        err,
	}
}

// Pre-defined errors
var (
	ErrInternal = &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    "An unexpected error occurred",
		StatusCode: 500,
	}

	ErrBadRequest = &AppError{
		Code:       "BAD_REQUEST",
		Message:    "Invalid request",
		StatusCode: 400,
	}

	ErrNotFound = &AppError{
		Code:       "NOT_FOUND",
		Message:    "Resource not found",
		StatusCode: 404,
	}

	ErrValidationFailed = &AppError{
		Code:       "VALIDATION_FAILED",
		Message:    "Request validation failed",
		StatusCode: 422,
	}

	// ErrInvalidImage covers upload transport problems (missing part, empty or
	// oversized file). A file that does not decode is not an error: it is
	// answered with the no-match verdict.
	ErrInvalidImage = &AppError{
		Code:       "INVALID_IMAGE",
		Message:    "Missing, empty or oversized image upload",
		StatusCode: 422,
	}

	ErrInvalidArchive = &AppError{
		Code:       "INVALID_ARCHIVE",
		Message:    "Archive could not be extracted",
		StatusCode: 422,
	}

	ErrUnknownMember = &AppError{
		Code:       "UNKNOWN_MEMBER",
		Message:    "Guess does not match any member",
		StatusCode: 422,
	}

	ErrRecognizerUnavailable = &AppError{
		Code:       "RECOGNIZER_UNAVAILABLE",
		Message:    "Face recognizer backend is unavailable",
		StatusCode: 503,
	}

	ErrRateLimitExceeded = &AppError{
		Code:       "RATE_LIMIT_EXCEEDED",
		Message:    "Too many requests, slow down",
		StatusCode: 429,
	}

	ErrHistoryDisabled = &AppError{
		Code:       "HISTORY_DISABLED",
		Message:    "Round history is not configured",
		StatusCode: 404,
	}
)

package domain

import (
	"errors"
	"fmt"
)

// GenericFailureMessage is shown to the user when the AI service gives no usable message
const GenericFailureMessage = "Failed to log food. Please try again."

var (
	// ErrEmptyInput is returned when the submitted food description is blank
	ErrEmptyInput = errors.New("food description is empty")

	// ErrRequestInFlight is returned when a food description is submitted while another is pending
	ErrRequestInFlight = errors.New("a food log request is already in progress")

	// ErrServiceFailure is returned when the AI service request fails or returns malformed data
	ErrServiceFailure = errors.New("AI service request failed")

	// ErrInvalidResponse is returned when the AI service response is missing required fields
	ErrInvalidResponse = errors.New("invalid response from AI service")

	// ErrMealNotFound is returned when a meal index is out of range
	ErrMealNotFound = errors.New("meal not found")

	// ErrIngredientNotFound is returned when an ingredient index is out of range
	ErrIngredientNotFound = errors.New("ingredient not found")

	// ErrMeasureNotFound is returned when a food measure index is out of range
	ErrMeasureNotFound = errors.New("food measure not found")

	// ErrRateLimited is returned when rate limit is exceeded
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrCacheUnavailable is returned when cache service is unavailable
	ErrCacheUnavailable = errors.New("cache service unavailable")
)

// ServiceError carries the message the AI service reported for a failed request
type ServiceError struct {
	StatusCode int
	Message    string
}

func (e *ServiceError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: status %d", ErrServiceFailure, e.StatusCode)
	}
	return fmt.Sprintf("%s: status %d: %s", ErrServiceFailure, e.StatusCode, e.Message)
}

// Unwrap lets errors.Is match ServiceError against ErrServiceFailure
func (e *ServiceError) Unwrap() error {
	return ErrServiceFailure
}

// UserMessage returns the text to show the user for a failed food log request.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var svcErr *ServiceError
	if errors.As(err, &svcErr) && svcErr.Message != "" {
		return svcErr.Message
	}

	switch {
	case errors.Is(err, ErrEmptyInput):
		return "Please describe what you ate."
	case errors.Is(err, ErrRequestInFlight):
		return "Still working on your last entry."
	}

	return GenericFailureMessage
}

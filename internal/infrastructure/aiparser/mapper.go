package aiparser

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/foodlog/backend/internal/domain"
)

// parseRequest is the body sent to the AI service
type parseRequest struct {
	Text string `json:"text"`
}

// errorResponse is the error body the AI service returns on failure.
// "error" may be a plain string or an object with a message.
type errorResponse struct {
	Error   json.RawMessage `json:"error"`
	Message string          `json:"message"`
}

// decodeLogResponse converts a successful AI service body into the domain payload
func decodeLogResponse(body []byte) (*domain.LogResponse, error) {
	var resp domain.LogResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		if errors.Is(err, domain.ErrInvalidResponse) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: malformed JSON: %v", domain.ErrServiceFailure, err)
	}
	return &resp, nil
}

// newServiceError builds a ServiceError from a non-success response,
// keeping the service's own message when it sent one
func newServiceError(status int, body []byte) *domain.ServiceError {
	return &domain.ServiceError{
		StatusCode: status,
		Message:    extractErrorMessage(body),
	}
}

func extractErrorMessage(body []byte) string {
	var er errorResponse
	if err := json.Unmarshal(body, &er); err != nil {
		return ""
	}

	if len(er.Error) > 0 {
		var msg string
		if err := json.Unmarshal(er.Error, &msg); err == nil {
			return strings.TrimSpace(msg)
		}
		var nested struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(er.Error, &nested); err == nil && nested.Message != "" {
			return strings.TrimSpace(nested.Message)
		}
	}

	return strings.TrimSpace(er.Message)
}

package client

import (
	"errors"
	"testing"
)

func TestAPIError_Error(t *testing.T) {
	tests := []struct {
		name     string
		apiError *APIError
		expected string
	}{
		{
			name: "status with body",
			apiError: &APIError{
				StatusCode: 404,
				ErrorClass: ErrorClassClient,
				Message:    "404 Not Found",
				Body:       `{"message":"Subscriber not found"}`,
			},
			expected: `CRM client error (status 404): 404 Not Found: {"message":"Subscriber not found"}`,
		},
		{
			name: "status without body",
			apiError: &APIError{
				StatusCode: 500,
				ErrorClass: ErrorClassServer,
				Message:    "500 Internal Server Error",
			},
			expected: "CRM server error (status 500): 500 Internal Server Error",
		},
		{
			name: "network error without status",
			apiError: &APIError{
				ErrorClass: ErrorClassNetwork,
				Message:    "GET tags failed",
				Err:        errors.New("connection refused"),
			},
			expected: "CRM network error: GET tags failed: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.apiError.Error()
			if result != tt.expected {
				t.Errorf("Error() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestAPIError_Unwrap(t *testing.T) {
	wrappedErr := errors.New("wrapped error")
	apiError := &APIError{
		ErrorClass: ErrorClassNetwork,
		Message:    "request failed",
		Err:        wrappedErr,
	}

	if apiError.Unwrap() != wrappedErr {
		t.Errorf("Unwrap() = %v, want %v", apiError.Unwrap(), wrappedErr)
	}

	if !errors.Is(apiError, wrappedErr) {
		t.Error("errors.Is should work with wrapped error")
	}
}

func TestAPIError_UnwrapNil(t *testing.T) {
	apiError := &APIError{
		StatusCode: 404,
		ErrorClass: ErrorClassClient,
		Message:    "not found",
	}

	if apiError.Unwrap() != nil {
		t.Errorf("Unwrap() = %v, want nil", apiError.Unwrap())
	}
}

func TestIsNotFound(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "404 api error",
			err:      &APIError{StatusCode: 404, ErrorClass: ErrorClassClient, Message: "not found"},
			expected: true,
		},
		{
			name:     "other client error",
			err:      &APIError{StatusCode: 403, ErrorClass: ErrorClassClient, Message: "forbidden"},
			expected: false,
		},
		{
			name:     "network error",
			err:      &APIError{ErrorClass: ErrorClassNetwork, Message: "refused"},
			expected: false,
		},
		{
			name:     "plain error",
			err:      errors.New("boom"),
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNotFound(tt.err); got != tt.expected {
				t.Errorf("IsNotFound() = %v, want %v", got, tt.expected)
			}
		})
	}
}

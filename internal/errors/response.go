package errors

import (
	"net/http"
)

// ErrorResponse is the JSON body returned for failed API calls.
type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   ErrorDetail `json:"error"`
}

// ErrorDetail describes a failure to API consumers.
type ErrorDetail struct {
	Display       string         `json:"message"`
	InternalError string         `json:"internal_error,omitempty"`
	Details       map[string]any `json:"details,omitempty"`
}

// NewErrorResponse renders err for the API.
func NewErrorResponse(err error) ErrorResponse {
	return ErrorResponse{
		Success: false,
		Error: ErrorDetail{
			Display:       GetDisplayMessage(err),
			InternalError: err.Error(),
			Details:       GetReportableDetails(err),
		},
	}
}

// HTTPStatusFromErr maps a marked error onto an HTTP status code.
func HTTPStatusFromErr(err error) int {
	switch {
	case IsValidation(err), IsInvalidOperation(err):
		return http.StatusBadRequest
	case IsNotFound(err):
		return http.StatusNotFound
	case IsAlreadyExists(err), IsDuplicateInvoice(err), IsConcurrencyConflict(err):
		return http.StatusConflict
	case IsCreditLimitExceeded(err), IsInsufficientBalance(err):
		return http.StatusUnprocessableEntity
	case IsGateway(err):
		return http.StatusBadGateway
	case Is(err, ErrPermissionDenied):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

package errors

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"flowcanvas/pkg/common"
)

// ErrorResponse represents the API error response format
type ErrorResponse struct {
	Error     bool                   `json:"error"`
	Type      string                 `json:"type"`
	Message   string                 `json:"message"`
	Code      string                 `json:"code,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Fields    map[string][]string    `json:"fields,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
}

// ErrorHandler handles errors and sends appropriate HTTP responses
type ErrorHandler struct {
	logger *zap.Logger
	debug  bool
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(logger *zap.Logger, debug bool) *ErrorHandler {
	return &ErrorHandler{
		logger: logger,
		debug:  debug,
	}
}

// Handle writes an error response derived from err and logs it
func (h *ErrorHandler) Handle(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := h.classify(err)
	resp.RequestID = r.Header.Get("X-Request-Id")
	if resp.RequestID == "" {
		resp.RequestID, _ = common.GetRequestID(r.Context())
	}

	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.String("requestID", resp.RequestID),
			zap.Error(err),
		)
	} else {
		h.logger.Debug("request rejected",
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.String("requestID", resp.RequestID),
			zap.Error(err),
		)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

// classify maps an error chain onto an HTTP status and response body
func (h *ErrorHandler) classify(err error) (int, *ErrorResponse) {
	var validationErrs *ValidationErrors
	if errors.As(err, &validationErrs) {
		return http.StatusBadRequest, &ErrorResponse{
			Error:   true,
			Type:    string(DomainValidationError),
			Message: validationErrs.Error(),
			Fields:  validationErrs.ToMap(),
		}
	}

	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErrorStatus(domainErr.Type), &ErrorResponse{
			Error:   true,
			Type:    string(domainErr.Type),
			Code:    domainErr.Code,
			Message: domainErr.Message,
			Details: domainErr.Details,
		}
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		resp := &ErrorResponse{
			Error:   true,
			Type:    string(appErr.Type),
			Code:    appErr.Code,
			Message: appErr.Message,
			Details: appErr.Details,
		}
		status := appErr.HTTPStatus
		if status == 0 {
			status = http.StatusInternalServerError
		}
		return status, resp
	}

	message := "internal server error"
	if h.debug && err != nil {
		message = err.Error()
	}
	return http.StatusInternalServerError, &ErrorResponse{
		Error:   true,
		Type:    string(ErrorTypeInternal),
		Message: message,
	}
}

// domainErrorStatus maps domain error categories to HTTP status codes
func domainErrorStatus(errorType DomainErrorType) int {
	switch errorType {
	case DomainValidationError:
		return http.StatusBadRequest
	case DomainBusinessRuleError:
		return http.StatusUnprocessableEntity
	case DomainNotFoundError:
		return http.StatusNotFound
	case DomainConflictError:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

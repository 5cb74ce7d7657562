package dto

import (
	"errors"
	"net/http"

	"github.com/ipshield/backend/internal/domain/shared"
)

// Error codes produced by the HTTP layer itself. Domain and application codes
// (ALREADY_PAID, DUPLICATE_CONTRACT_NO, ...) pass through unchanged.
const (
	ErrCodeInternal       = "INTERNAL_ERROR"
	ErrCodeBadRequest     = "BAD_REQUEST"
	ErrCodeInvalidJSON    = "INVALID_JSON"
	ErrCodeValidation     = shared.CodeValidation
	ErrCodeUnauthorized   = "UNAUTHORIZED"
	ErrCodeForbidden      = "FORBIDDEN"
	ErrCodeNotFound       = "NOT_FOUND"
	ErrCodeRateLimited    = "RATE_LIMIT_EXCEEDED"
	ErrCodeRequestTooBig  = "REQUEST_TOO_LARGE"
	ErrCodeInvalidState   = "INVALID_STATE"
	ErrCodeAlreadyExists  = "ALREADY_EXISTS"
	ErrCodeDuplicateReq   = "DUPLICATE_REQUEST"
	ErrCodeStorageOff     = "STORAGE_DISABLED"
	ErrCodeUploadNotFound = "UPLOAD_NOT_FOUND"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:    http.StatusInternalServerError,
	ErrCodeBadRequest:  http.StatusBadRequest,
	ErrCodeInvalidJSON: http.StatusBadRequest,
	ErrCodeValidation:  http.StatusBadRequest,
	"INVALID_INPUT":    http.StatusBadRequest,
	"INVALID_PASSWORD": http.StatusBadRequest,
	"INVALID_USERNAME": http.StatusBadRequest,
	"INVALID_AMOUNT":   http.StatusBadRequest,

	// authentication
	ErrCodeUnauthorized:   http.StatusUnauthorized,
	"INVALID_CREDENTIALS": http.StatusUnauthorized,
	"TOKEN_INVALID":       http.StatusUnauthorized,
	"TOKEN_EXPIRED":       http.StatusUnauthorized,
	"TOKEN_REVOKED":       http.StatusUnauthorized,
	"TOKEN_MAX_REFRESH":   http.StatusUnauthorized,

	// authorization and account state
	ErrCodeForbidden:      http.StatusForbidden,
	"ACCOUNT_LOCKED":      http.StatusForbidden,
	"ACCOUNT_DEACTIVATED": http.StatusForbidden,
	"ACCOUNT_INACTIVE":    http.StatusForbidden,

	ErrCodeNotFound:       http.StatusNotFound,
	ErrCodeUploadNotFound: http.StatusNotFound,

	// conflicts
	ErrCodeAlreadyExists:    http.StatusConflict,
	"DUPLICATE_CONTRACT_NO": http.StatusConflict,
	ErrCodeDuplicateReq:     http.StatusConflict,

	// business rules
	ErrCodeInvalidState:        http.StatusUnprocessableEntity,
	"ALREADY_PAID":             http.StatusUnprocessableEntity,
	"OVERPAYMENT":              http.StatusUnprocessableEntity,
	"NOT_INSTALLMENT_CONTRACT": http.StatusUnprocessableEntity,
	"CANNOT_DELETE":            http.StatusUnprocessableEntity,

	ErrCodeRequestTooBig: http.StatusRequestEntityTooLarge,
	ErrCodeRateLimited:   http.StatusTooManyRequests,

	// object storage
	ErrCodeStorageOff:      http.StatusServiceUnavailable,
	"UPLOAD_URL_FAILED":    http.StatusBadGateway,
	"DOWNLOAD_URL_FAILED":  http.StatusBadGateway,
	"STORAGE_CHECK_FAILED": http.StatusBadGateway,
}

// GetHTTPStatus returns the HTTP status for an error code, 500 when unknown
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// FromError converts an error returned by an application service into a
// status and error body. Unknown errors become an opaque 500.
func FromError(err error, requestID string) (int, Response) {
	var validationErrs shared.ValidationErrors
	if errors.As(err, &validationErrs) {
		details := make([]ValidationDetail, 0, len(validationErrs))
		for _, fe := range validationErrs {
			details = append(details, ValidationDetail{Field: fe.Field, Message: fe.Message})
		}
		return http.StatusBadRequest, NewValidationErrorResponse("Request validation failed", requestID, details)
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		status := GetHTTPStatus(domainErr.Code)
		message := domainErr.Message
		if status == http.StatusInternalServerError {
			message = "An internal error occurred"
		}
		return status, NewErrorResponseWithRequestID(domainErr.Code, message, requestID)
	}

	return http.StatusInternalServerError, NewErrorResponseWithRequestID(ErrCodeInternal, "An internal error occurred", requestID)
}

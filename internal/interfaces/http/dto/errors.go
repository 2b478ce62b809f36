package dto

import "net/http"

// Error codes returned in ErrorInfo.Code.
// Format: ERR_<CATEGORY>_<DESCRIPTION>
const (
	ErrCodeUnknown  = "ERR_UNKNOWN"
	ErrCodeInternal = "ERR_INTERNAL"

	ErrCodeValidation   = "ERR_VALIDATION"
	ErrCodeBadRequest   = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"

	ErrCodeNotFound = "ERR_NOT_FOUND"

	// ErrCodeSyncInProgress is returned when a resync is triggered while
	// another one is still running
	ErrCodeSyncInProgress = "ERR_SYNC_IN_PROGRESS"
	// ErrCodeSyncFailed is returned when a resync ran and failed
	ErrCodeSyncFailed = "ERR_SYNC_FAILED"
	// ErrCodeUpstream is returned when the commerce platform is unreachable
	ErrCodeUpstream = "ERR_UPSTREAM_UNAVAILABLE"
	// ErrCodeUnavailable is returned when a dependency such as the database is down
	ErrCodeUnavailable = "ERR_SERVICE_UNAVAILABLE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeValidation:   http.StatusBadRequest,
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,

	ErrCodeNotFound: http.StatusNotFound,

	ErrCodeSyncInProgress: http.StatusTooManyRequests,
	ErrCodeSyncFailed:     http.StatusInternalServerError,
	ErrCodeUpstream:       http.StatusBadGateway,
	ErrCodeUnavailable:    http.StatusServiceUnavailable,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes map to 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// domainErrorCodes maps shared.DomainError codes onto API codes
var domainErrorCodes = map[string]string{
	"NOT_FOUND":            ErrCodeNotFound,
	"INVALID_INPUT":        ErrCodeInvalidInput,
	"SYNC_IN_PROGRESS":     ErrCodeSyncInProgress,
	"UPSTREAM_UNAVAILABLE": ErrCodeUpstream,
	"INTERNAL_ERROR":       ErrCodeInternal,
}

// NormalizeErrorCode converts a domain error code to its API code.
// Codes already in API form, and unknown codes, are returned as-is.
func NormalizeErrorCode(code string) string {
	if apiCode, ok := domainErrorCodes[code]; ok {
		return apiCode
	}
	return code
}

package shared

// DomainError is an error with a stable code that crosses the API boundary
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound       = NewDomainError("NOT_FOUND", "Resource not found")
	ErrInvalidInput   = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrSyncInProgress = NewDomainError("SYNC_IN_PROGRESS", "A sync is already running, try again later")
	ErrUpstream       = NewDomainError("UPSTREAM_UNAVAILABLE", "The commerce platform could not be reached")
)

package usecase

import "errors"

const (
	CodeInvalidArgument = "INVALID_ARGUMENT"
	CodeNotFound        = "NOT_FOUND"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeStoreFailure    = "STORE_FAILURE"
)

// DomainError is a caller mistake. Never retried.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func InvalidArgument(msg string) error {
	return &DomainError{Code: CodeInvalidArgument, Message: msg}
}

func NotFound(msg string) error {
	return &DomainError{Code: CodeNotFound, Message: msg}
}

func IsDomainError(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}

// DomainCode returns the code of the first DomainError in err's chain, or "".
func DomainCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// TechnicalError wraps an infrastructure failure (database, network).
type TechnicalError struct {
	Code    string
	Message string
	Err     error
}

func (e *TechnicalError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *TechnicalError) Unwrap() error {
	return e.Err
}

func storeFailure(msg string, err error) error {
	return &TechnicalError{Code: CodeStoreFailure, Message: msg, Err: err}
}

func IsTechnicalError(err error) bool {
	var te *TechnicalError
	return errors.As(err, &te)
}

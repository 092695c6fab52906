package detectors

import (
	"errors"
	"fmt"
)

// ErrBackendUnavailable is returned by Detect when the backend is not present
// on this host. It is a negative answer, not a failure.
var ErrBackendUnavailable = errors.New("backend unavailable")

// BackendQueryError 后端查询本身失败
type BackendQueryError struct {
	Backend string
	Err     error
}

func (e *BackendQueryError) Error() string {
	return fmt.Sprintf("backend query failed: %s: %v", e.Backend, e.Err)
}

func (e *BackendQueryError) Unwrap() error {
	return e.Err
}

// NewQueryError wraps err as a query failure of the named backend.
func NewQueryError(backend string, err error) error {
	return &BackendQueryError{Backend: backend, Err: err}
}

// Unavailable wraps a reason as ErrBackendUnavailable.
func Unavailable(backend, reason string) error {
	return fmt.Errorf("%s: %s: %w", backend, reason, ErrBackendUnavailable)
}

// IsUnavailable reports whether err means the backend is simply absent.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrBackendUnavailable)
}

// IsQueryFailed reports whether err is a failed availability query.
func IsQueryFailed(err error) bool {
	var qe *BackendQueryError
	return errors.As(err, &qe)
}

// Error classes returned by Classify.
const (
	ClassUnavailable = "unavailable"
	ClassQueryFailed = "query_failed"
	ClassUnknown     = "unknown"
)

// Classify 对错误进行分类
func Classify(err error) string {
	switch {
	case err == nil:
		return ""
	case IsQueryFailed(err):
		return ClassQueryFailed
	case IsUnavailable(err):
		return ClassUnavailable
	default:
		return ClassUnknown
	}
}

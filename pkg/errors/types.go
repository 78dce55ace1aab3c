// Package errors implements the function's error taxonomy: a typed
// FunctionError that carries an ErrorCode, the resource it concerns (if
// any), and free-form context, built on top of github.com/pkg/errors for
// cause-chain wrapping.
package errors

import (
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// ErrorCode represents the type of error that occurred.
type ErrorCode string

const (
	// Resource fetch errors.
	ErrorCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrorCodeForbidden    ErrorCode = "FORBIDDEN"
	ErrorCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrorCodeTransient    ErrorCode = "TRANSIENT"
	ErrorCodeTimeout      ErrorCode = "TIMEOUT"

	// Discovery-graph errors.
	ErrorCodeCircularDependency ErrorCode = "CIRCULAR_DEPENDENCY"
	ErrorCodeResolutionLimit    ErrorCode = "RESOLUTION_LIMIT"

	// Cache errors.
	ErrorCodeCacheMiss ErrorCode = "CACHE_MISS"

	// Input validation errors.
	ErrorCodeValidation         ErrorCode = "VALIDATION_ERROR"
	ErrorCodeInvalidResourceRef ErrorCode = "INVALID_RESOURCE_REF"

	// System errors.
	ErrorCodeKubernetesClient  ErrorCode = "KUBERNETES_CLIENT_ERROR"
	ErrorCodeInternalError     ErrorCode = "INTERNAL_ERROR"
	ErrorCodeCircuitBreakerOpen ErrorCode = "CIRCUIT_BREAKER_OPEN"
)

// ResourceRef identifies a specific resource an error concerns. It is a
// narrow mirror of domain.ResourceRef kept dependency-free so this package
// never imports internal/domain.
type ResourceRef struct {
	APIVersion string `json:"apiVersion"`
	Kind       string `json:"kind"`
	Name       string `json:"name"`
	Namespace  string `json:"namespace,omitempty"`
}

// FunctionError represents a comprehensive error with context.
type FunctionError struct {
	Code        ErrorCode         `json:"code"`
	Message     string            `json:"message"`
	ResourceRef *ResourceRef      `json:"resourceRef,omitempty"`
	Context     map[string]string `json:"context,omitempty"`
	Timestamp   time.Time         `json:"timestamp"`
	Cause       error             `json:"-"`
}

// Error implements the error interface.
func (e *FunctionError) Error() string {
	var parts []string

	if e.ResourceRef != nil {
		if e.ResourceRef.Namespace != "" {
			parts = append(parts, fmt.Sprintf("resource %s/%s/%s",
				e.ResourceRef.Kind, e.ResourceRef.Namespace, e.ResourceRef.Name))
		} else {
			parts = append(parts, fmt.Sprintf("resource %s/%s",
				e.ResourceRef.Kind, e.ResourceRef.Name))
		}
	}

	parts = append(parts, string(e.Code))
	parts = append(parts, e.Message)

	if e.Cause != nil {
		parts = append(parts, fmt.Sprintf("cause: %s", e.Cause.Error()))
	}

	return strings.Join(parts, ": ")
}

// Unwrap returns the underlying cause.
func (e *FunctionError) Unwrap() error {
	return e.Cause
}

// New creates a new FunctionError.
func New(code ErrorCode, message string) *FunctionError {
	return &FunctionError{
		Code:      code,
		Message:   message,
		Timestamp: time.Now(),
		Context:   make(map[string]string),
	}
}

// Wrap creates a FunctionError wrapping another error. If err is already a
// FunctionError its code is preserved.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}

	if fe, ok := err.(*FunctionError); ok {
		return &FunctionError{
			Code:      fe.Code,
			Message:   message,
			Timestamp: time.Now(),
			Context:   make(map[string]string),
			Cause:     fe,
		}
	}

	return errors.Wrap(err, message)
}

// Wrapf creates a FunctionError wrapping another error with formatting.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WithResource adds resource context to an error.
func (e *FunctionError) WithResource(ref ResourceRef) *FunctionError {
	e.ResourceRef = &ref
	return e
}

// WithContext adds additional context.
func (e *FunctionError) WithContext(key, value string) *FunctionError {
	if e.Context == nil {
		e.Context = make(map[string]string)
	}
	e.Context[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code, unwrapping
// through any wrap chain.
func IsErrorCode(err error, code ErrorCode) bool {
	for err != nil {
		if fe, ok := err.(*FunctionError); ok {
			if fe.Code == code {
				return true
			}
			err = fe.Cause
			continue
		}
		break
	}
	return false
}

// GetErrorCode extracts the error code from an error.
func GetErrorCode(err error) ErrorCode {
	if fe, ok := err.(*FunctionError); ok {
		return fe.Code
	}
	return ErrorCodeInternalError
}

// IsRetryable reports whether the cenkalti/backoff retry loop in the
// fetcher should retry an error of this code.
func IsRetryable(err error) bool {
	switch GetErrorCode(err) {
	case ErrorCodeTransient, ErrorCodeTimeout:
		return true
	default:
		return false
	}
}

// NotFoundError creates a resource-not-found error.
func NotFoundError(ref ResourceRef) *FunctionError {
	return New(ErrorCodeNotFound, "resource not found").WithResource(ref)
}

// ForbiddenError creates an access-forbidden error.
func ForbiddenError(ref ResourceRef) *FunctionError {
	return New(ErrorCodeForbidden, "access forbidden").WithResource(ref)
}

// UnauthorizedError creates an authentication error.
func UnauthorizedError(message string) *FunctionError {
	return New(ErrorCodeUnauthorized, message)
}

// TransientError creates a retryable infrastructure error.
func TransientError(message string) *FunctionError {
	return New(ErrorCodeTransient, message)
}

// TimeoutError creates a resource timeout error.
func TimeoutError(ref ResourceRef, timeout time.Duration) *FunctionError {
	return New(ErrorCodeTimeout, fmt.Sprintf("timeout after %s", timeout)).
		WithResource(ref).
		WithContext("timeout", timeout.String())
}

// CircularDependencyError creates an error for a detected reference cycle.
func CircularDependencyError(chain []string) *FunctionError {
	return New(ErrorCodeCircularDependency, "circular reference detected").
		WithContext("chain", strings.Join(chain, " -> "))
}

// ResolutionLimitError creates an error for a forward-resolution bound hit
// (max depth or max resource count).
func ResolutionLimitError(message string) *FunctionError {
	return New(ErrorCodeResolutionLimit, message)
}

// CacheMissError creates a cache-miss sentinel error. Callers generally
// treat this as a signal, not a failure.
func CacheMissError(key string) *FunctionError {
	return New(ErrorCodeCacheMiss, "cache miss").WithContext("key", key)
}

// ValidationError creates a validation error.
func ValidationError(message string) *FunctionError {
	return New(ErrorCodeValidation, message)
}

// InvalidResourceRefError creates an invalid-resource-reference error.
func InvalidResourceRefError(message string) *FunctionError {
	return New(ErrorCodeInvalidResourceRef, message)
}

// KubernetesClientError creates a Kubernetes client error.
func KubernetesClientError(message string) *FunctionError {
	return New(ErrorCodeKubernetesClient, message)
}

// CircuitBreakerOpenError creates an error for a request rejected by an
// open circuit breaker.
func CircuitBreakerOpenError(kind string) *FunctionError {
	return New(ErrorCodeCircuitBreakerOpen, "circuit breaker open").WithContext("kind", kind)
}

// InternalError creates a catch-all internal error.
func InternalError(message string) *FunctionError {
	return New(ErrorCodeInternalError, message)
}

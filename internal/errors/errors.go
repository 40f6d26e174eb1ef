package errors

import (
	stderrors "errors"
	"fmt"
	"sort"
	"strings"
)

// ErrorType represents the category of error
type ErrorType int

const (
	// ErrorTypeConfig - missing or invalid configuration
	ErrorTypeConfig ErrorType = iota
	// ErrorTypeValidation - invalid user input (flags, repository names)
	ErrorTypeValidation
	// ErrorTypeNetwork - GitHub unreachable, transport failures
	ErrorTypeNetwork
	// ErrorTypeExternal - GitHub or git answered with a failure
	ErrorTypeExternal
	// ErrorTypeStorage - commit cache / run history failures
	ErrorTypeStorage
	// ErrorTypeInternal - anything not raised through this package
	ErrorTypeInternal
)

var typeNames = map[ErrorType]string{
	ErrorTypeConfig:     "CONFIG",
	ErrorTypeValidation: "VALIDATION",
	ErrorTypeNetwork:    "NETWORK",
	ErrorTypeExternal:   "EXTERNAL",
	ErrorTypeStorage:    "STORAGE",
	ErrorTypeInternal:   "INTERNAL",
}

func (t ErrorType) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "UNKNOWN"
}

// ExitCode is the process exit status for a failure of this type:
// 2 for bad input or configuration, 3 when GitHub or git failed,
// 4 for storage, 1 otherwise.
func (t ErrorType) ExitCode() int {
	switch t {
	case ErrorTypeConfig, ErrorTypeValidation:
		return 2
	case ErrorTypeNetwork, ErrorTypeExternal:
		return 3
	case ErrorTypeStorage:
		return 4
	default:
		return 1
	}
}

// Error is a categorized error with optional cause and context
type Error struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

func newError(errType ErrorType, cause error, message string) *Error {
	return &Error{Type: errType, Message: message, Cause: cause}
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *Error) WithContext(key string, value interface{}) *Error {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// Is matches any *Error of the same type, so callers can test a category
// with errors.Is(err, &Error{Type: ErrorTypeStorage}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && e.Type == t.Type
}

// DetailedString renders the type, message, cause and sorted context, one
// item per line. Used for --verbose error output.
func (e *Error) DetailedString() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] %s\n", e.Type, e.Message)
	if e.Cause != nil {
		fmt.Fprintf(&sb, "Caused by: %v\n", e.Cause)
	}

	if len(e.Context) > 0 {
		keys := make([]string, 0, len(e.Context))
		for k := range e.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		sb.WriteString("Context:\n")
		for _, k := range keys {
			fmt.Fprintf(&sb, "  %s: %v\n", k, e.Context[k])
		}
	}
	return sb.String()
}

// ConfigError creates a configuration error
func ConfigError(message string) *Error {
	return newError(ErrorTypeConfig, nil, message)
}

// ConfigErrorf creates a configuration error with formatting
func ConfigErrorf(format string, args ...interface{}) *Error {
	return newError(ErrorTypeConfig, nil, fmt.Sprintf(format, args...))
}

// ValidationErrorf creates a validation error with formatting
func ValidationErrorf(format string, args ...interface{}) *Error {
	return newError(ErrorTypeValidation, nil, fmt.Sprintf(format, args...))
}

// NetworkError wraps a transport failure
func NetworkError(err error, message string) *Error {
	return newError(ErrorTypeNetwork, err, message)
}

// ExternalError wraps a failure reported by GitHub or git
func ExternalError(err error, message string) *Error {
	return newError(ErrorTypeExternal, err, message)
}

// ExternalErrorf wraps an external failure with formatting
func ExternalErrorf(err error, format string, args ...interface{}) *Error {
	return newError(ErrorTypeExternal, err, fmt.Sprintf(format, args...))
}

// StorageError wraps a storage backend error
func StorageError(err error, message string) *Error {
	return newError(ErrorTypeStorage, err, message)
}

// GetType returns the type of the outermost *Error in err's chain, or
// ErrorTypeInternal when there is none.
func GetType(err error) ErrorType {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Type
	}
	return ErrorTypeInternal
}

// ExitCode maps err to a process exit status; nil is 0
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	return GetType(err).ExitCode()
}

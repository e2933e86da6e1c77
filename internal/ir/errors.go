package ir

import (
	"errors"
	"fmt"
)

// ErrorKind is the top-level category of a precompute failure.
type ErrorKind string

const (
	// KindConfig covers missing settings, unreadable sources and unknown keys.
	KindConfig ErrorKind = "config"

	// KindModel covers paths naming classes or relations absent from the model.
	KindModel ErrorKind = "model"

	// KindPlanning covers malformed paths and unparsable literal queries.
	KindPlanning ErrorKind = "planning"

	// KindStore covers estimate, execute and materialize failures.
	KindStore ErrorKind = "store"
)

// ErrorCode identifies the specific failure within a kind.
type ErrorCode string

const (
	ErrCodeMissingSetting   ErrorCode = "MISSING_SETTING"
	ErrCodeConfigUnreadable ErrorCode = "CONFIG_UNREADABLE"
	ErrCodeUnknownKey       ErrorCode = "UNKNOWN_KEY"
	ErrCodeUnknownClass     ErrorCode = "UNKNOWN_CLASS"
	ErrCodeUnknownRelation  ErrorCode = "UNKNOWN_RELATION"
	ErrCodeMalformedPath    ErrorCode = "MALFORMED_PATH"
	ErrCodeParseFailed      ErrorCode = "PARSE_FAILED"
	ErrCodeStoreFailed      ErrorCode = "STORE_FAILED"
)

// Error is the single error type raised by planning and orchestration.
//
// Every Error is fatal to a run. Key and Plan carry enough context for
// the diagnostic to name the offending configuration entry or plan.
type Error struct {
	Kind    ErrorKind
	Code    ErrorCode
	Message string

	// Key is the configuration key being processed, if any.
	Key string

	// Plan is the rendered plan or raw path, if any.
	Plan string

	// Err is the underlying cause (optional).
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s error [%s]: %s", e.Kind, e.Code, e.Message)
	if e.Key != "" {
		msg += fmt.Sprintf(" (key=%s)", e.Key)
	}
	if e.Plan != "" {
		msg += fmt.Sprintf(" (plan=%s)", e.Plan)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// WithKey returns a copy of e annotated with a configuration key.
// An existing key is kept.
func (e *Error) WithKey(key string) *Error {
	c := *e
	if c.Key == "" {
		c.Key = key
	}
	return &c
}

// NewConfigError creates a KindConfig error.
func NewConfigError(code ErrorCode, format string, args ...any) *Error {
	return &Error{Kind: KindConfig, Code: code, Message: fmt.Sprintf(format, args...)}
}

// NewModelError creates a KindModel error.
func NewModelError(code ErrorCode, format string, args ...any) *Error {
	return &Error{Kind: KindModel, Code: code, Message: fmt.Sprintf(format, args...)}
}

// NewPlanningError creates a KindPlanning error.
func NewPlanningError(code ErrorCode, format string, args ...any) *Error {
	return &Error{Kind: KindPlanning, Code: code, Message: fmt.Sprintf(format, args...)}
}

// NewStoreError wraps a store failure together with the plan that caused it.
func NewStoreError(op string, plan *QueryPlan, err error) *Error {
	e := &Error{
		Kind:    KindStore,
		Code:    ErrCodeStoreFailed,
		Message: op + " failed",
		Err:     err,
	}
	if plan != nil {
		e.Plan = plan.String()
	}
	return e
}

// KindOf returns the kind of err, or "" if err is not an *Error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// CodeOf returns the code of err, or "" if err is not an *Error.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsConfigError reports whether err is a configuration error.
func IsConfigError(err error) bool { return KindOf(err) == KindConfig }

// IsModelError reports whether err is a domain-model error.
func IsModelError(err error) bool { return KindOf(err) == KindModel }

// IsPlanningError reports whether err is a planning error.
func IsPlanningError(err error) bool { return KindOf(err) == KindPlanning }

// IsStoreError reports whether err is a store error.
func IsStoreError(err error) bool { return KindOf(err) == KindStore }

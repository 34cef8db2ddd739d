package aggregates

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode standardizes aggregate failure semantics across domains.
type ErrorCode string

const (
	CodeValidation         ErrorCode = "validation"
	CodeNotFound           ErrorCode = "not_found"
	CodeConflict           ErrorCode = "conflict"
	CodeInvariantViolation ErrorCode = "invariant_violation"
	CodePreconditionFailed ErrorCode = "precondition_failed"
	CodeRetryable          ErrorCode = "retryable"
	CodeInternal           ErrorCode = "internal"
)

// ErrorKind is the closed set of failures the learning aggregates report.
// Every kind belongs to exactly one ErrorCode.
type ErrorKind string

const (
	KindQuizNotFound       ErrorKind = "quiz_not_found"
	KindModuleNotFound     ErrorKind = "module_not_found"
	KindCompletionNotFound ErrorKind = "completion_not_found"
	KindEnrollmentNotFound ErrorKind = "enrollment_not_found"
	KindCourseNotFound     ErrorKind = "course_not_found"
	KindAttemptNotFound    ErrorKind = "attempt_not_found"
	KindInvalidOption      ErrorKind = "invalid_option"
	KindEmptySelection     ErrorKind = "empty_selection"
	KindAlreadyCompleted   ErrorKind = "already_completed"
	KindAlreadyEnrolled    ErrorKind = "already_enrolled"
	KindNotEnrolled        ErrorKind = "not_enrolled"
	KindTxTimeout          ErrorKind = "tx_timeout"
	KindStoreUnavailable   ErrorKind = "store_unavailable"
)

var kindCodes = map[ErrorKind]ErrorCode{
	KindQuizNotFound:       CodeNotFound,
	KindModuleNotFound:     CodeNotFound,
	KindCompletionNotFound: CodeNotFound,
	KindEnrollmentNotFound: CodeNotFound,
	KindCourseNotFound:     CodeNotFound,
	KindAttemptNotFound:    CodeNotFound,
	KindInvalidOption:      CodeValidation,
	KindEmptySelection:     CodeValidation,
	KindAlreadyCompleted:   CodeConflict,
	KindAlreadyEnrolled:    CodeConflict,
	KindNotEnrolled:        CodePreconditionFailed,
	KindTxTimeout:          CodeRetryable,
	KindStoreUnavailable:   CodeRetryable,
}

// Kinds lists every declared kind.
func Kinds() []ErrorKind {
	return []ErrorKind{
		KindQuizNotFound, KindModuleNotFound, KindCompletionNotFound, KindEnrollmentNotFound,
		KindCourseNotFound, KindAttemptNotFound, KindInvalidOption, KindEmptySelection,
		KindAlreadyCompleted, KindAlreadyEnrolled, KindNotEnrolled, KindTxTimeout, KindStoreUnavailable,
	}
}

// Code returns the broad class of the kind, or CodeInternal for unknown kinds.
func (k ErrorKind) Code() ErrorCode {
	if c, ok := kindCodes[k]; ok {
		return c
	}
	return CodeInternal
}

// Error is the canonical aggregate error wrapper.
type Error struct {
	Code    ErrorCode
	Kind    ErrorKind
	Op      string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	op := strings.TrimSpace(e.Op)
	msg := strings.TrimSpace(e.Message)
	tag := string(e.Code)
	if e.Kind != "" {
		tag = string(e.Kind)
	}
	switch {
	case op != "" && msg != "":
		return fmt.Sprintf("%s: %s (%s)", op, msg, tag)
	case op != "":
		return fmt.Sprintf("%s (%s)", op, tag)
	case msg != "":
		return fmt.Sprintf("%s (%s)", msg, tag)
	default:
		return tag
	}
}

func (e *Error) Unwrap() error { return e.Cause }

// NewError builds an aggregate error with explicit code + operation.
func NewError(code ErrorCode, op, message string, cause error) error {
	return &Error{
		Code:    code,
		Op:      strings.TrimSpace(op),
		Message: strings.TrimSpace(message),
		Cause:   cause,
	}
}

// NewKindError builds an aggregate error whose code is derived from kind.
func NewKindError(kind ErrorKind, op, message string, cause error) error {
	return &Error{
		Code:    kind.Code(),
		Kind:    kind,
		Op:      strings.TrimSpace(op),
		Message: strings.TrimSpace(message),
		Cause:   cause,
	}
}

// Wrap annotates an existing error with aggregate error semantics.
func Wrap(code ErrorCode, op string, err error) error {
	if err == nil {
		return nil
	}
	return NewError(code, op, err.Error(), err)
}

// IsCode checks whether err (or wrapped err) carries the given aggregate code.
func IsCode(err error, code ErrorCode) bool {
	var aggErr *Error
	if !errors.As(err, &aggErr) {
		return false
	}
	return aggErr.Code == code
}

// CodeOf extracts the aggregate error code when available.
func CodeOf(err error) ErrorCode {
	var aggErr *Error
	if !errors.As(err, &aggErr) {
		return ""
	}
	return aggErr.Code
}

// IsKind checks whether err (or wrapped err) carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}

// KindOf extracts the error kind when available.
func KindOf(err error) ErrorKind {
	var aggErr *Error
	if !errors.As(err, &aggErr) {
		return ""
	}
	return aggErr.Kind
}

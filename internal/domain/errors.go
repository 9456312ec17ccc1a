package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrUnauthenticated   = errors.New("no authenticated session")
	ErrDuplicateItem     = errors.New("item already in check")
	ErrItemNotInCheck    = errors.New("item not in check")
	ErrPendingEdits      = errors.New("check has uncommitted edits")
	ErrNoStagedEdit      = errors.New("no staged edit for item")
	ErrInvalidStock      = errors.New("stock must be a non-negative integer")
	ErrEmptyCheck        = errors.New("check has no items")
	ErrInvalidTransition = errors.New("invalid room status transition")
	ErrSuperseded        = errors.New("superseded by a newer request")
	ErrForbidden         = errors.New("hotel not accessible with this session")
	ErrDraftConflict     = errors.New("draft changed by another request")
)

// ConnectionMessage is shown whenever the PMS API cannot be reached at all.
const ConnectionMessage = "Không thể kết nối đến máy chủ. Vui lòng kiểm tra kết nối mạng."

type ErrorKind int

const (
	// KindGeneric covers anything not otherwise classified; the message is a
	// per-operation fallback.
	KindGeneric ErrorKind = iota
	// KindConnection is a transport failure (refused, DNS, timeout).
	KindConnection
	// KindAPI carries a message reported by the PMS API.
	KindAPI
	KindUnauthorized
	KindValidation
)

func (k ErrorKind) String() string {
	switch k {
	case KindConnection:
		return "connection"
	case KindAPI:
		return "api"
	case KindUnauthorized:
		return "unauthorized"
	case KindValidation:
		return "validation"
	}
	return "generic"
}

// Error is the single error shape stores hand back to callers.
type Error struct {
	Kind    ErrorKind
	Op      string
	Status  int
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Kind == KindUnauthorized
	case ErrNotFound:
		return e.Status == 404
	}
	return false
}

// APIError builds the error for a non-2xx response carrying {message, code}.
func APIError(status int, code, message string) *Error {
	if message == "" {
		message = fmt.Sprintf("remote %d", status)
	}
	return &Error{Kind: KindAPI, Status: status, Code: code, Message: message}
}

// KindOf reports the kind of err, KindGeneric for foreign errors.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	var v *ValidationError
	if errors.As(err, &v) {
		return KindValidation
	}
	return KindGeneric
}

// Field validation codes.
const (
	CodeRequired          = "REQUIRED"
	CodeInvalidDateRange  = "INVALID_DATE_RANGE"
	CodeNameTooShort      = "NAME_TOO_SHORT"
	CodeInvalidPhone      = "INVALID_PHONE"
	CodeInvalidGuestCount = "INVALID_GUEST_COUNT"
	CodeNegative          = "MUST_BE_NON_NEGATIVE"
	CodeInvalid           = "INVALID"
)

// ValidationError maps form field names to a code per invalid field.
type ValidationError struct {
	Fields map[string]string `json:"fields"`
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// Field returns the code for name, "" when the field is valid.
func (e *ValidationError) Field(name string) string {
	if e == nil {
		return ""
	}
	return e.Fields[name]
}

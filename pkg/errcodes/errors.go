package errcodes

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/pkg/errors"
)

const (
	codeConflict        = "conflict"
	codeNotFound        = "not_found"
	codeValidationError = "validation_error"
)

type Error struct {
	HTTPCode int
	Message  string
	Code     string

	// ConflictingID is the id of the record that already holds the contested
	// value. Only set on conflict errors.
	ConflictingID int
}

func (err *Error) Error() string {
	return err.Message
}

func (err *Error) As(target interface{}) bool {
	te, ok := target.(*Error)
	if !ok {
		return false
	}
	te.HTTPCode = err.HTTPCode
	te.Message = err.Message
	te.Code = err.Code
	te.ConflictingID = err.ConflictingID
	return true
}

func (err *Error) Is(target error) bool {
	te, ok := target.(*Error)
	if !ok {
		return false
	}
	return te.HTTPCode == err.HTTPCode &&
		te.Message == err.Message &&
		te.Code == err.Code
}

// NotFound returns a 404 error with a message indicating the given resource.
func NotFound(resource string) error {
	return &Error{
		HTTPCode: http.StatusNotFound,
		Message:  resource + " not found.",
		Code:     codeNotFound,
	}
}

// Conflict returns a 409 error for a uniqueness violation against the record
// identified by existingID.
func Conflict(resource, value string, existingID int) error {
	return &Error{
		HTTPCode:      http.StatusConflict,
		Message:       fmt.Sprintf("%s %q already exists.", resource, value),
		Code:          codeConflict,
		ConflictingID: existingID,
	}
}

func UnsupportedMediaType() error {
	return &Error{
		HTTPCode: http.StatusUnsupportedMediaType,
		Message:  "Unsupported Media Type",
		Code:     "unsupported_media_type",
	}
}

func UnknownParameter(param string) error {
	return &Error{
		HTTPCode: http.StatusUnprocessableEntity,
		Message:  fmt.Sprintf("Unknown Parameter %q", param),
		Code:     "unknown_parameter",
	}
}

func ValidationTypeError(msg string) error {
	return &Error{
		HTTPCode: http.StatusUnprocessableEntity,
		Message:  msg,
		Code:     "validation_type_error",
	}
}

func MalformedPayload() error {
	return &Error{
		HTTPCode: http.StatusBadRequest,
		Message:  "Malformed Payload",
		Code:     "malformed_payload",
	}
}

// Violation is a single failed field rule.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationFailed carries every violation found in a submission, in field
// declaration order.
type ValidationFailed struct {
	Violations []Violation
}

func NewValidationFailed(violations []Violation) *ValidationFailed {
	return &ValidationFailed{Violations: violations}
}

func (err *ValidationFailed) Error() string {
	msgs := make([]string, 0, len(err.Violations))
	for _, v := range err.Violations {
		msgs = append(msgs, v.Message)
	}
	return strings.Join(msgs, "; ")
}

// Fields returns the names of the fields that failed, in order.
func (err *ValidationFailed) Fields() []string {
	fields := make([]string, 0, len(err.Violations))
	for _, v := range err.Violations {
		fields = append(fields, v.Field)
	}
	return fields
}

// Violations splits a bind error. Validation failures come back as the
// violations to show on the form with a nil error; anything else is returned
// for the caller to propagate.
func Violations(err error) ([]Violation, error) {
	if err == nil {
		return nil, nil
	}
	var vf *ValidationFailed
	if errors.As(err, &vf) {
		return vf.Violations, nil
	}
	return nil, err
}

// Kind is the closed set of outcomes a catalog operation can fail with.
type Kind int

const (
	// KindStoreFailure is any error that isn't one of the others. These come
	// from the database and are never retried.
	KindStoreFailure Kind = iota
	KindNotFound
	KindConflict
	KindValidationFailed
	// KindBadRequest covers payloads that couldn't be decoded at all.
	KindBadRequest
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindValidationFailed:
		return "validation_failed"
	case KindBadRequest:
		return "bad_request"
	default:
		return "store_failure"
	}
}

// KindOf classifies err. A nil error has no kind and reports
// KindStoreFailure, so callers check for nil first.
func KindOf(err error) Kind {
	var vf *ValidationFailed
	if errors.As(err, &vf) {
		return KindValidationFailed
	}
	var e *Error
	if errors.As(err, &e) {
		switch e.Code {
		case codeNotFound:
			return KindNotFound
		case codeConflict:
			return KindConflict
		default:
			return KindBadRequest
		}
	}
	return KindStoreFailure
}

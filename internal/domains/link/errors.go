package link

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

var (
	// ErrNotFound matches every "record absent" failure, including id lists
	// that did not resolve one-to-one.
	ErrNotFound = errors.New("not found")

	// ErrInvalidIdentifier is returned for id strings that cannot be parsed.
	ErrInvalidIdentifier = errors.New("invalid identifier")
)

type notFoundError struct {
	msg string
}

func (e *notFoundError) Error() string { return e.msg }

func (e *notFoundError) Is(target error) bool { return target == ErrNotFound }

// NotFoundf builds an error whose message is shown to the caller as-is and
// which matches ErrNotFound.
func NotFoundf(format string, args ...any) error {
	return &notFoundError{msg: fmt.Sprintf(format, args...)}
}

// FieldError is one failing field of a ValidationError.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every field that failed validation, not just the first.
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NewValidationError converts the result of validation.ValidateStruct into a
// *ValidationError. Nil stays nil and internal validator errors pass through.
func NewValidationError(err error) error {
	if err == nil {
		return nil
	}

	var fieldErrs validation.Errors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	out := &ValidationError{Fields: make([]FieldError, 0, len(fieldErrs))}
	for field, fe := range fieldErrs {
		out.Fields = append(out.Fields, FieldError{Field: field, Message: fe.Error()})
	}
	sort.Slice(out.Fields, func(i, j int) bool { return out.Fields[i].Field < out.Fields[j].Field })
	return out
}

// PartialCompensationError reports a compensation loop that stopped partway.
// Writes listed in Applied stay applied; nothing is rolled back.
type PartialCompensationError struct {
	Side      string      `json:"side"`
	Operation string      `json:"operation"`
	Reference uuid.UUID   `json:"reference"`
	Applied   []uuid.UUID `json:"applied"`
	Failed    uuid.UUID   `json:"failed"`
	Skipped   []uuid.UUID `json:"skipped"`
	Err       error       `json:"-"`
}

func (e *PartialCompensationError) Error() string {
	return fmt.Sprintf("%s on %s records stopped at %s (%d applied, %d skipped): %v",
		e.Operation, e.Side, e.Failed, len(e.Applied), len(e.Skipped), e.Err)
}

func (e *PartialCompensationError) Unwrap() error { return e.Err }

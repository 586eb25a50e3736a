package tree

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// errors
var (
	ErrNilStore              = errors.New("tree store is nil")
	ErrNilForest             = errors.New("forest is nil")
	ErrNilManager            = errors.New("tree manager is nil")
	ErrUnknownEntity         = errors.New("unknown entity")
	ErrInvalidKind           = errors.New("invalid node kind")
	ErrKindMismatch          = errors.New("kind is not accepted by this entity")
	ErrNodeNotFound          = errors.New("node not found")
	ErrParentNotFound        = errors.New("parent node not found")
	ErrHasChildren           = errors.New("node has children")
	ErrHasUsers              = errors.New("post is assigned to users")
	ErrVersionConflict       = errors.New("version conflict")
	ErrCircuitedParent       = errors.New("circuited parenting")
	ErrLeafParent            = errors.New("parent kind cannot hold this child")
	ErrRootOnly              = errors.New("kind must be a root node")
	ErrParentRequired        = errors.New("kind requires a parent")
	ErrLeafWithChildren      = errors.New("node with children cannot become a leaf kind")
	ErrDuplicateKey          = errors.New("duplicate unique key")
	ErrDuplicateID           = errors.New("duplicate node id")
	ErrVisibilityUnsupported = errors.New("visibility is only supported by menu trees")
	ErrZeroID                = errors.New("id is zero")
	ErrInvalidID             = errors.New("invalid node id")
	ErrNilPayload            = errors.New("payload is nil")
	ErrEmptyName             = errors.New("name is empty")
	ErrNameTooLong           = errors.New("name is too long")
	ErrSortOutOfRange        = errors.New("sort order is out of range")
	ErrInvalidStatus         = errors.New("invalid status")
	ErrRequired              = errors.New("value is required")
	ErrMalformed             = errors.New("value is malformed")
)

// Fault is a coarse classification of errors returned by this package
type Fault uint8

// error faults
const (
	FaultInternal Fault = iota
	FaultValidation
	FaultNotFound
	FaultPrecondition
	FaultConflict
)

func (f Fault) String() string {
	switch f {
	case FaultValidation:
		return "validation"
	case FaultNotFound:
		return "not_found"
	case FaultPrecondition:
		return "precondition_failed"
	case FaultConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// FaultOf classifies any (possibly wrapped) error, nil errors are internal
func FaultOf(err error) Fault {
	cause := errors.Cause(err)

	if _, ok := cause.(*ValidationError); ok {
		return FaultValidation
	}

	switch cause {
	case ErrNodeNotFound, ErrParentNotFound:
		return FaultNotFound
	case ErrHasChildren, ErrHasUsers:
		return FaultPrecondition
	case ErrVersionConflict:
		return FaultConflict
	case ErrUnknownEntity,
		ErrInvalidKind,
		ErrKindMismatch,
		ErrCircuitedParent,
		ErrLeafParent,
		ErrRootOnly,
		ErrParentRequired,
		ErrLeafWithChildren,
		ErrDuplicateKey,
		ErrVisibilityUnsupported,
		ErrInvalidID,
		ErrZeroID,
		ErrDuplicateID,
		ErrInvalidStatus,
		ErrNilPayload:
		return FaultValidation
	}

	return FaultInternal
}

// IsNotFound reports whether err means a missing node or parent
func IsNotFound(err error) bool { return FaultOf(err) == FaultNotFound }

// IsValidation reports whether err is an input validation failure
func IsValidation(err error) bool { return FaultOf(err) == FaultValidation }

// IsPrecondition reports whether err is a failed delete precondition
func IsPrecondition(err error) bool { return FaultOf(err) == FaultPrecondition }

// IsConflict reports whether err is a stale version
func IsConflict(err error) bool { return FaultOf(err) == FaultConflict }

// FieldError describes a single invalid input field
type FieldError struct {
	Field string `json:"field"`
	Err   error  `json:"-"`
}

func (fe FieldError) Error() string {
	return fmt.Sprintf("%s: %s", fe.Field, fe.Err)
}

// ValidationError aggregates every failed field of a single input
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, fe := range e.Fields {
		msgs = append(msgs, fe.Error())
	}

	return "validation failed: " + strings.Join(msgs, "; ")
}

// Errors returns field errors combined into a single multierr
func (e *ValidationError) Errors() error {
	var err error
	for _, fe := range e.Fields {
		err = multierr.Append(err, fe)
	}

	return err
}

// Has tells whether a given field has failed
func (e *ValidationError) Has(field string) bool {
	for _, fe := range e.Fields {
		if fe.Field == field {
			return true
		}
	}

	return false
}

// Cause returns the sentinel error of a given field, nil if it passed
func (e *ValidationError) Cause(field string) error {
	for _, fe := range e.Fields {
		if fe.Field == field {
			return errors.Cause(fe.Err)
		}
	}

	return nil
}

// fieldErrors collects field errors via multierr
type fieldErrors struct {
	err error
}

func (fes *fieldErrors) add(field string, err error) {
	if err != nil {
		fes.err = multierr.Append(fes.err, FieldError{Field: field, Err: err})
	}
}

// result returns nil or a *ValidationError holding every collected field
func (fes *fieldErrors) result() error {
	if fes.err == nil {
		return nil
	}

	errs := multierr.Errors(fes.err)
	ve := &ValidationError{Fields: make([]FieldError, 0, len(errs))}
	for _, err := range errs {
		if fe, ok := err.(FieldError); ok {
			ve.Fields = append(ve.Fields, fe)
		}
	}

	return ve
}

// sentinel errors by their message, restores errors received over the wire
var knownErrors = make(map[string]error)

func init() {
	for _, err := range []error{
		ErrUnknownEntity, ErrInvalidKind, ErrKindMismatch, ErrNodeNotFound,
		ErrParentNotFound, ErrHasChildren, ErrHasUsers, ErrVersionConflict,
		ErrCircuitedParent, ErrLeafParent, ErrRootOnly, ErrParentRequired,
		ErrLeafWithChildren, ErrDuplicateKey, ErrDuplicateID, ErrVisibilityUnsupported,
		ErrZeroID, ErrInvalidID, ErrNilPayload, ErrEmptyName, ErrNameTooLong,
		ErrSortOutOfRange, ErrInvalidStatus, ErrRequired, ErrMalformed,
	} {
		knownErrors[err.Error()] = err
	}
}

// LookupError returns a sentinel error by its message, or a new
// plain error carrying the message if it's unknown
func LookupError(msg string) error {
	if err, ok := knownErrors[msg]; ok {
		return err
	}

	return errors.New(msg)
}

package endpoints

import (
	"net/http"

	"github.com/agubarev/orgtree/pkg/tree"
	"github.com/agubarev/orgtree/pkg/util/report"
	"github.com/pkg/errors"
)

// error tokens
const (
	TokenBadRequest      = "bad_request"
	TokenValidation      = "validation_failed"
	TokenNotFound        = "not_found"
	TokenHasChildren     = "has_children"
	TokenHasUsers        = "has_users"
	TokenVersionConflict = "version_conflict"
	TokenInternal        = "internal_error"
)

// FieldIssue is a single invalid field as reported to the caller
type FieldIssue struct {
	Field   string `json:"field"`
	Cause   string `json:"cause"`
	Message string `json:"msg"`
}

// StatusOf maps an error onto an HTTP status code
func StatusOf(err error) int {
	switch tree.FaultOf(err) {
	case tree.FaultValidation:
		return http.StatusUnprocessableEntity
	case tree.FaultNotFound:
		return http.StatusNotFound
	case tree.FaultPrecondition:
		return http.StatusConflict
	case tree.FaultConflict:
		return http.StatusPreconditionFailed
	default:
		return http.StatusInternalServerError
	}
}

// TokenOf returns a machine-readable token of an error
func TokenOf(err error) string {
	switch errors.Cause(err) {
	case tree.ErrHasChildren:
		return TokenHasChildren
	case tree.ErrHasUsers:
		return TokenHasUsers
	case tree.ErrVersionConflict:
		return TokenVersionConflict
	}

	switch tree.FaultOf(err) {
	case tree.FaultValidation:
		return TokenValidation
	case tree.FaultNotFound:
		return TokenNotFound
	default:
		return TokenInternal
	}
}

// Fail fills the report with a given error and returns handler results,
// invalid fields (if any) end up as the auxiliary payload
func Fail(rep *report.Report, err error) (result interface{}, aux interface{}, code int, _ *report.Report) {
	if ve, ok := errors.Cause(err).(*tree.ValidationError); ok {
		issues := make([]FieldIssue, 0, len(ve.Fields))
		for _, fe := range ve.Fields {
			issues = append(issues, FieldIssue{
				Field:   fe.Field,
				Cause:   errors.Cause(fe.Err).Error(),
				Message: fe.Err.Error(),
			})
		}

		aux = issues
	}

	return nil, aux, StatusOf(err), rep.WithError(TokenOf(err), err)
}

// BadRequest fails a request that could not even be parsed
func BadRequest(rep *report.Report, err error) (result interface{}, aux interface{}, code int, _ *report.Report) {
	return nil, nil, http.StatusBadRequest, rep.WithError(TokenBadRequest, err)
}

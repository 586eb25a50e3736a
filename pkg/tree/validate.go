package tree

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/asaskevich/govalidator"
	"github.com/pkg/errors"
)

// field patterns
var (
	rePath       = regexp.MustCompile(`^/[a-zA-Z0-9/_-]*$`)
	reComponent  = regexp.MustCompile(`^[a-zA-Z0-9/_-]+$`)
	rePermission = regexp.MustCompile(`^[a-zA-Z0-9:_-]+$`)
	reDictType   = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	rePhone      = regexp.MustCompile(`^1[3-9]\d{9}$`)
	reEmail      = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// ValidatePermission checks a colon-separated permission code
// such as "system:user:add"
func ValidatePermission(code string) error {
	if code == "" {
		return ErrRequired
	}

	if !rePermission.MatchString(code) {
		return errors.Wrapf(ErrMalformed, "permission %q", code)
	}

	for _, segment := range strings.Split(code, ":") {
		if segment == "" {
			return errors.Wrapf(ErrMalformed, "permission %q has an empty segment", code)
		}
	}

	return nil
}

// validateInput checks every field of a sanitized input against
// the rules of the entity and builds its payload
// NOTE: all failing fields are reported at once
func validateInput(e Entity, in NodeInput) (Payload, error) {
	fes := new(fieldErrors)

	switch {
	case in.Name == "":
		fes.add("name", ErrEmptyName)
	case utf8.RuneCountInString(in.Name) > MaxNameLength:
		fes.add("name", errors.Wrapf(ErrNameTooLong, "max %d characters", MaxNameLength))
	}

	if !govalidator.InRangeInt(in.SortOrder, MinSortOrder, MaxSortOrder) {
		fes.add("sort_order", errors.Wrapf(ErrSortOutOfRange, "%d not in [%d, %d]", in.SortOrder, MinSortOrder, MaxSortOrder))
	}

	fes.add("status", in.Status.Validate())

	if !e.Accepts(in.Kind) {
		fes.add("kind", errors.Wrapf(ErrKindMismatch, "%s does not accept %s", e, in.Kind))
		return nil, fes.result()
	}

	p, err := in.Attributes.Payload(in.Kind)
	if err != nil {
		fes.add("kind", err)
		return nil, fes.result()
	}

	validatePayload(fes, p)

	if err := fes.result(); err != nil {
		return nil, err
	}

	return p, nil
}

// validatePayload checks the kind-specific fields
func validatePayload(fes *fieldErrors, p Payload) {
	switch p := p.(type) {
	case Directory:
		fes.add("path", validatePath(p.Path))
		if p.Component != "" {
			fes.add("component", validatePattern(reComponent, p.Component))
		}
	case Menu:
		fes.add("path", validatePath(p.Path))
		fes.add("component", validatePattern(reComponent, p.Component))
		if p.Permission != "" {
			fes.add("permission", ValidatePermission(p.Permission))
		}
	case Button:
		fes.add("permission", ValidatePermission(p.Permission))
	case Department:
		fes.add("leader", validateRequired(p.Leader))
		if p.Phone != "" {
			fes.add("phone", validatePattern(rePhone, p.Phone))
		}
		if p.Email != "" {
			fes.add("email", validatePattern(reEmail, p.Email))
		}
	case DictType:
		fes.add("type", validatePattern(reDictType, p.Type))
	case DictData:
		fes.add("value", validateRequired(p.Value))
	case Post:
		fes.add("code", validateRequired(p.Code))
		if p.UserCount < 0 {
			fes.add("user_count", errors.Wrapf(ErrMalformed, "negative user count %d", p.UserCount))
		}
	default:
		fes.add("kind", ErrNilPayload)
	}
}

func validateRequired(s string) error {
	if govalidator.IsNull(s) {
		return ErrRequired
	}

	return nil
}

func validatePath(path string) error {
	if path == "" {
		return ErrRequired
	}

	if !rePath.MatchString(path) {
		return errors.Wrapf(ErrMalformed, "path %q", path)
	}

	return nil
}

func validatePattern(re *regexp.Regexp, s string) error {
	if s == "" {
		return ErrRequired
	}

	if !re.MatchString(s) {
		return errors.Wrapf(ErrMalformed, "%q", s)
	}

	return nil
}

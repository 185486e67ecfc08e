package chain

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// defaultValidatorEngine is shared across all Validated() patterns; a
// single validator.Validate is safe for concurrent use and caches struct
// metadata, matching internal/validation.NewDefault's rationale in the
// teacher.
var defaultValidatorEngine = validator.New()

// invalidVarError mirrors the teacher's internal/validation.invalidVarError:
// it rewrites go-playground/validator's generic struct-field phrasing into
// a message that reads naturally for a bare CLI value instead of a struct
// field.
type invalidVarError struct {
	fieldName string
	value     string
	cause     error
}

func (e *invalidVarError) Error() string {
	return fmt.Sprintf("`%s` is not a valid %s (%s)", e.value, e.fieldName, e.cause.Error())
}

func (e *invalidVarError) Unwrap() error { return e.cause }

type validatedPattern struct {
	inner Pattern
	tag   string
	name  string
}

// Validated decorates a Pattern with a go-playground/validator "Var" check
// run on the converted value, using the given validation tag (e.g.
// "gte=0,lte=65535" for a port number). name is used only for error
// messages. This realizes spec.md §4.1's "a list of post-validators may
// reject otherwise-valid values" for the common case of declarative
// constraint tags, grounded on internal/validation/validation.go.
func Validated(p Pattern, name, tag string) Pattern {
	return &validatedPattern{inner: p, tag: tag, name: name}
}

func (v *validatedPattern) String() string { return v.inner.String() }

func (v *validatedPattern) Validate(token any) Result {
	res := v.inner.Validate(token)
	if res.Kind != ResultValid {
		return res
	}

	if err := defaultValidatorEngine.Var(res.Value, v.tag); err != nil {
		return Invalid(&invalidVarError{fieldName: v.name, value: fmt.Sprintf("%v", res.Value), cause: err})
	}

	return res
}

// Choices is a convenience constructor building an Union of literals,
// mirroring the teacher's choice-validation idiom in validation.go
// (validateChoice), generalized to the Pattern model.
func Choices(values ...string) Pattern {
	members := make([]Pattern, len(values))
	for i, v := range values {
		members[i] = Literal(v)
	}

	return Union(false, members...)
}

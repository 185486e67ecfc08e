package chain

import (
	"fmt"
	"net/url"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ResultKind discriminates the outcome of a Pattern validation.
type ResultKind int

const (
	// ResultValid means the token was accepted and converted.
	ResultValid ResultKind = iota
	// ResultInvalid means the token was rejected.
	ResultInvalid
	// ResultDefault means the slot should fall back to its Arg default.
	ResultDefault
)

// Result is what a Pattern produces for one candidate token.
type Result struct {
	Kind  ResultKind
	Value any
	Err   error
}

// Valid builds an accepting Result.
func Valid(v any) Result { return Result{Kind: ResultValid, Value: v} }

// Invalid builds a rejecting Result.
func Invalid(err error) Result { return Result{Kind: ResultInvalid, Err: err} }

// Invalidf builds a rejecting Result from a format string.
func Invalidf(format string, args ...any) Result {
	return Invalid(fmt.Errorf(format, args...))
}

// DefaultResult builds a Result that asks the caller to use the Arg's
// configured default value instead of the candidate token.
func DefaultResult(v any) Result { return Result{Kind: ResultDefault, Value: v} }

// Pattern is a typed value matcher: it validates a candidate token (a
// string or an opaque message element) and either converts it, rejects
// it, or asks for the slot's default.
type Pattern interface {
	Validate(token any) Result
	String() string
}

// PostValidator rejects an otherwise-valid converted value.
type PostValidator func(value any) bool

// withPostValidators decorates a Pattern with extra acceptance checks that
// run only on ResultValid; any failing check turns the result into
// ResultInvalid with an "unmatch" error, per spec.md §4.1.
type withPostValidators struct {
	inner      Pattern
	validators []PostValidator
}

// WithPostValidators attaches post-validators to an existing Pattern.
func WithPostValidators(p Pattern, validators ...PostValidator) Pattern {
	return &withPostValidators{inner: p, validators: validators}
}

func (w *withPostValidators) String() string { return w.inner.String() }

func (w *withPostValidators) Validate(token any) Result {
	res := w.inner.Validate(token)
	if res.Kind != ResultValid {
		return res
	}

	for _, v := range w.validators {
		if !v(res.Value) {
			return Invalidf("value %v did not satisfy a post-validator for %s", res.Value, w.inner)
		}
	}

	return res
}

// withPrevious decorates a Pattern with a fallback preprocessor: if the
// token's type is rejected by the wrapped Pattern, the previous Pattern is
// tried first and, on success, its output is re-validated by the wrapped
// Pattern.
type withPrevious struct {
	inner    Pattern
	previous Pattern
}

// WithPrevious attaches a predecessor Pattern used to preprocess inputs
// whose type the wrapped Pattern would otherwise reject outright.
func WithPrevious(p Pattern, previous Pattern) Pattern {
	return &withPrevious{inner: p, previous: previous}
}

func (w *withPrevious) String() string { return w.inner.String() }

func (w *withPrevious) Validate(token any) Result {
	res := w.inner.Validate(token)
	if res.Kind != ResultInvalid || w.previous == nil {
		return res
	}

	pre := w.previous.Validate(token)
	if pre.Kind != ResultValid {
		return res
	}

	return w.inner.Validate(pre.Value)
}

// --------------------------------------------------------------------- //
//                              Any / AnyString / String                 //
// --------------------------------------------------------------------- //

type anyPattern struct{}

// Any accepts anything and yields the input unchanged.
func Any() Pattern { return anyPattern{} }

func (anyPattern) String() string       { return "any" }
func (anyPattern) Validate(t any) Result { return Valid(t) }

type anyStringPattern struct{}

// AnyString accepts anything and yields str(input).
func AnyString() Pattern { return anyStringPattern{} }

func (anyStringPattern) String() string { return "any_string" }

func (anyStringPattern) Validate(t any) Result {
	return Valid(toDisplayString(t))
}

type stringPattern struct{}

// String accepts only string tokens.
func StringPattern() Pattern { return stringPattern{} }

func (stringPattern) String() string { return "string" }

func (stringPattern) Validate(t any) Result {
	s, ok := t.(string)
	if !ok {
		return Invalidf("%v is not a string", t)
	}

	return Valid(s)
}

// --------------------------------------------------------------------- //
//                                   Regex                                //
// --------------------------------------------------------------------- //

type regexPattern struct {
	re      *regexp.Regexp
	convert func(groups []string, named map[string]string) (any, error)
}

// Regex matches string tokens only, requiring a full match; if convert is
// non-nil it is called with every numbered capture group in order
// (groups[0] is group 1) plus any named groups to produce the final value,
// otherwise the whole match is returned.
func Regex(expr string, convert func(groups []string, named map[string]string) (any, error)) Pattern {
	re := regexp.MustCompile("^(?:" + expr + ")$")

	return &regexPattern{re: re, convert: convert}
}

func (r *regexPattern) String() string { return r.re.String() }

func (r *regexPattern) Validate(t any) Result {
	s, ok := t.(string)
	if !ok {
		return Invalidf("%v is not a string", t)
	}

	m := r.re.FindStringSubmatch(s)
	if m == nil {
		return Invalidf("%q does not match %s", s, r.re.String())
	}

	if r.convert == nil {
		return Valid(s)
	}

	named := map[string]string{}

	for i, name := range r.re.SubexpNames() {
		if name != "" && i < len(m) {
			named[name] = m[i]
		}
	}

	v, err := r.convert(m[1:], named)
	if err != nil {
		return Invalid(err)
	}

	return Valid(v)
}

// --------------------------------------------------------------------- //
//                               TypeConvert                              //
// --------------------------------------------------------------------- //

type typeConvertPattern struct {
	target    string
	accepts   []reflect.Type
	converter func(any) (any, error)
}

// TypeConvert accepts a token whose runtime type is in accepts (or any
// type if accepts is empty), running converter to produce the bound value.
func TypeConvert(target string, accepts []reflect.Type, converter func(any) (any, error)) Pattern {
	return &typeConvertPattern{target: target, accepts: accepts, converter: converter}
}

func (t *typeConvertPattern) String() string { return t.target }

func (t *typeConvertPattern) Validate(token any) Result {
	if len(t.accepts) > 0 && !t.acceptsType(token) {
		return Invalidf("%v is not an accepted type for %s", token, t.target)
	}

	v, err := t.converter(token)
	if err != nil {
		return Invalid(err)
	}

	return Valid(v)
}

func (t *typeConvertPattern) acceptsType(token any) bool {
	tt := reflect.TypeOf(token)

	for _, a := range t.accepts {
		if tt == a {
			return true
		}
	}

	return false
}

// --------------------------------------------------------------------- //
//                                  Union                                  //
// --------------------------------------------------------------------- //

type unionPattern struct {
	members  []Pattern
	literals map[string]bool
	anti     bool
}

// Union tries members in declaration order, first match wins. With
// anti=true it succeeds iff every member rejects the token, yielding the
// token unchanged. When every member is a bare literal string and the
// token matches one of them, Union short-circuits without trying pattern
// members (per spec.md §4.1).
func Union(anti bool, members ...Pattern) Pattern {
	u := &unionPattern{members: members, anti: anti, literals: map[string]bool{}}

	for _, m := range members {
		if lit, ok := m.(*literalPattern); ok {
			u.literals[lit.value] = true
		}
	}

	return u
}

func (u *unionPattern) String() string {
	parts := make([]string, len(u.members))
	for i, m := range u.members {
		parts[i] = m.String()
	}

	return strings.Join(parts, "|")
}

func (u *unionPattern) Validate(token any) Result {
	if !u.anti && len(u.literals) == len(u.members) && len(u.members) > 0 {
		if s, ok := token.(string); ok && u.literals[s] {
			return Valid(s)
		}
	}

	if u.anti {
		for _, m := range u.members {
			if m.Validate(token).Kind == ResultValid {
				return Invalidf("%v matched a member of an anti-union", token)
			}
		}

		return Valid(token)
	}

	for _, m := range u.members {
		if res := m.Validate(token); res.Kind == ResultValid {
			return res
		}
	}

	return Invalidf("%v matched no member of %s", token, u.String())
}

// literalPattern matches one exact string value, used as a Union member.
type literalPattern struct{ value string }

// Literal matches exactly the given string.
func Literal(value string) Pattern { return &literalPattern{value: value} }

func (l *literalPattern) String() string { return l.value }

func (l *literalPattern) Validate(token any) Result {
	if s, ok := token.(string); ok && s == l.value {
		return Valid(s)
	}

	return Invalidf("%v is not the literal %q", token, l.value)
}

// --------------------------------------------------------------------- //
//                            Sequence / Mapping                          //
// --------------------------------------------------------------------- //

// SeqKind selects the bracket family a Sequence pattern recognises.
type SeqKind int

const (
	SeqList  SeqKind = iota // [a,b,c]
	SeqTuple                // (a,b,c)
	SeqSet                  // {a,b,c}
)

type sequencePattern struct {
	kind  SeqKind
	inner Pattern
}

// Sequence matches a bracketed string ("[…]", "(…)", "{…}" depending on
// kind) or a native Go slice, validating each element with inner.
func Sequence(kind SeqKind, inner Pattern) Pattern {
	return &sequencePattern{kind: kind, inner: inner}
}

func (s *sequencePattern) brackets() (byte, byte) {
	switch s.kind {
	case SeqTuple:
		return '(', ')'
	case SeqSet:
		return '{', '}'
	default:
		return '[', ']'
	}
}

func (s *sequencePattern) String() string {
	open, close := s.brackets()

	return fmt.Sprintf("%c%s,...%c", open, s.inner.String(), close)
}

func (s *sequencePattern) Validate(token any) Result {
	items, ok := asItemList(token, s.brackets())
	if !ok {
		return Invalidf("%v is not a %s", token, s.String())
	}

	out := make([]any, 0, len(items))

	for _, it := range items {
		res := s.inner.Validate(it)
		if res.Kind == ResultInvalid {
			return Invalidf("element %q of %v failed: %w", it, token, res.Err)
		}

		out = append(out, res.Value)
	}

	return Valid(out)
}

// asItemList turns a bracketed string or a native slice into its
// comma-separated elements (each still a string, unless the input was
// already a native slice).
func asItemList(token any, open, close byte) ([]any, bool) {
	if v := reflect.ValueOf(token); v.Kind() == reflect.Slice {
		out := make([]any, v.Len())
		for i := range out {
			out[i] = v.Index(i).Interface()
		}

		return out, true
	}

	s, ok := token.(string)
	if !ok {
		return nil, false
	}

	s = strings.TrimSpace(s)
	if len(s) < 2 || s[0] != open || s[len(s)-1] != close {
		return nil, false
	}

	inner := strings.TrimSpace(s[1 : len(s)-1])
	if inner == "" {
		return []any{}, true
	}

	parts := strings.Split(inner, ",")
	out := make([]any, len(parts))

	for i, p := range parts {
		out[i] = strings.TrimSpace(p)
	}

	return out, true
}

type mappingPattern struct {
	key   Pattern
	value Pattern
}

// Mapping matches a "{k:v, k2:v2}" string (':' or '=' separating key/value)
// or a native map, validating each entry with key/value.
func Mapping(key, value Pattern) Pattern {
	return &mappingPattern{key: key, value: value}
}

func (m *mappingPattern) String() string {
	return fmt.Sprintf("{%s:%s,...}", m.key.String(), m.value.String())
}

func (m *mappingPattern) Validate(token any) Result {
	if v := reflect.ValueOf(token); v.Kind() == reflect.Map {
		out := map[any]any{}

		iter := v.MapRange()
		for iter.Next() {
			kr := m.key.Validate(iter.Key().Interface())
			vr := m.value.Validate(iter.Value().Interface())

			if kr.Kind != ResultValid || vr.Kind != ResultValid {
				return Invalidf("invalid mapping entry in %v", token)
			}

			out[kr.Value] = vr.Value
		}

		return Valid(out)
	}

	s, ok := token.(string)
	if !ok {
		return Invalidf("%v is not a mapping", token)
	}

	items, ok := asItemList(s, '{', '}')
	if !ok {
		return Invalidf("%v is not a %s", token, m.String())
	}

	out := map[any]any{}

	for _, it := range items {
		entry, _ := it.(string)

		var k, v string

		if idx := strings.IndexAny(entry, ":="); idx >= 0 {
			k, v = entry[:idx], entry[idx+1:]
		} else {
			return Invalidf("mapping entry %q has no separator", entry)
		}

		kr := m.key.Validate(strings.TrimSpace(k))
		vr := m.value.Validate(strings.TrimSpace(v))

		if kr.Kind != ResultValid || vr.Kind != ResultValid {
			return Invalidf("invalid mapping entry %q", entry)
		}

		out[kr.Value] = vr.Value
	}

	return Valid(out)
}

// --------------------------------------------------------------------- //
//                                  KwBool                                 //
// --------------------------------------------------------------------- //

type kwBoolPattern struct{ name string }

// KwBool matches "name" -> true, or an optional "no"/"no-" prefixed form
// -> false; used for option-style boolean toggles with no argument.
func KwBool(name string) Pattern { return &kwBoolPattern{name: name} }

func (k *kwBoolPattern) String() string { return fmt.Sprintf("(no-)?%s", k.name) }

func (k *kwBoolPattern) Validate(token any) Result {
	s, ok := token.(string)
	if !ok {
		return Invalidf("%v is not a string", token)
	}

	switch {
	case s == k.name:
		return Valid(true)
	case s == "no"+k.name, s == "no-"+k.name:
		return Valid(false)
	default:
		return Invalidf("%q is neither %q nor its negation", s, k.name)
	}
}

// --------------------------------------------------------------------- //
//                                 AllParam                                //
// --------------------------------------------------------------------- //

type allParamPattern struct{}

// AllParam greedily consumes the rest of the stream; it is handled
// specially by the Args analyser (see analyseNormalArg in analyser.go)
// rather than by Validate,
// which simply accepts whatever it is given.
func AllParam() Pattern { return allParamPattern{} }

func (allParamPattern) String() string        { return "..." }
func (allParamPattern) Validate(t any) Result { return Valid(t) }

// --------------------------------------------------------------------- //
//                          Default conversion registry                   //
// --------------------------------------------------------------------- //

// defaultPatterns is the process-wide, read-only-after-init registry of
// built-in conversions, mirroring spec.md §9's "Pattern-registry" shared
// resource.
var defaultPatterns = map[string]Pattern{
	"string": StringPattern(),
	"any":    Any(),
	"int": TypeConvert("int", []reflect.Type{reflect.TypeOf("")}, func(v any) (any, error) {
		return strconv.Atoi(v.(string))
	}),
	"float": TypeConvert("float", []reflect.Type{reflect.TypeOf("")}, func(v any) (any, error) {
		return strconv.ParseFloat(v.(string), 64)
	}),
	"bool": TypeConvert("bool", []reflect.Type{reflect.TypeOf("")}, func(v any) (any, error) {
		return strconv.ParseBool(v.(string))
	}),
	// duration mirrors the teacher's reflective struct-tag binder's
	// time.Duration handling: a Go duration string ("1h30m") parsed via
	// time.ParseDuration.
	"duration": TypeConvert("duration", []reflect.Type{reflect.TypeOf("")}, func(v any) (any, error) {
		return time.ParseDuration(v.(string))
	}),
	"url": TypeConvert("url", []reflect.Type{reflect.TypeOf("")}, func(v any) (any, error) {
		return url.Parse(v.(string))
	}),
}

// DefaultPattern looks up a named built-in conversion (int/float/bool/
// string/any/duration/url), for convenience when declaring Args without constructing a
// Pattern by hand.
func DefaultPattern(name string) (Pattern, bool) {
	p, ok := defaultPatterns[name]

	return p, ok
}

func toDisplayString(t any) string {
	if s, ok := t.(string); ok {
		return s
	}

	return fmt.Sprintf("%v", t)
}

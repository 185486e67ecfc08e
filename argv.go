package chain

import (
	"hash/fnv"
	"strings"
)

// TextOf projects an opaque message element to text, or reports ok=false
// ("skip") when the element has no textual representation.
type TextOf func(elem any) (text string, ok bool)

// defaultTextOf treats strings as themselves and rejects everything else,
// the conservative default used when a host does not install a projector.
func defaultTextOf(elem any) (string, bool) {
	s, ok := elem.(string)

	return s, ok
}

// Context carries values available to the opt-in context-interpolation
// mode (spec.md §4.2), with only attribute/index access permitted — no
// expression evaluation — per spec.md §9's sandboxing note.
type Context struct {
	data map[string]any
}

// NewContext builds a Context from a flat map of named values.
func NewContext(data map[string]any) *Context {
	if data == nil {
		data = map[string]any{}
	}

	return &Context{data: data}
}

// Get resolves a dotted name ("user.name") via successive map[string]any
// lookups, never evaluating arbitrary expressions. Struct fields and
// other value types are not traversed: a path through one reports false.
func (c *Context) Get(name string) (any, bool) {
	if c == nil {
		return nil, false
	}

	parts := strings.Split(name, ".")

	cur, ok := c.data[parts[0]]
	if !ok {
		return nil, false
	}

	for _, part := range parts[1:] {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}

		cur, ok = m[part]
		if !ok {
			return nil, false
		}
	}

	return cur, true
}

// Argv is the mutable token cursor used during one parse. Elements are
// either strings (which may contain multiple logical tokens separated by
// sep) or opaque values.
type Argv struct {
	raw    []any
	bak    []any
	elems  []any  // remaining, unconsumed elements
	carry  string // leftover piece of elems[0] still to be split, when elems[0] was a string
	sep    string
	filterCRLF bool
	textOf TextOf
	Context *Context
	err    error
}

// argvSnapshot is an opaque token returned by Snapshot and consumed by
// Restore, implementing the rollback half of spec.md §3's Argv contract.
type argvSnapshot struct {
	elems []any
	carry string
}

// NewArgv builds an Argv over raw tokens with the default logical
// separator sep (typically " ").
func NewArgv(raw []any, sep string, textOf TextOf) *Argv {
	if textOf == nil {
		textOf = defaultTextOf
	}

	cp := make([]any, len(raw))
	copy(cp, raw)

	return &Argv{
		raw:    cp,
		bak:    append([]any{}, cp...),
		elems:  cp,
		sep:    sep,
		textOf: textOf,
	}
}

// Empty reports whether the stream has no input at all (spec.md §7's
// NullMessage condition is raised by the caller when this is true at
// parse start).
func (a *Argv) Empty() bool {
	return len(a.raw) == 0
}

// EOF reports whether the cursor has consumed everything.
func (a *Argv) EOF() bool {
	return a.carry == "" && len(a.elems) == 0
}

// Snapshot captures the current cursor position for later Restore.
func (a *Argv) Snapshot() argvSnapshot {
	cp := make([]any, len(a.elems))
	copy(cp, a.elems)

	return argvSnapshot{elems: cp, carry: a.carry}
}

// Restore rewinds the cursor to a previously captured Snapshot.
func (a *Argv) Restore(s argvSnapshot) {
	a.elems = s.elems
	a.carry = s.carry
}

// splitFirst splits s on any rune in sepChars, returning the first
// (possibly empty) piece and the remainder with any leading run of
// separator runes collapsed away — matching the teacher's single-token
// pop() generalized to a configurable charset.
func splitFirst(s, sepChars string) (first, rest string) {
	if sepChars == "" {
		return s, ""
	}

	idx := strings.IndexAny(s, sepChars)
	if idx < 0 {
		return s, ""
	}

	first = s[:idx]
	rest = strings.TrimLeft(s[idx:], sepChars)

	return first, rest
}

// Next yields the next logical token (splitting strings on sep) and
// advances the cursor. ok is false at end of stream.
func (a *Argv) Next(sep string) (any, bool) {
	if sep == "" {
		sep = a.sep
	}

	for {
		if a.carry != "" {
			first, rest := splitFirst(a.carry, sep)
			a.carry = rest

			if first == "" && rest == "" {
				continue
			}

			return first, true
		}

		if len(a.elems) == 0 {
			return nil, false
		}

		head := a.elems[0]
		a.elems = a.elems[1:]

		s, isString := head.(string)
		if !isString {
			return head, true
		}

		first, rest := splitFirst(s, sep)
		a.carry = rest

		if first == "" && rest != "" {
			continue
		}

		if first == "" {
			continue
		}

		return first, true
	}
}

// Peek returns the next logical token without advancing.
func (a *Argv) Peek(sep string) (any, bool) {
	snap := a.Snapshot()
	tok, ok := a.Next(sep)
	a.Restore(snap)

	return tok, ok
}

// Rollback un-advances the cursor by one logical token, restoring any
// mid-string split. tok must be the value most recently returned by Next.
func (a *Argv) Rollback(tok any, sep string) {
	if sep == "" {
		sep = a.sep
	}

	if s, ok := tok.(string); ok && a.carry != "" {
		a.carry = s + sep[:1] + a.carry

		return
	}

	if s, ok := tok.(string); ok {
		a.elems = append([]any{s}, a.elems...)

		return
	}

	a.elems = append([]any{tok}, a.elems...)
}

// Release returns the remaining tokens. If noSplit is false, remaining
// string elements are split on sep first; if recover is true the cursor
// is left unchanged, otherwise it is fully consumed.
func (a *Argv) Release(sep string, recover bool, noSplit bool) []any {
	if sep == "" {
		sep = a.sep
	}

	var out []any

	if a.carry != "" {
		if noSplit {
			out = append(out, a.carry)
		} else {
			rem := a.carry

			for rem != "" {
				first, rest := splitFirst(rem, sep)
				if first != "" {
					out = append(out, first)
				}

				if rest == rem {
					break
				}

				rem = rest
			}
		}
	}

	for _, e := range a.elems {
		s, isString := e.(string)
		if !isString || noSplit {
			out = append(out, e)

			continue
		}

		rem := s
		for rem != "" {
			first, rest := splitFirst(rem, sep)
			if first != "" {
				out = append(out, first)
			}

			if rest == rem {
				break
			}

			rem = rest
		}
	}

	if !recover {
		a.elems = nil
		a.carry = ""
	}

	return out
}

// Addon merges extra tokens onto the front of the remaining stream. If a
// string element was only partly consumed, its unconsumed remainder is
// joined with sep onto the last extra element when that is a string (and
// kept as its own element otherwise); all other elements stay separate.
// This is how a completion resume splices new text into the cursor.
func (a *Argv) Addon(extra []any) {
	if len(extra) == 0 {
		return
	}

	merged := make([]any, 0, len(extra)+len(a.elems)+1)
	merged = append(merged, extra...)

	if a.carry != "" {
		if last, ok := lastString(merged); ok {
			merged[len(merged)-1] = last + a.sep + a.carry
		} else {
			merged = append(merged, a.carry)
		}

		a.carry = ""
	}

	merged = append(merged, a.elems...)
	a.elems = merged
}

func lastString(list []any) (string, bool) {
	if len(list) == 0 {
		return "", false
	}

	s, ok := list[len(list)-1].(string)

	return s, ok
}

// GenerateToken returns a stable fingerprint for a token list, used by the
// Manager's result cache (spec.md §4.5 step 1, §8 property 2).
func GenerateToken(list []any) uint64 {
	h := fnv.New64a()

	for _, tok := range list {
		switch v := tok.(type) {
		case string:
			h.Write([]byte{0})
			h.Write([]byte(v))
		default:
			h.Write([]byte{1})
			h.Write([]byte(toDisplayString(v)))
		}

		h.Write([]byte{0xff})
	}

	return h.Sum64()
}

// Fingerprint hashes the Argv's original raw tokens.
func (a *Argv) Fingerprint() uint64 {
	return GenerateToken(a.raw)
}

// setError records the first error raised during a parse; subsequent
// calls are no-ops, matching spec.md §4.5's "the first raised argv.error
// is preserved even when the loop later succeeds on an extra-allowed
// token".
func (a *Argv) setError(err error) {
	if a.err == nil {
		a.err = err
	}
}

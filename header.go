package chain

import (
	"regexp"
	"strings"
)

// headerFlag discriminates the Header matcher shapes implemented here:
// literal set, regex, and pair ("double"), mirroring original_source's
// Header.flag discriminator. There is no type-pattern (element-class)
// header shape.
type headerFlag int

const (
	headerLiteralSet headerFlag = iota
	headerRegex
	headerPair
)

// bracketRegexTable mirrors original_source/_header.py's regex_patterns:
// the literal regex substituted for a bare "{name:kind}" placeholder kind.
var bracketRegexTable = map[string]string{
	"str":    `.+`,
	"int":    `-?\d+`,
	"float":  `-?\d+\.?\d*`,
	"number": `-?\d+(?:\.\d*)?`,
	"bool":   `(?i:true|false)`,
	"list":   `\[.+?\]`,
	"tuple":  `\(.+?\)`,
	"set":    `\{.+?\}`,
	"dict":   `\{.+?\}`,
}

var bracketSplitRE = regexp.MustCompile(`(\{.*?\})`)

// handleBracket turns a header command string containing "{name[:kind]}"
// placeholders into an anchorable regex fragment, porting
// original_source/_header.py's handle_bracket. Returns ok=false when the
// string contains no placeholder (so the caller can use a literal match
// instead of compiling a regex).
func handleBracket(name string) (pattern string, ok bool) {
	parts := bracketSplitRE.Split(name, -1)
	matches := bracketSplitRE.FindAllString(name, -1)

	if len(matches) == 0 {
		return regexp.QuoteMeta(name), false
	}

	var b strings.Builder

	mi := 0

	for i, part := range parts {
		b.WriteString(regexp.QuoteMeta(part))

		if mi < len(matches) {
			b.WriteString(bracketFragment(matches[mi]))
			mi++
		}

		_ = i
	}

	return b.String(), true
}

func bracketFragment(brace string) string {
	inner := strings.TrimSuffix(strings.TrimPrefix(brace, "{"), "}")
	res := strings.SplitN(inner, ":", 2)

	switch {
	case len(res) == 1 || res[1] == "":
		if res[0] == "" {
			return `.+?`
		}

		return `(?P<` + res[0] + `>.+)`
	case res[0] == "":
		if pat, ok := bracketRegexTable[res[1]]; ok {
			return pat
		}

		return res[1]
	default:
		if pat, ok := bracketRegexTable[res[1]]; ok {
			return `(?P<` + res[0] + `>` + pat + `)`
		}

		return `(?P<` + res[0] + `>` + res[1] + `)`
	}
}

// Header is the matcher covering a command's prefixes and its name.
type Header struct {
	Command  string
	Prefixes []string
	Compact  bool

	flag           headerFlag
	literals       map[string]bool
	re             *regexp.Regexp
	compactPrefixRE *regexp.Regexp
	pairPrefix     func(any) bool
}

// NewHeader builds a Header for the given command name and prefixes. If
// command contains "{name[:kind]}" placeholders, or starts with "re:", a
// regex matcher is compiled; otherwise a literal prefix+command set is
// used (the fast path), per spec.md §3.
func NewHeader(command string, prefixes ...string) *Header {
	h := &Header{Command: command, Prefixes: prefixes}

	switch {
	case strings.HasPrefix(command, "re:"):
		h.flag = headerRegex
		h.re = regexp.MustCompile("^(?:" + strings.TrimPrefix(command, "re:") + ")$")
	default:
		if frag, isPattern := handleBracket(command); isPattern {
			h.flag = headerRegex
			h.re = regexp.MustCompile("^" + combinePrefixes(prefixes) + frag + "$")
		} else {
			h.flag = headerLiteralSet
			h.literals = map[string]bool{}

			if len(prefixes) == 0 {
				h.literals[command] = true
			} else {
				for _, p := range prefixes {
					h.literals[p+command] = true
				}
			}
		}
	}

	return h
}

// NewPairHeader builds a Header matching a ("prefix", "command") pair
// where the prefix is tested with a predicate (useful when the prefix is
// an opaque message element rather than a string), per spec.md §3's
// "double" matcher shape.
func NewPairHeader(command string, prefixTest func(any) bool) *Header {
	return &Header{
		Command:    command,
		flag:       headerPair,
		pairPrefix: prefixTest,
		literals:   map[string]bool{command: true},
	}
}

// MakeCompact marks the header so it may be immediately followed by the
// first argument with no separator.
func (h *Header) MakeCompact() *Header {
	h.Compact = true

	if h.flag == headerLiteralSet {
		alt := make([]string, 0, len(h.literals))
		for lit := range h.literals {
			alt = append(alt, regexp.QuoteMeta(lit))
		}

		h.compactPrefixRE = regexp.MustCompile("^(?:" + strings.Join(alt, "|") + ")")
	}

	return h
}

func combinePrefixes(prefixes []string) string {
	if len(prefixes) == 0 {
		return ""
	}

	quoted := make([]string, len(prefixes))
	for i, p := range prefixes {
		quoted[i] = regexp.QuoteMeta(p)
	}

	return "(?:" + strings.Join(quoted, "|") + ")"
}

// headerMatch is the outcome of analyse_header (spec.md §4.3).
type headerMatch struct {
	Matched bool
	Groups  map[string]string
	Rest    string // unconsumed tail, set when Header.Compact matched only the prefix
}

// match runs the header matcher against the leading textual token. It must
// not be called for a pair header — use matchPair, which needs both the
// prefix element and the command token.
func (h *Header) match(first any, textOf TextOf) headerMatch {
	switch h.flag {
	case headerRegex:
		s, ok := first.(string)
		if !ok {
			return headerMatch{}
		}

		m := h.re.FindStringSubmatch(s)
		if m == nil {
			return headerMatch{}
		}

		groups := map[string]string{}

		for i, name := range h.re.SubexpNames() {
			if name != "" && i < len(m) {
				groups[name] = m[i]
			}
		}

		return headerMatch{Matched: true, Groups: groups}
	default:
		s, ok := first.(string)
		if !ok {
			return headerMatch{}
		}

		if h.literals[s] {
			return headerMatch{Matched: true}
		}

		if h.Compact && h.compactPrefixRE != nil {
			loc := h.compactPrefixRE.FindStringIndex(s)
			if loc != nil && loc[0] == 0 {
				return headerMatch{Matched: true, Rest: s[loc[1]:]}
			}
		}

		return headerMatch{}
	}
}

// matchPair runs a "double" header's matcher against the opaque prefix
// element and the command token that follows it, per spec.md §3/§4.3: the
// prefix is tested with pairPrefix (never converted to text — it need not
// have one), and only once that predicate accepts does the command token
// get compared against the literal command text.
func (h *Header) matchPair(prefix, command any, textOf TextOf) headerMatch {
	if h.pairPrefix == nil || !h.pairPrefix(prefix) {
		return headerMatch{}
	}

	s, ok := textOf(command)
	if !ok || !h.literals[s] {
		return headerMatch{}
	}

	return headerMatch{Matched: true}
}

// candidates returns the concrete header strings used for fuzzy matching
// on a total mismatch (spec.md §4.3).
func (h *Header) candidates() []string {
	if h.flag == headerLiteralSet || h.flag == headerPair {
		out := make([]string, 0, len(h.literals))
		for lit := range h.literals {
			out = append(out, lit)
		}

		return out
	}

	return []string{h.Command}
}

package chain

import (
	"fmt"
	"regexp"
	"strings"
)

// logDebug emits an engine-internals record through cfg.Logger, per
// spec.md §6. Config.Logger is normally non-nil (DefaultConfig sets it to
// slog.Default()), but a caller-built zero Config must not panic.
func logDebug(cfg Config, msg string, args ...any) {
	if cfg.Logger == nil {
		return
	}

	cfg.Logger.Debug(msg, args...)
}

// parseOptions thread per-call state through the analyser that is not
// part of the command's static Config: whether a CompletionSession is
// driving this parse (so missing-argument points raise PauseTriggered
// with prompts instead of ArgumentMissing), per spec.md §9's preference
// for an explicit suspend signal over ambient/global state.
type parseOptions struct {
	completing bool
}

// Prompt is one completion candidate offered at a suspension point.
type Prompt struct {
	Text string
	Hint string
}

// frame accumulates one subAnalyser level's parse results: the body's
// own args, its options, and any entered subcommands.
type frame struct {
	args  map[string]any
	options map[string]OptionResult
	subs  map[string]SubcommandResult
	extra []any
}

func newFrame() frame {
	return frame{
		args:    map[string]any{},
		options: map[string]OptionResult{},
		subs:    map[string]SubcommandResult{},
	}
}

// --------------------------------------------------------------------- //
//                              Header phase                              //
// --------------------------------------------------------------------- //

func analyseHeader(h *Header, argv *Argv, cfg Config) (HeadResult, error) {
	if argv.Empty() {
		return HeadResult{}, newError(ErrNullMessage, "empty input")
	}

	if h.flag == headerPair {
		return analysePairHeader(h, argv, cfg)
	}

	snap := argv.Snapshot()

	tok, ok := argv.Next(" ")
	if !ok {
		return HeadResult{}, newError(ErrNullMessage, "empty input")
	}

	m := h.match(tok, argv.textOf)
	if m.Matched {
		if m.Rest != "" {
			argv.Rollback(m.Rest, " ")
		}

		logDebug(cfg, "header matched", "token", tok)

		return HeadResult{Origin: toDisplayString(tok), Matched: true, Groups: m.Groups}, nil
	}

	argv.Restore(snap)
	logDebug(cfg, "header match attempt failed", "token", tok)

	if cfg.FuzzyMatch {
		if s, isStr := tok.(string); isStr {
			closest, sim := similarity(s, h.candidates())
			if closest != "" && sim >= cfg.FuzzyThreshold {
				logDebug(cfg, "header fuzzy suggestion", "token", s, "suggestion", closest, "similarity", sim)

				return HeadResult{}, withData(newErrorf(ErrFuzzyMatch, "unmatched header %q, did you mean %q?", s, closest), closest)
			}
		}
	}

	return HeadResult{}, newErrorf(ErrInvalidHeader, "unmatched header for %v", tok)
}

// analysePairHeader handles a "double" header, which needs two elements off
// the front of argv: an opaque prefix tested with pairPrefix, then a
// command token compared against the literal command text.
func analysePairHeader(h *Header, argv *Argv, cfg Config) (HeadResult, error) {
	snap := argv.Snapshot()

	prefixTok, ok := argv.Next(" ")
	if !ok {
		return HeadResult{}, newError(ErrNullMessage, "empty input")
	}

	cmdTok, ok := argv.Next(" ")
	if !ok {
		argv.Restore(snap)
		logDebug(cfg, "header match attempt failed", "token", prefixTok)

		return HeadResult{}, newErrorf(ErrInvalidHeader, "unmatched header for %v", prefixTok)
	}

	m := h.matchPair(prefixTok, cmdTok, argv.textOf)
	if m.Matched {
		logDebug(cfg, "header matched", "token", cmdTok)

		return HeadResult{Origin: toDisplayString(cmdTok), Matched: true, Groups: m.Groups}, nil
	}

	argv.Restore(snap)
	logDebug(cfg, "header match attempt failed", "token", cmdTok)

	return HeadResult{}, newErrorf(ErrInvalidHeader, "unmatched header for %v", cmdTok)
}

// --------------------------------------------------------------------- //
//                               Args phase                                //
// --------------------------------------------------------------------- //

func missingErr(a Arg) error {
	tip := a.Field.MissingTips
	if tip == "" {
		tip = fmt.Sprintf("argument %q is required", a.Name)
	}

	return newError(ErrArgumentMissing, tip)
}

func unmatchErr(a Arg, tok any, cause error) error {
	tip := a.Field.UnmatchTips
	if tip == "" {
		tip = fmt.Sprintf("argument %q rejected %v: %v", a.Name, tok, cause)
	}

	return newError(ErrInvalidParam, tip)
}

func argSep(a Arg, fallback string) string {
	if a.Separators != "" {
		return a.Separators
	}

	return fallback
}

// contextBracketRE and contextParenRE recognise the two spellings
// Config.ContextStyle can select for a token that should be resolved
// against Argv.Context rather than validated as a literal, per spec.md
// §4.2.
var (
	contextBracketRE = regexp.MustCompile(`^\{([A-Za-z_]\w*(?:\.[A-Za-z_]\w*)*)\}$`)
	contextParenRE   = regexp.MustCompile(`^\$\(([A-Za-z_]\w*(?:\.[A-Za-z_]\w*)*)\)$`)
)

// resolveContext substitutes a "{name}" / "$(name)" placeholder token
// (depending on cfg.ContextStyle) for the value it names in argv.Context,
// per spec.md §4.2. ok is false when tok is not a placeholder for the
// active style, in which case the caller proceeds with tok unchanged; an
// active style with an unresolved name raises ErrArgumentMissing.
func resolveContext(cfg Config, argv *Argv, tok any) (value any, ok bool, err error) {
	if cfg.ContextStyle == ContextStyleNone {
		return tok, false, nil
	}

	s, isStr := tok.(string)
	if !isStr {
		return tok, false, nil
	}

	var re *regexp.Regexp

	switch cfg.ContextStyle {
	case ContextStyleBracket:
		re = contextBracketRE
	case ContextStyleParentheses:
		re = contextParenRE
	default:
		return tok, false, nil
	}

	m := re.FindStringSubmatch(s)
	if m == nil {
		return tok, false, nil
	}

	v, found := argv.Context.Get(m[1])
	if !found {
		return nil, true, newErrorf(ErrArgumentMissing, "unresolved context name %q", m[1])
	}

	return v, true, nil
}

// analyseArgs implements spec.md §4.2's ordered binding: normal ->
// vars_positional -> keyword_only -> vars_keyword.
func analyseArgs(args Args, argv *Argv, paramIDs map[string]bool, cfg Config, popts parseOptions) (map[string]any, error) {
	result := map[string]any{}
	sep := " "

	for _, arg := range args.Normal() {
		if err := analyseNormalArg(arg, argv, paramIDs, sep, result, cfg, popts); err != nil {
			return result, err
		}
	}

	if varArg, ok := args.VarPositional(); ok {
		if err := analyseVarPositional(varArg, argv, paramIDs, sep, result, cfg); err != nil {
			return result, err
		}
	}

	kwOnlys := args.KeywordOnly()
	if len(kwOnlys) > 0 {
		if err := analyseKeywordOnly(kwOnlys, argv, sep, result, cfg); err != nil {
			return result, err
		}
	}

	if varKw, ok := args.VarKeyword(); ok {
		if err := analyseVarKeyword(varKw, argv, sep, result, cfg); err != nil {
			return result, err
		}
	}

	return result, nil
}

func analyseNormalArg(arg Arg, argv *Argv, paramIDs map[string]bool, sep string, result map[string]any, cfg Config, popts parseOptions) error {
	tok, ok := argv.Peek(argSep(arg, sep))
	if !ok {
		if arg.Field.Optional {
			result[arg.Name] = arg.Field.Default

			return nil
		}

		if popts.completing {
			return &ParseError{Type: ErrPauseTriggered, Message: "completion paused on " + arg.Name,
				Data: []string{arg.Name}, Prompts: []Prompt{{Text: "", Hint: arg.Field.CompletionHint}}}
		}

		return missingErr(arg)
	}

	if s, isStr := tok.(string); isStr && paramIDs[s] && arg.Field.Optional {
		result[arg.Name] = arg.Field.Default

		return nil
	}

	argv.Next(argSep(arg, sep))

	if _, isAll := arg.Pattern.(allParamPattern); isAll {
		result[arg.Name] = append([]any{tok}, argv.Release(sep, false, false)...)

		return nil
	}

	if v, resolved, err := resolveContext(cfg, argv, tok); resolved {
		if err != nil {
			return err
		}

		result[arg.Name] = v

		return nil
	}

	res := arg.Pattern.Validate(tok)

	switch res.Kind {
	case ResultValid:
		result[arg.Name] = res.Value
	case ResultDefault:
		result[arg.Name] = res.Value
	default:
		if arg.Field.Optional {
			argv.Rollback(tok, argSep(arg, sep))
			result[arg.Name] = arg.Field.Default

			return nil
		}

		return unmatchErr(arg, tok, res.Err)
	}

	return nil
}

func analyseVarPositional(arg Arg, argv *Argv, paramIDs map[string]bool, sep string, result map[string]any, cfg Config) error {
	var collected []any

	cap := -1
	if arg.Field.Multi.Kind == MultiCount {
		cap = arg.Field.Multi.N
	}

	for cap < 0 || len(collected) < cap {
		tok, ok := argv.Peek(argSep(arg, sep))
		if !ok {
			break
		}

		if s, isStr := tok.(string); isStr && paramIDs[s] && !arg.Field.Hidden {
			break
		}

		if v, resolved, err := resolveContext(cfg, argv, tok); resolved {
			if err != nil {
				return err
			}

			argv.Next(argSep(arg, sep))
			collected = append(collected, v)

			continue
		}

		res := arg.Pattern.Validate(tok)
		if res.Kind == ResultInvalid {
			break
		}

		argv.Next(argSep(arg, sep))
		collected = append(collected, res.Value)
	}

	if arg.Field.Multi.Kind == MultiPlus && len(collected) == 0 {
		return missingErr(arg)
	}

	if arg.Field.Multi.Kind == MultiJoin {
		parts := make([]string, len(collected))
		for i, v := range collected {
			parts[i] = toDisplayString(v)
		}

		result[arg.Name] = strings.Join(parts, argSep(arg, sep))

		return nil
	}

	if collected == nil {
		collected = []any{}
	}

	result[arg.Name] = collected

	return nil
}

// stripBoolPrefix recognises a "(?:-*no)?-*name" boolean-toggle spelling on
// the left of a keyword-only assignment, per spec.md §4.2, returning the
// toggle's value and whether key matched name at all.
func stripBoolPrefix(key, name string) (bool, bool) {
	trimmed := strings.TrimLeft(key, "-")

	if trimmed == name {
		return true, true
	}

	if strings.HasPrefix(trimmed, "no") && strings.TrimLeft(strings.TrimPrefix(trimmed, "no"), "-") == name {
		return false, true
	}

	return false, false
}

func analyseKeywordOnly(kwOnlys []Arg, argv *Argv, sep string, result map[string]any, cfg Config) error {
	byName := map[string]Arg{}
	for _, a := range kwOnlys {
		byName[a.Name] = a
	}

	seen := map[string]bool{}

	for {
		tok, ok := argv.Peek(sep)
		if !ok {
			break
		}

		s, isStr := tok.(string)
		if !isStr {
			break
		}

		kwSep := "="

		left := s
		right := ""
		hasInline := false

		if idx := strings.IndexAny(s, kwSep); idx >= 0 {
			left, right = s[:idx], s[idx+1:]
			hasInline = true
		}

		arg, found := byName[left]

		if !found {
			if ok, isBool := stripBoolPrefix(left, boolLikeName(byName, left)); isBool {
				arg, found = byName[boolLikeName(byName, left)]

				if found {
					if seen[arg.Name] {
						return newErrorf(ErrInvalidParam, "duplicate keyword-only key %q", arg.Name)
					}

					argv.Next(sep)
					result[arg.Name] = ok
					seen[arg.Name] = true

					continue
				}
			}

			break
		}

		if seen[arg.Name] {
			return newErrorf(ErrInvalidParam, "duplicate keyword-only key %q", arg.Name)
		}

		argv.Next(sep)

		var valueTok any

		if hasInline {
			valueTok = right
		} else {
			v, ok := argv.Next(sep)
			if !ok {
				return missingErr(arg)
			}

			valueTok = v
		}

		if v, resolved, err := resolveContext(cfg, argv, valueTok); resolved {
			if err != nil {
				return err
			}

			result[arg.Name] = v
			seen[arg.Name] = true

			continue
		}

		res := arg.Pattern.Validate(valueTok)
		if res.Kind == ResultInvalid {
			return unmatchErr(arg, valueTok, res.Err)
		}

		result[arg.Name] = res.Value
		seen[arg.Name] = true
	}

	for _, a := range kwOnlys {
		if seen[a.Name] {
			continue
		}

		if a.Field.Optional {
			result[a.Name] = a.Field.Default

			continue
		}

		return missingErr(a)
	}

	return nil
}

// boolLikeName finds the keyword-only name that key (after stripping a
// "no"/"-" prefix) would refer to, returning "" if none match.
func boolLikeName(byName map[string]Arg, key string) string {
	trimmed := strings.TrimLeft(key, "-")
	trimmed = strings.TrimPrefix(trimmed, "no")
	trimmed = strings.TrimLeft(trimmed, "-")

	if _, ok := byName[trimmed]; ok {
		return trimmed
	}

	return ""
}

func analyseVarKeyword(arg Arg, argv *Argv, sep string, result map[string]any, cfg Config) error {
	out := map[string]any{}

	for {
		tok, ok := argv.Peek(sep)
		if !ok {
			break
		}

		s, isStr := tok.(string)
		if !isStr {
			break
		}

		idx := strings.IndexAny(s, "=")
		if idx < 0 {
			break
		}

		key, val := s[:idx], s[idx+1:]

		if v, resolved, err := resolveContext(cfg, argv, val); resolved {
			if err != nil {
				return err
			}

			argv.Next(sep)
			out[key] = v

			continue
		}

		res := arg.Pattern.Validate(val)
		if res.Kind == ResultInvalid {
			break
		}

		argv.Next(sep)
		out[key] = res.Value
	}

	result[arg.Name] = out

	return nil
}

// --------------------------------------------------------------------- //
//                               Option phase                              //
// --------------------------------------------------------------------- //

func aliasPrefixMatch(opt *Option, s string) (string, bool) {
	for _, alias := range opt.AllAliases() {
		if strings.HasPrefix(s, alias) && len(s) > len(alias) {
			return alias, true
		}
	}

	return "", false
}

func analyseOption(opt *Option, tok any, argv *Argv, paramIDs map[string]bool, cfg Config, popts parseOptions) (OptionResult, error) {
	if opt.Compact {
		if s, isStr := tok.(string); isStr {
			if alias, ok := aliasPrefixMatch(opt, s); ok {
				argv.Rollback(s[len(alias):], " ")
			}
		}
	}

	args, err := analyseArgs(opt.Args, argv, paramIDs, cfg, popts)
	if err != nil {
		return OptionResult{}, err
	}

	return OptionResult{Args: args}, nil
}

func capturedValue(opt *Option, args map[string]any) any {
	if len(args) > 0 {
		return args
	}

	if opt.NoArgValue != nil {
		return opt.NoArgValue
	}

	return true
}

func foldOption(f frame, opt *Option, res OptionResult) frame {
	existing, seen := f.options[opt.Dest]
	if !seen {
		existing.Value = opt.Action.NormalizeDefault(opt.Default, opt.Default != nil)
	}

	captured := capturedValue(opt, res.Args)
	existing.Value = opt.Action.Apply(existing.Value, captured)

	if existing.Args == nil {
		existing.Args = map[string]any{}
	}

	for k, v := range res.Args {
		existing.Args[k] = v
	}

	f.options[opt.Dest] = existing

	return f
}

// --------------------------------------------------------------------- //
//                              Built-in options                          //
// --------------------------------------------------------------------- //

func matchBuiltin(s string, cfg Config) (string, bool) {
	for name, names := range cfg.BuiltinOptionName {
		if cfg.disables(name) {
			continue
		}

		for _, n := range names {
			if n == s {
				return name, true
			}
		}
	}

	return "", false
}

// --------------------------------------------------------------------- //
//                                Body phase                               //
// --------------------------------------------------------------------- //

// runBody executes spec.md §4.5's body-phase loop over one subAnalyser's
// compiled routing tables, returning its accumulated frame.
func runBody(sa *subAnalyser, argv *Argv, cfg Config, popts parseOptions) (frame, error) {
	f := newFrame()
	ownArgsConsumed := sa.ownArgs.Len() == 0
	var pendingSentences []string

	for {
		if argv.EOF() {
			break
		}

		tok, ok := argv.Peek(" ")
		if !ok {
			break
		}

		s, isStr := tok.(string)

		if isStr {
			if name, isBuiltin := matchBuiltin(s, cfg); isBuiltin {
				return f, &ParseError{Type: ErrSpecialOption, Message: "special option " + name + " triggered", Data: []string{name}}
			}

			if entry, found := sa.compileParams[s]; found && (!isSoftKeywordEntry(entry) || ownArgsConsumed) {
				handled, nf, err := dispatchEntry(sa, entry, tok, f, argv, cfg, popts, &pendingSentences)
				if err != nil {
					return nf, err
				}

				if handled {
					f = nf

					continue
				}
			}

			if matched, nf, err := tryCompact(sa, tok, f, argv, cfg, popts, pendingSentences); err != nil {
				return nf, err
			} else if matched {
				f = nf

				continue
			}
		}

		if !ownArgsConsumed {
			args, err := analyseArgs(sa.ownArgs, argv, sa.paramIDs, cfg, popts)
			ownArgsConsumed = true

			if err != nil {
				return f, err
			}

			f.args = args

			continue
		}

		if cfg.Strict {
			if popts.completing {
				break
			}

			return f, newErrorf(ErrParamsUnmatched, "unexpected token %v", tok)
		}

		argv.Next(" ")
		f.extra = append(f.extra, tok)
	}

	if !ownArgsConsumed {
		args, err := analyseArgs(sa.ownArgs, argv, sa.paramIDs, cfg, popts)
		if err != nil {
			return f, err
		}

		f.args = args
	}

	if sa.needMainArgs && len(f.args) == 0 {
		return f, newError(ErrArgumentMissing, "main arguments required but missing")
	}

	return f, nil
}

// requiresSatisfied reports whether an option's/subcommand's declared
// requires path has been fully walked by the sentence fragments accumulated
// so far in this body, per spec.md §4.5 step 3 ("validate prefix path
// equals pending sentences"). A node with no requires path is never gated.
func requiresSatisfied(required, pending []string) bool {
	if len(required) == 0 {
		return true
	}

	if len(required) != len(pending) {
		return false
	}

	for i, r := range required {
		if pending[i] != r {
			return false
		}
	}

	return true
}

// isSoftKeywordEntry reports whether entry names a node marked as a soft
// keyword, per spec.md §4.5: such a node's literal must be let through to
// the own-args binding stage rather than claimed by dispatch, until that
// stage has had its chance to bind it as a plain argument value.
func isSoftKeywordEntry(entry *paramEntry) bool {
	switch entry.kind {
	case paramOption:
		return entry.option.SoftKeyword
	case paramSubcommand:
		return entry.sub.node.SoftKeyword
	default:
		return false
	}
}

func dispatchEntry(sa *subAnalyser, entry *paramEntry, tok any, f frame, argv *Argv, cfg Config, popts parseOptions, pendingSentences *[]string) (bool, frame, error) {
	switch entry.kind {
	case paramSentence:
		argv.Next(" ")
		*pendingSentences = append(*pendingSentences, entry.sentence)

		return true, f, nil

	case paramOption:
		if !requiresSatisfied(entry.option.Requires(), *pendingSentences) {
			logDebug(cfg, "requires path unsatisfied", "option", entry.option.Name, "requires", entry.option.Requires(), "pending", *pendingSentences)

			return false, f, nil
		}

		argv.Next(" ")

		res, err := analyseOption(entry.option, tok, argv, sa.paramIDs, cfg, popts)
		if err != nil {
			return true, f, err
		}

		return true, foldOption(f, entry.option, res), nil

	case paramOptionList:
		tried := false

		for _, opt := range entry.options {
			if !requiresSatisfied(opt.Requires(), *pendingSentences) {
				logDebug(cfg, "requires path unsatisfied", "option", opt.Name, "requires", opt.Requires(), "pending", *pendingSentences)

				continue
			}

			tried = true
			snap := argv.Snapshot()
			argv.Next(" ")

			res, err := analyseOption(opt, tok, argv, sa.paramIDs, cfg, popts)
			if err == nil {
				return true, foldOption(f, opt, res), nil
			}

			logDebug(cfg, "backtrack", "option", opt.Name, "token", tok, "cause", err)
			argv.Restore(snap)
		}

		if !tried {
			return false, f, nil
		}

		return true, f, newErrorf(ErrInvalidParam, "no option matched %v", tok)

	case paramSubcommand:
		if !requiresSatisfied(entry.sub.node.Requires(), *pendingSentences) {
			logDebug(cfg, "requires path unsatisfied", "subcommand", entry.sub.node.Name, "requires", entry.sub.node.Requires(), "pending", *pendingSentences)

			return false, f, nil
		}

		argv.Next(" ")

		sub, err := runBody(entry.sub, argv, cfg, popts)
		if err != nil {
			return true, f, err
		}

		f.subs[entry.sub.node.Dest] = SubcommandResult{
			Value:       true,
			Args:        sub.args,
			Options:     sub.options,
			Subcommands: sub.subs,
		}

		return true, f, nil
	}

	return false, f, nil
}

func tryCompact(sa *subAnalyser, tok any, f frame, argv *Argv, cfg Config, popts parseOptions, pendingSentences []string) (bool, frame, error) {
	s, isStr := tok.(string)
	if !isStr {
		return false, f, nil
	}

	for _, entry := range sa.compactParams {
		switch entry.kind {
		case paramOption:
			if _, ok := aliasPrefixMatch(entry.option, s); !ok {
				continue
			}

			if !requiresSatisfied(entry.option.Requires(), pendingSentences) {
				logDebug(cfg, "requires path unsatisfied", "compact option", entry.option.Name, "requires", entry.option.Requires(), "pending", pendingSentences)

				continue
			}

			snap := argv.Snapshot()
			argv.Next(" ")

			res, err := analyseOption(entry.option, tok, argv, sa.paramIDs, cfg, popts)
			if err != nil {
				logDebug(cfg, "backtrack", "compact option", entry.option.Name, "token", tok, "cause", err)
				argv.Restore(snap)

				continue
			}

			return true, foldOption(f, entry.option, res), nil
		case paramSubcommand:
			if !containsString(entry.sub.node.AllAliases(), s) {
				continue
			}

			if !requiresSatisfied(entry.sub.node.Requires(), pendingSentences) {
				logDebug(cfg, "requires path unsatisfied", "subcommand", entry.sub.node.Name, "requires", entry.sub.node.Requires(), "pending", pendingSentences)

				continue
			}

			argv.Next(" ")

			sub, err := runBody(entry.sub, argv, cfg, popts)
			if err != nil {
				return true, f, err
			}

			f.subs[entry.sub.node.Dest] = SubcommandResult{
				Value: true, Args: sub.args, Options: sub.options, Subcommands: sub.subs,
			}

			return true, f, nil
		}
	}

	return false, f, nil
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}

	return false
}

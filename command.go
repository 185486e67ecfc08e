package chain

import (
	"fmt"
	"strings"
)

// Command is the root of one parseable schema: a Header, its own Args,
// declared Options/Subcommands, and the ambient Config/Meta/output
// collaborators spec.md §6 names as external interfaces.
type Command struct {
	Namespace string
	Header    *Header
	Meta      Meta
	Config    Config

	rootArgs    Args
	rootOptions []Node

	compiled *subAnalyser
	dirty    bool

	shortcuts *shortcutStore
	boundFn   func(Arparma) error
	output    OutputManager
	projector TextOf
}

// New builds a Command named name, matched via header, with its own
// positional Args.
func New(name string, header *Header, args Args) *Command {
	if header == nil {
		header = NewHeader(name)
	}

	return &Command{
		Namespace: "",
		Header:    header,
		Config:    DefaultConfig(),
		rootArgs:  args,
		shortcuts: newShortcutStore(),
		output:    defaultOutput,
		dirty:     true,
	}
}

// Nodes returns the command's declared root-level Options and Subcommands,
// for use by external tooling such as the completions package.
func (c *Command) Nodes() []Node {
	return c.rootOptions
}

// AddOption appends an Option to the command's root body.
func (c *Command) AddOption(o *Option) *Command {
	c.rootOptions = append(c.rootOptions, o)
	c.dirty = true

	return c
}

// AddSubcommand appends a Subcommand to the command's root body.
func (c *Command) AddSubcommand(s *Subcommand) *Command {
	c.rootOptions = append(c.rootOptions, s)
	c.dirty = true

	return c
}

// WithConfig replaces the command's Config.
func (c *Command) WithConfig(cfg Config) *Command {
	c.Config = cfg

	return c
}

// WithMeta replaces the command's descriptive Meta.
func (c *Command) WithMeta(m Meta) *Command {
	c.Meta = m

	return c
}

// WithOutput installs a non-default OutputManager.
func (c *Command) WithOutput(o OutputManager) *Command {
	c.output = o

	return c
}

// WithTextOf installs a projector used to extract text from opaque
// message elements (see spec.md §3's Argv contract).
func (c *Command) WithTextOf(fn TextOf) *Command {
	c.projector = fn

	return c
}

func (c *Command) textOf() TextOf {
	if c.projector != nil {
		return c.projector
	}

	return defaultTextOf
}

// Bind attaches a callback invoked with the Arparma on every successful
// parse; a non-nil error fails the parse with ErrExecuteFailed.
func (c *Command) Bind(fn func(Arparma) error) *Command {
	c.boundFn = fn

	return c
}

// Shortcut registers a literal- or regex-keyed expansion, per spec.md §4.6.
func (c *Command) Shortcut(key string, spec ShortcutSpec, isRegex bool) *Command {
	c.shortcuts.register(key, spec, isRegex)

	return c
}

// DeleteShortcut removes a previously registered shortcut key.
func (c *Command) DeleteShortcut(key string) *Command {
	c.shortcuts.delete(key)

	return c
}

func (c *Command) ensureCompiled() {
	if !c.dirty && c.compiled != nil {
		return
	}

	c.compiled = compileRoot(c.rootArgs, c.rootOptions, " ")
	c.dirty = false
}

// toTokens normalises an arbitrary parse input into a raw token list, per
// spec.md §3's Argv contract: a string is split on whitespace respecting
// "quoted substrings", a []string or []any is taken as already-tokenised.
func (c *Command) toTokens(input any) ([]any, error) {
	switch v := input.(type) {
	case string:
		return tokenizeString(v), nil
	case []string:
		out := make([]any, len(v))
		for i, s := range v {
			out[i] = s
		}

		return out, nil
	case []any:
		return v, nil
	default:
		return nil, fmt.Errorf("%w: unsupported input type %T", errExecuteFailed, input)
	}
}

// tokenizeString splits on runs of whitespace, treating a "..."-quoted
// span as one token (quotes stripped), matching the lightweight shlex
// idiom original_source uses ahead of the Go-native Argv cursor.
func tokenizeString(s string) []any {
	var out []any

	var b strings.Builder

	inQuote := false
	hasToken := false

	flush := func() {
		if hasToken {
			out = append(out, b.String())
			b.Reset()
			hasToken = false
		}
	}

	for _, r := range s {
		switch {
		case r == '"':
			inQuote = !inQuote
			hasToken = true
		case (r == ' ' || r == '\t') && !inQuote:
			flush()
		default:
			b.WriteRune(r)
			hasToken = true
		}
	}

	flush()

	return out
}

// Parse runs a full parse of input against this command's schema.
func (c *Command) Parse(input any) (Arparma, error) {
	tokens, err := c.toTokens(input)
	if err != nil {
		return Arparma{}, err
	}

	argv := NewArgv(tokens, " ", c.textOf())

	return c.parseArgv(argv, parseOptions{})
}

// ParseWithContext behaves like Parse, but makes ctx available to
// Config.ContextStyle's "{name}"/"$(name)" interpolation, per spec.md
// §4.2.
func (c *Command) ParseWithContext(input any, ctx *Context) (Arparma, error) {
	tokens, err := c.toTokens(input)
	if err != nil {
		return Arparma{}, err
	}

	argv := NewArgv(tokens, " ", c.textOf())
	argv.Context = ctx

	return c.parseArgv(argv, parseOptions{})
}

func (c *Command) parseArgv(argv *Argv, popts parseOptions) (Arparma, error) {
	c.ensureCompiled()

	if argv.Empty() {
		return c.fail(argv, newError(ErrNullMessage, "empty input"))
	}

	hr, err := analyseHeader(c.Header, argv, c.Config)
	if err != nil {
		pe := wrapError(err)

		if pe.Type == ErrInvalidHeader {
			if rewritten, ok := c.tryShortcut(argv); ok {
				return c.parseArgv(rewritten, popts)
			}
		}

		return c.fail(argv, pe)
	}

	return c.parseBody(hr, argv, popts)
}

// parseBody runs the body phase and result assembly once the header has
// already matched; it is also the re-entry point a CompletionSession uses
// to resume after a pause, since the header is matched only once per
// session.
func (c *Command) parseBody(hr HeadResult, argv *Argv, popts parseOptions) (Arparma, error) {
	f, err := runBody(c.compiled, argv, c.Config, popts)
	if err != nil {
		pe := wrapError(err)

		switch pe.Type {
		case ErrSpecialOption:
			return c.handleSpecial(pe, argv)
		case ErrPauseTriggered:
			return Arparma{}, pe
		default:
			return c.fail(argv, pe)
		}
	}

	other := flattenOtherArgs(f.args, f.options, f.subs)

	res := Arparma{
		Source:      argv.raw,
		Origin:      argv.bak,
		Matched:     true,
		HeaderMatch: hr,
		MainArgs:    f.args,
		OtherArgs:   other,
		Options:     f.options,
		Subcommands: f.subs,
		Context:     argv.Context,
	}

	if c.boundFn != nil {
		if callErr := c.boundFn(res); callErr != nil {
			return c.fail(argv, newErrorf(ErrExecuteFailed, "%s", callErr.Error()))
		}
	}

	return res, nil
}

func (c *Command) fail(argv *Argv, err error) (Arparma, error) {
	pe := wrapError(err)

	if c.Config.RaiseException {
		return Arparma{}, pe
	}

	return Arparma{Matched: false, ErrorInfo: pe, ErrorData: argv.Release(" ", true, false)}, nil
}

func (c *Command) handleSpecial(pe *ParseError, argv *Argv) (Arparma, error) {
	name := ""
	if len(pe.Data) > 0 {
		name = pe.Data[0]
	}

	switch name {
	case "help":
		c.output.Send(c.Header.Command, c.GetHelp)
	case "shortcut":
		c.output.Send(c.Header.Command, func() string {
			return "shortcuts: " + strings.Join(c.shortcuts.list(), ", ")
		})
	}

	return c.fail(argv, pe)
}

// tryShortcut attempts to reinterpret argv's leading token as a shortcut
// key, returning a freshly expanded Argv on success.
func (c *Command) tryShortcut(argv *Argv) (*Argv, bool) {
	snap := argv.Snapshot()

	tok, ok := argv.Next(" ")
	if !ok {
		argv.Restore(snap)

		return nil, false
	}

	s, isStr := tok.(string)
	if !isStr {
		argv.Restore(snap)

		return nil, false
	}

	spec, named, numbered, found := c.shortcuts.find(s)
	if !found {
		argv.Restore(snap)

		return nil, false
	}

	rest := argv.Release(" ", false, false)

	expanded, err := expandShortcut(spec, rest, named, numbered, argv.Context)
	if err != nil {
		logDebug(c.Config, "shortcut expansion failed", "token", s, "cause", err)
		argv.Restore(snap)

		return nil, false
	}

	logDebug(c.Config, "shortcut expanded", "token", s, "command", spec.Command)

	newArgv := NewArgv(expanded, argv.sep, argv.textOf)
	newArgv.Context = argv.Context

	return newArgv, true
}

// GetHelp renders a minimal usage listing for this command's header,
// meta, own args, and declared options/subcommands.
func (c *Command) GetHelp() string {
	c.ensureCompiled()

	var b strings.Builder

	fmt.Fprintf(&b, "%s", c.Header.Command)

	for _, a := range c.rootArgs.Items() {
		if a.Field.Optional {
			fmt.Fprintf(&b, " [%s]", a.Name)
		} else {
			fmt.Fprintf(&b, " <%s>", a.Name)
		}
	}

	b.WriteByte('\n')

	if c.Meta.Description != "" {
		b.WriteString(c.Meta.Description)
		b.WriteByte('\n')
	}

	if len(c.rootOptions) > 0 {
		b.WriteString("\noptions:\n")

		for _, n := range c.rootOptions {
			writeNodeHelp(&b, n)
		}
	}

	return b.String()
}

func writeNodeHelp(b *strings.Builder, n Node) {
	base := n.nodeBase()

	fmt.Fprintf(b, "  %s", base.Name)

	if len(base.Aliases) > 0 {
		fmt.Fprintf(b, " (%s)", strings.Join(base.Aliases, ", "))
	}

	if base.HelpText != "" {
		fmt.Fprintf(b, "  %s", base.HelpText)
	}

	b.WriteByte('\n')
}

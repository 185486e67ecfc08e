package chain

// EnterResult is what CompletionSession.Enter produces: either a finished
// Arparma or, if the new text still leaves a required slot unfilled,
// another suspension.
type EnterResult struct {
	Result  *Arparma
	Paused  bool
	Prompts []Prompt
	Err     error
}

// CompletionSession is a re-entrant wrapper around one Command parse that
// pauses at the first unfillable required slot instead of failing,
// offering Tab/Enter so a host's interactive completion loop can resume
// it, per spec.md §4.7.
type CompletionSession struct {
	cmd     *Command
	argv    *Argv
	header  HeadResult
	prompts []Prompt
	idx     int
	done    bool
	result  Arparma
	err     error
}

// NewCompletionSession builds a session over input, matches the header
// once, and runs the first body-phase attempt immediately. The header is
// matched only once per session: Enter resumes the body phase against the
// same Argv, which is exactly where the previous attempt left off.
func NewCompletionSession(cmd *Command, input any) (*CompletionSession, error) {
	tokens, err := cmd.toTokens(input)
	if err != nil {
		return nil, err
	}

	cmd.ensureCompiled()

	argv := NewArgv(tokens, " ", cmd.textOf())
	s := &CompletionSession{cmd: cmd, argv: argv}

	if argv.Empty() {
		s.done = true
		s.err = newError(ErrNullMessage, "empty input")

		return s, nil
	}

	hr, err := analyseHeader(cmd.Header, argv, cmd.Config)
	if err != nil {
		s.done = true
		s.err = err

		return s, nil
	}

	s.header = hr
	s.run()

	return s, nil
}

func (s *CompletionSession) run() {
	res, err := s.cmd.parseBody(s.header, s.argv, parseOptions{completing: true})

	var pe *ParseError
	if err != nil {
		pe = wrapError(err)
	}

	if pe != nil && pe.Type == ErrPauseTriggered {
		s.prompts = pe.Prompts
		s.idx = 0
		s.done = false

		return
	}

	s.result = res
	s.err = err
	s.done = true
}

// Done reports whether the session reached a final (possibly failed)
// result rather than a suspension.
func (s *CompletionSession) Done() bool { return s.done }

// Tab cycles the current suspension's candidate prompts by offset and
// returns the one now selected.
func (s *CompletionSession) Tab(offset int) Prompt {
	if len(s.prompts) == 0 {
		return Prompt{}
	}

	s.idx = ((s.idx+offset)%len(s.prompts) + len(s.prompts)) % len(s.prompts)

	return s.prompts[s.idx]
}

// Enter supplies content for the current suspension point (or, if content
// is nil, the currently tabbed-to prompt's text) and resumes the parse.
func (s *CompletionSession) Enter(content *string) EnterResult {
	if s.done {
		return EnterResult{Result: &s.result, Err: s.err}
	}

	text := ""
	if content != nil {
		text = *content
	} else if len(s.prompts) > 0 {
		text = s.prompts[s.idx].Text
	}

	s.argv.Addon([]any{text})
	s.run()

	if s.done {
		return EnterResult{Result: &s.result, Err: s.err}
	}

	return EnterResult{Paused: true, Prompts: s.prompts}
}

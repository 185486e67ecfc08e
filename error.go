package chain

import (
	"errors"
	"fmt"
)

// ParserError identifies the broad category of a parse-time failure.
//
// ORDER IN WHICH THE ERROR CONSTANTS APPEAR MATTERS for String().
type ParserError uint

const (
	// ErrUnknown indicates a generic, uncategorized error.
	ErrUnknown ParserError = iota

	// ErrNullMessage indicates the input was empty or did not conform
	// to the token-input contract.
	ErrNullMessage

	// ErrUnexpectedElement indicates a message element that the host's
	// text-projection function rejected ("skip") where text was required.
	ErrUnexpectedElement

	// ErrInvalidHeader indicates the leading prefix/command tokens did
	// not match the command's Header.
	ErrInvalidHeader

	// ErrParamsUnmatched indicates a token did not fit any known slot
	// (option, subcommand, or the command's own args) in strict mode.
	ErrParamsUnmatched

	// ErrInvalidParam indicates a token fit the targeted slot but its
	// Pattern rejected the value.
	ErrInvalidParam

	// ErrArgumentMissing indicates a required argument, option, or
	// keyword-only slot had no token to bind.
	ErrArgumentMissing

	// ErrFuzzyMatch is a diagnostic carrying a suggested correction for
	// a near-miss header. Unknown keyword-only keys do not raise it.
	ErrFuzzyMatch

	// ErrSpecialOption indicates a built-in pseudo-option (help,
	// shortcut, completion) intercepted parsing.
	ErrSpecialOption

	// ErrPauseTriggered indicates a completion session suspension point
	// was reached.
	ErrPauseTriggered

	// ErrExceedMaxCount indicates the Manager's command_max_count was
	// exceeded on registration.
	ErrExceedMaxCount

	// ErrBehaveCancelled indicates an external post-match veto.
	ErrBehaveCancelled

	// ErrOutBoundsBehave indicates a post-match handler ran out of
	// bounds of its expected contract.
	ErrOutBoundsBehave

	// ErrExecuteFailed indicates a bound callback raised, or no match
	// was found for execution.
	ErrExecuteFailed
)

func (e ParserError) String() string {
	names := [...]string{
		"unknown",
		"null message",
		"unexpected element",
		"invalid header",
		"params unmatched",
		"invalid param",
		"argument missing",
		"fuzzy match success",
		"special option triggered",
		"pause triggered",
		"exceed max count",
		"behaviour cancelled",
		"out of bounds behaviour",
		"execute failed",
	}

	if int(e) >= len(names) {
		return "unrecognized error type"
	}

	return names[e]
}

func (e ParserError) Error() string {
	return e.String()
}

// ParseError is the error type carried by a failed parse. It wraps a
// ParserError category, a human-readable message, and (for several
// categories) auxiliary data useful to the caller: the suggestion for
// ErrFuzzyMatch, the triggering name for ErrSpecialOption, or the paused
// argument's name for ErrPauseTriggered. The unparsed tail of a failed
// parse is not kept here; Command reports it in Arparma.ErrorData.
type ParseError struct {
	Type    ParserError
	Message string
	Data    []string
	Prompts []Prompt // populated only for ErrPauseTriggered
}

// Error returns the error's message.
func (e *ParseError) Error() string {
	return e.Message
}

func newError(tp ParserError, message string) *ParseError {
	return &ParseError{Type: tp, Message: message}
}

func newErrorf(tp ParserError, format string, args ...interface{}) *ParseError {
	return newError(tp, fmt.Sprintf(format, args...))
}

func withData(err *ParseError, data ...string) *ParseError {
	err.Data = data

	return err
}

func wrapError(err error) *ParseError {
	var ret *ParseError
	if errors.As(err, &ret) {
		return ret
	}

	return newError(ErrUnknown, err.Error())
}

// Is reports whether err wraps a ParseError belonging to the given
// category, so callers can write `errors.Is(err, chain.ErrInvalidHeader)`.
func (e *ParseError) Is(target error) bool {
	cat, ok := target.(ParserError)
	if !ok {
		return false
	}

	return e.Type == cat
}

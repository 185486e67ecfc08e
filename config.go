package chain

import "log/slog"

// ContextStyle selects how (if at all) "{name}"/"$(name)" tokens in raw
// input are resolved against an Argv's Context, per spec.md §4.2.
type ContextStyle int

const (
	// ContextStyleNone disables context interpolation.
	ContextStyleNone ContextStyle = iota
	// ContextStyleBracket resolves "{name}".
	ContextStyleBracket
	// ContextStyleParentheses resolves "$(name)".
	ContextStyleParentheses
)

// Config mirrors spec.md §6's command config block.
type Config struct {
	FuzzyMatch            bool
	FuzzyThreshold        float64
	RaiseException        bool
	Strict                bool
	KeepCRLF              bool
	Compact               bool
	ContextStyle          ContextStyle
	EnableMessageCache    bool
	HideShortcut          bool
	DisableBuiltinOptions []string
	BuiltinOptionName     map[string][]string
	Extra                 map[string]any

	// Logger receives debug-level records for header match attempts,
	// backtracks, shortcut expansions, and (via Manager) cache hits/misses.
	// Defaults to slog.Default() so a host observes engine internals
	// without the engine coupling to any particular sink.
	Logger *slog.Logger
}

// DefaultConfig returns the engine's default Config: fuzzy matching on at
// a conservative threshold, parse failures swallowed into a Matched: false
// result rather than raised as an error, strict token matching, and the
// message cache enabled.
func DefaultConfig() Config {
	return Config{
		FuzzyMatch:         true,
		FuzzyThreshold:     0.6,
		RaiseException:     false,
		Strict:             true,
		EnableMessageCache: true,
		Logger:             slog.Default(),
		BuiltinOptionName:  map[string][]string{
			"help":       {"--help", "-h"},
			"shortcut":   {"--shortcut"},
			"completion": {"--comp"},
		},
	}
}

func (c Config) disables(name string) bool {
	for _, d := range c.DisableBuiltinOptions {
		if d == name {
			return true
		}
	}

	return false
}

// Meta carries descriptive metadata for a command, per spec.md §6.
type Meta struct {
	Description string
	Usage       string
	Example     string
	Author      string
	Version     string
}

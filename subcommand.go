package chain

// Subcommand holds nested options/subcommands and, after compilation, its
// own routing tables via the compiled *subAnalyser.
type Subcommand struct {
	CommandNode
	Options  []Node
	priority int
	requires []string

	analyser *subAnalyser // populated by compile()
}

// NewSubcommand builds a Subcommand with the given positional Args.
func NewSubcommand(name string, args Args) *Subcommand {
	return &Subcommand{CommandNode: newNode(name, args)}
}

// WithAliases sets the subcommand's alternate spellings.
func (s *Subcommand) WithAliases(aliases ...string) *Subcommand {
	s.Aliases = aliases

	return s
}

// AddOption appends an Option to this subcommand.
func (s *Subcommand) AddOption(o *Option) *Subcommand {
	s.Options = append(s.Options, o)

	return s
}

// AddSubcommand nests another Subcommand under this one.
func (s *Subcommand) AddSubcommand(sub *Subcommand) *Subcommand {
	s.Options = append(s.Options, sub)

	return s
}

// MakeSoftKeyword marks the node so its literal name may also be consumed as
// a plain argument value when the context demands it.
func (s *Subcommand) MakeSoftKeyword() *Subcommand {
	s.SoftKeyword = true

	return s
}

// WithRequires attaches a multi-word "requires" prefix path.
func (s *Subcommand) WithRequires(path ...string) *Subcommand {
	s.requires = path

	return s
}

// WithPriority sets the tie-break order used on alias collisions.
func (s *Subcommand) WithPriority(p int) *Subcommand {
	s.priority = p

	return s
}

func (s *Subcommand) nodeBase() *CommandNode { return &s.CommandNode }
func (s *Subcommand) Requires() []string     { return s.requires }
func (s *Subcommand) Priority() int          { return s.priority }

package chain

import "strings"

// CommandNode is the base shape shared by Option and Subcommand, grounded
// on the teacher's Command/Group embedding (command.go, group.go): a name,
// its alternate spellings, a destination key, its own Args, separators,
// help text, and whether it behaves as a soft keyword.
type CommandNode struct {
	Name        string
	Aliases     []string
	Dest        string
	Args        Args
	Separators  string
	HelpText    string
	SoftKeyword bool
	Default     any
}

// AllAliases returns the node's name plus its alternates, matching
// spec.md §3's "aliases include name + alt-split alternates".
func (c CommandNode) AllAliases() []string {
	out := make([]string, 0, len(c.Aliases)+1)
	out = append(out, c.Name)
	out = append(out, c.Aliases...)

	return out
}

func destOf(name string) string {
	return strings.TrimLeft(name, "-")
}

func newNode(name string, args Args) CommandNode {
	return CommandNode{
		Name:       name,
		Dest:       destOf(name),
		Args:       args,
		Separators: " ",
	}
}

// ActionKind selects how repeated occurrences of an Option fold into its
// result, per spec.md §3.
type ActionKind int

const (
	// ActionStore keeps the last write.
	ActionStore ActionKind = iota
	// ActionAppend accumulates into a list.
	ActionAppend
	// ActionCount increments an integer counter by Inc each occurrence.
	ActionCount
	// ActionStoreTrue is a store specialization that always sets true.
	ActionStoreTrue
	// ActionStoreFalse is a store specialization that always sets false.
	ActionStoreFalse
)

// Action is an Option's fold behavior across occurrences.
type Action struct {
	Kind ActionKind
	Inc  int
}

// Store builds a "last write wins" Action.
func Store() Action { return Action{Kind: ActionStore} }

// Append builds a list-accumulating Action.
func Append() Action { return Action{Kind: ActionAppend} }

// Count builds a counting Action that adds inc on each occurrence.
func Count(inc int) Action { return Action{Kind: ActionCount, Inc: inc} }

// StoreTrue builds an Action always setting true.
func StoreTrue() Action { return Action{Kind: ActionStoreTrue} }

// StoreFalse builds an Action always setting false.
func StoreFalse() Action { return Action{Kind: ActionStoreFalse} }

// NormalizeDefault adapts a declared default to the Action's shape, per the
// Open Question resolved in DESIGN.md: a non-list default under Append is
// wrapped into a single-element list ("wrap default once"); a non-int
// default under Count is replaced by 1.
func (a Action) NormalizeDefault(def any, hasDefault bool) any {
	switch a.Kind {
	case ActionAppend:
		if !hasDefault {
			return []any{}
		}

		if list, ok := def.([]any); ok {
			return list
		}

		return []any{def}
	case ActionCount:
		if !hasDefault {
			return 0
		}

		if n, ok := def.(int); ok {
			return n
		}

		return 1
	default:
		return def
	}
}

// Apply folds one captured occurrence into the existing stored value.
func (a Action) Apply(existing any, captured any) any {
	switch a.Kind {
	case ActionAppend:
		list, _ := existing.([]any)

		return append(list, captured)
	case ActionCount:
		n, _ := existing.(int)

		return n + a.Inc
	case ActionStoreTrue:
		return true
	case ActionStoreFalse:
		return false
	default:
		return captured
	}
}

// Node is implemented by both *Option and *Subcommand so the Compiler can
// treat them uniformly while routing on alias lookups.
type Node interface {
	nodeBase() *CommandNode
	Requires() []string
	Priority() int
}

// Option is a flag-like schema node: an alias set, optional compact form,
// a fold Action, and a Duplicate flag. The analyser does not consult
// Duplicate: any Option may occur more than once, each occurrence folded
// into the result through its Action.
type Option struct {
	CommandNode
	Compact    bool
	Action     Action
	Duplicate  bool
	priority   int
	requires   []string
	NoArgValue any // value stored when the option takes no argument (store_true/store_false/KwBool toggles)
}

// NewOption builds an Option with the default "store" action.
func NewOption(name string, args Args) *Option {
	return &Option{CommandNode: newNode(name, args), Action: Store()}
}

// WithAliases sets the option's alternate spellings.
func (o *Option) WithAliases(aliases ...string) *Option {
	o.Aliases = aliases

	return o
}

// WithAction sets the option's fold behavior; append and count also set
// the Duplicate flag.
func (o *Option) WithAction(a Action) *Option {
	o.Action = a
	if a.Kind == ActionAppend || a.Kind == ActionCount {
		o.Duplicate = true
	}

	return o
}

// AllowDuplicate sets the option's Duplicate flag. Repeats are accepted
// whether or not it is set.
func (o *Option) AllowDuplicate() *Option {
	o.Duplicate = true

	return o
}

// MakeCompact marks the option so its name may be immediately followed by
// its first argument with no separator (e.g. "bar42").
func (o *Option) MakeCompact() *Option {
	o.Compact = true

	return o
}

// MakeSoftKeyword marks the option so its literal name may also be
// consumed as a plain argument value when the context demands it, per
// spec.md §4.5.
func (o *Option) MakeSoftKeyword() *Option {
	o.SoftKeyword = true

	return o
}

// WithRequires attaches a multi-word "requires" prefix path: the option is
// only valid once these sentence fragments have all been seen in order.
func (o *Option) WithRequires(path ...string) *Option {
	o.requires = path

	return o
}

// WithPriority sets the tie-break order used when two sibling nodes share
// an alias (higher runs first).
func (o *Option) WithPriority(p int) *Option {
	o.priority = p

	return o
}

func (o *Option) nodeBase() *CommandNode { return &o.CommandNode }
func (o *Option) Requires() []string     { return o.requires }
func (o *Option) Priority() int          { return o.priority }

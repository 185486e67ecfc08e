package chain

import "sort"

// paramKind discriminates what compile_params maps an alias to.
type paramKind int

const (
	paramOption paramKind = iota
	paramOptionList
	paramSubcommand
	paramSentence
)

// paramEntry is one compiled routing-table entry, matching spec.md §3's
// "alias->single Option, single Subcommand, list of Options, or Sentence".
type paramEntry struct {
	kind     paramKind
	option   *Option
	options  []*Option // priority sorted, highest first, on alias collision
	sub      *subAnalyser
	sentence string
}

// subAnalyser is the Compiler's output for one Subcommand (or the root):
// its alias routing table, the nodes that must be tried as compact
// prefix-matches, and the flat set of every alias/sentence it knows
// about (used to cut off variadic consumption).
type subAnalyser struct {
	node            *Subcommand // nil at the root
	ownArgs         Args        // node.Args for a subcommand, the root Command's Args at the root
	separators      string
	compileParams   map[string]*paramEntry
	compactParams   []*paramEntry
	paramIDs        map[string]bool
	needMainArgs    bool
	defaultMainOnly bool
}

func newSubAnalyser(node *Subcommand, ownArgs Args, separators string) *subAnalyser {
	sa := &subAnalyser{
		node:          node,
		ownArgs:       ownArgs,
		separators:    separators,
		compileParams: map[string]*paramEntry{},
		paramIDs:      map[string]bool{},
	}

	nargs := len(ownArgs.Items())
	if nargs > 0 && nargs > ownArgs.OptionalCount() {
		sa.needMainArgs = true
	}

	deCount := 0

	for _, a := range ownArgs.Items() {
		if a.Field.HasDefault {
			deCount++
		}
	}

	if deCount > 0 && deCount == nargs {
		sa.defaultMainOnly = true
	}

	return sa
}

// compileInto merges one Option into the alias table, resolving
// collisions by priority, matching original_source's _compile_opts.
func compileInto(table map[string]*paramEntry, opt *Option) {
	for _, alias := range opt.AllAliases() {
		existing, found := table[alias]
		if !found {
			table[alias] = &paramEntry{kind: paramOption, option: opt}

			continue
		}

		switch existing.kind {
		case paramSubcommand:
			continue
		case paramSentence:
			table[alias] = &paramEntry{kind: paramOption, option: opt}
		case paramOptionList:
			existing.options = append(existing.options, opt)
			sortOptionsByPriority(existing.options)
		default:
			merged := []*Option{existing.option, opt}
			sortOptionsByPriority(merged)
			table[alias] = &paramEntry{kind: paramOptionList, options: merged}
		}
	}
}

func sortOptionsByPriority(opts []*Option) {
	sort.SliceStable(opts, func(i, j int) bool {
		return opts[i].priority > opts[j].priority
	})
}

// compile walks a Subcommand's declared Options recursively, producing
// its compile_params/compact_params/param_ids tables, mirroring
// original_source's default_compiler.
func compile(node *Subcommand, parentSeparators string) *subAnalyser {
	sep := node.Separators
	if sep == "" {
		sep = parentSeparators
	}

	sa := newSubAnalyser(node, node.Args, sep)
	node.analyser = sa
	compileOptions(sa, node.Options, sep)

	return sa
}

// compileRoot builds the top-level subAnalyser for a Command, whose own
// Args and Options are not wrapped in a Subcommand node.
func compileRoot(args Args, options []Node, separators string) *subAnalyser {
	sa := newSubAnalyser(nil, args, separators)
	compileOptions(sa, options, separators)

	return sa
}

func compileOptions(sa *subAnalyser, options []Node, sep string) {
	for _, n := range options {
		switch v := n.(type) {
		case *Option:
			if v.Compact || v.Action.Kind == ActionCount || !isSuperset(sep, v.Separators) {
				sa.compactParams = append(sa.compactParams, &paramEntry{kind: paramOption, option: v})
			}

			compileInto(sa.compileParams, v)

			for _, alias := range v.AllAliases() {
				sa.paramIDs[alias] = true
			}
		case *Subcommand:
			sub := compile(v, sep)
			sa.compileParams[v.Name] = &paramEntry{kind: paramSubcommand, sub: sub}
			sa.paramIDs[v.Name] = true

			for _, alias := range v.Aliases {
				sa.compileParams[alias] = &paramEntry{kind: paramSubcommand, sub: sub}
				sa.paramIDs[alias] = true
			}

			if !isSuperset(sep, v.Separators) {
				sa.compactParams = append(sa.compactParams, &paramEntry{kind: paramSubcommand, sub: sub})
			}
		}

		req := n.Requires()
		if len(req) > 0 {
			for _, k := range req {
				sa.paramIDs[k] = true

				if _, exists := sa.compileParams[k]; !exists {
					sa.compileParams[k] = &paramEntry{kind: paramSentence, sentence: k}
				}
			}
		}
	}
}

// isSuperset reports whether every rune of sub is present in super,
// mirroring spec.md's "separator set is a strict subset of the parent's"
// compactness test.
func isSuperset(super, sub string) bool {
	if sub == "" {
		return true
	}

	set := map[rune]bool{}
	for _, r := range super {
		set[r] = true
	}

	for _, r := range sub {
		if !set[r] {
			return false
		}
	}

	return true
}

// Package completions bridges a chain.Command's declarative schema into a
// *cobra.Command tree wired for shell completion via carapace, grounded on
// the teacher's gen/completions.Generate/completionScanner pattern (but
// walking chain's Option/Subcommand nodes directly instead of scanning
// Go struct tags).
package completions

import (
	"fmt"

	comp "github.com/rsteube/carapace"
	"github.com/spf13/cobra"

	chain "github.com/reeflective/chain"
)

// Generate builds a *cobra.Command mirroring cmd's Header/Options/
// Subcommands, with a carapace.Carapace registered against it for
// completion, and returns both.
func Generate(cmd *chain.Command) (*cobra.Command, *comp.Carapace) {
	root := &cobra.Command{
		Use:   cmd.Header.Command,
		Short: cmd.Meta.Description,
		Long:  cmd.Meta.Usage,
	}

	carapaceGen := comp.Gen(root)
	commandScanner(root, carapaceGen, cmd.Nodes())

	return root, carapaceGen
}

// commandScanner walks one level of chain.Node siblings, attaching a
// cobra flag (and a carapace completer) for each Option and recursing
// into a nested cobra.Command for each Subcommand.
func commandScanner(parent *cobra.Command, comps *comp.Carapace, nodes []chain.Node) {
	for _, n := range nodes {
		switch v := n.(type) {
		case *chain.Option:
			attachOption(parent, comps, v)
		case *chain.Subcommand:
			attachSubcommand(parent, v)
		}
	}
}

func attachOption(parent *cobra.Command, comps *comp.Carapace, opt *chain.Option) {
	name := opt.Dest
	if opt.Args.Len() == 0 {
		parent.Flags().Bool(name, false, opt.HelpText)
	} else {
		parent.Flags().String(name, "", opt.HelpText)

		hints := make([]string, 0, opt.Args.Len())
		for _, a := range opt.Args.Items() {
			hints = append(hints, a.Name)
		}

		comps.FlagCompletion(comp.ActionMap{
			name: comp.ActionValues(hints...),
		})
	}
}

func attachSubcommand(parent *cobra.Command, sub *chain.Subcommand) {
	child := &cobra.Command{
		Use:     sub.Name,
		Aliases: sub.Aliases,
		Short:   sub.HelpText,
		RunE: func(*cobra.Command, []string) error {
			return nil
		},
	}

	parent.AddCommand(child)

	childComps := comp.Gen(child)
	commandScanner(child, childComps, sub.Options)

	names := make([]string, 0, sub.Args.Len())
	for _, a := range sub.Args.Items() {
		names = append(names, fmt.Sprintf("<%s>", a.Name))
	}

	if len(names) > 0 {
		childComps.PositionalAnyCompletion(comp.ActionValues(names...))
	}
}

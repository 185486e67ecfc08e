package chain

import (
	"fmt"
	"reflect"
	"strings"
)

// HeadResult records the outcome of the header phase.
type HeadResult struct {
	Origin  string
	Result  any
	Matched bool
	Groups  map[string]string
}

// OptionResult records one Option's bound arguments and, for store/append/
// count, its folded value.
type OptionResult struct {
	Value any
	Args  map[string]any
}

// SubcommandResult records a Subcommand's bound arguments plus the nested
// results of its own options and subcommands.
type SubcommandResult struct {
	Value       any
	Args        map[string]any
	Options     map[string]OptionResult
	Subcommands map[string]SubcommandResult
}

// Arparma is the structured result of a parse.
type Arparma struct {
	Source      []any
	Origin      []any
	Matched     bool
	HeaderMatch HeadResult
	ErrorInfo   error
	ErrorData   []any

	MainArgs    map[string]any
	OtherArgs   map[string]any
	Options     map[string]OptionResult
	Subcommands map[string]SubcommandResult

	Context *Context
}

// Query looks up a dotted path ("subcommands.user.args.name") across
// MainArgs/Options/Subcommands, returning def if not found.
func (r Arparma) Query(path string, def any) any {
	v, ok := r.Find(path)
	if !ok {
		return def
	}

	return v
}

// Find looks up a dotted path across the result tree.
func (r Arparma) Find(path string) (any, bool) {
	parts := strings.Split(path, ".")

	return findIn(r.MainArgs, r.Options, r.Subcommands, parts)
}

func findIn(args map[string]any, options map[string]OptionResult, subs map[string]SubcommandResult, parts []string) (any, bool) {
	if len(parts) == 0 {
		return nil, false
	}

	head := parts[0]

	switch head {
	case "args":
		if len(parts) < 2 {
			return args, true
		}

		v, ok := args[parts[1]]

		return v, ok
	case "options":
		if len(parts) < 2 {
			return options, true
		}

		opt, ok := options[parts[1]]
		if !ok {
			return nil, false
		}

		if len(parts) == 2 {
			return opt, true
		}

		if parts[2] == "args" {
			if len(parts) == 3 {
				return opt.Args, true
			}

			v, ok := opt.Args[parts[3]]

			return v, ok
		}

		return opt.Value, true
	case "subcommands":
		if len(parts) < 2 {
			return subs, true
		}

		sub, ok := subs[parts[1]]
		if !ok {
			return nil, false
		}

		if len(parts) == 2 {
			return sub, true
		}

		return findIn(sub.Args, sub.Options, sub.Subcommands, parts[2:])
	default:
		if v, ok := args[head]; ok {
			return v, true
		}

		if opt, ok := options[head]; ok {
			return opt.Value, true
		}

		if sub, ok := subs[head]; ok {
			return sub.Value, true
		}

		return nil, false
	}
}

// Call reflectively binds matched names (from OtherArgs, falling back to
// MainArgs) to fn's parameters by position, matching spec.md §3's
// Arparma.call contract: fn must be a func; each parameter is looked up by
// name from a caller-supplied ordered name list.
func (r Arparma) Call(fn any, paramNames ...string) error {
	fv := reflect.ValueOf(fn)
	if fv.Kind() != reflect.Func {
		return fmt.Errorf("%w: chain.Call requires a function", errExecuteFailed)
	}

	ft := fv.Type()
	if ft.NumIn() != len(paramNames) {
		return fmt.Errorf("%w: expected %d arguments, got %d names", errExecuteFailed, ft.NumIn(), len(paramNames))
	}

	in := make([]reflect.Value, ft.NumIn())

	for i, name := range paramNames {
		v, ok := r.OtherArgs[name]
		if !ok {
			v, ok = r.MainArgs[name]
		}

		if !ok {
			return fmt.Errorf("%w: no matched value for parameter %q", errExecuteFailed, name)
		}

		rv := reflect.ValueOf(v)
		if !rv.IsValid() {
			rv = reflect.Zero(ft.In(i))
		}

		in[i] = rv
	}

	out := fv.Call(in)

	for _, o := range out {
		if err, ok := o.Interface().(error); ok && err != nil {
			return err
		}
	}

	return nil
}

var errExecuteFailed = newError(ErrExecuteFailed, "execute failed")

// flattenOtherArgs unions every nested .Args map (options + subcommands,
// recursively) into one flat map, per spec.md §3's Arparma.other_args
// ("populated at finalisation").
func flattenOtherArgs(mainArgs map[string]any, options map[string]OptionResult, subs map[string]SubcommandResult) map[string]any {
	out := map[string]any{}

	for k, v := range mainArgs {
		out[k] = v
	}

	for _, opt := range options {
		for k, v := range opt.Args {
			out[k] = v
		}
	}

	for _, sub := range subs {
		for k, v := range sub.Args {
			out[k] = v
		}

		for k, v := range flattenOtherArgs(nil, sub.Options, sub.Subcommands) {
			out[k] = v
		}
	}

	return out
}

package extractor

import "strings"

// Options is the subset of clang-style compiler arguments the front end understands.
type Options struct {
	Language string
	Std      string
	Includes []string
	// Unknown holds arguments that were accepted but have no effect.
	Unknown []string
}

// ParseArgs reads -I<dir>, -I <dir>, -x <lang>, -x<lang> and -std=<std> from args.
// Every other argument ends up in Unknown.
func ParseArgs(args []string) Options {
	var opts Options
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "-I" || arg == "-x":
			if i+1 >= len(args) {
				opts.Unknown = append(opts.Unknown, arg)
				continue
			}
			i++
			if arg == "-I" {
				opts.Includes = append(opts.Includes, args[i])
			} else {
				opts.Language = args[i]
			}
		case strings.HasPrefix(arg, "-I"):
			opts.Includes = append(opts.Includes, arg[2:])
		case strings.HasPrefix(arg, "-x"):
			opts.Language = arg[2:]
		case strings.HasPrefix(arg, "-std="):
			opts.Std = strings.TrimPrefix(arg, "-std=")
		default:
			opts.Unknown = append(opts.Unknown, arg)
		}
	}
	return opts
}

// Package dispatch walks a parsed translation unit and routes each declaration of the
// primary file to the matching observer.
package dispatch

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"rawncc/internal/classifier"
	"rawncc/internal/extractor"
	"rawncc/internal/ir"
	"rawncc/internal/logger"
)

// Options configures a Dispatcher.
type Options struct {
	Input    string   // translation unit to parse (ParseFile only)
	Includes []string // include search paths
	Args     []string // extra clang-style arguments, see extractor.ParseArgs
	Debug    bool     // log every visited entity
	Verbose  int      // >= 2 logs the effective parser arguments
	Language string   // "c++" (default) or "c"; overrides -x in Args
}

// Dispatcher parses translation units and walks them. It owns one extractor that is reused
// for every file and is not safe for concurrent use.
type Dispatcher struct {
	opts     Options
	ext      *extractor.Extractor
	includes []string
	log      *zap.SugaredLogger
}

// New creates a Dispatcher for opts.
func New(opts Options) (*Dispatcher, error) {
	log := logger.For("dispatch")

	args := extractor.ParseArgs(opts.Args)
	lang := opts.Language
	if lang == "" {
		lang = args.Language
	}
	ext, err := extractor.NewExtractor(lang)
	if err != nil {
		return nil, fmt.Errorf("failed to create extractor: %w", err)
	}

	includes := append(append([]string(nil), opts.Includes...), args.Includes...)
	if opts.Verbose >= 2 {
		log.Infow("Parser arguments",
			"language", ext.Language(),
			"std", args.Std,
			"includes", includes,
			"ignored", args.Unknown,
		)
	} else if len(args.Unknown) > 0 {
		log.Debugw("Ignoring unsupported parser arguments", "args", args.Unknown)
	}

	return &Dispatcher{opts: opts, ext: ext, includes: includes, log: log}, nil
}

// ParseFile parses input and walks it with obs. On a parse failure nothing is observed and
// the error is returned as is (*extractor.ParseError for syntax errors and missing includes).
func (d *Dispatcher) ParseFile(ctx context.Context, input string, obs Observer) error {
	tree, err := d.ext.ParseTranslationUnit(ctx, input, d.includes)
	if err != nil {
		return err
	}

	var log *zap.SugaredLogger
	if d.opts.Debug {
		log = d.log
	}
	Walk(tree, tree.Primary(), obs, log)
	return nil
}

// ParseFile is a one-shot helper that builds a Dispatcher from opts and parses opts.Input.
func ParseFile(ctx context.Context, opts Options, obs Observer) error {
	d, err := New(opts)
	if err != nil {
		return err
	}
	return d.ParseFile(ctx, opts.Input, obs)
}

// Walk visits every node of t depth-first. Nodes located in primary are classified and
// routed to obs by priority: function, aggregate, variable or field, cast. Nodes from other
// files are not classified, but their children are still visited. log, if not nil, gets a
// debug entry for every visited node.
func Walk(t *ir.Tree, primary string, obs Observer, log *zap.SugaredLogger) {
	t.Visit(func(n, parent *ir.Node) ir.VisitResult {
		if log != nil {
			log.Debugw("Entity", "kind", n.Kind.String(), "name", n.Name, "location", n.Location.String())
		}
		if n.Location.File != primary {
			return ir.Recurse
		}

		switch {
		case classifier.IsFunction(n.Kind):
			if obs.Function != nil {
				obs.Function(classifier.Function(n))
			}
		case classifier.IsAggregate(n.Kind):
			if obs.Aggregate != nil {
				obs.Aggregate(classifier.Aggregate(n))
			}
		case classifier.IsVariable(n.Kind):
			if obs.Variable != nil {
				obs.Variable(classifier.Variable(t, n, parent))
			}
		case classifier.IsCast(n.Kind):
			if obs.Cast != nil {
				obs.Cast(classifier.Cast(n))
			}
		}
		return ir.Recurse
	})
}

package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync/atomic"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"rawncc/internal/config"
	"rawncc/internal/crawler"
	"rawncc/internal/descriptor"
	"rawncc/internal/dispatch"
	"rawncc/internal/extractor"
	"rawncc/internal/git"
	"rawncc/internal/logger"
	"rawncc/internal/naming"
	"rawncc/internal/report"
)

func runCheck(cmd *cobra.Command, opts *options, args []string) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}
	logger.Initialize(cfg.Log.Level, logger.ParseFormat(cfg.Log.Format))
	defer func() { _ = logger.Sync() }()
	log := logger.For("check")

	policy, err := cfg.Policy()
	if err != nil {
		return err
	}

	paths := args
	if len(paths) == 0 {
		paths = []string{"."}
	}
	files, err := crawler.NewCrawler(cfg.Headers).Collect(paths)
	if err != nil {
		return err
	}

	a := newAuditor(policy, log)
	if opts.reportPath != "" {
		a.report = report.New(cfg.Naming.Preset)
	}
	if opts.diffBase != "" {
		changes, err := git.GetChangedFiles(cmd.Context(), ".", opts.diffBase)
		if err != nil {
			return fmt.Errorf("failed to compute changes since %s: %w", opts.diffBase, err)
		}
		files = a.restrict(changes, files)
		log.Infow("Restricting audit to changed lines", "base", opts.diffBase, "files", len(files))
	}

	if err := a.run(cmd.Context(), dispatchOptions(cfg, opts), files, cfg.Jobs); err != nil {
		return err
	}

	log.Infow("Audit finished",
		"files", a.files.Load(),
		"failed", a.failed.Load(),
		"violations", a.violations.Load(),
		"casts", a.casts.Load(),
	)
	if opts.reportPath != "" {
		if err := a.report.Save(opts.reportPath); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		log.Infow("Report written", "path", opts.reportPath)
	}
	if code := a.exitCode(); code != exitOK {
		return &exitError{code: code}
	}
	return nil
}

func dispatchOptions(cfg *config.Config, opts *options) dispatch.Options {
	args := append([]string(nil), cfg.Args...)
	if cfg.Std != "" {
		args = append(args, "-std="+cfg.Std)
	}
	return dispatch.Options{
		Includes: cfg.Includes,
		Args:     args,
		Debug:    opts.debug,
		Verbose:  opts.verbose,
		Language: cfg.Language,
	}
}

// auditor checks translation units against a naming policy and counts what it reports.
// It is shared by all workers.
type auditor struct {
	policy *naming.Policy
	log    *zap.SugaredLogger
	// changed limits reports to these files and lines; nil reports everything.
	changed map[string]git.ChangedFile
	// report, when set, receives every finding.
	report *report.Report

	files      atomic.Int64
	failed     atomic.Int64
	violations atomic.Int64
	casts      atomic.Int64
}

func newAuditor(policy *naming.Policy, log *zap.SugaredLogger) *auditor {
	return &auditor{policy: policy, log: log}
}

// restrict keeps the files touched by changes and limits later reports to changed lines.
func (a *auditor) restrict(changes []git.ChangedFile, files []string) []string {
	a.changed = make(map[string]git.ChangedFile, len(changes))
	for _, c := range changes {
		a.changed[absPath(c.Path)] = c
	}

	var kept []string
	for _, f := range files {
		if _, ok := a.changed[absPath(f)]; ok {
			kept = append(kept, f)
		}
	}
	return kept
}

func (a *auditor) reportable(loc descriptor.Location) bool {
	if a.changed == nil {
		return true
	}
	c, ok := a.changed[absPath(loc.File)]
	return ok && c.Touches(loc.Line)
}

// run audits files with up to jobs workers. Each worker owns one Dispatcher.
func (a *auditor) run(ctx context.Context, opts dispatch.Options, files []string, jobs int) error {
	if jobs > len(files) {
		jobs = len(files)
	}
	if jobs < 1 {
		jobs = 1
	}

	pool := make(chan *dispatch.Dispatcher, jobs)
	for i := 0; i < jobs; i++ {
		d, err := dispatch.New(opts)
		if err != nil {
			return err
		}
		pool <- d
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for _, file := range files {
		g.Go(func() error {
			d := <-pool
			defer func() { pool <- d }()
			return a.auditFile(ctx, d, file)
		})
	}
	return g.Wait()
}

// auditFile parses one translation unit. Parse failures are logged and counted; only
// cancellation stops the audit.
func (a *auditor) auditFile(ctx context.Context, d *dispatch.Dispatcher, file string) error {
	a.files.Add(1)
	h := a.report.BeginFile(file)
	found := 0
	err := d.ParseFile(ctx, file, a.observer(&found))
	if err == nil {
		a.report.EndFile(h, found, nil)
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	a.failed.Add(1)
	a.report.EndFile(h, 0, err)
	var perr *extractor.ParseError
	if errors.As(err, &perr) {
		a.log.Errorw("Failed to parse translation unit",
			"file", file,
			"location", fmt.Sprintf("%s:%d:%d", perr.File, perr.Line, perr.Column),
			"reason", perr.Message,
		)
		a.report.Add(report.Finding{
			Code:     report.CodeParse,
			Severity: report.SeverityError,
			File:     perr.File,
			Line:     perr.Line,
			Column:   perr.Column,
			Message:  perr.Message,
		})
		return nil
	}
	a.log.Errorw("Failed to parse translation unit", "file", file, "error", err)
	a.report.Add(report.Finding{
		Code:     report.CodeParse,
		Severity: report.SeverityError,
		File:     file,
		Message:  err.Error(),
	})
	return nil
}

// observer builds the callbacks for one file; found counts what they report.
func (a *auditor) observer(found *int) dispatch.Observer {
	return dispatch.Observer{
		Variable: func(v descriptor.Variable) {
			pattern, ok := a.policy.Check(v)
			if ok || !a.reportable(v.Location) {
				return
			}
			*found++
			a.violations.Add(1)
			a.log.Warnw("invalid name for variable",
				"name", v.Name,
				"pattern", pattern,
				"location", v.Location.String(),
			)
			a.report.Add(report.Finding{
				Code:     report.CodeNaming,
				Severity: report.SeverityWarning,
				File:     v.Location.File,
				Line:     v.Location.Line,
				Column:   v.Location.Column,
				Message:  "invalid name for variable",
				Name:     v.Name,
				Pattern:  pattern,
			})
		},
		Function: func(f descriptor.Function) {
			a.log.Debugw("Function", "name", f.Name, "role", f.Role.String(), "location", f.Location.String())
		},
		Aggregate: func(ag descriptor.Aggregate) {
			a.log.Debugw("Aggregate", "name", ag.Name, "kind", ag.Kind.String(), "location", ag.Location.String())
		},
		Cast: func(c descriptor.CastSite) {
			if !a.reportable(c.Location) {
				return
			}
			*found++
			a.casts.Add(1)
			a.log.Errorw("C style cast found, remove immediately", "location", c.Location.String())
			a.report.Add(report.Finding{
				Code:     report.CodeCast,
				Severity: report.SeverityError,
				File:     c.Location.File,
				Line:     c.Location.Line,
				Column:   c.Location.Column,
				Message:  "C style cast found, remove immediately",
			})
		},
	}
}

func (a *auditor) exitCode() int {
	switch {
	case a.failed.Load() > 0:
		return exitFailure
	case a.violations.Load() > 0 || a.casts.Load() > 0:
		return exitFindings
	default:
		return exitOK
	}
}

func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

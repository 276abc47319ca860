package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/adnsv/mdbook-i18n/build"
	"github.com/adnsv/mdbook-i18n/logging"
	"github.com/adnsv/mdbook-i18n/mdbook"
	"github.com/adnsv/mdbook-i18n/model"
	"github.com/adnsv/mdbook-i18n/tree"
)

// Exit codes, following the usual CLI split between configuration problems
// and build failures.
const (
	exitOK          = 0
	exitFailure     = 1
	exitConfigError = 7
	exitBuildError  = 11
)

func exitCode(err error) int {
	var cerr *model.ConfigError
	var berr *build.Error
	switch {
	case err == nil:
		return exitOK
	case errors.As(err, &cerr):
		return exitConfigError
	case errors.As(err, &berr):
		return exitBuildError
	default:
		return exitFailure
	}
}

type runner struct {
	engine mdbook.Engine
	strict bool
	log    *slog.Logger
}

// renderStdin is the renderer entry point: mdbook pipes its render context
// into us and expects every language to be built before we exit.
func (r *runner) renderStdin(in io.Reader) error {
	ctx, err := mdbook.ReadRenderContext(in)
	if err != nil {
		return err
	}
	if err := mdbook.CheckVersion(ctx.Version); err != nil {
		r.log.Warn("mdbook version may not be compatible", logging.Error(err))
	}
	r.log.Debug("render context loaded", slog.String(logging.KeyRoot, ctx.Root),
		slog.String("destination", ctx.Destination))
	return r.buildAll(ctx.Root, ctx.Config)
}

// buildDir builds the book whose book.toml lives in dir, without mdbook
// driving the run.
func (r *runner) buildDir(dir string) error {
	root, cfg, err := loadDir(dir)
	if err != nil {
		return err
	}
	return r.buildAll(root, cfg)
}

func (r *runner) buildAll(root string, cfg tree.Table) error {
	ds, err := model.Resolve(root, cfg, model.Options{Strict: r.strict, Logger: r.log})
	if err != nil {
		return err
	}
	o := &build.Orchestrator{Engine: r.engine, Logger: r.log}
	reports, err := o.Run(ds)
	if err != nil {
		return err
	}
	r.log.Info("all books built", slog.Int("languages", len(reports)))
	return nil
}

// plan resolves the book in dir and formats the result.
func (r *runner) plan(dir, format string, colorize bool) ([]byte, error) {
	root, cfg, err := loadDir(dir)
	if err != nil {
		return nil, err
	}
	ds, err := model.Resolve(root, cfg, model.Options{Strict: r.strict, Logger: r.log})
	if err != nil {
		return nil, err
	}
	return renderPlan(ds, format, colorize)
}

func loadDir(dir string) (string, tree.Table, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return "", nil, fmt.Errorf("book root: %w", err)
	}
	cfg, err := mdbook.LoadBookTOML(root)
	if err != nil {
		return "", nil, err
	}
	return root, cfg, nil
}

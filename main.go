package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/adnsv/go-utils/fs"
	cli "github.com/jawher/mow.cli"

	"github.com/adnsv/mdbook-i18n/logging"
	"github.com/adnsv/mdbook-i18n/mdbook"
)

func main() {
	app := cli.App("mdbook-i18n", "mdbook renderer that builds the book once per translation")
	app.Version("version", appVersion())

	logLevel := app.String(cli.StringOpt{
		Name:   "log-level",
		Value:  "info",
		Desc:   "debug, info, warn or error",
		EnvVar: "MDBOOK_I18N_LOG",
	})
	logFormat := app.String(cli.StringOpt{
		Name:   "log-format",
		Value:  "auto",
		Desc:   "auto, text or json (auto: text on a terminal)",
		EnvVar: "MDBOOK_I18N_LOG_FORMAT",
	})
	strict := app.Bool(cli.BoolOpt{
		Name:   "strict",
		Value:  false,
		Desc:   "fail on malformed translation entries instead of skipping them",
		EnvVar: "MDBOOK_I18N_STRICT",
	})
	mdbookExe := app.String(cli.StringOpt{
		Name:   "mdbook",
		Value:  "mdbook",
		Desc:   "mdbook executable used to build each language",
		EnvVar: "MDBOOK_I18N_MDBOOK",
	})

	var r *runner
	app.Before = func() {
		logger, err := logging.Setup(logging.Options{Level: *logLevel, Format: *logFormat})
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			cli.Exit(2)
		}
		r = &runner{
			engine: &mdbook.CommandEngine{Executable: *mdbookExe, Logger: logger},
			strict: *strict,
			log:    logger,
		}
	}

	// mdbook runs renderers without arguments and the render context on stdin
	app.Action = func() {
		r.log.Info("running mdbook-i18n", slog.String("version", appVersion()))
		exit(r, r.renderStdin(os.Stdin))
	}

	app.Command("build", "build every language of the book in DIR", func(cmd *cli.Cmd) {
		cmd.Spec = "[DIR]"
		dir := cmd.StringArg("DIR", ".", "book root, containing book.toml")

		cmd.Action = func() {
			if ce, ok := r.engine.(*mdbook.CommandEngine); ok {
				if v, err := ce.Check(); err != nil {
					r.log.Warn("cannot determine mdbook version", logging.Error(err))
				} else if err := mdbook.CheckVersion(v.String()); err != nil {
					r.log.Warn("mdbook version may not be compatible", logging.Error(err))
				}
			}
			exit(r, r.buildDir(*dir))
		}
	})

	app.Command("plan", "show the per-language builds without running them", func(cmd *cli.Cmd) {
		cmd.Spec = "[-f=<table|markdown|yaml>] [-o=<FILE>] [DIR]"
		format := cmd.StringOpt("f format", "table", "output format")
		out := cmd.StringOpt("o output", "", "write the plan to FILE instead of stdout")
		dir := cmd.StringArg("DIR", ".", "book root, containing book.toml")

		cmd.Action = func() {
			buf, err := r.plan(*dir, *format, *out == "" && logging.IsTerminal(os.Stdout))
			if err != nil {
				exit(r, err)
				return
			}
			if *out == "" {
				_, err = os.Stdout.Write(buf)
			} else {
				err = fs.WriteFileIfChanged(*out, buf)
			}
			exit(r, err)
		}
	})

	app.Run(os.Args)
}

func exit(r *runner, err error) {
	if err != nil {
		r.log.Error("mdbook-i18n failed", logging.Error(err))
	}
	if code := exitCode(err); code != exitOK {
		cli.Exit(code)
	}
}

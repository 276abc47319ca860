package mdbook

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/adnsv/go-utils/fs"
	"github.com/adnsv/go-utils/runner"
	"github.com/blang/semver/v4"
)

// ErrMissingOutput is returned when the engine exits cleanly but leaves no
// output tree behind.
var ErrMissingOutput = errors.New("missing mdbook output")

// Engine turns a fully populated configuration into an output tree under
// cfg.BuildDir(), or fails.
type Engine interface {
	Build(root string, cfg *EngineConfig) error
}

// CommandEngine runs the mdbook executable once per Build call.
type CommandEngine struct {
	Executable string    // defaults to "mdbook"
	Stdout     io.Writer // defaults to os.Stderr, stdout belongs to mdbook
	Stderr     io.Writer // defaults to os.Stderr
	Logger     *slog.Logger
}

func (e *CommandEngine) executable() string {
	if e.Executable == "" {
		return "mdbook"
	}
	return e.Executable
}

func (e *CommandEngine) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.Default()
	}
	return e.Logger
}

func (e *CommandEngine) Build(root string, cfg *EngineConfig) error {
	dest := cfg.BuildDir()
	if dest == "" {
		return errors.New("engine config has no build-dir")
	}

	env, err := cfg.Env()
	if err != nil {
		return err
	}

	e.logger().Debug("running mdbook", "root", root, "dest", dest, "language", cfg.Book.Language)

	x := exec.Command(e.executable(), "build", root, "--dest-dir", dest)
	x.Env = append(os.Environ(), env...)
	x.Dir = root
	x.Stdout = e.Stdout
	if x.Stdout == nil {
		x.Stdout = os.Stderr
	}
	x.Stderr = e.Stderr
	if x.Stderr == nil {
		x.Stderr = os.Stderr
	}
	if err := x.Run(); err != nil {
		return fmt.Errorf("mdbook error: %w", err)
	}

	if !fs.DirExists(dest) {
		return fmt.Errorf("%w: %s", ErrMissingOutput, dest)
	}
	return nil
}

// Check reports the version of the mdbook executable the engine would run.
func (e *CommandEngine) Check() (semver.Version, error) {
	out, err := runner.TrimmedOutput(e.executable(), "--version")
	if err != nil {
		return semver.Version{}, fmt.Errorf("%s --version: %w", e.executable(), err)
	}
	return ParseVersion(out)
}

// ParseVersion accepts both bare versions ("0.4.40") and the output of
// `mdbook --version` ("mdbook v0.4.40").
func ParseVersion(s string) (semver.Version, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return semver.Version{}, errors.New("empty version string")
	}
	v, err := semver.ParseTolerant(fields[len(fields)-1])
	if err != nil {
		return semver.Version{}, fmt.Errorf("invalid mdbook version %q: %w", s, err)
	}
	return v, nil
}

// Package build runs resolved descriptors through the engine, one language
// at a time.
package build

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"github.com/adnsv/mdbook-i18n/logging"
	"github.com/adnsv/mdbook-i18n/mdbook"
	"github.com/adnsv/mdbook-i18n/model"
)

// LockFile is created in the base output directory for the duration of a run.
const LockFile = ".mdbook-i18n.lock"

var ErrLocked = errors.New("another mdbook-i18n build holds the output lock")

// Error reports the language whose build failed. Languages before it were
// built and left in place; languages after it were not attempted.
type Error struct {
	Language string
	Index    int // zero-based position in the run
	Total    int
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("build %q (language %d of %d): %v", e.Language, e.Index+1, e.Total, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Report describes one successful language build.
type Report struct {
	Language  string
	OutputDir string
	Duration  time.Duration
}

// Orchestrator invokes the engine for each descriptor, strictly in order,
// and stops at the first failure. The engine is never called concurrently.
type Orchestrator struct {
	Engine mdbook.Engine
	Logger *slog.Logger
}

func (o *Orchestrator) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}

// Run builds every descriptor. The returned reports cover the languages that
// completed, including when an error is returned.
func (o *Orchestrator) Run(descriptors []model.Descriptor) ([]Report, error) {
	if len(descriptors) == 0 {
		return nil, nil
	}
	log := o.logger().With(logging.RunID(uuid.NewString()))

	unlock, err := lockOutput(filepath.Dir(descriptors[0].OutputDir))
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := unlock(); err != nil {
			log.Warn("failed to release output lock", logging.Error(err))
		}
	}()

	reports := make([]Report, 0, len(descriptors))
	for i, d := range descriptors {
		log.Info("building book", logging.Language(d.Language),
			slog.Int(logging.KeyIndex, i+1), slog.Int("total", len(descriptors)))

		start := time.Now()
		// the engine gets its own copy; descriptors stay untouched
		if err := o.Engine.Build(d.Root, d.Config.Clone()); err != nil {
			log.Error("build failed", logging.Language(d.Language), logging.Error(err))
			return reports, &Error{Language: d.Language, Index: i, Total: len(descriptors), Err: err}
		}
		elapsed := time.Since(start)

		log.Info("book built", logging.Language(d.Language), logging.OutputDir(d.OutputDir),
			slog.Int64(logging.KeyDuration, elapsed.Milliseconds()))
		reports = append(reports, Report{Language: d.Language, OutputDir: d.OutputDir, Duration: elapsed})
	}
	return reports, nil
}

func lockOutput(dir string) (func() error, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	lock := flock.New(filepath.Join(dir, LockFile))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire output lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLocked, lock.Path())
	}
	return lock.Unlock, nil
}

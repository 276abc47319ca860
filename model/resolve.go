package model

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"golang.org/x/text/language"

	"github.com/adnsv/mdbook-i18n/logging"
	"github.com/adnsv/mdbook-i18n/mdbook"
	"github.com/adnsv/mdbook-i18n/tree"
)

// Well-known configuration paths.
const (
	TranslationsPath = "output.i18n.translations"
	RendererPath     = "output.i18n.renderer"
	StrictPath       = "output.i18n.strict"
)

// Descriptor is one resolved build job: everything needed to build a single
// language. Descriptors never share mutable state with each other.
type Descriptor struct {
	Language  string
	Root      string
	OutputDir string
	Book      Book
	Config    *mdbook.EngineConfig
}

// Options control resolution.
type Options struct {
	// Strict turns malformed translation entries into errors instead of
	// dropping them. `output.i18n.strict = true` in the book enables it too.
	Strict bool
	Logger *slog.Logger
}

type resolver struct {
	root     string
	cfg      tree.Table
	strict   bool
	log      *slog.Logger
	renderer string
}

// Resolve turns a raw configuration tree into one descriptor per language:
// the primary book first, then translations in the order they are declared.
// Either every descriptor is returned or none is.
func Resolve(root string, cfg tree.Table, opts Options) ([]Descriptor, error) {
	r := &resolver{root: root, cfg: cfg, strict: opts.Strict, log: opts.Logger}
	if r.log == nil {
		r.log = slog.Default()
	}
	if !r.strict {
		switch strict, p := cfg.BoolAt(StrictPath); p {
		case tree.Present:
			r.strict = strict
		case tree.Malformed:
			r.log.Warn("ignoring output.i18n.strict, not a boolean")
		}
	}

	renderer, err := r.rendererName()
	if err != nil {
		return nil, err
	}
	r.renderer = renderer
	options, err := r.rendererOptions()
	if err != nil {
		return nil, err
	}

	translations, err := r.translations()
	if err != nil {
		return nil, err
	}

	primary, err := parsePrimary(cfg)
	if err != nil {
		return nil, err
	}

	books := append([]*Book{primary}, translations...)
	seen := make(map[string]struct{}, len(books))
	for _, b := range books {
		if _, dup := seen[b.Language]; dup {
			return nil, configError(ErrDuplicateLanguage, -1, b.Language, "")
		}
		seen[b.Language] = struct{}{}
		if _, err := language.Parse(b.Language); err != nil {
			r.log.Warn("language is not a well-formed BCP 47 tag", logging.Language(b.Language))
		}
	}

	base := r.baseOutputDir()
	build := r.buildTable()
	preprocessor := r.preprocessorTable()

	ret := make([]Descriptor, 0, len(books))
	for _, b := range books {
		out := filepath.Join(base, b.Language)

		bt := build.Clone()
		delete(bt, "build_dir")
		bt["build-dir"] = tree.String(out)

		ec := &mdbook.EngineConfig{
			Book:     b.engineBook(),
			Build:    bt,
			Renderer: r.renderer,
			Output:   tree.Table{r.renderer: tree.TableValue(options.Clone())},
		}
		if preprocessor != nil {
			ec.Preprocessor = preprocessor.Clone()
		}

		d := Descriptor{
			Language:  b.Language,
			Root:      root,
			OutputDir: out,
			Book:      *b,
			Config:    ec,
		}
		d.Book.Authors = append([]string{}, b.Authors...)
		if b.Translators != nil {
			d.Book.Translators = append([]string{}, b.Translators...)
		}
		ret = append(ret, d)
	}

	r.log.Debug("resolved configuration",
		slog.Int("languages", len(ret)),
		slog.String("renderer", r.renderer),
		logging.OutputDir(base))
	return ret, nil
}

func (r *resolver) rendererName() (string, error) {
	name, p := r.cfg.StringAt(RendererPath)
	switch {
	case p == tree.Malformed:
		r.log.Warn("ignoring output.i18n.renderer, not a string")
		return mdbook.DefaultRenderer, nil
	case p == tree.Missing || name == "":
		return mdbook.DefaultRenderer, nil
	case name == mdbook.RendererName:
		return "", configError(ErrMalformedRendererOptions, -1, "", "output.i18n.renderer cannot name the i18n renderer itself")
	}
	return name, nil
}

// rendererOptions reads output.<renderer>. An absent section is an empty
// one; the engine falls back to its own defaults.
func (r *resolver) rendererOptions() (tree.Table, error) {
	path := "output." + r.renderer
	t, p := r.cfg.TableAt(path)
	switch p {
	case tree.Missing:
		return tree.Table{}, nil
	case tree.Malformed:
		return nil, configError(ErrMalformedRendererOptions, -1, "", path+" is not a table")
	}
	return t, nil
}

func (r *resolver) translations() ([]*Book, error) {
	arr, p := r.cfg.ArrayAt(TranslationsPath)
	switch p {
	case tree.Missing:
		return nil, nil
	case tree.Malformed:
		v, _ := r.cfg.Get(TranslationsPath)
		return nil, configError(ErrMalformedTranslations, -1, "", "found "+v.Kind().String())
	}

	tables := make([]tree.Table, len(arr))
	for i, e := range arr {
		t, ok := e.AsTable()
		if !ok {
			return nil, configError(ErrMalformedTranslations, i, "", fmt.Sprintf("element is %s", e.Kind()))
		}
		tables[i] = t
	}

	books := make([]*Book, 0, len(tables))
	for i, t := range tables {
		b, err := parseTranslation(t, i, r.log)
		if err != nil {
			if r.strict {
				return nil, err
			}
			r.log.Warn("skipping translation", slog.Int(logging.KeyIndex, i), logging.Error(err))
			continue
		}
		books = append(books, b)
	}
	return books, nil
}

// baseOutputDir is build.build-dir (mdbook also accepts build_dir), resolved
// against the root.
func (r *resolver) baseOutputDir() string {
	dir := mdbook.DefaultBuildDir
	for _, key := range []string{"build.build-dir", "build.build_dir"} {
		s, p := r.cfg.StringAt(key)
		if p == tree.Malformed {
			r.log.Warn("ignoring build directory, not a string", slog.String("key", key))
			continue
		}
		if p == tree.Present && s != "" {
			dir = s
			break
		}
	}
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(r.root, dir)
	}
	return filepath.Clean(dir)
}

func (r *resolver) buildTable() tree.Table {
	t, p := r.cfg.TableAt("build")
	if p == tree.Malformed {
		r.log.Warn("ignoring [build], not a table")
	}
	return t
}

func (r *resolver) preprocessorTable() tree.Table {
	t, p := r.cfg.TableAt("preprocessor")
	if p == tree.Malformed {
		r.log.Warn("ignoring [preprocessor], not a table")
	}
	return t
}

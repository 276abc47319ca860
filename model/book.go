package model

import (
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/adnsv/mdbook-i18n/logging"
	"github.com/adnsv/mdbook-i18n/mdbook"
	"github.com/adnsv/mdbook-i18n/tree"
)

// TranslationsDir is where translation sources live by default, relative to
// the book root: translations/<language>.
const TranslationsDir = "translations"

// Book is the description of one language of the document: the primary book
// (Fallback) or one translation.
type Book struct {
	Title       string
	Authors     []string
	Translators []string // nil when the entry lists none
	Description string
	Src         string
	Language    string
	Fallback    bool
}

// DefaultTranslationSrc returns the source directory assumed for a
// translation that does not name one.
func DefaultTranslationSrc(lang string) string {
	return path.Join(TranslationsDir, lang)
}

// validLanguageSegment reports why lang cannot become the last element of
// an output path, or "" if it can.
func validLanguageSegment(lang string) string {
	switch {
	case lang == "":
		return "empty language"
	case lang == "." || lang == "..":
		return "relative path element"
	case strings.ContainsAny(lang, `/\`):
		return "contains a path separator"
	}
	return ""
}

func requiredString(t tree.Table, key string) (string, string) {
	s, p := t.StringAt(key)
	switch p {
	case tree.Missing:
		return "", "missing " + key
	case tree.Malformed:
		return "", key + " is not a string"
	}
	return s, ""
}

// parseTranslation converts one table of output.i18n.translations. Problems
// with required fields are returned as ErrMalformedEntry; optional fields
// never fail.
func parseTranslation(t tree.Table, index int, log *slog.Logger) (*Book, error) {
	title, reason := requiredString(t, "title")
	if reason != "" {
		lang, _ := t.StringAt("language")
		return nil, configError(ErrMalformedEntry, index, lang, reason)
	}
	lang, reason := requiredString(t, "language")
	if reason != "" {
		return nil, configError(ErrMalformedEntry, index, "", reason)
	}
	if reason := validLanguageSegment(lang); reason != "" {
		return nil, configError(ErrMalformedEntry, index, lang, reason)
	}

	b := &Book{
		Title:    title,
		Language: lang,
		Authors:  []string{},
	}
	if authors, p := t.StringsAt("authors"); p == tree.Present {
		b.Authors = authors
	}
	if translators, p := t.StringsAt("translators"); p == tree.Present {
		b.Translators = translators
	}
	if desc, p := t.StringAt("description"); p == tree.Present {
		b.Description = desc
	}

	switch src, p := t.StringAt("src"); p {
	case tree.Present:
		b.Src = src
	case tree.Malformed:
		log.Warn("translation src is not a string, using the default",
			logging.Language(lang), slog.String("src", DefaultTranslationSrc(lang)))
		fallthrough
	default:
		b.Src = DefaultTranslationSrc(lang)
	}
	return b, nil
}

// parsePrimary reads the [book] section. Only the language is mandatory.
func parsePrimary(cfg tree.Table) (*Book, error) {
	lang, p := cfg.StringAt("book.language")
	switch {
	case p == tree.Malformed:
		return nil, configError(ErrMissingPrimaryLanguage, -1, "", "book.language is not a string")
	case p == tree.Missing || lang == "":
		return nil, configError(ErrMissingPrimaryLanguage, -1, "", "")
	}
	if reason := validLanguageSegment(lang); reason != "" {
		return nil, configError(ErrInvalidLanguage, -1, lang, reason)
	}

	b := &Book{
		Language: lang,
		Authors:  []string{},
		Src:      mdbook.DefaultSrc,
		Fallback: true,
	}
	if title, p := cfg.StringAt("book.title"); p == tree.Present {
		b.Title = title
	}
	if authors, p := cfg.StringsAt("book.authors"); p == tree.Present {
		b.Authors = authors
	}
	if desc, p := cfg.StringAt("book.description"); p == tree.Present {
		b.Description = desc
	}
	if src, p := cfg.StringAt("book.src"); p == tree.Present && src != "" {
		b.Src = src
	}
	return b, nil
}

// engineBook builds the [book] override. The primary book comes from the
// same book.toml the engine reads, so its empty title and description stay
// unset there; a translation always replaces both.
func (b *Book) engineBook() mdbook.BookConfig {
	ret := mdbook.BookConfig{
		Authors:  append([]string{}, b.Authors...),
		Src:      b.Src,
		Language: b.Language,
	}
	title, desc := b.Title, b.Description
	if !b.Fallback || title != "" {
		ret.Title = &title
	}
	if !b.Fallback || desc != "" {
		ret.Description = &desc
	}
	return ret
}

func (b *Book) String() string {
	kind := "translation"
	if b.Fallback {
		kind = "primary"
	}
	return fmt.Sprintf("%s %s (%s)", kind, b.Language, b.Src)
}

package model

import (
	"errors"
	"fmt"
)

// Sentinel configuration errors. They always reach callers wrapped in a
// *ConfigError; use errors.Is to classify.
var (
	ErrMalformedTranslations    = errors.New("output.i18n.translations is not an array of tables")
	ErrMalformedRendererOptions = errors.New("malformed renderer options")
	ErrMissingPrimaryLanguage   = errors.New("book.language is not set")
	ErrDuplicateLanguage        = errors.New("duplicate language")
	ErrMalformedEntry           = errors.New("malformed translation entry")
	ErrInvalidLanguage          = errors.New("language cannot be used as a directory name")
)

// ConfigError describes why a configuration could not be resolved.
type ConfigError struct {
	Err      error
	Language string // offending language, if known
	Index    int    // position in output.i18n.translations, -1 otherwise
	Reason   string
}

func (e *ConfigError) Error() string {
	msg := e.Err.Error()
	if e.Index >= 0 {
		msg = fmt.Sprintf("%s (translation #%d)", msg, e.Index)
	}
	if e.Language != "" {
		msg = fmt.Sprintf("%s: %q", msg, e.Language)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

func (e *ConfigError) Unwrap() error { return e.Err }

func configError(err error, index int, lang, reason string) *ConfigError {
	return &ConfigError{Err: err, Language: lang, Index: index, Reason: reason}
}

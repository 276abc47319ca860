// Package mdbook holds everything that talks to mdbook itself: the render
// context it pipes into renderers, the book.toml on disk, and the engine that
// runs `mdbook build` for one language at a time.
package mdbook

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/adnsv/mdbook-i18n/tree"
)

// RendererName is the name this renderer is registered under in book.toml
// (`[output.i18n]`). Its table never reaches the engine.
const RendererName = "i18n"

// DefaultRenderer is the renderer whose options are shared with every
// language when `output.i18n.renderer` is not set.
const DefaultRenderer = "html"

// DefaultSrc and DefaultBuildDir mirror mdbook's own defaults.
const (
	DefaultSrc      = "src"
	DefaultBuildDir = "book"
)

// BookConfig is the `[book]` section handed to the engine for one language.
// A nil Title or Description leaves the value from book.toml in place.
type BookConfig struct {
	Title       *string
	Authors     []string
	Description *string
	Src         string
	Language    string
}

// EngineConfig is a complete configuration for one engine run. Each value
// owns its tables; nothing is shared with other EngineConfigs.
type EngineConfig struct {
	Book         BookConfig
	Build        tree.Table // `[build]`, build-dir already pointing at the language; passed as MDBOOK_BUILD__* keys
	Renderer     string
	Output       tree.Table // renderer name -> renderer options
	Preprocessor tree.Table // nil when the book declares none
}

// BuildDir returns the destination directory of this run.
func (c *EngineConfig) BuildDir() string {
	s, _ := c.Build.StringAt("build-dir")
	return s
}

// RendererOptions returns the options table of the configured renderer.
func (c *EngineConfig) RendererOptions() tree.Table {
	t, _ := c.Output.TableAt(c.Renderer)
	return t
}

// Clone returns a deep copy of c.
func (c *EngineConfig) Clone() *EngineConfig {
	ret := &EngineConfig{
		Book:     c.Book,
		Build:    c.Build.Clone(),
		Renderer: c.Renderer,
		Output:   c.Output.Clone(),
	}
	ret.Book.Authors = append([]string{}, c.Book.Authors...)
	ret.Book.Title = cloneString(c.Book.Title)
	ret.Book.Description = cloneString(c.Book.Description)
	if c.Preprocessor != nil {
		ret.Preprocessor = c.Preprocessor.Clone()
	}
	return ret
}

func cloneString(p *string) *string {
	if p == nil {
		return nil
	}
	s := *p
	return &s
}

// Env returns the MDBOOK_* variables that make mdbook pick up this
// configuration on top of the book.toml found under the root.
//
// MDBOOK_OUTPUT and MDBOOK_PREPROCESSOR replace whole tables. Replacing
// `output` drops the i18n renderer, so the nested build never calls back into
// us. Book and build settings go one key per variable: mdbook stops reading
// the environment after an object-valued MDBOOK_BOOK or MDBOOK_BUILD.
func (c *EngineConfig) Env() ([]string, error) {
	var env []string
	add := func(name string, v any) error {
		buf, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode %s: %w", name, err)
		}
		env = append(env, name+"="+string(buf))
		return nil
	}

	output := c.Output.Clone()
	delete(output, RendererName)
	if err := add("MDBOOK_OUTPUT", tree.TableValue(output)); err != nil {
		return nil, err
	}
	if c.Preprocessor != nil {
		if err := add("MDBOOK_PREPROCESSOR", tree.TableValue(c.Preprocessor)); err != nil {
			return nil, err
		}
	}

	authors := c.Book.Authors
	if authors == nil {
		authors = []string{}
	}
	book := []struct {
		key string
		v   any
	}{
		{"title", c.Book.Title},
		{"authors", authors},
		{"description", c.Book.Description},
		{"src", c.Book.Src},
		{"language", c.Book.Language},
		{"multilingual", false},
	}
	for _, kv := range book {
		if p, ok := kv.v.(*string); ok && p == nil {
			continue
		}
		name, _ := envName("book", kv.key)
		if err := add(name, kv.v); err != nil {
			return nil, err
		}
	}

	for _, key := range c.Build.Keys() {
		v := c.Build[key]
		if key == "build-dir" || v.IsNull() {
			continue // passed as --dest-dir
		}
		name, ok := envName("build", key)
		if !ok {
			continue
		}
		if err := add(name, v); err != nil {
			return nil, err
		}
	}
	return env, nil
}

// envName maps section.key to the variable mdbook reads it from. mdbook
// lowercases names and turns "__" into "." and "_" into "-", so keys that
// would not survive the round trip have no variable.
func envName(section, key string) (string, bool) {
	if key == "" {
		return "", false
	}
	for _, r := range key {
		if !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '-') {
			return "", false
		}
	}
	if strings.Contains(key, "--") || strings.HasPrefix(key, "-") || strings.HasSuffix(key, "-") {
		return "", false
	}
	name := "MDBOOK_" + strings.ToUpper(section) + "__" + strings.ReplaceAll(strings.ToUpper(key), "-", "_")
	return name, true
}

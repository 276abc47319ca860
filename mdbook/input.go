package mdbook

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/adnsv/go-utils/fs"
	"github.com/pelletier/go-toml/v2"

	"github.com/adnsv/mdbook-i18n/tree"
)

// RenderContext is the part of the document mdbook writes to a renderer's
// stdin that the resolver needs. The parsed book itself is ignored: every
// language reloads its own sources.
type RenderContext struct {
	Version     string
	Root        string
	Destination string
	Config      tree.Table
}

// ReadRenderContext decodes a render context. Syntax errors carry the
// line:column they were found at.
func ReadRenderContext(r io.Reader) (*RenderContext, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read render context: %w", err)
	}

	var raw struct {
		Version     string         `json:"version"`
		Root        string         `json:"root"`
		Destination string         `json:"destination"`
		Config      map[string]any `json:"config"`
	}
	dec := json.NewDecoder(bytes.NewReader(buf))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("parse render context: %w", jsonErrDetail(buf, err))
	}
	if raw.Root == "" {
		return nil, errors.New("parse render context: missing root")
	}

	cfg, err := tree.TableFromNative(raw.Config)
	if err != nil {
		return nil, fmt.Errorf("parse render context config: %w", err)
	}

	return &RenderContext{
		Version:     raw.Version,
		Root:        raw.Root,
		Destination: raw.Destination,
		Config:      cfg,
	}, nil
}

// jsonErrDetail adds line:column to err. A syntax error's offset points past
// the offending byte, so it is located one byte back.
func jsonErrDetail(buf []byte, err error) error {
	var serr *json.SyntaxError
	if !errors.As(err, &serr) || serr.Offset <= 0 {
		return fs.JSONErrDetail(string(buf), err)
	}
	line, col, lcErr := fs.LineAndCharacter(string(buf), int(serr.Offset)-1)
	if lcErr != nil {
		return err
	}
	if line > 0 {
		col-- // the preceding newline is counted
	}
	return fmt.Errorf("at line %d:%d %w", line+1, col, err)
}

// BookFile is the name of the configuration file at the root of a book.
const BookFile = "book.toml"

// LoadBookTOML reads dir/book.toml into a tree.
func LoadBookTOML(dir string) (tree.Table, error) {
	fn := filepath.Join(dir, BookFile)
	if !fs.FileExists(fn) {
		return nil, fmt.Errorf("missing %s", fn)
	}
	buf, err := os.ReadFile(fn)
	if err != nil {
		return nil, err
	}

	raw := map[string]any{}
	if err := toml.Unmarshal(buf, &raw); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return nil, fmt.Errorf("%s:%d:%d: %w", fn, row, col, err)
		}
		return nil, fmt.Errorf("%s: %w", fn, err)
	}

	t, err := tree.TableFromNative(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fn, err)
	}
	return t, nil
}

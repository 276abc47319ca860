package model

import (
	"bytes"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adnsv/mdbook-i18n/logging"
	"github.com/adnsv/mdbook-i18n/tree"
)

const testRoot = "/books/demo"

func parseTOML(t *testing.T, src string) tree.Table {
	t.Helper()
	raw := map[string]any{}
	require.NoError(t, toml.Unmarshal([]byte(src), &raw))
	tbl, err := tree.TableFromNative(raw)
	require.NoError(t, err)
	return tbl
}

func resolve(t *testing.T, src string, opts Options) ([]Descriptor, error) {
	t.Helper()
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	return Resolve(testRoot, parseTOML(t, src), opts)
}

const threeLanguages = `
[book]
title = "Demo"
language = "en"
authors = ["Ann"]
description = "A demo"

[build]
build-dir = "out"
create-missing = false

[output.html]
default-theme = "light"
additional-css = ["custom.css"]

[output.html.fold]
enable = true

[preprocessor.links]

[[output.i18n.translations]]
language = "fr"
title = "Livre"

[[output.i18n.translations]]
language = "de"
title = "Buch"
authors = ["Bea", 7, "Cid"]
translators = ["Dan"]
src = "i18n/de"
description = "Ein Buch"
`

func TestResolveOrderAndCount(t *testing.T) {
	ds, err := resolve(t, threeLanguages, Options{})
	require.NoError(t, err)
	require.Len(t, ds, 3)

	assert.Equal(t, []string{"en", "fr", "de"}, []string{ds[0].Language, ds[1].Language, ds[2].Language})
	assert.True(t, ds[0].Book.Fallback)
	assert.False(t, ds[1].Book.Fallback)

	for _, d := range ds {
		assert.Equal(t, testRoot, d.Root)
		assert.Equal(t, filepath.Join(testRoot, "out", d.Language), d.OutputDir)
		assert.Equal(t, d.OutputDir, d.Config.BuildDir())
		assert.Equal(t, d.Language, d.Config.Book.Language)
	}
}

func TestResolveOutputDirsAreDistinct(t *testing.T) {
	ds, err := resolve(t, threeLanguages, Options{})
	require.NoError(t, err)

	seen := map[string]bool{}
	for _, d := range ds {
		assert.False(t, seen[d.OutputDir], d.OutputDir)
		seen[d.OutputDir] = true
		assert.Equal(t, d.Language, filepath.Base(d.OutputDir))
		assert.True(t, strings.HasSuffix(filepath.ToSlash(d.OutputDir), "/"+d.Language))
	}
}

func TestResolveTranslationFields(t *testing.T) {
	ds, err := resolve(t, threeLanguages, Options{})
	require.NoError(t, err)

	fr := ds[1].Book
	assert.Equal(t, "Livre", fr.Title)
	assert.Equal(t, "translations/fr", fr.Src)
	assert.NotNil(t, fr.Authors)
	assert.Empty(t, fr.Authors)
	assert.Nil(t, fr.Translators, "absent translators stay absent")
	assert.Empty(t, fr.Description)

	de := ds[2].Book
	assert.Equal(t, []string{"Bea", "Cid"}, de.Authors)
	assert.Equal(t, []string{"Dan"}, de.Translators)
	assert.Equal(t, "i18n/de", de.Src)
	assert.Equal(t, "Ein Buch", de.Description)
	assert.Equal(t, "i18n/de", ds[2].Config.Book.Src)
}

func TestResolvePrimaryDefaults(t *testing.T) {
	ds, err := resolve(t, threeLanguages, Options{})
	require.NoError(t, err)

	en := ds[0]
	assert.Equal(t, "Demo", en.Book.Title)
	assert.Equal(t, "src", en.Book.Src)
	assert.Equal(t, []string{"Ann"}, en.Book.Authors)
	require.NotNil(t, en.Config.Book.Description)
	assert.Equal(t, "A demo", *en.Config.Book.Description)
}

func TestResolveUnsetBookFields(t *testing.T) {
	ds, err := resolve(t, `
[book]
language = "en"

[[output.i18n.translations]]
language = "fr"
title = "Livre"
`, Options{})
	require.NoError(t, err)
	require.Len(t, ds, 2)

	en := ds[0].Config.Book
	assert.Nil(t, en.Title, "an untitled primary book stays untitled")
	assert.Nil(t, en.Description)

	fr := ds[1].Config.Book
	require.NotNil(t, fr.Title)
	assert.Equal(t, "Livre", *fr.Title)
	require.NotNil(t, fr.Description, "translations never inherit the primary description")
	assert.Empty(t, *fr.Description)
}

func TestResolveEmptyTranslatorsArePreserved(t *testing.T) {
	ds, err := resolve(t, `
[book]
language = "en"

[[output.i18n.translations]]
language = "fr"
title = "Livre"
translators = []
`, Options{})
	require.NoError(t, err)
	require.Len(t, ds, 2)
	assert.NotNil(t, ds[1].Book.Translators)
	assert.Empty(t, ds[1].Book.Translators)
}

func TestResolvePrimaryOnly(t *testing.T) {
	ds, err := resolve(t, `
[book]
title = "Solo"
language = "en"
src = "content"
`, Options{})
	require.NoError(t, err)
	require.Len(t, ds, 1)

	d := ds[0]
	assert.Equal(t, "en", d.Language)
	require.NotNil(t, d.Config.Book.Title)
	assert.Equal(t, "Solo", *d.Config.Book.Title)
	assert.Equal(t, "content", d.Config.Book.Src)
	assert.Equal(t, filepath.Join(testRoot, "book", "en"), d.OutputDir)
	assert.Equal(t, "html", d.Config.Renderer)
	require.NotNil(t, d.Config.RendererOptions())
	assert.Empty(t, d.Config.RendererOptions())
	assert.Nil(t, d.Config.Preprocessor)
}

func TestResolveRendererOptionsAreIsolated(t *testing.T) {
	cfg := parseTOML(t, threeLanguages)
	ds, err := Resolve(testRoot, cfg, Options{Logger: logging.Discard()})
	require.NoError(t, err)

	opts := ds[1].Config.RendererOptions()
	opts["default-theme"] = tree.String("navy")
	fold, _ := opts.TableAt("fold")
	fold["enable"] = tree.Bool(false)
	css, _ := opts.ArrayAt("additional-css")
	css[0] = tree.String("other.css")
	ds[1].Config.Preprocessor["extra"] = tree.TableValue(nil)
	ds[1].Config.Build["create-missing"] = tree.Bool(true)

	for _, i := range []int{0, 2} {
		other := ds[i].Config
		theme, _ := other.RendererOptions().StringAt("default-theme")
		assert.Equal(t, "light", theme)
		enabled, _ := other.RendererOptions().BoolAt("fold.enable")
		assert.True(t, enabled)
		css, _ := other.RendererOptions().StringsAt("additional-css")
		assert.Equal(t, []string{"custom.css"}, css)
		assert.NotContains(t, other.Preprocessor, "extra")
		cm, _ := other.Build.BoolAt("create-missing")
		assert.False(t, cm)
	}

	// the input tree is never touched either
	theme, _ := cfg.StringAt("output.html.default-theme")
	assert.Equal(t, "light", theme)
	bd, _ := cfg.StringAt("build.build-dir")
	assert.Equal(t, "out", bd)
}

func TestResolveCustomRenderer(t *testing.T) {
	ds, err := resolve(t, `
[book]
language = "en"

[output.html]
default-theme = "light"

[output.epub]
cover-image = "cover.png"

[output.i18n]
renderer = "epub"
`, Options{})
	require.NoError(t, err)
	cfg := ds[0].Config
	assert.Equal(t, "epub", cfg.Renderer)
	cover, _ := cfg.RendererOptions().StringAt("cover-image")
	assert.Equal(t, "cover.png", cover)
	assert.NotContains(t, cfg.Output, "html")
}

func TestResolveDefaultSrcForTranslation(t *testing.T) {
	ds, err := resolve(t, `
[book]
language = "en"

[[output.i18n.translations]]
language = "fr"
title = "Livre"
src = 42
`, Options{})
	require.NoError(t, err)
	assert.Equal(t, "translations/fr", ds[1].Book.Src)
}

func TestResolveBuildDirAlias(t *testing.T) {
	ds, err := resolve(t, `
[book]
language = "en"

[build]
build_dir = "/abs/site"
`, Options{})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/abs/site", "en"), ds[0].OutputDir)
	assert.NotContains(t, ds[0].Config.Build, "build_dir")
}

func TestResolveErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		opts Options
		want error
		lang string
	}{
		{
			name: "duplicate translation",
			src: `
[book]
language = "en"
[[output.i18n.translations]]
language = "fr"
title = "A"
[[output.i18n.translations]]
language = "fr"
title = "B"
`,
			want: ErrDuplicateLanguage,
			lang: "fr",
		},
		{
			name: "translation duplicates primary",
			src: `
[book]
language = "en"
[[output.i18n.translations]]
language = "en"
title = "Again"
`,
			want: ErrDuplicateLanguage,
			lang: "en",
		},
		{
			name: "missing primary language",
			src: `
[book]
title = "Demo"
`,
			want: ErrMissingPrimaryLanguage,
		},
		{
			name: "empty primary language",
			src: `
[book]
language = ""
`,
			want: ErrMissingPrimaryLanguage,
		},
		{
			name: "primary language not a string",
			src: `
[book]
language = 1
`,
			want: ErrMissingPrimaryLanguage,
		},
		{
			name: "primary language escapes output dir",
			src: `
[book]
language = "../x"
`,
			want: ErrInvalidLanguage,
			lang: "../x",
		},
		{
			name: "translations not an array",
			src: `
[book]
language = "en"
[output.i18n.translations]
language = "fr"
`,
			want: ErrMalformedTranslations,
		},
		{
			name: "translations array of strings",
			src: `
[book]
language = "en"
[output.i18n]
translations = ["fr"]
`,
			want: ErrMalformedTranslations,
		},
		{
			name: "renderer options not a table",
			src: `
[book]
language = "en"
[output]
html = "fancy"
`,
			want: ErrMalformedRendererOptions,
		},
		{
			name: "renderer names itself",
			src: `
[book]
language = "en"
[output.i18n]
renderer = "i18n"
`,
			want: ErrMalformedRendererOptions,
		},
		{
			name: "strict option rejects missing title",
			src: `
[book]
language = "en"
[[output.i18n.translations]]
language = "fr"
`,
			opts: Options{Strict: true},
			want: ErrMalformedEntry,
			lang: "fr",
		},
		{
			name: "strict via book.toml rejects missing language",
			src: `
[book]
language = "en"
[output.i18n]
strict = true
[[output.i18n.translations]]
title = "Livre"
`,
			want: ErrMalformedEntry,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds, err := resolve(t, tt.src, tt.opts)
			require.Error(t, err)
			assert.Nil(t, ds, "no partial result")
			assert.ErrorIs(t, err, tt.want)

			var cerr *ConfigError
			require.True(t, errors.As(err, &cerr))
			assert.Equal(t, tt.lang, cerr.Language)
		})
	}
}

func TestResolvePermissiveDropsMalformedEntries(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	ds, err := resolve(t, `
[book]
language = "en"

[[output.i18n.translations]]
language = "fr"

[[output.i18n.translations]]
title = "No language"

[[output.i18n.translations]]
language = "a/b"
title = "Slash"

[[output.i18n.translations]]
language = "de"
title = "Buch"

[[output.i18n.translations]]
language = "de"
title = 3
`, Options{Logger: logger})
	require.NoError(t, err)
	require.Len(t, ds, 2)
	assert.Equal(t, "en", ds[0].Language)
	assert.Equal(t, "de", ds[1].Language)
	assert.Equal(t, 4, strings.Count(logs.String(), "skipping translation"))
}

func TestResolveStrictAcceptsWellFormedInput(t *testing.T) {
	ds, err := resolve(t, threeLanguages, Options{Strict: true})
	require.NoError(t, err)
	assert.Len(t, ds, 3)
}

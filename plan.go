package main

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"

	"github.com/adnsv/mdbook-i18n/model"
)

type planEntry struct {
	Language    string   `yaml:"language"`
	Primary     bool     `yaml:"primary"`
	Title       string   `yaml:"title,omitempty"`
	Src         string   `yaml:"src"`
	OutputDir   string   `yaml:"output_dir"`
	Authors     []string `yaml:"authors,omitempty"`
	Translators []string `yaml:"translators,omitempty"`
	Renderer    string   `yaml:"renderer"`
}

func planEntries(ds []model.Descriptor) []planEntry {
	ret := make([]planEntry, 0, len(ds))
	for _, d := range ds {
		ret = append(ret, planEntry{
			Language:    d.Language,
			Primary:     d.Book.Fallback,
			Title:       d.Book.Title,
			Src:         d.Book.Src,
			OutputDir:   d.OutputDir,
			Authors:     d.Book.Authors,
			Translators: d.Book.Translators,
			Renderer:    d.Config.Renderer,
		})
	}
	return ret
}

// renderPlan formats resolved descriptors as "table", "markdown" or "yaml".
func renderPlan(ds []model.Descriptor, format string, colorize bool) ([]byte, error) {
	entries := planEntries(ds)

	format = strings.ToLower(format)
	switch format {
	case "yaml":
		return yaml.Marshal(struct {
			Books []planEntry `yaml:"books"`
		}{entries})

	case "table", "markdown", "md":
		tw := table.NewWriter()
		tw.SetStyle(table.StyleRounded)
		if colorize {
			tw.SetStyle(table.StyleColoredBright)
		}
		tw.AppendHeader(table.Row{"#", "Language", "Title", "Source", "Output", "Translators"})
		for i, e := range entries {
			lang := e.Language
			if e.Primary {
				lang += " *"
			}
			translators := "-"
			if e.Translators != nil {
				translators = strings.Join(e.Translators, ", ")
			}
			tw.AppendRow(table.Row{i + 1, lang, e.Title, e.Src, e.OutputDir, translators})
		}
		if format == "table" {
			return []byte(tw.Render() + "\n"), nil
		}
		return []byte(tw.RenderMarkdown() + "\n"), nil

	default:
		return nil, fmt.Errorf("plan format: unsupported value %q", format)
	}
}

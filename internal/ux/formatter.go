package ux

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Output formats accepted by --format.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Formatter writes one command result.
type Formatter interface {
	Format(v any) error
}

// FormatterOptions configures a Formatter. A nil Writer means stdout.
type FormatterOptions struct {
	Writer  io.Writer
	NoColor bool
}

// NewFormatter returns the formatter for format; "" selects text.
func NewFormatter(format string, opts *FormatterOptions) (Formatter, error) {
	var o FormatterOptions
	if opts != nil {
		o = *opts
	}
	if o.Writer == nil {
		o.Writer = os.Stdout
	}

	switch format {
	case FormatJSON:
		return jsonFormatter{w: o.Writer}, nil
	case FormatYAML:
		return yamlFormatter{w: o.Writer}, nil
	case FormatText, "":
		return textFormatter{w: o.Writer, noColor: o.NoColor}, nil
	default:
		return nil, fmt.Errorf("unknown format: %s (supported: text, json, yaml)", format)
	}
}

type jsonFormatter struct{ w io.Writer }

func (f jsonFormatter) Format(v any) error {
	enc := json.NewEncoder(f.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

type yamlFormatter struct{ w io.Writer }

func (f yamlFormatter) Format(v any) error {
	enc := yaml.NewEncoder(f.w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// textFormatter renders reports, plans and listings as styled sections.
// Results without sections have no text form.
type textFormatter struct {
	w       io.Writer
	noColor bool
}

func (f textFormatter) Format(v any) error {
	s, ok := v.(Sectioned)
	if !ok {
		return fmt.Errorf("%T has no text rendering; use --format json or --format yaml", v)
	}
	_, err := fmt.Fprint(f.w, RenderSections(s.Sections(), f.noColor))
	return err
}

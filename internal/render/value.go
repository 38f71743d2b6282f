package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/vk/fxgraph/internal/evaluator"
	"github.com/zclconf/go-cty-yaml"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// Format selects how results are written.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates s as a Format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	}
	return "", fmt.Errorf("invalid output format %q: must be one of text, json, yaml", s)
}

// Exportable replaces every capsule inside v with a string so the value can
// be serialised. Capsules that convert to string use that conversion; the
// rest use their Go syntax representation.
func Exportable(v cty.Value) (cty.Value, error) {
	return cty.Transform(v, func(_ cty.Path, v cty.Value) (cty.Value, error) {
		if !v.Type().IsCapsuleType() {
			return v, nil
		}
		switch {
		case v.IsNull():
			return cty.NullVal(cty.String), nil
		case !v.IsKnown():
			return cty.UnknownVal(cty.String), nil
		}
		if s, err := convert.Convert(v, cty.String); err == nil {
			return s, nil
		}
		return cty.StringVal(v.GoString()), nil
	})
}

// Text renders a single value for humans.
func Text(v cty.Value) string {
	ty := v.Type()
	switch {
	case v.IsNull():
		return "null"
	case !v.IsKnown():
		return "(unknown)"
	case ty.IsCapsuleType():
		return v.GoString()
	case ty == cty.String:
		return fmt.Sprintf("%q", v.AsString())
	case ty == cty.Number:
		return v.AsBigFloat().Text('f', -1)
	case ty == cty.Bool:
		if v.True() {
			return "true"
		}
		return "false"
	}

	ex, err := Exportable(v)
	if err != nil {
		return v.GoString()
	}
	b, err := ctyjson.Marshal(ex, ex.Type())
	if err != nil {
		return v.GoString()
	}
	return string(b)
}

// WriteResult writes res to w in format f. Text output is one
// "instance.port = value" line per entry; JSON and YAML write a single
// object keyed by "instance.port".
func WriteResult(w io.Writer, res evaluator.Result, f Format) error {
	refs := res.Refs()

	if f == FormatText {
		for _, ref := range refs {
			if _, err := fmt.Fprintf(w, "%s = %s\n", ref, Text(res[ref])); err != nil {
				return err
			}
		}
		return nil
	}

	attrs := make(map[string]cty.Value, len(refs))
	for _, ref := range refs {
		v, err := Exportable(res[ref])
		if err != nil {
			return fmt.Errorf("%s: %w", ref, err)
		}
		attrs[ref.String()] = v
	}
	obj := cty.ObjectVal(attrs)

	var (
		out []byte
		err error
	)
	switch f {
	case FormatJSON:
		out, err = ctyjson.Marshal(obj, obj.Type())
		out = append(out, '\n')
	case FormatYAML:
		out, err = yaml.Marshal(obj)
	default:
		return fmt.Errorf("unsupported output format %q", f)
	}
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}

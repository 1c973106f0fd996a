package provider

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/broady/jsonmodel/model"
)

// JSONSchema reads the JSON Schema subset that maps onto a model: types,
// properties, items, alternatives, enums, patterns, formats, numeric and size
// bounds, and local references to $defs or definitions.
//
// Some constructs are approximated: oneOf is checked as anyOf, keywords next
// to $ref, const, enum, oneOf or anyOf are ignored, and prefixItems positions
// are required. Each approximation is logged as a warning, or rejected with
// CodeMalformedModel in strict mode.
type JSONSchema struct {
	// Strict rejects unknown keywords, formats and approximated constructs
	// instead of ignoring them.
	Strict bool

	// Logger receives approximation warnings. Nil discards them.
	Logger *slog.Logger
}

var _ Provider = JSONSchema{}

// keywords are the understood schema keywords.
type keywords struct {
	Type                 any            `mapstructure:"type"`
	Title                string         `mapstructure:"title"`
	Description          string         `mapstructure:"description"`
	Ref                  string         `mapstructure:"$ref"`
	Defs                 map[string]any `mapstructure:"$defs"`
	Definitions          map[string]any `mapstructure:"definitions"`
	Properties           map[string]any `mapstructure:"properties"`
	Required             []string       `mapstructure:"required"`
	AdditionalProperties any            `mapstructure:"additionalProperties"`
	Items                any            `mapstructure:"items"`
	PrefixItems          []any          `mapstructure:"prefixItems"`
	OneOf                []any          `mapstructure:"oneOf"`
	AnyOf                []any          `mapstructure:"anyOf"`
	Enum                 []any          `mapstructure:"enum"`
	Const                any            `mapstructure:"const"`
	Pattern              string         `mapstructure:"pattern"`
	Format               string         `mapstructure:"format"`
	Minimum              *float64       `mapstructure:"minimum"`
	Maximum              *float64       `mapstructure:"maximum"`
	ExclusiveMinimum     *float64       `mapstructure:"exclusiveMinimum"`
	ExclusiveMaximum     *float64       `mapstructure:"exclusiveMaximum"`
	MinLength            *float64       `mapstructure:"minLength"`
	MaxLength            *float64       `mapstructure:"maxLength"`
	MinItems             *float64       `mapstructure:"minItems"`
	MaxItems             *float64       `mapstructure:"maxItems"`
	MinProperties        *float64       `mapstructure:"minProperties"`
	MaxProperties        *float64       `mapstructure:"maxProperties"`
	Discriminator        *discriminator `mapstructure:"discriminator"`
}

type discriminator struct {
	PropertyName string `mapstructure:"propertyName"`
}

// annotations never change validation.
var annotations = map[string]bool{
	"$schema":     true,
	"$id":         true,
	"$comment":    true,
	"examples":    true,
	"default":     true,
	"deprecated":  true,
	"readOnly":    true,
	"writeOnly":   true,
	"$anchor":     true,
	"contentType": true,
}

// Load reads a schema document and validates the resulting model.
func (p JSONSchema) Load(data []byte, format Format) (*model.Model, error) {
	doc, err := decode(data, format)
	if err != nil {
		return nil, err
	}
	c := &converter{strict: p.Strict, logger: p.Logger}
	m, err := c.model(doc)
	if err != nil {
		return nil, err
	}
	if errs := m.Validate(); len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return m, nil
}

// LoadFile reads a .json, .yaml or .yml schema file. A model without a title
// is named after the file.
func (p JSONSchema) LoadFile(path string) (*model.Model, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	m, err := p.Load(data, DetectFormat(path))
	if err != nil {
		return nil, err
	}
	if m.Name == "" {
		m.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return m, nil
}

type converter struct {
	strict bool
	logger *slog.Logger
}

func (c *converter) fail(loc, format string, args ...any) error {
	return model.Errorf(model.CodeMalformedModel, "%s: %s", loc, fmt.Sprintf(format, args...))
}

// approximate records a construct the model cannot express exactly. It fails
// in strict mode and logs a warning otherwise.
func (c *converter) approximate(loc, format string, args ...any) error {
	if c.strict {
		return c.fail(loc, format, args...)
	}
	if c.logger != nil {
		c.logger.Warn("schema approximated", "loc", loc, "reason", fmt.Sprintf(format, args...))
	}
	return nil
}

// structural are the keywords that never constrain a value by themselves.
var structural = map[string]bool{
	"title":         true,
	"description":   true,
	"$defs":         true,
	"definitions":   true,
	"discriminator": true,
}

// ignoredBeside checks that a schema resolved by keyword uses no other
// validation keywords, which the model would drop.
func (c *converter) ignoredBeside(loc, keyword string, raw map[string]any, allowed ...string) error {
	var ignored []string
	for key := range raw {
		if key == keyword || structural[key] || annotations[key] {
			continue
		}
		skip := false
		for _, a := range allowed {
			skip = skip || key == a
		}
		if !skip {
			ignored = append(ignored, key)
		}
	}
	if len(ignored) == 0 {
		return nil
	}
	sort.Strings(ignored)
	return c.approximate(loc, "%s ignored next to %s", strings.Join(ignored, ", "), keyword)
}

func (c *converter) model(doc any) (*model.Model, error) {
	root, err := c.node("#", doc)
	if err != nil {
		return nil, err
	}
	m := &model.Model{Root: root, Defs: map[string]*model.Node{}}

	raw, _ := doc.(map[string]any)
	for _, section := range []string{"definitions", "$defs"} {
		defs, ok := raw[section].(map[string]any)
		if !ok {
			continue
		}
		names := make([]string, 0, len(defs))
		for name := range defs {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			n, err := c.node("#/"+section+"/"+name, defs[name])
			if err != nil {
				return nil, err
			}
			m.Defs[name] = n
		}
	}
	if title, ok := raw["title"].(string); ok {
		m.Name = title
	}
	return m, nil
}

// node converts one schema. Boolean schemas are true (anything) or false,
// which is only meaningful where the container handles it.
func (c *converter) node(loc string, v any) (*model.Node, error) {
	var raw map[string]any
	switch t := v.(type) {
	case bool:
		if t {
			return model.Any(), nil
		}
		return nil, c.fail(loc, "false schema is only supported for additionalProperties and items")
	case map[string]any:
		raw = t
	default:
		return nil, c.fail(loc, "schema must be an object or a boolean, got %T", v)
	}

	var kw keywords
	var md mapstructure.Metadata
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:   &kw,
		Metadata: &md,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, c.fail(loc, "%v", err)
	}
	if c.strict {
		sort.Strings(md.Unused)
		for _, key := range md.Unused {
			if !annotations[key] {
				return nil, c.fail(loc, "unsupported keyword %q", key)
			}
		}
	}

	n, err := c.build(loc, raw, &kw)
	if err != nil {
		return nil, err
	}
	switch {
	case kw.Description != "":
		n.Doc = kw.Description
	case kw.Title != "":
		n.Doc = kw.Title
	}
	return n, nil
}

func (c *converter) build(loc string, raw map[string]any, kw *keywords) (*model.Node, error) {
	if kw.Ref != "" {
		name, err := c.ref(loc, kw.Ref)
		if err != nil {
			return nil, err
		}
		if err := c.ignoredBeside(loc, "$ref", raw); err != nil {
			return nil, err
		}
		return model.Ref(name), nil
	}
	if _, ok := raw["const"]; ok {
		if err := c.ignoredBeside(loc, "const", raw); err != nil {
			return nil, err
		}
		return model.Enum(kw.Const), nil
	}
	if kw.Enum != nil {
		if err := c.ignoredBeside(loc, "enum", raw); err != nil {
			return nil, err
		}
		return model.Enum(kw.Enum...), nil
	}

	alts, key := kw.OneOf, "oneOf"
	if alts == nil && kw.AnyOf != nil {
		alts, key = kw.AnyOf, "anyOf"
	}
	if alts != nil {
		// oneOf and anyOf together are caught by ignoredBeside.
		if err := c.ignoredBeside(loc, key, raw); err != nil {
			return nil, err
		}
		if key == "oneOf" && len(alts) > 1 && kw.Discriminator == nil {
			if err := c.approximate(loc, "oneOf checked as anyOf, a value matching several alternatives is accepted"); err != nil {
				return nil, err
			}
		}
		n := model.OneOf()
		for i, a := range alts {
			alt, err := c.node(fmt.Sprintf("%s/%s/%d", loc, key, i), a)
			if err != nil {
				return nil, err
			}
			n.Alternatives = append(n.Alternatives, alt)
		}
		if kw.Discriminator != nil {
			n.Discriminator = kw.Discriminator.PropertyName
		}
		return n, nil
	}

	types, err := c.types(loc, kw)
	if err != nil {
		return nil, err
	}
	if len(types) == 1 {
		return c.typed(loc, types[0], kw)
	}
	n := model.OneOf()
	for _, t := range types {
		alt, err := c.typed(loc, t, kw)
		if err != nil {
			return nil, err
		}
		n.Alternatives = append(n.Alternatives, alt)
	}
	return n, nil
}

// types returns the declared types, or the type implied by the keywords used.
func (c *converter) types(loc string, kw *keywords) ([]string, error) {
	switch t := kw.Type.(type) {
	case string:
		return []string{t}, nil
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			s, ok := e.(string)
			if !ok {
				return nil, c.fail(loc, "type list entries must be strings")
			}
			out = append(out, s)
		}
		if len(out) == 0 {
			return nil, c.fail(loc, "empty type list")
		}
		return out, nil
	case nil:
	default:
		return nil, c.fail(loc, "type must be a string or a list")
	}

	switch {
	case kw.Properties != nil || kw.Required != nil || kw.AdditionalProperties != nil ||
		kw.MinProperties != nil || kw.MaxProperties != nil:
		return []string{"object"}, nil
	case kw.Items != nil || kw.PrefixItems != nil || kw.MinItems != nil || kw.MaxItems != nil:
		return []string{"array"}, nil
	case kw.Pattern != "" || kw.Format != "" || kw.MinLength != nil || kw.MaxLength != nil:
		return []string{"string"}, nil
	case kw.Minimum != nil || kw.Maximum != nil || kw.ExclusiveMinimum != nil || kw.ExclusiveMaximum != nil:
		return []string{"number"}, nil
	}
	return []string{"any"}, nil
}

func (c *converter) typed(loc, typ string, kw *keywords) (*model.Node, error) {
	switch typ {
	case "any":
		return model.Any(), nil
	case "null":
		return model.Null(), nil
	case "boolean":
		return model.Bool(), nil
	case "integer":
		return numeric(model.Int(), kw), nil
	case "number":
		return numeric(model.Number(), kw), nil
	case "string":
		return c.str(loc, kw)
	case "array":
		return c.array(loc, kw)
	case "object":
		return c.object(loc, kw)
	}
	return nil, c.fail(loc, "unknown type %q", typ)
}

func numeric(n *model.Node, kw *keywords) *model.Node {
	bound(n, model.Ge, kw.Minimum)
	bound(n, model.Le, kw.Maximum)
	bound(n, model.Gt, kw.ExclusiveMinimum)
	bound(n, model.Lt, kw.ExclusiveMaximum)
	return n
}

func bound(n *model.Node, op model.Op, limit *float64) {
	if limit != nil {
		n.Constrain(op, *limit)
	}
}

func (c *converter) str(loc string, kw *keywords) (*model.Node, error) {
	var n *model.Node
	switch {
	case kw.Format != "":
		f, ok := model.ParseFormat(kw.Format)
		switch {
		case ok && kw.Pattern != "" && c.strict:
			return nil, c.fail(loc, "pattern and format cannot be combined")
		case ok:
			n = model.Fmt(f)
		case c.strict:
			return nil, c.fail(loc, "unsupported format %q", kw.Format)
		}
	}
	if n == nil {
		n = model.String()
		if kw.Pattern != "" {
			regex, flags := splitPattern(kw.Pattern)
			n.Pattern = &model.Pattern{Regex: regex, Flags: flags}
		}
	}
	bound(n, model.Ge, kw.MinLength)
	bound(n, model.Le, kw.MaxLength)
	return n, nil
}

// splitPattern accepts plain regexes and the "/regex/flags" form.
func splitPattern(p string) (string, string) {
	if len(p) < 2 || p[0] != '/' {
		return p, ""
	}
	end := strings.LastIndexByte(p, '/')
	if end == 0 {
		return p, ""
	}
	flags := p[end+1:]
	if strings.Trim(flags, "abcdefghijklmnopqrstuvwxyz") != "" {
		return p, ""
	}
	return p[1:end], flags
}

func (c *converter) array(loc string, kw *keywords) (*model.Node, error) {
	n := model.Array(nil)
	prefix := kw.PrefixItems
	items := kw.Items
	if list, ok := items.([]any); ok && prefix == nil {
		// draft 4 tuple form
		prefix, items = list, nil
	}
	if len(prefix) > 0 && (kw.MinItems == nil || *kw.MinItems < float64(len(prefix))) {
		if err := c.approximate(loc, "prefixItems positions are required, shorter arrays are rejected"); err != nil {
			return nil, err
		}
	}
	for i, p := range prefix {
		child, err := c.node(fmt.Sprintf("%s/prefixItems/%d", loc, i), p)
		if err != nil {
			return nil, err
		}
		n.Prefix = append(n.Prefix, child)
	}

	switch t := items.(type) {
	case nil:
	case bool:
		if !t {
			n.Constrain(model.Le, float64(len(prefix)))
		}
	default:
		child, err := c.node(loc+"/items", t)
		if err != nil {
			return nil, err
		}
		if child.Kind != model.KindAny {
			n.Items = child
		}
	}
	bound(n, model.Ge, kw.MinItems)
	bound(n, model.Le, kw.MaxItems)
	return n, nil
}

// object lists properties in lexical order. Names that are required but not
// described accept any value.
func (c *converter) object(loc string, kw *keywords) (*model.Node, error) {
	required := map[string]bool{}
	for _, name := range kw.Required {
		required[name] = true
	}
	names := make([]string, 0, len(kw.Properties)+len(kw.Required))
	for name := range kw.Properties {
		names = append(names, name)
	}
	for name := range required {
		if _, ok := kw.Properties[name]; !ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	n := model.Object()
	for _, name := range names {
		child := model.Any()
		if s, ok := kw.Properties[name]; ok {
			var err error
			child, err = c.node(loc+"/properties/"+escapePointer(name), s)
			if err != nil {
				return nil, err
			}
		}
		n.Properties = append(n.Properties, model.Property{Name: name, Node: child, Required: required[name]})
	}

	switch t := kw.AdditionalProperties.(type) {
	case nil:
	case bool:
		if !t {
			n.Close()
		}
	default:
		child, err := c.node(loc+"/additionalProperties", t)
		if err != nil {
			return nil, err
		}
		if child.Kind != model.KindAny {
			n.Additional = child
		}
	}
	bound(n, model.Ge, kw.MinProperties)
	bound(n, model.Le, kw.MaxProperties)
	return n, nil
}

// ref resolves a local reference to a def name.
func (c *converter) ref(loc, ref string) (string, error) {
	for _, prefix := range []string{"#/$defs/", "#/definitions/"} {
		if name, ok := strings.CutPrefix(ref, prefix); ok && name != "" && !strings.Contains(name, "/") {
			return unescapePointer(name), nil
		}
	}
	return "", c.fail(loc, "unsupported reference %q", ref)
}

var (
	pointerEscaper   = strings.NewReplacer("~", "~0", "/", "~1")
	pointerUnescaper = strings.NewReplacer("~1", "/", "~0", "~")
)

func escapePointer(s string) string   { return pointerEscaper.Replace(s) }
func unescapePointer(s string) string { return pointerUnescaper.Replace(s) }

// Package e2e compiles models and runs the generated validators.
package e2e

import (
	"context"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/broady/jsonmodel"
	"github.com/broady/jsonmodel/internal/runner"
	"github.com/broady/jsonmodel/model"
	"github.com/broady/jsonmodel/provider"
)

const uuidSchema = `{
  "type": "object",
  "properties": {"id": {"type": "string", "format": "$UUID"}},
  "required": ["id"]
}`

const shapesSchema = `
title: shapes
type: object
properties:
  shapes:
    type: array
    items: {$ref: "#/$defs/shape"}
  owner: {type: string, pattern: "^[a-z]+$"}
required: [shapes]
additionalProperties: false
$defs:
  circle:
    type: object
    properties:
      kind: {const: circle}
      r: {type: number, exclusiveMinimum: 0}
    required: [kind, r]
    additionalProperties: false
  square:
    type: object
    properties:
      kind: {const: square}
      side: {type: integer, minimum: 1}
    required: [kind, side]
    additionalProperties: false
  shape:
    oneOf: [{$ref: "#/$defs/circle"}, {$ref: "#/$defs/square"}]
`

// numbersSchema has an untagged alternation whose first branch fails deep
// inside before the second one matches.
const numbersSchema = `
type: object
properties:
  v:
    anyOf:
      - type: object
        properties: {n: {type: integer}}
        required: [n]
      - type: object
        properties: {n: {type: string}}
        required: [n]
required: [v]
`

// languages lists the backends whose tool is installed.
func languages(t *testing.T) []string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping end to end test in short mode")
	}
	var langs []string
	if _, err := exec.LookPath("go"); err == nil {
		langs = append(langs, "go")
	}
	if _, err := exec.LookPath("node"); err == nil {
		langs = append(langs, "js")
	}
	if len(langs) == 0 {
		t.Skip("neither go nor node is available")
	}
	return langs
}

type validator struct {
	t    *testing.T
	opts runner.Options
}

func compile(t *testing.T, lang, schema string, format provider.Format, extra ...string) *validator {
	t.Helper()
	m, err := provider.JSONSchema{}.Load([]byte(schema), format)
	require.NoError(t, err)
	return compileModel(t, lang, m, func(g *jsonmodel.Generator) { g.Options(extra...) })
}

func compileModel(t *testing.T, lang string, m *model.Model, configure func(*jsonmodel.Generator)) *validator {
	t.Helper()
	g := jsonmodel.FromModel(m).Language(lang).WithMain()
	if configure != nil {
		configure(g)
	}
	res, err := g.Generate()
	require.NoError(t, err)

	root, err := runner.FindModuleRoot(".")
	require.NoError(t, err)
	return &validator{t: t, opts: runner.Options{Language: lang, Code: res.Code, ModuleRoot: root}}
}

func (v *validator) run(input string, test bool) *runner.Result {
	v.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	opts := v.opts
	opts.Test = test
	res, err := runner.Exec(ctx, opts, []byte(input))
	require.NoError(v.t, err)
	return res
}

// outcome is the verdict on one document with its diagnostics.
type outcome struct {
	Valid bool
	Diags []string
}

// outcomes validates every document in one test mode run. Each document is
// expected valid, so a FAIL line means the validator rejected it.
func (v *validator) outcomes(docs []string) []outcome {
	v.t.Helper()
	pairs := make([]string, len(docs))
	for i, doc := range docs {
		pairs[i] = "[true, " + doc + "]"
	}
	res := v.run("["+strings.Join(pairs, ",\n")+"]", true)

	out := make([]outcome, 0, len(docs))
	for _, line := range strings.Split(string(res.Output), "\n") {
		switch {
		case strings.HasPrefix(line, "Test #"):
			out = append(out, outcome{Valid: strings.HasSuffix(line, ": PASS")})
		case strings.HasPrefix(line, "  - ") && len(out) > 0:
			last := &out[len(out)-1]
			last.Diags = append(last.Diags, strings.TrimPrefix(line, "  - "))
		}
	}
	require.Len(v.t, out, len(docs), "output:\n%s", res.Output)
	return out
}

// diagnostics returns the reported "path: message" lines.
func diagnostics(out []byte) []string {
	var diags []string
	for _, line := range strings.Split(string(out), "\n") {
		if strings.HasPrefix(line, "  $") {
			diags = append(diags, strings.TrimSpace(line))
		}
	}
	return diags
}

func TestUUIDProperty(t *testing.T) {
	for _, lang := range languages(t) {
		t.Run(lang, func(t *testing.T) {
			v := compile(t, lang, uuidSchema, provider.FormatJSON)

			res := v.run(`{"id": "not-a-uuid"}`, false)
			assert.False(t, res.Passed)
			assert.Equal(t, []string{"$.id: expecting $UUID"}, diagnostics(res.Output))

			res = v.run(`{"id": "123e4567-e89b-12d3-a456-426614174000"}`, false)
			assert.True(t, res.Passed, "output: %s", res.Output)
			assert.Empty(t, diagnostics(res.Output))

			res = v.run(`{}`, false)
			assert.False(t, res.Passed)
			assert.Equal(t, []string{`$: missing mandatory property "id"`}, diagnostics(res.Output))
		})
	}
}

func TestSuite(t *testing.T) {
	cases := []struct {
		want  bool
		value any
	}{
		{true, map[string]any{"shapes": []any{}}},
		{true, map[string]any{
			"shapes": []any{
				map[string]any{"kind": "circle", "r": 1.5},
				map[string]any{"kind": "square", "side": 2},
			},
			"owner": "bob",
		}},
		{false, map[string]any{"shapes": []any{map[string]any{"kind": "circle", "r": 0}}}},
		{false, map[string]any{"shapes": []any{map[string]any{"kind": "square", "side": 1.5}}}},
		{false, map[string]any{"shapes": []any{map[string]any{"kind": "triangle"}}}},
		{false, map[string]any{"shapes": []any{}, "extra": 1}},
		{false, map[string]any{"shapes": []any{}, "owner": "Bob"}},
		{false, map[string]any{"owner": "bob"}},
		{false, []any{}},
	}
	suite := make([][2]any, len(cases))
	for i, c := range cases {
		suite[i] = [2]any{c.want, c.value}
	}
	data, err := json.Marshal(suite)
	require.NoError(t, err)

	for _, lang := range languages(t) {
		for _, opt := range []string{"with_path=true", "with_path=false", "with_report=false", "with_predef=false", "debug=true"} {
			t.Run(lang+"/"+opt, func(t *testing.T) {
				v := compile(t, lang, shapesSchema, provider.FormatYAML, opt)
				res := v.run(string(data), true)
				assert.True(t, res.Passed, "output:\n%s", res.Output)
				assert.Contains(t, string(res.Output), "all tests passed")
			})
		}
	}
}

func TestPathFidelity(t *testing.T) {
	for _, lang := range languages(t) {
		t.Run(lang, func(t *testing.T) {
			v := compile(t, lang, shapesSchema, provider.FormatYAML)
			res := v.run(`{"shapes": [{"kind": "circle", "r": 1}, {"kind": "square", "side": 0}]}`, false)
			assert.False(t, res.Passed)
			assert.Equal(t, []string{"$.shapes[1].side: expecting int >= 1"}, diagnostics(res.Output))
		})
	}
}

func TestAlternationIsolation(t *testing.T) {
	for _, lang := range languages(t) {
		t.Run(lang, func(t *testing.T) {
			v := compile(t, lang, numbersSchema, provider.FormatYAML)

			res := v.run(`{"v": {"n": "seven"}}`, false)
			assert.True(t, res.Passed, "output:\n%s", res.Output)
			assert.Empty(t, diagnostics(res.Output))

			res = v.run(`{"v": {"n": true}}`, false)
			assert.False(t, res.Passed)
			assert.Equal(t, []string{"$.v: no alternative matched"}, diagnostics(res.Output))
		})
	}
}

// shapesCorpus exercises the property, tag and enum dispatch of shapesSchema.
var shapesCorpus = []string{
	`{"shapes": []}`,
	`{"shapes": [{"kind": "circle", "r": 1}, {"kind": "square", "side": 3}], "owner": "ann"}`,
	`{"shapes": [{"kind": "square", "side": 0}]}`,
	`{"shapes": [{"kind": "circle"}]}`,
	`{"shapes": [{"kind": "circle", "r": 2, "side": 1}]}`,
	`{"shapes": [{"kind": "hexagon"}]}`,
	`{"shapes": [{"r": 1}]}`,
	`{"shapes": [], "owner": "Ann"}`,
	`{"shapes": [], "colour": "red"}`,
	`{"shapes": {}}`,
	`{}`,
	`null`,
}

func TestDispatchEquivalence(t *testing.T) {
	m, err := provider.JSONSchema{}.Load([]byte(shapesSchema), provider.FormatYAML)
	require.NoError(t, err)

	for _, lang := range languages(t) {
		t.Run(lang, func(t *testing.T) {
			table := compileModel(t, lang, m, func(g *jsonmodel.Generator) { g.Dispatch("table") }).outcomes(shapesCorpus)
			chain := compileModel(t, lang, m, func(g *jsonmodel.Generator) { g.Dispatch("chain") }).outcomes(shapesCorpus)
			assert.Equal(t, table, chain)
			assert.True(t, table[1].Valid)
			assert.False(t, table[5].Valid)
		})
	}
}

// numbersModel covers the value rules every backend must agree on.
func numbersModel() *model.Model {
	return &model.Model{
		Name: "numbers",
		Root: model.Object(
			model.Opt("i", model.Int()),
			model.Opt("li", model.Int().Relax()),
			model.Opt("f", model.Float()),
			model.Opt("n", model.Int().Constrain(model.Le, 100)),
			model.Opt("u", model.Fmt(model.FormatURL)),
			model.Opt("r", model.Fmt(model.FormatURI)),
			model.Opt("e", model.Fmt(model.FormatEmail)),
			model.Opt("d", model.Fmt(model.FormatDateTime)),
			model.Opt("t", model.Fmt(model.FormatTime)),
			model.Opt("k", model.Enum(1, "a", nil)),
			model.Opt("s", model.Regex("^[a-z]+$", "i")),
			model.Opt("xs", model.Array(model.Number()).Constrain(model.Le, 2)),
		).Close(),
	}
}

func TestBackendEquivalence(t *testing.T) {
	langs := languages(t)
	if len(langs) < 2 {
		t.Skip("needs both go and node")
	}
	docs := []struct {
		doc   string
		valid bool
	}{
		{`{"i": 1}`, true},
		{`{"i": 1.0}`, true},
		{`{"i": 1e2}`, true},
		{`{"i": 1.5}`, false},
		{`{"i": 9223372036854775807}`, false},
		{`{"i": -9223372036854775808}`, true},
		{`{"li": 2.0}`, true},
		{`{"f": 1}`, true},
		{`{"f": 1.5}`, true},
		{`{"f": "1"}`, false},
		{`{"n": 100.0}`, true},
		{`{"n": 101}`, false},
		{`{"u": "https://example.com/x"}`, true},
		{`{"u": "mailto:a@b.c"}`, false},
		{`{"r": "mailto:a@b.c"}`, true},
		{`{"e": "a@b.co"}`, true},
		{`{"e": "nope"}`, false},
		{`{"d": "2024-02-29T10:00:00Z"}`, true},
		{`{"d": "2023-02-29T10:00:00Z"}`, false},
		{`{"t": "23:59:59"}`, true},
		{`{"k": 1.0}`, true},
		{`{"k": null}`, true},
		{`{"k": "b"}`, false},
		{`{"s": "ABC"}`, true},
		{`{"xs": [1, 2.5]}`, true},
		{`{"xs": [1, 2, 3]}`, false},
		{`{"zz": 1}`, false},
		{`[]`, false},
	}
	corpus := make([]string, len(docs))
	for i, d := range docs {
		corpus[i] = d.doc
	}

	results := map[string][]outcome{}
	for _, lang := range langs {
		results[lang] = compileModel(t, lang, numbersModel(), nil).outcomes(corpus)
	}
	for i, d := range docs {
		goRes, jsRes := results["go"][i], results["js"][i]
		assert.Equal(t, d.valid, goRes.Valid, "go verdict on %s", d.doc)
		assert.Equal(t, goRes, jsRes, "go and js disagree on %s", d.doc)
	}
}

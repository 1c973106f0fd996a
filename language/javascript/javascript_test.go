package javascript

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/broady/jsonmodel/ir"
	"github.com/broady/jsonmodel/language"
	"github.com/broady/jsonmodel/model"
)

func newJS(t *testing.T, mutate func(*language.Options)) *JavaScript {
	t.Helper()
	opts := language.DefaultOptions()
	if mutate != nil {
		mutate(&opts)
	}
	js, err := New(opts)
	require.NoError(t, err)
	return js
}

func TestNew_Relib(t *testing.T) {
	opts := language.DefaultOptions()
	js, err := New(opts)
	require.NoError(t, err)
	assert.Equal(t, "re", js.Options().Relib)

	opts.Relib = "regexp"
	_, err = New(opts)
	require.Error(t, err)
	assert.Equal(t, model.CodeUnsupportedConfig, model.CodeOf(err))
}

func TestRegistered(t *testing.T) {
	lang, err := language.New("js", language.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "js", lang.Name())
}

func TestExpressions(t *testing.T) {
	js := newJS(t, nil)
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"is null", string(js.IsA("val", ir.Null, false)), "val === null"},
		{"is int", string(js.IsA("val", ir.Int, true)), "jm_is_integer(val, true)"},
		{"value", string(js.Value("val", ir.String)), "val"},
		{"predef", string(js.Predef("val", model.FormatEmail, "path", false)), "jm_is_string(val) && jm_is_valid_email(val)"},
		{"prop", string(js.ObjPropVal("val", "a")), `val["a"]`},
		{"item", string(js.ArrItem("val", "0")), "val[0]"},
		{"path", string(js.PathVal("path", `"a"`, false)), `jm_path_ext(path, "a")`},
		{"lpath", string(js.PathLVar("lpath", "path")), "jm_select_path(lpath, path !== null)"},
		{"cmp eq", string(js.Cmp("jm_len(val)", model.Eq, "2")), "jm_len(val) === 2"},
		{"cmp ge", string(js.Cmp("val", model.Ge, "0")), "val >= 0"},
		{"eq const", string(js.EqConst("val", ir.StrConst("x"))), `val === "x"`},
		{"in cset", string(js.InCSet("_jm_cst_0", "val")), "_jm_cst_0.has(jm_key(val))"},
		{"get pmap", string(js.GetPMap("_jm_map_0", "prop")), "_jm_map_0.get(prop)"},
		{"is def", string(js.IsDef("fn")), "fn !== undefined"},
		{"or", string(js.Or("a", "b && c")), "a || (b && c)"},
		{"call", string(js.CallFun("json_model_1", "val", "path")), "json_model_1(val, path, rep)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}

func TestStatements(t *testing.T) {
	js := newJS(t, nil)

	got := strings.Join(js.ObjHasPropVal("pval", "val", "id", ir.Block{"return false;"}), "\n")
	assert.Equal(t, "if (jm_has_prop(val, \"id\")) {\n  pval = val[\"id\"];\n} else {\n  return false;\n}", got)

	got = strings.Join(js.ArrLoop("val", "i", "item", ir.Block{"use(item);"}), "\n")
	assert.Equal(t, "for (let i = 0; i < val.length; i++) {\n  const item = val[i];\n  use(item);\n}", got)

	got = strings.Join(js.IniRe("_jm_re_0", model.Pattern{Regex: `^\d$`, Flags: "si"}), "\n")
	assert.Equal(t, `_jm_re_0_re = new RegExp("^\\d$", "is");`, got)

	got = strings.Join(js.IniCMap("_jm_cmap_0", ir.ConstMap{
		{Const: ir.StrConst("a"), Fun: "json_model_2"},
		{Const: ir.IntConst(1), Fun: "json_model_3"},
	}), "\n")
	assert.Contains(t, got, `["a", json_model_2],`)
	assert.Contains(t, got, `[1, json_model_3],`)

	assert.Empty(t, newJS(t, func(o *language.Options) { o.WithReport = false }).Report("x", "path"))
}

func TestGenFullCode(t *testing.T) {
	js := newJS(t, nil)
	file := language.File{
		Funcs:   js.SubFun("json_model_1", js.Return(js.IsA("val", ir.String, false))),
		Entries: ir.PropMap{{Name: "", Fun: "json_model_1"}},
		Main:    true,
	}
	out := string(js.GenCode(js.GenFullCode(file), "delete", "people"))

	assert.Contains(t, out, "// module people")
	assert.Contains(t, out, `function delete_(val, name = "", rep = null) {`)
	assert.Contains(t, out, "module.exports = {delete_, delete__init, delete__free};")
	assert.Contains(t, out, "function jm_is_valid_uuid(s)")
	assert.Contains(t, out, "if (require.main === module) {")
	assert.NotContains(t, out, language.EntryToken)
	assert.NotContains(t, out, language.PackageToken)
}

func TestSanitizeIdentifier(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"check_model", "check_model"},
		{"check-model", "check_model"},
		{"1st", "_1st"},
		{"new", "new_"},
		{"", "_"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sanitizeIdentifier(tt.input), tt.input)
	}
}

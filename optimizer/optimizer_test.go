package optimizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/broady/jsonmodel/model"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"", Auto, false},
		{"auto", Auto, false},
		{"TABLE", Table, false},
		{"chain", Chain, false},
		{"hash", Auto, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, model.CodeUnsupportedConfig, model.CodeOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, must(ParseMode(got.String())))
		})
	}
}

func must(m Mode, err error) Mode {
	if err != nil {
		panic(err)
	}
	return m
}

func TestDispatch(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		n    int
		want Strategy
	}{
		{"auto below threshold", Options{}, 2, UseChain},
		{"auto at threshold", Options{}, 3, UseTable},
		{"auto custom threshold", Options{MinTableSize: 10}, 9, UseChain},
		{"forced table", Options{Mode: Table}, 1, UseTable},
		{"forced chain", Options{Mode: Chain}, 100, UseChain},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := New(&model.Model{Root: model.Any()}, tt.opts)
			assert.Equal(t, tt.want, o.Dispatch(tt.n))
			st := o.Stats()
			assert.Equal(t, 1, st.Tables+st.Chains)
		})
	}
}

func TestFingerprint(t *testing.T) {
	o := New(&model.Model{Root: model.Any()}, Options{})

	a := model.Object(model.Prop("id", model.Fmt(model.FormatUUID)), model.Opt("n", model.Int().Constrain(model.Ge, 0)))
	b := model.Object(model.Prop("id", model.Fmt(model.FormatUUID)), model.Opt("n", model.Int().Constrain(model.Ge, 0)))
	assert.Equal(t, o.Fingerprint(a), o.Fingerprint(b), "identical structure")
	assert.Equal(t, o.Fingerprint(a), o.Fingerprint(a), "memoized")

	b.Doc = "ignored"
	delete(o.fingerprints, b)
	assert.Equal(t, o.Fingerprint(a), o.Fingerprint(b), "doc is not structural")

	differ := []*model.Node{
		model.Object(model.Opt("id", model.Fmt(model.FormatUUID)), model.Opt("n", model.Int().Constrain(model.Ge, 0))),
		model.Object(model.Prop("id", model.Fmt(model.FormatUUID)), model.Opt("n", model.Int().Constrain(model.Gt, 0))),
		model.Object(model.Prop("id", model.Fmt(model.FormatDate)), model.Opt("n", model.Int().Constrain(model.Ge, 0))),
		model.Object(model.Prop("id", model.Fmt(model.FormatUUID)), model.Opt("n", model.Int().Constrain(model.Ge, 0))).Close(),
	}
	for i, d := range differ {
		assert.NotEqual(t, o.Fingerprint(a), o.Fingerprint(d), "variant %d", i)
	}

	assert.NotEqual(t, o.Fingerprint(model.Enum("1")), o.Fingerprint(model.Enum(1.0)), "typed constants")
	assert.Equal(t, o.Fingerprint(model.Enum(1)), o.Fingerprint(model.Enum(1.0)), "numbers by value")
	assert.NotEqual(t, o.Fingerprint(model.Ref("a")), o.Fingerprint(model.Ref("b")))
}

func TestFingerprintRecursive(t *testing.T) {
	m := &model.Model{
		Root: model.Ref("tree"),
		Defs: map[string]*model.Node{
			"tree": model.Object(model.Opt("children", model.Array(model.Ref("tree")))),
		},
	}
	o := New(m, Options{})
	assert.NotZero(t, o.Fingerprint(m.Defs["tree"]))
}

func TestLookupRegister(t *testing.T) {
	o := New(&model.Model{Root: model.Any()}, Options{})
	a := model.Array(model.String())

	_, ok, err := o.Lookup(a)
	require.NoError(t, err)
	assert.False(t, ok)

	o.Register(a, "json_model_2")
	name, ok, err := o.Lookup(model.Array(model.String()))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "json_model_2", name)
	assert.Equal(t, 1, o.Stats().DedupHits)

	o.Register(model.Array(model.String()), "json_model_3")
	name, _, _ = o.Lookup(a)
	assert.Equal(t, "json_model_2", name, "first registration wins")
}

func TestLookupCollision(t *testing.T) {
	o := New(&model.Model{Root: model.Any()}, Options{})
	o.hash = func(*model.Node) uint64 { return 42 }

	o.Register(model.Array(model.String()), "json_model_1")
	_, _, err := o.Lookup(model.Array(model.Int()))
	require.Error(t, err)
	assert.Equal(t, model.CodeInternal, model.CodeOf(err))
}

func TestDiscriminator(t *testing.T) {
	circle := model.Object(model.Prop("kind", model.Enum("circle")), model.Prop("r", model.Float()))
	square := model.Object(model.Prop("kind", model.Enum("square")), model.Prop("side", model.Float()))
	m := &model.Model{
		Root: model.Any(),
		Defs: map[string]*model.Node{"square": square},
	}

	tests := []struct {
		name     string
		alts     []*model.Node
		hint     string
		wantProp string
		wantOK   bool
	}{
		{"tagged", []*model.Node{circle, square}, "", "kind", true},
		{"through reference", []*model.Node{circle, model.Ref("square")}, "", "kind", true},
		{"hint", []*model.Node{circle, square}, "kind", "kind", true},
		{"bad hint", []*model.Node{circle, square}, "r", "", false},
		{"single alternative", []*model.Node{circle}, "", "", false},
		{"non object", []*model.Node{circle, model.String()}, "", "", false},
		{"shared tag", []*model.Node{circle, model.Object(model.Prop("kind", model.Enum("circle", "disc")))}, "", "", false},
		{"optional tag", []*model.Node{circle, model.Object(model.Opt("kind", model.Enum("square")))}, "", "", false},
		{"second candidate", []*model.Node{
			model.Object(model.Prop("a", model.String()), model.Prop("t", model.Enum(1))),
			model.Object(model.Prop("a", model.Int()), model.Prop("t", model.Enum(2, 3))),
		}, "", "t", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := New(m, Options{})
			got, ok := o.Discriminator(tt.alts, tt.hint)
			require.Equal(t, tt.wantOK, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.wantProp, got.Prop)
			assert.Len(t, got.Tags, len(tt.alts))
		})
	}
}

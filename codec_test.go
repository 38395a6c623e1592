package asmutable

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParseJSONKeepsOrder(t *testing.T) {
	t.Parallel()
	v, err := ParseJSON([]byte(`{"b":1,"a":{"c":[1,null,true]},"b":2}`))
	require.NoError(t, err)
	o := v.(*Object)
	require.Equal(t, []Key{"b", "a"}, o.OwnKeys())
	require.Equal(t, 2.0, get(t, o, "b"))
	c := get(t, get(t, o, "a").(Container), "c").(*Array)
	require.Equal(t, []interface{}{1.0, nil, true}, c.Values())

	out, err := json.Marshal(o)
	require.NoError(t, err)
	require.Equal(t, `{"b":2,"a":{"c":[1,null,true]}}`, string(out))
}

func TestParseJSONErrors(t *testing.T) {
	t.Parallel()
	for _, doc := range []string{`{} {}`, `{"a":`, `[1,2`, ``, `{"a" 1}`} {
		_, err := ParseJSON([]byte(doc))
		require.Error(t, err, doc)
	}
	_, err := ParseJSON([]byte(strings.Repeat("[", DefaultMaxDepth+2)))
	require.Error(t, err)
	v, err := ParseJSON([]byte(`"s"`))
	require.NoError(t, err)
	require.Equal(t, "s", v)
}

func TestMarshalJSON(t *testing.T) {
	t.Parallel()
	a := NewArray(1)
	a.Set("2", "x")
	a.Set("name", "skipped")
	o := NewObject().With("z", a).With("a", nil)
	require.True(t, o.DefineProperty("hidden", Descriptor{Value: 1}))
	out, err := json.Marshal(o)
	require.NoError(t, err)
	require.Equal(t, `{"z":[1,null,"x"],"a":null}`, string(out))

	f := wrap(t, o)
	f.Set("n", 1)
	require.True(t, f.Delete("z"))
	out, err = json.Marshal(f)
	require.NoError(t, err)
	require.Equal(t, `{"a":null,"n":1}`, string(out))

	cyclic := wrap(t, NewObject())
	cyclic.Set("self", cyclic)
	_, err = json.Marshal(cyclic)
	require.ErrorIs(t, err, ErrCycle)
}

func TestYAML(t *testing.T) {
	t.Parallel()
	v, err := ParseYAML([]byte("b: 1\na:\n  - x\n  - y\nbase: &base {k: v}\nother: *base\n"))
	require.NoError(t, err)
	o := v.(*Object)
	require.Equal(t, []Key{"b", "a", "base", "other"}, o.OwnKeys())
	require.Equal(t, 1, get(t, o, "b"))
	require.Equal(t, "v", get(t, get(t, o, "other").(Container), "k"))

	f := wrap(t, o)
	f.Set("c", true)
	out, err := yaml.Marshal(f)
	require.NoError(t, err)
	text := string(out)
	require.Less(t, strings.Index(text, "b:"), strings.Index(text, "a:"))
	require.Less(t, strings.Index(text, "other:"), strings.Index(text, "c: true"))

	back, err := ParseYAML(out)
	require.NoError(t, err)
	require.Equal(t, plainOf(t, f), plainOf(t, back))
	require.Equal(t, []Key{"b", "a", "base", "other", "c"}, back.(Container).OwnKeys())

	empty, err := ParseYAML(nil)
	require.NoError(t, err)
	require.Nil(t, empty)
	_, err = ParseYAML([]byte("a: [1"))
	require.Error(t, err)
	_, err = ParseYAML([]byte("? [a, b]\n: c\n"))
	require.Error(t, err)
}

func TestParseYAMLBoundsAliasExpansion(t *testing.T) {
	t.Parallel()
	var doc strings.Builder
	doc.WriteString("l0: &l0 [x, x, x, x, x, x, x, x, x, x]\n")
	for i := 1; i < 7; i++ {
		refs := strings.TrimSuffix(strings.Repeat(fmt.Sprintf("*l%d, ", i-1), 10), ", ")
		fmt.Fprintf(&doc, "l%d: &l%d [%s]\n", i, i, refs)
	}
	_, err := ParseYAML([]byte(doc.String()))
	require.ErrorIs(t, err, ErrAliasExpansion)

	v, err := ParseYAML([]byte("base: &b [1, 2]\nuses: [*b, *b, *b]\n"))
	require.NoError(t, err)
	uses := get(t, v.(Container), "uses").(*Array)
	require.Equal(t, 3, uses.Len())
	first, second := get(t, uses, "0"), get(t, uses, "1")
	require.NotSame(t, first, second, "each alias expands to its own copy")
}

func TestDigest(t *testing.T) {
	t.Parallel()
	x := nested()
	y := nested()
	dx, err := Digest(x)
	require.NoError(t, err)
	dy, err := Digest(y)
	require.NoError(t, err)
	require.Equal(t, dx, dy, "equal content, different references")

	f := wrap(t, x)
	df, err := Digest(f)
	require.NoError(t, err)
	require.Equal(t, dx, df)

	f.Set("a", 0)
	df, err = Digest(f)
	require.NoError(t, err)
	require.NotEqual(t, dx, df)

	reordered := NewObject().With("b", get(t, x, "b")).With("a", get(t, x, "a"))
	dr, err := Digest(reordered)
	require.NoError(t, err)
	require.NotEqual(t, dx, dr)
}

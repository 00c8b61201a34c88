package jsondoc_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/source-licenser/pkg/jsondoc"
)

func mustParse(t *testing.T, src string) any {
	t.Helper()

	value, err := jsondoc.Parse([]byte(src))
	require.NoError(t, err)

	return value
}

func mustObject(t *testing.T, src string) *jsondoc.Object {
	t.Helper()

	obj, ok := mustParse(t, src).(*jsondoc.Object)
	require.True(t, ok, "expected a JSON object")

	return obj
}

func mustMarshal(t *testing.T, value any) string {
	t.Helper()

	out, err := jsondoc.Marshal(value)
	require.NoError(t, err)

	return string(out)
}

func TestParse_PreservesKeyOrder(t *testing.T) {
	t.Parallel()

	obj := mustObject(t, `{"z": 1, "a": {"y": true, "b": null}, "m": [1, "two"]}`)

	assert.Equal(t, []string{"z", "a", "m"}, obj.Keys())

	nested, ok := obj.Get("a")
	require.True(t, ok)
	assert.Equal(t, []string{"y", "b"}, nested.(*jsondoc.Object).Keys())
}

func TestParse_DuplicateKeysKeepFirstPositionLastValue(t *testing.T) {
	t.Parallel()

	obj := mustObject(t, `{"a": 1, "b": 2, "a": 3}`)

	assert.Equal(t, []string{"a", "b"}, obj.Keys())

	value, _ := obj.Get("a")
	assert.Equal(t, json.Number("3"), value)
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	for _, src := range []string{``, `{`, `{"a": }`, `[1, 2`, `{} {}`, `nope`} {
		_, err := jsondoc.Parse([]byte(src))
		assert.Error(t, err, "source %q", src)
	}

	_, err := jsondoc.Parse([]byte(`{} []`))
	require.ErrorIs(t, err, jsondoc.ErrTrailingData)
}

func TestMarshal_TwoSpaceIndent(t *testing.T) {
	t.Parallel()

	value := mustParse(t, `{"name":"pkg","list":[1,{"a":false}],"empty":{},"none":[],"nil":null}`)

	want := `{
  "name": "pkg",
  "list": [
    1,
    {
      "a": false
    }
  ],
  "empty": {},
  "none": [],
  "nil": null
}`

	assert.Equal(t, want, mustMarshal(t, value))
}

func TestMarshal_KeepsNumberLiteralsAndDoesNotEscapeHTML(t *testing.T) {
	t.Parallel()

	value := mustParse(t, `{"big": 12345678901234567890, "f": 1.50, "s": "<a> & \"b\"\n"}`)

	want := `{
  "big": 12345678901234567890,
  "f": 1.50,
  "s": "<a> & \"b\"\n"
}`

	assert.Equal(t, want, mustMarshal(t, value))
}

func TestMarshal_UnsupportedType(t *testing.T) {
	t.Parallel()

	_, err := jsondoc.Marshal(map[string]any{"a": 1})
	require.ErrorIs(t, err, jsondoc.ErrUnsupportedType)
}

func TestObject_SetAndDelete(t *testing.T) {
	t.Parallel()

	obj := jsondoc.NewObject()
	obj.Set("a", "1")
	obj.Set("b", "2")
	obj.Set("a", "3")
	obj.Delete("b")
	obj.Delete("missing")

	assert.Equal(t, []string{"a"}, obj.Keys())
	assert.Equal(t, 1, obj.Len())
}

func TestClone_IsDeep(t *testing.T) {
	t.Parallel()

	orig := mustObject(t, `{"a": {"b": [1]}}`)
	clone := jsondoc.Clone(orig).(*jsondoc.Object)

	inner, _ := clone.Get("a")
	inner.(*jsondoc.Object).Set("c", true)

	assert.Equal(t, "{\n  \"a\": {\n    \"b\": [\n      1\n    ]\n  }\n}", mustMarshal(t, orig))
}

func TestFromValue_SortsPlainMapKeys(t *testing.T) {
	t.Parallel()

	value, err := jsondoc.FromValue(map[string]any{
		"b": map[string]any{"y": 1, "x": 2.5},
		"a": []any{"s", true, nil, int64(7)},
	})
	require.NoError(t, err)

	assert.Equal(t, `{
  "a": [
    "s",
    true,
    null,
    7
  ],
  "b": {
    "x": 2.5,
    "y": 1
  }
}`, mustMarshal(t, value))

	_, err = jsondoc.FromValue(struct{}{})
	require.ErrorIs(t, err, jsondoc.ErrUnsupportedType)
}

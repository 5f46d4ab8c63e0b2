package provider

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractValue(t *testing.T) {
	tests := []struct {
		name string
		in   interface{}
		want float64
		ok   bool
	}{
		{name: "nil", in: nil, ok: false},
		{name: "json number", in: json.Number("3"), want: 3, ok: true},
		{name: "float", in: 2.5, want: 2.5, ok: true},
		{name: "NaN", in: math.NaN(), ok: false},
		{name: "infinity", in: math.Inf(1), ok: false},
		{name: "numeric string", in: " 7 ", want: 7, ok: true},
		{name: "empty string", in: "", ok: false},
		{name: "garbage string", in: "abc", ok: false},
		{name: "localized object", in: map[string]interface{}{"default": json.Number("4")}, want: 4, ok: true},
		{name: "object without default", in: map[string]interface{}{"x": 1}, ok: false},
		{name: "bool", in: true, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractValue(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestNodeNavigation(t *testing.T) {
	doc := MustParse(`{"a":{"b":[{"c":1},{"c":"x"}]},"n":null,"big":8478402}`)

	assert.True(t, doc.IsObject())
	assert.True(t, doc.Path("a", "b").IsArray())
	assert.Len(t, doc.Path("a", "b").Items(), 2)
	assert.True(t, doc.Path("a", "missing", "deeper").IsAbsent())
	assert.True(t, doc.Get("n").IsAbsent())
	assert.Nil(t, doc.Get("a").Items())
	assert.Equal(t, []string{"a", "big", "n"}, doc.Keys())

	id, ok := doc.Get("big").Int()
	require.True(t, ok)
	assert.Equal(t, int64(8478402), id)

	_, ok = doc.Path("a", "b").Items()[1].Get("c").Int()
	assert.False(t, ok)
}

func TestNodeIntRejectsFractions(t *testing.T) {
	_, ok := MustParse(`1.5`).Int()
	assert.False(t, ok)
	v, ok := MustParse(`2.0`).Int()
	assert.True(t, ok)
	assert.Equal(t, int64(2), v)
}

func TestNodeString(t *testing.T) {
	s, ok := MustParse(`"12:34"`).String()
	assert.True(t, ok)
	assert.Equal(t, "12:34", s)

	s, ok = MustParse(`42`).String()
	assert.True(t, ok)
	assert.Equal(t, "42", s)

	_, ok = MustParse(`""`).String()
	assert.False(t, ok)
	_, ok = MustParse(`{}`).String()
	assert.False(t, ok)
}

func TestFirstOf(t *testing.T) {
	name := FirstOf(
		StringAt("name", "default"),
		StringAt("fullName"),
		StringAt("playerName"),
	)

	v, ok := name(MustParse(`{"fullName":"Aleksander Barkov","playerName":"A. Barkov"}`))
	require.True(t, ok)
	assert.Equal(t, "Aleksander Barkov", v)

	v, ok = name(MustParse(`{"name":{"default":"M. Granlund"},"fullName":"Mikael Granlund"}`))
	require.True(t, ok)
	assert.Equal(t, "M. Granlund", v)

	_, ok = name(MustParse(`{"name":{"fi":"x"}}`))
	assert.False(t, ok)
}

func TestOptHelpers(t *testing.T) {
	doc := MustParse(`{"goals":2,"toi":"15:01"}`)
	assert.Equal(t, IntPtr(2), OptInt(IntAt("goals"), doc))
	assert.Nil(t, OptInt(IntAt("assists"), doc))
	assert.Equal(t, StringPtr("15:01"), OptString(StringAt("toi"), doc))
	assert.Nil(t, OptString(StringAt("decision"), doc))
}

func TestParseRejectsInvalidJSON(t *testing.T) {
	_, err := Parse([]byte(`{`))
	require.Error(t, err)
}

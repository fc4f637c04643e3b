package namefilter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"empty", "", nil},
		{"single", "abc", []string{"abc"}},
		{"two", "a;b", []string{"a", "b"}},
		{"escaped separator", `a\;b;c`, []string{"a;b", "c"}},
		{"other escape kept", `\.txt$;\d+`, []string{`\.txt$`, `\d+`}},
		{"escaped backslash", `a\\;b`, []string{`a\\`, "b"}},
		{"empty segments", ";a;;", []string{"", "a", "", ""}},
		{"only separator", ";", []string{"", ""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Split(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSplitMissingEscape(t *testing.T) {
	_, err := Split(`abc\`)
	assert.ErrorIs(t, err, ErrMissingEscape)
	_, err = Split(`a;\`)
	assert.ErrorIs(t, err, ErrMissingEscape)
}

func TestJoinRoundTrip(t *testing.T) {
	for _, expr := range []string{"a", `a\;b;c`, `\.txt$;-^tmp/`, ";;", `x\\;y`} {
		patterns, err := Split(expr)
		require.NoError(t, err)
		again, err := Split(Join(patterns))
		require.NoError(t, err)
		assert.Equal(t, patterns, again, expr)
	}
}

func TestFilterMatch(t *testing.T) {
	f, err := Parse(`+\.txt$;+\.md$;-^tmp/`)
	require.NoError(t, err)

	assert.True(t, f.Match("notes.txt"))
	assert.True(t, f.Match("docs/readme.md"))
	assert.False(t, f.Match("image.png"))
	assert.False(t, f.Match("tmp/notes.txt"))

	assert.True(t, f.IsIncluded("tmp/notes.txt"))
	assert.True(t, f.IsExcluded("tmp/notes.txt"))
}

func TestFilterOnlyExclusions(t *testing.T) {
	f := MustParse(`-\.o$;-\.a$`)
	assert.True(t, f.Match("main.c"))
	assert.False(t, f.Match("main.o"))
	assert.False(t, f.Match("libx.a"))
}

func TestFilterEmpty(t *testing.T) {
	f, err := Parse("")
	require.NoError(t, err)
	assert.True(t, f.Match("anything"))

	var nilFilter *Filter
	assert.True(t, nilFilter.Match("anything"))

	f = MustParse(";-;+")
	assert.True(t, f.Match("anything"))
}

func TestFilterEscapedSeparator(t *testing.T) {
	f := MustParse(`a\;b`)
	assert.Equal(t, []string{"a;b"}, f.Patterns())
	assert.True(t, f.Match("xa;by"))
	assert.False(t, f.Match("ab"))
	assert.Equal(t, `a\;b`, f.String())
}

func TestFilterIgnoreCase(t *testing.T) {
	f := MustParse(`\.TXT$`, WithIgnoreCase())
	assert.True(t, f.Match("a.txt"))
	assert.False(t, MustParse(`\.TXT$`).Match("a.txt"))
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(`\.go$;-_test\.go$`))
	assert.Error(t, Validate(`+([a-z`))
	assert.ErrorIs(t, Validate(`abc\`), ErrMissingEscape)
	assert.Panics(t, func() { MustParse("(") })
}

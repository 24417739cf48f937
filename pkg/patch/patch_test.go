package patch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyTo(t *testing.T) {
	tests := []struct {
		name  string
		patch *Patch
		lines []string
		want  []string
	}{
		{
			name:  "replace_middle_range",
			patch: NewReplacement(2, 4, []string{"X", "Y", "Z"}),
			lines: []string{"a", "b", "c", "d", "e", "f"},
			want:  []string{"a", "b", "X", "Y", "Z", "e", "f"},
		},
		{
			name:  "replace_single_line",
			patch: NewReplacement(0, 1, []string{"bar\n"}),
			lines: []string{"foo\n", "baz\n"},
			want:  []string{"bar\n", "baz\n"},
		},
		{
			name:  "delete_range",
			patch: NewReplacement(1, 3, []string{}),
			lines: []string{"a", "b", "c", "d"},
			want:  []string{"a", "d"},
		},
		{
			name:  "insert_extra_lines",
			patch: NewReplacement(1, 2, []string{"x", "y", "z"}),
			lines: []string{"a", "b", "c"},
			want:  []string{"a", "x", "y", "z", "c"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines := tt.lines
			require.NoError(t, tt.patch.ApplyTo(&lines))
			assert.Equal(t, tt.want, lines)
		})
	}
}

func TestApplyTo_FlaggingPatchFails(t *testing.T) {
	lines := []string{"a", "b"}
	err := New(0).ApplyTo(&lines)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoSuggestion)
	assert.Equal(t, []string{"a", "b"}, lines, "lines must be untouched")
}

func TestApplyTo_RangeOutOfBoundsFails(t *testing.T) {
	tests := []struct {
		name  string
		patch *Patch
	}{
		{name: "end_past_file", patch: NewReplacement(1, 3, []string{"x"})},
		{name: "negative_start", patch: NewReplacement(-1, 1, []string{"x"})},
		{name: "inverted_range", patch: NewReplacement(2, 1, []string{"x"})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines := []string{"a", "b"}
			err := tt.patch.ApplyTo(&lines)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrRangeOutOfBounds)
			assert.Equal(t, []string{"a", "b"}, lines, "lines must be untouched")
		})
	}
}

func TestRenderRange(t *testing.T) {
	p := NewReplacement(2, 4, []string{"X"})
	p.Path = "x.php"
	assert.Equal(t, "x.php:2-3", p.RenderRange())

	one := New(5)
	one.Path = "y.php"
	assert.Equal(t, "y.php:5", one.RenderRange())

	unstamped := New(1)
	assert.Equal(t, "<unknown>:1", unstamped.RenderRange())
}

func TestStartPosition(t *testing.T) {
	p := NewRange(2, 4)
	p.Path = "x.php"
	pos := p.StartPosition()
	assert.Equal(t, "x.php", pos.Path)
	assert.Equal(t, 2, pos.LineNumber)
}

func TestDefaults(t *testing.T) {
	p := New(3)
	assert.Equal(t, 4, p.EndLineNumber, "one-line patch by default")
	assert.False(t, p.IsReplacement())

	r := NewReplacement(0, 1, []string{})
	assert.True(t, r.IsReplacement(), "empty replacement still suggests content")
}

func TestSplitLines(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{name: "empty", text: "", want: []string{}},
		{name: "terminated", text: "a\nb\n", want: []string{"a\n", "b\n"}},
		{name: "unterminated_tail", text: "a\nb", want: []string{"a\n", "b"}},
		{name: "single_newline", text: "\n", want: []string{"\n"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitLines(tt.text))
		})
	}
}

package query

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codemod-go/codemod/pkg/patch"
	"github.com/codemod-go/codemod/pkg/pathfilter"
	"github.com/codemod-go/codemod/pkg/position"
	"github.com/codemod-go/codemod/pkg/suggest"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func fooToBar(t *testing.T) suggest.Suggestor {
	t.Helper()
	bar := "bar"
	s, err := suggest.Regex("foo", &bar, false)
	require.NoError(t, err)
	return s
}

func collectPatches(t *testing.T, q *Query) []*patch.Patch {
	t.Helper()
	var patches []*patch.Patch
	for p, err := range q.GeneratePatches(context.Background()) {
		require.NoError(t, err)
		patches = append(patches, p)
	}
	return patches
}

func txtQuery(t *testing.T, dir string, opts ...Option) *Query {
	t.Helper()
	opts = append([]Option{
		WithRoot(dir),
		WithPathFilter(pathfilter.New([]string{"txt"}, nil)),
	}, opts...)
	return New(fooToBar(t), opts...)
}

func TestGeneratePatches_PathLexicographicOrder(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.txt", "foo\n")
	writeFile(t, dir, "a.txt", "foo\n")

	patches := collectPatches(t, txtQuery(t, dir))
	require.Len(t, patches, 2)
	assert.Equal(t, filepath.Join(dir, "a.txt"), patches[0].Path)
	assert.Equal(t, filepath.Join(dir, "b.txt"), patches[1].Path)
	for _, p := range patches {
		assert.Equal(t, []string{"bar\n"}, p.NewLines)
		assert.Equal(t, 0, p.StartLineNumber)
	}
}

func TestGeneratePatches_NeverYieldsNoOps(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "bar\nfoo\nbaz\n")

	patches := collectPatches(t, txtQuery(t, dir))
	require.Len(t, patches, 1, "only the genuinely changed line surfaces")
	assert.Equal(t, 1, patches[0].StartLineNumber)
	assert.Equal(t, []string{"bar\n"}, patches[0].NewLines)
}

func TestGeneratePatches_FlaggingPatchesAlwaysSurface(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "foo\nbar\n")

	s, err := suggest.Regex("foo", nil, false)
	require.NoError(t, err)
	q := New(s, WithRoot(dir), WithPathFilter(pathfilter.New([]string{"txt"}, nil)))

	patches := collectPatches(t, q)
	require.Len(t, patches, 1)
	assert.False(t, patches[0].IsReplacement())
	assert.Equal(t, 0, patches[0].StartLineNumber)
}

func TestGeneratePatches_StartWindowSkipsEarlierFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "foo\n")
	writeFile(t, dir, "b.txt", "foo\nfoo\n")
	writeFile(t, dir, "c.txt", "foo\n")

	start := filepath.Join(dir, "b.txt") + ":0"
	patches := collectPatches(t, txtQuery(t, dir, WithStart(start)))

	require.Len(t, patches, 3)
	assert.Equal(t, filepath.Join(dir, "b.txt"), patches[0].Path)
	assert.Equal(t, 0, patches[0].StartLineNumber)
	assert.Equal(t, filepath.Join(dir, "b.txt"), patches[1].Path)
	assert.Equal(t, 1, patches[1].StartLineNumber)
	assert.Equal(t, filepath.Join(dir, "c.txt"), patches[2].Path)
}

func TestGeneratePatches_StartWindowSkipsEarlierLines(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "foo\nfoo\nfoo\n")

	start := filepath.Join(dir, "a.txt") + ":2"
	patches := collectPatches(t, txtQuery(t, dir, WithStart(start)))

	require.Len(t, patches, 1)
	assert.Equal(t, 2, patches[0].StartLineNumber)
}

func TestGeneratePatches_EndWindowStopsTraversal(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "foo\n")
	writeFile(t, dir, "b.txt", "foo\nfoo\nfoo\n")
	writeFile(t, dir, "c.txt", "foo\n")

	end := filepath.Join(dir, "b.txt") + ":1"
	patches := collectPatches(t, txtQuery(t, dir, WithEnd(end)))

	// The end position marks the first line not to include. b.txt's first
	// candidate ends at line 1, which reaches the cutoff, so only a.txt
	// surfaces and c.txt is never visited.
	require.Len(t, patches, 1)
	assert.Equal(t, filepath.Join(dir, "a.txt"), patches[0].Path)
}

func TestGeneratePatches_ObservesEditsBetweenYields(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.txt", "foo\nfoo\n")

	q := txtQuery(t, dir)
	var seen []*patch.Patch
	for p, err := range q.GeneratePatches(context.Background()) {
		require.NoError(t, err)
		seen = append(seen, p)

		// Accept the patch the way the review loop would: apply and save.
		lines, err := ReadLines(p.Path)
		require.NoError(t, err)
		require.NoError(t, p.ApplyTo(&lines))
		require.NoError(t, os.WriteFile(p.Path, []byte(joinLines(lines)), 0o644))
	}

	require.Len(t, seen, 2)
	assert.Equal(t, 0, seen[0].StartLineNumber)
	assert.Equal(t, 1, seen[1].StartLineNumber)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "bar\nbar\n", string(content))
}

func TestGeneratePatches_SkipsUnreadableFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "foo\n")
	writeFile(t, dir, "b.txt", "foo\n")

	// Simulate b.txt becoming unreadable mid-walk.
	q := txtQuery(t, dir, WithFileReader(func(path string) ([]string, error) {
		if filepath.Base(path) == "b.txt" {
			return nil, os.ErrPermission
		}
		return ReadLines(path)
	}))

	patches := collectPatches(t, q)
	require.Len(t, patches, 1)
	assert.Equal(t, filepath.Join(dir, "a.txt"), patches[0].Path)
}

func TestGeneratePatches_SkipsPathsThatDontLookLikeCode(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "foo\n")
	writeFile(t, dir, "a.txt~", "foo\n")
	writeFile(t, dir, ".hidden/b.txt", "foo\n")
	writeFile(t, dir, "tags", "foo\n")

	q := txtQuery(t, dir, WithPathFilter(pathfilter.Any(nil)))
	patches := collectPatches(t, q)
	require.Len(t, patches, 1)
	assert.Equal(t, filepath.Join(dir, "a.txt"), patches[0].Path)
}

func TestGeneratePatches_Extensionless(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "BUILD", "foo\n")
	writeFile(t, dir, "a.txt", "foo\n")

	onlyTxt := txtQuery(t, dir)
	assert.Len(t, collectPatches(t, onlyTxt), 1)

	withBare := txtQuery(t, dir, WithExtensionless(true))
	patches := collectPatches(t, withBare)
	require.Len(t, patches, 2)
	assert.Equal(t, filepath.Join(dir, "BUILD"), patches[0].Path)
}

func TestStartPosition_ParsesAndMemoizes(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "foo\n")

	q := txtQuery(t, dir, WithStart("a.txt:3"))
	pos, err := q.StartPosition(context.Background())
	require.NoError(t, err)
	require.NotNil(t, pos)
	assert.Equal(t, position.New("a.txt", 3), *pos)

	again, err := q.StartPosition(context.Background())
	require.NoError(t, err)
	assert.Same(t, pos, again, "resolution result is memoized")
}

func TestStartPosition_AbsentIsNil(t *testing.T) {
	q := txtQuery(t, t.TempDir())
	pos, err := q.StartPosition(context.Background())
	require.NoError(t, err)
	assert.Nil(t, pos)
}

func TestStartPosition_MalformedFails(t *testing.T) {
	q := txtQuery(t, t.TempDir(), WithStart("nonsense"))
	_, err := q.StartPosition(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, position.ErrFormat)
}

func joinLines(lines []string) string {
	out := ""
	for _, l := range lines {
		out += l
	}
	return out
}

package store

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bent101/wordle-mcts/guess"
	"github.com/bent101/wordle-mcts/tree"
)

func sample() (tree.StateSpace, guess.Guess) {
	root := guess.FromString("111")
	s := tree.New()
	s.Put(root, "", &tree.Node{Guess: root, CumulativeScore: 9, NumSimulations: 3})
	s.Put(root, "abc", &tree.Node{Guess: guess.FromString("100"), CumulativeScore: 5, NumSimulations: 1, Turn: 1})
	s.Put(root, "bca", &tree.Node{Guess: guess.FromString("011"), CumulativeScore: 4, NumSimulations: 2, Turn: 1})
	return s, root
}

func assertSameSpace(t *testing.T, want, got tree.StateSpace) {
	t.Helper()
	require.Len(t, got, len(want))
	for k, n := range want {
		m, ok := got[k]
		require.True(t, ok)
		assert.Equal(t, n.Guess.String(), m.Guess.String())
		assert.Equal(t, n.CumulativeScore, m.CumulativeScore)
		assert.Equal(t, n.NumSimulations, m.NumSimulations)
		assert.Equal(t, n.Turn, m.Turn)
	}
}

func TestSaveLoadTarZstd(t *testing.T) {
	dir := t.TempDir()
	st := New(dir, TarZstd{})
	space, _ := sample()

	require.NoError(t, st.Save(context.Background(), "abc", space))

	_, err := os.Stat(filepath.Join(dir, "abc.csv"))
	assert.True(t, os.IsNotExist(err), "uncompressed file should be removed")
	_, err = os.Stat(filepath.Join(dir, "abc.zst"))
	require.NoError(t, err)

	assertSameSpace(t, space, st.Load(context.Background(), "abc"))
}

func TestSaveLoadNop(t *testing.T) {
	dir := t.TempDir()
	st := New(dir, nil)
	space, _ := sample()

	require.NoError(t, st.Save(context.Background(), "bca", space))
	_, err := os.Stat(filepath.Join(dir, "bca.csv"))
	require.NoError(t, err)

	assertSameSpace(t, space, st.Load(context.Background(), "bca"))
}

func TestSaveOverwritesLongerFile(t *testing.T) {
	dir := t.TempDir()
	st := New(dir, Nop{})
	space, root := sample()
	require.NoError(t, st.Save(context.Background(), "abc", space))

	small := tree.New()
	small.Put(root, "", &tree.Node{Guess: root, NumSimulations: 1})
	require.NoError(t, st.Save(context.Background(), "abc", small))

	assertSameSpace(t, small, st.Load(context.Background(), "abc"))
}

func TestLoadMissing(t *testing.T) {
	for _, a := range []Archiver{Nop{}, TarZstd{}, ExecTar{}} {
		st := New(t.TempDir(), a)
		assert.Empty(t, st.Load(context.Background(), "nothing"))
	}
}

// fakeTar writes a shell script standing in for tar that records its
// arguments and copies the state space file in and out of the "archive".
func fakeTar(t *testing.T, fail bool) (bin, argv string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("needs a POSIX shell")
	}
	dir := t.TempDir()
	bin = filepath.Join(dir, "tar")
	argv = filepath.Join(dir, "argv")
	script := `#!/bin/sh
echo "$@" >> "` + argv + `"
case "$1" in
-c) cp "$7/$8" "$5" ;;
-x) cp "$5" "${5%.zst}.csv" ;;
esac
`
	if fail {
		script = "#!/bin/sh\necho broken >&2\nexit 2\n"
	}
	require.NoError(t, os.WriteFile(bin, []byte(script), 0o755))
	return bin, argv
}

func TestSaveLoadExecTar(t *testing.T) {
	bin, argv := fakeTar(t, false)
	dir := t.TempDir()
	st := New(dir, ExecTar{Bin: bin})
	want, _ := sample()

	require.NoError(t, st.Save(context.Background(), "abc", want))
	_, err := os.Stat(filepath.Join(dir, "abc.csv"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(dir, "abc.zst"))
	require.NoError(t, err)

	assertSameSpace(t, want, st.Load(context.Background(), "abc"))

	data, err := os.ReadFile(argv)
	require.NoError(t, err)
	archive := filepath.Join(dir, "abc.zst")
	assert.Equal(t, []string{
		"-c -I zstd -f " + archive + " -C " + dir + " abc.csv",
		"-x -I zstd -f " + archive + " -C " + dir,
	}, strings.Split(strings.TrimSpace(string(data)), "\n"))
}

func TestExecTarFailureKeepsCSV(t *testing.T) {
	bin, _ := fakeTar(t, true)
	dir := t.TempDir()
	st := New(dir, ExecTar{Bin: bin})
	want, _ := sample()

	err := st.Save(context.Background(), "abc", want)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
	_, err = os.Stat(filepath.Join(dir, "abc.csv"))
	assert.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "abc.zst"), []byte("x"), 0o644))
	assert.Error(t, ExecTar{Bin: bin}.Decompress(dir, "abc"))
}

func TestLoadCorruptArchive(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "abc.zst"), []byte("not zstd"), 0o644))

	st := New(dir, TarZstd{})
	assert.Empty(t, st.Load(context.Background(), "abc"))
}

func TestLoadSkipsCorruptLine(t *testing.T) {
	dir := t.TempDir()
	content := "111,,111,9,3,0\n111,abc,100,5,NaNx,1\n111,bca,011,4,2,1\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "abc.csv"), []byte(content), 0o644))
	require.NoError(t, TarZstd{}.Compress(dir, "abc"))

	space := New(dir, TarZstd{}).Load(context.Background(), "abc")
	require.Len(t, space, 2)
	root := guess.FromString("111")
	_, ok := space.Get(root, "abc")
	assert.False(t, ok)
	n, ok := space.Get(root, "bca")
	require.True(t, ok)
	assert.Equal(t, 2, n.NumSimulations)
}

func TestSaveFailsOnUnwritableDir(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	space, _ := sample()
	err := New(filepath.Join(blocker, "state"), TarZstd{}).Save(context.Background(), "abc", space)
	assert.Error(t, err)
}

func TestExportRoot(t *testing.T) {
	space, root := sample()
	dict := []string{"abc", "bca", "cab"}

	rows := RootStats(space, root, dict)
	require.Len(t, rows, 2)
	assert.Equal(t, "abc", rows[0].Word)
	assert.Equal(t, 5.0, rows[0].Mean)
	assert.Equal(t, int32(2), rows[1].Remaining)

	out := filepath.Join(t.TempDir(), "out", "root.parquet")
	require.NoError(t, ExportRoot(out, rows))

	back, err := parquet.ReadFile[RootStat](out)
	require.NoError(t, err)
	assert.Equal(t, rows, back)
}

package filesystem

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"simblaster/pkg/contract"
)

func assertNoTmp(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasPrefix(e.Name(), ".tmp-"), "临时文件未清理: %s", e.Name())
	}
}

// 目标已存在时应替换为新内容。
func TestWriteReplaceExisting(t *testing.T) {
	dir := t.TempDir()
	w, err := New(&Options{OutputDir: dir})
	require.NoError(t, err)
	require.NoError(t, w.Write(context.Background(), "submit.log", bytes.NewBufferString("v1")))
	require.NoError(t, w.Write(context.Background(), "submit.log", bytes.NewBufferString("v2")))

	b, err := os.ReadFile(filepath.Join(dir, "submit.log"))
	require.NoError(t, err)
	assert.Equal(t, "v2", string(b))
	assertNoTmp(t, dir)
}

func TestWriteSubdirAndCreateRoot(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "new", "root")
	w, err := New(&Options{OutputDir: dir})
	require.NoError(t, err)
	require.NoError(t, w.Write(context.Background(), "sub/out.txt", strings.NewReader("v")))
	_, err = os.Stat(filepath.Join(dir, "sub", "out.txt"))
	assert.NoError(t, err)

	p, err := w.Path("sub/out.txt")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "sub", "out.txt"), p)
}

func TestWriteNoClobber(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sim_settings.yaml"), []byte("old"), 0o644))
	w, err := New(&Options{OutputDir: dir, NoClobber: true})
	require.NoError(t, err)
	err = w.Write(context.Background(), "sim_settings.yaml", strings.NewReader("new"))
	assert.ErrorIs(t, err, os.ErrExist)
	b, _ := os.ReadFile(filepath.Join(dir, "sim_settings.yaml"))
	assert.Equal(t, "old", string(b))
}

func TestWritePathInvalid(t *testing.T) {
	w, err := New(&Options{OutputDir: t.TempDir()})
	require.NoError(t, err)
	for _, id := range []string{"../bad", "..", ".", "", "/abs/x"} {
		err := w.Write(context.Background(), contract.ArtifactID(id), strings.NewReader("x"))
		assert.ErrorIs(t, err, contract.ErrPathInvalid, id)
	}
}

func TestWriteCtxCancel(t *testing.T) {
	w, err := New(&Options{OutputDir: t.TempDir()})
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, w.Write(ctx, "a.txt", strings.NewReader("data")), context.Canceled)
}

type errReader struct{}

func (errReader) Read(p []byte) (int, error) { return 0, errors.New("boom") }

// 读取失败时不留下目标文件与临时文件。
func TestWriteReaderError(t *testing.T) {
	dir := t.TempDir()
	w, err := New(&Options{OutputDir: dir})
	require.NoError(t, err)
	err = w.Write(context.Background(), "x.log", errReader{})
	require.Error(t, err)
	_, statErr := os.Stat(filepath.Join(dir, "x.log"))
	assert.True(t, os.IsNotExist(statErr))
	assertNoTmp(t, dir)
}

func TestNewInvalid(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, contract.ErrInvalidInput)
	_, err = New(&Options{})
	assert.ErrorIs(t, err, contract.ErrInvalidInput)
}

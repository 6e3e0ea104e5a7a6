package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"simblaster/pkg/contract"
)

func touch(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, n := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), nil, 0o644))
	}
}

func setup(t *testing.T) (*FileSystem, string, string) {
	t.Helper()
	root := t.TempDir()
	mc := filepath.Join(root, "mcgen")
	g4 := filepath.Join(root, "geant")
	require.NoError(t, os.Mkdir(mc, 0o755))
	require.NoError(t, os.Mkdir(g4, 0o755))
	s, err := New(&Options{MCGenDir: mc, GeantDir: g4})
	require.NoError(t, err)
	return s, mc, g4
}

func TestScan(t *testing.T) {
	s, mc, g4 := setup(t)
	touch(t, mc,
		"pluto_pi0_gg_0001.root",
		"pluto_pi0_gg_0007.root",
		"pluto_pi0_gg_0003.root",
		"pluto_etap_grho0_4g_0002.root",
		"pluto_pi0_gg_0009.log",
		"g4sim_pi0_gg_0010.root", // 前缀不符
		"notes.txt",
	)
	touch(t, g4, "g4sim_pi0_gg_0005.root")
	require.NoError(t, os.Mkdir(filepath.Join(mc, "pluto_pi0_gg_0099.root"), 0o755))

	seqs, err := s.Scan(context.Background(), "pi0_gg")
	require.NoError(t, err)
	assert.Equal(t, contract.Seqs{MCGen: 7, Geant: 5}, seqs)
	assert.Equal(t, 7, seqs.Max())

	// 标识精确匹配，不做子串匹配
	seqs, err = s.Scan(context.Background(), "gg")
	require.NoError(t, err)
	assert.Equal(t, contract.Seqs{}, seqs)
}

func TestScanSymlink(t *testing.T) {
	s, mc, _ := setup(t)
	target := filepath.Join(t.TempDir(), "real.root")
	require.NoError(t, os.WriteFile(target, nil, 0o644))
	if err := os.Symlink(target, filepath.Join(mc, "pluto_pi0_gg_0004.root")); err != nil {
		t.Skipf("symlink unsupported: %v", err)
	}
	seqs, err := s.Scan(context.Background(), "pi0_gg")
	require.NoError(t, err)
	assert.Equal(t, 4, seqs.MCGen)
}

func TestInventory(t *testing.T) {
	s, mc, g4 := setup(t)
	touch(t, mc, "pluto_pi0_gg_0002.root", "pluto_cocktail_0010.root")
	touch(t, g4, "g4sim_pi0_gg_0002.root", "g4sim_gun_gg_0001.root")

	inv, err := s.Inventory(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []contract.TagCount{
		{Tag: "cocktail", Seqs: contract.Seqs{MCGen: 10}},
		{Tag: "gun_gg", Seqs: contract.Seqs{Geant: 1}},
		{Tag: "pi0_gg", Seqs: contract.Seqs{MCGen: 2, Geant: 2}},
	}, inv)
}

func TestMissingDir(t *testing.T) {
	s, err := New(&Options{MCGenDir: filepath.Join(t.TempDir(), "nope"), GeantDir: t.TempDir()})
	require.NoError(t, err)
	_, err = s.Scan(context.Background(), "x")
	assert.ErrorIs(t, err, contract.ErrPathInvalid)

	_, err = New(&Options{MCGenDir: "a"})
	assert.ErrorIs(t, err, contract.ErrInvalidInput)
}

func TestCanceled(t *testing.T) {
	s, _, _ := setup(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Inventory(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

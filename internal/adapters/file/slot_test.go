package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSlot_RoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "storage.json")

	slot, err := NewSlot(path, "cg_seats")
	require.NoError(t, err)

	_, ok, err := slot.Get(ctx)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, slot.Set(ctx, "17"))

	reopened, err := NewSlot(path, "cg_seats")
	require.NoError(t, err)
	v, ok, err := reopened.Get(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "17", v)
}

func TestSlot_KeysShareDocument(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "storage.json")

	a, _ := NewSlot(path, "a")
	b, _ := NewSlot(path, "b")
	require.NoError(t, a.Set(ctx, "1"))
	require.NoError(t, b.Set(ctx, "2"))

	v, ok, err := a.Get(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "1", v)
}

func TestSlot_CorruptFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "storage.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	slot, _ := NewSlot(path, "cg_seats")
	_, _, err := slot.Get(ctx)
	require.Error(t, err)
}

func TestDefaultPath_UsesConfigDir(t *testing.T) {
	root := t.TempDir()
	t.Setenv("HOME", root)
	t.Setenv("XDG_CONFIG_HOME", root)

	path, err := DefaultPath()
	require.NoError(t, err)
	require.Equal(t, filepath.Join(root, appDir, "storage.json"), path)
}

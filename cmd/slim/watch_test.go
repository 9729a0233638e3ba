package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWatchSceneSignalsWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.yaml")
	require.NoError(t, os.WriteFile(path, []byte("camera:\n"), 0o644))

	sw, err := watchScene(path)
	require.NoError(t, err)
	defer sw.Close()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(path, []byte("camera:\n  position: [0, 0, -5]\n"), 0o644))

	select {
	case <-sw.Changed:
	case <-time.After(5 * time.Second):
		t.Fatal("no change signalled for the scene file")
	}
}

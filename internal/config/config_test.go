package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SNAPWAIT_REPORT_DIR", "")
	t.Setenv("SNAPWAIT_COLOR", "")

	cfg, err := Load(NewViper())
	require.NoError(t, err)

	assert.Equal(t, ".snapwait/reports", cfg.ReportDir)
	assert.Equal(t, "testdata/snapshots", cfg.SnapshotDir)
	assert.Equal(t, ColorAuto, cfg.Color)
	assert.False(t, cfg.Verbose)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SNAPWAIT_REPORT_DIR", "/tmp/reports")
	t.Setenv("SNAPWAIT_COLOR", "never")
	t.Setenv("SNAPWAIT_VERBOSE", "true")

	cfg, err := Load(NewViper())
	require.NoError(t, err)

	assert.Equal(t, "/tmp/reports", cfg.ReportDir)
	assert.Equal(t, ColorNever, cfg.Color)
	assert.True(t, cfg.Verbose)
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapwait.yaml")
	require.NoError(t, os.WriteFile(path, []byte("report_dir: build/reports\ncolor: always\n"), 0o644))

	v := NewViper()
	require.NoError(t, ReadFile(v, path))
	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "build/reports", cfg.ReportDir)
	assert.Equal(t, ColorAlways, cfg.Color)
}

func TestReadFile_MissingExplicitFile(t *testing.T) {
	err := ReadFile(NewViper(), filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorContains(t, err, "config: read:")
}

func TestReadFile_NoSearchPathFile(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	assert.NoError(t, ReadFile(NewViper(), ""))
}

func TestLoad_InvalidColor(t *testing.T) {
	v := NewViper()
	v.Set("color", "sometimes")

	_, err := Load(v)
	assert.ErrorContains(t, err, `got "sometimes"`)
}

func TestLoad_EmptySnapshotDir(t *testing.T) {
	v := NewViper()
	v.Set("snapshot_dir", "")

	_, err := Load(v)
	assert.ErrorContains(t, err, "snapshot_dir is empty")
}

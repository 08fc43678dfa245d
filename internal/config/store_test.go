package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	perrors "github.com/procon-dev/procon/internal/errors"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(NewPaths(filepath.Join(t.TempDir(), "procon")))
}

func TestStore_Load_NoFileUsesDefaults(t *testing.T) {
	s := newTestStore(t)

	cfg, err := s.Load()

	require.NoError(t, err)
	assert.Equal(t, Merge(Defaults()).Values(), cfg.Values())
}

func TestStore_SetThenLoad_RoundTrip(t *testing.T) {
	for _, key := range Keys() {
		t.Run(key, func(t *testing.T) {
			// Given: a fresh store
			s := newTestStore(t)

			// When: setting a value
			_, _, err := s.Set(key, "value-for-"+key)
			require.NoError(t, err)

			// Then: a fresh load returns it
			cfg, err := NewStore(s.Paths()).Load()
			require.NoError(t, err)
			got, err := cfg.Get(key)
			require.NoError(t, err)
			assert.Equal(t, "value-for-"+key, got)
		})
	}
}

func TestStore_Set_ReturnsPrevious(t *testing.T) {
	s := newTestStore(t)

	// First set: nothing persisted yet
	prev, had, err := s.Set(KeyDefaultTemplate, "advanced")
	require.NoError(t, err)
	assert.False(t, had)
	assert.Empty(t, prev)

	// Second set: previous persisted value is reported
	prev, had, err = s.Set(KeyDefaultTemplate, "fast")
	require.NoError(t, err)
	assert.True(t, had)
	assert.Equal(t, "advanced", prev)
}

func TestStore_Set_PersistsFullMergedConfig(t *testing.T) {
	s := newTestStore(t)

	_, _, err := s.Set(KeyCppStandard, "20")
	require.NoError(t, err)

	data, err := os.ReadFile(s.Paths().ConfigFile)
	require.NoError(t, err)
	var onDisk map[string]string
	require.NoError(t, yaml.Unmarshal(data, &onDisk))
	assert.Equal(t, map[string]string{
		KeyDefaultTemplate:     "default",
		KeyDefaultPath:         ".",
		KeyCppStandard:         "20",
		KeyCMakeMinimumVersion: "3.16",
	}, onDisk)
}

func TestStore_Set_CreatesParentDirectory(t *testing.T) {
	s := NewStore(NewPaths(filepath.Join(t.TempDir(), "deep", "nested", "procon")))

	_, _, err := s.Set(KeyDefaultPath, "/work")

	require.NoError(t, err)
	assert.FileExists(t, s.Paths().ConfigFile)
}

func TestStore_Set_Validation(t *testing.T) {
	s := newTestStore(t)

	_, _, err := s.Set("colour", "blue")
	assert.Equal(t, perrors.ErrCodeUnknownKey, perrors.GetCode(err))

	_, _, err = s.Set(KeyDefaultTemplate, "")
	assert.Equal(t, perrors.ErrCodeInvalidInput, perrors.GetCode(err))

	// Nothing was written for rejected calls
	assert.NoFileExists(t, s.Paths().ConfigFile)
}

func TestStore_Load_CorruptFileFallsBackToDefaults(t *testing.T) {
	// Given: a config file that is not a flat string map
	s := newTestStore(t)
	require.NoError(t, os.MkdirAll(s.Paths().Base, 0o755))
	require.NoError(t, os.WriteFile(s.Paths().ConfigFile, []byte("default_template: [unclosed\n"), 0o644))

	// When: loading
	cfg, err := s.Load()

	// Then: a Corrupt error is reported alongside a usable default config
	require.Error(t, err)
	assert.Equal(t, perrors.ErrCodeConfigCorrupt, perrors.GetCode(err))
	require.NotNil(t, cfg)
	assert.Equal(t, "default", cfg.DefaultTemplate())
}

func TestStore_Load_NestedMappingIsCorrupt(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, os.MkdirAll(s.Paths().Base, 0o755))
	require.NoError(t, os.WriteFile(s.Paths().ConfigFile, []byte("template:\n  default: x\n"), 0o644))

	_, err := s.Load()

	assert.Equal(t, perrors.ErrCodeConfigCorrupt, perrors.GetCode(err))
}

func TestStore_Load_IgnoresUnknownKeysInFile(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, os.MkdirAll(s.Paths().Base, 0o755))
	require.NoError(t, os.WriteFile(s.Paths().ConfigFile,
		[]byte("default_template: advanced\nfavourite_color: blue\n"), 0o644))

	cfg, err := s.Load()

	require.NoError(t, err)
	assert.Equal(t, "advanced", cfg.DefaultTemplate())
	assert.NotContains(t, cfg.Values(), "favourite_color")
}

func TestStore_Load_PrecedenceFileEnvOverride(t *testing.T) {
	s := newTestStore(t)
	_, _, err := s.Set(KeyDefaultTemplate, "from-file")
	require.NoError(t, err)
	_, _, err = s.Set(KeyDefaultPath, "/from/file")
	require.NoError(t, err)

	t.Setenv("PROCON_DEFAULT_PATH", "/from/env")

	cfg, err := s.Load(FlagLayer(map[string]string{KeyDefaultTemplate: "from-flag"}))

	require.NoError(t, err)
	assert.Equal(t, "from-flag", cfg.DefaultTemplate())
	assert.Equal(t, "/from/env", cfg.DefaultPath())
	assert.Equal(t, LayerEnv, cfg.Source(KeyDefaultPath))
}

func TestStore_Set_ReplacesCorruptFileWithBackup(t *testing.T) {
	// Given: a corrupt config file
	s := newTestStore(t)
	require.NoError(t, os.MkdirAll(s.Paths().Base, 0o755))
	corrupt := []byte("default_path: [unclosed\n")
	require.NoError(t, os.WriteFile(s.Paths().ConfigFile, corrupt, 0o644))

	// When: setting a value
	_, had, err := s.Set(KeyDefaultTemplate, "advanced")

	// Then: the set succeeds, the old content is kept in a backup
	require.NoError(t, err)
	assert.False(t, had)
	backups, err := ListConfigBackups(s.Paths().ConfigFile)
	require.NoError(t, err)
	require.Len(t, backups, 1)
	data, err := os.ReadFile(backups[0])
	require.NoError(t, err)
	assert.Equal(t, corrupt, data)

	cfg, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, "advanced", cfg.DefaultTemplate())
}

func TestStore_Set_CorruptFileKeptWhenBackupFails(t *testing.T) {
	// Given: a corrupt config file and a directory squatting on the backup name
	s := newTestStore(t)
	require.NoError(t, os.MkdirAll(s.Paths().Base, 0o755))
	corrupt := []byte("default_path: [unclosed\n")
	require.NoError(t, os.WriteFile(s.Paths().ConfigFile, corrupt, 0o644))

	origNow := now
	defer func() { now = origNow }()
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	now = func() time.Time { return fixed }
	squat := fmt.Sprintf("%s%s.%s", s.Paths().ConfigFile, BackupSuffix, fixed.Format("20060102-150405.000"))
	require.NoError(t, os.MkdirAll(squat, 0o755))

	// When: setting a value
	_, _, err := s.Set(KeyDefaultTemplate, "advanced")

	// Then: Set fails with Corrupt and the file is untouched
	require.Error(t, err)
	assert.Equal(t, perrors.ErrCodeConfigCorrupt, perrors.GetCode(err))
	data, err := os.ReadFile(s.Paths().ConfigFile)
	require.NoError(t, err)
	assert.Equal(t, corrupt, data)
}

func TestStore_Set_ConcurrentNoLostUpdate(t *testing.T) {
	// Given: one config location and a separate Store per writer
	paths := NewPaths(filepath.Join(t.TempDir(), "procon"))
	keys := Keys()

	// When: every key is set concurrently
	var wg sync.WaitGroup
	errs := make(chan error, len(keys))
	for _, key := range keys {
		wg.Add(1)
		go func(key string) {
			defer wg.Done()
			_, _, err := NewStore(paths).Set(key, "concurrent-"+key)
			errs <- err
		}(key)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	// Then: all updates survive
	cfg, err := NewStore(paths).Load()
	require.NoError(t, err)
	for _, key := range keys {
		got, _ := cfg.Get(key)
		assert.Equal(t, "concurrent-"+key, got, "lost update for %s", key)
	}
}

func TestFileLock_UnlockWithoutLock(t *testing.T) {
	l := NewFileLock(filepath.Join(t.TempDir(), "x.lock"))

	assert.NoError(t, l.Unlock())
	require.NoError(t, l.Lock())
	assert.FileExists(t, l.Path())
	assert.NoError(t, l.Unlock())
	assert.NoError(t, l.Unlock())
}

func TestBackupConfig_KeepsMaxBackups(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, ConfigFileName)
	require.NoError(t, os.WriteFile(configPath, []byte("default_template: x\n"), 0o644))

	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	origNow := now
	defer func() { now = origNow }()

	for i := 0; i < MaxBackups+2; i++ {
		now = func() time.Time { return base.Add(time.Duration(i) * time.Second) }
		_, err := BackupConfig(configPath)
		require.NoError(t, err)
	}

	backups, err := ListConfigBackups(configPath)
	require.NoError(t, err)
	assert.Len(t, backups, MaxBackups)
	assert.Contains(t, backups[0], fmt.Sprintf("%s.%s", BackupSuffix, "20260102-030409"))
}

func TestBackupConfig_MissingFile(t *testing.T) {
	_, err := BackupConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

package settings

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMissingFileWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), DirName, FileName)
	s := NewStore(path)

	_, err := os.Stat(path)
	require.ErrorIs(t, err, os.ErrNotExist, "nothing read or written before first use")

	got, err := s.Get()
	require.NoError(t, err)
	assert.Equal(t, Defaults(), got)
	assert.False(t, got.Program.AutoStart)
	assert.Equal(t, "Screenshots", filepath.Base(got.Paths.Screenshots))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var onDisk Settings
	require.NoError(t, toml.Unmarshal(data, &onDisk))
	assert.Equal(t, got, onDisk)
}

func TestLoadExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(`
[program]
auto_start = true

[paths]
screenshots = '/data/shots'
`), 0o644))

	s := NewStore(path)
	var got Settings
	require.NoError(t, s.Read(func(v Settings) { got = v }))
	assert.True(t, got.Program.AutoStart)
	assert.Equal(t, "/data/shots", got.Paths.Screenshots)
}

func TestLoadPartialFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("[program]\nauto_start = true\n"), 0o644))

	got, err := NewStore(path).Get()
	require.NoError(t, err)
	assert.True(t, got.Program.AutoStart)
	assert.Equal(t, DefaultScreenshotsDir(), got.Paths.Screenshots)
}

func TestLoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("[program\nauto_start = ="), 0o644))

	_, err := NewStore(path).Get()
	assert.ErrorContains(t, err, "settings: parse")
}

func TestWritePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	s := NewStore(path)

	require.NoError(t, s.Write(func(v *Settings) {
		v.Paths.Screenshots = "/tmp/elsewhere"
		v.Program.AutoStart = true
	}))

	fresh, err := NewStore(path).Get()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/elsewhere", fresh.Paths.Screenshots)
	assert.True(t, fresh.Program.AutoStart)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestReadGetsCopy(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), FileName))
	require.NoError(t, s.Read(func(v Settings) { v.Paths.Screenshots = "mutated" }))

	got, err := s.Get()
	require.NoError(t, err)
	assert.NotEqual(t, "mutated", got.Paths.Screenshots)
}

func TestConcurrentAccess(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), FileName))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			assert.NoError(t, s.Write(func(v *Settings) { v.Program.AutoStart = !v.Program.AutoStart }))
		}()
		go func() {
			defer wg.Done()
			assert.NoError(t, s.Read(func(Settings) {}))
		}()
	}
	wg.Wait()

	got, err := s.Get()
	require.NoError(t, err)
	assert.False(t, got.Program.AutoStart, "even number of toggles")
}

func TestSecondStoreSeesWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	daemon := NewStore(path)
	cli := NewStore(path)

	before, err := daemon.Get()
	require.NoError(t, err)
	require.NotEqual(t, "/new/dir", before.Paths.Screenshots)

	require.NoError(t, cli.Write(func(v *Settings) { v.Paths.Screenshots = "/new/dir" }))

	after, err := daemon.Get()
	require.NoError(t, err)
	assert.Equal(t, "/new/dir", after.Paths.Screenshots)
}

func TestReloadAfterInPlaceEdit(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("[paths]\nscreenshots = \"/aaa\"\n"), 0o644))
	s := NewStore(path)
	got, err := s.Get()
	require.NoError(t, err)
	require.Equal(t, "/aaa", got.Paths.Screenshots)

	// Same inode and size; only the mtime tells them apart.
	require.NoError(t, os.WriteFile(path, []byte("[paths]\nscreenshots = \"/bbb\"\n"), 0o644))
	later := time.Now().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(path, later, later))

	got, err = s.Get()
	require.NoError(t, err)
	assert.Equal(t, "/bbb", got.Paths.Screenshots)
}

func TestWriteKeepsExternalChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	a := NewStore(path)
	b := NewStore(path)
	_, err := a.Get()
	require.NoError(t, err)

	require.NoError(t, b.Write(func(v *Settings) { v.Program.AutoStart = true }))
	require.NoError(t, a.Write(func(v *Settings) { v.Paths.Screenshots = "/from/a" }))

	fresh, err := NewStore(path).Get()
	require.NoError(t, err)
	assert.True(t, fresh.Program.AutoStart)
	assert.Equal(t, "/from/a", fresh.Paths.Screenshots)
}

func TestReloadKeepsPreviousOnParseError(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	s := NewStore(path)
	require.NoError(t, s.Write(func(v *Settings) { v.Paths.Screenshots = "/good" }))

	require.NoError(t, os.Remove(path))
	require.NoError(t, os.WriteFile(path, []byte("[paths\nscreenshots ="), 0o644))

	got, err := s.Get()
	require.NoError(t, err)
	assert.Equal(t, "/good", got.Paths.Screenshots)
}

func TestWatchReportsOtherWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	daemon := NewStore(path)

	changes := make(chan Settings, 4)
	w, err := daemon.Watch(func(v Settings) { changes <- v })
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, NewStore(path).Write(func(v *Settings) { v.Paths.Screenshots = "/watched" }))

	select {
	case v := <-changes:
		assert.Equal(t, "/watched", v.Paths.Screenshots)
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}
	got, err := daemon.Get()
	require.NoError(t, err)
	assert.Equal(t, "/watched", got.Paths.Screenshots)
}

func TestWatchIgnoresOwnUnchangedWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	s := NewStore(path)

	changes := make(chan Settings, 4)
	w, err := s.Watch(func(v Settings) { changes <- v })
	require.NoError(t, err)

	require.NoError(t, s.Write(func(*Settings) {}))
	time.Sleep(200 * time.Millisecond)
	require.NoError(t, w.Close())
	assert.Empty(t, changes)
}

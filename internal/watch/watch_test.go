package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsSnippetFile(t *testing.T) {
	testCases := []struct {
		path     string
		expected bool
	}{
		{"words.txt", true},
		{"phrases_line.txt", true},
		{"names.tsv", true},
		{"names.CSV", true},
		{"/data/deep/more.txt", true},
		{"notes.md", false},
		{".words.txt.swp", false},
		{"config.toml", false},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, isSnippetFile(tc.path), "isSnippetFile(%q)", tc.path)
	}
}

func TestDirWatcherFiresOnWrite(t *testing.T) {
	dir := t.TempDir()

	dw, err := NewDirWatcher(dir)
	require.NoError(t, err)
	defer dw.Stop()

	fired := make(chan struct{}, 1)
	dw.OnChange(func() error {
		select {
		case fired <- struct{}{}:
		default:
		}
		return nil
	})
	dw.Start()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "new_line.txt"), []byte("hello\n"), 0644))

	select {
	case <-fired:
	case <-time.After(3 * time.Second):
		t.Fatal("watcher never fired after a snippet file write")
	}
}

func TestDirWatcherDebounces(t *testing.T) {
	dir := t.TempDir()

	dw, err := NewDirWatcher(dir)
	require.NoError(t, err)
	defer dw.Stop()

	calls := make(chan struct{}, 16)
	dw.OnChange(func() error {
		calls <- struct{}{}
		return nil
	})
	dw.Start()

	// a rapid burst of writes collapses into one callback
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "burst.txt"), []byte("x"), 0644))
		time.Sleep(20 * time.Millisecond)
	}

	select {
	case <-calls:
	case <-time.After(3 * time.Second):
		t.Fatal("watcher never fired")
	}

	select {
	case <-calls:
		t.Error("burst of writes produced more than one callback")
	case <-time.After(time.Second):
	}
}

func TestNewDirWatcherMissingDir(t *testing.T) {
	_, err := NewDirWatcher(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

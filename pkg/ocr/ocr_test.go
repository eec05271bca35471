package ocr

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snipserve/snipserve/pkg/config"
)

func testRunner(t *testing.T) *Runner {
	t.Helper()
	cfg := config.OCRConfig{
		Binary:         "tesseract",
		Language:       "eng",
		Optimize:       true,
		MaxOutputFiles: 3,
		FreshnessSecs:  60,
	}
	return NewRunner(cfg, t.TempDir())
}

func TestExtractText(t *testing.T) {
	r := testRunner(t)

	image := filepath.Join(t.TempDir(), "shot.png")
	require.NoError(t, os.WriteFile(image, []byte("fake png"), 0644))

	var gotName string
	var gotArgs []string
	r.execCommand = func(ctx context.Context, name string, args ...string) ([]byte, error) {
		gotName = name
		gotArgs = args
		return []byte("recognized text\n"), nil
	}

	text, err := r.ExtractText(context.Background(), image)
	require.NoError(t, err)
	assert.Equal(t, "recognized text\n", text)
	assert.Equal(t, "tesseract", gotName)
	assert.Equal(t, []string{image, "stdout", "-l", "eng", "--psm", "6"}, gotArgs)
}

func TestExtractTextNoOptimize(t *testing.T) {
	r := testRunner(t)
	r.optimize = false

	image := filepath.Join(t.TempDir(), "shot.png")
	require.NoError(t, os.WriteFile(image, []byte("fake png"), 0644))

	r.execCommand = func(ctx context.Context, name string, args ...string) ([]byte, error) {
		assert.NotContains(t, args, "--psm")
		return nil, nil
	}

	_, err := r.ExtractText(context.Background(), image)
	require.NoError(t, err)
}

func TestExtractTextMissingImage(t *testing.T) {
	r := testRunner(t)
	r.execCommand = func(ctx context.Context, name string, args ...string) ([]byte, error) {
		t.Fatal("the binary must not run for a missing image")
		return nil, nil
	}

	_, err := r.ExtractText(context.Background(), filepath.Join(t.TempDir(), "gone.png"))
	assert.ErrorContains(t, err, "not found")
}

func TestExtractTextBinaryFailure(t *testing.T) {
	r := testRunner(t)

	image := filepath.Join(t.TempDir(), "shot.png")
	require.NoError(t, os.WriteFile(image, []byte("fake png"), 0644))

	r.execCommand = func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return nil, errors.New("exit status 1: could not open image")
	}

	_, err := r.ExtractText(context.Background(), image)
	assert.ErrorContains(t, err, "tesseract")
}

func TestSaveTextNaming(t *testing.T) {
	r := testRunner(t)

	capturedAt := time.Date(2026, 3, 14, 15, 9, 26, 0, time.Local)
	path, err := r.SaveText("hello from the screen", capturedAt)
	require.NoError(t, err)

	assert.Equal(t, "20260314__150926.txt", filepath.Base(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello from the screen", string(data))
}

func TestLatest(t *testing.T) {
	r := testRunner(t)

	_, ok, err := r.Latest(time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "empty directory has no capture")

	_, err = r.SaveText("older", time.Now().Add(-2*time.Second))
	require.NoError(t, err)
	time.Sleep(10 * time.Millisecond)
	_, err = r.SaveText("newer", time.Now())
	require.NoError(t, err)

	text, ok, err := r.Latest(time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "newer", text)
}

func TestLatestStale(t *testing.T) {
	r := testRunner(t)

	path, err := r.SaveText("ancient", time.Now())
	require.NoError(t, err)

	old := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(path, old, old))

	_, ok, err := r.Latest(time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "a stale capture is reported as absent")
}

func TestCleanupOld(t *testing.T) {
	r := testRunner(t)

	base := time.Now().Add(-10 * time.Minute)
	var paths []string
	for i := 0; i < 5; i++ {
		path, err := r.SaveText("capture", base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, err)
		mod := base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, os.Chtimes(path, mod, mod))
		paths = append(paths, path)
	}

	require.NoError(t, r.CleanupOld())

	files, err := r.outputFiles()
	require.NoError(t, err)
	assert.Len(t, files, 3, "pruned down to max_output_files")

	// the two oldest are gone, the newest three remain
	assert.NoFileExists(t, paths[0])
	assert.NoFileExists(t, paths[1])
	assert.FileExists(t, paths[4])
}

// Package ocr invokes an external OCR engine on captured images and
// manages the timestamped text files it produces. The engine binary is a
// direct dependency (tesseract by default); there is no bundled fallback.
package ocr

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/snipserve/snipserve/internal/utils"
	"github.com/snipserve/snipserve/pkg/config"
)

// outputTimeLayout names capture files by their capture time.
const outputTimeLayout = "20060102__150405"

// Runner shells out to the configured OCR binary and owns the output
// directory lifecycle.
type Runner struct {
	binary         string
	language       string
	optimize       bool
	outputDir      string
	maxOutputFiles int

	execCommand func(ctx context.Context, name string, args ...string) ([]byte, error)
}

// NewRunner creates a runner from OCR config and the output directory.
func NewRunner(cfg config.OCRConfig, outputDir string) *Runner {
	return &Runner{
		binary:         cfg.Binary,
		language:       cfg.Language,
		optimize:       cfg.Optimize,
		outputDir:      outputDir,
		maxOutputFiles: cfg.MaxOutputFiles,
		execCommand:    runCommand,
	}
}

// ExtractText runs the OCR binary against an image and returns the raw
// recognized text. The optimize flag pins tesseract to page segmentation
// mode 6 (uniform text block), which works best on screenshots.
func (r *Runner) ExtractText(ctx context.Context, imagePath string) (string, error) {
	if !utils.FileExists(imagePath) {
		return "", fmt.Errorf("image file not found: %s", imagePath)
	}

	args := []string{imagePath, "stdout", "-l", r.language}
	if r.optimize {
		args = append(args, "--psm", "6")
	}

	out, err := r.execCommand(ctx, r.binary, args...)
	if err != nil {
		return "", fmt.Errorf("running %s: %w", r.binary, err)
	}
	return string(out), nil
}

// SaveText writes recognized text to a capture-time named file in the
// output directory and returns its path.
func (r *Runner) SaveText(text string, capturedAt time.Time) (string, error) {
	if err := utils.EnsureDir(r.outputDir); err != nil {
		return "", fmt.Errorf("creating output directory %s: %w", r.outputDir, err)
	}

	path := filepath.Join(r.outputDir, capturedAt.Format(outputTimeLayout)+".txt")
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		return "", fmt.Errorf("writing output file: %w", err)
	}
	log.Debugf("OCR text saved to %s", path)
	return path, nil
}

// Latest returns the content of the most recent output file if it is
// younger than maxAge. Stale captures are reported as absent so the
// suggestion index never resurrects an old screen.
func (r *Runner) Latest(maxAge time.Duration) (string, bool, error) {
	newest, modTime, err := r.newestOutput()
	if err != nil || newest == "" {
		return "", false, err
	}

	if age := time.Since(modTime); age > maxAge {
		log.Debugf("Most recent OCR file is too old (%s): %s", age.Round(time.Second), newest)
		return "", false, nil
	}

	data, err := os.ReadFile(newest)
	if err != nil {
		return "", false, fmt.Errorf("reading OCR output %s: %w", newest, err)
	}
	return string(data), true, nil
}

// CleanupOld prunes the output directory down to the newest
// max_output_files text files.
func (r *Runner) CleanupOld() error {
	files, err := r.outputFiles()
	if err != nil {
		return err
	}
	if len(files) <= r.maxOutputFiles {
		return nil
	}

	// newest first
	sort.Slice(files, func(i, j int) bool {
		return files[i].modTime.After(files[j].modTime)
	})

	for _, f := range files[r.maxOutputFiles:] {
		if err := os.Remove(f.path); err != nil {
			log.Warnf("Failed to remove old output file %s: %v", f.path, err)
			continue
		}
		log.Debugf("Removed old output file %s", f.path)
	}
	return nil
}

type outputFile struct {
	path    string
	modTime time.Time
}

func (r *Runner) outputFiles() ([]outputFile, error) {
	dirEntries, err := os.ReadDir(r.outputDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading output directory %s: %w", r.outputDir, err)
	}

	var files []outputFile
	for _, de := range dirEntries {
		if de.IsDir() || !strings.HasSuffix(strings.ToLower(de.Name()), ".txt") {
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue
		}
		files = append(files, outputFile{
			path:    filepath.Join(r.outputDir, de.Name()),
			modTime: info.ModTime(),
		})
	}
	return files, nil
}

func (r *Runner) newestOutput() (string, time.Time, error) {
	files, err := r.outputFiles()
	if err != nil || len(files) == 0 {
		return "", time.Time{}, err
	}

	newest := files[0]
	for _, f := range files[1:] {
		if f.modTime.After(newest.modTime) {
			newest = f
		}
	}
	return newest.path, newest.modTime, nil
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%w: %s", err, msg)
		}
		return nil, err
	}
	return stdout.Bytes(), nil
}

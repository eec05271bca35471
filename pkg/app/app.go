// Package app wires the engine together: configuration, data loader,
// index, matcher and OCR runner live on one explicit context object that
// is handed to every component at construction. Nothing in the repo
// reaches for package-level singletons.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/snipserve/snipserve/pkg/config"
	"github.com/snipserve/snipserve/pkg/index"
	"github.com/snipserve/snipserve/pkg/ocr"
	"github.com/snipserve/snipserve/pkg/source"
	"github.com/snipserve/snipserve/pkg/suggest"
)

// App is the application context shared by the IPC server, the CLI and
// the watcher callbacks.
type App struct {
	Config  *config.Config
	Loader  *source.Loader
	Index   *index.Index
	Matcher *suggest.Matcher
	OCR     *ocr.Runner
}

// New builds the full component graph from a validated config.
func New(cfg *config.Config) *App {
	idx := index.New()
	opts := suggest.Options{
		PrefixFirst:        cfg.Suggest.PrefixFirst,
		EmptyQueryDefaults: cfg.Suggest.EmptyQueryDefaults,
		FuzzyFallback:      cfg.Suggest.FuzzyFallback,
	}

	return &App{
		Config:  cfg,
		Loader:  source.NewLoader(cfg.Paths.DataDir),
		Index:   idx,
		Matcher: suggest.NewMatcher(idx, opts),
		OCR:     ocr.NewRunner(cfg.OCR, cfg.Paths.OutputDir),
	}
}

// Reload re-reads the data directory and swaps in a fresh index snapshot.
// The old snapshot keeps serving queries until the swap happens.
func (a *App) Reload() error {
	start := time.Now()
	entries, err := a.Loader.LoadAll()
	if err != nil {
		return fmt.Errorf("reloading data files: %w", err)
	}
	a.Index.Rebuild(entries)
	log.Debugf("Reloaded %d entries from %s in %v", len(entries), a.Loader.Dir(), time.Since(start))
	return nil
}

// IngestLatestCapture scans the most recent OCR output (if fresh enough)
// into the transient word source. A stale or missing capture clears the
// transient set so suggestions never come from an old screen.
func (a *App) IngestLatestCapture() error {
	maxAge := time.Duration(a.Config.OCR.FreshnessSecs) * time.Second
	text, ok, err := a.OCR.Latest(maxAge)
	if err != nil {
		return err
	}
	if !ok {
		a.Index.Ingest(nil)
		return nil
	}

	entries := source.ScanText(text)
	a.Index.Ingest(entries)
	log.Debugf("Ingested %d transient entries from latest capture", len(entries))
	return nil
}

// CaptureImage runs OCR over an already captured image file, persists the
// text to the output directory, prunes old outputs and feeds the new text
// into the index. Returns the output file path.
func (a *App) CaptureImage(ctx context.Context, imagePath string) (string, error) {
	text, err := a.OCR.ExtractText(ctx, imagePath)
	if err != nil {
		return "", err
	}

	path, err := a.OCR.SaveText(text, time.Now())
	if err != nil {
		return "", err
	}
	if err := a.OCR.CleanupOld(); err != nil {
		log.Warnf("Output cleanup failed: %v", err)
	}

	a.Index.Ingest(source.ScanText(text))
	return path, nil
}

// MaxResults returns the configured result cap.
func (a *App) MaxResults() int {
	return a.Config.Suggest.MaxResults
}

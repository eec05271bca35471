/*
Package main implements snipocr, a one-shot OCR helper.

The front-end captures a screen region to an image file and hands the
path to this tool. snipocr runs the configured OCR binary over the
image, writes the recognized text to a capture-time named file in the
output directory, prunes old outputs, and prints the output path to
stdout.

	snipocr screenshot.png
	snipocr -config /path/to/config.toml -d screenshot.png
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/snipserve/snipserve/internal/utils"
	"github.com/snipserve/snipserve/pkg/app"
	"github.com/snipserve/snipserve/pkg/config"
)

const extractTimeout = 30 * time.Second

func main() {
	configPath := flag.String("config", "", "Path to the TOML config file")
	debugMode := flag.Bool("d", false, "Toggle debug mode")
	flag.Parse()

	if *debugMode {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.WarnLevel)
	}

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: snipocr [-config path] [-d] <image>")
		os.Exit(2)
	}
	imagePath := flag.Arg(0)

	cfg, activePath, err := config.LoadConfigWithPriority(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Debugf("Using config file: (%s)", activePath)

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	if err := utils.EnsureDir(cfg.Paths.OutputDir); err != nil {
		log.Fatalf("Failed to create output directory %s: %v", cfg.Paths.OutputDir, err)
	}

	application := app.New(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), extractTimeout)
	defer cancel()

	outputPath, err := application.CaptureImage(ctx, imagePath)
	if err != nil {
		log.Fatalf("OCR failed: %v", err)
	}
	fmt.Println(outputPath)
}

// Package cli handles cmd line input and suggestions for DBG and testing various features
package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/snipserve/snipserve/internal/utils"
	"github.com/snipserve/snipserve/pkg/app"
)

// InputHandler processes user input from stdin, providing snippet
// suggestions for each typed query. It honors the same reserved command
// strings as the popup front-end: /reload and /exit.
type InputHandler struct {
	app          *app.App
	suggestLimit int
}

// NewInputHandler handles initialization of the InputHandler with basic parameters
func NewInputHandler(a *app.App, limit int) *InputHandler {
	if limit < 1 {
		limit = a.MaxResults()
	}
	return &InputHandler{
		app:          a,
		suggestLimit: limit,
	}
}

// Start begins the interface loop.
// It continuously prompts for input, reads a line from stdin,
// and passes the trimmed input to handleInput() for processing.
// Loop terminates on /exit or when stdin closes.
func (h *InputHandler) Start() error {
	log.Print("SnipServe CLI")
	reader := bufio.NewReader(os.Stdin)
	log.Print("type a query and press Enter to see suggestions (/reload, /exit):")

	for {
		log.Print("> ")
		query, err := reader.ReadString('\n')
		if err != nil {
			return err
		}
		query = strings.TrimSpace(query)
		if query == "" {
			continue
		}

		switch query {
		case "/reload":
			if err := h.app.Reload(); err != nil {
				log.Errorf("Reload failed: %v", err)
				continue
			}
			if err := h.app.IngestLatestCapture(); err != nil {
				log.Warnf("Capture ingest failed: %v", err)
			}
			stats := h.app.Matcher.Stats()
			log.Printf("Index reloaded (%s entries)", utils.FormatWithCommas(stats["totalEntries"]))
			continue
		case "/exit":
			return nil
		}

		h.handleInput(query)
	}
}

// handleInput processes a single query and prints ranked suggestions.
func (h *InputHandler) handleInput(query string) {
	start := time.Now()
	suggestions := h.app.Matcher.Match(query, h.suggestLimit)
	elapsed := time.Since(start)

	log.Debugf("Took [ %v ] for query '%s'", elapsed, query)

	if len(suggestions) == 0 {
		log.Warnf("No suggestions found for query: '%s'", query)
		return
	}

	if suggestions[0].WasCorrected {
		log.Printf("Showing results for '%s' (corrected from '%s'):",
			suggestions[0].CorrectedQuery, suggestions[0].OriginalQuery)
	}

	log.Printf("Found %d suggestions for query '%s':", len(suggestions), query)
	for i, s := range suggestions {
		clDisplay := fmt.Sprintf("\033[38;5;75m%s\033[0m", s.Display)
		log.Printf("%2d. %-40s [%s]", i+1, clDisplay, s.Kind)
	}
}

package server

import (
	"errors"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/snipserve/snipserve/internal/logger"
	"github.com/snipserve/snipserve/pkg/app"
)

// query strings reserved by the popup input
const (
	cmdReload = "/reload"
	cmdExit   = "/exit"
)

var errExitRequested = errors.New("exit requested")

// envelope covers both request shapes on the wire; Action decides which
// one a message is.
type envelope struct {
	ID     string `msgpack:"id"`
	Query  string `msgpack:"q"`
	Limit  int    `msgpack:"l"`
	Action string `msgpack:"action"`
}

// Server handles the IPC for snippet suggestions.
type Server struct {
	app *app.App
	dec *msgpack.Decoder
	enc *msgpack.Encoder
	log *log.Logger
}

// NewServer creates a suggestion server using stdin/stdout for IPC.
func NewServer(a *app.App) *Server {
	return NewServerWithIO(a, os.Stdin, os.Stdout)
}

// NewServerWithIO creates a server over arbitrary streams, mainly for tests.
func NewServerWithIO(a *app.App, r io.Reader, w io.Writer) *Server {
	return &Server{
		app: a,
		dec: msgpack.NewDecoder(r),
		enc: msgpack.NewEncoder(w),
		log: logger.New("ipc"),
	}
}

// Start begins listening for IPC requests. It returns nil on EOF or after
// an exit request.
func (s *Server) Start() error {
	s.log.Debug("Starting server.")
	s.sendResponse(map[string]string{"status": "ready"})

	for {
		var req envelope
		if err := s.dec.Decode(&req); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			s.log.Errorf("Decoding request: %v", err)
			s.sendError("", "Invalid msgpack request", 400)
			continue
		}

		if err := s.handleRequest(req); err != nil {
			if errors.Is(err, errExitRequested) {
				return nil
			}
			return err
		}
	}
}

func (s *Server) handleRequest(req envelope) error {
	switch req.Action {
	case "":
		return s.handleSuggest(req)
	case "reload":
		return s.handleReload(req.ID)
	case "status":
		s.sendResponse(ControlResponse{
			ID:     req.ID,
			Status: "ok",
			Stats:  s.app.Matcher.Stats(),
			Hotkeys: map[string]string{
				"capture": s.app.Config.Hotkey.Capture,
				"suggest": s.app.Config.Hotkey.Suggest,
			},
		})
		return nil
	case "exit":
		s.sendResponse(ControlResponse{ID: req.ID, Status: "exiting"})
		s.log.Debug("Exit requested via IPC")
		return errExitRequested
	default:
		s.sendError(req.ID, "Unknown action: "+req.Action, 400)
		return nil
	}
}

// handleSuggest processes one query. Reserved command strings are resolved
// here, above the match engine.
func (s *Server) handleSuggest(req envelope) error {
	switch strings.TrimSpace(req.Query) {
	case cmdReload:
		return s.handleReload(req.ID)
	case cmdExit:
		s.sendResponse(ControlResponse{ID: req.ID, Status: "exiting"})
		s.log.Debug("Exit requested via query command")
		return errExitRequested
	}

	if !s.app.Config.Suggest.Enabled {
		s.sendResponse(SuggestResponse{ID: req.ID})
		return nil
	}

	limit := req.Limit
	maxResults := s.app.MaxResults()
	if limit < 1 || limit > maxResults {
		limit = maxResults
	}

	start := time.Now()
	suggestions := s.app.Matcher.Match(req.Query, limit)
	elapsed := time.Since(start)

	entries := make([]SuggestEntry, len(suggestions))
	for i, sug := range suggestions {
		entries[i] = SuggestEntry{
			Display: sug.Display,
			Insert:  sug.Insert,
			Kind:    sug.Kind.String(),
			Rank:    uint16(i + 1),
		}
	}

	resp := SuggestResponse{
		ID:          req.ID,
		Suggestions: entries,
		Count:       len(entries),
		TimeTaken:   elapsed.Microseconds(),
	}
	if len(suggestions) > 0 && suggestions[0].WasCorrected {
		resp.WasCorrected = true
		resp.CorrectedQuery = suggestions[0].CorrectedQuery
	}

	s.sendResponse(resp)
	return nil
}

func (s *Server) handleReload(id string) error {
	if err := s.app.Reload(); err != nil {
		s.log.Errorf("Reload failed: %v", err)
		s.sendResponse(ControlResponse{ID: id, Status: "error", Error: err.Error()})
		return nil
	}
	if err := s.app.IngestLatestCapture(); err != nil {
		s.log.Warnf("Capture ingest after reload failed: %v", err)
	}
	s.sendResponse(ControlResponse{ID: id, Status: "reloaded", Stats: s.app.Matcher.Stats()})
	return nil
}

func (s *Server) sendResponse(response interface{}) {
	if err := s.enc.Encode(response); err != nil {
		s.log.Errorf("Encoding response: %v", err)
	}
}

func (s *Server) sendError(id, message string, code int) {
	s.sendResponse(SuggestError{
		ID:    id,
		Error: message,
		Code:  code,
	})
}

/*
Package server implements msgpack IPC for snippet suggestion services.

The server provides a minimal interface for the popup front-end using
msgpack serialization over stdin/stdout. Messages are processed
synchronously with timing info included in responses.

# IPC

The server operates on a request response model where the front-end sends
structured messages via stdin and receives responses through stdout.
Each message contains an ID field and other fields based on the operation.

Suggestion requests use mainly this structure:

	{"id": "req_001", "q": "meet", "l": 10}

The server responds with ranked suggestions:

	{"id": "req_001", "s": [{"d": "meeting", "v": "meeting", "k": "word", "r": 1}], "c": 1, "t": 120}

Control requests manage the index and the process:

	{"id": "ctl_001", "action": "reload"}
	{"id": "ctl_002", "action": "status"}
	{"id": "ctl_003", "action": "exit"}

The two reserved query strings from the popup input are also honored at
this layer, before anything reaches the match engine: a query of "/reload"
rebuilds the index in place and keeps the session open, "/exit" shuts the
process down. The matcher itself never sees either.

# Message Types

SuggestRequest and SuggestResponse carry the main query traffic. A request
holds a query string and an optional result limit; the limit is clamped to
the configured max_results. Responses contain suggestion arrays with
display text, insert value, source kind and rank, plus timing data.

ControlRequest and ControlResponse manage runtime operations: reloading
data files, reporting index statistics, and terminating the process.

msgpack's binary framing keeps per-keystroke messages small, which matters
since the front-end queries on every input change.
*/
package server

// SuggestRequest - minimal suggestion request
type SuggestRequest struct {
	ID    string `msgpack:"id"`
	Query string `msgpack:"q"`
	Limit int    `msgpack:"l,omitempty"`
}

// SuggestEntry - minimal suggestion response item
type SuggestEntry struct {
	Display string `msgpack:"d"`
	Insert  string `msgpack:"v"`
	Kind    string `msgpack:"k"`
	Rank    uint16 `msgpack:"r"`
}

// SuggestResponse - suggestion response
type SuggestResponse struct {
	ID             string         `msgpack:"id"`
	Suggestions    []SuggestEntry `msgpack:"s"`
	Count          int            `msgpack:"c"`
	TimeTaken      int64          `msgpack:"t"`
	WasCorrected   bool           `msgpack:"fixed,omitempty"`
	CorrectedQuery string         `msgpack:"fixed_q,omitempty"`
}

// ControlRequest - index/process management request
type ControlRequest struct {
	ID     string `msgpack:"id"`
	Action string `msgpack:"action"` // "reload", "status", "exit"
}

// ControlResponse - control operation response
type ControlResponse struct {
	ID      string         `msgpack:"id"`
	Status  string         `msgpack:"status"`
	Error   string         `msgpack:"error,omitempty"`
	Stats   map[string]int `msgpack:"stats,omitempty"`
	Hotkeys map[string]string `msgpack:"hotkeys,omitempty"`
}

// SuggestError holds basic error information for suggestion requests
type SuggestError struct {
	ID    string `msgpack:"id"`
	Error string `msgpack:"e"`
	Code  int    `msgpack:"c"`
}

package server

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/snipserve/snipserve/pkg/app"
	"github.com/snipserve/snipserve/pkg/config"
)

func testApp(t *testing.T) *app.App {
	t.Helper()

	dataDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "words.txt"),
		[]byte("meeting agenda minutes"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "short_replace.txt"),
		[]byte("addr|1234 Main Street\n"), 0644))

	cfg := config.DefaultConfig()
	cfg.Paths.DataDir = dataDir
	cfg.Paths.OutputDir = t.TempDir()
	cfg.Suggest.MaxResults = 5

	a := app.New(cfg)
	require.NoError(t, a.Reload())
	return a
}

// runSession encodes the given requests, runs the server to completion and
// returns a decoder positioned after the ready banner.
func runSession(t *testing.T, a *app.App, requests ...any) *msgpack.Decoder {
	t.Helper()

	var in bytes.Buffer
	enc := msgpack.NewEncoder(&in)
	for _, req := range requests {
		require.NoError(t, enc.Encode(req))
	}

	var out bytes.Buffer
	srv := NewServerWithIO(a, &in, &out)
	require.NoError(t, srv.Start())

	dec := msgpack.NewDecoder(&out)
	var ready map[string]string
	require.NoError(t, dec.Decode(&ready))
	assert.Equal(t, "ready", ready["status"])
	return dec
}

func TestServerSuggest(t *testing.T) {
	dec := runSession(t, testApp(t),
		SuggestRequest{ID: "req_001", Query: "meet", Limit: 10},
	)

	var resp SuggestResponse
	require.NoError(t, dec.Decode(&resp))

	assert.Equal(t, "req_001", resp.ID)
	require.NotEmpty(t, resp.Suggestions)
	assert.Equal(t, len(resp.Suggestions), resp.Count)
	assert.Equal(t, "meeting", resp.Suggestions[0].Display)
	assert.Equal(t, "word", resp.Suggestions[0].Kind)
	assert.Equal(t, uint16(1), resp.Suggestions[0].Rank)
	assert.GreaterOrEqual(t, resp.TimeTaken, int64(0))
}

func TestServerReplacement(t *testing.T) {
	dec := runSession(t, testApp(t),
		SuggestRequest{ID: "req_002", Query: "addr"},
	)

	var resp SuggestResponse
	require.NoError(t, dec.Decode(&resp))

	require.Equal(t, 1, resp.Count)
	assert.Equal(t, "addr", resp.Suggestions[0].Display)
	assert.Equal(t, "1234 Main Street", resp.Suggestions[0].Insert)
	assert.Equal(t, "replacement", resp.Suggestions[0].Kind)
}

func TestServerLimitClamped(t *testing.T) {
	a := testApp(t)
	dec := runSession(t, a,
		SuggestRequest{ID: "req_003", Query: "a", Limit: 9999},
	)

	var resp SuggestResponse
	require.NoError(t, dec.Decode(&resp))
	assert.LessOrEqual(t, resp.Count, a.MaxResults())
}

func TestServerSuggestionsDisabled(t *testing.T) {
	a := testApp(t)
	a.Config.Suggest.Enabled = false

	dec := runSession(t, a,
		SuggestRequest{ID: "req_004", Query: "meet"},
	)

	var resp SuggestResponse
	require.NoError(t, dec.Decode(&resp))
	assert.Equal(t, "req_004", resp.ID)
	assert.Zero(t, resp.Count)
	assert.Empty(t, resp.Suggestions)
}

func TestServerControlStatus(t *testing.T) {
	dec := runSession(t, testApp(t),
		ControlRequest{ID: "ctl_001", Action: "status"},
	)

	var resp ControlResponse
	require.NoError(t, dec.Decode(&resp))

	assert.Equal(t, "ok", resp.Status)
	assert.Greater(t, resp.Stats["totalEntries"], 0)
	assert.Equal(t, "ctrl+shift+f12", resp.Hotkeys["capture"])
}

func TestServerControlReload(t *testing.T) {
	a := testApp(t)
	dec := runSession(t, a,
		ControlRequest{ID: "ctl_002", Action: "reload"},
	)

	var resp ControlResponse
	require.NoError(t, dec.Decode(&resp))
	assert.Equal(t, "reloaded", resp.Status)
}

func TestServerQueryCommands(t *testing.T) {
	dec := runSession(t, testApp(t),
		SuggestRequest{ID: "q_1", Query: "/reload"},
		SuggestRequest{ID: "q_2", Query: "/exit"},
		// never reached: the server stops at /exit
		SuggestRequest{ID: "q_3", Query: "meet"},
	)

	var reload ControlResponse
	require.NoError(t, dec.Decode(&reload))
	assert.Equal(t, "reloaded", reload.Status)

	var exit ControlResponse
	require.NoError(t, dec.Decode(&exit))
	assert.Equal(t, "exiting", exit.Status)

	var extra SuggestResponse
	assert.Error(t, dec.Decode(&extra), "no response after exit")
}

func TestServerUnknownAction(t *testing.T) {
	dec := runSession(t, testApp(t),
		ControlRequest{ID: "ctl_003", Action: "explode"},
	)

	var resp SuggestError
	require.NoError(t, dec.Decode(&resp))
	assert.Equal(t, 400, resp.Code)
	assert.Contains(t, resp.Error, "explode")
}

package server

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/bastiangx/wordcheck/internal/logger"
	"github.com/bastiangx/wordcheck/pkg/bktree"
	"github.com/bastiangx/wordcheck/pkg/bloom"
	"github.com/bastiangx/wordcheck/pkg/config"
	"github.com/bastiangx/wordcheck/pkg/spellcheck"
)

var words = []string{"hell", "hello", "help", "hella", "world", "word"}

func newChecker(t *testing.T) *spellcheck.Checker {
	t.Helper()
	tree, err := bktree.Build(words, 5, 255)
	require.NoError(t, err)
	filter, err := bloom.FromWords(words, bloom.DefaultFPProb)
	require.NoError(t, err)
	return spellcheck.NewChecker(tree, filter, 1)
}

// run feeds requests to a server and returns the decoder over its output.
func run(t *testing.T, cfg *config.Config, requests ...any) *msgpack.Decoder {
	t.Helper()
	var in bytes.Buffer
	enc := msgpack.NewEncoder(&in)
	for _, r := range requests {
		require.NoError(t, enc.Encode(r))
	}

	var out bytes.Buffer
	srv := NewServerWithIO(newChecker(t), cfg, &in, &out)
	require.NoError(t, srv.Start())
	return msgpack.NewDecoder(&out)
}

func TestCheckRequest(t *testing.T) {
	dec := run(t, nil,
		CheckRequest{ID: "1", Word: "helo"},
		CheckRequest{ID: "2", Word: "World"},
	)

	var resp CheckResponse
	require.NoError(t, dec.Decode(&resp))
	assert.Equal(t, "1", resp.ID)
	assert.False(t, resp.Known)
	assert.Equal(t, []string{"hell", "hello", "help"}, resp.Candidates)
	assert.Equal(t, 3, resp.Count)
	assert.GreaterOrEqual(t, resp.TimeTaken, int64(0))

	require.NoError(t, dec.Decode(&resp))
	assert.Equal(t, "2", resp.ID)
	assert.True(t, resp.Known)
	assert.Empty(t, resp.Candidates)
	assert.Zero(t, resp.Count)

	var extra map[string]any
	assert.True(t, errors.Is(dec.Decode(&extra), io.EOF))
}

func TestCheckRequestTolerance(t *testing.T) {
	dec := run(t, nil,
		CheckRequest{ID: "wide", Word: "helo", Tolerance: 2},
		CheckRequest{ID: "bad", Word: "helo", Tolerance: MaxTolerance + 1},
	)

	var resp CheckResponse
	require.NoError(t, dec.Decode(&resp))
	assert.Equal(t, []string{"hell", "hella", "hello", "help"}, resp.Candidates)

	var errResp CheckError
	require.NoError(t, dec.Decode(&errResp))
	assert.Equal(t, "bad", errResp.ID)
	assert.Equal(t, 400, errResp.Code)
}

func TestCheckRequestLimit(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Check.MaxCandidates = 2
	dec := run(t, cfg, CheckRequest{ID: "1", Word: "helo"})

	var resp CheckResponse
	require.NoError(t, dec.Decode(&resp))
	assert.Equal(t, []string{"hell", "hello"}, resp.Candidates)
	assert.Equal(t, 2, resp.Count)
}

func TestCorrectRequest(t *testing.T) {
	dec := run(t, nil, CorrectRequest{ID: "c", Action: ActionCorrect, Text: "Helo  wrold!"})

	var resp CorrectResponse
	require.NoError(t, dec.Decode(&resp))
	assert.Equal(t, "c", resp.ID)
	assert.Equal(t, "Hell world!", resp.Text)
	assert.Equal(t, []Replacement{{Original: "Helo", Word: "Hell"}, {Original: "wrold", Word: "world"}}, resp.Replacements)
}

func TestStatsRequest(t *testing.T) {
	dec := run(t, nil,
		CheckRequest{ID: "1", Word: "helo"},
		StatsRequest{ID: "s", Action: ActionStats},
	)

	var skip CheckResponse
	require.NoError(t, dec.Decode(&skip))

	var resp StatsResponse
	require.NoError(t, dec.Decode(&resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, uint64(2), resp.Requests)
	assert.Equal(t, uint64(1), resp.Tokens)
	assert.Equal(t, uint64(1), resp.Misspelled)
	assert.Equal(t, len(words), resp.TreeWords)
	assert.Equal(t, 1, resp.Tolerance)
}

func TestErrors(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Server.MaxTextLength = 8
	dec := run(t, cfg,
		CheckRequest{ID: "empty"},
		StatsRequest{ID: "what", Action: "explode"},
		CheckRequest{ID: "long", Word: "abcdefghijk"},
		map[string]any{"id": 42},
		CheckRequest{ID: "after", Word: "help"},
	)

	expect := []struct {
		id   string
		code int
	}{
		{"empty", 400},
		{"what", 400},
		{"long", 413},
		{"", 400},
	}
	for _, e := range expect {
		var resp CheckError
		require.NoError(t, dec.Decode(&resp))
		assert.Equal(t, e.id, resp.ID)
		assert.Equal(t, e.code, resp.Code)
		assert.NotEmpty(t, resp.Error)
	}

	// a bad request does not end the session
	var resp CheckResponse
	require.NoError(t, dec.Decode(&resp))
	assert.Equal(t, "after", resp.ID)
	assert.True(t, resp.Known)
}

func TestFailedRequestsAreLogged(t *testing.T) {
	var in, out, logs bytes.Buffer
	require.NoError(t, msgpack.NewEncoder(&in).Encode(CheckRequest{ID: "empty"}))

	srv := NewServerWithIO(newChecker(t), nil, &in, &out)
	assert.Equal(t, "server", srv.logger.GetPrefix())
	srv.logger = logger.NewWithConfig("server", &logs, log.DebugLevel, false, false, log.TextFormatter)
	require.NoError(t, srv.Start())

	assert.Contains(t, logs.String(), "server")
	assert.Contains(t, logs.String(), `Request "empty" failed`)
}

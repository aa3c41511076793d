/*
Package server implements msgpack IPC for spell checking.

Clients write msgpack maps to stdin and read one msgpack map per request from
stdout. Every request carries an id that is echoed back. Logs go to stderr.

A word check:

	{"id": "req_001", "w": "helo"}

is answered with the known flag, the candidates within the edit distance
tolerance in alphabetical order, their count and the time taken in microseconds:

	{"id": "req_001", "k": false, "s": ["hell", "hello", "help"], "c": 3, "t": 41}

A request may lower or raise the tolerance for itself with "t", up to MaxTolerance.

Whole text correction replaces every misspelled word with its first candidate:

	{"id": "req_002", "action": "correct", "text": "Helo wrold!"}
	{"id": "req_002", "text": "Hell world!", "r": [{"o": "Helo", "w": "Hell"}, {"o": "wrold", "w": "world"}], "t": 97}

Counters and index shape:

	{"id": "req_003", "action": "stats"}

Failures come back as {"id": ..., "e": message, "c": code} with HTTP-like codes.
*/
package server

// Actions understood by the server. An empty action with a word is a check.
const (
	ActionCheck   = "check"
	ActionCorrect = "correct"
	ActionStats   = "stats"
)

// MaxTolerance bounds per-request tolerance; range queries grow quickly with it.
const MaxTolerance = 3

// Request is the union of every request shape. Fields unused by an action are ignored.
type Request struct {
	ID        string `msgpack:"id"`
	Action    string `msgpack:"action,omitempty"`
	Word      string `msgpack:"w,omitempty"`
	Tolerance int    `msgpack:"t,omitempty"`
	Text      string `msgpack:"text,omitempty"`
}

// CheckRequest - single word check
type CheckRequest struct {
	ID        string `msgpack:"id"`
	Word      string `msgpack:"w"`
	Tolerance int    `msgpack:"t,omitempty"`
}

// CheckResponse - single word check result
type CheckResponse struct {
	ID         string   `msgpack:"id"`
	Known      bool     `msgpack:"k"`
	Candidates []string `msgpack:"s"`
	Count      int      `msgpack:"c"`
	TimeTaken  int64    `msgpack:"t"`
}

// CorrectRequest - whole text correction
type CorrectRequest struct {
	ID     string `msgpack:"id"`
	Action string `msgpack:"action"`
	Text   string `msgpack:"text"`
}

// Replacement - one corrected word
type Replacement struct {
	Original string `msgpack:"o"`
	Word     string `msgpack:"w"`
}

// CorrectResponse - corrected text
type CorrectResponse struct {
	ID           string        `msgpack:"id"`
	Text         string        `msgpack:"text"`
	Replacements []Replacement `msgpack:"r"`
	TimeTaken    int64         `msgpack:"t"`
}

// StatsRequest - counters and index shape
type StatsRequest struct {
	ID     string `msgpack:"id"`
	Action string `msgpack:"action"`
}

// StatsResponse - counters and index shape
type StatsResponse struct {
	ID            string `msgpack:"id"`
	Status        string `msgpack:"status"`
	Requests      uint64 `msgpack:"requests"`
	Tokens        uint64 `msgpack:"tokens"`
	Known         uint64 `msgpack:"known"`
	Misspelled    uint64 `msgpack:"misspelled"`
	FilterRejects uint64 `msgpack:"filter_rejects"`
	TreeWords     int    `msgpack:"tree_words"`
	TreeDepth     int    `msgpack:"tree_depth"`
	MaxWordLength int    `msgpack:"max_word_length"`
	FilterBits    uint64 `msgpack:"filter_bits"`
	HashCount     uint32 `msgpack:"hash_count"`
	Tolerance     int    `msgpack:"tolerance"`
}

// CheckError holds basic error information for any request
type CheckError struct {
	ID    string `msgpack:"id"`
	Error string `msgpack:"e"`
	Code  int    `msgpack:"c"`
}

package server

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/bastiangx/wordcheck/internal/logger"
	"github.com/bastiangx/wordcheck/pkg/config"
	"github.com/bastiangx/wordcheck/pkg/spellcheck"
)

// Server handles msgpack IPC for one checker
type Server struct {
	checker      *spellcheck.Checker
	config       *config.Config
	decoder      *msgpack.Decoder
	writer       *bufio.Writer
	encoder      *msgpack.Encoder
	logger       *log.Logger
	requestCount uint64
}

// NewServer creates a server using stdin/stdout for IPC
func NewServer(checker *spellcheck.Checker, cfg *config.Config) *Server {
	return NewServerWithIO(checker, cfg, os.Stdin, os.Stdout)
}

// NewServerWithIO creates a server over arbitrary streams
func NewServerWithIO(checker *spellcheck.Checker, cfg *config.Config, r io.Reader, w io.Writer) *Server {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	bw := bufio.NewWriter(w)
	return &Server{
		checker: checker,
		config:  cfg,
		decoder: msgpack.NewDecoder(bufio.NewReader(r)),
		writer:  bw,
		encoder: msgpack.NewEncoder(bw),
		logger:  logger.New("server"),
	}
}

// Start processes requests until the input stream ends
func (s *Server) Start() error {
	s.logger.Debug("Starting msgpack server")

	for {
		raw, err := s.decoder.DecodeRaw()
		if err != nil {
			if errors.Is(err, io.EOF) {
				s.logger.Debugf("Input closed after %d requests", s.requestCount)
				return nil
			}
			s.sendError("", fmt.Sprintf("malformed request stream: %v", err), 400)
			return fmt.Errorf("failed to read request: %w", err)
		}
		s.requestCount++

		var req Request
		if err := msgpack.Unmarshal(raw, &req); err != nil {
			s.logger.Debugf("Unmarshaling request: %v", err)
			s.sendError("", fmt.Sprintf("invalid request: %v", err), 400)
			continue
		}
		s.handleRequest(req)
	}
}

func (s *Server) handleRequest(req Request) {
	switch req.Action {
	case "", ActionCheck:
		s.handleCheck(req)
	case ActionCorrect:
		s.handleCorrect(req)
	case ActionStats:
		s.handleStats(req)
	default:
		s.sendError(req.ID, fmt.Sprintf("unknown action: %s", req.Action), 400)
	}
}

func (s *Server) handleCheck(req Request) {
	if req.Word == "" {
		s.sendError(req.ID, "missing 'w' parameter", 400)
		return
	}
	if len(req.Word) > s.config.Server.MaxTextLength {
		s.sendError(req.ID, "word exceeds maximum length", 413)
		return
	}

	tolerance := s.checker.Tolerance()
	if req.Tolerance != 0 {
		if req.Tolerance < 0 || req.Tolerance > MaxTolerance {
			s.sendError(req.ID, fmt.Sprintf("tolerance must be between 0 and %d", MaxTolerance), 400)
			return
		}
		tolerance = req.Tolerance
	}

	start := time.Now()
	res := s.checker.CheckTolerance(req.Word, tolerance)
	candidates := limitCandidates(res.Candidates, s.config.Check.MaxCandidates)
	elapsed := time.Since(start)

	s.sendResponse(CheckResponse{
		ID:         req.ID,
		Known:      res.Known,
		Candidates: candidates,
		Count:      len(candidates),
		TimeTaken:  elapsed.Microseconds(),
	})
}

func (s *Server) handleCorrect(req Request) {
	if len(req.Text) > s.config.Server.MaxTextLength {
		s.sendError(req.ID, "text exceeds maximum length", 413)
		return
	}

	start := time.Now()
	out, corrections, err := s.checker.CorrectDetailed(req.Text, spellcheck.FirstCandidate)
	if err != nil {
		s.sendError(req.ID, err.Error(), 500)
		return
	}
	elapsed := time.Since(start)

	replacements := make([]Replacement, len(corrections))
	for i, c := range corrections {
		replacements[i] = Replacement{Original: c.Original, Word: c.Replacement}
	}
	s.sendResponse(CorrectResponse{
		ID:           req.ID,
		Text:         out,
		Replacements: replacements,
		TimeTaken:    elapsed.Microseconds(),
	})
}

func (s *Server) handleStats(req Request) {
	st := s.checker.Stats()
	s.sendResponse(StatsResponse{
		ID:            req.ID,
		Status:        "ok",
		Requests:      s.requestCount,
		Tokens:        st.Tokens,
		Known:         st.Known,
		Misspelled:    st.Misspelled,
		FilterRejects: st.FilterRejects,
		TreeWords:     st.TreeWords,
		TreeDepth:     st.TreeDepth,
		MaxWordLength: st.MaxWordLength,
		FilterBits:    st.FilterBits,
		HashCount:     st.HashCount,
		Tolerance:     st.Tolerance,
	})
}

// sendResponse encodes one value and flushes it so the client sees it immediately
func (s *Server) sendResponse(response any) {
	if err := s.encoder.Encode(response); err != nil {
		s.logger.Errorf("Encoding response: %v", err)
		return
	}
	if err := s.writer.Flush(); err != nil {
		s.logger.Errorf("Writing response: %v", err)
	}
}

func (s *Server) sendError(id, message string, code int) {
	s.logger.Debugf("Request %q failed: %s (%d)", id, message, code)
	s.sendResponse(CheckError{ID: id, Error: message, Code: code})
}

// limitCandidates caps the list; limit <= 0 keeps everything
func limitCandidates(candidates []string, limit int) []string {
	if candidates == nil {
		return []string{}
	}
	if limit > 0 && len(candidates) > limit {
		return candidates[:limit]
	}
	return candidates
}

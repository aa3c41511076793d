// Package cli handles terminal input for checking text line by line and for
// picking replacements out of a menu.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/bastiangx/wordcheck/pkg/spellcheck"
)

// InputHandler reads lines from a terminal and prints the misspelled words
// of each line with their candidates.
type InputHandler struct {
	checker      *spellcheck.Checker
	in           io.Reader
	out          io.Writer
	limit        int
	requestCount int
}

// NewInputHandler handles initialization of the InputHandler with basic parameters
func NewInputHandler(checker *spellcheck.Checker, in io.Reader, out io.Writer, limit int) *InputHandler {
	return &InputHandler{
		checker: checker,
		in:      in,
		out:     out,
		limit:   limit,
	}
}

// Start begins the interface loop and returns nil when input ends.
func (h *InputHandler) Start() error {
	log.Print("wordcheck interactive")
	log.Print("type some text and press Enter to check it (Ctrl+D to exit):")

	reader := bufio.NewReader(h.in)
	for {
		fmt.Fprint(h.out, "> ")
		line, err := reader.ReadString('\n')
		if line = strings.TrimSpace(line); line != "" {
			h.handleInput(line)
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func (h *InputHandler) handleInput(line string) {
	h.requestCount++
	start := time.Now()
	results := h.checker.Misspelled(line)
	log.Debugf("Took [ %v ] for line %d", time.Since(start), h.requestCount)

	if len(results) == 0 {
		fmt.Fprintln(h.out, candidateStyle.Render("no spelling errors"))
		return
	}
	for _, res := range results {
		fmt.Fprintln(h.out, FormatResult(res, h.limit))
	}
}

// FormatResult renders one misspelled token and up to limit candidates.
func FormatResult(res spellcheck.Result, limit int) string {
	candidates := res.Candidates
	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}
	if len(candidates) == 0 {
		return fmt.Sprintf("%s %s", misspelledStyle.Render(res.Token), hintStyle.Render("(no candidates)"))
	}
	styled := make([]string, len(candidates))
	for i, c := range candidates {
		styled[i] = candidateStyle.Render(c)
	}
	return fmt.Sprintf("%s -> %s", misspelledStyle.Render(res.Token), strings.Join(styled, ", "))
}

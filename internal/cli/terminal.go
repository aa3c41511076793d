package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

var (
	misspelledStyle = lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#b4637a", Dark: "#eb6f92"})
	candidateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#286983", Dark: "#9ccfd8"})
	hintStyle = lipgloss.NewStyle().Italic(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#797593", Dark: "#908caa"})
)

// maxAttempts bounds how often an invalid answer is asked again before the word is kept.
const maxAttempts = 3

// Prompter is a terminal menu that lets the user pick a replacement.
// It satisfies spellcheck.Chooser.
type Prompter struct {
	in    *bufio.Reader
	out   io.Writer
	limit int
}

// NewPrompter reads answers from in and draws the menu on out.
// At most limit candidates are listed; limit <= 0 lists all.
func NewPrompter(in io.Reader, out io.Writer, limit int) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out, limit: limit}
}

// OpenTTY returns a Prompter bound to the controlling terminal, for when
// stdin carries the text being checked.
func OpenTTY(limit int) (*Prompter, func() error, error) {
	tty, err := os.OpenFile("/dev/tty", os.O_RDWR, 0)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open terminal: %w", err)
	}
	return NewPrompter(tty, tty, limit), tty.Close, nil
}

// Choose shows the candidates for word and reads the answer: a number picks
// a candidate, 0 or an empty line keeps the word, anything else is taken as
// the replacement itself.
func (p *Prompter) Choose(word string, candidates []string) (string, error) {
	if p.limit > 0 && len(candidates) > p.limit {
		candidates = candidates[:p.limit]
	}

	fmt.Fprintf(p.out, "\n%s\n", misspelledStyle.Render(word))
	for i, c := range candidates {
		fmt.Fprintf(p.out, "  %2d) %s\n", i+1, candidateStyle.Render(c))
	}
	fmt.Fprintf(p.out, "   0) %s\n", hintStyle.Render("keep as is, or type a replacement"))

	for attempt := 0; attempt < maxAttempts; attempt++ {
		fmt.Fprint(p.out, "> ")
		line, err := p.in.ReadString('\n')
		if err != nil && line == "" {
			if err == io.EOF {
				return "", nil
			}
			return "", fmt.Errorf("failed to read choice: %w", err)
		}

		answer := strings.TrimSpace(line)
		if answer == "" {
			return "", nil
		}
		n, convErr := strconv.Atoi(answer)
		if convErr != nil {
			return answer, nil
		}
		if n == 0 {
			return "", nil
		}
		if n >= 1 && n <= len(candidates) {
			return candidates[n-1], nil
		}
		fmt.Fprintf(p.out, "%s\n", hintStyle.Render(fmt.Sprintf("pick 0-%d", len(candidates))))
	}

	log.Debugf("No valid choice for %q, keeping it", word)
	return "", nil
}

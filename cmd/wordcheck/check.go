package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/bastiangx/wordcheck/internal/cli"
	"github.com/bastiangx/wordcheck/pkg/config"
	"github.com/bastiangx/wordcheck/pkg/spellcheck"
)

const checkLongDesc string = `Check text for misspelled words.

Text comes from --file or from stdin when it is piped in. For every misspelled
word that has candidates a menu on the terminal asks for the replacement; the
corrected text is written to stdout. With --auto the first candidate is taken
without asking, with --list nothing is replaced and the misspelled words are
listed instead. --interactive checks lines as they are typed.

Example:
  wordcheck check -f notes.txt > fixed.txt
  echo "Helo wrold" | wordcheck check --auto
  wordcheck check -f notes.txt --list
  wordcheck check -i`

const checkShortDesc string = "Check a file or piped text"

type checkCommander struct {
	root *rootCommander

	file        string
	auto        bool
	list        bool
	interactive bool

	in  io.Reader
	out io.Writer
	err io.Writer
}

func NewCheckCmd(root *rootCommander) *cobra.Command {
	cmder := &checkCommander{root: root}

	cmd := &cobra.Command{
		Use:   "check",
		Short: checkShortDesc,
		Long:  checkLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmder.in = cmd.InOrStdin()
			cmder.out = cmd.OutOrStdout()
			cmder.err = cmd.ErrOrStderr()

			cfg, err := root.loadConfig(cmd)
			if err != nil {
				return err
			}
			return cmder.run(cfg)
		},
	}

	cmd.Flags().StringVarP(&cmder.file, "file", "f", "", "Path to the text to check")
	cmd.Flags().BoolVar(&cmder.auto, "auto", false, "Replace every misspelled word with its first candidate")
	cmd.Flags().BoolVarP(&cmder.list, "list", "l", false, "Only list misspelled words and their candidates")
	cmd.Flags().BoolVarP(&cmder.interactive, "interactive", "i", false, "Check lines typed on the terminal")
	cmd.MarkFlagsMutuallyExclusive("auto", "list")
	cmd.MarkFlagsMutuallyExclusive("file", "interactive")

	return cmd
}

func (c *checkCommander) run(cfg *config.Config) error {
	checker, err := spellcheck.Open(options(cfg))
	if err != nil {
		return fmt.Errorf("failed to open checker: %w", err)
	}

	if c.interactive {
		return cli.NewInputHandler(checker, c.in, c.out, cfg.Check.MaxCandidates).Start()
	}

	text, fromStdin, err := c.readInput()
	if err != nil {
		return err
	}

	if c.list {
		for _, res := range checker.Misspelled(text) {
			fmt.Fprintln(c.out, cli.FormatResult(res, cfg.Check.MaxCandidates))
		}
		return nil
	}

	chooser, closeChooser, err := c.chooser(fromStdin, cfg.Check.MaxCandidates)
	if err != nil {
		return err
	}
	defer closeChooser()

	corrected, err := checker.Correct(text, chooser)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out, corrected)
	return nil
}

// readInput returns the text from --file, or from stdin when it is not a terminal.
func (c *checkCommander) readInput() (string, bool, error) {
	if c.file != "" {
		data, err := os.ReadFile(c.file)
		if err != nil {
			return "", false, fmt.Errorf("failed to read %s: %w", c.file, err)
		}
		return strings.TrimSpace(string(data)), false, nil
	}

	if f, ok := c.in.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		return "", false, errors.New("provide a file path with --file or pipe some data in")
	}
	data, err := io.ReadAll(c.in)
	if err != nil {
		return "", true, fmt.Errorf("failed to read stdin: %w", err)
	}
	return strings.TrimSpace(string(data)), true, nil
}

// chooser picks how replacements are decided. When stdin carried the text the
// menu reads answers from the controlling terminal instead.
func (c *checkCommander) chooser(fromStdin bool, limit int) (spellcheck.Chooser, func(), error) {
	noop := func() {}
	if c.auto {
		return spellcheck.FirstCandidate, noop, nil
	}
	if !fromStdin {
		return cli.NewPrompter(c.in, c.err, limit), noop, nil
	}

	p, closeTTY, err := cli.OpenTTY(limit)
	if err != nil {
		log.Warnf("No terminal for the menu (%v), keeping misspelled words", err)
		return spellcheck.ChooserFunc(func(word string, candidates []string) (string, error) {
			fmt.Fprintln(c.err, cli.FormatResult(spellcheck.Result{Token: word, Candidates: candidates}, limit))
			return "", nil
		}), noop, nil
	}
	return p, func() { _ = closeTTY() }, nil
}

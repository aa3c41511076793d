package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/bastiangx/wordcheck/pkg/config"
	"github.com/bastiangx/wordcheck/pkg/spellcheck"
)

const buildLongDesc string = `Rebuild the BK-tree and Bloom filter from the vocabulary and write both files,
replacing whatever was there.

Example:
  wordcheck build
  wordcheck build --dict /usr/share/dict/words --tree words.tree.bin --filter words.bloom.bin`

const buildShortDesc string = "Rebuild the index files from the vocabulary"

type buildCommander struct {
	root *rootCommander
	out  io.Writer
}

func NewBuildCmd(root *rootCommander) *cobra.Command {
	cmder := &buildCommander{root: root}

	cmd := &cobra.Command{
		Use:   "build",
		Short: buildShortDesc,
		Long:  buildLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmder.out = cmd.OutOrStdout()
			cfg, err := root.loadConfig(cmd)
			if err != nil {
				return err
			}
			return cmder.run(cfg)
		},
	}

	return cmd
}

func (c *buildCommander) run(cfg *config.Config) error {
	opts := options(cfg)
	opts.Rebuild = true

	start := time.Now()
	checker, err := spellcheck.Open(opts)
	if err != nil {
		return err
	}
	st := checker.Stats()

	fmt.Fprintf(c.out, "Built %d words in %v\n", st.TreeWords, time.Since(start).Round(time.Millisecond))
	fmt.Fprintf(c.out, "  tree:   %s (max length %d, depth %d)\n", opts.TreePath, st.MaxWordLength, st.TreeDepth)
	fmt.Fprintf(c.out, "  filter: %s (%d bits, %d hashes)\n", opts.FilterPath, st.FilterBits, st.HashCount)
	return nil
}

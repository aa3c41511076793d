package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bastiangx/wordcheck/pkg/bktree"
	"github.com/bastiangx/wordcheck/pkg/bloom"
	"github.com/bastiangx/wordcheck/pkg/dictionary"
)

const infoShortDesc string = "Describe a vocabulary or index file"

const infoLongDesc string = `Detect what kind of file is given and print its shape: word counts for a
vocabulary, size and depth for a BK-tree, bit count and fill for a Bloom filter.

For a vocabulary, --has reports whether words are in it and --prefix lists the
words starting with a prefix, in file order.

Example:
  wordcheck info dictionary.txt
  wordcheck info bk_tree.bin
  wordcheck info dictionary.txt --has hello --has helo
  wordcheck info dictionary.txt --prefix hel --limit 20`

type infoCommander struct {
	has    []string
	prefix string
	limit  int
}

func NewInfoCmd() *cobra.Command {
	cmder := &infoCommander{}

	cmd := &cobra.Command{
		Use:   "info <file>",
		Short: infoShortDesc,
		Long:  infoLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.describe(cmd.OutOrStdout(), args[0])
		},
	}

	cmd.Flags().StringArrayVar(&cmder.has, "has", nil, "Report whether a word is in the vocabulary (repeatable)")
	cmd.Flags().StringVar(&cmder.prefix, "prefix", "", "List vocabulary words starting with this prefix")
	cmd.Flags().IntVar(&cmder.limit, "limit", 10, "Maximum words listed by --prefix, 0 for all")

	return cmd
}

func (c *infoCommander) lookups() bool {
	return len(c.has) > 0 || c.prefix != ""
}

func (c *infoCommander) describe(out io.Writer, path string) error {
	format, err := dictionary.DetectFileFormat(path)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s: %s\n", path, format)
	if info, ok := dictionary.GetFormatInfo(format); ok {
		fmt.Fprintf(out, "  extensions:      %s\n", extensions(info.Extensions))
	}

	if c.lookups() && format != dictionary.FormatText {
		return errors.New("--has and --prefix need a vocabulary file")
	}

	switch format {
	case dictionary.FormatText:
		v, err := dictionary.Load(path, 0)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "  words:           %d\n", v.Len())
		fmt.Fprintf(out, "  max word length: %d\n", v.MaxWordLength)
		c.lookup(out, v)
	case dictionary.FormatTree:
		t, err := bktree.Load(path)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "  words:           %d of %d slots\n", t.Len(), t.Capacity())
		fmt.Fprintf(out, "  max word length: %d\n", t.MaxWordLength)
		fmt.Fprintf(out, "  alphabet length: %d\n", t.AlphabetLength)
		fmt.Fprintf(out, "  child width:     %d\n", t.Width())
		fmt.Fprintf(out, "  depth:           %d\n", t.Depth())
	case dictionary.FormatFilter:
		f, err := bloom.Load(path)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "  bits:            %d (%d set)\n", f.Size, f.SetBits())
		fmt.Fprintf(out, "  hashes:          %d\n", f.HashCount)
		fmt.Fprintf(out, "  target fp rate:  %v\n", f.FPProb)
	}
	return nil
}

func (c *infoCommander) lookup(out io.Writer, v *dictionary.Vocabulary) {
	for _, w := range c.has {
		fmt.Fprintf(out, "  has %q: %t\n", w, v.Has(w))
	}
	if c.prefix != "" {
		words := v.WithPrefix(c.prefix, c.limit)
		fmt.Fprintf(out, "  prefix %q: %s\n", c.prefix, strings.Join(words, ", "))
	}
}

func extensions(exts []string) string {
	named := make([]string, 0, len(exts))
	for _, e := range exts {
		if e == "" {
			e = "(none)"
		}
		named = append(named, e)
	}
	return strings.Join(named, ", ")
}

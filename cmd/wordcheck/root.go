package main

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/bastiangx/wordcheck/internal/logger"
	"github.com/bastiangx/wordcheck/internal/utils"
	"github.com/bastiangx/wordcheck/pkg/config"
	"github.com/bastiangx/wordcheck/pkg/spellcheck"
)

const rootLongDesc string = `wordcheck finds misspelled words and suggests vocabulary words within a small
edit distance.

Commands:
  wordcheck check      Check a file or piped text
  wordcheck build      Rebuild the index files from the vocabulary
  wordcheck serve      Serve msgpack requests over stdin/stdout
  wordcheck info       Describe a vocabulary or index file
  wordcheck version    Show the version`

const rootShortDesc string = "wordcheck - approximate spell checking"

// rootCommander holds the flags shared by every subcommand.
type rootCommander struct {
	configPath string
	debug      bool

	dictionary string
	tree       string
	filter     string
	tolerance  int
}

func NewRootCmd() *cobra.Command {
	cmder := &rootCommander{}

	cmd := &cobra.Command{
		Use:           AppName,
		Short:         rootShortDesc,
		Long:          rootLongDesc,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			logger.SetupGlobal(cmder.debug)
		},
	}

	defaults := config.DefaultConfig()
	cmd.PersistentFlags().StringVar(&cmder.configPath, "config", "", "Path to a TOML config file")
	cmd.PersistentFlags().BoolVarP(&cmder.debug, "debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().StringVar(&cmder.dictionary, "dict", defaults.Index.Dictionary, "Vocabulary file, one word per line")
	cmd.PersistentFlags().StringVar(&cmder.tree, "tree", defaults.Index.Tree, "BK-tree index file")
	cmd.PersistentFlags().StringVar(&cmder.filter, "filter", defaults.Index.Filter, "Bloom filter index file")
	cmd.PersistentFlags().IntVarP(&cmder.tolerance, "tolerance", "t", defaults.Check.Tolerance, "Maximum edit distance of a candidate")

	cmd.AddCommand(
		NewCheckCmd(cmder),
		NewBuildCmd(cmder),
		NewServeCmd(cmder),
		NewInfoCmd(),
		NewVersionCmd(),
	)

	return cmd
}

// loadConfig reads the config file and applies the flags the user set explicitly.
func (c *rootCommander) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	pr, err := utils.NewPathResolver()
	if err != nil {
		log.Warnf("Failed to initialize path resolver: %v", err)
	}

	cfg, used, err := config.LoadConfigWithPriority(c.configPath, pr)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if used != "" {
		log.Debugf("Using config file: (%s)", utils.GetAbsolutePath(used))
	}

	flags := cmd.Flags()
	if flags.Changed("dict") {
		cfg.Index.Dictionary = c.dictionary
	}
	if flags.Changed("tree") {
		cfg.Index.Tree = c.tree
	}
	if flags.Changed("filter") {
		cfg.Index.Filter = c.filter
	}
	if flags.Changed("tolerance") {
		cfg.Check.Tolerance = c.tolerance
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cfg.Index.Dictionary = pr.ResolveFile(cfg.Index.Dictionary)
	cfg.Index.Tree = pr.ResolveFile(cfg.Index.Tree)
	cfg.Index.Filter = pr.ResolveFile(cfg.Index.Filter)
	return cfg, nil
}

// options maps the config onto the checker options.
func options(cfg *config.Config) spellcheck.Options {
	return spellcheck.Options{
		DictionaryPath: cfg.Index.Dictionary,
		TreePath:       cfg.Index.Tree,
		FilterPath:     cfg.Index.Filter,
		AlphabetLength: cfg.Index.AlphabetLength,
		FPProb:         cfg.Index.FPProb,
		Tolerance:      cfg.Check.Tolerance,
	}
}

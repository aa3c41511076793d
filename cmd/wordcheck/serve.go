package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/bastiangx/wordcheck/internal/metrics"
	"github.com/bastiangx/wordcheck/pkg/config"
	"github.com/bastiangx/wordcheck/pkg/server"
	"github.com/bastiangx/wordcheck/pkg/spellcheck"
)

const serveLongDesc string = `Serve msgpack spell check requests over stdin/stdout.

Each request is a msgpack map with an "id"; each answer is one msgpack map on
stdout. Logs go to stderr. With --metrics-addr a Prometheus scrape endpoint is
served on /metrics.

Example:
  wordcheck serve
  wordcheck serve --metrics-addr :9090`

const serveShortDesc string = "Serve msgpack requests over stdin/stdout"

type serveCommander struct {
	root        *rootCommander
	metricsAddr string
}

func NewServeCmd(root *rootCommander) *cobra.Command {
	cmder := &serveCommander{root: root}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.loadConfig(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("metrics-addr") {
				cfg.Server.MetricsAddr = cmder.metricsAddr
			}
			return cmder.run(cfg)
		},
	}

	cmd.Flags().StringVar(&cmder.metricsAddr, "metrics-addr", "", "Address for the Prometheus /metrics endpoint (disabled when empty)")

	return cmd
}

func (c *serveCommander) run(cfg *config.Config) error {
	m := metrics.New()
	opts := options(cfg)
	opts.Metrics = m

	checker, err := spellcheck.Open(opts)
	if err != nil {
		return fmt.Errorf("failed to open checker: %w", err)
	}

	if cfg.Server.MetricsAddr != "" {
		go serveMetrics(cfg.Server.MetricsAddr, m)
	}

	showStartupInfo(cfg, checker)
	return server.NewServer(checker, cfg).Start()
}

func serveMetrics(addr string, m *metrics.Metrics) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	log.Debugf("Serving metrics on %s/metrics", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Errorf("Metrics server stopped: %v", err)
	}
}

// showStartupInfo displays some basic info about the init process on stderr.
func showStartupInfo(cfg *config.Config, checker *spellcheck.Checker) {
	currentLevel := log.GetLevel()
	log.SetLevel(log.InfoLevel)
	defer log.SetLevel(currentLevel)

	st := checker.Stats()
	fmt.Fprintln(os.Stderr, "===========")
	fmt.Fprintln(os.Stderr, " WordCheck ")
	fmt.Fprintln(os.Stderr, "===========")
	log.Infof("Version: %s", Version)
	log.Infof("Process ID: [ %d ]", os.Getpid())
	log.Infof("words: %d, tolerance: %d", st.TreeWords, st.Tolerance)
	log.Infof("tree: ( %s )", cfg.Index.Tree)
	log.Infof("filter: ( %s )", cfg.Index.Filter)
	if cfg.Server.MetricsAddr != "" {
		log.Infof("metrics: ( %s/metrics )", cfg.Server.MetricsAddr)
	}
	log.Info("status: ready")
	fmt.Fprintln(os.Stderr, "===========")
}

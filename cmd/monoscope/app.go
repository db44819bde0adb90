package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"monoscope/internal/config"
	"monoscope/internal/discovery"
	"monoscope/internal/extract"
	"monoscope/internal/index"
	"monoscope/internal/logging"
	"monoscope/internal/query"
	"monoscope/internal/report"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// options holds the persistent flags.
type options struct {
	root       string
	configPath string
	asJSON     bool
	verbose    bool

	// logger overrides the process logger; tests inject a buffer logger.
	logger *logging.AppLogger
}

// app is everything a subcommand needs, built once per invocation.
type app struct {
	cfg    config.Config
	index  *index.Index
	engine *query.Engine
	logger *logging.AppLogger
}

// settings layers the config file, environment and flags, in that order.
func (o *options) settings() (config.Settings, error) {
	var (
		s   config.Settings
		err error
	)
	if o.configPath != "" {
		s, err = config.LoadFrom(o.configPath)
	} else {
		s, err = config.Load()
	}
	if err != nil {
		return config.Settings{}, err
	}

	config.ApplyEnv(&s)
	if o.root != "" {
		s.Root = o.root
	}
	if s.Root == "" {
		if wd, err := os.Getwd(); err == nil {
			s.Root = wd
		}
	}
	return s, nil
}

func (o *options) build() (*app, error) {
	s, err := o.settings()
	if err != nil {
		return nil, err
	}
	cfg, err := config.New(s)
	if err != nil {
		return nil, err
	}

	logger := o.logger
	if logger == nil {
		logger = logging.NewAppLogger()
		if o.verbose {
			logger.SetVerbose()
		}
	}

	x := extract.New(cfg)
	ix := index.New(cfg.Root(), discovery.New(cfg, x, logger), logger)
	return &app{
		cfg:    cfg,
		index:  ix,
		engine: query.New(ix, cfg, x, logger),
		logger: logger,
	}, nil
}

// loaded builds the app and populates the index.
func (o *options) loaded() (*app, error) {
	a, err := o.build()
	if err != nil {
		return nil, err
	}
	if err := a.index.EnsureLoaded(); err != nil {
		return nil, err
	}
	return a, nil
}

// terminalWidth is the width of w when it is a terminal, else 0.
func terminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return 0
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return width
}

func isTerminal(w io.Writer) bool {
	return terminalWidth(w) > 0
}

func (o *options) renderer(cmd *cobra.Command) *report.Renderer {
	out := cmd.OutOrStdout()
	if !isTerminal(out) {
		return report.Plain()
	}
	return report.NewRenderer(out).WithWidth(terminalWidth(out))
}

// emit writes v as indented JSON when --json is set, else the text form.
func (o *options) emit(cmd *cobra.Command, v any, text func(*report.Renderer) string) error {
	out := cmd.OutOrStdout()
	if o.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	_, err := fmt.Fprint(out, text(o.renderer(cmd)))
	return err
}

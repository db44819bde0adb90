package main

import (
	"errors"
	"fmt"
	"time"

	"monoscope/internal/catalog"
	"monoscope/internal/config"
	"monoscope/internal/extract"
	"monoscope/internal/index"
	"monoscope/internal/mcp"
	"monoscope/internal/query"
	"monoscope/internal/report"
	"monoscope/pkg/fileops"

	"github.com/spf13/cobra"
)

func newRootCmd(o *options) *cobra.Command {
	if o == nil {
		o = &options{}
	}

	root := &cobra.Command{
		Use:           "monoscope",
		Short:         "Index a PHP monorepo and inspect its packages",
		Long:          "monoscope discovers Composer packages under category directories of a monorepo and answers structural questions about them, as an MCP server or from the command line.",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	root.PersistentFlags().StringVar(&o.root, "root", "", "monorepo root (default: config file, $"+config.EnvRoot+", or the working directory)")
	root.PersistentFlags().StringVar(&o.configPath, "config", "", "config file (default: "+config.ConfigPath()+")")
	root.PersistentFlags().BoolVar(&o.asJSON, "json", false, "print results as JSON")
	root.PersistentFlags().BoolVarP(&o.verbose, "verbose", "v", false, "log progress to stderr")

	root.AddCommand(
		serveCmd(o),
		listCmd(o),
		showCmd(o),
		searchCmd(o),
		traitsCmd(o),
		relationsCmd(o),
		auditCmd(o),
		healthCmd(o),
		compareCmd(o),
		coverageCmd(o),
		configCmd(o),
	)
	return root
}

// notFound maps unknown identifiers onto the user-facing message.
func notFound(err error, name string) error {
	switch {
	case errors.Is(err, index.ErrPackageNotFound):
		return errors.New(report.NotFound("Package", name))
	case errors.Is(err, query.ErrModelNotFound):
		return errors.New(report.NotFound("Model", name))
	default:
		return err
	}
}

func serveCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the package index over MCP on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := o.build()
			if err != nil {
				return err
			}
			return mcp.NewServer(a.cfg, a.index, a.engine, a.logger).Start()
		},
	}
}

func listCmd(o *options) *cobra.Command {
	var category, kind string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List packages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			k := catalog.Kind(kind)
			if k != "" && !k.Valid() {
				return fmt.Errorf("unknown kind %q", kind)
			}
			a, err := o.loaded()
			if err != nil {
				return err
			}
			ss := a.engine.List(query.ListFilter{Category: category, Kind: k})
			return o.emit(cmd, ss, func(r *report.Renderer) string { return r.Summaries(ss) })
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "only packages in this category")
	cmd.Flags().StringVar(&kind, "kind", "", "only packages of this kind")
	return cmd
}

func showCmd(o *options) *cobra.Command {
	var readme bool
	cmd := &cobra.Command{
		Use:   "show <package>",
		Short: "Show a package description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := o.loaded()
			if err != nil {
				return err
			}
			p, err := a.engine.Lookup(args[0])
			if err != nil {
				return notFound(err, args[0])
			}
			if readme {
				return showReadme(cmd, a, p)
			}
			return o.emit(cmd, p, func(r *report.Renderer) string { return r.Package(p) })
		},
	}
	cmd.Flags().BoolVar(&readme, "readme", false, "render the package README instead")
	return cmd
}

func showReadme(cmd *cobra.Command, a *app, p catalog.PackageDescription) error {
	path := extract.In(p.RootPath, extract.DefaultLayout.Readme)
	doc, err := fileops.ReadTextFile(path, a.cfg.MaxFileSize())
	if err != nil {
		return fmt.Errorf("package %s has no readable README: %w", p.Name, err)
	}

	out := cmd.OutOrStdout()
	style := "notty"
	if isTerminal(out) {
		style = report.DetectStyle(200 * time.Millisecond)
	}
	rendered, err := report.Markdown(doc, style, terminalWidth(out))
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(out, rendered)
	return err
}

func searchCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search package names, models, traits and UI components",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := o.loaded()
			if err != nil {
				return err
			}
			ms, err := a.engine.Search(args[0])
			if err != nil {
				return err
			}
			return o.emit(cmd, ms, func(r *report.Renderer) string { return r.Matches(args[0], ms) })
		},
	}
}

func traitsCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "traits <trait>",
		Short: "Find model files using a trait",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := o.loaded()
			if err != nil {
				return err
			}
			us, err := a.engine.FindTraitUsages(args[0])
			if err != nil {
				return err
			}
			return o.emit(cmd, us, func(r *report.Renderer) string { return r.TraitUsages(args[0], us) })
		},
	}
}

func relationsCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "relations <model>",
		Short: "Show a model's associations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := o.loaded()
			if err != nil {
				return err
			}
			rels, err := a.engine.Relationships(args[0])
			if err != nil {
				return notFound(err, args[0])
			}
			return o.emit(cmd, rels, func(r *report.Renderer) string { return r.Relationships(rels) })
		},
	}
}

func auditCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "audit <package>",
		Short: "Score a CRUD package against the package standard",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := o.loaded()
			if err != nil {
				return err
			}
			rep, err := a.engine.Audit(args[0])
			if err != nil {
				return notFound(err, args[0])
			}
			return o.emit(cmd, rep, func(r *report.Renderer) string { return r.Audit(rep) })
		},
	}
}

func healthCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "health <package>",
		Short: "Run structural health checks on a package",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := o.loaded()
			if err != nil {
				return err
			}
			h, err := a.engine.Health(args[0])
			if err != nil {
				return notFound(err, args[0])
			}
			return o.emit(cmd, h, func(r *report.Renderer) string { return r.Health(h) })
		},
	}
}

func compareCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "compare <package> <package>",
		Short: "Compare two packages",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := o.loaded()
			if err != nil {
				return err
			}
			for _, name := range args {
				if _, err := a.engine.Lookup(name); err != nil {
					return notFound(err, name)
				}
			}
			c, err := a.engine.Compare(args[0], args[1])
			if err != nil {
				return err
			}
			return o.emit(cmd, c, func(r *report.Renderer) string { return r.Compare(c) })
		},
	}
}

func coverageCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "coverage <package>",
		Short: "Inspect a package's tests",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := o.loaded()
			if err != nil {
				return err
			}
			c, err := a.engine.Coverage(args[0])
			if err != nil {
				return notFound(err, args[0])
			}
			return o.emit(cmd, c, func(r *report.Renderer) string { return r.Coverage(c) })
		},
	}
}

func configCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the configuration file",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := o.configPath
			if path == "" {
				path = config.ConfigPath()
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), path)
			return err
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write a config file with the default conventions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := o.configPath
			if path == "" {
				path = config.ConfigPath()
			}
			if fileops.Exists(path) {
				return fmt.Errorf("config file already exists: %s", path)
			}

			s := config.DefaultSettings()
			s.Root = o.root
			if _, err := config.New(s); err != nil {
				return err
			}
			if err := s.SaveTo(path); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return err
		},
	})
	return cmd
}

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/bobmcallan/lexicon/internal/app"
	"github.com/bobmcallan/lexicon/internal/catalog"
	"github.com/bobmcallan/lexicon/internal/common"
	"github.com/bobmcallan/lexicon/internal/models"
	"github.com/bobmcallan/lexicon/internal/render"
	"github.com/bobmcallan/lexicon/internal/storage"
)

// cli holds global flags and the lazily built App.
type cli struct {
	configPath string
	serverURL  string
	verbose    bool
	noColor    bool

	app *app.App
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:           "lexicon",
		Short:         "Browse the AI glossary from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.app != nil {
				c.app.Close()
			}
		},
	}
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "path to lexicon.toml")
	root.PersistentFlags().StringVar(&c.serverURL, "server", os.Getenv("LEXICON_SERVER_URL"), "lexicon-server URL for example and request commands (default: run locally)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "log to stderr")
	root.PersistentFlags().BoolVar(&c.noColor, "no-color", false, "disable colour output")

	root.AddCommand(
		c.searchCmd(),
		c.showCmd(),
		c.categoriesCmd(),
		c.exampleCmd(),
		c.requestCmd(),
		c.exportCmd(),
		c.versionCmd(),
	)
	return root
}

// loadApp builds the App once. Analytics is always off for the CLI.
func (c *cli) loadApp() (*app.App, error) {
	if c.app != nil {
		return c.app, nil
	}
	cfg, err := common.LoadConfig(app.ResolveConfigPath(c.configPath))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg.Analytics.Provider = "none"

	logger := common.NewSilentLogger()
	if c.verbose {
		logger = common.NewLogger("debug")
	}

	a, err := app.NewAppWithConfig(cfg, logger)
	if err != nil {
		return nil, err
	}
	c.app = a
	return a, nil
}

func (c *cli) styles() styles {
	return newStyles(!c.noColor)
}

func (c *cli) searchCmd() *cobra.Command {
	var mode, category, sortOrder string
	var group bool

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search, filter and sort terms",
		Example: `  lexicon search token
  lexicon search --mode interactive
  lexicon search --group`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.loadApp()
			if err != nil {
				return err
			}

			m, err := models.ParseViewModeGrouped(mode, group)
			if err != nil {
				return err
			}
			s, err := models.ParseSortOrder(sortOrder, "")
			if err != nil {
				return err
			}

			state := models.ViewState{Search: strings.Join(args, " "), Mode: m, Sort: s}
			if category != "" {
				state = state.WithCategory(category)
			}

			terms := a.Catalog.Terms()
			st := c.styles()
			out := cmd.OutOrStdout()
			fmt.Fprint(out, formatTermList(a.BrowseService.Query(terms, state), st))
			fmt.Fprint(out, formatModeCounts(a.BrowseService.ModeCounts(terms, state), st))
			return nil
		},
	}
	cmd.Flags().StringVarP(&mode, "mode", "m", "", "view mode: all, interactive, guides, category")
	cmd.Flags().StringVarP(&category, "category", "c", "", "only terms in this category")
	cmd.Flags().StringVarP(&sortOrder, "sort", "s", "", "order: name or category")
	cmd.Flags().BoolVarP(&group, "group", "g", false, "group by category")
	return cmd
}

func (c *cli) showCmd() *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one term",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.loadApp()
			if err != nil {
				return err
			}

			term, ok := a.Catalog.Term(args[0])
			if !ok {
				msg := fmt.Sprintf("term %q not found", args[0])
				if s := a.BrowseService.Suggestions(a.Catalog.Names(), args[0], 3); len(s) > 0 {
					msg += "; did you mean: " + strings.Join(s, ", ")
				}
				return fmt.Errorf("%s", msg)
			}

			md := formatTermMarkdown(term, a.ToolService.DescribeAll(term.InteractiveTools))
			return c.printMarkdown(cmd.OutOrStdout(), md, raw)
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "print markdown without terminal rendering")
	return cmd
}

func (c *cli) categoriesCmd() *cobra.Command {
	var chartPath, mode, query string

	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List categories with term counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.loadApp()
			if err != nil {
				return err
			}
			m, err := models.ParseViewMode(mode)
			if err != nil {
				return err
			}

			counts := a.BrowseService.CategoryCounts(a.Catalog.Terms(), models.ViewState{Search: query, Mode: m})
			fmt.Fprint(cmd.OutOrStdout(), formatCategoryCounts(counts, c.styles()))

			if chartPath != "" {
				png, err := render.RenderCategoryChart(counts)
				if err != nil {
					return err
				}
				if err := storage.WriteFile(chartPath, png, 0o644); err != nil {
					return fmt.Errorf("failed to write chart: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Chart written to %s\n", chartPath)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&chartPath, "chart", "", "also write a PNG bar chart to this path")
	cmd.Flags().StringVarP(&mode, "mode", "m", "", "count only terms shown in this view mode")
	cmd.Flags().StringVarP(&query, "query", "q", "", "count only terms matching this search")
	return cmd
}

func (c *cli) exampleCmd() *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "example <term>",
		Short: "Generate a practical usage example for a term",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			term := strings.Join(args, " ")

			var result *models.ExampleResult
			var err error
			if c.serverURL != "" {
				result, err = NewServerProxy(c.serverURL).GenerateExample(cmd.Context(), term)
			} else {
				a, loadErr := c.loadApp()
				if loadErr != nil {
					return loadErr
				}
				result, err = a.ExampleService.Generate(cmd.Context(), term)
			}
			if err != nil {
				return err
			}
			return c.printMarkdown(cmd.OutOrStdout(), fmt.Sprintf("# %s\n\n%s\n", result.Term, result.Example), raw)
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "print markdown without terminal rendering")
	return cmd
}

func (c *cli) requestCmd() *cobra.Command {
	var req models.TermRequest

	cmd := &cobra.Command{
		Use:   "request",
		Short: "Request a new term",
		Long: `Request a new glossary term. Without --name an interactive form is shown.
With --server the request is sent to lexicon-server; otherwise it is validated
locally and an email draft link is printed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(req.TermName) == "" {
				if err := requestForm(&req).RunWithContext(cmd.Context()); err != nil {
					return err
				}
			}

			var result *models.SubmissionResult
			var err error
			if c.serverURL != "" {
				result, err = NewServerProxy(c.serverURL).SubmitTermRequest(cmd.Context(), req)
			} else {
				a, loadErr := c.loadApp()
				if loadErr != nil {
					return loadErr
				}
				result, err = a.TermRequestService.Submit(cmd.Context(), req)
			}
			if err != nil {
				return err
			}
			if !result.Success {
				return fmt.Errorf("%s", result.Message)
			}
			fmt.Fprint(cmd.OutOrStdout(), formatSubmission(result))
			return nil
		},
	}
	cmd.Flags().StringVar(&req.TermName, "name", "", "term name")
	cmd.Flags().StringVar(&req.SimpleDefinition, "definition", "", "simple definition")
	cmd.Flags().StringVar(&req.Elaboration, "elaboration", "", "elaboration")
	cmd.Flags().StringVar(&req.WhyItMatters, "why", "", "why it matters")
	cmd.Flags().StringVar(&req.InteractiveToolName, "tool-name", "", "interactive tool name")
	cmd.Flags().StringVar(&req.InteractiveToolURL, "tool-url", "", "interactive tool URL")
	cmd.Flags().StringVar(&req.InteractiveToolDescription, "tool-description", "", "interactive tool description")
	return cmd
}

// requestForm builds the interactive term request form.
func requestForm(req *models.TermRequest) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Term name").
				Value(&req.TermName).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("term name is required")
					}
					return nil
				}),
			huh.NewText().Title("Simple definition").Value(&req.SimpleDefinition),
			huh.NewText().Title("Elaboration").Value(&req.Elaboration),
			huh.NewText().Title("Why it matters").Value(&req.WhyItMatters),
		),
		huh.NewGroup(
			huh.NewNote().Title("Interactive tool").Description("Optional. Leave blank to skip."),
			huh.NewInput().Title("Tool name").Value(&req.InteractiveToolName),
			huh.NewInput().Title("Tool URL").Value(&req.InteractiveToolURL),
			huh.NewText().Title("Tool description").Value(&req.InteractiveToolDescription),
		),
	)
}

func (c *cli) exportCmd() *cobra.Command {
	var dir, format string
	var prune bool

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the catalog to a directory",
		Long: `Write the catalog to --dir. Format md writes one markdown page per term;
json and yaml write a single catalog file that lexicon-server can load.`,
		Example: `  lexicon export --dir site/terms
  lexicon export --dir out --format yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.loadApp()
			if err != nil {
				return err
			}

			switch format {
			case "md", "markdown":
				n, removed, err := exportMarkdown(a, dir, prune)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %d terms to %s", n, dir)
				if removed > 0 {
					fmt.Fprintf(cmd.OutOrStdout(), " (%d stale removed)", removed)
				}
				fmt.Fprintln(cmd.OutOrStdout())
				return nil
			case "json", "yaml":
				path, err := exportCatalog(a, dir, catalog.Format(format))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Catalog written to %s\n", path)
				return nil
			default:
				return fmt.Errorf("unknown export format %q (want md, json or yaml)", format)
			}
		},
	}
	cmd.Flags().StringVarP(&dir, "dir", "d", "export", "output directory")
	cmd.Flags().StringVarP(&format, "format", "f", "md", "md, json or yaml")
	cmd.Flags().BoolVar(&prune, "prune", false, "remove pages for terms no longer in the catalog (md only)")
	return cmd
}

// exportMarkdown writes one page per term and reports how many were written
// and pruned.
func exportMarkdown(a *app.App, dir string, prune bool) (int, int, error) {
	out, err := storage.NewExportDir(a.Logger, dir, ".md")
	if err != nil {
		return 0, 0, err
	}

	terms := a.Catalog.Terms()
	ids := make([]string, 0, len(terms))
	for _, t := range terms {
		md := formatTermMarkdown(t, a.ToolService.DescribeAll(t.InteractiveTools))
		if _, err := out.Write(t.ID, []byte(md)); err != nil {
			return 0, 0, err
		}
		ids = append(ids, t.ID)
	}

	removed := 0
	if prune {
		if removed, err = out.Prune(ids); err != nil {
			return len(ids), 0, err
		}
	}
	return len(ids), removed, nil
}

// exportCatalog writes catalog.json or catalog.yaml under dir.
func exportCatalog(a *app.App, dir string, format catalog.Format) (string, error) {
	data, err := a.Catalog.Encode(format)
	if err != nil {
		return "", err
	}
	out, err := storage.NewExportDir(a.Logger, dir, "."+string(format))
	if err != nil {
		return "", err
	}
	return out.Write("catalog", data)
}

func (c *cli) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), common.CurrentBuild())
		},
	}
}

// printMarkdown renders markdown for the terminal with glamour, or prints it
// as-is when raw is set.
func (c *cli) printMarkdown(w io.Writer, md string, raw bool) error {
	if raw {
		_, err := io.WriteString(w, md)
		return err
	}

	opts := []glamour.TermRendererOption{glamour.WithWordWrap(80)}
	if c.noColor {
		opts = append(opts, glamour.WithStandardStyle("notty"))
	} else {
		opts = append(opts, glamour.WithAutoStyle())
	}
	renderer, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	out, err := renderer.Render(md)
	if err != nil {
		return fmt.Errorf("failed to render markdown: %w", err)
	}
	_, err = io.WriteString(w, out)
	return err
}

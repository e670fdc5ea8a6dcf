package checkcmd

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/bundlecheck/internal/bundle"
	"github.com/lehigh-university-libraries/bundlecheck/internal/catalog"
	"github.com/lehigh-university-libraries/bundlecheck/internal/titles"
	"github.com/lehigh-university-libraries/bundlecheck/internal/volumes"
)

// NewExpandCmd creates the expand command
func NewExpandCmd(g *Globals) *cobra.Command {
	var entriesPath string
	var maxSpan int

	cmd := &cobra.Command{
		Use:     "expand",
		Short:   "Split multi-volume listings into one entry per volume",
		Example: `  bundlecheck expand --entries bundle.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.setup(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("max-span") {
				cfg.Matching.MaxVolumeSpan = maxSpan
			}

			page, err := bundle.LoadPage(entriesPath)
			if err != nil {
				return fmt.Errorf("failed to load entries: %w", err)
			}

			page.Books = volumes.Expander{MaxSpan: cfg.Matching.MaxVolumeSpan}.Expand(page.Books)
			return writeJSON(cmd.OutOrStdout(), page)
		},
	}

	cmd.Flags().StringVar(&entriesPath, "entries", "", "Path to scraped entries (.json or .jsonl)")
	cmd.Flags().IntVar(&maxSpan, "max-span", 0, "Largest volume range to expand (0 for no limit)")
	_ = cmd.MarkFlagRequired("entries")

	return cmd
}

// NewNormalizeCmd creates the normalize command, which shows the match
// keys computed for each title
func NewNormalizeCmd(g *Globals) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "normalize TITLE...",
		Short:   "Show the strict, advanced and subtitle-stripped forms of titles",
		Example: `  bundlecheck normalize "The World's Greatest Detective, Vol. 1" "Detective Stories Book One"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := g.setup(cmd); err != nil {
				return err
			}

			type row struct {
				Title string `json:"title"`
				titles.NormalizedTitle
			}
			rows := make([]row, 0, len(args))
			for _, arg := range args {
				rows = append(rows, row{Title: arg, NormalizedTitle: titles.Forms(arg)})
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), rows)
			}

			tw := table.NewWriter()
			tw.SetOutputMirror(cmd.OutOrStdout())
			tw.SetStyle(table.StyleRounded)
			tw.AppendHeader(table.Row{"Title", "Strict", "Advanced", "Subtitle Stripped"})
			for _, r := range rows {
				tw.AppendRow(table.Row{r.Title, r.Strict, r.Advanced, r.Subtitle})
			}
			tw.Render()
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")

	return cmd
}

// NewParseCmd creates the parse command for saved storefront pages
func NewParseCmd(g *Globals) *cobra.Command {
	var htmlPath string
	var outputPath string

	cmd := &cobra.Command{
		Use:   "parse",
		Short: "Extract entries from a saved storefront page",
		Long: `Extract entries from a saved storefront page using the selectors in the
configuration file. The result can be passed to check --entries.`,
		Example: `  bundlecheck parse --config bundlecheck.yaml --html bundle.html --output bundle.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.setup(cmd)
			if err != nil {
				return err
			}

			file, err := os.Open(htmlPath)
			if err != nil {
				return fmt.Errorf("failed to open page: %w", err)
			}
			defer file.Close()

			page, err := bundle.ParseHTML(file, cfg.Selectors)
			if err != nil {
				return fmt.Errorf("failed to parse page %s: %w", htmlPath, err)
			}

			if outputPath == "" {
				return writeJSON(cmd.OutOrStdout(), page)
			}
			if err := page.Save(outputPath); err != nil {
				return err
			}
			slog.Info("Saved entries", "path", outputPath, "entries", len(page.Books))
			return nil
		},
	}

	cmd.Flags().StringVar(&htmlPath, "html", "", "Path to the saved page")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write entries JSON to this file instead of stdout")
	_ = cmd.MarkFlagRequired("html")

	return cmd
}

// NewCatalogCmd creates the catalog command, which summarizes what the
// configured catalogs contain
func NewCatalogCmd(g *Globals) *cobra.Command {
	var catalogs []string

	cmd := &cobra.Command{
		Use:     "catalog",
		Short:   "Show per-bundle title counts of the owned catalogs",
		Example: `  bundlecheck catalog --catalog humble.json --catalog owned.parquet`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.setup(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("catalog") {
				cfg.Catalogs = catalogs
			}

			records := catalog.NewLoader(cfg.DefaultBundle).LoadAll(cfg.Catalogs)
			index := catalog.NewBuilder().AddAll(records).Build()

			tw := table.NewWriter()
			tw.SetOutputMirror(cmd.OutOrStdout())
			tw.SetStyle(table.StyleRounded)
			tw.AppendHeader(table.Row{"Bundle", "Titles"})
			for _, s := range index.Stats() {
				tw.AppendRow(table.Row{s.Bundle, strconv.Itoa(s.Titles)})
			}
			tw.AppendFooter(table.Row{"Total", strconv.Itoa(index.Len())})
			tw.Render()
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&catalogs, "catalog", nil, "Owned catalog file; repeatable")

	return cmd
}

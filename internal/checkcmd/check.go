package checkcmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/bundlecheck/internal/bundle"
	"github.com/lehigh-university-libraries/bundlecheck/internal/catalog"
	"github.com/lehigh-university-libraries/bundlecheck/internal/config"
	"github.com/lehigh-university-libraries/bundlecheck/internal/ownership"
	"github.com/lehigh-university-libraries/bundlecheck/internal/report"
	"github.com/lehigh-university-libraries/bundlecheck/internal/volumes"
)

// NewCheckCmd creates the check command: load entries, expand volume
// ranges, index the owned catalogs, classify and report
func NewCheckCmd(g *Globals) *cobra.Command {
	var entriesPath string
	var htmlPath string
	var catalogs []string
	var format string
	var outputPath string
	var threshold float64
	var workers int

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check which titles of a bundle are already owned",
		Long: `Check each title of a scraped bundle against one or more owned catalogs.

Multi-volume listings such as "Saga Vols. 1-3" are split into one entry per
volume first. Every entry is then matched by strict title, by a looser
normalized title, and finally by fuzzy similarity with an author cross-check.`,
		Example: `  # Check a scraped bundle against two catalogs
  bundlecheck check --entries bundle.json --catalog humble.json --catalog fanatical.json

  # Check a saved page using selectors from bundlecheck.yaml, as a table
  bundlecheck check --html bundle.html --format table

  # Write the classic plain text list to a file
  bundlecheck check --entries bundle.json --output book_titles.txt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.setup(cmd)
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("catalog") {
				cfg.Catalogs = catalogs
			}
			if flags.Changed("format") {
				cfg.Output.Format = format
			}
			if flags.Changed("output") {
				cfg.Output.Path = outputPath
			}
			if flags.Changed("threshold") {
				cfg.Matching.FuzzyThreshold = threshold
			}
			if flags.Changed("workers") {
				cfg.Matching.Workers = workers
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			page, err := loadEntries(cfg, entriesPath, htmlPath)
			if err != nil {
				return err
			}

			return executeCheck(cmd, cfg, page)
		},
	}

	cmd.Flags().StringVar(&entriesPath, "entries", "", "Path to scraped entries (.json or .jsonl)")
	cmd.Flags().StringVar(&htmlPath, "html", "", "Path to a saved storefront page, parsed with the configured selectors")
	cmd.Flags().StringArrayVar(&catalogs, "catalog", nil, "Owned catalog file (.json, .json5, .jsonl, .parquet); repeatable")
	cmd.Flags().StringVar(&format, "format", "text", "Report format (text, json, yaml, table, csv)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write the report to this file instead of stdout")
	cmd.Flags().Float64Var(&threshold, "threshold", ownership.DefaultThreshold, "Minimum fuzzy score, 0 to 100")
	cmd.Flags().IntVar(&workers, "workers", 4, "Number of entries classified concurrently")
	cmd.MarkFlagsOneRequired("entries", "html")
	cmd.MarkFlagsMutuallyExclusive("entries", "html")

	return cmd
}

func loadEntries(cfg *config.Config, entriesPath, htmlPath string) (bundle.Page, error) {
	if entriesPath != "" {
		page, err := bundle.LoadPage(entriesPath)
		if err != nil {
			return bundle.Page{}, fmt.Errorf("failed to load entries: %w", err)
		}
		return page, nil
	}

	file, err := os.Open(htmlPath)
	if err != nil {
		return bundle.Page{}, fmt.Errorf("failed to open page: %w", err)
	}
	defer file.Close()

	page, err := bundle.ParseHTML(file, cfg.Selectors)
	if err != nil {
		return bundle.Page{}, fmt.Errorf("failed to parse page %s: %w", htmlPath, err)
	}
	return page, nil
}

func executeCheck(cmd *cobra.Command, cfg *config.Config, page bundle.Page) error {
	runID := uuid.New()
	slog.Info("Starting ownership check",
		"run_id", runID,
		"bundle", page.BundleTitle,
		"entries", len(page.Books),
		"catalogs", len(cfg.Catalogs))

	expanded := volumes.Expander{MaxSpan: cfg.Matching.MaxVolumeSpan}.Expand(page.Books)
	if len(expanded) != len(page.Books) {
		slog.Info("Expanded volume ranges", "before", len(page.Books), "after", len(expanded))
	}

	if len(cfg.Catalogs) == 0 {
		slog.Warn("No catalogs configured, every title will be reported as not owned")
	}
	records := catalog.NewLoader(cfg.DefaultBundle).LoadAll(cfg.Catalogs)
	index := catalog.NewBuilder().AddAll(records).Build()
	slog.Info("Catalog index built", "titles", index.Len(), "bundles", len(index.Stats()))

	classifier := ownership.NewClassifier(index,
		ownership.WithThreshold(cfg.Matching.FuzzyThreshold),
		ownership.WithWorkers(cfg.Matching.Workers))

	classified, err := classifier.ClassifyAll(cmd.Context(), expanded)
	if err != nil {
		return err
	}

	rep := report.Build(runID, page.BundleTitle, classified)
	slog.Info("Ownership check complete",
		"total", rep.Summary.Total,
		"owned", rep.Summary.Owned,
		"probably_owned", rep.Summary.ProbablyOwned,
		"maybe_owned", rep.Summary.MaybeOwned,
		"not_owned", rep.Summary.NotOwned)

	format, err := report.ParseFormat(cfg.Output.Format)
	if err != nil {
		return err
	}

	if cfg.Output.Path != "" {
		if err := rep.Save(cfg.Output.Path, format); err != nil {
			return err
		}
		slog.Info("Report saved", "path", cfg.Output.Path, "format", format)
		return nil
	}

	out := cmd.OutOrStdout()
	return rep.Write(out, format, report.Options{Colorize: shouldColorize(out)})
}

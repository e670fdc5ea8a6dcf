package report

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/lehigh-university-libraries/bundlecheck/internal/models"
)

// sections are listed after the per-title lines, in this order
var sections = []struct {
	status models.OwnershipStatus
	header string
}{
	{models.ProbablyOwned, "--- Probably Owned ---"},
	{models.MaybeOwned, "--- Maybe Owned ---"},
	{models.NotOwned, "--- Suspected Not Owned ---"},
}

func (r Report) writeText(w io.Writer) error {
	bw := bufio.NewWriter(w)

	for _, b := range r.Books {
		fmt.Fprintf(bw, "%s%s\n", b.Title, b.OwnershipStatus.Marker())
	}
	fmt.Fprintf(bw, "\nTotal books: %d\n", len(r.Books))

	for _, section := range sections {
		if r.Summary.Count(section.status) == 0 {
			continue
		}
		fmt.Fprintf(bw, "\n%s\n", section.header)
		for _, b := range r.Books {
			if b.OwnershipStatus == section.status {
				fmt.Fprintln(bw, b.Title)
			}
		}
	}

	return bw.Flush()
}

var statusColors = map[models.OwnershipStatus]text.Colors{
	models.Owned:         {text.FgGreen},
	models.ProbablyOwned: {text.FgCyan},
	models.MaybeOwned:    {text.FgYellow},
	models.NotOwned:      {text.FgRed},
}

func (r Report) writeTable(w io.Writer, colorize bool) error {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleRounded)
	if r.BundleTitle != "" {
		tw.SetTitle("%s", r.BundleTitle)
	}

	tw.AppendHeader(table.Row{"#", "Title", "Status", "Matched Bundles"})
	for i, b := range r.Books {
		status := b.OwnershipStatus.String()
		if colorize {
			status = statusColors[b.OwnershipStatus].Sprint(status)
		}
		tw.AppendRow(table.Row{i + 1, b.Title, status, bundleNames(b.MatchedBundles)})
	}

	tw.AppendFooter(table.Row{"", "Total", r.Summary.Total, summaryLine(r.Summary)})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 2, WidthMax: 60},
		{Number: 4, WidthMax: 50},
	})

	tw.Render()
	return nil
}

func (r Report) writeCSV(w io.Writer) error {
	writer := csv.NewWriter(w)

	if err := writer.Write([]string{"title", "authors", "format", "price", "ownership_status", "matched_bundles"}); err != nil {
		return err
	}
	for _, b := range r.Books {
		row := []string{
			b.Title,
			strings.Join(b.Authors, "; "),
			b.Format,
			b.Price,
			b.OwnershipStatus.String(),
			bundleNames(b.MatchedBundles),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func bundleNames(provenance []models.MatchProvenance) string {
	names := make([]string, 0, len(provenance))
	for _, p := range provenance {
		names = append(names, p.BundleName)
	}
	return strings.Join(names, ", ")
}

func summaryLine(s Summary) string {
	parts := make([]string, 0, len(models.Statuses))
	for _, status := range models.Statuses {
		parts = append(parts, status.String()+": "+strconv.Itoa(s.Count(status)))
	}
	return strings.Join(parts, ", ")
}

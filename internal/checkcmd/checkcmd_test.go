package checkcmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/lehigh-university-libraries/bundlecheck/internal/bundle"
	"github.com/lehigh-university-libraries/bundlecheck/internal/report"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Chdir(t.TempDir())

	g := &Globals{}
	root := &cobra.Command{Use: "bundlecheck", SilenceUsage: true, SilenceErrors: true}
	g.BindFlags(root)
	root.AddCommand(NewCheckCmd(g), NewExpandCmd(g), NewNormalizeCmd(g), NewParseCmd(g), NewCatalogCmd(g))

	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)

	err := root.Execute()
	return stdout.String(), err
}

func writeFixture(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestCheckText(t *testing.T) {
	dir := t.TempDir()
	entries := writeFixture(t, dir, "bundle.json", `{
		"bundle_title": "Detective Bundle",
		"books": [
			{"title": "The World's Greatest Detective, Vol. 1-2", "authors": ["A. Writer"]},
			{"title": "Detective Stories Book One", "authors": []},
			{"title": "Brand New Thing", "authors": []}
		]
	}`)
	owned := writeFixture(t, dir, "owned.json", `{"bundles": [
		{"human_name": "Old Bundle", "books": [
			{"Book Title": "Worlds Greatest Detective Vol 1", "Authors": ["A. Writer"]},
			{"Book Title": "Detective Stories Book 1", "Authors": []}
		]}
	]}`)

	out, err := run(t, "check", "--entries", entries, "--catalog", owned, "--catalog", filepath.Join(dir, "missing.json"))
	require.NoError(t, err)

	// volume 2 only shares the author with the owned volume 1, which the
	// fuzzy tier reports as probably owned
	expected := `The World's Greatest Detective, Vol. 1 [OWNED]
The World's Greatest Detective, Vol. 2 [PROBABLY OWNED]
Detective Stories Book One [OWNED]
Brand New Thing

Total books: 4

--- Probably Owned ---
The World's Greatest Detective, Vol. 2

--- Suspected Not Owned ---
Brand New Thing
`
	require.Equal(t, expected, out)
}

func TestCheckJSONToFile(t *testing.T) {
	dir := t.TempDir()
	entries := writeFixture(t, dir, "bundle.jsonl", "{\"title\": \"Foo Vol. 1\"}\n")
	owned := writeFixture(t, dir, "owned.jsonl", "{\"title\": \"Foo Vol. 1 TP\", \"bundle\": \"Image\"}\n")
	output := filepath.Join(dir, "out", "report.json")

	stdout, err := run(t, "check", "--entries", entries, "--catalog", owned, "--format", "json", "--output", output)
	require.NoError(t, err)
	require.Empty(t, stdout)

	data, err := os.ReadFile(output)
	require.NoError(t, err)

	var rep report.Report
	require.NoError(t, json.Unmarshal(data, &rep))
	require.Len(t, rep.Books, 1)
	require.Equal(t, "probably owned", rep.Books[0].OwnershipStatus.String())
	require.Equal(t, "Image", rep.Books[0].MatchedBundles[0].BundleName)
	require.Equal(t, 1, rep.Summary.ProbablyOwned)
}

func TestCheckInvalidInvocation(t *testing.T) {
	dir := t.TempDir()
	entries := writeFixture(t, dir, "bundle.json", `[]`)

	_, err := run(t, "check")
	require.Error(t, err, "entries or html is required")

	_, err = run(t, "check", "--entries", entries, "--format", "xml")
	require.ErrorIs(t, err, report.ErrUnknownFormat)

	_, err = run(t, "check", "--entries", entries, "--threshold", "120")
	require.Error(t, err)

	_, err = run(t, "check", "--html", filepath.Join(dir, "page.html"))
	require.Error(t, err)
}

func TestExpand(t *testing.T) {
	dir := t.TempDir()
	entries := writeFixture(t, dir, "bundle.json", `[{"title": "Foo Vol. 1-3: The Great Saga", "format": "PDF"}]`)

	out, err := run(t, "expand", "--entries", entries)
	require.NoError(t, err)

	var page bundle.Page
	require.NoError(t, json.Unmarshal([]byte(out), &page))
	require.Len(t, page.Books, 3)
	require.Equal(t, "Foo Vol. 3", page.Books[2].Title)
	require.Equal(t, "PDF", page.Books[2].Format)
}

func TestExpandMaxSpan(t *testing.T) {
	dir := t.TempDir()
	entries := writeFixture(t, dir, "bundle.json", `[{"title": "Omnibus Vols. 1-600"}]`)

	out, err := run(t, "expand", "--entries", entries)
	require.NoError(t, err)
	var page bundle.Page
	require.NoError(t, json.Unmarshal([]byte(out), &page))
	require.Len(t, page.Books, 1, "default span keeps the listing whole")

	out, err = run(t, "expand", "--entries", entries, "--max-span", "0")
	require.NoError(t, err)
	page = bundle.Page{}
	require.NoError(t, json.Unmarshal([]byte(out), &page))
	require.Len(t, page.Books, 600)
	require.Equal(t, "Omnibus Vol. 600", page.Books[599].Title)
}

func TestNormalize(t *testing.T) {
	out, err := run(t, "normalize", "--json", "Detective Stories Book One")
	require.NoError(t, err)

	var rows []map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 1)
	require.Equal(t, "detective stories book 1", rows[0]["strict"])
	require.Equal(t, "detective stories book 1", rows[0]["advanced"])

	out, err = run(t, "normalize", "Saga v1")
	require.NoError(t, err)
	require.Contains(t, out, "saga vol 1")

	_, err = run(t, "normalize")
	require.Error(t, err)
}

func TestParse(t *testing.T) {
	dir := t.TempDir()
	page := writeFixture(t, dir, "page.html", `<div class="item"><h2>Saga Vol. 1</h2></div><div class="item"><h2>Paper Girls</h2></div>`)
	cfg := writeFixture(t, dir, "bundlecheck.yaml", "selectors:\n  item: div.item\n  title: h2\n")

	out, err := run(t, "--config", cfg, "parse", "--html", page)
	require.NoError(t, err)

	var parsed bundle.Page
	require.NoError(t, json.Unmarshal([]byte(out), &parsed))
	require.Len(t, parsed.Books, 2)
	require.Equal(t, "Paper Girls", parsed.Books[1].Title)

	_, err = run(t, "parse", "--html", page)
	require.ErrorIs(t, err, bundle.ErrMissingSelector)
}

func TestCatalog(t *testing.T) {
	dir := t.TempDir()
	owned := writeFixture(t, dir, "owned.json", `{"bundles": [
		{"human_name": "Alpha", "books": [{"Book Title": "One"}, {"Book Title": "Two"}]},
		{"human_name": "Beta", "books": [{"Book Title": "Three"}]}
	]}`)

	out, err := run(t, "catalog", "--catalog", owned)
	require.NoError(t, err)
	for _, want := range []string{"Alpha", "Beta", "Total", "3"} {
		require.Contains(t, out, want)
	}
}

package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadJSONShapes(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected []Record
	}{
		{
			name: "bundles",
			content: `{"bundles": [
				{"human_name": "Comics Bundle", "books": [
					{"Book Title": "Saga Vol. 1", "Authors": ["Brian K. Vaughan", " Fiona Staples "]},
					{"Book Title": ""}
				]},
				{"books": [{"title": "Orphan", "authors": "Someone"}]}
			]}`,
			expected: []Record{
				{Title: "Saga Vol. 1", Authors: []string{"brian k. vaughan", "fiona staples"}, Bundle: "Comics Bundle"},
				{Title: "Orphan", Authors: []string{"someone"}, Bundle: DefaultBundleName},
			},
		},
		{
			name:    "flat list",
			content: `["Bare Title", {"title": "Object Title", "authors": ["A"]}, 42, {"authors": ["no title"]}]`,
			expected: []Record{
				{Title: "Bare Title", Authors: []string{}, Bundle: DefaultBundleName},
				{Title: "Object Title", Authors: []string{"a"}, Bundle: DefaultBundleName},
			},
		},
		{
			name:    "books wrapper",
			content: `{"books": [{"title": "Wrapped", "bundle": "Named"}]}`,
			expected: []Record{
				{Title: "Wrapped", Authors: []string{}, Bundle: "Named"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "catalog.json", tt.content)

			got, err := NewLoader("").Load(path)
			require.NoError(t, err)

			if diff := cmp.Diff(tt.expected, got); diff != "" {
				t.Errorf("Load mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoadJSON5(t *testing.T) {
	path := writeFile(t, "catalog.json5", `{
		// exported by hand
		books: [
			{title: "Lenient", authors: ["B"],},
		],
	}`)

	got, err := NewLoader("Mine").Load(path)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "Lenient", got[0].Title)
	require.Equal(t, "Mine", got[0].Bundle)
}

func TestLoadJSONLSkipsBadLines(t *testing.T) {
	path := writeFile(t, "catalog.jsonl", "\"First\"\n{not json\n\n{\"title\": \"Second\", \"bundle\": \"B\"}\n")

	got, err := NewLoader("").Load(path)
	require.NoError(t, err)

	want := []Record{
		{Title: "First", Authors: []string{}, Bundle: DefaultBundleName},
		{Title: "Second", Authors: []string{}, Bundle: "B"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Load mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadParquet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.parquet")
	rows := []Record{
		{Title: "Parquet One", Authors: []string{"Writer"}, Bundle: "Columnar"},
		{Title: "Parquet Two", Authors: []string{}},
		{Title: "  "},
	}
	require.NoError(t, parquet.WriteFile(path, rows))

	got, err := NewLoader("").Load(path)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "Columnar", got[0].Bundle)
	require.Equal(t, []string{"writer"}, got[0].Authors)
	require.Equal(t, DefaultBundleName, got[1].Bundle)
}

func TestLoadErrors(t *testing.T) {
	_, err := NewLoader("").Load(writeFile(t, "catalog.csv", "title\n"))
	require.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = NewLoader("").Load(writeFile(t, "catalog.json", `{"items": []}`))
	require.ErrorIs(t, err, ErrUnsupportedShape)

	_, err = NewLoader("").Load(writeFile(t, "catalog.json", `"just a string"`))
	require.ErrorIs(t, err, ErrUnsupportedShape)

	_, err = NewLoader("").Load(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}

func TestLoadAllSkipsBrokenSources(t *testing.T) {
	good := writeFile(t, "good.json", `["Kept"]`)
	broken := writeFile(t, "broken.json", `{"bundles": [`)
	missing := filepath.Join(t.TempDir(), "missing.json")

	got := NewLoader("").LoadAll([]string{missing, broken, good})

	require.Len(t, got, 1)
	require.Equal(t, "Kept", got[0].Title)
}

func TestNormalizeAuthors(t *testing.T) {
	got := NormalizeAuthors([]string{" Zed ", "alice", "ALICE", ""})
	if diff := cmp.Diff([]string{"alice", "zed"}, got); diff != "" {
		t.Errorf("NormalizeAuthors mismatch (-want +got):\n%s", diff)
	}
}

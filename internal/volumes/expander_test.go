package volumes

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/lehigh-university-libraries/bundlecheck/internal/models"
)

func titlesOf(entries []models.BookEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Title
	}
	return out
}

func TestExpand(t *testing.T) {
	tests := []struct {
		name     string
		title    string
		expected []string
	}{
		{
			name:     "colon clause dropped",
			title:    "Foo Vol. 1-3: The Great Saga",
			expected: []string{"Foo Vol. 1", "Foo Vol. 2", "Foo Vol. 3"},
		},
		{
			name:     "plural vols",
			title:    "Trilogy Vols. 1-3",
			expected: []string{"Trilogy Vol. 1", "Trilogy Vol. 2", "Trilogy Vol. 3"},
		},
		{
			name:     "volumes with suffix",
			title:    "Box Set Volumes 4 - 5 Deluxe",
			expected: []string{"Box Set Vol. 4 Deluxe", "Box Set Vol. 5 Deluxe"},
		},
		{
			name:     "abbreviated v.",
			title:    "Saga V. 1-2",
			expected: []string{"Saga Vol. 1", "Saga Vol. 2"},
		},
		{
			name:     "single volume range",
			title:    "Solo Vol 7-7",
			expected: []string{"Solo Vol. 7"},
		},
		{
			name:     "reversed range passes through",
			title:    "Foo Vol. 3-1",
			expected: []string{"Foo Vol. 3-1"},
		},
		{
			name:     "no range",
			title:    "Foo Vol. 2",
			expected: []string{"Foo Vol. 2"},
		},
		{
			name:     "word ending in v is not a volume",
			title:    "Kiev 1-3",
			expected: []string{"Kiev 1-3"},
		},
		{
			name:     "empty title",
			title:    "",
			expected: []string{""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := titlesOf(Expand([]models.BookEntry{{Title: tt.title}}))
			if diff := cmp.Diff(tt.expected, got); diff != "" {
				t.Errorf("Expand(%q) mismatch (-want +got):\n%s", tt.title, diff)
			}
		})
	}
}

func TestExpandConservesFieldsAndOrder(t *testing.T) {
	entries := []models.BookEntry{
		{Title: "Before", Authors: []string{"x"}},
		{Title: "Epic Vols 2-4", Authors: []string{"Ann Author"}, Format: "PDF, ePUB", ImageURL: "http://img", Price: "$5"},
		{Title: "After"},
	}

	got := Expand(entries)

	wantTitles := []string{"Before", "Epic Vol. 2", "Epic Vol. 3", "Epic Vol. 4", "After"}
	if diff := cmp.Diff(wantTitles, titlesOf(got)); diff != "" {
		t.Fatalf("Unexpected titles (-want +got):\n%s", diff)
	}

	for _, child := range got[1:4] {
		want := entries[1].WithTitle(child.Title)
		if diff := cmp.Diff(want, child); diff != "" {
			t.Errorf("Child fields differ from parent (-want +got):\n%s", diff)
		}
	}
	if entries[1].Title != "Epic Vols 2-4" {
		t.Errorf("Expected input untouched, got %q", entries[1].Title)
	}
}

func TestExpanderMaxSpan(t *testing.T) {
	entries := []models.BookEntry{{Title: "Huge Vol. 1-99999"}, {Title: "Small Vol. 1-2"}}

	got := titlesOf(Expander{MaxSpan: 10}.Expand(entries))

	want := []string{"Huge Vol. 1-99999", "Small Vol. 1", "Small Vol. 2"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Unexpected titles (-want +got):\n%s", diff)
	}

	exact := titlesOf(Expander{MaxSpan: 3}.Expand([]models.BookEntry{{Title: "Trio Vol. 1-3"}, {Title: "Quad Vol. 1-4"}}))
	want = []string{"Trio Vol. 1", "Trio Vol. 2", "Trio Vol. 3", "Quad Vol. 1-4"}
	if diff := cmp.Diff(want, exact); diff != "" {
		t.Errorf("Unexpected titles at the span limit (-want +got):\n%s", diff)
	}
}

func TestExpandOversizedNumbers(t *testing.T) {
	titles := []string{
		"Saga Vol. 0-9223372036854775807",
		"Saga Vols. 1-9223372036854775806",
		"Saga V. 5-99999999999999999999",
		"Saga Vol. 1-1000000",
	}

	for _, title := range titles {
		t.Run(title, func(t *testing.T) {
			if r, ok := ParseRange(title); ok {
				t.Fatalf("Expected no range, got %+v", r)
			}
			entries := []models.BookEntry{{Title: title}}
			for _, got := range [][]models.BookEntry{Expander{MaxSpan: 500}.Expand(entries), Expand(entries)} {
				if diff := cmp.Diff([]string{title}, titlesOf(got)); diff != "" {
					t.Errorf("Unexpected titles (-want +got):\n%s", diff)
				}
			}
		})
	}

	r, ok := ParseRange("Saga Vol. 999998-999999")
	if !ok || r.Len() != 2 {
		t.Errorf("Expected a two volume range at the upper bound, got %+v ok=%v", r, ok)
	}
}

func TestParseRange(t *testing.T) {
	r, ok := ParseRange("Trilogy Vols. 1-3")
	if !ok {
		t.Fatal("Expected a range")
	}
	want := Range{Prefix: "Trilogy", Start: 1, End: 3}
	if diff := cmp.Diff(want, r); diff != "" {
		t.Errorf("Unexpected range (-want +got):\n%s", diff)
	}
	if r.Len() != 3 {
		t.Errorf("Expected length 3, got %d", r.Len())
	}

	if _, ok := ParseRange("Vol. 9-2"); ok {
		t.Error("Expected reversed range to be rejected")
	}
}

package models

import (
	"fmt"
	"strings"
)

// BookEntry represents a single product listing, either scraped from a bundle
// page or read from an owned catalog
type BookEntry struct {
	Title    string   `json:"title" yaml:"title"`
	Authors  []string `json:"authors" yaml:"authors"`
	Format   string   `json:"format,omitempty" yaml:"format,omitempty"`
	ImageURL string   `json:"image_url,omitempty" yaml:"image_url,omitempty"`
	Price    string   `json:"price,omitempty" yaml:"price,omitempty"`
}

// WithTitle returns a shallow copy of the entry carrying a different title
func (b BookEntry) WithTitle(title string) BookEntry {
	b.Title = title
	return b
}

// OwnershipStatus is the outcome of matching an entry against owned catalogs
type OwnershipStatus int

const (
	NotOwned OwnershipStatus = iota
	MaybeOwned
	ProbablyOwned
	Owned
)

var statusNames = map[OwnershipStatus]string{
	NotOwned:      "not owned",
	MaybeOwned:    "maybe owned",
	ProbablyOwned: "probably owned",
	Owned:         "owned",
}

// Statuses lists every status from most to least certain
var Statuses = []OwnershipStatus{Owned, ProbablyOwned, MaybeOwned, NotOwned}

func (s OwnershipStatus) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("OwnershipStatus(%d)", int(s))
}

// Marker returns the suffix appended to titles in plain-text reports
func (s OwnershipStatus) Marker() string {
	if s == NotOwned {
		return ""
	}
	return " [" + strings.ToUpper(s.String()) + "]"
}

func (s OwnershipStatus) MarshalText() ([]byte, error) {
	if _, ok := statusNames[s]; !ok {
		return nil, fmt.Errorf("unknown ownership status %d", int(s))
	}
	return []byte(s.String()), nil
}

func (s *OwnershipStatus) UnmarshalText(text []byte) error {
	parsed, err := ParseOwnershipStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseOwnershipStatus converts a status name such as "probably owned" back
// into its OwnershipStatus
func ParseOwnershipStatus(name string) (OwnershipStatus, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for status, candidate := range statusNames {
		if candidate == name {
			return status, nil
		}
	}
	return NotOwned, fmt.Errorf("unknown ownership status %q", name)
}

// MatchProvenance names one owned bundle and the catalog titles in it that
// justified a classification
type MatchProvenance struct {
	BundleName    string   `json:"bundle_name" yaml:"bundle_name"`
	MatchedTitles []string `json:"matched_titles" yaml:"matched_titles"`
}

// ClassifiedBookEntry is a BookEntry annotated by the ownership classifier
type ClassifiedBookEntry struct {
	BookEntry       `yaml:",inline"`
	OwnershipStatus OwnershipStatus   `json:"ownership_status" yaml:"ownership_status"`
	MatchedBundles  []MatchProvenance `json:"matched_bundles" yaml:"matched_bundles"`
}

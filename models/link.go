package models

import (
	"encoding/json"
	"fmt"
	"regexp"
)

// CustomLink is a manually curated link shown under a folder section.
type CustomLink struct {
	FolderName string `json:"folderName"`
	Name       string `json:"name"`
	URL        string `json:"url"`
}

// Entry returns the synthetic file entry the link contributes to its folder.
func (l CustomLink) Entry() RemoteEntry {
	return RemoteEntry{Name: l.Name, ViewURL: l.URL}
}

// IgnorePattern excludes every scanned path it matches, anywhere in the path.
type IgnorePattern struct {
	re *regexp.Regexp
}

// NewIgnorePattern compiles source into an IgnorePattern.
func NewIgnorePattern(source string) (IgnorePattern, error) {
	re, err := regexp.Compile(source)
	if err != nil {
		return IgnorePattern{}, fmt.Errorf("invalid ignore pattern %q: %w", source, err)
	}
	return IgnorePattern{re: re}, nil
}

// MustIgnorePattern is like NewIgnorePattern but panics on an invalid source.
func MustIgnorePattern(source string) IgnorePattern {
	p, err := NewIgnorePattern(source)
	if err != nil {
		panic(err)
	}
	return p
}

// String returns the source text of the pattern.
func (p IgnorePattern) String() string {
	if p.re == nil {
		return ""
	}
	return p.re.String()
}

// Match reports whether the pattern occurs anywhere in path.
func (p IgnorePattern) Match(path string) bool {
	return p.re != nil && p.re.MatchString(path)
}

func (p IgnorePattern) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

func (p *IgnorePattern) UnmarshalJSON(data []byte) error {
	var source string
	if err := json.Unmarshal(data, &source); err != nil {
		return fmt.Errorf("%w: ignore pattern is not a string: %v", ErrConfigCorrupt, err)
	}
	parsed, err := NewIgnorePattern(source)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConfigCorrupt, err)
	}
	*p = parsed
	return nil
}

// MatchAny reports whether any of patterns matches path.
func MatchAny(patterns []IgnorePattern, path string) bool {
	for _, p := range patterns {
		if p.Match(path) {
			return true
		}
	}
	return false
}

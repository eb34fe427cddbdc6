// Package asset models one unit of pipeline work: a source file in the
// backlog directory, its stable identity, and the display name derived from
// the filename.
package asset

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Asset represents one backlog file to be turned into a published post.
type Asset struct {
	// Identity is the source filename with its extension stripped. It keys
	// the processed/failed record sets and must be unique per run scope.
	Identity string
	// Path is the absolute path of the source file.
	Path string
	// DisplayName is the human-readable name derived from the filename,
	// used for content generation, classification, and the post title.
	DisplayName string
}

// FromPath builds an Asset from a source file path.
func FromPath(path string) Asset {
	base := filepath.Base(path)
	identity := strings.TrimSuffix(base, filepath.Ext(base))
	return Asset{
		Identity:    identity,
		Path:        path,
		DisplayName: DeriveDisplayName(identity),
	}
}

// DeriveDisplayName normalizes a filename stem into a display name: separator
// runes collapse into single spaces, everything else is preserved so the
// eligibility heuristic can still see non-descriptive symbol runs, and words
// are title-cased.
func DeriveDisplayName(stem string) string {
	cleaned := strings.Builder{}
	prevSpace := false
	for _, r := range stem {
		switch {
		case unicode.IsSpace(r) || r == '-' || r == '_' || r == '.':
			if !prevSpace && cleaned.Len() > 0 {
				cleaned.WriteRune(' ')
			}
			prevSpace = true
		default:
			cleaned.WriteRune(r)
			prevSpace = false
		}
	}
	name := strings.TrimSpace(cleaned.String())
	if name == "" {
		return ""
	}
	return cases.Title(language.Und, cases.NoLower).String(name)
}

// Scan lists backlog files matching the accepted extensions, in lexicographic
// identity order for reproducible runs. Extensions are matched case-insensitively
// and must include the leading dot.
func Scan(dir string, extensions []string) ([]Asset, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	accepted := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		accepted[strings.ToLower(ext)] = struct{}{}
	}

	assets := make([]Asset, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if _, ok := accepted[ext]; !ok {
			continue
		}
		assets = append(assets, FromPath(filepath.Join(dir, entry.Name())))
	}

	sort.Slice(assets, func(i, j int) bool {
		return assets[i].Identity < assets[j].Identity
	})
	return assets, nil
}

// Package render turns a metrics snapshot into the HTML dashboard and the
// markdown summary table. Rendering is pure formatting: the same snapshot
// always produces byte-identical output, and no time window is recomputed.
package render

import (
	"sort"

	"github.com/dustin/go-humanize"

	"github.com/vstanchev/gh-metrics/internal/domain"
)

// repoRow is one repository prepared for presentation, with all counts
// already formatted.
type repoRow struct {
	Name     string
	FullName string
	URL      string
	Today    string
	Week     string
	Month    string
	Quarter  string
	Year     string
}

// languageShare is one language's slice of the combined byte counts.
type languageShare struct {
	Name    string
	Percent float64
	Color   string
}

// githubLanguageColors matches the palette GitHub uses for its own
// language bars. Unlisted languages fall back to neutral gray.
var githubLanguageColors = map[string]string{
	"Python":     "#3572A5",
	"JavaScript": "#f1e05a",
	"TypeScript": "#3178c6",
	"HTML":       "#e34c26",
	"CSS":        "#563d7c",
	"Shell":      "#89e051",
	"Go":         "#00ADD8",
	"Rust":       "#dea584",
	"Java":       "#b07219",
	"C++":        "#f34b7d",
	"C":          "#555555",
	"Ruby":       "#701516",
	"PHP":        "#4F5D95",
	"Swift":      "#F05138",
	"Kotlin":     "#A97BFF",
	"Dockerfile": "#384d54",
	"YAML":       "#cb171e",
	"Vue":        "#41b883",
}

const defaultLanguageColor = "#8b949e"

const maxLanguages = 6

// sortedRepoNames orders repositories for presentation: yearly commits
// descending, ties broken by name. The aggregate entry is excluded.
func sortedRepoNames(snap *domain.Snapshot) []string {
	names := make([]string, 0, len(snap.Repos))
	for name := range snap.Repos {
		if name == domain.AggregateKey {
			continue
		}
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		a, b := snap.Repos[names[i]], snap.Repos[names[j]]
		if a.Total() != b.Total() {
			return a.Total() > b.Total()
		}
		return names[i] < names[j]
	})
	return names
}

// repoRows formats every repository in presentation order.
func repoRows(snap *domain.Snapshot) []repoRow {
	names := sortedRepoNames(snap)
	rows := make([]repoRow, 0, len(names))
	for _, name := range names {
		counts := snap.Repos[name]
		ref := shortName(name)
		rows = append(rows, repoRow{
			Name:     ref,
			FullName: name,
			URL:      "https://github.com/" + name,
			Today:    comma(counts.Today),
			Week:     comma(counts.Week),
			Month:    comma(counts.Month),
			Quarter:  comma(counts.Quarter),
			Year:     comma(counts.Year),
		})
	}
	return rows
}

// languageShares computes the per-language percentages, widest slice
// first, capped at maxLanguages entries.
func languageShares(snap *domain.Snapshot) []languageShare {
	if len(snap.Languages) == 0 {
		return nil
	}
	var total int64
	for _, byteCount := range snap.Languages {
		total += byteCount
	}
	if total == 0 {
		return nil
	}

	names := make([]string, 0, len(snap.Languages))
	for name := range snap.Languages {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if snap.Languages[names[i]] != snap.Languages[names[j]] {
			return snap.Languages[names[i]] > snap.Languages[names[j]]
		}
		return names[i] < names[j]
	})
	if len(names) > maxLanguages {
		names = names[:maxLanguages]
	}

	shares := make([]languageShare, 0, len(names))
	for _, name := range names {
		color, ok := githubLanguageColors[name]
		if !ok {
			color = defaultLanguageColor
		}
		shares = append(shares, languageShare{
			Name:    name,
			Percent: float64(snap.Languages[name]) / float64(total) * 100,
			Color:   color,
		})
	}
	return shares
}

// shortName strips the owner from "owner/name" for display.
func shortName(fullName string) string {
	for i := len(fullName) - 1; i >= 0; i-- {
		if fullName[i] == '/' {
			return fullName[i+1:]
		}
	}
	return fullName
}

// comma renders a count with thousands separators.
func comma(n int) string {
	return humanize.Comma(int64(n))
}

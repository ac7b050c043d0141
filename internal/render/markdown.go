package render

import (
	"bytes"
	"fmt"

	"github.com/montanaflynn/stats"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"

	"github.com/vstanchev/gh-metrics/internal/domain"
)

// Markdown renders the summary table document for a snapshot.
func Markdown(snap *domain.Snapshot) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# 📊 Code Metrics Dashboard\n\n")
	fmt.Fprintf(&buf, "> **@%s** · Updated: %s UTC\n\n",
		snap.Username, snap.GeneratedAt.UTC().Format("2006-01-02 15:04"))

	summary := snap.Repos[domain.AggregateKey]
	summaryTable := tablewriter.NewTable(&buf, tablewriter.WithRenderer(renderer.NewMarkdown()))
	summaryTable.Header("Window", "Commits")
	summaryRows := [][]string{
		{"Today", comma(summary.Today)},
		{"Week", comma(summary.Week)},
		{"Month", comma(summary.Month)},
		{"Quarter", comma(summary.Quarter)},
		{"Year", comma(summary.Year)},
	}
	if err := summaryTable.Bulk(summaryRows); err != nil {
		return nil, fmt.Errorf("failed to build summary table: %w", err)
	}
	if err := summaryTable.Render(); err != nil {
		return nil, fmt.Errorf("failed to render summary table: %w", err)
	}

	buf.WriteString("\n## Repositories\n\n")
	repoTable := tablewriter.NewTable(&buf, tablewriter.WithRenderer(renderer.NewMarkdown()))
	repoTable.Header("Repository", "Today", "Week", "Month", "Quarter", "Year")
	rows := repoRows(snap)
	repoData := make([][]string, 0, len(rows))
	for _, row := range rows {
		link := fmt.Sprintf("[%s](%s)", row.Name, row.URL)
		repoData = append(repoData, []string{link, row.Today, row.Week, row.Month, row.Quarter, row.Year})
	}
	if err := repoTable.Bulk(repoData); err != nil {
		return nil, fmt.Errorf("failed to build repository table: %w", err)
	}
	if err := repoTable.Render(); err != nil {
		return nil, fmt.Errorf("failed to render repository table: %w", err)
	}

	if line := yearlyStatsLine(snap); line != "" {
		buf.WriteString("\n" + line + "\n")
	}
	buf.WriteString("\n---\n🔗 Auto-updated daily\n")
	return buf.Bytes(), nil
}

// yearlyStatsLine summarizes the distribution of yearly commit counts
// across repositories.
func yearlyStatsLine(snap *domain.Snapshot) string {
	var yearly []float64
	for name, counts := range snap.Repos {
		if name == domain.AggregateKey {
			continue
		}
		yearly = append(yearly, float64(counts.Year))
	}
	if len(yearly) == 0 {
		return ""
	}
	mean, err := stats.Mean(yearly)
	if err != nil {
		return ""
	}
	median, err := stats.Median(yearly)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%d repositories · mean %.1f / median %.1f commits per repository this year",
		len(yearly), mean, median)
}

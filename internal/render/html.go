package render

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"time"

	"github.com/vstanchev/gh-metrics/internal/domain"
)

//go:embed dashboard.html.tmpl
var dashboardTmpl string

var dashboardTemplate = template.Must(template.New("dashboard").Parse(dashboardTmpl))

// dashboardData is the fully formatted view model for the HTML template.
type dashboardData struct {
	Username    string
	GeneratedAt string
	Summary     repoRow
	Rows        []repoRow
	Languages   []languageShare
}

// HTML renders the dashboard document for a snapshot.
func HTML(snap *domain.Snapshot) ([]byte, error) {
	summary := snap.Repos[domain.AggregateKey]
	data := dashboardData{
		Username: snap.Username,
		// The generation timestamp is embedded verbatim, exactly as the
		// snapshot recorded it.
		GeneratedAt: snap.GeneratedAt.UTC().Format(time.RFC3339),
		Summary: repoRow{
			Today:   comma(summary.Today),
			Week:    comma(summary.Week),
			Month:   comma(summary.Month),
			Quarter: comma(summary.Quarter),
			Year:    comma(summary.Year),
		},
		Rows:      repoRows(snap),
		Languages: languageShares(snap),
	}

	var buf bytes.Buffer
	if err := dashboardTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render dashboard: %w", err)
	}
	return buf.Bytes(), nil
}

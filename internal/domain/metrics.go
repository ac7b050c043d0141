// Package domain contains the core data structures and domain logic for the application.
package domain

import (
	"fmt"
	"strings"
	"time"
)

// Window identifies one of the five cumulative aggregation ranges.
// Windows overlap: a commit made today belongs to all five of them.
type Window string

const (
	WindowToday   Window = "today"
	WindowWeek    Window = "week"
	WindowMonth   Window = "month"
	WindowQuarter Window = "quarter"
	WindowYear    Window = "year"
)

// Windows lists every window from narrowest to widest.
var Windows = []Window{WindowToday, WindowWeek, WindowMonth, WindowQuarter, WindowYear}

// AggregateKey is the snapshot entry that sums every tracked repository.
const AggregateKey = "all"

// WindowStarts holds the lower bound of each window for one collection run.
// All bounds derive from the same instant, so counts stay internally
// consistent across repositories within a single snapshot.
type WindowStarts struct {
	now    time.Time
	starts map[Window]time.Time
}

// NewWindowStarts computes window lower bounds relative to now.
// The today window spans from the start of the previous UTC day; the
// scheduled job fires near the end of the day, so the narrowest bucket
// still covers a full calendar day of activity.
func NewWindowStarts(now time.Time) WindowStarts {
	utc := now.UTC()
	dayStart := time.Date(utc.Year(), utc.Month(), utc.Day(), 0, 0, 0, 0, time.UTC)
	return WindowStarts{
		now: utc,
		starts: map[Window]time.Time{
			WindowToday:   dayStart.AddDate(0, 0, -1),
			WindowWeek:    utc.AddDate(0, 0, -7),
			WindowMonth:   utc.AddDate(0, 0, -30),
			WindowQuarter: utc.AddDate(0, 0, -90),
			WindowYear:    utc.AddDate(0, 0, -365),
		},
	}
}

// Now returns the collection instant the bounds were derived from.
func (w WindowStarts) Now() time.Time { return w.now }

// Start returns the lower bound of the given window.
func (w WindowStarts) Start(win Window) time.Time { return w.starts[win] }

// Lookback returns the earliest instant any window covers. Commit history
// fetches need to reach back no further than this.
func (w WindowStarts) Lookback() time.Time { return w.starts[WindowYear] }

// WindowCounts holds commit totals for the five cumulative windows.
type WindowCounts struct {
	Today   int `json:"today"`
	Week    int `json:"week"`
	Month   int `json:"month"`
	Quarter int `json:"quarter"`
	Year    int `json:"year"`
}

// Classify adds one commit timestamp to every window that contains it.
// A commit from the last day increments all five counters at once; this
// is deliberate and must not be turned into an exclusive partition.
func (c *WindowCounts) Classify(ts time.Time, starts WindowStarts) {
	ts = ts.UTC()
	if !ts.Before(starts.Start(WindowToday)) {
		c.Today++
	}
	if !ts.Before(starts.Start(WindowWeek)) {
		c.Week++
	}
	if !ts.Before(starts.Start(WindowMonth)) {
		c.Month++
	}
	if !ts.Before(starts.Start(WindowQuarter)) {
		c.Quarter++
	}
	if !ts.Before(starts.Start(WindowYear)) {
		c.Year++
	}
}

// Add accumulates another repository's counts into c.
func (c *WindowCounts) Add(other WindowCounts) {
	c.Today += other.Today
	c.Week += other.Week
	c.Month += other.Month
	c.Quarter += other.Quarter
	c.Year += other.Year
}

// Get returns the count for a single window.
func (c WindowCounts) Get(win Window) int {
	switch win {
	case WindowToday:
		return c.Today
	case WindowWeek:
		return c.Week
	case WindowMonth:
		return c.Month
	case WindowQuarter:
		return c.Quarter
	default:
		return c.Year
	}
}

// Total returns the widest window's count, used as the presentation sort key.
func (c WindowCounts) Total() int { return c.Year }

// Cumulative reports whether the counts satisfy the window ordering
// invariant: year >= quarter >= month >= week >= today, all non-negative.
func (c WindowCounts) Cumulative() bool {
	return c.Today >= 0 &&
		c.Week >= c.Today &&
		c.Month >= c.Week &&
		c.Quarter >= c.Month &&
		c.Year >= c.Quarter
}

// RepositoryRef identifies one tracked repository by owner and name.
type RepositoryRef struct {
	Owner string
	Name  string
}

// ParseRepositoryRef parses an "owner/name" allow-list entry.
func ParseRepositoryRef(s string) (RepositoryRef, error) {
	owner, name, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return RepositoryRef{}, &ConfigurationError{
			Field:  "repos",
			Reason: fmt.Sprintf("entry %q is not in owner/name form", s),
		}
	}
	return RepositoryRef{Owner: owner, Name: name}, nil
}

// FullName returns the canonical "owner/name" identifier.
func (r RepositoryRef) FullName() string { return r.Owner + "/" + r.Name }

// URL returns the repository's web address.
func (r RepositoryRef) URL() string { return "https://github.com/" + r.FullName() }

// CommitRecord is a single commit's timestamp and attributable author.
// Records exist only while a repository is being aggregated; they are
// never persisted individually.
type CommitRecord struct {
	Author    string
	Timestamp time.Time
}

// Snapshot is the persisted artifact of one collection run. The Repos map
// holds one entry per tracked repository keyed by "owner/name", plus the
// AggregateKey entry summing all of them. A repository with no commits in
// range still gets an all-zero entry.
type Snapshot struct {
	GeneratedAt time.Time               `json:"generated_at"`
	Username    string                  `json:"username"`
	Repos       map[string]WindowCounts `json:"repos"`
	Languages   map[string]int64        `json:"languages,omitempty"`
}

// Validate checks the fields every consumer of a snapshot relies on.
func (s *Snapshot) Validate() error {
	if s.GeneratedAt.IsZero() {
		return &MalformedSnapshotError{Reason: "missing generation timestamp"}
	}
	if s.Username == "" {
		return &MalformedSnapshotError{Reason: "missing username"}
	}
	if s.Repos == nil {
		return &MalformedSnapshotError{Reason: "missing repository metrics"}
	}
	if _, ok := s.Repos[AggregateKey]; !ok {
		return &MalformedSnapshotError{Reason: fmt.Sprintf("missing %q aggregate entry", AggregateKey)}
	}
	for name, counts := range s.Repos {
		if !counts.Cumulative() {
			return &MalformedSnapshotError{
				Reason: fmt.Sprintf("window counts for %q violate cumulative ordering", name),
			}
		}
	}
	return nil
}

// Package usecase contains the business logic of the application.
package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/vstanchev/gh-metrics/internal/domain"
	"github.com/vstanchev/gh-metrics/internal/gateway"
)

// defaultRetryAttempts is the number of retries after the first failed
// fetch before a repository degrades to a zero entry.
const defaultRetryAttempts = 3

// Collector is the use case that aggregates commit activity across the
// tracked repositories into a single snapshot.
type Collector struct {
	fetcher gateway.Fetcher
	logger  *zap.Logger

	// newBackOff builds the retry policy for one repository fetch.
	// Overridable so tests don't sleep.
	newBackOff func() backoff.BackOff
	clock      func() time.Time
}

// NewCollector creates a new Collector instance.
func NewCollector(fetcher gateway.Fetcher, logger *zap.Logger) *Collector {
	return &Collector{
		fetcher: fetcher,
		logger:  logger,
		newBackOff: func() backoff.BackOff {
			bo := backoff.NewExponentialBackOff()
			bo.InitialInterval = 2 * time.Second
			return backoff.WithMaxRetries(bo, defaultRetryAttempts)
		},
		clock: time.Now,
	}
}

// Collect produces a snapshot covering every resolved repository. All five
// window bounds derive from one shared collection instant, so the counts
// are internally consistent across repositories.
//
// An unknown user or rejected token aborts before anything is fetched. A
// single unreachable repository never aborts the run: it stays in the
// snapshot as an all-zero entry.
func (c *Collector) Collect(ctx context.Context, username string, tracked []domain.RepositoryRef) (*domain.Snapshot, error) {
	if err := c.fetcher.CheckUser(ctx, username); err != nil {
		return nil, err
	}

	active, skipped, err := c.resolveRepositories(ctx, tracked)
	if err != nil {
		return nil, err
	}
	c.logger.Info("tracking repositories",
		zap.Int("resolved", len(active)), zap.Int("skipped", len(skipped)))

	starts := domain.NewWindowStarts(c.clock())
	snap := &domain.Snapshot{
		GeneratedAt: starts.Now(),
		Username:    username,
		Repos:       make(map[string]domain.WindowCounts, len(active)+len(skipped)+1),
		Languages:   make(map[string]int64),
	}

	var aggregate domain.WindowCounts
	for _, ref := range active {
		counts := c.collectRepository(ctx, ref, username, starts)
		snap.Repos[ref.FullName()] = counts
		aggregate.Add(counts)
		c.mergeLanguages(ctx, ref, snap.Languages)
	}
	for _, ref := range skipped {
		snap.Repos[ref.FullName()] = domain.WindowCounts{}
	}
	snap.Repos[domain.AggregateKey] = aggregate

	if len(snap.Languages) == 0 {
		snap.Languages = nil
	}
	c.logger.Info("collection complete",
		zap.Int("repositories", len(snap.Repos)-1),
		zap.Int("commits_this_year", aggregate.Year))
	return snap, nil
}

// resolveRepositories turns the configured allow-list into repository refs,
// or enumerates everything visible to the token when no list is set. An
// allow-list entry that cannot be resolved is kept as a skipped zero entry;
// authentication failures stay fatal.
func (c *Collector) resolveRepositories(ctx context.Context, tracked []domain.RepositoryRef) (active, skipped []domain.RepositoryRef, err error) {
	if len(tracked) == 0 {
		active, err = c.fetcher.ListUserRepositories(ctx)
		return active, nil, err
	}

	for _, ref := range tracked {
		resolved, err := c.fetcher.GetRepository(ctx, ref)
		if err != nil {
			var authErr *domain.AuthenticationError
			if errors.As(err, &authErr) {
				return nil, nil, err
			}
			c.logger.Warn("cannot access tracked repository, keeping zero entry",
				zap.String("repo", ref.FullName()), zap.Error(err))
			skipped = append(skipped, ref)
			continue
		}
		active = append(active, resolved)
	}
	return active, skipped, nil
}

// collectRepository fetches one repository's commit history with retries
// and classifies every commit into the windows containing it. Exhausted
// retries and access errors degrade to zero counts.
func (c *Collector) collectRepository(ctx context.Context, ref domain.RepositoryRef, author string, starts domain.WindowStarts) domain.WindowCounts {
	var commits []domain.CommitRecord
	fetch := func() error {
		var err error
		commits, err = c.fetcher.ListCommits(ctx, ref, author, starts.Lookback())
		if err == nil {
			return nil
		}
		var transientErr *domain.TransientAPIError
		if errors.As(err, &transientErr) {
			c.logger.Debug("retrying commit fetch",
				zap.String("repo", ref.FullName()), zap.Error(err))
			return err
		}
		return backoff.Permanent(err)
	}

	if err := backoff.Retry(fetch, backoff.WithContext(c.newBackOff(), ctx)); err != nil {
		c.logger.Warn("skipping repository after failed commit fetch",
			zap.String("repo", ref.FullName()), zap.Error(err))
		return domain.WindowCounts{}
	}

	var counts domain.WindowCounts
	for _, commit := range commits {
		// The API already filters by author; the guard covers commits
		// attributed to an unlinked author login.
		if commit.Author != "" && !strings.EqualFold(commit.Author, author) {
			continue
		}
		counts.Classify(commit.Timestamp, starts)
	}
	c.logger.Debug("aggregated repository",
		zap.String("repo", ref.FullName()), zap.Int("commits", counts.Year))
	return counts
}

// mergeLanguages folds one repository's language byte counts into the
// snapshot totals. Best effort: a failure here never degrades the counts.
func (c *Collector) mergeLanguages(ctx context.Context, ref domain.RepositoryRef, into map[string]int64) {
	langs, err := c.fetcher.ListLanguages(ctx, ref)
	if err != nil {
		c.logger.Debug("could not fetch languages",
			zap.String("repo", ref.FullName()), zap.Error(err))
		return
	}
	for name, byteCount := range langs {
		into[name] += byteCount
	}
}

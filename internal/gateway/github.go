// Package gateway provides a gateway to the GitHub API,
// abstracting away the underlying REST and GraphQL clients.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/shurcooL/githubv4"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"

	"github.com/vstanchev/gh-metrics/internal/domain"
)

// repoListAffiliation covers everything the token can push to, matching
// the set of repositories a contribution report should track.
const repoListAffiliation = "owner,collaborator,organization_member"

// Fetcher defines the behavior of a gateway for fetching information from GitHub.
type Fetcher interface {
	// CheckUser verifies that the configured username resolves to a real
	// GitHub account before any collection work starts.
	CheckUser(ctx context.Context, login string) error
	// ListUserRepositories enumerates every repository visible to the token.
	ListUserRepositories(ctx context.Context) ([]domain.RepositoryRef, error)
	// GetRepository resolves a single allow-list entry.
	GetRepository(ctx context.Context, ref domain.RepositoryRef) (domain.RepositoryRef, error)
	// ListCommits returns commits authored by author since the given instant.
	ListCommits(ctx context.Context, ref domain.RepositoryRef, author string, since time.Time) ([]domain.CommitRecord, error)
	// ListLanguages returns the language byte counts for a repository.
	ListLanguages(ctx context.Context, ref domain.RepositoryRef) (map[string]int64, error)
}

// GitHubGateway is the concrete implementation of the Fetcher interface.
type GitHubGateway struct {
	restClient    *github.Client
	graphqlClient *githubv4.Client
	logger        *zap.Logger
	callTimeout   time.Duration
}

// NewGitHubGateway builds a gateway whose HTTP transport handles both the
// bearer token and GitHub's secondary rate limits.
func NewGitHubGateway(token string, callTimeout time.Duration, logger *zap.Logger) (*GitHubGateway, error) {
	if token == "" {
		return nil, &domain.AuthenticationError{Reason: "access token is empty"}
	}
	rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(nil, github_ratelimit.WithSingleSleepLimit(1*time.Hour, nil))
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := &http.Client{
		Transport: &oauth2.Transport{
			Base:   rateLimitWaiter,
			Source: ts,
		},
	}
	return &GitHubGateway{
		restClient:    github.NewClient(httpClient),
		graphqlClient: githubv4.NewClient(httpClient),
		logger:        logger,
		callTimeout:   callTimeout,
	}, nil
}

// CheckUser resolves the login through the GraphQL API. An unknown login is
// a configuration problem; a rejected token is an authentication problem.
func (g *GitHubGateway) CheckUser(ctx context.Context, login string) error {
	var q struct {
		User struct {
			Login githubv4.String
		} `graphql:"user(login: $login)"`
	}
	variables := map[string]interface{}{"login": githubv4.String(login)}

	callCtx, cancel := g.callContext(ctx)
	defer cancel()
	err := g.graphqlClient.Query(callCtx, &q, variables)
	if err == nil {
		g.logger.Debug("resolved GitHub user", zap.String("login", login))
		return nil
	}

	// githubv4 surfaces both transport and GraphQL errors as plain errors,
	// so classification has to inspect the message.
	msg := err.Error()
	switch {
	case strings.Contains(msg, "Could not resolve to a User"):
		return &domain.ConfigurationError{Field: "username", Reason: fmt.Sprintf("unknown GitHub user %q", login)}
	case strings.Contains(msg, "401"):
		return &domain.AuthenticationError{Reason: msg}
	default:
		return &domain.TransientAPIError{Op: "check user", Err: err}
	}
}

// ListUserRepositories enumerates all repositories visible to the token,
// including private repositories and forks.
func (g *GitHubGateway) ListUserRepositories(ctx context.Context) ([]domain.RepositoryRef, error) {
	opts := &github.RepositoryListByAuthenticatedUserOptions{
		Affiliation: repoListAffiliation,
		ListOptions: github.ListOptions{PerPage: 100},
	}
	var refs []domain.RepositoryRef
	for {
		callCtx, cancel := g.callContext(ctx)
		repos, resp, err := g.restClient.Repositories.ListByAuthenticatedUser(callCtx, opts)
		cancel()
		if err != nil {
			return nil, g.classify("list repositories", "", err)
		}
		for _, repo := range repos {
			refs = append(refs, domain.RepositoryRef{
				Owner: repo.GetOwner().GetLogin(),
				Name:  repo.GetName(),
			})
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
		g.logger.Debug("fetching next page of repositories", zap.Int("page", resp.NextPage))
	}
	g.logger.Debug("listed repositories", zap.Int("count", len(refs)))
	return refs, nil
}

// GetRepository resolves one repository, normalizing the owner and name to
// their canonical casing.
func (g *GitHubGateway) GetRepository(ctx context.Context, ref domain.RepositoryRef) (domain.RepositoryRef, error) {
	callCtx, cancel := g.callContext(ctx)
	defer cancel()
	repo, _, err := g.restClient.Repositories.Get(callCtx, ref.Owner, ref.Name)
	if err != nil {
		return domain.RepositoryRef{}, g.classify("get repository", ref.FullName(), err)
	}
	return domain.RepositoryRef{
		Owner: repo.GetOwner().GetLogin(),
		Name:  repo.GetName(),
	}, nil
}

// ListCommits fetches the commits authored by author since the given
// instant, walking all result pages.
func (g *GitHubGateway) ListCommits(ctx context.Context, ref domain.RepositoryRef, author string, since time.Time) ([]domain.CommitRecord, error) {
	opts := &github.CommitsListOptions{
		Author:      author,
		Since:       since,
		ListOptions: github.ListOptions{PerPage: 100},
	}
	var records []domain.CommitRecord
	for {
		callCtx, cancel := g.callContext(ctx)
		commits, resp, err := g.restClient.Repositories.ListCommits(callCtx, ref.Owner, ref.Name, opts)
		cancel()
		if err != nil {
			// GitHub answers 409 for a repository with no commits at all.
			if isEmptyRepository(err) {
				g.logger.Debug("repository has no commits", zap.String("repo", ref.FullName()))
				return records, nil
			}
			return nil, g.classify("list commits", ref.FullName(), err)
		}
		for _, commit := range commits {
			records = append(records, domain.CommitRecord{
				Author:    commit.GetAuthor().GetLogin(),
				Timestamp: commit.GetCommit().GetAuthor().GetDate().Time,
			})
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
		g.logger.Debug("fetching next page of commits",
			zap.String("repo", ref.FullName()), zap.Int("page", resp.NextPage))
	}
	return records, nil
}

// ListLanguages returns the byte counts per language for a repository.
func (g *GitHubGateway) ListLanguages(ctx context.Context, ref domain.RepositoryRef) (map[string]int64, error) {
	callCtx, cancel := g.callContext(ctx)
	defer cancel()
	langs, _, err := g.restClient.Repositories.ListLanguages(callCtx, ref.Owner, ref.Name)
	if err != nil {
		return nil, g.classify("list languages", ref.FullName(), err)
	}
	result := make(map[string]int64, len(langs))
	for name, byteCount := range langs {
		result[name] = int64(byteCount)
	}
	return result, nil
}

// callContext bounds a single remote call so a stalled request counts as a
// failed attempt under the retry policy instead of hanging the whole run.
func (g *GitHubGateway) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if g.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, g.callTimeout)
}

// classify maps a go-github error onto the domain error taxonomy.
func (g *GitHubGateway) classify(op, repo string, err error) error {
	var rateErr *github.RateLimitError
	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &rateErr) || errors.As(err, &abuseErr) {
		return &domain.TransientAPIError{Op: op, Err: err}
	}

	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		switch code := ghErr.Response.StatusCode; {
		case code == http.StatusUnauthorized:
			return &domain.AuthenticationError{Reason: err.Error()}
		case repo != "" && (code == http.StatusNotFound || code == http.StatusForbidden || code == http.StatusGone):
			return &domain.RepositoryAccessError{Repo: repo, Err: err}
		case code == http.StatusTooManyRequests || code >= http.StatusInternalServerError:
			return &domain.TransientAPIError{Op: op, Err: err}
		}
		return fmt.Errorf("failed to %s: %w", op, err)
	}

	// No structured response: a network-level failure or timeout.
	return &domain.TransientAPIError{Op: op, Err: err}
}

func isEmptyRepository(err error) bool {
	var ghErr *github.ErrorResponse
	return errors.As(err, &ghErr) && ghErr.Response != nil &&
		ghErr.Response.StatusCode == http.StatusConflict
}

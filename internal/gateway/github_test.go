package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/shurcooL/githubv4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vstanchev/gh-metrics/internal/domain"
)

// setupTestGateway creates a GitHubGateway that communicates with a mock HTTP server.
func setupTestGateway(t *testing.T, handler http.Handler) (*GitHubGateway, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	// Point the REST client at the mock server.
	restClient := github.NewClient(server.Client())
	baseURL, err := url.Parse(server.URL + "/")
	require.NoError(t, err)
	restClient.BaseURL = baseURL

	// NewEnterpriseClient lets the GraphQL client target the mock server too.
	graphqlClient := githubv4.NewEnterpriseClient(server.URL, server.Client())

	gw := &GitHubGateway{
		restClient:    restClient,
		graphqlClient: graphqlClient,
		logger:        zap.NewNop(),
		callTimeout:   5 * time.Second,
	}
	return gw, server
}

func TestNewGitHubGateway_EmptyToken(t *testing.T) {
	gw, err := NewGitHubGateway("", time.Second, zap.NewNop())
	assert.Nil(t, gw)
	var authErr *domain.AuthenticationError
	assert.ErrorAs(t, err, &authErr)
}

func TestGitHubGateway_ListCommits(t *testing.T) {
	ref := domain.RepositoryRef{Owner: "octocat", Name: "hello-world"}

	testCases := []struct {
		name        string
		handlerFunc func(w http.ResponseWriter, r *http.Request)
		expected    []domain.CommitRecord
		wantErrAs   func(error) bool
	}{
		{
			name: "happy path - commits with author and timestamp",
			handlerFunc: func(w http.ResponseWriter, r *http.Request) {
				assert.Contains(t, r.URL.Path, "/repos/octocat/hello-world/commits")
				assert.Equal(t, "octocat", r.URL.Query().Get("author"))
				assert.NotEmpty(t, r.URL.Query().Get("since"))
				w.WriteHeader(http.StatusOK)
				fmt.Fprint(w, `[
					{"sha":"a1","author":{"login":"octocat"},"commit":{"author":{"name":"The Octocat","date":"2026-08-20T10:00:00Z"}}},
					{"sha":"b2","author":{"login":"octocat"},"commit":{"author":{"name":"The Octocat","date":"2026-08-01T08:30:00Z"}}}
				]`)
			},
			expected: []domain.CommitRecord{
				{Author: "octocat", Timestamp: time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)},
				{Author: "octocat", Timestamp: time.Date(2026, 8, 1, 8, 30, 0, 0, time.UTC)},
			},
		},
		{
			name: "empty repository conflict yields zero commits, not an error",
			handlerFunc: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusConflict)
				fmt.Fprint(w, `{"message": "Git Repository is empty."}`)
			},
			expected: nil,
		},
		{
			name: "missing repository maps to RepositoryAccessError",
			handlerFunc: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
				fmt.Fprint(w, `{"message": "Not Found"}`)
			},
			wantErrAs: func(err error) bool {
				var accessErr *domain.RepositoryAccessError
				return assert.ErrorAs(t, err, &accessErr)
			},
		},
		{
			name: "server error maps to TransientAPIError",
			handlerFunc: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				fmt.Fprint(w, `{"message": "Internal Server Error"}`)
			},
			wantErrAs: func(err error) bool {
				var transientErr *domain.TransientAPIError
				return assert.ErrorAs(t, err, &transientErr)
			},
		},
		{
			name: "rejected token maps to AuthenticationError",
			handlerFunc: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
				fmt.Fprint(w, `{"message": "Bad credentials"}`)
			},
			wantErrAs: func(err error) bool {
				var authErr *domain.AuthenticationError
				return assert.ErrorAs(t, err, &authErr)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gw, _ := setupTestGateway(t, http.HandlerFunc(tc.handlerFunc))
			since := time.Date(2025, 8, 23, 0, 0, 0, 0, time.UTC)
			records, err := gw.ListCommits(context.Background(), ref, "octocat", since)
			if tc.wantErrAs != nil {
				tc.wantErrAs(err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, records)
		})
	}
}

func TestGitHubGateway_ListUserRepositories(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/user/repos")
		assert.Equal(t, "owner,collaborator,organization_member", r.URL.Query().Get("affiliation"))
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, `[
			{"name":"hello-world","owner":{"login":"octocat"}},
			{"name":"spoon-knife","owner":{"login":"octocat"}}
		]`)
	}
	gw, _ := setupTestGateway(t, http.HandlerFunc(handler))

	refs, err := gw.ListUserRepositories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.RepositoryRef{
		{Owner: "octocat", Name: "hello-world"},
		{Owner: "octocat", Name: "spoon-knife"},
	}, refs)
}

func TestGitHubGateway_GetRepository(t *testing.T) {
	t.Run("resolves canonical casing", func(t *testing.T) {
		handler := func(w http.ResponseWriter, r *http.Request) {
			assert.Contains(t, r.URL.Path, "/repos/OctoCat/Hello-World")
			w.WriteHeader(http.StatusOK)
			fmt.Fprint(w, `{"name":"hello-world","owner":{"login":"octocat"}}`)
		}
		gw, _ := setupTestGateway(t, http.HandlerFunc(handler))

		ref, err := gw.GetRepository(context.Background(), domain.RepositoryRef{Owner: "OctoCat", Name: "Hello-World"})
		require.NoError(t, err)
		assert.Equal(t, domain.RepositoryRef{Owner: "octocat", Name: "hello-world"}, ref)
	})

	t.Run("renamed or deleted repository is an access error", func(t *testing.T) {
		handler := func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"message": "Not Found"}`)
		}
		gw, _ := setupTestGateway(t, http.HandlerFunc(handler))

		_, err := gw.GetRepository(context.Background(), domain.RepositoryRef{Owner: "octocat", Name: "gone"})
		var accessErr *domain.RepositoryAccessError
		require.ErrorAs(t, err, &accessErr)
		assert.Equal(t, "octocat/gone", accessErr.Repo)
	})
}

func TestGitHubGateway_ListLanguages(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/repos/octocat/hello-world/languages")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, `{"Go": 12345, "Makefile": 200}`)
	}
	gw, _ := setupTestGateway(t, http.HandlerFunc(handler))

	langs, err := gw.ListLanguages(context.Background(), domain.RepositoryRef{Owner: "octocat", Name: "hello-world"})
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"Go": 12345, "Makefile": 200}, langs)
}

func TestGitHubGateway_CheckUser(t *testing.T) {
	testCases := []struct {
		name         string
		responseBody string
		statusCode   int
		check        func(t *testing.T, err error)
	}{
		{
			name:         "known user",
			responseBody: `{"data":{"user":{"login":"octocat"}}}`,
			statusCode:   http.StatusOK,
			check: func(t *testing.T, err error) {
				assert.NoError(t, err)
			},
		},
		{
			name:         "unknown user is a configuration error",
			responseBody: `{"errors":[{"message":"Could not resolve to a User with the login of 'nobody'."}]}`,
			statusCode:   http.StatusOK,
			check: func(t *testing.T, err error) {
				var cfgErr *domain.ConfigurationError
				assert.ErrorAs(t, err, &cfgErr)
			},
		},
		{
			name:         "rejected token is an authentication error",
			responseBody: `{"message": "Bad credentials"}`,
			statusCode:   http.StatusUnauthorized,
			check: func(t *testing.T, err error) {
				var authErr *domain.AuthenticationError
				assert.ErrorAs(t, err, &authErr)
			},
		},
		{
			name:         "server error is transient",
			responseBody: `{"message": "Internal Server Error"}`,
			statusCode:   http.StatusInternalServerError,
			check: func(t *testing.T, err error) {
				var transientErr *domain.TransientAPIError
				assert.ErrorAs(t, err, &transientErr)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			handler := func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.statusCode)
				fmt.Fprint(w, tc.responseBody)
			}
			gw, _ := setupTestGateway(t, http.HandlerFunc(handler))
			tc.check(t, gw.CheckUser(context.Background(), "octocat"))
		})
	}
}

// Package config reads the collector's settings from the environment.
package config

import (
	"strings"

	"github.com/spf13/viper"

	"github.com/vstanchev/gh-metrics/internal/domain"
)

// Environment variable names the scheduled job is configured with.
const (
	EnvToken    = "GH_TOKEN"
	EnvUsername = "GH_USERNAME"
	EnvRepos    = "REPOS_TO_TRACK"
)

// Config holds the validated runtime settings for a collection run.
type Config struct {
	// Token is the GitHub access token. Required.
	Token string
	// Username is the account whose commits are attributed. Required.
	Username string
	// TrackedRepos is the optional allow-list. Empty means "every
	// repository visible to the token".
	TrackedRepos []domain.RepositoryRef
}

// Load reads and validates configuration from the environment. A missing
// token is an authentication problem; everything else wrong here is a
// configuration problem. Both are fatal before any fetch or write happens.
func Load() (*Config, error) {
	v := viper.New()
	_ = v.BindEnv("token", EnvToken)
	_ = v.BindEnv("username", EnvUsername)
	_ = v.BindEnv("repos", EnvRepos)

	cfg := &Config{
		Token:    v.GetString("token"),
		Username: v.GetString("username"),
	}
	if cfg.Token == "" {
		return nil, &domain.AuthenticationError{Reason: EnvToken + " is not set"}
	}
	if cfg.Username == "" {
		return nil, &domain.ConfigurationError{Field: "username", Reason: EnvUsername + " is not set"}
	}

	tracked, err := parseRepoList(v.GetString("repos"))
	if err != nil {
		return nil, err
	}
	cfg.TrackedRepos = tracked
	return cfg, nil
}

// parseRepoList parses the comma-separated allow-list. Blank segments are
// tolerated; anything else must be a well-formed owner/name pair.
func parseRepoList(raw string) ([]domain.RepositoryRef, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var refs []domain.RepositoryRef
	seen := make(map[string]bool)
	for _, entry := range strings.Split(raw, ",") {
		if strings.TrimSpace(entry) == "" {
			continue
		}
		ref, err := domain.ParseRepositoryRef(entry)
		if err != nil {
			return nil, err
		}
		if seen[ref.FullName()] {
			continue
		}
		seen[ref.FullName()] = true
		refs = append(refs, ref)
	}
	return refs, nil
}

package domain

import "fmt"

// AuthenticationError means the access token is missing or was rejected.
// It is always fatal and aborts a run before anything is written.
type AuthenticationError struct {
	Reason string
}

func (e *AuthenticationError) Error() string {
	return "authentication failed: " + e.Reason
}

// ConfigurationError means a required setting is absent or malformed,
// such as an unknown username or a bad allow-list entry. Fatal.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration (%s): %s", e.Field, e.Reason)
}

// RepositoryAccessError means one repository could not be read, typically
// because it was renamed, deleted or made private. Recoverable: the run
// keeps a zero entry for that repository and continues.
type RepositoryAccessError struct {
	Repo string
	Err  error
}

func (e *RepositoryAccessError) Error() string {
	return fmt.Sprintf("repository %s is not accessible: %v", e.Repo, e.Err)
}

func (e *RepositoryAccessError) Unwrap() error { return e.Err }

// TransientAPIError means a remote call failed in a way worth retrying,
// such as a rate-limit response, a 5xx status or a network timeout.
type TransientAPIError struct {
	Op  string
	Err error
}

func (e *TransientAPIError) Error() string {
	return fmt.Sprintf("transient API failure during %s: %v", e.Op, e.Err)
}

func (e *TransientAPIError) Unwrap() error { return e.Err }

// MalformedSnapshotError means the snapshot file is absent, unparsable or
// missing required fields. Fatal for the renderer: no output is written.
type MalformedSnapshotError struct {
	Path   string
	Reason string
	Err    error
}

func (e *MalformedSnapshotError) Error() string {
	msg := "malformed snapshot"
	if e.Path != "" {
		msg += " " + e.Path
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MalformedSnapshotError) Unwrap() error { return e.Err }

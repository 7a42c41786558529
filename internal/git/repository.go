package git

import (
	"context"
	"os"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/riskibarqy/go-autocommit/internal/commit"
	"github.com/riskibarqy/go-autocommit/internal/util"
)

// Backend names accepted by Open.
const (
	BackendGoGit = "go-git"
	BackendCLI   = "git"
)

var (
	// ErrDiffSource marks every failure to read staged changes.
	ErrDiffSource = errors.New("staged diff unavailable")
	// ErrUnknownBackend is returned by Open for an unsupported backend name.
	ErrUnknownBackend = errors.New("unknown git backend")
)

// Repository exposes git operations required by the application.
type Repository interface {
	StagedChanges(ctx context.Context) ([]commit.StagedChange, error)
	Commit(ctx context.Context, msg commit.Message) error
	Root() string
}

// Open returns the Repository for the named backend rooted at path.
func Open(backend, path string) (Repository, error) {
	switch backend {
	case BackendGoGit, "":
		return OpenGoGitRepository(path)
	case BackendCLI:
		return NewCLIRepository(path), nil
	default:
		return nil, errors.Mark(errors.Newf("backend %q", backend), ErrUnknownBackend)
	}
}

// WriteMessageFile writes the message into a commit message file unless the
// file already holds a message. Comment lines already in the file are kept
// below the message. It reports whether the file was written.
func WriteMessageFile(path, message string) (bool, error) {
	existing, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return false, errors.Wrapf(err, "read %s", path)
	}
	if util.HasMessage(string(existing)) {
		return false, nil
	}
	content := message + "\n"
	if template := strings.TrimLeft(string(existing), "\r\n"); template != "" {
		content += "\n" + template
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return false, errors.Wrapf(err, "write %s", path)
	}
	return true, nil
}

func diffSourceError(err error, msg string) error {
	return errors.Mark(errors.Wrap(err, msg), ErrDiffSource)
}

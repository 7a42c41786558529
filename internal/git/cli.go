package git

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"github.com/riskibarqy/go-autocommit/internal/commit"
)

var kindByStatus = map[byte]commit.ChangeKind{
	'A': commit.KindAdd,
	'M': commit.KindModify,
	'D': commit.KindDelete,
	'R': commit.KindRename,
}

// CLIRepository executes git commands through the local CLI.
type CLIRepository struct {
	Dir  string
	Exec func(ctx context.Context, name string, args ...string) *exec.Cmd
}

// nameStatus is one record of `git diff --name-status -z`.
type nameStatus struct {
	code  string
	paths []string
}

// NewCLIRepository returns a concrete Repository backed by the system git binary.
func NewCLIRepository(dir string) *CLIRepository {
	return &CLIRepository{
		Dir: dir,
		Exec: func(ctx context.Context, name string, args ...string) *exec.Cmd {
			return exec.CommandContext(ctx, name, args...)
		},
	}
}

func (r *CLIRepository) Root() string {
	return r.Dir
}

func (r *CLIRepository) StagedChanges(ctx context.Context) ([]commit.StagedChange, error) {
	hasHead, err := r.hasHead(ctx)
	if err != nil {
		return nil, diffSourceError(err, "resolve HEAD")
	}
	if !hasHead {
		otelzap.Ctx(ctx).Debug("No HEAD yet, using status fallback")
		return r.statusFallback(ctx)
	}

	out, err := r.run(ctx, "diff", "--cached", "--no-color", "--name-status", "-M", "-z")
	if err != nil {
		return nil, diffSourceError(err, "list staged files")
	}
	records, err := parseNameStatus(out)
	if err != nil {
		return nil, diffSourceError(err, "parse staged files")
	}

	changes := make([]commit.StagedChange, 0, len(records))
	for _, rec := range records {
		args := append([]string{"--literal-pathspecs", "diff", "--cached", "--no-color", "--no-ext-diff", "-M", "--"}, rec.paths...)
		patch, err := r.run(ctx, args...)
		if err != nil {
			return nil, diffSourceError(err, "diff "+rec.path())
		}
		changes = append(changes, commit.StagedChange{
			Path:  rec.path(),
			Kind:  kindFor(rec.code),
			Patch: patch,
		})
	}

	otelzap.Ctx(ctx).Debug("Staged changes read",
		zap.String("backend", BackendCLI),
		zap.Int("count", len(changes)))
	return changes, nil
}

func (r *CLIRepository) Commit(ctx context.Context, msg commit.Message) error {
	if strings.TrimSpace(msg.Headline) == "" {
		return errors.New("empty headline")
	}

	args := []string{"commit", "-m", msg.Headline}
	if strings.TrimSpace(msg.Body) != "" {
		args = append(args, "-m", msg.Body)
	}

	cmd := r.Exec(ctx, "git", args...)
	cmd.Dir = r.Dir
	cmd.Stdout = os.Stderr
	cmd.Stderr = os.Stderr
	return errors.Wrap(cmd.Run(), "git commit")
}

func (r *CLIRepository) hasHead(ctx context.Context) (bool, error) {
	_, err := r.run(ctx, "rev-parse", "--verify", "--quiet", "HEAD")
	if err == nil {
		return true, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
		return false, nil
	}
	return false, err
}

func (r *CLIRepository) statusFallback(ctx context.Context) ([]commit.StagedChange, error) {
	out, err := r.run(ctx, "status", "--porcelain=v1", "-z", "--untracked-files=no")
	if err != nil {
		return nil, diffSourceError(err, "read status")
	}

	var added, removed []string
	fields := strings.Split(out, "\x00")
	for i := 0; i < len(fields); i++ {
		f := fields[i]
		if len(f) < 4 {
			continue
		}
		switch f[0] {
		case 'A':
			added = append(added, f[3:])
		case 'D':
			removed = append(removed, f[3:])
		case 'R', 'C':
			i++ // the source path follows in its own field
		}
	}
	sort.Strings(added)
	sort.Strings(removed)

	changes := make([]commit.StagedChange, 0, len(added)+len(removed))
	for _, p := range added {
		changes = append(changes, commit.StagedChange{Path: p, Kind: commit.KindAdd})
	}
	for _, p := range removed {
		changes = append(changes, commit.StagedChange{Path: p, Kind: commit.KindDelete})
	}
	return changes, nil
}

func (r *CLIRepository) run(ctx context.Context, args ...string) (string, error) {
	cmd := r.Exec(ctx, "git", args...)
	cmd.Dir = r.Dir
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", errors.Wrapf(err, "git %s: %s", subcommand(args), strings.TrimSpace(stderr.String()))
	}
	return out.String(), nil
}

// subcommand skips global options such as --literal-pathspecs.
func subcommand(args []string) string {
	for _, a := range args {
		if !strings.HasPrefix(a, "-") {
			return a
		}
	}
	return strings.Join(args, " ")
}

// parseNameStatus splits NUL-separated name-status output. Renames and copies
// carry two paths, every other status one.
func parseNameStatus(out string) ([]nameStatus, error) {
	fields := strings.Split(strings.TrimSuffix(out, "\x00"), "\x00")
	if len(fields) == 1 && fields[0] == "" {
		return nil, nil
	}

	var records []nameStatus
	for i := 0; i < len(fields); {
		code := fields[i]
		if code == "" {
			return nil, errors.Newf("empty status at field %d", i)
		}
		n := 1
		if code[0] == 'R' || code[0] == 'C' {
			n = 2
		}
		if i+n >= len(fields) {
			return nil, errors.Newf("status %q is missing paths", code)
		}
		records = append(records, nameStatus{code: code, paths: fields[i+1 : i+1+n]})
		i += 1 + n
	}
	return records, nil
}

// path is the destination path of the record.
func (n nameStatus) path() string {
	return n.paths[len(n.paths)-1]
}

func kindFor(code string) commit.ChangeKind {
	if k, ok := kindByStatus[code[0]]; ok {
		return k
	}
	return commit.ChangeKind(code)
}

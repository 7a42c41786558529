// Package hook installs the prepare-commit-msg hook that re-invokes the CLI
// and redirects the generated message into git's commit message file.
package hook

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

var (
	// ErrNoRepository is returned when the target has no .git directory.
	ErrNoRepository = errors.New("no .git directory found")
	// ErrHookExists is returned when a hook not written by this tool is in the way.
	ErrHookExists = errors.New("hook already exists")
)

// Options configures a hook installation.
type Options struct {
	RepoRoot   string
	Executable string
	GOOS       string
	// Force overwrites hooks that were not written by this tool.
	Force bool
}

// Result lists the files written.
type Result struct {
	HooksDir string
	Paths    []string
}

// Install writes the hook scripts for opts.GOOS into <root>/.git/hooks.
func Install(ctx context.Context, opts Options) (Result, error) {
	logger := otelzap.Ctx(ctx)

	if strings.TrimSpace(opts.Executable) == "" {
		return Result{}, errors.New("executable path is required")
	}

	gitDir := filepath.Join(opts.RepoRoot, ".git")
	if fi, err := os.Stat(gitDir); err != nil || !fi.IsDir() {
		return Result{}, errors.WithHint(
			errors.Mark(errors.Newf("%s", gitDir), ErrNoRepository),
			"run install-hook from the repository root or pass --repo")
	}

	scripts, err := Scripts(opts.GOOS, opts.Executable)
	if err != nil {
		return Result{}, err
	}

	hooksDir := filepath.Join(gitDir, "hooks")
	for _, s := range scripts {
		if err := s.Validate(); err != nil {
			return Result{}, err
		}
		if err := checkExisting(filepath.Join(hooksDir, s.Name), opts.Force); err != nil {
			return Result{}, err
		}
	}

	if err := os.MkdirAll(hooksDir, 0o755); err != nil {
		return Result{}, errors.Wrapf(err, "create %s", hooksDir)
	}

	res := Result{HooksDir: hooksDir}
	for _, s := range scripts {
		path := filepath.Join(hooksDir, s.Name)
		if err := os.WriteFile(path, []byte(s.Content), 0o755); err != nil {
			return Result{}, errors.Wrapf(err, "write %s", path)
		}
		if err := os.Chmod(path, 0o755); err != nil {
			return Result{}, errors.Wrapf(err, "make %s executable", path)
		}
		res.Paths = append(res.Paths, path)
		logger.Info("Hook installed", zap.String("path", path), zap.String("os", opts.GOOS))
	}
	return res, nil
}

// checkExisting refuses to replace a hook that lacks our marker line.
func checkExisting(path string, force bool) error {
	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return errors.Wrapf(err, "read %s", path)
	}
	if force || strings.Contains(string(content), marker) {
		return nil
	}
	return errors.WithHint(
		errors.Mark(errors.Newf("%s", path), ErrHookExists),
		"remove the existing hook or rerun with --force")
}

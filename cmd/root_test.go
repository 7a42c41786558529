package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	gogit "github.com/go-git/go-git/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/go-autocommit/internal/hook"
)

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	root, a := newRootCmd()
	defer a.close()

	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func stagedRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	repo, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "docs"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "docs", "intro.md"), []byte("hello\n"), 0o644))

	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add("docs/intro.md")
	require.NoError(t, err)
	return dir
}

func TestRootWithoutSubcommandPrintsHelp(t *testing.T) {
	out, _, err := run(t)
	require.NoError(t, err)
	assert.Contains(t, out, "generate-commit")
	assert.Contains(t, out, "install-hook")
}

func TestGenerateCommitPrintsMessage(t *testing.T) {
	dir := stagedRepo(t)

	out, _, err := run(t, "generate-commit", "--repo", dir)
	require.NoError(t, err)
	assert.Equal(t, "feat(docs): 1 added: intro.md\n", out)
}

func TestGenerateCommitWritesHookFile(t *testing.T) {
	dir := stagedRepo(t)
	msgFile := filepath.Join(t.TempDir(), "COMMIT_EDITMSG")
	require.NoError(t, os.WriteFile(msgFile, []byte("# Please enter the commit message\n"), 0o644))

	_, _, err := run(t, "generate-commit", "--repo", dir, "--hook", msgFile)
	require.NoError(t, err)

	content, err := os.ReadFile(msgFile)
	require.NoError(t, err)
	assert.Equal(t, "feat(docs): 1 added: intro.md\n\n# Please enter the commit message\n", string(content))
}

func TestInvalidBackendIsRejected(t *testing.T) {
	_, _, err := run(t, "generate-commit", "--backend", "svn")
	require.Error(t, err)
	assert.Contains(t, errors.GetAllHints(err), "use --backend go-git or --backend git")
}

func TestInstallHookWithoutRepository(t *testing.T) {
	_, _, err := run(t, "install-hook", "--repo", t.TempDir())
	require.Error(t, err)
	assert.True(t, errors.Is(err, hook.ErrNoRepository), "got %v", err)
}

func TestInstallHookFromSubdirectory(t *testing.T) {
	dir := stagedRepo(t)

	_, errOut, err := run(t, "install-hook", "--repo", filepath.Join(dir, "docs"))
	require.NoError(t, err)
	assert.Contains(t, errOut, "Installed prepare-commit-msg hook.")
	assert.FileExists(t, filepath.Join(dir, ".git", "hooks", hook.HookName))
}

func TestPrintErrorIncludesHints(t *testing.T) {
	var buf bytes.Buffer
	PrintError(&buf, errors.WithHint(errors.New("boom"), "try again"))
	assert.Contains(t, buf.String(), "❌ boom")
	assert.Contains(t, buf.String(), "hint: try again")
}

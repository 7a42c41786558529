package git

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/memory"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/go-autocommit/internal/commit"
)

var testAuthor = &object.Signature{
	Name:  "Test User",
	Email: "test@example.com",
	When:  time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
}

func newMemoryRepo(t *testing.T) (*gogit.Repository, *gogit.Worktree, billy.Filesystem) {
	t.Helper()
	fs := memfs.New()
	repo, err := gogit.Init(memory.NewStorage(), fs)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)
	return repo, wt, fs
}

func writeFile(t *testing.T, fs billy.Filesystem, name, content string) {
	t.Helper()
	f, err := fs.Create(name)
	require.NoError(t, err)
	_, err = f.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, f.Close())
}

func stage(t *testing.T, wt *gogit.Worktree, fs billy.Filesystem, files map[string]string) {
	t.Helper()
	for name, content := range files {
		writeFile(t, fs, name, content)
		_, err := wt.Add(name)
		require.NoError(t, err)
	}
}

func TestGoGitUnbornBranchUsesStatus(t *testing.T) {
	repo, wt, fs := newMemoryRepo(t)
	stage(t, wt, fs, map[string]string{
		"src/b.go":  "package src\n",
		"README.md": "# readme\n",
	})
	writeFile(t, fs, "untracked.txt", "ignored\n")

	changes, err := NewGoGitRepository(repo).StagedChanges(context.Background())
	require.NoError(t, err)

	want := []commit.StagedChange{
		{Path: "README.md", Kind: commit.KindAdd},
		{Path: "src/b.go", Kind: commit.KindAdd},
	}
	if diff := cmp.Diff(want, changes); diff != "" {
		t.Fatalf("staged changes mismatch (-want +got):\n%s", diff)
	}
}

func TestGoGitStagedChangesAgainstHead(t *testing.T) {
	repo, wt, fs := newMemoryRepo(t)
	stage(t, wt, fs, map[string]string{
		"lib/keep.go":   "package lib\n\nconst A = 1\n",
		"lib/gone.go":   "package lib\n",
		"lib/moved.txt": "same content\n",
	})
	_, err := wt.Commit("initial", &gogit.CommitOptions{Author: testAuthor})
	require.NoError(t, err)

	stage(t, wt, fs, map[string]string{
		"lib/keep.go": "package lib\n\nconst A = 2\n",
		"lib/new.go":  "package lib\n\nfunc New() {}\n",
	})
	_, err = wt.Remove("lib/gone.go")
	require.NoError(t, err)
	_, err = wt.Move("lib/moved.txt", "docs/moved.txt")
	require.NoError(t, err)

	changes, err := NewGoGitRepository(repo).StagedChanges(context.Background())
	require.NoError(t, err)
	require.Len(t, changes, 4)

	kinds := map[string]commit.ChangeKind{}
	for _, c := range changes {
		kinds[c.Path] = c.Kind
	}
	assert.Equal(t, map[string]commit.ChangeKind{
		"docs/moved.txt": commit.KindRename,
		"lib/gone.go":    commit.KindDelete,
		"lib/keep.go":    commit.KindModify,
		"lib/new.go":     commit.KindAdd,
	}, kinds)

	assert.Equal(t, "docs/moved.txt", changes[0].Path, "records are sorted by path")

	byPath := map[string]commit.StagedChange{}
	for _, c := range changes {
		byPath[c.Path] = c
	}
	assert.Contains(t, byPath["lib/keep.go"].Patch, "-const A = 1")
	assert.Contains(t, byPath["lib/keep.go"].Patch, "+const A = 2")
	assert.Contains(t, byPath["lib/new.go"].Patch, "+func New() {}")
	assert.Contains(t, byPath["lib/gone.go"].Patch, "-package lib")
	assert.Contains(t, byPath["docs/moved.txt"].Patch, "rename to docs/moved.txt")

	msg := commit.Generate(changes)
	assert.Equal(t, commit.TypeChore, msg.Type)
	assert.Equal(t, "docs", msg.Scope)
	assert.Contains(t, msg.Body, "- lib/keep.go\n  --- a/lib/keep.go\n  +++ b/lib/keep.go\n  -const A = 1\n  +const A = 2")
}

func TestGoGitCommitUsesGeneratedMessage(t *testing.T) {
	repo, wt, fs := newMemoryRepo(t)
	stage(t, wt, fs, map[string]string{"app/main.go": "package main\n"})

	r := NewGoGitRepository(repo)
	r.Author = testAuthor

	changes, err := r.StagedChanges(context.Background())
	require.NoError(t, err)
	msg := commit.Generate(changes)
	require.NoError(t, r.Commit(context.Background(), msg))

	head, err := repo.Head()
	require.NoError(t, err)
	c, err := repo.CommitObject(head.Hash())
	require.NoError(t, err)
	assert.Equal(t, "feat(app): 1 added: main.go", c.Message)

	changes, err = r.StagedChanges(context.Background())
	require.NoError(t, err)
	assert.Empty(t, changes)
}

func TestGoGitCancelledContext(t *testing.T) {
	repo, wt, fs := newMemoryRepo(t)
	stage(t, wt, fs, map[string]string{"a.txt": "a\n"})
	_, err := wt.Commit("initial", &gogit.CommitOptions{Author: testAuthor})
	require.NoError(t, err)
	stage(t, wt, fs, map[string]string{"a.txt": "b\n"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = NewGoGitRepository(repo).StagedChanges(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDiffSource), "got %v", err)
}

func TestOpenGoGitRepositoryOutsideRepo(t *testing.T) {
	_, err := OpenGoGitRepository(t.TempDir())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDiffSource), "got %v", err)
}

func TestOpenUnknownBackend(t *testing.T) {
	_, err := Open("svn", ".")
	assert.True(t, errors.Is(err, ErrUnknownBackend), "got %v", err)
}

package git

import (
	"context"
	"sort"

	"github.com/cockroachdb/errors"
	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/format/index"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"github.com/riskibarqy/go-autocommit/internal/commit"
)

// GoGitRepository reads the index and HEAD tree in process with go-git.
type GoGitRepository struct {
	repo *gogit.Repository
	root string

	// Author overrides the signature loaded from git config when committing.
	Author *object.Signature
}

// blobRef identifies one side of a staged change.
type blobRef struct {
	path string
	hash plumbing.Hash
	mode filemode.FileMode
}

type stagedEntry struct {
	kind     commit.ChangeKind
	path     string
	from, to *blobRef
}

// OpenGoGitRepository opens the repository containing path.
func OpenGoGitRepository(path string) (*GoGitRepository, error) {
	repo, err := gogit.PlainOpenWithOptions(path, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, diffSourceError(err, "open repository")
	}

	root := path
	if wt, err := repo.Worktree(); err == nil {
		root = wt.Filesystem.Root()
	}
	return &GoGitRepository{repo: repo, root: root}, nil
}

// NewGoGitRepository wraps an already opened repository.
func NewGoGitRepository(repo *gogit.Repository) *GoGitRepository {
	root := ""
	if wt, err := repo.Worktree(); err == nil {
		root = wt.Filesystem.Root()
	}
	return &GoGitRepository{repo: repo, root: root}
}

func (r *GoGitRepository) Root() string {
	return r.root
}

// StagedChanges compares the index against HEAD. On an unborn branch the
// worktree status is used instead and no patch text is produced.
func (r *GoGitRepository) StagedChanges(ctx context.Context) ([]commit.StagedChange, error) {
	logger := otelzap.Ctx(ctx)

	head, err := r.repo.Head()
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		logger.Debug("No HEAD yet, using status fallback")
		return r.statusFallback()
	}
	if err != nil {
		return nil, diffSourceError(err, "resolve HEAD")
	}

	before, err := r.headFiles(head.Hash())
	if err != nil {
		return nil, diffSourceError(err, "read HEAD tree")
	}

	idx, err := r.repo.Storer.Index()
	if err != nil {
		return nil, diffSourceError(err, "read index")
	}

	entries := compareIndex(before, idx)
	changes := make([]commit.StagedChange, 0, len(entries))
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, diffSourceError(err, "compute staged changes")
		}

		patch, err := r.renderPatch(e)
		if err != nil {
			return nil, diffSourceError(err, "render patch for "+e.path)
		}
		changes = append(changes, commit.StagedChange{Path: e.path, Kind: e.kind, Patch: patch})
	}

	logger.Debug("Staged changes read",
		zap.String("backend", BackendGoGit),
		zap.Int("count", len(changes)))
	return changes, nil
}

func (r *GoGitRepository) Commit(ctx context.Context, msg commit.Message) error {
	wt, err := r.repo.Worktree()
	if err != nil {
		return errors.Wrap(err, "open worktree")
	}

	hash, err := wt.Commit(msg.String(), &gogit.CommitOptions{Author: r.Author})
	if err != nil {
		return errors.Wrap(err, "commit")
	}

	otelzap.Ctx(ctx).Info("Committed staged changes",
		zap.String("hash", hash.String()),
		zap.String("headline", msg.Headline))
	return nil
}

func (r *GoGitRepository) headFiles(h plumbing.Hash) (map[string]blobRef, error) {
	c, err := r.repo.CommitObject(h)
	if err != nil {
		return nil, err
	}
	tree, err := c.Tree()
	if err != nil {
		return nil, err
	}

	files := make(map[string]blobRef)
	err = tree.Files().ForEach(func(f *object.File) error {
		files[f.Name] = blobRef{path: f.Name, hash: f.Hash, mode: f.Mode}
		return nil
	})
	return files, err
}

func (r *GoGitRepository) statusFallback() ([]commit.StagedChange, error) {
	wt, err := r.repo.Worktree()
	if err != nil {
		return nil, diffSourceError(err, "open worktree")
	}
	status, err := wt.Status()
	if err != nil {
		return nil, diffSourceError(err, "read status")
	}

	var added, removed []string
	for path, st := range status {
		switch st.Staging {
		case gogit.Added:
			added = append(added, path)
		case gogit.Deleted:
			removed = append(removed, path)
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

// compareIndex diffs the stage-0 index entries against the HEAD files and
// pairs identical deleted/added blobs into renames. The result is sorted by path.
func compareIndex(before map[string]blobRef, idx *index.Index) []stagedEntry {
	after := make(map[string]blobRef, len(idx.Entries))
	conflicted := make(map[string]bool)
	for _, e := range idx.Entries {
		if e.Mode == filemode.Submodule {
			continue
		}
		if e.Stage != 0 {
			conflicted[e.Name] = true
			continue
		}
		after[e.Name] = blobRef{path: e.Name, hash: e.Hash, mode: e.Mode}
	}

	var entries []stagedEntry
	var added []blobRef
	deleted := make(map[plumbing.Hash][]blobRef)

	for path, to := range after {
		from, ok := before[path]
		switch {
		case !ok:
			added = append(added, to)
		case from.hash != to.hash || from.mode != to.mode:
			f, t := from, to
			entries = append(entries, stagedEntry{kind: commit.KindModify, path: path, from: &f, to: &t})
		}
	}
	for path, from := range before {
		if _, ok := after[path]; ok || conflicted[path] {
			continue
		}
		deleted[from.hash] = append(deleted[from.hash], from)
	}
	for path := range conflicted {
		entries = append(entries, stagedEntry{kind: commit.KindModify, path: path})
	}

	sort.Slice(added, func(i, j int) bool { return added[i].path < added[j].path })
	for h := range deleted {
		candidates := deleted[h]
		sort.Slice(candidates, func(i, j int) bool { return candidates[i].path < candidates[j].path })
	}

	for _, to := range added {
		t := to
		if candidates := deleted[to.hash]; len(candidates) > 0 {
			f := candidates[0]
			deleted[to.hash] = candidates[1:]
			entries = append(entries, stagedEntry{kind: commit.KindRename, path: to.path, from: &f, to: &t})
			continue
		}
		entries = append(entries, stagedEntry{kind: commit.KindAdd, path: to.path, to: &t})
	}
	for _, candidates := range deleted {
		for _, from := range candidates {
			f := from
			entries = append(entries, stagedEntry{kind: commit.KindDelete, path: from.path, from: &f})
		}
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].path < entries[j].path })
	return entries
}

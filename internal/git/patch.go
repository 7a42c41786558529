package git

import (
	"bytes"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	fdiff "github.com/go-git/go-git/v5/plumbing/format/diff"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/utils/diff"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// renderPatch produces unified diff text for one staged entry. Entries with
// neither side (conflicts) render as an empty patch.
func (r *GoGitRepository) renderPatch(e stagedEntry) (string, error) {
	if e.from == nil && e.to == nil {
		return "", nil
	}

	fromContent, fromBinary, err := r.blobContent(e.from)
	if err != nil {
		return "", err
	}
	toContent, toBinary, err := r.blobContent(e.to)
	if err != nil {
		return "", err
	}

	fp := &filePatch{from: e.from, to: e.to}
	if fromBinary || toBinary {
		fp.binary = true
	} else {
		for _, d := range diff.Do(fromContent, toContent) {
			fp.chunks = append(fp.chunks, chunk{content: d.Text, op: operation(d.Type)})
		}
	}

	var buf bytes.Buffer
	enc := fdiff.NewUnifiedEncoder(&buf, fdiff.DefaultContextLines)
	if err := enc.Encode(patch{fp}); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (r *GoGitRepository) blobContent(ref *blobRef) (string, bool, error) {
	if ref == nil {
		return "", false, nil
	}
	blob, err := object.GetBlob(r.repo.Storer, ref.hash)
	if err != nil {
		return "", false, err
	}

	f := object.NewFile(ref.path, ref.mode, blob)
	binary, err := f.IsBinary()
	if err != nil || binary {
		return "", binary, err
	}
	content, err := f.Contents()
	return content, false, err
}

func operation(t diffmatchpatch.Operation) fdiff.Operation {
	switch t {
	case diffmatchpatch.DiffInsert:
		return fdiff.Add
	case diffmatchpatch.DiffDelete:
		return fdiff.Delete
	default:
		return fdiff.Equal
	}
}

type patch []fdiff.FilePatch

func (p patch) FilePatches() []fdiff.FilePatch { return p }
func (p patch) Message() string                { return "" }

type filePatch struct {
	from, to *blobRef
	binary   bool
	chunks   []fdiff.Chunk
}

func (p *filePatch) IsBinary() bool        { return p.binary }
func (p *filePatch) Chunks() []fdiff.Chunk { return p.chunks }

// Files returns untyped nils for a missing side, as the encoder expects.
func (p *filePatch) Files() (from, to fdiff.File) {
	if p.from != nil {
		from = patchFile{p.from}
	}
	if p.to != nil {
		to = patchFile{p.to}
	}
	return from, to
}

type patchFile struct{ ref *blobRef }

func (f patchFile) Hash() plumbing.Hash     { return f.ref.hash }
func (f patchFile) Mode() filemode.FileMode { return f.ref.mode }
func (f patchFile) Path() string            { return f.ref.path }

type chunk struct {
	content string
	op      fdiff.Operation
}

func (c chunk) Content() string       { return c.content }
func (c chunk) Type() fdiff.Operation { return c.op }

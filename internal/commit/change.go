package commit

import "strings"

// ChangeKind classifies a staged change. Values outside the four canonical
// kinds are allowed and are treated as KindModify.
type ChangeKind string

const (
	KindAdd    ChangeKind = "ADD"
	KindModify ChangeKind = "MODIFY"
	KindDelete ChangeKind = "DELETE"
	KindRename ChangeKind = "RENAME"
)

// StagedChange is a single file-level change recorded in the index.
type StagedChange struct {
	Path  string
	Kind  ChangeKind
	Patch string
}

// ParseChangeKind maps an arbitrary token onto one of the canonical kinds.
func ParseChangeKind(token string) ChangeKind {
	switch {
	case strings.EqualFold(token, string(KindAdd)):
		return KindAdd
	case strings.EqualFold(token, string(KindDelete)):
		return KindDelete
	case strings.EqualFold(token, string(KindRename)):
		return KindRename
	}
	return KindModify
}

// Normalize returns the canonical kind for k.
func (k ChangeKind) Normalize() ChangeKind {
	return ParseChangeKind(string(k))
}

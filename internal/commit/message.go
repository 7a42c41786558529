package commit

import (
	"fmt"
	"strings"

	"github.com/riskibarqy/go-autocommit/internal/util"
)

const (
	emptyHeadline = "chore: no staged changes"

	maxBodyFiles    = 5
	maxLinesPerFile = 5
	totalRefactor   = 5
)

// Type is the conventional commit type placed at the start of the headline.
type Type string

const (
	TypeFeat     Type = "feat"
	TypeFix      Type = "fix"
	TypeRefactor Type = "refactor"
	TypeChore    Type = "chore"
)

// Counts tallies staged changes per canonical kind.
type Counts struct {
	Added    int
	Modified int
	Deleted  int
	Renamed  int
}

// Message holds the final headline and body to be presented or committed.
type Message struct {
	Type     Type
	Scope    string
	Headline string
	Body     string
}

// String joins headline and body with a single blank line.
func (m Message) String() string {
	if m.Body == "" {
		return m.Headline
	}
	return m.Headline + "\n\n" + m.Body
}

// Synthesize returns the commit message for the staged changes.
func Synthesize(changes []StagedChange) string {
	return Generate(changes).String()
}

// Generate classifies the staged changes and builds a conventional commit message.
func Generate(changes []StagedChange) Message {
	if len(changes) == 0 {
		return Message{Type: TypeChore, Headline: emptyHeadline}
	}

	counts, affected := Classify(changes)
	msg := Message{
		Type:  counts.Type(),
		Scope: InferScope(changes),
		Body:  buildBody(changes),
	}

	prefix := string(msg.Type)
	if msg.Scope != "" {
		prefix += "(" + msg.Scope + ")"
	}
	msg.Headline = fmt.Sprintf("%s: %s: %s", prefix, counts.Phrase(), strings.Join(affected, ", "))
	return msg
}

// Classify counts changes per kind and collects the short file names in input order.
func Classify(changes []StagedChange) (Counts, []string) {
	var counts Counts
	affected := make([]string, 0, len(changes))
	for _, c := range changes {
		counts.add(c.Kind)
		affected = append(affected, util.LastSegment(c.Path))
	}
	return counts, affected
}

func (c *Counts) add(kind ChangeKind) {
	switch kind.Normalize() {
	case KindAdd:
		c.Added++
	case KindDelete:
		c.Deleted++
	case KindRename:
		c.Renamed++
	default:
		c.Modified++
	}
}

// Type picks the commit type. Rules are evaluated in order and renames are ignored.
func (c Counts) Type() Type {
	switch {
	case c.Added > 0 && c.Modified == 0 && c.Deleted == 0:
		return TypeFeat
	case c.Modified > 0 && c.Added == 0 && c.Deleted == 0:
		return TypeFix
	case c.Added+c.Modified+c.Deleted > totalRefactor:
		return TypeRefactor
	default:
		return TypeChore
	}
}

// Phrase renders the non-zero buckets, e.g. "2 added, 1 removed".
func (c Counts) Phrase() string {
	buckets := []struct {
		n    int
		verb string
	}{
		{c.Added, "added"},
		{c.Modified, "changed"},
		{c.Deleted, "removed"},
		{c.Renamed, "renamed"},
	}

	parts := make([]string, 0, len(buckets))
	for _, b := range buckets {
		if b.n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", b.n, b.verb))
		}
	}
	if len(parts) == 0 {
		return "update files"
	}
	return strings.Join(parts, ", ")
}

// InferScope returns the top-level directory of the first change, or "" when
// the first path has no directory component.
func InferScope(changes []StagedChange) string {
	if len(changes) == 0 {
		return ""
	}
	first := changes[0].Path
	if idx := strings.Index(first, "/"); idx > 0 {
		return first[:idx]
	}
	return ""
}

func buildBody(changes []StagedChange) string {
	var sb strings.Builder
	shown := 0
	for _, c := range changes {
		if c.Patch == "" {
			continue
		}
		sb.WriteString("- " + c.Path + "\n")
		for _, line := range util.DiffLines(c.Patch, maxLinesPerFile) {
			sb.WriteString("  " + line + "\n")
		}
		shown++
		if shown >= maxBodyFiles {
			break
		}
	}
	return strings.TrimSpace(sb.String())
}

package util

import (
	"strings"
)

// LastSegment returns the part of a slash-separated path after the last '/'.
func LastSegment(path string) string {
	if idx := strings.LastIndex(path, "/"); idx >= 0 {
		return path[idx+1:]
	}
	return path
}

// DiffLines returns up to limit lines of a unified diff that start with '+'
// or '-'. File header lines ("--- a/x", "+++ b/x") are lines like any other.
func DiffLines(patch string, limit int) []string {
	if patch == "" || limit <= 0 {
		return nil
	}

	var out []string
	for _, line := range strings.Split(patch, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.HasPrefix(line, "+") || strings.HasPrefix(line, "-") {
			out = append(out, line)
			if len(out) >= limit {
				break
			}
		}
	}
	return out
}

// TrimLines splits and removes empty lines, returning a cleaned slice.
func TrimLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return cleaned
}

// HasMessage reports whether a commit message file already carries text
// other than git's '#' comment lines.
func HasMessage(content string) bool {
	for _, line := range TrimLines(content) {
		if !strings.HasPrefix(line, "#") {
			return true
		}
	}
	return false
}

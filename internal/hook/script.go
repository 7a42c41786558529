package hook

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"mvdan.cc/sh/v3/syntax"
)

// HookName is the git hook the tool installs.
const HookName = "prepare-commit-msg"

// marker identifies hook files written by this tool.
const marker = "# go-autocommit " + HookName + " hook"

// Script is one file to be placed in the hooks directory.
type Script struct {
	Name    string
	Content string
	// Shell scripts are parsed as POSIX sh before they are written.
	Shell bool
}

// Scripts returns the hook files for the target OS.
func Scripts(goos, executable string) ([]Script, error) {
	if goos == "windows" {
		return []Script{
			{Name: HookName + ".ps1", Content: powerShellScript(executable)},
			{Name: HookName, Content: powerShellShim(), Shell: true},
		}, nil
	}

	quoted, err := syntax.Quote(executable, syntax.LangPOSIX)
	if err != nil {
		return nil, errors.Wrapf(err, "quote executable path %q", executable)
	}
	return []Script{{Name: HookName, Content: unixScript(quoted), Shell: true}}, nil
}

// Validate parses shell scripts and reports syntax errors.
func (s Script) Validate() error {
	if !s.Shell {
		return nil
	}
	parser := syntax.NewParser(syntax.Variant(syntax.LangPOSIX))
	if _, err := parser.Parse(strings.NewReader(s.Content), s.Name); err != nil {
		return errors.Wrapf(err, "invalid %s script", s.Name)
	}
	return nil
}

func unixScript(quotedExe string) string {
	return fmt.Sprintf(`#!/bin/sh
%s
# Skip merges, squashes, amends and messages given with -m or -F.
case "$2" in
  merge|message|commit|squash) exit 0 ;;
esac

# Keep a message that is already in the file.
if grep -qv -e '^[[:space:]]*#' -e '^[[:space:]]*$' "$1" 2>/dev/null; then
  exit 0
fi

msg=$(%s generate-commit) || exit 0

# Put the message above the comment lines git left in the file.
tmp="$1.autocommit"
{ printf '%%s\n\n' "$msg"; cat "$1" 2>/dev/null; } > "$tmp" && mv "$tmp" "$1"
`, marker, quotedExe)
}

func powerShellScript(executable string) string {
	quoted := "'" + strings.ReplaceAll(executable, "'", "''") + "'"
	return fmt.Sprintf(`%s
param(
    [string]$CommitMsgFile,
    [string]$Source = ""
)

# Skip merges, squashes, amends and messages given with -m or -F.
if ($Source -in @("merge", "message", "commit", "squash")) {
    exit 0
}

$template = @()
if (Test-Path $CommitMsgFile) {
    $template = @(Get-Content $CommitMsgFile)
}

# Keep a message that is already in the file.
$existing = $template | Where-Object { $_ -notmatch '^\s*(#|$)' }
if ($existing) {
    exit 0
}

$commitMsg = & %s generate-commit
if ($LASTEXITCODE -ne 0) {
    exit 0
}

Set-Content -Path $CommitMsgFile -Value (@($commitMsg) + @("") + $template)
`, marker, quoted)
}

func powerShellShim() string {
	return fmt.Sprintf(`#!/bin/sh
%s
exec powershell.exe -NoProfile -ExecutionPolicy Bypass -File "$(dirname "$0")/%s.ps1" "$@"
`, marker, HookName)
}

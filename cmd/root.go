// Package cmd wires the cobra command tree for go-autocommit.
package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/riskibarqy/go-autocommit/internal/config"
	"github.com/riskibarqy/go-autocommit/internal/logging"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ff00")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff0000")).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
)

// app carries state resolved once per invocation and shared by subcommands.
type app struct {
	opts    config.Options
	restore func()
}

func (a *app) close() {
	if a.restore != nil {
		a.restore()
		a.restore = nil
	}
}

// Execute runs the command tree with os.Args.
func Execute(ctx context.Context) error {
	root, a := newRootCmd()
	defer a.close()
	return root.ExecuteContext(ctx)
}

func newRootCmd() (*cobra.Command, *app) {
	a := &app{}
	root := &cobra.Command{
		Use:   "go-autocommit",
		Short: "Generate conventional commit messages from staged changes",
		Long: `go-autocommit reads the staged changes of a git repository and derives a
conventional commit message from them: a type, an optional scope, a summary of
the affected files and a short excerpt of the diff.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := config.Load(cmd.Flags())
			if err != nil {
				return err
			}
			a.opts = opts
			a.restore = logging.Init(opts.LogLevel)
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	config.RegisterFlags(root.PersistentFlags())

	root.AddCommand(newGenerateCmd(a), newInstallHookCmd(a))
	return root, a
}

// PrintError reports err and any attached hints in the CLI's error format.
func PrintError(w io.Writer, err error) {
	fmt.Fprintln(w, errorStyle.Render("❌ "+err.Error()))
	for _, hint := range errors.GetAllHints(err) {
		fmt.Fprintln(w, mutedStyle.Render("   hint: "+hint))
	}
}

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"github.com/riskibarqy/go-autocommit/internal/git"
	"github.com/riskibarqy/go-autocommit/internal/usecase"
)

func newGenerateCmd(a *app) *cobra.Command {
	var opts usecase.Options

	cmd := &cobra.Command{
		Use:   "generate-commit",
		Short: "Print a commit message for the staged changes",
		Long: `Reads the staged changes and prints the generated commit message to stdout.
With --commit the staged changes are committed with that message. With --hook
the message is written into the given commit message file instead, unless the
file already holds a message.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), a.opts.Timeout)
			defer cancel()

			otelzap.Ctx(ctx).Debug("Generating commit message",
				zap.String("repo", a.opts.RepoPath),
				zap.String("backend", a.opts.Backend),
				zap.Bool("commit", opts.Commit),
				zap.String("hook", opts.HookPath))

			repo, err := git.Open(a.opts.Backend, a.opts.RepoPath)
			if err != nil {
				return err
			}

			res, err := usecase.NewService(repo).Execute(ctx, opts)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), res.Message.String())
			if res.Committed {
				fmt.Fprintln(cmd.ErrOrStderr(), successStyle.Render("Committed with generated message."))
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&opts.Commit, "commit", "c", false, "Commit the staged changes with the generated message")
	cmd.Flags().StringVar(&opts.HookPath, "hook", "", "Write the message into this commit message file instead of committing")
	return cmd
}

package cmd

import (
	"fmt"
	"os"
	"runtime"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"github.com/riskibarqy/go-autocommit/internal/git"
	"github.com/riskibarqy/go-autocommit/internal/hook"
)

func newInstallHookCmd(a *app) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "install-hook",
		Short: "Install the " + hook.HookName + " hook into the repository",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			root := a.opts.RepoPath
			if repo, err := git.OpenGoGitRepository(root); err == nil {
				root = repo.Root()
			} else {
				otelzap.Ctx(ctx).Debug("Repository discovery failed, using path as given",
					zap.String("path", root), zap.Error(err))
			}

			exe, err := os.Executable()
			if err != nil {
				return errors.Wrap(err, "resolve executable path")
			}

			res, err := hook.Install(ctx, hook.Options{
				RepoRoot:   root,
				Executable: exe,
				GOOS:       runtime.GOOS,
				Force:      force,
			})
			if err != nil {
				return err
			}

			out := cmd.ErrOrStderr()
			fmt.Fprintln(out, successStyle.Render("Installed "+hook.HookName+" hook."))
			for _, p := range res.Paths {
				fmt.Fprintln(out, mutedStyle.Render("  "+p))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite a hook that was not installed by go-autocommit")
	return cmd
}

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/egoavara/brat/internal/autoupdate"
	"github.com/egoavara/brat/internal/i18n"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check registered plugins and themes for updates",
	Long: `Check every registered plugin, and with --themes every theme, for updates.

Available updates are listed and applied after confirmation. Frozen
plugins are listed but never updated.

Example:
  brat check               # check plugins, ask before updating
  brat check --only-check  # report only
  brat check --themes -y   # plugins and themes, no prompt`,
	RunE: runCheck,
}

var (
	checkOnly   bool
	checkYes    bool
	checkThemes bool
)

func init() {
	checkCmd.Flags().BoolVar(&checkOnly, "only-check", false, "report updates without applying them")
	checkCmd.Flags().BoolVarP(&checkYes, "yes", "y", false, "apply updates without asking")
	checkCmd.Flags().BoolVarP(&checkThemes, "themes", "t", false, "also check themes")
}

func runCheck(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	a, err := loadApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	fmt.Println(i18n.T("update.checking", nil))
	result := a.checker.CheckAll(cmd.Context(), checkThemes)
	for _, err := range result.Errors {
		a.warn(err)
	}

	autoupdate.ShowUpdateSummary(os.Stdout, result)
	if !result.HasAnyUpdate || checkOnly {
		return nil
	}

	if !checkYes && !autoupdate.PromptUpdate(os.Stdin, os.Stdout, result) {
		fmt.Println(i18n.T("update.skipped", nil))
		return nil
	}

	return applyUpdates(cmd, a, result)
}

// applyUpdates applies result and sends one notice per applied item
func applyUpdates(cmd *cobra.Command, a *app, result *autoupdate.CheckResult) error {
	applied, err := autoupdate.NewUpdater(a.installer).ApplyUpdates(cmd.Context(), result)
	for _, u := range applied {
		if u.Type == autoupdate.UpdateTypeTheme {
			a.notify("theme.updated", map[string]any{"Repo": u.Repo})
			continue
		}
		a.notify("plugin.updated", map[string]any{
			"Repo":    u.Repo,
			"ID":      u.Label(),
			"Version": u.RemoteVer,
		})
	}
	return err
}

package cmd

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"

	"github.com/egoavara/brat/internal/autoupdate"
	"github.com/egoavara/brat/internal/i18n"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Apply startup updates and open the vault in Obsidian",
	Long: `Run the startup updates configured for the vault, then open it in Obsidian.

Plugins are updated when updateAtStartup is set and themes when
updateThemesAtStartup is set. Failed updates are reported but never
prevent the vault from opening.

Example:
  brat run
  brat run --no-open   # only run the startup updates`,
	Args: cobra.NoArgs,
	RunE: runStartup,
}

var runNoOpen bool

func init() {
	runCmd.Flags().BoolVar(&runNoOpen, "no-open", false, "do not open the vault in Obsidian")
	rootCmd.AddCommand(runCmd)
}

func runStartup(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	a, err := loadApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	st := a.store.Snapshot()
	if st.UpdateAtStartup || st.UpdateThemesAtStartup {
		fmt.Println(i18n.T("update.checking", nil))

		result := &autoupdate.CheckResult{}
		if st.UpdateAtStartup {
			plugins, errs := a.checker.CheckPlugins(cmd.Context())
			result.Plugins = plugins
			result.Errors = append(result.Errors, errs...)
		}
		if st.UpdateThemesAtStartup {
			themes, errs := a.checker.CheckThemes(cmd.Context())
			result.Themes = themes
			result.Errors = append(result.Errors, errs...)
		}
		result.HasAnyUpdate = result.TotalUpdates() > 0

		for _, err := range result.Errors {
			a.warn(err)
		}
		if result.HasAnyUpdate {
			if err := applyUpdates(cmd, a, result); err != nil {
				a.warn(err)
			}
		} else {
			fmt.Println(i18n.T("update.noUpdates", nil))
		}
	}

	if runNoOpen {
		return nil
	}
	if err := browser.OpenURL(obsidianURI(a.vault.Root)); err != nil {
		fmt.Fprintln(os.Stderr, i18n.T("run.openFailed", map[string]any{"Error": err.Error()}))
	}
	return nil
}

// obsidianURI returns the URI that opens the vault at root in Obsidian.
// The path is escaped as a query value, with spaces as %20.
func obsidianURI(root string) string {
	return "obsidian://open?path=" + strings.ReplaceAll(url.QueryEscape(root), "+", "%20")
}

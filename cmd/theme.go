package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/egoavara/brat/internal/i18n"
	"github.com/egoavara/brat/internal/remote"
	"github.com/egoavara/brat/internal/search"
	"github.com/egoavara/brat/internal/tui"
)

var themeCmd = &cobra.Command{
	Use:   "theme",
	Short: "Manage beta themes",
	Long: `Manage beta themes installed from GitHub repositories.

Themes have no releases: the stylesheet on the default branch is the
installed version, and an update is available whenever it changes.

Commands:
  add      Add a beta theme
  list     List registered themes
  update   Update registered theme(s)
  remove   Remove a beta theme`,
}

var themeAddCmd = &cobra.Command{
	Use:   "add [owner/repo]",
	Short: "Add a beta theme from a GitHub repository",
	Long: `Add a beta theme from a GitHub repository.

theme-beta.css is used when the repository has one, otherwise theme.css.
Without arguments, prompts for the repository.

Example:
  brat theme add kepano/obsidian-minimal`,
	Args: cobra.MaximumNArgs(1),
	RunE: runThemeAdd,
}

var themeListCmd = &cobra.Command{
	Use:   "list [query]",
	Short: "List registered themes",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runThemeList,
}

var themeUpdateCmd = &cobra.Command{
	Use:   "update [owner/repo...]",
	Short: "Update registered theme(s)",
	Long: `Refetch the stylesheet of registered themes and reinstall the ones
that changed.

Without arguments, opens an interactive picker; use --all to update
every theme without asking.`,
	RunE: runThemeUpdate,
}

var themeRemoveCmd = &cobra.Command{
	Use:     "remove [owner/repo...]",
	Aliases: []string{"rm"},
	Short:   "Remove a beta theme",
	RunE:    runThemeRemove,
}

var themeUpdateAll bool

func init() {
	themeUpdateCmd.Flags().BoolVarP(&themeUpdateAll, "all", "a", false, "update every registered theme")

	themeCmd.AddCommand(themeAddCmd)
	themeCmd.AddCommand(themeListCmd)
	themeCmd.AddCommand(themeUpdateCmd)
	themeCmd.AddCommand(themeRemoveCmd)
}

func runThemeAdd(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	var repo string
	if len(args) == 0 {
		r, _, ok, err := tui.RunAddPrompt(false)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		repo = r
	} else {
		r, err := remote.ParseRepo(args[0])
		if err != nil {
			return err
		}
		repo = r
	}

	a, err := loadApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	fmt.Println(i18n.T("theme.adding", map[string]any{"Repo": repo}))

	result, err := a.installer.AddTheme(cmd.Context(), repo)
	if err != nil {
		return err
	}

	a.notify("theme.added", map[string]any{"Repo": repo, "Name": result.Name})
	return nil
}

func runThemeList(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	a, err := loadApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	query := ""
	if len(args) > 0 {
		query = args[0]
	}

	items := themeItems(a)
	if len(items) == 0 {
		fmt.Println(i18n.T("theme.none", nil))
		return nil
	}
	return renderThemeTable(os.Stdout, filterItems(items, query, listExact))
}

func runThemeUpdate(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	a, err := loadApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	repos := args
	if themeUpdateAll {
		repos = themeRepos(a)
	}
	repos, err = resolveRepos(themeItems(a), repos, i18n.T("action.update", nil))
	if err != nil || len(repos) == 0 {
		return err
	}

	var failed []error
	for _, repo := range repos {
		updated, err := a.installer.UpdateTheme(cmd.Context(), repo)
		switch {
		case err != nil:
			a.warn(err)
			failed = append(failed, err)
		case updated:
			a.notify("theme.updated", map[string]any{"Repo": repo})
		default:
			fmt.Println(i18n.T("theme.upToDate", map[string]any{"Repo": repo}))
		}
	}

	return errors.Join(failed...)
}

func runThemeRemove(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	a, err := loadApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	repos, err := resolveRepos(themeItems(a), args, i18n.T("action.remove", nil))
	if err != nil || len(repos) == 0 {
		return err
	}

	for _, repo := range repos {
		if !a.store.HasTheme(repo) {
			return errors.New(i18n.T("theme.notRegistered", map[string]any{"Repo": repo}))
		}
		if err := a.installer.RemoveTheme(cmd.Context(), repo); err != nil {
			return err
		}
		a.notify("theme.removed", map[string]any{"Repo": repo})
	}
	return nil
}

// themeItems lists theme records in stored order, duplicates included
func themeItems(a *app) []tui.RepoItem {
	var items []tui.RepoItem
	for _, t := range a.store.Themes() {
		items = append(items, tui.RepoItem{
			Entry:    search.Entry{Repo: t.Repo, Kind: search.KindTheme},
			Checksum: t.LastUpdate,
		})
	}
	return items
}

// themeRepos lists registered theme repositories once each
func themeRepos(a *app) []string {
	var repos []string
	for _, t := range a.store.Themes() {
		repos = append(repos, t.Repo)
	}
	return uniqueRepos(repos)
}

package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"

	"github.com/egoavara/brat/internal/autoupdate"
	"github.com/egoavara/brat/internal/i18n"
	"github.com/egoavara/brat/internal/remote"
	"github.com/egoavara/brat/internal/search"
	"github.com/egoavara/brat/internal/tui"
)

var pluginCmd = &cobra.Command{
	Use:   "plugin",
	Short: "Manage beta plugins",
	Long: `Manage beta plugins installed from GitHub repositories.

Commands:
  add      Add a beta plugin
  list     List registered plugins
  update   Update registered plugin(s)
  remove   Remove a beta plugin
  enable   Enable a plugin in the vault
  disable  Disable a plugin in the vault
  open     Open a plugin's repository in the browser`,
}

var pluginAddCmd = &cobra.Command{
	Use:   "add [owner/repo]",
	Short: "Add a beta plugin from a GitHub repository",
	Long: `Add a beta plugin from a GitHub repository.

The latest release is installed, using manifest-beta.json when the
repository has one. With --version the given release is installed and
the plugin is frozen: it is never updated afterwards.

Without arguments, prompts for the repository.

Example:
  brat plugin add blacksmithgu/obsidian-dataview
  brat plugin add https://github.com/owner/repo --version 1.0.2`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPluginAdd,
}

var pluginListCmd = &cobra.Command{
	Use:   "list [query]",
	Short: "List registered plugins",
	Long: `List registered beta plugins with their installed and frozen versions.

An optional query filters repositories with fuzzy matching.

Example:
  brat plugin list
  brat plugin list dataview`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPluginList,
}

var pluginUpdateCmd = &cobra.Command{
	Use:   "update [owner/repo...]",
	Short: "Update registered plugin(s)",
	Long: `Reinstall the latest release of registered plugins.

Frozen plugins are skipped. Without arguments, opens an interactive
picker; use --all to update every plugin without asking.

Example:
  brat plugin update owner/repo
  brat plugin update --all`,
	RunE: runPluginUpdate,
}

var pluginRemoveCmd = &cobra.Command{
	Use:     "remove [owner/repo...]",
	Aliases: []string{"rm", "uninstall"},
	Short:   "Remove a beta plugin",
	Long: `Unregister a beta plugin and delete its files from the vault.

Without arguments, opens an interactive picker.

Example:
  brat plugin remove owner/repo`,
	RunE: runPluginRemove,
}

var pluginEnableCmd = &cobra.Command{
	Use:   "enable [owner/repo...]",
	Short: "Enable a plugin in the vault",
	RunE:  runPluginEnable,
}

var pluginDisableCmd = &cobra.Command{
	Use:   "disable [owner/repo...]",
	Short: "Disable a plugin in the vault",
	RunE:  runPluginDisable,
}

var pluginOpenCmd = &cobra.Command{
	Use:   "open [owner/repo]",
	Short: "Open a plugin's repository in the browser",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runPluginOpen,
}

var (
	pluginAddVersion string
	pluginAddEnable  bool
	pluginUpdateAll  bool
)

func init() {
	pluginAddCmd.Flags().StringVar(&pluginAddVersion, "version", "", "install this release and freeze the plugin to it")
	pluginAddCmd.Flags().BoolVarP(&pluginAddEnable, "enable", "e", false, "enable the plugin after installing")
	pluginUpdateCmd.Flags().BoolVarP(&pluginUpdateAll, "all", "a", false, "update every registered plugin")

	pluginCmd.AddCommand(pluginAddCmd)
	pluginCmd.AddCommand(pluginListCmd)
	pluginCmd.AddCommand(pluginUpdateCmd)
	pluginCmd.AddCommand(pluginRemoveCmd)
	pluginCmd.AddCommand(pluginEnableCmd)
	pluginCmd.AddCommand(pluginDisableCmd)
	pluginCmd.AddCommand(pluginOpenCmd)
}

func runPluginAdd(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	var repo, version string
	if len(args) == 0 {
		var ok bool
		var err error
		repo, version, ok, err = tui.RunAddPrompt(true)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
	} else {
		var err error
		repo, err = remote.ParseRepo(args[0])
		if err != nil {
			return err
		}
		version = pluginAddVersion
	}

	a, err := loadApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	fmt.Println(i18n.T("plugin.adding", map[string]any{"Repo": repo}))

	result, err := a.installer.AddPlugin(cmd.Context(), repo, version)
	if err != nil {
		return err
	}

	if pluginAddEnable {
		if err := a.vault.EnablePlugin(result.Name); err != nil {
			return err
		}
	}

	a.notify("plugin.added", map[string]any{
		"Repo":    repo,
		"ID":      result.Name,
		"Version": result.Version,
	})
	if version != "" {
		fmt.Println(i18n.T("plugin.frozenNotice", map[string]any{"Version": version}))
	}
	return nil
}

func runPluginList(cmd *cobra.Command, args []string) error {
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

	items := pluginItems(a)
	if len(items) == 0 {
		fmt.Println(i18n.T("plugin.none", nil))
		return nil
	}

	return renderPluginTable(os.Stdout, filterItems(items, query, listExact))
}

func runPluginUpdate(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	a, err := loadApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	repos := args
	if pluginUpdateAll {
		repos = a.store.Plugins()
	}
	repos, err = resolveRepos(pluginItems(a), repos, i18n.T("action.update", nil))
	if err != nil || len(repos) == 0 {
		return err
	}

	var failed []error
	for _, repo := range repos {
		result, err := a.installer.UpdatePlugin(cmd.Context(), repo)
		switch {
		case errors.Is(err, autoupdate.ErrFrozen):
			fmt.Println(i18n.T("plugin.skipFrozen", map[string]any{"Repo": repo}))
		case err != nil:
			a.warn(err)
			failed = append(failed, err)
		default:
			a.notify("plugin.updated", map[string]any{
				"Repo":    repo,
				"ID":      result.Name,
				"Version": result.Version,
			})
		}
	}

	return errors.Join(failed...)
}

func runPluginRemove(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	a, err := loadApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	repos, err := resolveRepos(pluginItems(a), args, i18n.T("action.remove", nil))
	if err != nil || len(repos) == 0 {
		return err
	}

	for _, repo := range repos {
		if !a.store.HasPlugin(repo) {
			return errors.New(i18n.T("plugin.notRegistered", map[string]any{"Repo": repo}))
		}
		if err := a.installer.RemovePlugin(cmd.Context(), repo); err != nil {
			return err
		}
		a.notify("plugin.removed", map[string]any{"Repo": repo})
	}
	return nil
}

func runPluginEnable(cmd *cobra.Command, args []string) error {
	return setPluginsEnabled(cmd, args, true)
}

func runPluginDisable(cmd *cobra.Command, args []string) error {
	return setPluginsEnabled(cmd, args, false)
}

func setPluginsEnabled(cmd *cobra.Command, args []string, enable bool) error {
	cmd.SilenceUsage = true

	a, err := loadApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	action := i18n.T("action.disable", nil)
	if enable {
		action = i18n.T("action.enable", nil)
	}
	repos, err := resolveRepos(pluginItems(a), args, action)
	if err != nil || len(repos) == 0 {
		return err
	}

	for _, repo := range repos {
		mf, err := a.client.FetchManifest(cmd.Context(), repo)
		if err != nil {
			return err
		}

		if enable {
			err = a.vault.EnablePlugin(mf.ID)
		} else {
			err = a.vault.DisablePlugin(mf.ID)
		}
		if err != nil {
			return err
		}

		messageID := "plugin.disabled"
		if enable {
			messageID = "plugin.enabled"
		}
		fmt.Println(i18n.T(messageID, map[string]any{"ID": mf.ID}))
	}

	fmt.Println(i18n.T("plugin.reloadHint", nil))
	return nil
}

func runPluginOpen(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	var repo string
	if len(args) == 1 {
		r, err := remote.ParseRepo(args[0])
		if err != nil {
			return err
		}
		repo = r
	} else {
		a, err := loadApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		repos, err := resolveRepos(pluginItems(a), nil, i18n.T("action.open", nil))
		if err != nil || len(repos) == 0 {
			return err
		}
		repo = repos[0]
	}

	return browser.OpenURL(remote.RepoURL(repo))
}

// pluginItems collects registered plugins with their frozen versions
func pluginItems(a *app) []tui.RepoItem {
	var items []tui.RepoItem
	for _, repo := range a.store.Plugins() {
		version, _ := a.store.FrozenVersion(repo)
		items = append(items, tui.RepoItem{
			Entry: search.Entry{Repo: repo, Kind: search.KindPlugin, Version: version},
		})
	}
	return items
}

// resolveRepos normalizes repository arguments, or asks with the finder when there are none
func resolveRepos(items []tui.RepoItem, args []string, action string) ([]string, error) {
	if len(args) > 0 {
		repos := make([]string, 0, len(args))
		for _, arg := range args {
			repo, err := remote.ParseRepo(arg)
			if err != nil {
				return nil, err
			}
			repos = append(repos, repo)
		}
		return uniqueRepos(repos), nil
	}

	result, err := tui.RunRepoFinder(items, action)
	if err != nil {
		return nil, err
	}
	if result.Cancelled {
		return nil, nil
	}

	repos := make([]string, 0, len(result.Selected))
	for _, item := range result.Selected {
		repos = append(repos, item.Repo)
	}
	return uniqueRepos(repos), nil
}

// uniqueRepos drops repeated repositories, keeping first-seen order
func uniqueRepos(repos []string) []string {
	seen := make(map[string]bool, len(repos))
	out := repos[:0]
	for _, repo := range repos {
		if !seen[repo] {
			seen[repo] = true
			out = append(out, repo)
		}
	}
	return out
}

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/egoavara/brat/internal/i18n"
	"github.com/egoavara/brat/internal/search"
	"github.com/egoavara/brat/internal/tui"
)

var listCmd = &cobra.Command{
	Use:   "list [query]",
	Short: "Show all registered plugins and themes",
	Long: `Show every beta plugin and theme registered in the vault.

Plugins are shown with their frozen version, if any. With --status the plugin ids are resolved from GitHub
to also show the version installed in the vault and whether Obsidian has
the plugin enabled. Themes are shown with the checksum of the last
installed CSS.

Example:
  brat list
  brat list --status
  brat list minimal
  brat list --exact kepano`,
	Args: cobra.MaximumNArgs(1),
	RunE: runList,
}

var (
	listStatus bool
	listExact  bool
)

func init() {
	listCmd.Flags().BoolVarP(&listStatus, "status", "s", false, "show installed version and enabled state (queries GitHub)")
	for _, c := range []*cobra.Command{listCmd, pluginListCmd, themeListCmd} {
		c.Flags().BoolVarP(&listExact, "exact", "e", false, "match the query as a substring instead of fuzzily")
	}
}

func runList(cmd *cobra.Command, args []string) error {
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

	plugins := filterItems(pluginItems(a), query, listExact)
	themes := filterItems(themeItems(a), query, listExact)

	fmt.Println(i18n.T("list.pluginsHeader", map[string]any{"Count": len(plugins)}))
	if len(plugins) == 0 {
		fmt.Println(i18n.T("plugin.none", nil))
	} else {
		if listStatus {
			plugins = withInstallState(cmd.Context(), a, plugins)
		}
		if err := renderPluginTable(os.Stdout, plugins); err != nil {
			return err
		}
	}

	fmt.Println()
	fmt.Println(i18n.T("list.themesHeader", map[string]any{"Count": len(themes)}))
	if len(themes) == 0 {
		fmt.Println(i18n.T("theme.none", nil))
		return nil
	}
	return renderThemeTable(os.Stdout, themes)
}

// filterItems keeps the items whose repository matches query,
// fuzzily or, with exact, as a case-insensitive substring
func filterItems(items []tui.RepoItem, query string, exact bool) []tui.RepoItem {
	if query == "" {
		return items
	}

	entries := make([]search.Entry, len(items))
	for i, item := range items {
		entries[i] = item.Entry
	}

	var matches []search.SearchResult
	if exact {
		matches = search.SimpleSearch(entries, query)
	} else {
		matches = search.FuzzySearch(entries, query)
	}
	filtered := make([]tui.RepoItem, 0, len(matches))
	for _, m := range matches {
		filtered = append(filtered, items[m.Index])
	}
	return filtered
}

// withInstallState fills in the installed version and enabled flag from the vault.
// The plugin id of each repository is read from its remote manifest.
func withInstallState(ctx context.Context, a *app, items []tui.RepoItem) []tui.RepoItem {
	enabled, err := a.vault.EnabledPlugins()
	if err != nil {
		a.warn(err)
	}

	out := make([]tui.RepoItem, len(items))
	for i, item := range items {
		out[i] = item
		mf, err := a.client.FetchManifest(ctx, item.Repo)
		if err != nil {
			a.warn(err)
			continue
		}
		id := mf.ID
		if v, err := a.vault.InstalledVersion(id); err == nil {
			out[i].Installed = v
		}
		for _, e := range enabled {
			if e == id {
				out[i].Enabled = true
				break
			}
		}
	}
	return out
}

func renderPluginTable(w io.Writer, items []tui.RepoItem) error {
	table := tablewriter.NewWriter(w)
	table.Header(
		i18n.T("list.colRepo", nil),
		i18n.T("list.colInstalled", nil),
		i18n.T("list.colFrozen", nil),
		i18n.T("list.colEnabled", nil),
	)

	for _, item := range items {
		enabled := ""
		if item.Enabled {
			enabled = "✓"
		}
		if err := table.Append(item.Repo, dash(item.Installed), dash(item.Version), enabled); err != nil {
			return err
		}
	}
	return table.Render()
}

func renderThemeTable(w io.Writer, items []tui.RepoItem) error {
	table := tablewriter.NewWriter(w)
	table.Header(
		i18n.T("list.colRepo", nil),
		i18n.T("list.colChecksum", nil),
	)

	for _, item := range items {
		if err := table.Append(item.Repo, dash(shortSum(item.Checksum))); err != nil {
			return err
		}
	}
	return table.Render()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func shortSum(sum string) string {
	if len(sum) > 12 {
		return sum[:12]
	}
	return sum
}

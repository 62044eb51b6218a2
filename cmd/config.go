package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/egoavara/brat/internal/config"
	"github.com/egoavara/brat/internal/i18n"
	"github.com/egoavara/brat/internal/settings"
	"github.com/egoavara/brat/internal/tui"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage brat and vault settings",
	Long: `Manage brat's own configuration and the BRAT settings of the vault.

brat's configuration (locale, default vault, GitHub access) lives in
config.json under ~/.config/brat. Vault settings live in the vault's
.obsidian/plugins/obsidian42-brat/data.json and are shared with the
BRAT Obsidian plugin.

Example:
  brat config show
  brat config set vault ~/Notes
  brat config set updateAtStartup true
  brat config edit`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value.

brat keys:
  locale                 - Language (auto, en-US, ko-KR)
  vault                  - Default Obsidian vault root
  github.token           - GitHub token for API requests
  github.timeout         - Timeout of a single request (e.g. 30s)
  github.retries         - Attempts per request

Vault keys (true/false unless noted):
  updateAtStartup        - Update plugins on 'brat run'
  updateThemesAtStartup  - Update themes on 'brat run'
  ribbonIconEnabled      - Show the BRAT ribbon icon in Obsidian
  loggingEnabled         - Log to a note in the vault
  loggingPath            - Note name for the log (text)
  loggingVerboseEnabled  - Verbose log note
  debuggingMode          - Print progress to the console
  notificationsEnabled   - Print completion notices

Example:
  brat config set locale ko-KR
  brat config set updateAtStartup true`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit vault settings interactively",
	Args:  cobra.NoArgs,
	RunE:  runConfigEdit,
}

var configOutput string

func init() {
	configShowCmd.Flags().StringVarP(&configOutput, "output", "o", "text", "output format (text, json, yaml)")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configEditCmd)
}

// configView is what config show prints
type configView struct {
	Locale   string        `json:"locale" yaml:"locale"`
	Vault    string        `json:"vault" yaml:"vault"`
	Timeout  string        `json:"githubTimeout" yaml:"githubTimeout"`
	Retries  uint          `json:"githubRetries" yaml:"githubRetries"`
	HasToken bool          `json:"githubToken" yaml:"githubToken"`
	Settings *settingsView `json:"settings,omitempty" yaml:"settings,omitempty"`
}

type settingsView struct {
	Plugins     int               `json:"plugins" yaml:"plugins"`
	Frozen      map[string]string `json:"frozen,omitempty" yaml:"frozen,omitempty"`
	Themes      int               `json:"themes" yaml:"themes"`
	LoggingPath string            `json:"loggingPath" yaml:"loggingPath"`
	Toggles     map[string]bool   `json:"toggles" yaml:"toggles"`
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	view := configView{
		Locale:   cfg.Locale,
		Vault:    cfg.Vault,
		Timeout:  cfg.GitHub.Timeout.String(),
		Retries:  cfg.GitHub.Retries,
		HasToken: cfg.GitHub.Token != "" || tokenFlag != "",
	}
	if vaultFlag != "" {
		view.Vault = vaultFlag
	}

	if view.Vault != "" {
		a, err := loadApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()
		view.Vault = a.vault.Root
		view.Settings = newSettingsView(a.store.Snapshot())
	}

	return writeConfigView(os.Stdout, view, configOutput)
}

func newSettingsView(st *settings.Settings) *settingsView {
	v := &settingsView{
		Plugins:     len(st.PluginList),
		Themes:      len(st.ThemesList),
		LoggingPath: st.LoggingPath,
		Toggles:     make(map[string]bool, len(settings.Toggles)),
	}
	for _, t := range settings.Toggles {
		v.Toggles[t.Key] = t.Get(st)
	}
	if len(st.PluginSubListFrozenVersion) > 0 {
		v.Frozen = make(map[string]string, len(st.PluginSubListFrozenVersion))
		for _, f := range st.PluginSubListFrozenVersion {
			v.Frozen[f.Repo] = f.Version
		}
	}
	return v
}

func writeConfigView(w io.Writer, view configView, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(view)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(view); err != nil {
			return err
		}
		return enc.Close()
	case "text":
	default:
		return fmt.Errorf("%s: %s", i18n.T("config.unknownFormat", nil), format)
	}

	fmt.Fprintln(w, i18n.T("config.header", nil))
	fmt.Fprintln(w, strings.Repeat("-", 40))
	fmt.Fprintf(w, "  %s: %s\n", config.KeyLocale, view.Locale)
	fmt.Fprintf(w, "  %s: %s\n", config.KeyVault, dash(view.Vault))
	fmt.Fprintf(w, "  %s: %s\n", config.KeyGitHubTimeout, view.Timeout)
	fmt.Fprintf(w, "  %s: %d\n", config.KeyGitHubRetries, view.Retries)
	token := i18n.T("config.tokenUnset", nil)
	if view.HasToken {
		token = i18n.T("config.tokenSet", nil)
	}
	fmt.Fprintf(w, "  %s: %s\n", config.KeyGitHubToken, token)

	if view.Settings == nil {
		return nil
	}

	st := view.Settings
	fmt.Fprintln(w)
	fmt.Fprintln(w, i18n.T("config.vaultHeader", nil))
	fmt.Fprintln(w, strings.Repeat("-", 40))
	fmt.Fprintf(w, "  %s\n", i18n.T("config.registered", map[string]any{"Plugins": st.Plugins, "Themes": st.Themes}))
	for _, t := range settings.Toggles {
		fmt.Fprintf(w, "  %s: %t\n", t.Key, st.Toggles[t.Key])
	}
	fmt.Fprintf(w, "  %s: %s\n", keyLoggingPath, st.LoggingPath)

	if len(st.Frozen) > 0 {
		repos := make([]string, 0, len(st.Frozen))
		for repo := range st.Frozen {
			repos = append(repos, repo)
		}
		slices.Sort(repos)

		fmt.Fprintln(w)
		fmt.Fprintln(w, i18n.T("config.frozenHeader", nil))
		for _, repo := range repos {
			fmt.Fprintf(w, "  %s@%s\n", repo, st.Frozen[repo])
		}
	}
	return nil
}

const keyLoggingPath = "loggingPath"

func runConfigSet(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	key, value := args[0], args[1]

	if slices.Contains(config.Keys, key) {
		if err := config.Set(key, value); err != nil {
			return err
		}
		if key == config.KeyGitHubToken {
			value = "********"
		}
		fmt.Println(i18n.T("config.saved", map[string]any{"Key": key, "Value": value}))
		return nil
	}

	apply, err := settingSetter(key, value)
	if err != nil {
		return err
	}

	a, err := loadApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.store.Update(cmd.Context(), apply); err != nil {
		return err
	}
	fmt.Println(i18n.T("config.saved", map[string]any{"Key": key, "Value": value}))
	return nil
}

// settingSetter returns the mutation that sets a vault setting key to value
func settingSetter(key, value string) (func(*settings.Settings), error) {
	if key == keyLoggingPath {
		value = strings.TrimSpace(value)
		if value == "" {
			return nil, errors.New(i18n.T("config.emptyValue", map[string]any{"Key": key}))
		}
		return func(s *settings.Settings) { s.LoggingPath = value }, nil
	}

	toggle, ok := settings.LookupToggle(key)
	if !ok {
		return nil, fmt.Errorf("%w: %s", config.ErrUnknownKey, key)
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return nil, errors.New(i18n.T("config.invalidBool", map[string]any{"Key": key, "Value": value}))
	}
	return func(s *settings.Settings) { toggle.Set(s, b) }, nil
}

func runConfigEdit(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	a, err := loadApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	editor, err := tui.RunSettingsEditor(a.store.Snapshot())
	if err != nil {
		return err
	}
	if !editor.IsConfirmed() || !editor.Changed() {
		fmt.Println(i18n.T("config.unchanged", nil))
		return nil
	}

	if err := a.store.Update(cmd.Context(), editor.Apply); err != nil {
		return err
	}
	fmt.Println(i18n.T("config.updated", nil))
	return nil
}

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	verbose   bool
	vaultFlag string
	tokenFlag string

	rootCmd = &cobra.Command{
		Use:           "brat",
		Short:         "Beta Reviewer's Auto-update Tool for Obsidian",
		SilenceErrors: true,
		Long: `brat installs and keeps beta Obsidian plugins and themes up to date
straight from their GitHub repositories.

It reads and writes the same data.json as the BRAT Obsidian plugin,
so a vault can be managed from the terminal or from Obsidian.

Commands:
  plugin   Manage beta plugins (add, list, update, remove, enable, disable, open)
  theme    Manage beta themes (add, list, update, remove)
  check    Check registered plugins and themes for updates
  list     Show all registered plugins and themes
  run      Apply startup updates and open the vault in Obsidian
  config   Manage brat and vault settings

Shortcuts (aliases):
  add      = plugin add
  update   = check`,
	}
)

// createAliasCommand creates a root-level alias that shares flags with a subcommand
func createAliasCommand(subCmd *cobra.Command, aliases []string) *cobra.Command {
	aliasCmd := &cobra.Command{
		Use:     subCmd.Use,
		Short:   subCmd.Short + " (alias)",
		Long:    subCmd.Long,
		Args:    subCmd.Args,
		Aliases: aliases,
		RunE:    subCmd.RunE,
	}
	// Copy all flags from the original command
	subCmd.Flags().VisitAll(func(f *pflag.Flag) {
		aliasCmd.Flags().AddFlag(f)
	})
	return aliasCmd
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&vaultFlag, "vault", "V", "", "Obsidian vault root (default from config or BRAT_VAULT)")
	rootCmd.PersistentFlags().StringVar(&tokenFlag, "token", "", "GitHub token (default from config, BRAT_GITHUB_TOKEN or GITHUB_TOKEN)")

	// Main commands
	rootCmd.AddCommand(pluginCmd)
	rootCmd.AddCommand(themeCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(configCmd)
}

// RegisterAliases registers root-level aliases for subcommands
// Must be called after subcommands are initialized
func RegisterAliases() {
	rootCmd.AddCommand(createAliasCommand(pluginAddCmd, nil))
	update := createAliasCommand(checkCmd, nil)
	update.Use = "update"
	rootCmd.AddCommand(update)
}

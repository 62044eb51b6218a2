package autoupdate

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/egoavara/brat/internal/i18n"
)

// ShowUpdateSummary displays a summary of available updates
func ShowUpdateSummary(out io.Writer, result *CheckResult) {
	for _, p := range result.Frozen() {
		fmt.Fprintf(out, "  [%s] %s\n",
			i18n.T("update.frozen", nil),
			p.Repo+"@"+p.CurrentVer,
		)
	}

	if !result.HasAnyUpdate {
		fmt.Fprintln(out, i18n.T("update.noUpdates", nil))
		return
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, i18n.T("update.available", nil))
	fmt.Fprintln(out)

	for _, p := range result.Plugins {
		if p.HasUpdate {
			fmt.Fprintf(out, "  [%s] %s (%s → %s)%s\n",
				i18n.T("update.typePlugin", nil),
				p.Label(),
				displayVersion(p.CurrentVer),
				p.RemoteVer,
				downgradeMark(p),
			)
		}
	}

	for _, t := range result.Themes {
		if t.HasUpdate {
			fmt.Fprintf(out, "  [%s] %s (%s → %s)\n",
				i18n.T("update.typeTheme", nil),
				t.Label(),
				displayVersion(t.CurrentVer),
				t.RemoteVer,
			)
		}
	}

	fmt.Fprintln(out)
}

func displayVersion(v string) string {
	if v == "" {
		return "-"
	}
	return v
}

func downgradeMark(p UpdateInfo) string {
	if p.CurrentVer != "" && IsNewerVersion(p.CurrentVer, p.RemoteVer) {
		return " " + i18n.T("update.downgrade", nil)
	}
	return ""
}

// PromptUpdate asks the user if they want to apply updates
func PromptUpdate(in io.Reader, out io.Writer, result *CheckResult) bool {
	if !result.HasAnyUpdate {
		return false
	}

	fmt.Fprint(out, i18n.T("update.prompt", nil)+" [Y/n] ")

	reader := bufio.NewReader(in)
	input, err := reader.ReadString('\n')
	if err != nil && input == "" {
		return false
	}

	input = strings.TrimSpace(strings.ToLower(input))

	// Default to yes if empty or explicit yes
	return input == "" || input == "y" || input == "yes"
}

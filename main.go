package main

import (
	"embed"
	"fmt"
	"os"

	"github.com/jeandeaual/go-locale"

	"github.com/egoavara/brat/cmd"
	"github.com/egoavara/brat/internal/config"
	"github.com/egoavara/brat/internal/i18n"
)

//go:embed locales/*.json
var localeFS embed.FS

func main() {
	if err := i18n.Init(localeFS, getLocale()); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}

	// Register root-level aliases (add, update)
	cmd.RegisterAliases()

	cmd.Execute()
}

// getLocale returns the locale based on config
func getLocale() string {
	configLocale := config.DefaultLocale
	if cfg, err := config.Load(); err == nil && cfg.Locale != "" {
		configLocale = cfg.Locale
	}

	// If "auto", detect system locale
	if configLocale == config.DefaultLocale {
		userLocale, err := locale.GetLocale()
		if err != nil || userLocale == "" {
			return "en-US"
		}
		return userLocale
	}

	return configLocale
}

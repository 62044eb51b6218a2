package i18n

import (
	"encoding/json"
	"fmt"
	"io/fs"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

var (
	bundle    *i18n.Bundle
	localizer *i18n.Localizer
)

// Message files loaded from the locale filesystem
var localeFiles = []string{
	"locales/en-us.json",
	"locales/ko-kr.json",
}

// Init initializes the i18n bundle with the given locale files
func Init(localeFS fs.FS, lang string) error {
	bundle = i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	for _, name := range localeFiles {
		if _, err := bundle.LoadMessageFileFS(localeFS, name); err != nil {
			return fmt.Errorf("failed to load %s: %w", name, err)
		}
	}

	localizer = i18n.NewLocalizer(bundle, lang)
	return nil
}

// T translates a message by its ID with optional template data and plural count
func T(messageID string, templateData map[string]interface{}, pluralCount ...int) string {
	if localizer == nil {
		return messageID
	}

	config := &i18n.LocalizeConfig{
		MessageID:    messageID,
		TemplateData: templateData,
	}
	if len(pluralCount) > 0 {
		config.PluralCount = pluralCount[0]
	}

	msg, err := localizer.Localize(config)
	if err != nil {
		// Return message ID if translation fails
		return messageID
	}
	return msg
}

// SetLocale changes the current locale
func SetLocale(lang string) {
	if bundle == nil {
		return
	}
	localizer = i18n.NewLocalizer(bundle, lang)
}

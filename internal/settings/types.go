package settings

// DefaultLoggingPath is the vault note BRAT logs into when logging is enabled
const DefaultLoggingPath = "BRAT-log"

// FrozenVersion pins a repository to a release tag
type FrozenVersion struct {
	Repo    string `json:"repo"`
	Version string `json:"version"`
}

// ThemeInfo tracks a beta theme by the checksum of its stylesheet
type ThemeInfo struct {
	Repo       string `json:"repo"`
	LastUpdate string `json:"lastUpdate"` // checksum of theme-beta.css or theme.css
}

// Settings represents the data.json document of the BRAT plugin
type Settings struct {
	PluginList                 []string        `json:"pluginList"`
	PluginSubListFrozenVersion []FrozenVersion `json:"pluginSubListFrozenVersion"`
	ThemesList                 []ThemeInfo     `json:"themesList"`
	UpdateAtStartup            bool            `json:"updateAtStartup"`
	UpdateThemesAtStartup      bool            `json:"updateThemesAtStartup"`
	RibbonIconEnabled          bool            `json:"ribbonIconEnabled"`
	LoggingEnabled             bool            `json:"loggingEnabled"`
	LoggingPath                string          `json:"loggingPath"`
	LoggingVerboseEnabled      bool            `json:"loggingVerboseEnabled"`
	DebuggingMode              bool            `json:"debuggingMode"`
	NotificationsEnabled       bool            `json:"notificationsEnabled"`
}

// Defaults returns a new Settings with default values
func Defaults() *Settings {
	return &Settings{
		PluginList:                 []string{},
		PluginSubListFrozenVersion: []FrozenVersion{},
		ThemesList:                 []ThemeInfo{},
		UpdateAtStartup:            false,
		UpdateThemesAtStartup:      false,
		RibbonIconEnabled:          true,
		LoggingEnabled:             false,
		LoggingPath:                DefaultLoggingPath,
		LoggingVerboseEnabled:      false,
		DebuggingMode:              true,
		NotificationsEnabled:       true,
	}
}

// Clone returns a deep copy of s
func (s *Settings) Clone() *Settings {
	c := *s
	c.PluginList = append([]string{}, s.PluginList...)
	c.PluginSubListFrozenVersion = append([]FrozenVersion{}, s.PluginSubListFrozenVersion...)
	c.ThemesList = append([]ThemeInfo{}, s.ThemesList...)
	return &c
}

// normalize replaces lists nulled out by the persisted record with empty ones
func (s *Settings) normalize() {
	if s.PluginList == nil {
		s.PluginList = []string{}
	}
	if s.PluginSubListFrozenVersion == nil {
		s.PluginSubListFrozenVersion = []FrozenVersion{}
	}
	if s.ThemesList == nil {
		s.ThemesList = []ThemeInfo{}
	}
}

package settings

// Toggle is a boolean option of the document addressed by its JSON key
type Toggle struct {
	Key string
	Get func(*Settings) bool
	Set func(*Settings, bool)
}

// Toggles lists the boolean options in document order
var Toggles = []Toggle{
	{
		Key: "updateAtStartup",
		Get: func(s *Settings) bool { return s.UpdateAtStartup },
		Set: func(s *Settings, v bool) { s.UpdateAtStartup = v },
	},
	{
		Key: "updateThemesAtStartup",
		Get: func(s *Settings) bool { return s.UpdateThemesAtStartup },
		Set: func(s *Settings, v bool) { s.UpdateThemesAtStartup = v },
	},
	{
		Key: "ribbonIconEnabled",
		Get: func(s *Settings) bool { return s.RibbonIconEnabled },
		Set: func(s *Settings, v bool) { s.RibbonIconEnabled = v },
	},
	{
		Key: "loggingEnabled",
		Get: func(s *Settings) bool { return s.LoggingEnabled },
		Set: func(s *Settings, v bool) { s.LoggingEnabled = v },
	},
	{
		Key: "loggingVerboseEnabled",
		Get: func(s *Settings) bool { return s.LoggingVerboseEnabled },
		Set: func(s *Settings, v bool) { s.LoggingVerboseEnabled = v },
	},
	{
		Key: "debuggingMode",
		Get: func(s *Settings) bool { return s.DebuggingMode },
		Set: func(s *Settings, v bool) { s.DebuggingMode = v },
	},
	{
		Key: "notificationsEnabled",
		Get: func(s *Settings) bool { return s.NotificationsEnabled },
		Set: func(s *Settings, v bool) { s.NotificationsEnabled = v },
	},
}

// LookupToggle finds a toggle by its JSON key
func LookupToggle(key string) (Toggle, bool) {
	for _, t := range Toggles {
		if t.Key == key {
			return t, true
		}
	}
	return Toggle{}, false
}

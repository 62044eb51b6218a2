package vault

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// ConfigDirName is the Obsidian configuration folder inside a vault
	ConfigDirName = ".obsidian"
	// BratPluginID is the plugin id BRAT keeps its data.json under
	BratPluginID = "obsidian42-brat"
)

// Plugin release files
const (
	MainJS       = "main.js"
	ManifestJSON = "manifest.json"
	StylesCSS    = "styles.css"
	ThemeCSS     = "theme.css"
)

var (
	// ErrNotVault is returned when a directory has no .obsidian folder
	ErrNotVault = errors.New("not an Obsidian vault")
	// ErrInvalidName is returned for plugin ids and theme names that are not
	// a single folder name
	ErrInvalidName = errors.New("invalid plugin id or theme name")
)

// Vault is an Obsidian vault on disk
type Vault struct {
	Root string
}

// Open validates root and returns the vault
func Open(root string) (*Vault, error) {
	if root == "" {
		return nil, fmt.Errorf("%w: no vault path given", ErrNotVault)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(filepath.Join(abs, ConfigDirName))
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotVault, abs)
	}

	return &Vault{Root: abs}, nil
}

// ConfigDir returns <vault>/.obsidian
func (v *Vault) ConfigDir() string {
	return filepath.Join(v.Root, ConfigDirName)
}

// PluginsDir returns <vault>/.obsidian/plugins
func (v *Vault) PluginsDir() string {
	return filepath.Join(v.ConfigDir(), "plugins")
}

// PluginDir returns the install folder of a plugin id
func (v *Vault) PluginDir(id string) string {
	return filepath.Join(v.PluginsDir(), id)
}

// ValidatePluginID checks that id names a plugin folder brat may manage.
// BRAT's own folder holds data.json and is never touched.
func ValidatePluginID(id string) error {
	if err := validateName(id); err != nil {
		return err
	}
	if id == BratPluginID {
		return fmt.Errorf("%w: %q is reserved", ErrInvalidName, id)
	}
	return nil
}

// ValidateThemeName checks that name is a single theme folder name
func ValidateThemeName(name string) error {
	return validateName(name)
}

func validateName(name string) error {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) ||
		filepath.Base(name) != name || filepath.IsAbs(name) || filepath.VolumeName(name) != "" {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// ThemesDir returns <vault>/.obsidian/themes
func (v *Vault) ThemesDir() string {
	return filepath.Join(v.ConfigDir(), "themes")
}

// ThemeDir returns the install folder of a theme
func (v *Vault) ThemeDir(name string) string {
	return filepath.Join(v.ThemesDir(), name)
}

// DataPath returns the BRAT settings file
// <vault>/.obsidian/plugins/obsidian42-brat/data.json
func (v *Vault) DataPath() string {
	return filepath.Join(v.PluginDir(BratPluginID), "data.json")
}

// CommunityPluginsPath returns the list of enabled community plugins
func (v *Vault) CommunityPluginsPath() string {
	return filepath.Join(v.ConfigDir(), "community-plugins.json")
}

// LogNotePath returns the markdown note BRAT logs into
func (v *Vault) LogNotePath(name string) string {
	if !strings.HasSuffix(name, ".md") {
		name += ".md"
	}
	return filepath.Join(v.Root, filepath.FromSlash(name))
}

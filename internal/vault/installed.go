package vault

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/tidwall/gjson"
)

// communityMu guards read-modify-write of community-plugins.json
var communityMu sync.Mutex

// InstalledVersion returns the version recorded in a plugin's manifest.json.
// An uninstalled plugin yields an empty version without error.
func (v *Vault) InstalledVersion(id string) (string, error) {
	if err := ValidatePluginID(id); err != nil {
		return "", err
	}
	data, err := os.ReadFile(filepath.Join(v.PluginDir(id), ManifestJSON))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read manifest of %s: %w", id, err)
	}
	return gjson.GetBytes(data, "version").String(), nil
}

// WritePlugin replaces the release files of a plugin.
// Files with nil content are removed so a dropped styles.css does not linger.
func (v *Vault) WritePlugin(id string, files map[string][]byte) error {
	if err := ValidatePluginID(id); err != nil {
		return err
	}
	dir := v.PluginDir(id)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create plugin directory: %w", err)
	}

	for name, content := range files {
		path := filepath.Join(dir, name)
		if content == nil {
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("failed to remove %s: %w", name, err)
			}
			continue
		}
		if err := os.WriteFile(path, content, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
	}

	return nil
}

// RemovePlugin deletes the plugin folder
func (v *Vault) RemovePlugin(id string) error {
	if err := ValidatePluginID(id); err != nil {
		return err
	}
	return os.RemoveAll(v.PluginDir(id))
}

// WriteTheme writes theme.css and manifest.json of a theme
func (v *Vault) WriteTheme(name string, css, manifest []byte) error {
	if err := ValidateThemeName(name); err != nil {
		return err
	}
	dir := v.ThemeDir(name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create theme directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, ThemeCSS), css, 0644); err != nil {
		return fmt.Errorf("failed to write theme.css: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, ManifestJSON), manifest, 0644); err != nil {
		return fmt.Errorf("failed to write manifest.json: %w", err)
	}
	return nil
}

// RemoveTheme deletes the theme folder
func (v *Vault) RemoveTheme(name string) error {
	if err := ValidateThemeName(name); err != nil {
		return err
	}
	return os.RemoveAll(v.ThemeDir(name))
}

// EnabledPlugins returns the ids listed in community-plugins.json
func (v *Vault) EnabledPlugins() ([]string, error) {
	data, err := os.ReadFile(v.CommunityPluginsPath())
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, err
	}

	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("invalid %s", v.CommunityPluginsPath())
	}

	ids := []string{}
	for _, item := range gjson.ParseBytes(data).Array() {
		if item.Type == gjson.String {
			ids = append(ids, item.String())
		}
	}
	return ids, nil
}

// IsEnabled reports whether a plugin id is enabled
func (v *Vault) IsEnabled(id string) (bool, error) {
	ids, err := v.EnabledPlugins()
	if err != nil {
		return false, err
	}
	return slices.Contains(ids, id), nil
}

// EnablePlugin adds id to community-plugins.json
func (v *Vault) EnablePlugin(id string) error {
	communityMu.Lock()
	defer communityMu.Unlock()

	ids, err := v.EnabledPlugins()
	if err != nil {
		return err
	}
	if slices.Contains(ids, id) {
		return nil
	}
	return v.saveEnabled(append(ids, id))
}

// DisablePlugin removes id from community-plugins.json
func (v *Vault) DisablePlugin(id string) error {
	communityMu.Lock()
	defer communityMu.Unlock()

	ids, err := v.EnabledPlugins()
	if err != nil {
		return err
	}
	if !slices.Contains(ids, id) {
		return nil
	}
	remaining := slices.DeleteFunc(ids, func(s string) bool { return s == id })
	return v.saveEnabled(remaining)
}

func (v *Vault) saveEnabled(ids []string) error {
	data, err := json.MarshalIndent(ids, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(v.CommunityPluginsPath(), data, 0644)
}

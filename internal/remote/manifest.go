package remote

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/tailscale/hujson"
)

// Manifest is the manifest.json published by an Obsidian plugin or theme
type Manifest struct {
	ID            string `json:"id,omitempty"`
	Name          string `json:"name"`
	Version       string `json:"version"`
	MinAppVersion string `json:"minAppVersion,omitempty"`
	Description   string `json:"description,omitempty"`
	Author        string `json:"author,omitempty"`
	AuthorURL     string `json:"authorUrl,omitempty"`
	IsDesktopOnly bool   `json:"isDesktopOnly,omitempty"`
}

// ManifestFile is a manifest as fetched from a repository
type ManifestFile struct {
	Manifest
	Raw  []byte
	Beta bool // read from manifest-beta.json
}

func decodeManifest(data []byte) (*Manifest, error) {
	// Hand-edited manifests occasionally carry comments or trailing commas
	std, err := hujson.Standardize(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidManifest, err)
	}

	var m Manifest
	if err := json.Unmarshal(std, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidManifest, err)
	}
	return &m, nil
}

// ParseManifest decodes a plugin manifest; id and version are required
func ParseManifest(data []byte) (*Manifest, error) {
	m, err := decodeManifest(data)
	if err != nil {
		return nil, err
	}
	if m.ID == "" {
		return nil, fmt.Errorf("%w: missing id", ErrInvalidManifest)
	}
	if !isFolderName(m.ID) {
		return nil, fmt.Errorf("%w: id %q is not a folder name", ErrInvalidManifest, m.ID)
	}
	if m.Version == "" {
		return nil, fmt.Errorf("%w: missing version", ErrInvalidManifest)
	}
	return m, nil
}

// ParseThemeManifest decodes a theme manifest; name is required
func ParseThemeManifest(data []byte) (*Manifest, error) {
	m, err := decodeManifest(data)
	if err != nil {
		return nil, err
	}
	if m.Name == "" {
		return nil, fmt.Errorf("%w: missing name", ErrInvalidManifest)
	}
	if !isFolderName(m.Name) {
		return nil, fmt.Errorf("%w: name %q is not a folder name", ErrInvalidManifest, m.Name)
	}
	return m, nil
}

// isFolderName reports whether s can be used as a single folder name.
// Plugin ids and theme names become folders inside the vault.
func isFolderName(s string) bool {
	if s == "." || s == ".." || strings.ContainsAny(s, `/\:`) {
		return false
	}
	return filepath.Base(s) == s
}

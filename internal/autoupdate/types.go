package autoupdate

import (
	"context"

	"github.com/egoavara/brat/internal/remote"
)

// UpdateType represents the type of updatable item
type UpdateType string

const (
	UpdateTypePlugin UpdateType = "plugin"
	UpdateTypeTheme  UpdateType = "theme"
)

// Source is the remote side of an install or update
type Source interface {
	FetchManifest(ctx context.Context, repo string) (*remote.ManifestFile, error)
	FetchRelease(ctx context.Context, repo, version string) (*remote.PluginRelease, error)
	FetchThemeCSS(ctx context.Context, repo string) ([]byte, error)
	FetchThemeManifest(ctx context.Context, repo string) (*remote.ManifestFile, error)
}

// UpdateInfo contains information about an available update
type UpdateInfo struct {
	Type       UpdateType
	Repo       string // "owner/repo"
	Name       string // plugin id or theme name, empty when unknown
	CurrentVer string // installed version, or stored checksum for themes
	RemoteVer  string // remote version, or remote checksum for themes
	HasUpdate  bool
	Frozen     bool // pinned to CurrentVer, never updated
}

// Label returns the name when known, otherwise the repository
func (u UpdateInfo) Label() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Repo
}

// CheckResult contains the result of update check
type CheckResult struct {
	Plugins      []UpdateInfo
	Themes       []UpdateInfo
	HasAnyUpdate bool
	Errors       []error // Non-fatal errors during check
}

// TotalUpdates returns the total number of available updates
func (r *CheckResult) TotalUpdates() int {
	count := 0
	for _, p := range r.Plugins {
		if p.HasUpdate {
			count++
		}
	}
	for _, t := range r.Themes {
		if t.HasUpdate {
			count++
		}
	}
	return count
}

// Frozen returns the plugins skipped because they are pinned
func (r *CheckResult) Frozen() []UpdateInfo {
	var frozen []UpdateInfo
	for _, p := range r.Plugins {
		if p.Frozen {
			frozen = append(frozen, p)
		}
	}
	return frozen
}

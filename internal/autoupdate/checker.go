package autoupdate

import (
	"context"

	"go.uber.org/zap"

	"github.com/egoavara/brat/internal/settings"
	"github.com/egoavara/brat/internal/vault"
)

// Checker handles update checking logic
type Checker struct {
	source Source
	vault  *vault.Vault
	store  *settings.Store
	logger *zap.Logger
}

// NewChecker creates a new update checker
func NewChecker(source Source, v *vault.Vault, store *settings.Store, logger *zap.Logger) *Checker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Checker{
		source: source,
		vault:  v,
		store:  store,
		logger: logger,
	}
}

// CheckAll checks plugins and, when includeThemes is set, themes
func (c *Checker) CheckAll(ctx context.Context, includeThemes bool) *CheckResult {
	result := &CheckResult{
		Plugins: []UpdateInfo{},
		Themes:  []UpdateInfo{},
		Errors:  []error{},
	}

	plugins, errs := c.CheckPlugins(ctx)
	result.Plugins = plugins
	result.Errors = append(result.Errors, errs...)

	if includeThemes {
		themes, errs := c.CheckThemes(ctx)
		result.Themes = themes
		result.Errors = append(result.Errors, errs...)
	}

	result.HasAnyUpdate = result.TotalUpdates() > 0
	return result
}

// CheckPlugins compares every registered plugin with its remote manifest.
// Frozen plugins are never moved off their frozen version. A plugin missing
// from the vault counts as an update, frozen or not.
func (c *Checker) CheckPlugins(ctx context.Context) ([]UpdateInfo, []error) {
	var updates []UpdateInfo
	var errs []error

	for _, repo := range c.store.Plugins() {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}

		if version, frozen := c.store.FrozenVersion(repo); frozen {
			updates = append(updates, c.checkFrozen(ctx, repo, version))
			continue
		}

		mf, err := c.source.FetchManifest(ctx, repo)
		if err != nil {
			c.logger.Warn("update check failed", zap.String("repo", repo), zap.Error(err))
			errs = append(errs, err)
			continue
		}

		current, err := c.vault.InstalledVersion(mf.ID)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		info := UpdateInfo{
			Type:       UpdateTypePlugin,
			Repo:       repo,
			Name:       mf.ID,
			CurrentVer: current,
			RemoteVer:  mf.Version,
			HasUpdate:  current == "" || !SameVersion(current, mf.Version),
		}
		c.logger.Debug("checked plugin",
			zap.String("repo", repo),
			zap.String("installed", current),
			zap.String("remote", mf.Version),
			zap.Bool("update", info.HasUpdate),
		)
		updates = append(updates, info)
	}

	return updates, errs
}

// checkFrozen marks a frozen plugin for reinstall when it is gone from the vault.
// Anything that stops the plugin id from resolving leaves it reported as frozen.
func (c *Checker) checkFrozen(ctx context.Context, repo, version string) UpdateInfo {
	frozen := UpdateInfo{
		Type:       UpdateTypePlugin,
		Repo:       repo,
		CurrentVer: version,
		Frozen:     true,
	}

	mf, err := c.source.FetchManifest(ctx, repo)
	if err != nil {
		c.logger.Debug("frozen plugin id unresolved", zap.String("repo", repo), zap.Error(err))
		return frozen
	}
	current, err := c.vault.InstalledVersion(mf.ID)
	if err != nil || current != "" {
		return frozen
	}

	return UpdateInfo{
		Type:      UpdateTypePlugin,
		Repo:      repo,
		Name:      mf.ID,
		RemoteVer: version,
		HasUpdate: true,
	}
}

// CheckThemes compares the checksum of each theme's remote stylesheet with
// the stored one
func (c *Checker) CheckThemes(ctx context.Context) ([]UpdateInfo, []error) {
	var updates []UpdateInfo
	var errs []error

	seen := map[string]bool{}
	for _, theme := range c.store.Themes() {
		if seen[theme.Repo] {
			continue
		}
		seen[theme.Repo] = true

		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}

		css, err := c.source.FetchThemeCSS(ctx, theme.Repo)
		if err != nil {
			c.logger.Warn("theme check failed", zap.String("repo", theme.Repo), zap.Error(err))
			errs = append(errs, err)
			continue
		}

		remoteSum := settings.Checksum(string(css))
		updates = append(updates, UpdateInfo{
			Type:       UpdateTypeTheme,
			Repo:       theme.Repo,
			CurrentVer: shortChecksum(theme.LastUpdate),
			RemoteVer:  shortChecksum(remoteSum),
			HasUpdate:  remoteSum != theme.LastUpdate,
		})
	}

	return updates, errs
}

// shortChecksum returns first 7 characters of a checksum
func shortChecksum(sum string) string {
	if len(sum) > 7 {
		return sum[:7]
	}
	return sum
}

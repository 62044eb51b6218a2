package autoupdate

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/egoavara/brat/internal/remote"
	"github.com/egoavara/brat/internal/settings"
	"github.com/egoavara/brat/internal/vault"
)

var (
	// ErrFrozen is returned when updating a plugin pinned to a version
	ErrFrozen = errors.New("plugin is frozen to a version")
	// ErrNotRegistered is returned when updating a repository brat does not track
	ErrNotRegistered = errors.New("repository is not registered")
)

// InstallResult describes an installed plugin or theme
type InstallResult struct {
	Repo    string
	Name    string // plugin id or theme name
	Version string
	Beta    bool
}

// Installer downloads plugins and themes into a vault and records them
type Installer struct {
	source Source
	vault  *vault.Vault
	store  *settings.Store
	logger *zap.Logger
}

// NewInstaller creates an installer
func NewInstaller(source Source, v *vault.Vault, store *settings.Store, logger *zap.Logger) *Installer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Installer{
		source: source,
		vault:  v,
		store:  store,
		logger: logger,
	}
}

// AddPlugin installs a plugin and registers it.
// A non-empty version installs that release and freezes the repository to it.
// A repository that is already frozen only accepts its frozen version.
func (i *Installer) AddPlugin(ctx context.Context, repo, version string) (*InstallResult, error) {
	if frozenVer, frozen := i.store.FrozenVersion(repo); frozen {
		if version != "" && !SameVersion(version, frozenVer) {
			return nil, fmt.Errorf("%w: %s@%s", ErrFrozen, repo, frozenVer)
		}
		version = frozenVer
	}

	result, err := i.installPlugin(ctx, repo, version)
	if err != nil {
		return nil, err
	}

	if err := i.store.AddPlugin(ctx, repo, version); err != nil {
		return nil, fmt.Errorf("failed to save settings: %w", err)
	}

	i.logger.Info("plugin added",
		zap.String("repo", repo),
		zap.String("id", result.Name),
		zap.String("version", result.Version),
		zap.Bool("frozen", version != ""),
	)
	return result, nil
}

// UpdatePlugin reinstalls the latest release of a registered plugin.
// A frozen plugin is only reinstalled, at its frozen version, when it is
// missing from the vault.
func (i *Installer) UpdatePlugin(ctx context.Context, repo string) (*InstallResult, error) {
	if !i.store.HasPlugin(repo) {
		return nil, fmt.Errorf("%w: %s", ErrNotRegistered, repo)
	}
	if version, frozen := i.store.FrozenVersion(repo); frozen {
		return i.restoreFrozen(ctx, repo, version)
	}

	result, err := i.installPlugin(ctx, repo, "")
	if err != nil {
		return nil, err
	}

	i.logger.Info("plugin updated",
		zap.String("repo", repo),
		zap.String("id", result.Name),
		zap.String("version", result.Version),
	)
	return result, nil
}

func (i *Installer) restoreFrozen(ctx context.Context, repo, version string) (*InstallResult, error) {
	mf, err := i.source.FetchManifest(ctx, repo)
	if err != nil {
		return nil, err
	}
	current, err := i.vault.InstalledVersion(mf.ID)
	if err != nil {
		return nil, err
	}
	if current != "" {
		return nil, fmt.Errorf("%w: %s@%s", ErrFrozen, repo, version)
	}

	result, err := i.installPlugin(ctx, repo, version)
	if err != nil {
		return nil, err
	}
	i.logger.Info("frozen plugin restored",
		zap.String("repo", repo),
		zap.String("id", result.Name),
		zap.String("version", result.Version),
	)
	return result, nil
}

func (i *Installer) installPlugin(ctx context.Context, repo, version string) (*InstallResult, error) {
	mf, err := i.source.FetchManifest(ctx, repo)
	if err != nil {
		return nil, err
	}

	tag := version
	if tag == "" {
		tag = mf.Version
	}

	release, err := i.source.FetchRelease(ctx, repo, tag)
	if err != nil {
		return nil, err
	}

	// Beta installs keep manifest-beta.json as the plugin manifest
	// unless a version was requested
	manifestJSON := release.ManifestJSON
	beta := mf.Beta && version == ""
	if beta {
		manifestJSON = mf.Raw
	}

	installed, err := remote.ParseManifest(manifestJSON)
	if err != nil {
		return nil, &remote.RepoError{Op: "install", Repo: repo, Err: err}
	}

	files := map[string][]byte{
		vault.MainJS:       release.MainJS,
		vault.ManifestJSON: manifestJSON,
		vault.StylesCSS:    release.Styles,
	}
	if err := i.vault.WritePlugin(installed.ID, files); err != nil {
		return nil, err
	}

	return &InstallResult{
		Repo:    repo,
		Name:    installed.ID,
		Version: installed.Version,
		Beta:    beta,
	}, nil
}

// AddTheme installs a theme and registers it with the checksum of its stylesheet
func (i *Installer) AddTheme(ctx context.Context, repo string) (*InstallResult, error) {
	css, mf, err := i.fetchTheme(ctx, repo)
	if err != nil {
		return nil, err
	}

	if err := i.vault.WriteTheme(mf.Name, css, mf.Raw); err != nil {
		return nil, err
	}
	if err := i.store.AddTheme(ctx, repo, string(css)); err != nil {
		return nil, fmt.Errorf("failed to save settings: %w", err)
	}

	i.logger.Info("theme added",
		zap.String("repo", repo),
		zap.String("name", mf.Name),
	)
	return &InstallResult{Repo: repo, Name: mf.Name, Version: mf.Version}, nil
}

// UpdateTheme refetches a theme and rewrites it when its stylesheet changed.
// Reports whether an update was applied.
func (i *Installer) UpdateTheme(ctx context.Context, repo string) (bool, error) {
	if !i.store.HasTheme(repo) {
		return false, fmt.Errorf("%w: %s", ErrNotRegistered, repo)
	}

	css, err := i.source.FetchThemeCSS(ctx, repo)
	if err != nil {
		return false, err
	}

	checksum := settings.Checksum(string(css))
	if themeChecksum(i.store, repo) == checksum {
		return false, nil
	}

	mf, err := i.source.FetchThemeManifest(ctx, repo)
	if err != nil {
		return false, err
	}
	if err := i.vault.WriteTheme(mf.Name, css, mf.Raw); err != nil {
		return false, err
	}
	if err := i.store.UpdateThemeChecksum(ctx, repo, checksum); err != nil {
		return false, fmt.Errorf("failed to save settings: %w", err)
	}

	i.logger.Info("theme updated",
		zap.String("repo", repo),
		zap.String("name", mf.Name),
		zap.String("checksum", checksum),
	)
	return true, nil
}

// RemovePlugin unregisters a plugin and deletes its files when the id is known
func (i *Installer) RemovePlugin(ctx context.Context, repo string) error {
	id := ""
	if mf, err := i.source.FetchManifest(ctx, repo); err == nil {
		if err := vault.ValidatePluginID(mf.ID); err != nil {
			return &remote.RepoError{Op: "remove", Repo: repo, Err: err}
		}
		id = mf.ID
	} else {
		i.logger.Warn("could not resolve plugin id, files are kept",
			zap.String("repo", repo),
			zap.Error(err),
		)
	}

	if err := i.store.RemovePlugin(ctx, repo); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	if id != "" {
		if err := i.vault.DisablePlugin(id); err != nil {
			return err
		}
		return i.vault.RemovePlugin(id)
	}
	return nil
}

// RemoveTheme unregisters a theme and deletes its files when the name is known
func (i *Installer) RemoveTheme(ctx context.Context, repo string) error {
	name := ""
	if mf, err := i.source.FetchThemeManifest(ctx, repo); err == nil {
		if err := vault.ValidateThemeName(mf.Name); err != nil {
			return &remote.RepoError{Op: "remove", Repo: repo, Err: err}
		}
		name = mf.Name
	} else {
		i.logger.Warn("could not resolve theme name, files are kept",
			zap.String("repo", repo),
			zap.Error(err),
		)
	}

	if err := i.store.RemoveTheme(ctx, repo); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	if name != "" {
		return i.vault.RemoveTheme(name)
	}
	return nil
}

func (i *Installer) fetchTheme(ctx context.Context, repo string) ([]byte, *remote.ManifestFile, error) {
	css, err := i.source.FetchThemeCSS(ctx, repo)
	if err != nil {
		return nil, nil, err
	}
	mf, err := i.source.FetchThemeManifest(ctx, repo)
	if err != nil {
		return nil, nil, err
	}
	return css, mf, nil
}

// themeChecksum returns the stored checksum of the first record for repo
func themeChecksum(store *settings.Store, repo string) string {
	for _, t := range store.Themes() {
		if t.Repo == repo {
			return t.LastUpdate
		}
	}
	return ""
}

package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/go-github/v82/github"
	"go.uber.org/zap"
)

// Manifest file names, beta first
const (
	BetaManifestFile   = "manifest-beta.json"
	StableManifestFile = "manifest.json"
	BetaThemeFile      = "theme-beta.css"
	ThemeFile          = "theme.css"
)

// Release asset names
const (
	AssetMainJS   = "main.js"
	AssetManifest = "manifest.json"
	AssetStyles   = "styles.css"
)

// PluginRelease holds the downloaded files of a plugin release
type PluginRelease struct {
	Tag          string
	MainJS       []byte
	ManifestJSON []byte
	Styles       []byte // nil when the release ships no styles.css
}

// FetchManifest reads manifest-beta.json from the default branch,
// falling back to manifest.json
func (c *Client) FetchManifest(ctx context.Context, repo string) (*ManifestFile, error) {
	beta := true
	data, err := c.fetchContent(ctx, repo, BetaManifestFile)
	if errors.Is(err, ErrNotFound) {
		beta = false
		data, err = c.fetchContent(ctx, repo, StableManifestFile)
	}
	if err != nil {
		return nil, repoError("fetch manifest", repo, err)
	}

	m, err := ParseManifest(data)
	if err != nil {
		return nil, repoError("fetch manifest", repo, err)
	}

	c.logger.Debug("fetched manifest",
		zap.String("repo", repo),
		zap.String("version", m.Version),
		zap.Bool("beta", beta),
	)
	return &ManifestFile{Manifest: *m, Raw: data, Beta: beta}, nil
}

// FetchRelease downloads the release tagged version.
// Tags are tried as given and with the "v" prefix toggled.
func (c *Client) FetchRelease(ctx context.Context, repo, version string) (*PluginRelease, error) {
	owner, name, err := SplitRepo(repo)
	if err != nil {
		return nil, err
	}

	var release *github.RepositoryRelease
	for _, tag := range candidateTags(version) {
		release, err = retry(ctx, c, repo+"@"+tag, func() (*github.RepositoryRelease, error) {
			r, _, err := c.gh.Repositories.GetReleaseByTag(ctx, owner, name, tag)
			return r, err
		})
		if err == nil {
			break
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, repoError("fetch release", repo, err)
		}
	}
	if release == nil {
		return nil, repoError("fetch release", repo, fmt.Errorf("%w: release %s", ErrNotFound, version))
	}

	out := &PluginRelease{Tag: release.GetTagName()}
	for _, asset := range release.Assets {
		var dst *[]byte
		switch asset.GetName() {
		case AssetMainJS:
			dst = &out.MainJS
		case AssetManifest:
			dst = &out.ManifestJSON
		case AssetStyles:
			dst = &out.Styles
		default:
			continue
		}

		data, err := c.downloadAsset(ctx, owner, name, asset.GetID())
		if err != nil {
			return nil, repoError("download "+asset.GetName(), repo, err)
		}
		*dst = data
	}

	if out.MainJS == nil {
		return nil, repoError("fetch release", repo, fmt.Errorf("%w: %s", ErrMissingAsset, AssetMainJS))
	}
	if out.ManifestJSON == nil {
		return nil, repoError("fetch release", repo, fmt.Errorf("%w: %s", ErrMissingAsset, AssetManifest))
	}

	return out, nil
}

func (c *Client) downloadAsset(ctx context.Context, owner, name string, id int64) ([]byte, error) {
	return retry(ctx, c, fmt.Sprintf("%s/%s asset %d", owner, name, id), func() ([]byte, error) {
		rc, _, err := c.gh.Repositories.DownloadReleaseAsset(ctx, owner, name, id, c.http)
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(rc)
	})
}

func candidateTags(version string) []string {
	if strings.HasPrefix(version, "v") {
		return []string{version, strings.TrimPrefix(version, "v")}
	}
	return []string{version, "v" + version}
}

// FetchThemeCSS reads theme-beta.css, falling back to theme.css
func (c *Client) FetchThemeCSS(ctx context.Context, repo string) ([]byte, error) {
	if _, _, err := SplitRepo(repo); err != nil {
		return nil, err
	}

	css, err := c.fetchRaw(ctx, repo, BetaThemeFile)
	if errors.Is(err, ErrNotFound) {
		css, err = c.fetchRaw(ctx, repo, ThemeFile)
	}
	if err != nil {
		return nil, repoError("fetch theme", repo, err)
	}
	return css, nil
}

// FetchThemeManifest reads the theme's manifest.json
func (c *Client) FetchThemeManifest(ctx context.Context, repo string) (*ManifestFile, error) {
	if _, _, err := SplitRepo(repo); err != nil {
		return nil, err
	}

	data, err := c.fetchRaw(ctx, repo, StableManifestFile)
	if err != nil {
		return nil, repoError("fetch theme manifest", repo, err)
	}

	m, err := ParseThemeManifest(data)
	if err != nil {
		return nil, repoError("fetch theme manifest", repo, err)
	}
	return &ManifestFile{Manifest: *m, Raw: data}, nil
}

package autoupdate

import (
	"strings"

	"github.com/Masterminds/semver/v3"
)

// SameVersion reports whether two version strings name the same release.
// Semantic versions compare by value so "v1.0" equals "1.0.0";
// anything else falls back to string equality without a leading "v".
func SameVersion(a, b string) bool {
	av, errA := semver.NewVersion(a)
	bv, errB := semver.NewVersion(b)
	if errA != nil || errB != nil {
		return strings.TrimPrefix(a, "v") == strings.TrimPrefix(b, "v")
	}
	return av.Equal(bv)
}

// IsNewerVersion reports whether newVersion is strictly greater than oldVersion
func IsNewerVersion(newVersion, oldVersion string) bool {
	nv, errNew := semver.NewVersion(newVersion)
	ov, errOld := semver.NewVersion(oldVersion)
	if errNew != nil || errOld != nil {
		return newVersion > oldVersion
	}
	return nv.GreaterThan(ov)
}

package version

// Build information, set with -ldflags "-X github.com/egoavara/brat/internal/version.Version=..."
var (
	Version   = "dev"
	GitCommit = ""
	BuildDate = ""
)

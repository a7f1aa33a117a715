package version

// Version contains the application version information.
// Set via ldflags in release builds:
// go build -ldflags "-X github.com/ertis-research/opentwins-docsite/internal/version.Version=v0.3.0".
var Version = "unknown"

// BuildInfo contains additional build metadata.
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// String renders the version line printed by --version.
func String() string {
	return "docsite " + Version + " (commit " + GitCommit + ", built " + BuildTime + ")"
}

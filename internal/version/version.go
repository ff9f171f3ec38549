package version

// Version is the stockview release.
// Set at build time with:
// -ldflags "-X github.com/rxtech-lab/stockview/internal/version.Version=1.2.3"
// "main" marks a development build.
var Version = "v1.0.0"

// GetVersion returns the binary's version.
func GetVersion() string {
	return Version
}

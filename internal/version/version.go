package version

// Version is set at build time with
// -ldflags "-X github.com/rxtech-lab/argo-execution/internal/version.Version=v1.2.3".
// "main" marks a development build.
var Version = "main"

// GetVersion returns the version of the simulator.
func GetVersion() string {
	if Version == "" {
		return "main"
	}

	return Version
}

//
// Package build manages build metadata embedded into the binary at compile
// time via linker flags: application name, description, semantic version,
// build timestamp and Git commit hash. The CLI uses it for its version and
// help output.
package build

// Flags holds build-time information injected during compilation, e.g.:
//
//	go build -ldflags "-X github.com/p-poss/bark/internal/build.buildVersion=0.2.0"
type Flags struct {
	Name        string
	Description string
	Time        string
	Commit      string
	Version     string
}

// Populated by -ldflags during compilation. Development builds fall back to
// the defaults below.
var (
	buildTime    string
	buildCommit  string
	buildVersion string
	buildFlags   = &Flags{
		Name:        "bark",
		Description: "Turns tree bark texture into polyphonic audio",
		Time:        "unknown",
		Commit:      "unknown",
		Version:     "dev",
	}
)

// Initialize copies build information from the ldflags variables into the
// Flags struct. Call early in program startup; unset flags keep their
// development defaults.
func Initialize() error {
	if buildTime != "" {
		buildFlags.Time = buildTime
	}
	if buildCommit != "" {
		buildFlags.Commit = buildCommit
	}
	if buildVersion != "" {
		buildFlags.Version = buildVersion
	}
	return nil
}

// GetBuildFlags returns the current build information.
func GetBuildFlags() *Flags {
	return buildFlags
}

// Package settings provides build metadata, per-run options, and context
// helpers shared by the mccw CLI and the library packages.
package settings

// CliBinaryName is the canonical binary name for this tool.
const CliBinaryName = "mccw"

// VersionInformation is populated at build time via ldflags. BuildVersion
// doubles as the stylesheet asset version.
var VersionInformation = VersionInfo{
	Commit:       "unknown",
	BuildVersion: "1.0.23",
	BuildTime:    "unknown",
}

// VersionInfo holds the commit hash, version and build timestamp.
type VersionInfo struct {
	Commit       string
	BuildVersion string
	BuildTime    string
}

// Run holds options for a single execution of the application.
type Run struct {
	MinLogLevel int8
	ConfigFile  string
	Locale      string
	IsQuiet     bool
	NoColor     bool
}

// NewCliParams returns the defaults used by the CLI before flags are parsed.
func NewCliParams() *Run {
	return &Run{
		MinLogLevel: 0,
		Locale:      "en",
	}
}

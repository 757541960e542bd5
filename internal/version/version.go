// Package version holds the build version of area-links.
package version

// Version is set at build time with -ldflags "-X .../internal/version.Version=v1.2.0".
var Version = "development"

// Commit is the git commit the binary was built from, set like Version.
var Commit = "unknown"

// String returns the version, followed by "+commit" when the commit is known.
func String() string {
	if Commit != "unknown" && Commit != "" {
		return Version + "+" + Commit
	}
	return Version
}

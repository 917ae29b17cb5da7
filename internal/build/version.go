package build

import "fmt"

// Set at link time: -ldflags "-X github.com/unkn0wn-root/gitacache/internal/build.Version=..."
var (
	Version   = "dev"
	Commit    = "none"
	BuildTime = "unknown"
)

// FullVersion returns the version with the commit appended, e.g. "1.0.0+abc123".
func FullVersion() string {
	return Version + "+" + Commit
}

// Banner is the line printed by `gita version`.
func Banner() string {
	return fmt.Sprintf("gita %s (built %s)", FullVersion(), BuildTime)
}

// Package bridge holds process-wide constants shared across the codex-bridge
// packages.
package bridge

const (
	DefaultAppName    = "codex-bridge"
	DefaultConfigPath = "/etc/codex-bridge"

	// DefaultHistoryDBPath is where the delegation history database lives
	// when history persistence is enabled and no path is configured.
	DefaultHistoryDBPath = "data/history.db"
)

// Version is set at build time via ldflags.
var Version = "dev"

// DefaultDenyPaths are system roots the bridge refuses to operate on. A
// working directory equal to or below any of these is rejected before any
// filesystem content is read.
var DefaultDenyPaths = []string{
	"/etc",
	"/usr/bin",
	"/bin",
	"/sbin",
	"/root",
}

// DefaultIgnorePatterns keep version-control metadata, build caches, and
// binary noise out of directory fingerprints so that digests stay stable
// across incidental churn.
var DefaultIgnorePatterns = []string{
	".*",
	".git/",
	"node_modules/",
	"__pycache__/",
	"*.pyc",
	"*.so",
	"*.exe",
	"*.bin",
}

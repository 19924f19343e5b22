// Package validate implements the working-directory safety checks that gate
// every delegation. A directory must pass validation before any of its
// contents are read or fingerprinted.
package validate

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/armon/go-radix"
	"golang.org/x/sys/unix"
)

// Reason classifies why a path was rejected.
type Reason string

const (
	NotAbsolute         Reason = "not_absolute"
	NotFound            Reason = "not_found"
	NotADirectory       Reason = "not_a_directory"
	ForbiddenSystemPath Reason = "forbidden_system_path"
	PermissionDenied    Reason = "permission_denied"
)

// Error reports a rejected path together with the rule that rejected it.
type Error struct {
	Path   string
	Reason Reason
}

func (e *Error) Error() string {
	return fmt.Sprintf("invalid or unsafe working directory %q: %s", e.Path, e.Reason)
}

// Validator checks candidate working directories against a fixed deny list
// of sensitive system roots. It is stateless beyond the compiled deny tree
// and safe for concurrent use.
type Validator struct {
	deny *radix.Tree
}

// New compiles the deny list into a prefix tree. Paths are normalized and a
// trailing separator is appended so that matching is path-segment aware:
// "/etc" covers "/etc" and "/etc/nginx" but not "/etcetera".
func New(denyPaths []string) *Validator {
	tree := radix.New()
	for _, p := range denyPaths {
		clean := filepath.Clean(p)
		if clean == "/" || clean == "." {
			continue
		}
		tree.Insert(clean+string(filepath.Separator), struct{}{})
	}
	return &Validator{deny: tree}
}

// Validate applies the safety rules in order: the path must be absolute,
// exist, be a directory, fall outside every denied root, and be readable
// (and writable when needWrite is set). The only filesystem interaction is
// stat-level; nothing is created or modified.
func (v *Validator) Validate(path string, needWrite bool) error {
	if !filepath.IsAbs(path) {
		return &Error{Path: path, Reason: NotAbsolute}
	}

	clean := filepath.Clean(path)

	info, err := os.Stat(clean)
	if err != nil {
		return &Error{Path: path, Reason: NotFound}
	}
	if !info.IsDir() {
		return &Error{Path: path, Reason: NotADirectory}
	}

	if v.isDenied(clean) {
		return &Error{Path: path, Reason: ForbiddenSystemPath}
	}

	mode := uint32(unix.R_OK | unix.X_OK)
	if needWrite {
		mode |= unix.W_OK
	}
	if err := unix.Access(clean, mode); err != nil {
		return &Error{Path: path, Reason: PermissionDenied}
	}

	return nil
}

func (v *Validator) isDenied(clean string) bool {
	// Probe with a trailing separator so an exact match of a denied root is
	// caught by the same longest-prefix lookup as its descendants.
	probe := clean
	if !strings.HasSuffix(probe, string(filepath.Separator)) {
		probe += string(filepath.Separator)
	}
	_, _, found := v.deny.LongestPrefix(probe)
	return found
}

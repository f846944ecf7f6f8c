// Package buildinfo reports the version gitpilot was built as.
package buildinfo

import (
	"fmt"
	"runtime/debug"
	"strings"
)

var readBuildInfo = debug.ReadBuildInfo

// Version returns the module version or "dev" when unset.
func Version() string {
	info, ok := readBuildInfo()
	if !ok || info == nil {
		return "dev"
	}
	version := info.Main.Version
	if version == "" || version == "(devel)" {
		return "dev"
	}
	return version
}

func setting(key string) string {
	info, ok := readBuildInfo()
	if !ok || info == nil {
		return ""
	}
	for _, s := range info.Settings {
		if s.Key == key {
			return s.Value
		}
	}
	return ""
}

// Tags returns the build tags recorded at compile time, e.g. nosyntaxhighlight.
func Tags() string {
	return setting("-tags")
}

// Commit returns the abbreviated VCS revision, with a "+dirty" suffix when
// the tree had local modifications.
func Commit() string {
	rev := setting("vcs.revision")
	if rev == "" {
		return ""
	}
	if len(rev) > 7 {
		rev = rev[:7]
	}
	if setting("vcs.modified") == "true" {
		rev += "+dirty"
	}
	return rev
}

// VersionWithTags returns the version followed by the commit and tags when known.
func VersionWithTags() string {
	var extra []string
	if c := Commit(); c != "" {
		extra = append(extra, "commit: "+c)
	}
	if t := Tags(); t != "" {
		extra = append(extra, "tags: "+t)
	}
	if len(extra) == 0 {
		return Version()
	}
	return fmt.Sprintf("%s (%s)", Version(), strings.Join(extra, ", "))
}

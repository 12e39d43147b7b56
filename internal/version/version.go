package version

import (
	"runtime/debug"
	"strings"
	"time"
)

const (
	defaultModule  = "pkt.systems/lumina"
	unknownVersion = "v0.0.0-unknown"
	dirtySuffix    = "+dirty"
)

// buildVersion is set via -ldflags "-X pkt.systems/lumina/internal/version.buildVersion=...".
var buildVersion = ""

// Info describes the running lumina binary.
type Info struct {
	Module    string
	Version   string
	Revision  string
	BuildTime time.Time
	GoVersion string
	// Dirty reports a build from a modified working tree.
	Dirty bool
}

// Read collects version details from the linker flag and embedded build info.
func Read() Info {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		info = nil
	}
	return fromBuildInfo(info, buildVersion)
}

// Current returns the version without the dirty marker.
func Current() string {
	return Read().String(false)
}

// String renders the version. withDirty appends +dirty for modified trees.
func (i Info) String(withDirty bool) string {
	if withDirty && i.Dirty {
		return i.Version + dirtySuffix
	}
	return i.Version
}

func fromBuildInfo(bi *debug.BuildInfo, override string) Info {
	out := Info{Module: defaultModule, Version: unknownVersion}
	if bi != nil {
		if path := strings.TrimSpace(bi.Main.Path); path != "" {
			out.Module = path
		}
		out.GoVersion = bi.GoVersion
		for _, setting := range bi.Settings {
			switch setting.Key {
			case "vcs.revision":
				out.Revision = setting.Value
			case "vcs.time":
				if parsed, err := time.Parse(time.RFC3339, setting.Value); err == nil {
					out.BuildTime = parsed.UTC()
				}
			case "vcs.modified":
				out.Dirty = setting.Value == "true"
			}
		}
	}

	candidate := strings.TrimSpace(override)
	if candidate == "" && bi != nil {
		if v := strings.TrimSpace(bi.Main.Version); v != "(devel)" {
			candidate = v
		}
	}
	if candidate == "" {
		candidate = out.pseudo()
	}
	if candidate == "" {
		return out
	}
	if strings.HasSuffix(candidate, dirtySuffix) {
		out.Dirty = true
		candidate = strings.TrimSuffix(candidate, dirtySuffix)
	}
	out.Version = candidate
	return out
}

// pseudo builds a module-style pseudo version from the vcs stamp.
func (i Info) pseudo() string {
	if i.Revision == "" || i.BuildTime.IsZero() {
		return ""
	}
	rev := i.Revision
	if len(rev) > 12 {
		rev = rev[:12]
	}
	return "v0.0.0-" + i.BuildTime.Format("20060102150405") + "-" + rev
}

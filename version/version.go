package version

import "runtime/debug"

// Version can be set at build time:
//
//	go build -ldflags "-X github.com/mnglab/mng/version.Version=$(git describe --dirty)"
var Version string

// Revision is the short VCS revision the binary was built from, with a
// -dirty suffix for modified trees, or empty without build info.
var Revision = func() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	var revision string
	modified := false
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			revision = setting.Value
		case "vcs.modified":
			modified = setting.Value == "true"
		}
	}
	if len(revision) > 7 {
		revision = revision[:7]
	}
	if revision != "" && modified {
		revision += "-dirty"
	}
	return revision
}()

// String returns Version, or Revision if no version was set.
func String() string {
	if Version != "" {
		return Version
	}
	return Revision
}

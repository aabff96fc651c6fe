package build

// CurrentCommit is set by the build scripts with -ldflags.
var CurrentCommit string

const BuildVersion = "0.1.0"

func UserVersion() string {
	return BuildVersion + CurrentCommit
}

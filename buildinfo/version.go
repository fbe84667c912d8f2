package buildinfo

import (
	"encoding/json"
	"fmt"
	"io"
	"runtime"
	"runtime/debug"
)

const Unknown = "unknown"

// Overridden at link time by the release build. When left alone the
// values fall back to whatever the go toolchain stamped into the binary.
var (
	gitVersion  = Unknown
	gitRevision = Unknown
	date        = Unknown

	Info info
)

type info struct {
	Arch         string `json:"arch"`
	Compiler     string `json:"compiler"`
	Date         string `json:"build_date"`
	GitRevision  string `json:"revision"`
	GitVersion   string `json:"version"`
	GoVersion    string `json:"go_version"`
	OS           string `json:"os"`
	RaceDetector bool   `json:"race_detector"`
}

func init() {
	Info.Arch = runtime.GOARCH
	Info.Compiler = runtime.Compiler
	Info.Date = date
	Info.GitRevision = gitRevision
	Info.GitVersion = gitVersion
	Info.GoVersion = runtime.Version()
	Info.OS = runtime.GOOS

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	if Info.GitVersion == Unknown && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		Info.GitVersion = bi.Main.Version
	}
	dirty := false
	for _, setting := range bi.Settings {
		switch setting.Key {
		case "vcs.revision":
			if Info.GitRevision == Unknown {
				Info.GitRevision = setting.Value
			}
		case "vcs.time":
			if Info.Date == Unknown {
				Info.Date = setting.Value
			}
		case "vcs.modified":
			dirty = setting.Value == "true"
		case "-race":
			Info.RaceDetector = setting.Value == "true"
		}
	}
	if dirty && Info.GitRevision != Unknown {
		Info.GitRevision += "-dirty"
	}
}

// Version renders the single line form used by the --version flag.
func Version() string {
	return fmt.Sprintf("%s (revision %s, built %s)", Info.GitVersion, Info.GitRevision, Info.Date)
}

func JSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	return enc.Encode(Info)
}

package version

// Build metadata. Commit and BuildTime are set with -ldflags at release time:
//
//	-X agenda/internal/version.Commit=$(git rev-parse HEAD)
var (
	Version   = "0.1.0"
	Commit    = ""
	BuildTime = ""
)

type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit,omitempty"`
	BuildTime string `json:"buildTime,omitempty"`
}

func Get() Info {
	return Info{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
	}
}

// String formats the build metadata for logs and the CLI.
func (i Info) String() string {
	s := i.Version
	if i.Commit != "" {
		s += " (" + i.Commit
		if i.BuildTime != "" {
			s += ", built " + i.BuildTime
		}
		s += ")"
	}
	return s
}

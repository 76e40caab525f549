package build

// Targets understood by the build tool.
const (
	TargetBuild = "build"
	TargetClean = "clean"
)

// ToolConfig describes the build tool invocation.
type ToolConfig struct {
	// Path of the build tool executable.
	Path string
	// Logger is the structured logger extension passed to the tool. When set,
	// the tool's console logger is suppressed.
	Logger string
	// ExtraArgs are appended verbatim.
	ExtraArgs []string
}

// Request is the argument set captured when a session starts.
type Request struct {
	Solution      string
	Target        string
	Configuration string
	Platform      string
}

// Arguments builds the argument vector for a request, excluding the tool
// path itself.
func (c ToolConfig) Arguments(req Request) []string {
	args := []string{
		req.Solution,
		"/t:" + req.Target,
		"/property:Platform=" + req.Platform,
		"/property:Configuration=" + req.Configuration,
		"/nologo",
	}
	if c.Logger != "" {
		args = append(args, "/noconsolelogger", "/logger:"+c.Logger)
	}
	return append(args, c.ExtraArgs...)
}

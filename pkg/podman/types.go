package podman

// Container is a resolved handle to a container.
type Container struct {
	ID     string
	Name   string
	Image  string
	Status string
}

// Image is a resolved handle to an image. An empty ID marks an image the
// engine acknowledged but could not be re-inspected (see PullImage).
type Image struct {
	ID      string
	Tags    []string
	Size    int64
	Created string
}

// CreateOptions holds parameters for creating a container without
// starting it.
type CreateOptions struct {
	Image   string
	Command string
	Name    string
}

// RunOptions holds parameters for creating and running a container.
type RunOptions struct {
	Image   string
	Command string
	Detach  bool
}

// LogOptions holds parameters for a log read. Tail is a line count or
// "all"; Since is a timestamp or relative duration such as "1h". Follow
// blocks until the container stops.
type LogOptions struct {
	Tail   string
	Since  string
	Follow bool
}

// ExecOptions holds parameters for running a command inside a container.
type ExecOptions struct {
	Command string
	WorkDir string
}

// ExecResult is the outcome of an exec'd command.
type ExecResult struct {
	ExitCode int
	Output   string
}

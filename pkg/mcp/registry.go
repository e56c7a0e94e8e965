package mcp

// Discovery method and tool name constants.
const (
	methodToolsList = "tools/list"

	toolListContainers   = "list_containers"
	toolInspectContainer = "inspect_container"
	toolRunContainer     = "run_container"
	toolCreateContainer  = "create_container"
	toolStartContainer   = "start_container"
	toolStopContainer    = "stop_container"
	toolRestartContainer = "restart_container"
	toolRemoveContainer  = "remove_container"
	toolPauseContainer   = "pause_container"
	toolUnpauseContainer = "unpause_container"
	toolGetContainerLogs = "get_container_logs"
	toolExecCommand      = "exec_command"
	toolListImages       = "list_images"
	toolPullImage        = "pull_image"
	toolRemoveImage      = "remove_image"
	toolGetSystemInfo    = "get_system_info"
)

// containerIDProperty is the parameter every single-container tool takes.
func containerIDProperty(description string) (result map[string]Property) {
	result = map[string]Property{
		"container_id": {
			Type:        "string",
			Description: description,
		},
	}

	return result
}

// getContainerTools returns the container lifecycle tool definitions.
//
//nolint:funlen // The manifest is a flat declaration, one block per tool.
func getContainerTools() (result map[string]Tool) {
	result = map[string]Tool{
		toolListContainers: {
			Name:        toolListContainers,
			Description: "Lists Podman containers.",
			Parameters: Schema{
				Type: "object",
				Properties: map[string]Property{
					"all": {
						Type:        "boolean",
						Description: "Show all containers (default: false).",
					},
				},
			},
		},
		toolInspectContainer: {
			Name:        toolInspectContainer,
			Description: "Inspect a specific container.",
			Parameters: Schema{
				Type:       "object",
				Properties: containerIDProperty("The ID or name of the container."),
				Required:   []string{"container_id"},
			},
		},
		toolRunContainer: {
			Name:        toolRunContainer,
			Description: "Run a new container from an image.",
			Parameters: Schema{
				Type: "object",
				Properties: map[string]Property{
					"image": {
						Type:        "string",
						Description: "The container image to run (e.g., 'alpine').",
					},
					"command": {
						Type:        "string",
						Description: "The command to execute in the container.",
					},
					"detach": {
						Type:        "boolean",
						Description: "Run container in background (default: true).",
					},
				},
				Required: []string{"image"},
			},
		},
		toolCreateContainer: {
			Name:        toolCreateContainer,
			Description: "Create a new container without starting it.",
			Parameters: Schema{
				Type: "object",
				Properties: map[string]Property{
					"image": {
						Type:        "string",
						Description: "The container image to use.",
					},
					"command": {
						Type:        "string",
						Description: "The command to execute in the container.",
					},
					"name": {
						Type:        "string",
						Description: "Optional name for the container.",
					},
				},
				Required: []string{"image"},
			},
		},
		toolStartContainer: {
			Name:        toolStartContainer,
			Description: "Start a stopped container.",
			Parameters: Schema{
				Type:       "object",
				Properties: containerIDProperty("The ID or name of the container to start."),
				Required:   []string{"container_id"},
			},
		},
		toolStopContainer: {
			Name:        toolStopContainer,
			Description: "Stop a running container.",
			Parameters: Schema{
				Type:       "object",
				Properties: containerIDProperty("The ID or name of the container to stop."),
				Required:   []string{"container_id"},
			},
		},
		toolRestartContainer: {
			Name:        toolRestartContainer,
			Description: "Restart a container.",
			Parameters: Schema{
				Type:       "object",
				Properties: containerIDProperty("The ID or name of the container to restart."),
				Required:   []string{"container_id"},
			},
		},
		toolRemoveContainer: {
			Name:        toolRemoveContainer,
			Description: "Remove a container.",
			Parameters: Schema{
				Type: "object",
				Properties: map[string]Property{
					"container_id": {
						Type:        "string",
						Description: "The ID or name of the container to remove.",
					},
					"force": {
						Type:        "boolean",
						Description: "Force removal even if running (default: false).",
					},
				},
				Required: []string{"container_id"},
			},
		},
		toolPauseContainer: {
			Name:        toolPauseContainer,
			Description: "Pause a running container.",
			Parameters: Schema{
				Type:       "object",
				Properties: containerIDProperty("The ID or name of the container to pause."),
				Required:   []string{"container_id"},
			},
		},
		toolUnpauseContainer: {
			Name:        toolUnpauseContainer,
			Description: "Unpause a paused container.",
			Parameters: Schema{
				Type:       "object",
				Properties: containerIDProperty("The ID or name of the container to unpause."),
				Required:   []string{"container_id"},
			},
		},
		toolGetContainerLogs: {
			Name:        toolGetContainerLogs,
			Description: "Get logs from a container.",
			Parameters: Schema{
				Type: "object",
				Properties: map[string]Property{
					"container_id": {
						Type:        "string",
						Description: "The ID or name of the container.",
					},
					"tail": {
						Type:        "string",
						Description: "Number of lines to show from end (default: 'all').",
					},
					"since": {
						Type:        "string",
						Description: "Show logs since timestamp or duration.",
					},
					"follow": {
						Type:        "boolean",
						Description: "Follow log output (default: false).",
					},
				},
				Required: []string{"container_id"},
			},
		},
		toolExecCommand: {
			Name:        toolExecCommand,
			Description: "Execute a command in a running container.",
			Parameters: Schema{
				Type: "object",
				Properties: map[string]Property{
					"container_id": {
						Type:        "string",
						Description: "The ID or name of the container.",
					},
					"command": {
						Type:        "string",
						Description: "The command to execute.",
					},
					"workdir": {
						Type:        "string",
						Description: "Working directory for the command.",
					},
				},
				Required: []string{"container_id", "command"},
			},
		},
	}

	return result
}

// getImageTools returns the image tool definitions.
func getImageTools() (result map[string]Tool) {
	result = map[string]Tool{
		toolListImages: {
			Name:        toolListImages,
			Description: "List container images.",
			Parameters: Schema{
				Type: "object",
				Properties: map[string]Property{
					"all": {
						Type:        "boolean",
						Description: "Show all images including intermediate ones (default: false).",
					},
				},
			},
		},
		toolPullImage: {
			Name:        toolPullImage,
			Description: "Pull an image from a registry.",
			Parameters: Schema{
				Type: "object",
				Properties: map[string]Property{
					"repository": {
						Type:        "string",
						Description: "The repository name (e.g., 'alpine').",
					},
					"tag": {
						Type:        "string",
						Description: "The tag to pull (default: 'latest').",
					},
				},
				Required: []string{"repository"},
			},
		},
		toolRemoveImage: {
			Name:        toolRemoveImage,
			Description: "Remove an image.",
			Parameters: Schema{
				Type: "object",
				Properties: map[string]Property{
					"image_id": {
						Type:        "string",
						Description: "The ID or name of the image to remove.",
					},
					"force": {
						Type:        "boolean",
						Description: "Force removal (default: false).",
					},
				},
				Required: []string{"image_id"},
			},
		},
	}

	return result
}

// getSystemTools returns the system tool definitions.
func getSystemTools() (result map[string]Tool) {
	result = map[string]Tool{
		toolGetSystemInfo: {
			Name:        toolGetSystemInfo,
			Description: "Get Podman system information.",
			Parameters: Schema{
				Type:       "object",
				Properties: map[string]Property{},
			},
		},
	}

	return result
}

// getToolManifest returns the full tool manifest served by tools/list.
// It is constructed once at server start and never mutated.
func getToolManifest() (result map[string]Tool) {
	result = make(map[string]Tool)

	for name, tool := range getContainerTools() {
		result[name] = tool
	}

	for name, tool := range getImageTools() {
		result[name] = tool
	}

	for name, tool := range getSystemTools() {
		result[name] = tool
	}

	return result
}

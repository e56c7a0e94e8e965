package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mohanboddu/podman-mcp-server/pkg/podman"
)

// ContainerEngine is the boundary to the container engine the tools act
// on. It is implemented by podman.Client and by fakes in tests.
type ContainerEngine interface {
	ListContainers(ctx context.Context, all bool) ([]podman.Container, error)
	GetContainer(ctx context.Context, nameOrID string) (podman.Container, error)
	InspectContainer(ctx context.Context, nameOrID string) (map[string]interface{}, error)
	CreateContainer(ctx context.Context, opts podman.CreateOptions) (string, error)
	RunContainer(ctx context.Context, opts podman.RunOptions) (string, error)
	StartContainer(ctx context.Context, id string) error
	StopContainer(ctx context.Context, id string) error
	RestartContainer(ctx context.Context, id string) error
	RemoveContainer(ctx context.Context, id string, force bool) error
	PauseContainer(ctx context.Context, id string) error
	UnpauseContainer(ctx context.Context, id string) error
	ContainerLogs(ctx context.Context, id string, opts podman.LogOptions) (string, error)
	ExecInContainer(ctx context.Context, id string, opts podman.ExecOptions) (podman.ExecResult, error)
	ListImages(ctx context.Context, all bool) ([]podman.Image, error)
	GetImage(ctx context.Context, nameOrID string) (podman.Image, error)
	PullImage(ctx context.Context, repository string, tag string) (podman.Image, error)
	RemoveImage(ctx context.Context, nameOrID string, force bool) error
	SystemInfo(ctx context.Context) (map[string]interface{}, error)
}

// toolHandler executes one tool. A returned error marks a defect in the
// dispatch machinery (bad parameter binding) and maps to -32603; engine
// failures are captured inside the result instead.
type toolHandler func(ctx context.Context, params json.RawMessage) (interface{}, error)

// PodmanTools is the set of container operations exposed as MCP tools.
type PodmanTools struct {
	engine ContainerEngine
	logger *slog.Logger
}

// NewPodmanTools creates the tool set backed by the given engine.
func NewPodmanTools(engine ContainerEngine, logger *slog.Logger) (result *PodmanTools) {
	result = &PodmanTools{
		engine: engine,
		logger: logger,
	}

	return result
}

// handlers returns the operation dispatch table keyed by tool name.
// Unknown names fail the map lookup in the dispatcher; no reflection.
func (p *PodmanTools) handlers() (result map[string]toolHandler) {
	result = map[string]toolHandler{
		toolListContainers:   p.executeListContainers,
		toolInspectContainer: p.executeInspectContainer,
		toolRunContainer:     p.executeRunContainer,
		toolCreateContainer:  p.executeCreateContainer,
		toolStartContainer:   p.executeStartContainer,
		toolStopContainer:    p.executeStopContainer,
		toolRestartContainer: p.executeRestartContainer,
		toolRemoveContainer:  p.executeRemoveContainer,
		toolPauseContainer:   p.executePauseContainer,
		toolUnpauseContainer: p.executeUnpauseContainer,
		toolGetContainerLogs: p.executeGetContainerLogs,
		toolExecCommand:      p.executeExecCommand,
		toolListImages:       p.executeListImages,
		toolPullImage:        p.executePullImage,
		toolRemoveImage:      p.executeRemoveImage,
		toolGetSystemInfo:    p.executeGetSystemInfo,
	}

	return result
}

// bindParams decodes raw request params into a typed parameter struct.
// Unknown fields are a binding failure so mistyped requests surface as
// internal errors instead of being silently ignored.
func bindParams(raw json.RawMessage, target interface{}) (err error) {
	if len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return err
	}

	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.DisallowUnknownFields()

	err = decoder.Decode(target)
	if err != nil {
		err = fmt.Errorf("binding parameters: %w", err)
		return err
	}

	return err
}

// errorResult wraps an engine failure as an operation-level result. The
// caller still gets a success envelope; the failure lives in the payload.
func errorResult(err error) (result map[string]string) {
	result = map[string]string{
		"error": err.Error(),
	}

	return result
}

type listContainersParams struct {
	All bool `json:"all"`
}

// executeListContainers lists containers with their basic info.
func (p *PodmanTools) executeListContainers(ctx context.Context, raw json.RawMessage) (result interface{}, err error) {
	var params listContainersParams

	err = bindParams(raw, &params)
	if err != nil {
		return result, err
	}

	containers, engineErr := p.engine.ListContainers(ctx, params.All)
	if engineErr != nil {
		result = errorResult(engineErr)
		return result, err
	}

	summaries := make([]map[string]interface{}, 0, len(containers))
	for _, c := range containers {
		summaries = append(summaries, map[string]interface{}{
			"id":     c.ID,
			"name":   c.Name,
			"image":  c.Image,
			"status": c.Status,
		})
	}

	result = summaries
	return result, err
}

type inspectContainerParams struct {
	ContainerID string `json:"container_id"`
}

// executeInspectContainer returns the full inspect document for a
// container.
func (p *PodmanTools) executeInspectContainer(ctx context.Context, raw json.RawMessage) (result interface{}, err error) {
	var params inspectContainerParams

	err = bindParams(raw, &params)
	if err != nil {
		return result, err
	}

	attrs, engineErr := p.engine.InspectContainer(ctx, params.ContainerID)
	if engineErr != nil {
		result = errorResult(engineErr)
		return result, err
	}

	result = attrs
	return result, err
}

type runContainerParams struct {
	Image   string `json:"image"`
	Command string `json:"command"`
	Detach  bool   `json:"detach"`
}

// executeRunContainer creates and runs a new container. The engine
// returns a bare id which is re-resolved to a full handle before the
// result is shaped.
func (p *PodmanTools) executeRunContainer(ctx context.Context, raw json.RawMessage) (result interface{}, err error) {
	params := runContainerParams{Detach: true}

	err = bindParams(raw, &params)
	if err != nil {
		return result, err
	}

	id, engineErr := p.engine.RunContainer(ctx, podman.RunOptions{
		Image:   params.Image,
		Command: params.Command,
		Detach:  params.Detach,
	})
	if engineErr != nil {
		result = errorResult(engineErr)
		return result, err
	}

	resolved, engineErr := p.engine.GetContainer(ctx, id)
	if engineErr != nil {
		result = errorResult(engineErr)
		return result, err
	}

	status := "created"
	if params.Detach {
		status = "running"
	}

	result = map[string]interface{}{
		"id":     resolved.ID,
		"name":   resolved.Name,
		"status": status,
		"image":  params.Image,
	}

	return result, err
}

type createContainerParams struct {
	Image   string `json:"image"`
	Command string `json:"command"`
	Name    string `json:"name"`
}

// executeCreateContainer creates a new container without starting it.
func (p *PodmanTools) executeCreateContainer(ctx context.Context, raw json.RawMessage) (result interface{}, err error) {
	var params createContainerParams

	err = bindParams(raw, &params)
	if err != nil {
		return result, err
	}

	id, engineErr := p.engine.CreateContainer(ctx, podman.CreateOptions{
		Image:   params.Image,
		Command: params.Command,
		Name:    params.Name,
	})
	if engineErr != nil {
		result = errorResult(engineErr)
		return result, err
	}

	resolved, engineErr := p.engine.GetContainer(ctx, id)
	if engineErr != nil {
		result = errorResult(engineErr)
		return result, err
	}

	result = map[string]interface{}{
		"id":     resolved.ID,
		"name":   resolved.Name,
		"status": "created",
		"image":  params.Image,
	}

	return result, err
}

type containerIDParams struct {
	ContainerID string `json:"container_id"`
}

// lifecycleResult resolves a container, applies the given verb to it,
// and reports {id, name, status}. Every single-container lifecycle tool
// shares this shape.
func (p *PodmanTools) lifecycleResult(ctx context.Context, nameOrID string, status string, verb func(ctx context.Context, id string) error) (result interface{}) {
	resolved, err := p.engine.GetContainer(ctx, nameOrID)
	if err != nil {
		result = errorResult(err)
		return result
	}

	err = verb(ctx, resolved.ID)
	if err != nil {
		result = errorResult(err)
		return result
	}

	result = map[string]interface{}{
		"id":     resolved.ID,
		"name":   resolved.Name,
		"status": status,
	}

	return result
}

// executeStartContainer starts a stopped container.
func (p *PodmanTools) executeStartContainer(ctx context.Context, raw json.RawMessage) (result interface{}, err error) {
	var params containerIDParams

	err = bindParams(raw, &params)
	if err != nil {
		return result, err
	}

	result = p.lifecycleResult(ctx, params.ContainerID, "started", p.engine.StartContainer)
	return result, err
}

// executeStopContainer stops a running container.
func (p *PodmanTools) executeStopContainer(ctx context.Context, raw json.RawMessage) (result interface{}, err error) {
	var params containerIDParams

	err = bindParams(raw, &params)
	if err != nil {
		return result, err
	}

	result = p.lifecycleResult(ctx, params.ContainerID, "stopped", p.engine.StopContainer)
	return result, err
}

// executeRestartContainer restarts a container.
func (p *PodmanTools) executeRestartContainer(ctx context.Context, raw json.RawMessage) (result interface{}, err error) {
	var params containerIDParams

	err = bindParams(raw, &params)
	if err != nil {
		return result, err
	}

	result = p.lifecycleResult(ctx, params.ContainerID, "restarted", p.engine.RestartContainer)
	return result, err
}

type removeContainerParams struct {
	ContainerID string `json:"container_id"`
	Force       bool   `json:"force"`
}

// executeRemoveContainer removes a container. The handle is captured
// before removal so the result can still name what was deleted.
func (p *PodmanTools) executeRemoveContainer(ctx context.Context, raw json.RawMessage) (result interface{}, err error) {
	var params removeContainerParams

	err = bindParams(raw, &params)
	if err != nil {
		return result, err
	}

	result = p.lifecycleResult(ctx, params.ContainerID, "removed", func(ctx context.Context, id string) error {
		return p.engine.RemoveContainer(ctx, id, params.Force)
	})

	return result, err
}

// executePauseContainer pauses a running container.
func (p *PodmanTools) executePauseContainer(ctx context.Context, raw json.RawMessage) (result interface{}, err error) {
	var params containerIDParams

	err = bindParams(raw, &params)
	if err != nil {
		return result, err
	}

	result = p.lifecycleResult(ctx, params.ContainerID, "paused", p.engine.PauseContainer)
	return result, err
}

// executeUnpauseContainer unpauses a paused container.
func (p *PodmanTools) executeUnpauseContainer(ctx context.Context, raw json.RawMessage) (result interface{}, err error) {
	var params containerIDParams

	err = bindParams(raw, &params)
	if err != nil {
		return result, err
	}

	result = p.lifecycleResult(ctx, params.ContainerID, "unpaused", p.engine.UnpauseContainer)
	return result, err
}

type getContainerLogsParams struct {
	ContainerID string `json:"container_id"`
	Tail        string `json:"tail"`
	Since       string `json:"since"`
	Follow      bool   `json:"follow"`
}

// executeGetContainerLogs reads a container's logs as one buffered
// string. follow is honored but the response is still a single payload,
// so a following read blocks until the container stops.
func (p *PodmanTools) executeGetContainerLogs(ctx context.Context, raw json.RawMessage) (result interface{}, err error) {
	params := getContainerLogsParams{Tail: "all"}

	err = bindParams(raw, &params)
	if err != nil {
		return result, err
	}

	resolved, engineErr := p.engine.GetContainer(ctx, params.ContainerID)
	if engineErr != nil {
		result = errorResult(engineErr)
		return result, err
	}

	logs, engineErr := p.engine.ContainerLogs(ctx, resolved.ID, podman.LogOptions{
		Tail:   params.Tail,
		Since:  params.Since,
		Follow: params.Follow,
	})
	if engineErr != nil {
		result = errorResult(engineErr)
		return result, err
	}

	result = map[string]interface{}{
		"logs": logs,
	}

	return result, err
}

type execCommandParams struct {
	ContainerID string `json:"container_id"`
	Command     string `json:"command"`
	WorkDir     string `json:"workdir"`
}

// executeExecCommand executes a command in a running container.
func (p *PodmanTools) executeExecCommand(ctx context.Context, raw json.RawMessage) (result interface{}, err error) {
	var params execCommandParams

	err = bindParams(raw, &params)
	if err != nil {
		return result, err
	}

	resolved, engineErr := p.engine.GetContainer(ctx, params.ContainerID)
	if engineErr != nil {
		result = errorResult(engineErr)
		return result, err
	}

	execResult, engineErr := p.engine.ExecInContainer(ctx, resolved.ID, podman.ExecOptions{
		Command: params.Command,
		WorkDir: params.WorkDir,
	})
	if engineErr != nil {
		result = errorResult(engineErr)
		return result, err
	}

	result = map[string]interface{}{
		"exit_code": execResult.ExitCode,
		"output":    execResult.Output,
	}

	return result, err
}

type listImagesParams struct {
	All bool `json:"all"`
}

// executeListImages lists images with their basic info.
func (p *PodmanTools) executeListImages(ctx context.Context, raw json.RawMessage) (result interface{}, err error) {
	var params listImagesParams

	err = bindParams(raw, &params)
	if err != nil {
		return result, err
	}

	images, engineErr := p.engine.ListImages(ctx, params.All)
	if engineErr != nil {
		result = errorResult(engineErr)
		return result, err
	}

	summaries := make([]map[string]interface{}, 0, len(images))
	for _, img := range images {
		summaries = append(summaries, map[string]interface{}{
			"id":      img.ID,
			"tags":    img.Tags,
			"size":    img.Size,
			"created": img.Created,
		})
	}

	result = summaries
	return result, err
}

type pullImageParams struct {
	Repository string `json:"repository"`
	Tag        string `json:"tag"`
}

// executePullImage pulls an image from a registry. When the engine
// cannot resolve the pulled image back to a handle, the result falls
// back to the reference that was requested.
func (p *PodmanTools) executePullImage(ctx context.Context, raw json.RawMessage) (result interface{}, err error) {
	params := pullImageParams{Tag: "latest"}

	err = bindParams(raw, &params)
	if err != nil {
		return result, err
	}

	pulled, engineErr := p.engine.PullImage(ctx, params.Repository, params.Tag)
	if engineErr != nil {
		result = errorResult(engineErr)
		return result, err
	}

	if pulled.ID == "" {
		result = map[string]interface{}{
			"repository": params.Repository,
			"tag":        params.Tag,
			"status":     "pulled",
		}

		return result, err
	}

	result = map[string]interface{}{
		"id":     pulled.ID,
		"tags":   pulled.Tags,
		"status": "pulled",
	}

	return result, err
}

type removeImageParams struct {
	ImageID string `json:"image_id"`
	Force   bool   `json:"force"`
}

// executeRemoveImage removes an image, reporting the handle it resolved
// before deletion.
func (p *PodmanTools) executeRemoveImage(ctx context.Context, raw json.RawMessage) (result interface{}, err error) {
	var params removeImageParams

	err = bindParams(raw, &params)
	if err != nil {
		return result, err
	}

	resolved, engineErr := p.engine.GetImage(ctx, params.ImageID)
	if engineErr != nil {
		result = errorResult(engineErr)
		return result, err
	}

	engineErr = p.engine.RemoveImage(ctx, params.ImageID, params.Force)
	if engineErr != nil {
		result = errorResult(engineErr)
		return result, err
	}

	result = map[string]interface{}{
		"id":     resolved.ID,
		"tags":   resolved.Tags,
		"status": "removed",
	}

	return result, err
}

type getSystemInfoParams struct{}

// executeGetSystemInfo returns engine system information.
func (p *PodmanTools) executeGetSystemInfo(ctx context.Context, raw json.RawMessage) (result interface{}, err error) {
	var params getSystemInfoParams

	err = bindParams(raw, &params)
	if err != nil {
		return result, err
	}

	info, engineErr := p.engine.SystemInfo(ctx)
	if engineErr != nil {
		result = errorResult(engineErr)
		return result, err
	}

	result = info
	return result, err
}

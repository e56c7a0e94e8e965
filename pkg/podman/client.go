package podman

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
	"github.com/mohanboddu/podman-mcp-server/pkg/metrics"
)

const (
	// DefaultHost is the rootful Podman API socket. Podman serves the
	// Docker-compatible REST API on it, so the stock Docker SDK client
	// works unchanged.
	DefaultHost = "unix:///run/podman/podman.sock"

	// shortIDLength matches the truncated ids the server reports.
	shortIDLength = 12
)

// Client talks to the Podman engine over its Docker-compatible API.
type Client struct {
	api    *client.Client
	logger *slog.Logger
}

// NewClient creates a new engine client. An empty host selects the
// default Podman socket.
func NewClient(host string, logger *slog.Logger) (result *Client, err error) {
	if host == "" {
		host = DefaultHost
	}

	api, err := client.NewClientWithOpts(
		client.WithHost(host),
		client.WithAPIVersionNegotiation(),
	)
	if err != nil {
		err = fmt.Errorf("creating engine client: %w", err)
		return result, err
	}

	result = &Client{
		api:    api,
		logger: logger,
	}

	return result, err
}

// ListContainers lists containers, optionally including stopped ones.
func (c *Client) ListContainers(ctx context.Context, all bool) (result []Container, err error) {
	summaries, err := c.api.ContainerList(ctx, container.ListOptions{All: all})
	if err != nil {
		metrics.EngineCallsTotal.WithLabelValues("container_list", metrics.StatusError).Inc()
		return result, err
	}

	metrics.EngineCallsTotal.WithLabelValues("container_list", metrics.StatusSuccess).Inc()

	result = make([]Container, 0, len(summaries))
	for _, summary := range summaries {
		name := ""
		if len(summary.Names) > 0 {
			name = strings.TrimPrefix(summary.Names[0], "/")
		}

		result = append(result, Container{
			ID:     shortID(summary.ID),
			Name:   name,
			Image:  summary.Image,
			Status: summary.State,
		})
	}

	return result, err
}

// GetContainer resolves a container name or id to a handle.
func (c *Client) GetContainer(ctx context.Context, nameOrID string) (result Container, err error) {
	inspect, err := c.api.ContainerInspect(ctx, nameOrID)
	if err != nil {
		metrics.EngineCallsTotal.WithLabelValues("container_inspect", metrics.StatusError).Inc()
		return result, err
	}

	metrics.EngineCallsTotal.WithLabelValues("container_inspect", metrics.StatusSuccess).Inc()

	result = Container{
		ID:   shortID(inspect.ID),
		Name: strings.TrimPrefix(inspect.Name, "/"),
	}

	if inspect.Config != nil {
		result.Image = inspect.Config.Image
	}

	if inspect.State != nil {
		result.Status = inspect.State.Status
	}

	return result, err
}

// InspectContainer returns the engine's full inspect document for a
// container as a generic structure.
func (c *Client) InspectContainer(ctx context.Context, nameOrID string) (result map[string]interface{}, err error) {
	_, raw, err := c.api.ContainerInspectWithRaw(ctx, nameOrID, false)
	if err != nil {
		metrics.EngineCallsTotal.WithLabelValues("container_inspect", metrics.StatusError).Inc()
		return result, err
	}

	metrics.EngineCallsTotal.WithLabelValues("container_inspect", metrics.StatusSuccess).Inc()

	err = json.Unmarshal(raw, &result)
	if err != nil {
		err = fmt.Errorf("decoding inspect document: %w", err)
		return result, err
	}

	return result, err
}

// CreateContainer creates a container without starting it and returns
// the new container's id.
func (c *Client) CreateContainer(ctx context.Context, opts CreateOptions) (id string, err error) {
	config := &container.Config{
		Image: opts.Image,
		Cmd:   splitCommand(opts.Command),
	}

	created, err := c.api.ContainerCreate(ctx, config, nil, nil, nil, opts.Name)
	if err != nil {
		metrics.EngineCallsTotal.WithLabelValues("container_create", metrics.StatusError).Inc()
		return id, err
	}

	metrics.EngineCallsTotal.WithLabelValues("container_create", metrics.StatusSuccess).Inc()

	id = created.ID
	return id, err
}

// RunContainer creates a container and, when detached, starts it. The
// bare id is returned either way; callers re-resolve it to a handle.
func (c *Client) RunContainer(ctx context.Context, opts RunOptions) (id string, err error) {
	id, err = c.CreateContainer(ctx, CreateOptions{
		Image:   opts.Image,
		Command: opts.Command,
	})
	if err != nil {
		return id, err
	}

	if opts.Detach {
		err = c.StartContainer(ctx, id)
		if err != nil {
			return id, err
		}
	}

	c.logger.InfoContext(ctx, "container created",
		slog.String("id", shortID(id)),
		slog.String("image", opts.Image),
		slog.Bool("detach", opts.Detach))

	return id, err
}

// StartContainer starts a stopped container.
func (c *Client) StartContainer(ctx context.Context, id string) (err error) {
	err = c.api.ContainerStart(ctx, id, container.StartOptions{})
	c.countEngineCall("container_start", err)
	return err
}

// StopContainer stops a running container with the engine's default
// grace period.
func (c *Client) StopContainer(ctx context.Context, id string) (err error) {
	err = c.api.ContainerStop(ctx, id, container.StopOptions{})
	c.countEngineCall("container_stop", err)
	return err
}

// RestartContainer restarts a container.
func (c *Client) RestartContainer(ctx context.Context, id string) (err error) {
	err = c.api.ContainerRestart(ctx, id, container.StopOptions{})
	c.countEngineCall("container_restart", err)
	return err
}

// RemoveContainer removes a container.
func (c *Client) RemoveContainer(ctx context.Context, id string, force bool) (err error) {
	err = c.api.ContainerRemove(ctx, id, container.RemoveOptions{Force: force})
	c.countEngineCall("container_remove", err)
	return err
}

// PauseContainer pauses a running container.
func (c *Client) PauseContainer(ctx context.Context, id string) (err error) {
	err = c.api.ContainerPause(ctx, id)
	c.countEngineCall("container_pause", err)
	return err
}

// UnpauseContainer unpauses a paused container.
func (c *Client) UnpauseContainer(ctx context.Context, id string) (err error) {
	err = c.api.ContainerUnpause(ctx, id)
	c.countEngineCall("container_unpause", err)
	return err
}

// ContainerLogs reads a container's logs into a single buffered string.
// With Follow set the read blocks until the container stops.
func (c *Client) ContainerLogs(ctx context.Context, id string, opts LogOptions) (result string, err error) {
	inspect, err := c.api.ContainerInspect(ctx, id)
	if err != nil {
		metrics.EngineCallsTotal.WithLabelValues("container_logs", metrics.StatusError).Inc()
		return result, err
	}

	logOpts := container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
		Tail:       opts.Tail,
		Since:      opts.Since,
		Follow:     opts.Follow,
	}

	reader, err := c.api.ContainerLogs(ctx, id, logOpts)
	if err != nil {
		metrics.EngineCallsTotal.WithLabelValues("container_logs", metrics.StatusError).Inc()
		return result, err
	}
	defer reader.Close()

	var buf bytes.Buffer

	// TTY containers produce a raw stream; everything else is
	// multiplexed with stdcopy framing.
	if inspect.Config != nil && inspect.Config.Tty {
		_, err = io.Copy(&buf, reader)
	} else {
		_, err = stdcopy.StdCopy(&buf, &buf, reader)
	}

	if err != nil {
		metrics.EngineCallsTotal.WithLabelValues("container_logs", metrics.StatusError).Inc()
		err = fmt.Errorf("reading logs: %w", err)
		return result, err
	}

	metrics.EngineCallsTotal.WithLabelValues("container_logs", metrics.StatusSuccess).Inc()

	result = buf.String()
	return result, err
}

// ExecInContainer runs a command in a running container and returns its
// exit code and combined output.
func (c *Client) ExecInContainer(ctx context.Context, id string, opts ExecOptions) (result ExecResult, err error) {
	execConfig := container.ExecOptions{
		Cmd:          splitCommand(opts.Command),
		WorkingDir:   opts.WorkDir,
		AttachStdout: true,
		AttachStderr: true,
	}

	created, err := c.api.ContainerExecCreate(ctx, id, execConfig)
	if err != nil {
		metrics.EngineCallsTotal.WithLabelValues("container_exec", metrics.StatusError).Inc()
		return result, err
	}

	attach, err := c.api.ContainerExecAttach(ctx, created.ID, container.ExecAttachOptions{})
	if err != nil {
		metrics.EngineCallsTotal.WithLabelValues("container_exec", metrics.StatusError).Inc()
		return result, err
	}
	defer attach.Close()

	var buf bytes.Buffer

	_, err = stdcopy.StdCopy(&buf, &buf, attach.Reader)
	if err != nil {
		metrics.EngineCallsTotal.WithLabelValues("container_exec", metrics.StatusError).Inc()
		err = fmt.Errorf("reading exec output: %w", err)
		return result, err
	}

	inspect, err := c.api.ContainerExecInspect(ctx, created.ID)
	if err != nil {
		metrics.EngineCallsTotal.WithLabelValues("container_exec", metrics.StatusError).Inc()
		return result, err
	}

	metrics.EngineCallsTotal.WithLabelValues("container_exec", metrics.StatusSuccess).Inc()

	result = ExecResult{
		ExitCode: inspect.ExitCode,
		Output:   buf.String(),
	}

	return result, err
}

// ListImages lists images, optionally including intermediate layers.
func (c *Client) ListImages(ctx context.Context, all bool) (result []Image, err error) {
	summaries, err := c.api.ImageList(ctx, image.ListOptions{All: all})
	if err != nil {
		metrics.EngineCallsTotal.WithLabelValues("image_list", metrics.StatusError).Inc()
		return result, err
	}

	metrics.EngineCallsTotal.WithLabelValues("image_list", metrics.StatusSuccess).Inc()

	result = make([]Image, 0, len(summaries))
	for _, summary := range summaries {
		result = append(result, Image{
			ID:      shortID(summary.ID),
			Tags:    summary.RepoTags,
			Size:    summary.Size,
			Created: time.Unix(summary.Created, 0).UTC().Format(time.RFC3339),
		})
	}

	return result, err
}

// GetImage resolves an image name or id to a handle.
func (c *Client) GetImage(ctx context.Context, nameOrID string) (result Image, err error) {
	inspect, _, err := c.api.ImageInspectWithRaw(ctx, nameOrID)
	if err != nil {
		metrics.EngineCallsTotal.WithLabelValues("image_inspect", metrics.StatusError).Inc()
		return result, err
	}

	metrics.EngineCallsTotal.WithLabelValues("image_inspect", metrics.StatusSuccess).Inc()

	result = Image{
		ID:      shortID(inspect.ID),
		Tags:    inspect.RepoTags,
		Size:    inspect.Size,
		Created: inspect.Created,
	}

	return result, err
}

// PullImage pulls repository:tag from a registry and resolves the pulled
// image. When the pull succeeds but the image cannot be re-inspected, a
// zero-ID handle is returned so callers can fall back to reporting the
// reference they asked for.
func (c *Client) PullImage(ctx context.Context, repository string, tag string) (result Image, err error) {
	ref := repository
	if tag != "" {
		ref = repository + ":" + tag
	}

	c.logger.InfoContext(ctx, "pulling image", slog.String("reference", ref))

	reader, err := c.api.ImagePull(ctx, ref, image.PullOptions{})
	if err != nil {
		metrics.EngineCallsTotal.WithLabelValues("image_pull", metrics.StatusError).Inc()
		return result, err
	}
	defer reader.Close()

	// The pull only completes once the progress stream is drained.
	_, err = io.Copy(io.Discard, reader)
	if err != nil {
		metrics.EngineCallsTotal.WithLabelValues("image_pull", metrics.StatusError).Inc()
		err = fmt.Errorf("reading pull progress: %w", err)
		return result, err
	}

	metrics.EngineCallsTotal.WithLabelValues("image_pull", metrics.StatusSuccess).Inc()

	resolved, resolveErr := c.GetImage(ctx, ref)
	if resolveErr != nil {
		c.logger.WarnContext(ctx, "pulled image could not be re-inspected",
			slog.String("reference", ref),
			slog.String("error", resolveErr.Error()))
		return result, err
	}

	result = resolved
	return result, err
}

// RemoveImage removes an image.
func (c *Client) RemoveImage(ctx context.Context, nameOrID string, force bool) (err error) {
	_, err = c.api.ImageRemove(ctx, nameOrID, image.RemoveOptions{Force: force})
	c.countEngineCall("image_remove", err)
	return err
}

// SystemInfo returns the engine's system information as a generic
// structure.
func (c *Client) SystemInfo(ctx context.Context) (result map[string]interface{}, err error) {
	info, err := c.api.Info(ctx)
	if err != nil {
		metrics.EngineCallsTotal.WithLabelValues("system_info", metrics.StatusError).Inc()
		return result, err
	}

	metrics.EngineCallsTotal.WithLabelValues("system_info", metrics.StatusSuccess).Inc()

	data, err := json.Marshal(info)
	if err != nil {
		err = fmt.Errorf("encoding system info: %w", err)
		return result, err
	}

	err = json.Unmarshal(data, &result)
	if err != nil {
		err = fmt.Errorf("decoding system info: %w", err)
		return result, err
	}

	return result, err
}

// countEngineCall records the outcome of a single engine call.
func (c *Client) countEngineCall(operation string, err error) {
	status := metrics.StatusSuccess
	if err != nil {
		status = metrics.StatusError
	}

	metrics.EngineCallsTotal.WithLabelValues(operation, status).Inc()
}

// shortID truncates an engine id to the familiar short form, dropping
// any digest prefix first.
func shortID(id string) (result string) {
	result = strings.TrimPrefix(id, "sha256:")
	if len(result) > shortIDLength {
		result = result[:shortIDLength]
	}

	return result
}

// splitCommand turns a command string into an argv slice. An empty
// command yields nil so the image's default entrypoint applies.
func splitCommand(command string) (result []string) {
	if command == "" {
		return result
	}

	result = strings.Fields(command)
	return result
}

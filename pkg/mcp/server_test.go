package mcp

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"testing"

	"github.com/mohanboddu/podman-mcp-server/pkg/podman"
	"github.com/stretchr/testify/require"
)

// fakeEngine is a configurable ContainerEngine for tests. Zero values
// mean "succeed with empty results"; error fields force failures.
type fakeEngine struct {
	containers []podman.Container
	images     []podman.Image
	container  podman.Container
	image      podman.Image
	inspect    map[string]interface{}
	info       map[string]interface{}
	logs       string
	execResult podman.ExecResult
	createdID  string

	getErr  error
	listErr error
	verbErr error
	pullErr error

	lastCreateOptions podman.CreateOptions
	lastRunOptions    podman.RunOptions
	lastLogOptions    podman.LogOptions
	lastExecOptions   podman.ExecOptions
	lastForce         bool
	lastPullRef       string
	removedIDs        []string
}

func (f *fakeEngine) ListContainers(_ context.Context, _ bool) ([]podman.Container, error) {
	return f.containers, f.listErr
}

func (f *fakeEngine) GetContainer(_ context.Context, _ string) (podman.Container, error) {
	return f.container, f.getErr
}

func (f *fakeEngine) InspectContainer(_ context.Context, _ string) (map[string]interface{}, error) {
	return f.inspect, f.getErr
}

func (f *fakeEngine) CreateContainer(_ context.Context, opts podman.CreateOptions) (string, error) {
	f.lastCreateOptions = opts
	return f.createdID, f.verbErr
}

func (f *fakeEngine) RunContainer(_ context.Context, opts podman.RunOptions) (string, error) {
	f.lastRunOptions = opts
	return f.createdID, f.verbErr
}

func (f *fakeEngine) StartContainer(_ context.Context, _ string) error {
	return f.verbErr
}

func (f *fakeEngine) StopContainer(_ context.Context, _ string) error {
	return f.verbErr
}

func (f *fakeEngine) RestartContainer(_ context.Context, _ string) error {
	return f.verbErr
}

func (f *fakeEngine) RemoveContainer(_ context.Context, id string, force bool) error {
	f.removedIDs = append(f.removedIDs, id)
	f.lastForce = force
	return f.verbErr
}

func (f *fakeEngine) PauseContainer(_ context.Context, _ string) error {
	return f.verbErr
}

func (f *fakeEngine) UnpauseContainer(_ context.Context, _ string) error {
	return f.verbErr
}

func (f *fakeEngine) ContainerLogs(_ context.Context, _ string, opts podman.LogOptions) (string, error) {
	f.lastLogOptions = opts
	return f.logs, f.verbErr
}

func (f *fakeEngine) ExecInContainer(_ context.Context, _ string, opts podman.ExecOptions) (podman.ExecResult, error) {
	f.lastExecOptions = opts
	return f.execResult, f.verbErr
}

func (f *fakeEngine) ListImages(_ context.Context, _ bool) ([]podman.Image, error) {
	return f.images, f.listErr
}

func (f *fakeEngine) GetImage(_ context.Context, _ string) (podman.Image, error) {
	return f.image, f.getErr
}

func (f *fakeEngine) PullImage(_ context.Context, repository string, tag string) (podman.Image, error) {
	f.lastPullRef = repository + ":" + tag
	return f.image, f.pullErr
}

func (f *fakeEngine) RemoveImage(_ context.Context, id string, force bool) error {
	f.removedIDs = append(f.removedIDs, id)
	f.lastForce = force
	return f.verbErr
}

func (f *fakeEngine) SystemInfo(_ context.Context) (map[string]interface{}, error) {
	return f.info, f.getErr
}

// newTestServer creates a Server backed by the given fake engine.
func newTestServer(t *testing.T, engine *fakeEngine) (server *Server) {
	t.Helper()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))

	server = NewServer(engine, logger)
	return server
}

// dispatch runs one request through the server and decodes the envelope.
func dispatch(t *testing.T, server *Server, raw string) (response Response, status int) {
	t.Helper()

	body, status := server.Dispatch(context.Background(), []byte(raw))

	err := json.Unmarshal(body, &response)
	require.NoError(t, err, "Dispatch() should always produce a valid envelope")

	return response, status
}

func TestDispatchParseError(t *testing.T) {
	t.Parallel()

	server := newTestServer(t, &fakeEngine{})

	body, status := server.Dispatch(context.Background(), []byte("not-json"))

	require.Equal(t, http.StatusBadRequest, status, "parse failure is the only 400 path")
	require.JSONEq(t, `{"jsonrpc":"2.0","error":{"code":-32700,"message":"Parse error"},"id":null}`, string(body))
}

func TestDispatchMissingJSONRPC(t *testing.T) {
	t.Parallel()

	server := newTestServer(t, &fakeEngine{})

	response, status := dispatch(t, server, `{"method":"list_containers"}`)

	require.Equal(t, http.StatusOK, status)
	require.NotNil(t, response.Error)
	require.Equal(t, CodeInvalidRequest, response.Error.Code)
	require.Equal(t, "Invalid Request", response.Error.Message)
	require.Nil(t, response.ID)
}

func TestDispatchMissingMethod(t *testing.T) {
	t.Parallel()

	server := newTestServer(t, &fakeEngine{})

	response, status := dispatch(t, server, `{"jsonrpc":"2.0","id":7}`)

	require.Equal(t, http.StatusOK, status)
	require.NotNil(t, response.Error)
	require.Equal(t, CodeInvalidRequest, response.Error.Code)
	require.Equal(t, float64(7), response.ID, "invalid requests still echo the id when present")
}

func TestDispatchMethodNotFound(t *testing.T) {
	t.Parallel()

	server := newTestServer(t, &fakeEngine{})

	response, status := dispatch(t, server, `{"jsonrpc":"2.0","method":"no_such_tool","id":5}`)

	require.Equal(t, http.StatusOK, status)
	require.NotNil(t, response.Error)
	require.Equal(t, CodeMethodNotFound, response.Error.Code)
	require.Equal(t, float64(5), response.ID)
}

func TestDispatchNonStringMethod(t *testing.T) {
	t.Parallel()

	server := newTestServer(t, &fakeEngine{})

	// The body parses as JSON, so this is not the 400 path. The bad
	// method type surfaces as a dispatch failure with the id echoed.
	response, status := dispatch(t, server, `{"jsonrpc":"2.0","method":123,"id":1}`)

	require.Equal(t, http.StatusOK, status, "a parseable body never yields a 400")
	require.NotNil(t, response.Error)
	require.Equal(t, CodeInternalError, response.Error.Code)
	require.Contains(t, response.Error.Message, "Internal error")
	require.Equal(t, float64(1), response.ID)
}

func TestDispatchEmptyMethod(t *testing.T) {
	t.Parallel()

	server := newTestServer(t, &fakeEngine{})

	// Both envelope keys are present, so validation passes and the empty
	// name misses the dispatch table.
	response, status := dispatch(t, server, `{"jsonrpc":"2.0","method":"","id":1}`)

	require.Equal(t, http.StatusOK, status)
	require.NotNil(t, response.Error)
	require.Equal(t, CodeMethodNotFound, response.Error.Code)
	require.Equal(t, float64(1), response.ID)
}

func TestDispatchToolsList(t *testing.T) {
	t.Parallel()

	server := newTestServer(t, &fakeEngine{})

	response, status := dispatch(t, server, `{"jsonrpc":"2.0","method":"tools/list","id":"discovery"}`)

	require.Equal(t, http.StatusOK, status)
	require.Nil(t, response.Error)
	require.Equal(t, "discovery", response.ID)

	manifest, ok := response.Result.(map[string]interface{})
	require.True(t, ok, "tools/list result should be a name-keyed manifest")

	for name := range server.handlers {
		require.Contains(t, manifest, name, "manifest should describe every registered tool")
	}

	require.Len(t, manifest, len(server.handlers))
}

func TestDispatchToolsListIdempotent(t *testing.T) {
	t.Parallel()

	server := newTestServer(t, &fakeEngine{})

	first, _ := server.Dispatch(context.Background(), []byte(`{"jsonrpc":"2.0","method":"tools/list","id":1}`))
	second, _ := server.Dispatch(context.Background(), []byte(`{"jsonrpc":"2.0","method":"tools/list","id":1}`))

	require.Equal(t, string(first), string(second), "consecutive manifests should be byte-identical")
}

func TestDispatchListContainersEmpty(t *testing.T) {
	t.Parallel()

	server := newTestServer(t, &fakeEngine{})

	body, status := server.Dispatch(context.Background(), []byte(`{"jsonrpc":"2.0","method":"list_containers","params":{},"id":1}`))

	require.Equal(t, http.StatusOK, status)
	require.JSONEq(t, `{"jsonrpc":"2.0","result":[],"id":1}`, string(body))
}

func TestDispatchStopContainerNoSuchContainer(t *testing.T) {
	t.Parallel()

	engine := &fakeEngine{getErr: errNoSuchContainer}
	server := newTestServer(t, engine)

	body, status := server.Dispatch(context.Background(), []byte(`{"jsonrpc":"2.0","method":"stop_container","params":{"container_id":"doesnotexist"},"id":2}`))

	// Engine failures ride inside a success envelope.
	require.Equal(t, http.StatusOK, status)
	require.JSONEq(t, `{"jsonrpc":"2.0","result":{"error":"no such container"},"id":2}`, string(body))
}

func TestDispatchNoIDEchoesNull(t *testing.T) {
	t.Parallel()

	server := newTestServer(t, &fakeEngine{})

	body, _ := server.Dispatch(context.Background(), []byte(`{"jsonrpc":"2.0","method":"list_containers"}`))

	var decoded map[string]interface{}
	err := json.Unmarshal(body, &decoded)
	require.NoError(t, err)

	id, present := decoded["id"]
	require.True(t, present, "response must always carry an id field")
	require.Nil(t, id)
}

func TestDispatchNullIDEchoesNull(t *testing.T) {
	t.Parallel()

	server := newTestServer(t, &fakeEngine{})

	response, _ := dispatch(t, server, `{"jsonrpc":"2.0","method":"list_containers","id":null}`)

	require.Nil(t, response.ID)
	require.Nil(t, response.Error)
}

func TestDispatchBindingFailure(t *testing.T) {
	t.Parallel()

	server := newTestServer(t, &fakeEngine{})

	response, status := dispatch(t, server, `{"jsonrpc":"2.0","method":"list_containers","params":{"bogus":true},"id":3}`)

	require.Equal(t, http.StatusOK, status)
	require.NotNil(t, response.Error, "unknown params are a dispatch defect, not an operation failure")
	require.Equal(t, CodeInternalError, response.Error.Code)
	require.Contains(t, response.Error.Message, "Internal error")
	require.Equal(t, float64(3), response.ID)
}

func TestDispatchSuccessEnvelopeNeverCarriesError(t *testing.T) {
	t.Parallel()

	engine := &fakeEngine{
		containers: []podman.Container{
			{ID: "abc123def456", Name: "web", Image: "nginx", Status: "running"},
		},
	}
	server := newTestServer(t, engine)

	body, _ := server.Dispatch(context.Background(), []byte(`{"jsonrpc":"2.0","method":"list_containers","params":{"all":true},"id":9}`))

	var decoded map[string]interface{}
	err := json.Unmarshal(body, &decoded)
	require.NoError(t, err)

	require.Contains(t, decoded, "result")
	require.NotContains(t, decoded, "error")
}

func TestDispatchConcurrent(t *testing.T) {
	t.Parallel()

	server := newTestServer(t, &fakeEngine{})

	done := make(chan struct{})

	for i := 0; i < 8; i++ {
		go func() {
			defer func() { done <- struct{}{} }()

			for j := 0; j < 50; j++ {
				body, status := server.Dispatch(context.Background(), []byte(`{"jsonrpc":"2.0","method":"tools/list","id":1}`))
				if status != http.StatusOK || len(body) == 0 {
					t.Errorf("concurrent Dispatch() status = %d, body length %d", status, len(body))
					return
				}
			}
		}()
	}

	for i := 0; i < 8; i++ {
		<-done
	}
}

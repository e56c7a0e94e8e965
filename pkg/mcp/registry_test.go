package mcp

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetToolManifestMatchesHandlers(t *testing.T) {
	t.Parallel()

	manifest := getToolManifest()
	handlers := NewPodmanTools(&fakeEngine{}, nil).handlers()

	require.Len(t, manifest, len(handlers), "every handler needs a descriptor and vice versa")

	for name := range handlers {
		_, exists := manifest[name]
		require.True(t, exists, "tool %s is callable but missing from the manifest", name)
	}

	for name := range manifest {
		_, exists := handlers[name]
		require.True(t, exists, "tool %s is described but has no handler", name)
	}
}

func TestGetToolManifestNamesMatchKeys(t *testing.T) {
	t.Parallel()

	for key, tool := range getToolManifest() {
		if tool.Name != key {
			t.Errorf("manifest key %s has descriptor name %s", key, tool.Name)
		}

		if tool.Description == "" {
			t.Errorf("tool %s has no description", key)
		}
	}
}

func TestGetToolManifestRequiredFieldsDeclared(t *testing.T) {
	t.Parallel()

	for name, tool := range getToolManifest() {
		for _, required := range tool.Parameters.Required {
			_, declared := tool.Parameters.Properties[required]
			require.True(t, declared, "tool %s requires undeclared field %s", name, required)
		}
	}
}

func TestGetToolManifestExpectedTools(t *testing.T) {
	t.Parallel()

	manifest := getToolManifest()

	expected := []string{
		"list_containers", "inspect_container", "run_container",
		"create_container", "start_container", "stop_container",
		"restart_container", "remove_container", "pause_container",
		"unpause_container", "get_container_logs", "exec_command",
		"list_images", "pull_image", "remove_image", "get_system_info",
	}

	require.Len(t, manifest, len(expected))

	for _, name := range expected {
		if _, exists := manifest[name]; !exists {
			t.Errorf("expected tool %s not found in manifest", name)
		}
	}
}

func TestGetToolManifestStableEncoding(t *testing.T) {
	t.Parallel()

	first, err := json.Marshal(getToolManifest())
	require.NoError(t, err)

	second, err := json.Marshal(getToolManifest())
	require.NoError(t, err)

	require.Equal(t, string(first), string(second))
}

func TestGetContainerToolsRequiredSets(t *testing.T) {
	t.Parallel()

	tools := getContainerTools()

	// list_containers takes only optional params.
	require.Empty(t, tools[toolListContainers].Parameters.Required)

	// exec_command is the only tool with two required params.
	require.ElementsMatch(t, []string{"container_id", "command"}, tools[toolExecCommand].Parameters.Required)

	require.Equal(t, []string{"image"}, tools[toolRunContainer].Parameters.Required)
	require.Equal(t, []string{"container_id"}, tools[toolStopContainer].Parameters.Required)
}

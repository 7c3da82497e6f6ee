//go:build integration

package integration

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcexec "github.com/testcontainers/testcontainers-go/exec"
	"github.com/testcontainers/testcontainers-go/wait"

	"variant-packager/internal/adapters"
	"variant-packager/internal/core"
	"variant-packager/internal/types"
)

// containerCommand runs commands inside c so the rpm probe sees the
// container's macros instead of the host's.
func containerCommand(c testcontainers.Container) adapters.CommandFunc {
	return func(ctx context.Context, name string, args ...string) ([]byte, error) {
		code, reader, err := c.Exec(ctx, append([]string{name}, args...), tcexec.Multiplexed())
		if err != nil {
			return nil, err
		}
		output, err := io.ReadAll(reader)
		if err != nil {
			return nil, err
		}
		if code != 0 {
			return nil, &exitError{code: code, output: string(output)}
		}
		return output, nil
	}
}

type exitError struct {
	code   int
	output string
}

func (e *exitError) Error() string {
	return e.output
}

func TestRPMProbeWithTestcontainers(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping testcontainers probe in short mode")
	}

	ctx := t.Context()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:      "registry.opensuse.org/opensuse/tumbleweed:latest",
			Cmd:        []string{"sleep", "infinity"},
			WaitingFor: wait.ForExec([]string{"rpm", "--version"}).WithStartupTimeout(2 * time.Minute),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	probe := adapters.RPMProbeAdapter{Exec: containerCommand(container), Interpreter: "3.11"}
	facts, err := probe.Probe(ctx)
	require.NoError(t, err)
	require.NotNil(t, facts.TumbleweedVersion)
	assert.Greater(t, *facts.TumbleweedVersion, core.TumbleweedVersionThreshold)

	tag, err := core.NewEnvironmentClassifier().Classify(ctx, facts)
	require.NoError(t, err)
	assert.Equal(t, types.ProfileTagSUSETumbleweed, tag)
}

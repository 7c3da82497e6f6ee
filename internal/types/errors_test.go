package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPipelineErrorMessage(t *testing.T) {
	err := NewPipelineError(ErrorKindInstall, BuildPhaseInstall, errors.New("pip install failed")).WithExitCode(2)
	assert.Equal(t, "install error in install (exit code 2): pip install failed", err.Error())
}

func TestKindOfWrapped(t *testing.T) {
	inner := NewPipelineError(ErrorKindExtraction, BuildPhaseExtract, errors.New("archive missing"))
	wrapped := fmt.Errorf("run: %w", inner)

	kind, ok := KindOf(wrapped)
	require.True(t, ok)
	assert.Equal(t, ErrorKindExtraction, kind)
	assert.True(t, IsKind(wrapped, ErrorKindExtraction))
	assert.False(t, IsKind(wrapped, ErrorKindBuild))

	_, ok = KindOf(errors.New("plain"))
	assert.False(t, ok)
}

func TestPackageIdentityEVR(t *testing.T) {
	tests := []struct {
		name     string
		identity PackageIdentity
		want     string
	}{
		{name: "with epoch", identity: PackageIdentity{Name: "jaraco.classes", Epoch: 100, Version: "3.2.2", Release: "1"}, want: "100:3.2.2-1"},
		{name: "zero epoch omitted", identity: PackageIdentity{Name: "jaraco.classes", Version: "3.2.2", Release: "1"}, want: "3.2.2-1"},
		{name: "no release", identity: PackageIdentity{Name: "x", Epoch: 1, Version: "1.0"}, want: "1:1.0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.identity.EVR())
		})
	}
}

func TestParseInterpreter(t *testing.T) {
	v, ok := ParseInterpreter("3.11")
	require.True(t, ok)
	assert.Equal(t, "3.11", v.Dotted())
	assert.Equal(t, "311", v.NoDots())

	v, ok = ParseInterpreter("3.6.15")
	require.True(t, ok)
	assert.Equal(t, "36", v.NoDots())

	for _, bad := range []string{"", "3", "three.eleven", "0.1", "3.-1"} {
		_, ok := ParseInterpreter(bad)
		assert.False(t, ok, bad)
	}
}

func TestBuildStateTerminal(t *testing.T) {
	assert.True(t, BuildStateFinalized.Terminal())
	assert.True(t, BuildStateFailed.Terminal())
	assert.False(t, BuildStatePending.Terminal())
	assert.False(t, BuildStateInstalled.Terminal())
}

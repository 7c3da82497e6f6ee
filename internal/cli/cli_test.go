package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"variant-packager/internal/types"
)

// ---------- Command tree tests ----------

func TestRootCommandHasSubcommands(t *testing.T) {
	root := newRootCommand()
	names := make([]string, 0, len(root.Commands()))
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}
	expected := []string{"validate", "classify", "resolve", "build", "finalize", "inspect"}
	for _, name := range expected {
		assert.Contains(t, names, name, "missing subcommand: %s", name)
	}
}

func TestRootCommandVersion(t *testing.T) {
	root := newRootCommand()
	assert.Equal(t, "dev", root.Version)
}

func TestBuildCommandFlags(t *testing.T) {
	cmd := newBuildCommand()
	flags := []string{
		"recipe", "work-dir", "staging-dir", "output",
		"build-command", "install-command", "step-timeout",
		"probe", "tumbleweed-version", "enterprise-version", "interpreter",
	}
	for _, name := range flags {
		flag := cmd.Flags().Lookup(name)
		assert.NotNil(t, flag, "missing flag: %s", name)
	}
}

func TestEnvironmentCommandFlags(t *testing.T) {
	for _, cmd := range []*cobra.Command{newClassifyCommand(), newResolveCommand()} {
		for _, name := range []string{"probe", "tumbleweed-version", "enterprise-version", "interpreter"} {
			assert.NotNil(t, cmd.Flags().Lookup(name), "%s missing flag: %s", cmd.Name(), name)
		}
	}
	assert.NotNil(t, newResolveCommand().Flags().Lookup("recipe"))
	assert.NotNil(t, newFinalizeCommand().Flags().Lookup("purge"))
	assert.NotNil(t, newInspectCommand().Flags().Lookup("output"))
}

// ---------- Command execution tests ----------

func executeRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(t.Context())
	return out.String(), err
}

func TestClassifyCommand(t *testing.T) {
	out, err := executeRoot(t, "classify", "--tumbleweed-version", "1699", "--interpreter", "3.11")
	require.NoError(t, err)
	assert.Equal(t, "suse-tumbleweed\n", out)

	out, err = executeRoot(t, "classify", "--tumbleweed-version", "1500", "--enterprise-version", "150400")
	require.NoError(t, err)
	assert.Equal(t, "suse-enterprise\n", out)

	_, err = executeRoot(t, "classify", "--tumbleweed-version", "1699", "--enterprise-version", "150400")
	require.Error(t, err)
	assert.Equal(t, 2, exitCodeForError(err))
}

func TestValidateCommand(t *testing.T) {
	dir := t.TempDir()
	recipe := filepath.Join(dir, "recipe.yaml")
	content := "api_version: variant-packager/v1\n" +
		"package:\n  name: jaraco.classes\n  epoch: 100\n  version: 3.2.2\n  release: \"1\"\n" +
		"dependencies:\n  - name: more-itertools\n" +
		"source:\n  archive: jaraco.classes-3.2.2.tar.gz\n"
	require.NoError(t, os.WriteFile(recipe, []byte(content), 0o644))

	out, err := executeRoot(t, "validate", "--recipe", recipe)
	require.NoError(t, err)
	assert.Contains(t, out, "validated: jaraco.classes 100:3.2.2-1 (1 dependencies)")

	out, err = executeRoot(t, "resolve", "--recipe", recipe)
	require.NoError(t, err)
	assert.Contains(t, out, "subpackage_name: python3-jaraco-classes")
	assert.Contains(t, out, "python3-more-itertools")

	_, err = executeRoot(t, "validate", "--recipe", filepath.Join(dir, "absent.yaml"))
	require.Error(t, err)
	assert.Equal(t, 2, exitCodeForError(err))
}

func TestFinalizeCommand(t *testing.T) {
	root := t.TempDir()
	for _, rel := range []string{"a/LICENSE", "b/LICENSE"} {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("MIT\n"), 0o644))
	}
	out, err := executeRoot(t, "finalize", "--staging-dir", root)
	require.NoError(t, err)
	assert.Equal(t, "purged: 0, linked: 1, duplicate sets: 1\n", out)
}

// ---------- Helper function tests ----------

func TestResolveString(t *testing.T) {
	tests := []struct {
		name     string
		cmd      *cobra.Command
		value    string
		expected string
	}{
		{
			name:     "nil cmd with value returns value",
			cmd:      nil,
			value:    "explicit",
			expected: "explicit",
		},
		{
			name:     "nil cmd empty value returns empty",
			cmd:      nil,
			value:    "",
			expected: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolveString(tt.cmd, tt.value, "test_key", "test-flag")
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestResolveStrings(t *testing.T) {
	got := resolveStrings(nil, []string{"a", "b"}, "test_key", "test-flag")
	assert.Equal(t, []string{"a", "b"}, got)
	assert.Empty(t, resolveStrings(nil, nil, "test_key", "test-flag"))
}

func TestResolveCommand(t *testing.T) {
	assert.Equal(t, []string{"python3", "-m", "build"}, resolveCommand(nil, " python3  -m build ", "test_key", "test-flag"))
	assert.Empty(t, resolveCommand(nil, "", "test_key", "test-flag"))

	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("cmd-flag", "", "test flag")
	require.NoError(t, cmd.Flags().Set("cmd-flag", "make install"))
	assert.Equal(t, []string{"make", "install"}, resolveCommand(cmd, "make install", "test_key", "cmd-flag"))
}

func TestResolveDuration(t *testing.T) {
	assert.Equal(t, time.Minute, resolveDuration(nil, time.Minute, "test_key", "test-flag"))

	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().Duration("timeout", time.Hour, "test flag")
	assert.Equal(t, time.Hour, resolveDuration(cmd, time.Hour, "unset_duration_key", "timeout"))
}

func TestFlagChanged(t *testing.T) {
	assert.False(t, flagChanged(nil, "anything"), "nil cmd should return false")
	assert.False(t, flagChanged(nil, ""), "nil cmd with empty name")

	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("myflag", "", "test flag")
	assert.False(t, flagChanged(cmd, "myflag"), "unchanged flag")
	assert.False(t, flagChanged(cmd, "nonexistent"), "nonexistent flag")
}

func TestFlagChangedAfterSet(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("myflag", "", "test flag")
	require.NoError(t, cmd.Flags().Set("myflag", "val"))
	assert.True(t, flagChanged(cmd, "myflag"))
}

// ---------- Exit code tests ----------

func TestExitCodeForError(t *testing.T) {
	cause := errors.New("boom")
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{
			name:     "configuration",
			err:      types.NewPipelineError(types.ErrorKindConfiguration, types.BuildPhaseClassify, cause),
			expected: 2,
		},
		{
			name:     "extraction",
			err:      types.NewPipelineError(types.ErrorKindExtraction, types.BuildPhaseExtract, cause),
			expected: 3,
		},
		{
			name:     "build",
			err:      types.NewPipelineError(types.ErrorKindBuild, types.BuildPhaseBuild, cause).WithExitCode(1),
			expected: 4,
		},
		{
			name:     "install",
			err:      types.NewPipelineError(types.ErrorKindInstall, types.BuildPhaseInstall, cause).WithExitCode(9),
			expected: 5,
		},
		{
			name:     "cleanup",
			err:      types.NewPipelineError(types.ErrorKindCleanup, types.BuildPhaseFinalize, cause),
			expected: 6,
		},
		{
			name:     "duplicate resolution",
			err:      types.NewPipelineError(types.ErrorKindDuplicateResolution, types.BuildPhaseFinalize, cause),
			expected: 6,
		},
		{
			name: "invalid argument",
			err: errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("bad input"),
			expected: 2,
		},
		{
			name: "not found",
			err: errbuilder.New().
				WithCode(errbuilder.CodeNotFound).
				WithMsg("manifest missing"),
			expected: 2,
		},
		{
			name: "internal error",
			err: errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("boom"),
			expected: 1,
		},
		{
			name:     "unknown error",
			err:      assert.AnError,
			expected: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := exitCodeForError(tt.err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

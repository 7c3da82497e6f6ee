package policies

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestPurgePolicyDefaults(t *testing.T) {
	policy := NewPurgePolicy(nil)
	if diff := cmp.Diff(DefaultPurgePatterns, policy.Patterns); diff != "" {
		t.Fatalf("unexpected default patterns (-want +got):\n%s", diff)
	}

	assert.True(t, policy.MatchDir("__pycache__"))
	assert.False(t, policy.MatchDir("jaraco"))
	assert.True(t, policy.MatchFile("classes.cpython-311.pyc"))
	assert.True(t, policy.MatchFile("properties.pyo"))
	assert.False(t, policy.MatchFile("properties.py"))
	assert.False(t, policy.MatchFile("__pycache__"))
}

func TestPurgePolicyPatternKinds(t *testing.T) {
	policy := NewPurgePolicy([]string{"build/", "*.orig", "RECORD", ".nfs*", "", "*", "a/b", "x/y/"})

	tests := []struct {
		name string
		dir  bool
		want bool
	}{
		{name: "build", dir: true, want: true},
		{name: "dist", dir: true, want: false},
		{name: "setup.py.orig", want: true},
		{name: "RECORD", want: true},
		{name: "RECORD.bak", want: false},
		{name: ".nfs0001", want: true},
		{name: "anything", want: false},
		{name: "b", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.dir {
				assert.Equal(t, tt.want, policy.MatchDir(tt.name))
				return
			}
			assert.Equal(t, tt.want, policy.MatchFile(tt.name))
		})
	}
}

func TestValidatePatterns(t *testing.T) {
	assert.NoError(t, ValidatePatterns(DefaultPurgePatterns))
	assert.NoError(t, ValidatePatterns([]string{"build/", "RECORD", ".nfs*"}))
	for _, bad := range []string{"", "*", "/", "a/b", "x/y/", "*/"} {
		assert.Error(t, ValidatePatterns([]string{"*.pyc", bad}), bad)
	}
}

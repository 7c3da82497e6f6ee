package core

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"variant-packager/internal/types"
)

var moreItertools = []types.Dependency{{Name: "more_itertools"}}

func TestProfileResolverTable(t *testing.T) {
	resolver := NewProfileResolver()

	tests := []struct {
		name         string
		tag          types.ProfileTag
		facts        types.EnvironmentFacts
		wantName     string
		wantRequires []string
		wantGlob     string
	}{
		{
			name:     "tumbleweed keeps dotted name with nodots prefix",
			tag:      types.ProfileTagSUSETumbleweed,
			facts:    types.EnvironmentFacts{TumbleweedVersion: types.IntPtr(1699), Interpreter: "3.11"},
			wantName: "python311-jaraco.classes",
			wantRequires: []string{
				"python311-base",
				"python311-more-itertools",
				"python3dist(more-itertools)",
			},
			wantGlob: "usr/lib/python3.11/site-packages/*",
		},
		{
			name:     "tumbleweed without interpreter falls back to python3",
			tag:      types.ProfileTagSUSETumbleweed,
			facts:    types.EnvironmentFacts{TumbleweedVersion: types.IntPtr(1699)},
			wantName: "python3-jaraco.classes",
			wantRequires: []string{
				"python3-base",
				"python3-more-itertools",
				"python3dist(more-itertools)",
			},
			wantGlob: "usr/lib/python3*/site-packages/*",
		},
		{
			name:     "enterprise uses plain python3 prefix",
			tag:      types.ProfileTagSUSEEnterprise,
			facts:    types.EnvironmentFacts{EnterpriseVersion: types.IntPtr(150600), Interpreter: "3.6"},
			wantName: "python3-jaraco.classes",
			wantRequires: []string{
				"python3-base",
				"python3-more-itertools",
				"python3dist(more-itertools)",
			},
			wantGlob: "usr/lib/python3.6/site-packages/*",
		},
		{
			name:     "generic is dash normalized",
			tag:      types.ProfileTagGeneric,
			facts:    types.EnvironmentFacts{},
			wantName: "python3-jaraco-classes",
			wantRequires: []string{
				"python3",
				"python3-more-itertools",
				"python3dist(more-itertools)",
			},
			wantGlob: "usr/lib/python3*/*-packages/*",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profile, err := resolver.Resolve(context.Background(), tt.tag, jaracoIdentity(), moreItertools, tt.facts)
			require.NoError(t, err)
			assert.Equal(t, tt.tag, profile.Tag)
			assert.Equal(t, tt.wantName, profile.SubpackageName)
			if diff := cmp.Diff(tt.wantRequires, profile.Requires); diff != "" {
				t.Fatalf("unexpected requires (-want +got):\n%s", diff)
			}
			assert.Equal(t, tt.wantGlob, profile.FileManifestRoot)
		})
	}
}

func TestProfileResolverGenericProvides(t *testing.T) {
	resolver := NewProfileResolver()
	profile, err := resolver.Resolve(context.Background(), types.ProfileTagGeneric, jaracoIdentity(), moreItertools, types.EnvironmentFacts{})
	require.NoError(t, err)
	assert.Contains(t, profile.Provides, "python3-jaraco.classes = 100:3.2.2-1")
	for _, provide := range profile.Provides {
		assert.NotContains(t, provide, "python311")
	}
}

func TestProfileResolverSUSEProvidesDottedNameOnly(t *testing.T) {
	resolver := NewProfileResolver()
	facts := types.EnvironmentFacts{TumbleweedVersion: types.IntPtr(1699), Interpreter: "3.11"}
	profile, err := resolver.Resolve(context.Background(), types.ProfileTagSUSETumbleweed, jaracoIdentity(), nil, facts)
	require.NoError(t, err)
	assert.Contains(t, profile.Provides, "python311-jaraco.classes = 100:3.2.2-1")
	for _, provide := range profile.Provides {
		assert.NotContains(t, provide, "jaraco-classes")
	}
}

func TestProfileResolverClassifiedGenericHasNoQualifiedProvides(t *testing.T) {
	facts := types.EnvironmentFacts{TumbleweedVersion: types.IntPtr(1315), Interpreter: "3.6"}
	tag, err := NewEnvironmentClassifier().Classify(context.Background(), facts)
	require.NoError(t, err)
	require.Equal(t, types.ProfileTagGeneric, tag)

	profile, err := NewProfileResolver().Resolve(context.Background(), tag, jaracoIdentity(), nil, facts)
	require.NoError(t, err)
	for _, provide := range profile.Provides {
		assert.False(t, strings.HasPrefix(provide, "python36") || strings.HasPrefix(provide, "python3.6"), provide)
	}
}

func TestProfileResolverDeterministic(t *testing.T) {
	resolver := NewProfileResolver()
	facts := types.EnvironmentFacts{TumbleweedVersion: types.IntPtr(1699), Interpreter: "3.11"}
	first, err := resolver.Resolve(context.Background(), types.ProfileTagSUSETumbleweed, jaracoIdentity(), moreItertools, facts)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := resolver.Resolve(context.Background(), types.ProfileTagSUSETumbleweed, jaracoIdentity(), moreItertools, facts)
		require.NoError(t, err)
		if diff := cmp.Diff(first, again); diff != "" {
			t.Fatalf("resolution not deterministic (-first +again):\n%s", diff)
		}
	}
}

func TestProfileResolverErrors(t *testing.T) {
	resolver := NewProfileResolver()

	_, err := resolver.Resolve(context.Background(), types.ProfileTag("fedora"), jaracoIdentity(), nil, types.EnvironmentFacts{})
	require.Error(t, err)
	assert.True(t, types.IsKind(err, types.ErrorKindConfiguration))

	bad := jaracoIdentity()
	bad.Version = "not a version"
	_, err = resolver.Resolve(context.Background(), types.ProfileTagGeneric, bad, nil, types.EnvironmentFacts{})
	require.Error(t, err)
	assert.True(t, types.IsKind(err, types.ErrorKindConfiguration))

	_, err = resolver.Resolve(context.Background(), types.ProfileTagGeneric, jaracoIdentity(), []types.Dependency{{Name: " "}}, types.EnvironmentFacts{})
	require.Error(t, err)
}

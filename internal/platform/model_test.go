package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCardinalityKnownAndUnknown(t *testing.T) {
	assert.Equal(t, "1:1", Cardinality("XGitHubProject", "XKubeCluster"))
	assert.Equal(t, "N:N", Cardinality("XApp", "XKubEnv"))
	assert.Equal(t, "unknown", Cardinality("XApp", "XGitHubProvider"))
}

func TestDescribeKindFallsBackForUnknownKind(t *testing.T) {
	assert.NotEmpty(t, DescribeKind("XApp"))
	assert.Equal(t, "No description available", DescribeKind("NotARealKind"))
}

func TestAPIVersionForKind(t *testing.T) {
	assert.Equal(t, "app.kubecore.io/v1alpha1", APIVersionForKind("XApp"))
	assert.Equal(t, "", APIVersionForKind("NotARealKind"))
}

func TestShortNameRoundTrip(t *testing.T) {
	for kind := range kindToShortName {
		short := ShortName(kind)
		resolved, ok := KindForShortName(short)
		assert.True(t, ok, "expected short name %q to resolve back to a kind", short)
		assert.Equal(t, kind, resolved)
	}
}

func TestShortNameUnknownKindIsIdentity(t *testing.T) {
	assert.Equal(t, "NotARealKind", ShortName("NotARealKind"))
}

func TestKindForShortNameAcceptsTypedKindDirectly(t *testing.T) {
	resolved, ok := KindForShortName("XApp")
	assert.True(t, ok)
	assert.Equal(t, "XApp", resolved)
}

func TestKindForShortNameUnknown(t *testing.T) {
	_, ok := KindForShortName("notAThing")
	assert.False(t, ok)
}

func TestSearchConfigsForRefFieldKnownAndUnknown(t *testing.T) {
	configs := SearchConfigsForRefField("kubeClusterRef")
	assert.NotEmpty(t, configs)
	for _, c := range configs {
		assert.NotEmpty(t, c.Kind)
		assert.NotEmpty(t, c.APIVersion)
	}

	assert.Nil(t, SearchConfigsForRefField("notARefField"))
}

func TestInferReferenceTargetKnownSuffix(t *testing.T) {
	hint := InferReferenceTarget("kubeClusterRef")
	assert.Equal(t, "XKubeCluster", hint.Kind)
	assert.Equal(t, "platform.kubecore.io/v1alpha1", hint.APIVersion)
	assert.False(t, hint.IsArray)
}

func TestInferReferenceTargetArraySuffix(t *testing.T) {
	hint := InferReferenceTarget("qualityGates")
	assert.Equal(t, "XQualityGate", hint.Kind)
	assert.True(t, hint.IsArray)
}

func TestInferReferenceTargetFallsBackToConfigMap(t *testing.T) {
	hint := InferReferenceTarget("somethingUnrecognized")
	assert.Equal(t, "ConfigMap", hint.Kind)
	assert.Equal(t, "v1", hint.APIVersion)
}

func TestAccessibleKindsAndOutboundEdgesAgreeOnKindSet(t *testing.T) {
	for kind := range OutboundEdges {
		_, ok := AccessibleKinds[kind]
		assert.True(t, ok, "kind %q has outbound edges but no AccessibleKinds entry", kind)
	}
}

func TestHubKindsAreAccessibleSomewhere(t *testing.T) {
	for hub := range HubKinds {
		found := false
		for _, kinds := range AccessibleKinds {
			for _, k := range kinds {
				if k == hub {
					found = true
				}
			}
		}
		assert.True(t, found, "hub kind %q is never reachable via AccessibleKinds", hub)
	}
}

func TestTransitiveChainsReferenceKnownTargetKinds(t *testing.T) {
	for root, steps := range TransitiveChains {
		for _, step := range steps {
			assert.NotEmpty(t, step.TargetKind, "empty target kind in chain rooted at %s", root)
			assert.NotEmpty(t, step.RefChain, "empty ref chain in chain rooted at %s", root)
		}
	}
}

package insights

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crossplane/function-kubecore-schema-registry/internal/domain"
	"github.com/crossplane/function-kubecore-schema-registry/pkg/interfaces"
)

func blockWithInstances(n int) *domain.SchemaBlock {
	b := &domain.SchemaBlock{}
	for i := 0; i < n; i++ {
		b.Instances = append(b.Instances, domain.SchemaInstance{Name: "x"})
	}
	return b
}

func TestAppInsightsRecommendsEnvironmentWhenMissing(t *testing.T) {
	pc := domain.NewPlatformContext(domain.Requestor{Kind: "XApp", Name: "checkout"})
	g := New()

	out := g.Generate(pc, interfaces.QueryOptions{})

	found := false
	for _, rule := range out.ValidationRules {
		if rule.Rule == "app-requires-environment" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestAppInsightsNoWarningWhenEnvironmentResolved(t *testing.T) {
	pc := domain.NewPlatformContext(domain.Requestor{Kind: "XApp", Name: "checkout"})
	pc.AvailableSchemas["kubEnv"] = blockWithInstances(1)
	pc.AvailableSchemas["githubApp"] = blockWithInstances(1)
	pc.AvailableSchemas["githubProject"] = blockWithInstances(1)
	g := New()

	out := g.Generate(pc, interfaces.QueryOptions{})

	for _, rule := range out.ValidationRules {
		assert.NotEqual(t, "app-requires-environment", rule.Rule)
	}
	assert.Empty(t, out.SuggestedReferences)
}

func TestKubeSystemInsightsRequiresCluster(t *testing.T) {
	pc := domain.NewPlatformContext(domain.Requestor{Kind: "XKubeSystem", Name: "core"})
	g := New()

	out := g.Generate(pc, interfaces.QueryOptions{})

	require.NotEmpty(t, out.ValidationRules)
	assert.Equal(t, "kubesystem-requires-cluster", out.ValidationRules[0].Rule)
}

func TestGenericInsightsWhenNoSchemasResolved(t *testing.T) {
	pc := domain.NewPlatformContext(domain.Requestor{Kind: "SomeUnknownKind", Name: "x"})
	g := New()

	out := g.Generate(pc, interfaces.QueryOptions{})

	require.NotEmpty(t, out.Recommendations)
	assert.Equal(t, "discovery", out.Recommendations[0].Category)
}

func TestCrossCuttingInsightsFlagsMissingExpectedRelationship(t *testing.T) {
	pc := domain.NewPlatformContext(domain.Requestor{Kind: "XGitHubProject", Name: "proj"})
	g := New()

	out := g.Generate(pc, interfaces.QueryOptions{})

	found := false
	for _, rec := range out.Recommendations {
		if rec.Category == "relationship" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestSecurityInsightsOptIn(t *testing.T) {
	pc := domain.NewPlatformContext(domain.Requestor{Kind: "XGitHubProject", Name: "proj"})
	g := New()

	withoutSecurity := g.Generate(pc, interfaces.QueryOptions{})
	withSecurity := g.Generate(pc, interfaces.QueryOptions{IncludeSecurityAnalysis: true})

	securityFound := func(recs []domain.Insight) bool {
		for _, r := range recs {
			if r.Category == "security" {
				return true
			}
		}
		return false
	}

	assert.False(t, securityFound(withoutSecurity.Recommendations))
	assert.True(t, securityFound(withSecurity.Recommendations))
}

func TestPerformanceInsightsFlagsLargeBlocks(t *testing.T) {
	pc := domain.NewPlatformContext(domain.Requestor{Kind: "XApp", Name: "checkout"})
	pc.AvailableSchemas["kubEnv"] = blockWithInstances(30)
	g := New()

	out := g.Generate(pc, interfaces.QueryOptions{IncludePerformanceAnalysis: true})

	found := false
	for _, rec := range out.Recommendations {
		if rec.Category == "performance" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestPerformanceInsightsNotRunWhenDisabled(t *testing.T) {
	pc := domain.NewPlatformContext(domain.Requestor{Kind: "XApp", Name: "checkout"})
	pc.AvailableSchemas["kubEnv"] = blockWithInstances(30)
	g := New()

	out := g.Generate(pc, interfaces.QueryOptions{})

	for _, rec := range out.Recommendations {
		assert.NotEqual(t, "performance", rec.Category)
	}
}

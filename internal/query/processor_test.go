package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apiextensionsv1 "k8s.io/apiextensions-apiserver/pkg/apis/apiextensions/v1"

	"github.com/crossplane/function-kubecore-schema-registry/internal/domain"
	"github.com/crossplane/function-kubecore-schema-registry/pkg/interfaces"
	"github.com/crossplane/function-kubecore-schema-registry/pkg/utils"
)

type fakeResolver struct {
	resources []*domain.ResolvedResource
	err       error
}

func (f *fakeResolver) Resolve(_ context.Context, _ domain.ResourceRef, _, _ int) ([]*domain.ResolvedResource, error) {
	return f.resources, f.err
}

type fakeSummarizer struct {
	schemas map[string]*apiextensionsv1.JSONSchemaProps
}

func (f *fakeSummarizer) Summarize(res *domain.ResolvedResource) (*domain.ResourceSummary, error) {
	return &domain.ResourceSummary{Ref: res.Ref, Name: res.Ref.Name, Namespace: res.Ref.Namespace}, nil
}

func (f *fakeSummarizer) SummarizeMultiple(resources []*domain.ResolvedResource) []*domain.ResourceSummary {
	out := make([]*domain.ResourceSummary, 0, len(resources))
	for _, res := range resources {
		s, _ := f.Summarize(res)
		out = append(out, s)
	}
	return out
}

func (f *fakeSummarizer) FullSchema(kind string) (*apiextensionsv1.JSONSchemaProps, bool) {
	schema, ok := f.schemas[kind]
	return schema, ok
}

type fakeReverse struct {
	resources []*domain.ResolvedResource
	err       error
}

func (f *fakeReverse) FindReferencing(_ context.Context, _ domain.ResourceRef) ([]*domain.ResolvedResource, error) {
	return f.resources, f.err
}

type fakeTransitive struct {
	hits []*domain.TransitiveHit
	err  error
}

func (f *fakeTransitive) Discover(_ context.Context, _ domain.ResourceRef, _ int) ([]*domain.TransitiveHit, error) {
	return f.hits, f.err
}

func (f *fakeTransitive) Health() domain.TransitiveEngineHealth {
	return domain.TransitiveEngineHealth{Healthy: true, SuccessRate: 1}
}

type fakeInsights struct {
	called bool
}

func (f *fakeInsights) Generate(_ *domain.PlatformContext, _ interfaces.QueryOptions) domain.Insights {
	f.called = true
	return domain.Insights{}
}

func newProcessor(resolver *fakeResolver, reverse *fakeReverse, transitive *fakeTransitive, insights *fakeInsights) *Processor {
	return New(resolver, &fakeSummarizer{}, reverse, transitive, insights, utils.NewSlogLogger())
}

func TestProcessDefaultsToAccessibleSchemasWhenNoneRequested(t *testing.T) {
	resolver := &fakeResolver{}
	insights := &fakeInsights{}
	p := newProcessor(resolver, &fakeReverse{}, &fakeTransitive{}, insights)

	pc, err := p.Process(context.Background(), domain.Requestor{Kind: "XApp", Name: "checkout"}, nil, interfaces.QueryOptions{})

	require.NoError(t, err)
	assert.NotEmpty(t, pc.AvailableSchemas)
	assert.True(t, insights.called)
}

func TestProcessMergesDirectAndReverseMatches(t *testing.T) {
	env := domain.ResourceRef{Kind: "XKubEnv", Name: "prod"}
	resolver := &fakeResolver{resources: []*domain.ResolvedResource{{Ref: env}}}
	reverse := &fakeReverse{}
	p := newProcessor(resolver, reverse, &fakeTransitive{}, &fakeInsights{})

	pc, err := p.Process(context.Background(), domain.Requestor{Kind: "XApp", Name: "checkout"}, []string{"kubEnv"}, interfaces.QueryOptions{})

	require.NoError(t, err)
	block, ok := pc.AvailableSchemas["kubEnv"]
	require.True(t, ok)
	require.Len(t, block.Instances, 1)
	assert.Equal(t, domain.DiscoveryDirect, block.Metadata.DiscoveryMethod)
}

type seededResolver struct {
	byRef map[domain.ResourceRef][]*domain.ResolvedResource
}

func (s *seededResolver) Resolve(_ context.Context, root domain.ResourceRef, _, _ int) ([]*domain.ResolvedResource, error) {
	return s.byRef[root], nil
}

func TestProcessSummarizesProvidedReferencesWithoutRequestorResolution(t *testing.T) {
	ref := domain.ResourceRef{Kind: "XKubEnv", Name: "demo-dev", Namespace: "test"}
	resolver := &seededResolver{byRef: map[domain.ResourceRef][]*domain.ResolvedResource{
		ref: {{Ref: ref}},
	}}
	p := newProcessor(resolver, &fakeReverse{}, &fakeTransitive{}, &fakeInsights{})

	opts := interfaces.QueryOptions{References: map[string][]domain.ResourceRef{"XKubEnv": {ref}}}
	pc, err := p.Process(context.Background(), domain.Requestor{Kind: "XApp", Name: "art-api", Namespace: "default"}, []string{"kubEnv"}, opts)

	require.NoError(t, err)
	block, ok := pc.AvailableSchemas["kubEnv"]
	require.True(t, ok)
	require.Len(t, block.Instances, 1)
	assert.Equal(t, "demo-dev", block.Instances[0].Name)
	assert.Equal(t, "test", block.Instances[0].Namespace)
	assert.Equal(t, domain.DiscoveryDirect, block.Metadata.DiscoveryMethod)
}

func TestProcessSkipsUnknownShortName(t *testing.T) {
	p := newProcessor(&fakeResolver{}, &fakeReverse{}, &fakeTransitive{}, &fakeInsights{})

	pc, err := p.Process(context.Background(), domain.Requestor{Kind: "XApp", Name: "checkout"}, []string{"notARealSchema"}, interfaces.QueryOptions{})

	require.NoError(t, err)
	assert.Empty(t, pc.AvailableSchemas)
}

func TestProcessMarksInaccessibleSchemaBlock(t *testing.T) {
	p := newProcessor(&fakeResolver{}, &fakeReverse{}, &fakeTransitive{}, &fakeInsights{})

	pc, err := p.Process(context.Background(), domain.Requestor{Kind: "XApp", Name: "checkout"}, []string{"githubProvider"}, interfaces.QueryOptions{})

	require.NoError(t, err)
	block, ok := pc.AvailableSchemas["githubProvider"]
	require.True(t, ok)
	assert.False(t, block.Metadata.Accessible)
	assert.Empty(t, block.Instances)
}

func TestProcessIncludesTransitiveHitsWhenEnabled(t *testing.T) {
	hit := &domain.TransitiveHit{Ref: domain.ResourceRef{Kind: "XKubEnv", Name: "prod"}, Hops: 2}
	p := newProcessor(&fakeResolver{}, &fakeReverse{}, &fakeTransitive{hits: []*domain.TransitiveHit{hit}}, &fakeInsights{})

	pc, err := p.Process(context.Background(), domain.Requestor{Kind: "XApp", Name: "checkout"}, []string{"kubEnv"}, interfaces.QueryOptions{EnableTransitiveDiscovery: true})

	require.NoError(t, err)
	block := pc.AvailableSchemas["kubEnv"]
	require.Len(t, block.Instances, 1)
	assert.Equal(t, domain.DiscoveryTransitive, block.Metadata.DiscoveryMethod)
}

func TestProcessIncludesFullSchemaWhenRequested(t *testing.T) {
	env := domain.ResourceRef{Kind: "XKubEnv", Name: "prod"}
	resolver := &fakeResolver{resources: []*domain.ResolvedResource{{Ref: env}}}
	summarizer := &fakeSummarizer{schemas: map[string]*apiextensionsv1.JSONSchemaProps{
		"XKubEnv": {Type: "object"},
	}}
	p := New(resolver, summarizer, &fakeReverse{}, &fakeTransitive{}, &fakeInsights{}, utils.NewSlogLogger())

	pc, err := p.Process(context.Background(), domain.Requestor{Kind: "XApp", Name: "checkout"}, []string{"kubEnv"}, interfaces.QueryOptions{IncludeFullSchemas: true})

	require.NoError(t, err)
	block, ok := pc.AvailableSchemas["kubEnv"]
	require.True(t, ok)
	require.NotNil(t, block.Metadata.FullSchema)
	assert.Equal(t, "object", block.Metadata.FullSchema.Type)
}

func TestProcessOmitsFullSchemaWhenNotRequested(t *testing.T) {
	env := domain.ResourceRef{Kind: "XKubEnv", Name: "prod"}
	resolver := &fakeResolver{resources: []*domain.ResolvedResource{{Ref: env}}}
	summarizer := &fakeSummarizer{schemas: map[string]*apiextensionsv1.JSONSchemaProps{
		"XKubEnv": {Type: "object"},
	}}
	p := New(resolver, summarizer, &fakeReverse{}, &fakeTransitive{}, &fakeInsights{}, utils.NewSlogLogger())

	pc, err := p.Process(context.Background(), domain.Requestor{Kind: "XApp", Name: "checkout"}, []string{"kubEnv"}, interfaces.QueryOptions{})

	require.NoError(t, err)
	block := pc.AvailableSchemas["kubEnv"]
	assert.Nil(t, block.Metadata.FullSchema)
}

func TestMergeMethodsHybridWhenMultiple(t *testing.T) {
	assert.Equal(t, domain.DiscoveryDirect, mergeMethods(nil))
	assert.Equal(t, domain.DiscoveryReverse, mergeMethods([]domain.DiscoveryMethod{domain.DiscoveryReverse}))
	assert.Equal(t, domain.DiscoveryHybrid, mergeMethods([]domain.DiscoveryMethod{domain.DiscoveryDirect, domain.DiscoveryReverse}))
}

func TestIsAccessible(t *testing.T) {
	assert.True(t, isAccessible("XApp", "XKubEnv"))
	assert.False(t, isAccessible("XApp", "NotARealKind"))
}

func TestDirectRelationshipsNonEmptyForKnownKind(t *testing.T) {
	rels := directRelationships("XApp")
	assert.NotEmpty(t, rels)
	for _, r := range rels {
		assert.NotEmpty(t, r.Type)
		assert.NotEmpty(t, r.Cardinality)
	}
}

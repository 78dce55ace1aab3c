package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"sigs.k8s.io/yaml"

	"github.com/crossplane/function-sdk-go/logging"
	fnv1 "github.com/crossplane/function-sdk-go/proto/v1"
	"github.com/crossplane/function-sdk-go/request"
	"github.com/crossplane/function-sdk-go/resource"

	"github.com/crossplane/function-kubecore-schema-registry/internal/cache"
	"github.com/crossplane/function-kubecore-schema-registry/internal/config"
	"github.com/crossplane/function-kubecore-schema-registry/internal/domain"
	"github.com/crossplane/function-kubecore-schema-registry/input/v1beta1"
	"github.com/crossplane/function-kubecore-schema-registry/pkg/interfaces"
	"github.com/crossplane/function-kubecore-schema-registry/pkg/utils"
)

type fakeResponseCache struct {
	entries map[string]*domain.PlatformContext
	setCalls int
}

func newFakeResponseCache() *fakeResponseCache {
	return &fakeResponseCache{entries: make(map[string]*domain.PlatformContext)}
}

func (c *fakeResponseCache) Get(key string) (*domain.PlatformContext, bool) {
	pc, ok := c.entries[key]
	return pc, ok
}

func (c *fakeResponseCache) Set(key string, value *domain.PlatformContext) {
	c.setCalls++
	c.entries[key] = value
}

func (c *fakeResponseCache) Stats() domain.CacheStats { return domain.CacheStats{} }
func (c *fakeResponseCache) CleanupExpired() int       { return 0 }
func (c *fakeResponseCache) Clear()                    { c.entries = make(map[string]*domain.PlatformContext) }

type fakeProcessor struct {
	pc       *domain.PlatformContext
	err      error
	callArgs domain.Requestor
	called   bool
}

func (p *fakeProcessor) Process(_ context.Context, requestor domain.Requestor, _ []string, _ interfaces.QueryOptions) (*domain.PlatformContext, error) {
	p.called = true
	p.callArgs = requestor
	return p.pc, p.err
}

func newTestFunction(cache interfaces.ResponseCache, processor interfaces.QueryProcessor) *Function {
	return &Function{
		log:           logging.NewNopLogger(),
		logger:        utils.NewSlogLogger(),
		config:        config.New(),
		responseCache: cache,
		processor:     processor,
	}
}

// mustYAMLStruct converts a YAML fixture (the form these composition
// functions are actually authored in) into the JSON structpb fixtures
// MustStructJSON expects.
func mustYAMLStruct(y string) *structpb.Struct {
	j, err := yaml.YAMLToJSON([]byte(y))
	if err != nil {
		panic(err)
	}
	return resource.MustStructJSON(string(j))
}

func requestWithXApp() *fnv1.RunFunctionRequest {
	return &fnv1.RunFunctionRequest{
		Meta: &fnv1.RequestMeta{Tag: "test"},
		Input: mustYAMLStruct(`
apiVersion: registry.fn.crossplane.io/v1beta1
kind: Input
query:
  resourceType: XApp
  requestedSchemas:
    - kubEnv
`),
		Observed: &fnv1.State{
			Composite: &fnv1.Resource{
				Resource: mustYAMLStruct(`
apiVersion: app.kubecore.io/v1alpha1
kind: XApp
metadata:
  name: checkout
  namespace: team-a
`),
			},
		},
	}
}

func TestRunFunctionProcessesAndCachesOnMiss(t *testing.T) {
	pc := domain.NewPlatformContext(domain.Requestor{Kind: "XApp", Name: "checkout", Namespace: "team-a"})
	pc.AvailableSchemas["kubEnv"] = &domain.SchemaBlock{
		Instances: []domain.SchemaInstance{{Name: "prod", Namespace: "team-a"}},
	}
	cache := newFakeResponseCache()
	processor := &fakeProcessor{pc: pc}
	f := newTestFunction(cache, processor)

	rsp, err := f.RunFunction(context.Background(), requestWithXApp())

	require.NoError(t, err)
	require.NotNil(t, rsp)
	assert.True(t, processor.called)
	assert.Equal(t, "XApp", processor.callArgs.Kind)
	assert.Equal(t, "checkout", processor.callArgs.Name)
	assert.Equal(t, 1, cache.setCalls)

	require.NotNil(t, rsp.Context)
	fields := rsp.Context.GetFields()
	assert.Contains(t, fields, contextResultsKey)
	assert.Contains(t, fields, legacyContextKey)
}

func TestRunFunctionReturnsCachedResultWithoutCallingProcessor(t *testing.T) {
	pc := domain.NewPlatformContext(domain.Requestor{Kind: "XApp", Name: "checkout", Namespace: "team-a"})
	cache := newFakeResponseCache()
	processor := &fakeProcessor{}
	f := newTestFunction(cache, processor)

	key := cacheKeyFor(f, requestWithXApp())
	cache.entries[key] = pc

	rsp, err := f.RunFunction(context.Background(), requestWithXApp())

	require.NoError(t, err)
	require.NotNil(t, rsp)
	assert.False(t, processor.called)
	assert.Equal(t, 0, cache.setCalls)
}

func TestRunFunctionFatalOnProcessorError(t *testing.T) {
	cache := newFakeResponseCache()
	processor := &fakeProcessor{err: assertBoom}
	f := newTestFunction(cache, processor)

	rsp, err := f.RunFunction(context.Background(), requestWithXApp())

	require.NoError(t, err)
	require.NotNil(t, rsp)
	foundFatal := false
	for _, result := range rsp.Results {
		if result.Severity == fnv1.Severity_SEVERITY_FATAL {
			foundFatal = true
		}
	}
	assert.True(t, foundFatal)
}

func TestQueryOptionsUsesConfigDefaultsWithoutContext(t *testing.T) {
	f := &Function{config: &config.Config{
		DefaultEnableTransitive: true,
		TransitiveMaxDepth:      3,
		MaxResourcesPerType:     50,
	}}
	in := &v1beta1.Input{Query: v1beta1.Query{IncludeFullSchemas: true}}

	opts := f.queryOptions(in)

	assert.True(t, opts.IncludeFullSchemas)
	assert.True(t, opts.EnableTransitiveDiscovery)
	assert.Equal(t, 3, opts.TransitiveMaxDepth)
}

func TestQueryOptionsHonorsPerRequestContextOverrides(t *testing.T) {
	f := &Function{config: &config.Config{
		DefaultEnableTransitive: true,
		TransitiveMaxDepth:      3,
	}}
	depth := 7
	in := &v1beta1.Input{
		Query: v1beta1.Query{},
		Context: &v1beta1.DiscoveryContext{
			EnableTransitiveDiscovery: false,
			TransitiveMaxDepth:        &depth,
		},
	}

	opts := f.queryOptions(in)

	assert.False(t, opts.EnableTransitiveDiscovery)
	assert.Equal(t, 7, opts.TransitiveMaxDepth)
}

func TestLegacyContextViewFlattensInstances(t *testing.T) {
	pc := domain.NewPlatformContext(domain.Requestor{Kind: "XApp", Name: "checkout", Namespace: "team-a"})
	pc.AvailableSchemas["kubEnv"] = &domain.SchemaBlock{
		Instances: []domain.SchemaInstance{{Name: "prod", Namespace: "team-a"}},
	}

	view := legacyContextView(pc)
	require.NotNil(t, view)

	resolved, ok := view["appResolved"].(map[string]interface{})
	require.True(t, ok)
	environments, ok := resolved["environments"].([]map[string]interface{})
	require.True(t, ok)
	require.Len(t, environments, 1)
	assert.Equal(t, "prod", environments[0]["name"])

	lookup, ok := view["kubenvLookup"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, lookup, "team-a/prod")
}

func TestLegacyContextViewNilWhenRequestorNotXApp(t *testing.T) {
	pc := domain.NewPlatformContext(domain.Requestor{Kind: "XKubeSystem", Name: "core"})
	pc.AvailableSchemas["kubEnv"] = &domain.SchemaBlock{
		Instances: []domain.SchemaInstance{{Name: "prod"}},
	}

	assert.Nil(t, legacyContextView(pc))
}

func TestLegacyContextViewNilWhenNoKubEnvInstances(t *testing.T) {
	pc := domain.NewPlatformContext(domain.Requestor{Kind: "XApp", Name: "checkout"})

	assert.Nil(t, legacyContextView(pc))
}

func TestSeedReferencesMergesExplicitAndHarvestedEdges(t *testing.T) {
	xrObj := &unstructured.Unstructured{Object: map[string]interface{}{
		"apiVersion": "app.kubecore.io/v1alpha1",
		"kind":       "XApp",
		"metadata":   map[string]interface{}{"name": "art-api", "namespace": "default"},
		"spec": map[string]interface{}{
			"githubProjectRef": map[string]interface{}{"name": "demo-project"},
		},
	}}
	in := &v1beta1.Input{
		Context: &v1beta1.DiscoveryContext{
			References: map[string][]v1beta1.ResourceReference{
				"kubEnvRefs": {{Name: "demo-dev", Namespace: "test"}},
			},
		},
	}

	refs := seedReferences(in, xrObj, "XApp")

	require.Contains(t, refs, "XGitHubProject")
	assert.Equal(t, "demo-project", refs["XGitHubProject"][0].Name)

	require.Contains(t, refs, "XKubEnv")
	assert.Equal(t, "demo-dev", refs["XKubEnv"][0].Name)
	assert.Equal(t, "test", refs["XKubEnv"][0].Namespace)
	assert.NotEmpty(t, refs["XKubEnv"][0].APIVersion)
}

var assertBoom = &testError{}

type testError struct{}

func (e *testError) Error() string { return "boom" }

func cacheKeyFor(f *Function, req *fnv1.RunFunctionRequest) string {
	in := &v1beta1.Input{}
	_ = request.GetInput(req, in)
	requestor := domain.Requestor{Kind: in.Query.ResourceType, Name: "checkout", Namespace: "team-a"}
	opts := f.queryOptions(in)
	if xr, err := request.GetObservedCompositeResource(req); err == nil {
		opts.References = seedReferences(in, &xr.Resource.Unstructured, in.Query.ResourceType)
	}
	return cache.FingerprintKey(requestor, in.Query.RequestedSchemas, opts)
}

// Package main implements the composition-time context resolver: a
// Crossplane composition function that, given a requesting composite
// resource, discovers and returns the platform resources related to it.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/crossplane/function-sdk-go/errors"
	"github.com/crossplane/function-sdk-go/logging"
	fnv1 "github.com/crossplane/function-sdk-go/proto/v1"
	"github.com/crossplane/function-sdk-go/request"
	"github.com/crossplane/function-sdk-go/response"
	"google.golang.org/protobuf/types/known/structpb"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"

	"github.com/crossplane/function-kubecore-schema-registry/internal/breaker"
	"github.com/crossplane/function-kubecore-schema-registry/internal/cache"
	"github.com/crossplane/function-kubecore-schema-registry/internal/config"
	"github.com/crossplane/function-kubecore-schema-registry/internal/domain"
	"github.com/crossplane/function-kubecore-schema-registry/internal/fetcher"
	"github.com/crossplane/function-kubecore-schema-registry/internal/insights"
	"github.com/crossplane/function-kubecore-schema-registry/internal/platform"
	"github.com/crossplane/function-kubecore-schema-registry/internal/query"
	"github.com/crossplane/function-kubecore-schema-registry/internal/resolver"
	"github.com/crossplane/function-kubecore-schema-registry/internal/reverse"
	"github.com/crossplane/function-kubecore-schema-registry/internal/summarizer"
	"github.com/crossplane/function-kubecore-schema-registry/internal/transitive"
	"github.com/crossplane/function-kubecore-schema-registry/input/v1beta1"
	"github.com/crossplane/function-kubecore-schema-registry/pkg/interfaces"
	"github.com/crossplane/function-kubecore-schema-registry/pkg/registry"
	"github.com/crossplane/function-kubecore-schema-registry/pkg/utils"
)

// legacyContextKey is the context key format originally used by the
// function this was derived from. It is kept as a reshaping view over the
// same PlatformContext for composition pipelines built against the older
// shape; see DESIGN.md's "legacy context key" decision.
const legacyContextKey = "apiextensions.crossplane.io/context.kubecore.io"

// contextResultsKey is the primary, current response context key.
const contextResultsKey = "context.fn.kubecore.io/platform-context"

// Function implements the context resolver's RunFunction RPC.
type Function struct {
	fnv1.UnimplementedFunctionRunnerServiceServer

	log    logging.Logger
	logger interfaces.Logger
	config *config.Config

	responseCache interfaces.ResponseCache
	processor     interfaces.QueryProcessor
}

// NewFunction wires every discovery layer together via constructor
// injection
func NewFunction(log logging.Logger) *Function {
	cfg := config.New()
	logger := utils.NewSlogLogger()

	dynClient, err := newDynamicClient(cfg)
	if err != nil {
		logger.Warn("dynamic client unavailable, discovery will fail at request time", "error", err.Error())
	}

	fetch := fetcher.New(dynClient, cfg.APICallTimeout, 3, logger)
	breakerPool := breaker.NewPool(cfg.CircuitBreakerThreshold, cfg.CircuitBreakerCooldown)
	interCache := cache.NewIntermediateCache(cfg.CacheTTL)
	responseCache := cache.NewResponseCache(cfg.CacheTTL, cfg.CacheMaxEntries)

	resolve := resolver.New(fetch, logger, cfg.TransitiveParallelWorkers)
	summarize := summarizer.New(registry.NewEmbeddedRegistry(), logger)
	reverseDiscovery := reverse.New(fetch, logger, cfg.TransitiveParallelWorkers)
	transitiveEngine := transitive.New(fetch, breakerPool, interCache, logger, transitive.Config{
		MaxDepth:            cfg.TransitiveMaxDepth,
		MaxResourcesPerType: cfg.MaxResourcesPerType,
		TimeoutPerHop:       cfg.TransitiveTimeoutPerHop,
		ParallelWorkers:     cfg.TransitiveParallelWorkers,
		MemoryLimitMB:       cfg.TransitiveMemoryLimitMB,
	})
	insightsGenerator := insights.New()

	processor := query.New(resolve, summarize, reverseDiscovery, transitiveEngine, insightsGenerator, logger)

	return &Function{
		log:           log,
		logger:        logger,
		config:        cfg,
		responseCache: responseCache,
		processor:     processor,
	}
}

func newDynamicClient(cfg *config.Config) (dynamic.Interface, error) {
	var restCfg *rest.Config
	var err error
	if cfg.InClusterConfig {
		restCfg, err = rest.InClusterConfig()
	} else {
		restCfg, err = clientcmd.BuildConfigFromFlags("", cfg.KubeConfigPath)
	}
	if err != nil {
		return nil, err
	}
	return dynamic.NewForConfig(restCfg)
}

// RunFunction resolves the requesting composite's platform context and
// attaches it to the response under both the current and legacy context
// keys.
func (f *Function) RunFunction(ctx context.Context, req *fnv1.RunFunctionRequest) (*fnv1.RunFunctionResponse, error) {
	startTime := time.Now()
	correlationID := fmt.Sprintf("req-%d", time.Now().UnixNano())

	f.logger.Info("RunFunction started", "correlationId", correlationID, "tag", req.GetMeta().GetTag())

	rsp := response.To(req, response.DefaultTTL)

	in := &v1beta1.Input{}
	if err := request.GetInput(req, in); err != nil {
		f.logger.Error("failed to get function input", "correlationId", correlationID, "error", err)
		response.Fatal(rsp, errors.Wrapf(err, "cannot get function input"))
		return rsp, nil
	}
	if in.Query.ResourceType == "" {
		f.logger.Error("function input has no query.resourceType", "correlationId", correlationID)
		response.Fatal(rsp, errors.New("query.resourceType is required"))
		return rsp, nil
	}

	xr, err := request.GetObservedCompositeResource(req)
	if err != nil {
		f.logger.Error("failed to get observed composite resource", "correlationId", correlationID, "error", err)
		response.Fatal(rsp, errors.Wrap(err, "cannot get observed composite resource"))
		return rsp, nil
	}

	requestor := domain.Requestor{
		Kind:      in.Query.ResourceType,
		Name:      xr.Resource.GetName(),
		Namespace: xr.Resource.GetNamespace(),
	}

	opts := f.queryOptions(in)
	opts.References = seedReferences(in, &xr.Resource.Unstructured, requestor.Kind)

	cacheKey := cache.FingerprintKey(requestor, in.Query.RequestedSchemas, opts)
	if cached, ok := f.responseCache.Get(cacheKey); ok {
		f.logger.Debug("response cache hit", "correlationId", correlationID, "key", cacheKey)
		f.attachContext(rsp, cached, correlationID)
		response.ConditionTrue(rsp, "FunctionSuccess", "ContextResolved").
			WithMessage("Resolved platform context from cache").
			TargetCompositeAndClaim()
		return rsp, nil
	}

	pc, err := f.processor.Process(ctx, requestor, in.Query.RequestedSchemas, opts)
	if err != nil {
		f.logger.Error("context resolution failed", "correlationId", correlationID, "error", err)
		response.Fatal(rsp, errors.Wrap(err, "context resolution failed"))
		return rsp, nil
	}

	f.responseCache.Set(cacheKey, pc)
	f.attachContext(rsp, pc, correlationID)

	elapsed := time.Since(startTime)
	f.logger.Info("RunFunction completed",
		"correlationId", correlationID,
		"schemaCount", len(pc.AvailableSchemas),
		"executionTimeMs", elapsed.Milliseconds())

	response.ConditionTrue(rsp, "FunctionSuccess", "ContextResolved").
		WithMessage(fmt.Sprintf("Resolved %d schema blocks in %dms", len(pc.AvailableSchemas), elapsed.Milliseconds())).
		TargetCompositeAndClaim()

	return rsp, nil
}

func (f *Function) queryOptions(in *v1beta1.Input) interfaces.QueryOptions {
	opts := interfaces.QueryOptions{
		IncludeFullSchemas:         in.Query.IncludeFullSchemas,
		IncludeSecurityAnalysis:    in.Query.IncludeSecurityAnalysis,
		IncludePerformanceAnalysis: in.Query.IncludePerformanceAnalysis,
		EnableTransitiveDiscovery:  f.config.DefaultEnableTransitive,
		TransitiveMaxDepth:         f.config.TransitiveMaxDepth,
		MaxResourcesPerType:        f.config.MaxResourcesPerType,
		PerHopTimeout:              f.config.TransitiveTimeoutPerHop,
	}
	if in.Context != nil {
		opts.EnableTransitiveDiscovery = in.Context.EnableTransitiveDiscovery
		if in.Context.TransitiveMaxDepth != nil {
			opts.TransitiveMaxDepth = *in.Context.TransitiveMaxDepth
		}
	}
	return opts
}

// seedReferences merges the input's explicitly provided references with
// the observed composite's harvested spec.*Ref(s), keyed by the referenced
// resource's typed kind, so the query processor can seed forward
// resolution directly instead of discovering these edges via a live
// round-trip.
func seedReferences(in *v1beta1.Input, xrObj *unstructured.Unstructured, requestorKind string) map[string][]domain.ResourceRef {
	refs := make(map[string][]domain.ResourceRef)

	for _, edge := range fetcher.ExtractEdges(requestorKind, xrObj) {
		refs[edge.Kind] = append(refs[edge.Kind], edge)
	}

	if in.Context == nil {
		return refs
	}
	for key, items := range in.Context.References {
		shortName := strings.TrimSuffix(key, "Refs")
		kind, ok := platform.KindForShortName(shortName)
		if !ok {
			continue
		}
		for _, item := range items {
			itemKind := item.Kind
			if itemKind == "" {
				itemKind = kind
			}
			apiVersion := item.APIVersion
			if apiVersion == "" {
				apiVersion = platform.APIVersionForKind(itemKind)
			}
			refs[itemKind] = append(refs[itemKind], domain.ResourceRef{
				APIVersion: apiVersion,
				Kind:       itemKind,
				Name:       item.Name,
				Namespace:  item.Namespace,
			})
		}
	}
	return refs
}

// attachContext writes the assembled PlatformContext, wrapped in an Output
// document (apiVersion context.fn.kubecore.io/v1beta1, kind Output,
// spec.platformContext), under the current response context key and,
// reshaped, under the legacy key documented in DESIGN.md's open-question
// decision.
func (f *Function) attachContext(rsp *fnv1.RunFunctionResponse, pc *domain.PlatformContext, correlationID string) {
	raw, err := json.Marshal(pc)
	if err != nil {
		f.logger.Error("failed to marshal platform context", "correlationId", correlationID, "error", err.Error())
		return
	}

	var asMap map[string]interface{}
	if err := json.Unmarshal(raw, &asMap); err != nil {
		f.logger.Error("failed to unmarshal platform context for response context", "correlationId", correlationID, "error", err.Error())
		return
	}

	output := map[string]interface{}{
		"apiVersion": "context.fn.kubecore.io/v1beta1",
		"kind":       "Output",
		"spec":       map[string]interface{}{"platformContext": asMap},
	}
	if structVal, err := structpb.NewStruct(output); err == nil {
		response.SetContextKey(rsp, contextResultsKey, structpb.NewStructValue(structVal))
	} else {
		f.logger.Error("failed to build structpb for platform context", "correlationId", correlationID, "error", err.Error())
	}

	legacyView := legacyContextView(pc)
	if legacyView == nil {
		return
	}
	legacyRaw, err := json.Marshal(legacyView)
	if err != nil {
		f.logger.Error("failed to marshal legacy context view", "correlationId", correlationID, "error", err.Error())
		return
	}
	var legacyAsMap map[string]interface{}
	if err := json.Unmarshal(legacyRaw, &legacyAsMap); err != nil {
		f.logger.Error("failed to unmarshal legacy context view", "correlationId", correlationID, "error", err.Error())
		return
	}
	if legacyStruct, err := structpb.NewStruct(legacyAsMap); err == nil {
		response.SetContextKey(rsp, legacyContextKey, structpb.NewStructValue(legacyStruct))
	} else {
		f.logger.Error("failed to build structpb for legacy context view", "correlationId", correlationID, "error", err.Error())
	}
}

// legacyContextView reshapes a PlatformContext into the flatter
// appResolved/kubenvLookup/qualityGateLookup shape the legacy "app
// resolver" context key historically carried (see DESIGN.md's
// open-question decision). It is populated only when the requestor is an
// XApp with at least one resolved kubEnv instance, and is a reshaping of
// the same PlatformContext the primary key carries, not a second
// discovery pass — so there is no "missing" count here, since every
// instance in AvailableSchemas was already found.
func legacyContextView(pc *domain.PlatformContext) map[string]interface{} {
	if pc.Requestor.Kind != "XApp" {
		return nil
	}
	kubEnvBlock, ok := pc.AvailableSchemas["kubEnv"]
	if !ok || len(kubEnvBlock.Instances) == 0 {
		return nil
	}

	environments := make([]map[string]interface{}, 0, len(kubEnvBlock.Instances))
	kubenvLookup := make(map[string]interface{}, len(kubEnvBlock.Instances))
	for _, inst := range kubEnvBlock.Instances {
		detail := map[string]interface{}{
			"found":     true,
			"name":      inst.Name,
			"namespace": inst.Namespace,
		}
		environments = append(environments, map[string]interface{}{
			"name":      inst.Name,
			"namespace": inst.Namespace,
			"kubenv":    detail,
		})
		kubenvLookup[lookupKey(inst.Namespace, inst.Name)] = detail
	}

	qualityGateLookup := make(map[string]interface{})
	qgFound := 0
	if qgBlock, ok := pc.AvailableSchemas["qualityGate"]; ok {
		for _, inst := range qgBlock.Instances {
			qgFound++
			qualityGateLookup[lookupKey(inst.Namespace, inst.Name)] = map[string]interface{}{
				"found":     true,
				"name":      inst.Name,
				"namespace": inst.Namespace,
			}
		}
	}

	project := map[string]interface{}{}
	if ghBlock, ok := pc.AvailableSchemas["githubProject"]; ok && len(ghBlock.Instances) > 0 {
		project = map[string]interface{}{"name": ghBlock.Instances[0].Name}
	}

	return map[string]interface{}{
		"appResolved": map[string]interface{}{
			"app": map[string]interface{}{
				"name":      pc.Requestor.Name,
				"namespace": pc.Requestor.Namespace,
			},
			"project":      project,
			"environments": environments,
			"summary": map[string]interface{}{
				"counts": map[string]interface{}{
					"referenced":             len(kubEnvBlock.Instances),
					"found":                  len(kubEnvBlock.Instances),
					"missing":                0,
					"qualityGatesReferenced": qgFound,
					"qualityGatesFound":      qgFound,
					"qualityGatesMissing":    0,
				},
			},
		},
		"kubenvLookup":      kubenvLookup,
		"qualityGateLookup": qualityGateLookup,
	}
}

// lookupKey renders the "<namespace>/<name>" canonical key the legacy
// lookups use, or bare name for cluster-scoped instances.
func lookupKey(namespace, name string) string {
	if namespace == "" {
		return name
	}
	return namespace + "/" + name
}

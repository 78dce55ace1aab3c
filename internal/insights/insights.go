// Package insights implements T2: declarative recommendations, validation
// rules, and suggested references derived from an assembled
// PlatformContext, plus the supplemental security/performance analysis
// rules (opt-in).
package insights

import (
	"fmt"

	"github.com/crossplane/function-kubecore-schema-registry/internal/domain"
	"github.com/crossplane/function-kubecore-schema-registry/internal/platform"
	"github.com/crossplane/function-kubecore-schema-registry/pkg/interfaces"
)

// Generator implements interfaces.InsightsGenerator.
type Generator struct{}

// New creates a Generator. It holds no state: every rule is a pure
// function of the assembled context.
func New() *Generator { return &Generator{} }

var _ interfaces.InsightsGenerator = (*Generator)(nil)

// Generate dispatches to the per-kind rule set, then always runs the
// cross-cutting "you'd normally connect these" check, and finally runs
// the opt-in security/performance analyses when requested.
func (g *Generator) Generate(pc *domain.PlatformContext, opts interfaces.QueryOptions) domain.Insights {
	out := domain.Insights{
		Recommendations:     []domain.Insight{},
		ValidationRules:     []domain.ValidationRule{},
		SuggestedReferences: []domain.SuggestedReference{},
	}

	switch pc.Requestor.Kind {
	case "XApp":
		appInsights(pc, &out)
	case "XKubeSystem":
		kubeSystemInsights(pc, &out)
	case "XKubEnv":
		kubEnvInsights(pc, &out)
	default:
		genericInsights(pc, &out)
	}

	crossCuttingInsights(pc, &out)

	if opts.IncludeSecurityAnalysis {
		securityInsights(pc, &out)
	}
	if opts.IncludePerformanceAnalysis {
		performanceInsights(pc, &out)
	}

	return out
}

func appInsights(pc *domain.PlatformContext, out *domain.Insights) {
	if block, ok := pc.AvailableSchemas["kubEnv"]; !ok || len(block.Instances) == 0 {
		out.Recommendations = append(out.Recommendations, domain.Insight{
			Category:   "deployment",
			Suggestion: "Reference at least one XKubEnv so this app has a deployment target",
			Impact:     "high",
			Rationale:  "An XApp with no resolvable environment cannot be scheduled",
		})
		out.ValidationRules = append(out.ValidationRules, domain.ValidationRule{
			Rule:        "app-requires-environment",
			Description: "spec.environments must reference at least one XKubEnv",
			Severity:    "error",
		})
	}
	if block, ok := pc.AvailableSchemas["githubApp"]; !ok || len(block.Instances) == 0 {
		out.SuggestedReferences = append(out.SuggestedReferences, domain.SuggestedReference{
			Type:        "XGitHubApp",
			Purpose:     "source-control",
			Description: "Link a source repository so builds can be triggered",
		})
	}
}

func kubeSystemInsights(pc *domain.PlatformContext, out *domain.Insights) {
	if block, ok := pc.AvailableSchemas["kubeCluster"]; !ok || len(block.Instances) == 0 {
		out.ValidationRules = append(out.ValidationRules, domain.ValidationRule{
			Rule:        "kubesystem-requires-cluster",
			Description: "spec.kubeClusterRef must resolve to an existing XKubeCluster",
			Severity:    "error",
		})
	}
}

func kubEnvInsights(pc *domain.PlatformContext, out *domain.Insights) {
	if block, ok := pc.AvailableSchemas["qualityGate"]; !ok || len(block.Instances) == 0 {
		out.Recommendations = append(out.Recommendations, domain.Insight{
			Category:   "quality",
			Suggestion: "Attach a quality gate to guard deployments into this environment",
			Impact:     "medium",
			Rationale:  "Environments without gates allow unvalidated rollouts",
		})
	}
}

func genericInsights(pc *domain.PlatformContext, out *domain.Insights) {
	if len(pc.AvailableSchemas) == 0 {
		out.Recommendations = append(out.Recommendations, domain.Insight{
			Category:   "discovery",
			Suggestion: "No accessible schemas resolved for this requestor kind",
			Impact:     "low",
			Rationale:  "Requestor kind may be outside the platform hierarchy",
		})
	}
}

// crossCuttingInsights flags relationships the platform model expects for
// this requestor kind but which resolved to zero instances.
func crossCuttingInsights(pc *domain.PlatformContext, out *domain.Insights) {
	for _, expected := range platform.ExpectedRelationships[pc.Requestor.Kind] {
		block, ok := pc.AvailableSchemas[expected]
		if ok && len(block.Instances) > 0 {
			continue
		}
		out.Recommendations = append(out.Recommendations, domain.Insight{
			Category:   "relationship",
			Suggestion: fmt.Sprintf("Expected a %s relationship but none was found", expected),
			Impact:     "medium",
			Rationale:  "This kind typically connects to " + expected + " in the platform graph",
		})
	}
}

// securityInsights is the opt-in supplemental analysis: it flags contexts
// that resolved with no GitHubProvider in scope, which means credential
// provenance can't be traced back to a registered provider.
func securityInsights(pc *domain.PlatformContext, out *domain.Insights) {
	if block, ok := pc.AvailableSchemas["githubProvider"]; !ok || len(block.Instances) == 0 {
		out.Recommendations = append(out.Recommendations, domain.Insight{
			Category:   "security",
			Suggestion: "No XGitHubProvider resolved in this context; credential provenance cannot be verified",
			Impact:     "high",
			Rationale:  "Every GitHub-backed resource should trace back to a registered provider",
		})
	}
}

// performanceInsights is the opt-in supplemental analysis: it flags schema
// blocks with an unusually large instance count, which tends to indicate
// an overly broad selector upstream rather than a deliberate fan-out.
func performanceInsights(pc *domain.PlatformContext, out *domain.Insights) {
	const largeBlockThreshold = 25
	for name, block := range pc.AvailableSchemas {
		if len(block.Instances) > largeBlockThreshold {
			out.Recommendations = append(out.Recommendations, domain.Insight{
				Category:   "performance",
				Suggestion: fmt.Sprintf("Schema %q resolved %d instances; consider narrowing requestedSchemas", name, len(block.Instances)),
				Impact:     "low",
				Rationale:  "Large instance counts increase response size and downstream composition evaluation time",
			})
		}
	}
}

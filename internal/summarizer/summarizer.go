// Package summarizer implements M2: projecting a ResolvedResource's body
// through its kind's registered schema into a compact ResourceSummary.
package summarizer

import (
	apiextensionsv1 "k8s.io/apiextensions-apiserver/pkg/apis/apiextensions/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/crossplane/function-kubecore-schema-registry/internal/domain"
	"github.com/crossplane/function-kubecore-schema-registry/pkg/interfaces"
	"github.com/crossplane/function-kubecore-schema-registry/pkg/registry"
)

const (
	// maxArrayItems caps how many elements of an array-typed field survive
	// projection.
	maxArrayItems = 10
	// maxStringLength caps any scalar string field.
	maxStringLength = 500
)

// Summarizer implements interfaces.Summarizer.
type Summarizer struct {
	registry registry.Registry
	log      interfaces.Logger
}

// New creates a Summarizer backed by reg.
func New(reg registry.Registry, log interfaces.Logger) *Summarizer {
	return &Summarizer{registry: reg, log: log}
}

var _ interfaces.Summarizer = (*Summarizer)(nil)

// Summarize projects res.Body through the registered schema for its kind.
// When no schema is registered, every spec/status field survives
// unfiltered rather than dropping the resource (original's generic
// fallback path).
func (s *Summarizer) Summarize(res *domain.ResolvedResource) (*domain.ResourceSummary, error) {
	schema, hasSchema := s.registry.GetSchema(res.Ref.Kind)

	spec, _, _ := unstructured.NestedMap(res.Body.Object, "spec")
	status, _, _ := unstructured.NestedMap(res.Body.Object, "status")

	var projectedSpec map[string]interface{}
	if hasSchema {
		projectedSpec = projectFields(spec, schema.SpecFields, schema.PriorityFields)
	} else {
		projectedSpec = truncateValues(spec)
	}

	var projectedStatus map[string]interface{}
	if hasSchema {
		projectedStatus = projectFields(status, schema.StatusFields, nil)
	} else {
		projectedStatus = truncateValues(status)
	}

	summary := &domain.ResourceSummary{
		Ref:             res.Ref,
		Spec:            projectedSpec,
		Status:          projectedStatus,
		Name:            res.Body.GetName(),
		Namespace:       res.Body.GetNamespace(),
		Labels:          res.Body.GetLabels(),
		Annotations:     res.Body.GetAnnotations(),
		OwnerReferences: ownerRefs(res.Body),
		Edges:           res.Edges,
		ExtractedAt:     res.ResolvedAt,
	}
	if hasSchema {
		summary.SchemaVersion = schema.SchemaVersion
	}
	return summary, nil
}

// SummarizeMultiple projects every resource, logging and skipping any
// individual failure rather than aborting the whole batch.
func (s *Summarizer) SummarizeMultiple(resources []*domain.ResolvedResource) []*domain.ResourceSummary {
	summaries := make([]*domain.ResourceSummary, 0, len(resources))
	for _, res := range resources {
		summary, err := s.Summarize(res)
		if err != nil {
			s.log.Warn("summarization failed, skipping resource", "ref", res.Ref.String(), "error", err.Error())
			continue
		}
		summaries = append(summaries, summary)
	}
	return summaries
}

// FullSchema returns the OpenAPI-shaped schema registered for kind, for
// callers that requested IncludeFullSchemas.
func (s *Summarizer) FullSchema(kind string) (*apiextensionsv1.JSONSchemaProps, bool) {
	schema, ok := s.registry.GetSchema(kind)
	if !ok {
		return nil, false
	}
	return schema.OpenAPIV3Schema(), true
}

// ownerRefs returns at most the first five owner references of obj.
func ownerRefs(obj *unstructured.Unstructured) []domain.OwnerRef {
	const maxOwnerRefs = 5

	raw := obj.GetOwnerReferences()
	if len(raw) == 0 {
		return nil
	}
	if len(raw) > maxOwnerRefs {
		raw = raw[:maxOwnerRefs]
	}
	out := make([]domain.OwnerRef, 0, len(raw))
	for _, o := range raw {
		out = append(out, domain.OwnerRef{
			APIVersion: o.APIVersion,
			Kind:       o.Kind,
			Name:       o.Name,
			UID:        string(o.UID),
		})
	}
	return out
}

// projectFields keeps only the fields declared in schema or listed in
// priority, applying the per-value string/array truncation limits. Every
// such field present in values is kept; there is no cap on the number of
// fields.
func projectFields(values map[string]interface{}, schema map[string]registry.FieldSchema, priority []string) map[string]interface{} {
	if values == nil {
		return nil
	}
	projected := make(map[string]interface{}, len(schema))

	addField := func(name string) {
		raw, ok := values[name]
		if !ok {
			return
		}
		if _, already := projected[name]; already {
			return
		}
		projected[name] = truncateValue(raw)
	}

	for _, name := range priority {
		addField(name)
	}
	for name := range schema {
		addField(name)
	}
	return projected
}

// truncateValues applies the generic string/array limits to every field of
// an unschema'd map, used for kinds the registry has no skeleton for.
func truncateValues(values map[string]interface{}) map[string]interface{} {
	if values == nil {
		return nil
	}
	out := make(map[string]interface{}, len(values))
	for k, v := range values {
		out[k] = truncateValue(v)
	}
	return out
}

func truncateValue(v interface{}) interface{} {
	switch val := v.(type) {
	case string:
		if len(val) > maxStringLength {
			return val[:maxStringLength] + "...(truncated)"
		}
		return val
	case []interface{}:
		if len(val) > maxArrayItems {
			return val[:maxArrayItems]
		}
		return val
	case map[string]interface{}:
		return truncateValues(val)
	default:
		return v
	}
}

package fetcher

import (
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/crossplane/function-kubecore-schema-registry/internal/domain"
	"github.com/crossplane/function-kubecore-schema-registry/internal/platform"
)

// ExtractEdges walks the reference fields the platform model declares for
// kind and turns each populated one into an outbound ResourceRef. When the
// model declares no reference fields for kind, every top-level spec field
// whose name looks like a reference is used instead; for a kind with
// declared fields, undeclared spec fields are not scanned.
func ExtractEdges(kind string, obj *unstructured.Unstructured) []domain.ResourceRef {
	if obj == nil {
		return nil
	}
	spec, found, err := unstructured.NestedMap(obj.Object, "spec")
	if err != nil || !found {
		return nil
	}

	fields := platform.ReferenceFields[kind]
	if len(fields) == 0 {
		fields = genericCandidateFields(spec)
	}

	var edges []domain.ResourceRef
	for _, field := range fields {
		value, ok := spec[field]
		if !ok {
			continue
		}
		edges = append(edges, refsFromValue(field, value)...)
	}
	return edges
}

// genericCandidateFields returns every top-level spec field whose name
// looks like a reference, used when the platform model has no declared
// reference fields for a kind (e.g. a resource outside the nine platform
// kinds, such as a bare Secret or ConfigMap referenced as a leaf).
func genericCandidateFields(spec map[string]interface{}) []string {
	var candidates []string
	for field := range spec {
		if looksLikeReferenceField(field) {
			candidates = append(candidates, field)
		}
	}
	return candidates
}

func looksLikeReferenceField(field string) bool {
	suffixes := []string{"Ref", "RefName", "Refs"}
	for _, s := range suffixes {
		if len(field) > len(s) && field[len(field)-len(s):] == s {
			return true
		}
	}
	return field == "environments" || field == "qualityGates"
}

func refsFromValue(field string, value interface{}) []domain.ResourceRef {
	switch v := value.(type) {
	case map[string]interface{}:
		if ref, ok := refFromObject(field, v); ok {
			return []domain.ResourceRef{ref}
		}
	case []interface{}:
		var refs []domain.ResourceRef
		for _, item := range v {
			if obj, ok := item.(map[string]interface{}); ok {
				if ref, ok := refFromObject(field, obj); ok {
					refs = append(refs, ref)
				}
			}
		}
		return refs
	}
	return nil
}

func refFromObject(field string, obj map[string]interface{}) (domain.ResourceRef, bool) {
	name, _ := obj["name"].(string)
	if name == "" {
		return domain.ResourceRef{}, false
	}
	namespace, _ := obj["namespace"].(string)

	apiVersion, _ := obj["apiVersion"].(string)
	kind, _ := obj["kind"].(string)
	if apiVersion == "" || kind == "" {
		hint := platform.InferReferenceTarget(field)
		apiVersion, kind = hint.APIVersion, hint.Kind
	}

	return domain.ResourceRef{
		APIVersion: apiVersion,
		Kind:       kind,
		Name:       name,
		Namespace:  namespace,
	}, true
}

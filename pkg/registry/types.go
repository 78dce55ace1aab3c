// Package registry is the L2 Schema Registry: compile-time property
// skeletons for every platform kind, used by the summarizer to project a
// resolved resource's spec/status down to the fields a consumer is
// expected to read.
package registry

import (
	apiextensionsv1 "k8s.io/apiextensions-apiserver/pkg/apis/apiextensions/v1"
)

// FieldSchema describes one field of a kind's projected spec or status. It
// is modeled as an apiextensions-apiserver JSONSchemaProps subset rather
// than a bespoke shape, so a registered field carries the same Type/
// Description/Items/Properties vocabulary a real CustomResourceDefinition
// would.
type FieldSchema = apiextensionsv1.JSONSchemaProps

// itemsOf wraps a single element schema the way JSONSchemaProps.Items
// expects it: a pointer to a oneOf-schema-or-array-of-schemas wrapper.
func itemsOf(elem FieldSchema) *apiextensionsv1.JSONSchemaPropsOrArray {
	return &apiextensionsv1.JSONSchemaPropsOrArray{Schema: &elem}
}

// ResourceSchema is the property skeleton registered for one platform kind.
type ResourceSchema struct {
	APIVersion    string                 `json:"apiVersion"`
	Kind          string                 `json:"kind"`
	SchemaVersion string                 `json:"schemaVersion"`
	SpecFields    map[string]FieldSchema `json:"specFields"`
	StatusFields  map[string]FieldSchema `json:"statusFields"`
	// PriorityFields lists the spec field names the summarizer projects
	// ahead of the remaining declared fields.
	PriorityFields []string `json:"priorityFields,omitempty"`
}

// OpenAPIV3Schema assembles a single JSONSchemaProps document ("object"
// typed, with spec/status as nested object properties) from the
// registered field skeleton, for consumers that want the full-schema
// shape rather than the flat per-field maps.
func (s *ResourceSchema) OpenAPIV3Schema() *apiextensionsv1.JSONSchemaProps {
	return &apiextensionsv1.JSONSchemaProps{
		Type: "object",
		Properties: map[string]apiextensionsv1.JSONSchemaProps{
			"spec":   {Type: "object", Properties: s.SpecFields},
			"status": {Type: "object", Properties: s.StatusFields},
		},
	}
}

// Registry defines the L2 contract the summarizer and schema-block builder
// consume.
type Registry interface {
	GetSchema(kind string) (*ResourceSchema, bool)
	ListKinds() []string
}

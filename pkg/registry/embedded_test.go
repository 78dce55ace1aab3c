package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEmbeddedRegistryLoadsAllPlatformKinds(t *testing.T) {
	r := NewEmbeddedRegistry()

	kinds := r.ListKinds()
	assert.Len(t, kinds, 9)

	for _, k := range kinds {
		schema, ok := r.GetSchema(k)
		require.True(t, ok)
		assert.Equal(t, k, schema.Kind)
		assert.NotEmpty(t, schema.APIVersion)
		assert.NotEmpty(t, schema.SchemaVersion)
	}
}

func TestGetSchemaUnknownKind(t *testing.T) {
	r := NewEmbeddedRegistry()
	_, ok := r.GetSchema("NotARealKind")
	assert.False(t, ok)
}

func TestOpenAPIV3SchemaWrapsSpecAndStatus(t *testing.T) {
	r := NewEmbeddedRegistry()
	schema, ok := r.GetSchema("XApp")
	require.True(t, ok)

	full := schema.OpenAPIV3Schema()

	assert.Equal(t, "object", full.Type)
	require.Contains(t, full.Properties, "spec")
	require.Contains(t, full.Properties, "status")
	assert.Contains(t, full.Properties["spec"].Properties, "image")
}

func TestArrayFieldsCarryItemsSchema(t *testing.T) {
	r := NewEmbeddedRegistry()
	schema, ok := r.GetSchema("XApp")
	require.True(t, ok)

	environments, ok := schema.SpecFields["environments"]
	require.True(t, ok)
	assert.Equal(t, "array", environments.Type)
	require.NotNil(t, environments.Items)
	require.NotNil(t, environments.Items.Schema)
	assert.Equal(t, "object", environments.Items.Schema.Type)
}

func TestPriorityFieldsAreSubsetOfSpecFields(t *testing.T) {
	r := NewEmbeddedRegistry()
	for _, k := range r.ListKinds() {
		schema, ok := r.GetSchema(k)
		require.True(t, ok)
		for _, pf := range schema.PriorityFields {
			_, exists := schema.SpecFields[pf]
			assert.True(t, exists, "priority field %q for kind %q is not a declared spec field", pf, k)
		}
	}
}

package runtime

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type schemaDescriptor struct {
	Tenant string `json:"tenant"`
	Quota  int    `json:"quota"`
}

func TestDescriptorSchemaReflectsFields(t *testing.T) {
	rt := &Runtime[schemaDescriptor]{}

	data, err := rt.DescriptorSchema()
	require.NoError(t, err)

	// The reflector may inline the schema or place it behind a $ref into
	// $defs depending on configuration; either way both field names must
	// appear somewhere in the generated document.
	require.Contains(t, string(data), "tenant")
	require.Contains(t, string(data), "quota")
}

func TestDescriptorSchemaIsCached(t *testing.T) {
	rt := &Runtime[schemaDescriptor]{}

	first, err := rt.DescriptorSchema()
	require.NoError(t, err)
	second, err := rt.DescriptorSchema()
	require.NoError(t, err)

	require.Equal(t, first, second)
}

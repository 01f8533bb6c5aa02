package runtime

import (
	"encoding/json"
	"reflect"
	"sync"

	"github.com/invopop/jsonschema"
)

// schemaCache memoizes the generated JSON Schema per descriptor type, the
// way the teacher's host/registry/registry.go caches one schema per
// registered capability kind rather than re-reflecting on every call.
var schemaCache sync.Map // reflect type name (string) -> cached schema bytes ([]byte)

// DescriptorSchema returns the JSON Schema for the Runtime's descriptor type
// D, generated by reflection the same way the teacher's registry generates
// a schema per capability kind. Unlike the teacher, which keys its cache by
// a caller-supplied string ("kind"), this keys by D's own reflected
// identity since a Runtime has exactly one descriptor type.
func (rt *Runtime[D]) DescriptorSchema() ([]byte, error) {
	var zero D
	key := reflect.TypeOf(zero).String()

	if cached, ok := schemaCache.Load(key); ok {
		return cached.([]byte), nil
	}

	reflector := &jsonschema.Reflector{}
	schema := reflector.Reflect(zero)
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, newErr(KindDecode, "", "descriptor-schema", err)
	}

	schemaCache.Store(key, data)
	return data, nil
}

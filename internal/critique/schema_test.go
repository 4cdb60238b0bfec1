package critique

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSchemaDescribesData(t *testing.T) {
	raw, err := SchemaJSON()
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	props, ok := doc["properties"].(map[string]any)
	require.True(t, ok, "schema has properties")
	for _, key := range []string{"scores", "sections", "suggestions", "summary", "rawContent"} {
		require.Contains(t, props, key)
	}
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package summarize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchema_StrictObjects(t *testing.T) {
	schema, err := Schema()
	require.NoError(t, err)

	assert.Equal(t, "object", schema["type"])
	assert.Equal(t, false, schema["additionalProperties"])

	props, ok := schema["properties"].(map[string]any)
	require.True(t, ok)
	for _, key := range []string{
		"title", "authors", "venueYear", "identifier", "tldr", "whyItMatters",
		"contributions", "method", "datasets", "compute", "baselines", "results",
		"limitations", "reproducibility", "glossary", "citationsUsed",
	} {
		assert.Contains(t, props, key)
	}
	assert.Len(t, schema["required"], len(props))

	method, ok := props["method"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, false, method["additionalProperties"])
	assert.Equal(t, []string{"equations", "summary"}, method["required"])

	results, ok := props["results"].(map[string]any)
	require.True(t, ok)
	items, ok := results["items"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, []string{"metric", "notes", "value"}, items["required"])
}

func TestValidate(t *testing.T) {
	valid := mustJSON(t, fullRecord())

	tests := []struct {
		name    string
		doc     string
		wantErr bool
	}{
		{"full record", valid, false},
		{"identity fields only", mustJSON(t, fullRecord().Identity()), true},
		{"missing key", `{"title": "x"}`, true},
		{"extra key", valid[:len(valid)-1] + `,"extra":1}`, true},
		{"not json", "nope", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate([]byte(tt.doc))
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

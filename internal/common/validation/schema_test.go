package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var testSchema = JSONSchema{
	Type: "object",
	Properties: map[string]Property{
		"applicationId": {Type: "string", MinLength: Int(1)},
		"status":        {Type: "string", Enum: []string{"VIEWED", "INTERVIEW"}, Nullable: true},
		"page":          {Type: "integer", Minimum: Float(0)},
		"skills":        {Type: "array", Items: &Property{Type: "string"}},
	},
	Required:             []string{"applicationId"},
	AdditionalProperties: true,
}

func TestValidateJSON(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantValid bool
		wantField string
	}{
		{"valid", `{"applicationId":"a-1","status":"VIEWED","page":0}`, true, ""},
		{"null enum allowed", `{"applicationId":"a-1","status":null}`, true, ""},
		{"missing required", `{"page":1}`, false, "applicationId"},
		{"enum violation", `{"applicationId":"a-1","status":"HIRED"}`, false, "status"},
		{"negative page", `{"applicationId":"a-1","page":-1}`, false, "page"},
		{"fractional page", `{"applicationId":"a-1","page":1.5}`, false, "page"},
		{"wrong item type", `{"applicationId":"a-1","skills":[1]}`, false, "skills.0"},
		{"empty document", ``, false, "applicationId"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateJSON(tt.raw, testSchema)

			assert.Equal(t, tt.wantValid, result.Valid, result.GetErrorMessages())
			if tt.wantField != "" {
				assert.True(t, result.HasErrors(tt.wantField), result.GetErrorMessages())
			}
		})
	}
}

func TestValidateInput_AdditionalPropertiesRejected(t *testing.T) {
	strict := testSchema
	strict.AdditionalProperties = false

	result := ValidateInput(map[string]interface{}{"applicationId": "a-1", "extra": true}, strict)

	assert.False(t, result.Valid)
	assert.NotEmpty(t, result.GetErrorMessages())
}

func TestValidateEmail(t *testing.T) {
	assert.True(t, ValidateEmail("ana@example.com"))
	assert.False(t, ValidateEmail("not-an-email"))
}

package classifier

import (
	"encoding/json"
	"testing"

	"github.com/shenikar/smart_incident_detection/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Valid(t *testing.T) {
	p := NewParser()

	got, err := p.Parse(`{"keywords":["fire","emergency","smoke","building","urgent"],"decision":"emergency"}`)
	require.NoError(t, err)
	assert.Equal(t, models.DecisionEmergency, got.Decision)
	assert.Equal(t, []string{"fire", "emergency", "smoke", "building", "urgent"}, got.Keywords)
}

func TestParse_NotEmergencyAndFence(t *testing.T) {
	p := NewParser()

	got, err := p.Parse("```json\n{\"keywords\":[\"street\",\"calm\",\"not accident\",\"day\",\"traffic\"],\"decision\":\"not emergency\"}\n```")
	require.NoError(t, err)
	assert.Equal(t, models.DecisionNotEmergency, got.Decision)
	assert.Len(t, got.Keywords, 5)
}

func TestParse_Rejects(t *testing.T) {
	tests := map[string]string{
		"not json":            `the image shows a fire`,
		"truncated":           `{"keywords":["fire"],"decision":"emerg`,
		"extra property":      `{"keywords":["fire"],"decision":"emergency","confidence":0.9}`,
		"missing decision":    `{"keywords":["fire"]}`,
		"missing keywords":    `{"decision":"emergency"}`,
		"decision off enum":   `{"keywords":["fire"],"decision":"maybe"}`,
		"underscore variant":  `{"keywords":["fire"],"decision":"not_emergency"}`,
		"keywords wrong type": `{"keywords":"fire","decision":"emergency"}`,
		"trailing data":       `{"keywords":["fire"],"decision":"emergency"} {}`,
		"null":                `null`,
		"null keyword":        `{"keywords":["fire",null,"smoke"],"decision":"emergency"}`,
		"empty keyword":       `{"keywords":["fire",""],"decision":"emergency"}`,
	}

	p := NewParser()
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := p.Parse(content)
			assert.Nil(t, got)
			assert.ErrorIs(t, err, ErrClassification)
		})
	}
}

func TestOutputSchema_Strict(t *testing.T) {
	raw, err := json.Marshal(OutputSchema())
	require.NoError(t, err)

	var schema struct {
		Type                 string   `json:"type"`
		Required             []string `json:"required"`
		AdditionalProperties *bool    `json:"additionalProperties"`
		Properties           map[string]struct {
			Type string   `json:"type"`
			Enum []string `json:"enum"`
		} `json:"properties"`
	}
	require.NoError(t, json.Unmarshal(raw, &schema))

	assert.Equal(t, "object", schema.Type)
	assert.ElementsMatch(t, []string{"keywords", "decision"}, schema.Required)
	require.NotNil(t, schema.AdditionalProperties)
	assert.False(t, *schema.AdditionalProperties)
	assert.Equal(t, "array", schema.Properties["keywords"].Type)
	assert.Equal(t, []string{"emergency", "not emergency"}, schema.Properties["decision"].Enum)
}

package classifier

import "github.com/sashabaranov/go-openai/jsonschema"

// Prompt is the fixed instruction sent alongside every image.
const Prompt = "I am sending an image of an incident. Find out whether the image indicates an emergency or not and " +
	"provide exactly five keywords describing the situation. Choose exclusively from keywords such as " +
	"'accident', 'not accident', 'emergency', 'fire', 'flood', etc. Return only a JSON object following " +
	"the schema provided."

// SchemaName identifies the structured output format in the request.
const SchemaName = "keywords"

// ExpectedKeywords is the keyword count the prompt asks for. It is not enforced.
const ExpectedKeywords = 5

// OutputSchema is the strict response contract: keywords and decision,
// both required, nothing else allowed.
func OutputSchema() *jsonschema.Definition {
	return &jsonschema.Definition{
		Type: jsonschema.Object,
		Properties: map[string]jsonschema.Definition{
			"keywords": {
				Type:  jsonschema.Array,
				Items: &jsonschema.Definition{Type: jsonschema.String},
			},
			"decision": {
				Type:        jsonschema.String,
				Enum:        []string{"emergency", "not emergency"},
				Description: "Decision on whether the image indicates an emergency or not.",
			},
		},
		Required:             []string{"keywords", "decision"},
		AdditionalProperties: false,
	}
}

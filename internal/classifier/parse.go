package classifier

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shenikar/smart_incident_detection/internal/models"
)

// ErrClassification covers unreachable services and non-conforming output.
var ErrClassification = errors.New("classification failed")

var jsonBlockRegex = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?(.*?)\\n?```")

type output struct {
	Keywords []string `json:"keywords" validate:"required,dive,required"`
	Decision string   `json:"decision" validate:"required,oneof='emergency' 'not emergency'"`
}

// Parser decodes model output against the strict schema.
type Parser struct {
	validate *validator.Validate
}

func NewParser() *Parser {
	return &Parser{validate: validator.New()}
}

// Parse decodes content as the output schema. Unknown properties, trailing
// data, missing fields, empty keywords and out-of-enum decisions are rejected. A single
// markdown code fence around the object is tolerated.
func (p *Parser) Parse(content string) (*models.Classification, error) {
	content = strings.TrimSpace(content)
	if matches := jsonBlockRegex.FindStringSubmatch(content); len(matches) >= 2 {
		content = strings.TrimSpace(matches[1])
	}

	var out output
	dec := json.NewDecoder(bytes.NewBufferString(content))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON: %w", ErrClassification, err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: unexpected data after JSON object", ErrClassification)
	}

	if err := p.validate.Struct(out); err != nil {
		return nil, fmt.Errorf("%w: schema violation: %w", ErrClassification, err)
	}

	return &models.Classification{
		Decision: models.Decision(out.Decision),
		Keywords: out.Keywords,
	}, nil
}

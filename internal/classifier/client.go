package classifier

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/shenikar/smart_incident_detection/internal/imagecodec"
	"github.com/shenikar/smart_incident_detection/internal/models"
	"github.com/sirupsen/logrus"
)

// Options configures the vision model client.
type Options struct {
	APIKey  string
	BaseURL string
	Model   string
	// Timeout of zero leaves the transport default in place.
	Timeout time.Duration
}

// Client classifies incident images with an OpenAI-compatible vision model.
// Calls are never retried.
type Client struct {
	api    *openai.Client
	model  string
	parser *Parser
	logger *logrus.Logger
}

func New(opts Options, logger *logrus.Logger) *Client {
	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}
	if opts.Timeout > 0 {
		cfg.HTTPClient = &http.Client{Timeout: opts.Timeout}
	}
	model := opts.Model
	if model == "" {
		model = openai.GPT4o
	}

	return &Client{
		api:    openai.NewClientWithConfig(cfg),
		model:  model,
		parser: NewParser(),
		logger: logger,
	}
}

// Classify sends the image with the fixed prompt and returns the decision
// and keywords. Every failure wraps ErrClassification.
func (c *Client) Classify(ctx context.Context, image []byte) (*models.Classification, error) {
	log := c.logger.WithFields(logrus.Fields{
		"component": "classifier",
		"model":     c.model,
		"bytes":     len(image),
	})

	resp, err := c.api.CreateChatCompletion(ctx, c.buildRequest(image))
	if err != nil {
		log.WithError(err).Error("Vision model request failed")
		return nil, fmt.Errorf("%w: request failed: %w", ErrClassification, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: response has no choices", ErrClassification)
	}

	msg := resp.Choices[0].Message
	if msg.Refusal != "" {
		log.WithField("refusal", msg.Refusal).Warn("Vision model refused the request")
		return nil, fmt.Errorf("%w: model refused: %s", ErrClassification, msg.Refusal)
	}

	result, err := c.parser.Parse(msg.Content)
	if err != nil {
		log.WithError(err).Warn("Vision model output does not match schema")
		return nil, err
	}

	if len(result.Keywords) != ExpectedKeywords {
		log.WithField("keywords", len(result.Keywords)).Warn("Unexpected keyword count")
	}
	log.WithField("decision", result.Decision).Debug("Image classified")
	return result, nil
}

func (c *Client) buildRequest(image []byte) openai.ChatCompletionRequest {
	return openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: Prompt},
					{
						Type:     openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{URL: imagecodec.DataURI(image)},
					},
				},
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   SchemaName,
				Schema: OutputSchema(),
				Strict: true,
			},
		},
	}
}

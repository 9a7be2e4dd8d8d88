// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package summarize

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"

	"github.com/pdiddy/paper-summarizer/pkg/types"
)

// OpenAIBackend calls the OpenAI Responses API with the record schema as a
// strict structured-output format.
type OpenAIBackend struct {
	client    openai.Client
	model     string
	maxTokens int64
}

// NewOpenAIBackend creates a backend for model. Extra request options (base
// URL, HTTP client) are passed through to the SDK.
func NewOpenAIBackend(apiKey, model string, maxTokens int, opts ...option.RequestOption) *OpenAIBackend {
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &OpenAIBackend{
		client:    openai.NewClient(opts...),
		model:     model,
		maxTokens: int64(maxTokens),
	}
}

// Name returns "openai".
func (o *OpenAIBackend) Name() string { return string(types.BackendOpenAI) }

// Complete sends prompt as a user message and returns the output text.
func (o *OpenAIBackend) Complete(ctx context.Context, prompt string) (string, error) {
	schema, err := Schema()
	if err != nil {
		return "", err
	}

	params := responses.ResponseNewParams{
		Model:           o.model,
		MaxOutputTokens: openai.Int(o.maxTokens),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: []responses.ResponseInputItemUnionParam{
				responses.ResponseInputItemParamOfMessage(prompt, responses.EasyInputMessageRoleUser),
			},
		},
		Text: responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigUnionParam{
				OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
					Name:        "SummaryRecord",
					Schema:      schema,
					Strict:      openai.Bool(true),
					Description: openai.String("Structured research paper summary"),
					Type:        "json_schema",
				},
			},
		},
	}

	resp, err := o.client.Responses.New(ctx, params)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("OpenAI API: %w: %s", &types.StatusError{URL: "responses", StatusCode: apiErr.StatusCode}, apiErr.Message)
		}
		return "", fmt.Errorf("calling OpenAI API: %w", err)
	}

	text := resp.OutputText()
	if text == "" {
		return "", errors.New("no text content in OpenAI response")
	}
	return text, nil
}

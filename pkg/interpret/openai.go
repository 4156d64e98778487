package interpret

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/sashabaranov/go-openai"

	"github.com/matzehuels/gmplayout/pkg/cache"
	"github.com/matzehuels/gmplayout/pkg/observability"
)

// DefaultModel is used when OpenAIConfig.Model is empty.
const DefaultModel = "gpt-4o-mini"

const systemPrompt = `You translate descriptions of pharmaceutical manufacturing facilities into JSON.
Reply with one JSON object and nothing else. Allowed keys:
  facility_type      one of "oral-solid", "sterile", "qc" or empty
  room_types         list of room type ids from: %s
  batch_size         number, kg per batch
  throughput         number, units per day
  cleanroom_ceiling  strictest cleanroom grade wanted: "A", "B", "C", "D" or empty
  jurisdiction       one of "EU", "US", "WHO", "PICS" or empty
  style              one of "grid", "circular", "linear", "random", "clustered" or empty
Leave out keys the description does not mention.`

// OpenAIConfig configures [OpenAI].
type OpenAIConfig struct {
	APIKey string
	// BaseURL overrides the API endpoint, e.g. for a compatible local server.
	BaseURL string
	Model   string
	// RoomTypes are the catalog ids the model may choose from.
	RoomTypes []string
	Logger    *log.Logger
}

// OpenAI interprets descriptions with a chat completion model.
type OpenAI struct {
	client    *openai.Client
	model     string
	roomTypes []string
	logger    *log.Logger
}

// NewOpenAI creates an interpreter. An empty API key is an error.
func NewOpenAI(cfg OpenAIConfig) (*OpenAI, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai: API key is required")
	}
	conf := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		conf.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Logger == nil {
		cfg.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &OpenAI{
		client:    openai.NewClientWithConfig(conf),
		model:     cfg.Model,
		roomTypes: cfg.RoomTypes,
		logger:    cfg.Logger,
	}, nil
}

// Model returns the configured model name.
func (o *OpenAI) Model() string { return o.model }

// Interpret implements Interpreter. Rate limits and server errors are
// retried with backoff; anything else is returned as is.
func (o *OpenAI) Interpret(ctx context.Context, description string) (Constraints, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return Constraints{}, ErrEmptyDescription
	}
	req := openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: fmt.Sprintf(systemPrompt, strings.Join(o.roomTypes, ", "))},
			{Role: openai.ChatMessageRoleUser, Content: description},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	var reply string
	err := cache.RetryWithBackoff(ctx, func() error {
		start := time.Now()
		observability.Interpreter().OnRequest(ctx, o.model)
		resp, err := o.client.CreateChatCompletion(ctx, req)
		observability.Interpreter().OnResponse(ctx, o.model, time.Since(start), err)
		if err != nil {
			o.logger.Warn("interpreter request failed", "model", o.model, "error", err)
			return classify(err)
		}
		if len(resp.Choices) == 0 {
			return errors.New("openai: no choices in response")
		}
		reply = resp.Choices[0].Message.Content
		o.logger.Debug("interpreter replied", "model", o.model, "finish_reason", resp.Choices[0].FinishReason)
		return nil
	})
	if err != nil {
		return Constraints{}, err
	}
	return Parse(reply)
}

// classify marks rate limits and server errors as retryable.
func classify(err error) error {
	status := 0
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	}
	switch {
	case status == http.StatusTooManyRequests:
		return cache.Retryable(fmt.Errorf("%w: %w", cache.ErrRateLimited, err))
	case status >= 500:
		return cache.Retryable(fmt.Errorf("%w: %w", cache.ErrNetwork, err))
	}
	return err
}

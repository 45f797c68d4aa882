//
// Tencent is pleased to support the open source community by making trpc-summary-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-summary-go is licensed under the Apache License Version 2.0.
//
//

// Package openai provides an OpenAI-compatible implementation of the
// model.Model interface. It works with any endpoint speaking the OpenAI chat
// completion protocol via the base URL option.
package openai

import (
	"context"
	"errors"
	"time"

	"github.com/openai/openai-go"
	openaiopt "github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"trpc.group/trpc-go/trpc-summary-go/model"
)

// defaultChannelBufferSize is the buffer size of the response channel.
const defaultChannelBufferSize = 256

// options contains configuration options for creating a Model.
type options struct {
	// APIKey is the OpenAI API key.
	APIKey string
	// BaseURL overrides the default OpenAI endpoint.
	BaseURL string
	// ChannelBufferSize is the response channel buffer size.
	ChannelBufferSize int
	// OpenAIOptions are extra request options passed through to the client.
	OpenAIOptions []openaiopt.RequestOption
}

// Option configures the Model.
type Option func(*options)

// WithAPIKey sets the API key.
func WithAPIKey(key string) Option {
	return func(o *options) {
		o.APIKey = key
	}
}

// WithBaseURL sets the base URL for the API endpoint.
func WithBaseURL(url string) Option {
	return func(o *options) {
		o.BaseURL = url
	}
}

// WithChannelBufferSize sets the response channel buffer size.
func WithChannelBufferSize(size int) Option {
	return func(o *options) {
		if size > 0 {
			o.ChannelBufferSize = size
		}
	}
}

// WithOpenAIOptions appends raw openai-go request options, e.g. middleware:
//
//	WithOpenAIOptions(openaiopt.WithMiddleware(
//		func(req *http.Request, next openaiopt.MiddlewareNext) (*http.Response, error) {
//			return next(req)
//		}))
func WithOpenAIOptions(openaiOpts ...openaiopt.RequestOption) Option {
	return func(o *options) {
		o.OpenAIOptions = append(o.OpenAIOptions, openaiOpts...)
	}
}

// Model implements model.Model on top of the OpenAI chat completion API.
type Model struct {
	client            openai.Client
	name              string
	channelBufferSize int
}

// New creates an OpenAI-compatible model.
func New(name string, opts ...Option) *Model {
	o := &options{
		ChannelBufferSize: defaultChannelBufferSize,
	}
	for _, opt := range opts {
		opt(o)
	}

	var clientOpts []openaiopt.RequestOption
	if o.APIKey != "" {
		clientOpts = append(clientOpts, openaiopt.WithAPIKey(o.APIKey))
	}
	if o.BaseURL != "" {
		clientOpts = append(clientOpts, openaiopt.WithBaseURL(o.BaseURL))
	}
	clientOpts = append(clientOpts, o.OpenAIOptions...)

	return &Model{
		client:            openai.NewClient(clientOpts...),
		name:              name,
		channelBufferSize: o.ChannelBufferSize,
	}
}

// Info implements the model.Model interface.
func (m *Model) Info() model.Info {
	return model.Info{Name: m.name}
}

// GenerateContent implements the model.Model interface.
func (m *Model) GenerateContent(
	ctx context.Context,
	request *model.Request,
) (<-chan *model.Response, error) {
	if request == nil {
		return nil, errors.New("request cannot be nil")
	}

	chatRequest := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(m.name),
		Messages: convertMessages(request.Messages),
	}
	if request.MaxTokens != nil {
		// MaxTokens is deprecated and not compatible with o-series models.
		// Use MaxCompletionTokens instead.
		chatRequest.MaxCompletionTokens = openai.Int(int64(*request.MaxTokens))
	}
	if request.Temperature != nil {
		chatRequest.Temperature = openai.Float(*request.Temperature)
	}
	if request.TopP != nil {
		chatRequest.TopP = openai.Float(*request.TopP)
	}
	if len(request.Stop) > 0 {
		// Use the first stop string for simplicity.
		chatRequest.Stop = openai.ChatCompletionNewParamsStopUnion{
			OfString: openai.String(request.Stop[0]),
		}
	}

	responseChan := make(chan *model.Response, m.channelBufferSize)
	go func() {
		defer close(responseChan)
		if request.Stream {
			m.handleStreamingResponse(ctx, chatRequest, responseChan)
		} else {
			m.handleNonStreamingResponse(ctx, chatRequest, responseChan)
		}
	}()
	return responseChan, nil
}

// convertMessages converts our Message format to OpenAI's format.
func convertMessages(messages []model.Message) []openai.ChatCompletionMessageParamUnion {
	result := make([]openai.ChatCompletionMessageParamUnion, len(messages))
	for i, msg := range messages {
		switch msg.Role {
		case model.RoleSystem:
			result[i] = openai.ChatCompletionMessageParamUnion{
				OfSystem: &openai.ChatCompletionSystemMessageParam{
					Content: openai.ChatCompletionSystemMessageParamContentUnion{
						OfString: openai.String(msg.Content),
					},
				},
			}
		case model.RoleAssistant:
			result[i] = openai.ChatCompletionMessageParamUnion{
				OfAssistant: &openai.ChatCompletionAssistantMessageParam{
					Content: openai.ChatCompletionAssistantMessageParamContentUnion{
						OfString: openai.String(msg.Content),
					},
					ToolCalls: convertToolCalls(msg.ToolCalls),
				},
			}
		case model.RoleTool:
			result[i] = openai.ChatCompletionMessageParamUnion{
				OfTool: &openai.ChatCompletionToolMessageParam{
					Content: openai.ChatCompletionToolMessageParamContentUnion{
						OfString: openai.String(msg.Content),
					},
					ToolCallID: msg.ToolID,
				},
			}
		default: // Default to user message if role is unknown.
			result[i] = openai.ChatCompletionMessageParamUnion{
				OfUser: &openai.ChatCompletionUserMessageParam{
					Content: openai.ChatCompletionUserMessageParamContentUnion{
						OfString: openai.String(msg.Content),
					},
				},
			}
		}
	}
	return result
}

func convertToolCalls(toolCalls []model.ToolCall) []openai.ChatCompletionMessageToolCallParam {
	var result []openai.ChatCompletionMessageToolCallParam
	for _, toolCall := range toolCalls {
		result = append(result, openai.ChatCompletionMessageToolCallParam{
			ID: toolCall.ID,
			Function: openai.ChatCompletionMessageToolCallFunctionParam{
				Name:      toolCall.Function.Name,
				Arguments: string(toolCall.Function.Arguments),
			},
		})
	}
	return result
}

// handleNonStreamingResponse performs a single chat completion request and
// emits exactly one response.
func (m *Model) handleNonStreamingResponse(
	ctx context.Context,
	chatRequest openai.ChatCompletionNewParams,
	responseChan chan<- *model.Response,
) {
	chatCompletion, err := m.client.Chat.Completions.New(ctx, chatRequest)
	if err != nil {
		sendResponse(ctx, responseChan, errorResponse(err.Error(), model.ErrorTypeAPIError))
		return
	}

	response := &model.Response{
		ID:        chatCompletion.ID,
		Object:    string(chatCompletion.Object),
		Created:   chatCompletion.Created,
		Model:     chatCompletion.Model,
		Timestamp: time.Now(),
		Done:      true,
	}
	response.Choices = make([]model.Choice, len(chatCompletion.Choices))
	for i, choice := range chatCompletion.Choices {
		response.Choices[i] = model.Choice{
			Index: int(choice.Index),
			Message: model.Message{
				ID:        model.NewMessageID(),
				Role:      model.RoleAssistant,
				Content:   choice.Message.Content,
				ToolCalls: convertResponseToolCalls(choice.Message.ToolCalls),
			},
		}
		if choice.FinishReason != "" {
			reason := choice.FinishReason
			response.Choices[i].FinishReason = &reason
		}
	}
	if chatCompletion.Usage.TotalTokens > 0 {
		response.Usage = &model.Usage{
			PromptTokens:     int(chatCompletion.Usage.PromptTokens),
			CompletionTokens: int(chatCompletion.Usage.CompletionTokens),
			TotalTokens:      int(chatCompletion.Usage.TotalTokens),
		}
	}
	sendResponse(ctx, responseChan, response)
}

// handleStreamingResponse streams chunks as partial responses and emits a
// final accumulated response with Done set.
func (m *Model) handleStreamingResponse(
	ctx context.Context,
	chatRequest openai.ChatCompletionNewParams,
	responseChan chan<- *model.Response,
) {
	chatRequest.StreamOptions = openai.ChatCompletionStreamOptionsParam{
		IncludeUsage: openai.Bool(true),
	}
	stream := m.client.Chat.Completions.NewStreaming(ctx, chatRequest)
	defer stream.Close()

	acc := openai.ChatCompletionAccumulator{}
	for stream.Next() {
		chunk := stream.Current()
		acc.AddChunk(chunk)
		if len(chunk.Choices) == 0 || chunk.Choices[0].Delta.Content == "" {
			continue
		}

		partial := &model.Response{
			ID:      chunk.ID,
			Object:  model.ObjectTypeChatCompletionChunk,
			Created: chunk.Created,
			Model:   chunk.Model,
			Choices: []model.Choice{{
				Index: int(chunk.Choices[0].Index),
				Delta: model.Message{
					Role:    model.RoleAssistant,
					Content: chunk.Choices[0].Delta.Content,
				},
			}},
			Timestamp: time.Now(),
			IsPartial: true,
		}
		if !sendResponse(ctx, responseChan, partial) {
			return
		}
	}
	if err := stream.Err(); err != nil {
		sendResponse(ctx, responseChan, errorResponse(err.Error(), model.ErrorTypeStreamError))
		return
	}

	final := &model.Response{
		ID:        acc.ID,
		Object:    model.ObjectTypeChatCompletion,
		Created:   acc.Created,
		Model:     acc.Model,
		Timestamp: time.Now(),
		Done:      true,
	}
	final.Choices = make([]model.Choice, len(acc.Choices))
	for i, choice := range acc.Choices {
		final.Choices[i] = model.Choice{
			Index: int(choice.Index),
			Message: model.Message{
				ID:        model.NewMessageID(),
				Role:      model.RoleAssistant,
				Content:   choice.Message.Content,
				ToolCalls: convertResponseToolCalls(choice.Message.ToolCalls),
			},
		}
	}
	if acc.Usage.TotalTokens > 0 {
		final.Usage = &model.Usage{
			PromptTokens:     int(acc.Usage.PromptTokens),
			CompletionTokens: int(acc.Usage.CompletionTokens),
			TotalTokens:      int(acc.Usage.TotalTokens),
		}
	}
	sendResponse(ctx, responseChan, final)
}

func convertResponseToolCalls(toolCalls []openai.ChatCompletionMessageToolCall) []model.ToolCall {
	if len(toolCalls) == 0 {
		return nil
	}
	result := make([]model.ToolCall, len(toolCalls))
	for i, call := range toolCalls {
		result[i] = model.ToolCall{
			Type: "function",
			ID:   call.ID,
			Function: model.FunctionDefinitionParam{
				Name:      call.Function.Name,
				Arguments: []byte(call.Function.Arguments),
			},
		}
	}
	return result
}

func errorResponse(message, errType string) *model.Response {
	return &model.Response{
		Object: model.ObjectTypeError,
		Error: &model.ResponseError{
			Message: message,
			Type:    errType,
		},
		Timestamp: time.Now(),
		Done:      true,
	}
}

// sendResponse delivers a response unless the context is cancelled first.
// It reports whether the response was delivered.
func sendResponse(ctx context.Context, responseChan chan<- *model.Response, response *model.Response) bool {
	select {
	case responseChan <- response:
		return true
	case <-ctx.Done():
		return false
	}
}

//
// Tencent is pleased to support the open source community by making trpc-summary-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-summary-go is licensed under the Apache License Version 2.0.
//
//

package openai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	openaigo "github.com/openai/openai-go"

	"trpc.group/trpc-go/trpc-summary-go/model"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		modelName string
		opts      []Option
	}{
		{
			name:      "api key only",
			modelName: "gpt-4o-mini",
			opts:      []Option{WithAPIKey("test-key")},
		},
		{
			name:      "api key with base url",
			modelName: "custom-model",
			opts: []Option{
				WithAPIKey("test-key"),
				WithBaseURL("https://api.custom.com"),
			},
		},
		{
			name:      "no options",
			modelName: "gpt-4o-mini",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New(tt.modelName, tt.opts...)
			if m == nil {
				t.Fatal("expected model to be created, got nil")
			}
			if m.name != tt.modelName {
				t.Errorf("expected model name %s, got %s", tt.modelName, m.name)
			}
			if got := m.Info().Name; got != tt.modelName {
				t.Errorf("Info().Name = %s, want %s", got, tt.modelName)
			}
			if m.channelBufferSize != defaultChannelBufferSize {
				t.Errorf("expected default buffer size %d, got %d",
					defaultChannelBufferSize, m.channelBufferSize)
			}
		})
	}
}

func TestWithChannelBufferSize(t *testing.T) {
	m := New("test-model", WithChannelBufferSize(8))
	if m.channelBufferSize != 8 {
		t.Errorf("expected buffer size 8, got %d", m.channelBufferSize)
	}

	// Non-positive sizes keep the default.
	m = New("test-model", WithChannelBufferSize(0))
	if m.channelBufferSize != defaultChannelBufferSize {
		t.Errorf("expected default buffer size %d, got %d",
			defaultChannelBufferSize, m.channelBufferSize)
	}
}

func TestModel_GenContent_NilReq(t *testing.T) {
	m := New("test-model", WithAPIKey("test-key"))

	ctx := context.Background()
	_, err := m.GenerateContent(ctx, nil)

	if err == nil {
		t.Fatal("expected error for nil request, got nil")
	}
	if err.Error() != "request cannot be nil" {
		t.Errorf("expected 'request cannot be nil', got %s", err.Error())
	}
}

func TestModel_GenContent_NonStreaming(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "chatcmpl-test",
			"object": "chat.completion",
			"created": 1700000000,
			"model": "test-model",
			"choices": [{
				"index": 0,
				"message": {"role": "assistant", "content": "The conversation covered greetings."},
				"finish_reason": "stop"
			}],
			"usage": {"prompt_tokens": 12, "completion_tokens": 5, "total_tokens": 17}
		}`))
	}))
	defer server.Close()

	m := New("test-model", WithAPIKey("test-key"), WithBaseURL(server.URL))

	maxTokens := 64
	request := &model.Request{
		Messages: []model.Message{
			model.NewUserMessage("Summarize our chat."),
		},
		GenerationConfig: model.GenerationConfig{
			MaxTokens: &maxTokens,
			Stream:    false,
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	responseChan, err := m.GenerateContent(ctx, request)
	if err != nil {
		t.Fatalf("failed to generate content: %v", err)
	}

	var final *model.Response
	for response := range responseChan {
		final = response
	}
	if final == nil {
		t.Fatal("expected a response, got none")
	}
	if final.Error != nil {
		t.Fatalf("unexpected response error: %s", final.Error.Message)
	}
	if !final.Done {
		t.Error("final response should have Done set")
	}
	if len(final.Choices) != 1 {
		t.Fatalf("expected 1 choice, got %d", len(final.Choices))
	}
	if got, want := final.Choices[0].Message.Content, "The conversation covered greetings."; got != want {
		t.Errorf("content = %q, want %q", got, want)
	}
	if final.Choices[0].Message.ID == "" {
		t.Error("response message should be assigned an ID")
	}
	if final.Usage == nil || final.Usage.TotalTokens != 17 {
		t.Errorf("usage not propagated: %+v", final.Usage)
	}
}

func TestModel_GenContent_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error": {"message": "rate limited", "type": "rate_limit_error"}}`))
	}))
	defer server.Close()

	m := New("test-model", WithAPIKey("test-key"), WithBaseURL(server.URL))

	request := &model.Request{
		Messages: []model.Message{
			model.NewUserMessage("hello"),
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	responseChan, err := m.GenerateContent(ctx, request)
	if err != nil {
		t.Fatalf("failed to generate content: %v", err)
	}

	var final *model.Response
	for response := range responseChan {
		final = response
	}
	if final == nil {
		t.Fatal("expected a response, got none")
	}
	if final.Error == nil {
		t.Fatal("expected an API error in the response")
	}
	if final.Error.Type != model.ErrorTypeAPIError {
		t.Errorf("error type = %s, want %s", final.Error.Type, model.ErrorTypeAPIError)
	}
	if !final.Done {
		t.Error("error response should have Done set")
	}
}

// TestConvertMessages verifies that messages are converted to the openai-go
// request format with the expected role variants and fields.
func TestConvertMessages(t *testing.T) {
	msgs := []model.Message{
		model.NewSystemMessage("system content"),
		model.NewUserMessage("user content"),
		{
			Role:    model.RoleAssistant,
			Content: "assistant content",
			ToolCalls: []model.ToolCall{{
				ID:   "call-1",
				Type: "function",
				Function: model.FunctionDefinitionParam{
					Name:      "hello",
					Arguments: []byte(`{"a":1}`),
				},
			}},
		},
		{
			Role:    model.RoleTool,
			Content: "tool response",
			ToolID:  "call-1",
		},
		{
			Role:    "unknown",
			Content: "fallback content",
		},
	}

	converted := convertMessages(msgs)
	if got, want := len(converted), len(msgs); got != want {
		t.Fatalf("converted len=%d want=%d", got, want)
	}

	roleChecks := []func(openaigo.ChatCompletionMessageParamUnion) bool{
		func(u openaigo.ChatCompletionMessageParamUnion) bool { return u.OfSystem != nil },
		func(u openaigo.ChatCompletionMessageParamUnion) bool { return u.OfUser != nil },
		func(u openaigo.ChatCompletionMessageParamUnion) bool { return u.OfAssistant != nil },
		func(u openaigo.ChatCompletionMessageParamUnion) bool { return u.OfTool != nil },
		func(u openaigo.ChatCompletionMessageParamUnion) bool { return u.OfUser != nil },
	}
	for i, u := range converted {
		if !roleChecks[i](u) {
			t.Fatalf("index %d: expected role variant not set", i)
		}
	}

	assistantUnion := converted[2]
	if len(assistantUnion.GetToolCalls()) == 0 {
		t.Fatal("assistant message should carry tool calls")
	}
	toolUnion := converted[3]
	if toolUnion.OfTool.ToolCallID != "call-1" {
		t.Errorf("tool call ID = %s, want call-1", toolUnion.OfTool.ToolCallID)
	}
}

func TestConvertToolCalls(t *testing.T) {
	calls := []model.ToolCall{{
		ID:   "call-42",
		Type: "function",
		Function: model.FunctionDefinitionParam{
			Name:      "lookup",
			Arguments: []byte(`{"city":"Shenzhen"}`),
		},
	}}

	converted := convertToolCalls(calls)
	if len(converted) != 1 {
		t.Fatalf("expected 1 converted call, got %d", len(converted))
	}
	if converted[0].ID != "call-42" {
		t.Errorf("ID = %s, want call-42", converted[0].ID)
	}
	if converted[0].Function.Name != "lookup" {
		t.Errorf("function name = %s, want lookup", converted[0].Function.Name)
	}
	if converted[0].Function.Arguments != `{"city":"Shenzhen"}` {
		t.Errorf("arguments = %s", converted[0].Function.Arguments)
	}

	if got := convertToolCalls(nil); got != nil {
		t.Errorf("expected nil for empty input, got %v", got)
	}
}

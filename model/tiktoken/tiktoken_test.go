//
// Tencent is pleased to support the open source community by making trpc-summary-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-summary-go is licensed under the Apache License Version 2.0.
//
//

package tiktoken

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"trpc.group/trpc-go/trpc-summary-go/model"
)

func TestTiktokenCounter_CountTokens(t *testing.T) {
	counter, err := New("gpt-4o")
	if err != nil {
		t.Skip("tiktoken-go not available: ", err)
	}
	msg := model.NewUserMessage("Hello, world!")
	used, err := counter.CountTokens(context.Background(), msg)
	require.NoError(t, err)
	require.Greater(t, used, 0)
}

func TestTiktokenCounter_ModelFallback(t *testing.T) {
	counter, err := New("unknown-model-name-xyz")
	if err != nil {
		t.Skip("tiktoken-go not available: ", err)
	}
	msg := model.NewUserMessage("alpha beta gamma")
	used, err := counter.CountTokens(context.Background(), msg)
	require.NoError(t, err)
	require.Greater(t, used, 0)
}

func TestTiktokenCounter_ToolCallPayload(t *testing.T) {
	counter, err := New("gpt-4")
	if err != nil {
		t.Skip("tiktoken-go not available: ", err)
	}
	msg := model.Message{
		Role: model.RoleAssistant,
		ToolCalls: []model.ToolCall{{
			Type: "function",
			Function: model.FunctionDefinitionParam{
				Name:      "lookup",
				Arguments: []byte(`{"city":"Shenzhen"}`),
			},
		}},
	}
	used, err := counter.CountTokens(context.Background(), msg)
	require.NoError(t, err)
	require.Greater(t, used, 0)
}

func TestTiktokenCounter_EmptyMessage(t *testing.T) {
	counter, err := New("gpt-4o")
	if err != nil {
		t.Skip("tiktoken-go not available: ", err)
	}
	msg := model.Message{}
	used, err := counter.CountTokens(context.Background(), msg)
	require.NoError(t, err)
	require.Equal(t, 0, used)
}

func TestTiktokenCounter_CountTokensRange(t *testing.T) {
	counter, err := New("gpt-4o")
	if err != nil {
		t.Skip("tiktoken-go not available: ", err)
	}
	messages := []model.Message{
		model.NewUserMessage("Hello, world!"),
		model.NewAssistantMessage("Hi there."),
	}
	total, err := counter.CountTokensRange(context.Background(), messages, 0, len(messages))
	require.NoError(t, err)
	require.Greater(t, total, 0)

	_, err = counter.CountTokensRange(context.Background(), messages, 1, 1)
	require.Error(t, err)
}

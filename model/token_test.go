//
// Tencent is pleased to support the open source community by making trpc-summary-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-summary-go is licensed under the Apache License Version 2.0.
//
//

package model

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApproxTokenCounter_CountTokens(t *testing.T) {
	counter := NewApproxTokenCounter()
	ctx := context.Background()

	cases := []struct {
		name string
		msg  Message
		want int
	}{
		{"empty", Message{}, 0},
		{"short content floors to one", Message{Content: "hi"}, 1},
		{"plain content", Message{Content: "this is sixteen.."}, 4},
		{"tool call payload counted", Message{
			Role: RoleAssistant,
			ToolCalls: []ToolCall{{
				Type: "function",
				Function: FunctionDefinitionParam{
					Name:      "lookup",
					Arguments: []byte(`{"city":"Shenzhen"}`),
				},
			}},
		}, 5},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := counter.CountTokens(ctx, c.msg)
			require.NoError(t, err)
			assert.Equal(t, c.want, got)
		})
	}
}

func TestApproxTokenCounter_CountTokensRange(t *testing.T) {
	counter := NewApproxTokenCounter()
	ctx := context.Background()
	messages := []Message{
		{Content: "this is sixteen.."},
		{Content: "hi"},
		{Content: ""},
	}

	total, err := counter.CountTokensRange(ctx, messages, 0, len(messages))
	require.NoError(t, err)
	assert.Equal(t, 5, total)

	total, err = counter.CountTokensRange(ctx, messages, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	_, err = counter.CountTokensRange(ctx, messages, 2, 1)
	assert.Error(t, err)
	_, err = counter.CountTokensRange(ctx, messages, 0, 4)
	assert.Error(t, err)
}

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
	"fmt"
	"unicode/utf8"
)

const approxRunesPerToken = 4 // heuristic: ~1 token per 4 UTF-8 runes

// TokenCounter counts tokens for messages.
// The implementation is model-agnostic to keep the model package lightweight.
// Counting must be pure and deterministic: the summarizer calls it repeatedly
// over overlapping ranges and relies on stable results.
type TokenCounter interface {
	// CountTokens returns the estimated token count for a single message.
	CountTokens(ctx context.Context, message Message) (int, error)

	// CountTokensRange returns the estimated token count for a range of messages.
	// This is more efficient than calling CountTokens multiple times.
	CountTokensRange(ctx context.Context, messages []Message, start, end int) (int, error)
}

// ApproxTokenCounter provides a very rough token estimation based on rune length.
// Heuristic: approximately one token per four UTF-8 runes for text content
// fields. Tool call payloads (function name and json-encoded arguments) are
// counted as well since they occupy context window space. Not billing-accurate;
// substitute a tiktoken-based counter when exact accounting is needed.
type ApproxTokenCounter struct{}

// NewApproxTokenCounter creates an ApproxTokenCounter.
func NewApproxTokenCounter() *ApproxTokenCounter {
	return &ApproxTokenCounter{}
}

// CountTokens estimates tokens for a single message.
func (c *ApproxTokenCounter) CountTokens(_ context.Context, message Message) (int, error) {
	total := 0

	// Count main content.
	total += utf8.RuneCountInString(message.Content) / approxRunesPerToken

	// Count tool call payloads.
	for _, call := range message.ToolCalls {
		total += utf8.RuneCountInString(call.Function.Name) / approxRunesPerToken
		total += utf8.RuneCount(call.Function.Arguments) / approxRunesPerToken
	}

	// Total should be at least 1 if message is not empty.
	if len(message.Content) > 0 || len(message.ToolCalls) > 0 {
		return max(total, 1), nil
	}
	return total, nil
}

// CountTokensRange estimates tokens for a range of messages.
func (c *ApproxTokenCounter) CountTokensRange(ctx context.Context, messages []Message, start, end int) (int, error) {
	if start < 0 || end > len(messages) || start >= end {
		return 0, fmt.Errorf("invalid range: start=%d, end=%d, len=%d", start, end, len(messages))
	}

	total := 0
	for i := start; i < end; i++ {
		// Ignore error because ApproxTokenCounter's CountTokens does not return error.
		tokens, _ := c.CountTokens(ctx, messages[i])
		total += tokens
	}
	return total, nil
}

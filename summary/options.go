//
// Tencent is pleased to support the open source community by making trpc-summary-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-summary-go is licensed under the Apache License Version 2.0.
//
//

package summary

import (
	"strings"

	"trpc.group/trpc-go/trpc-summary-go/model"
)

// Option is a function that configures a Summarizer.
type Option func(*Summarizer)

// WithTokenCounter sets the token counter used for budget decisions.
// The default is model.ApproxTokenCounter; substitute a tiktoken-based
// counter when exact accounting is needed.
func WithTokenCounter(counter model.TokenCounter) Option {
	return func(s *Summarizer) {
		if counter != nil {
			s.tokenCounter = counter
		}
	}
}

// WithMaxSummaryTokens sets the token allowance attributed to the summary
// message itself when computing whether the retained messages fit.
// Negative values are ignored. The default is 256.
func WithMaxSummaryTokens(tokens int) Option {
	return func(s *Summarizer) {
		if tokens >= 0 {
			s.maxSummaryTokens = tokens
		}
	}
}

// WithInitialSummaryPrompt sets the instruction appended to the window when
// no summary exists yet.
func WithInitialSummaryPrompt(prompt string) Option {
	return func(s *Summarizer) {
		if prompt != "" {
			s.initialPrompt = prompt
		}
	}
}

// WithExistingSummaryPrompt sets the instruction appended to the window when
// a prior summary is being extended. The prompt must include the placeholder
// {summary}, which will be replaced with the prior summary text.
func WithExistingSummaryPrompt(prompt string) Option {
	return func(s *Summarizer) {
		if prompt != "" && strings.Contains(prompt, summaryPlaceholder) {
			s.existingPrompt = prompt
		}
	}
}

// WithSummaryPrefix sets the label prepended to a previously computed summary
// when it is re-surfaced without a new model call.
func WithSummaryPrefix(prefix string) Option {
	return func(s *Summarizer) {
		if prefix != "" {
			s.summaryPrefix = prefix
		}
	}
}

//
// Tencent is pleased to support the open source community by making trpc-summary-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-summary-go is licensed under the Apache License Version 2.0.
//
//

// Package summary provides incremental conversation summarization.
//
// Given a growing message history and a token budget, the summarizer decides
// which messages to fold into a running summary, merges newly arrived
// messages with any prior summary via a single model call, and reconstructs a
// message sequence (summary + retained tail) that keeps structural
// constraints intact: a leading system message is preserved verbatim, the
// summary is rendered as a system message right after it, and the retained
// tail never splits a tool call from its tool result or starts mid-turn.
//
// The summarizer holds no state between calls. Each call returns an updated
// RunningSummary snapshot; the caller persists it and supplies it on the next
// call for the same conversation. Callers are responsible for serializing
// concurrent calls against the same conversation.
package summary

import (
	"maps"

	"trpc.group/trpc-go/trpc-summary-go/model"
)

// RunningSummary is the persisted summarization state for one conversation.
//
// It is an immutable snapshot: the summarizer never mutates a RunningSummary
// it was given and instead returns a fresh value when new messages are folded
// in. SummarizedIDs only ever grows across successive calls for the same
// conversation.
type RunningSummary struct {
	// Summary is the condensed text representing all messages folded so far.
	Summary string `json:"summary"`

	// SummarizedIDs holds the IDs of every message already folded into Summary.
	SummarizedIDs map[string]bool `json:"summarized_ids"`
}

// Contains reports whether the message ID has already been summarized.
func (r *RunningSummary) Contains(id string) bool {
	if r == nil {
		return false
	}
	return r.SummarizedIDs[id]
}

// extend returns a new snapshot with the given summary text and the window
// message IDs added on top of the previous ones.
func (r *RunningSummary) extend(summaryText string, window []model.Message) *RunningSummary {
	size := len(window)
	if r != nil {
		size += len(r.SummarizedIDs)
	}
	ids := make(map[string]bool, size)
	if r != nil {
		maps.Copy(ids, r.SummarizedIDs)
	}
	for _, m := range window {
		ids[m.ID] = true
	}
	return &RunningSummary{
		Summary:       summaryText,
		SummarizedIDs: ids,
	}
}

// Result is the outcome of a single summarization call.
type Result struct {
	// Messages is the message sequence ready for model consumption:
	// [leading system message] + [summary as a system message] + retained tail.
	Messages []model.Message `json:"messages"`

	// RunningSummary is the updated state to persist for the next call.
	// It is the input state unchanged when no new summarization occurred,
	// and nil when no summary exists yet.
	RunningSummary *RunningSummary `json:"running_summary,omitempty"`
}

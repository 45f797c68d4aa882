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
	"context"
	"errors"
	"fmt"
	"strings"

	"trpc.group/trpc-go/trpc-summary-go/log"
	"trpc.group/trpc-go/trpc-summary-go/model"
)

const (
	// defaultMaxSummaryTokens is the allowance attributed to the summary
	// message when computing whether the retained tail fits.
	defaultMaxSummaryTokens = 256

	// summaryPlaceholder is the placeholder for the prior summary text in the
	// existing-summary prompt.
	summaryPlaceholder = "{summary}"

	// defaultInitialSummaryPrompt asks the model for a first summary of the
	// window.
	defaultInitialSummaryPrompt = "Create a summary of the conversation above:"

	// defaultExistingSummaryPrompt asks the model to merge the prior summary
	// with the window.
	defaultExistingSummaryPrompt = "This is a summary of the conversation so far: " + summaryPlaceholder + "\n\n" +
		"Extend this summary by taking into account the new messages above:"

	// defaultSummaryPrefix labels a previously computed summary when it is
	// re-surfaced without a new model call.
	defaultSummaryPrefix = "Summary of the conversation so far: "
)

// ErrMissingMessageID is returned when an input message has no ID.
// Messages are required to have ID field so the summarizer can track which
// of them have been folded into the running summary.
var ErrMissingMessageID = errors.New("messages are required to have ID field")

// Summarizer incrementally folds conversation history into a running summary
// so the sequence handed to a model stays within a token budget.
//
// A Summarizer is stateless between calls and safe for concurrent use across
// different conversations. Two concurrent calls with the same RunningSummary
// would race on which window each folds in; callers must serialize calls per
// conversation.
type Summarizer struct {
	model            model.Model
	tokenCounter     model.TokenCounter
	maxTokens        int
	maxSummaryTokens int
	initialPrompt    string
	existingPrompt   string
	summaryPrefix    string
}

// NewSummarizer creates a Summarizer. maxTokens is the total budget for a
// returned sequence before summarization is attempted.
func NewSummarizer(m model.Model, maxTokens int, opts ...Option) *Summarizer {
	s := &Summarizer{
		model:            m,
		tokenCounter:     model.NewApproxTokenCounter(),
		maxTokens:        maxTokens,
		maxSummaryTokens: defaultMaxSummaryTokens,
		initialPrompt:    defaultInitialSummaryPrompt,
		existingPrompt:   defaultExistingSummaryPrompt,
		summaryPrefix:    defaultSummaryPrefix,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// summaryTask is the pending model call: creating a first summary from the
// window when prior is empty, or extending the prior summary with the window.
type summaryTask struct {
	window []model.Message
	prior  string
}

// SummarizeMessages returns a message sequence that fits the configured token
// budget together with the updated summarization state.
//
// messages is the full chronological history, each message carrying a unique
// ID. running is the state returned by the previous call for this
// conversation, or nil. When the history fits the budget the messages are
// returned unchanged (prefixed by the prior summary when one exists) and the
// state is passed through untouched. Otherwise a window of oldest
// not-yet-summarized messages is folded into the summary with a single model
// call.
//
// The call either fully succeeds or returns an error; no partial state is
// ever committed.
func (s *Summarizer) SummarizeMessages(ctx context.Context, messages []model.Message, running *RunningSummary) (*Result, error) {
	for _, m := range messages {
		if m.ID == "" {
			return nil, ErrMissingMessageID
		}
	}
	if len(messages) == 0 {
		return &Result{Messages: []model.Message{}, RunningSummary: running}, nil
	}

	// A leading system message is set aside unconditionally: it is never
	// summarized and is re-attached verbatim at the front of the output.
	var system *model.Message
	body := messages
	if messages[0].Role == model.RoleSystem {
		system = &messages[0]
		body = messages[1:]
	}
	if len(body) == 0 {
		return &Result{Messages: s.compose(system, running, nil), RunningSummary: running}, nil
	}

	systemTokens := 0
	if system != nil {
		tokens, err := s.tokenCounter.CountTokens(ctx, *system)
		if err != nil {
			return nil, fmt.Errorf("count system message tokens: %w", err)
		}
		systemTokens = tokens
	}
	// The system message cost is carried separately: it reduces only the
	// allowance for the retained tail.
	maxRemainingTokens := s.maxTokens - s.maxSummaryTokens - systemTokens
	if maxRemainingTokens <= 0 {
		return nil, fmt.Errorf(
			"no token budget left for conversation messages: maxTokens=%d, maxSummaryTokens=%d, systemTokens=%d",
			s.maxTokens, s.maxSummaryTokens, systemTokens)
	}

	working, err := dropSummarized(body, running)
	if err != nil {
		return nil, err
	}
	if len(working) == 0 {
		return &Result{Messages: s.compose(system, running, nil), RunningSummary: running}, nil
	}

	total, err := s.tokenCounter.CountTokensRange(ctx, working, 0, len(working))
	if err != nil {
		return nil, fmt.Errorf("count message tokens: %w", err)
	}
	if total <= s.maxTokens {
		if running == nil {
			return &Result{Messages: messages}, nil
		}
		// The budget holds, but an existing summary is always re-surfaced.
		return &Result{Messages: s.compose(system, running, working), RunningSummary: running}, nil
	}

	cut, err := s.findCutPoint(ctx, working, running)
	if err != nil {
		return nil, err
	}
	window, remaining := working[:cut], working[cut:]

	if len(window) == 0 {
		if running != nil {
			// Nothing new is eligible for folding; skip the model call and
			// surface the previously computed summary verbatim.
			log.Debugf("summary: empty window, re-surfacing prior summary (retained=%d)", len(remaining))
			return &Result{Messages: s.compose(system, running, remaining), RunningSummary: running}, nil
		}
		return nil, fmt.Errorf(
			"messages do not fit the token budget and none are eligible for summarization (total=%d, maxTokens=%d): raise maxTokens or shorten the history",
			total, s.maxTokens)
	}

	remainingTokens := 0
	if len(remaining) > 0 {
		remainingTokens, err = s.tokenCounter.CountTokensRange(ctx, working, cut, len(working))
		if err != nil {
			return nil, fmt.Errorf("count retained message tokens: %w", err)
		}
	}
	if remainingTokens > maxRemainingTokens {
		return nil, fmt.Errorf(
			"retained messages do not fit the token budget (%d tokens > %d allowed): raise maxTokens or shorten the history",
			remainingTokens, maxRemainingTokens)
	}

	task := summaryTask{window: window}
	if running != nil {
		task.prior = running.Summary
	}
	summaryText, err := s.generate(ctx, task)
	if err != nil {
		return nil, err
	}
	next := running.extend(summaryText, window)
	log.Debugf("summary: folded %d messages, retained %d", len(window), len(remaining))

	out := make([]model.Message, 0, len(remaining)+2)
	if system != nil {
		out = append(out, *system)
	}
	out = append(out, model.Message{
		ID:      model.NewMessageID(),
		Role:    model.RoleSystem,
		Content: summaryText,
	})
	out = append(out, remaining...)
	return &Result{Messages: out, RunningSummary: next}, nil
}

// dropSummarized strips the leading run of messages already folded into the
// running summary. An already-summarized ID reappearing past that prefix
// signals stale or duplicated caller history and is fatal rather than
// silently skipped.
func dropSummarized(body []model.Message, running *RunningSummary) ([]model.Message, error) {
	if running == nil {
		return body, nil
	}
	i := 0
	for i < len(body) && running.Contains(body[i].ID) {
		i++
	}
	for _, m := range body[i:] {
		if running.Contains(m.ID) {
			return nil, fmt.Errorf("message with ID %q has already been summarized", m.ID)
		}
	}
	return body[i:], nil
}

// findCutPoint selects the candidate summarization window working[:cut]: the
// longest prefix whose token total stays within the window budget, moved
// backward to a structurally coherent boundary. When a running summary exists
// its re-surfaced message is about to occupy reserved space, so the window
// budget shrinks by maxSummaryTokens.
func (s *Summarizer) findCutPoint(ctx context.Context, working []model.Message, running *RunningSummary) (int, error) {
	budget := s.maxTokens
	if running != nil {
		budget -= s.maxSummaryTokens
	}
	cut, total := 0, 0
	for i := range working {
		tokens, err := s.tokenCounter.CountTokens(ctx, working[i])
		if err != nil {
			return 0, fmt.Errorf("count message tokens: %w", err)
		}
		if total+tokens > budget {
			break
		}
		total += tokens
		cut = i + 1
	}
	return adjustCutPoint(working, cut), nil
}

// adjustCutPoint moves the window's right edge backward until the boundary is
// structurally coherent:
//   - the window must not end with a human message (the retained tail never
//     splits a human turn from the response that follows it);
//   - the window must not end with an assistant message carrying tool calls
//     whose results lie outside the window;
//   - the retained tail must not start with a tool result whose call sits
//     inside the window.
func adjustCutPoint(working []model.Message, cut int) int {
	for cut > 0 {
		switch last := working[cut-1]; {
		case last.Role == model.RoleUser:
			cut--
		case last.Role == model.RoleAssistant && len(last.ToolCalls) > 0:
			// Tool results follow their call chronologically, so a trailing
			// assistant message's calls are always unresolved in the window.
			cut--
		case cut < len(working) && working[cut].Role == model.RoleTool:
			cut--
		default:
			return cut
		}
	}
	return 0
}

// instruction renders the trailing prompt message for the model call.
func (s *Summarizer) instruction(task summaryTask) model.Message {
	if task.prior == "" {
		return model.Message{Role: model.RoleUser, Content: s.initialPrompt}
	}
	return model.Message{
		Role:    model.RoleUser,
		Content: strings.Replace(s.existingPrompt, summaryPlaceholder, task.prior, 1),
	}
}

// generate performs the single model call for the task and returns the new
// summary text. Model errors are propagated unmodified; there is no retry.
func (s *Summarizer) generate(ctx context.Context, task summaryTask) (string, error) {
	if s.model == nil {
		return "", errors.New("no model configured for summarization")
	}

	input := make([]model.Message, 0, len(task.window)+1)
	input = append(input, task.window...)
	input = append(input, s.instruction(task))

	request := &model.Request{
		Messages: input,
		GenerationConfig: model.GenerationConfig{
			Stream: false, // Single request/response, no streaming.
		},
	}
	responseChan, err := s.model.GenerateContent(ctx, request)
	if err != nil {
		return "", fmt.Errorf("failed to generate summary: %w", err)
	}

	var summaryText strings.Builder
	for response := range responseChan {
		if response.Error != nil {
			return "", fmt.Errorf("model error during summarization: %s", response.Error.Message)
		}
		if len(response.Choices) > 0 {
			summaryText.WriteString(response.Choices[0].Message.Content)
		}
		if response.Done {
			break
		}
	}

	out := strings.TrimSpace(summaryText.String())
	if out == "" {
		return "", errors.New("model returned an empty summary")
	}
	return out, nil
}

// compose builds the output for paths that perform no new model call:
// the leading system message, the prior summary re-labeled, then the tail.
func (s *Summarizer) compose(system *model.Message, running *RunningSummary, tail []model.Message) []model.Message {
	out := make([]model.Message, 0, len(tail)+2)
	if system != nil {
		out = append(out, *system)
	}
	if running != nil && running.Summary != "" {
		out = append(out, model.Message{
			ID:      model.NewMessageID(),
			Role:    model.RoleSystem,
			Content: s.summaryPrefix + running.Summary,
		})
	}
	return append(out, tail...)
}

//
// Tencent is pleased to support the open source community by making trpc-summary-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-summary-go is licensed under the Apache License Version 2.0.
//
//

package model

import "github.com/google/uuid"

// Role represents the role of a message author.
type Role string

// Role constants for message authors.
const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// IsValid checks if the role is one of the defined constants.
func (r Role) IsValid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant, RoleTool:
		return true
	default:
		return false
	}
}

// Message represents a single message in a conversation.
//
// Message identity is carried by ID, not by content. The summarizer requires
// every input message to have an ID that is unique over the lifetime of the
// conversation; IDs are how it tracks which messages have already been folded
// into a running summary.
type Message struct {
	ID        string     `json:"id,omitempty"`         // Unique message identifier within a conversation
	Role      Role       `json:"role"`                 // The role of the message author
	Content   string     `json:"content"`              // The message content
	ToolID    string     `json:"tool_id,omitempty"`    // Used by tool response
	ToolCalls []ToolCall `json:"tool_calls,omitempty"` // Optional tool calls for the message
}

// NewMessageID returns a fresh unique message identifier.
func NewMessageID() string {
	return uuid.NewString()
}

// NewSystemMessage creates a new system message with a generated ID.
func NewSystemMessage(content string) Message {
	return Message{
		ID:      NewMessageID(),
		Role:    RoleSystem,
		Content: content,
	}
}

// NewUserMessage creates a new user message with a generated ID.
func NewUserMessage(content string) Message {
	return Message{
		ID:      NewMessageID(),
		Role:    RoleUser,
		Content: content,
	}
}

// NewAssistantMessage creates a new assistant message with a generated ID.
func NewAssistantMessage(content string) Message {
	return Message{
		ID:      NewMessageID(),
		Role:    RoleAssistant,
		Content: content,
	}
}

// NewToolMessage creates a new tool response message with a generated ID.
// toolID links the response to the originating tool call.
func NewToolMessage(toolID, content string) Message {
	return Message{
		ID:      NewMessageID(),
		Role:    RoleTool,
		Content: content,
		ToolID:  toolID,
	}
}

// GenerationConfig contains configuration for text generation.
type GenerationConfig struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens *int `json:"max_tokens,omitempty"`

	// Temperature controls randomness (0.0 to 2.0).
	Temperature *float64 `json:"temperature,omitempty"`

	// TopP controls nucleus sampling (0.0 to 1.0).
	TopP *float64 `json:"top_p,omitempty"`

	// Stream indicates whether to stream the response.
	Stream bool `json:"stream"`

	// Stop sequences where the API will stop generating further tokens.
	Stop []string `json:"stop,omitempty"`
}

// Request is the request to the model.
type Request struct {
	// Messages is the conversation history.
	Messages []Message `json:"messages"`

	// GenerationConfig contains the generation parameters.
	GenerationConfig `json:",inline"`
}

// ToolCall represents a call to a tool (function) in the model response.
type ToolCall struct {
	// Type of the tool. Currently, only `function` is supported.
	Type string `json:"type"`
	// Function definition for the tool
	Function FunctionDefinitionParam `json:"function,omitempty"`
	// The ID of the tool call returned by the model.
	ID string `json:"id,omitempty"`

	// Index is the index of the tool call in the message for streaming responses.
	Index *int `json:"index,omitempty"`
}

// FunctionDefinitionParam describes the function invoked by a tool call.
type FunctionDefinitionParam struct {
	// The name of the function to be called. Must be a-z, A-Z, 0-9, or contain
	// underscores and dashes, with a maximum length of 64.
	Name string `json:"name"`
	// A description of what the function does, used by the model to choose when and
	// how to call the function.
	Description string `json:"description,omitempty"`

	// Optional arguments to pass to the function, json-encoded.
	Arguments []byte `json:"arguments,omitempty"`
}

package query

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
)

// LlamaRequest represents the request payload for Llama models
type LlamaRequest struct {
	Prompt      string  `json:"prompt"`
	MaxGenLen   int     `json:"max_gen_len,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
	TopP        float64 `json:"top_p,omitempty"`
}

// LlamaResponse represents the response from Llama models
type LlamaResponse struct {
	Generation string `json:"generation"`
}

// ChatMessage represents a chat message with role and content
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest represents the request payload for Claude-family chat models
type ChatRequest struct {
	Messages         []ChatMessage `json:"messages"`
	MaxTokens        int           `json:"max_tokens,omitempty"`
	Temperature      float64       `json:"temperature,omitempty"`
	AnthropicVersion string        `json:"anthropic_version,omitempty"`
}

// ChatResponse represents the response from Claude-family chat models
type ChatResponse struct {
	Content []ChatContent `json:"content"`
}

// ChatContent represents the content in a chat response
type ChatContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// generate invokes the given model with the prompt and returns the completion
func (q *Querier) generate(ctx context.Context, modelID, prompt string) (string, error) {
	requestBody, err := buildGenerationBody(modelID, prompt)
	if err != nil {
		return "", err
	}

	input := &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(modelID),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        requestBody,
	}

	result, err := q.model.InvokeModel(ctx, input)
	if err != nil {
		log.Printf("ERROR: Failed to invoke bedrock model: %v", err)
		return "", fmt.Errorf("failed to invoke bedrock model: %w", err)
	}

	return parseGenerationBody(modelID, result.Body)
}

func buildGenerationBody(modelID, prompt string) ([]byte, error) {
	var request any
	if isChatModel(modelID) {
		request = ChatRequest{
			Messages:         []ChatMessage{{Role: "user", Content: prompt}},
			MaxTokens:        1000,
			Temperature:      0.1,
			AnthropicVersion: "bedrock-2023-05-31",
		}
	} else {
		request = LlamaRequest{
			Prompt:      prompt,
			MaxGenLen:   1000,
			Temperature: 0.1,
			TopP:        0.9,
		}
	}

	body, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	return body, nil
}

func parseGenerationBody(modelID string, body []byte) (string, error) {
	if isChatModel(modelID) {
		var response ChatResponse
		if err := json.Unmarshal(body, &response); err != nil {
			return "", fmt.Errorf("failed to parse response: %w", err)
		}
		if len(response.Content) == 0 {
			return "", fmt.Errorf("no content in response")
		}
		return strings.TrimSpace(response.Content[0].Text), nil
	}

	var response LlamaResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if response.Generation == "" {
		return "", fmt.Errorf("no generation in response")
	}
	return strings.TrimSpace(response.Generation), nil
}

func isChatModel(modelID string) bool {
	lower := strings.ToLower(modelID)
	return strings.Contains(lower, "anthropic") || strings.Contains(lower, "claude")
}

package essay

import (
	"context"
	"fmt"
	"math"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const (
	// DefaultBaseURL is Groq's OpenAI-compatible endpoint.
	DefaultBaseURL = "https://api.groq.com/openai/v1"

	// DefaultModel is the chat model used when no override is configured.
	DefaultModel = "meta-llama/llama-4-scout-17b-16e-instruct"

	// HistorySize is how many prior messages are replayed into each request.
	HistorySize = 5

	maxTokens = 3500
)

const systemPrompt = `You are an expert essay writer. Write well-structured essays in Markdown format. Use headings, subheadings, bullet points, and tables where appropriate. When document content is provided, base the essay strictly on that content and do not introduce outside facts.`

// Writer produces a Markdown essay for a topic, optionally grounded in
// uploaded document content.
type Writer interface {
	Generate(ctx context.Context, topic, documentContent string) (string, error)
}

// Generator calls an OpenAI-compatible chat-completion API and keeps a
// bounded conversation history across calls.
type Generator struct {
	client  *openai.Client
	model   string
	History *History
}

// NewGenerator builds a Generator against baseURL (DefaultBaseURL when
// empty) using model (DefaultModel when empty).
func NewGenerator(apiKey, baseURL, model string) *Generator {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}
	config := openai.DefaultConfig(apiKey)
	config.BaseURL = baseURL
	return &Generator{
		client:  openai.NewClientWithConfig(config),
		model:   model,
		History: NewHistory(HistorySize),
	}
}

// buildMessages assembles the request: system instruction, buffered
// history in order, then the new request. With document content the
// request is a context message followed by the essay instruction;
// without it, the bare topic.
func (g *Generator) buildMessages(topic, documentContent string) []openai.ChatCompletionMessage {
	msgs := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
	}
	for _, m := range g.History.Messages() {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}
	if documentContent != "" {
		msgs = append(msgs,
			openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleUser,
				Content: "[DOCUMENT CONTENT]\n" + documentContent,
			},
			openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleUser,
				Content: "Write an essay on: " + topic,
			},
		)
	} else {
		msgs = append(msgs, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleUser,
			Content: topic,
		})
	}
	return msgs
}

// Generate runs one blocking completion call and records the
// (topic, essay) exchange in the history.
func (g *Generator) Generate(ctx context.Context, topic, documentContent string) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     g.model,
		Messages:  g.buildMessages(topic, documentContent),
		MaxTokens: maxTokens,
		// A literal 0 is dropped from the wire by omitempty; the smallest
		// positive float keeps sampling deterministic.
		Temperature: math.SmallestNonzeroFloat32,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	g.History.Append(RoleUser, topic)
	g.History.Append(RoleAssistant, text)
	return text, nil
}

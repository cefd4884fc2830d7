package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"google.golang.org/genai"

	"titanic_chat_backend/config"
)

// Message is one turn of the agent transcript.
type Message struct {
	Role    string // "user" or "assistant"
	Content string
}

// LLMClient is the completion surface the agent loop runs against. All
// reasoning is the model's; this repository only moves text back and forth.
type LLMClient interface {
	Complete(ctx context.Context, system string, messages []Message) (string, error)
}

func NewLLMClient(cfg *config.Config) (LLMClient, error) {
	switch cfg.LLMProvider {
	case "groq":
		return newGroqClient(cfg)
	case "gemini":
		return newGeminiClient(cfg)
	default:
		return nil, fmt.Errorf("invalid LLM provider %q", cfg.LLMProvider)
	}
}

// groqClient talks to Groq through its OpenAI-compatible endpoint.
type groqClient struct {
	client openai.Client
	model  string
}

func newGroqClient(cfg *config.Config) (*groqClient, error) {
	if cfg.GroqAPIKey == "" {
		return nil, fmt.Errorf("GROQ_API_KEY not found")
	}
	client := openai.NewClient(
		option.WithAPIKey(cfg.GroqAPIKey),
		option.WithBaseURL(cfg.GroqBaseURL),
		option.WithHTTPClient(&http.Client{Timeout: 90 * time.Second}),
	)
	return &groqClient{client: client, model: cfg.LLMModel}, nil
}

func (c *groqClient) Complete(ctx context.Context, system string, messages []Message) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
		},
		// deterministic: same question, same code
		Temperature: openai.Float(0),
	}
	for _, msg := range messages {
		switch msg.Role {
		case "assistant":
			params.Messages = append(params.Messages, openai.AssistantMessage(msg.Content))
		default:
			params.Messages = append(params.Messages, openai.UserMessage(msg.Content))
		}
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("groq completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no completion choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}

// geminiClient is the alternative provider, wired through the native SDK.
type geminiClient struct {
	models *genai.Models
	model  string
}

func newGeminiClient(cfg *config.Config) (*geminiClient, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY not found")
	}
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &geminiClient{models: client.Models, model: cfg.LLMModel}, nil
}

func (c *geminiClient) Complete(ctx context.Context, system string, messages []Message) (string, error) {
	contents := make([]*genai.Content, 0, len(messages))
	for _, msg := range messages {
		role := genai.RoleUser
		if msg.Role == "assistant" {
			role = genai.RoleModel
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: msg.Content}},
		})
	}

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: system}}},
		Temperature:       genai.Ptr(float32(0)),
	}
	resp, err := c.models.GenerateContent(ctx, c.model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("gemini completion failed: %w", err)
	}
	text := extractGeminiText(resp)
	if text == "" {
		return "", fmt.Errorf("no response from Gemini")
	}
	return text, nil
}

func extractGeminiText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil || part.Thought || part.Text == "" {
			continue
		}
		sb.WriteString(part.Text)
	}
	return sb.String()
}

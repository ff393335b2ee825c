package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// assistBodyLimit caps how much article body is sent upstream.
const assistBodyLimit = 4000

// AssistService produces editorial suggestions with the OpenAI API. It
// is optional: without an API key every call returns ErrAssistDisabled.
type AssistService struct {
	client  openai.Client
	enabled bool
}

// ErrAssistDisabled is returned when no API key is configured.
var ErrAssistDisabled = fmt.Errorf("assist is not configured")

// NewAssistService creates an AssistService. An empty apiKey disables it.
func NewAssistService(apiKey string) *AssistService {
	if apiKey == "" {
		return &AssistService{}
	}
	return &AssistService{
		client:  openai.NewClient(option.WithAPIKey(apiKey)),
		enabled: true,
	}
}

// Enabled reports whether suggestions are available.
func (s *AssistService) Enabled() bool {
	return s.enabled
}

// SuggestDek asks for a one-sentence standfirst for a draft article.
func (s *AssistService) SuggestDek(ctx context.Context, title, body string) (string, error) {
	if !s.enabled {
		return "", ErrAssistDisabled
	}

	if len(body) > assistBodyLimit {
		body = body[:assistBodyLimit]
	}

	resp, err := s.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModelGPT4oMini,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage("You write deks (standfirsts) for a European markets blog. Reply with a single sentence under 160 characters, no quotes."),
			openai.UserMessage(fmt.Sprintf("Title: %s\n\nBody:\n%s", title, body)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("requesting dek suggestion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no suggestion returned")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

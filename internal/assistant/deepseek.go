package assistant

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-deepseek/deepseek"
	"github.com/go-deepseek/deepseek/request"
)

// DeepSeekCompleter sends completions through the DeepSeek API.
type DeepSeekCompleter struct {
	client deepseek.Client
}

func NewDeepSeekCompleter(apiKey string) (*DeepSeekCompleter, error) {
	if apiKey == "" {
		return nil, errors.New("DeepSeek API key is required")
	}
	client, err := deepseek.NewClient(apiKey)
	if err != nil {
		return nil, fmt.Errorf("create DeepSeek client: %w", err)
	}
	return &DeepSeekCompleter{client: client}, nil
}

func (c *DeepSeekCompleter) Complete(ctx context.Context, model string, messages []Message, maxTokens int, temperature float32) (Completion, error) {
	reqMessages := make([]*request.Message, 0, len(messages))
	for _, m := range messages {
		reqMessages = append(reqMessages, &request.Message{Role: m.Role, Content: m.Content})
	}

	resp, err := c.client.CallChatCompletionsChat(ctx, &request.ChatCompletionsRequest{
		Model:       model,
		Messages:    reqMessages,
		MaxTokens:   maxTokens,
		Temperature: &temperature,
		Stream:      false,
	})
	if err != nil {
		return Completion{}, fmt.Errorf("DeepSeek API request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Completion{}, errors.New("DeepSeek returned no choices")
	}

	return Completion{
		Content:          resp.Choices[0].Message.Content,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
	}, nil
}

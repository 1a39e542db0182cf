package translate

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"glossa/lang"
)

type OpenAITranslator struct {
	client *openai.Client
}

func NewOpenAITranslator(apiKey string) *OpenAITranslator {
	return &OpenAITranslator{
		client: openai.NewClient(apiKey),
	}
}

func (o *OpenAITranslator) Translate(
	ctx context.Context,
	text, sourceLang, targetLang string,
) (string, error) {
	systemPrompt := fmt.Sprintf(
		"Translate the user's message from %s to %s. "+
			"Reply with the translation only, no commentary.",
		lang.Name(sourceLang),
		lang.Name(targetLang),
	)

	resp, err := o.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: openai.GPT4o,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: systemPrompt,
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: text,
				},
			},
			Temperature: 0.2,
		},
	)
	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("OpenAI returned no choices")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

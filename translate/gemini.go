package translate

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"glossa/lang"
)

type GeminiTranslator struct {
	client *genai.Client
}

func NewGeminiTranslator(
	ctx context.Context,
	apiKey string,
) (*GeminiTranslator, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiTranslator{client: client}, nil
}

func (g *GeminiTranslator) Translate(
	ctx context.Context,
	text, sourceLang, targetLang string,
) (string, error) {
	model := g.client.GenerativeModel("gemini-1.5-flash")
	model.GenerationConfig.SetTemperature(0.2)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{
			genai.Text(fmt.Sprintf(
				"Translate the user's message from %s to %s. "+
					"Reply with the translation only, no commentary.",
				lang.Name(sourceLang),
				lang.Name(targetLang),
			)),
		},
	}

	resp, err := model.GenerateContent(ctx, genai.Text(text))
	if err != nil {
		return "", fmt.Errorf("Gemini API error: %w", err)
	}

	return strings.TrimSpace(responseText(resp)), nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	var text strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate.Content != nil {
			for _, part := range candidate.Content.Parts {
				if t, ok := part.(genai.Text); ok {
					text.WriteString(string(t))
				}
			}
		}
	}
	return text.String()
}

func (g *GeminiTranslator) Close() error {
	return g.client.Close()
}

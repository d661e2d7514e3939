package llm

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GoogleAIProvider talks to Gemini through the earlier v1beta SDK. Kept
// alongside GeminiProvider because some deployments are still pinned to it;
// selectable via the provider name "googleai".
type GoogleAIProvider struct {
	Model string
}

var _ Provider = (*GoogleAIProvider)(nil)

func (p *GoogleAIProvider) Name() string { return "googleai" }

func (p *GoogleAIProvider) Generate(ctx context.Context, systemPrompt string, userPrompt string) (string, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return "", fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return "", fmt.Errorf("failed to create Gemini client: %v", err)
	}
	defer client.Close()

	name := p.Model
	if name == "" {
		name = "gemini-1.5-flash"
	}

	model := client.GenerativeModel(name)
	model.SetTemperature(0.1)
	model.ResponseMIMEType = "application/json"
	if systemPrompt != "" {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(systemPrompt)},
		}
	}

	resp, err := model.GenerateContent(ctx, genai.Text(userPrompt))
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("empty response from %s", name)
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	return sb.String(), nil
}

package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/akolanti/DocRagAPI/internal/config"
	"github.com/akolanti/DocRagAPI/internal/rag/llm"
	"github.com/akolanti/DocRagAPI/pkg/logger_i"
	"google.golang.org/genai"
)

type llmClient struct {
	client    *genai.Client
	modelName string
	logger    *logger_i.Logger
}

// NewClient builds a Gemini-backed answer generator. Construction fails
// loudly instead of returning a nil provider.
func NewClient(ctx context.Context, apikey string, modelName string) (llm.Provider, error) {
	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apikey})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	logger := logger_i.NewLogger("llm_gemini")
	logger.Info("Gemini client created", "model", modelName)
	return &llmClient{client: c, modelName: modelName, logger: logger}, nil
}

func (c *llmClient) Generate(ctx context.Context, userQuery string, matches []string, messageHistory []string) (string, error) {
	systemInstruction := &genai.Content{
		Parts: []*genai.Part{
			{Text: config.ModelContext},
		},
	}

	var contextText strings.Builder
	if len(messageHistory) > 0 {
		contextText.WriteString("Message history (question/answer pairs from this conversation):\n")
		contextText.WriteString(strings.Join(messageHistory, "\n"))
		contextText.WriteString("\n\n")
	}
	contextText.WriteString(strings.Join(matches, "\n"))

	userPrompt := fmt.Sprintf("Context:\n%s\n\nUser Question: %s", contextText.String(), userQuery)

	result, err := c.client.Models.GenerateContent(
		ctx,
		c.modelName,
		genai.Text(userPrompt),
		&genai.GenerateContentConfig{SystemInstruction: systemInstruction},
	)
	if err != nil {
		c.logger.Error("Generation failed", "error", err)
		return "", fmt.Errorf("generating answer: %w", err)
	}
	return result.Text(), nil
}

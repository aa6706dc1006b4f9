package assistant

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

const DefaultModel = "gemini-2.5-flash"

const chatInstruction = "You are a helpful AI shopping assistant for 'DarazClone'. " +
	"You help users find products, compare prices, and suggest items based on categories. " +
	"Be concise, friendly, and use emojis."

// Gemini implements Model over the Google GenAI API.
type Gemini struct {
	client *genai.Client
	model  string
}

func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if model == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &Gemini{client: client, model: model}, nil
}

func (g *Gemini) GenerateDescription(ctx context.Context, title, category, features string) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(descriptionPrompt(title, category, features), genai.RoleUser),
	}
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("generate description: %w", err)
	}
	return resp.Text(), nil
}

func (g *Gemini) Chat(ctx context.Context, history []Message, message string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, chatContents(history, message), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(chatInstruction, genai.RoleUser),
	})
	if err != nil {
		return "", fmt.Errorf("chat: %w", err)
	}
	return resp.Text(), nil
}

func descriptionPrompt(title, category, features string) string {
	return fmt.Sprintf(`Write a compelling and SEO-friendly product description for an e-commerce listing.
Product Title: %s
Category: %s
Key Features: %s

Format the output as a clean paragraph suitable for a product details page. Do not use markdown formatting like **bold** or # headings, just plain text with paragraphs.
Keep it under 150 words.`, title, category, features)
}

// chatContents maps the transcript to API contents. Unknown roles are sent as
// user turns.
func chatContents(history []Message, message string) []*genai.Content {
	out := make([]*genai.Content, 0, len(history)+1)
	for _, m := range history {
		role := genai.Role(genai.RoleUser)
		if m.Role == RoleModel {
			role = genai.RoleModel
		}
		out = append(out, genai.NewContentFromText(m.Text, role))
	}
	return append(out, genai.NewContentFromText(message, genai.RoleUser))
}

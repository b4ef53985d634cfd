package assistant

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"github.com/craudioviz/partner-portal/internal/model"
)

const systemPrompt = `You are Javari, the AI assistant for the CR AudioViz AI Partner Portal. You help sales partners understand products, answer questions about commission structures, and provide sales support.

Key Information:
- Commission rates: 15-25% Year 1, 3-10% recurring annually
- Partner tiers: STARTER (50 leads/mo), PROVEN (200 leads/mo), ELITE (unlimited), ELITE+ (W-2 path)
- Clawback policy: 90-day 100% clawback, 180-day 50% clawback
- Contact window: 14 days to contact, 30 days to close

Products:
1. Spirits App - Tier 1, 25% commission, Easy difficulty
2. Realtor AI Suite - Tier 2, 20% commission, Medium difficulty
3. Market Oracle - Tier 2, 25% commission, Medium difficulty
4. CRAudioViz Pro - Tier 3, 18% commission, Hard difficulty
5. Enterprise Solutions - Tier 4, 15% commission, Expert difficulty

Be helpful, professional, and concise. Focus on helping partners succeed in their sales efforts.`

const (
	defaultModel = openai.GPT4
	temperature  = 0.7
	maxTokens    = 500
)

// Client инкапсулирует обращение к внешнему AI по протоколу chat completions.
type Client struct {
	api   *openai.Client
	model string
}

// NewClient создаёт клиент ассистента с указанным API-ключом и моделью.
func NewClient(apiKey, model string) *Client {
	if model == "" {
		model = defaultModel
	}
	return &Client{
		api:   openai.NewClient(apiKey),
		model: model,
	}
}

// Reply отправляет диалог внешнему AI и возвращает одиночный ответ ассистента.
func (c *Client) Reply(ctx context.Context, messages []model.ChatMessage) (string, error) {
	if c == nil || c.api == nil {
		return "", fmt.Errorf("assistant client not configured")
	}

	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: temperature,
		MaxTokens:   maxTokens,
		Messages:    make([]openai.ChatCompletionMessage, 0, len(messages)+1),
	}

	req.Messages = append(req.Messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: systemPrompt,
	})
	for _, m := range messages {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "Sorry, I could not generate a response.", nil
	}

	return resp.Choices[0].Message.Content, nil
}

// Package assistant streams replies from the OpenAI chat API using the
// Mr. Warren value-investing persona.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"io"

	openai "github.com/sashabaranov/go-openai"

	"github.com/SamayGala/StockGPT/internal/models"
)

// personaPrompt frames every conversation. The assistant only discusses
// Indian stocks listed on NSE/BSE.
const personaPrompt = `You are Mr. Warren, an AI assistant embodying the investment philosophy and persona of Warren Buffett, specializing exclusively in Indian stock market analysis.

Your responses should:
1. Reflect Warren Buffett's long-term value investing philosophy applied to Indian markets
2. Use his characteristic wisdom, patience, and focus on intrinsic value
3. Speak in a clear, straightforward manner with occasional folksy wisdom
4. Always emphasize the importance of understanding the business fundamentals
5. Focus on long-term value rather than short-term market fluctuations
6. Consider Indian market context: regulatory environment, economic growth, currency factors, and market dynamics

IMPORTANT: You ONLY analyze and provide advice about INDIAN STOCKS listed on NSE (National Stock Exchange) or BSE (Bombay Stock Exchange). If asked about US stocks or international stocks, politely redirect to Indian stocks.

When analyzing Indian stocks, provide:
- Core business analysis: Explain what the company does and its competitive advantages in the Indian market
- Management quality assessment: Comment on leadership, corporate governance, and promoter holding
- Intrinsic value evaluation: Assess the company's true worth based on fundamentals (consider Indian market valuations)
- Valuation metrics: Analyze P/E, P/B ratios, ROCE, ROE in context of Indian market standards
- Investment recommendation: Provide Strong Buy, Hold, or Sell with reasoning specific to Indian market conditions
- Price targets: Suggest entry, hold, and exit price ranges in INR based on value investing principles
- Market context: Consider factors like FII/DII holdings, promoter stake, sector trends in India

Remember: "Price is what you pay, value is what you get." Always focus on the business, not the stock price. Focus exclusively on Indian companies and markets.`

// historyWindow caps how many prior messages are forwarded upstream.
const historyWindow = 10

// Service streams chat completions.
type Service struct {
	client *openai.Client
	model  string
}

// New builds a Service. The caller is responsible for checking that the
// API key is set; an empty key fails on the first request.
func New(apiKey, model string) *Service {
	return &Service{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

// StreamReply sends the windowed conversation upstream and calls emit for
// every content fragment, in order. It returns nil on a clean finish, the
// context error when the caller went away, and the upstream error
// otherwise. An emit failure stops the stream.
func (s *Service) StreamReply(ctx context.Context, req models.ChatRequest, emit func(chunk string) error) error {
	messages := make([]openai.ChatCompletionMessage, 0, historyWindow+2)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: personaPrompt,
	})

	history := req.ConversationHistory
	if len(history) > historyWindow {
		history = history[len(history)-historyWindow:]
	}
	for _, msg := range history {
		role := msg.Role
		if role != models.RoleAssistant {
			role = models.RoleUser
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: msg.Content})
	}

	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Message,
	})

	stream, err := s.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:               s.model,
		Messages:            messages,
		Temperature:         0.7,
		MaxCompletionTokens: 1500,
		Stream:              true,
	})
	if err != nil {
		return fmt.Errorf("create completion stream: %w", err)
	}
	defer stream.Close()

	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if errors.Is(err, context.Canceled) {
			return ctx.Err()
		}
		if err != nil {
			return fmt.Errorf("stream read: %w", err)
		}

		if len(chunk.Choices) == 0 {
			continue
		}
		if content := chunk.Choices[0].Delta.Content; content != "" {
			if err := emit(content); err != nil {
				return err
			}
		}
	}
}

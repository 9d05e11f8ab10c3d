package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/longregen/promptune/internal/adapters/circuitbreaker"
	"github.com/longregen/promptune/internal/ports"
)

const (
	// LLMTimeout is the maximum time to wait for LLM responses
	LLMTimeout = 2 * time.Minute
)

// Service implements ports.LLMService using the OpenAI-compatible client,
// wrapping every Chat call in a circuit breaker so a flaky LLM backend fails
// fast instead of hanging every subsequent Proposer/Evaluator call in the
// optimizer loop. ChatStream is not routed through the breaker.
type Service struct {
	client  *Client
	breaker *circuitbreaker.CircuitBreaker
}

// NewService creates a new LLM service
func NewService(client *Client) *Service {
	return &Service{
		client:  client,
		breaker: circuitbreaker.New(5, 30*time.Second), // 5 failures, 30s timeout
	}
}

// Chat sends a non-streaming chat request
func (s *Service) Chat(ctx context.Context, messages []ports.LLMMessage) (*ports.LLMResponse, error) {
	var result *ports.LLMResponse
	err := s.breaker.Execute(func() error {
		var err error
		result, err = s.doChat(ctx, messages)
		return err
	})
	return result, err
}

func (s *Service) doChat(ctx context.Context, messages []ports.LLMMessage) (*ports.LLMResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, LLMTimeout)
	defer cancel()

	chatMessages := s.convertMessages(messages)

	response, err := s.client.Chat(ctx, chatMessages)
	if err != nil {
		return nil, fmt.Errorf("chat request failed: %w", err)
	}

	if len(response.Choices) == 0 {
		return nil, fmt.Errorf("no choices in response")
	}

	return &ports.LLMResponse{
		Content: response.Choices[0].Message.Content,
	}, nil
}

// ChatStream sends a streaming chat request
func (s *Service) ChatStream(parentCtx context.Context, messages []ports.LLMMessage) (<-chan ports.LLMStreamChunk, error) {
	ctx, cancel := context.WithTimeout(parentCtx, LLMTimeout)

	chatMessages := s.convertMessages(messages)

	clientChan, err := s.client.ChatStream(ctx, chatMessages)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("chat stream request failed: %w", err)
	}

	outputChan := make(chan ports.LLMStreamChunk, 10)
	go func() {
		defer cancel()
		s.convertStreamChunks(ctx, clientChan, outputChan)
	}()

	return outputChan, nil
}

// convertMessages converts ports.LLMMessage to ChatMessage
func (s *Service) convertMessages(messages []ports.LLMMessage) []ChatMessage {
	chatMessages := make([]ChatMessage, len(messages))
	for i, msg := range messages {
		chatMessages[i] = ChatMessage{
			Role:    msg.Role,
			Content: msg.Content,
		}
	}
	return chatMessages
}

// convertStreamChunks converts client stream chunks to ports stream chunks
func (s *Service) convertStreamChunks(ctx context.Context, clientChan <-chan StreamChunk, outputChan chan<- ports.LLMStreamChunk) {
	defer close(outputChan)

	for {
		select {
		case <-ctx.Done():
			outputChan <- ports.LLMStreamChunk{Error: ctx.Err()}
			return
		case chunk, ok := <-clientChan:
			if !ok {
				return
			}

			outputChan <- ports.LLMStreamChunk{
				Content:   chunk.Content,
				Reasoning: chunk.Reasoning,
				Done:      chunk.Done,
				Error:     chunk.Error,
			}
		}
	}
}

package llm

import (
	"context"

	openai "github.com/sashabaranov/go-openai"
)

// Client is the minimal interface needed to call a chat model. Any
// OpenAI-compatible or local backend can be adapted to it.
type Client interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Completer is the legacy prompt-completion capability used by the tl;dr
// summarizer.
type Completer interface {
	CreateCompletion(ctx context.Context, request openai.CompletionRequest) (openai.CompletionResponse, error)
}

// ModelLister is an optional capability that allows listing available models.
type ModelLister interface {
	ListModels(ctx context.Context) (openai.ModelsList, error)
}

// OpenAIProvider adapts *openai.Client to the interfaces above.
type OpenAIProvider struct {
	Inner *openai.Client
}

// NewOpenAIProvider builds a provider for an OpenAI-compatible endpoint.
// An empty baseURL keeps the library default.
func NewOpenAIProvider(apiKey, baseURL string, cfg func(*openai.ClientConfig)) *OpenAIProvider {
	c := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		c.BaseURL = baseURL
	}
	if cfg != nil {
		cfg(&c)
	}
	return &OpenAIProvider{Inner: openai.NewClientWithConfig(c)}
}

func (p *OpenAIProvider) CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	return p.Inner.CreateChatCompletion(ctx, request)
}

func (p *OpenAIProvider) CreateCompletion(ctx context.Context, request openai.CompletionRequest) (openai.CompletionResponse, error) {
	return p.Inner.CreateCompletion(ctx, request)
}

func (p *OpenAIProvider) ListModels(ctx context.Context) (openai.ModelsList, error) {
	return p.Inner.ListModels(ctx)
}

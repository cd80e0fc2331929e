package ai

import (
	"context"
	"errors"
	"fmt"

	einoopenai "github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// EinoRuntime adapts an eino chat model to the Runtime interface.
type EinoRuntime struct {
	chat         model.BaseChatModel
	defaultModel string
}

// NewEinoRuntime builds an OpenAI-compatible eino chat model.
func NewEinoRuntime(c RuntimeConfig) (*EinoRuntime, error) {
	if c.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	baseURL := c.BaseURL
	if baseURL == "" {
		baseURL = OpenAIBaseURL
	}
	cm, err := einoopenai.NewChatModel(context.Background(), &einoopenai.ChatModelConfig{
		APIKey:  c.APIKey,
		BaseURL: baseURL,
		Model:   c.Model,
		Timeout: c.HTTPTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("init eino chat model: %w", err)
	}
	return NewEinoRuntimeFromModel(cm, c.Model), nil
}

// NewEinoRuntimeFromModel wraps an existing chat model.
func NewEinoRuntimeFromModel(cm model.BaseChatModel, defaultModel string) *EinoRuntime {
	return &EinoRuntime{chat: cm, defaultModel: defaultModel}
}

func (r *EinoRuntime) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	if len(req.Messages) == 0 {
		return nil, errors.New("messages cannot be empty")
	}
	msgs := make([]*schema.Message, len(req.Messages))
	for i, m := range req.Messages {
		msgs[i] = &schema.Message{Role: schema.RoleType(m.Role), Content: m.Content}
	}
	var opts []model.Option
	name := req.Model
	if name == "" {
		name = r.defaultModel
	}
	if name != "" {
		opts = append(opts, model.WithModel(name))
	}
	if req.Temperature > 0 {
		opts = append(opts, model.WithTemperature(float32(req.Temperature)))
	}
	if req.MaxTokens > 0 {
		opts = append(opts, model.WithMaxTokens(req.MaxTokens))
	}
	out, err := r.chat.Generate(ctx, msgs, opts...)
	if err != nil {
		return nil, fmt.Errorf("eino generate: %w", err)
	}
	resp := &GenerateResponse{
		Choices: []Choice{{Message: Message{Role: string(out.Role), Content: out.Content}}},
	}
	if out.ResponseMeta != nil && out.ResponseMeta.Usage != nil {
		u := out.ResponseMeta.Usage
		resp.Usage = Usage{
			PromptTokens:     u.PromptTokens,
			CompletionTokens: u.CompletionTokens,
			TotalTokens:      u.TotalTokens,
		}
	}
	return resp, nil
}

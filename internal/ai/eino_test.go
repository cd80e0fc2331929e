package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChatModel struct {
	got  []*schema.Message
	opts *model.Options
	err  error
}

func (f *fakeChatModel) Generate(_ context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	f.got = input
	f.opts = model.GetCommonOptions(&model.Options{}, opts...)
	if f.err != nil {
		return nil, f.err
	}
	return &schema.Message{
		Role:    schema.Assistant,
		Content: "EXECUTIVE SUMMARY\nfine",
		ResponseMeta: &schema.ResponseMeta{
			Usage: &schema.TokenUsage{PromptTokens: 10, CompletionTokens: 4, TotalTokens: 14},
		},
	}, nil
}

func (f *fakeChatModel) Stream(context.Context, []*schema.Message, ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("not implemented")
}

func TestEinoRuntimeGenerate(t *testing.T) {
	fake := &fakeChatModel{}
	rt := NewEinoRuntimeFromModel(fake, "gpt-4o")
	resp, err := rt.Generate(context.Background(), GenerateRequest{
		Messages:    []Message{{Role: "system", Content: "sys"}, {Role: "user", Content: "data"}},
		MaxTokens:   1500,
		Temperature: 0.7,
	})
	require.NoError(t, err)
	assert.Equal(t, "EXECUTIVE SUMMARY\nfine", resp.Text())
	assert.Equal(t, 14, resp.Usage.TotalTokens)

	require.Len(t, fake.got, 2)
	assert.Equal(t, schema.System, fake.got[0].Role)
	assert.Equal(t, schema.User, fake.got[1].Role)
	require.NotNil(t, fake.opts.Model)
	assert.Equal(t, "gpt-4o", *fake.opts.Model)
	require.NotNil(t, fake.opts.MaxTokens)
	assert.Equal(t, 1500, *fake.opts.MaxTokens)
	require.NotNil(t, fake.opts.Temperature)
	assert.InDelta(t, 0.7, float64(*fake.opts.Temperature), 1e-6)
}

func TestEinoRuntimeError(t *testing.T) {
	rt := NewEinoRuntimeFromModel(&fakeChatModel{err: errors.New("boom")}, "gpt-4o")
	_, err := rt.Generate(context.Background(), GenerateRequest{Messages: []Message{{Role: "user", Content: "x"}}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")

	_, err = rt.Generate(context.Background(), GenerateRequest{})
	assert.Error(t, err)
}

package imagegen

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const openAIDefaultModel = "gpt-image-1"

type openAIProvider struct {
	client     openai.Client
	model      string
	httpClient *http.Client
}

func newOpenAI(cfg ProviderConfig) *openAIProvider {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.Token),
		option.WithHTTPClient(cfg.HTTPClient),
		option.WithMaxRetries(cfg.MaxRetries),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	model := cfg.Model
	if model == "" {
		model = openAIDefaultModel
	}
	return &openAIProvider{client: openai.NewClient(opts...), model: model, httpClient: cfg.HTTPClient}
}

func (p *openAIProvider) Name() string { return "openai" }

func (p *openAIProvider) Generate(ctx context.Context, req Request) ([]byte, error) {
	model := req.Model
	if model == "" {
		model = p.model
	}
	params := openai.ImageGenerateParams{
		Prompt: req.Prompt,
		Model:  openai.ImageModel(model),
		N:      openai.Int(1),
	}
	if req.Size != "" {
		params.Size = openai.ImageGenerateParamsSize(req.Size)
	}

	resp, err := p.client.Images.Generate(ctx, params)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return nil, &APIError{Provider: p.Name(), Status: apiErr.StatusCode, Body: apiErr.Message}
		}
		return nil, fmt.Errorf("imagegen: openai: %w", err)
	}
	if resp == nil || len(resp.Data) == 0 {
		return nil, errors.New("imagegen: openai: empty response")
	}
	item := resp.Data[0]
	if item.B64JSON != "" {
		return base64.StdEncoding.DecodeString(item.B64JSON)
	}
	if item.URL != "" {
		return download(ctx, p.httpClient, p.Name(), item.URL)
	}
	return nil, errors.New("imagegen: openai: response carries no image")
}

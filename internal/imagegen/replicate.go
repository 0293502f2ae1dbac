package imagegen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	replicateBaseURL      = "https://api.replicate.com/v1"
	replicateDefaultModel = "black-forest-labs/flux-schnell"
)

type replicateProvider struct {
	cfg ProviderConfig
}

func newReplicate(cfg ProviderConfig) *replicateProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = replicateBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = replicateDefaultModel
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}
	return &replicateProvider{cfg: cfg}
}

func (p *replicateProvider) Name() string { return "replicate" }

type replicatePrediction struct {
	ID     string          `json:"id"`
	Status string          `json:"status"`
	Output json.RawMessage `json:"output"`
	Error  any             `json:"error"`
	URLs   struct {
		Get string `json:"get"`
	} `json:"urls"`
}

func (p *replicateProvider) Generate(ctx context.Context, req Request) ([]byte, error) {
	model := req.Model
	if model == "" {
		model = p.cfg.Model
	}
	input := map[string]any{"prompt": req.Prompt, "output_format": "png"}
	if ratio := aspectRatio(req.Size); ratio != "" {
		input["aspect_ratio"] = ratio
	}
	payload, err := json.Marshal(map[string]any{"input": input})
	if err != nil {
		return nil, err
	}
	endpoint := fmt.Sprintf("%s/models/%s/predictions", strings.TrimRight(p.cfg.BaseURL, "/"), model)
	prediction, err := p.call(ctx, http.MethodPost, endpoint, payload)
	if err != nil {
		return nil, err
	}

	for !finished(prediction.Status) {
		if prediction.URLs.Get == "" {
			return nil, errors.New("imagegen: replicate: prediction has no status url")
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(p.cfg.PollInterval):
		}
		if prediction, err = p.call(ctx, http.MethodGet, prediction.URLs.Get, nil); err != nil {
			return nil, err
		}
	}
	if prediction.Status != "succeeded" {
		return nil, fmt.Errorf("imagegen: replicate: prediction %s %s: %v", prediction.ID, prediction.Status, prediction.Error)
	}
	url, err := firstOutput(prediction.Output)
	if err != nil {
		return nil, err
	}
	return download(ctx, p.cfg.HTTPClient, p.Name(), url)
}

func (p *replicateProvider) call(ctx context.Context, method, url string, body []byte) (*replicatePrediction, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+p.cfg.Token)
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("Prefer", "wait")
	}
	resp, err := p.cfg.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("imagegen: replicate: %w", err)
	}
	defer resp.Body.Close()
	if err := checkResponse(p.Name(), resp); err != nil {
		return nil, err
	}
	var prediction replicatePrediction
	if err := json.NewDecoder(resp.Body).Decode(&prediction); err != nil {
		return nil, fmt.Errorf("imagegen: replicate: decode: %w", err)
	}
	return &prediction, nil
}

func finished(status string) bool {
	switch status {
	case "succeeded", "failed", "canceled":
		return true
	}
	return false
}

// firstOutput accepts both a single URL and a list of URLs.
func firstOutput(raw json.RawMessage) (string, error) {
	var single string
	if err := json.Unmarshal(raw, &single); err == nil && single != "" {
		return single, nil
	}
	var many []string
	if err := json.Unmarshal(raw, &many); err == nil && len(many) > 0 {
		return many[0], nil
	}
	return "", errors.New("imagegen: replicate: prediction has no output")
}

// aspectRatio maps WxH sizes onto the ratios replicate models accept.
func aspectRatio(size string) string {
	switch strings.TrimSpace(size) {
	case "1024x1024", "512x512", "256x256":
		return "1:1"
	case "1792x1024", "1536x1024":
		return "16:9"
	case "1024x1792", "1024x1536":
		return "9:16"
	}
	return ""
}

package llm

import (
	"context"
	"fmt"
	"strings"

	httpclient "pet-matchmaker/internal/common/http"
)

type GatewayConfig struct {
	BaseURL    string
	APIKey     string
	Model      string
	MaxRetries int
}

// Gateway talks to an in-house GenAI service exposing POST /api/ai/generate.
type Gateway struct {
	config GatewayConfig
	client *httpclient.Client
}

type gatewayRequest struct {
	Prompt         string  `json:"prompt"`
	Model          string  `json:"model,omitempty"`
	MaxTokens      int     `json:"max_tokens,omitempty"`
	Temperature    float64 `json:"temperature"`
	ResponseFormat string  `json:"response_format,omitempty"`
}

type gatewayResponse struct {
	Text string `json:"text"`
}

func NewGateway(cfg GatewayConfig) (*Gateway, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("gateway base URL is required")
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Gateway{
		config: cfg,
		// the caller's context carries the deadline
		client: httpclient.NewClient(0, cfg.MaxRetries),
	}, nil
}

func (g *Gateway) Name() string {
	return "gateway"
}

func (g *Gateway) Generate(ctx context.Context, req Request) (string, error) {
	body := gatewayRequest{
		Prompt:      req.Prompt,
		Model:       g.config.Model,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}
	if req.JSON {
		body.ResponseFormat = "json"
	}

	var headers map[string]string
	if g.config.APIKey != "" {
		headers = map[string]string{"Authorization": "Bearer " + g.config.APIKey}
	}

	var resp gatewayResponse
	if err := g.client.PostJSON(ctx, g.config.BaseURL+"/api/ai/generate", headers, body, &resp); err != nil {
		return "", fmt.Errorf("gateway generate: %w", err)
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

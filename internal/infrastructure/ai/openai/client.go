// Package openai provides the chat-completion client for fitness advice
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/healyfit/healy/internal/infrastructure/config"
	"github.com/healyfit/healy/internal/infrastructure/monitoring"
	"github.com/healyfit/healy/internal/ports/outbound"
)

// Client implements the AIService interface against an OpenAI-compatible
// chat-completion endpoint. Azure-hosted deployments are addressed by
// deployment path with an api-key header; plain endpoints use a bearer token.
type Client struct {
	cfg     config.AIConfig
	client  *http.Client
	logger  *zap.Logger
	metrics *monitoring.Metrics
}

// NewClient creates a new chat-completion client
func NewClient(cfg *config.Config, logger *zap.Logger, metrics *monitoring.Metrics) *Client {
	return &Client{
		cfg: cfg.AI,
		client: &http.Client{
			Timeout: cfg.AI.Timeout,
		},
		logger:  logger.Named("ai-client"),
		metrics: metrics,
	}
}

// Chat-completion wire structures
type chatCompletionRequest struct {
	Model               string        `json:"model,omitempty"`
	Messages            []wireMessage `json:"messages"`
	MaxCompletionTokens int           `json:"max_completion_tokens,omitempty"`
}

type wireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Choices []choice `json:"choices"`
	Usage   usage    `json:"usage"`
}

type choice struct {
	Message      wireMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

type usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Complete forwards the message list to the chat-completion endpoint and
// returns the first choice's content.
func (c *Client) Complete(ctx context.Context, messages []outbound.ChatMessage) (string, error) {
	wire := make([]wireMessage, len(messages))
	for i, m := range messages {
		wire[i] = wireMessage{Role: m.Role, Content: m.Content}
	}

	reqBody := chatCompletionRequest{
		Messages:            wire,
		MaxCompletionTokens: c.cfg.MaxCompletionTokens,
	}
	// Azure routes the model by deployment path; plain endpoints take it in
	// the request body.
	if !c.isAzure() {
		reqBody.Model = c.cfg.Deployment
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.completionURL(), bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.isAzure() {
		req.Header.Set("api-key", c.cfg.APIKey)
	} else {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.metrics.RecordAdviceFailure()
		return "", fmt.Errorf("completion request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.RecordAdviceFailure()
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.metrics.RecordAdviceFailure()
		var apiErr apiError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
			return "", fmt.Errorf("completion API error %d: %s", resp.StatusCode, apiErr.Error.Message)
		}
		return "", fmt.Errorf("completion API error %d: %s", resp.StatusCode, string(body))
	}

	var chatResp chatCompletionResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		c.metrics.RecordAdviceFailure()
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if len(chatResp.Choices) == 0 {
		c.metrics.RecordAdviceFailure()
		return "", fmt.Errorf("no response choices returned")
	}

	c.logger.Info("Completion call successful",
		zap.Int("prompt_tokens", chatResp.Usage.PromptTokens),
		zap.Int("completion_tokens", chatResp.Usage.CompletionTokens),
		zap.Int("total_tokens", chatResp.Usage.TotalTokens),
	)
	c.metrics.RecordTokenUsage(chatResp.Usage.PromptTokens, chatResp.Usage.CompletionTokens)

	return chatResp.Choices[0].Message.Content, nil
}

// isAzure reports whether the endpoint is addressed Azure-style
func (c *Client) isAzure() bool {
	return c.cfg.APIVersion != ""
}

// completionURL builds the chat-completions URL for the configured endpoint
func (c *Client) completionURL() string {
	base := strings.TrimRight(c.cfg.Endpoint, "/")
	if c.isAzure() {
		return fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
			base,
			url.PathEscape(c.cfg.Deployment),
			url.QueryEscape(c.cfg.APIVersion),
		)
	}
	return base + "/chat/completions"
}

var _ outbound.AIService = (*Client)(nil)

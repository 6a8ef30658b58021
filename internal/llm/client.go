// Package llm is the external collaborator specified only by
// interface in spec §6: any OpenAI-compatible chat-completions
// endpoint. The client is wrapped in a circuit breaker and a bounded
// semaphore so a misbehaving backend cannot starve the rest of the
// daemon (spec §5, N_llm default 2).
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// Client talks to one OpenAI-compatible chat-completions endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	log        *zap.SugaredLogger

	sem     *semaphore.Weighted
	breaker *gobreaker.CircuitBreaker
}

// New builds a Client. maxConcurrent bounds in-flight calls (N_llm);
// requestTimeout bounds each call.
func New(baseURL, apiKey, model string, maxConcurrent int, requestTimeout time.Duration, log *zap.SugaredLogger) *Client {
	baseURL = normalizeBaseURL(baseURL)

	breakerSettings := gobreaker.Settings{
		Name:        "llm-client",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if log != nil {
				log.Warnw("llm circuit breaker state change", "from", from.String(), "to", to.String())
			}
		},
	}

	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: requestTimeout},
		log:        log,
		sem:        semaphore.NewWeighted(int64(maxConcurrent)),
		breaker:    gobreaker.NewCircuitBreaker(breakerSettings),
	}
}

func normalizeBaseURL(raw string) string {
	raw = strings.TrimSuffix(raw, "/")
	raw = strings.TrimSuffix(raw, "/chat/completions")
	return raw
}

type chatRequest struct {
	Model    string    `json:"model"`
	Messages []chatMsg `json:"messages"`
}

type chatMsg struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Usage reports token consumption for one call.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage Usage `json:"usage"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Chat sends a system+user prompt and returns the assistant's text,
// bounded by the client's concurrency semaphore and circuit breaker.
func (c *Client) Chat(ctx context.Context, system, user string) (string, Usage, error) {
	if err := c.sem.Acquire(ctx, 1); err != nil {
		return "", Usage{}, fmt.Errorf("llm: acquire slot: %w", err)
	}
	defer c.sem.Release(1)

	result, err := c.breaker.Execute(func() (any, error) {
		return c.chatOnce(ctx, system, user)
	})
	if err != nil {
		return "", Usage{}, err
	}
	pair := result.(chatResult)
	return pair.content, pair.usage, nil
}

type chatResult struct {
	content string
	usage   Usage
}

func (c *Client) chatOnce(ctx context.Context, system, user string) (chatResult, error) {
	payload := chatRequest{
		Model: c.model,
		Messages: []chatMsg{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return chatResult{}, fmt.Errorf("llm: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return chatResult{}, fmt.Errorf("llm: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return chatResult{}, fmt.Errorf("llm: http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return chatResult{}, fmt.Errorf("llm: read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return chatResult{}, fmt.Errorf("llm: HTTP %d: %s", resp.StatusCode, string(respBody))
	}

	var chatResp chatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return chatResult{}, fmt.Errorf("llm: unmarshal response: %w", err)
	}
	if chatResp.Error != nil {
		return chatResult{}, fmt.Errorf("llm: API error: %s", chatResp.Error.Message)
	}
	if len(chatResp.Choices) == 0 {
		return chatResult{}, fmt.Errorf("llm: no choices in response")
	}

	return chatResult{content: chatResp.Choices[0].Message.Content, usage: chatResp.Usage}, nil
}

// StripThinkBlocks removes <think>...</think> reasoning blocks some
// models emit before or between JSON objects.
func StripThinkBlocks(s string) string {
	for {
		start := strings.Index(s, "<think>")
		if start == -1 {
			break
		}
		end := strings.Index(s[start:], "</think>")
		if end == -1 {
			s = s[:start]
			break
		}
		s = s[:start] + s[start+end+len("</think>"):]
	}
	return strings.TrimSpace(s)
}

// StripFences removes markdown code fences and reasoning blocks from
// LLM output, leaving bare JSON for the critic to parse.
func StripFences(s string) string {
	s = StripThinkBlocks(strings.TrimSpace(s))
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		}
		if i := strings.LastIndex(s, "```"); i != -1 {
			s = s[:i]
		}
	}
	return strings.TrimSpace(s)
}

// Package extract turns reduced listing-page HTML into validated event
// records by calling a structured-extraction service and parsing its reply.
package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"event_scraper/internal/domain"
)

const apiVersion = "2023-06-01"

// Config holds extraction client configuration.
type Config struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int
	Timeout   time.Duration
}

// Client calls the Anthropic messages endpoint. Any text-to-structured-data
// service with the same request shape can stand in behind the scraper's
// Extractor interface; this is the production implementation.
type Client struct {
	client    *http.Client
	apiKey    string
	baseURL   string
	model     string
	maxTokens int
	logger    *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	return &Client{
		client:    &http.Client{Timeout: cfg.Timeout},
		apiKey:    cfg.APIKey,
		baseURL:   cfg.BaseURL,
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		logger:    logger,
	}
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []contentBlock `json:"content"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Extract sends one request for the given venue and returns the validated
// events found in the reply. Only transport-level failures return an error;
// a malformed reply degrades to an empty list.
func (c *Client) Extract(ctx context.Context, html string, src domain.SourceConfig, year int) ([]domain.ExtractedEvent, error) {
	if c.apiKey == "" {
		return nil, errors.New("extractor api key not configured")
	}

	reqBody := messagesRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		System:    systemPrompt(src, year),
		Messages: []message{
			{Role: "user", Content: fmt.Sprintf("Extract %d events from this HTML:\n\n%s", year, html)},
		},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", apiVersion)

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("extraction request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("extraction service status %d: %s", resp.StatusCode, string(body))
	}

	var msgResp messagesResponse
	if err := json.NewDecoder(resp.Body).Decode(&msgResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	text := "[]"
	for _, block := range msgResp.Content {
		if block.Type == "text" {
			text = block.Text
			break
		}
	}

	events := ParseEvents(text, src.Name, year)

	c.logger.Debug("extraction completed",
		"venue", src.Name,
		"events", len(events),
		"duration", time.Since(start),
	)

	return events, nil
}

func systemPrompt(src domain.SourceConfig, year int) string {
	return fmt.Sprintf(`You are an event data extractor. Given HTML from the venue "%[1]s", extract all upcoming %[2]d events into a JSON array.

Each event object must have these fields:
- "title": string (event/party name, include headliner DJ names)
- "venue": "%[1]s" (always use this exact string)
- "date": string in YYYY-MM-DD format (only %[2]d dates)
- "time": string or null (e.g. "23:00", "22:00 - 06:00")
- "description": string or null (short description, lineup details)
- "ticket_url": string or null (full URL to buy tickets)

Rules:
- Only include events in %[2]d
- Skip past events
- If a date is ambiguous, prefer DD/MM/YYYY (European format)
- Return ONLY the JSON array, no markdown, no explanation
- If no events found, return []

Hints for this site: %[3]s`, src.Name, year, src.Hints)
}

package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Client calls an OpenAI-compatible chat completions endpoint with a strict
// structured-output contract.
type Client struct {
	cfg        Config
	httpClient *http.Client
	log        *slog.Logger
	stats      *Stats
}

// Config for the model gateway.
type Config struct {
	APIKey  string
	BaseURL string // default https://api.openai.com/v1
	Timeout time.Duration
}

func NewClient(cfg Config, log *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        log,
		stats:      NewStats(time.Hour),
	}
}

// Stats exposes the rolling latency window for the debug surface.
func (c *Client) Stats() *Stats { return c.stats }

// InvocationError is a transport or provider failure. It aborts the current
// orchestration attempt and is surfaced verbatim to the user.
type InvocationError struct {
	Message string
}

func (e *InvocationError) Error() string {
	return "model call failed: " + e.Message
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type       string     `json:"type"`
	JSONSchema jsonSchema `json:"json_schema"`
}

type jsonSchema struct {
	Name   string         `json:"name"`
	Strict bool           `json:"strict"`
	Schema map[string]any `json:"schema"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Call invokes the model with the exam question schema contract and decodes
// the reply. A payload that is not valid JSON yields an empty object rather
// than an error, so the validator can flag the missing fields and keep the
// repair loop alive. The raw text is returned regardless.
func (c *Client) Call(ctx context.Context, systemPrompt, userPrompt, model string) (map[string]any, string, error) {
	reqID := uuid.New().String()
	start := time.Now()

	schema := ExamSchema()
	reqBody := chatRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		ResponseFormat: &responseFormat{
			Type: "json_schema",
			JSONSchema: jsonSchema{
				Name:   SchemaName,
				Strict: true,
				Schema: schema,
			},
		},
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, "", fmt.Errorf("marshal request: %w", err)
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	c.log.Info("llm.call", "req_id", reqID, "model", model, "prompt_bytes", len(userPrompt))

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, "", &InvocationError{Message: err.Error()}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, "", &InvocationError{Message: "read response: " + err.Error()}
	}
	c.stats.Record(time.Since(start).Milliseconds())

	if resp.StatusCode != http.StatusOK {
		return nil, "", &InvocationError{Message: fmt.Sprintf("status %d: %s", resp.StatusCode, truncate(string(respBody), 300))}
	}

	var apiResp chatResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return nil, "", &InvocationError{Message: "decode response: " + err.Error()}
	}
	if apiResp.Error != nil {
		return nil, "", &InvocationError{Message: apiResp.Error.Type + ": " + apiResp.Error.Message}
	}

	rawText := ""
	if len(apiResp.Choices) > 0 {
		rawText = apiResp.Choices[0].Message.Content
	}

	parsed := decodePayload(rawText)
	if len(parsed) > 0 {
		if err := ValidateAgainstSchema(schema, []byte(rawText)); err != nil {
			// Strict mode should prevent this; the structural validator will
			// pick up whatever is actually wrong.
			c.log.Warn("llm.schema_mismatch", "req_id", reqID, "error", err)
		}
	}

	c.log.Info("llm.done", "req_id", reqID, "elapsed_ms", time.Since(start).Milliseconds(), "payload_bytes", len(rawText))
	return parsed, rawText, nil
}

// decodePayload parses the textual payload, keeping integers as json.Number.
// Invalid JSON decodes to an empty object.
func decodePayload(text string) map[string]any {
	parsed := map[string]any{}
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	if err := dec.Decode(&parsed); err != nil {
		return map[string]any{}
	}
	return parsed
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// Close releases resources.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

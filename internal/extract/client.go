package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/psycho-baller/obsidian-journal/internal/models"
)

const (
	defaultEndpoint = "https://api.openai.com/v1/chat/completions"
	defaultModel    = "gpt-4o-mini"
)

// Client calls an OpenAI-compatible chat-completions endpoint with a JSON
// response format. It implements Extractor.
type Client struct {
	endpoint string
	model    string
	apiKey   string
	http     *http.Client
}

var _ Extractor = (*Client)(nil)

// NewClient creates an extraction client. Empty endpoint or model fall back
// to the OpenAI defaults.
func NewClient(endpoint, model, apiKey string) *Client {
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	if model == "" {
		model = defaultModel
	}
	return &Client{
		endpoint: endpoint,
		model:    model,
		apiKey:   apiKey,
		http:     &http.Client{Timeout: 60 * time.Second},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	ResponseFormat struct {
		Type string `json:"type"`
	} `json:"response_format"`
	Temperature float64 `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Populate extracts structured updates from a transcript against the
// existing daily note.
func (c *Client) Populate(ctx context.Context, transcript, existingDoc string, anchor time.Time) (*PopulationResponse, error) {
	slog.Info("extract: populate",
		slog.Int("transcript_chars", len(transcript)),
		slog.Int("doc_chars", len(existingDoc)))

	system := fmt.Sprintf(populateSystemPrompt, anchor.Format("Jan 2, 2006 15:04"))
	user := "## EXISTING DAILY NOTE TEMPLATE\n```markdown\n" + existingDoc + "\n```\n\n" +
		"## VOICE TRANSCRIPT TO PROCESS\n```\n" + transcript + "\n```\n\n" +
		"Analyze the transcript above. Extract all relevant information that maps to sections in the template. Output valid JSON only."

	var resp PopulationResponse
	if err := c.complete(ctx, system, user, 0.2, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// InferTemplate derives a placeholder template from sample notes. With no
// samples it returns a minimal default without calling the endpoint.
func (c *Client) InferTemplate(ctx context.Context, samples []models.DailyNoteSample) (*models.InferredTemplate, error) {
	if len(samples) == 0 {
		slog.Warn("extract: no samples, returning default template")
		return &models.InferredTemplate{
			Template:   "# {{date:yyyy-MM-dd}}\n\n## Journal\n\n",
			Variables:  []models.TemplateVariable{{Name: "date", Format: "yyyy-MM-dd", Description: "Current date"}},
			Confidence: 0.5,
			Notes:      "Default template - no samples available",
		}, nil
	}

	var b bytes.Buffer
	for _, s := range samples {
		_, week := s.Date.ISOWeek()
		fmt.Fprintf(&b, "=== %s (%s, Week %d) ===\n%s\n\n",
			s.Date.Format("2006-01-02"), s.Date.Format("Monday"), week, s.Content)
	}
	user := fmt.Sprintf("Analyze these %d daily notes and infer the template structure:\n\n%s\nOutput the inferred template as valid JSON.",
		len(samples), b.String())

	var tmpl models.InferredTemplate
	if err := c.complete(ctx, inferSystemPrompt, user, 0.1, &tmpl); err != nil {
		return nil, err
	}
	slog.Info("extract: template inferred", slog.Float64("confidence", tmpl.Confidence))
	return &tmpl, nil
}

// complete performs one JSON-mode chat completion and decodes the model's
// message content into out.
func (c *Client) complete(ctx context.Context, system, user string, temperature float64, out any) error {
	if c.apiKey == "" {
		return ErrMissingAPIKey
	}

	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: temperature,
	}
	reqBody.ResponseFormat.Type = "json_object"

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("extract: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("extract: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("extract: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("extract: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return &Error{StatusCode: resp.StatusCode, Message: string(body)}
	}

	var chat chatResponse
	if err := json.Unmarshal(body, &chat); err != nil {
		return fmt.Errorf("extract: decode response: %w", err)
	}
	if len(chat.Choices) == 0 {
		return &Error{StatusCode: resp.StatusCode, Message: "no choices in response"}
	}
	if err := json.Unmarshal([]byte(chat.Choices[0].Message.Content), out); err != nil {
		return fmt.Errorf("extract: decode model output: %w", err)
	}
	return nil
}

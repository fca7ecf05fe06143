package extract

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/psycho-baller/obsidian-journal/internal/models"
)

// fakeCompletions returns a chat-completions server whose model output is
// the given JSON string.
func fakeCompletions(t *testing.T, modelOutput string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": modelOutput}},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func TestPopulate_DecodesUpdates(t *testing.T) {
	srv := fakeCompletions(t, `{
		"updates": [
			{"field": "Mood", "value": "8", "updateType": "metric"},
			{"field": "## Gratitude", "value": "- Sunny weather", "updateType": "append"}
		],
		"processing_notes": "extracted mood and gratitude"
	}`)
	defer srv.Close()

	c := NewClient(srv.URL, "test-model", "test-key")
	resp, err := c.Populate(context.Background(), "feeling an 8, grateful for sun", "## Gratitude\n", time.Now())
	if err != nil {
		t.Fatalf("Populate: %v", err)
	}
	if len(resp.Updates) != 2 {
		t.Fatalf("updates = %d, want 2", len(resp.Updates))
	}
	if resp.Updates[0].UpdateType != models.UpdateMetric || resp.Updates[0].Value != "8" {
		t.Errorf("first update = %+v", resp.Updates[0])
	}
	if resp.ProcessingNotes == "" {
		t.Error("processing notes missing")
	}
}

func TestPopulate_NullValuesDecodeEmpty(t *testing.T) {
	srv := fakeCompletions(t, `{"updates": [{"field": "Mood", "value": null, "updateType": "metric"}]}`)
	defer srv.Close()

	c := NewClient(srv.URL, "test-model", "test-key")
	resp, err := c.Populate(context.Background(), "nothing relevant", "doc", time.Now())
	if err != nil {
		t.Fatalf("Populate: %v", err)
	}
	if resp.Updates[0].HasValue() {
		t.Error("null value should decode as no-signal")
	}
}

func TestPopulate_MissingAPIKey(t *testing.T) {
	c := NewClient("http://unused", "m", "")
	_, err := c.Populate(context.Background(), "t", "d", time.Now())
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("err = %v, want ErrMissingAPIKey", err)
	}
}

func TestPopulate_APIErrorSurfaced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"rate limited"}}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "m", "test-key")
	_, err := c.Populate(context.Background(), "t", "d", time.Now())
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *extract.Error", err)
	}
	if apiErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("status = %d", apiErr.StatusCode)
	}
}

func TestPopulate_MalformedModelOutput(t *testing.T) {
	srv := fakeCompletions(t, "this is not json at all")
	defer srv.Close()

	c := NewClient(srv.URL, "m", "test-key")
	if _, err := c.Populate(context.Background(), "t", "d", time.Now()); err == nil {
		t.Error("expected decode error for malformed model output")
	}
}

func TestInferTemplate_Decodes(t *testing.T) {
	srv := fakeCompletions(t, `{
		"template": "# {{date:yyyy-MM-dd}} | {{weekday}}\n\n## Journal\n",
		"variables": [{"name": "date", "format": "yyyy-MM-dd", "description": "Current date"}],
		"confidence": 0.9,
		"notes": "consistent date heading"
	}`)
	defer srv.Close()

	c := NewClient(srv.URL, "m", "test-key")
	samples := []models.DailyNoteSample{
		{Date: time.Date(2026, 1, 7, 0, 0, 0, 0, time.Local), Content: "# 2026-01-07 | Wednesday"},
		{Date: time.Date(2026, 1, 8, 0, 0, 0, 0, time.Local), Content: "# 2026-01-08 | Thursday"},
	}
	tmpl, err := c.InferTemplate(context.Background(), samples)
	if err != nil {
		t.Fatalf("InferTemplate: %v", err)
	}
	if tmpl.Confidence != 0.9 {
		t.Errorf("confidence = %v", tmpl.Confidence)
	}
	if len(tmpl.Variables) != 1 || tmpl.Variables[0].Name != "date" {
		t.Errorf("variables = %+v", tmpl.Variables)
	}
}

func TestInferTemplate_NoSamplesDefault(t *testing.T) {
	// Must not call the endpoint at all.
	c := NewClient("http://127.0.0.1:1", "m", "test-key")
	tmpl, err := c.InferTemplate(context.Background(), nil)
	if err != nil {
		t.Fatalf("InferTemplate: %v", err)
	}
	if tmpl.Template == "" || tmpl.Confidence != 0.5 {
		t.Errorf("default template = %+v", tmpl)
	}
}

package models

import "time"

// InferredTemplate is a reusable daily-note skeleton derived from a user's
// historical notes. Immutable once cached until re-inferred or cleared.
type InferredTemplate struct {
	// Template is the raw string with {{variable:format}} placeholders.
	Template string `json:"template"`
	// Variables lists the placeholders the inference detected. Descriptive
	// metadata only; the renderer parses formats straight out of Template.
	Variables []TemplateVariable `json:"variables"`
	// Confidence is the inference confidence in [0.0, 1.0].
	Confidence float64 `json:"confidence"`
	// Notes is an optional free-text explanation of the detected patterns.
	Notes string `json:"notes,omitempty"`
}

// TemplateVariable describes one detected placeholder.
type TemplateVariable struct {
	Name        string `json:"name"`
	Format      string `json:"format,omitempty"`
	Description string `json:"description,omitempty"`
}

// DailyNoteSample is one historical daily note fed into template inference.
type DailyNoteSample struct {
	Date    time.Time `json:"date"`
	Content string    `json:"content"`
}

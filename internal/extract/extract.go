// Package extract defines the external AI extraction collaborator: it turns
// a transcript plus the existing daily note into structured template
// updates, and infers a reusable template from sample notes. The engine
// treats its output purely as untrusted data.
package extract

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/psycho-baller/obsidian-journal/internal/models"
)

// PopulationResponse is the structured result of one extraction call.
type PopulationResponse struct {
	Updates []models.TemplateUpdate `json:"updates"`
	// ProcessingNotes is a free-text debugging note from the model.
	ProcessingNotes string `json:"processing_notes"`
}

// Extractor is the collaborator contract. Implementations must never apply
// anything themselves; they only produce update records.
type Extractor interface {
	// Populate maps transcript content onto the sections of the existing
	// document. An empty update list is a valid outcome.
	Populate(ctx context.Context, transcript, existingDoc string, anchor time.Time) (*PopulationResponse, error)
	// InferTemplate derives a placeholder template from sample daily notes.
	InferTemplate(ctx context.Context, samples []models.DailyNoteSample) (*models.InferredTemplate, error)
}

// ErrMissingAPIKey is returned when no credential is configured.
var ErrMissingAPIKey = errors.New("extract: api key not set")

// Error is a failed call against the extraction endpoint. Extraction
// failures are surfaced whole: no partial updates are ever applied and the
// submitting draft is not archived.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("extract: api error (%d): %s", e.StatusCode, e.Message)
}

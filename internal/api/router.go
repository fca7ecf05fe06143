package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/psycho-baller/obsidian-journal/internal/capture"
	"github.com/psycho-baller/obsidian-journal/internal/draft"
	"github.com/psycho-baller/obsidian-journal/internal/journal"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
// vaultRoot is used to resolve the recordings directory.
func NewRouter(svc *capture.Service, drafts *draft.Manager, js *journal.Service, authEnabled bool, token string, sseHandler http.Handler, vaultRoot string) chi.Router {
	h := NewHandler(svc, drafts, js)
	rh := NewRecordingHandler(vaultRoot)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Draft lifecycle.
	r.Get("/drafts", h.ListDrafts)
	r.Post("/drafts", h.CreateDraft)
	r.Post("/drafts/import", h.ImportDraft)
	r.Get("/drafts/current", h.CurrentDraft)
	r.Put("/drafts/current", h.UpdateCurrentDraft)
	r.Get("/drafts/{id}", h.GetDraft)
	r.Post("/drafts/{id}/select", h.SelectDraft)
	r.Post("/drafts/{id}/archive", h.ArchiveDraft)
	r.Post("/drafts/{id}/restore", h.RestoreDraft)
	r.Delete("/drafts/{id}", h.DeleteDraft)

	// Capture submission.
	r.Post("/capture", h.Submit)

	// Journal days.
	r.Get("/days", h.ListDays)
	r.Get("/days/today", h.Today)
	r.Get("/days/{day}", h.GetDay)

	// Template cache.
	r.Get("/template", h.GetTemplate)
	r.Post("/template/infer", h.InferTemplate)
	r.Delete("/template", h.ClearTemplate)

	// Search.
	r.Get("/search", h.Search)

	// Voice recording upload (auth-protected).
	r.Post("/recordings", rh.Upload)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}

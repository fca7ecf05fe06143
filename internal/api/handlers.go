package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/psycho-baller/obsidian-journal/internal/apperr"
	"github.com/psycho-baller/obsidian-journal/internal/capture"
	"github.com/psycho-baller/obsidian-journal/internal/draft"
	"github.com/psycho-baller/obsidian-journal/internal/extract"
	"github.com/psycho-baller/obsidian-journal/internal/journal"
)

// Handler holds API route handlers.
type Handler struct {
	svc     *capture.Service
	drafts  *draft.Manager
	journal *journal.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *capture.Service, drafts *draft.Manager, js *journal.Service) *Handler {
	return &Handler{svc: svc, drafts: drafts, journal: js}
}

// ListDrafts handles GET /api/drafts.
//
//	@Summary		List drafts, most recently modified first
//	@Tags			drafts
//	@Produce		json
//	@Success		200	{object}	DraftListResponse
//	@Security		BearerAuth
//	@Router			/drafts [get]
func (h *Handler) ListDrafts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"drafts":  h.drafts.List(),
		"current": h.drafts.Current().ID,
	})
}

// CreateDraft handles POST /api/drafts.
//
//	@Summary		Start a new draft and make it current
//	@Tags			drafts
//	@Produce		json
//	@Success		201	{object}	models.Draft
//	@Security		BearerAuth
//	@Router			/drafts [post]
func (h *Handler) CreateDraft(w http.ResponseWriter, r *http.Request) {
	d, err := h.drafts.CreateNew()
	if err != nil {
		slog.Error("create draft failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

// ImportDraft handles POST /api/drafts/import.
//
//	@Summary		Import external text as a standalone draft
//	@Tags			drafts
//	@Accept			json
//	@Produce		json
//	@Param			body	body		DraftContentRequest	true	"Text to import"
//	@Success		201		{object}	models.Draft
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/drafts/import [post]
func (h *Handler) ImportDraft(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Content == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("content is required"))
		return
	}
	d, err := h.drafts.Import(req.Content)
	if err != nil {
		slog.Error("import draft failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

// CurrentDraft handles GET /api/drafts/current.
//
//	@Summary		Get the current draft
//	@Tags			drafts
//	@Produce		json
//	@Success		200	{object}	models.Draft
//	@Security		BearerAuth
//	@Router			/drafts/current [get]
func (h *Handler) CurrentDraft(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.drafts.Current())
}

// UpdateCurrentDraft handles PUT /api/drafts/current.
//
//	@Summary		Replace the current draft's content
//	@Tags			drafts
//	@Accept			json
//	@Produce		json
//	@Param			body	body		DraftContentRequest	true	"New content"
//	@Success		200		{object}	models.Draft
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/drafts/current [put]
func (h *Handler) UpdateCurrentDraft(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read body"))
		return
	}
	var req struct {
		Content string `json:"content"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	d, err := h.drafts.Update(req.Content)
	if err != nil {
		slog.Error("update draft failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// GetDraft handles GET /api/drafts/{id}.
//
//	@Summary		Get a draft by id
//	@Tags			drafts
//	@Produce		json
//	@Param			id	path		string	true	"Draft id"
//	@Success		200	{object}	models.Draft
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/drafts/{id} [get]
func (h *Handler) GetDraft(w http.ResponseWriter, r *http.Request) {
	d, err := h.drafts.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// SelectDraft handles POST /api/drafts/{id}/select.
//
//	@Summary		Make a draft current, discarding the outgoing one if empty
//	@Tags			drafts
//	@Produce		json
//	@Param			id	path		string	true	"Draft id"
//	@Success		200	{object}	models.Draft
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/drafts/{id}/select [post]
func (h *Handler) SelectDraft(w http.ResponseWriter, r *http.Request) {
	d, err := h.drafts.Select(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// ArchiveDraft handles POST /api/drafts/{id}/archive.
//
//	@Summary		Archive a draft without merging it
//	@Tags			drafts
//	@Param			id	path	string	true	"Draft id"
//	@Success		204	"Draft archived"
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/drafts/{id}/archive [post]
func (h *Handler) ArchiveDraft(w http.ResponseWriter, r *http.Request) {
	if err := h.drafts.Archive(chi.URLParam(r, "id")); err != nil {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RestoreDraft handles POST /api/drafts/{id}/restore.
//
//	@Summary		Restore an archived draft to active
//	@Tags			drafts
//	@Param			id	path	string	true	"Draft id"
//	@Success		204	"Draft restored"
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/drafts/{id}/restore [post]
func (h *Handler) RestoreDraft(w http.ResponseWriter, r *http.Request) {
	if err := h.drafts.Restore(chi.URLParam(r, "id")); err != nil {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteDraft handles DELETE /api/drafts/{id}.
//
//	@Summary		Delete a draft permanently
//	@Tags			drafts
//	@Param			id	path	string	true	"Draft id"
//	@Success		204	"Draft deleted"
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/drafts/{id} [delete]
func (h *Handler) DeleteDraft(w http.ResponseWriter, r *http.Request) {
	if err := h.drafts.Delete(chi.URLParam(r, "id")); err != nil {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Submit handles POST /api/capture.
//
//	@Summary		Submit a draft through the extraction and merge pipeline
//	@Tags			capture
//	@Accept			json
//	@Produce		json
//	@Param			body	body		SubmitRequest	false	"Draft to submit (current draft when omitted)"
//	@Success		200		{object}	capture.SubmitResult
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Failure		502		{object}	errResponse
//	@Failure		503		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/capture [post]
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req struct {
		DraftID string `json:"draft_id"`
	}
	// Empty body means "submit the current draft".
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	res, err := h.svc.Submit(r.Context(), req.DraftID)
	if err != nil {
		var exErr *extract.Error
		switch {
		case errors.Is(err, apperr.ErrNotFound):
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		case errors.Is(err, apperr.ErrEmptyDraft):
			writeJSON(w, http.StatusBadRequest, errorBody("draft is empty"))
		case errors.Is(err, extract.ErrMissingAPIKey):
			writeJSON(w, http.StatusServiceUnavailable, errorBody("extraction not configured"))
		case errors.As(err, &exErr):
			writeJSON(w, http.StatusBadGateway, errorBody("extraction failed"))
		default:
			slog.Error("submit failed", slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ListDays handles GET /api/days.
//
//	@Summary		List indexed journal days, most recent first
//	@Tags			days
//	@Produce		json
//	@Param			limit	query		int	false	"Page size"
//	@Param			offset	query		int	false	"Page offset"
//	@Success		200		{object}	DayListResponse
//	@Security		BearerAuth
//	@Router			/days [get]
func (h *Handler) ListDays(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit <= 0 {
		limit = 50
	}
	offset, _ := strconv.Atoi(q.Get("offset"))

	days, total, err := h.svc.ListDays(r.Context(), limit, offset)
	if err != nil {
		slog.Error("list days failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"days":  days,
		"total": total,
	})
}

// Today handles GET /api/days/today. The journal day honors the early-morning
// cutoff, so a request at 03:30 returns yesterday's note. The day's note is
// created from the cached template (or built-in skeleton) if absent.
//
//	@Summary		Get or create today's journal note
//	@Tags			days
//	@Produce		json
//	@Success		200	{object}	capture.DayDetail
//	@Security		BearerAuth
//	@Router			/days/today [get]
func (h *Handler) Today(w http.ResponseWriter, r *http.Request) {
	day := h.journal.DayKey(time.Now())

	tmpl, err := h.svc.Template()
	if err != nil {
		slog.Warn("template load failed", slog.String("error", err.Error()))
	}
	content, err := h.journal.GetOrCreate(day, tmpl)
	if err != nil {
		slog.Error("get or create day failed", slog.String("day", day), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if err := h.svc.IndexDay(day, content); err != nil {
		slog.Warn("index day failed", slog.String("day", day), slog.String("error", err.Error()))
	}

	detail, err := h.svc.GetDay(r.Context(), day)
	if err != nil {
		slog.Error("get day failed", slog.String("day", day), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// GetDay handles GET /api/days/{day}.
//
//	@Summary		Get a journal day by date
//	@Tags			days
//	@Produce		json
//	@Param			day	path		string	true	"Day in yyyy-MM-dd form"
//	@Success		200	{object}	capture.DayDetail
//	@Failure		400	{object}	errResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/days/{day} [get]
func (h *Handler) GetDay(w http.ResponseWriter, r *http.Request) {
	day := chi.URLParam(r, "day")
	if _, err := time.Parse(journal.DayLayout, day); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("day must be yyyy-MM-dd"))
		return
	}
	detail, err := h.svc.GetDay(r.Context(), day)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("get day failed", slog.String("day", day), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// GetTemplate handles GET /api/template.
//
//	@Summary		Get the cached daily-note template
//	@Tags			template
//	@Produce		json
//	@Success		200	{object}	models.InferredTemplate
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/template [get]
func (h *Handler) GetTemplate(w http.ResponseWriter, r *http.Request) {
	tmpl, err := h.svc.Template()
	if err != nil {
		slog.Error("get template failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if tmpl == nil {
		writeJSON(w, http.StatusNotFound, errorBody("no template cached"))
		return
	}
	writeJSON(w, http.StatusOK, tmpl)
}

// InferTemplate handles POST /api/template/infer.
//
//	@Summary		Infer and cache a template from recent daily notes
//	@Tags			template
//	@Produce		json
//	@Success		200	{object}	models.InferredTemplate
//	@Failure		502	{object}	errResponse
//	@Failure		503	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/template/infer [post]
func (h *Handler) InferTemplate(w http.ResponseWriter, r *http.Request) {
	tmpl, err := h.svc.InferTemplate(r.Context())
	if err != nil {
		var exErr *extract.Error
		switch {
		case errors.Is(err, extract.ErrMissingAPIKey):
			writeJSON(w, http.StatusServiceUnavailable, errorBody("extraction not configured"))
		case errors.As(err, &exErr):
			writeJSON(w, http.StatusBadGateway, errorBody("inference failed"))
		default:
			slog.Error("infer template failed", slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, tmpl)
}

// ClearTemplate handles DELETE /api/template.
//
//	@Summary		Drop the cached template
//	@Tags			template
//	@Success		204	"Template cleared"
//	@Security		BearerAuth
//	@Router			/template [delete]
func (h *Handler) ClearTemplate(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.ClearTemplate(); err != nil {
		slog.Error("clear template failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Search handles GET /api/search.
//
//	@Summary		Full-text search across journal days
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		slog.Error("search failed", slog.String("query", q), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"results": results,
	})
}

package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// ListEmails handles GET /api/emails.
//
//	@Summary		List or search saved emails
//	@Tags			emails
//	@Produce		json
//	@Param			q		query		string	false	"Full-text query; switches to search results"
//	@Param			limit	query		int		false	"Page size"
//	@Param			offset	query		int		false	"Page offset"
//	@Param			type	query		string	false	"Only emails containing this component type"
//	@Param			sort	query		string	false	"Sort order"	Enums(created, created_asc, title)
//	@Success		200		{object}	EmailListResponse
//	@Security		BearerAuth
//	@Router			/emails [get]
func (h *Handler) ListEmails(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	if query := q.Get("q"); query != "" {
		hits, err := h.svc.Search(r.Context(), query, limit)
		if err != nil {
			writeError(w, "search emails", err)
			return
		}
		writeJSON(w, http.StatusOK, SearchResponse{Results: hits})
		return
	}

	items, total, err := h.svc.ListEmails(r.Context(), limit, offset, q.Get("type"), q.Get("sort"))
	if err != nil {
		writeError(w, "list emails", err)
		return
	}
	writeJSON(w, http.StatusOK, EmailListResponse{Emails: items, Total: total})
}

// SaveEmail handles POST /api/emails.
func (h *Handler) SaveEmail(w http.ResponseWriter, r *http.Request) {
	saved, err := h.svc.SaveEmail(r.Context())
	if err != nil {
		writeError(w, "save email", err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

// LoadEmail handles POST /api/emails/{id}/load.
func (h *Handler) LoadEmail(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.LoadEmail(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "load email", err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/starford/mailcraft/internal/access"
	"github.com/starford/mailcraft/internal/emailservice"
	"github.com/starford/mailcraft/internal/proposal"
)

// Handler holds API route handlers.
type Handler struct {
	svc       *emailservice.Service
	proposals *proposal.Store
	composer  *proposal.Composer
	access    *access.Store
	now       func() time.Time
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithAccess enables the /access routes and per-area permission checks.
func WithAccess(s *access.Store) HandlerOption {
	return func(h *Handler) { h.access = s }
}

// NewHandler creates a new Handler.
func NewHandler(svc *emailservice.Service, proposals *proposal.Store, composer *proposal.Composer, opts ...HandlerOption) *Handler {
	h := &Handler{svc: svc, proposals: proposals, composer: composer, now: time.Now}
	for _, o := range opts {
		o(h)
	}
	return h
}

func writeHTML(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func truthyQuery(r *http.Request, key string) bool {
	switch strings.ToLower(r.URL.Query().Get(key)) {
	case "1", "true", "yes":
		return true
	}
	return false
}

// GetDocument handles GET /api/document.
//
//	@Summary		Get the email being edited
//	@Tags			document
//	@Produce		json
//	@Success		200	{object}	editor.State
//	@Security		BearerAuth
//	@Router			/document [get]
func (h *Handler) GetDocument(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Document(r.Context()))
}

// SetTitle handles PUT /api/document/title.
//
//	@Summary		Rename the document
//	@Tags			document
//	@Accept			json
//	@Produce		json
//	@Param			body	body		SetTitleRequest	true	"New title"
//	@Success		200		{object}	editor.State
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/document/title [put]
func (h *Handler) SetTitle(w http.ResponseWriter, r *http.Request) {
	var req SetTitleRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	h.svc.SetTitle(r.Context(), req.Title)
	writeJSON(w, http.StatusOK, h.svc.Document(r.Context()))
}

// TogglePreviewMode handles POST /api/document/preview-mode.
func (h *Handler) TogglePreviewMode(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, PreviewModeResponse{PreviewMobile: h.svc.TogglePreview(r.Context())})
}

// ResetDocument handles POST /api/document/reset.
func (h *Handler) ResetDocument(w http.ResponseWriter, r *http.Request) {
	h.svc.Reset(r.Context())
	writeJSON(w, http.StatusOK, h.svc.Document(r.Context()))
}

// AddComponent handles POST /api/document/components.
//
//	@Summary		Add a component before the footer
//	@Tags			components
//	@Accept			json
//	@Produce		json
//	@Param			body	body		AddComponentRequest	true	"Component type and initial props"
//	@Success		201		{object}	models.Component
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/document/components [post]
func (h *Handler) AddComponent(w http.ResponseWriter, r *http.Request) {
	var req AddComponentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	c, err := h.svc.AddComponent(r.Context(), req.Type, req.Props)
	if err != nil {
		writeError(w, "add component", err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// UpdateComponent handles PATCH /api/document/components/{id}.
//
//	@Summary		Merge props into a component
//	@Tags			components
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string					true	"Component id"
//	@Param			body	body		UpdateComponentRequest	true	"Props to set"
//	@Success		200		{object}	models.Component
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/document/components/{id} [patch]
func (h *Handler) UpdateComponent(w http.ResponseWriter, r *http.Request) {
	var req UpdateComponentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Props == nil {
		writeJSON(w, http.StatusBadRequest, errorBody("props is required"))
		return
	}
	c, err := h.svc.UpdateComponent(r.Context(), chi.URLParam(r, "id"), req.Props)
	if err != nil {
		writeError(w, "update component", err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// DeleteComponent handles DELETE /api/document/components/{id}.
//
//	@Summary		Delete a component
//	@Tags			components
//	@Param			id	path	string	true	"Component id"
//	@Success		204	"Component deleted"
//	@Failure		403	{object}	errResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/document/components/{id} [delete]
func (h *Handler) DeleteComponent(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.RemoveComponent(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, "delete component", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DuplicateComponent handles POST /api/document/components/{id}/duplicate.
func (h *Handler) DuplicateComponent(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.DuplicateComponent(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "duplicate component", err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// SelectComponent handles PUT /api/document/selection.
func (h *Handler) SelectComponent(w http.ResponseWriter, r *http.Request) {
	var req SelectRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.svc.SelectComponent(r.Context(), req.ID); err != nil {
		writeError(w, "select component", err)
		return
	}
	writeJSON(w, http.StatusOK, h.svc.Document(r.Context()))
}

// ReorderComponents handles POST /api/document/reorder.
func (h *Handler) ReorderComponents(w http.ResponseWriter, r *http.Request) {
	var req ReorderRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.MovedID == "" || req.TargetID == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("movedId and targetId are required"))
		return
	}
	if err := h.svc.ReorderComponents(r.Context(), req.MovedID, req.TargetID); err != nil {
		writeError(w, "reorder components", err)
		return
	}
	writeJSON(w, http.StatusOK, h.svc.Document(r.Context()))
}

// ExportHTML handles GET /api/document/export.
//
//	@Summary		Download the document as an HTML email
//	@Tags			export
//	@Produce		html
//	@Param			inline			query	bool	false	"Serve inline instead of as an attachment"
//	@Param			If-None-Match	header	string	false	"ETag of a previous export"
//	@Success		200	{string}	string	"HTML document"
//	@Success		304	"Not modified"
//	@Security		BearerAuth
//	@Router			/document/export [get]
func (h *Handler) ExportHTML(w http.ResponseWriter, r *http.Request) {
	ex := h.svc.Export(r.Context())
	w.Header().Set("ETag", ex.ETag)
	if match := r.Header.Get("If-None-Match"); match != "" && match == ex.ETag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	if !truthyQuery(r, "inline") {
		w.Header().Set("Content-Disposition", contentDisposition(ex.FileName))
	}
	writeHTML(w, http.StatusOK, ex.HTML)
}

// ExportEML handles GET /api/document/export.eml.
func (h *Handler) ExportEML(w http.ResponseWriter, r *http.Request) {
	raw, name, err := h.svc.ExportEML(r.Context())
	if err != nil {
		writeError(w, "export eml", err)
		return
	}
	w.Header().Set("Content-Type", "message/rfc822")
	w.Header().Set("Content-Disposition", contentDisposition(name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(raw)
}

// Preview handles GET /api/document/preview.
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	writeHTML(w, http.StatusOK, h.svc.Preview(r.Context(), truthyQuery(r, "mobile")))
}

// SendTest handles POST /api/document/send-test.
func (h *Handler) SendTest(w http.ResponseWriter, r *http.Request) {
	var req SendTestRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(req.To) == 0 {
		writeJSON(w, http.StatusBadRequest, errorBody("at least one recipient is required"))
		return
	}
	if err := h.svc.SendTest(r.Context(), req.To); err != nil {
		writeError(w, "send test email", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func contentDisposition(name string) string {
	return fmt.Sprintf("attachment; filename=%q", name)
}

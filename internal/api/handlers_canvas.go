package api

import (
	"net/http"

	"github.com/starford/mailcraft/internal/canvas"
)

// Palette handles GET /api/canvas/palette.
func (h *Handler) Palette(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, canvas.Palette())
}

// CanvasState handles GET /api/canvas/state.
func (h *Handler) CanvasState(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Canvas().State())
}

// DragStart handles POST /api/canvas/drag/start.
func (h *Handler) DragStart(w http.ResponseWriter, r *http.Request) {
	var req DragStartRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Source.Kind != canvas.SourcePalette && req.Source.Kind != canvas.SourceCanvas {
		writeJSON(w, http.StatusBadRequest, errorBody(`source.kind must be "palette" or "canvas"`))
		return
	}
	st, err := h.svc.Canvas().DragStart(req.Source, canvas.Point{X: req.X, Y: req.Y})
	if err != nil {
		writeError(w, "drag start", err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// DragMove handles POST /api/canvas/drag/move.
func (h *Handler) DragMove(w http.ResponseWriter, r *http.Request) {
	var req DragMoveRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, h.svc.Canvas().DragMove(canvas.Point{X: req.X, Y: req.Y}))
}

// DragOver handles POST /api/canvas/drag/over.
func (h *Handler) DragOver(w http.ResponseWriter, r *http.Request) {
	var req DragTargetRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, h.svc.Canvas().DragOver(req.TargetID))
}

// DragEnd handles POST /api/canvas/drag/end. An empty body drops on the
// last hovered target.
func (h *Handler) DragEnd(w http.ResponseWriter, r *http.Request) {
	var req DragTargetRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, h.svc.Canvas().DragEnd(req.TargetID))
}

// DragCancel handles POST /api/canvas/drag/cancel.
func (h *Handler) DragCancel(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Canvas().Cancel())
}

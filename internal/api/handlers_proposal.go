package api

import (
	"net/http"

	"github.com/starford/mailcraft/internal/proposal"
)

func (h *Handler) proposalResponse() ProposalResponse {
	return ProposalResponse{
		ProposalSession: h.proposals.Session(),
		Generating:      h.composer.Generating(),
		WebhookURL:      h.composer.WebhookURL(),
	}
}

// GetProposal handles GET /api/proposal.
func (h *Handler) GetProposal(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.proposalResponse())
}

// UpdateProposal handles PUT /api/proposal.
func (h *Handler) UpdateProposal(w http.ResponseWriter, r *http.Request) {
	var req UpdateProposalRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Title != nil {
		h.proposals.SetTitle(r.Context(), *req.Title)
	}
	if req.Company != nil {
		h.proposals.SetCompany(r.Context(), *req.Company)
	}
	writeJSON(w, http.StatusOK, h.proposalResponse())
}

// SendMessage handles POST /api/proposal/messages. The assistant reply is
// appended asynchronously.
//
//	@Summary		Send a chat message
//	@Tags			proposal
//	@Accept			json
//	@Produce		json
//	@Param			body	body		SendMessageRequest	true	"Message"
//	@Success		202		{object}	models.Message
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/proposal/messages [post]
func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req SendMessageRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	msg, err := h.composer.Send(r.Context(), req.Content)
	if err != nil {
		writeError(w, "send proposal message", err)
		return
	}
	writeJSON(w, http.StatusAccepted, msg)
}

// ClearMessages handles DELETE /api/proposal/messages.
func (h *Handler) ClearMessages(w http.ResponseWriter, r *http.Request) {
	h.proposals.ClearMessages(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

// ProposalPreview handles GET /api/proposal/preview.
func (h *Handler) ProposalPreview(w http.ResponseWriter, _ *http.Request) {
	out, err := proposal.RenderPreview(h.proposals.Session(), h.now())
	if err != nil {
		writeError(w, "render proposal preview", err)
		return
	}
	writeHTML(w, http.StatusOK, out)
}

// SetWebhook handles PUT /api/proposal/webhook. An empty url disables it.
func (h *Handler) SetWebhook(w http.ResponseWriter, r *http.Request) {
	var req WebhookRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.composer.SetWebhookURL(req.URL); err != nil {
		writeError(w, "set webhook", err)
		return
	}
	writeJSON(w, http.StatusOK, h.proposalResponse())
}

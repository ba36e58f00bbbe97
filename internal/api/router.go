package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/mailcraft/internal/assets"
	"github.com/starford/mailcraft/internal/models"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
// dir, if non-nil, enables POST /assets.
// When h carries an access store, each route group is gated on its area and
// the /access routes are mounted under the settings area.
func NewRouter(h *Handler, authEnabled bool, token string, sseHandler http.Handler, dir *assets.Dir) chi.Router {
	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Group(func(r chi.Router) {
		r.Use(RequireArea(h.access, models.AreaEmailBuilder))

		// Document being edited.
		r.Route("/document", func(r chi.Router) {
			r.Get("/", h.GetDocument)
			r.Put("/title", h.SetTitle)
			r.Post("/preview-mode", h.TogglePreviewMode)
			r.Post("/reset", h.ResetDocument)

			r.Post("/components", h.AddComponent)
			r.Patch("/components/{id}", h.UpdateComponent)
			r.Delete("/components/{id}", h.DeleteComponent)
			r.Post("/components/{id}/duplicate", h.DuplicateComponent)
			r.Put("/selection", h.SelectComponent)
			r.Post("/reorder", h.ReorderComponents)

			r.Get("/export", h.ExportHTML)
			r.Get("/export.eml", h.ExportEML)
			r.Get("/preview", h.Preview)
			r.Post("/send-test", h.SendTest)
		})

		// Drag and drop.
		r.Get("/canvas/palette", h.Palette)
		r.Get("/canvas/state", h.CanvasState)
		r.Post("/canvas/drag/start", h.DragStart)
		r.Post("/canvas/drag/move", h.DragMove)
		r.Post("/canvas/drag/over", h.DragOver)
		r.Post("/canvas/drag/end", h.DragEnd)
		r.Post("/canvas/drag/cancel", h.DragCancel)

		// Saved emails.
		r.Get("/emails", h.ListEmails)
		r.Post("/emails", h.SaveEmail)
		r.Post("/emails/{id}/load", h.LoadEmail)

		// Image upload.
		if dir != nil {
			r.Post("/assets", NewAssetHandler(dir).Upload)
		}
	})

	// Proposal chat.
	r.Group(func(r chi.Router) {
		r.Use(RequireArea(h.access, models.AreaProposalGenerator))

		r.Get("/proposal", h.GetProposal)
		r.Put("/proposal", h.UpdateProposal)
		r.Post("/proposal/messages", h.SendMessage)
		r.Delete("/proposal/messages", h.ClearMessages)
		r.Get("/proposal/preview", h.ProposalPreview)
		r.Put("/proposal/webhook", h.SetWebhook)
	})

	// Roles and users.
	if h.access != nil {
		r.Route("/access", func(r chi.Router) {
			r.Use(RequireArea(h.access, models.AreaSettings))

			r.Get("/", h.GetAccess)
			r.Put("/admin-mode", h.SetAdminMode)
			r.Put("/areas/{area}", h.SetAreaAccess)
			r.Put("/active-role", h.SetActiveRole)

			r.Post("/roles", h.AddRole)
			r.Patch("/roles/{id}", h.UpdateRole)
			r.Delete("/roles/{id}", h.DeleteRole)
			r.Post("/roles/{id}/apply", h.ApplyRole)

			r.Post("/users", h.AddUser)
			r.Patch("/users/{id}", h.UpdateUser)
			r.Delete("/users/{id}", h.DeleteUser)
			r.Put("/users/{id}/role", h.AssignRole)
			r.Get("/users/{id}/permissions/{area}", h.CheckPermission)
		})
	}

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}

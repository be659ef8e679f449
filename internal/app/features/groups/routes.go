// internal/app/features/groups/routes.go
package groups

import (
	"github.com/go-chi/chi/v5"

	"github.com/dalemusser/gatherhub/internal/app/system/auth"
)

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	// BROWSE (public)
	r.Get("/", h.ServeList)
	r.Get("/{id}", h.ServeDetail)

	// MESSAGE BOARD
	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)

		pr.Post("/{id}/comment", h.HandleAddComment)
		pr.Delete("/{id}/comment/{commentID}", h.HandleRemoveComment)
		pr.Post("/{id}/comment/{commentID}/reply", h.HandleReply)
		pr.Delete("/{id}/comment/{commentID}/reply", h.HandleRemoveReply)
	})

	// ADMIN
	r.Group(func(ar chi.Router) {
		ar.Use(auth.RequireAdmin)
		ar.Patch("/{id}", h.HandleAdminUpdate)
		ar.Delete("/{id}", h.HandleAdminDelete)
	})

	return r
}

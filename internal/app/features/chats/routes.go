// internal/app/features/chats/routes.go
package chats

import (
	"github.com/go-chi/chi/v5"

	"github.com/dalemusser/gatherhub/internal/app/system/auth"
)

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)

		pr.Post("/{groupID}", h.HandleCreate)
		pr.Get("/{groupID}", h.ServeMessages)
		pr.Post("/{groupID}/message", h.HandlePostMessage)
	})

	// ADMIN
	r.Group(func(ar chi.Router) {
		ar.Use(auth.RequireAdmin)
		ar.Delete("/{groupID}", h.HandleAdminDelete)
	})

	return r
}

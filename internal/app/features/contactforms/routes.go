// internal/app/features/contactforms/routes.go
package contactforms

import (
	"github.com/go-chi/chi/v5"

	"github.com/dalemusser/gatherhub/internal/app/system/auth"
)

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	// Anonymous submissions.
	r.Post("/", h.HandleSubmit)

	// Review screens are admin-only.
	r.Group(func(ar chi.Router) {
		ar.Use(auth.RequireAdmin)

		ar.Get("/", h.ServeList)
		ar.Get("/{id}", h.ServeDetail)
		ar.Delete("/{id}", h.HandleDelete)
	})

	return r
}

// internal/app/features/users/routes.go
package users

import (
	"github.com/go-chi/chi/v5"

	"github.com/dalemusser/gatherhub/internal/app/system/auth"
)

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	// ACCOUNT
	r.Post("/register", h.HandleRegister)
	r.Post("/login", h.HandleLogin)

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)

		// SESSION
		pr.Post("/refresh", h.HandleRefresh)
		pr.Delete("/logout", h.HandleLogout)

		// PROFILE
		pr.Get("/profile", h.ServeProfile)
		pr.Patch("/profile", h.HandleUpdateProfile)
		pr.Delete("/profile", h.HandleDeleteAccount)

		// ORGANIZED GROUPS
		pr.Get("/organizerGroup", h.ServeOrganizedGroups)
		pr.Post("/organizerGroup", h.HandleCreateGroup)
		pr.Patch("/organizerGroup/{groupID}", h.HandleUpdateGroup)
		pr.Delete("/organizerGroup/{groupID}", h.HandleDeleteGroup)
		pr.Delete("/organizerGroup/{groupID}/member/{userID}", h.HandleKickMember)

		// JOINED GROUPS
		pr.Get("/joinGroup", h.ServeJoinedGroups)
		pr.Post("/joinGroup/{groupID}", h.HandleJoinGroup)
		pr.Delete("/joinGroup/{groupID}", h.HandleLeaveGroup)

		// FAVORITES
		pr.Get("/favoriteGroup", h.ServeFavoriteGroups)
		pr.Post("/favoriteGroup/{groupID}", h.HandleAddFavorite)
		pr.Delete("/favoriteGroup/{groupID}", h.HandleRemoveFavorite)

		// OTHER USERS
		pr.Get("/{id}", h.ServeUser)
	})

	// ADMIN
	r.Group(func(ar chi.Router) {
		ar.Use(auth.RequireAdmin)
		ar.Get("/all", h.ServeAllUsers)
		ar.Delete("/{id}", h.HandleAdminDeleteUser)
	})

	return r
}

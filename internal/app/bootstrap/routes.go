// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	chatsfeature "github.com/dalemusser/gatherhub/internal/app/features/chats"
	contactformsfeature "github.com/dalemusser/gatherhub/internal/app/features/contactforms"
	groupsfeature "github.com/dalemusser/gatherhub/internal/app/features/groups"
	healthfeature "github.com/dalemusser/gatherhub/internal/app/features/health"
	uploadsfeature "github.com/dalemusser/gatherhub/internal/app/features/uploads"
	usersfeature "github.com/dalemusser/gatherhub/internal/app/features/users"
	chatstore "github.com/dalemusser/gatherhub/internal/app/store/chats"
	contactformstore "github.com/dalemusser/gatherhub/internal/app/store/contactforms"
	groupstore "github.com/dalemusser/gatherhub/internal/app/store/groups"
	membershipstore "github.com/dalemusser/gatherhub/internal/app/store/memberships"
	userstore "github.com/dalemusser/gatherhub/internal/app/store/users"
	"github.com/dalemusser/gatherhub/internal/app/system/auth"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. It builds the stores, the bearer-token
// middleware, and mounts one feature router per API area.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.MongoDatabase

	users := userstore.New(db)
	groups := groupstore.New(db)
	memberships := membershipstore.New(db)
	chats := chatstore.New(db)
	forms := contactformstore.New(db)

	tokens := auth.NewTokenManager(appCfg.TokenSecret)
	authMW := &auth.Middleware{Tokens: tokens, Users: users, Log: logger}

	r := chi.NewRouter()

	// Global auth middleware: resolves the bearer token, if any, and loads
	// the user into the request context. Routes that require a signed-in
	// user layer auth.RequireSignedIn on top.
	r.Use(authMW.LoadTokenUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Get("/health", healthHandler.Serve)

	// Uploaded images with pre-compressed file support (gzip/brotli)
	r.Handle(appCfg.UploadURL+"/*", fileserver.Handler(appCfg.UploadURL, appCfg.UploadDir))

	// Accounts, sessions, and memberships
	usersHandler := usersfeature.NewHandler(users, groups, memberships, tokens, logger)
	r.Mount("/user", usersfeature.Routes(usersHandler))

	// Public group catalog, message boards, and admin moderation
	groupsHandler := groupsfeature.NewHandler(groups, memberships, logger)
	r.Mount("/group", groupsfeature.Routes(groupsHandler))

	// Member-gated chat rooms
	chatsHandler := chatsfeature.NewHandler(chats, logger)
	r.Mount("/chat", chatsfeature.Routes(chatsHandler))

	// Contact forms
	formsHandler := contactformsfeature.NewHandler(forms, logger)
	r.Mount("/contactForm", contactformsfeature.Routes(formsHandler))

	// Image uploads
	uploadsHandler := uploadsfeature.NewHandler(appCfg.UploadDir, appCfg.UploadURL, logger)
	r.Mount("/upload", uploadsfeature.Routes(uploadsHandler))

	return r, nil
}

package routes

import (
	"net/http"

	"portfolio-service/config"
	"portfolio-service/handlers"
	"portfolio-service/middleware"
	"portfolio-service/views"

	gorillaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

// Handlers groups everything SetupRoutes mounts.
type Handlers struct {
	Site    *handlers.SiteHandler
	Auth    *handlers.AuthHandler
	Admin   *handlers.AdminHandler
	Chat    *handlers.ChatHandler
	Contact *handlers.ContactHandler
	Upload  *handlers.UploadHandler
}

const (
	entityPattern = "{entity:[a-z-]+}"
	idPattern     = "{id:[0-9]+}"
)

func SetupRoutes(cfg config.Config, h Handlers) *mux.Router {
	router := mux.NewRouter()
	eh := middleware.ErrorHandler

	router.HandleFunc("/", eh(h.Site.IndexHandler)).Methods("GET")
	router.PathPrefix("/static/").Handler(http.StripPrefix("/static/", views.Static())).Methods("GET")

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/content", eh(h.Site.ContentHandler)).Methods("GET")
	api.HandleFunc("/hero/frames", eh(h.Site.HeroFramesHandler)).Methods("GET")
	api.HandleFunc("/chat", eh(h.Chat.PreflightHandler)).Methods("OPTIONS")
	api.HandleFunc("/chat", eh(h.Chat.ChatHandler)).Methods("POST")
	api.HandleFunc("/contact", eh(h.Contact.ContactHandler)).Methods("POST")
	api.HandleFunc("/v1/health", eh(handlers.HealthHandler)).Methods("GET")

	api.HandleFunc("/v1/admin/login", eh(h.Auth.LoginHandler)).Methods("POST")
	api.HandleFunc("/v1/admin/refresh", eh(h.Auth.RefreshHandler)).Methods("POST")
	api.HandleFunc("/v1/admin/logout", eh(h.Auth.LogoutHandler)).Methods("POST")

	admin := api.PathPrefix("/v1/admin").Subrouter()
	admin.Use(middleware.AdminOnly(cfg))
	admin.HandleFunc("/refresh-content", eh(h.Admin.RefreshContentHandler)).Methods("POST")
	admin.HandleFunc("/profile", eh(h.Admin.UpdateProfileHandler)).Methods("PUT")
	admin.HandleFunc("/hidden-goals", eh(h.Admin.HiddenGoalsHandler)).Methods("GET")
	admin.HandleFunc("/uploads/{kind}", eh(h.Upload.UploadHandler)).Methods("POST")
	admin.HandleFunc("/"+entityPattern, eh(h.Admin.CreateHandler)).Methods("POST")
	admin.HandleFunc("/"+entityPattern+"/"+idPattern, eh(h.Admin.UpdateHandler)).Methods("PUT")
	admin.HandleFunc("/"+entityPattern+"/"+idPattern, eh(h.Admin.DeleteHandler)).Methods("DELETE")

	return router
}

// WithCORS applies the configured origin policy to everything except the
// chat endpoint, which answers any origin itself.
func WithCORS(cfg config.Config, router http.Handler) http.Handler {
	cors := gorillaHandlers.CORS(
		gorillaHandlers.AllowedOrigins(cfg.CORS.AllowedOrigins),
		gorillaHandlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		gorillaHandlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-Requested-With"}),
		gorillaHandlers.AllowCredentials(),
	)(router)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/chat" {
			router.ServeHTTP(w, r)
			return
		}
		cors.ServeHTTP(w, r)
	})
}

package httpapi

import (
	"net/http"
	"strings"
	"time"

	"portfolio-backend-go/internal/config"
	"portfolio-backend-go/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Server struct {
	DB         *sqlx.DB
	Config     config.Config
	Tokens     services.TokenService
	MetricsHub *services.MetricsHub
	Storage    services.Storage
}

func NewServer(db *sqlx.DB, cfg config.Config, hub *services.MetricsHub, storage services.Storage) *Server {
	tokens := services.TokenService{
		Secret:     []byte(cfg.JWTSecret),
		Issuer:     cfg.JWTIssuer,
		TTL:        time.Duration(cfg.TokenTTLHours) * time.Hour,
		BcryptCost: cfg.BcryptCost,
	}
	return &Server{
		DB:         db,
		Config:     cfg,
		Tokens:     tokens,
		MetricsHub: hub,
		Storage:    storage,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(Recoverer)
	r.Use(RequestLogger)
	if len(s.Config.CorsOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.Config.CorsOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	r.Handle("/metrics", promhttp.Handler())
	if s.Config.UploadBackend != "s3" {
		prefix := "/" + strings.Trim(s.Config.UploadURLPrefix, "/")
		r.Handle(prefix+"/*", http.StripPrefix(prefix+"/", http.FileServer(http.Dir(s.Config.UploadDir))))
	}

	r.Route("/api", func(api chi.Router) {
		api.Get("/health", s.Health)

		api.Post("/auth/register", s.Register)
		api.Post("/auth/login", s.Login)
		api.Post("/auth/logout", s.Logout)
		api.With(Authenticated(s.Tokens)).Get("/auth/me", s.Me)

		api.Get("/categories", s.ListCategories)
		api.Get("/tags", s.ListTags)
		api.Get("/projects", s.ListProjects)
		api.Get("/projects/{projectId}", s.GetProject)
		api.Post("/contact", s.SubmitContact)

		api.Route("/blog-posts", func(posts chi.Router) {
			posts.Get("/", s.ListBlogPosts)
			posts.Get("/{ref}", s.ReadBlogPost)
			// The web client writes through the public path; the gate still applies.
			posts.Group(func(admin chi.Router) {
				admin.Use(Authenticated(s.Tokens), AdminOnly)
				admin.Post("/", s.CreateBlogPost)
				admin.Put("/{ref}", s.UpdateBlogPost)
				admin.Delete("/{ref}", s.DeleteBlogPost)
			})
		})

		api.Group(func(authed chi.Router) {
			authed.Use(Authenticated(s.Tokens))
			authed.Get("/user/settings", s.GetSettings)
			authed.Put("/user/settings", s.UpdateSettings)
			authed.Post("/upload", s.Upload)
		})

		api.Route("/admin", func(admin chi.Router) {
			// Browsers cannot set headers on a websocket handshake, so the
			// socket checks a query-string token itself.
			admin.Get("/metrics/ws", s.MetricsSocket)

			admin.Group(func(admin chi.Router) {
				admin.Use(Authenticated(s.Tokens))
				admin.Use(AdminOnly)
				admin.Get("/dashboard", s.Dashboard)
				admin.Get("/metrics/latest", s.LatestMetrics)
				admin.Route("/users", func(users chi.Router) {
					users.Get("/", s.ListUsers)
					users.Post("/", s.CreateUser)
					users.Put("/{userId}", s.UpdateUser)
					users.Put("/{userId}/role", s.UpdateUserRole)
					users.Delete("/{userId}", s.DeleteUser)
				})
				admin.Route("/categories", func(categories chi.Router) {
					categories.Get("/", s.ListCategories)
					categories.Post("/", s.CreateCategory)
					categories.Put("/{categoryId}", s.UpdateCategory)
					categories.Delete("/{categoryId}", s.DeleteCategory)
				})
				admin.Route("/projects", func(projects chi.Router) {
					projects.Get("/", s.ListProjects)
					projects.Post("/", s.CreateProject)
					projects.Get("/{projectId}", s.GetProject)
					projects.Put("/{projectId}", s.UpdateProject)
					projects.Delete("/{projectId}", s.DeleteProject)
				})
				admin.Route("/blog-posts", func(posts chi.Router) {
					posts.Get("/", s.AdminListBlogPosts)
					posts.Post("/", s.CreateBlogPost)
					posts.Get("/{ref}", s.AdminGetBlogPost)
					posts.Put("/{ref}", s.UpdateBlogPost)
					posts.Delete("/{ref}", s.DeleteBlogPost)
				})
				admin.Route("/contact-messages", func(messages chi.Router) {
					messages.Get("/", s.ListContactMessages)
					messages.Put("/{messageId}/read", s.MarkContactMessageRead)
				})
			})
		})
	})
	return r
}

func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	if err := s.DB.PingContext(r.Context()); err != nil {
		WriteError(w, http.StatusServiceUnavailable, "Database unavailable")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

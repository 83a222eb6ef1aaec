package httpserver

import (
	"net/http"
	"os"
	"strings"

	"airdemo/internal/ai"
	"airdemo/internal/auth"
	"airdemo/internal/config"
	"airdemo/internal/httpserver/handlers"
	"airdemo/internal/invite"
	"airdemo/internal/metrics"
	"airdemo/internal/models"
	"airdemo/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Deps is everything the handlers need.
type Deps struct {
	Config   *config.Config
	Store    *store.Store
	Auth     *auth.Service
	Invites  *invite.Service
	Chat     ai.Chat
	Vision   ai.Vision
	Recorder *ai.Recorder
	Metrics  *metrics.Metrics
}

func NewRouter(d Deps, lg *zap.SugaredLogger) http.Handler {
	st := d.Store
	appURL := d.Config.AppURL

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer, middleware.Logger)
	r.Use(d.Metrics.Middleware)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Handle("/metrics", d.Metrics.Handler())
	if dir, path := d.Config.Upload.Dir, strings.TrimRight(d.Config.Upload.Path, "/"); dir != "" && path != "" {
		r.Handle(path+"/*", http.StripPrefix(path, http.FileServer(filesOnly{http.Dir(dir)})))
	}

	r.Route("/api", func(api chi.Router) {
		api.Post("/auth/login", handlers.Login(d.Auth, lg))
		api.Get("/demo", handlers.PublicDemos(st, lg))
		api.Get("/demo/{slug}", handlers.PublicDemo(st, lg))
		api.Get("/tools", handlers.PublicTools(st, appURL, lg))
		api.Get("/tools/{id}", handlers.PublicTool(st, appURL, lg))
		api.Get("/invite/{token}", handlers.GetInvite(d.Invites, lg))
		api.Post("/invite/{token}", handlers.AcceptInvite(d.Invites, d.Metrics, lg))
		api.Post("/ai/chat", handlers.Chat(d.Chat, d.Metrics, lg))
		api.Post("/ai/vision", handlers.Vision(d.Vision, d.Recorder, d.Metrics, lg))

		api.Group(func(protected chi.Router) {
			protected.Use(auth.JWTAuth(d.Auth))
			protected.Get("/auth/me", handlers.Me(st, lg))
			protected.Post("/auth/logout", handlers.Logout(d.Auth, lg))

			protected.Route("/admin", func(admin chi.Router) {
				admin.Use(auth.RequirePermission(d.Auth, models.RoleAdmin, models.PermissionAdminAccess))
				admin.Get("/demo", handlers.ListDemos(st, lg))
				admin.Post("/demo", handlers.CreateDemo(st, lg))
				admin.Get("/demo/{id}", handlers.GetDemo(st, lg))
				admin.Put("/demo/{id}", handlers.UpdateDemo(st, lg))
				admin.Delete("/demo/{id}", handlers.DeleteDemo(st, lg))
				admin.Get("/demo/{id}/flow", handlers.GetFlow(st, lg))
				admin.Post("/demo/{id}/flow", handlers.SaveFlow(st, lg))

				admin.Get("/tools", handlers.ListTools(st, lg))
				admin.Post("/tools", handlers.CreateTool(st, lg))
				admin.Get("/tools/{id}", handlers.GetTool(st, lg))
				admin.Put("/tools/{id}", handlers.UpdateTool(st, lg))
				admin.Delete("/tools/{id}", handlers.DeleteTool(st, lg))

				admin.Post("/invites", handlers.CreateInvite(d.Invites, d.Metrics, lg))
				admin.Get("/users", handlers.ListAdmins(st, lg))
				admin.Get("/ai-tasks", handlers.ListAITasks(st, lg))
			})
		})
	})

	// Form posts from the admin pages.
	r.Group(func(forms chi.Router) {
		forms.Use(auth.JWTAuth(d.Auth))
		forms.Use(auth.RequirePermission(d.Auth, models.RoleAdmin, models.PermissionAdminAccess))
		forms.Post("/admin/demos", handlers.SubmitDemoForm(st, lg))
		forms.Post("/admin/demos/{id}", handlers.SubmitDemoForm(st, lg))
	})
	return r
}

// filesOnly hides directories so the upload tree cannot be listed.
type filesOnly struct{ fs http.FileSystem }

func (f filesOnly) Open(name string) (http.File, error) {
	file, err := f.fs.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}
	if info.IsDir() {
		file.Close()
		return nil, os.ErrNotExist
	}
	return file, nil
}

package routes

import (
	"net/http"
	"time"

	"github.com/campusmedia/gallery/internal/app"
	"github.com/campusmedia/gallery/internal/handler"
	"github.com/campusmedia/gallery/internal/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	health := handler.NewHealthHandler(app.DB)
	resources := handler.NewResourceHandler(app.ResourceService, app.DownloadService, app.BookmarkService)
	me := handler.NewMeHandler(app.BookmarkService, app.DownloadService)
	admin := handler.NewAdminHandler(app.AuthService, app.ResourceService, app.Cfg.MaxUploadSize)

	mux := http.NewServeMux()

	// ============================================================================
	// OPERATIONS
	// ============================================================================

	mux.HandleFunc("GET /healthz", health.Health)
	mux.Handle("GET /metrics", promhttp.Handler())

	// ============================================================================
	// CATALOG
	// ============================================================================

	mux.HandleFunc("GET /api/resources", resources.List)
	mux.HandleFunc("GET /api/resources/{id}", resources.Show)
	mux.HandleFunc("POST /api/resources/{id}/download", resources.Download)
	mux.HandleFunc("GET /api/facets", resources.Facets)

	// ============================================================================
	// VISITOR STATE (/api/me/*)
	// ============================================================================

	mux.HandleFunc("GET /api/me/bookmarks", me.Bookmarks)
	mux.HandleFunc("POST /api/me/bookmarks/{id}", me.ToggleBookmark)
	mux.HandleFunc("GET /api/me/downloads", me.Downloads)
	mux.HandleFunc("DELETE /api/me/downloads", me.ClearDownloads)

	// ============================================================================
	// ADMIN (/api/admin/*)
	// ============================================================================

	loginLimit := app.Cfg.LoginRateLimit
	if loginLimit <= 0 {
		loginLimit = 5
	}
	rateLimiter := middleware.RateLimit(middleware.NewRateLimiter(loginLimit, time.Minute))

	mux.HandleFunc("POST /api/admin/login", rateLimiter(admin.Login))
	mux.HandleFunc("POST /api/admin/resources", middleware.RequireAdmin(admin.Upload))
	mux.HandleFunc("DELETE /api/admin/resources/{id}", middleware.RequireAdmin(admin.Remove))

	return middleware.Chain(mux,
		middleware.RequestLogging,
		middleware.Config(app.Cfg),
		middleware.Visitor(app.Cfg.Secure()),
		middleware.AdminAuth(app.AuthService),
	)
}

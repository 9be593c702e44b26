package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/jeycentre/care-center-backend/internal/attendance"
	"github.com/jeycentre/care-center-backend/internal/auth"
	"github.com/jeycentre/care-center-backend/internal/branch"
	"github.com/jeycentre/care-center-backend/internal/leave"
	"github.com/jeycentre/care-center-backend/internal/transport/middleware"
	"github.com/jeycentre/care-center-backend/internal/transport/openapi"
	"github.com/jeycentre/care-center-backend/internal/transport/swagger"
	"github.com/jeycentre/care-center-backend/internal/user"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

type Handlers struct {
	Auth       *auth.Handler
	Branch     *branch.Handler
	User       *user.Handler
	Attendance *attendance.Handler
	Leave      *leave.Handler
}

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, h Handlers, validator *openapi.Validator, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	// Apply global middleware
	router.Use(middleware.CORS)
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))
	if validator != nil {
		router.Use(validator.Middleware)
	}

	// Serve OpenAPI spec at root (outside API prefix)
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	// Swagger UI route at root
	router.Handle("/swagger/*", swagger.Handler())

	// Mount API under /api/v1 to match OpenAPI basePath
	router.Route("/api/v1", func(r chi.Router) {
		// Health check routes
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		// Auth routes
		r.Route("/auth", func(sr chi.Router) {
			sr.Post("/login", h.Auth.Login)
			sr.Post("/refresh", h.Auth.RefreshToken)
			sr.Post("/logout", h.Auth.Logout)
		})

		// The kiosk posts scans with only the QR token as credential.
		r.Post("/attendance/scan", h.Attendance.Scan)

		// Protected routes that require authentication
		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)

			// Current user
			pr.Get("/users/me", h.User.GetProfile)
			pr.Patch("/users/me", h.User.UpdateProfile)

			// Branch routes: reads for everyone, writes superadmin only
			pr.Route("/branches", func(br chi.Router) {
				br.Get("/", h.Branch.GetBranches)
				br.Get("/{id}", h.Branch.GetBranch)

				br.Group(func(ar chi.Router) {
					ar.Use(h.Auth.RequireRoles(auth.RoleSuperadmin))
					ar.Post("/", h.Branch.CreateBranch)
					ar.Put("/{id}", h.Branch.UpdateBranch)
					ar.Delete("/{id}", h.Branch.DeleteBranch)
				})
			})

			// User administration (hr/superadmin)
			pr.Route("/users", func(ur chi.Router) {
				ur.Use(h.Auth.RequireRoles(auth.RoleHR, auth.RoleSuperadmin))
				ur.Get("/", h.User.ListEmployees)
				ur.Post("/", h.User.CreateEmployee)
				ur.Get("/{id}", h.User.GetEmployee)
				ur.Patch("/{id}", h.User.UpdateEmployee)
				ur.Delete("/{id}", h.User.DeactivateEmployee)
			})

			// Attendance routes
			pr.Route("/attendance", func(ar chi.Router) {
				ar.Get("/qr-code", h.Attendance.GetQRCode)
				ar.Post("/checkout", h.Attendance.Checkout)
				ar.Get("/today", h.Attendance.Today)
				ar.Get("/", h.Attendance.ListRecords)

				ar.Group(func(mr chi.Router) {
					mr.Use(h.Auth.RequireRoles(auth.RoleHR, auth.RoleSuperadmin))
					mr.Delete("/{id}", h.Attendance.DeleteRecord)
				})

				ar.Route("/corrections", func(cr chi.Router) {
					cr.Post("/", h.Attendance.RequestCorrection)
					cr.Get("/", h.Attendance.ListCorrections)

					cr.Group(func(dr chi.Router) {
						dr.Use(h.Auth.RequireRoles(auth.RoleSupervisor, auth.RoleHR, auth.RoleSuperadmin))
						dr.Patch("/{id}/decide", h.Attendance.DecideCorrection)
					})
				})
			})

			// Leave routes
			pr.Route("/leaves", func(lr chi.Router) {
				lr.Post("/", h.Leave.Apply)
				lr.Get("/", h.Leave.List)
				lr.Get("/{id}", h.Leave.Get)

				lr.Group(func(dr chi.Router) {
					dr.Use(h.Auth.RequireRoles(auth.RoleSupervisor, auth.RoleHR, auth.RoleSuperadmin))
					dr.Patch("/{id}/decide", h.Leave.Decide)
				})
			})

			// Dashboard (supervisor/hr/superadmin)
			pr.Group(func(dr chi.Router) {
				dr.Use(h.Auth.RequireRoles(auth.RoleSupervisor, auth.RoleHR, auth.RoleSuperadmin))
				dr.Get("/dashboard", h.Attendance.Dashboard)
			})
		})
	})
}

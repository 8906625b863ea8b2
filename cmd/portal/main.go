package main

import (
	"context"
	"log"
	"net/http"
	"time"

	api "github.com/classbridge/portal/internal/api/http"
	"github.com/classbridge/portal/internal/auth"
	"github.com/classbridge/portal/internal/cbt"
	"github.com/classbridge/portal/internal/config"
	"github.com/classbridge/portal/internal/db"
	"github.com/classbridge/portal/internal/portal"
	"github.com/classbridge/portal/internal/rbac"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}

	store := cbt.NewSQLStore(dbh)
	engine := cbt.NewEngine(store, store, cbt.SystemClock())
	pages := portal.NewStore(dbh)
	authSvc := auth.NewAuthService(cfg.AuthSecret)

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/auth/login", auth.LoginHandler(authSvc, dbh))

	// Protected API (JWT -> role in context -> RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))

		// CBT
		pr.With(rbac.Require("cbt:attempt")).
			Post("/tests/{testID}/attempt", api.BeginAttemptHandler(engine))
		pr.With(rbac.Require("cbt:submit")).
			Post("/tests/{testID}/attempt/{attemptID}/submit", api.SubmitAttemptHandler(engine))

		// Portal pages
		pr.With(rbac.Require("dashboard:view")).
			Get("/me/dashboard", api.DashboardHandler(pages))
		pr.With(rbac.RequireAny("results:view-own", "results:view-all")).
			Get("/me/results", api.ResultsHandler(pages))
		pr.With(rbac.Require("attendance:view-own")).
			Get("/me/attendance", api.AttendanceHandler(pages))
		pr.With(rbac.Require("fees:view-own")).
			Get("/me/fees", api.FeeReceiptsHandler(pages))
		pr.With(rbac.Require("news:view")).
			Get("/news", api.NewsHandler(pages))
		pr.With(rbac.Require("photos:view")).
			Get("/me/classmates", api.DirectoryHandler(pages))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	log.Printf("listening on %s (db=%s)", cfg.HTTPAddr, cfg.DBDriver)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}

package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"tenderhub/db"
	"tenderhub/db/migrations"
	"tenderhub/internal/archiver"
	"tenderhub/internal/config"
	"tenderhub/internal/handlers"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	dbConn, err := sqlx.Connect("postgres", cfg.PostgresConn)
	if err != nil {
		log.Fatalf("Cannot connect to DB: %v", err)
	}
	defer dbConn.Close()

	if err := migrations.Run(dbConn.DB); err != nil {
		log.Fatalf("migrations: %v", err)
	}

	store := db.NewStorage(dbConn)
	h := handlers.NewHandler(store, cfg.JWTSecret)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Фоновая архивация просроченных тендеров
	arch := archiver.New(store, cfg.ArchiveInterval)
	go arch.Run(ctx)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/ping", h.PingHandler)
		r.Post("/auth/signup", h.SignupHandler)
		r.Post("/auth/login", h.LoginHandler)

		r.Group(func(r chi.Router) {
			r.Use(h.AuthMiddleware)
			// тендеры
			r.Post("/tenders", h.CreateTenderHandler)
			r.Get("/tenders/my-tenders", h.GetUserTendersHandler)
			r.Get("/tenders/available-tenders", h.GetAvailableTendersHandler)
			r.Get("/tenders/admin/all-tenders", h.GetAllTendersHandler)
			r.Patch("/tenders/{tenderId}/status", h.UpdateTenderStatusHandler)
			r.Get("/tenders/{tenderId}", h.GetTenderHandler)
			// предложения (bids)
			r.Post("/bids", h.CreateBidHandler)
			r.Get("/bids/my-bids", h.GetUserBidsHandler)
			r.Get("/bids/tender/{tenderId}", h.GetTenderBidsHandler)
			// оценки
			r.Post("/evaluations", h.CreateEvaluationHandler)
			r.Get("/evaluations/my-evaluations", h.GetMyEvaluationsHandler)
			r.Get("/evaluations/bid/{bidId}", h.GetBidEvaluationsHandler)
			// победители
			r.Post("/winners", h.SelectWinnerHandler)
			r.Get("/winners", h.GetAllWinnersHandler)
			r.Get("/winners/tender/{tenderId}", h.GetTenderWinnerHandler)
			// администрирование
			r.Get("/admin/users", h.ListUsersHandler)
			r.Patch("/admin/users/{userId}", h.UpdateUserHandler)
			r.Delete("/admin/users/{userId}", h.DeleteUserHandler)
		})
	})

	srv := &http.Server{
		Addr:    cfg.ServerAddress,
		Handler: r,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	log.Printf("Starting server on %s", cfg.ServerAddress)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server: %v", err)
	}
	log.Print("Server stopped")
}

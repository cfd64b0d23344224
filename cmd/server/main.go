package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/go-chi/chi/v5"

	"github.com/plankcoach/achievement-service/internal/achievement"
	"github.com/plankcoach/achievement-service/internal/auth"
	"github.com/plankcoach/achievement-service/internal/config"
	"github.com/plankcoach/achievement-service/internal/httpapi"
	"github.com/plankcoach/achievement-service/internal/logging"
	"github.com/plankcoach/achievement-service/internal/server"
	"github.com/plankcoach/achievement-service/internal/store/memory"
	"github.com/plankcoach/achievement-service/internal/workout"
)

func main() {
	ctx := context.Background()
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Errorf("config error: %w", err))
	}

	logger := logging.NewLogger("achievement-service")

	workoutRepo, achievementRepo, cleanup, err := newRepositories(ctx, cfg)
	if err != nil {
		panic(fmt.Errorf("repository init error: %w", err))
	}
	defer cleanup()

	clock := achievement.NewSystemClock()
	ids := achievement.NewUUIDGenerator()

	workoutService, err := workout.NewService(workoutRepo, clock, ids)
	if err != nil {
		panic(fmt.Errorf("workout service init error: %w", err))
	}

	achievementService, err := achievement.NewService(achievement.DefaultCatalog(), achievementRepo, clock, ids)
	if err != nil {
		panic(fmt.Errorf("achievement service init error: %w", err))
	}

	verifier, err := auth.NewVerifier(auth.Config{
		Mode:     cfg.Auth.Mode,
		JWKSURL:  cfg.Auth.JWKSURL,
		Audience: cfg.Auth.Audience,
		Issuer:   cfg.Auth.Issuer,
	})
	if err != nil {
		panic(fmt.Errorf("auth verifier error: %w", err))
	}

	router := server.NewRouter("achievement-service", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(verifier))

			httpapi.RegisterRoutes(r, workoutService, achievementService, logger)
		})
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	if err := server.Run(ctx, srv, logger); err != nil && !errors.Is(err, http.ErrServerClosed) {
		panic(err)
	}
}

func newRepositories(ctx context.Context, cfg config.Config) (workout.Repository, achievement.Repository, func(), error) {
	switch cfg.DataStore {
	case config.DataStoreFirestore:
		if cfg.Firestore.EmulatorHost != "" {
			if err := os.Setenv("FIRESTORE_EMULATOR_HOST", cfg.Firestore.EmulatorHost); err != nil {
				return nil, nil, nil, fmt.Errorf("set FIRESTORE_EMULATOR_HOST: %w", err)
			}
		}

		client, err := firestore.NewClient(ctx, cfg.GCPProjectID)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("firestore client: %w", err)
		}

		cleanup := func() {
			_ = client.Close()
		}
		return workout.NewFirestoreRepository(client), achievement.NewFirestoreRepository(client), cleanup, nil
	default:
		// One shared store so workout writes are visible to achievement reads.
		store := memory.NewStore()
		return store, store, func() {}, nil
	}
}

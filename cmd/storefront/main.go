package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"google.golang.org/api/option"

	"github.com/JaoPred0/Dinna-Fitness/internal/cart/cache"
	"github.com/JaoPred0/Dinna-Fitness/internal/cart/repository"
	"github.com/JaoPred0/Dinna-Fitness/internal/cart/service"
	"github.com/JaoPred0/Dinna-Fitness/internal/catalog"
	h "github.com/JaoPred0/Dinna-Fitness/internal/http"
	"github.com/JaoPred0/Dinna-Fitness/internal/identity"
	"github.com/JaoPred0/Dinna-Fitness/internal/siteconfig"
	"github.com/JaoPred0/Dinna-Fitness/pkg/config"
	"github.com/JaoPred0/Dinna-Fitness/pkg/logger"
	"github.com/JaoPred0/Dinna-Fitness/pkg/shutdown"
)

func main() {
	cfg := config.Load()
	log := logger.New(logger.Options{
		Service: "storefront",
		Env:     cfg.AppEnv,
		Level:   cfg.LogLevel,
	})

	ctx, stop := shutdown.WithSignals(context.Background())
	defer stop()

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.GoogleProjectID}, opts...)
	if err != nil {
		log.Error("failed to init firebase app", "error", err)
		os.Exit(1)
	}

	verifier, err := identity.NewFirebaseVerifier(ctx, app)
	if err != nil {
		log.Error("failed to init token verifier", "error", err)
		os.Exit(1)
	}

	fsClient, err := firestore.NewClient(ctx, cfg.GoogleProjectID, opts...)
	if err != nil {
		log.Error("failed to connect to firestore", "error", err)
		os.Exit(1)
	}
	defer fsClient.Close()

	catalogService := catalog.NewService(catalog.NewFirestoreRepository(fsClient))
	siteService := siteconfig.NewService(siteconfig.NewFirestoreRepository(fsClient))

	cartRepo, err := buildCartRepository(ctx, cfg, fsClient, log)
	if err != nil {
		log.Error("failed to init cart repository", "error", err)
		os.Exit(1)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	defer redisClient.Close()

	cartService := service.NewCartService(cartRepo, cache.NewRedisCache(redisClient), log)

	cartHandler := h.NewCartHandler(cartService, catalogService, cfg.RequestTimeout)
	productHandler := h.NewProductHandler(catalogService, cfg.RequestTimeout)
	siteHandler := h.NewSiteHandler(siteService, cfg.RequestTimeout)

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(h.RequestIDMiddleware)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))
	r.Use(h.AuthMiddleware(verifier))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		// Public storefront surface.
		r.Get("/products", productHandler.List)
		r.Get("/products/{id}", productHandler.Get)
		r.Get("/categories", productHandler.ListCategories)
		r.Get("/site", siteHandler.Get)

		r.Route("/cart", func(r chi.Router) {
			r.Use(h.RequireUser)
			r.Get("/", cartHandler.GetCart)
			r.Delete("/", cartHandler.ClearCart)
			r.Post("/items", cartHandler.AddItem)
			r.Put("/items/{product_id}", cartHandler.UpdateQuantity)
			r.Delete("/items/{product_id}", cartHandler.RemoveItem)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(h.RequireAdmin(cfg.AdminEmails))
			r.Post("/products", productHandler.Create)
			r.Put("/products/{id}", productHandler.Update)
			r.Delete("/products/{id}", productHandler.Delete)
			r.Post("/categories", productHandler.CreateCategory)
			r.Delete("/categories/{id}", productHandler.DeleteCategory)
			r.Put("/site/banners", siteHandler.UpdateBanners)
			r.Put("/site/navbar-banner", siteHandler.UpdateNavbarBanner)
		})
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(r, "storefront"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("storefront starting", "port", cfg.HTTPPort, "cart_backend", cfg.CartBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	log.Info("server exited")
}

// buildCartRepository picks the cart store. Firestore keeps everything in
// one project; Mongo matches deployments that already run it.
func buildCartRepository(ctx context.Context, cfg *config.Config, fsClient *firestore.Client, log *slog.Logger) (repository.CartRepository, error) {
	switch cfg.CartBackend {
	case "mongo":
		db, err := repository.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName)
		if err != nil {
			return nil, err
		}
		repo := repository.NewMongoRepository(db)
		if idx, ok := repo.(interface{ CreateIndexes(context.Context) error }); ok {
			if err := idx.CreateIndexes(ctx); err != nil {
				log.Warn("failed to create cart indexes", "error", err)
			}
		}
		return repo, nil
	default:
		return repository.NewFirestoreRepository(fsClient), nil
	}
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/kexshop/cart/internal/blob"
	"github.com/kexshop/cart/internal/cart"
	"github.com/kexshop/cart/internal/catalog"
	"github.com/kexshop/cart/internal/checkout"
	"github.com/kexshop/cart/internal/gateway"
	h "github.com/kexshop/cart/internal/http"
)

type Config struct {
	HTTPPort        string
	StorageBackend  string
	RedisAddr       string
	RedisPassword   string
	MongoURI        string
	MongoDBName     string
	PostgresHost    string
	PostgresPort    int
	PostgresUser    string
	PostgresPass    string
	PostgresDBName  string
	MigrationsPath  string
	CatalogBaseURL  string
	OrdersBaseURL   string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

func loadConfig() *Config {
	pgPort, err := strconv.Atoi(getEnv("POSTGRES_PORT", "5432"))
	if err != nil {
		pgPort = 5432
	}

	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		StorageBackend:  getEnv("STORAGE_BACKEND", "memory"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		MongoURI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName:     getEnv("MONGO_DB_NAME", "cartdb"),
		PostgresHost:    getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:    pgPort,
		PostgresUser:    getEnv("POSTGRES_USER", "postgres"),
		PostgresPass:    getEnv("POSTGRES_PASSWORD", "postgres"),
		PostgresDBName:  getEnv("POSTGRES_DB", "cartdb"),
		MigrationsPath:  getEnv("MIGRATIONS_PATH", "internal/blob/migrations"),
		CatalogBaseURL:  getEnv("CATALOG_BASE_URL", ""),
		OrdersBaseURL:   getEnv("ORDERS_BASE_URL", "http://localhost:3000"),
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	_ = godotenv.Load()

	log := zerolog.New(os.Stdout).With().Timestamp().Str("service", "cartd").Logger()
	cfg := loadConfig()
	ctx := context.Background()

	blobs, closeStore, err := buildBlobStore(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.StorageBackend).Msg("failed to set up storage backend")
	}
	defer closeStore()
	log.Info().Str("backend", cfg.StorageBackend).Msg("storage backend ready")

	store := cart.NewStore(ctx, blobs, log)

	var provider catalog.Provider
	if cfg.CatalogBaseURL != "" {
		provider = catalog.NewHTTPProvider(cfg.CatalogBaseURL, cfg.RequestTimeout)
		log.Info().Str("catalog", cfg.CatalogBaseURL).Msg("using HTTP catalog")
	} else {
		provider = catalog.NewStaticProvider(demoCatalog())
		log.Info().Msg("using built-in demo catalog")
	}

	orderGateway := gateway.NewHTTPGateway(cfg.OrdersBaseURL, cfg.RequestTimeout, log)
	checkoutService := checkout.NewService(store, orderGateway, checkout.DefaultShippingMethods(), log)

	cartHandler := h.NewCartHandler(store, provider, cfg.RequestTimeout)
	checkoutHandler := h.NewCheckoutHandler(checkoutService, cfg.RequestTimeout)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(h.RequestIDMiddleware)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Delete("/", cartHandler.ClearCart)
			r.Post("/items", cartHandler.AddItem)
			r.Put("/items/{product_id}", cartHandler.UpdateQuantity)
			r.Delete("/items/{product_id}", cartHandler.RemoveItem)
		})
		r.Route("/checkout", func(r chi.Router) {
			r.Get("/shipping-methods", checkoutHandler.ShippingMethods)
			r.Get("/quote", checkoutHandler.Quote)
			r.Post("/", checkoutHandler.PlaceOrder)
		})
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("cart service starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited")
}

func buildBlobStore(ctx context.Context, cfg *Config, log zerolog.Logger) (blob.Store, func(), error) {
	switch cfg.StorageBackend {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       0,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, nil, err
		}
		return blob.NewRedisStore(client), func() { client.Close() }, nil

	case "mongo":
		db, err := blob.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName)
		if err != nil {
			return nil, nil, err
		}
		return blob.NewMongoStore(db), func() { db.Client().Disconnect(ctx) }, nil

	case "postgres":
		cred := &blob.Credentials{
			Host:              cfg.PostgresHost,
			Port:              cfg.PostgresPort,
			User:              cfg.PostgresUser,
			Password:          cfg.PostgresPass,
			DBName:            cfg.PostgresDBName,
			MigrationsDirPath: cfg.MigrationsPath,
		}
		store, err := blob.NewPostgresStore(cred)
		if err != nil {
			return nil, nil, err
		}
		if err := store.RunMigrations(cred); err != nil {
			store.Close()
			return nil, nil, err
		}
		return store, func() { store.Close() }, nil

	case "memory":
		return blob.NewMemoryStore(), func() {}, nil

	default:
		log.Warn().Str("backend", cfg.StorageBackend).Msg("unknown storage backend, falling back to memory")
		return blob.NewMemoryStore(), func() {}, nil
	}
}

// demoCatalog mirrors the storefront's built-in product fixtures.
func demoCatalog() []catalog.Product {
	discount := decimal.NewFromFloat(899.99)
	return []catalog.Product{
		{
			ID:            "1",
			Name:          "iPhone 15 Pro",
			Price:         decimal.NewFromFloat(999.99),
			DiscountPrice: &discount,
			Stock:         25,
			Category:      "electronics",
			ImageURL:      "https://via.placeholder.com/300x300?text=iPhone+15+Pro",
		},
		{
			ID:       "2",
			Name:     "MacBook Air M2",
			Price:    decimal.NewFromFloat(1199.99),
			Stock:    10,
			Category: "electronics",
			ImageURL: "https://via.placeholder.com/300x300?text=MacBook+Air+M2",
		},
	}
}

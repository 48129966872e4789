package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/supabase-community/supabase-go"
	"go.uber.org/zap"

	"github.com/playbuni/backend/internal/config"
	"github.com/playbuni/backend/internal/handler"
	"github.com/playbuni/backend/internal/service/ai"
	chatservice "github.com/playbuni/backend/internal/service/chat"
	personaservice "github.com/playbuni/backend/internal/service/persona"
	"github.com/playbuni/backend/internal/service/subscription"
	"github.com/playbuni/backend/internal/store/blobstore"
	"github.com/playbuni/backend/internal/store/chatstore"
	"github.com/playbuni/backend/internal/store/personastore"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	// Relational store. A missing or broken Supabase configuration drops the
	// service into in-memory mode rather than preventing startup.
	var supaClient *supabase.Client
	if cfg.Database.Enabled() {
		supaClient, err = supabase.NewClient(cfg.Database.URL, cfg.Database.APIKey, nil)
		if err != nil {
			logger.Warn("supabase client init failed, using in-memory stores", zap.Error(err))
			supaClient = nil
		}
	} else {
		logger.Info("supabase not configured, using in-memory stores")
	}

	var chatStore chatstore.Store
	if supaClient != nil {
		chatStore = chatstore.NewSupabaseStore(supaClient, cfg.Chat.SessionMaxIdle, logger)
	} else {
		chatStore = chatstore.NewMemoryStore(cfg.Chat.SessionMaxIdle)
	}

	// Persona cache. Redis is authoritative for read-after-write; the memory
	// cache stands in when Redis is unreachable or unconfigured.
	var personaCache personastore.Cache
	cacheEnabled := false
	if cfg.Cache.Enabled() {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Cache.Addr,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unreachable, using in-memory persona cache", zap.Error(err))
			personaCache = personastore.NewMemoryCache(cfg.Chat.RecentPersonaCap)
		} else {
			personaCache = personastore.NewRedisCache(redisClient, cfg.Chat.RecentPersonaCap, logger)
			cacheEnabled = true
		}
	} else {
		logger.Info("redis not configured, using in-memory persona cache")
		personaCache = personastore.NewMemoryCache(cfg.Chat.RecentPersonaCap)
	}

	var personaDB personastore.Store
	if supaClient != nil {
		personaDB = personastore.NewSupabaseStore(supaClient, logger)
	}

	// Remote completion tier. Absence is not an error: the local generator
	// answers everything on its own.
	var completer chatservice.Completer
	var personaGen personaservice.Generator
	if cfg.AI.Enabled() {
		client, err := ai.NewClient(ctx, cfg.AI, cfg.Chat.HistoryLimit, logger)
		if err != nil {
			logger.Warn("ai client init failed, running fully local", zap.Error(err))
		} else {
			completer = client
			personaGen = client
			logger.Info("ai client initialized", zap.String("model", cfg.AI.Model))
		}
	} else {
		logger.Info("ai credentials not configured, running fully local")
	}

	var imageClient *ai.ImageClient
	if cfg.AI.ImageEnabled() {
		imageClient, err = ai.NewImageClient(cfg.AI, logger)
		if err != nil {
			logger.Warn("image client init failed, serving placeholders", zap.Error(err))
			imageClient = nil
		}
	}

	var uploader *blobstore.Uploader
	if supaClient != nil {
		uploader = blobstore.New(supaClient, cfg.Storage.Bucket, logger)
	}

	deps := handler.Deps{
		Chat:            chatservice.NewPipeline(completer, chatStore, logger),
		ChatStore:       chatStore,
		Personas:        personaservice.NewPipeline(personaGen, personaCache, personaDB, logger),
		Images:          imageClient,
		Uploader:        uploader,
		Subscriptions:   subscription.New(supaClient, logger),
		SessionListCap:  cfg.Chat.SessionListCap,
		DatabaseEnabled: supaClient != nil,
		CacheEnabled:    cacheEnabled,
		Logger:          logger,
	}

	startServer(ctx, cfg.Server, handler.NewRouter(deps), logger)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler, logger *zap.Logger) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	logger.Info("play buni backend listening", zap.String("addr", serverCfg.Addr))
	if err := runServer(ctx, srv); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

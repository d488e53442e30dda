package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/ramachandran-annadurai/patient-p1-sub001/internal/config"
	healthHandler "github.com/ramachandran-annadurai/patient-p1-sub001/internal/handler/health"
	pregnancyHandler "github.com/ramachandran-annadurai/patient-p1-sub001/internal/handler/pregnancy"
	"github.com/ramachandran-annadurai/patient-p1-sub001/internal/imaging"
	"github.com/ramachandran-annadurai/patient-p1-sub001/internal/knowledge"
	"github.com/ramachandran-annadurai/patient-p1-sub001/internal/knowledge/qdrantclient"
	"github.com/ramachandran-annadurai/patient-p1-sub001/internal/middleware"
	"github.com/ramachandran-annadurai/patient-p1-sub001/internal/patient"
	"github.com/ramachandran-annadurai/patient-p1-sub001/internal/personalization"
	"github.com/ramachandran-annadurai/patient-p1-sub001/internal/router"
	"github.com/ramachandran-annadurai/patient-p1-sub001/pkg/logger"
	"github.com/ramachandran-annadurai/patient-p1-sub001/pkg/metrics"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.New(nil)
	m := metrics.NewMetrics("pregnancy_api")

	qdrant, err := qdrantclient.New(qdrantclient.Config{
		URL:     cfg.Qdrant.URL,
		APIKey:  cfg.Qdrant.APIKey,
		Timeout: cfg.Qdrant.Timeout(),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize qdrant client")
	}

	var embedder knowledge.Embedder
	if cfg.OpenAI.APIKey != "" {
		embedder = knowledge.NewOpenAIEmbedder(cfg.OpenAI.APIKey, cfg.OpenAI.EmbeddingModel)
	} else {
		appLogger.Warn().Msg("no OpenAI key configured, using hashing embedder")
		embedder = knowledge.NewHashingEmbedder()
	}
	store := knowledge.NewStore(qdrant, cfg.Qdrant.Collection, embedder, m, appLogger)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := store.EnsureCollection(ctx); err != nil {
		appLogger.Warn().Err(err).Msg("vector collection not ready, continuing degraded")
	}
	cancel()

	provider := patient.NewBackendProvider(patient.Config{
		BaseURL: cfg.PatientBackend.URL,
		APIKey:  cfg.PatientBackend.APIKey,
		Timeout: cfg.PatientBackend.Timeout(),
	}, m, appLogger)

	var engineOpts []personalization.Option
	if cfg.OpenAI.EnableOverlay && cfg.OpenAI.APIKey != "" {
		engineOpts = append(engineOpts,
			personalization.WithLLMOverlay(personalization.NewOpenAIRewriter(cfg.OpenAI.APIKey, cfg.OpenAI.ChatModel)))
	}
	engine := personalization.NewEngine(store, provider, m, appLogger, engineOpts...)

	cascade := buildCascade(cfg, m, appLogger)

	pregnancyH := pregnancyHandler.NewHandler(engine, cascade, store)
	healthH := healthHandler.NewHandler(engine, cascade)

	r := router.NewRouter(pregnancyH, healthH, appLogger, router.Config{
		RateLimit:  rate.Limit(cfg.Server.RateLimitRPS),
		RateBurst:  cfg.Server.RateLimitBurst,
		CORSConfig: middleware.DefaultCORSConfig(),
		Timeout:    middleware.TimeoutConfig{Duration: cfg.Server.Timeout()},
	})
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.Timeout(),
		WriteTimeout: cfg.Server.Timeout(),
	}

	go func() {
		appLogger.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info().Msg("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
}

func buildCascade(cfg *config.Config, m *metrics.Metrics, appLogger zerolog.Logger) *imaging.Cascade {
	var generator imaging.ImageGenerator
	if cfg.OpenAI.APIKey != "" {
		generator = imaging.NewOpenAIImageGenerator(cfg.OpenAI.APIKey, cfg.OpenAI.ImageModel)
	}

	strategies := []imaging.Strategy{
		imaging.NewGenerativeStrategy(generator),
		imaging.NewPhotoStrategy(cfg.Images.PhotoBaseURL, cfg.Images.AttemptTimeout()),
		imaging.NewProceduralStrategy(),
		imaging.NewTextStrategy(),
	}

	var opts []imaging.Option
	if cfg.Redis.Enabled {
		l2, err := imaging.NewRedisArtifactStore(cfg.Redis.URL)
		if err != nil {
			appLogger.Warn().Err(err).Msg("redis artifact cache unavailable, using in-process cache only")
		} else {
			opts = append(opts, imaging.WithArtifactStore(l2))
		}
	}

	return imaging.NewCascade(imaging.Config{
		AttemptTimeout: cfg.Images.AttemptTimeout(),
		CacheTTL:       cfg.Images.CacheTTL(),
	}, strategies, m, appLogger, opts...)
}

// Command indexer seeds the vector collection with the built-in weekly
// reference catalog. Run it once against a fresh Qdrant instance, or
// again after catalog changes; indexing is idempotent per week.
package main

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ramachandran-annadurai/patient-p1-sub001/internal/config"
	"github.com/ramachandran-annadurai/patient-p1-sub001/internal/knowledge"
	"github.com/ramachandran-annadurai/patient-p1-sub001/internal/knowledge/qdrantclient"
	"github.com/ramachandran-annadurai/patient-p1-sub001/pkg/logger"
	"github.com/ramachandran-annadurai/patient-p1-sub001/pkg/metrics"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.New(nil)
	m := metrics.NewMetrics("pregnancy_indexer")

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

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	if err := store.EnsureCollection(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to ensure collection")
	}

	start := time.Now()
	indexed := 0
	for _, record := range knowledge.BuiltinCatalog() {
		if err := store.Upsert(ctx, record); err != nil {
			log.Fatal().Err(err).Int("week", record.Week).Msg("failed to index week")
		}
		indexed++
	}

	appLogger.Info().
		Int("weeks", indexed).
		Dur("elapsed", time.Since(start)).
		Msg("catalog indexed")
}

package cli

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/i474232898/apod-api/internal/apod"
	"github.com/i474232898/apod-api/internal/apod/nasa"
	"github.com/i474232898/apod-api/internal/config"
	"github.com/i474232898/apod-api/internal/logger"
	"github.com/i474232898/apod-api/internal/store"
)

// runtime is everything a command needs once configuration is loaded.
type runtime struct {
	cfg     *config.AppConfig
	log     *zap.SugaredLogger
	store   apod.Store
	service *apod.Service
}

func bootstrap(ctx context.Context) (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFile, logger.RunningInTTY())
	if err != nil {
		return nil, fmt.Errorf("failed to start logger: %w", err)
	}
	if cfg.NASAAPIKey == "DEMO_KEY" {
		log.Warnw("NASA_API_KEY not set; using the rate-limited DEMO_KEY")
	}

	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.Store.Driver, err)
	}
	log.Infow("store online", "driver", cfg.Store.Driver)

	// Shared HTTP client for outbound upstream calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}
	upstream := nasa.NewClient(httpClient, cfg.NASABaseURL, cfg.NASAAPIKey, cfg.UpstreamMaxRetries)

	return &runtime{
		cfg:     cfg,
		log:     log,
		store:   st,
		service: apod.NewService(st, upstream, apod.WithLogger(log)),
	}, nil
}

func (r *runtime) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := r.store.Close(ctx); err != nil {
		r.log.Warnw("store close failed", "err", err)
	}
	_ = r.log.Sync()
}

// internal/app/app.go
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/markdave123-py/sermonchat/internal/config"
	"github.com/markdave123-py/sermonchat/internal/core"
	db "github.com/markdave123-py/sermonchat/internal/core/database"
	"github.com/markdave123-py/sermonchat/internal/core/filestore"
	"github.com/markdave123-py/sermonchat/internal/core/kvstore"
	"github.com/markdave123-py/sermonchat/internal/core/llm"
	objectclient "github.com/markdave123-py/sermonchat/internal/core/object-client"
	"github.com/markdave123-py/sermonchat/internal/metrics"
	"github.com/markdave123-py/sermonchat/internal/services"
)

type App struct {
	Store   core.SermonStore
	LLM     *llm.GeminiLLM
	Metrics *metrics.Metrics
	Chat    *services.ChatService
	Sermons *services.SermonService
	Server  *Server
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	appCtx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	store, err := NewStore(appCtx, cfg)
	if err != nil {
		return nil, err
	}
	slog.Info("sermon store initialized", "backend", cfg.SermonStore, "writable", cfg.WritesEnabled())

	llmProvider, err := llm.NewGeminiLLM(appCtx, cfg.AIAPIKey, cfg.GenModel)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("couldn't initialize the completion client: %w", err)
	}
	if !llmProvider.Configured() {
		slog.Warn("GEMINI_API_KEY is not set; chat requests will fail until it is configured")
	}

	m := metrics.New()
	chat := services.NewChatService(llmProvider, m, cfg.CompletionTimeout)
	sermons := services.NewSermonService(store, m)

	return &App{
		Store:   store,
		LLM:     llmProvider,
		Metrics: m,
		Chat:    chat,
		Sermons: sermons,
		Server:  NewServer(cfg, chat, sermons, m),
	}, nil
}

// NewStore opens the backend selected by SERMON_STORE. Deployments with a
// read-only filesystem get a store whose writes fail with ErrStorageUnavailable.
func NewStore(ctx context.Context, cfg *config.Config) (core.SermonStore, error) {
	var (
		store core.SermonStore
		err   error
	)
	switch cfg.SermonStore {
	case config.StoreFile:
		var fs *filestore.FileStore
		fs, err = filestore.NewFileStore(cfg.SermonsFile)
		if err == nil && cfg.WritesEnabled() {
			err = fs.Init()
		}
		store = fs
	case config.StorePostgres:
		store, err = db.NewDatabaseClient(ctx, cfg.DatabaseURL)
	case config.StoreRedis:
		store, err = kvstore.NewRedisStore(ctx, cfg.RedisURL)
	case config.StoreS3:
		var client objectclient.ObjectAPI
		client, err = objectclient.NewS3Client(ctx, cfg)
		if err == nil {
			store, err = objectclient.NewS3SermonStore(client, cfg.BucketName, cfg.S3Key)
		}
	default:
		err = fmt.Errorf("unknown sermon store %q", cfg.SermonStore)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s sermon store: %w", cfg.SermonStore, err)
	}

	if !cfg.WritesEnabled() {
		slog.Warn("sermon writes are disabled on this deployment", "backend", cfg.SermonStore)
		return core.ReadOnly(store), nil
	}
	return store, nil
}

func (a *App) Close() error {
	var errs []error
	if a.LLM != nil {
		errs = append(errs, a.LLM.Close())
	}
	if a.Store != nil {
		errs = append(errs, a.Store.Close())
	}
	return errors.Join(errs...)
}

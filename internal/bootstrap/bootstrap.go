package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vporoshin/docflow/internal/config"
	"github.com/vporoshin/docflow/internal/core/domain"
	"github.com/vporoshin/docflow/internal/core/ports"
	"github.com/vporoshin/docflow/internal/core/usecase"
	"github.com/vporoshin/docflow/internal/infrastructure/classify"
	"github.com/vporoshin/docflow/internal/infrastructure/detect"
	"github.com/vporoshin/docflow/internal/infrastructure/dispatch"
	"github.com/vporoshin/docflow/internal/infrastructure/extractor/emaildoc"
	"github.com/vporoshin/docflow/internal/infrastructure/extractor/jsondoc"
	"github.com/vporoshin/docflow/internal/infrastructure/extractor/pdfdoc"
	"github.com/vporoshin/docflow/internal/infrastructure/intent"
	"github.com/vporoshin/docflow/internal/infrastructure/nlp"
	"github.com/vporoshin/docflow/internal/infrastructure/queue/nats"
	"github.com/vporoshin/docflow/internal/infrastructure/repository/memstore"
	"github.com/vporoshin/docflow/internal/infrastructure/repository/postgres"
	"github.com/vporoshin/docflow/internal/infrastructure/resilience"
	"github.com/vporoshin/docflow/internal/infrastructure/storage/localfs"
	"github.com/vporoshin/docflow/internal/observability/logging"
)

type App struct {
	Config config.Config
	Log    *slog.Logger

	Queue ports.MessageQueue
	Store ports.RecordStore

	IngestUC  *usecase.IngestDocumentUseCase
	ProcessUC *usecase.ProcessDocumentUseCase
	ReadUC    *usecase.ReadDocumentUseCase
	RouteUC   *usecase.RouteActionUseCase

	closeFn func()
}

func New(ctx context.Context, service string, cfg config.Config) (*App, error) {
	log := logging.NewJSONLogger(service, cfg.LogLevel)

	store, closeStore, err := newRecordStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		closeStore()
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	executor := resilience.NewExecutor(resilience.Config{})
	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		closeStore()
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	classifier := classify.NewService(detect.New(), intent.New())
	extractors := map[domain.Format]ports.Extractor{
		domain.FormatPDF:   pdfdoc.New(),
		domain.FormatEmail: emaildoc.New(),
		domain.FormatJSON:  jsondoc.New(),
	}
	dispatcher := dispatch.New(cfg.DispatchBaseURL, executor, log)

	var enricher ports.TextEnricher
	if cfg.EnrichmentEnabled {
		enricher = nlp.NewAnalyzer()
	}

	ingestUC := usecase.NewIngestDocumentUseCase(store, storage, queue)
	processUC := usecase.NewProcessDocumentUseCase(store, storage, classifier, extractors, enricher, log)
	readUC := usecase.NewReadDocumentUseCase(store)
	routeUC := usecase.NewRouteActionUseCase(store, dispatcher)

	return &App{
		Config: cfg,
		Log:    log,

		Queue: queue,
		Store: store,

		IngestUC:  ingestUC,
		ProcessUC: processUC,
		ReadUC:    readUC,
		RouteUC:   routeUC,

		closeFn: func() {
			queue.Close()
			closeStore()
		},
	}, nil
}

func newRecordStore(ctx context.Context, cfg config.Config) (ports.RecordStore, func(), error) {
	switch cfg.StoreBackend {
	case "postgres":
		db, err := postgres.OpenDB(cfg.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres: %w", err)
		}
		store := postgres.NewRecordStore(db)
		if err := store.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("ensure schema: %w", err)
		}
		return store, func() { _ = db.Close() }, nil
	case "memory", "":
		return memstore.New(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend: %s", cfg.StoreBackend)
	}
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}

package app

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/meanly/wordtrack/internal/adapter/evaluator"
	"github.com/meanly/wordtrack/internal/adapter/remote"
	adapterrepo "github.com/meanly/wordtrack/internal/adapter/repository"
	"github.com/meanly/wordtrack/internal/importer"
	"github.com/meanly/wordtrack/internal/infrastructure/config"
	"github.com/meanly/wordtrack/internal/infrastructure/database"
	"github.com/meanly/wordtrack/internal/infrastructure/scheduler"
	"github.com/meanly/wordtrack/internal/usecase"
)

// Container aggregates the application dependencies.
type Container struct {
	Config    *config.Config
	Logger    *logrus.Logger
	Progress  usecase.ProgressUsecase
	Sessions  usecase.SessionUsecase
	Sync      usecase.SyncUsecase
	Importer  *importer.Importer
	Scheduler *scheduler.Scheduler
}

// NewLogger builds the application logger from config.
func NewLogger(cfg *config.Config) (*logrus.Logger, error) {
	logger := logrus.New()
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}
	logger.SetLevel(level)
	if cfg.Log.Format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	return logger, nil
}

// Initialize builds the application container. The returned cleanup closes
// the database connection.
func Initialize() (*Container, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	logger, err := NewLogger(cfg)
	if err != nil {
		return nil, nil, err
	}

	db, cleanup, err := database.NewConnection(cfg)
	if err != nil {
		return nil, nil, err
	}

	records := adapterrepo.NewProgressRepository(db)
	items := adapterrepo.NewItemRepository(db)
	queue := adapterrepo.NewMutationQueueRepository(db)

	store := remote.NewClient(cfg.Remote.BaseURL, cfg.Remote.AuthToken)
	probe := remote.NewHealthProbe(cfg.Remote.BaseURL, cfg.Remote.HealthPath, cfg.Remote.ProbeTimeout)
	scorer := evaluator.NewHTTP(cfg.Evaluator.URL)

	fallback := usecase.FallbackConfig{
		WordPresencePoints:   cfg.Evaluator.WordPresencePoints,
		LengthPoints:         cfg.Evaluator.LengthPoints,
		PunctuationPoints:    cfg.Evaluator.PunctuationPoints,
		CapitalizationPoints: cfg.Evaluator.CapitalizationPoints,
		ContextPoints:        cfg.Evaluator.ContextPoints,
		MinWords:             cfg.Evaluator.MinWords,
		PassScore:            cfg.Evaluator.PassScore,
	}

	progress := usecase.NewProgressUsecase(records, items, queue)
	sessions := usecase.NewSessionUsecase(progress, scorer, fallback, cfg.Evaluator.Timeout, logger)
	sync := usecase.NewSyncUsecase(queue, records, store, probe, cfg.Remote.CallTimeout, logger)

	return &Container{
		Config:    cfg,
		Logger:    logger,
		Progress:  progress,
		Sessions:  sessions,
		Sync:      sync,
		Importer:  importer.New(items, importer.DefaultConfig()),
		Scheduler: scheduler.New(sync, cfg.User.ID, cfg.Sync.Interval, logger),
	}, cleanup, nil
}

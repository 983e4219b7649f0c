package jobs

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/thinkcol-info/kaishing-report-app/internal/config"
	"github.com/thinkcol-info/kaishing-report-app/internal/database"
)

// Scheduler is responsible for running background jobs
type Scheduler struct {
	dbManager *database.DBManager
	logger    *slog.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	enabled   bool
	isRunning bool
	cfg       *config.Config

	// Mutex to prevent concurrent job executions
	processingMutex sync.Mutex
	isProcessing    bool

	// Job instances
	importer *ImporterJob
	watcher  *SnapshotWatcher

	importTicker *time.Ticker
}

func NewScheduler(dbManager *database.DBManager, logger *slog.Logger) (*Scheduler, error) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := config.GetConfig()

	s := &Scheduler{
		dbManager: dbManager,
		logger:    logger,
		ctx:       ctx,
		cancel:    cancel,
		enabled:   true,
		isRunning: false,
		cfg:       cfg,
	}

	s.importer = NewImporterJob(dbManager, logger, cfg)

	return s, nil
}

// executeJobSafely runs a job only if no other job is currently executing
func (s *Scheduler) executeJobSafely(jobName string, jobFunc func() error) {
	s.processingMutex.Lock()
	if s.isProcessing {
		s.logger.Debug("Skipping job execution - previous job still running", slog.String("job", jobName))
		s.processingMutex.Unlock()
		return
	}
	s.isProcessing = true
	s.processingMutex.Unlock()

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Panic recovered in background job",
				slog.String("job", jobName),
				slog.Any("panic", r))
		}

		s.processingMutex.Lock()
		s.isProcessing = false
		s.processingMutex.Unlock()
	}()

	if err := jobFunc(); err != nil {
		s.logger.Error("Error executing job", slog.String("job", jobName), slog.Any("error", err))
	}
}

// Start begins all background jobs
func (s *Scheduler) Start() error {
	if !s.enabled {
		s.logger.Info("Background jobs are disabled.")
		return nil
	}

	if s.isRunning {
		s.logger.Info("Background jobs already running.")
		return nil
	}

	s.logger.Info("Starting background jobs...")

	s.isRunning = true

	s.startImportJob()
	s.startSnapshotWatcher()

	s.logger.Info("Background jobs started",
		slog.Bool("enabled", s.enabled),
		slog.Bool("isRunning", s.isRunning))

	return nil
}

func (s *Scheduler) startImportJob() {
	interval := time.Duration(s.cfg.ImportIntervalSeconds) * time.Second
	s.logger.Info("Starting snapshot import job", slog.Duration("interval", interval))
	s.importTicker = time.NewTicker(interval)

	go func() {
		// Run initial import so the first report has data
		s.logger.Info("Running initial snapshot import...")
		s.executeJobSafely("snapshot_importer", s.importer.Run)

		for {
			select {
			case <-s.importTicker.C:
				s.executeJobSafely("snapshot_importer", s.importer.Run)
			case <-s.ctx.Done():
				s.logger.Info("Snapshot import job stopped")
				return
			}
		}
	}()
}

func (s *Scheduler) startSnapshotWatcher() {
	if _, err := os.Stat(s.cfg.SnapshotDirectory); err != nil {
		s.logger.Warn("Snapshot directory not watchable, relying on interval imports only",
			slog.String("dir", s.cfg.SnapshotDirectory), slog.Any("error", err))
		return
	}

	watcher, err := NewSnapshotWatcher(s.cfg.SnapshotDirectory, 2*time.Second, s.logger, func() {
		s.executeJobSafely("snapshot_importer", s.importer.Run)
	})
	if err != nil {
		s.logger.Warn("Failed to start snapshot watcher, relying on interval imports only",
			slog.Any("error", err))
		return
	}

	s.watcher = watcher
	s.watcher.Start()
	s.logger.Info("Snapshot watcher started", slog.String("dir", s.cfg.SnapshotDirectory))
}

// Stop halts all background jobs.
// Implements cartridge.BackgroundWorker interface.
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping background jobs...")
	s.enabled = false

	if s.importTicker != nil {
		s.importTicker.Stop()
	}
	if s.watcher != nil {
		s.watcher.Stop()
	}

	s.cancel()
	s.isRunning = false
	s.logger.Info("Background jobs stopped")
}

// IsRunning returns whether jobs are currently running
func (s *Scheduler) IsRunning() bool {
	return s.isRunning
}

// ImportNow allows manual triggering of a snapshot import.
func (s *Scheduler) ImportNow() error {
	if !s.enabled {
		return nil
	}
	return s.importer.Run()
}

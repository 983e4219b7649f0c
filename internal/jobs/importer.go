package jobs

import (
	"log/slog"

	"github.com/thinkcol-info/kaishing-report-app/internal/config"
	"github.com/thinkcol-info/kaishing-report-app/internal/database"
	"github.com/thinkcol-info/kaishing-report-app/internal/records"
)

// ImporterJob reloads the snapshot directory into the database. The
// denylist is applied at import time so nothing downstream ever sees an
// excluded account.
type ImporterJob struct {
	dbManager *database.DBManager
	logger    *slog.Logger
	cfg       *config.Config
}

func NewImporterJob(dbManager *database.DBManager, logger *slog.Logger, cfg *config.Config) *ImporterJob {
	return &ImporterJob{
		dbManager: dbManager,
		logger:    logger,
		cfg:       cfg,
	}
}

// Run loads the snapshot files and swaps them into the store.
func (j *ImporterJob) Run() error {
	snap, err := records.LoadSnapshot(j.cfg.SnapshotDirectory, j.logger)
	if err != nil {
		return err
	}

	snap.ApplyDenylist(j.cfg.ExcludedAccounts)

	if snap.Empty() {
		j.logger.Info("Snapshot directory empty, keeping current data",
			slog.String("dir", j.cfg.SnapshotDirectory))
		return nil
	}

	if err := records.ReplaceSnapshot(j.dbManager.GetConnection(), snap); err != nil {
		return err
	}

	j.logger.Info("Snapshot imported",
		slog.Int("accounts", len(snap.Accounts)),
		slog.Int("usage_events", len(snap.UsageEvents)),
		slog.Int("transcriptions", len(snap.Transcriptions)),
		slog.Int("askai_questions", len(snap.AskAIQuestions)))
	return nil
}

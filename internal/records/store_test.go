package records_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/thinkcol-info/kaishing-report-app/internal/records"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "store_test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&records.Account{},
		&records.UsageEvent{},
		&records.Transcription{},
		&records.AskAIQuestion{},
	))
	return db
}

func TestReplaceSnapshotSwapsTables(t *testing.T) {
	db := openTestDB(t)

	first := &records.Snapshot{
		Accounts:    []records.Account{{Account: "old@kaishing.com.hk"}},
		UsageEvents: []records.UsageEvent{{Account: "old@kaishing.com.hk", UsageType: "generate_summary"}},
	}
	require.NoError(t, records.ReplaceSnapshot(db, first))

	second := &records.Snapshot{
		Accounts: []records.Account{
			{Account: "new@kaishing.com.hk", SubscriptionLevel: "pro"},
		},
		Transcriptions: []records.Transcription{{Account: "new@kaishing.com.hk"}},
		AskAIQuestions: []records.AskAIQuestion{{Account: "new@kaishing.com.hk", Question: "what changed"}},
	}
	require.NoError(t, records.ReplaceSnapshot(db, second))

	stored, err := records.LoadStored(db)
	require.NoError(t, err)

	require.Len(t, stored.Accounts, 1)
	assert.Equal(t, "new@kaishing.com.hk", stored.Accounts[0].Account)
	assert.Equal(t, "pro", stored.Accounts[0].SubscriptionLevel)
	assert.Empty(t, stored.UsageEvents, "previous snapshot rows are gone")
	require.Len(t, stored.Transcriptions, 1)
	require.Len(t, stored.AskAIQuestions, 1)
	assert.Equal(t, "what changed", stored.AskAIQuestions[0].Question)
}

func TestLoadStoredEmptyDatabase(t *testing.T) {
	db := openTestDB(t)

	stored, err := records.LoadStored(db)
	require.NoError(t, err)
	assert.True(t, stored.Empty())
}

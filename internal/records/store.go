package records

import (
	"fmt"

	"gorm.io/gorm"
)

const insertBatchSize = 500

// ReplaceSnapshot swaps the stored tables for the given snapshot in a single
// transaction, so readers never observe a half-imported state.
func ReplaceSnapshot(db *gorm.DB, snap *Snapshot) error {
	return db.Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{
			&Account{}, &UsageEvent{}, &Transcription{}, &AskAIQuestion{},
		} {
			if err := tx.Where("1 = 1").Delete(model).Error; err != nil {
				return fmt.Errorf("clearing table: %w", err)
			}
		}
		if len(snap.Accounts) > 0 {
			if err := tx.CreateInBatches(snap.Accounts, insertBatchSize).Error; err != nil {
				return fmt.Errorf("inserting accounts: %w", err)
			}
		}
		if len(snap.UsageEvents) > 0 {
			if err := tx.CreateInBatches(snap.UsageEvents, insertBatchSize).Error; err != nil {
				return fmt.Errorf("inserting usage events: %w", err)
			}
		}
		if len(snap.Transcriptions) > 0 {
			if err := tx.CreateInBatches(snap.Transcriptions, insertBatchSize).Error; err != nil {
				return fmt.Errorf("inserting transcriptions: %w", err)
			}
		}
		if len(snap.AskAIQuestions) > 0 {
			if err := tx.CreateInBatches(snap.AskAIQuestions, insertBatchSize).Error; err != nil {
				return fmt.Errorf("inserting askai questions: %w", err)
			}
		}
		return nil
	})
}

// LoadStored reads the materialized snapshot back from the database.
func LoadStored(db *gorm.DB) (*Snapshot, error) {
	snap := &Snapshot{}
	if err := db.Order("id asc").Find(&snap.Accounts).Error; err != nil {
		return nil, fmt.Errorf("loading accounts: %w", err)
	}
	if err := db.Order("id asc").Find(&snap.UsageEvents).Error; err != nil {
		return nil, fmt.Errorf("loading usage events: %w", err)
	}
	if err := db.Order("id asc").Find(&snap.Transcriptions).Error; err != nil {
		return nil, fmt.Errorf("loading transcriptions: %w", err)
	}
	if err := db.Order("id asc").Find(&snap.AskAIQuestions).Error; err != nil {
		return nil, fmt.Errorf("loading askai questions: %w", err)
	}
	return snap, nil
}

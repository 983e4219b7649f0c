// Package records defines the snapshot record models and the loader that
// materializes table exports into the local store.
package records

import (
	"sort"
	"time"
)

// Account is one registered user from the account table. The deduplicated
// account set is the authoritative roster for the summary matrix.
type Account struct {
	ID                uint   `gorm:"primaryKey;autoIncrement"`
	Account           string `gorm:"index;not null"`
	SubscriptionLevel string
	Username          string
	CreatedAt         time.Time
}

// UsageEvent is one usage action from the usage-log table. OccurredAt is the
// normalized createdAt instant; nil means the source value was missing or
// unparseable.
type UsageEvent struct {
	ID         uint       `gorm:"primaryKey;autoIncrement"`
	RecordID   string     `gorm:"index"` // source record id, used only as a count anchor
	Account    string     `gorm:"index"`
	UsageType  string     `gorm:"index"`
	OccurredAt *time.Time `gorm:"index"`
	CreatedAt  time.Time
}

// Transcription is one row from the transcription table. Row existence is
// the signal for a generated transcript; no further fields are consulted.
type Transcription struct {
	ID         uint       `gorm:"primaryKey;autoIncrement"`
	Account    string     `gorm:"index"`
	OccurredAt *time.Time `gorm:"index"`
	CreatedAt  time.Time
}

// AskAIQuestion is one row from the AskAI question log.
type AskAIQuestion struct {
	ID         uint       `gorm:"primaryKey;autoIncrement"`
	Account    string     `gorm:"index"`
	Question   string
	OccurredAt *time.Time `gorm:"index"`
	CreatedAt  time.Time
}

// AccountKey returns the join/partition key of the record.
func (a Account) AccountKey() string       { return a.Account }
func (e UsageEvent) AccountKey() string    { return e.Account }
func (t Transcription) AccountKey() string { return t.Account }
func (q AskAIQuestion) AccountKey() string { return q.Account }

// Occurred reports the normalized instant and whether it is present.
func (e UsageEvent) Occurred() (time.Time, bool) {
	if e.OccurredAt == nil {
		return time.Time{}, false
	}
	return *e.OccurredAt, true
}

func (t Transcription) Occurred() (time.Time, bool) {
	if t.OccurredAt == nil {
		return time.Time{}, false
	}
	return *t.OccurredAt, true
}

func (q AskAIQuestion) Occurred() (time.Time, bool) {
	if q.OccurredAt == nil {
		return time.Time{}, false
	}
	return *q.OccurredAt, true
}

// Keyed is any record carrying an account identifier.
type Keyed interface {
	AccountKey() string
}

// Exclude drops rows whose account is on the denylist. The denylist match is
// exact and case-sensitive, like every other account comparison in the
// pipeline.
func Exclude[T Keyed](rows []T, denylist []string) []T {
	if len(rows) == 0 || len(denylist) == 0 {
		return rows
	}
	banned := make(map[string]struct{}, len(denylist))
	for _, a := range denylist {
		banned[a] = struct{}{}
	}
	kept := make([]T, 0, len(rows))
	for _, r := range rows {
		if _, ok := banned[r.AccountKey()]; ok {
			continue
		}
		kept = append(kept, r)
	}
	return kept
}

// DedupRoster returns the roster sorted by account ascending with duplicate
// account identifiers collapsed to their first occurrence. The sorted order
// is what makes summary matrix output deterministic between runs.
func DedupRoster(accounts []Account) []Account {
	seen := make(map[string]struct{}, len(accounts))
	roster := make([]Account, 0, len(accounts))
	for _, a := range accounts {
		if _, ok := seen[a.Account]; ok {
			continue
		}
		seen[a.Account] = struct{}{}
		roster = append(roster, a)
	}
	sort.Slice(roster, func(i, j int) bool {
		return roster[i].Account < roster[j].Account
	})
	return roster
}

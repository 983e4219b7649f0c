package records

import (
	"bufio"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// Snapshot file names expected inside the snapshot directory. Each file is
// JSON Lines, one record per line, mirroring the source table exports.
const (
	AccountsFile       = "accounts.jsonl"
	UsageEventsFile    = "usage_events.jsonl"
	TranscriptionsFile = "transcriptions.jsonl"
	AskAIQuestionsFile = "askai_questions.jsonl"
)

// Snapshot is one full materialized export of the four source tables.
type Snapshot struct {
	Accounts       []Account
	UsageEvents    []UsageEvent
	Transcriptions []Transcription
	AskAIQuestions []AskAIQuestion
	LoadedAt       time.Time
}

// LoadSnapshot reads the table exports from dir. A missing file yields an
// empty table and invalid lines are skipped with a log entry; the loader
// only fails on I/O errors for files that exist.
func LoadSnapshot(dir string, logger *slog.Logger) (*Snapshot, error) {
	snap := &Snapshot{LoadedAt: time.Now().UTC()}

	if err := readLines(filepath.Join(dir, AccountsFile), logger, func(line gjson.Result) {
		acct := strings.TrimSpace(line.Get("account").String())
		if acct == "" {
			return
		}
		snap.Accounts = append(snap.Accounts, Account{
			Account:           acct,
			SubscriptionLevel: strings.ToLower(strings.TrimSpace(line.Get("subscription_level").String())),
			Username:          strings.TrimSpace(line.Get("username").String()),
		})
	}); err != nil {
		return nil, err
	}

	if err := readLines(filepath.Join(dir, UsageEventsFile), logger, func(line gjson.Result) {
		acct := strings.TrimSpace(line.Get("account").String())
		if acct == "" {
			return
		}
		recordID := line.Get("id").String()
		if recordID == "" {
			recordID = line.Get("record_id").String()
		}
		snap.UsageEvents = append(snap.UsageEvents, UsageEvent{
			RecordID:   recordID,
			Account:    acct,
			UsageType:  strings.TrimSpace(line.Get("usage_type").String()),
			OccurredAt: NormalizeTimestamp(line.Get("createdAt")),
		})
	}); err != nil {
		return nil, err
	}

	if err := readLines(filepath.Join(dir, TranscriptionsFile), logger, func(line gjson.Result) {
		acct := strings.TrimSpace(line.Get("account").String())
		if acct == "" {
			return
		}
		snap.Transcriptions = append(snap.Transcriptions, Transcription{
			Account:    acct,
			OccurredAt: NormalizeTimestamp(line.Get("createdAt")),
		})
	}); err != nil {
		return nil, err
	}

	if err := readLines(filepath.Join(dir, AskAIQuestionsFile), logger, func(line gjson.Result) {
		acct := strings.TrimSpace(line.Get("account").String())
		if acct == "" {
			return
		}
		snap.AskAIQuestions = append(snap.AskAIQuestions, AskAIQuestion{
			Account:    acct,
			Question:   line.Get("question").String(),
			OccurredAt: NormalizeTimestamp(line.Get("createdAt")),
		})
	}); err != nil {
		return nil, err
	}

	return snap, nil
}

// ApplyDenylist removes denylisted accounts from all four tables in place.
func (s *Snapshot) ApplyDenylist(denylist []string) {
	s.Accounts = Exclude(s.Accounts, denylist)
	s.UsageEvents = Exclude(s.UsageEvents, denylist)
	s.Transcriptions = Exclude(s.Transcriptions, denylist)
	s.AskAIQuestions = Exclude(s.AskAIQuestions, denylist)
}

// Empty reports whether the snapshot contains no rows at all.
func (s *Snapshot) Empty() bool {
	return len(s.Accounts) == 0 && len(s.UsageEvents) == 0 &&
		len(s.Transcriptions) == 0 && len(s.AskAIQuestions) == 0
}

func readLines(path string, logger *slog.Logger, handle func(gjson.Result)) error {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Debug("Snapshot file not present, treating table as empty", "file", path)
			return nil
		}
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNo := 0
	skipped := 0
	for scanner.Scan() {
		lineNo++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if !gjson.Valid(text) {
			skipped++
			continue
		}
		handle(gjson.Parse(text))
	}
	if skipped > 0 {
		logger.Warn("Skipped invalid snapshot lines", "file", path, "skipped", skipped, "total", lineNo)
	}
	return scanner.Err()
}

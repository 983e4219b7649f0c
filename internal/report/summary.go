package report

import (
	"github.com/thinkcol-info/kaishing-report-app/internal/classify"
	"github.com/thinkcol-info/kaishing-report-app/internal/records"
)

// SummaryRow is one account's line in the summary matrix. Counts default to
// zero for accounts with no matching activity.
type SummaryRow struct {
	Account                string `json:"account"`
	Username               string `json:"username,omitempty"`
	GeneratedTranscripts   int    `json:"generated_transcripts"`
	RegeneratedTranscripts int    `json:"regenerated_transcripts"`
	InitialSummaries       int    `json:"initial_summaries"`
	RegeneratedSummaries   int    `json:"regenerated_summaries"`
	GeneratedNotes         int    `json:"generated_notes"`
	RegeneratedNotes       int    `json:"regenerated_notes"`
	AskAIQuestions         int    `json:"askai_questions"`
}

// SummaryColumns is the export header, matching SummaryRow field order.
func SummaryColumns() []string {
	return []string{
		"account",
		"username",
		"generated_transcripts",
		"regenerated_transcripts",
		"initial_summaries",
		"regenerated_summaries",
		"generated_notes",
		"regenerated_notes",
		"askai_questions",
	}
}

// BuildSummaryMatrix left-joins per-category counts onto the deduplicated
// roster. Every roster account gets a row; activity from accounts off the
// roster is dropped by the join, mirroring how the roster is the report's
// single source of truth for who exists.
func BuildSummaryMatrix(
	roster []records.Account,
	events []records.UsageEvent,
	transcriptions []records.Transcription,
	questions []records.AskAIQuestion,
	classifier *classify.Classifier,
) []SummaryRow {
	byCategory := make(map[string]map[classify.Category]int)
	bump := func(account string, cat classify.Category) {
		if byCategory[account] == nil {
			byCategory[account] = make(map[classify.Category]int)
		}
		byCategory[account][cat]++
	}

	for _, e := range events {
		if cat, ok := classifier.Classify(e.UsageType); ok {
			bump(e.Account, cat)
		}
	}
	// Generated transcripts count by row presence in the transcription
	// table; the usage log has no reliable label for the initial run.
	for _, tr := range transcriptions {
		bump(tr.Account, classify.GeneratedTranscripts)
	}

	askAI := make(map[string]int)
	for _, q := range questions {
		askAI[q.Account]++
	}

	rows := make([]SummaryRow, 0, len(roster))
	for _, acct := range roster {
		cats := byCategory[acct.Account]
		rows = append(rows, SummaryRow{
			Account:                acct.Account,
			Username:               acct.Username,
			GeneratedTranscripts:   cats[classify.GeneratedTranscripts],
			RegeneratedTranscripts: cats[classify.RegeneratedTranscripts],
			InitialSummaries:       cats[classify.InitialSummaries],
			RegeneratedSummaries:   cats[classify.RegeneratedSummaries],
			GeneratedNotes:         cats[classify.GeneratedNotes],
			RegeneratedNotes:       cats[classify.RegeneratedNotes],
			AskAIQuestions:         askAI[acct.Account],
		})
	}
	return rows
}

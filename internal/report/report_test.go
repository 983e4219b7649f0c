package report_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thinkcol-info/kaishing-report-app/internal/classify"
	"github.com/thinkcol-info/kaishing-report-app/internal/records"
	"github.com/thinkcol-info/kaishing-report-app/internal/report"
	"github.com/thinkcol-info/kaishing-report-app/internal/sites"
)

func TestComputeKPIs(t *testing.T) {
	roster := []records.Account{
		{Account: "a", SubscriptionLevel: "pro"},
		{Account: "b", SubscriptionLevel: "pro"},
		{Account: "c", SubscriptionLevel: "team"},
		{Account: "d", SubscriptionLevel: ""},
		{Account: "e", SubscriptionLevel: "enterprise"},
	}

	k := report.ComputeKPIs(roster)

	assert.Equal(t, 5, k.TotalAccounts)
	assert.Equal(t, 2, k.ProUsers)
	assert.Equal(t, 1, k.TeamUsers)
}

func TestBuildSummaryMatrix(t *testing.T) {
	roster := records.DedupRoster([]records.Account{
		{Account: "a@kaishing.com.hk", Username: "Alice"},
		{Account: "b@kaishing.com.hk"},
	})

	events := []records.UsageEvent{
		{Account: "a@kaishing.com.hk", UsageType: "generate_summary"},
		{Account: "a@kaishing.com.hk", UsageType: "generate_summary"},
		{Account: "a@kaishing.com.hk", UsageType: "regenerate_note"},
		{Account: "a@kaishing.com.hk", UsageType: "login"}, // uncategorized, counts nowhere
		{Account: "ghost@kaishing.com.hk", UsageType: "generate_summary"}, // off roster, dropped by the join
	}
	transcriptions := []records.Transcription{
		{Account: "a@kaishing.com.hk"},
		{Account: "a@kaishing.com.hk"},
		{Account: "a@kaishing.com.hk"},
	}
	questions := []records.AskAIQuestion{
		{Account: "b@kaishing.com.hk", Question: "what is the schedule"},
	}

	rows := report.BuildSummaryMatrix(roster, events, transcriptions, questions, classify.Default())

	require.Len(t, rows, 2)

	a := rows[0]
	assert.Equal(t, "a@kaishing.com.hk", a.Account)
	assert.Equal(t, "Alice", a.Username)
	assert.Equal(t, 3, a.GeneratedTranscripts)
	assert.Equal(t, 2, a.InitialSummaries)
	assert.Equal(t, 1, a.RegeneratedNotes)
	assert.Equal(t, 0, a.RegeneratedTranscripts)
	assert.Equal(t, 0, a.AskAIQuestions)

	b := rows[1]
	assert.Equal(t, "b@kaishing.com.hk", b.Account)
	assert.Equal(t, 0, b.GeneratedTranscripts)
	assert.Equal(t, 1, b.AskAIQuestions)
}

func TestSummaryColumnsMatchRowOrder(t *testing.T) {
	cols := report.SummaryColumns()
	require.Len(t, cols, 9)
	assert.Equal(t, "account", cols[0])
	assert.Equal(t, "askai_questions", cols[8])
}

func TestSiteDistribution(t *testing.T) {
	resolver := sites.NewResolver(map[string]string{
		"x@kaishing.com.hk": "HQ-IT",
		"y@kaishing.com.hk": "HQ-IT",
		"z@kaishing.com.hk": "AC",
	})

	events := []records.UsageEvent{
		{Account: "x@kaishing.com.hk"},
		{Account: "y@kaishing.com.hk"},
		{Account: "z@kaishing.com.hk"},
		{Account: "stranger@example.com"},
	}

	dist := report.SiteDistribution(events, resolver)

	require.Len(t, dist, 3)
	assert.Equal(t, report.MetricCountResult{Name: "HQ-IT", Count: 2}, dist[0])
	// AC and Unknown tie on count, name ascending breaks it.
	assert.Equal(t, report.MetricCountResult{Name: "AC", Count: 1}, dist[1])
	assert.Equal(t, report.MetricCountResult{Name: sites.Unknown, Count: 1}, dist[2])
}

func TestFeatureDistribution(t *testing.T) {
	events := []records.UsageEvent{
		{Account: "a", UsageType: "generate_summary"},
		{Account: "b", UsageType: "generate_summary"},
		{Account: "c", UsageType: "login"},
		{Account: "d", UsageType: ""},
	}

	dist := report.FeatureDistribution(events)

	require.Len(t, dist, 2)
	assert.Equal(t, report.MetricCountResult{Name: "generate_summary", Count: 2}, dist[0])
	assert.Equal(t, report.MetricCountResult{Name: "login", Count: 1}, dist[1])
}

func TestWeeklyActiveUsersSkipsMissingInstants(t *testing.T) {
	hkt, err := time.LoadLocation("Asia/Hong_Kong")
	require.NoError(t, err)

	at := time.Date(2024, 7, 3, 2, 0, 0, 0, time.UTC)
	events := []records.UsageEvent{
		{Account: "a", OccurredAt: &at},
		{Account: "b", OccurredAt: &at},
		{Account: "a", OccurredAt: &at},
		{Account: "c"}, // no instant
	}

	wau := report.WeeklyActiveUsers(events, hkt)

	require.Len(t, wau, 1)
	assert.Equal(t, "2024-07-01", wau[0].Date)
	assert.Equal(t, 2, wau[0].Count)
}

func TestTopKeywords(t *testing.T) {
	questions := []string{
		"What is the Leasing schedule",
		"leasing renewal for 2024",
		"How to summarize the leasing report",
		"renewal",
	}

	keywords := report.TopKeywords(questions)

	require.NotEmpty(t, keywords)
	assert.Equal(t, report.MetricCountResult{Name: "leasing", Count: 3}, keywords[0])
	assert.Equal(t, report.MetricCountResult{Name: "renewal", Count: 2}, keywords[1])
	for _, kw := range keywords {
		assert.NotEqual(t, "the", kw.Name, "stopwords never surface")
		assert.NotEqual(t, "2024", kw.Name, "digit tokens never surface")
	}
}

func TestTopKeywordsLimit(t *testing.T) {
	questions := []string{"alpha beta gamma delta epsilon zeta eta theta iota kappa lambda mu"}
	assert.Len(t, report.TopKeywords(questions), 10)
}

func TestParseSections(t *testing.T) {
	t.Run("empty selects everything", func(t *testing.T) {
		assert.Len(t, report.ParseSections(""), 5)
	})

	t.Run("subset", func(t *testing.T) {
		selected := report.ParseSections("overview, askai")
		assert.True(t, selected[report.SectionOverview])
		assert.True(t, selected[report.SectionAskAI])
		assert.False(t, selected[report.SectionEngagement])
	})

	t.Run("only unknown names falls back to everything", func(t *testing.T) {
		assert.Len(t, report.ParseSections("bogus"), 5)
	})
}

package records_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/thinkcol-info/kaishing-report-app/internal/records"
)

func TestNormalizeTimestamp(t *testing.T) {
	testCases := []struct {
		name string
		raw  string
		want *time.Time
	}{
		{
			name: "epoch seconds as number",
			raw:  `{"createdAt": 1719806400}`,
			want: timePtr(time.Date(2024, 7, 1, 4, 0, 0, 0, time.UTC)),
		},
		{
			name: "epoch seconds as string",
			raw:  `{"createdAt": "1719806400"}`,
			want: timePtr(time.Date(2024, 7, 1, 4, 0, 0, 0, time.UTC)),
		},
		{
			name: "RFC3339 string",
			raw:  `{"createdAt": "2024-07-01T04:00:00Z"}`,
			want: timePtr(time.Date(2024, 7, 1, 4, 0, 0, 0, time.UTC)),
		},
		{
			name: "space-separated datetime",
			raw:  `{"createdAt": "2024-07-01 04:00:00"}`,
			want: timePtr(time.Date(2024, 7, 1, 4, 0, 0, 0, time.UTC)),
		},
		{
			name: "date only",
			raw:  `{"createdAt": "2024-07-01"}`,
			want: timePtr(time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)),
		},
		{
			name: "garbage string",
			raw:  `{"createdAt": "not a date"}`,
			want: nil,
		},
		{
			name: "missing field",
			raw:  `{}`,
			want: nil,
		},
		{
			name: "null value",
			raw:  `{"createdAt": null}`,
			want: nil,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := records.NormalizeTimestamp(gjson.Get(tc.raw, "createdAt"))
			if tc.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.True(t, got.Equal(*tc.want), "got %v want %v", got, tc.want)
		})
	}
}

func TestLoadSnapshot(t *testing.T) {
	dir := t.TempDir()

	writeFile(t, dir, records.AccountsFile,
		`{"account": "a@kaishing.com.hk", "subscription_level": "Pro", "username": "Alice"}`+"\n"+
			`{"account": "b@kaishing.com.hk", "subscription_level": "team"}`+"\n"+
			`not json at all`+"\n"+
			`{"subscription_level": "pro"}`+"\n")

	writeFile(t, dir, records.UsageEventsFile,
		`{"id": "r1", "account": "a@kaishing.com.hk", "usage_type": "generate_summary", "createdAt": 1719811200}`+"\n"+
			`{"record_id": "r2", "account": "a@kaishing.com.hk", "usage_type": "regenerate_summary", "createdAt": "broken"}`+"\n")

	// Transcriptions and AskAI files intentionally absent.

	snap, err := records.LoadSnapshot(dir, testLogger())
	require.NoError(t, err)

	require.Len(t, snap.Accounts, 2)
	assert.Equal(t, "a@kaishing.com.hk", snap.Accounts[0].Account)
	assert.Equal(t, "pro", snap.Accounts[0].SubscriptionLevel)
	assert.Equal(t, "Alice", snap.Accounts[0].Username)

	require.Len(t, snap.UsageEvents, 2)
	assert.Equal(t, "r1", snap.UsageEvents[0].RecordID)
	assert.Equal(t, "r2", snap.UsageEvents[1].RecordID, "older exports name the id column record_id")
	_, ok := snap.UsageEvents[0].Occurred()
	assert.True(t, ok)
	_, ok = snap.UsageEvents[1].Occurred()
	assert.False(t, ok, "unparseable createdAt keeps the row but drops the instant")

	assert.Empty(t, snap.Transcriptions)
	assert.Empty(t, snap.AskAIQuestions)
}

func TestApplyDenylist(t *testing.T) {
	snap := &records.Snapshot{
		Accounts: []records.Account{
			{Account: "keep@kaishing.com.hk"},
			{Account: "drop@thinkcol.com"},
		},
		UsageEvents: []records.UsageEvent{
			{Account: "drop@thinkcol.com", UsageType: "generate_summary"},
			{Account: "keep@kaishing.com.hk", UsageType: "generate_note"},
		},
		AskAIQuestions: []records.AskAIQuestion{
			{Account: "drop@thinkcol.com", Question: "what is this"},
		},
	}

	snap.ApplyDenylist([]string{"drop@thinkcol.com"})

	require.Len(t, snap.Accounts, 1)
	assert.Equal(t, "keep@kaishing.com.hk", snap.Accounts[0].Account)
	require.Len(t, snap.UsageEvents, 1)
	assert.Equal(t, "keep@kaishing.com.hk", snap.UsageEvents[0].Account)
	assert.Empty(t, snap.AskAIQuestions)
}

func TestDedupRoster(t *testing.T) {
	roster := records.DedupRoster([]records.Account{
		{Account: "b@kaishing.com.hk", Username: "first-b"},
		{Account: "a@kaishing.com.hk"},
		{Account: "b@kaishing.com.hk", Username: "second-b"},
	})

	require.Len(t, roster, 2)
	assert.Equal(t, "a@kaishing.com.hk", roster[0].Account)
	assert.Equal(t, "b@kaishing.com.hk", roster[1].Account)
	assert.Equal(t, "first-b", roster[1].Username, "first occurrence wins")
}

func TestExcludeEmptyDenylist(t *testing.T) {
	rows := []records.UsageEvent{{Account: "a@kaishing.com.hk"}}
	assert.Equal(t, rows, records.Exclude(rows, nil))
}

func timePtr(t time.Time) *time.Time { return &t }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

package http

import (
	"context"
	"fmt"
	"time"

	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/karloscodes/cartridge"

	"github.com/thinkcol-info/kaishing-report-app/internal/classify"
	"github.com/thinkcol-info/kaishing-report-app/internal/config"
	"github.com/thinkcol-info/kaishing-report-app/internal/pkg/async"
	"github.com/thinkcol-info/kaishing-report-app/internal/records"
	"github.com/thinkcol-info/kaishing-report-app/internal/report"
	"github.com/thinkcol-info/kaishing-report-app/internal/sites"
	"github.com/thinkcol-info/kaishing-report-app/internal/timeframe"
)

const rangeDateLayout = "2006-01-02"

// ReportResponse is the full aggregate payload consumed by the renderers.
// Section blocks the caller did not select stay nil and drop out of the JSON.
type ReportResponse struct {
	From     string   `json:"from,omitempty"`
	To       string   `json:"to,omitempty"`
	Sections []string `json:"sections"`

	KPIs              *report.KPIs               `json:"kpis,omitempty"`
	WeeklyActiveUsers []timeframe.DateStat       `json:"weekly_active_users,omitempty"`
	Heatmap           *HeatmapResponse           `json:"activity_heatmap,omitempty"`
	SiteActivity      []report.MetricCountResult `json:"site_activity,omitempty"`
	Features          []report.MetricCountResult `json:"feature_usage,omitempty"`
	AskAISites        []report.MetricCountResult `json:"askai_sites,omitempty"`
	AskAIKeywords     []report.MetricCountResult `json:"askai_keywords,omitempty"`

	Summary []report.SummaryRow `json:"summary"`
}

// HeatmapResponse carries the activity matrix with its render metadata.
type HeatmapResponse struct {
	Cells [24][7]int `json:"cells"`
	Hours []int      `json:"hours"`
	Days  []string   `json:"days"`
	Max   int        `json:"max"`
}

// parseRange reads from/to query params as local dates in the report
// timezone; missing params leave that side of the range open.
func parseRange(ctx *cartridge.Context, loc *time.Location) (timeframe.Range, error) {
	return rangeFromDates(ctx.Query("from"), ctx.Query("to"), loc)
}

// rangeFromDates turns YYYY-MM-DD date strings into an inclusive range of
// whole local days. The to bound sits a nanosecond before the next local
// midnight so that any instant inside the to date stays in range,
// fractional seconds included.
func rangeFromDates(from, to string, loc *time.Location) (timeframe.Range, error) {
	var rng timeframe.Range

	if from != "" {
		t, err := time.ParseInLocation(rangeDateLayout, from, loc)
		if err != nil {
			return rng, fmt.Errorf("invalid from date %q, expected YYYY-MM-DD", from)
		}
		rng.From = t.UTC()
	}
	if to != "" {
		t, err := time.ParseInLocation(rangeDateLayout, to, loc)
		if err != nil {
			return rng, fmt.Errorf("invalid to date %q, expected YYYY-MM-DD", to)
		}
		rng.To = t.AddDate(0, 0, 1).Add(-time.Nanosecond).UTC()
	}
	if !rng.From.IsZero() && !rng.To.IsZero() && rng.From.After(rng.To) {
		return rng, fmt.Errorf("from date is after to date")
	}
	return rng, nil
}

// ReportIndexAction handles GET /api/v1/report.
func ReportIndexAction(ctx *cartridge.Context) error {
	cfg := ctx.Config.(*config.Config)
	loc := cfg.ReportLocation()

	rng, err := parseRange(ctx, loc)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	snap, err := records.LoadStored(ctx.DB())
	if err != nil {
		ctx.Logger.Error("Failed to load stored snapshot", slog.Any("error", err))
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load snapshot"})
	}

	selected := report.ParseSections(ctx.Query("sections"))
	resp := buildReport(snap, rng, selected, loc)

	ctx.Logger.Info("Report computed",
		slog.String("from", resp.From),
		slog.String("to", resp.To),
		slog.Int("accounts", len(snap.Accounts)),
		slog.Int("usage_events", len(snap.UsageEvents)))

	return ctx.JSON(resp)
}

func buildReport(snap *records.Snapshot, rng timeframe.Range, selected map[report.Section]bool, loc *time.Location) *ReportResponse {
	roster := records.DedupRoster(snap.Accounts)
	usage := timeframe.FilterRange(snap.UsageEvents, rng)
	transcriptions := timeframe.FilterRange(snap.Transcriptions, rng)
	questions := timeframe.FilterRange(snap.AskAIQuestions, rng)

	resolver := sites.Default()
	classifier := classify.Default()

	resp := &ReportResponse{}
	if !rng.From.IsZero() {
		resp.From = rng.From.In(loc).Format(rangeDateLayout)
	}
	if !rng.To.IsZero() {
		resp.To = rng.To.In(loc).Format(rangeDateLayout)
	}
	for _, s := range report.AllSections() {
		if selected[s] {
			resp.Sections = append(resp.Sections, string(s))
		}
	}

	tasks := []async.Task{
		{
			Name: "summary",
			Execute: func() (interface{}, error) {
				return report.BuildSummaryMatrix(roster, usage, transcriptions, questions, classifier), nil
			},
		},
	}

	if selected[report.SectionOverview] {
		tasks = append(tasks, async.Task{
			Name: "kpis",
			Execute: func() (interface{}, error) {
				k := report.ComputeKPIs(roster)
				return &k, nil
			},
		})
	}
	if selected[report.SectionEngagement] {
		tasks = append(tasks,
			async.Task{
				Name: "wau",
				Execute: func() (interface{}, error) {
					return report.WeeklyActiveUsers(usage, loc), nil
				},
			},
			async.Task{
				Name: "heatmap",
				Execute: func() (interface{}, error) {
					m := report.ActivityHeatmap(usage, loc)
					return &HeatmapResponse{Cells: m.Cells, Hours: timeframe.HourLabels(), Days: timeframe.DayLabels(), Max: m.Max()}, nil
				},
			},
		)
	}
	if selected[report.SectionAdoption] {
		tasks = append(tasks, async.Task{
			Name: "siteActivity",
			Execute: func() (interface{}, error) {
				return report.SiteDistribution(usage, resolver), nil
			},
		})
	}
	if selected[report.SectionFeatures] {
		tasks = append(tasks, async.Task{
			Name: "features",
			Execute: func() (interface{}, error) {
				return report.FeatureDistribution(usage), nil
			},
		})
	}
	if selected[report.SectionAskAI] {
		tasks = append(tasks,
			async.Task{
				Name: "askaiSites",
				Execute: func() (interface{}, error) {
					return report.AskAISiteDistribution(questions, resolver), nil
				},
			},
			async.Task{
				Name: "askaiKeywords",
				Execute: func() (interface{}, error) {
					texts := make([]string, 0, len(questions))
					for _, q := range questions {
						texts = append(texts, q.Question)
					}
					return report.TopKeywords(texts), nil
				},
			},
		)
	}

	pool := async.NewPool(len(tasks))
	results := pool.Execute(context.Background(), tasks)

	resp.Summary = summaryOrEmpty(results, "summary")
	if r, ok := results["kpis"]; ok && r.Data != nil {
		resp.KPIs = r.Data.(*report.KPIs)
	}
	if r, ok := results["wau"]; ok && r.Data != nil {
		resp.WeeklyActiveUsers = r.Data.([]timeframe.DateStat)
	}
	if r, ok := results["heatmap"]; ok && r.Data != nil {
		resp.Heatmap = r.Data.(*HeatmapResponse)
	}
	resp.SiteActivity = metricsOrNil(results, "siteActivity")
	resp.Features = metricsOrNil(results, "features")
	resp.AskAISites = metricsOrNil(results, "askaiSites")
	resp.AskAIKeywords = metricsOrNil(results, "askaiKeywords")

	return resp
}

func summaryOrEmpty(results map[string]async.Result, name string) []report.SummaryRow {
	if r, ok := results[name]; ok && r.Data != nil {
		if rows, ok := r.Data.([]report.SummaryRow); ok {
			return rows
		}
	}
	return []report.SummaryRow{}
}

func metricsOrNil(results map[string]async.Result, name string) []report.MetricCountResult {
	if r, ok := results[name]; ok && r.Data != nil {
		if items, ok := r.Data.([]report.MetricCountResult); ok {
			if items == nil {
				return []report.MetricCountResult{}
			}
			return items
		}
	}
	return nil
}

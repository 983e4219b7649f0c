// Package report computes the usage-report aggregates: KPIs, engagement
// series, site and feature distributions, AskAI analysis and the
// per-account summary matrix.
package report

import (
	"sort"
	"time"

	"github.com/thinkcol-info/kaishing-report-app/internal/records"
	"github.com/thinkcol-info/kaishing-report-app/internal/sites"
	"github.com/thinkcol-info/kaishing-report-app/internal/timeframe"
)

// KPIs are the overview headline numbers, computed over the full roster
// regardless of the report range.
type KPIs struct {
	TotalAccounts int `json:"total_accounts"`
	ProUsers      int `json:"pro_users"`
	TeamUsers     int `json:"team_users"`
}

// MetricCountResult is one (name, count) bar of a distribution, sorted by
// count descending with name ascending as the tiebreak.
type MetricCountResult struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// ComputeKPIs tallies the roster size and subscription tiers.
func ComputeKPIs(roster []records.Account) KPIs {
	k := KPIs{TotalAccounts: len(roster)}
	for _, a := range roster {
		switch a.SubscriptionLevel {
		case "pro":
			k.ProUsers++
		case "team":
			k.TeamUsers++
		}
	}
	return k
}

// WeeklyActiveUsers counts distinct accounts per report-timezone week over
// the usage events. Events without an instant never reach a bucket.
func WeeklyActiveUsers(events []records.UsageEvent, loc *time.Location) []timeframe.DateStat {
	samples := make([]timeframe.Sample, 0, len(events))
	for _, e := range events {
		at, ok := e.Occurred()
		if !ok {
			continue
		}
		samples = append(samples, timeframe.Sample{At: at, Key: e.Account})
	}
	return timeframe.WeeklyDistinct(samples, loc)
}

// ActivityHeatmap builds the hour-by-weekday event count matrix in the
// report timezone.
func ActivityHeatmap(events []records.UsageEvent, loc *time.Location) timeframe.ActivityMatrix {
	instants := make([]time.Time, 0, len(events))
	for _, e := range events {
		if at, ok := e.Occurred(); ok {
			instants = append(instants, at)
		}
	}
	return timeframe.BuildActivityMatrix(instants, loc)
}

// SiteDistribution counts usage events per resolved site code.
func SiteDistribution(events []records.UsageEvent, resolver *sites.Resolver) []MetricCountResult {
	counts := make(map[string]int)
	for _, e := range events {
		counts[resolver.Resolve(e.Account)]++
	}
	return sortedCounts(counts)
}

// FeatureDistribution counts usage events per raw usage label.
func FeatureDistribution(events []records.UsageEvent) []MetricCountResult {
	counts := make(map[string]int)
	for _, e := range events {
		if e.UsageType == "" {
			continue
		}
		counts[e.UsageType]++
	}
	return sortedCounts(counts)
}

// AskAISiteDistribution counts AskAI questions per resolved site code.
func AskAISiteDistribution(questions []records.AskAIQuestion, resolver *sites.Resolver) []MetricCountResult {
	counts := make(map[string]int)
	for _, q := range questions {
		counts[resolver.Resolve(q.Account)]++
	}
	return sortedCounts(counts)
}

func sortedCounts(counts map[string]int) []MetricCountResult {
	results := make([]MetricCountResult, 0, len(counts))
	for name, count := range counts {
		results = append(results, MetricCountResult{Name: name, Count: count})
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Count != results[j].Count {
			return results[i].Count > results[j].Count
		}
		return results[i].Name < results[j].Name
	})
	return results
}

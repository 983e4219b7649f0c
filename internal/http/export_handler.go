package http

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/karloscodes/cartridge"

	"github.com/thinkcol-info/kaishing-report-app/internal/classify"
	"github.com/thinkcol-info/kaishing-report-app/internal/config"
	"github.com/thinkcol-info/kaishing-report-app/internal/records"
	"github.com/thinkcol-info/kaishing-report-app/internal/report"
	"github.com/thinkcol-info/kaishing-report-app/internal/timeframe"
)

// SummaryExportAction handles GET /api/v1/report/summary.csv.
func SummaryExportAction(ctx *cartridge.Context) error {
	cfg := ctx.Config.(*config.Config)

	rng, err := parseRange(ctx, cfg.ReportLocation())
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	snap, err := records.LoadStored(ctx.DB())
	if err != nil {
		ctx.Logger.Error("Failed to load stored snapshot", slog.Any("error", err))
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load snapshot"})
	}

	rows := report.BuildSummaryMatrix(
		records.DedupRoster(snap.Accounts),
		timeframe.FilterRange(snap.UsageEvents, rng),
		timeframe.FilterRange(snap.Transcriptions, rng),
		timeframe.FilterRange(snap.AskAIQuestions, rng),
		classify.Default(),
	)

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(report.SummaryColumns()); err != nil {
		return err
	}
	for _, row := range rows {
		record := []string{
			row.Account,
			row.Username,
			strconv.Itoa(row.GeneratedTranscripts),
			strconv.Itoa(row.RegeneratedTranscripts),
			strconv.Itoa(row.InitialSummaries),
			strconv.Itoa(row.RegeneratedSummaries),
			strconv.Itoa(row.GeneratedNotes),
			strconv.Itoa(row.RegeneratedNotes),
			strconv.Itoa(row.AskAIQuestions),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}

	filename := fmt.Sprintf("ksreport_summary_%s.csv", time.Now().Format("20060102"))
	ctx.Ctx.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	ctx.Ctx.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename=%q`, filename))

	ctx.Logger.Info("Summary matrix exported", slog.Int("rows", len(rows)))
	return ctx.Ctx.Send(buf.Bytes())
}

package http

import (
	"time"

	"log/slog"

	"github.com/karloscodes/cartridge"

	"github.com/thinkcol-info/kaishing-report-app/internal/records"
)

// HealthStatus represents the health check response
type HealthStatus struct {
	Status         string    `json:"status"`
	Timestamp      time.Time `json:"timestamp"`
	DBStatus       string    `json:"db_status"`
	StoredAccounts int64     `json:"stored_accounts"`
}

// HealthIndexAction handles the health check endpoint
func HealthIndexAction(ctx *cartridge.Context) error {
	dbStatus := "ok"
	var storedAccounts int64

	// Check database connectivity
	db := ctx.DBManager.GetConnection()
	if db == nil {
		dbStatus = "error"
		ctx.Logger.Error("Database connection unavailable")
	} else {
		sqlDB, err := db.DB()
		if err != nil {
			dbStatus = "error"
			ctx.Logger.Error("Database connection error", slog.Any("error", err))
		} else if err := sqlDB.Ping(); err != nil {
			dbStatus = "error"
			ctx.Logger.Error("Database ping failed", slog.Any("error", err))
		} else if err := db.Model(&records.Account{}).Count(&storedAccounts).Error; err != nil {
			ctx.Logger.Warn("Failed to count stored accounts", slog.Any("error", err))
		}
	}

	health := HealthStatus{
		Status:         "ok",
		Timestamp:      time.Now(),
		DBStatus:       dbStatus,
		StoredAccounts: storedAccounts,
	}

	if dbStatus != "ok" {
		health.Status = "degraded"
	}

	return ctx.JSON(health)
}

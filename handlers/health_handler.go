package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"titanic_chat_backend/models"
	"titanic_chat_backend/pkg/logging"
	"titanic_chat_backend/platform/dataset"
)

// Pinger reports whether the history database is reachable.
type Pinger interface {
	Ping() error
}

type HealthHandler struct {
	table *dataset.Table
	db    Pinger // nil when persistence is not configured
}

func NewHealthHandler(table *dataset.Table, db Pinger) *HealthHandler {
	return &HealthHandler{table: table, db: db}
}

func (h *HealthHandler) Health(c *fiber.Ctx) error {
	status := "healthy"
	if h.db != nil {
		if err := h.db.Ping(); err != nil {
			logging.Logger.Warn("health db ping failed", zap.Error(err))
			status = "degraded"
		}
	}
	return c.JSON(models.HealthResponse{
		Status:         status,
		DatasetRows:    h.table.NumRows(),
		DatasetColumns: h.table.ColumnNames(),
	})
}

package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/gema-events-api/internal/config"
	"github.com/noah-isme/gema-events-api/internal/utils"
)

// HealthResponse represents the payload returned by the health endpoint.
type HealthResponse struct {
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	Service     string    `json:"service"`
	Environment string    `json:"environment"`
	Database    string    `json:"database"`
	Cache       string    `json:"cache"`
}

// HealthCheck reports service identity and the configured backing stores.
func HealthCheck(cfg config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		payload := HealthResponse{
			Status:      "ok",
			Timestamp:   time.Now().UTC(),
			Service:     cfg.AppName,
			Environment: cfg.AppEnv,
			Database:    cfg.DatabaseDriver,
			Cache:       cfg.CacheDriver,
		}

		return utils.SendSuccess(c, "service healthy", payload)
	}
}

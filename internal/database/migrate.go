package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/noah-isme/gema-events-api/internal/models"
)

// Partial unique indexes over live rows. Both PostgreSQL and SQLite accept this syntax.
var liveIndexes = []struct {
	name string
	ddl  string
}{
	{
		name: "idx_events_active_owner",
		ddl:  "CREATE UNIQUE INDEX IF NOT EXISTS idx_events_active_owner ON events (created_by) WHERE is_active AND deleted_at IS NULL",
	},
	{
		name: "idx_events_natural_key",
		ddl:  "CREATE UNIQUE INDEX IF NOT EXISTS idx_events_natural_key ON events (title, start_date, end_date) WHERE deleted_at IS NULL",
	},
	{
		name: "idx_participants_natural_key",
		ddl:  "CREATE UNIQUE INDEX IF NOT EXISTS idx_participants_natural_key ON participants (last_name, first_name, mi, sex) WHERE deleted_at IS NULL",
	},
}

// Migrate creates or updates the schema.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Event{}, &models.Participant{}, &models.ActivityLog{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	for _, index := range liveIndexes {
		if err := db.Exec(index.ddl).Error; err != nil {
			return fmt.Errorf("create index %s: %w", index.name, err)
		}
	}

	return nil
}

package config

import (
	"log"
	"os"

	"onboarding-tracker-api/models"
)

// MigrateSchema applies the fixed schema for the five engine entities.
// The schema is versioned with the code; any future field addition goes
// through here, not through ad hoc column patches. Enabled with
// AUTO_MIGRATE=true (deployments with managed migrations leave it off).
func MigrateSchema() {
	if os.Getenv("AUTO_MIGRATE") != "true" {
		return
	}

	err := DB.AutoMigrate(
		&models.Profile{},
		&models.Application{},
		&models.Document{},
		&models.ActivityLogEntry{},
		&models.Notification{},
	)
	if err != nil {
		log.Fatal("Failed to migrate schema:", err)
	}

	log.Println("Schema migration completed")
}

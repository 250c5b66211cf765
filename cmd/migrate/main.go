package main

import (
	"dating_platform/internal/config"
	"dating_platform/internal/db"
)

// Main entry point for migration
func main() {
	cfg := config.LoadConfig()

	dsn := cfg.DBUser + ":" + cfg.DBPassword + "@tcp(" + cfg.DBHost + ":" + cfg.DBPort + ")/" + cfg.DBName + "?parseTime=true"
	db.Migrate(dsn)
}

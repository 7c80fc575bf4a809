package db

import (
	"fmt"
	"os"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// RunMigrations applies the schema without starting the app: the SQL
// migration files when MIGRATIONS is set, AutoMigrate otherwise. Used by
// the -migrate-only flag.
func RunMigrations() error {
	dsn := GetNormalizedDSN()
	if dsn == "" {
		return fmt.Errorf("DATABASE_DSN is empty, check the environment configuration")
	}
	if v := strings.ToLower(os.Getenv("MIGRATIONS")); v == "1" || v == "true" || v == "yes" {
		return runSQLMigrations(dsn)
	}
	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return fmt.Errorf("connect for migration: %w", err)
	}
	return AutoMigrate(conn)
}

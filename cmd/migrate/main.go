package main

import (
	"flag"
	"os"

	"simple-notes-be/internal/config"
	"simple-notes-be/internal/model"
	"simple-notes-be/internal/repository/relational"
	"simple-notes-be/pkg/database"

	"github.com/fatih/color"
)

func main() {
	reset := flag.Bool("reset", false, "drop the notes and images tables before migrating")
	flag.Parse()

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Connect to Database using existing GORM helpers
	color.Cyan("Connecting to %s database...", cfg.Database.Driver)
	db, err := database.NewGormDB(database.GormConfig{
		Driver: cfg.Database.Driver,
		DSN:    cfg.Database.Connection,
	})
	if err != nil {
		color.Red("Error: Failed to connect to database: %v", err)
		os.Exit(1)
	}

	// 3. Optional reset. Images go first because they reference notes.
	if *reset {
		color.Yellow("Dropping images and notes tables...")
		if err := db.Migrator().DropTable(&model.Image{}, &model.Note{}); err != nil {
			color.Red("Error: Failed to drop tables: %v", err)
			os.Exit(1)
		}
	}

	// 4. AutoMigrate
	color.Yellow("Running AutoMigrate for notes and images...")
	if err := relational.Migrate(db); err != nil {
		color.Red("Error: AutoMigrate failed: %v", err)
		os.Exit(1)
	}

	color.Green("✅ Success: Database migration completed successfully via GORM.")
}

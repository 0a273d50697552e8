// Package database handles database connections, migrations and schema inspection.
//
// It wraps GORM and configures either MySQL (production) or SQLite (local runs and
// tests) from the application's configuration.
//
// # Connect
//
// Connect builds the DSN for the configured driver, applies pool settings and pings
// the database. Open does the same for an already constructed dialector, which lets
// tests inject a go-sqlmock connection.
//
// # Migrations
//
// Migrate runs GORM's AutoMigrate for the feature models. Inspect reports the
// resulting columns per table and backs the "migrate --show" command.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//
//	err = database.Migrate(db, &verification.VerifiedUser{}, &grouproles.GroupSettings{})
package database

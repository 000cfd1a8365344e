// Package database provides SQLite connectivity and schema migrations.
//
// This package manages:
//   - Connection setup with WAL mode and busy timeout pragmas
//   - Embedded schema migrations tracked in schema_migrations
//   - Health checks for the /health endpoint
//
// All queries use parameterised statements. The database file is created
// with 0600 permissions.
//
// Usage:
//
//	db, err := database.Open(database.Config{Path: cfg.Database.Path, WALMode: true})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx, migrations.FS); err != nil {
//	    log.Fatal(err)
//	}
//
// Migrations are additive: new columns must be nullable or carry a default,
// and every .up.sql has a matching .down.sql.
package database

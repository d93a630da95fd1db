// Package sqlite keeps the feedback log in a SQLite file, ~/.genie/feedback.db
// unless configured otherwise. It uses the pure Go modernc.org/sqlite driver.
//
// The schema lives in migrations/ as numbered .sql files. Opening a store
// applies, one transaction per file, every migration newer than the highest
// version recorded in schema_migrations.
package sqlite

// Package stores persists exploration runs and their selection history in
// SQLite. Migrations are embedded and applied with golang-migrate; file
// databases run in WAL mode.
package stores

// Package sqlite provides a SQLite-based implementation of the paybridge storage ports.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO. One database connection backs several ports through wrapper types:
//
//   - RecordStore / ProcedureCaller: per-organization personnel and compensation tables
//   - CredentialStore: session-scoped OAuth credentials
//   - PendingStateStore: single-use OAuth states with expiry
//
// # Schema
//
// Fixed tables are managed through versioned migrations in migrations/. Organization
// tables are created on demand by the provision_org_tables procedure from the
// record schemas in the domain package.
//
// # Data Location
//
// By default, the database is stored at ~/.paybridge/data/paybridge.db
//
// # Thread Safety
//
// All operations are thread-safe. The store relies on SQLite locking in WAL mode.
package sqlite

// Package domain defines the core business entities for Paybridge.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - OAuthCredential: A session-scoped ERP token pair
//   - PendingState: A single-use OAuth correlation token
//   - CompensationRecord / PersonnelRecord: Typed views of record store rows
//   - SalaryPerson: A computed, never persisted salary breakdown
//   - BatchResult: The per-item outcome of an ERP push run
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain

// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - RecordStore: Filter/insert/update-by-id on named per-organization tables
//   - ProcedureCaller: Remote procedures such as per-organization table provisioning
//   - CredentialStore: Session-scoped OAuth credential persistence
//   - PendingStateStore: Bounded, expiring OAuth state persistence
//   - TokenClient: Authorization URL, code exchange and refresh grant
//   - ERPClient: Authenticated record submission to the ERP
//   - PaymentFileEncoder: Interbank payment document encoding
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - EventPublisher: Batch and drift notifications. Without it, events are dropped.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven

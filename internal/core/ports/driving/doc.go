// Package driving defines the interfaces through which the outside
// world drives the core (primary ports in hexagonal architecture).
//
// CLI and other delivery adapters depend on these interfaces; the
// services in internal/core/services implement them.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driving

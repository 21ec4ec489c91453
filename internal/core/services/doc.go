// Package services implements the driving port interfaces.
// Services contain the payroll business logic and orchestrate
// calls to driven ports (adapters).
//
// Services are pure Go: every network or storage call goes through a port.
package services

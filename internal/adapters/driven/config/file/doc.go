// Package file provides the TOML configuration store.
// Values may be overridden by PAYBRIDGE_* environment variables.
package file

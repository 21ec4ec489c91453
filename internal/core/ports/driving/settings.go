package driving

import "github.com/custodia-labs/paybridge/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get resolves the current settings with defaults applied.
	Get() (*domain.Settings, error)

	// Set stores one setting by dotted key. A nil value removes it.
	Set(key string, value any) error

	// Entries lists the stored settings with secret values masked.
	Entries() []domain.SettingEntry

	// Path returns where settings are persisted.
	Path() string

	// ValidateOAuth checks the settings needed for the authorization handshake.
	ValidateOAuth() error

	// ValidatePush checks the settings needed to push records.
	ValidatePush() error
}

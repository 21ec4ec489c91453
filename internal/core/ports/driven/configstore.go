package driven

// ConfigStore holds settings under dotted keys such as "erp.client_id".
//
// Values may be stored as TOML scalars, strings from `config set` or
// environment overrides, or arrays. The typed getters convert between them
// and return the zero value for a missing or unconvertible key.
type ConfigStore interface {
	// Get returns the raw value and whether the key is set.
	Get(key string) (any, bool)

	GetString(key string) string
	GetInt(key string) int
	GetFloat(key string) float64
	GetBool(key string) bool

	// GetStringSlice accepts arrays and comma separated strings.
	GetStringSlice(key string) []string

	// Set stores a value and persists it. A nil value removes the key.
	Set(key string, value any) error

	// Save persists the current values.
	Save() error

	// Load replaces the current values with the persisted ones.
	Load() error

	// Keys returns the stored keys in sorted order. Environment overrides
	// are not listed.
	Keys() []string

	// Path returns where values are persisted, or ":memory:".
	Path() string
}

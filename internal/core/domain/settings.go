package domain

import (
	"slices"
	"strings"
	"time"
)

// Default values used when settings leave a field unset.
const (
	DefaultERPTimeout        = 30 * time.Second
	DefaultRequestsPerSecond = 4.0
)

// ERPSettings holds the OAuth application and API endpoints of the ERP.
type ERPSettings struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RedirectURI  string `toml:"redirect_uri"`
	AuthURL      string `toml:"auth_url"`
	TokenURL     string `toml:"token_url"`
	APIBaseURL   string `toml:"api_base_url"`
	Scope        string `toml:"scope"`
	// AppURL is where browser flows land after the OAuth callback.
	AppURL            string        `toml:"app_url"`
	RequestsPerSecond float64       `toml:"requests_per_second"`
	Timeout           time.Duration `toml:"-"`
}

// Scopes splits the configured scope string.
func (e ERPSettings) Scopes() []string {
	return strings.Fields(e.Scope)
}

// ValidateOAuth checks the settings needed for the authorization handshake.
func (e ERPSettings) ValidateOAuth() error {
	var missing []string
	for key, v := range map[string]string{
		"erp.client_id":     e.ClientID,
		"erp.client_secret": e.ClientSecret,
		"erp.redirect_uri":  e.RedirectURI,
		"erp.auth_url":      e.AuthURL,
		"erp.token_url":     e.TokenURL,
	} {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		slices.Sort(missing)
		return &MissingSettingsError{Keys: missing}
	}
	return nil
}

// ValidateAPI checks the settings needed to push records.
func (e ERPSettings) ValidateAPI() error {
	if strings.TrimSpace(e.APIBaseURL) == "" {
		return &MissingSettingsError{Keys: []string{"erp.api_base_url"}}
	}
	return nil
}

// PushSchedule configures recurring batch pushes while the server runs.
// A zero Interval disables them.
type PushSchedule struct {
	Interval time.Duration
	Orgs     []string
	// Session owns the credential scheduled pushes use.
	Session SessionID
	Limit   int
}

// Enabled returns true if scheduled pushes should run.
func (p PushSchedule) Enabled() bool {
	return p.Interval > 0 && len(p.Orgs) > 0
}

// DefaultPushSession is the session the CLI and scheduled pushes share.
const DefaultPushSession SessionID = "cli"

// Settings is the resolved runtime configuration.
type Settings struct {
	ERP      ERPSettings
	Defaults ContractDefaults
	Org      DebtorInfo
	Push     PushSchedule
	StateTTL time.Duration
	// RedisAddr selects the Redis pending-state store when set.
	RedisAddr string
	// AMQPURL enables event publishing when set.
	AMQPURL       string
	HTTPAddr      string
	SessionSecret string
}

// WithDefaults fills zero values with package defaults.
func (s Settings) WithDefaults() Settings {
	if s.StateTTL <= 0 {
		s.StateTTL = DefaultStateTTL
	}
	if s.ERP.Timeout <= 0 {
		s.ERP.Timeout = DefaultERPTimeout
	}
	if s.ERP.RequestsPerSecond <= 0 {
		s.ERP.RequestsPerSecond = DefaultRequestsPerSecond
	}
	if s.Push.Session == "" {
		s.Push.Session = DefaultPushSession
	}
	if s.HTTPAddr == "" {
		s.HTTPAddr = "127.0.0.1:8380"
	}
	return s
}

// SettingEntry is one stored setting as shown to operators.
type SettingEntry struct {
	Key    string `json:"key"`
	Value  string `json:"value"`
	Secret bool   `json:"secret,omitempty"`
}

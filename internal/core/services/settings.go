package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/paybridge/internal/core/domain"
	"github.com/custodia-labs/paybridge/internal/core/ports/driven"
	"github.com/custodia-labs/paybridge/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	KeyERPClientID          = "erp.client_id"
	KeyERPClientSecret      = "erp.client_secret"
	KeyERPRedirectURI       = "erp.redirect_uri"
	KeyERPAuthURL           = "erp.auth_url"
	KeyERPTokenURL          = "erp.token_url"
	KeyERPAPIBaseURL        = "erp.api_base_url"
	KeyERPScope             = "erp.scope"
	KeyERPAppURL            = "erp.app_url"
	KeyERPRequestsPerSecond = "erp.requests_per_second"
	KeyERPTimeoutSeconds    = "erp.timeout_seconds"

	KeyDefaultEmploymentForm = "defaults.employment_form"
	KeyDefaultSalaryForm     = "defaults.salary_form"
	KeyDefaultPersonelType   = "defaults.personel_type"
	KeyDefaultScheduleID     = "defaults.schedule_id"
	KeyDefaultJobTitle       = "defaults.job_title"
	KeyDefaultTaxTable       = "defaults.tax_table"

	KeyOrgName     = "org.name"
	KeyOrgAccount  = "org.account"
	KeyOrgClearing = "org.clearing"
	KeyOrgBIC      = "org.bic"
	KeyOrgBank     = "org.bank"

	KeyPushIntervalSeconds = "push.interval_seconds"
	KeyPushOrgs            = "push.orgs"
	KeyPushSession         = "push.session"
	KeyPushLimit           = "push.limit"

	KeyStateTTLSeconds   = "state.ttl_seconds"
	KeyRedisAddr         = "redis.addr"
	KeyAMQPURL           = "amqp.url"
	KeyHTTPAddr          = "http.addr"
	KeyHTTPSessionSecret = "http.session_secret"
)

// SecretKeys are settings that are masked when displayed.
var SecretKeys = map[string]bool{
	KeyERPClientSecret:   true,
	KeyHTTPSessionSecret: true,
	KeyAMQPURL:           true,
}

// SettingsService resolves settings from the config store.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get resolves the current settings with defaults applied.
func (s *SettingsService) Get() (*domain.Settings, error) {
	settings := domain.Settings{
		ERP: domain.ERPSettings{
			ClientID:          s.configStore.GetString(KeyERPClientID),
			ClientSecret:      s.configStore.GetString(KeyERPClientSecret),
			RedirectURI:       s.configStore.GetString(KeyERPRedirectURI),
			AuthURL:           s.configStore.GetString(KeyERPAuthURL),
			TokenURL:          s.configStore.GetString(KeyERPTokenURL),
			APIBaseURL:        s.configStore.GetString(KeyERPAPIBaseURL),
			Scope:             s.configStore.GetString(KeyERPScope),
			AppURL:            s.configStore.GetString(KeyERPAppURL),
			RequestsPerSecond: s.configStore.GetFloat(KeyERPRequestsPerSecond),
			Timeout:           s.getSeconds(KeyERPTimeoutSeconds),
		},
		Defaults: domain.ContractDefaults{
			EmploymentForm: s.configStore.GetString(KeyDefaultEmploymentForm),
			SalaryForm:     s.configStore.GetString(KeyDefaultSalaryForm),
			PersonelType:   s.configStore.GetString(KeyDefaultPersonelType),
			ScheduleID:     s.configStore.GetString(KeyDefaultScheduleID),
			JobTitle:       s.configStore.GetString(KeyDefaultJobTitle),
			TaxTable:       s.configStore.GetString(KeyDefaultTaxTable),
		},
		Org: domain.DebtorInfo{
			Name:         s.configStore.GetString(KeyOrgName),
			Account:      s.configStore.GetString(KeyOrgAccount),
			ClearingCode: s.configStore.GetString(KeyOrgClearing),
			BIC:          s.configStore.GetString(KeyOrgBIC),
			Bank:         s.configStore.GetString(KeyOrgBank),
		},
		Push: domain.PushSchedule{
			Interval: s.getSeconds(KeyPushIntervalSeconds),
			Orgs:     s.configStore.GetStringSlice(KeyPushOrgs),
			Session:  domain.SessionID(s.configStore.GetString(KeyPushSession)),
			Limit:    s.configStore.GetInt(KeyPushLimit),
		},
		StateTTL:      s.getSeconds(KeyStateTTLSeconds),
		RedisAddr:     s.configStore.GetString(KeyRedisAddr),
		AMQPURL:       s.configStore.GetString(KeyAMQPURL),
		HTTPAddr:      s.configStore.GetString(KeyHTTPAddr),
		SessionSecret: s.configStore.GetString(KeyHTTPSessionSecret),
	}
	settings = settings.WithDefaults()
	return &settings, nil
}

// Set stores one setting by dotted key.
func (s *SettingsService) Set(key string, value any) error {
	if key == "" {
		return fmt.Errorf("%w: empty key", domain.ErrInvalidInput)
	}
	if err := s.configStore.Set(key, value); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Entries lists the stored settings with secret values masked.
func (s *SettingsService) Entries() []domain.SettingEntry {
	keys := s.configStore.Keys()
	entries := make([]domain.SettingEntry, 0, len(keys))
	for _, key := range keys {
		entry := domain.SettingEntry{Key: key, Value: s.display(key), Secret: SecretKeys[key]}
		if entry.Secret {
			entry.Value = MaskSecret(entry.Value)
		}
		entries = append(entries, entry)
	}
	return entries
}

// Path returns the configuration file path.
func (s *SettingsService) Path() string {
	return s.configStore.Path()
}

func (s *SettingsService) display(key string) string {
	val, ok := s.configStore.Get(key)
	if !ok {
		return ""
	}
	switch v := val.(type) {
	case string:
		return v
	case []any, []string:
		return strings.Join(s.configStore.GetStringSlice(key), ",")
	default:
		return fmt.Sprint(v)
	}
}

// MaskSecret hides all but the edges of a secret value.
func MaskSecret(v string) string {
	if len(v) <= 8 {
		return "****"
	}
	return v[:4] + "..." + v[len(v)-4:]
}

// ValidateOAuth checks the settings needed for the authorization handshake.
func (s *SettingsService) ValidateOAuth() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return settings.ERP.ValidateOAuth()
}

// ValidatePush checks the settings needed to push records.
func (s *SettingsService) ValidatePush() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return settings.ERP.ValidateAPI()
}

func (s *SettingsService) getSeconds(key string) time.Duration {
	val := s.configStore.GetInt(key)
	if val <= 0 {
		return 0
	}
	return time.Duration(val) * time.Second
}

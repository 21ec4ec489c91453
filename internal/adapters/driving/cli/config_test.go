package cli

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/paybridge/internal/core/domain"
)

func TestConfigShow(t *testing.T) {
	t.Run("lists entries and readiness", func(t *testing.T) {
		settings := &mockSettingsService{
			entries: []domain.SettingEntry{
				{Key: "erp.client_id", Value: "client-1"},
				{Key: "erp.client_secret", Value: "clie...cret", Secret: true},
			},
			pushErr: &domain.MissingSettingsError{Keys: []string{"erp.api_base_url"}},
		}
		cleanup := setupServices(&Services{Settings: settings})
		defer cleanup()

		out, err := runRoot(t, "config", "show")

		require.NoError(t, err)
		assert.Contains(t, out, "/tmp/paybridge/config.toml")
		assert.Contains(t, out, "erp.client_id")
		assert.Contains(t, out, "clie...cret")
		assert.Contains(t, out, "OAuth login ready")
		assert.Contains(t, out, "Record push: configuration missing: erp.api_base_url")
	})

	t.Run("empty store", func(t *testing.T) {
		cleanup := setupServices(&Services{Settings: &mockSettingsService{}})
		defer cleanup()

		out, err := runRoot(t, "config")

		require.NoError(t, err)
		assert.Contains(t, out, "No settings stored.")
	})
}

func TestConfigSet(t *testing.T) {
	settings := &mockSettingsService{}
	cleanup := setupServices(&Services{Settings: settings})
	defer cleanup()

	out, err := runRoot(t, "config", "set", "push.orgs", "acme,globex")

	require.NoError(t, err)
	assert.Equal(t, "acme,globex", settings.values["push.orgs"])
	assert.Contains(t, out, "Set push.orgs")
}

func TestConfigSet_StoreError(t *testing.T) {
	cleanup := setupServices(&Services{Settings: &mockSettingsService{setErr: errors.New("read-only")}})
	defer cleanup()

	_, err := runRoot(t, "config", "set", "org.name", "Acme")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "read-only")
}

func TestConfigUnset(t *testing.T) {
	settings := &mockSettingsService{values: map[string]any{"org.bic": "SWEDSESS"}}
	cleanup := setupServices(&Services{Settings: settings})
	defer cleanup()

	out, err := runRoot(t, "config", "unset", "org.bic")

	require.NoError(t, err)
	assert.Equal(t, []string{"org.bic"}, settings.removedKeys)
	assert.NotContains(t, settings.values, "org.bic")
	assert.Contains(t, out, "Removed org.bic")
}

func TestConfigSetSecret(t *testing.T) {
	oldInput := secretInput
	defer func() { secretInput = oldInput }()

	t.Run("stores trimmed secret", func(t *testing.T) {
		settings := &mockSettingsService{}
		cleanup := setupServices(&Services{Settings: settings})
		defer cleanup()
		secretInput = strings.NewReader("  s3cret-value \n")

		out, err := runRoot(t, "config", "set-secret", "erp.client_secret")

		require.NoError(t, err)
		assert.Equal(t, "s3cret-value", settings.values["erp.client_secret"])
		assert.NotContains(t, out, "s3cret-value")
	})

	t.Run("empty input stores nothing", func(t *testing.T) {
		settings := &mockSettingsService{}
		cleanup := setupServices(&Services{Settings: settings})
		defer cleanup()
		secretInput = strings.NewReader("")

		_, err := runRoot(t, "config", "set-secret", "erp.client_secret")

		require.Error(t, err)
		assert.Empty(t, settings.values)
	})
}

func TestReadSecret(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "line with newline", input: "abc\n", expected: "abc"},
		{name: "no trailing newline", input: "abc", expected: "abc"},
		{name: "only first line", input: "first\nsecond\n", expected: "first"},
		{name: "empty", input: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := readSecret(strings.NewReader(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

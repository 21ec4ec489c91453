package cli

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/paybridge/internal/core/domain"
)

func TestRootCmd_Use(t *testing.T) {
	assert.Equal(t, "paybridge", rootCmd.Use)
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("verbose"))
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("session"))
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("data-dir"))
}

func TestSetServices_NilIsIgnored(t *testing.T) {
	cleanup := setupServices(&Services{Org: &mockOrgService{}})
	defer cleanup()

	SetServices(nil)

	assert.NotNil(t, orgService)
}

func TestBootstrap_BuildsServicesFromFlags(t *testing.T) {
	cleanup := setupServices(nil)
	defer cleanup()
	defer SetBootstrap(nil)

	orgs := &mockOrgService{}
	closed := false
	var got Options
	SetBootstrap(func(_ context.Context, opts Options) (*Services, error) {
		got = opts
		return &Services{
			Org: orgs,
			Close: func() error {
				closed = true
				return nil
			},
		}, nil
	})

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"org", "provision", "acme", "--data-dir", "/tmp/pb", "--session", "ops", "--memory"})

	err := Execute(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "/tmp/pb", got.DataDir)
	assert.Equal(t, domain.SessionID("ops"), got.Session)
	assert.True(t, got.Memory)
	assert.Equal(t, []string{"acme"}, orgs.provisioned)
	assert.True(t, closed)
	assert.Nil(t, closeServices)
}

func TestBootstrap_ErrorStopsCommand(t *testing.T) {
	cleanup := setupServices(nil)
	defer cleanup()
	defer SetBootstrap(nil)

	SetBootstrap(func(context.Context, Options) (*Services, error) {
		return nil, errors.New("database locked")
	})

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"org", "provision", "acme"})

	err := rootCmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "initialising: database locked")
}

func TestBootstrap_SkippedForVersion(t *testing.T) {
	cleanup := setupServices(nil)
	defer cleanup()
	defer SetBootstrap(nil)

	called := false
	SetBootstrap(func(context.Context, Options) (*Services, error) {
		called = true
		return &Services{}, nil
	})

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"version"})

	require.NoError(t, rootCmd.Execute())
	assert.False(t, called)
}

func TestRootCmd_EmptySessionRejected(t *testing.T) {
	cleanup := setupServices(&Services{Org: &mockOrgService{}})
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"org", "provision", "acme", "--session", ""})

	err := rootCmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "--session")
}

func TestSession_DefaultsToCLI(t *testing.T) {
	cleanup := setupServices(nil)
	defer cleanup()

	assert.Equal(t, domain.DefaultPushSession, session())
	globalOpts.Session = "web"
	assert.Equal(t, domain.SessionID("web"), session())
}
